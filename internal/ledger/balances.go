package ledger

import (
	"sort"

	"github.com/mmynk/splitledger/internal/models"
)

// Balance is one member's outstanding position across a set of expenses.
type Balance struct {
	Owes       float64 `json:"owes"`        // Unsettled shares of expenses others paid
	IsOwed     float64 `json:"is_owed"`     // Unsettled shares others hold on split expenses this member paid
	NetBalance float64 `json:"net_balance"` // IsOwed - Owes; negative means the member owes money
}

// MemberBalance is a Balance tagged with its member.
type MemberBalance struct {
	MemberID string `json:"member_id"`
	Balance
}

// DebtEdge represents a debt from one member to another.
type DebtEdge struct {
	From   string  `json:"from"` // Member who owes
	To     string  `json:"to"`   // Member who is owed
	Amount float64 `json:"amount"`
}

// PerMemberBalance computes what memberID owes and is owed across expenses.
//
//   - owes: over expenses not paid by memberID, the member's unsettled allocation.
//   - isOwed: over split expenses paid by memberID, every other member's
//     unsettled allocation.
//
// Gifts never contribute: their allocations are zero and pre-settled.
// The result does not depend on the order of expenses.
func PerMemberBalance(expenses []models.Expense, memberID string) Balance {
	var owes, isOwed float64

	for i := range expenses {
		e := &expenses[i]
		if e.PayerID != memberID {
			if a := e.Allocation(memberID); a != nil && !a.Settled {
				owes += a.OwedAmount
			}
			continue
		}

		if e.Kind != models.KindSplit {
			continue
		}
		for _, a := range e.Allocations {
			if a.MemberID != memberID && !a.Settled {
				isOwed += a.OwedAmount
			}
		}
	}

	return Balance{
		Owes:       Round2(owes),
		IsOwed:     Round2(isOwed),
		NetBalance: Round2(isOwed - owes),
	}
}

// GroupBalances computes every member's balance over expenses, plus a
// simplified list of who should pay whom to clear all unsettled shares.
//
// Algorithm:
//   - each unsettled allocation on an expense the member did not pay is a debt
//     from the member to the payer
//   - net balance = is owed - owes
//   - debts are simplified by greedily matching the largest debtor with the
//     largest creditor
//
// Members are returned sorted by id; ties in the matching are broken by id so
// the output is deterministic.
func GroupBalances(expenses []models.Expense) ([]MemberBalance, []DebtEdge) {
	balances := make(map[string]*MemberBalance)
	get := func(id string) *MemberBalance {
		if b, ok := balances[id]; ok {
			return b
		}
		b := &MemberBalance{MemberID: id}
		balances[id] = b
		return b
	}

	for i := range expenses {
		e := &expenses[i]
		get(e.PayerID)
		for _, a := range e.Allocations {
			debtor := get(a.MemberID)
			if a.Settled || a.MemberID == e.PayerID {
				continue
			}
			debtor.Owes += a.OwedAmount
			get(e.PayerID).IsOwed += a.OwedAmount
		}
	}

	memberBalances := make([]MemberBalance, 0, len(balances))
	for _, b := range balances {
		b.Owes = Round2(b.Owes)
		b.IsOwed = Round2(b.IsOwed)
		b.NetBalance = Round2(b.IsOwed - b.Owes)
		memberBalances = append(memberBalances, *b)
	}
	sort.Slice(memberBalances, func(i, j int) bool {
		return memberBalances[i].MemberID < memberBalances[j].MemberID
	})

	return memberBalances, simplifyDebts(memberBalances)
}

// halfCent separates float noise from a real debt. Balances are already
// rounded to cents, so the smallest real amount is 0.01.
const halfCent = 0.005

// simplifyDebts matches debtors with creditors to minimize transfers.
func simplifyDebts(balances []MemberBalance) []DebtEdge {
	var creditors, debtors []MemberBalance
	for _, b := range balances {
		if b.NetBalance > 0 {
			creditors = append(creditors, b)
		} else if b.NetBalance < 0 {
			debtors = append(debtors, b)
		}
	}
	sort.SliceStable(creditors, func(i, j int) bool {
		return creditors[i].NetBalance > creditors[j].NetBalance
	})
	sort.SliceStable(debtors, func(i, j int) bool {
		return debtors[i].NetBalance < debtors[j].NetBalance
	})

	debtorBalance := make(map[string]float64, len(debtors))
	creditorBalance := make(map[string]float64, len(creditors))
	for _, d := range debtors {
		debtorBalance[d.MemberID] = -d.NetBalance
	}
	for _, c := range creditors {
		creditorBalance[c.MemberID] = c.NetBalance
	}

	edges := []DebtEdge{}
	i, j := 0, 0
	for i < len(debtors) && j < len(creditors) {
		debtor := debtors[i].MemberID
		creditor := creditors[j].MemberID

		// Settle the smaller of what the debtor owes and the creditor is owed
		amount := debtorBalance[debtor]
		if creditorBalance[creditor] < amount {
			amount = creditorBalance[creditor]
		}

		if amount >= halfCent {
			edges = append(edges, DebtEdge{From: debtor, To: creditor, Amount: Round2(amount)})
		}

		debtorBalance[debtor] -= amount
		creditorBalance[creditor] -= amount

		if debtorBalance[debtor] < halfCent {
			i++
		}
		if creditorBalance[creditor] < halfCent {
			j++
		}
	}

	return edges
}
