package ledger

import "github.com/mmynk/splitledger/internal/models"

// Stats summarizes a collection of expenses from one member's point of view.
type Stats struct {
	TotalExpenses int                            `json:"total_expenses"`
	TotalAmount   float64                        `json:"total_amount"`
	ByCategory    map[models.Category]float64    `json:"by_category"`
	ByType        map[models.ExpenseKind]float64 `json:"by_type"`
	Balance       Balance                        `json:"balance"`
}

// CategoryTotals sums gross amounts per category. Settlement state is ignored.
func CategoryTotals(expenses []models.Expense) map[models.Category]float64 {
	totals := make(map[models.Category]float64)
	for _, e := range expenses {
		totals[e.Category] += e.Amount
	}
	for c, v := range totals {
		totals[c] = Round2(v)
	}
	return totals
}

// TypeTotals sums gross amounts per kind. Every kind is present, zero if unused.
func TypeTotals(expenses []models.Expense) map[models.ExpenseKind]float64 {
	totals := make(map[models.ExpenseKind]float64, len(models.ExpenseKinds))
	for _, k := range models.ExpenseKinds {
		totals[k] = 0
	}
	for _, e := range expenses {
		totals[e.Kind] += e.Amount
	}
	for k, v := range totals {
		totals[k] = Round2(v)
	}
	return totals
}

// TotalAmount is the gross sum of all expense amounts.
func TotalAmount(expenses []models.Expense) float64 {
	var total float64
	for _, e := range expenses {
		total += e.Amount
	}
	return Round2(total)
}

// Summarize builds the stats view of expenses for memberID.
func Summarize(expenses []models.Expense, memberID string) Stats {
	return Stats{
		TotalExpenses: len(expenses),
		TotalAmount:   TotalAmount(expenses),
		ByCategory:    CategoryTotals(expenses),
		ByType:        TypeTotals(expenses),
		Balance:       PerMemberBalance(expenses, memberID),
	}
}

// IsFullySettled reports whether nothing is outstanding on expense.
// Only split expenses can carry unsettled allocations.
func IsFullySettled(expense *models.Expense) bool {
	if expense.Kind != models.KindSplit {
		return true
	}
	for _, a := range expense.Allocations {
		if !a.Settled {
			return false
		}
	}
	return true
}

// MemberShare is the part of expense that memberID consumed.
//
// The payer of a personal or gift expense carries the whole amount; a split
// participant carries their allocation; everyone else carries nothing.
func MemberShare(expense *models.Expense, memberID string) float64 {
	switch expense.Kind {
	case models.KindPersonal, models.KindGift:
		if expense.PayerID == memberID {
			return expense.Amount
		}
		return 0
	case models.KindSplit:
		if a := expense.Allocation(memberID); a != nil {
			return a.OwedAmount
		}
		return 0
	default:
		return 0
	}
}
