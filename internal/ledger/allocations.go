package ledger

import (
	"fmt"
	"math"
	"time"

	"github.com/mmynk/splitledger/internal/models"
)

// ComputeAllocations decides how an expense's amount is distributed.
//
//   - personal: no allocations, the payer carries the full amount.
//   - gift: one allocation per recipient, owing 0 and already settled.
//   - split: share = amount / (len(participants)+1) rounded to cents; one unsettled
//     allocation per participant. A participant equal to the payer is
//     recorded with the same share but settled, since the payer cannot owe
//     themselves. Otherwise the payer gets no row.
//
// The rounding remainder of a split is not redistributed: tracked shares may
// drift from the nominal amount by up to (n-1) half-cents.
//
// participants are validated against members, the group's member ids.
// The result preserves the order of participants.
func ComputeAllocations(kind models.ExpenseKind, amount float64, payer string, participants, members []string) ([]models.Allocation, error) {
	if math.IsNaN(amount) || math.IsInf(amount, 0) || amount <= 0 {
		return nil, fmt.Errorf("%w: got %v", ErrInvalidAmount, amount)
	}
	if !kind.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidKind, kind)
	}

	if kind == models.KindPersonal {
		return []models.Allocation{}, nil
	}

	if err := validateParticipants(participants, members); err != nil {
		return nil, err
	}

	allocations := make([]models.Allocation, len(participants))

	if kind == models.KindGift {
		for i, p := range participants {
			allocations[i] = models.Allocation{MemberID: p, OwedAmount: 0, Settled: true}
		}
		return allocations, nil
	}

	share := splitShare(amount, len(participants)+1)
	for i, p := range participants {
		allocations[i] = models.Allocation{
			MemberID:   p,
			OwedAmount: share,
			Settled:    p == payer,
		}
	}
	return allocations, nil
}

// validateParticipants rejects an empty list, the first id outside members,
// and the first repeated id.
func validateParticipants(participants, members []string) error {
	if len(participants) == 0 {
		return fmt.Errorf("%w: at least one participant is required", ErrInvalidParticipant)
	}

	known := make(map[string]bool, len(members))
	for _, m := range members {
		known[m] = true
	}

	seen := make(map[string]bool, len(participants))
	for _, p := range participants {
		if !known[p] {
			return fmt.Errorf("%w: %q is not a group member", ErrInvalidParticipant, p)
		}
		if seen[p] {
			return fmt.Errorf("%w: %q listed more than once", ErrInvalidParticipant, p)
		}
		seen[p] = true
	}
	return nil
}

// Settle marks memberID's allocation on expense as settled at now.
//
// It reports whether the allocation changed state. Settling an allocation
// that is already settled is a no-op and keeps the original SettledAt.
func Settle(expense *models.Expense, memberID string, now time.Time) (bool, error) {
	alloc := expense.Allocation(memberID)
	if alloc == nil {
		return false, fmt.Errorf("%w: member %q on expense %q", ErrAllocationNotFound, memberID, expense.ID)
	}
	if alloc.Settled {
		return false, nil
	}

	settledAt := now
	alloc.Settled = true
	alloc.SettledAt = &settledAt
	return true, nil
}

// Recompute rebuilds expense.Allocations from its current kind, amount and
// payer. Editing an expense never does this implicitly.
//
// participants replaces the participant list; nil keeps the current one.
// Members that were already settled stay settled with their original
// timestamp, so settlement remains monotonic across a recompute.
func Recompute(expense *models.Expense, participants, members []string) error {
	if participants == nil {
		participants = expense.ParticipantIDs()
	}

	fresh, err := ComputeAllocations(expense.Kind, expense.Amount, expense.PayerID, participants, members)
	if err != nil {
		return err
	}

	for i := range fresh {
		old := expense.Allocation(fresh[i].MemberID)
		if old == nil || !old.Settled {
			continue
		}
		fresh[i].Settled = true
		fresh[i].SettledAt = old.SettledAt
	}

	expense.Allocations = fresh
	return nil
}
