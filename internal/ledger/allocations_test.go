package ledger

import (
	"errors"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/mmynk/splitledger/internal/models"
)

var groupMembers = []string{"Alice", "Bob", "Charlie", "Diana"}

func TestComputeAllocations(t *testing.T) {
	tests := []struct {
		name         string
		kind         models.ExpenseKind
		amount       float64
		payer        string
		participants []string
		wantErr      error
		validateFunc func(t *testing.T, allocs []models.Allocation)
	}{
		{
			name:         "personal has no allocations",
			kind:         models.KindPersonal,
			amount:       42.5,
			payer:        "Alice",
			participants: []string{"Bob"},
			validateFunc: func(t *testing.T, allocs []models.Allocation) {
				if allocs == nil || len(allocs) != 0 {
					t.Errorf("personal allocations = %v, want empty list", allocs)
				}
			},
		},
		{
			name:         "split among payer and two others",
			kind:         models.KindSplit,
			amount:       90,
			payer:        "Alice",
			participants: []string{"Bob", "Charlie"},
			validateFunc: func(t *testing.T, allocs []models.Allocation) {
				// 90 / 3 = 30 each, payer gets no row
				if len(allocs) != 2 {
					t.Fatalf("got %d allocations, want 2", len(allocs))
				}
				for i, want := range []string{"Bob", "Charlie"} {
					a := allocs[i]
					if a.MemberID != want {
						t.Errorf("allocation %d member = %s, want %s", i, a.MemberID, want)
					}
					if math.Abs(a.OwedAmount-30) > 0.001 {
						t.Errorf("%s owes %v, want 30", a.MemberID, a.OwedAmount)
					}
					if a.Settled || a.SettledAt != nil {
						t.Errorf("%s should start unsettled", a.MemberID)
					}
				}
			},
		},
		{
			name:         "split with three others gives quarters",
			kind:         models.KindSplit,
			amount:       100,
			payer:        "Alice",
			participants: []string{"Bob", "Charlie", "Diana"},
			validateFunc: func(t *testing.T, allocs []models.Allocation) {
				for _, a := range allocs {
					if a.OwedAmount != 25 {
						t.Errorf("%s owes %v, want 25", a.MemberID, a.OwedAmount)
					}
				}
			},
		},
		{
			name:         "self-split payer row is settled",
			kind:         models.KindSplit,
			amount:       60,
			payer:        "Alice",
			participants: []string{"Alice", "Bob"},
			validateFunc: func(t *testing.T, allocs []models.Allocation) {
				// n = 3 because the payer is counted again
				if len(allocs) != 2 {
					t.Fatalf("got %d allocations, want 2", len(allocs))
				}
				if !allocs[0].Settled || allocs[0].OwedAmount != 20 {
					t.Errorf("payer allocation = %+v, want settled share of 20", allocs[0])
				}
				if allocs[1].Settled || allocs[1].OwedAmount != 20 {
					t.Errorf("Bob allocation = %+v, want unsettled share of 20", allocs[1])
				}
			},
		},
		{
			name:         "split remainder is not redistributed",
			kind:         models.KindSplit,
			amount:       100,
			payer:        "Alice",
			participants: []string{"Bob", "Charlie"},
			validateFunc: func(t *testing.T, allocs []models.Allocation) {
				var sum float64
				for _, a := range allocs {
					if a.OwedAmount != 33.33 {
						t.Errorf("%s owes %v, want 33.33", a.MemberID, a.OwedAmount)
					}
					sum += a.OwedAmount
				}
				if math.Abs(sum-66.66) > 0.001 {
					t.Errorf("tracked sum = %v, want 66.66", sum)
				}
			},
		},
		{
			name:         "split rounds half away from zero",
			kind:         models.KindSplit,
			amount:       0.25,
			payer:        "Alice",
			participants: []string{"Bob"},
			validateFunc: func(t *testing.T, allocs []models.Allocation) {
				if allocs[0].OwedAmount != 0.13 {
					t.Errorf("Bob owes %v, want 0.13", allocs[0].OwedAmount)
				}
			},
		},
		{
			name:         "gift owes nothing and is settled",
			kind:         models.KindGift,
			amount:       50,
			payer:        "Alice",
			participants: []string{"Bob", "Charlie"},
			validateFunc: func(t *testing.T, allocs []models.Allocation) {
				if len(allocs) != 2 {
					t.Fatalf("got %d allocations, want 2", len(allocs))
				}
				for _, a := range allocs {
					if a.OwedAmount != 0 || !a.Settled {
						t.Errorf("gift allocation = %+v, want {0, settled}", a)
					}
				}
			},
		},
		{
			name:         "zero amount",
			kind:         models.KindSplit,
			amount:       0,
			payer:        "Alice",
			participants: []string{"Bob"},
			wantErr:      ErrInvalidAmount,
		},
		{
			name:    "negative amount on personal",
			kind:    models.KindPersonal,
			amount:  -5,
			payer:   "Alice",
			wantErr: ErrInvalidAmount,
		},
		{
			name:    "NaN amount",
			kind:    models.KindPersonal,
			amount:  math.NaN(),
			payer:   "Alice",
			wantErr: ErrInvalidAmount,
		},
		{
			name:    "unknown kind",
			kind:    "loan",
			amount:  10,
			payer:   "Alice",
			wantErr: ErrInvalidKind,
		},
		{
			name:         "split without participants",
			kind:         models.KindSplit,
			amount:       10,
			payer:        "Alice",
			participants: []string{},
			wantErr:      ErrInvalidParticipant,
		},
		{
			name:    "gift without recipients",
			kind:    models.KindGift,
			amount:  10,
			payer:   "Alice",
			wantErr: ErrInvalidParticipant,
		},
		{
			name:         "participant outside the group",
			kind:         models.KindSplit,
			amount:       10,
			payer:        "Alice",
			participants: []string{"Bob", "Mallory"},
			wantErr:      ErrInvalidParticipant,
		},
		{
			name:         "repeated participant",
			kind:         models.KindSplit,
			amount:       10,
			payer:        "Alice",
			participants: []string{"Bob", "Bob"},
			wantErr:      ErrInvalidParticipant,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			allocs, err := ComputeAllocations(tt.kind, tt.amount, tt.payer, tt.participants, groupMembers)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("ComputeAllocations() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("ComputeAllocations() unexpected error: %v", err)
			}
			if tt.validateFunc != nil {
				tt.validateFunc(t, allocs)
			}
		})
	}
}

func TestComputeAllocations_NamesFirstOffender(t *testing.T) {
	_, err := ComputeAllocations(models.KindSplit, 10, "Alice", []string{"Bob", "Mallory", "Eve"}, groupMembers)
	if err == nil {
		t.Fatal("expected error")
	}
	if got := err.Error(); !strings.Contains(got, "Mallory") || strings.Contains(got, "Eve") {
		t.Errorf("error %q should name Mallory only", got)
	}
}

func TestSettle(t *testing.T) {
	allocs, err := ComputeAllocations(models.KindSplit, 90, "Alice", []string{"Bob", "Charlie"}, groupMembers)
	if err != nil {
		t.Fatalf("ComputeAllocations failed: %v", err)
	}
	expense := &models.Expense{ID: "e1", Amount: 90, Kind: models.KindSplit, PayerID: "Alice", Allocations: allocs}

	first := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	changed, err := Settle(expense, "Bob", first)
	if err != nil {
		t.Fatalf("Settle failed: %v", err)
	}
	if !changed {
		t.Error("first settle should change state")
	}

	bob := expense.Allocation("Bob")
	if !bob.Settled || bob.SettledAt == nil || !bob.SettledAt.Equal(first) {
		t.Fatalf("Bob allocation = %+v, want settled at %v", bob, first)
	}

	// Settling again is a no-op and keeps the original stamp
	changed, err = Settle(expense, "Bob", first.Add(time.Hour))
	if err != nil {
		t.Fatalf("second Settle failed: %v", err)
	}
	if changed {
		t.Error("second settle should not change state")
	}
	if !bob.Settled || !bob.SettledAt.Equal(first) {
		t.Errorf("Bob allocation after repeat = %+v, want original stamp %v", bob, first)
	}

	if expense.Allocation("Charlie").Settled {
		t.Error("Charlie should still be unsettled")
	}

	_, err = Settle(expense, "Diana", first)
	if !errors.Is(err, ErrAllocationNotFound) {
		t.Errorf("Settle(Diana) error = %v, want ErrAllocationNotFound", err)
	}
}

func TestRecompute(t *testing.T) {
	allocs, _ := ComputeAllocations(models.KindSplit, 90, "Alice", []string{"Bob", "Charlie"}, groupMembers)
	expense := &models.Expense{ID: "e1", Amount: 90, Kind: models.KindSplit, PayerID: "Alice", Allocations: allocs}

	stamp := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	if _, err := Settle(expense, "Bob", stamp); err != nil {
		t.Fatalf("Settle failed: %v", err)
	}

	// Amount edited from 90 to 120; allocations stay until recomputed
	expense.Amount = 120
	if expense.Allocation("Charlie").OwedAmount != 30 {
		t.Fatal("editing the amount must not touch allocations")
	}

	if err := Recompute(expense, nil, groupMembers); err != nil {
		t.Fatalf("Recompute failed: %v", err)
	}

	bob := expense.Allocation("Bob")
	if bob.OwedAmount != 40 || !bob.Settled || !bob.SettledAt.Equal(stamp) {
		t.Errorf("Bob after recompute = %+v, want settled share of 40 stamped %v", bob, stamp)
	}
	charlie := expense.Allocation("Charlie")
	if charlie.OwedAmount != 40 || charlie.Settled {
		t.Errorf("Charlie after recompute = %+v, want unsettled share of 40", charlie)
	}

	// New participant list
	if err := Recompute(expense, []string{"Bob", "Charlie", "Diana"}, groupMembers); err != nil {
		t.Fatalf("Recompute with participants failed: %v", err)
	}
	if len(expense.Allocations) != 3 || expense.Allocation("Diana").OwedAmount != 30 {
		t.Errorf("allocations = %+v, want three shares of 30", expense.Allocations)
	}
	if !expense.Allocation("Bob").Settled {
		t.Error("Bob must stay settled")
	}

	if err := Recompute(expense, []string{"Mallory"}, groupMembers); !errors.Is(err, ErrInvalidParticipant) {
		t.Errorf("Recompute(Mallory) error = %v, want ErrInvalidParticipant", err)
	}
}

func TestRound2(t *testing.T) {
	tests := []struct {
		in   float64
		want float64
	}{
		{33.333333, 33.33},
		{0.125, 0.13},
		{-0.125, -0.13},
		{25, 25},
		{1.005, 1.01},
		{1.015, 1.02},
		{-1.005, -1.01},
		{0.1 + 0.2, 0.3},
		{math.NaN(), math.NaN()},
	}
	for _, tt := range tests {
		got := Round2(tt.in)
		if math.IsNaN(tt.want) {
			if !math.IsNaN(got) {
				t.Errorf("Round2(NaN) = %v, want NaN", got)
			}
			continue
		}
		if got != tt.want {
			t.Errorf("Round2(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestComputeAllocations_SplitShareRoundsDecimalHalfUp(t *testing.T) {
	tests := []struct {
		amount float64
		want   float64
	}{
		{2.01, 1.01},
		{2.03, 1.02},
		{10.05, 5.03},
		{0.01, 0.01},
		{99.99, 50},
	}
	for _, tt := range tests {
		allocs, err := ComputeAllocations(models.KindSplit, tt.amount, "Alice", []string{"Bob"}, groupMembers)
		if err != nil {
			t.Fatalf("amount %v: unexpected error: %v", tt.amount, err)
		}
		if got := allocs[0].OwedAmount; got != tt.want {
			t.Errorf("amount %v split two ways: share = %v, want %v", tt.amount, got, tt.want)
		}
	}
}
