// Package ledger holds the expense-splitting and balance rules.
//
// Every function here is pure: it takes plain models in and returns plain
// values out, performs no I/O and never retains its inputs. Callers own
// persistence and concurrency; Settle and Recompute mutate only the expense
// they are handed.
package ledger

import (
	"errors"
	"math"

	"github.com/shopspring/decimal"
)

var (
	// ErrInvalidAmount is returned for amounts that are not finite and > 0.
	ErrInvalidAmount = errors.New("amount must be greater than zero")

	// ErrInvalidParticipant is returned for an empty participant list where one
	// is required, a participant outside the group, or a repeated participant.
	ErrInvalidParticipant = errors.New("invalid participant")

	// ErrInvalidKind is returned for an unrecognized expense kind.
	ErrInvalidKind = errors.New("invalid expense kind")

	// ErrAllocationNotFound is returned when settling a member that has no
	// allocation on the expense.
	ErrAllocationNotFound = errors.New("allocation not found")
)

// Round2 rounds x to two decimal places, half away from zero.
//
// Rounding applies to the shortest decimal form of x, so 1.005 becomes 1.01
// even though its binary value lies just below the midpoint.
func Round2(x float64) float64 {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return x
	}
	return decimal.NewFromFloat(x).Round(2).InexactFloat64()
}

// splitShare divides amount into n equal shares rounded to cents.
// The division is done in decimal so that 2.01 / 2 is exactly 1.005.
func splitShare(amount float64, n int) float64 {
	share := decimal.NewFromFloat(amount).Div(decimal.NewFromInt(int64(n)))
	return share.Round(2).InexactFloat64()
}
