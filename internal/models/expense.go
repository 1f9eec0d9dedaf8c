package models

import "time"

// ExpenseKind governs how an expense's amount is allocated among members.
type ExpenseKind string

const (
	// KindPersonal is spent by the payer alone; no allocations are created.
	KindPersonal ExpenseKind = "personal"
	// KindGift records a transfer to recipients without creating debt.
	KindGift ExpenseKind = "gift"
	// KindSplit divides the amount equally between the payer and participants.
	KindSplit ExpenseKind = "split"
)

// ExpenseKinds lists every valid kind in display order.
var ExpenseKinds = []ExpenseKind{KindPersonal, KindGift, KindSplit}

// Valid reports whether k is one of the known kinds.
func (k ExpenseKind) Valid() bool {
	for _, known := range ExpenseKinds {
		if k == known {
			return true
		}
	}
	return false
}

// Category is the spending category tag of an expense.
type Category string

const (
	CategoryFood           Category = "food"
	CategoryTransportation Category = "transportation"
	CategoryShopping       Category = "shopping"
	CategoryEntertainment  Category = "entertainment"
	CategoryUtilities      Category = "utilities"
	CategoryHealthcare     Category = "healthcare"
	CategoryEducation      Category = "education"
	CategoryOther          Category = "other"
)

// Categories lists every valid category.
var Categories = []Category{
	CategoryFood,
	CategoryTransportation,
	CategoryShopping,
	CategoryEntertainment,
	CategoryUtilities,
	CategoryHealthcare,
	CategoryEducation,
	CategoryOther,
}

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// Expense represents one financial event within a group.
type Expense struct {
	// ID is the unique identifier for the expense (UUID format).
	ID string `json:"id"`

	// GroupID is the group this expense belongs to.
	GroupID string `json:"group_id"`

	// Description is a short human-readable label (1..200 chars).
	Description string `json:"description"`

	// Amount is the full cost of the expense. Always > 0.
	Amount float64 `json:"amount"`

	// Category tags the expense for spend breakdowns. Defaults to "other".
	Category Category `json:"category"`

	// Date is when the expense occurred.
	Date time.Time `json:"date"`

	// Kind decides how Allocations were computed.
	Kind ExpenseKind `json:"kind"`

	// PayerID is the member who fronted the money.
	PayerID string `json:"payer_id"`

	// CreatorID is the member who recorded the expense. May differ from PayerID.
	CreatorID string `json:"creator_id"`

	// Notes is free text (≤500 chars).
	Notes string `json:"notes,omitempty"`

	// Receipt is an opaque reference to an attachment stored elsewhere.
	Receipt string `json:"receipt,omitempty"`

	// Allocations are computed when the expense is created, in participant order.
	// Editing the expense does not recompute them.
	Allocations []Allocation `json:"allocations"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Allocation is the part of an expense attributed to one participant.
type Allocation struct {
	// MemberID is the participant this allocation belongs to.
	MemberID string `json:"member_id"`

	// OwedAmount is what the member owes the payer. Zero for gifts.
	OwedAmount float64 `json:"owed_amount"`

	// Settled is true once the member has paid the payer back.
	// Once true it is never reset.
	Settled bool `json:"settled"`

	// SettledAt is set only when the allocation was settled by the member.
	SettledAt *time.Time `json:"settled_at,omitempty"`
}

// Allocation returns a pointer to the allocation for memberID, or nil.
func (e *Expense) Allocation(memberID string) *Allocation {
	for i := range e.Allocations {
		if e.Allocations[i].MemberID == memberID {
			return &e.Allocations[i]
		}
	}
	return nil
}

// ParticipantIDs returns the member ids of the allocations in order.
func (e *Expense) ParticipantIDs() []string {
	ids := make([]string, len(e.Allocations))
	for i, a := range e.Allocations {
		ids[i] = a.MemberID
	}
	return ids
}
