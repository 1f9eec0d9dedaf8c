package models

import "time"

// GroupType describes what kind of group the members form.
type GroupType string

const (
	GroupFamily    GroupType = "family"
	GroupFriends   GroupType = "friends"
	GroupRoommates GroupType = "roommates"
	GroupTrip      GroupType = "trip"
	GroupOther     GroupType = "other"
)

// Group is a set of members who record expenses together.
// The creator is the owner and always a member.
type Group struct {
	// ID is the unique identifier for the group (UUID format).
	ID string `json:"id"`

	// Name is the display name of the group (e.g., "Roommates", "Lisbon trip").
	Name string `json:"name"`

	Description string    `json:"description,omitempty"`
	Type        GroupType `json:"type"`

	// OwnerID is the member who created the group. The owner may edit or
	// delete any expense in the group.
	OwnerID string `json:"owner_id"`

	// Members is the list of member ids. Expense payers and participants
	// must be drawn from this list.
	Members []string `json:"members"`

	// Currency is the ISO code amounts are recorded in.
	Currency string `json:"currency"`

	CreatedAt time.Time `json:"created_at"`
}

// IsMember reports whether memberID belongs to the group.
func (g *Group) IsMember(memberID string) bool {
	for _, m := range g.Members {
		if m == memberID {
			return true
		}
	}
	return false
}

// IsOwner reports whether memberID created the group.
func (g *Group) IsOwner(memberID string) bool {
	return g.OwnerID == memberID
}
