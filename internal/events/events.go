// Package events publishes ledger changes for downstream consumers such as
// notification or sync workers.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// Type names a ledger event. It doubles as the AMQP routing key.
type Type string

const (
	ExpenseCreated        Type = "expense.created"
	ExpenseUpdated        Type = "expense.updated"
	ExpenseDeleted        Type = "expense.deleted"
	AllocationSettled     Type = "allocation.settled"
	AllocationsRecomputed Type = "allocations.recomputed"
)

// Event is the message body published for every ledger change.
type Event struct {
	Type       Type      `json:"type"`
	GroupID    string    `json:"group_id"`
	ExpenseID  string    `json:"expense_id"`
	ActorID    string    `json:"actor_id"`
	MemberID   string    `json:"member_id,omitempty"` // set for settlements
	Amount     float64   `json:"amount,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// ToJSON encodes the event body.
func (e Event) ToJSON() ([]byte, error) {
	b, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("marshal event: %w", err)
	}
	return b, nil
}

// FromJSON decodes an event body.
func FromJSON(data []byte) (Event, error) {
	var e Event
	if err := json.Unmarshal(data, &e); err != nil {
		return Event{}, fmt.Errorf("unmarshal event: %w", err)
	}
	return e, nil
}

// Publisher delivers ledger events. Implementations must be safe for
// concurrent use.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
	Close() error
}

// NopPublisher drops every event. Used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) error { return nil }

func (NopPublisher) Close() error { return nil }
