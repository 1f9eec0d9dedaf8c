package events

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventJSON(t *testing.T) {
	at := time.Date(2025, 5, 1, 9, 0, 0, 0, time.UTC)
	event := Event{
		Type:       AllocationSettled,
		GroupID:    "g1",
		ExpenseID:  "e1",
		ActorID:    "alice",
		MemberID:   "bob",
		Amount:     30,
		OccurredAt: at,
	}

	body, err := event.ToJSON()
	require.NoError(t, err)
	assert.Contains(t, string(body), `"type":"allocation.settled"`)

	back, err := FromJSON(body)
	require.NoError(t, err)
	assert.Equal(t, event.Type, back.Type)
	assert.Equal(t, "bob", back.MemberID)
	assert.True(t, at.Equal(back.OccurredAt))

	_, err = FromJSON([]byte("nope"))
	assert.Error(t, err)
}

func TestNopPublisher(t *testing.T) {
	var p Publisher = NopPublisher{}
	assert.NoError(t, p.Publish(context.Background(), Event{Type: ExpenseCreated}))
	assert.NoError(t, p.Close())
}
