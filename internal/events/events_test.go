package events

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvent_Encode(t *testing.T) {
	event := New(SubjectDepositCompleted, "alice", decimal.RequireFromString("12.50"), "txn-1")
	assert.NotEmpty(t, event.ID)
	assert.False(t, event.OccurredAt.IsZero())

	data, err := event.Encode()
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "wallet.deposit.completed", decoded["type"])
	assert.Equal(t, "alice", decoded["user_uid"])
	assert.Equal(t, "12.5", decoded["amount"])
	assert.Equal(t, "txn-1", decoded["reference"])
	assert.Contains(t, decoded, "occurred_at")
}

func TestNoopPublisher(t *testing.T) {
	var p Publisher = NewNoopPublisher()
	assert.NoError(t, p.Publish(context.Background(), New(SubjectTournamentJoined, "alice", decimal.Zero, "1")))
}
