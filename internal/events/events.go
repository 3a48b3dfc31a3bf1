package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Subjects published on the message bus
const (
	SubjectTournamentJoined    = "tournament.joined"
	SubjectPrizeAwarded        = "tournament.prize.awarded"
	SubjectDepositCompleted    = "wallet.deposit.completed"
	SubjectDepositFailed       = "wallet.deposit.failed"
	SubjectWithdrawalCompleted = "wallet.withdrawal.completed"
	SubjectBalanceAdjusted     = "wallet.balance.adjusted"
)

// Event describes a committed ledger change
type Event struct {
	ID         string          `json:"id"`
	Type       string          `json:"type"`
	UserUID    string          `json:"user_uid"`
	Amount     decimal.Decimal `json:"amount"`
	Reference  string          `json:"reference,omitempty"`
	OccurredAt time.Time       `json:"occurred_at"`
}

// New creates an event of the given type stamped with a fresh id
func New(eventType, userUID string, amount decimal.Decimal, reference string) Event {
	return Event{
		ID:         uuid.NewString(),
		Type:       eventType,
		UserUID:    userUID,
		Amount:     amount,
		Reference:  reference,
		OccurredAt: time.Now().UTC(),
	}
}

// Encode serializes the event payload
func (e Event) Encode() ([]byte, error) {
	data, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("failed to encode event %s: %w", e.Type, err)
	}
	return data, nil
}

// Publisher delivers events to subscribers. Publishing is best effort and
// happens after the database transaction commits.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// NoopPublisher is a publisher that does nothing
type NoopPublisher struct{}

// NewNoopPublisher creates a new no-op publisher
func NewNoopPublisher() *NoopPublisher {
	return &NoopPublisher{}
}

// Publish does nothing with the event
func (n *NoopPublisher) Publish(ctx context.Context, event Event) error {
	return nil
}
