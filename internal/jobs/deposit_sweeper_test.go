package jobs

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"tournament-arena/internal/events"
	"tournament-arena/internal/models"
	"tournament-arena/internal/repository"
	"tournament-arena/internal/testutil"
)

func seedTransaction(t *testing.T, db *gorm.DB, txType models.TransactionType, status models.TransactionStatus, createdAt time.Time) *models.Transaction {
	t.Helper()
	txn := &models.Transaction{
		UserUID: "alice",
		Amount:  decimal.NewFromInt(50),
		Type:    txType,
		Status:  status,
	}
	require.NoError(t, db.Create(txn).Error)
	require.NoError(t, db.Model(txn).UpdateColumn("created_at", createdAt).Error)
	return txn
}

type capturePublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *capturePublisher) Publish(_ context.Context, event events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func statusOf(t *testing.T, db *gorm.DB, txn *models.Transaction) models.TransactionStatus {
	t.Helper()
	var stored models.Transaction
	require.NoError(t, db.First(&stored, "id = ?", txn.ID).Error)
	return stored.Status
}

func TestDepositSweeper_Sweep(t *testing.T) {
	db := testutil.SetupTestDB(t)
	now := time.Now()

	stale := seedTransaction(t, db, models.TransactionTypeDeposit, models.TransactionStatusPending, now.Add(-25*time.Hour))
	fresh := seedTransaction(t, db, models.TransactionTypeDeposit, models.TransactionStatusPending, now.Add(-time.Hour))
	completed := seedTransaction(t, db, models.TransactionTypeDeposit, models.TransactionStatusCompleted, now.Add(-48*time.Hour))
	withdrawal := seedTransaction(t, db, models.TransactionTypeWithdrawal, models.TransactionStatusPending, now.Add(-48*time.Hour))

	pub := &capturePublisher{}
	sweeper := NewDepositSweeper(repository.NewRepository(db), pub, 24*time.Hour, time.Minute)
	sweeper.now = func() time.Time { return now }

	expired, err := sweeper.Sweep(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), expired)

	assert.Equal(t, models.TransactionStatusExpired, statusOf(t, db, stale))
	assert.Equal(t, models.TransactionStatusPending, statusOf(t, db, fresh))
	assert.Equal(t, models.TransactionStatusCompleted, statusOf(t, db, completed))
	assert.Equal(t, models.TransactionStatusPending, statusOf(t, db, withdrawal))

	require.Len(t, pub.events, 1)
	assert.Equal(t, events.SubjectDepositFailed, pub.events[0].Type)
	assert.Equal(t, stale.ID.String(), pub.events[0].Reference)
	assert.Equal(t, "alice", pub.events[0].UserUID)
	assert.True(t, decimal.NewFromInt(50).Equal(pub.events[0].Amount))

	expired, err = sweeper.Sweep(context.Background())
	require.NoError(t, err)
	assert.Zero(t, expired)
	assert.Len(t, pub.events, 1)
}

func TestDepositSweeper_SweepWithoutPublisher(t *testing.T) {
	db := testutil.SetupTestDB(t)
	now := time.Now()
	stale := seedTransaction(t, db, models.TransactionTypeDeposit, models.TransactionStatusPending, now.Add(-2*time.Hour))

	sweeper := NewDepositSweeper(repository.NewRepository(db), nil, time.Hour, time.Minute)
	sweeper.now = func() time.Time { return now }

	expired, err := sweeper.Sweep(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), expired)
	assert.Equal(t, models.TransactionStatusExpired, statusOf(t, db, stale))
}

func TestDepositSweeper_StartStop(t *testing.T) {
	db := testutil.SetupTestDB(t)
	sweeper := NewDepositSweeper(repository.NewRepository(db), events.NewNoopPublisher(), time.Hour, time.Hour)

	require.NoError(t, sweeper.Start())
	assert.NoError(t, sweeper.Stop())

	idle := NewDepositSweeper(repository.NewRepository(db), events.NewNoopPublisher(), time.Hour, time.Hour)
	assert.NoError(t, idle.Stop())
}
