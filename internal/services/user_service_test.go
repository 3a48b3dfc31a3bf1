package services

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tournament-arena/internal/auth"
	"tournament-arena/internal/models"
	"tournament-arena/internal/repository"
	"tournament-arena/internal/testutil"
)

func TestUserService_SyncUser(t *testing.T) {
	ctx := context.Background()
	db := testutil.SetupTestDB(t)
	svc := NewUserService(repository.NewRepository(db), []string{"founder"})

	t.Run("registers on first sign-in with zero balances", func(t *testing.T) {
		user, err := svc.SyncUser(ctx, &auth.Identity{UID: "alice", Email: "alice@example.com"}, "Alice")
		require.NoError(t, err)
		assert.Equal(t, "alice", user.UID)
		assert.Equal(t, "Alice", user.DisplayName)
		assert.Equal(t, models.RoleUser, user.Role)
		assert.True(t, user.AccountBalance.IsZero())
		assert.True(t, user.GameBalance.IsZero())
	})

	t.Run("refreshes identity without touching balance", func(t *testing.T) {
		require.NoError(t, db.Model(&models.User{}).Where("uid = ?", "alice").
			Update("account_balance", decimal.NewFromInt(75)).Error)

		user, err := svc.SyncUser(ctx, &auth.Identity{UID: "alice", Email: "new@example.com", EmailVerified: true}, "Ignored")
		require.NoError(t, err)
		assert.Equal(t, "new@example.com", user.Email)
		assert.True(t, user.EmailVerified)
		assert.Equal(t, "Alice", user.DisplayName)
		assertAmount(t, "75", user.AccountBalance)

		assert.Equal(t, int64(1), testutil.Count(t, db, &models.User{}, "uid = ?", "alice"))
	})

	t.Run("bootstrap admins get the admin role", func(t *testing.T) {
		user, err := svc.SyncUser(ctx, &auth.Identity{UID: "founder"}, "")
		require.NoError(t, err)
		assert.True(t, user.IsAdmin())
		assert.NotEmpty(t, user.DisplayName, "a gamer tag is generated when no name is given")
	})

	t.Run("requires an identity", func(t *testing.T) {
		_, err := svc.SyncUser(ctx, nil, "")
		assert.True(t, IsValidation(err))
	})
}

func TestUserService_GetUserAndTransactions(t *testing.T) {
	ctx := context.Background()
	db := testutil.SetupTestDB(t)
	repo := repository.NewRepository(db)
	svc := NewUserService(repo, nil)
	ledger := NewLedgerService(repo, nil)

	testutil.CreateUser(t, db, "alice", 100)
	testutil.CreateUser(t, db, "bob", 100)

	_, err := ledger.Withdraw(ctx, "alice", decimal.NewFromInt(10))
	require.NoError(t, err)
	_, err = ledger.Withdraw(ctx, "alice", decimal.NewFromInt(5))
	require.NoError(t, err)
	_, err = ledger.Withdraw(ctx, "bob", decimal.NewFromInt(1))
	require.NoError(t, err)

	_, err = svc.GetUser(ctx, "nobody")
	assert.ErrorIs(t, err, ErrUserNotFound)

	txns, total, err := svc.ListTransactions(ctx, "alice", 0, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	require.Len(t, txns, 2)
	for _, txn := range txns {
		assert.Equal(t, "alice", txn.UserUID)
	}
}
