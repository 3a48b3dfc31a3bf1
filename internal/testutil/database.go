package testutil

import (
	"fmt"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"tournament-arena/internal/database"
	"tournament-arena/internal/models"
)

var dbCounter atomic.Int64

// SetupTestDB opens a private in-memory SQLite database with the full schema.
// A single connection serializes concurrent callers the way row locks would.
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", name, dbCounter.Add(1))

	db, err := gorm.Open(sqlite.Open(dsn), database.Options())
	require.NoError(t, err, "failed to open test database")

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, database.AutoMigrate(db), "failed to migrate test database")

	t.Cleanup(func() {
		_ = sqlDB.Close()
	})
	return db
}

// CreateUser inserts a user with the given account balance
func CreateUser(t *testing.T, db *gorm.DB, uid string, balance int64) *models.User {
	t.Helper()

	user := &models.User{
		UID:            uid,
		Email:          uid + "@example.com",
		DisplayName:    uid,
		AccountBalance: decimal.NewFromInt(balance),
		GameBalance:    decimal.Zero,
		Role:           models.RoleUser,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

// CreateAdmin inserts a user holding the admin role
func CreateAdmin(t *testing.T, db *gorm.DB, uid string) *models.User {
	t.Helper()

	user := CreateUser(t, db, uid, 0)
	require.NoError(t, db.Model(user).Update("role", models.RoleAdmin).Error)
	user.Role = models.RoleAdmin
	return user
}

// TournamentOption customizes a seeded tournament
type TournamentOption func(*models.Tournament)

// WithMaxPlayers caps the tournament
func WithMaxPlayers(n int) TournamentOption {
	return func(t *models.Tournament) { t.MaxPlayers = &n }
}

// WithStatus sets the initial status
func WithStatus(status models.TournamentStatus) TournamentOption {
	return func(t *models.Tournament) { t.Status = status }
}

// CreateTournament inserts an upcoming tournament with the given entry fee
func CreateTournament(t *testing.T, db *gorm.DB, entryFee int64, opts ...TournamentOption) *models.Tournament {
	t.Helper()

	tournament := &models.Tournament{
		Title:     "Friday Night Cup",
		Category:  "fps",
		Date:      time.Now().Add(72 * time.Hour).UTC(),
		EntryFee:  decimal.NewFromInt(entryFee),
		PrizePool: decimal.NewFromInt(1000),
		Status:    models.TournamentStatusUpcoming,
	}
	for _, opt := range opts {
		opt(tournament)
	}
	require.NoError(t, db.Create(tournament).Error)
	return tournament
}

// Balance reloads a user's account balance
func Balance(t *testing.T, db *gorm.DB, uid string) decimal.Decimal {
	t.Helper()

	var user models.User
	require.NoError(t, db.First(&user, "uid = ?", uid).Error)
	return user.AccountBalance
}

// Count returns the number of rows in model matching the optional condition
func Count(t *testing.T, db *gorm.DB, model interface{}, query string, args ...interface{}) int64 {
	t.Helper()

	var n int64
	q := db.Model(model)
	if query != "" {
		q = q.Where(query, args...)
	}
	require.NoError(t, q.Count(&n).Error)
	return n
}
