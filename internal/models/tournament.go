package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// TournamentStatus is the lifecycle state of a Tournament
type TournamentStatus string

const (
	TournamentStatusUpcoming  TournamentStatus = "upcoming"
	TournamentStatusStarted   TournamentStatus = "started"
	TournamentStatusCompleted TournamentStatus = "completed"
	TournamentStatusCancelled TournamentStatus = "cancelled"
)

// IsValid reports whether s is a known status
func (s TournamentStatus) IsValid() bool {
	switch s {
	case TournamentStatusUpcoming, TournamentStatusStarted, TournamentStatusCompleted, TournamentStatusCancelled:
		return true
	}
	return false
}

// CanTransitionTo enforces upcoming -> started -> completed, with
// cancellation allowed from upcoming or started.
func (s TournamentStatus) CanTransitionTo(next TournamentStatus) bool {
	switch s {
	case TournamentStatusUpcoming:
		return next == TournamentStatusStarted || next == TournamentStatusCancelled
	case TournamentStatusStarted:
		return next == TournamentStatusCompleted || next == TournamentStatusCancelled
	}
	return false
}

// Tournament is a scheduled competition users can join for an entry fee.
// JoinedPlayers always equals the number of TournamentPlayer rows.
type Tournament struct {
	ID            uint             `gorm:"primaryKey" json:"id"`
	Title         string           `gorm:"size:255;not null" json:"title"`
	Description   string           `gorm:"type:text" json:"description"`
	Category      string           `gorm:"size:50;index" json:"category"`
	Date          time.Time        `gorm:"not null;index" json:"date"`
	EntryFee      decimal.Decimal  `gorm:"type:decimal(18,2);not null;default:0" json:"entry_fee"`
	PrizePool     decimal.Decimal  `gorm:"type:decimal(18,2);not null;default:0" json:"prize_pool"`
	Status        TournamentStatus `gorm:"size:20;not null;default:upcoming;index" json:"status"`
	JoinedPlayers int              `gorm:"not null;default:0" json:"joined_players"`
	MaxPlayers    *int             `json:"max_players,omitempty"`
	CreatedBy     string           `gorm:"size:128" json:"created_by"`
	CreatedAt     time.Time        `json:"created_at"`
	UpdatedAt     time.Time        `json:"updated_at"`
}

// TableName specifies the table name for Tournament model
func (Tournament) TableName() string {
	return "tournaments"
}

// IsFull reports whether the player cap has been reached
func (t *Tournament) IsFull() bool {
	return t.MaxPlayers != nil && t.JoinedPlayers >= *t.MaxPlayers
}

// TournamentPlayer records a user's participation in a tournament
type TournamentPlayer struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	UserUID      string    `gorm:"size:128;not null;uniqueIndex:idx_tournament_players_user_tournament" json:"user_uid"`
	TournamentID uint      `gorm:"not null;uniqueIndex:idx_tournament_players_user_tournament;index" json:"tournament_id"`
	GameName     string    `gorm:"size:64;not null" json:"game_name"`
	CreatedAt    time.Time `json:"created_at"`
}

// TableName specifies the table name for TournamentPlayer model
func (TournamentPlayer) TableName() string {
	return "tournament_players"
}
