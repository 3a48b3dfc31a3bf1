package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// UserRole controls access to the admin surface
type UserRole string

const (
	RoleUser  UserRole = "user"
	RoleAdmin UserRole = "admin"
)

// IsValid reports whether r is a known role
func (r UserRole) IsValid() bool {
	return r == RoleUser || r == RoleAdmin
}

// User is keyed by the identity provider's UID.
// Balances are only mutated through the ledger services.
type User struct {
	UID            string          `gorm:"primaryKey;size:128" json:"uid"`
	Email          string          `gorm:"size:255;index" json:"email"`
	DisplayName    string          `gorm:"size:100" json:"display_name"`
	AccountBalance decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0" json:"account_balance"`
	GameBalance    decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0" json:"game_balance"`
	Role           UserRole        `gorm:"size:20;not null;default:user;index" json:"role"`
	EmailVerified  bool            `gorm:"default:false" json:"email_verified"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// TableName specifies the table name for User model
func (User) TableName() string {
	return "users"
}

// IsAdmin reports whether the user holds the admin role
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
