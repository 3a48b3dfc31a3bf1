package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// TransactionType identifies the ledger movement a Transaction records
type TransactionType string

const (
	TransactionTypeDeposit         TransactionType = "deposit"
	TransactionTypeWithdrawal      TransactionType = "withdrawal"
	TransactionTypeTournamentEntry TransactionType = "tournament_entry"
	TransactionTypeTournamentPrize TransactionType = "tournament_prize"
	TransactionTypeAdjustment      TransactionType = "admin_adjustment"
)

// TransactionStatus is the lifecycle state of a Transaction
type TransactionStatus string

const (
	TransactionStatusPending   TransactionStatus = "pending"
	TransactionStatusCompleted TransactionStatus = "completed"
	TransactionStatusFailed    TransactionStatus = "failed"
	TransactionStatusCancelled TransactionStatus = "cancelled"
	TransactionStatusExpired   TransactionStatus = "expired"
)

// IsTerminal reports whether no further transition is allowed
func (s TransactionStatus) IsTerminal() bool {
	return s != TransactionStatusPending
}

// SettleableDepositStatuses lists the deposit states a gateway payment
// confirmation may still complete. A local close never outranks the gateway.
func SettleableDepositStatuses() []TransactionStatus {
	return []TransactionStatus{
		TransactionStatusPending,
		TransactionStatusFailed,
		TransactionStatusCancelled,
		TransactionStatusExpired,
	}
}

// Wallet names a user balance column
type Wallet string

const (
	WalletAccount Wallet = "account"
	WalletGame    Wallet = "game"
)

// Column returns the users column backing the wallet
func (w Wallet) Column() string {
	if w == WalletGame {
		return "game_balance"
	}
	return "account_balance"
}

// IsValid reports whether w is a known wallet
func (w Wallet) IsValid() bool {
	return w == WalletAccount || w == WalletGame
}

// Transaction is an append-only ledger record. Amount is positive for every
// type except admin_adjustment, where the sign carries the direction.
type Transaction struct {
	ID                   uuid.UUID         `gorm:"type:uuid;primaryKey" json:"id"`
	UserUID              string            `gorm:"size:128;not null;index" json:"user_uid"`
	Amount               decimal.Decimal   `gorm:"type:decimal(18,2);not null" json:"amount"`
	Type                 TransactionType   `gorm:"size:32;not null;index" json:"type"`
	Status               TransactionStatus `gorm:"size:20;not null;index" json:"status"`
	Wallet               Wallet            `gorm:"size:20;not null;default:account" json:"wallet"`
	GatewayTransactionID *string           `gorm:"size:128;uniqueIndex" json:"gateway_transaction_id,omitempty"`
	TournamentID         *uint             `gorm:"index" json:"tournament_id,omitempty"`
	Description          string            `gorm:"type:text" json:"description"`
	CreatedAt            time.Time         `gorm:"index" json:"created_at"`
	UpdatedAt            time.Time         `json:"updated_at"`
}

// TableName specifies the table name for Transaction model
func (Transaction) TableName() string {
	return "transactions"
}

// BeforeCreate assigns the UUID primary key
func (t *Transaction) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	if t.Wallet == "" {
		t.Wallet = WalletAccount
	}
	return nil
}
