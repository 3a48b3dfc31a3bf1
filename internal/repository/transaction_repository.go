package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"tournament-arena/internal/models"
)

// TransactionFilter narrows transaction listings
type TransactionFilter struct {
	UserUID string
	Type    models.TransactionType
	Status  models.TransactionStatus
	Limit   int
	Offset  int
}

// CreateTransaction appends a ledger record
func (r *Repository) CreateTransaction(ctx context.Context, txn *models.Transaction) error {
	return r.db.WithContext(ctx).Create(txn).Error
}

// GetTransaction retrieves a transaction by ID
func (r *Repository) GetTransaction(ctx context.Context, id uuid.UUID) (*models.Transaction, error) {
	var txn models.Transaction
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&txn).Error
	if err != nil {
		return nil, err
	}
	return &txn, nil
}

// TransitionTransaction moves a transaction out of status from. Extra column
// updates are applied in the same statement. Returns false when the
// transaction was no longer in status from.
func (r *Repository) TransitionTransaction(ctx context.Context, id uuid.UUID, from, to models.TransactionStatus, updates map[string]interface{}) (bool, error) {
	return r.TransitionTransactionFrom(ctx, id, []models.TransactionStatus{from}, to, updates)
}

// TransitionTransactionFrom is TransitionTransaction accepting any of several source statuses
func (r *Repository) TransitionTransactionFrom(ctx context.Context, id uuid.UUID, from []models.TransactionStatus, to models.TransactionStatus, updates map[string]interface{}) (bool, error) {
	fields := map[string]interface{}{"status": to}
	for k, v := range updates {
		fields[k] = v
	}

	result := r.db.WithContext(ctx).Model(&models.Transaction{}).
		Where("id = ? AND status IN ?", id, from).
		Updates(fields)
	return result.RowsAffected == 1, result.Error
}

// ListTransactions returns transactions newest first
func (r *Repository) ListTransactions(ctx context.Context, filter TransactionFilter) ([]models.Transaction, int64, error) {
	var txns []models.Transaction
	var total int64

	query := r.db.WithContext(ctx).Model(&models.Transaction{})
	if filter.UserUID != "" {
		query = query.Where("user_uid = ?", filter.UserUID)
	}
	if filter.Type != "" {
		query = query.Where("type = ?", filter.Type)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if err := query.Order("created_at DESC").Limit(filter.Limit).Offset(filter.Offset).Find(&txns).Error; err != nil {
		return nil, 0, err
	}

	return txns, total, nil
}

// ExpirePendingDeposits marks deposits still pending before cutoff as expired
// and returns the rows it changed. Each row moves with its own conditional
// update so a webhook landing mid-sweep wins.
func (r *Repository) ExpirePendingDeposits(ctx context.Context, cutoff time.Time) ([]models.Transaction, error) {
	var stale []models.Transaction
	err := r.db.WithContext(ctx).
		Where("type = ? AND status = ? AND created_at < ?",
			models.TransactionTypeDeposit, models.TransactionStatusPending, cutoff).
		Order("created_at ASC").
		Find(&stale).Error
	if err != nil {
		return nil, err
	}

	expired := make([]models.Transaction, 0, len(stale))
	for _, txn := range stale {
		ok, err := r.TransitionTransaction(ctx, txn.ID, models.TransactionStatusPending, models.TransactionStatusExpired,
			map[string]interface{}{"description": "Deposit expired without gateway confirmation"})
		if err != nil {
			return expired, err
		}
		if ok {
			txn.Status = models.TransactionStatusExpired
			expired = append(expired, txn)
		}
	}
	return expired, nil
}

// SumTransactions totals amounts of the given type and status
func (r *Repository) SumTransactions(ctx context.Context, txType models.TransactionType, status models.TransactionStatus) (decimal.Decimal, error) {
	var total decimal.Decimal
	row := r.db.WithContext(ctx).Model(&models.Transaction{}).
		Select("COALESCE(SUM(amount), 0)").
		Where("type = ? AND status = ?", txType, status).
		Row()
	if err := row.Scan(&total); err != nil {
		return decimal.Zero, err
	}
	return total, nil
}

// CountTransactions counts transactions of the given type and status
func (r *Repository) CountTransactions(ctx context.Context, txType models.TransactionType, status models.TransactionStatus) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Transaction{}).
		Where("type = ? AND status = ?", txType, status).
		Count(&count).Error
	return count, err
}
