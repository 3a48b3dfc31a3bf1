package repository

import (
	"context"

	"tournament-arena/internal/models"
)

// CreateAdminLog appends an audit record
func (r *Repository) CreateAdminLog(ctx context.Context, entry *models.AdminLog) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

// ListAdminLogs returns audit records newest first
func (r *Repository) ListAdminLogs(ctx context.Context, limit, offset int) ([]models.AdminLog, error) {
	var logs []models.AdminLog
	err := r.db.WithContext(ctx).
		Order("created_at DESC, id DESC").
		Limit(limit).Offset(offset).
		Find(&logs).Error
	return logs, err
}

// ListAlerts returns alerts newest first, optionally only active ones
func (r *Repository) ListAlerts(ctx context.Context, activeOnly bool) ([]models.Alert, error) {
	var alerts []models.Alert
	query := r.db.WithContext(ctx)
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}
	err := query.Order("created_at DESC, id DESC").Find(&alerts).Error
	return alerts, err
}

// GetAlert retrieves an alert by ID
func (r *Repository) GetAlert(ctx context.Context, id uint) (*models.Alert, error) {
	var alert models.Alert
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&alert).Error; err != nil {
		return nil, err
	}
	return &alert, nil
}

// CreateAlert inserts an alert
func (r *Repository) CreateAlert(ctx context.Context, alert *models.Alert) error {
	return r.db.WithContext(ctx).Create(alert).Error
}

// SaveAlert persists every column of an alert
func (r *Repository) SaveAlert(ctx context.Context, alert *models.Alert) error {
	return r.db.WithContext(ctx).Save(alert).Error
}

// DeleteAlert removes an alert and reports whether it existed
func (r *Repository) DeleteAlert(ctx context.Context, id uint) (bool, error) {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Alert{})
	return result.RowsAffected == 1, result.Error
}
