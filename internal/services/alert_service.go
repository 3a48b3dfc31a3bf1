package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"tournament-arena/internal/models"
	"tournament-arena/internal/repository"
)

// AlertInput carries admin-editable alert fields
type AlertInput struct {
	Title    string `json:"title"`
	Message  string `json:"message"`
	IsActive *bool  `json:"is_active"`
}

// AlertService manages broadcast alerts
type AlertService struct {
	repo *repository.Repository
}

// NewAlertService creates a new AlertService
func NewAlertService(repo *repository.Repository) *AlertService {
	return &AlertService{repo: repo}
}

// ListActive returns alerts visible to users
func (s *AlertService) ListActive(ctx context.Context) ([]models.Alert, error) {
	return s.repo.ListAlerts(ctx, true)
}

// ListAll returns every alert for the admin panel
func (s *AlertService) ListAll(ctx context.Context) ([]models.Alert, error) {
	return s.repo.ListAlerts(ctx, false)
}

// Create publishes a new alert. Alerts start active unless stated otherwise.
func (s *AlertService) Create(ctx context.Context, adminUID string, in AlertInput) (*models.Alert, error) {
	message := strings.TrimSpace(in.Message)
	if message == "" {
		return nil, validationf("message is required")
	}

	alert := &models.Alert{
		Title:     strings.TrimSpace(in.Title),
		Message:   message,
		IsActive:  in.IsActive == nil || *in.IsActive,
		CreatedBy: adminUID,
	}

	err := s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		if err := tx.CreateAlert(ctx, alert); err != nil {
			return fmt.Errorf("failed to create alert: %w", err)
		}
		return logAdminAction(ctx, tx, adminUID, models.ActionCreateAlert, "ALERT", fmt.Sprint(alert.ID), models.JSONB{
			"title": alert.Title,
		})
	})
	if err != nil {
		return nil, err
	}
	return alert, nil
}

// Update edits an alert. Empty fields keep their current value.
func (s *AlertService) Update(ctx context.Context, adminUID string, id uint, in AlertInput) (*models.Alert, error) {
	var alert *models.Alert
	err := s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		var err error
		alert, err = tx.GetAlert(ctx, id)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrAlertNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to load alert: %w", err)
		}

		if title := strings.TrimSpace(in.Title); title != "" {
			alert.Title = title
		}
		if message := strings.TrimSpace(in.Message); message != "" {
			alert.Message = message
		}
		if in.IsActive != nil {
			alert.IsActive = *in.IsActive
		}

		if err := tx.SaveAlert(ctx, alert); err != nil {
			return fmt.Errorf("failed to update alert: %w", err)
		}
		return logAdminAction(ctx, tx, adminUID, models.ActionUpdateAlert, "ALERT", fmt.Sprint(id), models.JSONB{
			"is_active": alert.IsActive,
		})
	})
	if err != nil {
		return nil, err
	}
	return alert, nil
}

// Delete removes an alert
func (s *AlertService) Delete(ctx context.Context, adminUID string, id uint) error {
	return s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		deleted, err := tx.DeleteAlert(ctx, id)
		if err != nil {
			return fmt.Errorf("failed to delete alert: %w", err)
		}
		if !deleted {
			return ErrAlertNotFound
		}
		return logAdminAction(ctx, tx, adminUID, models.ActionDeleteAlert, "ALERT", fmt.Sprint(id), nil)
	})
}
