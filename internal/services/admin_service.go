package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"tournament-arena/internal/models"
	"tournament-arena/internal/repository"
)

// Dashboard summarizes platform activity for admins
type Dashboard struct {
	TotalUsers          int64                             `json:"total_users"`
	TournamentsByStatus map[models.TournamentStatus]int64 `json:"tournaments_by_status"`
	DepositVolume       decimal.Decimal                   `json:"deposit_volume"`
	WithdrawalVolume    decimal.Decimal                   `json:"withdrawal_volume"`
	PendingDeposits     int64                             `json:"pending_deposits"`
	RecentLogs          []models.AdminLog                 `json:"recent_logs"`
}

type AdminService struct {
	repo *repository.Repository
}

func NewAdminService(repo *repository.Repository) *AdminService {
	return &AdminService{repo: repo}
}

// IsAdmin checks the stored role of a user
func (s *AdminService) IsAdmin(ctx context.Context, uid string) (bool, error) {
	user, err := s.repo.GetUser(ctx, uid)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, ErrUserNotFound
	}
	if err != nil {
		return false, err
	}
	return user.IsAdmin(), nil
}

// SetRole grants or revokes the admin role
func (s *AdminService) SetRole(ctx context.Context, adminUID, targetUID string, role models.UserRole) error {
	if !role.IsValid() {
		return validationf("unknown role %q", role)
	}
	if adminUID == targetUID && role != models.RoleAdmin {
		return validationf("admins cannot revoke their own role")
	}

	err := s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		found, err := tx.SetUserRole(ctx, targetUID, role)
		if err != nil {
			return fmt.Errorf("failed to set role: %w", err)
		}
		if !found {
			return ErrUserNotFound
		}
		return logAdminAction(ctx, tx, adminUID, models.ActionSetRole, "USER", targetUID, models.JSONB{
			"role": string(role),
		})
	})
	if err != nil {
		return err
	}

	log.WithFields(log.Fields{"user_uid": targetUID, "role": role, "admin_uid": adminUID}).Info("User role changed")
	return nil
}

// GetAllUsers returns users with optional search
func (s *AdminService) GetAllUsers(ctx context.Context, search string, limit, offset int) ([]models.User, int64, error) {
	limit, offset = repository.Page(limit, offset, 100)
	return s.repo.ListUsers(ctx, search, limit, offset)
}

// GetTransactions returns ledger records across all users
func (s *AdminService) GetTransactions(ctx context.Context, filter repository.TransactionFilter) ([]models.Transaction, int64, error) {
	filter.Limit, filter.Offset = repository.Page(filter.Limit, filter.Offset, 200)
	return s.repo.ListTransactions(ctx, filter)
}

// GetAdminLogs returns admin activity logs
func (s *AdminService) GetAdminLogs(ctx context.Context, limit, offset int) ([]models.AdminLog, error) {
	limit, offset = repository.Page(limit, offset, 200)
	return s.repo.ListAdminLogs(ctx, limit, offset)
}

// GetDashboard aggregates the admin dashboard figures
func (s *AdminService) GetDashboard(ctx context.Context) (*Dashboard, error) {
	var (
		d   Dashboard
		err error
	)

	if d.TotalUsers, err = s.repo.CountUsers(ctx); err != nil {
		return nil, fmt.Errorf("failed to count users: %w", err)
	}
	if d.TournamentsByStatus, err = s.repo.CountTournamentsByStatus(ctx); err != nil {
		return nil, fmt.Errorf("failed to count tournaments: %w", err)
	}
	if d.DepositVolume, err = s.repo.SumTransactions(ctx, models.TransactionTypeDeposit, models.TransactionStatusCompleted); err != nil {
		return nil, fmt.Errorf("failed to sum deposits: %w", err)
	}
	if d.WithdrawalVolume, err = s.repo.SumTransactions(ctx, models.TransactionTypeWithdrawal, models.TransactionStatusCompleted); err != nil {
		return nil, fmt.Errorf("failed to sum withdrawals: %w", err)
	}
	if d.PendingDeposits, err = s.repo.CountTransactions(ctx, models.TransactionTypeDeposit, models.TransactionStatusPending); err != nil {
		return nil, fmt.Errorf("failed to count pending deposits: %w", err)
	}
	if d.RecentLogs, err = s.repo.ListAdminLogs(ctx, 10, 0); err != nil {
		return nil, fmt.Errorf("failed to load admin logs: %w", err)
	}

	return &d, nil
}

// logAdminAction logs an admin action inside the caller's transaction
func logAdminAction(ctx context.Context, tx *repository.Repository, adminUID, action, resourceType, resourceID string, details models.JSONB) error {
	if err := tx.CreateAdminLog(ctx, &models.AdminLog{
		AdminUID:     adminUID,
		Action:       action,
		ResourceType: resourceType,
		ResourceID:   resourceID,
		Details:      details,
	}); err != nil {
		return fmt.Errorf("failed to write admin log: %w", err)
	}
	return nil
}
