package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"tournament-arena/internal/auth"
	"tournament-arena/internal/models"
	"tournament-arena/internal/repository"
	"tournament-arena/internal/utils"
)

// UserService handles user-related business logic
type UserService struct {
	repo            *repository.Repository
	bootstrapAdmins map[string]struct{}
}

// NewUserService creates a new UserService. Users whose UID is listed in
// bootstrapAdmins are created with the admin role.
func NewUserService(repo *repository.Repository, bootstrapAdmins []string) *UserService {
	admins := make(map[string]struct{}, len(bootstrapAdmins))
	for _, uid := range bootstrapAdmins {
		admins[uid] = struct{}{}
	}
	return &UserService{repo: repo, bootstrapAdmins: admins}
}

// SyncUser creates the user on first sign-in and refreshes identity attributes
// afterwards. Balances are never touched.
func (s *UserService) SyncUser(ctx context.Context, identity *auth.Identity, displayName string) (*models.User, error) {
	if identity == nil || identity.UID == "" {
		return nil, validationf("identity is required")
	}

	user, err := s.repo.GetUser(ctx, identity.UID)
	if err == nil {
		if user.Email != identity.Email || user.EmailVerified != identity.EmailVerified {
			if err := s.repo.UpdateUserIdentity(ctx, identity.UID, identity.Email, identity.EmailVerified); err != nil {
				return nil, fmt.Errorf("failed to refresh user: %w", err)
			}
			user.Email = identity.Email
			user.EmailVerified = identity.EmailVerified
		}
		return user, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	role := models.RoleUser
	if _, ok := s.bootstrapAdmins[identity.UID]; ok {
		role = models.RoleAdmin
	}

	if displayName == "" {
		if displayName, err = utils.GenerateGamerTag(); err != nil {
			return nil, err
		}
	}

	user = &models.User{
		UID:            identity.UID,
		Email:          identity.Email,
		DisplayName:    displayName,
		AccountBalance: decimal.Zero,
		GameBalance:    decimal.Zero,
		Role:           role,
		EmailVerified:  identity.EmailVerified,
	}
	if err := s.repo.CreateUser(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// Concurrent first sign-in created it
			return s.GetUser(ctx, identity.UID)
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	log.WithFields(log.Fields{"user_uid": user.UID, "role": user.Role}).Info("User registered")
	return user, nil
}

// GetUser retrieves a user by UID
func (s *UserService) GetUser(ctx context.Context, uid string) (*models.User, error) {
	user, err := s.repo.GetUser(ctx, uid)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}

// ListTransactions returns the user's ledger history, newest first
func (s *UserService) ListTransactions(ctx context.Context, uid string, limit, offset int) ([]models.Transaction, int64, error) {
	limit, offset = repository.Page(limit, offset, 100)
	return s.repo.ListTransactions(ctx, repository.TransactionFilter{
		UserUID: uid,
		Limit:   limit,
		Offset:  offset,
	})
}
