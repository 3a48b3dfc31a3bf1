package repository

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"tournament-arena/internal/models"
)

// GetUser retrieves a user by UID
func (r *Repository) GetUser(ctx context.Context, uid string) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).Where("uid = ?", uid).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// CreateUser inserts a new user
func (r *Repository) CreateUser(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

// UpdateUserIdentity refreshes the identity-provider attributes of a user
func (r *Repository) UpdateUserIdentity(ctx context.Context, uid, email string, emailVerified bool) error {
	return r.db.WithContext(ctx).Model(&models.User{}).
		Where("uid = ?", uid).
		Updates(map[string]interface{}{
			"email":          email,
			"email_verified": emailVerified,
		}).Error
}

// SetUserRole changes a user's role and reports whether the user exists
func (r *Repository) SetUserRole(ctx context.Context, uid string, role models.UserRole) (bool, error) {
	result := r.db.WithContext(ctx).Model(&models.User{}).
		Where("uid = ?", uid).
		Update("role", role)
	return result.RowsAffected > 0, result.Error
}

// ListUsers returns users matching an optional email/name search
func (r *Repository) ListUsers(ctx context.Context, search string, limit, offset int) ([]models.User, int64, error) {
	var users []models.User
	var total int64

	query := r.db.WithContext(ctx).Model(&models.User{})
	if search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		query = query.Where("LOWER(email) LIKE ? OR LOWER(display_name) LIKE ? OR uid = ?", pattern, pattern, search)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if err := query.Order("created_at DESC").Limit(limit).Offset(offset).Find(&users).Error; err != nil {
		return nil, 0, err
	}

	return users, total, nil
}

// CountUsers returns the number of registered users
func (r *Repository) CountUsers(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.User{}).Count(&count).Error
	return count, err
}

// DebitBalance subtracts amount from the wallet only if the balance covers it.
// Returns false when no row qualified (missing user or insufficient funds).
func (r *Repository) DebitBalance(ctx context.Context, uid string, wallet models.Wallet, amount decimal.Decimal) (bool, error) {
	column := wallet.Column()
	result := r.db.WithContext(ctx).Model(&models.User{}).
		Where("uid = ? AND "+column+" >= ?", uid, amount).
		Update(column, gorm.Expr(column+" - ?", amount))
	return result.RowsAffected == 1, result.Error
}

// CreditBalance adds amount to the wallet. Returns false when the user does not exist.
func (r *Repository) CreditBalance(ctx context.Context, uid string, wallet models.Wallet, amount decimal.Decimal) (bool, error) {
	column := wallet.Column()
	result := r.db.WithContext(ctx).Model(&models.User{}).
		Where("uid = ?", uid).
		Update(column, gorm.Expr(column+" + ?", amount))
	return result.RowsAffected == 1, result.Error
}
