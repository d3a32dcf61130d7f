package postgres

import (
	"context"
	stderrors "errors"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/yawerky/houseOfGul-sub000/internal/domain"
	"github.com/yawerky/houseOfGul-sub000/pkg/errors"
)

type adminUserRepository struct {
	db     *gorm.DB
	logger *zap.Logger
}

func NewAdminUserRepository(db *gorm.DB, logger *zap.Logger) *adminUserRepository {
	return &adminUserRepository{db: db, logger: logger}
}

func (r *adminUserRepository) Create(ctx context.Context, user *domain.AdminUser) error {
	user.EnsureID()
	user.Email = strings.ToLower(strings.TrimSpace(user.Email))
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		if isUniqueViolation(err) {
			return &errors.ErrConflict{Message: "admin user already exists"}
		}
		r.logger.Error("Failed to create admin user", zap.String("email", user.Email), zap.Error(err))
		return err
	}
	return nil
}

func (r *adminUserRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.AdminUser, error) {
	return r.first(ctx, id.String(), "id = ?", id)
}

func (r *adminUserRepository) GetByEmail(ctx context.Context, email string) (*domain.AdminUser, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	return r.first(ctx, email, "email = ?", email)
}

func (r *adminUserRepository) List(ctx context.Context) ([]*domain.AdminUser, error) {
	var users []*domain.AdminUser
	if err := r.db.WithContext(ctx).Order("email ASC").Find(&users).Error; err != nil {
		r.logger.Error("Failed to list admin users", zap.Error(err))
		return nil, err
	}
	return users, nil
}

func (r *adminUserRepository) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	res := r.db.WithContext(ctx).Model(&domain.AdminUser{}).Where("id = ?", id).Update("is_active", active)
	if res.Error != nil {
		r.logger.Error("Failed to update admin user", zap.String("id", id.String()), zap.Error(res.Error))
		return res.Error
	}
	if res.RowsAffected == 0 {
		return &errors.ErrNotFound{Resource: "admin user", ID: id.String()}
	}
	return nil
}

func (r *adminUserRepository) first(ctx context.Context, key, query string, args ...interface{}) (*domain.AdminUser, error) {
	var user domain.AdminUser
	err := r.db.WithContext(ctx).Where(query, args...).First(&user).Error
	if stderrors.Is(err, gorm.ErrRecordNotFound) {
		return nil, &errors.ErrNotFound{Resource: "admin user", ID: key}
	}
	if err != nil {
		r.logger.Error("Failed to get admin user", zap.Error(err))
		return nil, err
	}
	return &user, nil
}
