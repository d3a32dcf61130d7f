package postgres

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/yawerky/houseOfGul-sub000/internal/domain"
)

type cartRepository struct {
	db     *gorm.DB
	logger *zap.Logger
}

func NewCartRepository(db *gorm.DB, logger *zap.Logger) *cartRepository {
	return &cartRepository{db: db, logger: logger}
}

func (r *cartRepository) Get(ctx context.Context, sessionID uuid.UUID) (*domain.CartSession, error) {
	var cart domain.CartSession
	err := r.db.WithContext(ctx).Where("id = ?", sessionID).First(&cart).Error
	if stderrors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to load cart", zap.String("session_id", sessionID.String()), zap.Error(err))
		return nil, err
	}
	return &cart, nil
}

// Save replaces the stored cart for the session
func (r *cartRepository) Save(ctx context.Context, cart *domain.CartSession) error {
	cart.UpdatedAt = time.Now()
	if err := r.db.WithContext(ctx).Save(cart).Error; err != nil {
		r.logger.Error("Failed to save cart", zap.String("session_id", cart.ID.String()), zap.Error(err))
		return err
	}
	return nil
}

func (r *cartRepository) Delete(ctx context.Context, sessionID uuid.UUID) error {
	if err := r.db.WithContext(ctx).Delete(&domain.CartSession{}, "id = ?", sessionID).Error; err != nil {
		r.logger.Error("Failed to delete cart", zap.String("session_id", sessionID.String()), zap.Error(err))
		return err
	}
	return nil
}
