package postgres

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/yawerky/houseOfGul-sub000/internal/domain"
)

type couponRepository struct {
	crudRepository[domain.Coupon, *domain.Coupon]
}

// NewCouponRepository creates a new coupon repository
func NewCouponRepository(db *gorm.DB, logger *zap.Logger) *couponRepository {
	crud := newCRUDRepository[domain.Coupon, *domain.Coupon](db, logger, "coupon", "created_at DESC")
	// used_count only moves through IncrementUsage
	crud.readOnly = []string{"used_count"}
	return &couponRepository{crud}
}

func (r *couponRepository) GetByCode(ctx context.Context, code string) (*domain.Coupon, error) {
	return r.first(ctx, code, "code = ?", code)
}

// IncrementUsage is a single conditional UPDATE so two checkouts racing for the
// last use cannot both succeed.
func (r *couponRepository) IncrementUsage(ctx context.Context, id uuid.UUID) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&domain.Coupon{}).
		Where("id = ? AND (usage_limit IS NULL OR used_count < usage_limit)", id).
		UpdateColumn("used_count", gorm.Expr("used_count + 1"))
	if res.Error != nil {
		r.logger.Error("Failed to increment coupon usage", zap.String("coupon_id", id.String()), zap.Error(res.Error))
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}
