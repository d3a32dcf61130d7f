package postgres

import (
	"context"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/yawerky/houseOfGul-sub000/internal/domain"
)

type pincodeRepository struct {
	crudRepository[domain.Pincode, *domain.Pincode]
}

// NewPincodeRepository creates a new pincode directory repository
func NewPincodeRepository(db *gorm.DB, logger *zap.Logger) *pincodeRepository {
	return &pincodeRepository{newCRUDRepository[domain.Pincode, *domain.Pincode](db, logger, "pincode", "code ASC")}
}

func (r *pincodeRepository) GetByCode(ctx context.Context, code string) (*domain.Pincode, error) {
	return r.first(ctx, code, "code = ?", code)
}

func (r *pincodeRepository) Search(ctx context.Context, query string, limit, offset int) ([]*domain.Pincode, error) {
	q := r.db.WithContext(ctx)
	if s := strings.TrimSpace(query); s != "" {
		pattern := "%" + escapeLike(strings.ToLower(s)) + "%"
		q = q.Where("(code LIKE ? ESCAPE '\\' OR LOWER(city) LIKE ? ESCAPE '\\' OR LOWER(area) LIKE ? ESCAPE '\\')", pattern, pattern, pattern)
	}
	if limit > 0 {
		q = q.Limit(limit)
	}
	if offset > 0 {
		q = q.Offset(offset)
	}
	return r.find(ctx, q)
}

// Upsert keys on code; an existing row keeps its id and creation time
func (r *pincodeRepository) Upsert(ctx context.Context, p *domain.Pincode) error {
	p.EnsureID()
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "code"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"area", "city", "state", "delivery_zone", "delivery_charge", "min_order_free", "is_active", "updated_at",
		}),
	}).Create(p).Error
	if err != nil {
		r.logger.Error("Failed to upsert pincode", zap.String("code", p.Code), zap.Error(err))
		return err
	}
	return nil
}
