package postgres

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/yawerky/houseOfGul-sub000/internal/domain"
	"github.com/yawerky/houseOfGul-sub000/internal/repository"
)

type productRepository struct {
	crudRepository[domain.Product, *domain.Product]
}

// NewProductRepository creates a new product repository
func NewProductRepository(db *gorm.DB, logger *zap.Logger) *productRepository {
	return &productRepository{newCRUDRepository[domain.Product, *domain.Product](db, logger, "product", "created_at DESC")}
}

func (r *productRepository) GetBySlug(ctx context.Context, slug string) (*domain.Product, error) {
	return r.first(ctx, slug, "slug = ?", slug)
}

func (r *productRepository) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]*domain.Product, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	return r.find(ctx, r.db.WithContext(ctx).Where("id IN ?", ids))
}

func (r *productRepository) ExistsBySlug(ctx context.Context, slug string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&domain.Product{}).Where("slug = ?", slug).Count(&count).Error; err != nil {
		r.logger.Error("Failed to check product slug", zap.String("slug", slug), zap.Error(err))
		return false, err
	}
	return count > 0, nil
}

// Search implements the public product query. Featured products come first.
func (r *productRepository) Search(ctx context.Context, f repository.ProductFilter) ([]*domain.Product, error) {
	q := r.db.WithContext(ctx).Model(&domain.Product{})
	if !f.IncludeOutOfStock {
		q = q.Where("in_stock = ?", true)
	}
	if f.CategorySlug != "" {
		q = q.Where("category_id IN (?)", r.db.Model(&domain.Category{}).Select("id").Where("slug = ?", f.CategorySlug))
	}
	if f.OccasionSlug != "" {
		q = q.Where("occasion_id IN (?)", r.db.Model(&domain.Occasion{}).Select("id").Where("slug = ?", f.OccasionSlug))
	}
	if f.Featured != nil {
		q = q.Where("featured = ?", *f.Featured)
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		pattern := "%" + escapeLike(strings.ToLower(s)) + "%"
		q = q.Where("(LOWER(name) LIKE ? ESCAPE '\\' OR LOWER(description) LIKE ? ESCAPE '\\')", pattern, pattern)
	}
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}

	var out []*domain.Product
	if err := q.Order("featured DESC").Order("created_at DESC").Find(&out).Error; err != nil {
		r.logger.Error("Failed to search products", zap.Error(err))
		return nil, err
	}
	return out, nil
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
