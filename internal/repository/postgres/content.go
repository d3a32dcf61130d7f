package postgres

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/yawerky/houseOfGul-sub000/internal/domain"
	"github.com/yawerky/houseOfGul-sub000/pkg/errors"
)

type categoryRepository struct {
	crudRepository[domain.Category, *domain.Category]
}

func NewCategoryRepository(db *gorm.DB, logger *zap.Logger) *categoryRepository {
	return &categoryRepository{newCRUDRepository[domain.Category, *domain.Category](db, logger, "category", "name ASC")}
}

func (r *categoryRepository) GetBySlug(ctx context.Context, slug string) (*domain.Category, error) {
	return r.first(ctx, slug, "slug = ?", slug)
}

func (r *categoryRepository) GetByNameOrSlug(ctx context.Context, value string) (*domain.Category, error) {
	v := strings.ToLower(strings.TrimSpace(value))
	return r.first(ctx, value, "LOWER(slug) = ? OR LOWER(name) = ?", v, v)
}

type occasionRepository struct {
	crudRepository[domain.Occasion, *domain.Occasion]
}

func NewOccasionRepository(db *gorm.DB, logger *zap.Logger) *occasionRepository {
	return &occasionRepository{newCRUDRepository[domain.Occasion, *domain.Occasion](db, logger, "occasion", "name ASC")}
}

func (r *occasionRepository) GetBySlug(ctx context.Context, slug string) (*domain.Occasion, error) {
	return r.first(ctx, slug, "slug = ?", slug)
}

type blogPostRepository struct {
	crudRepository[domain.BlogPost, *domain.BlogPost]
}

func NewBlogPostRepository(db *gorm.DB, logger *zap.Logger) *blogPostRepository {
	return &blogPostRepository{newCRUDRepository[domain.BlogPost, *domain.BlogPost](db, logger, "blog post", "created_at DESC")}
}

func (r *blogPostRepository) GetBySlug(ctx context.Context, slug string) (*domain.BlogPost, error) {
	return r.first(ctx, slug, "slug = ?", slug)
}

func (r *blogPostRepository) ListPublished(ctx context.Context, limit int) ([]*domain.BlogPost, error) {
	q := r.db.WithContext(ctx).Where("published = ?", true).Order("published_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	var out []*domain.BlogPost
	if err := q.Find(&out).Error; err != nil {
		r.logger.Error("Failed to list published blog posts", zap.Error(err))
		return nil, err
	}
	return out, nil
}

type bannerRepository struct {
	crudRepository[domain.Banner, *domain.Banner]
}

func NewBannerRepository(db *gorm.DB, logger *zap.Logger) *bannerRepository {
	return &bannerRepository{newCRUDRepository[domain.Banner, *domain.Banner](db, logger, "banner", "position ASC")}
}

func (r *bannerRepository) ListActive(ctx context.Context) ([]*domain.Banner, error) {
	return r.find(ctx, r.db.WithContext(ctx).Where("is_active = ?", true))
}

type testimonialRepository struct {
	crudRepository[domain.Testimonial, *domain.Testimonial]
}

func NewTestimonialRepository(db *gorm.DB, logger *zap.Logger) *testimonialRepository {
	return &testimonialRepository{newCRUDRepository[domain.Testimonial, *domain.Testimonial](db, logger, "testimonial", "created_at DESC")}
}

func (r *testimonialRepository) ListActive(ctx context.Context) ([]*domain.Testimonial, error) {
	return r.find(ctx, r.db.WithContext(ctx).Where("is_active = ?", true))
}

type inquiryRepository struct {
	crudRepository[domain.Inquiry, *domain.Inquiry]
}

func NewInquiryRepository(db *gorm.DB, logger *zap.Logger) *inquiryRepository {
	return &inquiryRepository{newCRUDRepository[domain.Inquiry, *domain.Inquiry](db, logger, "inquiry", "created_at DESC")}
}

func (r *inquiryRepository) MarkRead(ctx context.Context, id uuid.UUID, read bool) error {
	res := r.db.WithContext(ctx).Model(&domain.Inquiry{}).Where("id = ?", id).Update("is_read", read)
	if res.Error != nil {
		r.logger.Error("Failed to mark inquiry", zap.String("id", id.String()), zap.Error(res.Error))
		return res.Error
	}
	if res.RowsAffected == 0 {
		return &errors.ErrNotFound{Resource: "inquiry", ID: id.String()}
	}
	return nil
}
