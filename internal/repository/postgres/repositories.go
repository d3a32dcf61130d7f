package postgres

import (
	"context"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/yawerky/houseOfGul-sub000/internal/repository"
)

// NewRepositories creates a new set of repositories
func NewRepositories(db *gorm.DB, logger *zap.Logger) *repository.Repositories {
	return &repository.Repositories{
		Product:        NewProductRepository(db, logger),
		Category:       NewCategoryRepository(db, logger),
		Occasion:       NewOccasionRepository(db, logger),
		BlogPost:       NewBlogPostRepository(db, logger),
		Banner:         NewBannerRepository(db, logger),
		Testimonial:    NewTestimonialRepository(db, logger),
		Inquiry:        NewInquiryRepository(db, logger),
		Coupon:         NewCouponRepository(db, logger),
		Pincode:        NewPincodeRepository(db, logger),
		Order:          NewOrderRepository(db, logger),
		OrderEvent:     NewOrderEventRepository(db, logger),
		IdempotencyKey: NewIdempotencyKeyRepository(db, logger),
		AdminUser:      NewAdminUserRepository(db, logger),
		Cart:           NewCartRepository(db, logger),
		Transactor:     &transactor{db: db, logger: logger},
	}
}

type transactor struct {
	db     *gorm.DB
	logger *zap.Logger
}

func (t *transactor) WithinTransaction(ctx context.Context, fn func(tx *repository.Repositories) error) error {
	return t.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewRepositories(tx, t.logger))
	})
}
