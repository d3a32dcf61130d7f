package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/yawerky/houseOfGul-sub000/internal/domain"
)

// CRUDRepository is the plain create/read/update/delete surface shared by content entities.
// GetByID, Update and Delete return *errors.ErrNotFound for unknown ids; Create and Update
// return *errors.ErrConflict when a unique column collides.
type CRUDRepository[T any] interface {
	Create(ctx context.Context, entity *T) error
	Update(ctx context.Context, entity *T) error
	Delete(ctx context.Context, id uuid.UUID) error
	GetByID(ctx context.Context, id uuid.UUID) (*T, error)
	List(ctx context.Context) ([]*T, error)
}

// ProductFilter narrows the public product query
type ProductFilter struct {
	CategorySlug      string
	OccasionSlug      string
	Featured          *bool
	Search            string // case-insensitive substring of name or description
	Limit             int    // 0 means no limit
	IncludeOutOfStock bool   // admin listings only
}

// ProductRepository defines product data access methods
type ProductRepository interface {
	CRUDRepository[domain.Product]
	GetBySlug(ctx context.Context, slug string) (*domain.Product, error)
	GetByIDs(ctx context.Context, ids []uuid.UUID) ([]*domain.Product, error)
	ExistsBySlug(ctx context.Context, slug string) (bool, error)
	Search(ctx context.Context, filter ProductFilter) ([]*domain.Product, error)
}

type CategoryRepository interface {
	CRUDRepository[domain.Category]
	GetBySlug(ctx context.Context, slug string) (*domain.Category, error)
	// GetByNameOrSlug matches either column case-insensitively; used by imports
	GetByNameOrSlug(ctx context.Context, value string) (*domain.Category, error)
}

type OccasionRepository interface {
	CRUDRepository[domain.Occasion]
	GetBySlug(ctx context.Context, slug string) (*domain.Occasion, error)
}

type BlogPostRepository interface {
	CRUDRepository[domain.BlogPost]
	GetBySlug(ctx context.Context, slug string) (*domain.BlogPost, error)
	ListPublished(ctx context.Context, limit int) ([]*domain.BlogPost, error)
}

type BannerRepository interface {
	CRUDRepository[domain.Banner]
	ListActive(ctx context.Context) ([]*domain.Banner, error)
}

type TestimonialRepository interface {
	CRUDRepository[domain.Testimonial]
	ListActive(ctx context.Context) ([]*domain.Testimonial, error)
}

type InquiryRepository interface {
	CRUDRepository[domain.Inquiry]
	MarkRead(ctx context.Context, id uuid.UUID, read bool) error
}

// CouponRepository defines coupon data access methods
type CouponRepository interface {
	CRUDRepository[domain.Coupon]
	// GetByCode expects an already normalised (upper-case) code
	GetByCode(ctx context.Context, code string) (*domain.Coupon, error)
	// IncrementUsage atomically bumps used_count when usage_limit allows it.
	// It reports false, without error, when the coupon is exhausted.
	IncrementUsage(ctx context.Context, id uuid.UUID) (bool, error)
}

// PincodeRepository defines delivery directory data access methods
type PincodeRepository interface {
	CRUDRepository[domain.Pincode]
	GetByCode(ctx context.Context, code string) (*domain.Pincode, error)
	Search(ctx context.Context, query string, limit, offset int) ([]*domain.Pincode, error)
	// Upsert inserts or overwrites the record keyed by Code
	Upsert(ctx context.Context, pincode *domain.Pincode) error
}

// OrderFilter narrows admin order listings
type OrderFilter struct {
	Status        domain.OrderStatus
	PaymentStatus domain.PaymentStatus
	Search        string // order number, customer name or email
	Limit         int
	Offset        int
}

// OrderRepository defines order data access methods
type OrderRepository interface {
	// Create persists the order together with its items
	Create(ctx context.Context, order *domain.Order) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Order, error)
	// GetByIDForUpdate reads the order inside a transaction and holds it
	// against concurrent status and payment changes until commit
	GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.Order, error)
	GetByOrderNumber(ctx context.Context, orderNumber string) (*domain.Order, error)
	List(ctx context.Context, filter OrderFilter) ([]*domain.Order, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.OrderStatus) error
	UpdatePaymentStatus(ctx context.Context, id uuid.UUID, status domain.PaymentStatus, reference string) error
	UpdateNotes(ctx context.Context, id uuid.UUID, notes string) error
}

// OrderEventRepository defines order event data access methods
type OrderEventRepository interface {
	Create(ctx context.Context, event *domain.OrderEvent) error
	GetByOrderID(ctx context.Context, orderID uuid.UUID) ([]*domain.OrderEvent, error)
}

// IdempotencyKeyRepository defines idempotency key data access methods.
// GetByKey returns nil, nil when the key is unknown.
type IdempotencyKeyRepository interface {
	GetByKey(ctx context.Context, key string) (*domain.IdempotencyKey, error)
	Create(ctx context.Context, key *domain.IdempotencyKey) error
}

type AdminUserRepository interface {
	Create(ctx context.Context, user *domain.AdminUser) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.AdminUser, error)
	GetByEmail(ctx context.Context, email string) (*domain.AdminUser, error)
	List(ctx context.Context) ([]*domain.AdminUser, error)
	SetActive(ctx context.Context, id uuid.UUID, active bool) error
}

// CartRepository stores session carts. Get returns nil, nil for an unknown session.
type CartRepository interface {
	Get(ctx context.Context, sessionID uuid.UUID) (*domain.CartSession, error)
	Save(ctx context.Context, cart *domain.CartSession) error
	Delete(ctx context.Context, sessionID uuid.UUID) error
}

// Transactor runs fn against repositories bound to a single transaction.
// Returning an error from fn rolls every write back.
type Transactor interface {
	WithinTransaction(ctx context.Context, fn func(tx *Repositories) error) error
}

// Repositories aggregates all repositories
type Repositories struct {
	Product        ProductRepository
	Category       CategoryRepository
	Occasion       OccasionRepository
	BlogPost       BlogPostRepository
	Banner         BannerRepository
	Testimonial    TestimonialRepository
	Inquiry        InquiryRepository
	Coupon         CouponRepository
	Pincode        PincodeRepository
	Order          OrderRepository
	OrderEvent     OrderEventRepository
	IdempotencyKey IdempotencyKeyRepository
	AdminUser      AdminUserRepository
	Cart           CartRepository
	Transactor     Transactor
}
