// Package memory keeps every repository in process memory. It backs the test
// suites and STORAGE_DRIVER=memory local runs; data is lost on restart.
package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/yawerky/houseOfGul-sub000/internal/domain"
	"github.com/yawerky/houseOfGul-sub000/internal/repository"
)

// Store holds all tables behind one lock
type Store struct {
	mu   sync.RWMutex
	txMu sync.Mutex

	products     map[uuid.UUID]domain.Product
	categories   map[uuid.UUID]domain.Category
	occasions    map[uuid.UUID]domain.Occasion
	blogPosts    map[uuid.UUID]domain.BlogPost
	banners      map[uuid.UUID]domain.Banner
	testimonials map[uuid.UUID]domain.Testimonial
	inquiries    map[uuid.UUID]domain.Inquiry
	coupons      map[uuid.UUID]domain.Coupon
	pincodes     map[uuid.UUID]domain.Pincode
	orders       map[uuid.UUID]domain.Order
	events       []domain.OrderEvent
	idempotency  map[string]domain.IdempotencyKey
	admins       map[uuid.UUID]domain.AdminUser
	carts        map[uuid.UUID]domain.CartSession

	logger *zap.Logger
}

func NewStore(logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		products:     map[uuid.UUID]domain.Product{},
		categories:   map[uuid.UUID]domain.Category{},
		occasions:    map[uuid.UUID]domain.Occasion{},
		blogPosts:    map[uuid.UUID]domain.BlogPost{},
		banners:      map[uuid.UUID]domain.Banner{},
		testimonials: map[uuid.UUID]domain.Testimonial{},
		inquiries:    map[uuid.UUID]domain.Inquiry{},
		coupons:      map[uuid.UUID]domain.Coupon{},
		pincodes:     map[uuid.UUID]domain.Pincode{},
		orders:       map[uuid.UUID]domain.Order{},
		idempotency:  map[string]domain.IdempotencyKey{},
		admins:       map[uuid.UUID]domain.AdminUser{},
		carts:        map[uuid.UUID]domain.CartSession{},
		logger:       logger,
	}
}

// NewRepositories creates a repository set over a fresh store
func NewRepositories(logger *zap.Logger) *repository.Repositories {
	return NewStore(logger).Repositories()
}

// Repositories exposes the store through the repository interfaces
func (s *Store) Repositories() *repository.Repositories {
	repos := s.repositories(nil)
	repos.Transactor = &transactor{s: s}
	return repos
}

// repositories builds the repository set; writes are recorded in j when it is non-nil
func (s *Store) repositories(j *journal) *repository.Repositories {
	coupons := newTable(s, j, "coupon", func(s *Store) map[uuid.UUID]domain.Coupon { return s.coupons }, couponKeys, newestFirst[domain.Coupon, *domain.Coupon])
	// used_count only moves through IncrementUsage
	coupons.keep = func(stored, updated *domain.Coupon) { updated.UsedCount = stored.UsedCount }

	return &repository.Repositories{
		Product:        &productRepository{newTable(s, j, "product", func(s *Store) map[uuid.UUID]domain.Product { return s.products }, productKeys, productLess)},
		Category:       &categoryRepository{newTable(s, j, "category", func(s *Store) map[uuid.UUID]domain.Category { return s.categories }, categoryKeys, byName(func(c *domain.Category) string { return c.Name }))},
		Occasion:       &occasionRepository{newTable(s, j, "occasion", func(s *Store) map[uuid.UUID]domain.Occasion { return s.occasions }, occasionKeys, byName(func(o *domain.Occasion) string { return o.Name }))},
		BlogPost:       &blogPostRepository{newTable(s, j, "blog post", func(s *Store) map[uuid.UUID]domain.BlogPost { return s.blogPosts }, blogKeys, newestFirst[domain.BlogPost, *domain.BlogPost])},
		Banner:         &bannerRepository{newTable(s, j, "banner", func(s *Store) map[uuid.UUID]domain.Banner { return s.banners }, nil, bannerLess)},
		Testimonial:    &testimonialRepository{newTable(s, j, "testimonial", func(s *Store) map[uuid.UUID]domain.Testimonial { return s.testimonials }, nil, newestFirst[domain.Testimonial, *domain.Testimonial])},
		Inquiry:        &inquiryRepository{newTable(s, j, "inquiry", func(s *Store) map[uuid.UUID]domain.Inquiry { return s.inquiries }, nil, newestFirst[domain.Inquiry, *domain.Inquiry])},
		Coupon:         &couponRepository{coupons},
		Pincode:        &pincodeRepository{newTable(s, j, "pincode", func(s *Store) map[uuid.UUID]domain.Pincode { return s.pincodes }, pincodeKeys, pincodeLess)},
		Order:          &orderRepository{s: s, j: j},
		OrderEvent:     &orderEventRepository{s: s, j: j},
		IdempotencyKey: &idempotencyKeyRepository{s: s, j: j},
		AdminUser:      &adminUserRepository{s: s, j: j},
		Cart:           &cartRepository{s: s, j: j},
	}
}

// journal holds the undo steps of one transaction, newest last.
// Steps are recorded and replayed with s.mu held.
type journal struct {
	undo []func(s *Store)
}

// remember records how to put rows(s)[key] back to its current state.
// It is a no-op outside a transaction.
func remember[K comparable, V any](j *journal, s *Store, rows func(*Store) map[K]V, key K) {
	if j == nil {
		return
	}
	prev, existed := rows(s)[key]
	j.undo = append(j.undo, func(s *Store) {
		if existed {
			rows(s)[key] = prev
		} else {
			delete(rows(s), key)
		}
	})
}

func (j *journal) rollback(s *Store) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := len(j.undo) - 1; i >= 0; i-- {
		j.undo[i](s)
	}
}

func ordersOf(s *Store) map[uuid.UUID]domain.Order { return s.orders }
func idempotencyOf(s *Store) map[string]domain.IdempotencyKey { return s.idempotency }
func adminsOf(s *Store) map[uuid.UUID]domain.AdminUser { return s.admins }
func cartsOf(s *Store) map[uuid.UUID]domain.CartSession { return s.carts }
func couponsOf(s *Store) map[uuid.UUID]domain.Coupon { return s.coupons }
func inquiriesOf(s *Store) map[uuid.UUID]domain.Inquiry { return s.inquiries }

// transactor serialises transactions. A failed transaction reverts only the
// rows it wrote; writes made by other requests meanwhile are kept.
type transactor struct {
	s *Store
}

func (t *transactor) WithinTransaction(ctx context.Context, fn func(tx *repository.Repositories) error) error {
	t.s.txMu.Lock()
	defer t.s.txMu.Unlock()

	j := &journal{}
	repos := t.s.repositories(j)
	repos.Transactor = &nestedTransactor{repos: repos}
	if err := fn(repos); err != nil {
		j.rollback(t.s)
		return err
	}
	return nil
}

// nestedTransactor runs inner transactions inline; the outer one owns rollback
type nestedTransactor struct {
	repos *repository.Repositories
}

func (n *nestedTransactor) WithinTransaction(ctx context.Context, fn func(tx *repository.Repositories) error) error {
	return fn(n.repos)
}
