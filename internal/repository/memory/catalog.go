package memory

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/yawerky/houseOfGul-sub000/internal/domain"
	"github.com/yawerky/houseOfGul-sub000/internal/repository"
	"github.com/yawerky/houseOfGul-sub000/pkg/errors"
)

func productKeys(p *domain.Product) map[string]string { return map[string]string{"slug": p.Slug} }

func categoryKeys(c *domain.Category) map[string]string {
	return map[string]string{"name": c.Name, "slug": c.Slug}
}

func occasionKeys(o *domain.Occasion) map[string]string { return map[string]string{"slug": o.Slug} }

func blogKeys(b *domain.BlogPost) map[string]string { return map[string]string{"slug": b.Slug} }

func couponKeys(c *domain.Coupon) map[string]string { return map[string]string{"code": c.Code} }

func pincodeKeys(p *domain.Pincode) map[string]string { return map[string]string{"code": p.Code} }

func productLess(a, b *domain.Product) bool {
	if a.Featured != b.Featured {
		return a.Featured
	}
	return a.CreatedAt.After(b.CreatedAt)
}

func bannerLess(a, b *domain.Banner) bool { return a.Position < b.Position }

func pincodeLess(a, b *domain.Pincode) bool { return a.Code < b.Code }

type productRepository struct {
	table[domain.Product, *domain.Product]
}

func (r *productRepository) GetBySlug(ctx context.Context, slug string) (*domain.Product, error) {
	return r.first(slug, func(p *domain.Product) bool { return p.Slug == slug })
}

func (r *productRepository) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]*domain.Product, error) {
	want := make(map[uuid.UUID]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	return r.filter(func(p *domain.Product) bool { return want[p.ID] }), nil
}

func (r *productRepository) ExistsBySlug(ctx context.Context, slug string) (bool, error) {
	_, err := r.GetBySlug(ctx, slug)
	if err != nil {
		if _, ok := err.(*errors.ErrNotFound); ok {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (r *productRepository) Search(ctx context.Context, f repository.ProductFilter) ([]*domain.Product, error) {
	var categoryID, occasionID *uuid.UUID
	if f.CategorySlug != "" {
		id, ok := r.slugID(func(s *Store) (uuid.UUID, bool) {
			for _, c := range s.categories {
				if c.Slug == f.CategorySlug {
					return c.ID, true
				}
			}
			return uuid.Nil, false
		})
		if !ok {
			return nil, nil
		}
		categoryID = &id
	}
	if f.OccasionSlug != "" {
		id, ok := r.slugID(func(s *Store) (uuid.UUID, bool) {
			for _, o := range s.occasions {
				if o.Slug == f.OccasionSlug {
					return o.ID, true
				}
			}
			return uuid.Nil, false
		})
		if !ok {
			return nil, nil
		}
		occasionID = &id
	}
	search := strings.ToLower(strings.TrimSpace(f.Search))

	out := r.filter(func(p *domain.Product) bool {
		if !f.IncludeOutOfStock && !p.InStock {
			return false
		}
		if categoryID != nil && (p.CategoryID == nil || *p.CategoryID != *categoryID) {
			return false
		}
		if occasionID != nil && (p.OccasionID == nil || *p.OccasionID != *occasionID) {
			return false
		}
		if f.Featured != nil && p.Featured != *f.Featured {
			return false
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(p.Name), search) &&
			!strings.Contains(strings.ToLower(p.Description), search) {
			return false
		}
		return true
	})
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

func (r *productRepository) slugID(lookup func(s *Store) (uuid.UUID, bool)) (uuid.UUID, bool) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return lookup(r.s)
}

type categoryRepository struct {
	table[domain.Category, *domain.Category]
}

func (r *categoryRepository) GetBySlug(ctx context.Context, slug string) (*domain.Category, error) {
	return r.first(slug, func(c *domain.Category) bool { return c.Slug == slug })
}

func (r *categoryRepository) GetByNameOrSlug(ctx context.Context, value string) (*domain.Category, error) {
	v := strings.TrimSpace(value)
	return r.first(value, func(c *domain.Category) bool {
		return strings.EqualFold(c.Slug, v) || strings.EqualFold(c.Name, v)
	})
}

type occasionRepository struct {
	table[domain.Occasion, *domain.Occasion]
}

func (r *occasionRepository) GetBySlug(ctx context.Context, slug string) (*domain.Occasion, error) {
	return r.first(slug, func(o *domain.Occasion) bool { return o.Slug == slug })
}

type blogPostRepository struct {
	table[domain.BlogPost, *domain.BlogPost]
}

func (r *blogPostRepository) GetBySlug(ctx context.Context, slug string) (*domain.BlogPost, error) {
	return r.first(slug, func(b *domain.BlogPost) bool { return b.Slug == slug })
}

func (r *blogPostRepository) ListPublished(ctx context.Context, limit int) ([]*domain.BlogPost, error) {
	out := r.filter(func(b *domain.BlogPost) bool { return b.Published })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type bannerRepository struct {
	table[domain.Banner, *domain.Banner]
}

func (r *bannerRepository) ListActive(ctx context.Context) ([]*domain.Banner, error) {
	return r.filter(func(b *domain.Banner) bool { return b.IsActive }), nil
}

type testimonialRepository struct {
	table[domain.Testimonial, *domain.Testimonial]
}

func (r *testimonialRepository) ListActive(ctx context.Context) ([]*domain.Testimonial, error) {
	return r.filter(func(t *domain.Testimonial) bool { return t.IsActive }), nil
}

type inquiryRepository struct {
	table[domain.Inquiry, *domain.Inquiry]
}

func (r *inquiryRepository) MarkRead(ctx context.Context, id uuid.UUID, read bool) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	inq, ok := r.s.inquiries[id]
	if !ok {
		return &errors.ErrNotFound{Resource: "inquiry", ID: id.String()}
	}
	inq.IsRead = read
	remember(r.j, r.s, inquiriesOf, id)
	r.s.inquiries[id] = inq
	return nil
}

type couponRepository struct {
	table[domain.Coupon, *domain.Coupon]
}

func (r *couponRepository) GetByCode(ctx context.Context, code string) (*domain.Coupon, error) {
	return r.first(code, func(c *domain.Coupon) bool { return c.Code == code })
}

// IncrementUsage checks and increments under the store lock
func (r *couponRepository) IncrementUsage(ctx context.Context, id uuid.UUID) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.coupons[id]
	if !ok {
		return false, &errors.ErrNotFound{Resource: "coupon", ID: id.String()}
	}
	if c.UsageLimit != nil && c.UsedCount >= *c.UsageLimit {
		return false, nil
	}
	c.UsedCount++
	remember(r.j, r.s, couponsOf, id)
	r.s.coupons[id] = c
	return true, nil
}

type pincodeRepository struct {
	table[domain.Pincode, *domain.Pincode]
}

func (r *pincodeRepository) GetByCode(ctx context.Context, code string) (*domain.Pincode, error) {
	return r.first(code, func(p *domain.Pincode) bool { return p.Code == code })
}

func (r *pincodeRepository) Search(ctx context.Context, query string, limit, offset int) ([]*domain.Pincode, error) {
	q := strings.ToLower(strings.TrimSpace(query))
	out := r.filter(func(p *domain.Pincode) bool {
		return q == "" ||
			strings.Contains(p.Code, q) ||
			strings.Contains(strings.ToLower(p.City), q) ||
			strings.Contains(strings.ToLower(p.Area), q)
	})
	if offset > 0 {
		if offset >= len(out) {
			return nil, nil
		}
		out = out[offset:]
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *pincodeRepository) Upsert(ctx context.Context, p *domain.Pincode) error {
	existing, err := r.GetByCode(ctx, p.Code)
	if err == nil {
		p.ID = existing.ID
		return r.Update(ctx, p)
	}
	return r.Create(ctx, p)
}
