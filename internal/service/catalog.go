package service

import (
	"strings"
	"time"

	"github.com/yawerky/houseOfGul-sub000/internal/content"
	"github.com/yawerky/houseOfGul-sub000/internal/coupon"
	"github.com/yawerky/houseOfGul-sub000/internal/domain"
	"github.com/yawerky/houseOfGul-sub000/internal/pincode"
	"github.com/yawerky/houseOfGul-sub000/pkg/errors"
)

const blogExcerptLength = 200

// The Prepare functions normalise an entity an admin (or a shopper, for
// inquiries) is about to save and reject invalid input. They do not touch storage.

func PrepareProduct(p *domain.Product) error {
	fields := map[string]string{}
	p.Name = strings.TrimSpace(p.Name)
	if p.Name == "" {
		fields["name"] = "is required"
	}
	p.Slug = slugOrName(p.Slug, p.Name)
	if p.Slug == "" && p.Name != "" {
		fields["slug"] = "could not be derived from name"
	}
	if p.Price.IsNegative() {
		fields["price"] = "must not be negative"
	}
	if p.CompareAtPrice.Valid && p.CompareAtPrice.Decimal.IsNegative() {
		fields["compare_at_price"] = "must not be negative"
	}
	if p.Stock < 0 {
		fields["stock"] = "must not be negative"
	}
	p.Price = p.Price.Round(2)
	return validation("invalid product", fields)
}

func PrepareCategory(c *domain.Category) error {
	fields := map[string]string{}
	c.Name = strings.TrimSpace(c.Name)
	if c.Name == "" {
		fields["name"] = "is required"
	}
	c.Slug = slugOrName(c.Slug, c.Name)
	return validation("invalid category", fields)
}

func PrepareOccasion(o *domain.Occasion) error {
	fields := map[string]string{}
	o.Name = strings.TrimSpace(o.Name)
	if o.Name == "" {
		fields["name"] = "is required"
	}
	o.Slug = slugOrName(o.Slug, o.Name)
	return validation("invalid occasion", fields)
}

// PrepareBlogPost renders the markdown body and stamps PublishedAt the first
// time a post is published
func PrepareBlogPost(b *domain.BlogPost, now time.Time) error {
	fields := map[string]string{}
	b.Title = strings.TrimSpace(b.Title)
	if b.Title == "" {
		fields["title"] = "is required"
	}
	b.Slug = slugOrName(b.Slug, b.Title)

	rendered, err := content.RenderMarkdown(b.ContentMarkdown)
	if err != nil {
		fields["content_markdown"] = "could not be rendered"
	}
	b.ContentHTML = rendered
	if strings.TrimSpace(b.Excerpt) == "" {
		b.Excerpt = content.Excerpt(rendered, blogExcerptLength)
	} else {
		b.Excerpt = content.PlainText(b.Excerpt)
	}

	if b.Published && b.PublishedAt == nil {
		t := now.UTC()
		b.PublishedAt = &t
	}
	if !b.Published {
		b.PublishedAt = nil
	}
	return validation("invalid blog post", fields)
}

func PrepareBanner(b *domain.Banner) error {
	fields := map[string]string{}
	b.Title = strings.TrimSpace(b.Title)
	if b.ImageURL == "" {
		fields["image_url"] = "is required"
	}
	return validation("invalid banner", fields)
}

// PrepareTestimonial strips markup from the message
func PrepareTestimonial(t *domain.Testimonial) error {
	fields := map[string]string{}
	t.Author = content.PlainText(t.Author)
	t.Location = content.PlainText(t.Location)
	t.Message = content.PlainText(t.Message)
	if t.Author == "" {
		fields["author"] = "is required"
	}
	if t.Message == "" {
		fields["message"] = "is required"
	}
	if t.Rating == 0 {
		t.Rating = 5
	}
	if t.Rating < 1 || t.Rating > 5 {
		fields["rating"] = "must be between 1 and 5"
	}
	return validation("invalid testimonial", fields)
}

// PrepareInquiry cleans a public contact-form submission
func PrepareInquiry(i *domain.Inquiry) error {
	fields := map[string]string{}
	i.Name = content.PlainText(i.Name)
	i.Email = strings.ToLower(strings.TrimSpace(i.Email))
	i.Phone = content.PlainText(i.Phone)
	i.Subject = content.PlainText(i.Subject)
	i.Message = content.PlainText(i.Message)
	i.IsRead = false
	if i.Name == "" {
		fields["name"] = "is required"
	}
	if !strings.Contains(i.Email, "@") {
		fields["email"] = "must be a valid email"
	}
	if i.Message == "" {
		fields["message"] = "is required"
	}
	return validation("invalid inquiry", fields)
}

func PreparePincode(p *domain.Pincode) error {
	fields := map[string]string{}
	p.Code = pincode.NormalizeCode(p.Code)
	p.City = strings.TrimSpace(p.City)
	p.State = strings.TrimSpace(p.State)
	if p.Code == "" {
		fields["code"] = "is required"
	}
	if p.City == "" {
		fields["city"] = "is required"
	}
	if p.State == "" {
		fields["state"] = "is required"
	}
	if p.DeliveryZone == "" {
		p.DeliveryZone = domain.DeliveryZoneStandard
	}
	if !p.DeliveryZone.IsValid() {
		fields["delivery_zone"] = "must be same-day, next-day or 2-3-days"
	}
	if p.DeliveryCharge.IsNegative() {
		fields["delivery_charge"] = "must not be negative"
	}
	if p.MinOrderFree.Valid && p.MinOrderFree.Decimal.IsNegative() {
		fields["min_order_free"] = "must not be negative"
	}
	return validation("invalid pincode", fields)
}

func PrepareCoupon(c *domain.Coupon) error {
	return coupon.ValidateDefinition(c)
}

func slugOrName(slug, name string) string {
	if s := content.Slugify(slug); s != "" {
		return s
	}
	return content.Slugify(name)
}

func validation(message string, fields map[string]string) error {
	if len(fields) == 0 {
		return nil
	}
	return &errors.ErrValidation{Message: message, Fields: fields}
}
