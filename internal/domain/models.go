package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Model carries the identity and timestamps shared by persisted entities
type Model struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// EnsureID assigns a fresh id to an entity that has none yet
func (m *Model) EnsureID() {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
}

func (m *Model) GetID() uuid.UUID { return m.ID }

func (m *Model) SetID(id uuid.UUID) { m.ID = id }

// Stamp sets CreatedAt once and UpdatedAt on every call
func (m *Model) Stamp(now time.Time) {
	if m.CreatedAt.IsZero() {
		m.CreatedAt = now
	}
	m.UpdatedAt = now
}

func (m *Model) GetCreatedAt() time.Time { return m.CreatedAt }

func (m *Model) SetCreatedAt(t time.Time) { m.CreatedAt = t }

// Product is a catalog record; its price is the only trusted unit price at checkout
type Product struct {
	Model
	Slug           string              `gorm:"uniqueIndex;size:200;not null" json:"slug"`
	Name           string              `gorm:"size:200;not null" json:"name"`
	Description    string              `gorm:"type:text" json:"description"`
	Price          decimal.Decimal     `gorm:"type:numeric(12,2);not null" json:"price"`
	CompareAtPrice decimal.NullDecimal `gorm:"type:numeric(12,2)" json:"compare_at_price"`
	ImageURL       string              `json:"image_url"`
	CategoryID     *uuid.UUID          `gorm:"type:uuid;index" json:"category_id,omitempty"`
	OccasionID     *uuid.UUID          `gorm:"type:uuid;index" json:"occasion_id,omitempty"`
	Featured       bool                `gorm:"index" json:"featured"`
	InStock        bool                `gorm:"index" json:"in_stock"`
	Stock          int                 `json:"stock"`
}

// Category groups products (bouquets, arrangements, plants...)
type Category struct {
	Model
	Name        string `gorm:"uniqueIndex;size:120;not null" json:"name"`
	Slug        string `gorm:"uniqueIndex;size:120;not null" json:"slug"`
	Description string `gorm:"type:text" json:"description"`
	ImageURL    string `json:"image_url"`
}

// Occasion tags products for birthdays, anniversaries, sympathy etc.
type Occasion struct {
	Model
	Name string `gorm:"size:120;not null" json:"name"`
	Slug string `gorm:"uniqueIndex;size:120;not null" json:"slug"`
}

// BlogPost stores markdown source; ContentHTML is derived and sanitised on save
type BlogPost struct {
	Model
	Slug            string     `gorm:"uniqueIndex;size:200;not null" json:"slug"`
	Title           string     `gorm:"size:250;not null" json:"title"`
	Excerpt         string     `gorm:"type:text" json:"excerpt"`
	ContentMarkdown string     `gorm:"type:text" json:"content_markdown"`
	ContentHTML     string     `gorm:"type:text" json:"content_html"`
	CoverImageURL   string     `json:"cover_image_url"`
	Published       bool       `gorm:"index" json:"published"`
	PublishedAt     *time.Time `json:"published_at,omitempty"`
	MetaTitle       string     `json:"meta_title"`
	MetaDescription string     `json:"meta_description"`
}

type Banner struct {
	Model
	Title    string `gorm:"size:200" json:"title"`
	Subtitle string `json:"subtitle"`
	ImageURL string `json:"image_url"`
	LinkURL  string `json:"link_url"`
	Position int    `json:"position"`
	IsActive bool   `json:"is_active"`
}

type Testimonial struct {
	Model
	Author   string `gorm:"size:120;not null" json:"author"`
	Location string `json:"location"`
	Message  string `gorm:"type:text" json:"message"`
	Rating   int    `json:"rating"`
	IsActive bool   `json:"is_active"`
}

// Inquiry is a contact-form submission
type Inquiry struct {
	Model
	Name    string `gorm:"size:120;not null" json:"name"`
	Email   string `gorm:"size:200;not null" json:"email"`
	Phone   string `json:"phone"`
	Subject string `json:"subject"`
	Message string `gorm:"type:text" json:"message"`
	IsRead  bool   `json:"is_read"`
}

// Pincode is one entry of the delivery directory, unique by Code
type Pincode struct {
	Model
	Code           string              `gorm:"uniqueIndex;size:16;not null" json:"code"`
	Area           string              `json:"area"`
	City           string              `gorm:"not null" json:"city"`
	State          string              `gorm:"not null" json:"state"`
	DeliveryZone   DeliveryZone        `gorm:"size:16;not null" json:"delivery_zone"`
	DeliveryCharge decimal.Decimal     `gorm:"type:numeric(12,2);not null" json:"delivery_charge"`
	MinOrderFree   decimal.NullDecimal `gorm:"type:numeric(12,2)" json:"min_order_free"`
	IsActive       bool                `json:"is_active"`
}

// Coupon codes are stored upper-cased
type Coupon struct {
	Model
	Code           string              `gorm:"uniqueIndex;size:64;not null" json:"code"`
	Description    string              `json:"description"`
	DiscountType   DiscountType        `gorm:"size:16;not null" json:"discount_type"`
	DiscountValue  decimal.Decimal     `gorm:"type:numeric(12,2);not null" json:"discount_value"`
	MinOrderAmount decimal.NullDecimal `gorm:"type:numeric(12,2)" json:"min_order_amount"`
	MaxDiscount    decimal.NullDecimal `gorm:"type:numeric(12,2)" json:"max_discount"`
	UsageLimit     *int                `json:"usage_limit"`
	UsedCount      int                 `gorm:"not null;default:0" json:"used_count"`
	IsActive       bool                `json:"is_active"`
	StartDate      *time.Time          `json:"start_date"`
	EndDate        *time.Time          `json:"end_date"`
}

// CartLine is a single product in a session cart. Quantity is always >= 1 while stored.
type CartLine struct {
	ProductID uuid.UUID       `json:"product_id"`
	Name      string          `json:"name,omitempty"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  int             `json:"quantity"`
}

// LineTotal is unit price times quantity
func (l CartLine) LineTotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// CartSession persists a shopper's cart between requests
type CartSession struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	Lines     []CartLine `gorm:"serializer:json" json:"lines"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// ShippingAddress is stored inline on the order
type ShippingAddress struct {
	Line1   string `json:"line1"`
	Line2   string `json:"line2,omitempty"`
	City    string `json:"city"`
	State   string `json:"state"`
	Pincode string `json:"pincode"`
}

// Order is the persisted result of a checkout; the money fields are the
// aggregator output at the moment the order was placed.
type Order struct {
	Model
	OrderNumber        string          `gorm:"uniqueIndex;size:40;not null" json:"order_number"`
	CustomerName       string          `gorm:"not null" json:"customer_name"`
	CustomerEmail      string          `gorm:"index" json:"customer_email"`
	CustomerPhone      string          `json:"customer_phone"`
	ShippingAddress    ShippingAddress `gorm:"serializer:json" json:"shipping_address"`
	DeliveryDate       *time.Time      `json:"delivery_date,omitempty"`
	DeliverySlot       string          `json:"delivery_slot"`
	DeliveryZone       DeliveryZone    `json:"delivery_zone,omitempty"`
	IsGift             bool            `json:"is_gift"`
	GiftWrapID         string          `json:"gift_wrap_id,omitempty"`
	GiftMessage        string          `gorm:"type:text" json:"gift_message,omitempty"`
	RecipientName      string          `json:"recipient_name,omitempty"`
	Subtotal           decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"subtotal"`
	DeliveryCharge     decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"delivery_charge"`
	GiftWrapCharge     decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"gift_wrap_charge"`
	DeliverySlotCharge decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"delivery_slot_charge"`
	Discount           decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"discount"`
	Total              decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"total"`
	CouponCode         string          `json:"coupon_code,omitempty"`
	Status             OrderStatus     `gorm:"size:24;index;not null" json:"status"`
	PaymentStatus      PaymentStatus   `gorm:"size:16;not null" json:"payment_status"`
	PaymentMethod      string          `json:"payment_method,omitempty"`
	PaymentReference   string          `json:"payment_reference,omitempty"`
	AdminNotes         string          `gorm:"type:text" json:"admin_notes,omitempty"`
	Items              []OrderItem     `gorm:"foreignKey:OrderID" json:"items"`
}

// OrderItem snapshots the product at the time of purchase
type OrderItem struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	OrderID     uuid.UUID       `gorm:"type:uuid;index;not null" json:"order_id"`
	ProductID   uuid.UUID       `gorm:"type:uuid" json:"product_id"`
	ProductName string          `json:"product_name"`
	UnitPrice   decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"unit_price"`
	Quantity    int             `json:"quantity"`
	LineTotal   decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"line_total"`
	CreatedAt   time.Time       `json:"created_at"`
}

// OrderEvent records order changes for auditing
type OrderEvent struct {
	ID        uuid.UUID              `gorm:"type:uuid;primaryKey" json:"id"`
	OrderID   uuid.UUID              `gorm:"type:uuid;index;not null" json:"order_id"`
	EventType string                 `gorm:"size:40;not null" json:"event_type"`
	EventData map[string]interface{} `gorm:"serializer:json" json:"event_data,omitempty"`
	CreatedAt time.Time              `json:"created_at"`
}

// AdminUser can sign in to the back office
type AdminUser struct {
	Model
	Email        string `gorm:"uniqueIndex;size:200;not null" json:"email"`
	Name         string `json:"name"`
	PasswordHash string `gorm:"not null" json:"-"`
	Role         string `gorm:"size:32;not null" json:"role"`
	IsActive     bool   `json:"is_active"`
}

// IdempotencyKey stores idempotency information for checkout submissions
type IdempotencyKey struct {
	Key         string    `gorm:"primaryKey;size:200" json:"key"`
	OrderID     uuid.UUID `gorm:"type:uuid;not null" json:"order_id"`
	RequestHash string    `gorm:"size:64;not null" json:"request_hash"`
	CreatedAt   time.Time `json:"created_at"`
}
