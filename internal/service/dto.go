package service

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/yawerky/houseOfGul-sub000/internal/domain"
	"github.com/yawerky/houseOfGul-sub000/internal/pricing"
)

// ItemRequest is one product line sent by the storefront
type ItemRequest struct {
	ProductID uuid.UUID `json:"product_id" binding:"required"`
	Quantity  int       `json:"quantity" binding:"required,min=1"`
}

// QuoteRequest carries everything the total depends on. When Items is empty
// the session cart is used.
type QuoteRequest struct {
	Items        []ItemRequest `json:"items"`
	Pincode      string        `json:"pincode"`
	DeliverySlot string        `json:"delivery_slot"`
	IsGift       bool          `json:"is_gift"`
	GiftWrapID   string        `json:"gift_wrap_id"`
	CouponCode   string        `json:"coupon_code"`

	SessionID uuid.UUID `json:"-"`
}

// CouponSummary is the applied coupon echoed back in a quote
type CouponSummary struct {
	Code     string          `json:"code"`
	Discount decimal.Decimal `json:"discount"`
}

// QuoteLine is a priced line of a quote
type QuoteLine struct {
	ProductID uuid.UUID       `json:"product_id"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  int             `json:"quantity"`
	LineTotal decimal.Decimal `json:"line_total"`
}

// Quote is the authoritative breakdown for a prospective order
type Quote struct {
	Lines        []QuoteLine         `json:"lines"`
	Totals       pricing.OrderTotal  `json:"totals"`
	Coupon       *CouponSummary      `json:"coupon,omitempty"`
	DeliveryZone domain.DeliveryZone `json:"delivery_zone,omitempty"`
	// Serviceable is false only when a known pincode is switched off
	Serviceable bool `json:"serviceable"`
}

// CustomerRequest is the buyer's contact details
type CustomerRequest struct {
	Name  string `json:"name" binding:"required"`
	Email string `json:"email" binding:"required,email"`
	Phone string `json:"phone" binding:"required"`
}

// AddressRequest is the delivery address
type AddressRequest struct {
	Line1   string `json:"line1" binding:"required"`
	Line2   string `json:"line2"`
	City    string `json:"city" binding:"required"`
	State   string `json:"state" binding:"required"`
	Pincode string `json:"pincode" binding:"required"`
}

// PlaceOrderRequest is the checkout submission
type PlaceOrderRequest struct {
	Items         []ItemRequest    `json:"items"`
	Customer      CustomerRequest  `json:"customer" binding:"required"`
	Shipping      AddressRequest   `json:"shipping" binding:"required"`
	DeliveryDate  *time.Time       `json:"delivery_date"`
	DeliverySlot  string           `json:"delivery_slot"`
	IsGift        bool             `json:"is_gift"`
	GiftWrapID    string           `json:"gift_wrap_id"`
	GiftMessage   string           `json:"gift_message"`
	RecipientName string           `json:"recipient_name"`
	CouponCode    string           `json:"coupon_code"`
	PaymentMethod string           `json:"payment_method"`
	ExpectedTotal *decimal.Decimal `json:"expected_total"`

	SessionID      uuid.UUID `json:"-"`
	IdempotencyKey string    `json:"-"`
	RequestHash    string    `json:"-"`
}

func (r PlaceOrderRequest) quoteRequest() QuoteRequest {
	return QuoteRequest{
		Items:        r.Items,
		Pincode:      r.Shipping.Pincode,
		DeliverySlot: r.DeliverySlot,
		IsGift:       r.IsGift,
		GiftWrapID:   r.GiftWrapID,
		CouponCode:   r.CouponCode,
		SessionID:    r.SessionID,
	}
}

// StatusUpdateRequest moves an order along the fulfilment graph
type StatusUpdateRequest struct {
	Status domain.OrderStatus `json:"status" binding:"required"`
	Note   string             `json:"note"`
}

// PaymentUpdateRequest changes the payment status
type PaymentUpdateRequest struct {
	PaymentStatus domain.PaymentStatus `json:"payment_status" binding:"required"`
	Reference     string               `json:"reference"`
}

// NotesUpdateRequest replaces the admin notes
type NotesUpdateRequest struct {
	AdminNotes string `json:"admin_notes"`
}

// PaymentCallback is the body posted by the payment gateway
type PaymentCallback struct {
	OrderNumber string               `json:"order_number" binding:"required"`
	Status      domain.PaymentStatus `json:"status" binding:"required"`
	Reference   string               `json:"reference"`
}
