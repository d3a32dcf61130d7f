// Package pricing computes order totals. Aggregator.Compute is the only place a
// total is produced; quotes and placed orders both go through it.
package pricing

import (
	"fmt"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/yawerky/houseOfGul-sub000/internal/coupon"
	"github.com/yawerky/houseOfGul-sub000/internal/domain"
)

// ErrInvalidLine is returned for a cart line with quantity < 1 or a negative price
var ErrInvalidLine = errors.New("invalid cart line")

// Fallback is the delivery rule used when no pincode record was resolved
type Fallback struct {
	FreeThreshold decimal.Decimal
	Charge        decimal.Decimal
}

// Input is everything a total depends on
type Input struct {
	Lines          []domain.CartLine
	DeliverySlotID string
	IsGift         bool
	GiftWrapID     string
	// Coupon must already have passed validation; nil means no discount
	Coupon *domain.Coupon
	// Pincode is nil when the postal code is unknown
	Pincode *domain.Pincode
}

// OrderTotal is the breakdown shown at checkout and stored on the order
type OrderTotal struct {
	Subtotal           decimal.Decimal `json:"subtotal"`
	DeliveryCharge     decimal.Decimal `json:"delivery_charge"`
	GiftWrapCharge     decimal.Decimal `json:"gift_wrap_charge"`
	DeliverySlotCharge decimal.Decimal `json:"delivery_slot_charge"`
	Discount           decimal.Decimal `json:"discount"`
	Total              decimal.Decimal `json:"total"`
}

type Aggregator struct {
	Options  *Options
	Fallback Fallback
}

func NewAggregator(options *Options, fallback Fallback) *Aggregator {
	if options == nil {
		options = DefaultOptions()
	}
	return &Aggregator{Options: options, Fallback: fallback}
}

// Compute derives the order total from in. It has no side effects and returns
// the same result for the same input.
func (a *Aggregator) Compute(in Input) (OrderTotal, error) {
	subtotal := decimal.Zero
	for i, line := range in.Lines {
		if line.Quantity < 1 {
			return OrderTotal{}, errors.Wrap(ErrInvalidLine, fmt.Sprintf("line %d: quantity %d", i, line.Quantity))
		}
		if line.UnitPrice.IsNegative() {
			return OrderTotal{}, errors.Wrap(ErrInvalidLine, fmt.Sprintf("line %d: negative price", i))
		}
		subtotal = subtotal.Add(line.LineTotal())
	}

	var giftWrap decimal.Decimal
	if in.IsGift {
		wrap, err := a.Options.GiftWrap(in.GiftWrapID)
		if err != nil {
			return OrderTotal{}, err
		}
		giftWrap = wrap.Surcharge
	}

	slot, err := a.Options.DeliverySlot(in.DeliverySlotID)
	if err != nil {
		return OrderTotal{}, err
	}

	discount := coupon.ComputeDiscount(in.Coupon, subtotal)

	t := OrderTotal{
		Subtotal:           subtotal,
		DeliveryCharge:     a.deliveryCharge(subtotal, in.Pincode),
		GiftWrapCharge:     giftWrap,
		DeliverySlotCharge: slot.Surcharge,
		Discount:           discount,
	}
	total := t.Subtotal.Add(t.DeliveryCharge).Add(t.GiftWrapCharge).Add(t.DeliverySlotCharge).Sub(t.Discount)
	if total.IsNegative() {
		total = decimal.Zero
	}
	t.Total = total
	return t, nil
}

func (a *Aggregator) deliveryCharge(subtotal decimal.Decimal, p *domain.Pincode) decimal.Decimal {
	if p == nil {
		if subtotal.GreaterThanOrEqual(a.Fallback.FreeThreshold) {
			return decimal.Zero
		}
		return a.Fallback.Charge
	}
	if p.MinOrderFree.Valid && subtotal.GreaterThanOrEqual(p.MinOrderFree.Decimal) {
		return decimal.Zero
	}
	return p.DeliveryCharge
}
