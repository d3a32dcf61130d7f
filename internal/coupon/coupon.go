// Package coupon validates discount codes and computes their discount.
//
// Validate is read-only and may be called on every cart change. Redeem consumes
// one use and is only called while the order is being persisted.
package coupon

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/yawerky/houseOfGul-sub000/internal/domain"
	"github.com/yawerky/houseOfGul-sub000/internal/repository"
	apperrors "github.com/yawerky/houseOfGul-sub000/pkg/errors"
)

var (
	// ErrCouponNotFound is returned when no coupon matches the normalised code.
	ErrCouponNotFound = errors.New("coupon not found")
	// ErrCouponInactive is returned for a coupon switched off by an admin.
	ErrCouponInactive = errors.New("coupon is not active")
	// ErrCouponNotYetValid is returned before the coupon's start date.
	ErrCouponNotYetValid = errors.New("coupon is not yet valid")
	// ErrCouponExpired is returned after the coupon's end date.
	ErrCouponExpired = errors.New("coupon has expired")
	// ErrCouponExhausted is returned once used_count has reached usage_limit.
	ErrCouponExhausted = errors.New("coupon usage limit reached")
	// ErrMinimumNotMet is wrapped by MinimumNotMetError.
	ErrMinimumNotMet = errors.New("order minimum not met")
)

// MinimumNotMetError reports how far the subtotal is below the coupon minimum
type MinimumNotMetError struct {
	Minimum   decimal.Decimal
	Shortfall decimal.Decimal
}

func (e *MinimumNotMetError) Error() string {
	return fmt.Sprintf("order minimum of %s not met, add %s more", e.Minimum.StringFixed(2), e.Shortfall.StringFixed(2))
}

func (e *MinimumNotMetError) Unwrap() error { return ErrMinimumNotMet }

// NormalizeCode trims and upper-cases a coupon code
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// Evaluator checks coupons against the coupon repository
type Evaluator struct {
	coupons repository.CouponRepository
	logger  *zap.Logger
}

func NewEvaluator(coupons repository.CouponRepository, logger *zap.Logger) *Evaluator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Evaluator{coupons: coupons, logger: logger}
}

// Validate runs the eligibility checks in order and stops at the first failure.
// It never changes the coupon.
func (e *Evaluator) Validate(ctx context.Context, code string, subtotal decimal.Decimal, now time.Time) (*domain.Coupon, error) {
	normalized := NormalizeCode(code)
	if normalized == "" {
		return nil, ErrCouponNotFound
	}

	c, err := e.coupons.GetByCode(ctx, normalized)
	if err != nil {
		var notFound *apperrors.ErrNotFound
		if errors.As(err, &notFound) {
			return nil, ErrCouponNotFound
		}
		return nil, errors.Wrap(err, "get coupon")
	}

	if err := Check(c, subtotal, now); err != nil {
		return nil, err
	}
	return c, nil
}

// Check applies the eligibility rules to an already loaded coupon
func Check(c *domain.Coupon, subtotal decimal.Decimal, now time.Time) error {
	switch {
	case !c.IsActive:
		return ErrCouponInactive
	case c.StartDate != nil && now.Before(*c.StartDate):
		return ErrCouponNotYetValid
	case c.EndDate != nil && now.After(*c.EndDate):
		return ErrCouponExpired
	case c.UsageLimit != nil && c.UsedCount >= *c.UsageLimit:
		return ErrCouponExhausted
	}
	if c.MinOrderAmount.Valid && subtotal.LessThan(c.MinOrderAmount.Decimal) {
		return &MinimumNotMetError{
			Minimum:   c.MinOrderAmount.Decimal,
			Shortfall: c.MinOrderAmount.Decimal.Sub(subtotal),
		}
	}
	return nil
}

// ComputeDiscount returns the discount for subtotal, capped by MaxDiscount and
// never more than the subtotal itself.
func ComputeDiscount(c *domain.Coupon, subtotal decimal.Decimal) decimal.Decimal {
	if c == nil || !subtotal.IsPositive() {
		return decimal.Zero
	}

	var discount decimal.Decimal
	switch c.DiscountType {
	case domain.DiscountTypePercentage:
		discount = subtotal.Mul(c.DiscountValue).Div(decimal.NewFromInt(100))
	case domain.DiscountTypeFixed:
		discount = c.DiscountValue
	default:
		return decimal.Zero
	}
	discount = discount.Round(2)

	if c.MaxDiscount.Valid && discount.GreaterThan(c.MaxDiscount.Decimal) {
		discount = c.MaxDiscount.Decimal
	}
	if discount.GreaterThan(subtotal) {
		discount = subtotal
	}
	if discount.IsNegative() {
		discount = decimal.Zero
	}
	return discount
}

// Redeem consumes one use of the coupon. The check and increment happen in a
// single repository call so two checkouts cannot both take the last use.
func (e *Evaluator) Redeem(ctx context.Context, coupons repository.CouponRepository, c *domain.Coupon) error {
	if coupons == nil {
		coupons = e.coupons
	}
	ok, err := coupons.IncrementUsage(ctx, c.ID)
	if err != nil {
		return errors.Wrap(err, "increment coupon usage")
	}
	if !ok {
		e.logger.Info("Coupon exhausted at redemption", zap.String("code", c.Code))
		return ErrCouponExhausted
	}
	e.logger.Info("Coupon redeemed", zap.String("code", c.Code))
	return nil
}

// ValidateDefinition normalises the code and rejects coupons an admin should not
// be able to save.
func ValidateDefinition(c *domain.Coupon) error {
	c.Code = NormalizeCode(c.Code)
	fields := map[string]string{}

	if c.Code == "" {
		fields["code"] = "is required"
	}
	switch c.DiscountType {
	case domain.DiscountTypePercentage:
		if c.DiscountValue.GreaterThan(decimal.NewFromInt(100)) {
			fields["discount_value"] = "percentage must be between 0 and 100"
		}
	case domain.DiscountTypeFixed:
	default:
		fields["discount_type"] = "must be percentage or fixed"
	}
	if c.DiscountValue.IsNegative() {
		fields["discount_value"] = "must not be negative"
	}
	if c.MinOrderAmount.Valid && c.MinOrderAmount.Decimal.IsNegative() {
		fields["min_order_amount"] = "must not be negative"
	}
	if c.MaxDiscount.Valid && c.MaxDiscount.Decimal.IsNegative() {
		fields["max_discount"] = "must not be negative"
	}
	if c.UsageLimit != nil && *c.UsageLimit < 0 {
		fields["usage_limit"] = "must not be negative"
	}
	if c.UsedCount < 0 {
		fields["used_count"] = "must not be negative"
	}
	if c.StartDate != nil && c.EndDate != nil && c.EndDate.Before(*c.StartDate) {
		fields["end_date"] = "must be after start_date"
	}

	if len(fields) > 0 {
		return &apperrors.ErrValidation{Message: "invalid coupon", Fields: fields}
	}
	return nil
}
