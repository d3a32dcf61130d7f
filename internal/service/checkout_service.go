package service

import (
	"context"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"

	"github.com/yawerky/houseOfGul-sub000/internal/cart"
	"github.com/yawerky/houseOfGul-sub000/internal/coupon"
	"github.com/yawerky/houseOfGul-sub000/internal/domain"
	"github.com/yawerky/houseOfGul-sub000/internal/pincode"
	"github.com/yawerky/houseOfGul-sub000/internal/pricing"
	"github.com/yawerky/houseOfGul-sub000/internal/repository"
	apperrors "github.com/yawerky/houseOfGul-sub000/pkg/errors"
)

// OrderNumberPrefix starts every storefront order number
const OrderNumberPrefix = "HG-"

// CheckoutService prices carts and turns them into orders. Totals always come
// from the aggregator, never from the client.
type CheckoutService struct {
	repos      *repository.Repositories
	aggregator *pricing.Aggregator
	coupons    *coupon.Evaluator
	directory  *pincode.Directory
	carts      cart.Store
	notifier   *Notifier
	now        func() time.Time
	logger     *zap.Logger
}

func NewCheckoutService(
	repos *repository.Repositories,
	aggregator *pricing.Aggregator,
	coupons *coupon.Evaluator,
	directory *pincode.Directory,
	carts cart.Store,
	notifier *Notifier,
	logger *zap.Logger,
) *CheckoutService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CheckoutService{
		repos:      repos,
		aggregator: aggregator,
		coupons:    coupons,
		directory:  directory,
		carts:      carts,
		notifier:   notifier,
		now:        time.Now,
		logger:     logger,
	}
}

// pricedCheckout is a fully resolved quote plus what PlaceOrder needs to persist it
type pricedCheckout struct {
	quote   Quote
	lines   []domain.CartLine
	coupon  *domain.Coupon
	pincode *domain.Pincode
}

// Quote prices the request without changing anything. A coupon is validated
// but not redeemed.
func (s *CheckoutService) Quote(ctx context.Context, req QuoteRequest) (*Quote, error) {
	priced, err := s.price(ctx, req)
	if err != nil {
		return nil, err
	}
	return &priced.quote, nil
}

// PlaceOrder recomputes the total, checks it against the client's expectation
// and persists the order. Coupon redemption, the order, its items, the created
// event and the idempotency key are written in one transaction.
func (s *CheckoutService) PlaceOrder(ctx context.Context, req PlaceOrderRequest) (*domain.Order, error) {
	if err := validatePlaceOrder(req); err != nil {
		return nil, err
	}

	priced, err := s.price(ctx, req.quoteRequest())
	if err != nil {
		return nil, err
	}
	if !priced.quote.Serviceable {
		return nil, &apperrors.ErrUnprocessable{
			Code:    "pincode_not_serviceable",
			Message: "pincode not serviceable",
			Details: map[string]interface{}{"pincode": pincode.NormalizeCode(req.Shipping.Pincode)},
		}
	}

	totals := priced.quote.Totals
	if req.ExpectedTotal != nil && !req.ExpectedTotal.Round(2).Equal(totals.Total) {
		s.logger.Info("Checkout total mismatch",
			zap.String("expected", req.ExpectedTotal.StringFixed(2)),
			zap.String("actual", totals.Total.StringFixed(2)))
		return nil, &apperrors.ErrConflict{
			Message: "order total has changed",
			Details: map[string]interface{}{
				"expected_total": req.ExpectedTotal.StringFixed(2),
				"total":          totals.Total.StringFixed(2),
				"totals":         totals,
			},
		}
	}

	order := s.buildOrder(req, priced)

	err = s.repos.Transactor.WithinTransaction(ctx, func(tx *repository.Repositories) error {
		if priced.coupon != nil {
			if err := s.coupons.Redeem(ctx, tx.Coupon, priced.coupon); err != nil {
				return CouponError(priced.coupon.Code, err)
			}
		}

		if err := tx.Order.Create(ctx, order); err != nil {
			return err
		}

		event := &domain.OrderEvent{
			OrderID:   order.ID,
			EventType: domain.EventOrderCreated,
			EventData: map[string]interface{}{
				"order_number": order.OrderNumber,
				"status":       order.Status,
				"total":        order.Total.StringFixed(2),
			},
		}
		if order.CouponCode != "" {
			event.EventData["coupon_code"] = order.CouponCode
		}
		if err := tx.OrderEvent.Create(ctx, event); err != nil {
			return err
		}

		if req.IdempotencyKey != "" {
			return tx.IdempotencyKey.Create(ctx, &domain.IdempotencyKey{
				Key:         req.IdempotencyKey,
				OrderID:     order.ID,
				RequestHash: req.RequestHash,
			})
		}
		return nil
	})
	if err != nil {
		s.logger.Warn("Failed to place order", zap.Error(err))
		return nil, err
	}

	s.logger.Info("Order placed",
		zap.String("order_number", order.OrderNumber),
		zap.String("total", order.Total.StringFixed(2)),
		zap.Int("items", len(order.Items)))

	if req.SessionID != uuid.Nil && s.carts != nil {
		if err := s.carts.Clear(ctx, req.SessionID); err != nil {
			s.logger.Warn("Failed to clear cart after checkout", zap.String("session_id", req.SessionID.String()), zap.Error(err))
		}
	}
	s.notifier.OrderChanged(UpdateOrderCreated, order)

	return order, nil
}

func (s *CheckoutService) price(ctx context.Context, req QuoteRequest) (*pricedCheckout, error) {
	lines, err := s.resolveLines(ctx, req)
	if err != nil {
		return nil, err
	}

	out := &pricedCheckout{lines: lines, quote: Quote{Serviceable: true}}

	if code := pincode.NormalizeCode(req.Pincode); code != "" {
		p, err := s.directory.Lookup(ctx, code)
		switch {
		case errors.Is(err, pincode.ErrPincodeNotFound):
			// unknown pincodes are priced with the fallback rule
		case err != nil:
			return nil, err
		case !p.IsActive:
			out.quote.Serviceable = false
		default:
			out.pincode = p
			out.quote.DeliveryZone = p.DeliveryZone
		}
	}

	in := pricing.Input{
		Lines:          lines,
		DeliverySlotID: req.DeliverySlot,
		IsGift:         req.IsGift,
		GiftWrapID:     req.GiftWrapID,
		Pincode:        out.pincode,
	}
	totals, err := s.aggregator.Compute(in)
	if err != nil {
		return nil, pricingError(err)
	}

	if strings.TrimSpace(req.CouponCode) != "" {
		c, err := s.coupons.Validate(ctx, req.CouponCode, totals.Subtotal, s.now())
		if err != nil {
			return nil, CouponError(req.CouponCode, err)
		}
		in.Coupon = c
		totals, err = s.aggregator.Compute(in)
		if err != nil {
			return nil, pricingError(err)
		}
		out.coupon = c
		out.quote.Coupon = &CouponSummary{Code: c.Code, Discount: totals.Discount}
	}

	out.quote.Totals = totals
	out.quote.Lines = make([]QuoteLine, 0, len(lines))
	for _, l := range lines {
		out.quote.Lines = append(out.quote.Lines, QuoteLine{
			ProductID: l.ProductID,
			Name:      l.Name,
			UnitPrice: l.UnitPrice,
			Quantity:  l.Quantity,
			LineTotal: l.LineTotal(),
		})
	}
	return out, nil
}

// resolveLines merges duplicate products and prices every line from the catalog.
// An empty item list falls back to the session cart.
func (s *CheckoutService) resolveLines(ctx context.Context, req QuoteRequest) ([]domain.CartLine, error) {
	items := req.Items
	if len(items) == 0 && req.SessionID != uuid.Nil && s.carts != nil {
		c, err := s.carts.Load(ctx, req.SessionID)
		if err != nil {
			return nil, err
		}
		for _, l := range c.Lines() {
			items = append(items, ItemRequest{ProductID: l.ProductID, Quantity: l.Quantity})
		}
	}
	if len(items) == 0 {
		return nil, &apperrors.ErrValidation{
			Message: "cart is empty",
			Fields:  map[string]string{"items": "at least one item is required"},
		}
	}

	order := make([]uuid.UUID, 0, len(items))
	quantities := make(map[uuid.UUID]int, len(items))
	for _, it := range items {
		if it.Quantity < 1 {
			return nil, &apperrors.ErrValidation{
				Message: "invalid quantity",
				Fields:  map[string]string{"quantity": "must be at least 1"},
			}
		}
		if _, seen := quantities[it.ProductID]; !seen {
			order = append(order, it.ProductID)
		}
		quantities[it.ProductID] += it.Quantity
	}

	products, err := s.repos.Product.GetByIDs(ctx, order)
	if err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]*domain.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	lines := make([]domain.CartLine, 0, len(order))
	for _, id := range order {
		p, ok := byID[id]
		if !ok {
			return nil, &apperrors.ErrUnprocessable{
				Code:    "product_unavailable",
				Message: "product is no longer available",
				Details: map[string]interface{}{"product_id": id.String()},
			}
		}
		if !p.InStock {
			return nil, &apperrors.ErrUnprocessable{
				Code:    "out_of_stock",
				Message: p.Name + " is out of stock",
				Details: map[string]interface{}{"product_id": id.String()},
			}
		}
		lines = append(lines, domain.CartLine{
			ProductID: p.ID,
			Name:      p.Name,
			UnitPrice: p.Price,
			Quantity:  quantities[id],
		})
	}
	return lines, nil
}

func (s *CheckoutService) buildOrder(req PlaceOrderRequest, priced *pricedCheckout) *domain.Order {
	totals := priced.quote.Totals
	order := &domain.Order{
		OrderNumber:   OrderNumberPrefix + ulid.Make().String(),
		CustomerName:  strings.TrimSpace(req.Customer.Name),
		CustomerEmail: strings.ToLower(strings.TrimSpace(req.Customer.Email)),
		CustomerPhone: strings.TrimSpace(req.Customer.Phone),
		ShippingAddress: domain.ShippingAddress{
			Line1:   strings.TrimSpace(req.Shipping.Line1),
			Line2:   strings.TrimSpace(req.Shipping.Line2),
			City:    strings.TrimSpace(req.Shipping.City),
			State:   strings.TrimSpace(req.Shipping.State),
			Pincode: pincode.NormalizeCode(req.Shipping.Pincode),
		},
		DeliveryDate:       req.DeliveryDate,
		DeliverySlot:       req.DeliverySlot,
		DeliveryZone:       priced.quote.DeliveryZone,
		IsGift:             req.IsGift,
		Subtotal:           totals.Subtotal,
		DeliveryCharge:     totals.DeliveryCharge,
		GiftWrapCharge:     totals.GiftWrapCharge,
		DeliverySlotCharge: totals.DeliverySlotCharge,
		Discount:           totals.Discount,
		Total:              totals.Total,
		Status:             domain.OrderStatusPending,
		PaymentStatus:      domain.PaymentStatusPending,
		PaymentMethod:      req.PaymentMethod,
	}
	if req.IsGift {
		order.GiftWrapID = req.GiftWrapID
		if order.GiftWrapID == "" {
			order.GiftWrapID = pricing.DefaultGiftWrapID
		}
		order.GiftMessage = strings.TrimSpace(req.GiftMessage)
		order.RecipientName = strings.TrimSpace(req.RecipientName)
	}
	if priced.coupon != nil {
		order.CouponCode = priced.coupon.Code
	}
	order.Items = make([]domain.OrderItem, 0, len(priced.lines))
	for _, l := range priced.lines {
		order.Items = append(order.Items, domain.OrderItem{
			ProductID:   l.ProductID,
			ProductName: l.Name,
			UnitPrice:   l.UnitPrice,
			Quantity:    l.Quantity,
			LineTotal:   l.LineTotal(),
		})
	}
	return order
}

func validatePlaceOrder(req PlaceOrderRequest) error {
	fields := map[string]string{}
	if strings.TrimSpace(req.Customer.Name) == "" {
		fields["customer.name"] = "is required"
	}
	if !strings.Contains(req.Customer.Email, "@") {
		fields["customer.email"] = "must be a valid email"
	}
	if strings.TrimSpace(req.Customer.Phone) == "" {
		fields["customer.phone"] = "is required"
	}
	if strings.TrimSpace(req.Shipping.Line1) == "" {
		fields["shipping.line1"] = "is required"
	}
	if strings.TrimSpace(req.Shipping.City) == "" {
		fields["shipping.city"] = "is required"
	}
	if strings.TrimSpace(req.Shipping.Pincode) == "" {
		fields["shipping.pincode"] = "is required"
	}
	if req.IsGift && strings.TrimSpace(req.RecipientName) == "" {
		fields["recipient_name"] = "is required for gifts"
	}
	if len(fields) > 0 {
		return &apperrors.ErrValidation{Message: "invalid checkout request", Fields: fields}
	}
	return nil
}

// CouponError maps coupon evaluator errors onto the API error taxonomy
func CouponError(code string, err error) error {
	code = coupon.NormalizeCode(code)
	var minimum *coupon.MinimumNotMetError
	switch {
	case errors.Is(err, coupon.ErrCouponNotFound):
		return &apperrors.ErrNotFound{Resource: "coupon", ID: code}
	case errors.As(err, &minimum):
		return &apperrors.ErrUnprocessable{
			Code:    "coupon_minimum_not_met",
			Message: minimum.Error(),
			Details: map[string]interface{}{
				"minimum":   minimum.Minimum.StringFixed(2),
				"shortfall": minimum.Shortfall.StringFixed(2),
			},
			Err: err,
		}
	case errors.Is(err, coupon.ErrCouponInactive):
		return &apperrors.ErrUnprocessable{Code: "coupon_inactive", Message: err.Error(), Err: err}
	case errors.Is(err, coupon.ErrCouponNotYetValid):
		return &apperrors.ErrUnprocessable{Code: "coupon_not_yet_valid", Message: err.Error(), Err: err}
	case errors.Is(err, coupon.ErrCouponExpired):
		return &apperrors.ErrUnprocessable{Code: "coupon_expired", Message: err.Error(), Err: err}
	case errors.Is(err, coupon.ErrCouponExhausted):
		return &apperrors.ErrUnprocessable{Code: "coupon_exhausted", Message: err.Error(), Err: err}
	default:
		return err
	}
}

func pricingError(err error) error {
	switch {
	case errors.Is(err, pricing.ErrUnknownGiftWrap):
		return &apperrors.ErrValidation{Message: err.Error(), Fields: map[string]string{"gift_wrap_id": "unknown gift wrap"}}
	case errors.Is(err, pricing.ErrUnknownDeliverySlot):
		return &apperrors.ErrValidation{Message: err.Error(), Fields: map[string]string{"delivery_slot": "unknown delivery slot"}}
	case errors.Is(err, pricing.ErrInvalidLine):
		return &apperrors.ErrValidation{Message: err.Error(), Fields: map[string]string{"items": "invalid line"}}
	default:
		return err
	}
}

