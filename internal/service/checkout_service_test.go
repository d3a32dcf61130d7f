package service

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yawerky/houseOfGul-sub000/internal/cart"
	"github.com/yawerky/houseOfGul-sub000/internal/domain"
	"github.com/yawerky/houseOfGul-sub000/internal/repository"
	apperrors "github.com/yawerky/houseOfGul-sub000/pkg/errors"
)

func TestQuoteUsesFallbackForUnknownPincode(t *testing.T) {
	env := newTestEnv(t)

	q, err := env.checkout.Quote(context.Background(), QuoteRequest{
		Items:   []ItemRequest{{ProductID: env.rose.ID, Quantity: 2}, {ProductID: env.bouquet.ID, Quantity: 1}},
		Pincode: "99999",
	})
	require.NoError(t, err)

	assert.True(t, q.Serviceable)
	assert.Equal(t, "185.00", q.Totals.Subtotal.StringFixed(2))
	assert.Equal(t, "15.00", q.Totals.DeliveryCharge.StringFixed(2))
	assert.Equal(t, "200.00", q.Totals.Total.StringFixed(2))
	assert.Empty(t, q.DeliveryZone)
	require.Len(t, q.Lines, 2)
}

func TestQuoteUsesPincodeRecord(t *testing.T) {
	env := newTestEnv(t)

	q, err := env.checkout.Quote(context.Background(), QuoteRequest{
		Items:   []ItemRequest{{ProductID: env.rose.ID, Quantity: 2}, {ProductID: env.bouquet.ID, Quantity: 1}},
		Pincode: " 110001 ",
	})
	require.NoError(t, err)

	assert.Equal(t, domain.DeliveryZoneSameDay, q.DeliveryZone)
	assert.True(t, q.Totals.DeliveryCharge.IsZero(), "185 is above the 150 free threshold")
	assert.Equal(t, "185.00", q.Totals.Total.StringFixed(2))

	q, err = env.checkout.Quote(context.Background(), QuoteRequest{
		Items:   []ItemRequest{{ProductID: env.rose.ID, Quantity: 1}},
		Pincode: "110001",
	})
	require.NoError(t, err)
	assert.Equal(t, "10.00", q.Totals.DeliveryCharge.StringFixed(2))
	assert.Equal(t, "60.00", q.Totals.Total.StringFixed(2))
}

func TestQuoteInactivePincodeIsNotServiceable(t *testing.T) {
	env := newTestEnv(t)

	q, err := env.checkout.Quote(context.Background(), QuoteRequest{
		Items:   []ItemRequest{{ProductID: env.rose.ID, Quantity: 1}},
		Pincode: "400001",
	})
	require.NoError(t, err)
	assert.False(t, q.Serviceable)
}

func TestQuoteMergesDuplicateItemsAndUsesCatalogPrice(t *testing.T) {
	env := newTestEnv(t)

	q, err := env.checkout.Quote(context.Background(), QuoteRequest{
		Items: []ItemRequest{
			{ProductID: env.rose.ID, Quantity: 1},
			{ProductID: env.bouquet.ID, Quantity: 1},
			{ProductID: env.rose.ID, Quantity: 2},
		},
	})
	require.NoError(t, err)
	require.Len(t, q.Lines, 2)
	assert.Equal(t, env.rose.ID, q.Lines[0].ProductID)
	assert.Equal(t, 3, q.Lines[0].Quantity)
	assert.Equal(t, "150.00", q.Lines[0].LineTotal.StringFixed(2))
	assert.Equal(t, "235.00", q.Totals.Subtotal.StringFixed(2))
}

func TestQuoteRejectsUnavailableProducts(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.checkout.Quote(ctx, QuoteRequest{Items: []ItemRequest{{ProductID: env.orchid.ID, Quantity: 1}}})
	var unprocessable *apperrors.ErrUnprocessable
	require.ErrorAs(t, err, &unprocessable)
	assert.Equal(t, "out_of_stock", unprocessable.Code)

	_, err = env.checkout.Quote(ctx, QuoteRequest{Items: []ItemRequest{{ProductID: randomID(), Quantity: 1}}})
	require.ErrorAs(t, err, &unprocessable)
	assert.Equal(t, "product_unavailable", unprocessable.Code)

	_, err = env.checkout.Quote(ctx, QuoteRequest{})
	var validation *apperrors.ErrValidation
	require.ErrorAs(t, err, &validation)

	_, err = env.checkout.Quote(ctx, QuoteRequest{Items: []ItemRequest{{ProductID: env.rose.ID, Quantity: 0}}})
	require.ErrorAs(t, err, &validation)
}

func TestQuoteWithCoupon(t *testing.T) {
	env := newTestEnv(t)
	env.addCoupon(t, &domain.Coupon{Code: "welcome10", DiscountType: domain.DiscountTypePercentage, DiscountValue: dec("10")})

	q, err := env.checkout.Quote(context.Background(), QuoteRequest{
		Items:      []ItemRequest{{ProductID: env.rose.ID, Quantity: 2}, {ProductID: env.bouquet.ID, Quantity: 1}},
		CouponCode: " Welcome10",
	})
	require.NoError(t, err)

	require.NotNil(t, q.Coupon)
	assert.Equal(t, "WELCOME10", q.Coupon.Code)
	assert.Equal(t, "18.50", q.Totals.Discount.StringFixed(2))
	// delivery is decided on the pre-discount subtotal
	assert.Equal(t, "15.00", q.Totals.DeliveryCharge.StringFixed(2))
	assert.Equal(t, "181.50", q.Totals.Total.StringFixed(2))
}

func TestQuoteCouponErrors(t *testing.T) {
	env := newTestEnv(t)
	env.addCoupon(t, &domain.Coupon{
		Code: "BIG25", DiscountType: domain.DiscountTypeFixed, DiscountValue: dec("25"),
		MinOrderAmount: decimal.NullDecimal{Decimal: dec("250"), Valid: true},
	})
	items := []ItemRequest{{ProductID: env.rose.ID, Quantity: 2}, {ProductID: env.bouquet.ID, Quantity: 1}}

	_, err := env.checkout.Quote(context.Background(), QuoteRequest{Items: items, CouponCode: "big25"})
	var unprocessable *apperrors.ErrUnprocessable
	require.ErrorAs(t, err, &unprocessable)
	assert.Equal(t, "coupon_minimum_not_met", unprocessable.Code)
	assert.Equal(t, "65.00", unprocessable.Details["shortfall"])

	_, err = env.checkout.Quote(context.Background(), QuoteRequest{Items: items, CouponCode: "NOPE"})
	var notFound *apperrors.ErrNotFound
	require.ErrorAs(t, err, &notFound)
}

func TestQuoteUnknownOptions(t *testing.T) {
	env := newTestEnv(t)
	items := []ItemRequest{{ProductID: env.rose.ID, Quantity: 1}}

	_, err := env.checkout.Quote(context.Background(), QuoteRequest{Items: items, IsGift: true, GiftWrapID: "gold-leaf"})
	var validation *apperrors.ErrValidation
	require.ErrorAs(t, err, &validation)
	assert.Contains(t, validation.Fields, "gift_wrap_id")

	_, err = env.checkout.Quote(context.Background(), QuoteRequest{Items: items, DeliverySlot: "dawn"})
	require.ErrorAs(t, err, &validation)
	assert.Contains(t, validation.Fields, "delivery_slot")

	q, err := env.checkout.Quote(context.Background(), QuoteRequest{Items: items, IsGift: true, GiftWrapID: "premium", DeliverySlot: "midnight"})
	require.NoError(t, err)
	assert.Equal(t, "5.00", q.Totals.GiftWrapCharge.StringFixed(2))
	assert.Equal(t, "10.00", q.Totals.DeliverySlotCharge.StringFixed(2))
}

func TestPlaceOrder(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	updates, cancel := env.feed.Subscribe()
	defer cancel()

	order := env.placeOrder(t)

	assert.True(t, strings.HasPrefix(order.OrderNumber, OrderNumberPrefix))
	assert.Equal(t, domain.OrderStatusPending, order.Status)
	assert.Equal(t, domain.PaymentStatusPending, order.PaymentStatus)
	assert.Equal(t, "asha@example.com", order.CustomerEmail)
	assert.Equal(t, "200.00", order.Total.StringFixed(2))
	require.Len(t, order.Items, 2)

	stored, err := env.repos.Order.GetByOrderNumber(ctx, order.OrderNumber)
	require.NoError(t, err)
	assert.Equal(t, order.ID, stored.ID)
	assert.Len(t, stored.Items, 2)

	events, err := env.repos.OrderEvent.GetByOrderID(ctx, order.ID)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, domain.EventOrderCreated, events[0].EventType)

	var update OrderUpdate
	require.NoError(t, json.Unmarshal(waitForUpdate(t, updates), &update))
	assert.Equal(t, UpdateOrderCreated, update.Type)
	assert.Equal(t, order.OrderNumber, update.OrderNumber)
	assert.Equal(t, "200.00", update.Total)
}

func TestPlaceOrderRejectsInactivePincode(t *testing.T) {
	env := newTestEnv(t)
	req := env.placeRequest()
	req.Shipping.Pincode = "400001"

	_, err := env.checkout.PlaceOrder(context.Background(), req)
	var unprocessable *apperrors.ErrUnprocessable
	require.ErrorAs(t, err, &unprocessable)
	assert.Equal(t, "pincode_not_serviceable", unprocessable.Code)

	orders, err := env.repos.Order.List(context.Background(), repository.OrderFilter{})
	require.NoError(t, err)
	assert.Empty(t, orders)
}

func TestPlaceOrderTotalMismatchPersistsNothing(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	c := env.addCoupon(t, &domain.Coupon{Code: "TEN", DiscountType: domain.DiscountTypeFixed, DiscountValue: dec("10"), UsageLimit: intPtr(5)})

	req := env.placeRequest()
	req.CouponCode = "TEN"
	stale := dec("200")
	req.ExpectedTotal = &stale

	_, err := env.checkout.PlaceOrder(ctx, req)
	var conflict *apperrors.ErrConflict
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, "190.00", conflict.Details["total"])

	orders, err := env.repos.Order.List(ctx, repository.OrderFilter{})
	require.NoError(t, err)
	assert.Empty(t, orders)
	stored, err := env.repos.Coupon.GetByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, stored.UsedCount)

	fresh := dec("190")
	req.ExpectedTotal = &fresh
	order, err := env.checkout.PlaceOrder(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, "TEN", order.CouponCode)
	assert.Equal(t, "190.00", order.Total.StringFixed(2))
}

func TestPlaceOrderRedeemsCouponOnce(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	c := env.addCoupon(t, &domain.Coupon{Code: "ONCE", DiscountType: domain.DiscountTypeFixed, DiscountValue: dec("20"), UsageLimit: intPtr(1)})

	req := env.placeRequest()
	req.CouponCode = "once"
	_, err := env.checkout.PlaceOrder(ctx, req)
	require.NoError(t, err)

	stored, err := env.repos.Coupon.GetByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, stored.UsedCount)

	_, err = env.checkout.PlaceOrder(ctx, req)
	var unprocessable *apperrors.ErrUnprocessable
	require.ErrorAs(t, err, &unprocessable)
	assert.Equal(t, "coupon_exhausted", unprocessable.Code)

	orders, err := env.repos.Order.List(ctx, repository.OrderFilter{})
	require.NoError(t, err)
	assert.Len(t, orders, 1)
}

func TestPlaceOrderIdempotencyKeyRollsBackDuplicate(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	req := env.placeRequest()
	req.IdempotencyKey = "checkout-1"
	req.RequestHash = "abc"
	order, err := env.checkout.PlaceOrder(ctx, req)
	require.NoError(t, err)

	key, err := env.repos.IdempotencyKey.GetByKey(ctx, "checkout-1")
	require.NoError(t, err)
	require.NotNil(t, key)
	assert.Equal(t, order.ID, key.OrderID)

	_, err = env.checkout.PlaceOrder(ctx, req)
	var conflict *apperrors.ErrConflict
	require.ErrorAs(t, err, &conflict)

	orders, err := env.repos.Order.List(ctx, repository.OrderFilter{})
	require.NoError(t, err)
	assert.Len(t, orders, 1)
}

func TestPlaceOrderFromSessionCartClearsIt(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	session := randomID()

	c := cart.New(nil)
	require.NoError(t, c.Add(env.bouquet.ID, env.bouquet.Name, dec("1"), 2))
	require.NoError(t, env.carts.Save(ctx, session, c))

	req := env.placeRequest()
	req.Items = nil
	req.SessionID = session
	order, err := env.checkout.PlaceOrder(ctx, req)
	require.NoError(t, err)

	require.Len(t, order.Items, 1)
	assert.Equal(t, "85.00", order.Items[0].UnitPrice.StringFixed(2), "catalog price wins over the cart snapshot")
	assert.Equal(t, 2, order.Items[0].Quantity)

	loaded, err := env.carts.Load(ctx, session)
	require.NoError(t, err)
	assert.Equal(t, 0, loaded.Len())
}

func TestPlaceOrderGift(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	req := env.placeRequest()
	req.IsGift = true
	_, err := env.checkout.PlaceOrder(ctx, req)
	var validation *apperrors.ErrValidation
	require.ErrorAs(t, err, &validation)
	assert.Contains(t, validation.Fields, "recipient_name")

	req.RecipientName = "Meera"
	req.GiftMessage = "Happy birthday!"
	order, err := env.checkout.PlaceOrder(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, "signature", order.GiftWrapID)
	assert.True(t, order.GiftWrapCharge.IsZero())
	assert.Equal(t, "Meera", order.RecipientName)
}
