package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/yawerky/houseOfGul-sub000/internal/cart"
	"github.com/yawerky/houseOfGul-sub000/internal/coupon"
	"github.com/yawerky/houseOfGul-sub000/internal/domain"
	"github.com/yawerky/houseOfGul-sub000/internal/pincode"
	"github.com/yawerky/houseOfGul-sub000/internal/pricing"
	"github.com/yawerky/houseOfGul-sub000/internal/repository"
	"github.com/yawerky/houseOfGul-sub000/internal/repository/memory"
)

type testEnv struct {
	repos    *repository.Repositories
	feed     *LiveFeed
	carts    cart.Store
	checkout *CheckoutService
	orders   *OrderService

	rose    *domain.Product
	bouquet *domain.Product
	orchid  *domain.Product
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	ctx := context.Background()
	logger := zap.NewNop()

	repos := memory.NewRepositories(logger)
	feed := NewLiveFeed(logger)
	notifier := NewNotifier(feed, "", logger)
	carts := cart.NewStore(repos.Cart)

	aggregator := pricing.NewAggregator(pricing.DefaultOptions(), pricing.Fallback{
		FreeThreshold: dec("200"),
		Charge:        dec("15"),
	})
	env := &testEnv{
		repos: repos,
		feed:  feed,
		carts: carts,
		checkout: NewCheckoutService(repos, aggregator, coupon.NewEvaluator(repos.Coupon, logger),
			pincode.NewDirectory(repos, logger), carts, notifier, logger),
		orders: NewOrderService(repos, notifier, logger),
	}

	env.rose = &domain.Product{Slug: "red-roses", Name: "Red Roses", Price: dec("50"), InStock: true}
	env.bouquet = &domain.Product{Slug: "spring-bouquet", Name: "Spring Bouquet", Price: dec("85"), InStock: true}
	env.orchid = &domain.Product{Slug: "white-orchid", Name: "White Orchid", Price: dec("70"), InStock: false}
	for _, p := range []*domain.Product{env.rose, env.bouquet, env.orchid} {
		require.NoError(t, repos.Product.Create(ctx, p))
	}

	require.NoError(t, repos.Pincode.Create(ctx, &domain.Pincode{
		Code: "110001", City: "Delhi", State: "Delhi", DeliveryZone: domain.DeliveryZoneSameDay,
		DeliveryCharge: dec("10"), MinOrderFree: decimal.NullDecimal{Decimal: dec("150"), Valid: true}, IsActive: true,
	}))
	require.NoError(t, repos.Pincode.Create(ctx, &domain.Pincode{
		Code: "400001", City: "Mumbai", State: "Maharashtra", DeliveryZone: domain.DeliveryZoneNextDay,
		DeliveryCharge: dec("12"), IsActive: false,
	}))
	return env
}

func (e *testEnv) addCoupon(t *testing.T, c *domain.Coupon) *domain.Coupon {
	t.Helper()
	c.IsActive = true
	require.NoError(t, coupon.ValidateDefinition(c))
	require.NoError(t, e.repos.Coupon.Create(context.Background(), c))
	return c
}

func (e *testEnv) placeRequest() PlaceOrderRequest {
	return PlaceOrderRequest{
		Items: []ItemRequest{
			{ProductID: e.rose.ID, Quantity: 2},
			{ProductID: e.bouquet.ID, Quantity: 1},
		},
		Customer: CustomerRequest{Name: "Asha Rao", Email: "Asha@Example.com", Phone: "+1 555 0100"},
		Shipping: AddressRequest{Line1: "12 Park Lane", City: "Springfield", State: "IL", Pincode: "62701"},
	}
}

func (e *testEnv) placeOrder(t *testing.T) *domain.Order {
	t.Helper()
	order, err := e.checkout.PlaceOrder(context.Background(), e.placeRequest())
	require.NoError(t, err)
	return order
}

func intPtr(n int) *int { return &n }

func waitForUpdate(t *testing.T, ch <-chan []byte) []byte {
	t.Helper()
	select {
	case msg := <-ch:
		return msg
	case <-time.After(time.Second):
		t.Fatal("no live feed update")
		return nil
	}
}

func randomID() uuid.UUID { return uuid.New() }
