package memory

import (
	"context"
	stderrors "errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yawerky/houseOfGul-sub000/internal/domain"
	"github.com/yawerky/houseOfGul-sub000/internal/repository"
	"github.com/yawerky/houseOfGul-sub000/pkg/errors"
)

func TestTableCreateUpdateDelete(t *testing.T) {
	repos := NewRepositories(nil)
	ctx := context.Background()

	c := &domain.Category{Name: "Roses", Slug: "roses"}
	require.NoError(t, repos.Category.Create(ctx, c))
	assert.NotEqual(t, uuid.Nil, c.ID)
	assert.False(t, c.CreatedAt.IsZero())
	created := c.CreatedAt

	c.Name = "Garden Roses"
	require.NoError(t, repos.Category.Update(ctx, c))

	got, err := repos.Category.GetBySlug(ctx, "roses")
	require.NoError(t, err)
	assert.Equal(t, "Garden Roses", got.Name)
	assert.True(t, got.CreatedAt.Equal(created))

	byName, err := repos.Category.GetByNameOrSlug(ctx, " garden roses ")
	require.NoError(t, err)
	assert.Equal(t, c.ID, byName.ID)

	require.NoError(t, repos.Category.Delete(ctx, c.ID))
	_, err = repos.Category.GetByID(ctx, c.ID)
	var notFound *errors.ErrNotFound
	assert.True(t, stderrors.As(err, &notFound))
}

func TestTableRejectsDuplicateKeys(t *testing.T) {
	repos := NewRepositories(nil)
	ctx := context.Background()

	require.NoError(t, repos.Category.Create(ctx, &domain.Category{Name: "Lilies", Slug: "lilies"}))

	var conflict *errors.ErrConflict
	err := repos.Category.Create(ctx, &domain.Category{Name: "LILIES", Slug: "other"})
	assert.True(t, stderrors.As(err, &conflict), "name collides case-insensitively")

	err = repos.Category.Create(ctx, &domain.Category{Name: "Other", Slug: "lilies"})
	assert.True(t, stderrors.As(err, &conflict), "slug collides")

	other := &domain.Category{Name: "Tulips", Slug: "tulips"}
	require.NoError(t, repos.Category.Create(ctx, other))
	other.Slug = "lilies"
	err = repos.Category.Update(ctx, other)
	assert.True(t, stderrors.As(err, &conflict))
}

func TestUpdateUnknownIsNotFound(t *testing.T) {
	repos := NewRepositories(nil)
	err := repos.Banner.Update(context.Background(), &domain.Banner{Model: domain.Model{ID: uuid.New()}, Title: "x"})
	var notFound *errors.ErrNotFound
	assert.True(t, stderrors.As(err, &notFound))
}

func TestProductSearchFilters(t *testing.T) {
	repos := NewRepositories(nil)
	ctx := context.Background()

	roses := &domain.Category{Name: "Roses", Slug: "roses"}
	require.NoError(t, repos.Category.Create(ctx, roses))

	require.NoError(t, repos.Product.Create(ctx, &domain.Product{Slug: "plain", Name: "Daisies", Price: decimal.NewFromInt(10), InStock: true}))
	require.NoError(t, repos.Product.Create(ctx, &domain.Product{Slug: "red", Name: "Red Roses", Price: decimal.NewFromInt(40), CategoryID: &roses.ID, Featured: true, InStock: true}))
	require.NoError(t, repos.Product.Create(ctx, &domain.Product{Slug: "gone", Name: "Gone Roses", Price: decimal.NewFromInt(40), CategoryID: &roses.ID, InStock: false}))

	all, err := repos.Product.Search(ctx, repository.ProductFilter{})
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "red", all[0].Slug)

	byCategory, err := repos.Product.Search(ctx, repository.ProductFilter{CategorySlug: "roses", IncludeOutOfStock: true})
	require.NoError(t, err)
	assert.Len(t, byCategory, 2)

	unknown, err := repos.Product.Search(ctx, repository.ProductFilter{CategorySlug: "cacti"})
	require.NoError(t, err)
	assert.Empty(t, unknown)

	search, err := repos.Product.Search(ctx, repository.ProductFilter{Search: "DAIS"})
	require.NoError(t, err)
	require.Len(t, search, 1)
	assert.Equal(t, "plain", search[0].Slug)
}

func TestCouponIncrementUsageIsAtomic(t *testing.T) {
	repos := NewRepositories(nil)
	ctx := context.Background()

	limit := 3
	c := &domain.Coupon{Code: "THREE", DiscountType: domain.DiscountTypeFixed, DiscountValue: decimal.NewFromInt(5), UsageLimit: &limit, IsActive: true}
	require.NoError(t, repos.Coupon.Create(ctx, c))

	var wg sync.WaitGroup
	var mu sync.Mutex
	successes := 0
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := repos.Coupon.IncrementUsage(ctx, c.ID)
			assert.NoError(t, err)
			if ok {
				mu.Lock()
				successes++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 3, successes)
	stored, err := repos.Coupon.GetByCode(ctx, "THREE")
	require.NoError(t, err)
	assert.Equal(t, 3, stored.UsedCount)
}

func TestCouponUpdateKeepsRedemptions(t *testing.T) {
	repos := NewRepositories(nil)
	ctx := context.Background()

	limit := 1
	c := &domain.Coupon{Code: "EDITME", DiscountType: domain.DiscountTypeFixed, DiscountValue: decimal.NewFromInt(5), UsageLimit: &limit, IsActive: true}
	require.NoError(t, repos.Coupon.Create(ctx, c))

	stored, err := repos.Coupon.GetByID(ctx, c.ID)
	require.NoError(t, err)
	ok, err := repos.Coupon.IncrementUsage(ctx, c.ID)
	require.NoError(t, err)
	require.True(t, ok)

	edited := *stored
	edited.IsActive = false
	require.NoError(t, repos.Coupon.Update(ctx, &edited))
	assert.Equal(t, 1, edited.UsedCount)

	got, err := repos.Coupon.GetByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.UsedCount)
	assert.False(t, got.IsActive)
}

func TestPincodeUpsertAndSearch(t *testing.T) {
	repos := NewRepositories(nil)
	ctx := context.Background()

	require.NoError(t, repos.Pincode.Upsert(ctx, &domain.Pincode{Code: "400001", City: "Mumbai", State: "MH", IsActive: true}))
	require.NoError(t, repos.Pincode.Upsert(ctx, &domain.Pincode{Code: "110001", City: "Delhi", State: "DL", IsActive: true}))
	require.NoError(t, repos.Pincode.Upsert(ctx, &domain.Pincode{Code: "400001", City: "Mumbai Fort", State: "MH", IsActive: true}))

	all, err := repos.Pincode.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "110001", all[0].Code)
	assert.Equal(t, "Mumbai Fort", all[1].City)

	found, err := repos.Pincode.Search(ctx, "mumbai", 10, 0)
	require.NoError(t, err)
	assert.Len(t, found, 1)

	paged, err := repos.Pincode.Search(ctx, "", 1, 1)
	require.NoError(t, err)
	require.Len(t, paged, 1)
	assert.Equal(t, "400001", paged[0].Code)
}

func TestOrdersAndEvents(t *testing.T) {
	repos := NewRepositories(nil)
	ctx := context.Background()

	order := &domain.Order{
		OrderNumber:   "HG-1",
		CustomerName:  "Ari",
		CustomerEmail: "ari@example.com",
		Status:        domain.OrderStatusPending,
		PaymentStatus: domain.PaymentStatusPending,
		Items:         []domain.OrderItem{{ProductName: "Roses", Quantity: 1}},
	}
	require.NoError(t, repos.Order.Create(ctx, order))
	assert.Equal(t, order.ID, order.Items[0].OrderID)

	var conflict *errors.ErrConflict
	err := repos.Order.Create(ctx, &domain.Order{OrderNumber: "HG-1"})
	assert.True(t, stderrors.As(err, &conflict))

	got, err := repos.Order.GetByOrderNumber(ctx, "HG-1")
	require.NoError(t, err)
	got.Items[0].Quantity = 99
	again, err := repos.Order.GetByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, again.Items[0].Quantity, "stored items are not shared with callers")

	require.NoError(t, repos.Order.UpdatePaymentStatus(ctx, order.ID, domain.PaymentStatusPaid, "ref-1"))
	require.NoError(t, repos.Order.UpdateNotes(ctx, order.ID, "leave at door"))
	listed, err := repos.Order.List(ctx, repository.OrderFilter{PaymentStatus: domain.PaymentStatusPaid, Search: "ARI@"})
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, "ref-1", listed[0].PaymentReference)
	assert.Equal(t, "leave at door", listed[0].AdminNotes)

	require.NoError(t, repos.OrderEvent.Create(ctx, &domain.OrderEvent{OrderID: order.ID, EventType: domain.EventOrderCreated}))
	events, err := repos.OrderEvent.GetByOrderID(ctx, order.ID)
	require.NoError(t, err)
	assert.Len(t, events, 1)
}

func TestTransactionRollsBackOnError(t *testing.T) {
	repos := NewRepositories(nil)
	ctx := context.Background()

	limit := 1
	c := &domain.Coupon{Code: "ONCE", DiscountType: domain.DiscountTypeFixed, DiscountValue: decimal.NewFromInt(5), UsageLimit: &limit, IsActive: true}
	require.NoError(t, repos.Coupon.Create(ctx, c))

	boom := stderrors.New("boom")
	err := repos.Transactor.WithinTransaction(ctx, func(tx *repository.Repositories) error {
		ok, err := tx.Coupon.IncrementUsage(ctx, c.ID)
		require.NoError(t, err)
		require.True(t, ok)
		require.NoError(t, tx.Order.Create(ctx, &domain.Order{OrderNumber: "HG-2"}))
		return tx.Transactor.WithinTransaction(ctx, func(*repository.Repositories) error { return boom })
	})
	require.ErrorIs(t, err, boom)

	stored, err := repos.Coupon.GetByCode(ctx, "ONCE")
	require.NoError(t, err)
	assert.Equal(t, 0, stored.UsedCount)

	_, err = repos.Order.GetByOrderNumber(ctx, "HG-2")
	var notFound *errors.ErrNotFound
	assert.True(t, stderrors.As(err, &notFound))
}

func TestRollbackKeepsConcurrentWrites(t *testing.T) {
	repos := NewRepositories(nil)
	ctx := context.Background()

	inTx := make(chan struct{})
	release := make(chan struct{})
	boom := stderrors.New("boom")
	done := make(chan error, 1)
	go func() {
		done <- repos.Transactor.WithinTransaction(ctx, func(tx *repository.Repositories) error {
			if err := tx.Order.Create(ctx, &domain.Order{OrderNumber: "HG-FAIL"}); err != nil {
				return err
			}
			close(inTx)
			<-release
			return boom
		})
	}()

	<-inTx
	sessionID := uuid.New()
	require.NoError(t, repos.Cart.Save(ctx, &domain.CartSession{ID: sessionID, Lines: []domain.CartLine{{ProductID: uuid.New(), Quantity: 2}}}))
	inquiry := &domain.Inquiry{Name: "Sam", Email: "sam@example.com", Message: "hello"}
	require.NoError(t, repos.Inquiry.Create(ctx, inquiry))
	close(release)
	require.ErrorIs(t, <-done, boom)

	cart, err := repos.Cart.Get(ctx, sessionID)
	require.NoError(t, err)
	require.NotNil(t, cart)
	assert.Len(t, cart.Lines, 1)

	_, err = repos.Inquiry.GetByID(ctx, inquiry.ID)
	assert.NoError(t, err)

	_, err = repos.Order.GetByOrderNumber(ctx, "HG-FAIL")
	var notFound *errors.ErrNotFound
	assert.True(t, stderrors.As(err, &notFound))
}

func TestRollbackRevertsUpdatesAndEvents(t *testing.T) {
	repos := NewRepositories(nil)
	ctx := context.Background()

	order := &domain.Order{OrderNumber: "HG-3", Status: domain.OrderStatusPending}
	require.NoError(t, repos.Order.Create(ctx, order))

	boom := stderrors.New("boom")
	err := repos.Transactor.WithinTransaction(ctx, func(tx *repository.Repositories) error {
		require.NoError(t, tx.Order.UpdateStatus(ctx, order.ID, domain.OrderStatusConfirmed))
		require.NoError(t, tx.OrderEvent.Create(ctx, &domain.OrderEvent{OrderID: order.ID, EventType: domain.EventStatusChange}))
		return boom
	})
	require.ErrorIs(t, err, boom)

	got, err := repos.Order.GetByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusPending, got.Status)
	events, err := repos.OrderEvent.GetByOrderID(ctx, order.ID)
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestIdempotencyAdminAndCart(t *testing.T) {
	repos := NewRepositories(nil)
	ctx := context.Background()

	missing, err := repos.IdempotencyKey.GetByKey(ctx, "k1")
	require.NoError(t, err)
	assert.Nil(t, missing)
	require.NoError(t, repos.IdempotencyKey.Create(ctx, &domain.IdempotencyKey{Key: "k1", OrderID: uuid.New(), RequestHash: "h"}))
	got, err := repos.IdempotencyKey.GetByKey(ctx, "k1")
	require.NoError(t, err)
	assert.Equal(t, "h", got.RequestHash)

	require.NoError(t, repos.AdminUser.Create(ctx, &domain.AdminUser{Email: " Owner@Example.com ", Role: domain.AdminRoleAdmin, IsActive: true}))
	admin, err := repos.AdminUser.GetByEmail(ctx, "owner@example.com")
	require.NoError(t, err)
	assert.Equal(t, "owner@example.com", admin.Email)

	id := uuid.New()
	cart := &domain.CartSession{ID: id, Lines: []domain.CartLine{{ProductID: uuid.New(), Quantity: 1}}}
	require.NoError(t, repos.Cart.Save(ctx, cart))
	assert.WithinDuration(t, time.Now(), cart.UpdatedAt, time.Second)
	loaded, err := repos.Cart.Get(ctx, id)
	require.NoError(t, err)
	require.Len(t, loaded.Lines, 1)
	require.NoError(t, repos.Cart.Delete(ctx, id))
	gone, err := repos.Cart.Get(ctx, id)
	require.NoError(t, err)
	assert.Nil(t, gone)
}
