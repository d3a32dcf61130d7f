package cart

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yawerky/houseOfGul-sub000/internal/domain"
	"github.com/yawerky/houseOfGul-sub000/internal/repository/memory"
)

func TestCartQuantityRules(t *testing.T) {
	c := New(nil)
	roses, lilies := uuid.New(), uuid.New()

	require.NoError(t, c.Add(roses, "Roses", decimal.NewFromInt(40), 1))
	require.NoError(t, c.Add(roses, "Roses", decimal.NewFromInt(42), 2))
	require.NoError(t, c.Add(lilies, "Lilies", decimal.NewFromInt(30), 1))
	require.Equal(t, 2, c.Len())
	assert.Equal(t, 4, c.ItemCount())
	assert.True(t, c.Lines()[0].UnitPrice.Equal(decimal.NewFromInt(42)), "price refreshed on add")

	assert.True(t, errors.Is(c.Add(roses, "Roses", decimal.NewFromInt(40), 0), ErrInvalidQuantity))
	assert.True(t, errors.Is(c.SetQuantity(roses, -1), ErrInvalidQuantity))

	require.NoError(t, c.SetQuantity(roses, 0))
	assert.Equal(t, 1, c.Len(), "quantity 0 deletes the line")
	for _, l := range c.Lines() {
		assert.GreaterOrEqual(t, l.Quantity, 1)
	}

	assert.True(t, errors.Is(c.SetQuantity(roses, 2), ErrLineNotFound))
	assert.True(t, errors.Is(c.Remove(roses), ErrLineNotFound))

	require.NoError(t, c.SetQuantity(lilies, 500))
	assert.Equal(t, MaxQuantity, c.Lines()[0].Quantity)
}

func TestNewDropsZeroQuantityLines(t *testing.T) {
	c := New([]domain.CartLine{{ProductID: uuid.New(), Quantity: 0}, {ProductID: uuid.New(), Quantity: 2}})
	assert.Equal(t, 1, c.Len())
}

func TestLinesReturnsCopy(t *testing.T) {
	c := New(nil)
	require.NoError(t, c.Add(uuid.New(), "Roses", decimal.NewFromInt(10), 1))
	lines := c.Lines()
	lines[0].Quantity = 50
	assert.Equal(t, 1, c.Lines()[0].Quantity)
}

func TestStoreRoundTrip(t *testing.T) {
	repos := memory.NewRepositories(nil)
	store := NewStore(repos.Cart)
	ctx := context.Background()
	session := uuid.New()

	empty, err := store.Load(ctx, session)
	require.NoError(t, err)
	assert.Equal(t, 0, empty.Len())

	c := New(nil)
	require.NoError(t, c.Add(uuid.New(), "Roses", decimal.NewFromInt(10), 3))
	require.NoError(t, store.Save(ctx, session, c))

	loaded, err := store.Load(ctx, session)
	require.NoError(t, err)
	assert.Equal(t, 3, loaded.ItemCount())

	require.NoError(t, store.Save(ctx, session, New(nil)))
	stored, err := repos.Cart.Get(ctx, session)
	require.NoError(t, err)
	assert.Nil(t, stored, "saving an empty cart removes the session row")
}

func TestSessionsCookie(t *testing.T) {
	sessions, err := NewSessions("", []byte("0123456789abcdef0123456789abcdef"), false)
	require.NoError(t, err)

	first := httptest.NewRecorder()
	id, err := sessions.Ensure(first, httptest.NewRequest(http.MethodGet, "/v1/cart", nil))
	require.NoError(t, err)
	cookies := first.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.True(t, cookies[0].HttpOnly)

	req := httptest.NewRequest(http.MethodGet, "/v1/cart", nil)
	req.AddCookie(cookies[0])
	again := httptest.NewRecorder()
	same, err := sessions.Ensure(again, req)
	require.NoError(t, err)
	assert.Equal(t, id, same)
	assert.Empty(t, again.Result().Cookies(), "existing session is reused")

	tampered := httptest.NewRequest(http.MethodGet, "/v1/cart", nil)
	tampered.AddCookie(&http.Cookie{Name: cookies[0].Name, Value: cookies[0].Value + "x"})
	_, ok := sessions.SessionID(tampered)
	assert.False(t, ok)

	_, err = NewSessions("c", nil, false)
	assert.Error(t, err)
}
