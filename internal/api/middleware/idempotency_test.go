package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/yawerky/houseOfGul-sub000/internal/domain"
	"github.com/yawerky/houseOfGul-sub000/internal/repository/memory"
)

func idempotencyRouter(t *testing.T) (*gin.Engine, *Idempotency, func(key, hash string, orderID uuid.UUID)) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	repos := memory.NewRepositories(zap.NewNop())

	var seen Idempotency
	r := gin.New()
	r.Use(IdempotencyMiddleware(repos, zap.NewNop()))
	handler := func(c *gin.Context) {
		seen = GetIdempotency(c)
		c.Status(http.StatusNoContent)
	}
	r.POST("/orders", handler)
	r.POST("/other", handler)

	store := func(key, hash string, orderID uuid.UUID) {
		require.NoError(t, repos.IdempotencyKey.Create(context.Background(), &domain.IdempotencyKey{
			Key: key, RequestHash: hash, OrderID: orderID,
		}))
	}
	return r, &seen, store
}

func post(r *gin.Engine, path, key, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	if key != "" {
		req.Header.Set(IdempotencyKeyHeader, key)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestIdempotencyWithoutKey(t *testing.T) {
	r, seen, _ := idempotencyRouter(t)

	w := post(r, "/orders", "", `{"a":1}`)
	require.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, Idempotency{}, *seen)
}

func TestIdempotencyNewKey(t *testing.T) {
	r, seen, _ := idempotencyRouter(t)

	w := post(r, "/orders", " k-1 ", `{"a":1}`)
	require.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "k-1", seen.Key)
	assert.Equal(t, requestHash(http.MethodPost, "/orders", []byte(`{"a":1}`)), seen.RequestHash)
	assert.False(t, seen.Replay())
}

func TestIdempotencyReplayAndConflict(t *testing.T) {
	r, seen, store := idempotencyRouter(t)
	orderID := uuid.New()
	store("k-1", requestHash(http.MethodPost, "/orders", []byte(`{"a":1}`)), orderID)

	w := post(r, "/orders", "k-1", `{"a":1}`)
	require.Equal(t, http.StatusNoContent, w.Code)
	assert.True(t, seen.Replay())
	assert.Equal(t, orderID, seen.ExistingOrderID)

	w = post(r, "/orders", "k-1", `{"a":2}`)
	assert.Equal(t, http.StatusConflict, w.Code)

	// same body on another route is a different request
	w = post(r, "/other", "k-1", `{"a":1}`)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestIdempotencyKeyTooLong(t *testing.T) {
	r, _, _ := idempotencyRouter(t)

	w := post(r, "/orders", strings.Repeat("k", maxIdempotencyKeyLen+1), `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
