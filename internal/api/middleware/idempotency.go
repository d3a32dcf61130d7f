package middleware

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/yawerky/houseOfGul-sub000/internal/repository"
)

const IdempotencyKeyHeader = "Idempotency-Key"

const (
	maxIdempotencyKeyLen = 255
	ctxIdempotency       = "idempotency"
)

// Idempotency is what the middleware learned about a keyed request.
// ExistingOrderID is set when the same key and payload were already accepted.
type Idempotency struct {
	Key             string
	RequestHash     string
	ExistingOrderID uuid.UUID
}

// Replay reports whether the request repeats an accepted submission
func (i Idempotency) Replay() bool { return i.ExistingOrderID != uuid.Nil }

// IdempotencyMiddleware guards checkout submissions carrying an Idempotency-Key.
// The hash covers method, path and body, so a key reused for another payload is a 409.
func IdempotencyMiddleware(repos *repository.Repositories, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method != http.MethodPost {
			c.Next()
			return
		}

		key := strings.TrimSpace(c.GetHeader(IdempotencyKeyHeader))
		if key == "" {
			c.Next()
			return
		}
		if len(key) > maxIdempotencyKeyLen {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "idempotency key too long"})
			return
		}

		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			logger.Error("Failed to read request body for idempotency", zap.Error(err))
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "failed to process request"})
			return
		}
		c.Request.Body = io.NopCloser(bytes.NewReader(body))

		info := Idempotency{Key: key, RequestHash: requestHash(c.Request.Method, c.FullPath(), body)}

		stored, err := repos.IdempotencyKey.GetByKey(c.Request.Context(), key)
		if err != nil {
			logger.Error("Failed to check idempotency key", zap.String("key", key), zap.Error(err))
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}
		if stored != nil {
			if stored.RequestHash != info.RequestHash {
				logger.Warn("Idempotency key reused with a different payload", zap.String("key", key))
				c.AbortWithStatusJSON(http.StatusConflict, gin.H{
					"error": "idempotency key conflict: same key used with different payload",
				})
				return
			}
			info.ExistingOrderID = stored.OrderID
		}

		c.Set(ctxIdempotency, info)
		c.Next()
	}
}

func requestHash(method, route string, body []byte) string {
	h := sha256.New()
	h.Write([]byte(method + " " + route + "\n"))
	h.Write(body)
	return hex.EncodeToString(h.Sum(nil))
}

// GetIdempotency returns the middleware's findings; the zero value when the request had no key
func GetIdempotency(c *gin.Context) Idempotency {
	v, ok := c.Get(ctxIdempotency)
	if !ok {
		return Idempotency{}
	}
	info, _ := v.(Idempotency)
	return info
}
