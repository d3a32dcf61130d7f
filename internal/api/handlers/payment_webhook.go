package handlers

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/yawerky/houseOfGul-sub000/internal/service"
	"github.com/yawerky/houseOfGul-sub000/pkg/errors"
)

const PaymentSignatureHeader = "X-Payment-Signature"

const maxWebhookBody = 1 << 20

// SignPayload returns the base64 HMAC-SHA256 of body, the value expected in
// X-Payment-Signature
func SignPayload(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	_, _ = mac.Write(body)
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

func verifyPaymentSignature(secret string, body []byte, header string) bool {
	if secret == "" || header == "" {
		return false
	}
	expected := SignPayload(secret, body)
	// constant-time compare
	return hmac.Equal([]byte(expected), []byte(strings.TrimSpace(header)))
}

// HandlePaymentWebhook handles POST /webhooks/payments.
// The gateway signs the raw body with PAYMENT_WEBHOOK_SECRET.
// Body: {"order_number": "...", "status": "paid|failed|refunded", "reference": "..."}
func HandlePaymentWebhook(secret string, orders *service.OrderService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		secret := strings.TrimSpace(secret)
		if secret == "" {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "payment webhook not configured"})
			return
		}

		// Read raw body (signature is computed over raw bytes)
		bodyBytes, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBody))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read body"})
			return
		}

		if !verifyPaymentSignature(secret, bodyBytes, c.GetHeader(PaymentSignatureHeader)) {
			logger.Warn("Payment webhook: invalid signature", zap.String("remote", c.ClientIP()))
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid webhook signature"})
			return
		}

		var body service.PaymentCallback
		if err := json.Unmarshal(bodyBytes, &body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON", "details": err.Error()})
			return
		}
		body.OrderNumber = strings.TrimSpace(body.OrderNumber)
		if body.OrderNumber == "" || body.Status == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "order_number and status required"})
			return
		}

		order, err := orders.ApplyPaymentCallback(c.Request.Context(), body)
		if err != nil {
			if _, ok := err.(*errors.ErrNotFound); ok {
				// Return 200 so the gateway doesn't keep retrying an order we never had
				logger.Warn("Payment webhook: unknown order", zap.String("order_number", body.OrderNumber))
				c.JSON(http.StatusOK, gin.H{"ok": true, "status": "not_found", "order_number": body.OrderNumber})
				return
			}
			respondError(c, logger, err)
			return
		}

		logger.Info("Payment webhook applied",
			zap.String("order_number", order.OrderNumber),
			zap.String("payment_status", string(order.PaymentStatus)))
		c.JSON(http.StatusOK, gin.H{
			"ok":             true,
			"order_number":   order.OrderNumber,
			"payment_status": order.PaymentStatus,
		})
	}
}
