package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/yawerky/houseOfGul-sub000/internal/api/middleware"
	"github.com/yawerky/houseOfGul-sub000/internal/cart"
	"github.com/yawerky/houseOfGul-sub000/internal/domain"
	"github.com/yawerky/houseOfGul-sub000/internal/service"
)

// PlaceOrderResponse is returned for a new or replayed checkout
type PlaceOrderResponse struct {
	OrderID       string               `json:"order_id"`
	OrderNumber   string               `json:"order_number"`
	Status        domain.OrderStatus   `json:"status"`
	PaymentStatus domain.PaymentStatus `json:"payment_status"`
	Order         *domain.Order        `json:"order"`
}

func newPlaceOrderResponse(o *domain.Order) PlaceOrderResponse {
	return PlaceOrderResponse{
		OrderID:       o.ID.String(),
		OrderNumber:   o.OrderNumber,
		Status:        o.Status,
		PaymentStatus: o.PaymentStatus,
		Order:         o,
	}
}

// HandleQuote handles POST /v1/checkout/quote. Items default to the session cart.
func HandleQuote(checkout *service.CheckoutService, sessions *cart.Sessions, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req service.QuoteRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "validation failed", err)
			return
		}
		if sessionID, ok := sessions.SessionID(c.Request); ok {
			req.SessionID = sessionID
		}

		quote, err := checkout.Quote(c.Request.Context(), req)
		if err != nil {
			respondError(c, logger, err)
			return
		}
		c.JSON(http.StatusOK, quote)
	}
}

// HandlePlaceOrder handles POST /v1/checkout/orders.
// A repeated Idempotency-Key with the same body returns the original order.
func HandlePlaceOrder(checkout *service.CheckoutService, orders *service.OrderService, sessions *cart.Sessions, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		idem := middleware.GetIdempotency(c)
		if idem.Replay() {
			order, err := orders.Get(c.Request.Context(), idem.ExistingOrderID)
			if err != nil {
				respondError(c, logger, err)
				return
			}
			c.JSON(http.StatusOK, newPlaceOrderResponse(order))
			return
		}

		var req service.PlaceOrderRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "validation failed", err)
			return
		}
		req.IdempotencyKey = idem.Key
		req.RequestHash = idem.RequestHash
		if sessionID, ok := sessions.SessionID(c.Request); ok {
			req.SessionID = sessionID
		}

		order, err := checkout.PlaceOrder(c.Request.Context(), req)
		if err != nil {
			respondError(c, logger, err)
			return
		}
		c.JSON(http.StatusCreated, newPlaceOrderResponse(order))
	}
}

// HandleGetOrderByNumber handles GET /v1/orders/:orderNumber for the
// confirmation page. The email must match the order.
func HandleGetOrderByNumber(orders *service.OrderService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		order, err := orders.GetByNumber(c.Request.Context(), c.Param("orderNumber"))
		if err != nil {
			respondError(c, logger, err)
			return
		}
		if !sameEmail(order.CustomerEmail, c.Query("email")) {
			c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"order_number":   order.OrderNumber,
			"status":         order.Status,
			"payment_status": order.PaymentStatus,
			"total":          order.Total,
			"items":          order.Items,
			"delivery_date":  order.DeliveryDate,
			"delivery_slot":  order.DeliverySlot,
			"created_at":     order.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		})
	}
}

func sameEmail(a, b string) bool {
	b = strings.TrimSpace(b)
	return b != "" && strings.EqualFold(strings.TrimSpace(a), b)
}
