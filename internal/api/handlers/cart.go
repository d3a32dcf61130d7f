package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/yawerky/houseOfGul-sub000/internal/cart"
	"github.com/yawerky/houseOfGul-sub000/internal/repository"
	apperrors "github.com/yawerky/houseOfGul-sub000/pkg/errors"
)

// CartResponse is the session cart as the storefront renders it
type CartResponse struct {
	Lines     []CartLineResponse `json:"lines"`
	ItemCount int                `json:"item_count"`
	Subtotal  decimal.Decimal    `json:"subtotal"`
}

type CartLineResponse struct {
	ProductID uuid.UUID       `json:"product_id"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  int             `json:"quantity"`
	LineTotal decimal.Decimal `json:"line_total"`
}

func newCartResponse(c *cart.Cart) CartResponse {
	resp := CartResponse{Lines: []CartLineResponse{}, ItemCount: c.ItemCount(), Subtotal: decimal.Zero}
	for _, l := range c.Lines() {
		resp.Lines = append(resp.Lines, CartLineResponse{
			ProductID: l.ProductID,
			Name:      l.Name,
			UnitPrice: l.UnitPrice,
			Quantity:  l.Quantity,
			LineTotal: l.LineTotal(),
		})
		resp.Subtotal = resp.Subtotal.Add(l.LineTotal())
	}
	return resp
}

// AddCartItemRequest adds a product to the session cart
type AddCartItemRequest struct {
	ProductID uuid.UUID `json:"product_id" binding:"required"`
	Quantity  int       `json:"quantity"`
}

// UpdateCartItemRequest sets a line quantity; 0 removes the line
type UpdateCartItemRequest struct {
	Quantity *int `json:"quantity" binding:"required"`
}

// CartHandlers serves the session cart endpoints
type CartHandlers struct {
	sessions *cart.Sessions
	store    cart.Store
	repos    *repository.Repositories
	logger   *zap.Logger
}

func NewCartHandlers(sessions *cart.Sessions, store cart.Store, repos *repository.Repositories, logger *zap.Logger) *CartHandlers {
	return &CartHandlers{sessions: sessions, store: store, repos: repos, logger: logger}
}

// HandleGetCart handles GET /v1/cart. A shopper without a session gets an empty cart.
func (h *CartHandlers) HandleGetCart() gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID, ok := h.sessions.SessionID(c.Request)
		if !ok {
			c.JSON(http.StatusOK, newCartResponse(cart.New(nil)))
			return
		}
		crt, err := h.store.Load(c.Request.Context(), sessionID)
		if err != nil {
			respondError(c, h.logger, err)
			return
		}
		c.JSON(http.StatusOK, newCartResponse(crt))
	}
}

// HandleAddItem handles POST /v1/cart/items. The unit price comes from the catalog.
func (h *CartHandlers) HandleAddItem() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req AddCartItemRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "validation failed", err)
			return
		}
		if req.Quantity == 0 {
			req.Quantity = 1
		}

		product, err := h.repos.Product.GetByID(c.Request.Context(), req.ProductID)
		if err != nil {
			respondError(c, h.logger, err)
			return
		}
		if !product.InStock {
			respondError(c, h.logger, &apperrors.ErrUnprocessable{
				Code:    "out_of_stock",
				Message: product.Name + " is out of stock",
				Details: map[string]interface{}{"product_id": product.ID.String()},
			})
			return
		}

		h.mutate(c, func(crt *cart.Cart) error {
			return crt.Add(product.ID, product.Name, product.Price, req.Quantity)
		})
	}
}

// HandleUpdateItem handles PATCH /v1/cart/items/:productId
func (h *CartHandlers) HandleUpdateItem() gin.HandlerFunc {
	return func(c *gin.Context) {
		productID, err := uuid.Parse(c.Param("productId"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid product id"})
			return
		}
		var req UpdateCartItemRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "validation failed", err)
			return
		}
		h.mutate(c, func(crt *cart.Cart) error {
			return crt.SetQuantity(productID, *req.Quantity)
		})
	}
}

// HandleRemoveItem handles DELETE /v1/cart/items/:productId
func (h *CartHandlers) HandleRemoveItem() gin.HandlerFunc {
	return func(c *gin.Context) {
		productID, err := uuid.Parse(c.Param("productId"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid product id"})
			return
		}
		h.mutate(c, func(crt *cart.Cart) error {
			return crt.Remove(productID)
		})
	}
}

// HandleClearCart handles DELETE /v1/cart
func (h *CartHandlers) HandleClearCart() gin.HandlerFunc {
	return func(c *gin.Context) {
		if sessionID, ok := h.sessions.SessionID(c.Request); ok {
			if err := h.store.Clear(c.Request.Context(), sessionID); err != nil {
				respondError(c, h.logger, err)
				return
			}
		}
		c.JSON(http.StatusOK, newCartResponse(cart.New(nil)))
	}
}

// mutate loads the session cart, applies fn and saves the result
func (h *CartHandlers) mutate(c *gin.Context, fn func(*cart.Cart) error) {
	sessionID, err := h.sessions.Ensure(c.Writer, c.Request)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	crt, err := h.store.Load(c.Request.Context(), sessionID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	if err := fn(crt); err != nil {
		switch {
		case errors.Is(err, cart.ErrInvalidQuantity):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, cart.ErrLineNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		default:
			respondError(c, h.logger, err)
		}
		return
	}

	if err := h.store.Save(c.Request.Context(), sessionID, crt); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, newCartResponse(crt))
}

