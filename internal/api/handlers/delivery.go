package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/yawerky/houseOfGul-sub000/internal/coupon"
	"github.com/yawerky/houseOfGul-sub000/internal/pincode"
	"github.com/yawerky/houseOfGul-sub000/internal/pricing"
	"github.com/yawerky/houseOfGul-sub000/internal/service"
)

// PincodeResponse tells the storefront whether and how a pincode is served
type PincodeResponse struct {
	Pincode        string              `json:"pincode"`
	Serviceable    bool                `json:"serviceable"`
	Area           string              `json:"area,omitempty"`
	City           string              `json:"city"`
	State          string              `json:"state"`
	Zone           string              `json:"zone"`
	DeliveryCharge decimal.Decimal     `json:"delivery_charge"`
	MinOrderFree   decimal.NullDecimal `json:"min_order_free"`
}

// HandleGetPincode handles GET /v1/pincodes/:code
func HandleGetPincode(directory *pincode.Directory, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, err := directory.Lookup(c.Request.Context(), c.Param("code"))
		if errors.Is(err, pincode.ErrPincodeNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error":       "pincode not found",
				"pincode":     pincode.NormalizeCode(c.Param("code")),
				"serviceable": false,
			})
			return
		}
		if err != nil {
			respondError(c, logger, err)
			return
		}

		c.JSON(http.StatusOK, PincodeResponse{
			Pincode:        p.Code,
			Serviceable:    p.IsActive,
			Area:           p.Area,
			City:           p.City,
			State:          p.State,
			Zone:           string(p.DeliveryZone),
			DeliveryCharge: p.DeliveryCharge,
			MinOrderFree:   p.MinOrderFree,
		})
	}
}

// ValidateCouponRequest is sent whenever the shopper applies a code
type ValidateCouponRequest struct {
	Code     string          `json:"code" binding:"required"`
	Subtotal decimal.Decimal `json:"subtotal"`
}

// HandleValidateCoupon handles POST /v1/coupons/validate. It never consumes a use.
func HandleValidateCoupon(evaluator *coupon.Evaluator, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req ValidateCouponRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "validation failed", err)
			return
		}
		if req.Subtotal.IsNegative() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "subtotal must not be negative"})
			return
		}

		cp, err := evaluator.Validate(c.Request.Context(), req.Code, req.Subtotal, time.Now())
		if err != nil {
			respondError(c, logger, service.CouponError(req.Code, err))
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"valid":          true,
			"code":           cp.Code,
			"description":    cp.Description,
			"discount_type":  cp.DiscountType,
			"discount_value": cp.DiscountValue,
			"discount":       coupon.ComputeDiscount(cp, req.Subtotal),
		})
	}
}

// HandleCheckoutOptions handles GET /v1/checkout/options
func HandleCheckoutOptions(options *pricing.Options, fallback pricing.Fallback, currency string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"currency":       currency,
			"gift_wraps":     options.GiftWraps,
			"delivery_slots": options.DeliverySlots,
			"default_wrap":   pricing.DefaultGiftWrapID,
			"fallback_delivery": gin.H{
				"free_threshold": fallback.FreeThreshold,
				"charge":         fallback.Charge,
			},
		})
	}
}
