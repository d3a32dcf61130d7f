package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-faster/errors"
	"go.uber.org/zap"

	"github.com/yawerky/houseOfGul-sub000/internal/api/middleware"
	"github.com/yawerky/houseOfGul-sub000/internal/auth"
)

// AdminCookie describes the session cookie set at login
type AdminCookie struct {
	Name   string
	Secure bool
}

func (ac AdminCookie) set(c *gin.Context, value string, maxAge int) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     ac.Name,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   ac.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// LoginRequest is the admin sign-in form
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// HandleAdminLogin handles POST /v1/admin/login. The token is returned in an
// HttpOnly cookie and in the body for non-browser clients.
func HandleAdminLogin(svc *auth.Service, cookie AdminCookie, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req LoginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "validation failed", err)
			return
		}

		admin, token, expiresAt, err := svc.Login(c.Request.Context(), req.Email, req.Password)
		switch {
		case errors.Is(err, auth.ErrInvalidCredentials), errors.Is(err, auth.ErrInactiveAdmin):
			c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			return
		case err != nil:
			respondError(c, logger, err)
			return
		}

		cookie.set(c, token, int(time.Until(expiresAt).Seconds()))
		c.JSON(http.StatusOK, gin.H{
			"admin":      admin,
			"token":      token,
			"expires_at": expiresAt.UTC().Format(time.RFC3339),
		})
	}
}

// HandleAdminLogout handles POST /v1/admin/logout
func HandleAdminLogout(cookie AdminCookie) gin.HandlerFunc {
	return func(c *gin.Context) {
		cookie.set(c, "", -1)
		c.JSON(http.StatusOK, gin.H{"ok": true})
	}
}

// HandleAdminMe handles GET /v1/admin/me
func HandleAdminMe() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := middleware.GetAdminFromContext(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"id":         claims.ID.String(),
			"email":      claims.Email,
			"role":       claims.Role,
			"expires_at": claims.ExpiresAt.UTC().Format(time.RFC3339),
		})
	}
}
