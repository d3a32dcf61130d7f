package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-faster/errors"
	"go.uber.org/zap"

	"github.com/yawerky/houseOfGul-sub000/internal/auth"
)

const AdminContextKey = "admin"

// Authenticator resolves a session token to the admin it belongs to
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*auth.Claims, error)
}

// AdminAuth authenticates back-office requests with the session token from the
// admin cookie, or from an "Authorization: Bearer" header for scripts.
func AdminAuth(authn Authenticator, cookieName string, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := tokenFromRequest(c, cookieName)
		if token == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			c.Abort()
			return
		}

		claims, err := authn.Authenticate(c.Request.Context(), token)
		switch {
		case errors.Is(err, auth.ErrInactiveAdmin):
			logger.Info("Rejected inactive admin", zap.String("path", c.Request.URL.Path))
			c.JSON(http.StatusUnauthorized, gin.H{"error": "admin account is inactive"})
			c.Abort()
			return
		case errors.Is(err, auth.ErrInvalidToken):
			logger.Debug("Rejected admin token", zap.Error(err), zap.String("path", c.Request.URL.Path))
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired session"})
			c.Abort()
			return
		case err != nil:
			logger.Error("Failed to authenticate admin", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			c.Abort()
			return
		}

		c.Set(AdminContextKey, claims)
		c.Next()
	}
}

func tokenFromRequest(c *gin.Context, cookieName string) string {
	if cookie, err := c.Cookie(cookieName); err == nil && strings.TrimSpace(cookie) != "" {
		return strings.TrimSpace(cookie)
	}
	parts := strings.SplitN(c.GetHeader("Authorization"), " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
		return strings.TrimSpace(parts[1])
	}
	return ""
}

// GetAdminFromContext retrieves the verified claims from the Gin context
func GetAdminFromContext(c *gin.Context) (*auth.Claims, bool) {
	v, exists := c.Get(AdminContextKey)
	if !exists {
		return nil, false
	}
	claims, ok := v.(*auth.Claims)
	return claims, ok
}
