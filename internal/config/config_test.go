package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("ENVIRONMENT", "development")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 7*24*time.Hour, cfg.Auth.TokenTTL)
	assert.Equal(t, "200", cfg.Pricing.FallbackFreeThreshold.String())
	assert.Equal(t, "15", cfg.Pricing.FallbackDeliveryCharge.String())
	assert.Equal(t, "admin_token", cfg.Auth.AdminCookieName)
	assert.NotEmpty(t, cfg.Auth.CartCookieHashKey)
	assert.Equal(t, StoragePostgres, cfg.StorageDriver)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("FALLBACK_FREE_SHIPPING_THRESHOLD", "150.50")
	t.Setenv("FALLBACK_DELIVERY_CHARGE", "9.99")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://houseofgul.com, https://admin.houseofgul.com")
	t.Setenv("DATABASE_URL", "postgres://u:p@db:5432/gul?sslmode=disable")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "150.5", cfg.Pricing.FallbackFreeThreshold.String())
	assert.Equal(t, "9.99", cfg.Pricing.FallbackDeliveryCharge.String())
	assert.Equal(t, []string{"https://houseofgul.com", "https://admin.houseofgul.com"}, cfg.AllowedOrigins)
	assert.Equal(t, "postgres://u:p@db:5432/gul?sslmode=disable", cfg.Database.DSN())
}

func TestLoadRejectsDefaultSecretInProduction(t *testing.T) {
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("JWT_SECRET", "")

	_, err := Load()
	require.Error(t, err)
}

func TestLoadRejectsBadDurations(t *testing.T) {
	t.Setenv("ADMIN_TOKEN_TTL", "a week")

	_, err := Load()
	require.Error(t, err)
}

func TestLoadStorageDriver(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "Memory")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, StorageMemory, cfg.StorageDriver)

	t.Setenv("STORAGE_DRIVER", "mongo")
	_, err = Load()
	require.Error(t, err)
}
