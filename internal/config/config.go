package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

const devJWTSecret = "dev-secret-change-me"

// Storage drivers
const (
	StoragePostgres = "postgres"
	StorageMemory   = "memory"
)

type Config struct {
	Port                 string
	Environment          string
	LogLevel             string
	AllowedOrigins       []string
	StorageDriver        string // STORAGE_DRIVER: postgres (default) or memory for local runs
	Database             DatabaseConfig
	Auth                 AuthConfig
	Pricing              PricingConfig
	ProductSheet         ProductSheetConfig
	PaymentWebhookSecret string // PAYMENT_WEBHOOK_SECRET: verify POST /webhooks/payments (X-Payment-Signature)
	OrderWebhookURL      string // ORDER_WEBHOOK_URL: optional endpoint notified on order creation and status changes
}

type DatabaseConfig struct {
	URL      string // DATABASE_URL wins over the individual fields when set
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// DSN returns a lib/pq connection string
func (d DatabaseConfig) DSN() string {
	if d.URL != "" {
		return d.URL
	}
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode,
	)
}

// AuthConfig covers the admin session token and the shopper cart cookie
type AuthConfig struct {
	JWTSecret         string
	TokenTTL          time.Duration
	AdminCookieName   string
	CookieSecure      bool
	CartCookieName    string
	CartCookieHashKey string
}

// PricingConfig holds the fallback used when a shopper's pincode is not in the directory
type PricingConfig struct {
	Currency               string
	FallbackFreeThreshold  decimal.Decimal
	FallbackDeliveryCharge decimal.Decimal
	CheckoutOptionsFile    string // optional YAML replacing the built-in gift wrap and slot catalogs
}

type ProductSheetConfig struct {
	URL          string
	SyncInterval time.Duration // 0 disables the background sync
}

func Load() (*Config, error) {
	// .env is optional; real environment variables always win
	_ = godotenv.Load()

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("..")
	viper.AddConfigPath("../..")

	// Set defaults
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("ENVIRONMENT", "development")
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_SSLMODE", "disable")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("ADMIN_TOKEN_TTL", "168h")
	viper.SetDefault("FALLBACK_FREE_SHIPPING_THRESHOLD", "200")
	viper.SetDefault("FALLBACK_DELIVERY_CHARGE", "15")

	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	tokenTTL, err := time.ParseDuration(getEnvOrViper("ADMIN_TOKEN_TTL", "168h"))
	if err != nil {
		return nil, fmt.Errorf("invalid ADMIN_TOKEN_TTL: %w", err)
	}
	syncInterval, err := time.ParseDuration(getEnvOrViper("PRODUCT_SHEET_SYNC_INTERVAL", "0s"))
	if err != nil {
		return nil, fmt.Errorf("invalid PRODUCT_SHEET_SYNC_INTERVAL: %w", err)
	}
	freeThreshold, err := decimal.NewFromString(getEnvOrViper("FALLBACK_FREE_SHIPPING_THRESHOLD", "200"))
	if err != nil {
		return nil, fmt.Errorf("invalid FALLBACK_FREE_SHIPPING_THRESHOLD: %w", err)
	}
	fallbackCharge, err := decimal.NewFromString(getEnvOrViper("FALLBACK_DELIVERY_CHARGE", "15"))
	if err != nil {
		return nil, fmt.Errorf("invalid FALLBACK_DELIVERY_CHARGE: %w", err)
	}

	cfg := &Config{
		Port:           getEnvOrViper("PORT", "8080"),
		Environment:    getEnvOrViper("ENVIRONMENT", "development"),
		LogLevel:       getEnvOrViper("LOG_LEVEL", "info"),
		AllowedOrigins: splitList(getEnvOrViper("CORS_ALLOWED_ORIGINS", "http://localhost:3000")),
		StorageDriver:  strings.ToLower(strings.TrimSpace(getEnvOrViper("STORAGE_DRIVER", StoragePostgres))),
		Database: DatabaseConfig{
			URL:      strings.TrimSpace(getEnvOrViper("DATABASE_URL", "")),
			Host:     getEnvOrViper("DB_HOST", "localhost"),
			Port:     getEnvOrViper("DB_PORT", "5432"),
			User:     getEnvOrViper("DB_USER", "postgres"),
			Password: getEnvOrViper("DB_PASSWORD", "postgres"),
			DBName:   getEnvOrViper("DB_NAME", "houseofgul"),
			SSLMode:  getEnvOrViper("DB_SSLMODE", "disable"),
		},
		Auth: AuthConfig{
			JWTSecret:         strings.TrimSpace(getEnvOrViper("JWT_SECRET", devJWTSecret)),
			TokenTTL:          tokenTTL,
			AdminCookieName:   getEnvOrViper("ADMIN_COOKIE_NAME", "admin_token"),
			CookieSecure:      getEnvOrViper("COOKIE_SECURE", "false") == "true",
			CartCookieName:    getEnvOrViper("CART_COOKIE_NAME", "hog_cart"),
			CartCookieHashKey: strings.TrimSpace(getEnvOrViper("CART_COOKIE_HASH_KEY", "")),
		},
		Pricing: PricingConfig{
			Currency:               getEnvOrViper("CURRENCY", "USD"),
			FallbackFreeThreshold:  freeThreshold,
			FallbackDeliveryCharge: fallbackCharge,
			CheckoutOptionsFile:    strings.TrimSpace(getEnvOrViper("CHECKOUT_OPTIONS_FILE", "")),
		},
		ProductSheet: ProductSheetConfig{
			URL:          strings.TrimSpace(getEnvOrViper("PRODUCT_SHEET_URL", "")),
			SyncInterval: syncInterval,
		},
		PaymentWebhookSecret: strings.TrimSpace(getEnvOrViper("PAYMENT_WEBHOOK_SECRET", "")),
		OrderWebhookURL:      strings.TrimSpace(getEnvOrViper("ORDER_WEBHOOK_URL", "")),
	}

	if cfg.Auth.CartCookieHashKey == "" {
		cfg.Auth.CartCookieHashKey = cfg.Auth.JWTSecret
	}

	// Validate required fields
	if cfg.Environment == "production" && (cfg.Auth.JWTSecret == "" || cfg.Auth.JWTSecret == devJWTSecret) {
		return nil, fmt.Errorf("JWT_SECRET is required in production")
	}
	if cfg.StorageDriver != StoragePostgres && cfg.StorageDriver != StorageMemory {
		return nil, fmt.Errorf("invalid STORAGE_DRIVER %q: use postgres or memory", cfg.StorageDriver)
	}
	if cfg.Pricing.FallbackDeliveryCharge.IsNegative() || cfg.Pricing.FallbackFreeThreshold.IsNegative() {
		return nil, fmt.Errorf("fallback delivery pricing must not be negative")
	}

	return cfg, nil
}

func getEnvOrViper(key, defaultValue string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	if viper.IsSet(key) {
		return viper.GetString(key)
	}
	return defaultValue
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
