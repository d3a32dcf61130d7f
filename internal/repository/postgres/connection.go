package postgres

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
	"go.uber.org/zap"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/yawerky/houseOfGul-sub000/internal/config"
	"github.com/yawerky/houseOfGul-sub000/internal/domain"
	"github.com/yawerky/houseOfGul-sub000/internal/repository"
)

// NewConnection creates a new PostgreSQL database connection
func NewConnection(cfg config.DatabaseConfig) (*sql.DB, error) {
	db, err := sql.Open("postgres", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Configure connection pool
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	// Test connection
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}

// OpenGorm wraps an existing lib/pq pool so the repositories share it
func OpenGorm(sqlDB *sql.DB) (*gorm.DB, error) {
	db, err := gorm.Open(gormpostgres.New(gormpostgres.Config{Conn: sqlDB}), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open gorm: %w", err)
	}
	return db, nil
}

// Models lists every persisted entity in creation order
func Models() []interface{} {
	return []interface{}{
		&domain.Category{},
		&domain.Occasion{},
		&domain.Product{},
		&domain.BlogPost{},
		&domain.Banner{},
		&domain.Testimonial{},
		&domain.Inquiry{},
		&domain.Pincode{},
		&domain.Coupon{},
		&domain.CartSession{},
		&domain.Order{},
		&domain.OrderItem{},
		&domain.OrderEvent{},
		&domain.AdminUser{},
		&domain.IdempotencyKey{},
	}
}

// RunMigrations creates or updates the schema for all models
func RunMigrations(db *gorm.DB) error {
	if err := db.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	return nil
}

// Open connects to the database and returns the repositories together with a
// func that closes the pool. Used by the command line tools.
func Open(cfg config.DatabaseConfig, logger *zap.Logger) (*repository.Repositories, func() error, error) {
	sqlDB, err := NewConnection(cfg)
	if err != nil {
		return nil, nil, err
	}
	db, err := OpenGorm(sqlDB)
	if err != nil {
		sqlDB.Close()
		return nil, nil, err
	}
	return NewRepositories(db, logger), sqlDB.Close, nil
}
