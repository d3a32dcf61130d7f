package postgres

import (
	"context"
	"database/sql"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/yawerky/houseOfGul-sub000/internal/domain"
	"github.com/yawerky/houseOfGul-sub000/internal/repository"
)

// dryRunPostgres renders Postgres SQL without a server; sql.Open never dials
func dryRunPostgres(t *testing.T) *gorm.DB {
	t.Helper()
	sqlDB, err := sql.Open("postgres", "host=127.0.0.1 port=1 user=none dbname=none sslmode=disable")
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	db, err := gorm.Open(gormpostgres.New(gormpostgres.Config{Conn: sqlDB}), &gorm.Config{
		DryRun:               true,
		DisableAutomaticPing: true,
	})
	require.NoError(t, err)
	return db
}

func TestOrderReadForUpdateLocksRow(t *testing.T) {
	repo := NewOrderRepository(dryRunPostgres(t), zap.NewNop())

	stmt := repo.forUpdate().Where("id = ?", uuid.New()).First(&domain.Order{}).Statement
	assert.Contains(t, stmt.SQL.String(), "FOR UPDATE")

	plain := repo.db.Where("id = ?", uuid.New()).First(&domain.Order{}).Statement
	assert.NotContains(t, plain.SQL.String(), "FOR UPDATE")
}

func TestOrderReadForUpdateInsideTransaction(t *testing.T) {
	repos, _ := newTestRepositories(t)
	ctx := context.Background()

	order := &domain.Order{OrderNumber: "HG-LOCK", Status: domain.OrderStatusPending, PaymentStatus: domain.PaymentStatusPending}
	require.NoError(t, repos.Order.Create(ctx, order))

	err := repos.Transactor.WithinTransaction(ctx, func(tx *repository.Repositories) error {
		got, err := tx.Order.GetByIDForUpdate(ctx, order.ID)
		require.NoError(t, err)
		assert.Equal(t, "HG-LOCK", got.OrderNumber)
		return tx.Order.UpdateStatus(ctx, order.ID, domain.OrderStatusConfirmed)
	})
	require.NoError(t, err)

	got, err := repos.Order.GetByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusConfirmed, got.Status)
}
