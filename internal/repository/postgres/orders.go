package postgres

import (
	"context"
	stderrors "errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/yawerky/houseOfGul-sub000/internal/domain"
	"github.com/yawerky/houseOfGul-sub000/internal/repository"
	"github.com/yawerky/houseOfGul-sub000/pkg/errors"
)

type orderRepository struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewOrderRepository creates a new order repository
func NewOrderRepository(db *gorm.DB, logger *zap.Logger) *orderRepository {
	return &orderRepository{
		db:     db,
		logger: logger,
	}
}

func (r *orderRepository) Create(ctx context.Context, order *domain.Order) error {
	order.EnsureID()
	now := time.Now()
	for i := range order.Items {
		item := &order.Items[i]
		if item.ID == uuid.Nil {
			item.ID = uuid.New()
		}
		item.OrderID = order.ID
		if item.CreatedAt.IsZero() {
			item.CreatedAt = now
		}
	}

	if err := r.db.WithContext(ctx).Create(order).Error; err != nil {
		if isUniqueViolation(err) {
			return &errors.ErrConflict{Message: "order number already exists"}
		}
		r.logger.Error("Failed to create order", zap.String("order_number", order.OrderNumber), zap.Error(err))
		return err
	}
	return nil
}

func (r *orderRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	return r.first(ctx, r.db, id.String(), "id = ?", id)
}

// GetByIDForUpdate locks the order row until the surrounding transaction ends
func (r *orderRepository) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	return r.first(ctx, r.forUpdate(), id.String(), "id = ?", id)
}

func (r *orderRepository) forUpdate() *gorm.DB {
	return r.db.Clauses(clause.Locking{Strength: "UPDATE"})
}

func (r *orderRepository) GetByOrderNumber(ctx context.Context, orderNumber string) (*domain.Order, error) {
	return r.first(ctx, r.db, orderNumber, "order_number = ?", strings.TrimSpace(orderNumber))
}

func (r *orderRepository) first(ctx context.Context, db *gorm.DB, key, query string, args ...interface{}) (*domain.Order, error) {
	var order domain.Order
	err := db.WithContext(ctx).Preload("Items").Where(query, args...).First(&order).Error
	if stderrors.Is(err, gorm.ErrRecordNotFound) {
		return nil, &errors.ErrNotFound{Resource: "order", ID: key}
	}
	if err != nil {
		r.logger.Error("Failed to get order", zap.String("key", key), zap.Error(err))
		return nil, err
	}
	return &order, nil
}

func (r *orderRepository) List(ctx context.Context, f repository.OrderFilter) ([]*domain.Order, error) {
	q := r.db.WithContext(ctx).Preload("Items")
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.PaymentStatus != "" {
		q = q.Where("payment_status = ?", f.PaymentStatus)
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		pattern := "%" + escapeLike(strings.ToLower(s)) + "%"
		q = q.Where("(LOWER(order_number) LIKE ? ESCAPE '\\' OR LOWER(customer_name) LIKE ? ESCAPE '\\' OR LOWER(customer_email) LIKE ? ESCAPE '\\')",
			pattern, pattern, pattern)
	}
	limit := f.Limit
	if limit <= 0 {
		limit = 50
	}

	var orders []*domain.Order
	if err := q.Order("created_at DESC").Limit(limit).Offset(f.Offset).Find(&orders).Error; err != nil {
		r.logger.Error("Failed to list orders", zap.Error(err))
		return nil, err
	}
	return orders, nil
}

func (r *orderRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.OrderStatus) error {
	return r.update(ctx, id, map[string]interface{}{"status": status})
}

func (r *orderRepository) UpdatePaymentStatus(ctx context.Context, id uuid.UUID, status domain.PaymentStatus, reference string) error {
	fields := map[string]interface{}{"payment_status": status}
	if reference != "" {
		fields["payment_reference"] = reference
	}
	return r.update(ctx, id, fields)
}

func (r *orderRepository) UpdateNotes(ctx context.Context, id uuid.UUID, notes string) error {
	return r.update(ctx, id, map[string]interface{}{"admin_notes": notes})
}

func (r *orderRepository) update(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error {
	fields["updated_at"] = time.Now()
	res := r.db.WithContext(ctx).Model(&domain.Order{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		r.logger.Error("Failed to update order", zap.String("order_id", id.String()), zap.Error(res.Error))
		return res.Error
	}
	if res.RowsAffected == 0 {
		return &errors.ErrNotFound{Resource: "order", ID: id.String()}
	}
	return nil
}
