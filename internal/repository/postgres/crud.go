package postgres

import (
	"context"
	stderrors "errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/yawerky/houseOfGul-sub000/pkg/errors"
)

// entity is satisfied by pointers to structs embedding domain.Model
type entity[T any] interface {
	*T
	EnsureID()
	GetID() uuid.UUID
}

// crudRepository implements repository.CRUDRepository on top of gorm
type crudRepository[T any, PT entity[T]] struct {
	db       *gorm.DB
	logger   *zap.Logger
	resource string
	order    string
	// readOnly columns are never written by Update
	readOnly []string
}

func newCRUDRepository[T any, PT entity[T]](db *gorm.DB, logger *zap.Logger, resource, order string) crudRepository[T, PT] {
	return crudRepository[T, PT]{db: db, logger: logger, resource: resource, order: order}
}

func (r *crudRepository[T, PT]) Create(ctx context.Context, e *T) error {
	PT(e).EnsureID()
	if err := r.db.WithContext(ctx).Create(e).Error; err != nil {
		return r.writeError("create", PT(e).GetID(), err)
	}
	return nil
}

// Update overwrites every column except created_at and the read-only ones
func (r *crudRepository[T, PT]) Update(ctx context.Context, e *T) error {
	id := PT(e).GetID()
	omit := append([]string{"id", "created_at"}, r.readOnly...)
	res := r.db.WithContext(ctx).Model(e).Where("id = ?", id).Select("*").Omit(omit...).Updates(e)
	if res.Error != nil {
		return r.writeError("update", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return &errors.ErrNotFound{Resource: r.resource, ID: id.String()}
	}
	return nil
}

func (r *crudRepository[T, PT]) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Delete(PT(new(T)), "id = ?", id)
	if res.Error != nil {
		return r.writeError("delete", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return &errors.ErrNotFound{Resource: r.resource, ID: id.String()}
	}
	return nil
}

func (r *crudRepository[T, PT]) GetByID(ctx context.Context, id uuid.UUID) (*T, error) {
	return r.first(ctx, id.String(), "id = ?", id)
}

func (r *crudRepository[T, PT]) List(ctx context.Context) ([]*T, error) {
	return r.find(ctx, r.db.WithContext(ctx))
}

func (r *crudRepository[T, PT]) first(ctx context.Context, key string, query string, args ...interface{}) (*T, error) {
	var out T
	err := r.db.WithContext(ctx).Where(query, args...).First(&out).Error
	if stderrors.Is(err, gorm.ErrRecordNotFound) {
		return nil, &errors.ErrNotFound{Resource: r.resource, ID: key}
	}
	if err != nil {
		r.logger.Error(fmt.Sprintf("Failed to get %s", r.resource), zap.String("key", key), zap.Error(err))
		return nil, err
	}
	return &out, nil
}

func (r *crudRepository[T, PT]) find(ctx context.Context, q *gorm.DB) ([]*T, error) {
	var out []*T
	if r.order != "" {
		q = q.Order(r.order)
	}
	if err := q.Find(&out).Error; err != nil {
		r.logger.Error(fmt.Sprintf("Failed to list %s", r.resource), zap.Error(err))
		return nil, err
	}
	return out, nil
}

func (r *crudRepository[T, PT]) writeError(op string, id uuid.UUID, err error) error {
	if isUniqueViolation(err) {
		return &errors.ErrConflict{Message: fmt.Sprintf("%s already exists", r.resource)}
	}
	r.logger.Error(fmt.Sprintf("Failed to %s %s", op, r.resource), zap.String("id", id.String()), zap.Error(err))
	return err
}

// isUniqueViolation recognises duplicate keys from lib/pq and from gorm's translated errors
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if stderrors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	return stderrors.Is(err, gorm.ErrDuplicatedKey)
}
