package service

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/yawerky/houseOfGul-sub000/internal/domain"
	"github.com/yawerky/houseOfGul-sub000/internal/repository"
	"github.com/yawerky/houseOfGul-sub000/pkg/errors"
)

// OrderService drives the order and payment state machines. Every change is
// written together with its OrderEvent and announced after commit.
type OrderService struct {
	repos    *repository.Repositories
	notifier *Notifier
	logger   *zap.Logger
}

// NewOrderService creates a new order service
func NewOrderService(repos *repository.Repositories, notifier *Notifier, logger *zap.Logger) *OrderService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OrderService{
		repos:    repos,
		notifier: notifier,
		logger:   logger,
	}
}

func (s *OrderService) Get(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	return s.repos.Order.GetByID(ctx, id)
}

func (s *OrderService) GetByNumber(ctx context.Context, orderNumber string) (*domain.Order, error) {
	return s.repos.Order.GetByOrderNumber(ctx, orderNumber)
}

func (s *OrderService) List(ctx context.Context, filter repository.OrderFilter) ([]*domain.Order, error) {
	return s.repos.Order.List(ctx, filter)
}

// Events returns the audit trail of an order, oldest first
func (s *OrderService) Events(ctx context.Context, id uuid.UUID) ([]*domain.OrderEvent, error) {
	if _, err := s.repos.Order.GetByID(ctx, id); err != nil {
		return nil, err
	}
	return s.repos.OrderEvent.GetByOrderID(ctx, id)
}

// UpdateStatus moves an order along the fulfilment graph (idempotent: already
// in the target status returns the order unchanged)
func (s *OrderService) UpdateStatus(ctx context.Context, orderID uuid.UUID, status domain.OrderStatus, note string) (*domain.Order, error) {
	if !status.IsValid() {
		return nil, &errors.ErrValidation{
			Message: "invalid status",
			Fields:  map[string]string{"status": "unknown status " + string(status)},
		}
	}

	changed := false
	var from domain.OrderStatus
	err := s.repos.Transactor.WithinTransaction(ctx, func(tx *repository.Repositories) error {
		order, err := tx.Order.GetByIDForUpdate(ctx, orderID)
		if err != nil {
			return err
		}

		// Already there - idempotent success
		if order.Status == status {
			return nil
		}

		// Validate state transition
		if !order.Status.CanTransitionTo(status) {
			return &errors.ErrInvalidStateTransition{
				Field: "status",
				From:  string(order.Status),
				To:    string(status),
			}
		}

		if err := tx.Order.UpdateStatus(ctx, orderID, status); err != nil {
			return err
		}

		event := &domain.OrderEvent{
			OrderID:   orderID,
			EventType: domain.EventStatusChange,
			EventData: map[string]interface{}{
				"from": order.Status,
				"to":   status,
			},
		}
		if note != "" {
			event.EventData["note"] = note
		}
		if err := tx.OrderEvent.Create(ctx, event); err != nil {
			return err
		}
		from = order.Status
		changed = true
		return nil
	})
	if err != nil {
		return nil, err
	}

	order, err := s.repos.Order.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if changed {
		s.logger.Info("Order status changed",
			zap.String("order_number", order.OrderNumber),
			zap.String("from", string(from)),
			zap.String("to", string(status)))
		s.notifier.OrderChanged(UpdateStatusChanged, order)
	}
	return order, nil
}

// UpdatePaymentStatus applies a payment change from an admin or the gateway
// (idempotent: already in the target status returns the order unchanged)
func (s *OrderService) UpdatePaymentStatus(ctx context.Context, orderID uuid.UUID, status domain.PaymentStatus, reference string) (*domain.Order, error) {
	if !status.IsValid() {
		return nil, &errors.ErrValidation{
			Message: "invalid payment status",
			Fields:  map[string]string{"payment_status": "unknown payment status " + string(status)},
		}
	}

	changed := false
	err := s.repos.Transactor.WithinTransaction(ctx, func(tx *repository.Repositories) error {
		order, err := tx.Order.GetByIDForUpdate(ctx, orderID)
		if err != nil {
			return err
		}

		if order.PaymentStatus == status {
			return nil
		}

		// Delivered and cancelled orders are frozen
		if order.Status.IsTerminal() || !order.PaymentStatus.CanTransitionTo(status) {
			return &errors.ErrInvalidStateTransition{
				Field: "payment_status",
				From:  string(order.PaymentStatus),
				To:    string(status),
			}
		}

		if err := tx.Order.UpdatePaymentStatus(ctx, orderID, status, reference); err != nil {
			return err
		}

		event := &domain.OrderEvent{
			OrderID:   orderID,
			EventType: domain.EventPaymentStatusChange,
			EventData: map[string]interface{}{
				"from": order.PaymentStatus,
				"to":   status,
			},
		}
		if reference != "" {
			event.EventData["reference"] = reference
		}
		if err := tx.OrderEvent.Create(ctx, event); err != nil {
			return err
		}
		changed = true
		return nil
	})
	if err != nil {
		return nil, err
	}

	order, err := s.repos.Order.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if changed {
		s.logger.Info("Order payment status changed",
			zap.String("order_number", order.OrderNumber),
			zap.String("payment_status", string(status)))
		s.notifier.OrderChanged(UpdatePaymentChanged, order)
	}
	return order, nil
}

// ApplyPaymentCallback resolves the order by number and updates its payment status
func (s *OrderService) ApplyPaymentCallback(ctx context.Context, cb PaymentCallback) (*domain.Order, error) {
	order, err := s.repos.Order.GetByOrderNumber(ctx, cb.OrderNumber)
	if err != nil {
		return nil, err
	}
	return s.UpdatePaymentStatus(ctx, order.ID, cb.Status, cb.Reference)
}

// UpdateNotes replaces the admin notes. Notes stay editable on terminal orders.
func (s *OrderService) UpdateNotes(ctx context.Context, orderID uuid.UUID, notes string) (*domain.Order, error) {
	err := s.repos.Transactor.WithinTransaction(ctx, func(tx *repository.Repositories) error {
		order, err := tx.Order.GetByIDForUpdate(ctx, orderID)
		if err != nil {
			return err
		}
		if order.AdminNotes == notes {
			return nil
		}
		if err := tx.Order.UpdateNotes(ctx, orderID, notes); err != nil {
			return err
		}
		return tx.OrderEvent.Create(ctx, &domain.OrderEvent{
			OrderID:   orderID,
			EventType: domain.EventAdminNotesUpdated,
			EventData: map[string]interface{}{"length": len(notes)},
		})
	})
	if err != nil {
		return nil, err
	}
	return s.repos.Order.GetByID(ctx, orderID)
}
