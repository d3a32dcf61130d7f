package domain

// OrderStatus represents the fulfilment status of a storefront order
type OrderStatus string

const (
	// Order placed at checkout, not yet accepted by the shop
	OrderStatusPending OrderStatus = "pending"
	// Shop accepted the order
	OrderStatusConfirmed OrderStatus = "confirmed"
	// Bouquet is being arranged
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	// Handed to the courier for the last leg
	OrderStatusOutForDelivery OrderStatus = "out-for-delivery"
	OrderStatusDelivered      OrderStatus = "delivered"
	OrderStatusCancelled      OrderStatus = "cancelled"
)

// orderFlow is the forward path; cancellation is handled separately.
var orderFlow = map[OrderStatus]OrderStatus{
	OrderStatusPending:        OrderStatusConfirmed,
	OrderStatusConfirmed:      OrderStatusProcessing,
	OrderStatusProcessing:     OrderStatusShipped,
	OrderStatusShipped:        OrderStatusOutForDelivery,
	OrderStatusOutForDelivery: OrderStatusDelivered,
}

// IsValid checks if the order status is valid
func (s OrderStatus) IsValid() bool {
	switch s {
	case OrderStatusPending,
		OrderStatusConfirmed,
		OrderStatusProcessing,
		OrderStatusShipped,
		OrderStatusOutForDelivery,
		OrderStatusDelivered,
		OrderStatusCancelled:
		return true
	default:
		return false
	}
}

// IsTerminal reports whether no further status change is allowed
func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusDelivered || s == OrderStatusCancelled
}

// CanTransitionTo checks if a status transition is valid.
// Orders move one step forward at a time; cancelled is reachable from any non-terminal state.
func (s OrderStatus) CanTransitionTo(newStatus OrderStatus) bool {
	if !s.IsValid() || !newStatus.IsValid() || s.IsTerminal() {
		return false
	}
	if newStatus == OrderStatusCancelled {
		return true
	}
	return orderFlow[s] == newStatus
}

// PaymentStatus is orthogonal to OrderStatus and is driven by the payment gateway or an admin
type PaymentStatus string

const (
	PaymentStatusPending  PaymentStatus = "pending"
	PaymentStatusPaid     PaymentStatus = "paid"
	PaymentStatusFailed   PaymentStatus = "failed"
	PaymentStatusRefunded PaymentStatus = "refunded"
)

func (s PaymentStatus) IsValid() bool {
	switch s {
	case PaymentStatusPending, PaymentStatusPaid, PaymentStatusFailed, PaymentStatusRefunded:
		return true
	default:
		return false
	}
}

// CanTransitionTo checks if a payment status transition is valid
func (s PaymentStatus) CanTransitionTo(newStatus PaymentStatus) bool {
	switch s {
	case PaymentStatusPending:
		return newStatus == PaymentStatusPaid || newStatus == PaymentStatusFailed
	case PaymentStatusPaid:
		return newStatus == PaymentStatusRefunded
	default:
		return false
	}
}

// DeliveryZone is the service tier a pincode falls into
type DeliveryZone string

const (
	DeliveryZoneSameDay  DeliveryZone = "same-day"
	DeliveryZoneNextDay  DeliveryZone = "next-day"
	DeliveryZoneStandard DeliveryZone = "2-3-days"
)

func (z DeliveryZone) IsValid() bool {
	return z == DeliveryZoneSameDay || z == DeliveryZoneNextDay || z == DeliveryZoneStandard
}

// DiscountType selects how a coupon's value is applied
type DiscountType string

const (
	DiscountTypePercentage DiscountType = "percentage"
	DiscountTypeFixed      DiscountType = "fixed"
)

func (t DiscountType) IsValid() bool {
	return t == DiscountTypePercentage || t == DiscountTypeFixed
}

// Order event types written to the audit trail
const (
	EventOrderCreated        = "order_created"
	EventStatusChange        = "status_change"
	EventPaymentStatusChange = "payment_status_change"
	EventAdminNotesUpdated   = "admin_notes_updated"
)

// AdminRoleAdmin is the only role issued today; the token still carries it.
const AdminRoleAdmin = "admin"
