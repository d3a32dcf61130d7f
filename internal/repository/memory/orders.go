package memory

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/yawerky/houseOfGul-sub000/internal/domain"
	"github.com/yawerky/houseOfGul-sub000/internal/repository"
	"github.com/yawerky/houseOfGul-sub000/pkg/errors"
)

type orderRepository struct {
	s *Store
	j *journal
}

func (r *orderRepository) Create(ctx context.Context, order *domain.Order) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	order.EnsureID()
	for _, existing := range r.s.orders {
		if existing.OrderNumber == order.OrderNumber {
			return &errors.ErrConflict{Message: "order number already exists"}
		}
	}
	now := time.Now()
	order.Stamp(now)
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
	remember(r.j, r.s, ordersOf, order.ID)
	r.s.orders[order.ID] = cloneOrder(*order)
	return nil
}

func (r *orderRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	o, ok := r.s.orders[id]
	if !ok {
		return nil, &errors.ErrNotFound{Resource: "order", ID: id.String()}
	}
	out := cloneOrder(o)
	return &out, nil
}

// GetByIDForUpdate is a plain read; transactions already run one at a time
func (r *orderRepository) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	return r.GetByID(ctx, id)
}

func (r *orderRepository) GetByOrderNumber(ctx context.Context, orderNumber string) (*domain.Order, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	n := strings.TrimSpace(orderNumber)
	for _, o := range r.s.orders {
		if o.OrderNumber == n {
			out := cloneOrder(o)
			return &out, nil
		}
	}
	return nil, &errors.ErrNotFound{Resource: "order", ID: orderNumber}
}

func (r *orderRepository) List(ctx context.Context, f repository.OrderFilter) ([]*domain.Order, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	search := strings.ToLower(strings.TrimSpace(f.Search))
	var out []*domain.Order
	for _, o := range r.s.orders {
		if f.Status != "" && o.Status != f.Status {
			continue
		}
		if f.PaymentStatus != "" && o.PaymentStatus != f.PaymentStatus {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(o.OrderNumber), search) &&
			!strings.Contains(strings.ToLower(o.CustomerName), search) &&
			!strings.Contains(strings.ToLower(o.CustomerEmail), search) {
			continue
		}
		c := cloneOrder(o)
		out = append(out, &c)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })

	if f.Offset > 0 {
		if f.Offset >= len(out) {
			return nil, nil
		}
		out = out[f.Offset:]
	}
	limit := f.Limit
	if limit <= 0 {
		limit = 50
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *orderRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.OrderStatus) error {
	return r.update(id, func(o *domain.Order) { o.Status = status })
}

func (r *orderRepository) UpdatePaymentStatus(ctx context.Context, id uuid.UUID, status domain.PaymentStatus, reference string) error {
	return r.update(id, func(o *domain.Order) {
		o.PaymentStatus = status
		if reference != "" {
			o.PaymentReference = reference
		}
	})
}

func (r *orderRepository) UpdateNotes(ctx context.Context, id uuid.UUID, notes string) error {
	return r.update(id, func(o *domain.Order) { o.AdminNotes = notes })
}

func (r *orderRepository) update(id uuid.UUID, mutate func(*domain.Order)) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	o, ok := r.s.orders[id]
	if !ok {
		return &errors.ErrNotFound{Resource: "order", ID: id.String()}
	}
	o = cloneOrder(o)
	mutate(&o)
	o.UpdatedAt = time.Now()
	remember(r.j, r.s, ordersOf, id)
	r.s.orders[id] = o
	return nil
}

// cloneOrder copies the slices so callers never share backing arrays with the store
func cloneOrder(o domain.Order) domain.Order {
	o.Items = append([]domain.OrderItem(nil), o.Items...)
	return o
}

type orderEventRepository struct {
	s *Store
	j *journal
}

func (r *orderEventRepository) Create(ctx context.Context, event *domain.OrderEvent) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}
	if r.j != nil {
		id := event.ID
		r.j.undo = append(r.j.undo, func(s *Store) { s.events = withoutEvent(s.events, id) })
	}
	r.s.events = append(r.s.events, *event)
	return nil
}

func withoutEvent(events []domain.OrderEvent, id uuid.UUID) []domain.OrderEvent {
	out := events[:0:0]
	for _, e := range events {
		if e.ID != id {
			out = append(out, e)
		}
	}
	return out
}

func (r *orderEventRepository) GetByOrderID(ctx context.Context, orderID uuid.UUID) ([]*domain.OrderEvent, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var out []*domain.OrderEvent
	for _, e := range r.s.events {
		if e.OrderID == orderID {
			e := e
			out = append(out, &e)
		}
	}
	return out, nil
}

type idempotencyKeyRepository struct {
	s *Store
	j *journal
}

func (r *idempotencyKeyRepository) GetByKey(ctx context.Context, key string) (*domain.IdempotencyKey, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	k, ok := r.s.idempotency[key]
	if !ok {
		return nil, nil
	}
	return &k, nil
}

func (r *idempotencyKeyRepository) Create(ctx context.Context, key *domain.IdempotencyKey) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.idempotency[key.Key]; ok {
		return &errors.ErrConflict{Message: "idempotency key already exists"}
	}
	if key.CreatedAt.IsZero() {
		key.CreatedAt = time.Now()
	}
	remember(r.j, r.s, idempotencyOf, key.Key)
	r.s.idempotency[key.Key] = *key
	return nil
}

type adminUserRepository struct {
	s *Store
	j *journal
}

func (r *adminUserRepository) Create(ctx context.Context, user *domain.AdminUser) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	user.EnsureID()
	user.Email = strings.ToLower(strings.TrimSpace(user.Email))
	for _, u := range r.s.admins {
		if u.Email == user.Email {
			return &errors.ErrConflict{Message: "admin user already exists"}
		}
	}
	user.Stamp(time.Now())
	remember(r.j, r.s, adminsOf, user.ID)
	r.s.admins[user.ID] = *user
	return nil
}

func (r *adminUserRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.AdminUser, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	u, ok := r.s.admins[id]
	if !ok {
		return nil, &errors.ErrNotFound{Resource: "admin user", ID: id.String()}
	}
	return &u, nil
}

func (r *adminUserRepository) GetByEmail(ctx context.Context, email string) (*domain.AdminUser, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	e := strings.ToLower(strings.TrimSpace(email))
	for _, u := range r.s.admins {
		if u.Email == e {
			u := u
			return &u, nil
		}
	}
	return nil, &errors.ErrNotFound{Resource: "admin user", ID: email}
}

func (r *adminUserRepository) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	u, ok := r.s.admins[id]
	if !ok {
		return &errors.ErrNotFound{Resource: "admin user", ID: id.String()}
	}
	remember(r.j, r.s, adminsOf, id)
	u.IsActive = active
	u.UpdatedAt = time.Now()
	r.s.admins[id] = u
	return nil
}

func (r *adminUserRepository) List(ctx context.Context) ([]*domain.AdminUser, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]*domain.AdminUser, 0, len(r.s.admins))
	for _, u := range r.s.admins {
		u := u
		out = append(out, &u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Email < out[j].Email })
	return out, nil
}

type cartRepository struct {
	s *Store
	j *journal
}

func (r *cartRepository) Get(ctx context.Context, sessionID uuid.UUID) (*domain.CartSession, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	c, ok := r.s.carts[sessionID]
	if !ok {
		return nil, nil
	}
	c.Lines = append([]domain.CartLine(nil), c.Lines...)
	return &c, nil
}

func (r *cartRepository) Save(ctx context.Context, cart *domain.CartSession) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	c := *cart
	c.Lines = append([]domain.CartLine(nil), cart.Lines...)
	c.UpdatedAt = time.Now()
	cart.UpdatedAt = c.UpdatedAt
	remember(r.j, r.s, cartsOf, c.ID)
	r.s.carts[c.ID] = c
	return nil
}

func (r *cartRepository) Delete(ctx context.Context, sessionID uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	remember(r.j, r.s, cartsOf, sessionID)
	delete(r.s.carts, sessionID)
	return nil
}
