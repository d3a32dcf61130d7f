// Package cart holds the session-scoped shopping cart.
package cart

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/yawerky/houseOfGul-sub000/internal/domain"
	"github.com/yawerky/houseOfGul-sub000/internal/repository"
)

var (
	ErrInvalidQuantity = errors.New("quantity must be at least 1")
	ErrLineNotFound    = errors.New("product is not in the cart")
)

// MaxQuantity caps a single line
const MaxQuantity = 99

// Cart is an ordered list of lines. A line with quantity 0 is never kept.
type Cart struct {
	lines []domain.CartLine
}

// New returns a cart holding copies of lines; lines with quantity < 1 are dropped
func New(lines []domain.CartLine) *Cart {
	c := &Cart{}
	for _, l := range lines {
		if l.Quantity >= 1 {
			c.lines = append(c.lines, l)
		}
	}
	return c
}

// Add puts qty more of a product in the cart. The unit price is refreshed to
// the one given, which callers take from the catalog.
func (c *Cart) Add(productID uuid.UUID, name string, unitPrice decimal.Decimal, qty int) error {
	if qty < 1 {
		return ErrInvalidQuantity
	}
	for i := range c.lines {
		if c.lines[i].ProductID == productID {
			c.lines[i].Quantity = clamp(c.lines[i].Quantity + qty)
			c.lines[i].UnitPrice = unitPrice
			c.lines[i].Name = name
			return nil
		}
	}
	c.lines = append(c.lines, domain.CartLine{
		ProductID: productID,
		Name:      name,
		UnitPrice: unitPrice,
		Quantity:  clamp(qty),
	})
	return nil
}

// SetQuantity replaces a line's quantity; 0 removes the line
func (c *Cart) SetQuantity(productID uuid.UUID, qty int) error {
	if qty < 0 {
		return ErrInvalidQuantity
	}
	if qty == 0 {
		return c.Remove(productID)
	}
	for i := range c.lines {
		if c.lines[i].ProductID == productID {
			c.lines[i].Quantity = clamp(qty)
			return nil
		}
	}
	return ErrLineNotFound
}

func (c *Cart) Remove(productID uuid.UUID) error {
	for i := range c.lines {
		if c.lines[i].ProductID == productID {
			c.lines = append(c.lines[:i], c.lines[i+1:]...)
			return nil
		}
	}
	return ErrLineNotFound
}

// Lines returns a copy of the cart lines
func (c *Cart) Lines() []domain.CartLine {
	return append([]domain.CartLine(nil), c.lines...)
}

func (c *Cart) Len() int { return len(c.lines) }

// ItemCount is the sum of all quantities
func (c *Cart) ItemCount() int {
	n := 0
	for _, l := range c.lines {
		n += l.Quantity
	}
	return n
}

func clamp(qty int) int {
	if qty > MaxQuantity {
		return MaxQuantity
	}
	return qty
}

// Store loads and saves carts by session id
type Store interface {
	Load(ctx context.Context, sessionID uuid.UUID) (*Cart, error)
	Save(ctx context.Context, sessionID uuid.UUID, cart *Cart) error
	Clear(ctx context.Context, sessionID uuid.UUID) error
}

type repositoryStore struct {
	carts repository.CartRepository
}

// NewStore keeps carts in the cart repository
func NewStore(carts repository.CartRepository) Store {
	return &repositoryStore{carts: carts}
}

// Load returns an empty cart for an unknown session
func (s *repositoryStore) Load(ctx context.Context, sessionID uuid.UUID) (*Cart, error) {
	session, err := s.carts.Get(ctx, sessionID)
	if err != nil {
		return nil, errors.Wrap(err, "load cart")
	}
	if session == nil {
		return New(nil), nil
	}
	return New(session.Lines), nil
}

// Save deletes the session row when the cart is empty
func (s *repositoryStore) Save(ctx context.Context, sessionID uuid.UUID, cart *Cart) error {
	if cart.Len() == 0 {
		return s.Clear(ctx, sessionID)
	}
	err := s.carts.Save(ctx, &domain.CartSession{
		ID:        sessionID,
		Lines:     cart.Lines(),
		UpdatedAt: time.Now(),
	})
	if err != nil {
		return errors.Wrap(err, "save cart")
	}
	return nil
}

func (s *repositoryStore) Clear(ctx context.Context, sessionID uuid.UUID) error {
	if err := s.carts.Delete(ctx, sessionID); err != nil {
		return errors.Wrap(err, "clear cart")
	}
	return nil
}
