package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/yawerky/houseOfGul-sub000/pkg/errors"
)

type entity[T any] interface {
	*T
	EnsureID()
	GetID() uuid.UUID
	Stamp(now time.Time)
	GetCreatedAt() time.Time
	SetCreatedAt(t time.Time)
}

// table implements repository.CRUDRepository for one map of the store.
// keys returns the unique columns of a row; two rows may not share a value
// for the same column. keep copies columns Update must leave untouched.
type table[T any, PT entity[T]] struct {
	s        *Store
	j        *journal
	resource string
	rows     func(*Store) map[uuid.UUID]T
	keys     func(*T) map[string]string
	less     func(a, b *T) bool
	keep     func(stored, updated *T)
}

func newTable[T any, PT entity[T]](s *Store, j *journal, resource string, rows func(*Store) map[uuid.UUID]T, keys func(*T) map[string]string, less func(a, b *T) bool) table[T, PT] {
	return table[T, PT]{s: s, j: j, resource: resource, rows: rows, keys: keys, less: less}
}

func (t *table[T, PT]) Create(ctx context.Context, e *T) error {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()

	PT(e).EnsureID()
	if err := t.checkUniqueLocked(e); err != nil {
		return err
	}
	PT(e).Stamp(time.Now())
	remember(t.j, t.s, t.rows, PT(e).GetID())
	t.rows(t.s)[PT(e).GetID()] = *e
	return nil
}

func (t *table[T, PT]) Update(ctx context.Context, e *T) error {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()

	id := PT(e).GetID()
	existing, ok := t.rows(t.s)[id]
	if !ok {
		return &errors.ErrNotFound{Resource: t.resource, ID: id.String()}
	}
	if err := t.checkUniqueLocked(e); err != nil {
		return err
	}
	if t.keep != nil {
		t.keep(&existing, e)
	}
	PT(e).SetCreatedAt(PT(&existing).GetCreatedAt())
	PT(e).Stamp(time.Now())
	remember(t.j, t.s, t.rows, id)
	t.rows(t.s)[id] = *e
	return nil
}

func (t *table[T, PT]) Delete(ctx context.Context, id uuid.UUID) error {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()

	if _, ok := t.rows(t.s)[id]; !ok {
		return &errors.ErrNotFound{Resource: t.resource, ID: id.String()}
	}
	remember(t.j, t.s, t.rows, id)
	delete(t.rows(t.s), id)
	return nil
}

func (t *table[T, PT]) GetByID(ctx context.Context, id uuid.UUID) (*T, error) {
	t.s.mu.RLock()
	defer t.s.mu.RUnlock()

	row, ok := t.rows(t.s)[id]
	if !ok {
		return nil, &errors.ErrNotFound{Resource: t.resource, ID: id.String()}
	}
	return &row, nil
}

func (t *table[T, PT]) List(ctx context.Context) ([]*T, error) {
	return t.filter(func(*T) bool { return true }), nil
}

// first returns the first row matching pred or ErrNotFound labelled with key
func (t *table[T, PT]) first(key string, pred func(*T) bool) (*T, error) {
	rows := t.filter(pred)
	if len(rows) == 0 {
		return nil, &errors.ErrNotFound{Resource: t.resource, ID: key}
	}
	return rows[0], nil
}

// filter returns copies of matching rows in table order
func (t *table[T, PT]) filter(pred func(*T) bool) []*T {
	t.s.mu.RLock()
	defer t.s.mu.RUnlock()

	var out []*T
	for _, row := range t.rows(t.s) {
		row := row
		if pred(&row) {
			out = append(out, &row)
		}
	}
	if t.less != nil {
		sort.SliceStable(out, func(i, j int) bool { return t.less(out[i], out[j]) })
	}
	return out
}

func (t *table[T, PT]) checkUniqueLocked(e *T) error {
	if t.keys == nil {
		return nil
	}
	id := PT(e).GetID()
	want := t.keys(e)
	for otherID, row := range t.rows(t.s) {
		if otherID == id {
			continue
		}
		row := row
		for col, val := range t.keys(&row) {
			if val != "" && strings.EqualFold(want[col], val) {
				return &errors.ErrConflict{Message: fmt.Sprintf("%s already exists", t.resource)}
			}
		}
	}
	return nil
}

func newestFirst[T any, PT entity[T]](a, b *T) bool {
	return PT(a).GetCreatedAt().After(PT(b).GetCreatedAt())
}

func byName[T any](name func(*T) string) func(a, b *T) bool {
	return func(a, b *T) bool { return strings.ToLower(name(a)) < strings.ToLower(name(b)) }
}
