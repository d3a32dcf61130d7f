// Package pincode resolves postal codes to delivery zones and imports the
// delivery directory from CSV.
package pincode

import (
	"context"
	"strings"

	"github.com/go-faster/errors"
	"go.uber.org/zap"

	"github.com/yawerky/houseOfGul-sub000/internal/domain"
	"github.com/yawerky/houseOfGul-sub000/internal/repository"
	apperrors "github.com/yawerky/houseOfGul-sub000/pkg/errors"
)

var (
	ErrPincodeNotFound = errors.New("pincode not found")
	ErrNoDataRows      = errors.New("no data rows")
)

// Directory looks pincodes up and imports them
type Directory struct {
	repos  *repository.Repositories
	logger *zap.Logger
}

func NewDirectory(repos *repository.Repositories, logger *zap.Logger) *Directory {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Directory{repos: repos, logger: logger}
}

// NormalizeCode trims surrounding whitespace; postal codes have no case
func NormalizeCode(code string) string {
	return strings.TrimSpace(code)
}

// Lookup returns the record for code, inactive records included
func (d *Directory) Lookup(ctx context.Context, code string) (*domain.Pincode, error) {
	normalized := NormalizeCode(code)
	if normalized == "" {
		return nil, ErrPincodeNotFound
	}
	p, err := d.repos.Pincode.GetByCode(ctx, normalized)
	if err != nil {
		var notFound *apperrors.ErrNotFound
		if errors.As(err, &notFound) {
			return nil, ErrPincodeNotFound
		}
		return nil, errors.Wrap(err, "get pincode")
	}
	return p, nil
}

// IsServiceable reports whether code exists and is active. Lookup failures
// other than not-found are returned.
func (d *Directory) IsServiceable(ctx context.Context, code string) (bool, error) {
	p, err := d.Lookup(ctx, code)
	if errors.Is(err, ErrPincodeNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return p.IsActive, nil
}
