package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/yawerky/houseOfGul-sub000/internal/content"
	"github.com/yawerky/houseOfGul-sub000/internal/domain"
	"github.com/yawerky/houseOfGul-sub000/internal/repository"
	"github.com/yawerky/houseOfGul-sub000/internal/sheets"
	apperrors "github.com/yawerky/houseOfGul-sub000/pkg/errors"
)

// MaxImportErrors bounds the messages returned with a product import
const MaxImportErrors = 20

// ProductImportResult summarises a sheet import
type ProductImportResult struct {
	Created int      `json:"created"`
	Skipped int      `json:"skipped"`
	Failed  int      `json:"failed"`
	Errors  []string `json:"errors,omitempty"`
}

func (r *ProductImportResult) addError(line int, format string, args ...interface{}) {
	if len(r.Errors) < MaxImportErrors {
		r.Errors = append(r.Errors, fmt.Sprintf("line %d: ", line)+fmt.Sprintf(format, args...))
	}
}

// ProductImporter creates products from a Google Sheet. Existing slugs are
// never overwritten.
type ProductImporter struct {
	repos  *repository.Repositories
	client *sheets.Client
	logger *zap.Logger
	// serialises imports so a manual run and the sync loop cannot interleave
	mu sync.Mutex
}

func NewProductImporter(repos *repository.Repositories, client *sheets.Client, logger *zap.Logger) *ProductImporter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProductImporter{repos: repos, client: client, logger: logger}
}

// ImportFromURL downloads the sheet as CSV and imports it
func (i *ProductImporter) ImportFromURL(ctx context.Context, sheetURL string) (ProductImportResult, error) {
	text, err := i.client.FetchCSV(ctx, sheetURL)
	if err != nil {
		return ProductImportResult{}, err
	}
	return i.ImportCSV(ctx, text)
}

// ImportCSV creates one product per valid row. A bad row is counted and
// reported without aborting the batch.
func (i *ProductImporter) ImportCSV(ctx context.Context, text string) (ProductImportResult, error) {
	i.mu.Lock()
	defer i.mu.Unlock()

	var result ProductImportResult
	rows, rowErrs, err := sheets.ParseProducts(text)
	if err != nil {
		return result, err
	}
	for _, re := range rowErrs {
		result.Failed++
		result.addError(re.Line, "%s", re.Message)
	}

	categories := map[string]*uuid.UUID{}
	occasions := map[string]*uuid.UUID{}

	for _, row := range rows {
		slug := slugOrName(row.Slug, row.Name)
		if slug == "" {
			result.Failed++
			result.addError(row.Line, "could not derive a slug from %q", row.Name)
			continue
		}

		exists, err := i.repos.Product.ExistsBySlug(ctx, slug)
		if err != nil {
			return result, errors.Wrap(err, "check slug")
		}
		if exists {
			result.Skipped++
			result.addError(row.Line, "slug %q already exists", slug)
			continue
		}

		p := &domain.Product{
			Slug:           slug,
			Name:           row.Name,
			Description:    row.Description,
			Price:          row.Price,
			CompareAtPrice: row.CompareAtPrice,
			ImageURL:       row.ImageURL,
			Featured:       row.Featured,
			InStock:        row.InStock,
			Stock:          row.Stock,
		}

		if row.Category != "" {
			id, err := i.categoryID(ctx, categories, row.Category)
			if err != nil {
				return result, err
			}
			if id == nil {
				result.addError(row.Line, "unknown category %q, product created without one", row.Category)
			}
			p.CategoryID = id
		}
		if row.Occasion != "" {
			id, err := i.occasionID(ctx, occasions, row.Occasion)
			if err != nil {
				return result, err
			}
			if id == nil {
				result.addError(row.Line, "unknown occasion %q, product created without one", row.Occasion)
			}
			p.OccasionID = id
		}

		if err := i.repos.Product.Create(ctx, p); err != nil {
			var conflict *apperrors.ErrConflict
			if errors.As(err, &conflict) {
				result.Skipped++
				result.addError(row.Line, "slug %q already exists", slug)
				continue
			}
			result.Failed++
			result.addError(row.Line, "create failed: %v", err)
			i.logger.Warn("Product import: create failed", zap.String("slug", slug), zap.Error(err))
			continue
		}
		result.Created++
	}

	i.logger.Info("Product import finished",
		zap.Int("created", result.Created),
		zap.Int("skipped", result.Skipped),
		zap.Int("failed", result.Failed))
	return result, nil
}

// categoryID resolves a category by slug or name; nil when unknown
func (i *ProductImporter) categoryID(ctx context.Context, cache map[string]*uuid.UUID, value string) (*uuid.UUID, error) {
	if id, ok := cache[value]; ok {
		return id, nil
	}
	c, err := i.repos.Category.GetByNameOrSlug(ctx, value)
	var notFound *apperrors.ErrNotFound
	switch {
	case errors.As(err, &notFound):
		cache[value] = nil
	case err != nil:
		return nil, errors.Wrap(err, "lookup category")
	default:
		id := c.ID
		cache[value] = &id
	}
	return cache[value], nil
}

func (i *ProductImporter) occasionID(ctx context.Context, cache map[string]*uuid.UUID, value string) (*uuid.UUID, error) {
	if id, ok := cache[value]; ok {
		return id, nil
	}
	o, err := i.repos.Occasion.GetBySlug(ctx, content.Slugify(value))
	var notFound *apperrors.ErrNotFound
	switch {
	case errors.As(err, &notFound):
		cache[value] = nil
	case err != nil:
		return nil, errors.Wrap(err, "lookup occasion")
	default:
		id := o.ID
		cache[value] = &id
	}
	return cache[value], nil
}

// RunSyncLoop imports sheetURL once, then every interval. Call from a goroutine.
func (i *ProductImporter) RunSyncLoop(ctx context.Context, sheetURL string, interval time.Duration) {
	if sheetURL == "" || interval <= 0 {
		i.logger.Debug("Product sheet sync skipped: PRODUCT_SHEET_URL or PRODUCT_SHEET_SYNC_INTERVAL not set")
		return
	}
	i.syncOnce(ctx, sheetURL)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			i.syncOnce(ctx, sheetURL)
		}
	}
}

func (i *ProductImporter) syncOnce(ctx context.Context, sheetURL string) {
	result, err := i.ImportFromURL(ctx, sheetURL)
	if err != nil {
		i.logger.Warn("Product sheet sync failed", zap.Error(err))
		return
	}
	if result.Created > 0 {
		i.logger.Info("Product sheet sync: created products", zap.Int("created", result.Created))
	}
}
