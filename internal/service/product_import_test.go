package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/yawerky/houseOfGul-sub000/internal/domain"
	"github.com/yawerky/houseOfGul-sub000/internal/repository"
	"github.com/yawerky/houseOfGul-sub000/internal/sheets"
)

const productSheet = `Name,Price,Category,Occasion,Description,In Stock,Featured
"Roses, Red",$40.00,bouquets,Birthday,"A dozen ""long stem"" roses",yes,true
Spring Bouquet,85,Bouquets,,Seasonal mix,,
Lily Basket,abc,bouquets,,,,
,12,,,,,
Orchid,120,succulents,,,no,
Red Roses,55,,,duplicate slug,,
`

func TestImportCSV(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	require.NoError(t, env.repos.Category.Create(ctx, &domain.Category{Name: "Bouquets", Slug: "bouquets"}))
	require.NoError(t, env.repos.Occasion.Create(ctx, &domain.Occasion{Name: "Birthday", Slug: "birthday"}))

	importer := NewProductImporter(env.repos, sheets.NewClient("", zap.NewNop()), zap.NewNop())
	result, err := importer.ImportCSV(ctx, productSheet)
	require.NoError(t, err)

	assert.Equal(t, 3, result.Created)
	assert.Equal(t, 1, result.Skipped, "red-roses already exists")
	assert.Equal(t, 2, result.Failed)
	assert.Len(t, result.Errors, 4)

	roses, err := env.repos.Product.GetBySlug(ctx, "roses-red")
	require.NoError(t, err)
	assert.Equal(t, "40.00", roses.Price.StringFixed(2))
	assert.Equal(t, `A dozen "long stem" roses`, roses.Description)
	assert.True(t, roses.Featured)
	assert.NotNil(t, roses.CategoryID)
	assert.NotNil(t, roses.OccasionID)

	orchid, err := env.repos.Product.GetBySlug(ctx, "orchid")
	require.NoError(t, err)
	assert.False(t, orchid.InStock)
	assert.Nil(t, orchid.CategoryID, "unknown category is reported, not fatal")

	existing, err := env.repos.Product.GetBySlug(ctx, "red-roses")
	require.NoError(t, err)
	assert.Equal(t, "50.00", existing.Price.StringFixed(2), "existing products are never overwritten")
}

func TestImportCSVRunTwiceSkipsEverything(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	importer := NewProductImporter(env.repos, nil, zap.NewNop())

	sheet := "name,price\nPeony Jar,30\nTulip Box,25\n"
	first, err := importer.ImportCSV(ctx, sheet)
	require.NoError(t, err)
	assert.Equal(t, 2, first.Created)

	second, err := importer.ImportCSV(ctx, sheet)
	require.NoError(t, err)
	assert.Equal(t, 0, second.Created)
	assert.Equal(t, 2, second.Skipped)

	products, err := env.repos.Product.Search(ctx, repository.ProductFilter{IncludeOutOfStock: true})
	require.NoError(t, err)
	assert.Len(t, products, 5)
}

func TestImportFromURL(t *testing.T) {
	env := newTestEnv(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/csv")
		_, _ = w.Write([]byte("name,price,stock\nMarigold Garland,18,0\n"))
	}))
	defer srv.Close()

	importer := NewProductImporter(env.repos, sheets.NewClient(srv.URL, zap.NewNop()), zap.NewNop())
	result, err := importer.ImportFromURL(context.Background(), "https://docs.google.com/spreadsheets/d/abc123/edit#gid=0")
	require.NoError(t, err)
	assert.Equal(t, 1, result.Created)

	p, err := env.repos.Product.GetBySlug(context.Background(), "marigold-garland")
	require.NoError(t, err)
	assert.False(t, p.InStock, "zero stock without an in-stock column means out of stock")
}

func TestImportFromURLRejectsBadURL(t *testing.T) {
	env := newTestEnv(t)
	importer := NewProductImporter(env.repos, sheets.NewClient("", zap.NewNop()), zap.NewNop())
	_, err := importer.ImportFromURL(context.Background(), "https://example.com/sheet")
	require.ErrorIs(t, err, sheets.ErrInvalidSheetURL)
}
