package sheets

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSheetURL(t *testing.T) {
	tests := []struct {
		in      string
		id, gid string
		wantErr bool
	}{
		{in: "https://docs.google.com/spreadsheets/d/1AbC-dEf_123/edit?usp=sharing", id: "1AbC-dEf_123"},
		{in: "https://docs.google.com/spreadsheets/d/1AbC/edit#gid=456", id: "1AbC", gid: "456"},
		{in: "https://docs.google.com/spreadsheets/d/1AbC/edit?gid=789#gid=456", id: "1AbC", gid: "789"},
		{in: "https://example.com/not-a-sheet", wantErr: true},
		{in: "", wantErr: true},
	}
	for _, tt := range tests {
		ref, err := ParseSheetURL(tt.in)
		if tt.wantErr {
			assert.True(t, errors.Is(err, ErrInvalidSheetURL), tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.id, ref.ID)
		assert.Equal(t, tt.gid, ref.GID)
	}
}

func TestParseCSVQuotedFields(t *testing.T) {
	text := "Name,Price,Description\n" +
		"\"Roses, Red\",40,\"He said \"\"wow\"\"\"\n" +
		"Lilies,30,\"multi\nline\"\n" +
		",,\n"

	records, rowErrs, err := ParseCSV(text)
	require.NoError(t, err)
	assert.Empty(t, rowErrs)
	require.Len(t, records, 2)
	assert.Equal(t, "Roses, Red", records[0].Fields["name"])
	assert.Equal(t, `He said "wow"`, records[0].Fields["description"])
	assert.Equal(t, "multi\nline", records[1].Fields["description"])
	assert.Equal(t, 3, records[1].Line)

	_, _, err = ParseCSV("")
	assert.True(t, errors.Is(err, ErrNoHeader))
}

func TestParseCSVReportsBrokenRowAndContinues(t *testing.T) {
	text := "name,price\nbad \"quote,10\nTulips,25\n"
	records, rowErrs, err := ParseCSV(text)
	require.NoError(t, err)
	require.Len(t, rowErrs, 1)
	require.Len(t, records, 1)
	assert.Equal(t, "Tulips", records[0].Fields["name"])
}

func TestParseProducts(t *testing.T) {
	text := "Name,Price,Compare At Price,Image,Category,Featured,In Stock,Stock,Slug\n" +
		"Red Roses,\"$1,250.00\",1500,https://img/1.jpg,Roses,yes,,,\n" +
		"Orchid,12.5,,,,,,0,orchid-white\n" +
		"No Price,,,,,,,,\n" +
		",10,,,,,,,\n" +
		"Bad Price,abc,,,,,,,\n"

	rows, rowErrs, err := ParseProducts(text)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	require.Len(t, rowErrs, 3)
	assert.Contains(t, rowErrs[0].String(), "missing price")
	assert.Contains(t, rowErrs[1].String(), "missing name")
	assert.Contains(t, rowErrs[2].String(), "invalid price")

	roses := rows[0]
	assert.True(t, roses.Price.Equal(decimal.NewFromInt(1250)))
	assert.True(t, roses.CompareAtPrice.Valid)
	assert.Equal(t, "https://img/1.jpg", roses.ImageURL)
	assert.Equal(t, "Roses", roses.Category)
	assert.True(t, roses.Featured)
	assert.True(t, roses.InStock, "in stock by default")

	orchid := rows[1]
	assert.Equal(t, "orchid-white", orchid.Slug)
	assert.False(t, orchid.InStock, "zero stock means out of stock")
}

func TestFetchCSV(t *testing.T) {
	var gotPath, gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath, gotQuery = r.URL.Path, r.URL.RawQuery
		switch r.URL.Path {
		case "/spreadsheets/d/public/export":
			w.Header().Set("Content-Type", "text/csv")
			_, _ = w.Write([]byte("name,price\nRoses,40\n"))
		case "/spreadsheets/d/private/export":
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			_, _ = w.Write([]byte("<html>sign in</html>"))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	client := NewClient(srv.URL, nil)
	ctx := context.Background()

	body, err := client.FetchCSV(ctx, "https://docs.google.com/spreadsheets/d/public/edit#gid=7")
	require.NoError(t, err)
	assert.Equal(t, "name,price\nRoses,40\n", body)
	assert.Equal(t, "/spreadsheets/d/public/export", gotPath)
	assert.Equal(t, "format=csv&gid=7", gotQuery)

	_, err = client.FetchCSV(ctx, "https://docs.google.com/spreadsheets/d/private/edit")
	assert.True(t, errors.Is(err, ErrSheetNotShared))

	_, err = client.FetchCSV(ctx, "https://docs.google.com/spreadsheets/d/missing/edit")
	assert.True(t, errors.Is(err, ErrSheetNotShared))

	_, err = client.FetchCSV(ctx, "nope")
	assert.True(t, errors.Is(err, ErrInvalidSheetURL))
}

func TestExportURLDefaultsToGoogle(t *testing.T) {
	c := NewClient("", nil)
	assert.Equal(t, "https://docs.google.com/spreadsheets/d/abc/export?format=csv", c.ExportURL(SheetRef{ID: "abc"}))
}
