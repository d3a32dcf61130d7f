package pincode

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yawerky/houseOfGul-sub000/internal/domain"
	"github.com/yawerky/houseOfGul-sub000/internal/repository"
	"github.com/yawerky/houseOfGul-sub000/internal/repository/memory"
)

func newTestDirectory(t *testing.T) (*Directory, *repository.Repositories) {
	t.Helper()
	repos := memory.NewRepositories(nil)
	return NewDirectory(repos, nil), repos
}

func TestLookupTrimsAndReportsServiceability(t *testing.T) {
	dir, repos := newTestDirectory(t)
	ctx := context.Background()

	require.NoError(t, repos.Pincode.Create(ctx, &domain.Pincode{Code: "110001", City: "Delhi", State: "DL", IsActive: true}))
	require.NoError(t, repos.Pincode.Create(ctx, &domain.Pincode{Code: "999999", City: "Nowhere", State: "NA", IsActive: false}))

	p, err := dir.Lookup(ctx, "  110001\t")
	require.NoError(t, err)
	assert.Equal(t, "Delhi", p.City)

	_, err = dir.Lookup(ctx, "123456")
	assert.True(t, errors.Is(err, ErrPincodeNotFound))
	_, err = dir.Lookup(ctx, "   ")
	assert.True(t, errors.Is(err, ErrPincodeNotFound))

	ok, err := dir.IsServiceable(ctx, "110001")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = dir.IsServiceable(ctx, "999999")
	require.NoError(t, err)
	assert.False(t, ok, "inactive records are not serviceable")

	ok, err = dir.IsServiceable(ctx, "000000")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestResolveZone(t *testing.T) {
	tests := []struct {
		sameDay, nextDay string
		want             domain.DeliveryZone
	}{
		{"true", "false", domain.DeliveryZoneSameDay},
		{"true", "", domain.DeliveryZoneSameDay},
		{"TRUE", "", domain.DeliveryZoneNextDay},
		{"false", "true", domain.DeliveryZoneNextDay},
		{"", "", domain.DeliveryZoneNextDay},
		{"", "maybe", domain.DeliveryZoneNextDay},
		{"false", "false", domain.DeliveryZoneStandard},
		{"yes", "false", domain.DeliveryZoneStandard},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%q/%q", tt.sameDay, tt.nextDay), func(t *testing.T) {
			assert.Equal(t, tt.want, ResolveZone(tt.sameDay, tt.nextDay))
		})
	}
}

func TestBulkImport(t *testing.T) {
	dir, repos := newTestDirectory(t)
	ctx := context.Background()

	csvText := strings.Join([]string{
		"Pincode, City ,State,Area,DeliveryCharge,SameDayAvailable,NextDayAvailable,MinOrderFree",
		"110001,Delhi,DL,Connaught Place,10,true,false,150",
		"400001,Mumbai,MH,Fort,abc,false,false,",
		"560001,Bengaluru,KA,,7.5,false,,",
		",Chennai,TN,,5,,,",
		"700001,,WB,,5,,,",
	}, "\n")

	res, err := dir.BulkImport(ctx, csvText)
	require.NoError(t, err)
	assert.Equal(t, 3, res.Imported)
	assert.Equal(t, 2, res.Skipped)
	require.Len(t, res.Errors, 2)
	assert.Contains(t, res.Errors[0], "missing pincode")
	assert.Contains(t, res.Errors[1], "missing city")

	delhi, err := dir.Lookup(ctx, "110001")
	require.NoError(t, err)
	assert.Equal(t, domain.DeliveryZoneSameDay, delhi.DeliveryZone)
	assert.True(t, delhi.DeliveryCharge.Equal(decimal.NewFromInt(10)))
	assert.True(t, delhi.MinOrderFree.Valid)
	assert.True(t, delhi.IsActive)

	mumbai, err := dir.Lookup(ctx, "400001")
	require.NoError(t, err)
	assert.Equal(t, domain.DeliveryZoneStandard, mumbai.DeliveryZone)
	assert.True(t, mumbai.DeliveryCharge.IsZero(), "unparsable charge defaults to 0")
	assert.False(t, mumbai.MinOrderFree.Valid)

	blr, err := dir.Lookup(ctx, "560001")
	require.NoError(t, err)
	assert.Equal(t, domain.DeliveryZoneNextDay, blr.DeliveryZone)

	all, err := repos.Pincode.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestBulkImportUpsertsByCode(t *testing.T) {
	dir, repos := newTestDirectory(t)
	ctx := context.Background()

	_, err := dir.BulkImport(ctx, "code,city,state\n110001,Delhi,DL\n")
	require.NoError(t, err)
	_, err = dir.BulkImport(ctx, "code,city,state\n110001,New Delhi,DL\n")
	require.NoError(t, err)

	all, err := repos.Pincode.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "New Delhi", all[0].City)
}

func TestBulkImportCountsRepeatedCodeOnce(t *testing.T) {
	dir, repos := newTestDirectory(t)
	ctx := context.Background()

	res, err := dir.BulkImport(ctx, "code,city,state\n110001,Delhi,DL\n400001,Mumbai,MH\n110001,New Delhi,DL\n")
	require.NoError(t, err)
	assert.Equal(t, 2, res.Imported)
	assert.Equal(t, 1, res.Skipped)
	require.Len(t, res.Errors, 1)
	assert.Equal(t, "line 2: pincode 110001 repeated on line 4", res.Errors[0])

	all, err := repos.Pincode.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	delhi, err := dir.Lookup(ctx, "110001")
	require.NoError(t, err)
	assert.Equal(t, "New Delhi", delhi.City)
}

func TestBulkImportRejectsEmptyInput(t *testing.T) {
	dir, repos := newTestDirectory(t)
	ctx := context.Background()

	for _, input := range []string{"", "pincode,city,state\n", "pincode,city,state\n\n ,, \n"} {
		_, err := dir.BulkImport(ctx, input)
		assert.True(t, errors.Is(err, ErrNoDataRows), "input %q", input)
	}

	all, err := repos.Pincode.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestBulkImportBoundsErrors(t *testing.T) {
	dir, _ := newTestDirectory(t)

	var b strings.Builder
	b.WriteString("pincode,city,state\n")
	for i := 0; i < 30; i++ {
		fmt.Fprintf(&b, "%d,,\n", 100000+i)
	}
	b.WriteString("110001,Delhi,DL\n")

	res, err := dir.BulkImport(context.Background(), b.String())
	require.NoError(t, err)
	assert.Equal(t, 1, res.Imported)
	assert.Equal(t, 30, res.Skipped)
	assert.Len(t, res.Errors, MaxImportErrors)
}

func TestBulkImportIsActiveColumn(t *testing.T) {
	dir, _ := newTestDirectory(t)
	ctx := context.Background()

	_, err := dir.BulkImport(ctx, "pincode,city,state,isactive\n110001,Delhi,DL,false\n110002,Delhi,DL,\n")
	require.NoError(t, err)

	ok, err := dir.IsServiceable(ctx, "110001")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = dir.IsServiceable(ctx, "110002")
	require.NoError(t, err)
	assert.True(t, ok)
}
