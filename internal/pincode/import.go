package pincode

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/yawerky/houseOfGul-sub000/internal/domain"
	"github.com/yawerky/houseOfGul-sub000/internal/repository"
)

// MaxImportErrors bounds the per-row messages kept in an ImportResult
const MaxImportErrors = 20

// ImportResult summarises a bulk import
type ImportResult struct {
	Imported int      `json:"imported"`
	Skipped  int      `json:"skipped"`
	Errors   []string `json:"errors,omitempty"`
}

func (r *ImportResult) addError(format string, args ...interface{}) {
	r.Skipped++
	if len(r.Errors) < MaxImportErrors {
		r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
	}
}

// BulkImport upserts every valid row of csvText keyed by code. Rows missing a
// required column are skipped and reported, as is the earlier of two rows
// sharing a code. All accepted rows are written in one
// transaction, so a storage failure leaves the directory untouched.
func (d *Directory) BulkImport(ctx context.Context, csvText string) (ImportResult, error) {
	var result ImportResult

	records, err := parseRows(csvText, &result)
	if err != nil {
		return result, err
	}

	if len(records) > 0 {
		err = d.repos.Transactor.WithinTransaction(ctx, func(tx *repository.Repositories) error {
			for _, p := range records {
				if err := tx.Pincode.Upsert(ctx, p); err != nil {
					return errors.Wrapf(err, "upsert pincode %s", p.Code)
				}
			}
			return nil
		})
		if err != nil {
			d.logger.Error("Pincode import failed", zap.Error(err))
			return ImportResult{}, err
		}
	}
	result.Imported = len(records)

	d.logger.Info("Pincode import finished",
		zap.Int("imported", result.Imported),
		zap.Int("skipped", result.Skipped))
	return result, nil
}

// column indexes resolved from the header row; -1 when absent
type columns struct {
	code         int
	city         int
	state        int
	area         int
	charge       int
	sameDay      int
	nextDay      int
	minOrderFree int
	isActive     int
}

func parseHeader(header []string) columns {
	idx := map[string]int{}
	for i, h := range header {
		key := strings.ToLower(strings.TrimSpace(h))
		key = strings.TrimPrefix(key, "\ufeff")
		if _, dup := idx[key]; !dup {
			idx[key] = i
		}
	}
	get := func(names ...string) int {
		for _, n := range names {
			if i, ok := idx[n]; ok {
				return i
			}
		}
		return -1
	}
	return columns{
		code:         get("pincode", "code"),
		city:         get("city"),
		state:        get("state"),
		area:         get("area"),
		charge:       get("deliverycharge"),
		sameDay:      get("samedayavailable"),
		nextDay:      get("nextdayavailable"),
		minOrderFree: get("minorderfree"),
		isActive:     get("isactive"),
	}
}

func parseRows(csvText string, result *ImportResult) ([]*domain.Pincode, error) {
	r := csv.NewReader(strings.NewReader(csvText))
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true
	r.LazyQuotes = true

	header, err := r.Read()
	if err == io.EOF {
		return nil, ErrNoDataRows
	}
	if err != nil {
		return nil, errors.Wrap(err, "read header")
	}
	cols := parseHeader(header)

	var (
		out      []*domain.Pincode
		lines    []int
		seen     = map[string]int{}
		dataRows int
	)
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				dataRows++
				result.addError("line %d: %v", parseErr.Line, parseErr.Err)
				continue
			}
			return nil, errors.Wrap(err, "read row")
		}
		if isBlank(row) {
			continue
		}
		dataRows++

		line, _ := r.FieldPos(0)
		p, msg := buildRecord(cols, row)
		if p == nil {
			result.addError("line %d: %s", line, msg)
			continue
		}
		// a repeated code keeps the later row; the earlier one counts as skipped
		if i, dup := seen[p.Code]; dup {
			result.addError("line %d: pincode %s repeated on line %d", lines[i], p.Code, line)
			out[i], lines[i] = p, line
			continue
		}
		seen[p.Code] = len(out)
		out = append(out, p)
		lines = append(lines, line)
	}

	if dataRows == 0 {
		return nil, ErrNoDataRows
	}
	return out, nil
}

func buildRecord(cols columns, row []string) (*domain.Pincode, string) {
	field := func(i int) string {
		if i < 0 || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	code, city, state := field(cols.code), field(cols.city), field(cols.state)
	var missing []string
	if code == "" {
		missing = append(missing, "pincode")
	}
	if city == "" {
		missing = append(missing, "city")
	}
	if state == "" {
		missing = append(missing, "state")
	}
	if len(missing) > 0 {
		return nil, "missing " + strings.Join(missing, ", ")
	}

	charge, err := decimal.NewFromString(field(cols.charge))
	if err != nil {
		charge = decimal.Zero
	}
	if charge.IsNegative() {
		return nil, "negative delivery charge"
	}

	p := &domain.Pincode{
		Code:           code,
		Area:           field(cols.area),
		City:           city,
		State:          state,
		DeliveryZone:   ResolveZone(field(cols.sameDay), field(cols.nextDay)),
		DeliveryCharge: charge.Round(2),
		IsActive:       field(cols.isActive) != "false",
	}
	if v := field(cols.minOrderFree); v != "" {
		if threshold, err := decimal.NewFromString(v); err == nil && !threshold.IsNegative() {
			p.MinOrderFree = decimal.NullDecimal{Decimal: threshold.Round(2), Valid: true}
		}
	}
	return p, ""
}

// ResolveZone applies the import zone rule: "true" in samedayavailable wins,
// then anything but "false" in nextdayavailable (including an absent column)
// means next-day, otherwise 2-3 days.
func ResolveZone(sameDay, nextDay string) domain.DeliveryZone {
	if sameDay == "true" {
		return domain.DeliveryZoneSameDay
	}
	if nextDay != "false" {
		return domain.DeliveryZoneNextDay
	}
	return domain.DeliveryZoneStandard
}

func isBlank(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
