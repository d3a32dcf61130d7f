package sheets

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

var ErrNoHeader = errors.New("sheet has no header row")

// Record is one parsed CSV row with its source line
type Record struct {
	Line   int
	Fields map[string]string
}

// RowError describes a row that could not be used
type RowError struct {
	Line    int
	Message string
}

func (e RowError) String() string { return fmt.Sprintf("line %d: %s", e.Line, e.Message) }

// ParseCSV reads CSV text with quoted fields ("a, b" and doubled quotes) and
// keys every row by its lower-cased, space-free header name. Rows the reader
// cannot parse are returned as RowErrors; the rest of the input is still read.
func ParseCSV(text string) ([]Record, []RowError, error) {
	r := csv.NewReader(strings.NewReader(text))
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	header, err := r.Read()
	if err == io.EOF {
		return nil, nil, ErrNoHeader
	}
	if err != nil {
		return nil, nil, errors.Wrap(err, "read header")
	}
	keys := make([]string, len(header))
	for i, h := range header {
		keys[i] = normalizeHeader(h)
	}

	var (
		records []Record
		rowErrs []RowError
	)
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				rowErrs = append(rowErrs, RowError{Line: parseErr.StartLine, Message: parseErr.Err.Error()})
				continue
			}
			return nil, nil, errors.Wrap(err, "read row")
		}
		line, _ := r.FieldPos(0)

		fields := make(map[string]string, len(keys))
		blank := true
		for i, v := range row {
			if i >= len(keys) || keys[i] == "" {
				continue
			}
			v = strings.TrimSpace(v)
			if v != "" {
				blank = false
			}
			if _, seen := fields[keys[i]]; !seen {
				fields[keys[i]] = v
			}
		}
		if blank {
			continue
		}
		records = append(records, Record{Line: line, Fields: fields})
	}
	return records, rowErrs, nil
}

func normalizeHeader(h string) string {
	h = strings.TrimPrefix(strings.TrimSpace(h), "\ufeff")
	h = strings.ToLower(h)
	return strings.NewReplacer(" ", "", "_", "", "-", "").Replace(h)
}

// ProductRow is a product draft read from the sheet
type ProductRow struct {
	Line           int
	Name           string
	Slug           string
	Description    string
	Price          decimal.Decimal
	CompareAtPrice decimal.NullDecimal
	ImageURL       string
	Category       string
	Occasion       string
	Featured       bool
	InStock        bool
	Stock          int
}

// ParseProducts turns CSV text into product drafts. name and price are
// required; a row without them, or with an unreadable number, is reported and
// skipped.
func ParseProducts(text string) ([]ProductRow, []RowError, error) {
	records, rowErrs, err := ParseCSV(text)
	if err != nil {
		return nil, nil, err
	}

	var rows []ProductRow
	for _, rec := range records {
		row, msg := productFromRecord(rec)
		if msg != "" {
			rowErrs = append(rowErrs, RowError{Line: rec.Line, Message: msg})
			continue
		}
		rows = append(rows, row)
	}
	return rows, rowErrs, nil
}

func productFromRecord(rec Record) (ProductRow, string) {
	f := rec.Fields
	row := ProductRow{
		Line:        rec.Line,
		Name:        f["name"],
		Slug:        f["slug"],
		Description: f["description"],
		ImageURL:    firstNonEmpty(f["imageurl"], f["image"]),
		Category:    f["category"],
		Occasion:    f["occasion"],
		Featured:    parseBool(f["featured"], false),
	}
	if row.Name == "" {
		return row, "missing name"
	}
	if f["price"] == "" {
		return row, "missing price"
	}

	price, err := ParseMoney(f["price"])
	if err != nil || price.IsNegative() {
		return row, fmt.Sprintf("invalid price %q", f["price"])
	}
	row.Price = price

	if v := f["compareatprice"]; v != "" {
		cmp, err := ParseMoney(v)
		if err != nil || cmp.IsNegative() {
			return row, fmt.Sprintf("invalid compare at price %q", v)
		}
		row.CompareAtPrice = decimal.NullDecimal{Decimal: cmp, Valid: true}
	}

	stockSet := false
	if v := f["stock"]; v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return row, fmt.Sprintf("invalid stock %q", v)
		}
		row.Stock = n
		stockSet = true
	}
	row.InStock = parseBool(f["instock"], !stockSet || row.Stock > 0)
	return row, ""
}

// ParseMoney accepts plain numbers with an optional currency symbol and
// thousands separators, e.g. "$1,250.00".
func ParseMoney(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimLeft(s, "$₹€£ ")
	s = strings.TrimPrefix(strings.TrimPrefix(s, "Rs."), "Rs")
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, err
	}
	return d.Round(2), nil
}

func parseBool(s string, def bool) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "yes", "y", "1":
		return true
	case "false", "no", "n", "0":
		return false
	default:
		return def
	}
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
