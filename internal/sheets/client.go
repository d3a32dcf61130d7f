// Package sheets fetches a publicly shared Google Sheet as CSV and turns its
// rows into product drafts.
package sheets

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"go.uber.org/zap"
)

const (
	defaultBaseURL = "https://docs.google.com"
	maxBodyBytes   = 10 << 20
)

var (
	ErrInvalidSheetURL = errors.New("not a Google Sheets URL")
	ErrSheetNotShared  = errors.New("sheet is not publicly shared")

	sheetIDPattern = regexp.MustCompile(`/spreadsheets/d/([a-zA-Z0-9_-]+)`)
	gidPattern     = regexp.MustCompile(`gid=([0-9]+)`)
)

// SheetRef identifies one tab of a spreadsheet
type SheetRef struct {
	ID  string
	GID string
}

// ParseSheetURL extracts the spreadsheet id and optional tab gid from a share
// or edit URL.
func ParseSheetURL(raw string) (SheetRef, error) {
	raw = strings.TrimSpace(raw)
	m := sheetIDPattern.FindStringSubmatch(raw)
	if m == nil {
		return SheetRef{}, errors.Wrap(ErrInvalidSheetURL, raw)
	}
	ref := SheetRef{ID: m[1]}

	if u, err := url.Parse(raw); err == nil {
		if gid := u.Query().Get("gid"); gid != "" {
			ref.GID = gid
			return ref, nil
		}
		if g := gidPattern.FindStringSubmatch(u.Fragment); g != nil {
			ref.GID = g[1]
		}
	}
	return ref, nil
}

// Client downloads the CSV export of a sheet
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates a sheet export client. An empty baseURL means docs.google.com.
func NewClient(baseURL string, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
		logger:     logger,
	}
}

// ExportURL is the CSV export endpoint for ref
func (c *Client) ExportURL(ref SheetRef) string {
	u := fmt.Sprintf("%s/spreadsheets/d/%s/export?format=csv", c.baseURL, url.PathEscape(ref.ID))
	if ref.GID != "" {
		u += "&gid=" + url.QueryEscape(ref.GID)
	}
	return u
}

// FetchCSV returns the CSV text of the sheet behind sheetURL
func (c *Client) FetchCSV(ctx context.Context, sheetURL string) (string, error) {
	ref, err := ParseSheetURL(sheetURL)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.ExportURL(ref), nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Accept", "text/csv")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("Sheet export request failed", zap.Error(err), zap.String("sheet_id", ref.ID))
		return "", errors.Wrap(err, "fetch sheet")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return "", errors.Wrap(err, "read sheet")
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized, resp.StatusCode == http.StatusForbidden, resp.StatusCode == http.StatusNotFound:
		return "", errors.Wrapf(ErrSheetNotShared, "status %d", resp.StatusCode)
	case resp.StatusCode != http.StatusOK:
		return "", errors.Errorf("sheet export returned %d: %s", resp.StatusCode, truncate(string(body), 200))
	}
	// A private sheet redirects to the sign-in page, which is HTML
	if strings.Contains(resp.Header.Get("Content-Type"), "text/html") {
		return "", ErrSheetNotShared
	}
	return string(body), nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
