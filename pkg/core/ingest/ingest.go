// Package ingest fetches company financial statements, profiles and news
// from external data sources and maps them onto calc's canonical line items.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"financial_analyst/pkg/core/calc"
)

// =============================================================================
// COLLABORATOR CONTRACTS
// =============================================================================

// Fetcher retrieves the statements and profile of one company. Callers fetch
// once per request; nothing is cached.
type Fetcher interface {
	FetchStatements(ctx context.Context, symbol string) (*calc.Statements, error)
	FetchProfile(ctx context.Context, symbol string) (*Profile, error)
}

// NewsSource retrieves recent headlines for a company.
type NewsSource interface {
	FetchNews(ctx context.Context, symbol string, limit int) ([]NewsItem, error)
}

// Profile is the identifying information of a company.
type Profile struct {
	Symbol          string        `json:"symbol"`
	Name            string        `json:"name"`
	LongName        string        `json:"long_name,omitempty"`
	BusinessSummary string        `json:"business_summary,omitempty"`
	Sector          string        `json:"sector,omitempty"`
	Industry        string        `json:"industry,omitempty"`
	Country         string        `json:"country,omitempty"`
	Exchange        string        `json:"exchange,omitempty"`
	Website         string        `json:"website,omitempty"`
	Employees       int           `json:"employees,omitempty"`
	Currency        string        `json:"currency,omitempty"`
	Market          calc.Snapshot `json:"market"`
}

// DisplayName prefers the long name.
func (p *Profile) DisplayName() string {
	if p.LongName != "" {
		return p.LongName
	}
	if p.Name != "" {
		return p.Name
	}
	return p.Symbol
}

// NewsItem is one headline.
type NewsItem struct {
	Title     string    `json:"title"`
	Summary   string    `json:"summary,omitempty"`
	Link      string    `json:"link,omitempty"`
	Published time.Time `json:"published"`
}

// =============================================================================
// ERRORS
// =============================================================================

var (
	// ErrNotFound is returned when the data source has no such company.
	ErrNotFound = errors.New("company not found")
	// ErrInvalidSymbol is returned for a syntactically malformed symbol.
	ErrInvalidSymbol = errors.New("invalid symbol")
)

// APIError is a non-200 response from an upstream data API.
type APIError struct {
	Source     string
	StatusCode int
	Message    string
	Endpoint   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s API error: %s (status: %d, endpoint: %s)", e.Source, e.Message, e.StatusCode, e.Endpoint)
}

// =============================================================================
// SYMBOLS
// =============================================================================

// Tickers like AAPL, BRK-B, BRK.B, RELIANCE.NS, 7203.T.
var symbolPattern = regexp.MustCompile(`^[A-Z0-9][A-Z0-9\-]{0,14}(\.[A-Z]{1,4})?$`)

// NormalizeSymbol trims and upper-cases a symbol and checks its shape.
func NormalizeSymbol(symbol string) (string, error) {
	s := strings.ToUpper(strings.TrimSpace(symbol))
	if !symbolPattern.MatchString(s) {
		return "", fmt.Errorf("%w: %q", ErrInvalidSymbol, symbol)
	}
	return s, nil
}

// IsValidTicker reports whether the data source knows the symbol. It checks
// the symbol's shape, then fetches the profile and requires a name. Any
// failure counts as invalid.
func IsValidTicker(ctx context.Context, f Fetcher, symbol string) (valid bool) {
	defer func() {
		if r := recover(); r != nil {
			valid = false
		}
	}()

	s, err := NormalizeSymbol(symbol)
	if err != nil || f == nil {
		return false
	}
	profile, err := f.FetchProfile(ctx, s)
	if err != nil || profile == nil {
		return false
	}
	return strings.TrimSpace(profile.Name) != "" || strings.TrimSpace(profile.LongName) != ""
}
