package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

const (
	// EODHDBaseURL is the base URL for the EODHD API.
	EODHDBaseURL = "https://eodhd.com/api"

	// DefaultTimeout is the default HTTP timeout for data APIs.
	DefaultTimeout = 30 * time.Second

	// DefaultRateLimit is the default EODHD rate limit (requests per second).
	DefaultRateLimit = 10
)

// =============================================================================
// EODHD CLIENT
// =============================================================================

// EODHDClient is an EODHD API client.
type EODHDClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     zerolog.Logger
}

// EODHDOption configures the client.
type EODHDOption func(*EODHDClient)

// WithBaseURL sets a custom base URL.
func WithBaseURL(baseURL string) EODHDOption {
	return func(c *EODHDClient) {
		if baseURL != "" {
			c.baseURL = strings.TrimRight(baseURL, "/")
		}
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(httpClient *http.Client) EODHDOption {
	return func(c *EODHDClient) {
		c.httpClient = httpClient
	}
}

// WithRateLimit sets a custom rate limit.
func WithRateLimit(requestsPerSecond int) EODHDOption {
	return func(c *EODHDClient) {
		if requestsPerSecond > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond)
		}
	}
}

// WithLogger sets the client logger.
func WithLogger(logger zerolog.Logger) EODHDOption {
	return func(c *EODHDClient) {
		c.logger = logger
	}
}

// NewEODHDClient creates a new EODHD API client.
func NewEODHDClient(apiKey string, opts ...EODHDOption) *EODHDClient {
	c := &EODHDClient{
		baseURL: EODHDBaseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		limiter: rate.NewLimiter(rate.Limit(DefaultRateLimit), DefaultRateLimit),
		logger:  log.With().Str("component", "eodhd").Logger(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// get performs a GET request to the API.
func (c *EODHDClient) get(ctx context.Context, path string, params url.Values, result interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}

	if params == nil {
		params = url.Values{}
	}
	params.Set("api_token", c.apiKey)
	params.Set("fmt", "json")

	reqURL := fmt.Sprintf("%s%s?%s", c.baseURL, path, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	c.logger.Debug().Str("url", c.baseURL+path).Msg("EODHD API request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		apiErr := &APIError{
			Source:     "EODHD",
			StatusCode: resp.StatusCode,
			Message:    strings.TrimSpace(string(body)),
			Endpoint:   path,
		}
		if resp.StatusCode == http.StatusNotFound {
			return fmt.Errorf("%w: %w", ErrNotFound, apiErr)
		}
		return apiErr
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}

// GetFundamentals retrieves fundamental data for a symbol in TICKER.EXCHANGE
// form.
func (c *EODHDClient) GetFundamentals(ctx context.Context, symbol string) (*FundamentalsResponse, error) {
	var result FundamentalsResponse
	if err := c.get(ctx, "/fundamentals/"+symbol, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// GetNews retrieves the latest news for one symbol.
func (c *EODHDClient) GetNews(ctx context.Context, symbol string, limit int) ([]EODHDNewsItem, error) {
	params := url.Values{}
	params.Set("s", symbol)
	if limit > 0 {
		params.Set("limit", strconv.Itoa(limit))
	}

	var result []EODHDNewsItem
	if err := c.get(ctx, "/news", params, &result); err != nil {
		return nil, err
	}

	for i := range result {
		if t, err := time.Parse(time.RFC3339, result[i].DateStr); err == nil {
			result[i].Date = t
		} else if t, err := time.Parse("2006-01-02 15:04:05", result[i].DateStr); err == nil {
			result[i].Date = t
		} else if t, err := time.Parse("2006-01-02", result[i].DateStr); err == nil {
			result[i].Date = t
		}
	}

	return result, nil
}

// =============================================================================
// EODHD RESPONSE TYPES
// =============================================================================

// FundamentalsResponse is the subset of /fundamentals used here.
type FundamentalsResponse struct {
	General     *GeneralInfo `json:"General"`
	Highlights  *Highlights  `json:"Highlights"`
	Valuation   *Valuation   `json:"Valuation"`
	SharesStats *SharesStats `json:"SharesStats"`
	Financials  *Financials  `json:"Financials"`
}

// GeneralInfo contains general company information.
type GeneralInfo struct {
	Code              string `json:"Code"`
	Type              string `json:"Type"`
	Name              string `json:"Name"`
	Exchange          string `json:"Exchange"`
	CurrencyCode      string `json:"CurrencyCode"`
	CountryName       string `json:"CountryName"`
	Sector            string `json:"Sector"`
	Industry          string `json:"Industry"`
	Description       string `json:"Description"`
	WebURL            string `json:"WebURL"`
	FullTimeEmployees int    `json:"FullTimeEmployees"`
	IsDelisted        bool   `json:"IsDelisted"`
}

// Highlights contains key financial highlights. EODHD sends null for
// unknown values.
type Highlights struct {
	MarketCapitalization *float64 `json:"MarketCapitalization"`
	PERatio              *float64 `json:"PERatio"`
}

// Valuation contains valuation multiples.
type Valuation struct {
	TrailingPE *float64 `json:"TrailingPE"`
}

// SharesStats contains the current share count.
type SharesStats struct {
	SharesOutstanding *float64 `json:"SharesOutstanding"`
}

// Financials contains the three financial statements.
type Financials struct {
	BalanceSheet    *FinancialStatement `json:"Balance_Sheet"`
	CashFlow        *FinancialStatement `json:"Cash_Flow"`
	IncomeStatement *FinancialStatement `json:"Income_Statement"`
}

// FinancialStatement holds yearly statements keyed by report date. Field
// values arrive as strings, numbers or null.
type FinancialStatement struct {
	Currency string                            `json:"currency_symbol"`
	Yearly   map[string]map[string]interface{} `json:"yearly"`
}

// EODHDNewsItem is one article from /news.
type EODHDNewsItem struct {
	Date    time.Time `json:"-"`
	DateStr string    `json:"date"`
	Title   string    `json:"title"`
	Content string    `json:"content"`
	Link    string    `json:"link"`
}
