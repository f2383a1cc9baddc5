package ingest

// SEC EDGAR XBRL integration.
// API Documentation: https://www.sec.gov/edgar/sec-api-documentation

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"financial_analyst/pkg/core/calc"
)

const (
	// SEC EDGAR API endpoints
	SECTickersURL      = "https://www.sec.gov/files/company_tickers.json"
	SECCompanyFactsURL = "https://data.sec.gov/api/xbrl/companyfacts/CIK%s.json"

	// Required User-Agent per SEC guidelines
	UserAgent = "FinancialAnalyst/1.0 (contact@example.com)"
)

// =============================================================================
// SEC EDGAR DATA TYPES
// =============================================================================

// CompanyFacts is the companyfacts response.
type CompanyFacts struct {
	CIK        int                               `json:"cik"`
	EntityName string                            `json:"entityName"`
	Facts      map[string]map[string]FactConcept `json:"facts"` // taxonomy -> tag
}

// FactConcept holds every reported value of one XBRL tag.
type FactConcept struct {
	Label string            `json:"label"`
	Units map[string][]Fact `json:"units"` // "USD", "shares"
}

// Fact is one reported value.
type Fact struct {
	Start string  `json:"start"` // empty for instant facts
	End   string  `json:"end"`
	Val   float64 `json:"val"`
	FY    int     `json:"fy"`
	FP    string  `json:"fp"`   // "FY", "Q1"
	Form  string  `json:"form"` // "10-K", "10-Q"
	Filed string  `json:"filed"`
}

// tickerEntry is one row of company_tickers.json.
type tickerEntry struct {
	CIK    int    `json:"cik_str"`
	Ticker string `json:"ticker"`
	Title  string `json:"title"`
}

// XBRL tags per canonical line item, in priority order.
var (
	secBalanceTags = map[string][]string{
		calc.ItemCurrentAssets:      {"AssetsCurrent"},
		calc.ItemCurrentLiabilities: {"LiabilitiesCurrent"},
		calc.ItemInventory:          {"InventoryNet"},
		calc.ItemCash:               {"CashAndCashEquivalentsAtCarryingValue"},
		calc.ItemTotalAssets:        {"Assets"},
		calc.ItemStockholdersEquity: {"StockholdersEquity", "StockholdersEquityIncludingPortionAttributableToNoncontrollingInterest"},
		calc.ItemTotalDebt:          {"LongTermDebt", "LongTermDebtNoncurrent"},
	}
	secIncomeTags = map[string][]string{
		calc.ItemTotalRevenue:             {"Revenues", "RevenueFromContractWithCustomerExcludingAssessedTax", "SalesRevenueNet"},
		calc.ItemCostOfRevenue:            {"CostOfRevenue", "CostOfGoodsAndServicesSold"},
		calc.ItemOperatingIncome:          {"OperatingIncomeLoss"},
		calc.ItemNetIncome:                {"NetIncomeLoss"},
		calc.ItemInterestExpense:          {"InterestExpense", "InterestExpenseNonoperating"},
		calc.ItemDepreciationAmortization: {"DepreciationDepletionAndAmortization", "DepreciationAndAmortization"},
	}
	secCashFlowTags = map[string][]string{
		calc.ItemDepreciationAmortization: {"DepreciationDepletionAndAmortization", "DepreciationAndAmortization"},
	}
	secPretaxIncomeTags = []string{
		"IncomeLossFromContinuingOperationsBeforeIncomeTaxesExtraordinaryItemsNoncontrollingInterest",
		"IncomeLossFromContinuingOperationsBeforeIncomeTaxesMinorityInterestAndIncomeLossFromEquityMethodInvestments",
	}
	secOperatingCashFlowTags = []string{"NetCashProvidedByUsedInOperatingActivities"}
	secCapexTags             = []string{"PaymentsToAcquirePropertyPlantAndEquipment"}
	secSharesTags            = []string{"EntityCommonStockSharesOutstanding"}
)

// =============================================================================
// SEC EDGAR CLIENT
// =============================================================================

// EDGARClient handles SEC EDGAR API requests.
type EDGARClient struct {
	httpClient *http.Client
	tickersURL string
	factsURL   string
	logger     zerolog.Logger
}

// NewEDGARClient creates a new SEC EDGAR API client.
func NewEDGARClient() *EDGARClient {
	return &EDGARClient{
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		tickersURL: SECTickersURL,
		factsURL:   SECCompanyFactsURL,
		logger:     log.With().Str("component", "edgar").Logger(),
	}
}

// WithEndpoints overrides the ticker and companyfacts URLs. factsURL is a
// format string taking the zero-padded CIK.
func (c *EDGARClient) WithEndpoints(tickersURL, factsURL string) *EDGARClient {
	c.tickersURL = tickersURL
	c.factsURL = factsURL
	return c
}

func (c *EDGARClient) getJSON(ctx context.Context, url string, result interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	// SEC requires User-Agent header
	req.Header.Set("User-Agent", UserAgent)
	req.Header.Set("Accept", "application/json")

	c.logger.Debug().Str("url", url).Msg("SEC API request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("SEC API request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		apiErr := &APIError{Source: "SEC", StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(body)), Endpoint: url}
		if resp.StatusCode == http.StatusNotFound {
			return fmt.Errorf("%w: %w", ErrNotFound, apiErr)
		}
		return apiErr
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("failed to parse SEC response: %w", err)
	}
	return nil
}

// LookupCIK finds the zero-padded CIK and company title for a ticker.
func (c *EDGARClient) LookupCIK(ctx context.Context, ticker string) (string, string, error) {
	// Response structure: { "0": {"cik_str": 320193, "ticker": "AAPL", "title": "..."}, ... }
	var mapping map[string]tickerEntry
	if err := c.getJSON(ctx, c.tickersURL, &mapping); err != nil {
		return "", "", fmt.Errorf("failed to fetch ticker mapping: %w", err)
	}

	ticker = strings.ToUpper(ticker)
	for _, entry := range mapping {
		if entry.Ticker == ticker {
			return fmt.Sprintf("%010d", entry.CIK), entry.Title, nil
		}
	}
	return "", "", fmt.Errorf("%w: ticker %s not in SEC database", ErrNotFound, ticker)
}

// FetchCompanyFacts retrieves all XBRL facts for a CIK.
func (c *EDGARClient) FetchCompanyFacts(ctx context.Context, cik string) (*CompanyFacts, error) {
	n, err := strconv.Atoi(strings.TrimSpace(cik))
	if err != nil {
		return nil, fmt.Errorf("invalid CIK %q: %w", cik, err)
	}

	var facts CompanyFacts
	if err := c.getJSON(ctx, fmt.Sprintf(c.factsURL, fmt.Sprintf("%010d", n)), &facts); err != nil {
		return nil, err
	}
	return &facts, nil
}

// =============================================================================
// SEC FETCHER
// =============================================================================

// SECFetcher implements Fetcher from annual 10-K XBRL facts. SEC publishes
// no market data, so the snapshot only carries the share count.
//
// EBIT is not tagged in us-gaap; it is derived per period as pretax income
// plus interest expense. Free cash flow is operating cash flow minus capex.
type SECFetcher struct {
	client *EDGARClient
}

// NewSECFetcher wraps a client.
func NewSECFetcher(client *EDGARClient) *SECFetcher {
	return &SECFetcher{client: client}
}

// FetchStatements maps annual facts onto the three statements.
func (f *SECFetcher) FetchStatements(ctx context.Context, symbol string) (*calc.Statements, error) {
	s, err := NormalizeSymbol(symbol)
	if err != nil {
		return nil, err
	}
	cik, _, err := f.client.LookupCIK(ctx, s)
	if err != nil {
		return nil, err
	}
	facts, err := f.client.FetchCompanyFacts(ctx, cik)
	if err != nil {
		return nil, fmt.Errorf("company facts for %s: %w", s, err)
	}

	gaap := facts.Facts["us-gaap"]
	stmts := &calc.Statements{
		Symbol:          s,
		BalanceSheet:    calc.StatementTable{},
		IncomeStatement: calc.StatementTable{},
		CashFlow:        calc.StatementTable{},
		Snapshot:        calc.Snapshot{Currency: "USD"},
	}

	for item, tags := range secBalanceTags {
		fillItem(stmts.BalanceSheet, item, annualSeries(gaap, tags, "USD"))
	}
	for item, tags := range secIncomeTags {
		fillItem(stmts.IncomeStatement, item, annualSeries(gaap, tags, "USD"))
	}
	for item, tags := range secCashFlowTags {
		fillItem(stmts.CashFlow, item, annualSeries(gaap, tags, "USD"))
	}

	pretax := annualSeries(gaap, secPretaxIncomeTags, "USD")
	interest := annualSeries(gaap, secIncomeTags[calc.ItemInterestExpense], "USD")
	for p, v := range pretax {
		if i, ok := interest[p]; ok {
			stmts.IncomeStatement.Set(p, calc.ItemEBIT, v+i)
		}
	}

	ocf := annualSeries(gaap, secOperatingCashFlowTags, "USD")
	capex := annualSeries(gaap, secCapexTags, "USD")
	for p, v := range ocf {
		if c, ok := capex[p]; ok {
			stmts.CashFlow.Set(p, calc.ItemFreeCashFlow, v-c)
		}
	}

	if shares := latestValue(annualSeries(facts.Facts["dei"], secSharesTags, "shares")); shares.Valid {
		stmts.Snapshot.SharesOutstanding = shares
	}

	return stmts, nil
}

// FetchProfile returns the SEC registrant name.
func (f *SECFetcher) FetchProfile(ctx context.Context, symbol string) (*Profile, error) {
	s, err := NormalizeSymbol(symbol)
	if err != nil {
		return nil, err
	}
	_, title, err := f.client.LookupCIK(ctx, s)
	if err != nil {
		return nil, err
	}
	return &Profile{
		Symbol:   s,
		Name:     title,
		LongName: title,
		Currency: "USD",
	}, nil
}

// Bounds on the length of a fiscal-year duration fact, in days.
const (
	minAnnualDays = 350
	maxAnnualDays = 380
)

// annualDuration reports whether the fact covers a full fiscal year.
// fp and form describe the filing, so a 10-K also carries Q4 facts ending
// on the same date. Instant facts have no start and always qualify.
func (f Fact) annualDuration() bool {
	if f.Start == "" {
		return true
	}
	start, err := time.Parse("2006-01-02", f.Start)
	if err != nil {
		return false
	}
	end, err := time.Parse("2006-01-02", f.End)
	if err != nil {
		return false
	}
	days := int(end.Sub(start).Hours() / 24)
	return days >= minAnnualDays && days <= maxAnnualDays
}

// annualSeries collects 10-K FY values for the first tag that has any,
// keyed by period end. A later filing overrides an earlier one.
func annualSeries(taxonomy map[string]FactConcept, tags []string, unit string) map[calc.Period]float64 {
	for _, tag := range tags {
		concept, ok := taxonomy[tag]
		if !ok {
			continue
		}
		series := make(map[calc.Period]float64)
		filed := make(map[calc.Period]string)
		for _, fact := range concept.Units[unit] {
			if fact.Form != "10-K" || fact.FP != "FY" || !fact.annualDuration() {
				continue
			}
			p, err := calc.ParsePeriod(fact.End)
			if err != nil {
				continue
			}
			if prev, seen := filed[p]; seen && prev > fact.Filed {
				continue
			}
			series[p] = fact.Val
			filed[p] = fact.Filed
		}
		if len(series) > 0 {
			return series
		}
	}
	return nil
}

func fillItem(table calc.StatementTable, item string, series map[calc.Period]float64) {
	for p, v := range series {
		table.Set(p, item, v)
	}
}

func latestValue(series map[calc.Period]float64) calc.Value {
	var latest calc.Period
	found := false
	for p := range series {
		if !found || latest.Before(p) {
			latest = p
			found = true
		}
	}
	if !found {
		return calc.None()
	}
	return calc.Some(series[latest])
}

// Ensure interface compliance
var (
	_ Fetcher    = (*SECFetcher)(nil)
	_ Fetcher    = (*EODHDFetcher)(nil)
	_ NewsSource = (*EODHDFetcher)(nil)
)
