package ingest

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"financial_analyst/pkg/core/calc"
)

// EODHD field names mapped onto canonical line items.
var (
	eodhdBalanceFields = map[string]string{
		"totalCurrentAssets":           calc.ItemCurrentAssets,
		"totalCurrentLiabilities":      calc.ItemCurrentLiabilities,
		"inventory":                    calc.ItemInventory,
		"cashAndEquivalents":           calc.ItemCash,
		"totalAssets":                  calc.ItemTotalAssets,
		"totalStockholderEquity":       calc.ItemStockholdersEquity,
		"shortLongTermDebtTotal":       calc.ItemTotalDebt,
		"commonStockSharesOutstanding": calc.ItemSharesNumber,
	}
	eodhdIncomeFields = map[string]string{
		"totalRevenue":                calc.ItemTotalRevenue,
		"costOfRevenue":               calc.ItemCostOfRevenue,
		"operatingIncome":             calc.ItemOperatingIncome,
		"netIncome":                   calc.ItemNetIncome,
		"ebit":                        calc.ItemEBIT,
		"ebitda":                      calc.ItemEBITDA,
		"interestExpense":             calc.ItemInterestExpense,
		"depreciationAndAmortization": calc.ItemDepreciationAmortization,
	}
	eodhdCashFlowFields = map[string]string{
		"freeCashFlow": calc.ItemFreeCashFlow,
		"depreciation": calc.ItemDepreciationAmortization,
	}
)

// EODHDFetcher implements Fetcher and NewsSource on top of EODHDClient.
type EODHDFetcher struct {
	client   *EODHDClient
	exchange string
}

// NewEODHDFetcher wraps a client. Bare tickers get the default exchange
// suffix (US when empty).
func NewEODHDFetcher(client *EODHDClient, exchange string) *EODHDFetcher {
	if exchange == "" {
		exchange = "US"
	}
	return &EODHDFetcher{client: client, exchange: strings.ToUpper(exchange)}
}

// qualify appends the exchange suffix to bare tickers.
func (f *EODHDFetcher) qualify(symbol string) (string, error) {
	s, err := NormalizeSymbol(symbol)
	if err != nil {
		return "", err
	}
	if !strings.Contains(s, ".") {
		s += "." + f.exchange
	}
	return s, nil
}

// FetchStatements returns yearly statements and the market snapshot.
func (f *EODHDFetcher) FetchStatements(ctx context.Context, symbol string) (*calc.Statements, error) {
	code, err := f.qualify(symbol)
	if err != nil {
		return nil, err
	}
	fund, err := f.client.GetFundamentals(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("fundamentals for %s: %w", code, err)
	}
	if fund.General == nil || fund.Financials == nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, code)
	}

	stmts := &calc.Statements{
		Symbol:          code,
		BalanceSheet:    mapYearly(fund.Financials.BalanceSheet, eodhdBalanceFields),
		IncomeStatement: mapYearly(fund.Financials.IncomeStatement, eodhdIncomeFields),
		CashFlow:        mapYearly(fund.Financials.CashFlow, eodhdCashFlowFields),
		Snapshot:        eodhdSnapshot(fund),
	}
	return stmts, nil
}

// FetchProfile returns the company's general information.
func (f *EODHDFetcher) FetchProfile(ctx context.Context, symbol string) (*Profile, error) {
	code, err := f.qualify(symbol)
	if err != nil {
		return nil, err
	}
	fund, err := f.client.GetFundamentals(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("fundamentals for %s: %w", code, err)
	}
	g := fund.General
	if g == nil || g.Name == "" {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, code)
	}

	return &Profile{
		Symbol:          code,
		Name:            g.Name,
		LongName:        g.Name,
		BusinessSummary: g.Description,
		Sector:          g.Sector,
		Industry:        g.Industry,
		Country:         g.CountryName,
		Exchange:        g.Exchange,
		Website:         g.WebURL,
		Employees:       g.FullTimeEmployees,
		Currency:        g.CurrencyCode,
		Market:          eodhdSnapshot(fund),
	}, nil
}

// FetchNews returns the latest headlines.
func (f *EODHDFetcher) FetchNews(ctx context.Context, symbol string, limit int) ([]NewsItem, error) {
	code, err := f.qualify(symbol)
	if err != nil {
		return nil, err
	}
	raw, err := f.client.GetNews(ctx, code, limit)
	if err != nil {
		return nil, fmt.Errorf("news for %s: %w", code, err)
	}

	items := make([]NewsItem, 0, len(raw))
	for _, r := range raw {
		if strings.TrimSpace(r.Title) == "" {
			continue
		}
		items = append(items, NewsItem{
			Title:     strings.TrimSpace(r.Title),
			Summary:   PlainText(r.Content),
			Link:      r.Link,
			Published: r.Date,
		})
	}
	return items, nil
}

func eodhdSnapshot(fund *FundamentalsResponse) calc.Snapshot {
	var snap calc.Snapshot
	if fund.General != nil {
		snap.Currency = fund.General.CurrencyCode
	}
	if h := fund.Highlights; h != nil {
		snap.MarketCap = optional(h.MarketCapitalization)
		snap.TrailingPE = optional(h.PERatio)
	}
	if v := fund.Valuation; v != nil && !snap.TrailingPE.Valid {
		snap.TrailingPE = optional(v.TrailingPE)
	}
	if ss := fund.SharesStats; ss != nil {
		snap.SharesOutstanding = optional(ss.SharesOutstanding)
	}
	// EODHD reports 0 for "no P/E" on loss-making companies.
	if pe, ok := snap.TrailingPE.Get(); ok && pe == 0 {
		snap.TrailingPE = calc.None()
	}
	return snap
}

func optional(v *float64) calc.Value {
	if v == nil {
		return calc.None()
	}
	return calc.Some(*v)
}

// mapYearly converts an EODHD yearly statement into a StatementTable. Rows
// with an unparseable date are skipped, as are fields outside the mapping.
// A statement absent from the response maps to nil.
func mapYearly(stmt *FinancialStatement, fields map[string]string) calc.StatementTable {
	if stmt == nil {
		return nil
	}
	table := calc.StatementTable{}
	for date, row := range stmt.Yearly {
		period, err := calc.ParsePeriod(date)
		if err != nil {
			continue
		}
		for src, item := range fields {
			if v, ok := toFloat(row[src]); ok {
				table.Set(period, item, v)
			}
		}
	}
	return table
}

// toFloat accepts the number-or-string encoding EODHD uses.
func toFloat(raw interface{}) (float64, bool) {
	switch v := raw.(type) {
	case float64:
		return v, true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	}
	return 0, false
}
