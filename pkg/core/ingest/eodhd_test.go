package ingest

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"financial_analyst/pkg/core/calc"
)

const fundamentalsFixture = `{
  "General": {"Code": "ACME", "Name": "Acme Corp", "Exchange": "NYSE", "CurrencyCode": "USD",
              "Sector": "Industrials", "Industry": "Machinery", "Description": "Makes anvils."},
  "Highlights": {"MarketCapitalization": 3000000, "PERatio": 18.5},
  "SharesStats": {"SharesOutstanding": 1000},
  "Financials": {
    "Balance_Sheet": {"currency_symbol": "USD", "yearly": {
      "2023-12-31": {"date": "2023-12-31", "totalCurrentAssets": "600.00", "totalCurrentLiabilities": "300.00",
                     "inventory": null, "totalStockholderEquity": "1000", "commonStockSharesOutstanding": "100"},
      "2022-12-31": {"date": "2022-12-31", "totalCurrentAssets": 500, "totalCurrentLiabilities": 250}
    }},
    "Income_Statement": {"currency_symbol": "USD", "yearly": {
      "2023-12-31": {"totalRevenue": "1200", "netIncome": "150", "ebit": "252", "ebitda": null},
      "2022-12-31": {"totalRevenue": "1000", "netIncome": "120"}
    }},
    "Cash_Flow": {"currency_symbol": "USD", "yearly": {
      "2023-12-31": {"freeCashFlow": "100", "depreciation": "40"}
    }}
  }
}`

func newEODHDServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/fundamentals/ACME.US", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-key", r.URL.Query().Get("api_token"))
		assert.Equal(t, "json", r.URL.Query().Get("fmt"))
		w.Write([]byte(fundamentalsFixture))
	})
	mux.HandleFunc("/news", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "ACME.US", r.URL.Query().Get("s"))
		assert.Equal(t, "2", r.URL.Query().Get("limit"))
		w.Write([]byte(`[
			{"date": "2024-01-02T10:00:00+00:00", "title": "Acme beats estimates", "content": "<p>Strong <b>quarter</b></p>", "link": "https://example.com/1"},
			{"date": "2024-01-01T09:00:00+00:00", "title": "  ", "content": "empty title"}
		]`))
	})
	mux.HandleFunc("/fundamentals/NOCF.US", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{
  "General": {"Code": "NOCF", "Name": "No Cash Flow Inc"},
  "Financials": {
    "Balance_Sheet": {"yearly": {"2023-12-31": {"totalCurrentAssets": 10, "totalCurrentLiabilities": 5}}},
    "Income_Statement": {"yearly": {}}
  }
}`))
	})
	mux.HandleFunc("/fundamentals/", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "Ticker Not Found.", http.StatusNotFound)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newTestEODHDFetcher(t *testing.T) *EODHDFetcher {
	srv := newEODHDServer(t)
	client := NewEODHDClient("test-key", WithBaseURL(srv.URL), WithRateLimit(100))
	return NewEODHDFetcher(client, "")
}

func TestEODHDFetchStatements(t *testing.T) {
	f := newTestEODHDFetcher(t)

	stmts, err := f.FetchStatements(context.Background(), "acme")
	require.NoError(t, err)
	require.NoError(t, stmts.Validate())

	fy23 := calc.MustParsePeriod("2023-12-31")
	fy22 := calc.MustParsePeriod("2022-12-31")

	assert.Equal(t, "ACME.US", stmts.Symbol)
	assert.Equal(t, 600.0, stmts.BalanceSheet[fy23][calc.ItemCurrentAssets])
	assert.Equal(t, 500.0, stmts.BalanceSheet[fy22][calc.ItemCurrentAssets])
	assert.False(t, stmts.BalanceSheet.Reports(calc.ItemInventory), "null inventory must be absent")
	assert.Equal(t, 100.0, stmts.BalanceSheet[fy23][calc.ItemSharesNumber])
	assert.Equal(t, 252.0, stmts.IncomeStatement[fy23][calc.ItemEBIT])
	_, hasEBITDA := stmts.IncomeStatement[fy23][calc.ItemEBITDA]
	assert.False(t, hasEBITDA)
	assert.Equal(t, 40.0, stmts.CashFlow[fy23][calc.ItemDepreciationAmortization])

	pe, ok := stmts.Snapshot.TrailingPE.Get()
	assert.True(t, ok)
	assert.Equal(t, 18.5, pe)
	assert.Equal(t, calc.Some(3000000), stmts.Snapshot.MarketCap)
	assert.Equal(t, calc.Some(1000), stmts.Snapshot.SharesOutstanding)

	liq, err := calc.Liquidity(stmts)
	require.NoError(t, err)
	assert.False(t, liq.HasColumn(calc.RatioQuick))
	assert.InDelta(t, 2.0, liq.Get(fy23, calc.RatioCurrent).Float, 1e-9)
}

func TestEODHDMissingStatement(t *testing.T) {
	f := newTestEODHDFetcher(t)

	stmts, err := f.FetchStatements(context.Background(), "NOCF")
	require.NoError(t, err)
	assert.NotNil(t, stmts.IncomeStatement, "empty yearly map is a present statement")
	assert.Nil(t, stmts.CashFlow)

	_, err = calc.ComputeAll(stmts)
	assert.True(t, errors.Is(err, calc.ErrMissingStatement))
	assert.Contains(t, err.Error(), string(calc.CashFlow))
}

func TestEODHDFetchProfile(t *testing.T) {
	f := newTestEODHDFetcher(t)

	p, err := f.FetchProfile(context.Background(), "ACME")
	require.NoError(t, err)
	assert.Equal(t, "Acme Corp", p.Name)
	assert.Equal(t, "Industrials", p.Sector)
	assert.Equal(t, "Makes anvils.", p.BusinessSummary)
	assert.Equal(t, "USD", p.Currency)
}

func TestEODHDNotFound(t *testing.T) {
	f := newTestEODHDFetcher(t)

	_, err := f.FetchStatements(context.Background(), "NOPE")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
	assert.Equal(t, "/fundamentals/NOPE.US", apiErr.Endpoint)

	assert.False(t, IsValidTicker(context.Background(), f, "NOPE"))
	assert.True(t, IsValidTicker(context.Background(), f, "ACME"))
}

func TestEODHDFetchNews(t *testing.T) {
	f := newTestEODHDFetcher(t)

	items, err := f.FetchNews(context.Background(), "ACME", 2)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Acme beats estimates", items[0].Title)
	assert.Equal(t, "Strong quarter", items[0].Summary)
	assert.Equal(t, 2024, items[0].Published.Year())
}

func TestEODHDKeepsExchangeSuffix(t *testing.T) {
	f := NewEODHDFetcher(NewEODHDClient("k"), "lse")
	code, err := f.qualify("vod")
	require.NoError(t, err)
	assert.Equal(t, "VOD.LSE", code)

	code, err = f.qualify("RELIANCE.NSE")
	require.NoError(t, err)
	assert.Equal(t, "RELIANCE.NSE", code)
}
