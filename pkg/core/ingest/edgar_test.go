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

const companyFactsFixture = `{
  "cik": 320193,
  "entityName": "Acme Corp",
  "facts": {
    "dei": {
      "EntityCommonStockSharesOutstanding": {"units": {"shares": [
        {"end": "2023-10-20", "val": 100, "fy": 2023, "fp": "FY", "form": "10-K", "filed": "2023-11-03"}
      ]}}
    },
    "us-gaap": {
      "Assets": {"units": {"USD": [
        {"end": "2022-09-24", "val": 2000, "fy": 2022, "fp": "FY", "form": "10-K", "filed": "2022-10-28"},
        {"end": "2023-09-30", "val": 2400, "fy": 2023, "fp": "FY", "form": "10-K", "filed": "2023-11-03"},
        {"end": "2023-07-01", "val": 9999, "fy": 2023, "fp": "Q3", "form": "10-Q", "filed": "2023-08-04"}
      ]}},
      "Revenues": {"units": {"USD": [
        {"start": "2021-09-26", "end": "2022-09-24", "val": 990, "fy": 2022, "fp": "FY", "form": "10-K", "filed": "2022-10-28"},
        {"start": "2021-09-26", "end": "2022-09-24", "val": 1000, "fy": 2023, "fp": "FY", "form": "10-K", "filed": "2023-11-03"},
        {"start": "2022-09-25", "end": "2023-09-30", "val": 1200, "fy": 2023, "fp": "FY", "form": "10-K", "filed": "2023-11-03"},
        {"start": "2023-07-02", "end": "2023-09-30", "val": 320, "fy": 2023, "fp": "FY", "form": "10-K", "filed": "2023-11-03"}
      ]}},
      "IncomeLossFromContinuingOperationsBeforeIncomeTaxesExtraordinaryItemsNoncontrollingInterest": {"units": {"USD": [
        {"end": "2023-09-30", "val": 216, "fy": 2023, "fp": "FY", "form": "10-K", "filed": "2023-11-03"}
      ]}},
      "InterestExpense": {"units": {"USD": [
        {"end": "2023-09-30", "val": 36, "fy": 2023, "fp": "FY", "form": "10-K", "filed": "2023-11-03"}
      ]}},
      "NetCashProvidedByUsedInOperatingActivities": {"units": {"USD": [
        {"start": "2022-09-25", "end": "2023-09-30", "val": 180, "fy": 2023, "fp": "FY", "form": "10-K", "filed": "2023-11-03"},
        {"start": "2023-07-02", "end": "2023-09-30", "val": 45, "fy": 2023, "fp": "FY", "form": "10-K", "filed": "2023-11-03"}
      ]}},
      "PaymentsToAcquirePropertyPlantAndEquipment": {"units": {"USD": [
        {"end": "2023-09-30", "val": 80, "fy": 2023, "fp": "FY", "form": "10-K", "filed": "2023-11-03"}
      ]}}
    }
  }
}`

func newTestSECFetcher(t *testing.T) *SECFetcher {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/files/company_tickers.json", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, UserAgent, r.Header.Get("User-Agent"))
		w.Write([]byte(`{"0": {"cik_str": 320193, "ticker": "ACME", "title": "Acme Corp"}}`))
	})
	mux.HandleFunc("/api/xbrl/companyfacts/CIK0000320193.json", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(companyFactsFixture))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	client := NewEDGARClient().WithEndpoints(
		srv.URL+"/files/company_tickers.json",
		srv.URL+"/api/xbrl/companyfacts/CIK%s.json",
	)
	return NewSECFetcher(client)
}

func TestSECFetchStatements(t *testing.T) {
	f := newTestSECFetcher(t)

	stmts, err := f.FetchStatements(context.Background(), "acme")
	require.NoError(t, err)
	require.NoError(t, stmts.Validate())

	fy22 := calc.MustParsePeriod("2022-09-24")
	fy23 := calc.MustParsePeriod("2023-09-30")

	assert.Equal(t, 2400.0, stmts.BalanceSheet[fy23][calc.ItemTotalAssets])
	assert.Len(t, stmts.BalanceSheet, 2, "10-Q facts are ignored")
	assert.Equal(t, 1000.0, stmts.IncomeStatement[fy22][calc.ItemTotalRevenue], "latest filing wins")
	assert.Equal(t, 1200.0, stmts.IncomeStatement[fy23][calc.ItemTotalRevenue], "Q4 facts in a 10-K are ignored")
	assert.Equal(t, 252.0, stmts.IncomeStatement[fy23][calc.ItemEBIT], "EBIT = pretax + interest")
	assert.Equal(t, 100.0, stmts.CashFlow[fy23][calc.ItemFreeCashFlow], "FCF = OCF - capex")
	assert.Equal(t, calc.Some(100), stmts.Snapshot.SharesOutstanding)
	assert.False(t, stmts.Snapshot.MarketCap.Valid)
}

func TestSECProfileAndUnknownTicker(t *testing.T) {
	f := newTestSECFetcher(t)

	p, err := f.FetchProfile(context.Background(), "ACME")
	require.NoError(t, err)
	assert.Equal(t, "Acme Corp", p.Name)

	_, err = f.FetchProfile(context.Background(), "ZZZZ")
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.False(t, IsValidTicker(context.Background(), f, "ZZZZ"))
}

func TestFactAnnualDuration(t *testing.T) {
	tests := []struct {
		name string
		fact Fact
		want bool
	}{
		{"instant", Fact{End: "2023-09-30"}, true},
		{"fiscal year", Fact{Start: "2022-09-25", End: "2023-09-30"}, true},
		{"53-week year", Fact{Start: "2022-09-25", End: "2023-10-01"}, true},
		{"quarter", Fact{Start: "2023-07-02", End: "2023-09-30"}, false},
		{"bad start", Fact{Start: "soon", End: "2023-09-30"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.fact.annualDuration())
		})
	}
}
