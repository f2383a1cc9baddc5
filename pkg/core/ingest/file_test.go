package ingest

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"financial_analyst/pkg/core/calc"
)

const acmeHjson = `
# Hand-entered from the 2023 annual report
{
  profile: {
    name: Acme
    long_name: Acme Corporation
    sector: Industrials
    currency: USD
  }
  snapshot: {
    market_cap: 3000
    trailing_pe: null
  }
  balance_sheet: {
    "2023-12-31": {
      "Current Assets": 600
      "Current Liabilities": 300
    }
  }
  income_statement: {
    "2023-12-31": {
      "Total Revenue": 1200
    }
  }
  news: [
    {
      title: Older
      published: "2024-01-01T00:00:00Z"
    }
    {
      title: Newer
      published: "2024-02-01T00:00:00Z"
    }
  ]
}
`

func TestFileFetcher(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "ACME.hjson"), []byte(acmeHjson), 0o644))
	f := NewFileFetcher(dir)
	ctx := context.Background()

	stmts, err := f.FetchStatements(ctx, "acme")
	require.NoError(t, err)
	assert.Nil(t, stmts.CashFlow, "statement absent from the file")
	assert.True(t, errors.Is(stmts.Validate(), calc.ErrMissingStatement))
	fy23 := calc.MustParsePeriod("2023-12-31")
	assert.Equal(t, 600.0, stmts.BalanceSheet[fy23][calc.ItemCurrentAssets])
	assert.Equal(t, calc.Some(3000), stmts.Snapshot.MarketCap)
	assert.False(t, stmts.Snapshot.TrailingPE.Valid)
	assert.Equal(t, "USD", stmts.Snapshot.Currency)

	p, err := f.FetchProfile(ctx, "ACME")
	require.NoError(t, err)
	assert.Equal(t, "Acme Corporation", p.DisplayName())

	news, err := f.FetchNews(ctx, "ACME", 1)
	require.NoError(t, err)
	require.Len(t, news, 1)
	assert.Equal(t, "Newer", news[0].Title)

	symbols, err := f.Symbols()
	require.NoError(t, err)
	assert.Equal(t, []string{"ACME"}, symbols)

	_, err = f.FetchStatements(ctx, "MISSING")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestFileFetcherStatementPresence(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "INIT.hjson"), []byte(`{
  profile: { name: Initech }
  balance_sheet: {
    "2022-12-31": { "Current Assets": 600, "Current Liabilities": 500, "Inventory": null }
    "2023-12-31": { "Current Assets": 900, "Current Liabilities": 600, "Inventory": null }
  }
  income_statement: {}
  cash_flow: {}
}`), 0o644))
	f := NewFileFetcher(dir)

	stmts, err := f.FetchStatements(context.Background(), "INIT")
	require.NoError(t, err)
	require.NoError(t, stmts.Validate(), "empty objects are present statements")

	fy22 := calc.MustParsePeriod("2022-12-31")
	_, stored := stmts.BalanceSheet[fy22][calc.ItemInventory]
	assert.False(t, stored, "null is absent, not 0")

	table, err := calc.Compute(calc.GroupLiquidity, stmts)
	require.NoError(t, err)
	assert.Equal(t, []string{"Current Ratio", "Cash Ratio"}, table.Columns)

	_, err = calc.Compute(calc.GroupProfitability, &calc.Statements{BalanceSheet: stmts.BalanceSheet})
	assert.True(t, errors.Is(err, calc.ErrMissingStatement))
}
