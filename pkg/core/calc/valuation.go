package calc

// Valuation ratio columns.
const (
	RatioPE       = "Price-to-Earnings (P/E)"
	RatioPS       = "Price-to-Sales (P/S)"
	RatioPB       = "Price-to-Book (P/B)"
	RatioEVEBITDA = "EV/EBITDA"
)

var valuationSpec = groupSpec{
	group: GroupValuation,
	reads: []StatementKind{BalanceSheet, IncomeStatement},
	ratios: []ratioDef{
		// Trailing P/E is a snapshot scalar repeated on every row.
		{name: RatioPE, eval: func(v *periodView) Value {
			return v.snapshot.TrailingPE
		}},
		{name: RatioPS, eval: func(v *periodView) Value {
			return safeDiv(v.snapshot.MarketCap, v.income(ItemTotalRevenue))
		}},
		{name: RatioPB, eval: func(v *periodView) Value {
			return safeDiv(v.snapshot.MarketCap, v.balance(ItemStockholdersEquity))
		}},
		{name: RatioEVEBITDA, eval: func(v *periodView) Value {
			ev := sub(add(v.snapshot.MarketCap, v.balance(ItemTotalDebt)), v.balance(ItemCash))
			return safeDiv(ev, v.ebitda())
		}},
	},
}

// Valuation computes market multiples. Market capitalization and trailing
// P/E come from the current snapshot and are applied to every period.
func Valuation(s *Statements) (*RatioTable, error) {
	return valuationSpec.compute(s)
}
