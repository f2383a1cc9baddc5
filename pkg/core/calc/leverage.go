package calc

// Leverage ratio columns.
const (
	RatioDebtToEquity     = "Debt-to-Equity (D/E)"
	RatioInterestCoverage = "Interest Coverage"
)

var leverageSpec = groupSpec{
	group: GroupLeverage,
	reads: []StatementKind{BalanceSheet, IncomeStatement},
	ratios: []ratioDef{
		{name: RatioDebtToEquity, eval: debtToEquity},
		{name: RatioInterestCoverage, eval: func(v *periodView) Value {
			return safeDiv(v.income(ItemEBIT), v.income(ItemInterestExpense))
		}},
	},
}

func debtToEquity(v *periodView) Value {
	return safeDiv(v.balance(ItemTotalDebt), v.balance(ItemStockholdersEquity))
}

// Leverage computes capital structure ratios.
func Leverage(s *Statements) (*RatioTable, error) {
	return leverageSpec.compute(s)
}
