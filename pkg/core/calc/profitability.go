package calc

// Profitability ratio columns.
const (
	RatioROE             = "Return on Equity (RoE)"
	RatioROA             = "Return on Assets (RoA)"
	RatioROCE            = "Return on Capital Employed (RoCE)"
	RatioNetProfitMargin = "Net Profit Margin"
	RatioOperatingMargin = "Operating Margin"
)

var profitabilitySpec = groupSpec{
	group: GroupProfitability,
	reads: []StatementKind{BalanceSheet, IncomeStatement},
	ratios: []ratioDef{
		{name: RatioROE, eval: func(v *periodView) Value {
			return safeDiv(v.income(ItemNetIncome), v.balance(ItemStockholdersEquity))
		}},
		{name: RatioROA, eval: func(v *periodView) Value {
			return safeDiv(v.income(ItemNetIncome), v.balance(ItemTotalAssets))
		}},
		{name: RatioROCE, eval: func(v *periodView) Value {
			capitalEmployed := sub(v.balance(ItemTotalAssets), v.balance(ItemCurrentLiabilities))
			return safeDiv(v.income(ItemEBIT), capitalEmployed)
		}},
		{name: RatioNetProfitMargin, eval: func(v *periodView) Value {
			return safeDiv(v.income(ItemNetIncome), v.income(ItemTotalRevenue))
		}},
		{name: RatioOperatingMargin, eval: func(v *periodView) Value {
			return safeDiv(v.income(ItemOperatingIncome), v.income(ItemTotalRevenue))
		}},
	},
}

// Profitability computes return and margin ratios.
func Profitability(s *Statements) (*RatioTable, error) {
	return profitabilitySpec.compute(s)
}
