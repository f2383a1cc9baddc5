package calc

// Growth & performance columns, in display order.
const (
	RatioRevenueGrowth      = "Revenue Growth (%)"
	RatioEBITGrowth         = "EBIT Growth (%)"
	RatioEPS                = "EPS"
	RatioEPSGrowth          = "EPS Growth (%)"
	RatioNetProfitMarginPct = "Net Profit Margin (%)"
	RatioGrowthDebtToEquity = "Debt-to-Equity"
	RatioFreeCashFlow       = "Free Cash Flow"
	RatioFCFGrowth          = "FCF Growth (%)"
)

var growthSpec = groupSpec{
	group: GroupGrowth,
	reads: []StatementKind{BalanceSheet, IncomeStatement, CashFlow},
	ratios: []ratioDef{
		{name: RatioRevenueGrowth, eval: func(v *periodView) Value {
			return growthOf(v, func(x *periodView) Value { return x.income(ItemTotalRevenue) })
		}},
		{name: RatioEBITGrowth, eval: func(v *periodView) Value {
			return growthOf(v, func(x *periodView) Value { return x.income(ItemEBIT) })
		}},
		{name: RatioEPS, eval: eps},
		{name: RatioEPSGrowth, eval: func(v *periodView) Value {
			return growthOf(v, eps)
		}},
		{name: RatioNetProfitMarginPct, eval: func(v *periodView) Value {
			return scale(safeDiv(v.income(ItemNetIncome), v.income(ItemTotalRevenue)), 100)
		}},
		{name: RatioGrowthDebtToEquity, eval: debtToEquity},
		{name: RatioFreeCashFlow, eval: func(v *periodView) Value {
			return v.cash(ItemFreeCashFlow)
		}},
		{name: RatioFCFGrowth, eval: func(v *periodView) Value {
			return growthOf(v, func(x *periodView) Value { return x.cash(ItemFreeCashFlow) })
		}},
	},
}

// eps divides net income by the resolved share count.
func eps(v *periodView) Value {
	return safeDiv(v.income(ItemNetIncome), v.shares())
}

// growthOf applies GrowthRate between a period and the preceding row.
func growthOf(v *periodView, metric func(*periodView) Value) Value {
	if v.prev == nil {
		return None()
	}
	return GrowthRate(metric(v), metric(v.prev))
}

// Growth computes year-over-year growth and per-share performance.
func Growth(s *Statements) (*RatioTable, error) {
	return growthSpec.compute(s)
}
