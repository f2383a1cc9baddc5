package calc

// =============================================================================
// DERIVED FIELD FALLBACKS
// =============================================================================

// lineSource names one statement line consulted by a fallback chain.
type lineSource struct {
	kind StatementKind
	item string
}

// Depreciation & amortization: income statement first, then cash flow.
// When neither reports it the EBITDA fallback treats it as 0.
var depreciationSources = []lineSource{
	{IncomeStatement, ItemDepreciationAmortization},
	{CashFlow, ItemDepreciationAmortization},
}

// Shares outstanding: balance sheet share count, then the market snapshot.
var sharesSources = []lineSource{
	{BalanceSheet, ItemSharesNumber},
}

// firstOf returns the first present value among the sources.
func (v *periodView) firstOf(sources []lineSource) Value {
	for _, src := range sources {
		if val := v.line(src.kind, src.item); val.Valid {
			return val
		}
	}
	return None()
}

// ebitda resolves EBITDA for one period:
//  1. reported income EBITDA
//  2. Operating Income + D&A (D&A defaults to 0)
//
// Operating Income absent leaves EBITDA undefined.
func (v *periodView) ebitda() Value {
	if reported := v.income(ItemEBITDA); reported.Valid {
		return reported
	}
	oi := v.income(ItemOperatingIncome)
	if !oi.Valid {
		return None()
	}
	da := v.firstOf(depreciationSources).OrElse(0)
	return Some(oi.Float + da)
}

// shares resolves the share count used for EPS.
func (v *periodView) shares() Value {
	if n := v.firstOf(sharesSources); n.Valid {
		return n
	}
	if v.snapshot != nil {
		return v.snapshot.SharesOutstanding
	}
	return None()
}
