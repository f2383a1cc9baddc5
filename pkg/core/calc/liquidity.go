package calc

// Liquidity ratio columns.
const (
	RatioCurrent = "Current Ratio"
	RatioQuick   = "Quick Ratio"
	RatioCash    = "Cash Ratio"
)

var liquiditySpec = groupSpec{
	group: GroupLiquidity,
	reads: []StatementKind{BalanceSheet},
	ratios: []ratioDef{
		{name: RatioCurrent, eval: func(v *periodView) Value {
			return safeDiv(v.balance(ItemCurrentAssets), v.balance(ItemCurrentLiabilities))
		}},
		{name: RatioQuick, gate: ItemInventory, eval: func(v *periodView) Value {
			quickAssets := sub(v.balance(ItemCurrentAssets), v.balance(ItemInventory))
			return safeDiv(quickAssets, v.balance(ItemCurrentLiabilities))
		}},
		{name: RatioCash, eval: func(v *periodView) Value {
			return safeDiv(v.balance(ItemCash), v.balance(ItemCurrentLiabilities))
		}},
	},
}

// Liquidity computes short-term solvency ratios from the balance sheet.
// Quick Ratio is omitted when Inventory is never reported.
func Liquidity(s *Statements) (*RatioTable, error) {
	return liquiditySpec.compute(s)
}
