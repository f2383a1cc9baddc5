package calc

// Efficiency ratio columns.
const (
	RatioAssetTurnover     = "Asset Turnover"
	RatioInventoryTurnover = "Inventory Turnover"
)

var efficiencySpec = groupSpec{
	group: GroupEfficiency,
	reads: []StatementKind{BalanceSheet, IncomeStatement},
	ratios: []ratioDef{
		{name: RatioAssetTurnover, eval: func(v *periodView) Value {
			return safeDiv(v.income(ItemTotalRevenue), v.balance(ItemTotalAssets))
		}},
		{name: RatioInventoryTurnover, gate: ItemInventory, eval: inventoryTurnover},
	},
}

// inventoryTurnover divides cost of revenue by the two-period average
// inventory, so the first row is always undefined.
func inventoryTurnover(v *periodView) Value {
	if v.prev == nil {
		return None()
	}
	avgInventory := mean2(v.balance(ItemInventory), v.prev.balance(ItemInventory))
	return safeDiv(v.income(ItemCostOfRevenue), avgInventory)
}

// Efficiency computes asset utilization ratios.
func Efficiency(s *Statements) (*RatioTable, error) {
	return efficiencySpec.compute(s)
}
