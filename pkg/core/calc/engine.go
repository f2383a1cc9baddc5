package calc

import "fmt"

// =============================================================================
// RATIO ENGINE
// =============================================================================

// periodView exposes one period's line items to ratio formulas.
type periodView struct {
	period   Period
	bs       LineItems
	is       LineItems
	cf       LineItems
	snapshot *Snapshot
	prev     *periodView
}

func (v *periodView) balance(item string) Value { return v.bs.Lookup(item) }
func (v *periodView) income(item string) Value  { return v.is.Lookup(item) }
func (v *periodView) cash(item string) Value    { return v.cf.Lookup(item) }

func (v *periodView) line(kind StatementKind, item string) Value {
	switch kind {
	case BalanceSheet:
		return v.balance(item)
	case IncomeStatement:
		return v.income(item)
	case CashFlow:
		return v.cash(item)
	}
	return None()
}

// ratioDef is one column: a name, an optional balance-sheet item gating
// the column, and the formula.
type ratioDef struct {
	name string
	gate string
	eval func(v *periodView) Value
}

// groupSpec declares which statements a group reads and its columns.
type groupSpec struct {
	group  Group
	reads  []StatementKind
	ratios []ratioDef
}

// compute builds the ratio table for one group.
func (g groupSpec) compute(s *Statements) (*RatioTable, error) {
	if err := s.Require(g.reads...); err != nil {
		return nil, fmt.Errorf("%s ratios: %w", g.group, err)
	}

	var active []ratioDef
	for _, def := range g.ratios {
		if def.gate != "" && !s.BalanceSheet.Reports(def.gate) {
			continue
		}
		active = append(active, def)
	}

	table := &RatioTable{
		Group:   g.group,
		Columns: make([]string, len(active)),
	}
	for i, def := range active {
		table.Columns[i] = def.name
	}

	snapshot := s.Snapshot
	var prev *periodView
	for _, p := range g.periods(s) {
		view := &periodView{
			period:   p,
			bs:       s.BalanceSheet[p],
			is:       s.IncomeStatement[p],
			cf:       s.CashFlow[p],
			snapshot: &snapshot,
			prev:     prev,
		}
		row := RatioRow{Period: p, Values: make(map[string]Value, len(active))}
		for _, def := range active {
			row.Values[def.name] = def.eval(view)
		}
		table.Rows = append(table.Rows, row)
		prev = view
	}
	return table, nil
}

// periods returns the sorted union of the periods of every statement the
// group reads.
func (g groupSpec) periods(s *Statements) []Period {
	seen := make(map[Period]bool)
	var periods []Period
	for _, kind := range g.reads {
		for p := range s.Table(kind) {
			if !seen[p] {
				seen[p] = true
				periods = append(periods, p)
			}
		}
	}
	SortPeriods(periods)
	return periods
}

var groupSpecs = map[Group]groupSpec{
	GroupLiquidity:     liquiditySpec,
	GroupProfitability: profitabilitySpec,
	GroupEfficiency:    efficiencySpec,
	GroupValuation:     valuationSpec,
	GroupLeverage:      leverageSpec,
	GroupGrowth:        growthSpec,
}

// Compute builds the ratio table for the named group.
func Compute(group Group, s *Statements) (*RatioTable, error) {
	spec, ok := groupSpecs[group]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownGroup, group)
	}
	return spec.compute(s)
}

// ComputeAll builds every group's table. All three statements must be
// present.
func ComputeAll(s *Statements) (map[Group]*RatioTable, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	tables := make(map[Group]*RatioTable, len(Groups))
	for _, g := range Groups {
		table, err := Compute(g, s)
		if err != nil {
			return nil, err
		}
		tables[g] = table
	}
	return tables, nil
}
