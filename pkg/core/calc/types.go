// Package calc provides deterministic financial ratio calculations.
// This file defines the period-keyed statement and ratio tables the
// engine reads and produces.
package calc

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sort"
	"time"
)

// =============================================================================
// OPTIONAL VALUES
// =============================================================================

// Value is a float that may be undefined. Undefined cells come from absent
// line items or zero denominators and are never reported as 0.
type Value struct {
	Float float64
	Valid bool
}

// Some wraps a defined value. NaN and Inf are treated as undefined.
func Some(v float64) Value {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return Value{}
	}
	return Value{Float: v, Valid: true}
}

// None returns an undefined value.
func None() Value {
	return Value{}
}

// Get returns the value and whether it is defined.
func (v Value) Get() (float64, bool) {
	return v.Float, v.Valid
}

// OrElse returns the value, or def when undefined.
func (v Value) OrElse(def float64) float64 {
	if !v.Valid {
		return def
	}
	return v.Float
}

func (v Value) String() string {
	if !v.Valid {
		return "NaN"
	}
	return fmt.Sprintf("%g", v.Float)
}

// MarshalJSON encodes undefined values as null.
func (v Value) MarshalJSON() ([]byte, error) {
	if !v.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(v.Float)
}

// UnmarshalJSON accepts a number or null.
func (v *Value) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*v = None()
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	*v = Some(f)
	return nil
}

// =============================================================================
// FISCAL PERIODS
// =============================================================================

const periodLayout = "2006-01-02"

// Period identifies one fiscal-year-end date. Every statement and ratio
// table is keyed by it.
type Period struct {
	t time.Time
}

// NewPeriod builds a period normalized to midnight UTC.
func NewPeriod(year int, month time.Month, day int) Period {
	return Period{t: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// PeriodOf truncates any timestamp to its calendar date.
func PeriodOf(t time.Time) Period {
	return NewPeriod(t.Year(), t.Month(), t.Day())
}

// ParsePeriod parses a YYYY-MM-DD report date.
func ParsePeriod(s string) (Period, error) {
	t, err := time.Parse(periodLayout, s)
	if err != nil {
		return Period{}, fmt.Errorf("invalid period %q: %w", s, err)
	}
	return PeriodOf(t), nil
}

// MustParsePeriod is like ParsePeriod but panics on error.
func MustParsePeriod(s string) Period {
	p, err := ParsePeriod(s)
	if err != nil {
		panic(err)
	}
	return p
}

func (p Period) Time() time.Time         { return p.t }
func (p Period) Year() int               { return p.t.Year() }
func (p Period) Before(other Period) bool { return p.t.Before(other.t) }
func (p Period) IsZero() bool            { return p.t.IsZero() }
func (p Period) String() string          { return p.t.Format(periodLayout) }

// MarshalText lets periods be used as JSON object keys.
func (p Period) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

func (p *Period) UnmarshalText(text []byte) error {
	parsed, err := ParsePeriod(string(text))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// SortPeriods sorts periods ascending in place.
func SortPeriods(periods []Period) {
	sort.Slice(periods, func(i, j int) bool { return periods[i].Before(periods[j]) })
}

// =============================================================================
// STATEMENT TABLES
// =============================================================================

// Canonical line-item names. Fetchers map their source fields onto these.
const (
	// Balance sheet
	ItemCurrentAssets      = "Current Assets"
	ItemCurrentLiabilities = "Current Liabilities"
	ItemInventory          = "Inventory"
	ItemCash               = "Cash And Cash Equivalents"
	ItemTotalAssets        = "Total Assets"
	ItemStockholdersEquity = "Stockholders Equity"
	ItemTotalDebt          = "Total Debt"
	ItemSharesNumber       = "Ordinary Shares Number"

	// Income statement
	ItemTotalRevenue    = "Total Revenue"
	ItemCostOfRevenue   = "Cost Of Revenue"
	ItemOperatingIncome = "Operating Income"
	ItemNetIncome       = "Net Income"
	ItemEBIT            = "EBIT"
	ItemEBITDA          = "EBITDA"
	ItemInterestExpense = "Interest Expense"

	// Income statement or cash flow statement
	ItemDepreciationAmortization = "Depreciation And Amortization"

	// Cash flow statement
	ItemFreeCashFlow = "Free Cash Flow"
)

// LineItems holds the reported values of one statement for one period.
// Companies do not report every item; a missing key means absent.
type LineItems map[string]float64

// Lookup returns the named item, undefined when absent or NaN.
func (li LineItems) Lookup(name string) Value {
	if li == nil {
		return None()
	}
	v, ok := li[name]
	if !ok {
		return None()
	}
	return Some(v)
}

// UnmarshalJSON drops null entries so they read as absent rather than 0.
func (li *LineItems) UnmarshalJSON(data []byte) error {
	var raw map[string]*float64
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw == nil {
		*li = nil
		return nil
	}
	items := make(LineItems, len(raw))
	for name, v := range raw {
		if v != nil {
			items[name] = *v
		}
	}
	*li = items
	return nil
}

// StatementTable maps each fiscal period to its reported line items.
type StatementTable map[Period]LineItems

// Periods returns the table's periods in ascending order.
func (t StatementTable) Periods() []Period {
	periods := make([]Period, 0, len(t))
	for p := range t {
		periods = append(periods, p)
	}
	SortPeriods(periods)
	return periods
}

// Reports tells whether the item is present in at least one period.
func (t StatementTable) Reports(name string) bool {
	for _, items := range t {
		if items.Lookup(name).Valid {
			return true
		}
	}
	return false
}

// Set stores a value, creating the period row if needed.
func (t StatementTable) Set(p Period, name string, v float64) {
	items, ok := t[p]
	if !ok {
		items = LineItems{}
		t[p] = items
	}
	items[name] = v
}

// StatementKind names one of the three statements.
type StatementKind string

const (
	BalanceSheet    StatementKind = "balance_sheet"
	IncomeStatement StatementKind = "income_statement"
	CashFlow        StatementKind = "cash_flow"
)

// Snapshot holds point-in-time market data for the latest available
// snapshot. It is not a period series.
type Snapshot struct {
	MarketCap         Value  `json:"market_cap"`
	TrailingPE        Value  `json:"trailing_pe"`
	SharesOutstanding Value  `json:"shares_outstanding"`
	Currency          string `json:"currency,omitempty"`
}

// Statements bundles everything fetched for one company.
type Statements struct {
	Symbol          string         `json:"symbol"`
	BalanceSheet    StatementTable `json:"balance_sheet"`
	IncomeStatement StatementTable `json:"income_statement"`
	CashFlow        StatementTable `json:"cash_flow"`
	Snapshot        Snapshot       `json:"snapshot"`
}

// ErrMissingStatement is returned when a required statement table is nil.
var ErrMissingStatement = errors.New("missing statement")

// Table returns the statement of the given kind.
func (s *Statements) Table(kind StatementKind) StatementTable {
	switch kind {
	case BalanceSheet:
		return s.BalanceSheet
	case IncomeStatement:
		return s.IncomeStatement
	case CashFlow:
		return s.CashFlow
	}
	return nil
}

// Require checks that every listed statement is present.
func (s *Statements) Require(kinds ...StatementKind) error {
	if s == nil {
		return fmt.Errorf("%w: no statements supplied", ErrMissingStatement)
	}
	for _, kind := range kinds {
		if s.Table(kind) == nil {
			return fmt.Errorf("%w: %s", ErrMissingStatement, kind)
		}
	}
	return nil
}

// Validate checks that all three statements are present. Individual
// missing line items are not an error.
func (s *Statements) Validate() error {
	return s.Require(BalanceSheet, IncomeStatement, CashFlow)
}

// =============================================================================
// RATIO TABLES
// =============================================================================

// Group is one of the six ratio groups.
type Group string

const (
	GroupLiquidity     Group = "liquidity"
	GroupProfitability Group = "profitability"
	GroupEfficiency    Group = "efficiency"
	GroupValuation     Group = "valuation"
	GroupLeverage      Group = "leverage"
	GroupGrowth        Group = "growth"
)

// Groups lists all ratio groups in report order.
var Groups = []Group{
	GroupLiquidity,
	GroupProfitability,
	GroupEfficiency,
	GroupValuation,
	GroupLeverage,
	GroupGrowth,
}

// Title returns a human-readable group name.
func (g Group) Title() string {
	switch g {
	case GroupLiquidity:
		return "Liquidity Ratios"
	case GroupProfitability:
		return "Profitability Ratios"
	case GroupEfficiency:
		return "Efficiency Ratios"
	case GroupValuation:
		return "Valuation Ratios"
	case GroupLeverage:
		return "Leverage Ratios"
	case GroupGrowth:
		return "Performance & Growth Metrics"
	}
	return string(g)
}

// ParseGroup resolves a group name.
func ParseGroup(s string) (Group, error) {
	for _, g := range Groups {
		if string(g) == s {
			return g, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownGroup, s)
}

// ErrUnknownGroup is returned for an unrecognized ratio group.
var ErrUnknownGroup = errors.New("unknown ratio group")

// RatioRow holds the ratios of one period.
type RatioRow struct {
	Period Period           `json:"period"`
	Values map[string]Value `json:"values"`
}

// RatioTable has one row per fiscal period (ascending) and one column per
// ratio. Columns gated on a never-reported line item are omitted.
type RatioTable struct {
	Group   Group      `json:"group"`
	Columns []string   `json:"columns"`
	Rows    []RatioRow `json:"rows"`
}

// Periods returns the row periods in order.
func (t *RatioTable) Periods() []Period {
	periods := make([]Period, len(t.Rows))
	for i, row := range t.Rows {
		periods[i] = row.Period
	}
	return periods
}

// HasColumn tells whether the ratio is part of the table.
func (t *RatioTable) HasColumn(name string) bool {
	for _, c := range t.Columns {
		if c == name {
			return true
		}
	}
	return false
}

// Column returns one ratio across all periods, or nil when the column is
// not part of the table.
func (t *RatioTable) Column(name string) []Value {
	if !t.HasColumn(name) {
		return nil
	}
	values := make([]Value, len(t.Rows))
	for i, row := range t.Rows {
		values[i] = row.Values[name]
	}
	return values
}

// Get returns one cell.
func (t *RatioTable) Get(p Period, name string) Value {
	for _, row := range t.Rows {
		if row.Period == p {
			return row.Values[name]
		}
	}
	return None()
}
