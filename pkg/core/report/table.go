package report

import (
	"strings"

	"github.com/shopspring/decimal"

	"financial_analyst/pkg/core/calc"
)

// DefaultPrecision is the number of decimals shown for ratio values.
const DefaultPrecision = 4

// MarkdownTable renders a ratio table with one row per period and one
// column per ratio. Undefined cells print as NaN. A negative precision
// selects DefaultPrecision.
func MarkdownTable(t *calc.RatioTable, precision int) string {
	if precision < 0 {
		precision = DefaultPrecision
	}

	var sb strings.Builder
	sb.WriteString("| Period |")
	for _, col := range t.Columns {
		sb.WriteString(" " + col + " |")
	}
	sb.WriteString("\n|---|")
	sb.WriteString(strings.Repeat("---:|", len(t.Columns)))
	sb.WriteString("\n")

	for _, row := range t.Rows {
		sb.WriteString("| " + row.Period.String() + " |")
		for _, col := range t.Columns {
			sb.WriteString(" " + FormatValue(row.Values[col], precision) + " |")
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

// FormatValue prints a value with fixed precision, or NaN when undefined.
func FormatValue(v calc.Value, precision int) string {
	f, ok := v.Get()
	if !ok {
		return "NaN"
	}
	return decimal.NewFromFloat(f).StringFixed(int32(precision))
}
