package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"financial_analyst/pkg/core/calc"
	"financial_analyst/pkg/core/ingest"
	"financial_analyst/pkg/core/report"
)

var (
	ratiosGroup     string
	ratiosPrecision int
	ratiosJSON      bool
)

var ratiosCmd = &cobra.Command{
	Use:   "ratios SYMBOL",
	Short: "Print financial ratio tables",
	Long: `Prints one table per ratio group with fiscal periods as rows.
Cells shown as NaN are not reported or undefined.

Examples:
  analyst ratios AAPL
  analyst ratios AAPL --group liquidity --precision 2`,
	Args: cobra.ExactArgs(1),
	RunE: runRatios,
}

func init() {
	ratiosCmd.Flags().StringVarP(&ratiosGroup, "group", "g", "", "only this group (liquidity, profitability, efficiency, valuation, leverage, growth)")
	ratiosCmd.Flags().IntVar(&ratiosPrecision, "precision", report.DefaultPrecision, "decimals shown")
	ratiosCmd.Flags().BoolVar(&ratiosJSON, "json", false, "print JSON instead of markdown")
}

func runRatios(cmd *cobra.Command, args []string) error {
	groups := calc.Groups
	if ratiosGroup != "" {
		g, err := calc.ParseGroup(ratiosGroup)
		if err != nil {
			return err
		}
		groups = []calc.Group{g}
	}

	symbol, err := ingest.NormalizeSymbol(args[0])
	if err != nil {
		return err
	}
	if !ingest.IsValidTicker(cmd.Context(), application.Fetcher, symbol) {
		return fmt.Errorf("invalid ticker symbol: %s", symbol)
	}
	statements, err := application.Fetcher.FetchStatements(cmd.Context(), symbol)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	tables := make(map[calc.Group]*calc.RatioTable, len(groups))
	for _, g := range groups {
		table, err := calc.Compute(g, statements)
		if err != nil {
			return err
		}
		tables[g] = table
		if !ratiosJSON {
			fmt.Fprintf(out, "## %s\n\n%s\n", g.Title(), report.MarkdownTable(table, ratiosPrecision))
		}
	}

	if ratiosJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(tables)
	}
	return nil
}
