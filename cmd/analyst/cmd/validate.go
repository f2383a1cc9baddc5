package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"financial_analyst/pkg/core/ingest"
)

var validateCmd = &cobra.Command{
	Use:   "validate SYMBOL",
	Short: "Check that a ticker symbol is known",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		symbol := args[0]
		if normalized, err := ingest.NormalizeSymbol(symbol); err == nil {
			symbol = normalized
		}
		if !ingest.IsValidTicker(cmd.Context(), application.Fetcher, symbol) {
			return fmt.Errorf("invalid ticker symbol: %s", symbol)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s is a valid ticker\n", symbol)
		return nil
	},
}
