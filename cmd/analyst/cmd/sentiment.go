package cmd

import (
	"encoding/json"
	"errors"

	"github.com/spf13/cobra"

	"financial_analyst/pkg/core/ingest"
)

var sentimentCmd = &cobra.Command{
	Use:   "sentiment SYMBOL",
	Short: "Score the market sentiment of recent news headlines",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if application.Sentiment == nil {
			return errors.New("the configured data source has no news feed")
		}
		symbol, err := ingest.NormalizeSymbol(args[0])
		if err != nil {
			return err
		}

		name := symbol
		if profile, err := application.Fetcher.FetchProfile(cmd.Context(), symbol); err == nil {
			name = profile.DisplayName()
		}
		result, err := application.Sentiment.Analyze(cmd.Context(), symbol, name)
		if err != nil {
			return err
		}

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	},
}
