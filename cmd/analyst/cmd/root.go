// Package cmd - analyst CLI commands
package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"financial_analyst/pkg/app"
	"financial_analyst/pkg/config"
	"financial_analyst/pkg/logger"
)

const version = "1.0.0"

var (
	cfgFile string
	verbose bool

	application *app.App
)

var rootCmd = &cobra.Command{
	Use:   "analyst",
	Short: "Financial ratio analysis with LLM commentary",
	Long: `Financial Analyst - CLI

Fetches company financial statements, computes liquidity, profitability,
efficiency, valuation, leverage and growth ratios, and asks an LLM to
interpret them.

Commands:
    validate    SYMBOL    - check that the data source knows a ticker
    ratios      SYMBOL    - print ratio tables
    report      SYMBOL    - generate an analysis report
    sentiment   SYMBOL    - score recent news headlines
    serve                 - run the web UI and JSON API
`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if application != nil {
			application.Close()
		}
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.ExecuteContext(context.Background())
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "config/app.yaml", "config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(ratiosCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(sentimentCmd)
	rootCmd.AddCommand(serveCmd)
}

// setup loads configuration, initializes logging and wires the app.
func setup(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return err
	}

	logCfg := cfg.Logging
	logCfg.ServiceName = "financial-analyst"
	logCfg.ServiceVersion = version
	logCfg.Console = cmd.ErrOrStderr()
	if verbose {
		logCfg.Level = "debug"
	} else if cmd != serveCmd {
		logCfg.Level = "warn"
	}
	if err := logger.Init(logCfg); err != nil {
		return err
	}

	application, err = app.New(cmd.Context(), cfg)
	return err
}
