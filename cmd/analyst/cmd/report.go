package cmd

import (
	"fmt"
	"html"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"financial_analyst/pkg/core/report"
)

var (
	reportNoLLM     bool
	reportSentiment bool
	reportOut       string
	reportHTML      bool
)

var reportCmd = &cobra.Command{
	Use:   "report SYMBOL",
	Short: "Generate a financial analysis report",
	Long: `Computes every ratio group, asks the configured LLM to analyze each table,
and prints the report as markdown (or HTML with --html). The report is
also archived and can be viewed later through the web UI.

Examples:
  analyst report AAPL
  analyst report AAPL --no-llm
  analyst report AAPL --sentiment --html --out aapl.html`,
	Args: cobra.ExactArgs(1),
	RunE: runReport,
}

func init() {
	reportCmd.Flags().BoolVar(&reportNoLLM, "no-llm", false, "ratio tables only, no LLM analysis")
	reportCmd.Flags().BoolVar(&reportSentiment, "sentiment", false, "include news sentiment")
	reportCmd.Flags().StringVarP(&reportOut, "out", "o", "", "write the report to this file instead of stdout")
	reportCmd.Flags().BoolVar(&reportHTML, "html", false, "render HTML instead of markdown")
}

const htmlPage = `<!DOCTYPE html>
<html lang="en">
<head><meta charset="utf-8"><title>%s</title></head>
<body>
%s</body>
</html>
`

func runReport(cmd *cobra.Command, args []string) error {
	rep, err := application.Reports.Build(cmd.Context(), args[0], report.Options{
		SkipNarrative:    reportNoLLM,
		IncludeSentiment: reportSentiment,
	})
	if err != nil {
		return err
	}

	if err := application.Store.Save(cmd.Context(), rep); err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: report not archived: %v\n", err)
	}

	content := rep.Markdown()
	if reportHTML {
		body, err := rep.HTML()
		if err != nil {
			return err
		}
		content = fmt.Sprintf(htmlPage, html.EscapeString(rep.Title()), body)
	}

	if reportOut == "" {
		_, err := fmt.Fprint(cmd.OutOrStdout(), content)
		return err
	}
	if dir := filepath.Dir(reportOut); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	if err := os.WriteFile(reportOut, []byte(content), 0o644); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Report %s written to %s\n", rep.ID, reportOut)
	return nil
}
