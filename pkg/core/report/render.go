package report

import (
	"fmt"
	"strings"

	"financial_analyst/pkg/core/utils"
)

// Markdown renders the full report.
func (r *Report) Markdown() string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "# %s\n\n", r.Title())
	fmt.Fprintf(&sb, "_Generated %s_\n\n", r.GeneratedAt.Format("2006-01-02 15:04 MST"))

	if r.Company != nil {
		sb.WriteString("## Company Overview\n\n")
		for _, field := range [][2]string{
			{"Sector", r.Company.Sector},
			{"Industry", r.Company.Industry},
			{"Country", r.Company.Country},
			{"Exchange", r.Company.Exchange},
			{"Currency", r.Company.Currency},
			{"Website", r.Company.Website},
		} {
			if field[1] != "" {
				fmt.Fprintf(&sb, "- **%s:** %s\n", field[0], field[1])
			}
		}
		if r.Company.Employees > 0 {
			fmt.Fprintf(&sb, "- **Employees:** %d\n", r.Company.Employees)
		}
		if summary := strings.TrimSpace(r.Company.BusinessSummary); summary != "" {
			fmt.Fprintf(&sb, "\n%s\n", summary)
		}
		sb.WriteString("\n")
	}

	if r.Summary != "" {
		fmt.Fprintf(&sb, "## Executive Summary\n\n%s\n\n", r.Summary)
	}

	for _, s := range r.Sections {
		fmt.Fprintf(&sb, "## %s\n\n%s\n", s.Title, s.TableMarkdown)
		if s.Analysis != "" {
			fmt.Fprintf(&sb, "\n%s\n", s.Analysis)
		}
		sb.WriteString("\n")
	}

	if r.Sentiment != nil {
		fmt.Fprintf(&sb, "## News Sentiment\n\n**%s** (average score %.3f over %d headlines)\n\n",
			r.Sentiment.Sentiment, r.Sentiment.AvgScore, len(r.Sentiment.Headlines))
		for i, h := range r.Sentiment.Headlines {
			if i < len(r.Sentiment.Scores) {
				fmt.Fprintf(&sb, "- %s (%+.2f)\n", h, r.Sentiment.Scores[i])
			} else {
				fmt.Fprintf(&sb, "- %s\n", h)
			}
		}
		sb.WriteString("\n")
	}

	return strings.TrimRight(sb.String(), "\n") + "\n"
}

// HTML renders the report markdown as an HTML fragment.
func (r *Report) HTML() (string, error) {
	return utils.RenderHTML(r.Markdown())
}
