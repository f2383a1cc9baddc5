// Package report turns ratio tables into a narrative analysis report.
package report

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"financial_analyst/pkg/core/agent"
	"financial_analyst/pkg/core/calc"
	"financial_analyst/pkg/core/ingest"
	"financial_analyst/pkg/core/prompt"
	"financial_analyst/pkg/core/sentiment"
	"financial_analyst/pkg/core/utils"
)

// ErrInvalidTicker is returned when the data source does not know the symbol.
var ErrInvalidTicker = errors.New("invalid ticker")

const noAnalysis = "_No analysis available._"

// =============================================================================
// REPORT MODEL
// =============================================================================

// Section is the analysis of one ratio group.
type Section struct {
	Group         calc.Group       `json:"group"`
	Title         string           `json:"title"`
	Table         *calc.RatioTable `json:"table"`
	TableMarkdown string           `json:"table_markdown"`
	Analysis      string           `json:"analysis,omitempty"`
}

// Report is a complete company analysis.
type Report struct {
	ID          string            `json:"id"`
	Symbol      string            `json:"symbol"`
	Company     *ingest.Profile   `json:"company"`
	Sections    []Section         `json:"sections"`
	Summary     string            `json:"summary,omitempty"`
	Sentiment   *sentiment.Result `json:"sentiment,omitempty"`
	GeneratedAt time.Time         `json:"generated_at"`
}

// Title is the report heading.
func (r *Report) Title() string {
	name := r.Symbol
	if r.Company != nil {
		name = r.Company.DisplayName()
	}
	return fmt.Sprintf("%s (%s) Financial Analysis", name, r.Symbol)
}

// Section returns the section of a group, or nil.
func (r *Report) Section(g calc.Group) *Section {
	for i := range r.Sections {
		if r.Sections[i].Group == g {
			return &r.Sections[i]
		}
	}
	return nil
}

// =============================================================================
// BUILDER
// =============================================================================

// Options select the optional parts of a report.
type Options struct {
	SkipNarrative    bool
	IncludeSentiment bool
}

// Builder assembles reports from a fetcher, the ratio engine and an LLM.
type Builder struct {
	fetcher        ingest.Fetcher
	llm            agent.Executor
	prompts        *prompt.Registry
	sentiment      *sentiment.Analyzer
	maxConcurrency int
	precision      int
	logger         zerolog.Logger
}

type BuilderOption func(*Builder)

// WithSentiment enables the news sentiment section.
func WithSentiment(a *sentiment.Analyzer) BuilderOption {
	return func(b *Builder) { b.sentiment = a }
}

// WithMaxConcurrency bounds the parallel LLM calls per report.
func WithMaxConcurrency(n int) BuilderOption {
	return func(b *Builder) {
		if n > 0 {
			b.maxConcurrency = n
		}
	}
}

// WithPrecision sets the decimals shown in ratio tables.
func WithPrecision(p int) BuilderOption {
	return func(b *Builder) { b.precision = p }
}

// NewBuilder creates a builder. llm may be nil, in which case every report
// is built without narrative.
func NewBuilder(fetcher ingest.Fetcher, llm agent.Executor, prompts *prompt.Registry, opts ...BuilderOption) *Builder {
	b := &Builder{
		fetcher:        fetcher,
		llm:            llm,
		prompts:        prompts,
		maxConcurrency: 3,
		precision:      DefaultPrecision,
		logger:         log.With().Str("component", "report").Logger(),
	}
	for _, opt := range opts {
		opt(b)
	}
	if b.prompts == nil {
		b.prompts = prompt.Default()
	}
	return b
}

// Build fetches the company data, computes every ratio group and, unless
// skipped, asks the LLM to analyze each table and summarize.
func (b *Builder) Build(ctx context.Context, symbol string, opts Options) (*Report, error) {
	symbol, err := ingest.NormalizeSymbol(symbol)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidTicker, err)
	}

	profile, err := b.fetcher.FetchProfile(ctx, symbol)
	switch {
	case errors.Is(err, ingest.ErrNotFound), errors.Is(err, ingest.ErrInvalidSymbol):
		return nil, fmt.Errorf("%w: %s", ErrInvalidTicker, symbol)
	case err != nil:
		return nil, fmt.Errorf("failed to fetch profile for %s: %w", symbol, err)
	case profile == nil || (profile.Name == "" && profile.LongName == ""):
		return nil, fmt.Errorf("%w: %s", ErrInvalidTicker, symbol)
	}

	statements, err := b.fetcher.FetchStatements(ctx, symbol)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch statements for %s: %w", symbol, err)
	}
	tables, err := calc.ComputeAll(statements)
	if err != nil {
		return nil, fmt.Errorf("failed to compute ratios for %s: %w", symbol, err)
	}

	rep := &Report{
		ID:          uuid.NewString(),
		Symbol:      symbol,
		Company:     profile,
		GeneratedAt: time.Now().UTC(),
	}
	for _, g := range calc.Groups {
		rep.Sections = append(rep.Sections, Section{
			Group:         g,
			Title:         g.Title(),
			Table:         tables[g],
			TableMarkdown: MarkdownTable(tables[g], b.precision),
		})
	}

	narrative := !opts.SkipNarrative && b.llm != nil
	if narrative {
		if err := b.analyzeSections(ctx, rep); err != nil {
			return nil, err
		}
		if err := b.summarize(ctx, rep); err != nil {
			return nil, err
		}
	}

	if opts.IncludeSentiment && b.sentiment != nil {
		result, err := b.sentiment.Analyze(ctx, symbol, profile.DisplayName())
		if err != nil {
			b.logger.Warn().Err(err).Str("symbol", symbol).Msg("sentiment analysis failed, continuing without it")
		} else {
			rep.Sentiment = result
		}
	}

	b.logger.Info().
		Str("symbol", symbol).
		Str("report_id", rep.ID).
		Bool("narrative", narrative).
		Bool("sentiment", rep.Sentiment != nil).
		Msg("report built")
	return rep, nil
}

// analyzeSections runs one LLM call per ratio group, at most maxConcurrency
// at a time. Each goroutine writes only its own section.
func (b *Builder) analyzeSections(ctx context.Context, rep *Report) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.maxConcurrency)

	company := rep.Company.DisplayName()
	for i := range rep.Sections {
		section := &rep.Sections[i]
		g.Go(func() error {
			system, user, err := b.prompts.Render(prompt.AnalysisID(string(section.Group)), prompt.NewContext().
				Set("CompanyName", company).
				Set("RatiosTable", section.TableMarkdown))
			if err != nil {
				return err
			}

			start := time.Now()
			text, err := b.llm.ExecutePrompt(gctx, agent.RoleRatioAnalyst, user, system, nil)
			if err != nil {
				return fmt.Errorf("%s analysis failed: %w", section.Group, err)
			}
			section.Analysis = utils.CleanMarkdown(text)
			if !utils.ValidateMarkdown(section.Analysis) {
				b.logger.Warn().Str("group", string(section.Group)).Msg("empty analysis returned")
				section.Analysis = noAnalysis
			}

			b.logger.Debug().
				Str("group", string(section.Group)).
				Dur("elapsed", time.Since(start)).
				Msg("section analyzed")
			return nil
		})
	}
	return g.Wait()
}

func (b *Builder) summarize(ctx context.Context, rep *Report) error {
	var sections strings.Builder
	for _, s := range rep.Sections {
		fmt.Fprintf(&sections, "### %s\n\n%s\n\n", s.Title, s.Analysis)
	}

	system, user, err := b.prompts.Render(prompt.IDAnalysisSummary, prompt.NewContext().
		Set("CompanyName", rep.Company.DisplayName()).
		Set("Sections", strings.TrimSpace(sections.String())))
	if err != nil {
		return err
	}
	text, err := b.llm.ExecutePrompt(ctx, agent.RoleRatioAnalyst, user, system, nil)
	if err != nil {
		return fmt.Errorf("summary failed: %w", err)
	}
	rep.Summary = utils.CleanMarkdown(text)
	return nil
}
