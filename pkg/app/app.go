// Package app builds the analyst's collaborators from configuration.
package app

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"

	"github.com/rs/zerolog/log"

	"financial_analyst/pkg/api"
	"financial_analyst/pkg/api/analysis"
	apiconfig "financial_analyst/pkg/api/config"
	"financial_analyst/pkg/config"
	"financial_analyst/pkg/core/agent"
	"financial_analyst/pkg/core/ingest"
	"financial_analyst/pkg/core/prompt"
	"financial_analyst/pkg/core/report"
	"financial_analyst/pkg/core/sentiment"
	"financial_analyst/pkg/core/store"
)

// App holds the wired collaborators.
type App struct {
	Config    *config.Config
	Fetcher   ingest.Fetcher
	News      ingest.NewsSource // nil when the data source has no news
	Agents    *agent.Manager
	Prompts   *prompt.Registry
	Sentiment *sentiment.Analyzer // nil when News is nil
	Reports   *report.Builder
	Store     *store.ReportStore
}

// New wires the application. The database is optional: without
// DATABASE_URL, or when it is unreachable, reports are stored as files.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	a := &App{Config: cfg}

	var err error
	a.Fetcher, a.News, err = newFetcher(cfg)
	if err != nil {
		return nil, err
	}

	agentCfg, err := agent.LoadConfig(cfg.LLM.ModelsFile)
	if errors.Is(err, fs.ErrNotExist) {
		log.Warn().Str("path", cfg.LLM.ModelsFile).Msg("models config not found, using gemini")
		agentCfg = agent.Config{ActiveProvider: "gemini"}
	} else if err != nil {
		return nil, err
	}
	a.Agents = agent.NewManager(agentCfg)

	if a.Prompts, err = prompt.LoadFile(cfg.LLM.PromptsFile); err != nil {
		return nil, err
	}

	if a.News != nil {
		a.Sentiment = sentiment.NewAnalyzer(a.News, a.Agents, a.Prompts)
	}
	opts := []report.BuilderOption{
		report.WithMaxConcurrency(cfg.Report.MaxConcurrency),
		report.WithPrecision(cfg.Report.Precision),
	}
	if a.Sentiment != nil {
		opts = append(opts, report.WithSentiment(a.Sentiment))
	}
	a.Reports = report.NewBuilder(a.Fetcher, a.Agents, a.Prompts, opts...)

	if cfg.Secrets.DatabaseURL != "" {
		if err := store.InitDB(ctx, cfg.Secrets.DatabaseURL); err != nil {
			log.Warn().Err(err).Msg("database unavailable, archiving reports to files")
		}
	}
	a.Store = store.NewReportStore(store.GetPool(), cfg.Store.Dir)

	log.Info().
		Str("data_source", cfg.Data.Source).
		Str("llm_provider", a.Agents.GetActiveProvider()).
		Str("store", a.Store.Backend()).
		Bool("sentiment", a.Sentiment != nil).
		Int("prompts", a.Prompts.Count()).
		Msg("application wired")
	return a, nil
}

// newFetcher picks the statement source. SEC has no news feed; EODHD news
// is used alongside it when a key is configured.
func newFetcher(cfg *config.Config) (ingest.Fetcher, ingest.NewsSource, error) {
	eodhd := func() *ingest.EODHDFetcher {
		client := ingest.NewEODHDClient(cfg.Secrets.EODHDAPIKey,
			ingest.WithBaseURL(cfg.Data.EODHDBaseURL),
			ingest.WithRateLimit(cfg.Data.EODHDRateLimit),
			ingest.WithLogger(log.With().Str("component", "eodhd").Logger()),
		)
		return ingest.NewEODHDFetcher(client, cfg.Data.EODHDExchange)
	}

	switch cfg.Data.Source {
	case config.SourceFile:
		f := ingest.NewFileFetcher(cfg.Data.Dir)
		return f, f, nil
	case config.SourceEODHD:
		f := eodhd()
		return f, f, nil
	case config.SourceSEC:
		var news ingest.NewsSource
		if cfg.Secrets.EODHDAPIKey != "" {
			news = eodhd()
		}
		return ingest.NewSECFetcher(ingest.NewEDGARClient()), news, nil
	}
	return nil, nil, fmt.Errorf("unknown data source %q", cfg.Data.Source)
}

// Router builds the HTTP handler.
func (a *App) Router() http.Handler {
	return api.NewRouter(api.RouterParams{
		Analysis:  analysis.NewHandler(a.Fetcher, a.Reports, a.Sentiment, a.Store),
		Config:    apiconfig.NewHandler(a.Agents),
		RateLimit: a.Config.Server.RateLimit,
	})
}

// Close releases the database pool.
func (a *App) Close() {
	store.Close()
}
