// Package analysis serves ratios, company data, sentiment and reports.
package analysis

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"financial_analyst/pkg/api/respond"
	"financial_analyst/pkg/core/calc"
	"financial_analyst/pkg/core/ingest"
	"financial_analyst/pkg/core/report"
	"financial_analyst/pkg/core/sentiment"
	"financial_analyst/pkg/core/store"
)

// ReportArchive stores generated reports. *store.ReportStore implements it.
type ReportArchive interface {
	Save(ctx context.Context, rep *report.Report) error
	Get(ctx context.Context, id string) (*report.Report, error)
	List(ctx context.Context, symbol string, limit int) ([]store.Summary, error)
}

// Handler wires HTTP endpoints for the analysis flows.
type Handler struct {
	fetcher   ingest.Fetcher
	builder   *report.Builder
	sentiment *sentiment.Analyzer
	archive   ReportArchive
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewHandler constructs a Handler. sentiment may be nil when no news source
// is configured.
func NewHandler(fetcher ingest.Fetcher, builder *report.Builder, sa *sentiment.Analyzer, archive ReportArchive) *Handler {
	return &Handler{
		fetcher:   fetcher,
		builder:   builder,
		sentiment: sa,
		archive:   archive,
		validator: validator.New(),
		logger:    log.With().Str("component", "api").Logger(),
	}
}

// symbolParam reads and normalizes the {symbol} URL parameter, writing a
// 400 on failure.
func symbolParam(w http.ResponseWriter, r *http.Request) (string, bool) {
	symbol, err := ingest.NormalizeSymbol(chi.URLParam(r, "symbol"))
	if err != nil {
		respond.Error(w, http.StatusBadRequest, err.Error())
		return "", false
	}
	return symbol, true
}

// upstreamError maps a fetch failure to 404 or 502.
func (h *Handler) upstreamError(w http.ResponseWriter, symbol string, err error) {
	if errors.Is(err, ingest.ErrNotFound) || errors.Is(err, report.ErrInvalidTicker) {
		respond.Error(w, http.StatusNotFound, "unknown ticker: "+symbol)
		return
	}
	if errors.Is(err, calc.ErrMissingStatement) {
		respond.Error(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	h.logger.Error().Err(err).Str("symbol", symbol).Msg("upstream failure")
	respond.Error(w, http.StatusBadGateway, err.Error())
}

// =============================================================================
// COMPANY DATA
// =============================================================================

type validateResponse struct {
	Symbol string `json:"symbol"`
	Valid  bool   `json:"valid"`
}

// HandleValidate reports whether the data source knows the ticker.
func (h *Handler) HandleValidate(w http.ResponseWriter, r *http.Request) {
	raw := chi.URLParam(r, "symbol")
	symbol, err := ingest.NormalizeSymbol(raw)
	if err != nil {
		respond.JSON(w, http.StatusOK, validateResponse{Symbol: raw, Valid: false})
		return
	}
	respond.JSON(w, http.StatusOK, validateResponse{
		Symbol: symbol,
		Valid:  ingest.IsValidTicker(r.Context(), h.fetcher, symbol),
	})
}

// HandleCompany returns the company profile.
func (h *Handler) HandleCompany(w http.ResponseWriter, r *http.Request) {
	symbol, ok := symbolParam(w, r)
	if !ok {
		return
	}
	profile, err := h.fetcher.FetchProfile(r.Context(), symbol)
	if err != nil {
		h.upstreamError(w, symbol, err)
		return
	}
	respond.JSON(w, http.StatusOK, profile)
}

type ratiosResponse struct {
	Symbol string                          `json:"symbol"`
	Groups map[calc.Group]*calc.RatioTable `json:"groups"`
}

// HandleRatios computes every ratio group, or one with ?group=. With
// ?format=markdown the tables are returned as markdown text.
func (h *Handler) HandleRatios(w http.ResponseWriter, r *http.Request) {
	symbol, ok := symbolParam(w, r)
	if !ok {
		return
	}

	groups := calc.Groups
	if g := r.URL.Query().Get("group"); g != "" {
		group, err := calc.ParseGroup(g)
		if err != nil {
			respond.Error(w, http.StatusBadRequest, err.Error())
			return
		}
		groups = []calc.Group{group}
	}

	if !ingest.IsValidTicker(r.Context(), h.fetcher, symbol) {
		respond.Error(w, http.StatusNotFound, "unknown ticker: "+symbol)
		return
	}
	statements, err := h.fetcher.FetchStatements(r.Context(), symbol)
	if err != nil {
		h.upstreamError(w, symbol, err)
		return
	}

	resp := ratiosResponse{Symbol: symbol, Groups: make(map[calc.Group]*calc.RatioTable, len(groups))}
	for _, g := range groups {
		table, err := calc.Compute(g, statements)
		if err != nil {
			h.upstreamError(w, symbol, err)
			return
		}
		resp.Groups[g] = table
	}

	if r.URL.Query().Get("format") == "markdown" {
		w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
		for _, g := range groups {
			_, _ = w.Write([]byte("## " + g.Title() + "\n\n" + report.MarkdownTable(resp.Groups[g], report.DefaultPrecision) + "\n"))
		}
		return
	}
	respond.JSON(w, http.StatusOK, resp)
}

// HandleSentiment scores recent headlines.
func (h *Handler) HandleSentiment(w http.ResponseWriter, r *http.Request) {
	symbol, ok := symbolParam(w, r)
	if !ok {
		return
	}
	if h.sentiment == nil {
		respond.Error(w, http.StatusServiceUnavailable, "no news source configured")
		return
	}

	name := symbol
	if profile, err := h.fetcher.FetchProfile(r.Context(), symbol); err == nil && profile != nil {
		name = profile.DisplayName()
	} else if errors.Is(err, ingest.ErrNotFound) {
		h.upstreamError(w, symbol, err)
		return
	}

	result, err := h.sentiment.Analyze(r.Context(), symbol, name)
	if err != nil {
		h.upstreamError(w, symbol, err)
		return
	}
	respond.JSON(w, http.StatusOK, result)
}

// =============================================================================
// REPORTS
// =============================================================================

type createReportRequest struct {
	Symbol           string `json:"symbol" validate:"required,max=20"`
	IncludeSentiment bool   `json:"include_sentiment"`
	SkipNarrative    bool   `json:"skip_narrative"`
}

// HandleCreateReport builds, archives and returns a report.
func (h *Handler) HandleCreateReport(w http.ResponseWriter, r *http.Request) {
	var req createReportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			respond.Error(w, http.StatusBadRequest, "invalid field: "+verrs[0].Field())
			return
		}
		respond.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	symbol, err := ingest.NormalizeSymbol(req.Symbol)
	if err != nil {
		respond.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	rep, err := h.builder.Build(r.Context(), symbol, report.Options{
		SkipNarrative:    req.SkipNarrative,
		IncludeSentiment: req.IncludeSentiment,
	})
	if err != nil {
		h.upstreamError(w, symbol, err)
		return
	}

	if err := h.archive.Save(r.Context(), rep); err != nil {
		h.logger.Warn().Err(err).Str("report_id", rep.ID).Msg("failed to archive report")
	}
	w.Header().Set("Location", "/api/reports/"+rep.ID)
	respond.JSON(w, http.StatusCreated, rep)
}

// HandleListReports lists archived reports, newest first.
func (h *Handler) HandleListReports(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, _ := strconv.Atoi(q.Get("limit"))

	symbol := q.Get("symbol")
	if symbol != "" {
		var err error
		if symbol, err = ingest.NormalizeSymbol(symbol); err != nil {
			respond.Error(w, http.StatusBadRequest, err.Error())
			return
		}
	}

	summaries, err := h.archive.List(r.Context(), symbol, limit)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to list reports")
		respond.Error(w, http.StatusInternalServerError, "failed to list reports")
		return
	}
	respond.JSON(w, http.StatusOK, summaries)
}

func (h *Handler) loadReport(w http.ResponseWriter, r *http.Request) (*report.Report, bool) {
	rep, err := h.archive.Get(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, store.ErrReportNotFound) {
		respond.Error(w, http.StatusNotFound, "report not found")
		return nil, false
	}
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to load report")
		respond.Error(w, http.StatusInternalServerError, "failed to load report")
		return nil, false
	}
	return rep, true
}

// HandleGetReport returns one archived report as JSON.
func (h *Handler) HandleGetReport(w http.ResponseWriter, r *http.Request) {
	if rep, ok := h.loadReport(w, r); ok {
		respond.JSON(w, http.StatusOK, rep)
	}
}
