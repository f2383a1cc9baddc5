// Package api exposes the analyst over HTTP.
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"github.com/rs/zerolog/log"

	"financial_analyst/pkg/api/analysis"
	apiconfig "financial_analyst/pkg/api/config"
	"financial_analyst/pkg/api/respond"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Analysis *analysis.Handler
	Config   *apiconfig.Handler

	// RateLimit is the per-IP request budget per minute on LLM-backed routes.
	RateLimit int
}

// NewRouter constructs the chi router.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(AccessLog(log.With().Str("component", "http").Logger()))
	r.Use(chimw.Recoverer)

	limit := params.RateLimit
	if limit <= 0 {
		limit = 10
	}
	llmLimiter := httprate.Limit(limit, time.Minute, httprate.WithKeyFuncs(httprate.KeyByIP))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		respond.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	a := params.Analysis
	r.Get("/", a.HandleIndex)
	r.Get("/reports/{id}", a.HandleReportPage)

	r.Route("/api", func(r chi.Router) {
		r.Get("/config", params.Config.HandleConfig)
		r.Post("/config/switch", params.Config.HandleSwitch)

		r.Get("/tickers/{symbol}/validate", a.HandleValidate)
		r.Get("/companies/{symbol}", a.HandleCompany)
		r.Get("/ratios/{symbol}", a.HandleRatios)
		r.With(llmLimiter).Get("/sentiment/{symbol}", a.HandleSentiment)

		r.With(llmLimiter).Post("/reports", a.HandleCreateReport)
		r.Get("/reports", a.HandleListReports)
		r.Get("/reports/{id}", a.HandleGetReport)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		respond.Error(w, http.StatusNotFound, "not found")
	})
	return r
}
