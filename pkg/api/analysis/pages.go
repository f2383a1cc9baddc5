package analysis

import (
	"embed"
	"html/template"
	"net/http"

	"financial_analyst/pkg/api/respond"
)

//go:embed templates/*.html
var templateFS embed.FS

var pages = template.Must(template.ParseFS(templateFS, "templates/*.html"))

type reportPage struct {
	Title string
	Body  template.HTML
	ID    string
}

// HandleIndex serves the ticker form.
func (h *Handler) HandleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := pages.ExecuteTemplate(w, "index.html", nil); err != nil {
		h.logger.Error().Err(err).Msg("render index")
	}
}

// HandleReportPage renders an archived report as HTML.
func (h *Handler) HandleReportPage(w http.ResponseWriter, r *http.Request) {
	rep, ok := h.loadReport(w, r)
	if !ok {
		return
	}
	body, err := rep.HTML()
	if err != nil {
		h.logger.Error().Err(err).Str("report_id", rep.ID).Msg("render report markdown")
		respond.Error(w, http.StatusInternalServerError, "failed to render report")
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	// goldmark drops raw HTML unless rendered with html.WithUnsafe.
	page := reportPage{Title: rep.Title(), Body: template.HTML(body), ID: rep.ID}
	if err := pages.ExecuteTemplate(w, "report.html", page); err != nil {
		h.logger.Error().Err(err).Msg("render report page")
	}
}
