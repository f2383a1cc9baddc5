package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"financial_analyst/pkg/api/analysis"
	apiconfig "financial_analyst/pkg/api/config"
	"financial_analyst/pkg/core/agent"
	"financial_analyst/pkg/core/calc"
	"financial_analyst/pkg/core/ingest"
	"financial_analyst/pkg/core/llm"
	"financial_analyst/pkg/core/prompt"
	"financial_analyst/pkg/core/report"
	"financial_analyst/pkg/core/sentiment"
	"financial_analyst/pkg/core/store"
)

type stubFetcher struct{}

var (
	fy2022 = calc.MustParsePeriod("2022-12-31")
	fy2023 = calc.MustParsePeriod("2023-12-31")
)

// GHOST has statements but no profile; PARTIAL has no cash flow statement.
func (stubFetcher) FetchProfile(ctx context.Context, symbol string) (*ingest.Profile, error) {
	switch symbol {
	case "ACME":
		return &ingest.Profile{Symbol: "ACME", Name: "Acme", LongName: "Acme Corporation"}, nil
	case "PARTIAL":
		return &ingest.Profile{Symbol: "PARTIAL", Name: "Partial"}, nil
	}
	return nil, ingest.ErrNotFound
}

func (stubFetcher) FetchStatements(ctx context.Context, symbol string) (*calc.Statements, error) {
	switch symbol {
	case "ACME", "GHOST":
	case "PARTIAL":
		return &calc.Statements{
			Symbol:          symbol,
			BalanceSheet:    calc.StatementTable{fy2023: {calc.ItemCurrentAssets: 150}},
			IncomeStatement: calc.StatementTable{},
		}, nil
	default:
		return nil, ingest.ErrNotFound
	}
	return &calc.Statements{
		Symbol: symbol,
		BalanceSheet: calc.StatementTable{
			fy2023: {calc.ItemCurrentAssets: 150, calc.ItemCurrentLiabilities: 100},
			fy2022: {calc.ItemCurrentAssets: 120, calc.ItemCurrentLiabilities: 100},
		},
		IncomeStatement: calc.StatementTable{
			fy2022: {calc.ItemTotalRevenue: 1000},
			fy2023: {calc.ItemTotalRevenue: 1200},
		},
		CashFlow: calc.StatementTable{},
	}, nil
}

func (stubFetcher) FetchNews(ctx context.Context, symbol string, limit int) ([]ingest.NewsItem, error) {
	return []ingest.NewsItem{{Title: "Acme rallies"}}, nil
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	mock := &llm.MockProvider{Respond: func(p, system string, options map[string]interface{}) (string, error) {
		if options["json"] == true {
			return `{"scores": [0.6]}`, nil
		}
		return "Looks healthy.", nil
	}}
	mgr := agent.NewManager(agent.Config{ActiveProvider: "mock"})
	mgr.Register("mock", mock)

	fetcher := stubFetcher{}
	prompts := prompt.Default()
	sa := sentiment.NewAnalyzer(fetcher, mgr, prompts)
	builder := report.NewBuilder(fetcher, mgr, prompts, report.WithSentiment(sa))

	srv := httptest.NewServer(NewRouter(RouterParams{
		Analysis:  analysis.NewHandler(fetcher, builder, sa, store.NewReportStore(nil, t.TempDir())),
		Config:    apiconfig.NewHandler(mgr),
		RateLimit: 100,
	}))
	t.Cleanup(srv.Close)
	return srv
}

func getJSON(t *testing.T, url string, v interface{}) int {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	if v != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
	}
	return resp.StatusCode
}

func TestHealthAndIndex(t *testing.T) {
	srv := newTestServer(t)

	var health map[string]string
	assert.Equal(t, http.StatusOK, getJSON(t, srv.URL+"/healthz", &health))
	assert.Equal(t, "ok", health["status"])

	resp, err := http.Get(srv.URL + "/")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/html")
}

func TestValidateTicker(t *testing.T) {
	srv := newTestServer(t)

	var body struct {
		Symbol string `json:"symbol"`
		Valid  bool   `json:"valid"`
	}
	getJSON(t, srv.URL+"/api/tickers/acme/validate", &body)
	assert.Equal(t, "ACME", body.Symbol)
	assert.True(t, body.Valid)

	getJSON(t, srv.URL+"/api/tickers/ZZZZ/validate", &body)
	assert.False(t, body.Valid)

	getJSON(t, srv.URL+"/api/tickers/bad$sym/validate", &body)
	assert.False(t, body.Valid)
}

func TestCompany(t *testing.T) {
	srv := newTestServer(t)

	var profile ingest.Profile
	assert.Equal(t, http.StatusOK, getJSON(t, srv.URL+"/api/companies/ACME", &profile))
	assert.Equal(t, "Acme Corporation", profile.LongName)

	var errBody map[string]string
	assert.Equal(t, http.StatusNotFound, getJSON(t, srv.URL+"/api/companies/ZZZZ", &errBody))
	assert.Contains(t, errBody["error"], "ZZZZ")
}

func TestRatios(t *testing.T) {
	srv := newTestServer(t)

	var body struct {
		Symbol string                     `json:"symbol"`
		Groups map[string]calc.RatioTable `json:"groups"`
	}
	assert.Equal(t, http.StatusOK, getJSON(t, srv.URL+"/api/ratios/ACME", &body))
	assert.Len(t, body.Groups, len(calc.Groups))

	liquidity := body.Groups["liquidity"]
	require.Len(t, liquidity.Rows, 2)
	assert.Equal(t, fy2022, liquidity.Rows[0].Period)
	assert.InDelta(t, 1.2, liquidity.Rows[0].Values[calc.RatioCurrent].Float, 1e-9)
	assert.False(t, liquidity.HasColumn(calc.RatioQuick))

	growth := body.Groups["growth"]
	assert.False(t, growth.Rows[0].Values[calc.RatioRevenueGrowth].Valid)
	assert.InDelta(t, 20.0, growth.Rows[1].Values[calc.RatioRevenueGrowth].Float, 1e-9)

	body.Groups = nil
	assert.Equal(t, http.StatusOK, getJSON(t, srv.URL+"/api/ratios/ACME?group=leverage", &body))
	assert.Len(t, body.Groups, 1)

	assert.Equal(t, http.StatusBadRequest, getJSON(t, srv.URL+"/api/ratios/ACME?group=momentum", nil))
	assert.Equal(t, http.StatusNotFound, getJSON(t, srv.URL+"/api/ratios/ZZZZ", nil))
	assert.Equal(t, http.StatusNotFound, getJSON(t, srv.URL+"/api/ratios/GHOST", nil), "ticker is validated before fetching statements")
	assert.Equal(t, http.StatusUnprocessableEntity, getJSON(t, srv.URL+"/api/ratios/PARTIAL?group=growth", nil))
	assert.Equal(t, http.StatusOK, getJSON(t, srv.URL+"/api/ratios/PARTIAL?group=liquidity", nil))

	resp, err := http.Get(srv.URL + "/api/ratios/ACME?group=liquidity&format=markdown")
	require.NoError(t, err)
	defer resp.Body.Close()
	buf := new(bytes.Buffer)
	_, _ = buf.ReadFrom(resp.Body)
	assert.Contains(t, buf.String(), "| 2023-12-31 | 1.5000 | NaN |")
}

func TestSentiment(t *testing.T) {
	srv := newTestServer(t)

	var result sentiment.Result
	assert.Equal(t, http.StatusOK, getJSON(t, srv.URL+"/api/sentiment/ACME", &result))
	assert.Equal(t, sentiment.Positive, result.Sentiment)
	assert.Equal(t, []string{"Acme rallies"}, result.Headlines)
}

func TestConfigSwitch(t *testing.T) {
	srv := newTestServer(t)

	var cfg apiconfig.Response
	getJSON(t, srv.URL+"/api/config", &cfg)
	assert.Equal(t, "mock", cfg.ActiveProvider)
	assert.Contains(t, cfg.Available, "deepseek")

	resp, err := http.Post(srv.URL+"/api/config/switch", "application/json", strings.NewReader(`{"provider":"deepseek"}`))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	getJSON(t, srv.URL+"/api/config", &cfg)
	assert.Equal(t, "deepseek", cfg.ActiveProvider)

	resp, err = http.Post(srv.URL+"/api/config/switch", "application/json", strings.NewReader(`{"provider":"hal9000"}`))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestReportLifecycle(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Post(srv.URL+"/api/reports", "application/json",
		strings.NewReader(`{"symbol":"acme","include_sentiment":true}`))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var rep report.Report
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&rep))
	assert.Equal(t, "ACME", rep.Symbol)
	assert.Equal(t, "Looks healthy.", rep.Summary)
	require.NotNil(t, rep.Sentiment)
	assert.Equal(t, "/api/reports/"+rep.ID, resp.Header.Get("Location"))

	var list []store.Summary
	assert.Equal(t, http.StatusOK, getJSON(t, srv.URL+"/api/reports", &list))
	require.Len(t, list, 1)
	assert.Equal(t, rep.ID, list[0].ID)

	var loaded report.Report
	assert.Equal(t, http.StatusOK, getJSON(t, srv.URL+"/api/reports/"+rep.ID, &loaded))
	assert.Equal(t, rep.Summary, loaded.Summary)

	page, err := http.Get(srv.URL + "/reports/" + rep.ID)
	require.NoError(t, err)
	defer page.Body.Close()
	html := new(bytes.Buffer)
	_, _ = html.ReadFrom(page.Body)
	assert.Contains(t, html.String(), "<title>Acme Corporation (ACME) Financial Analysis</title>")
	assert.Contains(t, html.String(), "<table>")

	assert.Equal(t, http.StatusNotFound, getJSON(t, srv.URL+"/api/reports/00000000-0000-0000-0000-000000000000", nil))
}

func TestCreateReportValidation(t *testing.T) {
	srv := newTestServer(t)

	for body, want := range map[string]int{
		`{}`:                http.StatusBadRequest,
		`not json`:          http.StatusBadRequest,
		`{"symbol":"b@d"}`:  http.StatusBadRequest,
		`{"symbol":"ZZZZ"}`: http.StatusNotFound,
		`{"symbol":"ACME","skip_narrative":true}`: http.StatusCreated,
	} {
		resp, err := http.Post(srv.URL+"/api/reports", "application/json", strings.NewReader(body))
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, want, resp.StatusCode, body)
	}
}
