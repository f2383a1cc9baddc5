package app

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"financial_analyst/pkg/config"
	"financial_analyst/pkg/core/report"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	models := filepath.Join(dir, "models.yaml")
	require.NoError(t, os.WriteFile(models, []byte("active_provider: mock\n"), 0o644))

	cfg := config.Default()
	cfg.Data.Dir = filepath.Join("..", "..", "testdata", "data")
	cfg.LLM.ModelsFile = models
	cfg.LLM.PromptsFile = filepath.Join(dir, "missing-prompts.yaml")
	cfg.Store.Dir = filepath.Join(dir, "reports")
	return cfg
}

func TestNewFileSource(t *testing.T) {
	a, err := New(context.Background(), testConfig(t))
	require.NoError(t, err)
	defer a.Close()

	assert.Equal(t, "mock", a.Agents.GetActiveProvider())
	assert.Equal(t, "file", a.Store.Backend())
	assert.NotNil(t, a.Sentiment)
	assert.Greater(t, a.Prompts.Count(), 0)

	rep, err := a.Reports.Build(context.Background(), "ACME", report.Options{IncludeSentiment: true})
	require.NoError(t, err)
	assert.Equal(t, "Acme Corporation", rep.Company.DisplayName())
	assert.NotEmpty(t, rep.Summary)
	require.NotNil(t, rep.Sentiment)
	assert.Len(t, rep.Sentiment.Headlines, 3)
}

func TestRouterServesSampleData(t *testing.T) {
	a, err := New(context.Background(), testConfig(t))
	require.NoError(t, err)

	srv := httptest.NewServer(a.Router())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/tickers/GLOBEX/validate")
	require.NoError(t, err)
	defer resp.Body.Close()
	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, true, body["valid"])
}

func TestNewSECWithoutNews(t *testing.T) {
	cfg := testConfig(t)
	cfg.Data.Source = config.SourceSEC
	cfg.Secrets.EODHDAPIKey = ""

	a, err := New(context.Background(), cfg)
	require.NoError(t, err)
	assert.Nil(t, a.News)
	assert.Nil(t, a.Sentiment)
}
