package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "app.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("FA_DATA_SOURCE", "")
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default().Server, cfg.Server)
	assert.Equal(t, SourceFile, cfg.Data.Source)
}

func TestLoadFileAndEnv(t *testing.T) {
	path := writeConfig(t, `
server:
  addr: ":9000"
  read_timeout: 10s
data:
  source: sec
report:
  max_concurrency: 6
logging:
  level: warn
`)
	t.Setenv("FA_ADDR", ":7000")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("DATABASE_URL", "postgres://localhost/fa")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":7000", cfg.Server.Addr)
	assert.Equal(t, 10*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, 5*time.Minute, cfg.Server.WriteTimeout, "unset keys keep defaults")
	assert.Equal(t, SourceSEC, cfg.Data.Source)
	assert.Equal(t, 6, cfg.Report.MaxConcurrency)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "postgres://localhost/fa", cfg.Secrets.DatabaseURL)
}

func TestLoadValidation(t *testing.T) {
	t.Setenv("FA_DATA_SOURCE", "eodhd")
	t.Setenv("EODHD_API_KEY", "")
	_, err := Load("")
	assert.ErrorContains(t, err, "EODHD_API_KEY")

	t.Setenv("FA_DATA_SOURCE", "yahoo")
	_, err = Load("")
	assert.ErrorContains(t, err, "unknown data source")

	t.Setenv("FA_DATA_SOURCE", "")
	_, err = Load(writeConfig(t, "server: [oops"))
	assert.Error(t, err)
}
