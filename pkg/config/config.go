// Package config loads application settings from config/app.yaml, with
// secrets and overrides taken from the environment (.env supported).
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v2"

	"financial_analyst/pkg/logger"
)

// Data sources.
const (
	SourceFile  = "file"
	SourceEODHD = "eodhd"
	SourceSEC   = "sec"
)

// Config represents the application configuration
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Data    DataConfig    `yaml:"data"`
	LLM     LLMConfig     `yaml:"llm"`
	Report  ReportConfig  `yaml:"report"`
	Store   StoreConfig   `yaml:"store"`
	Logging logger.Config `yaml:"logging"`

	Secrets Secrets `yaml:"-"`
}

type ServerConfig struct {
	Addr         string        `yaml:"addr"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`

	// LLM-backed routes allow this many requests per client per minute.
	RateLimit int `yaml:"rate_limit"`
}

type DataConfig struct {
	Source         string `yaml:"source"` // file, eodhd, sec
	Dir            string `yaml:"dir"`    // Hjson statement files for the file source
	EODHDBaseURL   string `yaml:"eodhd_base_url"`
	EODHDExchange  string `yaml:"eodhd_exchange"`
	EODHDRateLimit int    `yaml:"eodhd_rate_limit"` // requests per second
	NewsLimit      int    `yaml:"news_limit"`
}

type LLMConfig struct {
	ModelsFile  string `yaml:"models_file"`
	PromptsFile string `yaml:"prompts_file"`
}

type ReportConfig struct {
	MaxConcurrency int    `yaml:"max_concurrency"`
	Precision      int    `yaml:"precision"`
	OutDir         string `yaml:"out_dir"`
}

type StoreConfig struct {
	Dir string `yaml:"dir"`
}

// Secrets are read from the environment only.
type Secrets struct {
	EODHDAPIKey string
	DatabaseURL string
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:         ":8080",
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 5 * time.Minute,
			RateLimit:    10,
		},
		Data: DataConfig{
			Source:         SourceFile,
			Dir:            "testdata/data",
			EODHDBaseURL:   "https://eodhd.com/api",
			EODHDExchange:  "US",
			EODHDRateLimit: 5,
			NewsLimit:      25,
		},
		LLM: LLMConfig{
			ModelsFile:  "config/models.yaml",
			PromptsFile: "config/prompts.yaml",
		},
		Report: ReportConfig{
			MaxConcurrency: 3,
			Precision:      4,
			OutDir:         "reports",
		},
		Store: StoreConfig{
			Dir: ".cache/reports",
		},
		Logging: logger.Config{
			Level:         "info",
			Format:        "pretty",
			FilePath:      "logs",
			RotationSize:  50,
			RetentionDays: 14,
		},
	}
}

// Load reads path over the defaults. A missing file keeps the defaults.
// Environment variables override file values.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Warn().Err(err).Msg("failed to read .env file")
	}

	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
			log.Debug().Str("path", path).Msg("config file not found, using defaults")
		case err != nil:
			return nil, fmt.Errorf("failed to read config: %w", err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
			}
		}
	}

	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	c.Data.Source = getEnv("FA_DATA_SOURCE", c.Data.Source)
	c.Data.Dir = getEnv("FA_DATA_DIR", c.Data.Dir)
	c.Server.Addr = getEnv("FA_ADDR", c.Server.Addr)
	c.Logging.Level = getEnv("LOG_LEVEL", c.Logging.Level)
	c.Logging.Format = getEnv("LOG_FORMAT", c.Logging.Format)
	c.Report.MaxConcurrency = getEnvInt("FA_MAX_CONCURRENCY", c.Report.MaxConcurrency)

	c.Secrets = Secrets{
		EODHDAPIKey: os.Getenv("EODHD_API_KEY"),
		DatabaseURL: os.Getenv("DATABASE_URL"),
	}
}

// Validate checks settings that would otherwise fail late.
func (c *Config) Validate() error {
	switch c.Data.Source {
	case SourceFile, SourceSEC:
	case SourceEODHD:
		if c.Secrets.EODHDAPIKey == "" {
			return fmt.Errorf("data source %q requires EODHD_API_KEY", c.Data.Source)
		}
	default:
		return fmt.Errorf("unknown data source %q (want file, eodhd or sec)", c.Data.Source)
	}
	if c.Report.MaxConcurrency < 1 {
		return fmt.Errorf("report.max_concurrency must be at least 1")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return fallback
}
