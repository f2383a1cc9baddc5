// Package logger configures the global zerolog logger.
package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Config holds logger configuration
type Config struct {
	Level          string `yaml:"level"`  // debug, info, warn, error
	Format         string `yaml:"format"` // json, pretty
	FileEnabled    bool   `yaml:"file_enabled"`
	FilePath       string `yaml:"file_path"`     // logs directory path
	RotationSize   int    `yaml:"rotation_size"` // MB
	RetentionDays  int    `yaml:"retention_days"`
	ServiceName    string `yaml:"-"`
	ServiceVersion string `yaml:"-"`

	// Console overrides the console destination (stderr).
	Console io.Writer `yaml:"-"`
}

// Init initializes the global logger
func Init(cfg Config) error {
	if cfg.Level == "" {
		cfg.Level = "info"
	}
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		return fmt.Errorf("invalid log level: %w", err)
	}
	zerolog.SetGlobalLevel(level)
	zerolog.TimeFieldFormat = time.RFC3339

	console := cfg.Console
	if console == nil {
		console = os.Stderr
	}

	var writers []io.Writer
	if cfg.Format == "pretty" {
		writers = append(writers, zerolog.ConsoleWriter{
			Out:        console,
			TimeFormat: "15:04:05",
		})
	} else {
		writers = append(writers, console)
	}

	if cfg.FileEnabled {
		if err := os.MkdirAll(cfg.FilePath, 0o755); err != nil {
			return fmt.Errorf("failed to create log directory: %w", err)
		}

		writers = append(writers, rotatingFile(cfg, "app.log"))
		// Error log (ERROR and above only)
		writers = append(writers, &minLevelWriter{
			Writer: rotatingFile(cfg, "error.log"),
			min:    zerolog.ErrorLevel,
		})
	}

	logger := zerolog.New(zerolog.MultiLevelWriter(writers...)).With().
		Timestamp().
		Str("service", cfg.ServiceName).
		Str("version", cfg.ServiceVersion).
		Logger()
	log.Logger = logger

	log.Debug().
		Str("level", cfg.Level).
		Str("format", cfg.Format).
		Bool("file_enabled", cfg.FileEnabled).
		Msg("Logger initialized")

	return nil
}

func rotatingFile(cfg Config, name string) *lumberjack.Logger {
	return &lumberjack.Logger{
		Filename:   filepath.Join(cfg.FilePath, name),
		MaxSize:    cfg.RotationSize, // MB
		MaxAge:     cfg.RetentionDays,
		MaxBackups: 10,
		Compress:   true,
	}
}

// minLevelWriter drops events below min.
type minLevelWriter struct {
	io.Writer
	min zerolog.Level
}

func (w *minLevelWriter) WriteLevel(l zerolog.Level, p []byte) (int, error) {
	if l < w.min {
		return len(p), nil
	}
	return w.Writer.Write(p)
}

// Component returns a child logger tagged with a component name.
func Component(name string) zerolog.Logger {
	return log.With().Str("component", name).Logger()
}
