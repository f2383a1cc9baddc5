package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	"financial_analyst/pkg/app"
	"financial_analyst/pkg/config"
	"financial_analyst/pkg/logger"
)

const version = "1.0.0"

func main() {
	configPath := "config/app.yaml"
	if p := os.Getenv("FA_CONFIG"); p != "" {
		configPath = p
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	logCfg := cfg.Logging
	logCfg.ServiceName = "financial-analyst-api"
	logCfg.ServiceVersion = version
	if err := logger.Init(logCfg); err != nil {
		log.Fatal().Err(err).Msg("failed to initialize logger")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize application")
	}

	err = a.Serve(ctx)
	a.Close()
	if err != nil {
		log.Error().Err(err).Msg("server stopped")
		os.Exit(1)
	}
}
