package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/musicclouds/web/config"
	"github.com/musicclouds/web/internal/bootstrap"
)

func main() {
	ctx := context.Background()
	cfg, err := bootstrap.LoadConfig()
	if err != nil {
		slog.ErrorContext(ctx, "load config", "error", err)
		os.Exit(1) //nolint:forbidigo // Main entrypoint should exit with non-zero status on fatal errors.
	}

	logger := bootstrap.InitLogger(cfg)
	logStartupInfo(ctx, logger, &cfg)

	if err := bootstrap.Run(ctx, &cfg, logger); err != nil {
		logger.ErrorContext(ctx, "fatal error", "error", err)
		os.Exit(1) //nolint:forbidigo // Main entrypoint should exit with non-zero status on fatal errors.
	}
}

func logStartupInfo(ctx context.Context, logger *slog.Logger, cfg *config.AppConfig) {
	logger.InfoContext(ctx, "starting musicclouds web",
		"addr", cfg.HTTP.Addr,
		"credential_store", cfg.Credentials.Store,
		"backend", cfg.Backend.BaseURL,
		"purge_malformed", cfg.Credentials.PurgeMalformed,
		"allow_non_expiring", cfg.Credentials.AllowNonExpiring,
		"metrics_enabled", cfg.Observability.Metrics.IsEnabled(),
		"dev", cfg.IsDev,
	)
}
