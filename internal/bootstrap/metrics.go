package bootstrap

import (
	"log/slog"

	"github.com/musicclouds/web/config"
	"github.com/musicclouds/web/internal/observability/statsd"
)

// NewMetricsClient builds the StatsD client from observability config. When
// metrics are disabled the client drops every sample.
func NewMetricsClient(cfg config.ObservabilityMetricsConfig, isDev bool, logger *slog.Logger) (*statsd.Client, error) {
	env := "prod"
	if isDev {
		env = "dev"
	}
	return statsd.NewClient(statsd.Config{
		Enabled: cfg.IsEnabled(),
		Address: cfg.StatsdAddress,
		Prefix:  cfg.Prefix,
		Tags:    map[string]string{"env": env},
		Logger:  logger,
	})
}
