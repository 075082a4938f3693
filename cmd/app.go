package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"grocer/core/api"
	"grocer/core/config"
	"grocer/core/logger"
	"grocer/core/metrics"
	"grocer/feature/shop"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// app holds what every command needs.
type app struct {
	cfg     *config.Config
	logger  *zap.Logger
	client  *api.Client
	shop    *shop.Service
	metrics *prometheus.Registry
}

// newApp loads the configuration and builds a logged-in shop service.
// Without --email the session logs in anonymously on its first request.
func newApp(ctx context.Context) (*app, error) {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logg, err := logger.New(&cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	reg := prometheus.NewRegistry()
	client, err := api.NewClient(cfg.API, api.WithLogger(logg), api.WithMetrics(metrics.New(reg)))
	if err != nil {
		return nil, fmt.Errorf("failed to create api client: %w", err)
	}

	svc := shop.NewService(client, logg, cfg.Shop.Options()...)
	if emailFlag != "" {
		if err := svc.Login(ctx, emailFlag, passwordFlag); err != nil {
			return nil, err
		}
	}

	return &app{cfg: cfg, logger: logg, client: client, shop: svc, metrics: reg}, nil
}

// printJSON writes v to stdout, indented.
func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
