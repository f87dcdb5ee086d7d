package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/gridironfl/gridiron-bot/internal/app"
	"github.com/gridironfl/gridiron-bot/internal/config"
	"github.com/gridironfl/gridiron-bot/internal/infrastructure/feeds"
	gatewaymem "github.com/gridironfl/gridiron-bot/internal/infrastructure/gateway/memory"
	"github.com/gridironfl/gridiron-bot/internal/platform/logging"
	"github.com/gridironfl/gridiron-bot/internal/platform/resilience"
	"github.com/gridironfl/gridiron-bot/internal/usecase"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := logging.NewJSON(cfg.LogLevel).With(
		"service", cfg.ServiceName,
		"version", cfg.ServiceVersion,
		"env", cfg.AppEnv,
	)
	logging.SetDefault(logger)
	defer func() { _ = logger.Sync() }()

	// The in-memory gateway stands in for the chat platform transport; the
	// deployment wraps this binary's app package with the real connection
	// and seeds nothing.
	gateway := gatewaymem.NewGateway(cfg.GuildID)
	gateway.SeedRole(cfg.RoleLeague, "League Member")
	gateway.SeedRole(cfg.RoleActive, "Active")
	gateway.SeedRole(cfg.RoleInactive, "Inactive")

	var fetcher usecase.FeedFetcher
	if cfg.LeagueNewsURL != "" || cfg.GameNewsURL != "" {
		fetcher = feeds.NewClient(feeds.ClientConfig{
			Timeout:    cfg.FeedTimeout,
			MaxRetries: cfg.FeedMaxRetries,
			Logger:     logger,
			CircuitBreaker: resilience.CircuitBreakerConfig{
				Enabled:          cfg.FeedCircuitEnabled,
				FailureThreshold: cfg.FeedCircuitFailures,
				OpenTimeout:      cfg.FeedCircuitOpenTimeout,
				HalfOpenMaxReq:   cfg.FeedCircuitHalfOpenReq,
			},
		})
	}

	bot, err := app.New(cfg, logger, gateway, fetcher)
	if err != nil {
		logger.Error("build app", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("bot starting", "guild_id", cfg.GuildID, "data_file", cfg.DataFile)
	if err := bot.Run(ctx); err != nil {
		logger.Error("bot stopped with error", "error", err)
		os.Exit(1)
	}

	logger.Info("bot stopped")
}
