package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fortuna/fastbreak/internal/api/rest"
	"github.com/fortuna/fastbreak/internal/api/websocket"
	"github.com/fortuna/fastbreak/internal/cache"
	"github.com/fortuna/fastbreak/internal/config"
	"github.com/fortuna/fastbreak/internal/dataset"
	"github.com/fortuna/fastbreak/internal/fetch"
	"github.com/fortuna/fastbreak/internal/ingest/players"
	"github.com/fortuna/fastbreak/internal/ingest/teams"
	"github.com/fortuna/fastbreak/internal/logger"
	"github.com/fortuna/fastbreak/internal/pipeline"
)

const (
	serviceName    = "fastbreak-server"
	serviceVersion = "1.0.0"
)

func main() {
	log := logger.New(os.Getenv("LOG_LEVEL"))
	log.Info().Str("version", serviceVersion).Msgf("Starting %s - season trend service", serviceName)

	cfg, err := config.Load(log)
	if err != nil {
		log.Fatal().Err(err).Msg("load configuration")
	}

	opts := []fetch.Option{
		fetch.WithInterval(cfg.FetchInterval),
		fetch.WithLogger(log),
	}

	if cfg.RenderedFetch {
		src := fetch.NewRenderedSource()
		defer src.Close()
		opts = append(opts, fetch.WithSource(src))
		log.Info().Msg("✓ rendered fetch enabled")
	}

	if cfg.RedisURL != "" {
		pages, err := cache.NewRedisPages(cfg.RedisURL, cfg.CacheTTL, log)
		if err != nil {
			log.Fatal().Err(err).Msg("connect page cache")
		}
		defer pages.Close()
		opts = append(opts, fetch.WithCache(pages))
		log.Info().Msg("✓ connected to Redis page cache")
	}

	client := fetch.NewClient(opts...)

	runner := pipeline.NewRunner(
		dataset.NewAssembler(
			players.NewBuilder(client, cfg.PlayerTotalsURL, cfg.PlayerTotalsSelector, cfg.PlayerAdvancedURL, cfg.PlayerAdvSelector, log),
			teams.NewBuilder(client, cfg.TeamPageURL, cfg.TeamTableSelector, log),
			cfg.FetchConcurrency,
			log,
		),
		dataset.NewCleaner(cfg.TeamAliases, log),
		cfg.ReferenceTeam,
		log,
	)

	wsServer := websocket.NewServer(log)
	svc := pipeline.NewService(runner, wsServer.Reporter(), log)
	restServer := rest.NewServer(cfg.Port, svc, cfg.StartYear, cfg.EndYear, log)

	go func() {
		if err := wsServer.Start(cfg.WSPort); err != nil {
			log.Error().Err(err).Msg("websocket server stopped")
		}
	}()

	go func() {
		log.Info().Str("port", cfg.Port).Msg("✓ REST API listening")
		if err := restServer.Start(); err != nil {
			log.Error().Err(err).Msg("REST server stopped")
		}
	}()

	// Wait for shutdown signal.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := restServer.Shutdown(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("REST shutdown")
	}
	if err := wsServer.Shutdown(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("websocket shutdown")
	}
	if err := svc.Shutdown(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("run service shutdown")
	}

	log.Info().Msg("✓ shutdown complete")
}
