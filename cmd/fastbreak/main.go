package main

import (
	"context"
	"flag"
	"os"

	"github.com/rs/zerolog"

	"github.com/fortuna/fastbreak/internal/cache"
	"github.com/fortuna/fastbreak/internal/config"
	"github.com/fortuna/fastbreak/internal/dataset"
	"github.com/fortuna/fastbreak/internal/export"
	"github.com/fortuna/fastbreak/internal/fetch"
	"github.com/fortuna/fastbreak/internal/ingest/players"
	"github.com/fortuna/fastbreak/internal/ingest/teams"
	"github.com/fortuna/fastbreak/internal/logger"
	"github.com/fortuna/fastbreak/internal/pipeline"
)

const (
	appName    = "fastbreak"
	appVersion = "1.0.0"
)

func main() {
	log := logger.New(os.Getenv("LOG_LEVEL"))
	log.Info().Str("version", appVersion).Msgf("=== %s ===", appName)

	cfg, err := config.Load(log)
	if err != nil {
		log.Fatal().Err(err).Msg("load configuration")
	}

	var (
		startYear = flag.Int("start", cfg.StartYear, "First season year (inclusive)")
		endYear   = flag.Int("end", cfg.EndYear, "Last season year (inclusive)")
		outDir    = flag.String("out", cfg.OutputDir, "Directory for the CSV output")
		refTeam   = flag.String("ref-team", cfg.ReferenceTeam, "Reference team absorbed into the regression intercept")
		rendered  = flag.Bool("rendered", cfg.RenderedFetch, "Fetch pages through a headless browser")
		redisURL  = flag.String("redis-url", cfg.RedisURL, "Redis URL for the page cache (empty disables caching)")
	)
	flag.Parse()

	opts := []fetch.Option{
		fetch.WithInterval(cfg.FetchInterval),
		fetch.WithLogger(log),
	}

	if *rendered {
		src := fetch.NewRenderedSource()
		defer src.Close()
		opts = append(opts, fetch.WithSource(src))
		log.Info().Msg("using rendered (headless browser) fetch")
	}

	if *redisURL != "" {
		pages, err := cache.NewRedisPages(*redisURL, cfg.CacheTTL, log)
		if err != nil {
			log.Fatal().Err(err).Msg("connect page cache")
		}
		defer pages.Close()
		opts = append(opts, fetch.WithCache(pages))
		log.Info().Msg("page cache enabled")
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
		*refTeam,
		log,
	)

	result, err := runner.Run(context.Background(), *startYear, *endYear, &consoleReporter{log: log})
	if err != nil {
		log.Fatal().Err(err).Msg("run failed")
	}

	if err := export.WriteAll(*outDir, result.Players, result.Teams, result.Trends); err != nil {
		log.Fatal().Err(err).Msg("write output")
	}

	if result.Trends != nil {
		top := result.Trends.Trends
		if len(top) > 3 {
			top = top[:3]
		}
		for _, trend := range top {
			log.Info().Str("team", trend.Team).Float64("slope", trend.Slope).Msg("top trend")
		}
	}
	log.Info().Str("dir", *outDir).Msg("✓ run completed successfully")
}

// consoleReporter prints run progress to the log.
type consoleReporter struct {
	log zerolog.Logger
}

func (r *consoleReporter) OnRunStart(startYear, endYear int) {
	r.log.Info().Msgf("scraping seasons %d-%d", startYear, endYear)
}

func (r *consoleReporter) OnSeasonDone(year int, ds string, rows int, err error) {
	if err != nil {
		r.log.Warn().Int("year", year).Str("dataset", ds).Err(err).Msg("season failed")
		return
	}
	r.log.Info().Int("year", year).Str("dataset", ds).Int("rows", rows).Msg("season done")
}

func (r *consoleReporter) OnProgress(message string, current, total int) {
	r.log.Debug().Msgf("[%d/%d] %s", current, total, message)
}

func (r *consoleReporter) OnRunComplete(result *pipeline.Result) {
	r.log.Info().
		Int("players", len(result.Players)).
		Int("teams", len(result.Teams)).
		Int("season_failures", len(result.Failures)).
		Msg("datasets assembled")
	if len(result.Failures) > 0 {
		for _, f := range result.Failures {
			r.log.Warn().Int("year", f.Year).Str("dataset", f.Dataset).Str("error", f.Err).Msg("season skipped")
		}
	}
}

func (r *consoleReporter) OnRunError(err error) {
	r.log.Error().Err(err).Msg("run aborted")
}
