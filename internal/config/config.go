// Package config loads runtime configuration from a .env file and the
// environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

// Config holds runtime configuration for both binaries.
type Config struct {
	// Source endpoints. The %d in player URLs is the season year; in the
	// team URL it is the page index (page 1 = most recent season).
	PlayerTotalsURL      string
	PlayerAdvancedURL    string
	TeamPageURL          string
	PlayerTotalsSelector string
	PlayerAdvSelector    string
	TeamTableSelector    string

	// Season range, inclusive.
	StartYear int
	EndYear   int

	// Scrape behavior.
	FetchInterval    time.Duration
	FetchConcurrency int
	RenderedFetch    bool

	// Optional page cache.
	RedisURL string
	CacheTTL time.Duration

	// Analysis and output.
	ReferenceTeam string
	TeamAliases   map[string]string
	OutputDir     string

	// Server.
	Port     string
	WSPort   string
	LogLevel string
}

// Load reads the .env file if present, then the environment.
func Load(log zerolog.Logger) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg(".env file not found, using environment variables or defaults")
	}

	cfg := &Config{
		PlayerTotalsURL:      getEnv("PLAYER_TOTALS_URL", "https://www.basketball-reference.com/leagues/NBA_%d_totals.html"),
		PlayerAdvancedURL:    getEnv("PLAYER_ADVANCED_URL", "https://www.basketball-reference.com/leagues/NBA_%d_advanced.html"),
		TeamPageURL:          getEnv("TEAM_PAGE_URL", "https://www.nbaminer.com/four-factors/?page=%d"),
		PlayerTotalsSelector: getEnv("PLAYER_TOTALS_SELECTOR", "table#totals_stats"),
		PlayerAdvSelector:    getEnv("PLAYER_ADVANCED_SELECTOR", "table#advanced_stats"),
		TeamTableSelector:    getEnv("TEAM_TABLE_SELECTOR", "table"),
		StartYear:            getEnvInt("START_YEAR", 2000),
		EndYear:              getEnvInt("END_YEAR", 2019),
		FetchInterval:        getEnvDuration("FETCH_INTERVAL", 2*time.Second),
		FetchConcurrency:     getEnvInt("FETCH_CONCURRENCY", 4),
		RenderedFetch:        getEnv("RENDERED_FETCH", "false") == "true",
		RedisURL:             getEnv("REDIS_URL", ""),
		CacheTTL:             getEnvDuration("CACHE_TTL", 24*time.Hour),
		ReferenceTeam:        getEnv("REFERENCE_TEAM", "ATL"),
		TeamAliases:          parseAliases(getEnv("TEAM_ALIASES", "TOT=TOR")),
		OutputDir:            getEnv("OUTPUT_DIR", "out"),
		Port:                 getEnv("PORT", "8080"),
		WSPort:               getEnv("WS_PORT", "8081"),
		LogLevel:             getEnv("LOG_LEVEL", "info"),
	}

	if cfg.StartYear > cfg.EndYear {
		return nil, fmt.Errorf("START_YEAR %d is after END_YEAR %d", cfg.StartYear, cfg.EndYear)
	}
	if cfg.FetchConcurrency < 1 {
		cfg.FetchConcurrency = 1
	}

	log.Info().
		Int("start_year", cfg.StartYear).
		Int("end_year", cfg.EndYear).
		Dur("fetch_interval", cfg.FetchInterval).
		Bool("rendered_fetch", cfg.RenderedFetch).
		Bool("page_cache", cfg.RedisURL != "").
		Str("reference_team", cfg.ReferenceTeam).
		Msg("configuration loaded")

	return cfg, nil
}

// parseAliases parses "BAD=GOOD,BAD2=GOOD2" into the alias table.
func parseAliases(raw string) map[string]string {
	aliases := make(map[string]string)
	for _, pair := range strings.Split(raw, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		parts := strings.SplitN(pair, "=", 2)
		if len(parts) != 2 {
			continue
		}
		bad := strings.TrimSpace(parts[0])
		good := strings.TrimSpace(parts[1])
		if bad != "" && good != "" {
			aliases[bad] = good
		}
	}
	return aliases
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
