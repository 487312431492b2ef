package app

import (
	"context"
	"fmt"
	"net/http"

	"github.com/fauzanhakim/league-hub/external/espn"
	"github.com/fauzanhakim/league-hub/external/sleeper"
	"github.com/fauzanhakim/league-hub/internal/config"
	"github.com/fauzanhakim/league-hub/internal/domain/league"
	"github.com/fauzanhakim/league-hub/internal/domain/result"
	"github.com/fauzanhakim/league-hub/internal/infrastructure/repository/memory"
	"github.com/fauzanhakim/league-hub/internal/infrastructure/repository/postgres"
	"github.com/fauzanhakim/league-hub/internal/interfaces/httpapi"
	"github.com/fauzanhakim/league-hub/internal/platform/cache"
	"github.com/fauzanhakim/league-hub/internal/platform/logging"
	"github.com/fauzanhakim/league-hub/internal/platform/resilience"
	"github.com/fauzanhakim/league-hub/internal/usecase"
)

// App bundles the wired service for main: the HTTP server, the refresh
// scheduler and the aggregator behind both.
type App struct {
	Server     *http.Server
	Scheduler  *usecase.RefreshScheduler
	Aggregator *usecase.AggregatorService
	Identity   league.UserIdentity

	closers []func() error
}

func New(ctx context.Context, cfg config.Config, logger *logging.Logger) (*App, error) {
	if logger == nil {
		logger = logging.Default()
	}

	identity := league.UserIdentity{
		ESPNSWID:        cfg.ESPNSWID,
		ESPNS2:          cfg.ESPNS2,
		SleeperUsername: cfg.SleeperUsername,
		SleeperUserID:   cfg.SleeperUserID,
	}

	// The Sleeper client is always built: its public state endpoint is
	// the season clock even when no Sleeper identity is configured.
	sleeperClient := sleeper.NewClient(sleeper.ClientConfig{
		BaseURL:      cfg.SleeperBaseURL,
		StatsBaseURL: cfg.SleeperStatsBaseURL,
		Timeout:      cfg.SleeperTimeout,
		MaxRetries:   cfg.SleeperMaxRetries,
		Logger:       logger,
		CircuitBreaker: resilience.CircuitBreakerConfig{
			Enabled:          cfg.SleeperCircuitEnabled,
			FailureThreshold: cfg.SleeperCircuitFailureCount,
			OpenTimeout:      cfg.SleeperCircuitOpenTimeout,
			HalfOpenMaxReq:   cfg.SleeperCircuitHalfOpenMaxReq,
		},
	})
	sleeperProvider := usecase.NewSleeperProvider(sleeperClient, logger)
	if cfg.CacheEnabled {
		sleeperProvider = sleeperProvider.WithStatsCache(cache.NewStore(cfg.CacheTTL))
	}

	providers := make([]usecase.LeagueProvider, 0, 2)
	if cfg.HasSleeperIdentity() {
		providers = append(providers, sleeperProvider)
	}
	if cfg.HasESPNIdentity() {
		espnClient := espn.NewClient(espn.ClientConfig{
			BaseURL:    cfg.ESPNBaseURL,
			FanBaseURL: cfg.ESPNFanBaseURL,
			Timeout:    cfg.ESPNTimeout,
			MaxRetries: cfg.ESPNMaxRetries,
			Logger:     logger,
			CircuitBreaker: resilience.CircuitBreakerConfig{
				Enabled:          cfg.ESPNCircuitEnabled,
				FailureThreshold: cfg.ESPNCircuitFailureCount,
				OpenTimeout:      cfg.ESPNCircuitOpenTimeout,
				HalfOpenMaxReq:   cfg.ESPNCircuitHalfOpenMaxReq,
			},
		})
		providers = append(providers, usecase.NewESPNProvider(espnClient, logger))
	}
	if len(providers) == 0 {
		return nil, fmt.Errorf("no platform identity configured")
	}

	var closers []func() error
	var snapshots result.SnapshotRepository
	if cfg.DBEnabled {
		db, err := openDB(ctx, cfg)
		if err != nil {
			return nil, err
		}
		closers = append(closers, db.Close)
		snapshots = postgres.NewSnapshotRepository(db)
		logger.InfoContext(ctx, "snapshot store ready", "backend", "postgres", "db", dbNameFromURL(cfg.DBURL))
	} else {
		snapshots = memory.NewSnapshotRepository()
		logger.InfoContext(ctx, "snapshot store ready", "backend", "memory")
	}

	aggregator := usecase.NewAggregatorService(providers, sleeperProvider, snapshots, logger, usecase.AggregatorConfig{
		MaxWorkers:   cfg.MaxWorkers,
		FallbackYear: cfg.FallbackSeasonYear,
		FallbackWeek: cfg.FallbackWeek,
	})

	restoreYear := cfg.FallbackSeasonYear
	if year, _, err := sleeperProvider.CurrentWeek(ctx); err == nil && year > 0 {
		restoreYear = year
	}
	if restored, err := aggregator.RestoreFromSnapshots(ctx, restoreYear); err != nil {
		logger.WarnContext(ctx, "restore persisted results", "error", err)
	} else if restored > 0 {
		logger.InfoContext(ctx, "restored persisted results", "count", restored, "year", restoreYear)
	}

	scheduler, err := usecase.NewRefreshScheduler(aggregator, identity, cfg.RefreshInterval, logger)
	if err != nil {
		return nil, fmt.Errorf("build refresh scheduler: %w", err)
	}

	handler := httpapi.NewHandler(aggregator, identity, logger)
	router := httpapi.NewRouter(handler, logger, cfg.CORSAllowedOrigins, cfg.RefreshToken)

	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}
	if server.Addr == "" {
		return nil, fmt.Errorf("http server addr cannot be empty")
	}

	return &App{
		Server:     server,
		Scheduler:  scheduler,
		Aggregator: aggregator,
		Identity:   identity,
		closers:    closers,
	}, nil
}

// Close releases resources the app owns, currently the DB pool.
func (a *App) Close() error {
	var firstErr error
	for _, closeFn := range a.closers {
		if err := closeFn(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
