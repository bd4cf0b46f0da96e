// Package app wires configuration into a running service: logger, models,
// catalog sources, HTTP router, and server.  Both the apiserver binary and
// the CLI's serve command boot through it.
package app

import (
	"context"

	"github.com/redis/go-redis/v9"

	"github.com/tradeinlabs/phoneworth/internal/config"
	"github.com/tradeinlabs/phoneworth/internal/domain/catalog"
	"github.com/tradeinlabs/phoneworth/internal/domain/depreciation"
	"github.com/tradeinlabs/phoneworth/internal/domain/valuation"
	"github.com/tradeinlabs/phoneworth/internal/infrastructure/monitoring/logging"
	"github.com/tradeinlabs/phoneworth/internal/infrastructure/monitoring/prometheus"
	"github.com/tradeinlabs/phoneworth/internal/infrastructure/source"
	httpserver "github.com/tradeinlabs/phoneworth/internal/interfaces/http"
	"github.com/tradeinlabs/phoneworth/internal/interfaces/http/handlers"
	"github.com/tradeinlabs/phoneworth/internal/interfaces/http/middleware"
)

// App holds the wired service and the resources it owns.
type App struct {
	Logger logging.Logger
	Store  *catalog.Store

	server  *httpserver.Server
	fileSrc *source.FileSource
	pgSrc   *source.PostgresSource
	redis   *redis.Client
	cached  *source.CachedSource
}

// New wires the full dependency graph from cfg.  The context bounds startup
// work such as the database connectivity check.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	logger, err := newLogger(cfg.Log)
	if err != nil {
		return nil, err
	}

	metrics := prometheus.NewAppMetrics()
	engine := valuation.NewEngine(depreciation.NewRegistry())
	launch := catalog.NewLaunchIndex()

	a := &App{Logger: logger}

	a.fileSrc = source.NewFileSource(cfg.Data.Dir, cfg.Data.Files, logger)
	var src catalog.Source = a.fileSrc

	if cfg.Database.Enabled {
		pg, err := source.NewPostgresSource(ctx, cfg.Database.DSN(), a.fileSrc, logger)
		if err != nil {
			a.Close()
			return nil, err
		}
		a.pgSrc = pg
		src = pg
	}

	if cfg.Redis.Enabled {
		a.redis = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		a.cached = source.NewCachedSource(src, a.redis, cfg.Redis.DefaultTTL, logger)
		src = a.cached
	}

	normalizer := catalog.NewNormalizer(engine, launch, logger)
	a.Store = catalog.NewStore(src, normalizer, logger, catalog.WithStoreMetrics(metrics))

	if cfg.Data.Watch {
		if err := a.fileSrc.Watch(a.invalidate); err != nil {
			logger.Warn("feed watching disabled", logging.Err(err))
		}
	}

	var limiter *middleware.RateLimiter
	if cfg.RateLimit.Enabled {
		rlCfg := middleware.DefaultRateLimitConfig()
		rlCfg.RequestsPerSecond = cfg.RateLimit.RPS
		rlCfg.Burst = cfg.RateLimit.Burst
		limiter = middleware.NewRateLimiter(rlCfg)
	}

	router := httpserver.NewRouter(httpserver.RouterConfig{
		Pricing:     handlers.NewPricingHandler(engine, launch, metrics),
		Catalog:     handlers.NewCatalogHandler(launch, a.Store),
		Recommend:   handlers.NewRecommendHandler(a.Store, metrics),
		Health:      handlers.NewHealthHandler(a.Store),
		Logger:      logger,
		Metrics:     metrics,
		Mode:        cfg.Server.Mode,
		RateLimiter: limiter,
	})
	a.server = httpserver.NewServer(cfg.Server, router, logger)

	return a, nil
}

// Run serves HTTP until ctx is cancelled, then shuts down gracefully and
// releases every owned resource.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() { errCh <- a.server.Start() }()

	select {
	case err := <-errCh:
		a.Close()
		return err
	case <-ctx.Done():
	}

	stopErr := a.server.Stop(context.Background())
	a.Close()
	if stopErr != nil {
		return stopErr
	}
	return <-errCh
}

// Close releases connections and watchers.  Safe on a partially-built App.
func (a *App) Close() {
	if a.fileSrc != nil {
		_ = a.fileSrc.Close()
	}
	if a.pgSrc != nil {
		a.pgSrc.Close()
	}
	if a.redis != nil {
		_ = a.redis.Close()
	}
}

// invalidate drops both cache layers so the next request reloads from the
// primary source.
func (a *App) invalidate() {
	a.Logger.Info("feed change detected, invalidating catalog")
	if a.cached != nil {
		if err := a.cached.Invalidate(context.Background()); err != nil {
			a.Logger.Warn("redis invalidation failed", logging.Err(err))
		}
	}
	a.Store.Invalidate()
}

func newLogger(cfg config.LogConfig) (logging.Logger, error) {
	format := "json"
	if cfg.Format == "text" {
		format = "console"
	}
	return logging.NewLogger(logging.LogConfig{Level: cfg.Level, Format: format})
}
