// AngelaMos | 2026
// main.go

package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/carterperez-dev/currency-tracker/internal/admin"
	"github.com/carterperez-dev/currency-tracker/internal/config"
	"github.com/carterperez-dev/currency-tracker/internal/core"
	"github.com/carterperez-dev/currency-tracker/internal/currency"
	"github.com/carterperez-dev/currency-tracker/internal/health"
	"github.com/carterperez-dev/currency-tracker/internal/ingest"
	"github.com/carterperez-dev/currency-tracker/internal/metrics"
	"github.com/carterperez-dev/currency-tracker/internal/middleware"
	"github.com/carterperez-dev/currency-tracker/internal/model"
	"github.com/carterperez-dev/currency-tracker/internal/page"
	"github.com/carterperez-dev/currency-tracker/internal/rate"
	"github.com/carterperez-dev/currency-tracker/internal/server"
	"github.com/carterperez-dev/currency-tracker/internal/store"
	"github.com/carterperez-dev/currency-tracker/internal/store/memory"
	"github.com/carterperez-dev/currency-tracker/internal/store/sqlstore"
	"github.com/carterperez-dev/currency-tracker/internal/user"
)

const (
	drainDelay     = 5 * time.Second
	feedCacheSize  = 16
	memoryCacheTTL = 5 * time.Minute
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

//nolint:funlen // bootstrap code is inherently verbose
func run(configPath string) error {
	ctx, stop := signal.NotifyContext(
		context.Background(),
		syscall.SIGINT,
		syscall.SIGTERM,
	)
	defer stop()

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logger := setupLogger(cfg.Log)
	slog.SetDefault(logger)

	logger.Info("starting application",
		"name", cfg.App.Name,
		"version", cfg.App.Version,
		"environment", cfg.App.Environment,
		"store", cfg.Database.Driver,
	)

	var telemetry *core.Telemetry
	if cfg.Otel.Enabled {
		tel, telErr := core.NewTelemetry(ctx, cfg.Otel, cfg.App)
		if telErr != nil {
			logger.Warn("failed to initialize telemetry", "error", telErr)
		} else {
			telemetry = tel
			logger.Info("OpenTelemetry tracer initialized",
				"endpoint", cfg.Otel.Endpoint,
			)
		}
	}

	st, db, err := openStore(ctx, cfg.Database, logger)
	if err != nil {
		return err
	}

	if err := saveApp(ctx, st, cfg.App); err != nil {
		return err
	}

	if cfg.Database.Seed {
		seeded, seedErr := store.Seed(ctx, st)
		if seedErr != nil {
			return seedErr
		}
		if seeded {
			logger.Info("sample data loaded")
		}
	}

	var (
		rdb          *core.Redis
		limiterRedis *redis.Client
	)
	if cfg.Redis.URL != "" {
		rdb, err = core.NewRedis(ctx, cfg.Redis)
		if err != nil {
			return err
		}
		limiterRedis = rdb.Client
		logger.Info("redis connected",
			"pool_size", cfg.Redis.PoolSize,
		)
	}

	var feedCache rate.Cache
	if rdb != nil {
		feedCache = rate.NewRedisCache(rdb.Client)
	} else {
		ttl := cfg.Provider.CacheTTL
		if ttl <= 0 {
			ttl = memoryCacheTTL
		}
		feedCache = rate.NewMemoryCache(feedCacheSize, ttl)
	}

	m := metrics.New()

	rateClient := rate.NewClient(cfg.Provider,
		rate.WithCache(feedCache),
		rate.WithLogger(logger),
	)

	controller := currency.NewController(st, rateClient, logger)

	job := ingest.NewJob(controller, rateClient,
		ingest.WithRecorder(m),
		ingest.WithLogger(logger),
	)

	var scheduler *ingest.Scheduler
	if cfg.Ingest.Enabled {
		scheduler = ingest.NewScheduler(job, cfg.Ingest, logger)
		if err := scheduler.Start(ctx); err != nil {
			return err
		}
		logger.Info("rate ingestion scheduled", "interval", cfg.Ingest.Interval)
	}

	renderer, err := page.NewTemplateRenderer()
	if err != nil {
		return err
	}

	userSvc := user.NewService(st)

	var healthHandler *health.Handler
	adminCfg := admin.HandlerConfig{
		Store:      st,
		Currencies: controller,
		Ingest:     job,
		StorePing:  st.Ping,
	}
	if db != nil {
		adminCfg.DBStats = db.Stats
	}
	if rdb != nil {
		healthHandler = health.NewHandler(st, rdb)
		adminCfg.RedisStats = rdb.PoolStats
		adminCfg.RedisPing = rdb.Ping
	} else {
		healthHandler = health.NewHandler(st, nil)
	}

	srv := server.New(server.Config{
		ServerConfig:  cfg.Server,
		HealthHandler: healthHandler,
		Logger:        logger,
	})

	router := srv.Router()

	router.Use(middleware.RequestID)
	router.Use(middleware.Recoverer)
	router.Use(middleware.Logger(logger))
	if cfg.Metrics.Enabled {
		router.Use(m.Middleware)
	}
	trusted, err := middleware.ParseTrustedProxies(cfg.RateLimit.TrustedProxies)
	if err != nil {
		return err
	}
	limitKey := middleware.KeyByClient(trusted)
	if cfg.RateLimit.Scope == "endpoint" {
		limitKey = middleware.KeyByEndpoint(trusted)
	}

	router.Use(
		middleware.NewRateLimiter(limiterRedis, middleware.RateLimitConfig{
			KeyFunc: limitKey,
			Limit: middleware.Window(
				cfg.RateLimit.Requests,
				cfg.RateLimit.Burst,
				cfg.RateLimit.Window,
			),
			Exempt:   middleware.ExemptPaths("/healthz", "/livez", "/readyz", cfg.Metrics.Path),
			FailOpen: true,
		}).Handler,
	)
	router.Use(middleware.SecurityHeaders(cfg.IsProduction()))
	router.Use(middleware.CORS(cfg.CORS))

	handlers := server.Handlers{
		Users: user.NewHandler(userSvc),
		Currencies: currency.NewHandler(currency.HandlerConfig{
			Controller: controller,
			Refresher:  job,
			Details:    rateClient,
			Quotes:     rateClient,
			Logger:     logger,
		}),
		Ingest: ingest.NewHandler(job),
		Admin:  admin.NewHandler(adminCfg),
		Pages: page.NewHandler(page.HandlerConfig{
			Catalog:    st,
			Users:      userSvc,
			Currencies: controller,
			Refresher:  job,
			Renderer:   renderer,
			App:        cfg.App,
			Logger:     logger,
		}),
	}
	if cfg.Metrics.Enabled {
		handlers.Metrics = m
		handlers.MetricsPath = cfg.Metrics.Path
	}
	srv.Mount(handlers)

	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Start()
	}()

	select {
	case err := <-errChan:
		return err
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		cfg.Server.ShutdownTimeout+drainDelay+5*time.Second,
	)
	defer cancel()

	if scheduler != nil {
		scheduler.Stop(shutdownCtx)
	}

	if err := srv.Shutdown(shutdownCtx, drainDelay); err != nil {
		logger.Error("server shutdown error", "error", err)
	}

	if telemetry != nil {
		if err := telemetry.Shutdown(shutdownCtx); err != nil {
			logger.Error("telemetry shutdown error", "error", err)
		}
	}

	if rdb != nil {
		if err := rdb.Close(); err != nil {
			logger.Error("redis close error", "error", err)
		}
	}

	if err := st.Close(); err != nil {
		logger.Error("store close error", "error", err)
	}

	logger.Info("application stopped")
	return nil
}

// openStore returns the configured store. db is nil for the memory driver.
func openStore(
	ctx context.Context,
	cfg config.DatabaseConfig,
	logger *slog.Logger,
) (store.Store, *core.Database, error) {
	if cfg.Driver == config.DriverMemory {
		return memory.New(), nil, nil
	}

	db, err := core.NewDatabase(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	logger.Info("database connected",
		"driver", cfg.Driver,
		"max_open_conns", cfg.MaxOpenConns,
		"max_idle_conns", cfg.MaxIdleConns,
	)

	if err := core.Migrate(ctx, db); err != nil {
		_ = db.Close() //nolint:errcheck // cleanup on migration failure
		return nil, nil, err
	}

	return sqlstore.New(db), db, nil
}

func saveApp(ctx context.Context, st store.AppStore, cfg config.AppConfig) error {
	author, err := model.NewAuthor(cfg.AuthorName, cfg.AuthorGroup)
	if err != nil {
		return fmt.Errorf("app author: %w", err)
	}

	app, err := model.NewApp(cfg.Name, cfg.Version, author)
	if err != nil {
		return fmt.Errorf("app metadata: %w", err)
	}

	return st.SaveApp(ctx, app)
}

func setupLogger(cfg config.LogConfig) *slog.Logger {
	var handler slog.Handler

	level := slog.LevelInfo
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	opts := &slog.HandlerOptions{Level: level}

	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	return slog.New(handler)
}
