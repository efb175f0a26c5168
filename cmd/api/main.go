// AngelaMos | 2026
// main.go

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"

	"github.com/carterperez-dev/stackrec/internal/admin"
	"github.com/carterperez-dev/stackrec/internal/archetype"
	"github.com/carterperez-dev/stackrec/internal/auth"
	"github.com/carterperez-dev/stackrec/internal/catalog"
	"github.com/carterperez-dev/stackrec/internal/config"
	"github.com/carterperez-dev/stackrec/internal/core"
	"github.com/carterperez-dev/stackrec/internal/evidence"
	"github.com/carterperez-dev/stackrec/internal/health"
	"github.com/carterperez-dev/stackrec/internal/middleware"
	"github.com/carterperez-dev/stackrec/internal/recommend"
	"github.com/carterperez-dev/stackrec/internal/server"
	"github.com/carterperez-dev/stackrec/internal/stack"
	"github.com/carterperez-dev/stackrec/internal/stackcache"
	"github.com/carterperez-dev/stackrec/internal/supervisor"
	"github.com/carterperez-dev/stackrec/internal/verifier"
)

const (
	drainDelay = 5 * time.Second
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	migrate := flag.Bool("migrate", false, "create missing tables before serving")
	flag.Parse()

	if err := run(*configPath, *migrate); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

//nolint:funlen,gocyclo // bootstrap code is inherently verbose
func run(configPath string, migrate bool) error {
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
	)

	telemetry, err := core.NewTelemetry(ctx, cfg.Otel, cfg.App)
	if err != nil {
		logger.Warn("failed to initialize telemetry", "error", err)
	} else if cfg.Otel.Enabled {
		logger.Info("OpenTelemetry tracer initialized",
			"endpoint", cfg.Otel.Endpoint,
		)
	}

	var db *core.Database
	if cfg.Catalog.Source == config.CatalogSourcePostgres || cfg.Evidence.Enabled {
		db, err = core.NewDatabase(ctx, cfg.Database)
		if err != nil {
			return err
		}
		defer closeWith(logger, "database", db.Close)
		logger.Info("database connected",
			"max_open_conns", cfg.Database.MaxOpenConns,
			"max_idle_conns", cfg.Database.MaxIdleConns,
		)

		if migrate {
			if err := db.EnsureSchema(ctx); err != nil {
				return err
			}
			logger.Info("database schema ensured")
		}
	}

	var rdb *core.Redis
	if cfg.Redis.URL != "" {
		rdb, err = core.NewRedis(ctx, cfg.Redis)
		if err != nil {
			return err
		}
		defer closeWith(logger, "redis", rdb.Close)
		logger.Info("redis connected", "pool_size", cfg.Redis.PoolSize)
	}

	store, closeStore, err := stackcache.Open(cfg.Cache, redisClient(rdb))
	if err != nil {
		return err
	}
	defer closeWith(logger, "stack cache", closeStore)
	cache := stackcache.New(store)
	logger.Info("stack cache ready", "backend", cfg.Cache.Backend)

	provider, err := newCatalog(cfg.Catalog, db)
	if err != nil {
		return err
	}

	archetypes, err := archetype.Load(cfg.Archetypes.Path)
	if err != nil {
		return err
	}
	logger.Info("archetype table loaded", "archetypes", archetypes.Len())

	builder := stack.NewBuilder(
		stack.WithDefaultCommissionRate(cfg.Recommend.DefaultCommissionRate),
		stack.WithGoalDepth(cfg.Recommend.GoalDepth),
		stack.WithCoreCategories(cfg.Recommend.CoreCategories...),
	)

	checker := verifier.NewHTTPChecker(verifier.CheckerConfig{
		Timeout:      cfg.Verifier.CheckTimeout,
		UserAgent:    cfg.Verifier.UserAgent,
		PerHostRate:  cfg.Verifier.PerHostRate,
		PerHostBurst: cfg.Verifier.PerHostBurst,
	}, nil)

	stackVerifier := verifier.New(cache, provider, builder, archetypes, checker, verifier.Config{
		Workers: cfg.Verifier.Workers,
		Retry: core.RetryPolicy{
			Attempts: cfg.Verifier.RetryAttempts,
			Backoff:  cfg.Verifier.RetryBackoff,
		},
		PassTimeout:     cfg.Verifier.PassTimeout,
		MaxEntries:      cfg.Recommend.MaxEntries,
		MarkUnavailable: cfg.Verifier.MarkUnavailable,
	})
	verifierSvc := verifier.NewService(
		stackVerifier,
		cfg.Verifier.Interval,
		cfg.Verifier.WarmOnStart,
	)

	var annotator recommend.Annotator
	if cfg.Evidence.Enabled {
		annotator = evidence.NewAnnotator(
			evidence.NewRepository(db.DB),
			cfg.Evidence.Limit,
		)
	}

	recommendSvc := recommend.NewService(
		archetype.NewMatcher(archetype.DefaultWeights()),
		archetypes,
		cache,
		provider,
		builder,
		annotator,
		recommend.Config{
			ConfidenceThreshold: cfg.Recommend.ConfidenceThreshold,
			MaxEntries:          cfg.Recommend.MaxEntries,
		},
	)

	deps := []health.Dependency{{Name: "stack_cache", Checker: cache}}
	if db != nil {
		deps = append(deps, health.Dependency{Name: "database", Checker: db})
	}
	if rdb != nil && cfg.Cache.Backend != config.CacheBackendRedis {
		deps = append(deps, health.Dependency{
			Name:     "redis",
			Checker:  rdb,
			Optional: true,
		})
	}
	healthHandler := health.NewHandler(deps...)

	adminCfg := admin.HandlerConfig{
		Cache:       cache,
		Verify:      verifierSvc,
		Regenerator: stackVerifier,
	}
	if db != nil {
		adminCfg.DBStats = db.Stats
		adminCfg.DBPing = db.Ping
	}
	if rdb != nil {
		adminCfg.RedisStats = rdb.PoolStats
		adminCfg.RedisPing = rdb.Ping
	}
	adminHandler := admin.NewHandler(adminCfg)

	srv := server.New(server.Config{
		ServerConfig:  cfg.Server,
		Metrics:       cfg.Metrics,
		HealthHandler: healthHandler,
		Logger:        logger,
		DrainDelay:    drainDelay,
	})

	router := srv.Router()

	router.Use(middleware.RequestID)
	router.Use(middleware.Tracing)
	router.Use(middleware.Logger(logger))
	router.Use(
		middleware.NewRateLimiter(redisClient(rdb), middleware.RateLimitConfig{
			Limit: middleware.PerWindow(
				cfg.RateLimit.Requests,
				cfg.RateLimit.Burst,
				cfg.RateLimit.Window,
			),
			FailOpen:   true,
			BypassFunc: middleware.BypassProbes,
		}).Handler,
	)
	router.Use(middleware.SecurityHeaders(cfg.IsProduction()))
	router.Use(middleware.CORS(cfg.CORS))

	srv.Mount()

	adminGuard, err := newAdminGuard(cfg.Auth)
	if err != nil {
		return err
	}
	if adminGuard == nil {
		logger.Warn("admin routes are disabled: auth.enabled is false")
	}

	router.Route("/v1", func(r chi.Router) {
		recommend.NewHandler(recommendSvc, archetypes).RegisterRoutes(r)
		if adminGuard != nil {
			adminHandler.RegisterRoutes(r, adminGuard...)
		}
	})

	tree := supervisor.NewTree(logger, supervisor.TreeConfig{
		ShutdownTimeout: cfg.Server.ShutdownTimeout + drainDelay + 5*time.Second,
	})
	tree.AddAPIService(supervisor.NewHTTPService(
		srv,
		cfg.Server.ShutdownTimeout+drainDelay,
	))
	if cfg.Verifier.Enabled {
		tree.AddBackgroundService(verifierSvc)
	}

	if err := tree.Serve(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("supervisor stopped", "error", err)
	}
	logger.Info("supervisor tree stopped")

	if unstopped, err := tree.UnstoppedServiceReport(); err == nil && len(unstopped) > 0 {
		logger.Warn("services did not stop in time", "count", len(unstopped))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := telemetry.Shutdown(shutdownCtx); err != nil {
		logger.Error("telemetry shutdown error", "error", err)
	}

	logger.Info("application stopped")
	return nil
}

func newCatalog(cfg config.CatalogConfig, db *core.Database) (*catalog.ResilientProvider, error) {
	var inner catalog.Provider

	switch cfg.Source {
	case config.CatalogSourcePostgres:
		inner = catalog.NewRepository(db.DB)
	case config.CatalogSourceFile:
		snapshot, err := catalog.LoadSnapshotFile(cfg.SnapshotPath)
		if err != nil {
			return nil, err
		}
		slog.Info("catalog snapshot loaded", "products", snapshot.Len())
		inner = catalog.NewStatic(snapshot)
	default:
		return nil, fmt.Errorf("unknown catalog source %q", cfg.Source)
	}

	return catalog.NewResilientProvider(inner, catalog.ResilienceConfig{
		Name: "catalog",
		Retry: core.RetryPolicy{
			Attempts: cfg.RetryAttempts,
			Backoff:  cfg.RetryBackoff,
		},
		BreakerFailures:  cfg.BreakerFailures,
		BreakerOpenAfter: cfg.BreakerOpenAfter,
	}), nil
}

func newAdminGuard(cfg config.AuthConfig) ([]func(http.Handler) http.Handler, error) {
	if !cfg.Enabled {
		return nil, nil
	}

	tokens, err := auth.NewVerifier(cfg)
	if err != nil {
		return nil, err
	}

	return []func(http.Handler) http.Handler{
		middleware.Authenticator(tokens),
		middleware.RequireAdmin,
	}, nil
}

func redisClient(r *core.Redis) *redis.Client {
	if r == nil {
		return nil
	}
	return r.Client
}

func closeWith(logger *slog.Logger, name string, closeFn func() error) {
	if err := closeFn(); err != nil {
		logger.Error(name+" close error", "error", err)
	}
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
