// Package app assembles the mall API from its configuration and runs it.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"slices"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/ny-kanto/mall-api/internal/auth"
	"github.com/ny-kanto/mall-api/internal/config"
	"github.com/ny-kanto/mall-api/internal/event"
	handler "github.com/ny-kanto/mall-api/internal/handler/http"
	"github.com/ny-kanto/mall-api/internal/migrations"
	"github.com/ny-kanto/mall-api/internal/repository/postgres"
	"github.com/ny-kanto/mall-api/internal/repository/redis"
	"github.com/ny-kanto/mall-api/internal/service"
	"github.com/ny-kanto/mall-api/pkg/database"
	"github.com/ny-kanto/mall-api/pkg/health"
	pkgkafka "github.com/ny-kanto/mall-api/pkg/kafka"
	"github.com/ny-kanto/mall-api/pkg/middleware"
	"github.com/ny-kanto/mall-api/pkg/tracing"
)

const (
	serviceName    = "mall-api"
	serviceVersion = "1.0.0"

	startupTimeout  = 30 * time.Second
	shutdownTimeout = 10 * time.Second
)

// resource is something opened during startup and released on shutdown.
type resource struct {
	name  string
	close func(context.Context) error
}

// App owns the HTTP server and every connection it depends on.
type App struct {
	logger    *slog.Logger
	server    *http.Server
	resources []resource
}

// NewApp connects to PostgreSQL, Redis and, when events are enabled, Kafka,
// migrates the schema and builds the HTTP server. On failure whatever was
// already opened is released.
func NewApp(cfg *config.Config, logger *slog.Logger) (_ *App, err error) {
	ctx, cancel := context.WithTimeout(context.Background(), startupTimeout)
	defer cancel()

	a := &App{logger: logger}
	defer func() {
		if err != nil {
			_ = a.release(context.Background())
		}
	}()

	shutdownTracer, err := tracing.InitTracer(ctx, cfg.Tracing(serviceName, serviceVersion))
	if err != nil {
		return nil, fmt.Errorf("init tracer: %w", err)
	}
	a.own("tracer", shutdownTracer)

	pool, err := a.openPostgres(ctx, cfg)
	if err != nil {
		return nil, err
	}
	rdb, err := a.openRedis(ctx, cfg)
	if err != nil {
		return nil, err
	}
	producer := a.openKafka(cfg)

	checks := health.NewHandler()
	checks.Register("postgres", pool.Ping)
	checks.Register("redis", func(ctx context.Context) error { return rdb.Ping(ctx).Err() })
	var publisher event.Publisher
	if producer != nil {
		publisher = producer
		// Events are best effort, so an unreachable broker only degrades readiness.
		checks.RegisterNonCritical("kafka", producer.Ping)
	}

	router := handler.NewRouter(
		newServices(cfg, pool, event.NewProducer(publisher, logger), logger),
		auth.NewVerifier(cfg.JWTSecret, redis.NewTokenDenylist(rdb)),
		checks,
		handler.RouterConfig{
			CORS:              corsConfig(cfg),
			PprofAllowedCIDRs: cfg.PprofAllowedCIDRs,
			ReviewBounds:      cfg.ReviewBounds(),
			RateLimitRPS:      cfg.RateLimitRPS,
			RateLimitBurst:    cfg.RateLimitBurst,
		},
		logger,
	)

	a.server = &http.Server{
		Addr:              ":" + strconv.Itoa(cfg.HTTPPort),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return a, nil
}

func (a *App) own(name string, closeFn func(context.Context) error) {
	a.resources = append(a.resources, resource{name: name, close: closeFn})
}

func (a *App) openPostgres(ctx context.Context, cfg *config.Config) (*pgxpool.Pool, error) {
	pgCfg := cfg.Postgres()
	pool, err := database.NewPostgresPoolWithLogger(ctx, &pgCfg, a.logger)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}
	a.own("postgres", func(context.Context) error { pool.Close(); return nil })
	a.logger.Info("connected to PostgreSQL",
		slog.String("host", pgCfg.Host),
		slog.Int("port", pgCfg.Port),
		slog.String("database", pgCfg.DBName),
	)

	if err := database.RunMigrations(ctx, pool, migrations.FS, a.logger); err != nil {
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	database.RegisterPoolMetrics(pool, serviceName)
	database.SetSlowQueryLogging(cfg.SlowQueryThreshold(), a.logger)
	return pool, nil
}

func (a *App) openRedis(ctx context.Context, cfg *config.Config) (*goredis.Client, error) {
	rcfg := cfg.Redis()
	rdb, err := database.NewRedisClient(ctx, rcfg)
	if err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	a.own("redis", func(context.Context) error { return rdb.Close() })
	a.logger.Info("connected to Redis", slog.String("addr", rcfg.Addr()))
	return rdb, nil
}

// openKafka returns nil when events are disabled.
func (a *App) openKafka(cfg *config.Config) *pkgkafka.Producer {
	if !cfg.EventsEnabled {
		a.logger.Info("domain events disabled")
		return nil
	}
	p := pkgkafka.NewProducer(pkgkafka.DefaultProducerConfig(cfg.KafkaBrokers), a.logger)
	a.own("kafka", func(context.Context) error { return p.Close() })
	a.logger.Info("kafka producer initialized", slog.Any("brokers", cfg.KafkaBrokers))
	return p
}

func newServices(cfg *config.Config, pool *pgxpool.Pool, events *event.Producer, logger *slog.Logger) handler.Services {
	reviews := postgres.NewReviewRepository(pool)
	ratables := postgres.NewRatableRepository(pool)
	boutiques := postgres.NewBoutiqueRepository(pool)
	categories := postgres.NewCategorieRepository(pool)

	return handler.Services{
		Reviews: service.NewReviewService(reviews, ratables,
			service.NewRatingAggregator(reviews, ratables, events, logger), events, logger),
		Boutiques: service.NewBoutiqueService(boutiques, cfg.Location(), cfg.CatalogBounds(), logger),
		Produits: service.NewProduitService(postgres.NewProduitRepository(pool), boutiques, categories,
			postgres.NewUserRepository(pool), cfg.CatalogBounds(), logger),
		Categories: service.NewCategorieService(categories),
		Zones:      service.NewZoneService(postgres.NewZoneRepository(pool), logger),
		Favoris:    service.NewFavoriService(postgres.NewFavoriRepository(pool), logger),
	}
}

func corsConfig(cfg *config.Config) middleware.CORSConfig {
	c := middleware.DefaultCORSConfig()
	c.AllowedOrigins = cfg.CORSAllowedOrigins
	c.Environment = cfg.Environment
	return c
}

// Run serves HTTP until ctx is cancelled or the listener fails, then shuts
// everything down.
func (a *App) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		a.logger.Info("starting HTTP server", slog.String("addr", a.server.Addr))
		if err := a.server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		a.logger.Info("shutting down")
		return a.Shutdown()
	})
	return g.Wait()
}

// Shutdown drains in-flight requests, then releases resources in the
// reverse order they were opened so spans of drained requests are flushed
// before the tracer stops.
func (a *App) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	var errs []error
	if err := a.server.Shutdown(ctx); err != nil {
		a.logger.Error("http server shutdown", slog.String("error", err.Error()))
		errs = append(errs, err)
	}
	errs = append(errs, a.release(ctx))

	if err := errors.Join(errs...); err != nil {
		return err
	}
	a.logger.Info("shutdown complete")
	return nil
}

func (a *App) release(ctx context.Context) error {
	var errs []error
	for _, r := range slices.Backward(a.resources) {
		if err := r.close(ctx); err != nil {
			a.logger.Error("close "+r.name, slog.String("error", err.Error()))
			errs = append(errs, fmt.Errorf("close %s: %w", r.name, err))
		}
	}
	a.resources = nil
	return errors.Join(errs...)
}
