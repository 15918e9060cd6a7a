package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	pb "github.com/sbilibin2017/proto-exchange/exchange"
	"github.com/segmentio/kafka-go"
	httpSwagger "github.com/swaggo/http-swagger"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	_ "github.com/sbilibin2017/gw-exchange-rates/docs"
	"github.com/sbilibin2017/gw-exchange-rates/internal/config"
	"github.com/sbilibin2017/gw-exchange-rates/internal/handlers"
	"github.com/sbilibin2017/gw-exchange-rates/internal/logger"
	"github.com/sbilibin2017/gw-exchange-rates/internal/metrics"
	"github.com/sbilibin2017/gw-exchange-rates/internal/middlewares"
	"github.com/sbilibin2017/gw-exchange-rates/internal/migrations"
	"github.com/sbilibin2017/gw-exchange-rates/internal/providers"
	"github.com/sbilibin2017/gw-exchange-rates/internal/repositories"
	"github.com/sbilibin2017/gw-exchange-rates/internal/services"
)

// Build info variables, set via ldflags at build time.
var (
	buildVersion = "N/A" // Version of the service
	buildDate    = "N/A" // Build date
	buildCommit  = "N/A" // Git commit hash
)

// @title gw-exchange-rates API
// @version 1.0.0
// @description Exchange rate resolution service with a persistent cache in front of an external provider
// @host localhost:8080
// @BasePath /
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	printBuildInfo()
	configPath := parseFlags()

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("failed to parse config: %v", err)
	}

	if err := run(context.Background(), cfg); err != nil {
		log.Fatalf("application stopped with error: %v", err)
	}
}

// printBuildInfo prints the build version, commit hash, and build date.
func printBuildInfo() {
	fmt.Printf("Build version: %s\nBuild date: %s\nBuild commit: %s\n", buildVersion, buildDate, buildCommit)
}

// parseFlags parses command-line flags and returns the config file path.
func parseFlags() string {
	c := flag.String("c", "config.env", "Path to configuration file")
	flag.Parse()
	return *c
}

// run wires storage, provider, services and the HTTP server, then serves
// until ctx is done or a termination signal arrives.
func run(ctx context.Context, cfg *config.Config) error {
	if err := logger.Initialize(cfg.App.LogLevel, cfg.App.LogFormat); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer logger.Sync()

	var db *sqlx.DB
	if cfg.Cache.Enabled || cfg.Limit.Backend == config.LimitBackendPostgres {
		var err error
		db, err = openPostgres(ctx, cfg.Postgres)
		if err != nil {
			return err
		}
		defer db.Close()

		if err := migrations.Up(db.DB); err != nil {
			return err
		}
	}

	store, err := repositories.NewRateCacheRepository(ctx, db, cfg.Cache.Enabled)
	if err != nil {
		return err
	}

	var requestLog services.RequestLog
	switch cfg.Limit.Backend {
	case config.LimitBackendRedis:
		rdb, err := openRedis(ctx, cfg.Redis)
		if err != nil {
			return err
		}
		defer rdb.Close()
		requestLog = repositories.NewRedisRequestLogRepository(rdb, time.Hour)
	default:
		requestLog = repositories.NewRequestLogRepository(db)
	}

	provider, closeProvider, err := newProvider(cfg)
	if err != nil {
		return err
	}
	defer closeProvider()

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(reg)

	opts := []services.ResolverOption{
		services.WithCacheCurrencies(cfg.Cache.Currencies),
		services.WithProviderTimeout(cfg.Provider.Timeout),
		services.WithMetrics(m),
	}
	if writer := newKafkaWriter(cfg.Kafka); writer != nil {
		defer writer.Close()
		opts = append(opts, services.WithEventWriter(writer))
	}
	resolver := services.NewRateResolver(store, provider, opts...)

	auth, err := services.NewAuthenticator(cfg.Auth.Enabled, cfg.Auth.Secret, cfg.Auth.Mode, cfg.Auth.TokenTTL)
	if err != nil {
		return err
	}
	if !auth.Enabled() {
		logger.Log.Warn("authentication is disabled, every request is accepted")
	}
	limiter := services.NewRequestLimiter(requestLog, cfg.Limit.PerHour, cfg.Limit.PerSecond, m)

	r := newRouter(cfg.App, resolver, auth, limiter, provider, m, reg)

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%s", cfg.App.Host, cfg.App.Port),
		Handler: r,
	}

	// Graceful shutdown
	errChan := make(chan error, 1)
	ctxShutdown, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()

	go func() {
		logger.Log.Infof("HTTP server listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- fmt.Errorf("HTTP server failed: %w", err)
		}
	}()

	select {
	case <-ctxShutdown.Done():
		logger.Log.Info("Shutdown signal received, stopping HTTP server...")
	case serveErr := <-errChan:
		return serveErr
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.Errorw("HTTP server shutdown error", "error", err)
	}

	logger.Log.Info("HTTP server stopped gracefully")
	return nil
}

func newRouter(
	app config.App,
	resolver handlers.RateResolver,
	auth *services.Authenticator,
	limiter handlers.Limiter,
	provider handlers.ProviderInfo,
	m *metrics.Metrics,
	gatherer prometheus.Gatherer,
) chi.Router {
	r := chi.NewRouter()
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(middlewares.LoggingMiddleware(logger.Log, m))
	r.Use(middlewares.CORSMiddleware(app.CORSOrigin))

	handlers.RegisterHealthHandler(r, handlers.NewHealthHandler())
	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middlewares.GetOnlyMiddleware)

		handlers.RegisterGetRateHandler(r, handlers.NewGetRateHandler(resolver, auth, limiter))

		r.Group(func(r chi.Router) {
			r.Use(middlewares.AuthMiddleware(auth))
			handlers.RegisterGetCurrenciesHandler(r, handlers.NewGetCurrenciesHandler(provider))
			handlers.RegisterGetProviderStatusHandler(r, handlers.NewGetProviderStatusHandler(provider))
		})
	})

	return r
}

func openPostgres(ctx context.Context, cfg config.Postgres) (*sqlx.DB, error) {
	logger.Log.Infow("connecting to PostgreSQL", "host", cfg.Host, "port", cfg.Port, "db", cfg.DB)

	db, err := sqlx.ConnectContext(ctx, "pgx", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("PostgreSQL connection error: %w", err)
	}
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	return db, nil
}

func openRedis(ctx context.Context, cfg config.Redis) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr(),
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("Redis connection error: %w", err)
	}
	return rdb, nil
}

// newProvider builds the configured rate provider and its cleanup func.
func newProvider(cfg *config.Config) (services.RateProvider, func(), error) {
	switch cfg.Provider.Name {
	case config.ProviderExchanger:
		addr := cfg.Exchanger.Addr()
		conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to gRPC service at %s: %w", addr, err)
		}
		return providers.NewExchangerProvider(pb.NewExchangeServiceClient(conn)), func() { conn.Close() }, nil
	case config.ProviderFixer:
		p := providers.NewFixerProvider(cfg.Provider.APIKey, cfg.Provider.Host(), cfg.Provider.HTTPS, cfg.Provider.Timeout)
		return p, func() {}, nil
	case config.ProviderExchangeRatesAPI:
		p := providers.NewExchangeRatesAPIProvider(cfg.Provider.APIKey, cfg.Provider.Host(), cfg.Provider.HTTPS, cfg.Provider.Timeout)
		return p, func() {}, nil
	default:
		p := providers.NewCurrencyLayerProvider(cfg.Provider.APIKey, cfg.Provider.Host(), cfg.Provider.HTTPS, cfg.Provider.Timeout)
		return p, func() {}, nil
	}
}

// newKafkaWriter returns nil when no brokers are configured.
func newKafkaWriter(cfg config.Kafka) *kafka.Writer {
	if len(cfg.Brokers) == 0 {
		return nil
	}
	return &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers...),
		Topic:                  cfg.Topic,
		Balancer:               &kafka.LeastBytes{},
		AllowAutoTopicCreation: true,
		Async:                  true,
	}
}
