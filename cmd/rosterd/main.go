package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/rosterhq/rosterd/pkg/api"
	"github.com/rosterhq/rosterd/pkg/config"
	"github.com/rosterhq/rosterd/pkg/observability"
	"github.com/rosterhq/rosterd/pkg/orgs"
	"github.com/rosterhq/rosterd/pkg/search"
	"github.com/rosterhq/rosterd/pkg/storage"
	"github.com/rosterhq/rosterd/pkg/visibility"
)

func main() {
	configPath := flag.String("config", "", "Path to YAML config overlay (optional)")
	flag.Parse()

	boot := logrus.New()
	boot.SetLevel(logrus.InfoLevel)

	cfg, err := config.LoadConfig()
	if err != nil {
		boot.Fatalf("Failed to load configuration: %v", err)
	}
	if *configPath != "" {
		if err := cfg.ApplyFile(*configPath); err != nil {
			boot.Fatalf("Failed to apply config file %s: %v", *configPath, err)
		}
		if err := cfg.Validate(); err != nil {
			boot.Fatalf("Invalid configuration after overlay: %v", err)
		}
	}

	logger := observability.NewLogger(observability.ParseLogLevel(cfg.Observability.LogLevel), os.Stdout)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Database pool and optional read replicas.
	pool := storage.DefaultPoolConfig()
	pool.MaxConns = cfg.Database.MaxConns
	pool.MinConns = cfg.Database.MinConns
	pool.Timeout = cfg.Database.Timeout.Std()

	cm, err := storage.NewConnectionManager(cfg.Database.URL, storage.ParseReplicaURLs(cfg.Database.ReplicaURLs), pool, logger.Slog())
	if err != nil {
		boot.Fatalf("Failed to connect to database: %v", err)
	}
	defer cm.Close()

	if err := storage.EnsureSchema(ctx, cm.Primary(), cm.Driver()); err != nil {
		boot.Fatalf("Failed to ensure database schema: %v", err)
	}
	cm.StartHealthCheckRoutine(ctx, time.Minute)

	redisClient := connectRedis(cfg, logger)
	if redisClient != nil {
		defer redisClient.Close()
	}

	auditor, sweeper := buildAudit(cfg, cm, logger, boot)
	if sweeper != nil {
		if err := sweeper.Start(); err != nil {
			boot.Fatalf("Failed to start audit retention sweeper: %v", err)
		}
		defer sweeper.Stop()
	}

	providers, err := observability.InitOTel(ctx, observability.OTelConfig{
		Enabled:        cfg.Observability.OTelEnabled,
		Endpoint:       cfg.Observability.OTelEndpoint,
		ServiceName:    cfg.Observability.OTelServiceName,
		ServiceVersion: cfg.Observability.OTelServiceVersion,
		Insecure:       cfg.Observability.OTelInsecure,
	}, logger)
	if err != nil {
		boot.Fatalf("Failed to initialize OpenTelemetry: %v", err)
	}
	if providers != nil {
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := observability.ShutdownOTel(shutdownCtx, providers, logger); err != nil {
				logger.WithError(err).Warn("OpenTelemetry shutdown reported errors")
			}
		}()
	}

	registry := prometheus.NewRegistry()
	var metrics *observability.Metrics
	if cfg.Observability.MetricsEnabled {
		metrics = observability.NewMetrics(registry)
		go pollDBStats(ctx, cm, metrics)
	}

	rateLimit, watcher := buildRateLimiter(cfg, *configPath, redisClient, logger, boot)
	if watcher != nil {
		defer watcher.Close()
	}

	// The manager goes in whole so every read resolves a live replica;
	// resolving Replica() once would pin a handle the health checker can
	// evict and close.
	columns := visibility.NewStore(cm)
	searchSvc := search.NewService(cm, columns, auditor, logger.Slog())
	orgSvc := orgs.NewService(cm.Primary())

	server := api.NewServer(api.Deps{
		Search:         searchSvc,
		Orgs:           orgSvc,
		Logger:         logger,
		Metrics:        metrics,
		RateLimit:      rateLimit,
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		TraceHTTP:      providers != nil,
	})

	apiServer := &http.Server{
		Addr:         cfg.Server.Host + ":" + cfg.Server.Port,
		Handler:      server.Handler(),
		ReadTimeout:  cfg.Server.ReadTimeout.Std(),
		WriteTimeout: cfg.Server.WriteTimeout.Std(),
		IdleTimeout:  cfg.Server.IdleTimeout.Std(),
	}

	healthMux := http.NewServeMux()
	checker := observability.NewHealthChecker(cm.Primary(), redisClient)
	observability.RegisterHealthRoutes(healthMux, checker)
	if metrics != nil {
		observability.RegisterMetricsEndpoint(healthMux, registry)
	}
	healthServer := &http.Server{
		Addr:        cfg.Server.Host + ":" + cfg.Server.HealthPort,
		Handler:     healthMux,
		ReadTimeout: 5 * time.Second,
		IdleTimeout: 30 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.WithField("addr", apiServer.Addr).Info("Directory API server listening")
		if err := apiServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		logger.WithField("addr", healthServer.Addr).Info("Health and metrics server listening")
		if err := healthServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down servers")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout.Std())
		defer cancel()
		if err := apiServer.Shutdown(shutdownCtx); err != nil {
			logger.WithError(err).Warn("API server shutdown error")
		}
		if err := healthServer.Shutdown(shutdownCtx); err != nil {
			logger.WithError(err).Warn("Health server shutdown error")
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		boot.Fatalf("Server error: %v", err)
	}
	logger.Info("Shutdown complete")
}
