package main

import (
	"context"
	"net/http"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"

	"github.com/rosterhq/rosterd/pkg/audit"
	"github.com/rosterhq/rosterd/pkg/config"
	"github.com/rosterhq/rosterd/pkg/middleware"
	"github.com/rosterhq/rosterd/pkg/observability"
	"github.com/rosterhq/rosterd/pkg/storage"
)

// connectRedis returns nil when Redis is not configured or unreachable.
// Rate limiting falls back to the in-memory limiter and health reports
// degrade rather than fail.
func connectRedis(cfg *config.Config, logger *observability.Logger) *redis.Client {
	if cfg.Redis.URL == "" {
		return nil
	}
	client, err := storage.NewRedisClient(storage.RedisConfig{
		URL:      cfg.Redis.URL,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		logger.WithError(err).Warn("Redis unavailable, continuing without it")
		return nil
	}
	return client
}

// buildAudit assembles the audit logger chain and the retention sweeper.
// The sweeper is nil when auditing or retention is disabled.
func buildAudit(cfg *config.Config, cm *storage.ConnectionManager, logger *observability.Logger, boot *logrus.Logger) (audit.Logger, *audit.Sweeper) {
	if !cfg.Audit.Enabled {
		return audit.NewNopLogger(), nil
	}

	dbLogger, err := audit.NewDBLogger(cm.Primary(), cm.Driver())
	if err != nil {
		boot.Fatalf("Failed to initialize audit log storage: %v", err)
	}

	loggers := []audit.Logger{dbLogger}
	if cfg.Audit.FilePath != "" {
		fileCfg := audit.DefaultFileLoggerConfig()
		fileCfg.BasePath = cfg.Audit.FilePath
		fileLogger, err := audit.NewFileLogger(fileCfg)
		if err != nil {
			boot.Fatalf("Failed to initialize audit file logger: %v", err)
		}
		loggers = append(loggers, fileLogger)
	}

	var auditor audit.Logger = dbLogger
	if len(loggers) > 1 {
		auditor = audit.NewMultiLogger(loggers...)
	}

	var sweeper *audit.Sweeper
	if cfg.Audit.RetentionDays > 0 {
		var archiver audit.Archiver
		if cfg.Audit.Archive && cfg.Audit.S3Bucket != "" {
			archiver, err = audit.NewS3Archiver(audit.S3ArchiverConfig{
				Region:       cfg.Audit.S3Region,
				Bucket:       cfg.Audit.S3Bucket,
				Prefix:       cfg.Audit.S3Prefix,
				Endpoint:     cfg.Audit.S3Endpoint,
				AccessKey:    cfg.Audit.S3AccessKey,
				SecretKey:    cfg.Audit.S3SecretKey,
				UsePathStyle: cfg.Audit.S3UsePathStyle,
			})
			if err != nil {
				boot.Fatalf("Failed to initialize S3 archiver: %v", err)
			}
		}
		sweeper, err = audit.NewSweeper(dbLogger, archiver, audit.RetentionPolicy{
			MaxAge:   time.Duration(cfg.Audit.RetentionDays) * 24 * time.Hour,
			Schedule: cfg.Audit.Schedule,
			Archive:  cfg.Audit.Archive && archiver != nil,
		}, logger.Slog())
		if err != nil {
			boot.Fatalf("Failed to initialize audit retention sweeper: %v", err)
		}
	}

	return auditor, sweeper
}

// buildRateLimiter picks the distributed limiter when Redis is available
// and distributed mode is on, otherwise the in-memory fixed window. The
// in-memory limiter additionally supports hot reload from the YAML overlay.
func buildRateLimiter(cfg *config.Config, configPath string, redisClient *redis.Client, logger *observability.Logger, boot *logrus.Logger) (func(http.Handler) http.Handler, *config.Watcher) {
	if !cfg.RateLimit.Enabled {
		return nil, nil
	}

	rlCfg := middleware.RateLimitConfig{
		Requests:   cfg.RateLimit.Requests,
		Window:     cfg.RateLimit.Window.Std(),
		MaxClients: cfg.RateLimit.MaxClients,
	}

	if cfg.RateLimit.Distributed && redisClient != nil {
		limiter, err := middleware.NewDistributedRateLimiter(redisClient, rlCfg, "rosterd")
		if err != nil {
			boot.Fatalf("Failed to initialize distributed rate limiter: %v", err)
		}
		return limiter.Handler, nil
	}

	limiter, err := middleware.NewFixedWindowLimiter(rlCfg)
	if err != nil {
		boot.Fatalf("Failed to initialize rate limiter: %v", err)
	}

	var watcher *config.Watcher
	if configPath != "" {
		watcher, err = config.WatchRateLimit(configPath, func(rl config.RateLimitConfig) error {
			return limiter.UpdateConfig(middleware.RateLimitConfig{
				Requests:   rl.Requests,
				Window:     rl.Window.Std(),
				MaxClients: rl.MaxClients,
			})
		})
		if err != nil {
			logger.WithError(err).Warn("Rate limit hot reload disabled")
			watcher = nil
		}
	}

	return limiter.Handler, watcher
}

// pollDBStats mirrors database pool statistics into Prometheus gauges.
func pollDBStats(ctx context.Context, cm *storage.ConnectionManager, metrics *observability.Metrics) {
	ticker := time.NewTicker(15 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			metrics.UpdateDBStats(cm.Stats())
		}
	}
}
