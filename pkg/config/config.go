package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Server        ServerConfig        `yaml:"server"`
	Database      DatabaseConfig      `yaml:"database"`
	Redis         RedisConfig         `yaml:"redis"`
	RateLimit     RateLimitConfig     `yaml:"rate_limit"`
	Audit         AuditConfig         `yaml:"audit"`
	CORS          CORSConfig          `yaml:"cors"`
	Observability ObservabilityConfig `yaml:"observability"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Host            string        `yaml:"host"`
	Port            string        `yaml:"port"`
	ReadTimeout     Duration `yaml:"read_timeout"`
	WriteTimeout    Duration `yaml:"write_timeout"`
	IdleTimeout     Duration `yaml:"idle_timeout"`
	ShutdownTimeout Duration `yaml:"shutdown_timeout"`

	// Health/metrics server (separate port for k8s probes)
	HealthPort string `yaml:"health_port"`
}

// DatabaseConfig holds datastore settings. URL accepts postgres:// for
// deployments and sqlite:// for local development.
type DatabaseConfig struct {
	URL         string        `yaml:"url"`
	ReplicaURLs string        `yaml:"replica_urls"`
	MaxConns    int           `yaml:"max_conns"`
	MinConns    int           `yaml:"min_conns"`
	Timeout     Duration `yaml:"timeout"`
}

// RedisConfig holds Redis settings for the distributed rate limiter.
type RedisConfig struct {
	URL      string `yaml:"url"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// RateLimitConfig holds rate limiting settings.
type RateLimitConfig struct {
	Enabled       bool          `yaml:"enabled"`
	Requests      int           `yaml:"requests"`
	Window        Duration `yaml:"window"`
	MaxClients    int           `yaml:"max_clients"`
	// Distributed selects the Redis-backed limiter; requires Redis.URL.
	Distributed bool `yaml:"distributed"`
}

// AuditConfig holds search-log settings.
type AuditConfig struct {
	Enabled       bool   `yaml:"enabled"`
	FilePath      string `yaml:"file_path"` // mirror to NDJSON files when set
	RetentionDays int    `yaml:"retention_days"`
	Schedule      string `yaml:"schedule"`
	Archive       bool   `yaml:"archive"`

	S3Region       string `yaml:"s3_region"`
	S3Bucket       string `yaml:"s3_bucket"`
	S3Prefix       string `yaml:"s3_prefix"`
	S3Endpoint     string `yaml:"s3_endpoint"`
	S3AccessKey    string `yaml:"s3_access_key"`
	S3SecretKey    string `yaml:"s3_secret_key"`
	S3UsePathStyle bool   `yaml:"s3_use_path_style"`
}

// CORSConfig holds cross-origin settings.
type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// ObservabilityConfig holds observability settings.
type ObservabilityConfig struct {
	LogLevel       string `yaml:"log_level"`
	MetricsEnabled bool   `yaml:"metrics_enabled"`

	OTelEnabled        bool   `yaml:"otel_enabled"`
	OTelEndpoint       string `yaml:"otel_endpoint"`
	OTelServiceName    string `yaml:"otel_service_name"`
	OTelServiceVersion string `yaml:"otel_service_version"`
	OTelInsecure       bool   `yaml:"otel_insecure"`
}

// LoadConfig loads configuration from environment variables.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Host:            getEnv("ROSTER_HOST", "0.0.0.0"),
			Port:            getEnv("ROSTER_PORT", "8080"),
			ReadTimeout:     getEnvDuration("ROSTER_READ_TIMEOUT", 15*time.Second),
			WriteTimeout:    getEnvDuration("ROSTER_WRITE_TIMEOUT", 15*time.Second),
			IdleTimeout:     getEnvDuration("ROSTER_IDLE_TIMEOUT", 60*time.Second),
			ShutdownTimeout: getEnvDuration("ROSTER_SHUTDOWN_TIMEOUT", 30*time.Second),
			HealthPort:      getEnv("ROSTER_HEALTH_PORT", "9090"),
		},
		Database: DatabaseConfig{
			URL:         getEnv("ROSTER_DATABASE_URL", "sqlite://roster.db"),
			ReplicaURLs: getEnv("ROSTER_DATABASE_REPLICA_URLS", ""),
			MaxConns:    getEnvInt("ROSTER_DATABASE_MAX_CONNS", 25),
			MinConns:    getEnvInt("ROSTER_DATABASE_MIN_CONNS", 5),
			Timeout:     getEnvDuration("ROSTER_DATABASE_TIMEOUT", 30*time.Second),
		},
		Redis: RedisConfig{
			URL:      getEnv("ROSTER_REDIS_URL", ""),
			Password: getEnv("ROSTER_REDIS_PASSWORD", ""),
			DB:       getEnvInt("ROSTER_REDIS_DB", 0),
		},
		RateLimit: RateLimitConfig{
			Enabled:     getEnvBool("ROSTER_RATELIMIT_ENABLED", true),
			Requests:    getEnvInt("ROSTER_RATELIMIT_REQUESTS", 100),
			Window:      getEnvDuration("ROSTER_RATELIMIT_WINDOW", time.Minute),
			MaxClients:  getEnvInt("ROSTER_RATELIMIT_MAX_CLIENTS", 10000),
			Distributed: getEnvBool("ROSTER_RATELIMIT_DISTRIBUTED", false),
		},
		Audit: AuditConfig{
			Enabled:       getEnvBool("ROSTER_AUDIT_ENABLED", true),
			FilePath:      getEnv("ROSTER_AUDIT_FILE_PATH", ""),
			RetentionDays: getEnvInt("ROSTER_AUDIT_RETENTION_DAYS", 90),
			Schedule:      getEnv("ROSTER_AUDIT_SCHEDULE", "0 3 * * *"),
			Archive:       getEnvBool("ROSTER_AUDIT_ARCHIVE", false),

			S3Region:       getEnv("ROSTER_AUDIT_S3_REGION", "us-east-1"),
			S3Bucket:       getEnv("ROSTER_AUDIT_S3_BUCKET", ""),
			S3Prefix:       getEnv("ROSTER_AUDIT_S3_PREFIX", "search-logs"),
			S3Endpoint:     getEnv("ROSTER_AUDIT_S3_ENDPOINT", ""),
			S3AccessKey:    getEnv("ROSTER_AUDIT_S3_ACCESS_KEY", ""),
			S3SecretKey:    getEnv("ROSTER_AUDIT_S3_SECRET_KEY", ""),
			S3UsePathStyle: getEnvBool("ROSTER_AUDIT_S3_USE_PATH_STYLE", false),
		},
		CORS: CORSConfig{
			AllowedOrigins: splitNonEmpty(getEnv("ROSTER_CORS_ORIGINS", "*")),
		},
		Observability: ObservabilityConfig{
			LogLevel:           getEnv("ROSTER_LOG_LEVEL", "info"),
			MetricsEnabled:     getEnvBool("ROSTER_METRICS_ENABLED", true),
			OTelEnabled:        getEnvBool("ROSTER_OTEL_ENABLED", false),
			OTelEndpoint:       getEnv("ROSTER_OTEL_ENDPOINT", "localhost:4317"),
			OTelServiceName:    getEnv("ROSTER_OTEL_SERVICE_NAME", "rosterd"),
			OTelServiceVersion: getEnv("ROSTER_OTEL_SERVICE_VERSION", "1.0.0"),
			OTelInsecure:       getEnvBool("ROSTER_OTEL_INSECURE", true),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("server port is required")
	}
	if c.Server.HealthPort == "" {
		return fmt.Errorf("health port is required")
	}
	if c.Server.Port == c.Server.HealthPort {
		return fmt.Errorf("server port and health port must be different")
	}

	if c.Database.URL == "" {
		return fmt.Errorf("database URL is required")
	}
	if !strings.HasPrefix(c.Database.URL, "postgres://") &&
		!strings.HasPrefix(c.Database.URL, "postgresql://") &&
		!strings.HasPrefix(c.Database.URL, "sqlite://") {
		return fmt.Errorf("database URL must use postgres:// or sqlite:// scheme")
	}

	if c.RateLimit.Enabled {
		if c.RateLimit.Requests <= 0 || c.RateLimit.Window <= 0 {
			return fmt.Errorf("rate limit requests and window must be positive")
		}
		if c.RateLimit.Distributed && c.Redis.URL == "" {
			return fmt.Errorf("redis URL is required for distributed rate limiting")
		}
	}

	if c.Audit.Archive && c.Audit.S3Bucket == "" {
		return fmt.Errorf("audit S3 bucket is required when archiving is enabled")
	}

	if c.Observability.OTelEnabled && c.Observability.OTelEndpoint == "" {
		return fmt.Errorf("OpenTelemetry endpoint is required when OTel is enabled")
	}

	return nil
}

func splitNonEmpty(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// getEnv returns an environment variable value or a default
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBool returns a boolean environment variable or a default
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return strings.ToLower(value) == "true" || value == "1"
	}
	return defaultValue
}

// getEnvInt returns an integer environment variable or a default
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// getEnvDuration returns a duration environment variable or a default
func getEnvDuration(key string, defaultValue time.Duration) Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return Duration(duration)
		}
	}
	return Duration(defaultValue)
}
