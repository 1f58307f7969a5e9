package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/wardenhq/warden/pkg/observability"
	"github.com/wardenhq/warden/pkg/store"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	Server ServerConfig

	// Policy store configuration
	Store store.Config

	// Redis configuration (rate limiting)
	Redis RedisConfig

	// Authentication and authorization configuration
	Auth AuthConfig

	// Audit trail configuration
	Audit AuditConfig

	// Observability configuration
	Observability ObservabilityConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host            string
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration

	// Health/metrics server (separate port for k8s probes)
	HealthPort string
}

// RedisConfig holds Redis connection settings
type RedisConfig struct {
	URL      string
	Password string
	DB       int
	PoolSize int
}

// AuthConfig holds identity resolution and decision cache settings
type AuthConfig struct {
	// OIDC issuer for bearer tokens; empty disables bearer auth
	OIDCIssuerURL string
	OIDCClientID  string

	// Auth context cache
	ContextCacheSize int
	ContextCacheTTL  time.Duration

	// Rate limiting for unauthenticated requests
	RateLimitPerMinute int
}

// AuditConfig holds audit trail settings
type AuditConfig struct {
	Enabled bool
	// RetentionDays bounds how long decision events are kept
	RetentionDays int
	// SweepSchedule is a cron expression for the retention sweep
	SweepSchedule string
}

// ObservabilityConfig holds observability settings
type ObservabilityConfig struct {
	// Logging
	LogLevel observability.LogLevel

	// Metrics
	MetricsEnabled bool

	// OpenTelemetry
	OTelEnabled        bool
	OTelEndpoint       string
	OTelServiceName    string
	OTelServiceVersion string
	OTelInsecure       bool
}

// LoadConfig loads configuration. Defaults are overlaid by an optional
// YAML file (WARDEN_CONFIG_FILE), then by environment variables, so env
// always wins.
func LoadConfig() (*Config, error) {
	cfg := defaultConfig()

	if path := os.Getenv("WARDEN_CONFIG_FILE"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	cfg.loadEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            "8080",
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 30 * time.Second,
			HealthPort:      "9090",
		},
		Store: store.DefaultConfig(),
		Redis: RedisConfig{
			URL:      "localhost:6379",
			PoolSize: 10,
		},
		Auth: AuthConfig{
			ContextCacheSize:   4096,
			ContextCacheTTL:    30 * time.Second,
			RateLimitPerMinute: 300,
		},
		Audit: AuditConfig{
			Enabled:       true,
			RetentionDays: 90,
			SweepSchedule: "0 3 * * *",
		},
		Observability: ObservabilityConfig{
			LogLevel:           observability.InfoLevel,
			MetricsEnabled:     true,
			OTelEnabled:        false,
			OTelEndpoint:       "localhost:4317",
			OTelServiceName:    "warden",
			OTelServiceVersion: "1.0.0",
			OTelInsecure:       true,
		},
	}
}

// fileConfig mirrors Config for YAML decoding. Durations and the log
// level arrive as strings; booleans are pointers so an absent key leaves
// the default untouched.
type fileConfig struct {
	Server struct {
		Host            string `yaml:"host"`
		Port            string `yaml:"port"`
		HealthPort      string `yaml:"health_port"`
		ReadTimeout     string `yaml:"read_timeout"`
		WriteTimeout    string `yaml:"write_timeout"`
		IdleTimeout     string `yaml:"idle_timeout"`
		ShutdownTimeout string `yaml:"shutdown_timeout"`
	} `yaml:"server"`
	Store struct {
		PostgresURL  string `yaml:"postgres_url"`
		MaxConns     int    `yaml:"max_conns"`
		MinConns     int    `yaml:"min_conns"`
		QueryTimeout string `yaml:"query_timeout"`
	} `yaml:"store"`
	Redis struct {
		URL      string `yaml:"url"`
		Password string `yaml:"password"`
		DB       *int   `yaml:"db"`
		PoolSize int    `yaml:"pool_size"`
	} `yaml:"redis"`
	Auth struct {
		OIDCIssuerURL      string `yaml:"oidc_issuer_url"`
		OIDCClientID       string `yaml:"oidc_client_id"`
		ContextCacheSize   *int   `yaml:"context_cache_size"`
		ContextCacheTTL    string `yaml:"context_cache_ttl"`
		RateLimitPerMinute int    `yaml:"rate_limit_per_minute"`
	} `yaml:"auth"`
	Audit struct {
		Enabled       *bool  `yaml:"enabled"`
		RetentionDays int    `yaml:"retention_days"`
		SweepSchedule string `yaml:"sweep_schedule"`
	} `yaml:"audit"`
	Observability struct {
		LogLevel           string `yaml:"log_level"`
		MetricsEnabled     *bool  `yaml:"metrics_enabled"`
		OTelEnabled        *bool  `yaml:"otel_enabled"`
		OTelEndpoint       string `yaml:"otel_endpoint"`
		OTelServiceName    string `yaml:"otel_service_name"`
		OTelServiceVersion string `yaml:"otel_service_version"`
		OTelInsecure       *bool  `yaml:"otel_insecure"`
	} `yaml:"observability"`
}

// loadFile overlays configuration from a YAML file
func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	setString(&c.Server.Host, fc.Server.Host)
	setString(&c.Server.Port, fc.Server.Port)
	setString(&c.Server.HealthPort, fc.Server.HealthPort)
	if err := setDuration(&c.Server.ReadTimeout, fc.Server.ReadTimeout); err != nil {
		return err
	}
	if err := setDuration(&c.Server.WriteTimeout, fc.Server.WriteTimeout); err != nil {
		return err
	}
	if err := setDuration(&c.Server.IdleTimeout, fc.Server.IdleTimeout); err != nil {
		return err
	}
	if err := setDuration(&c.Server.ShutdownTimeout, fc.Server.ShutdownTimeout); err != nil {
		return err
	}

	setString(&c.Store.PostgresURL, fc.Store.PostgresURL)
	setInt(&c.Store.MaxConns, fc.Store.MaxConns)
	setInt(&c.Store.MinConns, fc.Store.MinConns)
	if err := setDuration(&c.Store.QueryTimeout, fc.Store.QueryTimeout); err != nil {
		return err
	}

	setString(&c.Redis.URL, fc.Redis.URL)
	setString(&c.Redis.Password, fc.Redis.Password)
	if fc.Redis.DB != nil {
		c.Redis.DB = *fc.Redis.DB
	}
	setInt(&c.Redis.PoolSize, fc.Redis.PoolSize)

	setString(&c.Auth.OIDCIssuerURL, fc.Auth.OIDCIssuerURL)
	setString(&c.Auth.OIDCClientID, fc.Auth.OIDCClientID)
	if fc.Auth.ContextCacheSize != nil {
		c.Auth.ContextCacheSize = *fc.Auth.ContextCacheSize
	}
	if err := setDuration(&c.Auth.ContextCacheTTL, fc.Auth.ContextCacheTTL); err != nil {
		return err
	}
	setInt(&c.Auth.RateLimitPerMinute, fc.Auth.RateLimitPerMinute)

	if fc.Audit.Enabled != nil {
		c.Audit.Enabled = *fc.Audit.Enabled
	}
	setInt(&c.Audit.RetentionDays, fc.Audit.RetentionDays)
	setString(&c.Audit.SweepSchedule, fc.Audit.SweepSchedule)

	if fc.Observability.LogLevel != "" {
		c.Observability.LogLevel = observability.ParseLogLevel(fc.Observability.LogLevel)
	}
	if fc.Observability.MetricsEnabled != nil {
		c.Observability.MetricsEnabled = *fc.Observability.MetricsEnabled
	}
	if fc.Observability.OTelEnabled != nil {
		c.Observability.OTelEnabled = *fc.Observability.OTelEnabled
	}
	setString(&c.Observability.OTelEndpoint, fc.Observability.OTelEndpoint)
	setString(&c.Observability.OTelServiceName, fc.Observability.OTelServiceName)
	setString(&c.Observability.OTelServiceVersion, fc.Observability.OTelServiceVersion)
	if fc.Observability.OTelInsecure != nil {
		c.Observability.OTelInsecure = *fc.Observability.OTelInsecure
	}

	return nil
}

// loadEnv overlays configuration from environment variables
func (c *Config) loadEnv() {
	// Server
	c.Server.Host = getEnv("WARDEN_HOST", c.Server.Host)
	c.Server.Port = getEnv("WARDEN_PORT", c.Server.Port)
	c.Server.HealthPort = getEnv("WARDEN_HEALTH_PORT", c.Server.HealthPort)
	c.Server.ReadTimeout = getEnvDuration("WARDEN_READ_TIMEOUT", c.Server.ReadTimeout)
	c.Server.WriteTimeout = getEnvDuration("WARDEN_WRITE_TIMEOUT", c.Server.WriteTimeout)
	c.Server.IdleTimeout = getEnvDuration("WARDEN_IDLE_TIMEOUT", c.Server.IdleTimeout)
	c.Server.ShutdownTimeout = getEnvDuration("WARDEN_SHUTDOWN_TIMEOUT", c.Server.ShutdownTimeout)

	// Policy store
	c.Store.PostgresURL = getEnv("WARDEN_POSTGRES_URL", c.Store.PostgresURL)
	c.Store.MaxConns = getEnvInt("WARDEN_POSTGRES_MAX_CONNS", c.Store.MaxConns)
	c.Store.MinConns = getEnvInt("WARDEN_POSTGRES_MIN_CONNS", c.Store.MinConns)
	c.Store.QueryTimeout = getEnvDuration("WARDEN_POSTGRES_TIMEOUT", c.Store.QueryTimeout)

	// Redis
	c.Redis.URL = getEnv("WARDEN_REDIS_URL", c.Redis.URL)
	c.Redis.Password = getEnv("WARDEN_REDIS_PASSWORD", c.Redis.Password)
	c.Redis.DB = getEnvInt("WARDEN_REDIS_DB", c.Redis.DB)
	c.Redis.PoolSize = getEnvInt("WARDEN_REDIS_POOL_SIZE", c.Redis.PoolSize)

	// Auth
	c.Auth.OIDCIssuerURL = getEnv("WARDEN_OIDC_ISSUER_URL", c.Auth.OIDCIssuerURL)
	c.Auth.OIDCClientID = getEnv("WARDEN_OIDC_CLIENT_ID", c.Auth.OIDCClientID)
	c.Auth.ContextCacheSize = getEnvInt("WARDEN_CONTEXT_CACHE_SIZE", c.Auth.ContextCacheSize)
	c.Auth.ContextCacheTTL = getEnvDuration("WARDEN_CONTEXT_CACHE_TTL", c.Auth.ContextCacheTTL)
	c.Auth.RateLimitPerMinute = getEnvInt("WARDEN_RATE_LIMIT_PER_MINUTE", c.Auth.RateLimitPerMinute)

	// Audit
	c.Audit.Enabled = getEnvBool("WARDEN_AUDIT_ENABLED", c.Audit.Enabled)
	c.Audit.RetentionDays = getEnvInt("WARDEN_AUDIT_RETENTION_DAYS", c.Audit.RetentionDays)
	c.Audit.SweepSchedule = getEnv("WARDEN_AUDIT_SWEEP_SCHEDULE", c.Audit.SweepSchedule)

	// Observability
	if level := os.Getenv("WARDEN_LOG_LEVEL"); level != "" {
		c.Observability.LogLevel = observability.ParseLogLevel(level)
	}
	c.Observability.MetricsEnabled = getEnvBool("WARDEN_METRICS_ENABLED", c.Observability.MetricsEnabled)
	c.Observability.OTelEnabled = getEnvBool("WARDEN_OTEL_ENABLED", c.Observability.OTelEnabled)
	c.Observability.OTelEndpoint = getEnv("WARDEN_OTEL_ENDPOINT", c.Observability.OTelEndpoint)
	c.Observability.OTelServiceName = getEnv("WARDEN_OTEL_SERVICE_NAME", c.Observability.OTelServiceName)
	c.Observability.OTelServiceVersion = getEnv("WARDEN_OTEL_SERVICE_VERSION", c.Observability.OTelServiceVersion)
	c.Observability.OTelInsecure = getEnvBool("WARDEN_OTEL_INSECURE", c.Observability.OTelInsecure)
}

// Validate checks if the configuration is valid
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

	if c.Store.PostgresURL == "" {
		return fmt.Errorf("postgres URL is required")
	}

	if c.Auth.OIDCIssuerURL != "" && c.Auth.OIDCClientID == "" {
		return fmt.Errorf("OIDC client ID is required when an issuer is configured")
	}
	if c.Auth.ContextCacheSize < 0 {
		return fmt.Errorf("context cache size must not be negative")
	}
	if c.Auth.ContextCacheTTL < 0 {
		return fmt.Errorf("context cache TTL must not be negative")
	}

	if c.Audit.Enabled && c.Audit.RetentionDays <= 0 {
		return fmt.Errorf("audit retention days must be positive when audit is enabled")
	}

	if c.Observability.OTelEnabled {
		if c.Observability.OTelEndpoint == "" {
			return fmt.Errorf("OpenTelemetry endpoint is required when OTel is enabled")
		}
		if c.Observability.OTelServiceName == "" {
			return fmt.Errorf("OpenTelemetry service name is required when OTel is enabled")
		}
	}

	return nil
}

func setString(dst *string, val string) {
	if val != "" {
		*dst = val
	}
}

func setInt(dst *int, val int) {
	if val != 0 {
		*dst = val
	}
}

func setDuration(dst *time.Duration, val string) error {
	if val == "" {
		return nil
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return fmt.Errorf("invalid duration %q in config file: %w", val, err)
	}
	*dst = d
	return nil
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
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
