// AngelaMos | 2026
// config.go

package config

import (
	"fmt"
	"sync"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

type Config struct {
	App        AppConfig        `koanf:"app"`
	Server     ServerConfig     `koanf:"server"`
	Database   DatabaseConfig   `koanf:"database"`
	Redis      RedisConfig      `koanf:"redis"`
	Cache      CacheConfig      `koanf:"cache"`
	Catalog    CatalogConfig    `koanf:"catalog"`
	Archetypes ArchetypesConfig `koanf:"archetypes"`
	Recommend  RecommendConfig  `koanf:"recommend"`
	Verifier   VerifierConfig   `koanf:"verifier"`
	Evidence   EvidenceConfig   `koanf:"evidence"`
	Auth       AuthConfig       `koanf:"auth"`
	RateLimit  RateLimitConfig  `koanf:"rate_limit"`
	CORS       CORSConfig       `koanf:"cors"`
	Log        LogConfig        `koanf:"log"`
	Otel       OtelConfig       `koanf:"otel"`
	Metrics    MetricsConfig    `koanf:"metrics"`
}

type AppConfig struct {
	Name        string `koanf:"name"`
	Version     string `koanf:"version"`
	Environment string `koanf:"environment"`
}

type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	IdleTimeout     time.Duration `koanf:"idle_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

type DatabaseConfig struct {
	URL             string        `koanf:"url"`
	MaxOpenConns    int           `koanf:"max_open_conns"`
	MaxIdleConns    int           `koanf:"max_idle_conns"`
	ConnMaxLifetime time.Duration `koanf:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `koanf:"conn_max_idle_time"`
}

type RedisConfig struct {
	URL          string `koanf:"url"`
	PoolSize     int    `koanf:"pool_size"`
	MinIdleConns int    `koanf:"min_idle_conns"`
}

// CacheConfig selects the persistence backend behind the stack cache.
type CacheConfig struct {
	Backend    string `koanf:"backend"`
	KeyPrefix  string `koanf:"key_prefix"`
	BadgerPath string `koanf:"badger_path"`
}

// CatalogConfig selects where the product snapshot comes from. The
// postgres source reads the products table, the file source reads a JSON
// snapshot exported by the catalog pipeline.
type CatalogConfig struct {
	Source           string        `koanf:"source"`
	SnapshotPath     string        `koanf:"snapshot_path"`
	RetryAttempts    int           `koanf:"retry_attempts"`
	RetryBackoff     time.Duration `koanf:"retry_backoff"`
	BreakerFailures  uint32        `koanf:"breaker_failures"`
	BreakerOpenAfter time.Duration `koanf:"breaker_open_timeout"`
}

type ArchetypesConfig struct {
	Path string `koanf:"path"`
}

// RecommendConfig drives matching and stack building. GoalDepth is how
// many products one goal may pull in before the core fill runs; 1 keeps
// budget for core items, 2 lets a goal carry a primary and a companion
// product (protein and creatine for muscle-building).
type RecommendConfig struct {
	MaxEntries            int      `koanf:"max_entries"`
	ConfidenceThreshold   float64  `koanf:"confidence_threshold"`
	DefaultCommissionRate float64  `koanf:"default_commission_rate"`
	GoalDepth             int      `koanf:"goal_depth"`
	CoreCategories        []string `koanf:"core_categories"`
}

type VerifierConfig struct {
	Enabled         bool          `koanf:"enabled"`
	Interval        time.Duration `koanf:"interval"`
	Workers         int           `koanf:"workers"`
	CheckTimeout    time.Duration `koanf:"check_timeout"`
	PassTimeout     time.Duration `koanf:"pass_timeout"`
	RetryAttempts   int           `koanf:"retry_attempts"`
	RetryBackoff    time.Duration `koanf:"retry_backoff"`
	PerHostRate     float64       `koanf:"per_host_rate"`
	PerHostBurst    int           `koanf:"per_host_burst"`
	UserAgent       string        `koanf:"user_agent"`
	WarmOnStart     bool          `koanf:"warm_on_start"`
	MarkUnavailable bool          `koanf:"mark_unavailable"`
}

type EvidenceConfig struct {
	Enabled bool `koanf:"enabled"`
	Limit   int  `koanf:"limit"`
}

// AuthConfig points at the identity provider's signing key. Tokens are
// issued elsewhere; this service only verifies them for admin routes.
type AuthConfig struct {
	Enabled       bool   `koanf:"enabled"`
	PublicKeyPath string `koanf:"public_key_path"`
	Issuer        string `koanf:"issuer"`
	Audience      string `koanf:"audience"`
}

type RateLimitConfig struct {
	Requests int           `koanf:"requests"`
	Window   time.Duration `koanf:"window"`
	Burst    int           `koanf:"burst"`
}

type CORSConfig struct {
	AllowedOrigins   []string `koanf:"allowed_origins"`
	AllowedMethods   []string `koanf:"allowed_methods"`
	AllowedHeaders   []string `koanf:"allowed_headers"`
	AllowCredentials bool     `koanf:"allow_credentials"`
	MaxAge           int      `koanf:"max_age"`
}

type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

type OtelConfig struct {
	Endpoint    string  `koanf:"endpoint"`
	ServiceName string  `koanf:"service_name"`
	Enabled     bool    `koanf:"enabled"`
	Insecure    bool    `koanf:"insecure"`
	SampleRate  float64 `koanf:"sample_rate"`
}

type MetricsConfig struct {
	Enabled bool   `koanf:"enabled"`
	Path    string `koanf:"path"`
}

const (
	CacheBackendRedis  = "redis"
	CacheBackendBadger = "badger"
	CacheBackendMemory = "memory"

	CatalogSourcePostgres = "postgres"
	CatalogSourceFile     = "file"
)

var (
	cfg  *Config
	once sync.Once
)

func Load(configPath string) (*Config, error) {
	var loadErr error

	once.Do(func() {
		cfg, loadErr = load(configPath)
	})

	if loadErr != nil {
		return nil, loadErr
	}

	return cfg, nil
}

func load(configPath string) (*Config, error) {
	k := koanf.New(".")

	if err := loadDefaults(k); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}

	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file: %w", err)
		}
	}

	if err := k.Load(env.Provider("", ".", envKeyReplacer), nil); err != nil {
		return nil, fmt.Errorf("load env vars: %w", err)
	}

	c := &Config{}
	if err := k.Unmarshal("", c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := validate(c); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return c, nil
}

func Get() *Config {
	if cfg == nil {
		panic("config not loaded: call Load() first")
	}
	return cfg
}

func loadDefaults(k *koanf.Koanf) error {
	defaults := map[string]any{
		"app.name":        "Stack Recommender",
		"app.version":     "1.0.0",
		"app.environment": "development",

		"server.host":             "0.0.0.0",
		"server.port":             8080,
		"server.read_timeout":     "30s",
		"server.write_timeout":    "30s",
		"server.idle_timeout":     "120s",
		"server.shutdown_timeout": "15s",

		"database.max_open_conns":     25,
		"database.max_idle_conns":     5,
		"database.conn_max_lifetime":  "1h",
		"database.conn_max_idle_time": "30m",

		"redis.pool_size":      10,
		"redis.min_idle_conns": 5,

		"cache.backend":     CacheBackendRedis,
		"cache.key_prefix":  "stackrec:",
		"cache.badger_path": "data/stackcache",

		"catalog.source":               CatalogSourcePostgres,
		"catalog.retry_attempts":       3,
		"catalog.retry_backoff":        "200ms",
		"catalog.breaker_failures":     5,
		"catalog.breaker_open_timeout": "30s",

		"recommend.max_entries":             8,
		"recommend.confidence_threshold":    0.6,
		"recommend.default_commission_rate": 0.01,
		"recommend.goal_depth":              2,
		"recommend.core_categories":         []string{"multivitamin", "omega-3", "vitamin-d3"},

		"verifier.enabled":          true,
		"verifier.interval":         "1h",
		"verifier.workers":          12,
		"verifier.check_timeout":    "5s",
		"verifier.pass_timeout":     "10m",
		"verifier.retry_attempts":   3,
		"verifier.retry_backoff":    "1s",
		"verifier.per_host_rate":    5.0,
		"verifier.per_host_burst":   5,
		"verifier.user_agent":       "stackrec-verifier/1.0",
		"verifier.warm_on_start":    true,
		"verifier.mark_unavailable": true,

		"evidence.enabled": false,
		"evidence.limit":   3,

		"auth.enabled":         false,
		"auth.public_key_path": "keys/public.pem",
		"auth.issuer":          "identity",
		"auth.audience":        "stackrec-admin",

		"rate_limit.requests": 100,
		"rate_limit.window":   "1m",
		"rate_limit.burst":    20,

		"cors.allowed_origins": []string{"http://localhost:3000"},
		"cors.allowed_methods": []string{
			"GET",
			"POST",
			"DELETE",
			"OPTIONS",
		},
		"cors.allowed_headers": []string{
			"Accept",
			"Authorization",
			"Content-Type",
			"X-Request-ID",
		},
		"cors.allow_credentials": true,
		"cors.max_age":           300,

		"log.level":  "info",
		"log.format": "json",

		"otel.enabled":      false,
		"otel.insecure":     true,
		"otel.sample_rate":  0.1,
		"otel.service_name": "stackrec",

		"metrics.enabled": true,
		"metrics.path":    "/metrics",
	}

	for key, value := range defaults {
		if err := k.Set(key, value); err != nil {
			return fmt.Errorf("set default %s: %w", key, err)
		}
	}

	return nil
}

var envKeyMap = map[string]string{
	"DATABASE_URL":                "database.url",
	"REDIS_URL":                   "redis.url",
	"ENVIRONMENT":                 "app.environment",
	"HOST":                        "server.host",
	"PORT":                        "server.port",
	"LOG_LEVEL":                   "log.level",
	"LOG_FORMAT":                  "log.format",
	"CACHE_BACKEND":               "cache.backend",
	"CACHE_BADGER_PATH":           "cache.badger_path",
	"CATALOG_SOURCE":              "catalog.source",
	"CATALOG_SNAPSHOT_PATH":       "catalog.snapshot_path",
	"ARCHETYPES_PATH":             "archetypes.path",
	"RECOMMEND_MAX_ENTRIES":       "recommend.max_entries",
	"RECOMMEND_CONFIDENCE":        "recommend.confidence_threshold",
	"RECOMMEND_GOAL_DEPTH":        "recommend.goal_depth",
	"VERIFIER_ENABLED":            "verifier.enabled",
	"VERIFIER_INTERVAL":           "verifier.interval",
	"VERIFIER_WORKERS":            "verifier.workers",
	"VERIFIER_CHECK_TIMEOUT":      "verifier.check_timeout",
	"VERIFIER_PASS_TIMEOUT":       "verifier.pass_timeout",
	"EVIDENCE_ENABLED":            "evidence.enabled",
	"AUTH_ENABLED":                "auth.enabled",
	"AUTH_PUBLIC_KEY_PATH":        "auth.public_key_path",
	"AUTH_ISSUER":                 "auth.issuer",
	"AUTH_AUDIENCE":               "auth.audience",
	"RATE_LIMIT_REQUESTS":         "rate_limit.requests",
	"RATE_LIMIT_WINDOW":           "rate_limit.window",
	"RATE_LIMIT_BURST":            "rate_limit.burst",
	"OTEL_ENDPOINT":               "otel.endpoint",
	"OTEL_EXPORTER_OTLP_ENDPOINT": "otel.endpoint",
	"OTEL_SERVICE_NAME":           "otel.service_name",
	"OTEL_ENABLED":                "otel.enabled",
	"OTEL_INSECURE":               "otel.insecure",
	"OTEL_SAMPLE_RATE":            "otel.sample_rate",
	"METRICS_ENABLED":             "metrics.enabled",
}

func envKeyReplacer(s string) string {
	if mapped, ok := envKeyMap[s]; ok {
		return mapped
	}
	return ""
}

//nolint:gocyclo // flat list of independent checks
func validate(c *Config) error {
	switch c.Catalog.Source {
	case CatalogSourcePostgres:
		if c.Database.URL == "" {
			return fmt.Errorf("DATABASE_URL is required for the postgres catalog")
		}
	case CatalogSourceFile:
		if c.Catalog.SnapshotPath == "" {
			return fmt.Errorf("CATALOG_SNAPSHOT_PATH is required for the file catalog")
		}
	default:
		return fmt.Errorf("unknown catalog source %q", c.Catalog.Source)
	}

	switch c.Cache.Backend {
	case CacheBackendRedis:
		if c.Redis.URL == "" {
			return fmt.Errorf("REDIS_URL is required for the redis cache backend")
		}
	case CacheBackendBadger:
		if c.Cache.BadgerPath == "" {
			return fmt.Errorf("cache.badger_path is required for the badger backend")
		}
	case CacheBackendMemory:
	default:
		return fmt.Errorf("unknown cache backend %q", c.Cache.Backend)
	}

	if c.Evidence.Enabled && c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required when evidence lookup is enabled")
	}

	if c.Auth.Enabled && c.Auth.PublicKeyPath == "" {
		return fmt.Errorf("AUTH_PUBLIC_KEY_PATH is required when auth is enabled")
	}

	if c.Recommend.MaxEntries < 1 {
		return fmt.Errorf("recommend.max_entries must be at least 1")
	}

	if c.Recommend.ConfidenceThreshold < 0 || c.Recommend.ConfidenceThreshold > 1 {
		return fmt.Errorf("recommend.confidence_threshold must be within [0,1]")
	}

	if c.Recommend.GoalDepth < 1 {
		return fmt.Errorf("recommend.goal_depth must be at least 1")
	}

	if len(c.Recommend.CoreCategories) == 0 {
		return fmt.Errorf("recommend.core_categories must not be empty")
	}

	if c.Verifier.Workers < 1 {
		return fmt.Errorf("verifier.workers must be at least 1")
	}

	if c.Verifier.RetryAttempts < 1 || c.Verifier.RetryAttempts > 3 {
		return fmt.Errorf("verifier.retry_attempts must be between 1 and 3")
	}

	if c.Verifier.CheckTimeout <= 0 {
		return fmt.Errorf("verifier.check_timeout must be positive")
	}

	if c.Verifier.Enabled && c.Verifier.Interval <= 0 {
		return fmt.Errorf("verifier.interval must be positive")
	}

	if c.CORS.AllowCredentials {
		for _, origin := range c.CORS.AllowedOrigins {
			if origin == "*" {
				return fmt.Errorf(
					"CORS wildcard '*' cannot be used with AllowCredentials",
				)
			}
		}
	}

	if c.App.Environment == "production" {
		if c.Otel.Enabled && c.Otel.Insecure {
			return fmt.Errorf("OTEL_INSECURE must be false in production")
		}
		if c.Cache.Backend == CacheBackendMemory {
			return fmt.Errorf("memory cache backend is not allowed in production")
		}
	}

	if c.Server.ReadTimeout <= 0 {
		return fmt.Errorf("server.read_timeout must be positive")
	}

	if c.Server.WriteTimeout <= 0 {
		return fmt.Errorf("server.write_timeout must be positive")
	}

	return nil
}

func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

func (s *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}
