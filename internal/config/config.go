// AngelaMos | 2026
// config.go

package config

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const (
	DriverMemory   = "memory"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

type Config struct {
	App       AppConfig       `koanf:"app"`
	Server    ServerConfig    `koanf:"server"`
	Database  DatabaseConfig  `koanf:"database"`
	Redis     RedisConfig     `koanf:"redis"`
	Provider  ProviderConfig  `koanf:"provider"`
	Ingest    IngestConfig    `koanf:"ingest"`
	RateLimit RateLimitConfig `koanf:"rate_limit"`
	Log       LogConfig       `koanf:"log"`
	Otel      OtelConfig      `koanf:"otel"`
	Metrics   MetricsConfig   `koanf:"metrics"`
	CORS      CORSConfig      `koanf:"cors"`
}

type AppConfig struct {
	Name        string `koanf:"name"`
	Version     string `koanf:"version"     validate:"version"`
	Environment string `koanf:"environment"`
	AuthorName  string `koanf:"author_name"`
	AuthorGroup string `koanf:"author_group"`
	Debug       bool   `koanf:"debug"`
}

type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	ReadTimeout     time.Duration `koanf:"read_timeout"     validate:"gt=0"`
	WriteTimeout    time.Duration `koanf:"write_timeout"    validate:"gt=0"`
	IdleTimeout     time.Duration `koanf:"idle_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

type DatabaseConfig struct {
	Driver          string        `koanf:"driver"             validate:"oneof=memory sqlite postgres"`
	URL             string        `koanf:"url"                validate:"required_unless=Driver memory"`
	MaxOpenConns    int           `koanf:"max_open_conns"`
	MaxIdleConns    int           `koanf:"max_idle_conns"`
	ConnMaxLifetime time.Duration `koanf:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `koanf:"conn_max_idle_time"`
	Seed            bool          `koanf:"seed"`
}

// RedisConfig with an empty URL disables redis; the provider cache and the
// rate limiter then run in-process.
type RedisConfig struct {
	URL          string `koanf:"url"`
	PoolSize     int    `koanf:"pool_size"`
	MinIdleConns int    `koanf:"min_idle_conns"`
}

type ProviderConfig struct {
	URL      string        `koanf:"url"       validate:"required,url"`
	Timeout  time.Duration `koanf:"timeout"   validate:"gt=0"`
	CacheTTL time.Duration `koanf:"cache_ttl"`
}

type IngestConfig struct {
	Enabled  bool          `koanf:"enabled"`
	Interval time.Duration `koanf:"interval" validate:"required_if=Enabled true,gte=0"`
	OnStart  bool          `koanf:"on_start"`
}

// RateLimitConfig.TrustedProxies lists the CIDRs or addresses whose
// X-Forwarded-For header is believed; with none, clients are keyed by peer.
type RateLimitConfig struct {
	Requests       int           `koanf:"requests"`
	Window         time.Duration `koanf:"window"`
	Burst          int           `koanf:"burst"`
	Scope          string        `koanf:"scope"           validate:"oneof=ip endpoint"`
	TrustedProxies []string      `koanf:"trusted_proxies" validate:"dive,cidr|ip"`
}

type LogConfig struct {
	Level  string `koanf:"level"  validate:"oneof=debug info warn error"`
	Format string `koanf:"format" validate:"oneof=json text"`
}

type OtelConfig struct {
	Endpoint    string  `koanf:"endpoint"`
	ServiceName string  `koanf:"service_name"`
	Enabled     bool    `koanf:"enabled"`
	Insecure    bool    `koanf:"insecure"`
	SampleRate  float64 `koanf:"sample_rate"  validate:"gte=0,lte=1"`
}

type CORSConfig struct {
	AllowedOrigins []string `koanf:"allowed_origins"`
	MaxAge         int      `koanf:"max_age"`
}

type MetricsConfig struct {
	Enabled bool   `koanf:"enabled"`
	Path    string `koanf:"path"`
}

var (
	cfg  *Config
	once sync.Once
)

// Load reads configuration once per process. Use Parse for isolated loads.
func Load(configPath string) (*Config, error) {
	var loadErr error

	once.Do(func() {
		cfg, loadErr = Parse(configPath)
	})

	if loadErr != nil {
		return nil, loadErr
	}

	return cfg, nil
}

func Parse(configPath string) (*Config, error) {
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
		"app.name":         "Currency Tracker",
		"app.version":      "1.0.0",
		"app.environment":  "development",
		"app.author_name":  "Иван Иванов",
		"app.author_group": "ПИ-202",
		"app.debug":        false,

		"server.host":             "localhost",
		"server.port":             8080,
		"server.read_timeout":     "30s",
		"server.write_timeout":    "30s",
		"server.idle_timeout":     "120s",
		"server.shutdown_timeout": "15s",

		"database.driver":             DriverSQLite,
		"database.url":                "file:currency.db",
		"database.max_open_conns":     25,
		"database.max_idle_conns":     5,
		"database.conn_max_lifetime":  "1h",
		"database.conn_max_idle_time": "30m",
		"database.seed":               true,

		"redis.pool_size":      10,
		"redis.min_idle_conns": 5,

		"provider.url":       "https://www.cbr-xml-daily.ru/daily_json.js",
		"provider.timeout":   "10s",
		"provider.cache_ttl": "300s",

		"ingest.enabled":  false,
		"ingest.interval": "5m",
		"ingest.on_start": false,

		"rate_limit.requests": 100,
		"rate_limit.window":   "1m",
		"rate_limit.burst":    20,
		"rate_limit.scope":    "ip",

		"log.level":  "info",
		"log.format": "json",

		"otel.enabled":      false,
		"otel.insecure":     true,
		"otel.sample_rate":  0.1,
		"otel.service_name": "currency-tracker",

		"metrics.enabled": true,
		"metrics.path":    "/metrics",

		"cors.allowed_origins": []string{"http://localhost:8080"},
		"cors.max_age":         300,
	}

	for key, value := range defaults {
		if err := k.Set(key, value); err != nil {
			return fmt.Errorf("set default %s: %w", key, err)
		}
	}

	return nil
}

var envKeyMap = map[string]string{
	"APP_NAME":                    "app.name",
	"APP_VERSION":                 "app.version",
	"APP_ENV":                     "app.environment",
	"ENVIRONMENT":                 "app.environment",
	"DEBUG":                       "app.debug",
	"DATABASE_DRIVER":             "database.driver",
	"DATABASE_URL":                "database.url",
	"DATABASE_SEED":               "database.seed",
	"REDIS_URL":                   "redis.url",
	"HOST":                        "server.host",
	"PORT":                        "server.port",
	"CURRENCY_API_URL":            "provider.url",
	"CURRENCY_API_TIMEOUT":        "provider.timeout",
	"CACHE_TTL":                   "provider.cache_ttl",
	"INGEST_ENABLED":              "ingest.enabled",
	"UPDATE_INTERVAL":             "ingest.interval",
	"LOG_LEVEL":                   "log.level",
	"LOG_FORMAT":                  "log.format",
	"RATE_LIMIT_REQUESTS":         "rate_limit.requests",
	"RATE_LIMIT_WINDOW":           "rate_limit.window",
	"RATE_LIMIT_BURST":            "rate_limit.burst",
	"RATE_LIMIT_SCOPE":            "rate_limit.scope",
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

var versionPattern = regexp.MustCompile(`^\d+\.\d+\.\d+$`)

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		if name, _, _ := strings.Cut(f.Tag.Get("koanf"), ","); name != "" {
			return name
		}
		return f.Name
	})
	_ = v.RegisterValidation("version", func(fl validator.FieldLevel) bool { //nolint:errcheck // static tag
		return versionPattern.MatchString(fl.Field().String())
	})
	return v
}

func validate(c *Config) error {
	if err := newValidator().Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			return fieldError(verrs[0])
		}
		return err
	}

	if c.IsProduction() && c.Otel.Enabled && c.Otel.Insecure {
		return errors.New("otel.insecure must be false in production")
	}

	return nil
}

func fieldError(fe validator.FieldError) error {
	key := fe.Namespace()
	if _, rest, ok := strings.Cut(key, "."); ok {
		key = rest
	}

	if fe.Param() == "" {
		return fmt.Errorf("%s: %q fails %s", key, fmt.Sprint(fe.Value()), fe.Tag())
	}
	return fmt.Errorf("%s: %q fails %s=%s", key, fmt.Sprint(fe.Value()), fe.Tag(), fe.Param())
}

func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}

func (s *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}
