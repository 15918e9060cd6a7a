// Package config loads the service configuration once at startup.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// Config is the complete service configuration.
type Config struct {
	App       App
	Postgres  Postgres
	Redis     Redis
	Cache     Cache
	Auth      Auth
	Limit     Limit
	Provider  Provider
	Exchanger Exchanger
	Kafka     Kafka
}

type App struct {
	Host       string `env:"APP_HOST" env-default:"localhost"`
	Port       string `env:"APP_PORT" env-default:"8080" validate:"required,numeric"`
	LogLevel   string `env:"APP_LOG_LEVEL" env-default:"info" validate:"oneof=debug info warn error"`
	LogFormat  string `env:"APP_LOG_FORMAT" env-default:"json" validate:"oneof=json console"`
	CORSOrigin string `env:"APP_CORS_ORIGIN" env-default:"*"`
}

type Postgres struct {
	Host         string `env:"POSTGRES_HOST" env-default:"localhost"`
	Port         int    `env:"POSTGRES_PORT" env-default:"5432" validate:"min=1,max=65535"`
	User         string `env:"POSTGRES_USER" env-default:"user"`
	Password     string `env:"POSTGRES_PASSWORD" env-default:"password"`
	DB           string `env:"POSTGRES_DB" env-default:"database"`
	MaxOpenConns int    `env:"POSTGRES_MAX_OPEN_CONNS" env-default:"16" validate:"min=1"`
	MaxIdleConns int    `env:"POSTGRES_MAX_IDLE_CONNS" env-default:"8" validate:"min=0"`
}

// DSN returns the pgx connection string.
func (p Postgres) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		p.User, p.Password, p.Host, p.Port, p.DB)
}

type Redis struct {
	Host         string `env:"REDIS_HOST" env-default:"localhost"`
	Port         int    `env:"REDIS_PORT" env-default:"6379" validate:"min=1,max=65535"`
	DB           int    `env:"REDIS_DB" env-default:"0" validate:"min=0"`
	Password     string `env:"REDIS_PASSWORD"`
	PoolSize     int    `env:"REDIS_POOL_SIZE" env-default:"10" validate:"min=1"`
	MinIdleConns int    `env:"REDIS_MIN_IDLE_CONNS" env-default:"2" validate:"min=0"`
}

// Addr returns host:port.
func (r Redis) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

type Cache struct {
	Enabled bool `env:"CACHE_ENABLED" env-default:"true"`
	// Destination currencies eligible for write-back. Empty means all.
	Currencies []string `env:"CACHE_CURRENCIES" env-separator:","`
}

// Auth modes.
const (
	AuthModePlain = "plain"
	AuthModeHash  = "hash"
	AuthModeJWT   = "jwt"
)

type Auth struct {
	Enabled  bool          `env:"AUTH_ENABLED" env-default:"true"`
	Secret   string        `env:"AUTH_SECRET" validate:"required_if=Enabled true"`
	Mode     string        `env:"AUTH_MODE" env-default:"plain" validate:"oneof=plain hash jwt"`
	TokenTTL time.Duration `env:"AUTH_TOKEN_TTL" env-default:"1h" validate:"gt=0"`
}

// Limiter backends.
const (
	LimitBackendPostgres = "postgres"
	LimitBackendRedis    = "redis"
)

type Limit struct {
	PerHour   int    `env:"LIMIT_PER_HOUR" env-default:"100" validate:"min=1"`
	PerSecond int    `env:"LIMIT_PER_SECOND" env-default:"5" validate:"min=1"`
	Backend   string `env:"LIMIT_BACKEND" env-default:"postgres" validate:"oneof=postgres redis"`
}

// Provider kinds.
const (
	ProviderCurrencyLayer    = "currencylayer"
	ProviderFixer            = "fixer"
	ProviderExchangeRatesAPI = "exchangeratesapi"
	ProviderExchanger        = "exchanger"
)

var defaultProviderHosts = map[string]string{
	ProviderCurrencyLayer:    "api.currencylayer.com",
	ProviderFixer:            "api.fixer.io",
	ProviderExchangeRatesAPI: "api.exchangeratesapi.io",
}

type Provider struct {
	Name    string        `env:"PROVIDER" env-default:"currencylayer" validate:"oneof=currencylayer fixer exchangeratesapi exchanger"`
	BaseURL string        `env:"PROVIDER_BASE_URL"`
	APIKey  string        `env:"PROVIDER_API_KEY"`
	HTTPS   bool          `env:"PROVIDER_HTTPS" env-default:"true"`
	Timeout time.Duration `env:"PROVIDER_TIMEOUT" env-default:"10s" validate:"gt=0"`
}

// Host returns BaseURL, or the selected provider's default host when unset.
func (p Provider) Host() string {
	if p.BaseURL != "" {
		return p.BaseURL
	}
	return defaultProviderHosts[p.Name]
}

type Exchanger struct {
	Host string `env:"EXCHANGER_HOST" env-default:"localhost"`
	Port string `env:"EXCHANGER_PORT" env-default:"50051"`
}

// Addr returns host:port.
func (e Exchanger) Addr() string {
	return e.Host + ":" + e.Port
}

type Kafka struct {
	Brokers []string `env:"KAFKA_BROKERS" env-separator:","`
	Topic   string   `env:"KAFKA_TOPIC" env-default:"exchange-rates.fetched"`
}

// Load reads the optional env file at path, then the process environment,
// and validates the result. Values already set in the environment win over the file.
func Load(path string) (*Config, error) {
	if path != "" {
		_ = godotenv.Load(path)
	}

	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("read env: %w", err)
	}

	cfg.Cache.Currencies = normalizeList(cfg.Cache.Currencies)
	cfg.Kafka.Brokers = trimList(cfg.Kafka.Brokers)

	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

func normalizeList(items []string) []string {
	out := trimList(items)
	for i := range out {
		out[i] = strings.ToUpper(out[i])
	}
	return out
}

func trimList(items []string) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		if it = strings.TrimSpace(it); it != "" {
			out = append(out, it)
		}
	}
	return out
}
