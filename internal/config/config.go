package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config aggregates runtime configuration for the service.
type Config struct {
	App          AppConfig
	Postgres     PostgresConfig
	Redis        RedisConfig
	Logger       LoggerConfig
	Auth         AuthConfig
	Notification NotificationConfig
	Mailgun      MailgunConfig
	Queue        QueueConfig
	Catalog      CatalogConfig
	Seed         SeedConfig
}

// AppConfig controls server level behavior.
type AppConfig struct {
	Name                  string
	Env                   string
	Host                  string
	Port                  string
	Version               string
	SiteURL               string
	RequestTimeoutSeconds int
}

// PostgresConfig holds DB connection values.
type PostgresConfig struct {
	DSN            string
	MaxConns       int32
	MinConns       int32
	RunMigrations  bool
	ConnMaxIdleSec int32
	ConnMaxLifeSec int32
}

// RedisConfig holds Redis connection values.
type RedisConfig struct {
	Addr          string
	Password      string
	DB            int
	CacheTTLSecs  int
	CacheDisabled bool
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level string
}

// AuthConfig defines authentication parameters.
type AuthConfig struct {
	JWTSecret             string
	AccessTokenTTLMinutes int
	BcryptCost            int
}

// NotificationConfig selects how request emails leave the process.
// Transport is one of "log", "mailgun" or "queue".
type NotificationConfig struct {
	EmailFrom string
	Transport string
}

// MailgunConfig holds Mailgun API credentials.
type MailgunConfig struct {
	Domain string
	APIKey string
	Sender string
}

// QueueConfig holds RabbitMQ settings for the email queue.
type QueueConfig struct {
	URL              string
	EmailQueue       string
	Prefetch         int
	MaxAttempts      int
	RetryBaseSeconds int
	RetryMaxSeconds  int
}

// CatalogConfig tunes catalog listings.
type CatalogConfig struct {
	PageSize int
}

// SeedConfig carries the bootstrap moderator account.
type SeedConfig struct {
	AdminName     string
	AdminEmail    string
	AdminPassword string
}

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	maxConns := int32(getEnvAsInt("POSTGRES_MAX_CONNS", 10))
	minConns := int32(getEnvAsInt("POSTGRES_MIN_CONNS", 2))
	runMigrations := getEnvAsBool("POSTGRES_RUN_MIGRATIONS", true)
	connMaxIdle := int32(getEnvAsInt("POSTGRES_CONN_MAX_IDLE_SECONDS", 30))
	connMaxLife := int32(getEnvAsInt("POSTGRES_CONN_MAX_LIFE_SECONDS", 300))

	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", "xpertshub"),
			Env:                   getEnv("APP_ENV", "development"),
			Host:                  getEnv("APP_HOST", "0.0.0.0"),
			Port:                  getEnv("APP_PORT", "8080"),
			Version:               getEnv("APP_VERSION", "dev"),
			SiteURL:               getEnv("SITE_URL", ""),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 30),
		},
		Postgres: PostgresConfig{
			DSN:            os.Getenv("POSTGRES_DSN"),
			MaxConns:       maxConns,
			MinConns:       minConns,
			RunMigrations:  runMigrations,
			ConnMaxIdleSec: connMaxIdle,
			ConnMaxLifeSec: connMaxLife,
		},
		Redis: RedisConfig{
			Addr:          getEnv("REDIS_ADDR", "127.0.0.1:6379"),
			Password:      os.Getenv("REDIS_PASSWORD"),
			DB:            redisDB,
			CacheTTLSecs:  getEnvAsInt("REDIS_CACHE_TTL_SECONDS", 300),
			CacheDisabled: getEnvAsBool("REDIS_CACHE_DISABLED", false),
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Auth: AuthConfig{
			JWTSecret:             getEnv("AUTH_JWT_SECRET", "dev-secret"),
			AccessTokenTTLMinutes: getEnvAsInt("AUTH_ACCESS_TOKEN_TTL_MINUTES", 60),
			BcryptCost:            getEnvAsInt("AUTH_BCRYPT_COST", 12),
		},
		Notification: NotificationConfig{
			EmailFrom: getEnv("NOTIFY_EMAIL_FROM", "noreply@xpertshub.local"),
			Transport: getEnv("NOTIFY_TRANSPORT", "log"),
		},
		Mailgun: MailgunConfig{
			Domain: os.Getenv("MAILGUN_DOMAIN"),
			APIKey: os.Getenv("MAILGUN_API_KEY"),
			Sender: getEnv("MAILGUN_SENDER", getEnv("NOTIFY_EMAIL_FROM", "noreply@xpertshub.local")),
		},
		Queue: QueueConfig{
			URL:              os.Getenv("RABBITMQ_URL"),
			EmailQueue:       getEnv("RABBITMQ_EMAIL_QUEUE", "xpertshub.emails"),
			Prefetch:         getEnvAsInt("RABBITMQ_PREFETCH", 16),
			MaxAttempts:      getEnvAsInt("RABBITMQ_EMAIL_MAX_ATTEMPTS", 5),
			RetryBaseSeconds: getEnvAsInt("RABBITMQ_EMAIL_RETRY_BASE_SECONDS", 30),
			RetryMaxSeconds:  getEnvAsInt("RABBITMQ_EMAIL_RETRY_MAX_SECONDS", 900),
		},
		Catalog: CatalogConfig{
			PageSize: getEnvAsInt("CATALOG_PAGE_SIZE", 12),
		},
		Seed: SeedConfig{
			AdminName:     getEnv("ADMIN_USERNAME", "admin"),
			AdminEmail:    os.Getenv("ADMIN_EMAIL"),
			AdminPassword: os.Getenv("ADMIN_PASSWORD"),
		},
	}

	return cfg, nil
}

// Addr returns the HTTP bind address.
func (a AppConfig) Addr() string {
	return fmt.Sprintf("%s:%s", a.Host, a.Port)
}

// RequestTimeout returns the configured request timeout duration.
func (a AppConfig) RequestTimeout() time.Duration {
	if a.RequestTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(a.RequestTimeoutSeconds) * time.Second
}

// CacheTTL returns how long cached aggregates live.
func (r RedisConfig) CacheTTL() time.Duration {
	if r.CacheTTLSecs <= 0 {
		return 0
	}
	return time.Duration(r.CacheTTLSecs) * time.Second
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsBool(key string, fallback bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}
	return parsed
}
