package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config aggregates runtime configuration for the service.
type Config struct {
	App          AppConfig
	Database     DatabaseConfig
	Redis        RedisConfig
	Logger       LoggerConfig
	Auth         AuthConfig
	RateLimit    RateLimitConfig
	Notification NotificationConfig
	Taxonomy     TaxonomyConfig
}

// AppConfig controls server level behavior.
type AppConfig struct {
	Name                  string
	Env                   string
	Host                  string
	Port                  string
	Version               string
	RequestTimeoutSeconds int
}

// DatabaseConfig holds the store location and pool settings.
// URL selects the driver: postgres:// or postgresql:// uses Postgres, anything else is an SQLite file.
type DatabaseConfig struct {
	URL            string
	MaxConns       int32
	MinConns       int32
	RunMigrations  bool
	ConnMaxIdleSec int32
	ConnMaxLifeSec int32
}

// RedisConfig holds Redis connection values. An empty Addr keeps sessions in memory.
type RedisConfig struct {
	Addr      string
	Password  string
	DB        int
	KeyPrefix string
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level string
}

// AuthConfig defines authentication parameters.
type AuthConfig struct {
	SecretKey         string
	SessionTTLMinutes int
	CookieName        string
	BcryptCost        int
	SeedAdminEmail    string
	SeedAdminName     string
	SeedAdminPassword string
}

// RateLimitConfig throttles credential endpoints per client IP.
type RateLimitConfig struct {
	AuthRequests  int
	AuthWindowSec int
	AuthBurst     int
}

// NotificationConfig holds stub notification endpoints.
type NotificationConfig struct {
	EmailFrom  string
	WebhookURL string
}

// TaxonomyConfig points at an optional YAML file replacing the built-in taxonomy.
type TaxonomyConfig struct {
	File string
}

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", "helpdesk"),
			Env:                   getEnv("APP_ENV", "development"),
			Host:                  getEnv("APP_HOST", "0.0.0.0"),
			Port:                  getEnv("APP_PORT", "5000"),
			Version:               getEnv("APP_VERSION", "dev"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 30),
		},
		Database: DatabaseConfig{
			URL:            getEnv("DATABASE_URL", "helpdesk.db"),
			MaxConns:       int32(getEnvAsInt("DATABASE_MAX_CONNS", 10)),
			MinConns:       int32(getEnvAsInt("DATABASE_MIN_CONNS", 2)),
			RunMigrations:  getEnvAsBool("DATABASE_RUN_MIGRATIONS", true),
			ConnMaxIdleSec: int32(getEnvAsInt("DATABASE_CONN_MAX_IDLE_SECONDS", 30)),
			ConnMaxLifeSec: int32(getEnvAsInt("DATABASE_CONN_MAX_LIFE_SECONDS", 300)),
		},
		Redis: RedisConfig{
			Addr:      os.Getenv("REDIS_ADDR"),
			Password:  os.Getenv("REDIS_PASSWORD"),
			DB:        redisDB,
			KeyPrefix: getEnv("REDIS_KEY_PREFIX", "helpdesk:session:"),
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Auth: AuthConfig{
			SecretKey:         getEnv("SECRET_KEY", "dev-secret-change-me"),
			SessionTTLMinutes: getEnvAsInt("SESSION_TTL_MINUTES", 7*24*60),
			CookieName:        getEnv("SESSION_COOKIE_NAME", "helpdesk_session"),
			BcryptCost:        getEnvAsInt("AUTH_BCRYPT_COST", 12),
			SeedAdminEmail:    strings.ToLower(getEnv("SEED_ADMIN_EMAIL", "admin@local")),
			SeedAdminName:     getEnv("SEED_ADMIN_NAME", "Administrator"),
			SeedAdminPassword: getEnv("SEED_ADMIN_PASSWORD", "admin123"),
		},
		RateLimit: RateLimitConfig{
			AuthRequests:  getEnvAsInt("RATELIMIT_AUTH_REQUESTS", 10),
			AuthWindowSec: getEnvAsInt("RATELIMIT_AUTH_WINDOW_SEC", 60),
			AuthBurst:     getEnvAsInt("RATELIMIT_AUTH_BURST", 10),
		},
		Notification: NotificationConfig{
			EmailFrom:  getEnv("NOTIFY_EMAIL_FROM", ""),
			WebhookURL: getEnv("NOTIFY_WEBHOOK_URL", ""),
		},
		Taxonomy: TaxonomyConfig{
			File: os.Getenv("TAXONOMY_FILE"),
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

// IsProduction reports whether the service runs in production mode.
func (a AppConfig) IsProduction() bool {
	return strings.EqualFold(a.Env, "production")
}

// IsPostgres reports whether the database URL selects the Postgres driver.
func (d DatabaseConfig) IsPostgres() bool {
	return strings.HasPrefix(d.URL, "postgres://") || strings.HasPrefix(d.URL, "postgresql://")
}

// SessionTTL returns the configured session lifetime.
func (a AuthConfig) SessionTTL() time.Duration {
	if a.SessionTTLMinutes <= 0 {
		return 24 * time.Hour
	}
	return time.Duration(a.SessionTTLMinutes) * time.Minute
}

// AuthWindow returns the rate limit window.
func (r RateLimitConfig) AuthWindow() time.Duration {
	if r.AuthWindowSec <= 0 {
		return time.Minute
	}
	return time.Duration(r.AuthWindowSec) * time.Second
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
