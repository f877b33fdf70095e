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
	Postgres     PostgresConfig
	Redis        RedisConfig
	Logger       LoggerConfig
	Auth         AuthConfig
	Leveling     LevelingConfig
	Notification NotificationConfig
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

// PostgresConfig holds DB connection values.
type PostgresConfig struct {
	DSN             string
	MaxConns        int32
	MinConns        int32
	RunMigrations   bool
	ConnMaxIdleSec  int32
	ConnMaxLifeSec  int32
	ConnectAttempts int
}

// RedisConfig holds Redis connection values.
type RedisConfig struct {
	URL      string
	Addr     string
	Password string
	DB       int
	PoolSize int
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level   string
	Format  string
	Service string
}

// AuthConfig defines session and credential parameters.
type AuthConfig struct {
	SessionSecret     string
	SessionTTLMinutes int
	SecureCookies     bool
	BcryptCost        int
	AdminEmail        string
	AdminPassword     string
	AdminName         string
}

// LevelingConfig holds the experience cutoffs for levels 2, 3, ...
type LevelingConfig struct {
	Thresholds []int
	// ReconcileIntervalMinutes schedules a periodic recompute of every engineer; 0 disables it.
	ReconcileIntervalMinutes int
}

// NotificationConfig holds stub notification settings.
type NotificationConfig struct {
	EmailFrom string
	QueueSize int
}

// DefaultLevelThresholds is used when LEVEL_THRESHOLDS is unset.
var DefaultLevelThresholds = []int{20, 50, 100, 175, 275, 400, 550, 750, 1000}

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	thresholds, err := parseThresholds(os.Getenv("LEVEL_THRESHOLDS"))
	if err != nil {
		return nil, fmt.Errorf("invalid LEVEL_THRESHOLDS: %w", err)
	}

	appName := getEnv("APP_NAME", "sfqs-ticket-system")
	cfg := &Config{
		App: AppConfig{
			Name:                  appName,
			Env:                   getEnv("APP_ENV", "development"),
			Host:                  getEnv("APP_HOST", "0.0.0.0"),
			Port:                  getEnv("APP_PORT", "8080"),
			Version:               getEnv("APP_VERSION", "dev"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 30),
		},
		Postgres: PostgresConfig{
			DSN:             os.Getenv("POSTGRES_DSN"),
			MaxConns:        int32(getEnvAsInt("POSTGRES_MAX_CONNS", 10)),
			MinConns:        int32(getEnvAsInt("POSTGRES_MIN_CONNS", 2)),
			RunMigrations:   getEnvAsBool("POSTGRES_RUN_MIGRATIONS", true),
			ConnMaxIdleSec:  int32(getEnvAsInt("POSTGRES_CONN_MAX_IDLE_SECONDS", 30)),
			ConnMaxLifeSec:  int32(getEnvAsInt("POSTGRES_CONN_MAX_LIFE_SECONDS", 300)),
			ConnectAttempts: getEnvAsInt("POSTGRES_CONNECT_ATTEMPTS", 5),
		},
		Redis: RedisConfig{
			URL:      os.Getenv("REDIS_URL"),
			Addr:     getEnv("REDIS_ADDR", "127.0.0.1:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       redisDB,
			PoolSize: getEnvAsInt("REDIS_POOL_SIZE", 10),
		},
		Logger: LoggerConfig{
			Level:   getEnv("LOG_LEVEL", "info"),
			Format:  getEnv("LOG_FORMAT", "json"),
			Service: appName,
		},
		Auth: AuthConfig{
			SessionSecret:     getEnv("AUTH_SESSION_SECRET", "dev-secret"),
			SessionTTLMinutes: getEnvAsInt("AUTH_SESSION_TTL_MINUTES", 480),
			SecureCookies:     getEnvAsBool("AUTH_SECURE_COOKIES", false),
			BcryptCost:        getEnvAsInt("AUTH_BCRYPT_COST", 12),
			AdminEmail:        os.Getenv("AUTH_ADMIN_EMAIL"),
			AdminPassword:     os.Getenv("AUTH_ADMIN_PASSWORD"),
			AdminName:         getEnv("AUTH_ADMIN_NAME", "Administrator"),
		},
		Leveling: LevelingConfig{
			Thresholds:               thresholds,
			ReconcileIntervalMinutes: getEnvAsInt("LEVELING_RECONCILE_INTERVAL_MINUTES", 0),
		},
		Notification: NotificationConfig{
			EmailFrom: getEnv("NOTIFY_EMAIL_FROM", "noreply@sfqs.local"),
			QueueSize: getEnvAsInt("NOTIFY_QUEUE_SIZE", 100),
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

// SessionTTL returns the lifetime of an issued session cookie pair.
func (a AuthConfig) SessionTTL() time.Duration {
	if a.SessionTTLMinutes <= 0 {
		return 8 * time.Hour
	}
	return time.Duration(a.SessionTTLMinutes) * time.Minute
}

// ReconcileInterval returns the experience reconcile period, zero when disabled.
func (l LevelingConfig) ReconcileInterval() time.Duration {
	if l.ReconcileIntervalMinutes <= 0 {
		return 0
	}
	return time.Duration(l.ReconcileIntervalMinutes) * time.Minute
}

// parseThresholds reads a comma separated, strictly increasing list of positive cutoffs.
func parseThresholds(raw string) ([]int, error) {
	if strings.TrimSpace(raw) == "" {
		return append([]int(nil), DefaultLevelThresholds...), nil
	}
	parts := strings.Split(raw, ",")
	out := make([]int, 0, len(parts))
	for _, part := range parts {
		val, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return nil, err
		}
		if val <= 0 {
			return nil, fmt.Errorf("cutoff %d must be positive", val)
		}
		if len(out) > 0 && val <= out[len(out)-1] {
			return nil, fmt.Errorf("cutoff %d not greater than %d", val, out[len(out)-1])
		}
		out = append(out, val)
	}
	return out, nil
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
