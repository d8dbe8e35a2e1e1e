package config

import (
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"golang.org/x/crypto/bcrypt"
)

// Store drivers.
const (
	StoreDriverPostgres = "postgres"
	StoreDriverSQLite   = "sqlite"
)

const defaultJWTSecret = "a-very-secret-key-should-be-longer-and-random"

// ErrInsecureJWTSecret is returned in production when JWT_SECRET is unset or the built-in default.
var ErrInsecureJWTSecret = errors.New("JWT_SECRET must be set to a non-default value when IS_PRODUCTION is true")

// Config holds application configuration.
type Config struct {
	StoreDriver       string
	DatabaseURL       string
	SQLitePath        string
	Port              string
	IsProduction      bool
	JWTSecret         string
	JWTExpiryDuration time.Duration
	JWTIssuer         string
	ClientOrigin      string
	BcryptCost        int

	LoginRateLimit string
	RedisURL       string

	RabbitMQURL         string
	EventsExchange      string
	OutboxPollInterval  time.Duration
	OutboxBatchSize     int
	OutboxRetention     time.Duration
	OutboxPruneSchedule string

	MetricsEnabled bool

	// External OAuth Providers
	GoogleClientID     string `mapstructure:"GOOGLE_CLIENT_ID"`
	GoogleClientSecret string `mapstructure:"GOOGLE_CLIENT_SECRET"`
	GoogleRedirectURL  string `mapstructure:"GOOGLE_REDIRECT_URL"`
}

// LoadConfig loads configuration from environment variables and .env file if present.
// CONFIG_FILE may point at a yaml, toml or json file whose keys are merged under the
// environment.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	v := viper.New()
	v.SetDefault("STORE_DRIVER", StoreDriverPostgres)
	v.SetDefault("PGSQL_URL", "")
	v.SetDefault("SQLITE_PATH", "data/securepay.db")
	v.SetDefault("PORT", "8080")
	v.SetDefault("IS_PRODUCTION", false)
	v.SetDefault("JWT_SECRET", defaultJWTSecret)
	v.SetDefault("JWT_EXPIRY_DURATION", "1h")
	v.SetDefault("JWT_ISSUER", "secure-pay")
	v.SetDefault("CLIENT_ORIGIN", "http://localhost:3000")
	v.SetDefault("BCRYPT_COST", bcrypt.DefaultCost)
	v.SetDefault("LOGIN_RATE_LIMIT", "5-M")
	v.SetDefault("REDIS_URL", "")
	v.SetDefault("RABBITMQ_URL", "")
	v.SetDefault("EVENTS_EXCHANGE", "securepay.events")
	v.SetDefault("OUTBOX_POLL_INTERVAL", "1s")
	v.SetDefault("OUTBOX_BATCH_SIZE", 50)
	v.SetDefault("OUTBOX_RETENTION", "168h")
	v.SetDefault("OUTBOX_PRUNE_SCHEDULE", "@hourly")
	v.SetDefault("METRICS_ENABLED", true)
	v.SetDefault("GOOGLE_CLIENT_ID", "")
	v.SetDefault("GOOGLE_CLIENT_SECRET", "")
	v.SetDefault("GOOGLE_REDIRECT_URL", "")

	v.AutomaticEnv()

	if file := v.GetString("CONFIG_FILE"); file != "" {
		v.SetConfigFile(file)
		if err := v.MergeInConfig(); err != nil {
			return nil, err
		}
	}

	cfg := &Config{}

	cfg.StoreDriver = strings.ToLower(v.GetString("STORE_DRIVER"))
	if cfg.StoreDriver != StoreDriverPostgres && cfg.StoreDriver != StoreDriverSQLite {
		slog.Warn("Unknown STORE_DRIVER. Defaulting to postgres.", slog.String("value", cfg.StoreDriver))
		cfg.StoreDriver = StoreDriverPostgres
	}
	cfg.DatabaseURL = v.GetString("PGSQL_URL")
	if cfg.StoreDriver == StoreDriverPostgres && cfg.DatabaseURL == "" {
		slog.Warn("PGSQL_URL environment variable not set.")
	}
	cfg.SQLitePath = v.GetString("SQLITE_PATH")

	cfg.Port = v.GetString("PORT")
	if cfg.Port == "" {
		cfg.Port = "8080"
		slog.Warn("PORT environment variable not set.", slog.String("default", cfg.Port))
	}
	cfg.IsProduction = v.GetBool("IS_PRODUCTION")

	cfg.JWTSecret = v.GetString("JWT_SECRET")
	if cfg.JWTSecret == "" || cfg.JWTSecret == defaultJWTSecret {
		if cfg.IsProduction {
			return nil, ErrInsecureJWTSecret
		}
		cfg.JWTSecret = defaultJWTSecret // development only
		slog.Warn("JWT_SECRET environment variable not set. Using default insecure key.")
	}
	cfg.JWTExpiryDuration = durationOrDefault(v, "JWT_EXPIRY_DURATION", time.Hour)
	cfg.JWTIssuer = v.GetString("JWT_ISSUER")
	if cfg.JWTIssuer == "" {
		cfg.JWTIssuer = "secure-pay"
	}

	cfg.ClientOrigin = v.GetString("CLIENT_ORIGIN")
	cfg.BcryptCost = v.GetInt("BCRYPT_COST")
	if cfg.BcryptCost < bcrypt.MinCost || cfg.BcryptCost > bcrypt.MaxCost {
		slog.Warn("Invalid value for BCRYPT_COST. Using default.", slog.Int("value", cfg.BcryptCost))
		cfg.BcryptCost = bcrypt.DefaultCost
	}

	cfg.LoginRateLimit = v.GetString("LOGIN_RATE_LIMIT")
	cfg.RedisURL = v.GetString("REDIS_URL")

	cfg.RabbitMQURL = v.GetString("RABBITMQ_URL")
	cfg.EventsExchange = v.GetString("EVENTS_EXCHANGE")
	cfg.OutboxPollInterval = durationOrDefault(v, "OUTBOX_POLL_INTERVAL", time.Second)
	cfg.OutboxBatchSize = v.GetInt("OUTBOX_BATCH_SIZE")
	if cfg.OutboxBatchSize <= 0 {
		cfg.OutboxBatchSize = 50
	}
	cfg.OutboxRetention = durationOrDefault(v, "OUTBOX_RETENTION", 7*24*time.Hour)
	cfg.OutboxPruneSchedule = v.GetString("OUTBOX_PRUNE_SCHEDULE")

	cfg.MetricsEnabled = v.GetBool("METRICS_ENABLED")

	cfg.GoogleClientID = v.GetString("GOOGLE_CLIENT_ID")
	cfg.GoogleClientSecret = v.GetString("GOOGLE_CLIENT_SECRET")
	cfg.GoogleRedirectURL = v.GetString("GOOGLE_REDIRECT_URL")
	if cfg.GoogleClientID == "" || cfg.GoogleClientSecret == "" {
		slog.Info("Google OAuth credentials not set. Google sign-in is disabled.")
	}

	return cfg, nil
}

// durationOrDefault parses key as a duration, warning and falling back on bad input.
func durationOrDefault(v *viper.Viper, key string, def time.Duration) time.Duration {
	raw := v.GetString(key)
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		if raw != "" {
			slog.Warn("Invalid duration value. Using default.", slog.String("key", key), slog.String("value", raw), slog.Duration("default", def))
		}
		return def
	}
	return d
}
