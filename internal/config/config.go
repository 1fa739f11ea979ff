package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"

	defaultJWTSecret = "dev-secret"
)

// Config is the support desk runtime configuration, read from the
// environment (and an optional .env file) by Load.
type Config struct {
	App          AppConfig
	Postgres     PostgresConfig
	Redis        RedisConfig
	Logger       LoggerConfig
	Auth         AuthConfig
	Notification NotificationConfig
	RateLimit    RateLimitConfig
	Seed         SeedConfig
}

type AppConfig struct {
	Name           string
	Env            string
	Host           string
	Port           string
	Version        string
	RequestTimeout time.Duration
}

// PostgresConfig describes the ticket store. An empty DSN selects the
// in-memory store.
type PostgresConfig struct {
	DSN             string
	MaxConns        int32
	MinConns        int32
	RunMigrations   bool
	ConnMaxIdle     time.Duration
	ConnMaxLifetime time.Duration
}

// RedisConfig backs the write rate limiter. URL accepts either a redis://
// URL or a bare host:port.
type RedisConfig struct {
	URL          string
	Password     string
	DB           int
	PoolSize     int
	MinIdleConns int
	MaxRetries   int
}

type LoggerConfig struct {
	Level  string
	Format string
}

type AuthConfig struct {
	JWTSecret             string
	AccessTokenTTLMinutes int
	BcryptCost            int
}

type NotificationConfig struct {
	EmailFrom  string
	WebhookURL string
}

// RateLimitConfig bounds ticket writes per caller per minute. Zero disables
// the limiter.
type RateLimitConfig struct {
	WritesPerMinute int
}

// SeedConfig lists the accounts created at startup when the in-memory store
// is in use. An empty email skips that account; an empty password is
// replaced by a random one.
type SeedConfig struct {
	AdminEmail      string
	AdminPassword   string
	StudentEmail    string
	StudentPassword string
}

// Load reads the configuration. Malformed numbers, booleans and durations
// are reported together with any inconsistent settings.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var env envReader
	cfg := &Config{
		App: AppConfig{
			Name:           env.str("APP_NAME", "support-desk"),
			Env:            strings.ToLower(env.str("APP_ENV", EnvDevelopment)),
			Host:           env.str("APP_HOST", "0.0.0.0"),
			Port:           env.str("APP_PORT", "8080"),
			Version:        env.str("APP_VERSION", "dev"),
			RequestTimeout: env.seconds("HTTP_REQUEST_TIMEOUT_SECONDS", 30*time.Second),
		},
		Postgres: PostgresConfig{
			DSN:             strings.TrimSpace(os.Getenv("POSTGRES_DSN")),
			MaxConns:        int32(env.integer("POSTGRES_MAX_CONNS", 10)),
			MinConns:        int32(env.integer("POSTGRES_MIN_CONNS", 2)),
			RunMigrations:   env.boolean("POSTGRES_RUN_MIGRATIONS", true),
			ConnMaxIdle:     env.seconds("POSTGRES_CONN_MAX_IDLE_SECONDS", 30*time.Second),
			ConnMaxLifetime: env.seconds("POSTGRES_CONN_MAX_LIFE_SECONDS", 5*time.Minute),
		},
		Redis: RedisConfig{
			URL:          env.str("REDIS_URL", env.str("REDIS_ADDR", "127.0.0.1:6379")),
			Password:     os.Getenv("REDIS_PASSWORD"),
			DB:           env.integer("REDIS_DB", 0),
			PoolSize:     env.integer("REDIS_POOL_SIZE", 100),
			MinIdleConns: env.integer("REDIS_MIN_IDLE_CONNS", 10),
			MaxRetries:   env.integer("REDIS_MAX_RETRIES", 3),
		},
		Logger: LoggerConfig{
			Level:  env.str("LOG_LEVEL", "info"),
			Format: env.str("LOG_FORMAT", "json"),
		},
		Auth: AuthConfig{
			JWTSecret:             env.str("AUTH_JWT_SECRET", defaultJWTSecret),
			AccessTokenTTLMinutes: env.integer("AUTH_ACCESS_TOKEN_TTL_MINUTES", 60),
			BcryptCost:            env.integer("AUTH_BCRYPT_COST", 12),
		},
		Notification: NotificationConfig{
			EmailFrom:  env.str("NOTIFY_EMAIL_FROM", "noreply@example.com"),
			WebhookURL: os.Getenv("NOTIFY_WEBHOOK_URL"),
		},
		RateLimit: RateLimitConfig{
			WritesPerMinute: env.integer("RATE_LIMIT_PER_MINUTE", 30),
		},
		Seed: SeedConfig{
			AdminEmail:      env.str("SEED_ADMIN_EMAIL", "admin@supportdesk.local"),
			AdminPassword:   os.Getenv("SEED_ADMIN_PASSWORD"),
			StudentEmail:    env.str("SEED_STUDENT_EMAIL", "student@supportdesk.local"),
			StudentPassword: os.Getenv("SEED_STUDENT_PASSWORD"),
		},
	}

	if err := errors.Join(env.err(), cfg.validate()); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

// IsProduction reports whether APP_ENV is production.
func (c *Config) IsProduction() bool {
	return c.App.Env == EnvProduction
}

// UsesMemoryStore reports whether tickets and users live in process memory.
func (c *Config) UsesMemoryStore() bool {
	return c.Postgres.DSN == ""
}

func (c *Config) validate() error {
	var errs []error
	if c.IsProduction() {
		if c.Auth.JWTSecret == defaultJWTSecret {
			errs = append(errs, errors.New("AUTH_JWT_SECRET must be set in production"))
		}
		if c.UsesMemoryStore() {
			errs = append(errs, errors.New("POSTGRES_DSN must be set in production"))
		}
	}
	if c.Auth.AccessTokenTTLMinutes <= 0 {
		errs = append(errs, errors.New("AUTH_ACCESS_TOKEN_TTL_MINUTES must be positive"))
	}
	if c.Auth.BcryptCost < 4 || c.Auth.BcryptCost > 31 {
		errs = append(errs, fmt.Errorf("AUTH_BCRYPT_COST %d outside 4..31", c.Auth.BcryptCost))
	}
	if c.Postgres.MinConns > c.Postgres.MaxConns {
		errs = append(errs, fmt.Errorf("POSTGRES_MIN_CONNS %d exceeds POSTGRES_MAX_CONNS %d", c.Postgres.MinConns, c.Postgres.MaxConns))
	}
	if c.Redis.PoolSize <= 0 {
		errs = append(errs, errors.New("REDIS_POOL_SIZE must be positive"))
	}
	if c.RateLimit.WritesPerMinute < 0 {
		errs = append(errs, errors.New("RATE_LIMIT_PER_MINUTE must not be negative"))
	}
	return errors.Join(errs...)
}

// Addr returns the HTTP bind address.
func (a AppConfig) Addr() string {
	return a.Host + ":" + a.Port
}

// envReader looks up variables and remembers every value it failed to parse.
type envReader struct {
	errs []error
}

func (r *envReader) str(key, fallback string) string {
	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
		return val
	}
	return fallback
}

func (r *envReader) integer(key string, fallback int) int {
	val := strings.TrimSpace(os.Getenv(key))
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		r.errs = append(r.errs, fmt.Errorf("%s: %q is not an integer", key, val))
		return fallback
	}
	return parsed
}

func (r *envReader) boolean(key string, fallback bool) bool {
	val := strings.TrimSpace(os.Getenv(key))
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		r.errs = append(r.errs, fmt.Errorf("%s: %q is not a boolean", key, val))
		return fallback
	}
	return parsed
}

// seconds reads a whole number of seconds. Zero or less disables the
// setting and yields 0.
func (r *envReader) seconds(key string, fallback time.Duration) time.Duration {
	n := r.integer(key, int(fallback/time.Second))
	if n <= 0 {
		return 0
	}
	return time.Duration(n) * time.Second
}

func (r *envReader) err() error {
	return errors.Join(r.errs...)
}
