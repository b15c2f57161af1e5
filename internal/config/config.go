package config

import (
	"errors"
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
	Verification VerificationConfig
	RateLimit    RateLimitConfig
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
	DSN            string
	MaxConns       int32
	MinConns       int32
	RunMigrations  bool
	ConnMaxIdleSec int32
	ConnMaxLifeSec int32
}

// RedisConfig holds Redis connection values.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	// UseForOTP switches the OTP store from the in-process map to Redis so
	// multiple instances share one code space.
	UseForOTP bool
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level string
}

// AuthConfig defines authentication parameters.
type AuthConfig struct {
	JWTSecret            string
	SessionTokenTTLHours int
	RememberTokenTTLDays int
	ResetTokenTTLMinutes int
	BcryptCost           int
}

// VerificationConfig controls one-time-code behavior.
type VerificationConfig struct {
	OTPTTLMinutes        int
	SweepIntervalMinutes int
}

// RateLimitConfig bounds request volume per client address.
type RateLimitConfig struct {
	AuthMax          int
	AuthWindowMin    int
	GeneralMax       int
	GeneralWindowMin int
}

// NotificationConfig holds sender identities for the stub dispatchers.
type NotificationConfig struct {
	EmailFrom string
	SMSFrom   string
}

// ErrMissingJWTSecret is returned when no signing secret is configured. The
// service refuses to start rather than sign tokens with a guessable default.
var ErrMissingJWTSecret = errors.New("AUTH_JWT_SECRET must be set")

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	secret := os.Getenv("AUTH_JWT_SECRET")
	if secret == "" {
		return nil, ErrMissingJWTSecret
	}

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", "parking-pilot"),
			Env:                   getEnv("APP_ENV", "development"),
			Host:                  getEnv("APP_HOST", "0.0.0.0"),
			Port:                  getEnv("APP_PORT", "8080"),
			Version:               getEnv("APP_VERSION", "dev"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 30),
		},
		Postgres: PostgresConfig{
			DSN:            os.Getenv("POSTGRES_DSN"),
			MaxConns:       int32(getEnvAsInt("POSTGRES_MAX_CONNS", 10)),
			MinConns:       int32(getEnvAsInt("POSTGRES_MIN_CONNS", 2)),
			RunMigrations:  getEnvAsBool("POSTGRES_RUN_MIGRATIONS", true),
			ConnMaxIdleSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_IDLE_SECONDS", 30)),
			ConnMaxLifeSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_LIFE_SECONDS", 300)),
		},
		Redis: RedisConfig{
			Addr:      getEnv("REDIS_ADDR", "127.0.0.1:6379"),
			Password:  os.Getenv("REDIS_PASSWORD"),
			DB:        redisDB,
			UseForOTP: getEnvAsBool("REDIS_OTP_STORE", false),
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Auth: AuthConfig{
			JWTSecret:            secret,
			SessionTokenTTLHours: getEnvAsInt("AUTH_SESSION_TOKEN_TTL_HOURS", 168),
			RememberTokenTTLDays: getEnvAsInt("AUTH_REMEMBER_TOKEN_TTL_DAYS", 30),
			ResetTokenTTLMinutes: getEnvAsInt("AUTH_RESET_TOKEN_TTL_MINUTES", 60),
			BcryptCost:           getEnvAsInt("AUTH_BCRYPT_COST", 10),
		},
		Verification: VerificationConfig{
			OTPTTLMinutes:        getEnvAsInt("OTP_TTL_MINUTES", 10),
			SweepIntervalMinutes: getEnvAsInt("OTP_SWEEP_INTERVAL_MINUTES", 5),
		},
		RateLimit: RateLimitConfig{
			AuthMax:          getEnvAsInt("RATE_LIMIT_AUTH_MAX", 5),
			AuthWindowMin:    getEnvAsInt("RATE_LIMIT_AUTH_WINDOW_MINUTES", 15),
			GeneralMax:       getEnvAsInt("RATE_LIMIT_GENERAL_MAX", 100),
			GeneralWindowMin: getEnvAsInt("RATE_LIMIT_GENERAL_WINDOW_MINUTES", 15),
		},
		Notification: NotificationConfig{
			EmailFrom: getEnv("NOTIFY_EMAIL_FROM", "noreply@example.com"),
			SMSFrom:   getEnv("NOTIFY_SMS_FROM", ""),
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

// SessionTokenTTL is the validity window for ordinary login tokens.
func (a AuthConfig) SessionTokenTTL() time.Duration {
	return time.Duration(a.SessionTokenTTLHours) * time.Hour
}

// RememberTokenTTL is the validity window for remember-me tokens.
func (a AuthConfig) RememberTokenTTL() time.Duration {
	return time.Duration(a.RememberTokenTTLDays) * 24 * time.Hour
}

// ResetTokenTTL is the validity window for password reset tokens.
func (a AuthConfig) ResetTokenTTL() time.Duration {
	return time.Duration(a.ResetTokenTTLMinutes) * time.Minute
}

// OTPTTL is how long a one-time code stays valid.
func (v VerificationConfig) OTPTTL() time.Duration {
	return time.Duration(v.OTPTTLMinutes) * time.Minute
}

// SweepInterval is how often expired codes are purged.
func (v VerificationConfig) SweepInterval() time.Duration {
	return time.Duration(v.SweepIntervalMinutes) * time.Minute
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
