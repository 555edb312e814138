package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds application configuration loaded once from environment at
// startup and passed explicitly into constructors.
type Config struct {
	Server       ServerConfig
	Database     DatabaseConfig
	Redis        RedisConfig
	Admin        AdminConfig
	RateLimit    RateLimitConfig
	Registration RegistrationConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port               string
	ReadTimeout        int
	WriteTimeout       int
	CORSAllowedOrigins string // comma-separated, or "*" for all
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	URL      string // if set, used as-is
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// RedisConfig holds Redis connection settings.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// AdminConfig holds the admin session authority settings. PasswordHash is a
// bcrypt hash; the plaintext password is never configured or stored.
type AdminConfig struct {
	PasswordHash       string
	SessionSecret      string // HMAC key for the session cookie token
	SessionTTLMinutes  int    // absolute session lifetime
	IdleTimeoutMinutes int    // sliding inactivity timeout
	CookieSecure       bool   // set the Secure attribute on the session cookie
}

// RateLimitConfig holds the abuse guard thresholds.
type RateLimitConfig struct {
	WindowMinutes          int // rolling window for all counters
	RegistrationMaxSuccess int
	RegistrationMaxFailure int
	LoginMaxAttempts       int
}

// RegistrationConfig holds registration validation bounds.
type RegistrationConfig struct {
	MaxTeamsPerRequest int
}

// DSN returns the PostgreSQL connection string.
func (c DatabaseConfig) DSN() string {
	if c.URL != "" {
		return c.URL
	}
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode,
	)
}

// Load reads configuration from environment, with optional .env file.
// ADMIN_PASSWORD_HASH is required; everything else has a default.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Port:               getEnv("PORT", "8080"),
			ReadTimeout:        getEnvInt("READ_TIMEOUT_SEC", 30),
			WriteTimeout:       getEnvInt("WRITE_TIMEOUT_SEC", 30),
			CORSAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000"),
		},
		Database: DatabaseConfig{
			URL:      getEnv("DATABASE_URL", ""),
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "raid"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		Admin: AdminConfig{
			PasswordHash:       os.Getenv("ADMIN_PASSWORD_HASH"),
			SessionSecret:      getEnv("ADMIN_SESSION_SECRET", "change-me-in-production"),
			SessionTTLMinutes:  getEnvInt("ADMIN_SESSION_TTL_MIN", 120),
			IdleTimeoutMinutes: getEnvInt("ADMIN_IDLE_TIMEOUT_MIN", 30),
			CookieSecure:       getEnvBool("ADMIN_COOKIE_SECURE", false),
		},
		RateLimit: RateLimitConfig{
			WindowMinutes:          getEnvInt("RATE_LIMIT_WINDOW_MIN", 5),
			RegistrationMaxSuccess: getEnvInt("RATE_LIMIT_REG_MAX_SUCCESS", 3),
			RegistrationMaxFailure: getEnvInt("RATE_LIMIT_REG_MAX_FAILURE", 5),
			LoginMaxAttempts:       getEnvInt("LOGIN_MAX_ATTEMPTS", 4),
		},
		Registration: RegistrationConfig{
			MaxTeamsPerRequest: getEnvInt("MAX_TEAMS_PER_REQUEST", 10),
		},
	}

	if cfg.Admin.PasswordHash == "" {
		return nil, fmt.Errorf("ADMIN_PASSWORD_HASH is required")
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}
