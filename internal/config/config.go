package config

import (
	"errors"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config is the full runtime configuration, read from the environment.
type Config struct {
	Port           string
	Env            string
	RequestTimeout time.Duration

	Database DatabaseConfig
	Redis    RedisConfig
	Workflow WorkflowConfig

	LimitCacheTTL     time.Duration
	CallbackJWTSecret string

	ResumeInterval time.Duration
	ResumeAfter    time.Duration
	ResumeBatch    int
}

type DatabaseConfig struct {
	Host            string
	Port            string
	User            string
	Password        string
	Name            string
	SSLMode         string
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

type WorkflowConfig struct {
	BaseURL         string
	TopUpProcess    string
	TransferProcess string
	Timeout         time.Duration
}

// LoadEnv loads variables from a .env file if present.
func LoadEnv() {
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file found", "error", err)
	}
}

// Load reads .env (when present) and the process environment.
func Load() Config {
	LoadEnv()

	return Config{
		Port:           GetEnv("PORT", "3000"),
		Env:            GetEnv("ENV", "development"),
		RequestTimeout: GetDurationEnv("REQUEST_TIMEOUT", 10*time.Second),
		Database: DatabaseConfig{
			Host:            GetEnv("DB_HOST", "localhost"),
			Port:            GetEnv("DB_PORT", "5432"),
			User:            GetEnv("DB_USER", "postgres"),
			Password:        GetEnv("DB_PASSWORD", "postgres"),
			Name:            GetEnv("DB_NAME", "walletcore"),
			SSLMode:         GetEnv("DB_SSLMODE", "disable"),
			MaxIdleConns:    GetIntEnv("DB_MAX_IDLE_CONNS", 10),
			MaxOpenConns:    GetIntEnv("DB_MAX_OPEN_CONNS", 100),
			ConnMaxLifetime: GetDurationEnv("DB_CONN_MAX_LIFETIME", time.Hour),
			ConnMaxIdleTime: GetDurationEnv("DB_CONN_MAX_IDLE_TIME", 30*time.Minute),
		},
		Redis: RedisConfig{
			Host:     GetEnv("REDIS_HOST", "localhost"),
			Port:     GetEnv("REDIS_PORT", "6379"),
			Password: GetEnv("REDIS_PASSWORD", ""),
			DB:       GetIntEnv("REDIS_DB", 0),
		},
		Workflow: WorkflowConfig{
			BaseURL:         GetEnv("WORKFLOW_BASE_URL", ""),
			TopUpProcess:    GetEnv("WORKFLOW_TOPUP_PROCESS", "wallet-topup"),
			TransferProcess: GetEnv("WORKFLOW_TRANSFER_PROCESS", "wallet-transfer"),
			Timeout:         GetDurationEnv("WORKFLOW_TIMEOUT", 5*time.Second),
		},
		LimitCacheTTL:     GetDurationEnv("LIMIT_CACHE_TTL", 10*time.Minute),
		CallbackJWTSecret: GetEnv("CALLBACK_JWT_SECRET", ""),
		ResumeInterval:    GetDurationEnv("RESUME_INTERVAL", 30*time.Second),
		ResumeAfter:       GetDurationEnv("RESUME_AFTER", time.Minute),
		ResumeBatch:       GetIntEnv("RESUME_BATCH", 50),
	}
}

// GetEnv returns an environment variable or a default value.
func GetEnv(key, defaultVal string) string {
	if val, ok := os.LookupEnv(key); ok && val != "" {
		return val
	}
	return defaultVal
}

// GetIntEnv returns an int environment variable or a default value.
func GetIntEnv(key string, defaultVal int) int {
	if val, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
		slog.Warn("invalid integer in environment, using default", "key", key, "default", defaultVal)
	}
	return defaultVal
}

// GetDurationEnv returns a duration environment variable or a default value.
func GetDurationEnv(key string, defaultVal time.Duration) time.Duration {
	if val, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
		slog.Warn("invalid duration in environment, using default", "key", key, "default", defaultVal)
	}
	return defaultVal
}

// ErrCallbackSecretRequired is returned by Validate in production when no
// callback secret is configured.
var ErrCallbackSecretRequired = errors.New("CALLBACK_JWT_SECRET is required in production")

// Validate rejects configurations the server must not run with.
func (c Config) Validate() error {
	if c.Env == "production" && c.CallbackJWTSecret == "" {
		return ErrCallbackSecretRequired
	}
	return nil
}

// IsProduction checks if the app runs in production mode.
func IsProduction() bool {
	return GetEnv("ENV", "development") == "production"
}
