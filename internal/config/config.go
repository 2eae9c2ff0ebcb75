package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"
)

// Config holds all application configuration
type Config struct {
	// Server
	Port        string
	Environment string
	Timezone    string

	// Database
	DatabaseURL   string
	RunMigrations bool

	// JWT
	JWTSecret string

	// Agents directory file (yaml, json or toml)
	AgentsFile string

	// Storage
	StoragePath string

	// Background Workers
	WorkerCount int

	// CORS
	AllowedOrigins []string

	// Email (Resend)
	ResendAPIKey     string
	FromEmail        string
	ReportRecipients []string

	// Redis lock for contract submission (optional)
	RedisURL string
	LockTTL  time.Duration

	// Sentry
	SentryDSN string
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Port:             getEnv("PORT", "8080"),
		Environment:      getEnv("ENVIRONMENT", "development"),
		Timezone:         getEnv("TIMEZONE", "Africa/Tunis"),
		DatabaseURL:      getEnv("DATABASE_URL", ""),
		RunMigrations:    getEnvAsBool("RUN_MIGRATIONS", true),
		JWTSecret:        getEnv("JWT_SECRET", ""),
		AgentsFile:       getEnv("AGENTS_FILE", "./agents.yaml"),
		StoragePath:      getEnv("STORAGE_PATH", "./storage"),
		WorkerCount:      getEnvAsInt("WORKER_COUNT", 5),
		AllowedOrigins:   getEnvAsSlice("ALLOWED_ORIGINS", []string{"*"}),
		ResendAPIKey:     getEnv("RESEND_API_KEY", ""),
		FromEmail:        getEnv("FROM_EMAIL", "caisse@assurance.tn"),
		ReportRecipients: getEnvAsSlice("REPORT_RECIPIENTS", nil),
		RedisURL:         getEnv("REDIS_URL", ""),
		LockTTL:          time.Duration(getEnvAsInt("LOCK_TTL_SECONDS", 10)) * time.Second,
		SentryDSN:        getEnv("SENTRY_DSN", ""),
	}

	// Validate required configuration
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	if cfg.JWTSecret == "" && cfg.Environment == "production" {
		return nil, fmt.Errorf("JWT_SECRET is required in production")
	}

	// Set default JWT secret for development
	if cfg.JWTSecret == "" {
		cfg.JWTSecret = "dev-secret-change-in-production"
	}

	if _, err := time.LoadLocation(cfg.Timezone); err != nil {
		return nil, fmt.Errorf("invalid TIMEZONE %q: %w", cfg.Timezone, err)
	}

	return cfg, nil
}

// Location returns the ledger timezone; Load has already validated it
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

// EmailEnabled reports whether session reports can be mailed
func (c *Config) EmailEnabled() bool {
	return c.ResendAPIKey != "" && c.FromEmail != "" && len(c.ReportRecipients) > 0
}

// getEnv reads an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// getEnvAsInt reads an environment variable as integer
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvAsBool reads an environment variable as boolean
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvAsSlice reads an environment variable as comma-separated slice
func getEnvAsSlice(key string, defaultValue []string) []string {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	parts := strings.Split(valueStr, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
