package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

// Config holds all application configuration
type Config struct {
	Database DatabaseConfig
	Server   ServerConfig
	Auth     AuthConfig
	Payment  PaymentConfig
	Events   EventsConfig
	Jobs     JobsConfig
	Log      LogConfig
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	URL             string
	Host            string
	Port            string
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	AutoMigrate     bool
}

// ServerConfig holds server settings
type ServerConfig struct {
	Port           string
	AllowedOrigins []string
}

// AuthConfig holds identity token settings
type AuthConfig struct {
	IdentitySecret     string
	Issuer             string
	Audience           string
	BootstrapAdminUIDs []string
}

// PaymentConfig holds payment gateway settings
type PaymentConfig struct {
	BaseURL        string
	APIKey         string
	WebhookSecret  string
	WebhookHeader  string
	WebhookURL     string
	RedirectURL    string
	CancelURL      string
	MinDeposit     decimal.Decimal
	RequestTimeout time.Duration
}

// EventsConfig holds message bus settings. An empty NATSURL disables publishing.
type EventsConfig struct {
	NATSURL string
}

// JobsConfig holds background job settings
type JobsConfig struct {
	PendingDepositTTL    time.Duration
	PendingSweepInterval time.Duration
}

// LogConfig holds logging settings
type LogConfig struct {
	Level  string
	Format string
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Try to load .env file (ignore error if it doesn't exist)
	_ = godotenv.Load()

	config := &Config{
		Database: DatabaseConfig{
			URL:             getEnv("DATABASE_URL", ""),
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnv("DB_PORT", "5432"),
			User:            getEnv("DB_USER", "postgres"),
			Password:        getEnv("DB_PASSWORD", ""),
			DBName:          getEnv("DB_NAME", "tournament_arena"),
			SSLMode:         getEnv("DB_SSLMODE", "disable"),
			MaxOpenConns:    getEnvInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getEnvDuration("DB_CONN_MAX_LIFETIME", 30*time.Minute),
			AutoMigrate:     getEnvBool("DB_AUTO_MIGRATE", true),
		},
		Server: ServerConfig{
			Port:           getEnv("SERVER_PORT", "8080"),
			AllowedOrigins: getEnvList("ALLOWED_ORIGINS", []string{"http://localhost:3000", "http://localhost:5173"}),
		},
		Auth: AuthConfig{
			IdentitySecret:     getEnv("IDENTITY_JWT_SECRET", ""),
			Issuer:             getEnv("IDENTITY_ISSUER", ""),
			Audience:           getEnv("IDENTITY_AUDIENCE", ""),
			BootstrapAdminUIDs: getEnvList("BOOTSTRAP_ADMIN_UIDS", nil),
		},
		Payment: PaymentConfig{
			BaseURL:        getEnv("PAYMENT_BASE_URL", "https://pay.example.com"),
			APIKey:         getEnv("PAYMENT_API_KEY", ""),
			WebhookSecret:  getEnv("PAYMENT_WEBHOOK_SECRET", ""),
			WebhookHeader:  getEnv("PAYMENT_WEBHOOK_HEADER", "X-Webhook-Secret"),
			WebhookURL:     getEnv("PAYMENT_WEBHOOK_URL", "http://localhost:8080/api/payments/webhook"),
			RedirectURL:    getEnv("PAYMENT_REDIRECT_URL", "http://localhost:3000/wallet?status=success"),
			CancelURL:      getEnv("PAYMENT_CANCEL_URL", "http://localhost:3000/wallet?status=cancelled"),
			MinDeposit:     getEnvDecimal("MIN_DEPOSIT", decimal.NewFromInt(10)),
			RequestTimeout: getEnvDuration("PAYMENT_TIMEOUT", 30*time.Second),
		},
		Events: EventsConfig{
			NATSURL: getEnv("NATS_URL", ""),
		},
		Jobs: JobsConfig{
			PendingDepositTTL:    getEnvDuration("PENDING_DEPOSIT_TTL", 24*time.Hour),
			PendingSweepInterval: getEnvDuration("PENDING_SWEEP_INTERVAL", 15*time.Minute),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "text"),
		},
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate checks that required settings are present
func (c *Config) Validate() error {
	if c.Auth.IdentitySecret == "" {
		return fmt.Errorf("IDENTITY_JWT_SECRET is required")
	}
	if c.Payment.WebhookSecret == "" {
		return fmt.Errorf("PAYMENT_WEBHOOK_SECRET is required")
	}
	if c.Payment.MinDeposit.IsNegative() {
		return fmt.Errorf("MIN_DEPOSIT must not be negative")
	}
	if c.Jobs.PendingSweepInterval <= 0 {
		return fmt.Errorf("PENDING_SWEEP_INTERVAL must be positive")
	}
	return nil
}

// GetDSN returns the PostgreSQL connection string
func (c *Config) GetDSN() string {
	if c.Database.URL != "" {
		return c.Database.URL
	}
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.DBName,
		c.Database.SSLMode,
	)
}

// GetMigrationURL returns a postgres:// URL for the migration tool
func (c *Config) GetMigrationURL() string {
	if c.Database.URL != "" {
		return c.Database.URL
	}
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.DBName,
		c.Database.SSLMode,
	)
}

// getEnv gets an environment variable with a fallback default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
	value, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvBool(key string, defaultValue bool) bool {
	value, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value, err := time.ParseDuration(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvDecimal(key string, defaultValue decimal.Decimal) decimal.Decimal {
	value, err := decimal.NewFromString(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvList splits a comma separated variable, dropping empty entries
func getEnvList(key string, defaultValue []string) []string {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}

	var values []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			values = append(values, part)
		}
	}
	return values
}
