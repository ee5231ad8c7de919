package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config represents the application configuration
type Config struct {
	ServiceName string
	Server      ServerConfig
	Database    DatabaseConfig
	Identity    IdentityConfig
	Payment     PaymentConfig
	JWT         JWTConfig
	Log         LogConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port string
	Env  string
}

// DatabaseConfig holds database-related configuration
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
}

// IdentityConfig holds identity-provider configuration
type IdentityConfig struct {
	BaseURL        string
	ServiceRoleKey string
}

// PaymentConfig holds payments-platform configuration
type PaymentConfig struct {
	BaseURL  string
	ClientID string
	APIKey   string
	Currency string
}

// JWTConfig holds JWT-related configuration
type JWTConfig struct {
	SigningKey      string
	ExpirationHours int
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level string
}

// GetDSN returns the PostgreSQL connection string
func (c *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode)
}

// Load loads the application configuration from environment variables.
// Credentials and external endpoints have no fallback values: a missing one
// is a startup error, never a silently-used default.
func Load(serviceName string) (*Config, error) {
	// Load environment variables from .env file if it exists
	_ = godotenv.Load()

	config := &Config{
		ServiceName: serviceName,
		Server: ServerConfig{
			Port: getEnv("SERVER_PORT", "8080"),
			Env:  getEnv("APP_ENV", "development"),
		},
		Database: DatabaseConfig{
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnv("DB_PORT", "5432"),
			User:            getEnv("DB_USER", "postgres"),
			Name:            getEnv("DB_NAME", serviceName),
			SSLMode:         getEnv("DB_SSL_MODE", "disable"),
			MaxIdleConns:    getEnvAsInt("DB_MAX_IDLE_CONNS", 10),
			MaxOpenConns:    getEnvAsInt("DB_MAX_OPEN_CONNS", 100),
			ConnMaxLifetime: getEnvAsDuration("DB_CONN_MAX_LIFETIME", 1*time.Hour),
		},
		Payment: PaymentConfig{
			Currency: getEnv("PAYMENT_WALLET_CURRENCY", "EUR"),
		},
		JWT: JWTConfig{
			ExpirationHours: getEnvAsInt("JWT_EXPIRATION_HOURS", 24),
		},
		Log: LogConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
	}

	var err error
	required := []struct {
		key  string
		dest *string
	}{
		{"DB_PASSWORD", &config.Database.Password},
		{"IDENTITY_BASE_URL", &config.Identity.BaseURL},
		{"IDENTITY_SERVICE_ROLE_KEY", &config.Identity.ServiceRoleKey},
		{"PAYMENT_BASE_URL", &config.Payment.BaseURL},
		{"PAYMENT_CLIENT_ID", &config.Payment.ClientID},
		{"PAYMENT_API_KEY", &config.Payment.APIKey},
		{"JWT_SIGNING_KEY", &config.JWT.SigningKey},
	}
	for _, r := range required {
		if *r.dest, err = requireEnv(r.key); err != nil {
			return nil, err
		}
	}

	return config, nil
}

// requireEnv returns the value of a mandatory environment variable
func requireEnv(key string) (string, error) {
	value, exists := os.LookupEnv(key)
	if !exists || value == "" {
		return "", fmt.Errorf("required environment variable %s is not set", key)
	}
	return value, nil
}

// Helper function to get environment variables with defaults
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// Helper function to get environment variables as integers
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// Helper function to get environment variables as durations
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}
