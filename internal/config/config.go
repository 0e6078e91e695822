package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// Create a new instance of the logger
// Configure it to log at the desired level
// and format it as JSON for structured logging
var log = logrus.New()

func init() {
	log.SetFormatter(&logrus.JSONFormatter{})
	environment := GetEnvWithDefault("APP_ENV", "development")
	switch environment {
	case "development":
		log.SetLevel(logrus.DebugLevel)
	case "production":
		log.SetLevel(logrus.ErrorLevel)
	default:
		// Default to info level for other environments
		log.SetLevel(logrus.InfoLevel)
	}
}

// Config used for the application configuration, loading the input from environment variables
type Config struct {
	// Server Configuration
	Environment string `json:"environment"`
	Port        int    `json:"port"`
	Host        string `json:"host"`

	// Database configuration
	DBDriver    string `json:"db_driver"`
	DatabaseURL string `json:"database_url"`
	DBHost      string `json:"db_host"`
	DBPort      string `json:"db_port"`
	DBName      string `json:"db_name"`
	DBUser      string `json:"db_user"`
	DBPassword  string `json:"db_password"`
	DBSSLMode   string `json:"db_sslmode"`
	DBPath      string `json:"db_path"`

	// Logging configuration
	LogLevel string `json:"log_level"`

	// Token lifetimes
	AccessTokenTTL time.Duration `json:"access_token_ttl"`
	GrantTTL       time.Duration `json:"grant_ttl"`
	PurgeInterval  time.Duration `json:"purge_interval"`

	// Outer surfaces
	SwaggerEnabled bool `json:"swagger_enabled"`
	MetricsEnabled bool `json:"metrics_enabled"`
}

// Default token lifetimes in seconds
const (
	DefaultAccessTokenTTL = 86400   // 1 day
	DefaultGrantTTL       = 7776000 // 90 days
	DefaultPurgeInterval  = 3600
)

// String returns a string representation of Config with sensitive data masked
func (c *Config) String() string {
	return fmt.Sprintf("Config{Environment: %s, Port: %d, Host: %s, DBDriver: %s, DatabaseURL: %s, DBHost: %s, DBName: %s, DBUser: %s, DBPassword: [REDACTED], DBPath: %s, LogLevel: %s, AccessTokenTTL: %s, GrantTTL: %s, PurgeInterval: %s}",
		c.Environment, c.Port, c.Host, c.DBDriver, maskDatabaseURL(c.DatabaseURL), c.DBHost, c.DBName, c.DBUser, c.DBPath, c.LogLevel, c.AccessTokenTTL, c.GrantTTL, c.PurgeInterval)
}

// maskDatabaseURL masks password in database URL
func maskDatabaseURL(dbURL string) string {
	if dbURL == "" {
		return ""
	}

	parsed, err := url.Parse(dbURL)
	if err != nil {
		return "[REDACTED_INVALID_URL]"
	}

	if parsed.User != nil {
		// Replace password with [REDACTED]
		parsed.User = url.UserPassword(parsed.User.Username(), "[REDACTED]")
	}

	return parsed.String()
}

// LoadConfig read the proper configuration from environment variables and returns a Config struct
// It validates the port, the database driver, an optional DATABASE_URL and the token lifetimes
// Returns an error if any environment variable is invalid
func LoadConfig() (*Config, error) {
	log.Info("Loading configuration from environment variables")
	port, err := strconv.Atoi(GetEnvWithDefault("APP_PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid APP_PORT: %w", err)
	}

	driver := strings.ToLower(GetEnvWithDefault("DB_DRIVER", "sqlite"))
	switch driver {
	case "sqlite", "postgres", "postgresql":
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q (supported: sqlite, postgres)", driver)
	}

	dbURL := GetEnvWithDefault("DATABASE_URL", "")
	if dbURL != "" {
		// validate URL with net/url
		if _, err := url.ParseRequestURI(dbURL); err != nil {
			return nil, fmt.Errorf("invalid DATABASE_URL format: %w", err)
		}
	}

	accessTTL := GetEnvAsType("ACCESS_TOKEN_TTL", DefaultAccessTokenTTL)
	grantTTL := GetEnvAsType("GRANT_TTL", DefaultGrantTTL)
	if accessTTL <= 0 || grantTTL <= 0 {
		return nil, errors.New("ACCESS_TOKEN_TTL and GRANT_TTL must be positive")
	}
	if accessTTL >= grantTTL {
		return nil, fmt.Errorf("ACCESS_TOKEN_TTL (%d) must be lower than GRANT_TTL (%d)", accessTTL, grantTTL)
	}

	purgeInterval := GetEnvAsType("PURGE_INTERVAL", DefaultPurgeInterval)
	if purgeInterval <= 0 {
		return nil, errors.New("PURGE_INTERVAL must be positive")
	}

	config := &Config{
		Environment:    GetEnvWithDefault("APP_ENV", "development"),
		Port:           port,
		Host:           GetEnvWithDefault("APP_HOST", "localhost"),
		DBDriver:       driver,
		DatabaseURL:    dbURL,
		DBHost:         GetEnvWithDefault("DB_HOST", "localhost"),
		DBPort:         GetEnvWithDefault("DB_PORT", "5432"),
		DBName:         GetEnvWithDefault("DB_NAME", "phrasebook"),
		DBUser:         GetEnvWithDefault("DB_USER", "user"),
		DBPassword:     GetEnvWithDefault("DB_PASSWORD", "password"),
		DBSSLMode:      GetEnvWithDefault("DB_SSLMODE", "disable"),
		DBPath:         GetEnvWithDefault("DB_PATH", "phrasebook.sqlite"),
		LogLevel:       GetEnvWithDefault("LOG_LEVEL", "info"),
		AccessTokenTTL: time.Duration(accessTTL) * time.Second,
		GrantTTL:       time.Duration(grantTTL) * time.Second,
		PurgeInterval:  time.Duration(purgeInterval) * time.Second,
		SwaggerEnabled: GetEnvAsType("SWAGGER_ENABLED", true),
		MetricsEnabled: GetEnvAsType("METRICS_ENABLED", true),
	}
	log.Infof("Configuration loaded: %s", config.String())
	return config, nil
}

// Helper to get environment with default values
func GetEnvWithDefault(key, defaultValue string) string {
	log.Tracef("Getting environment variable: %s", key)
	value := os.Getenv(key)
	if value == "" {
		log.Debugf("Environment variable %s not set, using default value", key)
		return defaultValue
	}
	return value
}

// GetEnvAsType retrieves an environment variable and converts it to the specified type
// using generic type handling.
func GetEnvAsType[T any](key string, defaultValue T) T {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	var result T
	switch any(result).(type) {
	case int:
		intValue, err := strconv.Atoi(value)
		if err != nil {
			log.Warnf("Environment variable %s is not an integer, using default value", key)
			return defaultValue
		}
		return any(intValue).(T)
	case string:
		return any(value).(T)
	case bool:
		boolValue, err := strconv.ParseBool(value)
		if err != nil {
			log.Warnf("Environment variable %s is not a boolean, using default value", key)
			return defaultValue
		}
		return any(boolValue).(T)
	default:
		return defaultValue // Fallback for unsupported types
	}
}
