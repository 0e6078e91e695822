package database

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

var log = logrus.New()

func init() {
	log.SetFormatter(&logrus.JSONFormatter{})
	log.SetLevel(logrus.InfoLevel)
}

// retryDelays is the backoff schedule between connection attempts
var retryDelays = []time.Duration{1 * time.Second, 2 * time.Second, 4 * time.Second, 8 * time.Second, 16 * time.Second}

// InitDatabase initializes the database connection based on the provided configuration
// It supports both PostgreSQL and SQLite drivers with automatic retry logic and connection pooling
func InitDatabase(cfg DatabaseConfig) (*gorm.DB, error) {
	var db *gorm.DB
	var err error

	// Normalize driver name
	driver := strings.ToLower(cfg.Driver)
	dialector, err := openDialector(driver, cfg)
	if err != nil {
		return nil, err
	}

	log.WithFields(logrus.Fields{
		"db_driver": driver,
		"db_host":   cfg.Host,
		"db_name":   cfg.Name,
		"db_path":   cfg.Path,
	}).Info("Initializing database connection")

	maxRetries := len(retryDelays)
	for attempt := 1; attempt <= maxRetries; attempt++ {
		log.WithFields(logrus.Fields{
			"attempt":     attempt,
			"max_retries": maxRetries,
		}).Info("Attempting database connection")

		db, err = gorm.Open(dialector, &gorm.Config{TranslateError: true})
		if err == nil {
			err = verifyConnection(db, driver)
			if err == nil {
				log.WithFields(logrus.Fields{
					"db_driver": driver,
					"attempt":   attempt,
				}).Info("Database initialized successfully")
				return db, nil
			}
		}

		log.WithFields(logrus.Fields{
			"attempt": attempt,
			"error":   err.Error(),
		}).Warn("Database connection attempt failed")

		// Don't wait after the last attempt
		if attempt < maxRetries {
			delay := retryDelays[attempt-1]
			log.WithField("delay", delay).Info("Retrying database connection")
			time.Sleep(delay)
		}
	}

	// All retries exhausted
	return nil, fmt.Errorf("failed to connect to database after %d attempts: %w", maxRetries, err)
}

func openDialector(driver string, cfg DatabaseConfig) (gorm.Dialector, error) {
	switch driver {
	case "postgres", "postgresql":
		log.WithField("dsn_host", cfg.Host).Debug("Connecting to PostgreSQL")
		return postgres.Open(cfg.DSN()), nil
	case "sqlite", "":
		log.WithField("db_path", cfg.Path).Debug("Connecting to SQLite")
		return sqlite.Open(cfg.DSN()), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s (supported: postgres, sqlite)", cfg.Driver)
	}
}

// verifyConnection pings the database and configures the pool
func verifyConnection(db *gorm.DB, driver string) error {
	sqlDB, err := db.DB()
	if err != nil {
		log.WithError(err).Error("Failed to get database instance")
		return err
	}
	if err := sqlDB.Ping(); err != nil {
		log.WithError(err).Error("Failed to ping database")
		return err
	}
	log.Info("Database connection successful, configuring connection pool")
	configureConnectionPool(sqlDB, driver)
	return nil
}

// configureConnectionPool sets up connection pool parameters.
// SQLite serializes writers and an in-memory database lives as long as its
// connection, so it gets a single connection that is never recycled.
func configureConnectionPool(sqlDB *sql.DB, driver string) {
	maxOpen, maxIdle, lifetime := 25, 5, 5*time.Minute
	if driver == "sqlite" || driver == "" {
		maxOpen, maxIdle, lifetime = 1, 1, 0
	}
	sqlDB.SetMaxOpenConns(maxOpen)
	sqlDB.SetMaxIdleConns(maxIdle)
	sqlDB.SetConnMaxLifetime(lifetime)

	log.WithFields(logrus.Fields{
		"max_open_conns":    maxOpen,
		"max_idle_conns":    maxIdle,
		"conn_max_lifetime": lifetime.String(),
	}).Debug("Connection pool configured")
}
