package main

import (
	"fmt"

	_ "github.com/franciscosanchezn/gin-phrasebook-api/docs" // Import generated docs
	"github.com/franciscosanchezn/gin-phrasebook-api/internal/config"
	"github.com/franciscosanchezn/gin-phrasebook-api/internal/database"
	"github.com/franciscosanchezn/gin-phrasebook-api/internal/router"
	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// @title Phrasebook API
// @version 1.0
// @description Phrasebooks with translated phrases, accessed by registered consumers on behalf of users
// @host localhost:8080
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the access token.
// @securityDefinitions.apikey SecretAuth
// @in header
// @name Authorization
// @description Type "Secret" followed by a space and the consumer secret.
// @securityDefinitions.basic BasicAuth
func main() {
	// Load environment variables
	loadDotenvFile()

	// Initialize logger
	setUpLogger()

	// Load configuration
	configuration := loadConfig()

	// Initialize database connection
	db := setupDatabase(configuration)

	r, err := router.New(configuration, db, log.StandardLogger())
	checkPanicErr(err)

	// Start the server
	log.Infof("Starting server on %s:%d", configuration.Host, configuration.Port)
	if err := r.Run(fmt.Sprintf("%v:%d", configuration.Host, configuration.Port)); err != nil {
		log.WithError(err).Fatal("Server stopped")
	}
}

// checkPanicErr checks if an error occurred and panics if it did
func checkPanicErr(err error) {
	if err != nil {
		panic(err)
	}
}

// loadDotenvFile loads environment variables from a .env file
// If the file is not found, it will log a warning and use system environment variables
func loadDotenvFile() {
	if err := godotenv.Load(); err != nil {
		log.Warn("No .env file found, using system environment variables")
	}
}

// setUpLogger sets the JSON formatter and a level derived from APP_ENV.
// LOG_LEVEL overrides it when set to a valid level.
func setUpLogger() {
	log.SetFormatter(&log.JSONFormatter{})
	switch config.GetEnvWithDefault("APP_ENV", "development") {
	case "development":
		log.SetLevel(log.DebugLevel)
	case "production":
		log.SetLevel(log.ErrorLevel)
	default:
		log.SetLevel(log.InfoLevel)
	}

	if raw := config.GetEnvWithDefault("LOG_LEVEL", ""); raw != "" {
		level, err := log.ParseLevel(raw)
		if err != nil {
			log.WithField("log_level", raw).Warn("Ignoring invalid LOG_LEVEL")
			return
		}
		log.SetLevel(level)
	}
}

// loadConfig loads the application configuration from environment variables
// It returns a Config struct or panics if there is an error
func loadConfig() *config.Config {
	log.Info("Loading configuration from environment variables")
	conf, err := config.LoadConfig()
	checkPanicErr(err)
	log.Infof("Configuration loaded: %s", conf)
	return conf
}

// setupDatabase connects to the configured database and migrates the schema
func setupDatabase(conf *config.Config) *gorm.DB {
	db, err := database.InitDatabase(database.NewDatabaseConfig(conf))
	checkPanicErr(err)
	checkPanicErr(database.Migrate(db))
	return db
}
