// Command purger deletes grants whose renewal window has ended.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/franciscosanchezn/gin-phrasebook-api/internal/auth"
	"github.com/franciscosanchezn/gin-phrasebook-api/internal/config"
	"github.com/franciscosanchezn/gin-phrasebook-api/internal/database"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

func main() {
	if err := godotenv.Load(); err != nil {
		logrus.Warn("No .env file found, using system environment variables")
	}

	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})

	cfg, err := config.LoadConfig()
	if err != nil {
		log.WithError(err).Fatal("Failed to load configuration")
	}
	if level, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		log.SetLevel(level)
	}

	db, err := database.InitDatabase(database.NewDatabaseConfig(cfg))
	if err != nil {
		log.WithError(err).Fatal("Failed to connect to database")
	}
	if err := database.Migrate(db); err != nil {
		log.WithError(err).Fatal("Failed to migrate database")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// PURGER_METRICS_ADDR, e.g. ":9091", exposes the purge counters
	if addr := config.GetEnvWithDefault("PURGER_METRICS_ADDR", ""); addr != "" && cfg.MetricsEnabled {
		srv := &http.Server{Addr: addr, Handler: promhttp.Handler(), ReadHeaderTimeout: 5 * time.Second}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.WithError(err).Error("Metrics server failed")
			}
		}()
		defer srv.Shutdown(context.Background())
	}

	store := auth.NewGormTokenStore(db, auth.WithTTL(cfg.AccessTokenTTL, cfg.GrantTTL))
	purger := auth.NewPurger(store, cfg.PurgeInterval, log)

	log.WithField("interval", cfg.PurgeInterval.String()).Info("Starting grant purger")
	if err := purger.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.WithError(err).Fatal("Purger stopped")
	}
	log.Info("Grant purger stopped")
}
