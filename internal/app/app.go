// Package app wires configuration into the service components shared by the
// server and the CLI.
package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"seat-occupancy-backend/config"
	"seat-occupancy-backend/internal/db"
	"seat-occupancy-backend/internal/importer"
	"seat-occupancy-backend/internal/lock"
	"seat-occupancy-backend/internal/mapping"
	"seat-occupancy-backend/internal/report"
	"seat-occupancy-backend/internal/seating"
	"seat-occupancy-backend/internal/store"
)

// App holds the long-lived components built from a Config.
type App struct {
	Config   *config.Config
	Log      *logrus.Logger
	DB       *gorm.DB
	Store    store.Store
	Locker   lock.Locker
	Importer *importer.Pipeline
	Reports  *report.Aggregator

	redis *redis.Client
}

// NewLogger builds the process logger from the log section.
func NewLogger(cfg config.LogConfig, out io.Writer) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(out)
	if strings.EqualFold(cfg.Format, "text") {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	} else {
		log.SetFormatter(&logrus.JSONFormatter{})
	}
	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	log.SetLevel(level)
	return log
}

// Open connects the database, and Redis when configured, and builds the
// components that do not depend on the notification pipeline.
func Open(ctx context.Context, cfg *config.Config) (*App, error) {
	log := NewLogger(cfg.Log, os.Stdout)

	gormDB, err := db.Init(&cfg.Database, log)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	a := &App{
		Config: cfg,
		Log:    log,
		DB:     gormDB,
		Store:  store.NewGormStore(gormDB, cfg.Database.OpTimeout),
	}

	if cfg.Redis.Address != "" {
		rdb, err := lock.Connect(ctx, cfg.Redis.Address, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			a.Close()
			return nil, err
		}
		a.redis = rdb
		a.Locker = lock.NewRedisLocker(rdb, cfg.Redis.LockTTL, log.WithField("component", "lock"))
		log.WithField("address", cfg.Redis.Address).Info("using redis record locks")
	} else {
		a.Locker = lock.NewMemoryLocker()
		log.Info("using in-process record locks")
	}

	a.Importer = importer.NewPipeline(a.Store, a.Locker, mapping.NewMapper(mapping.DefaultDictionary()), importer.Config{
		UploadDir:  cfg.Import.UploadDir,
		SampleRows: cfg.Import.SampleRows,
		Actor:      cfg.Import.Actor,
		StagedTTL:  cfg.Import.StagedTTL,
	}, log)
	a.Reports = report.NewAggregator(a.Store)
	return a, nil
}

// Engine builds the assignment engine, publishing vacancies to notifier.
func (a *App) Engine(notifier seating.Notifier) *seating.Engine {
	return seating.NewEngine(a.Store, a.Locker, a.Log, seating.WithNotifier(notifier))
}

// Close releases the database and Redis connections.
func (a *App) Close() {
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.Log.WithError(err).Warn("failed to close redis client")
		}
	}
	if sqlDB, err := a.DB.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			a.Log.WithError(err).Warn("failed to close database")
		}
	}
}

// LoadConfig reads .env files when present and then the YAML config at path.
// A missing config file falls back to defaults plus the environment.
func LoadConfig(path string) (*config.Config, error) {
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(".env"); err != nil {
			return nil, fmt.Errorf("failed to load .env: %w", err)
		}
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return config.FromEnv()
	}
	return config.Load(path)
}
