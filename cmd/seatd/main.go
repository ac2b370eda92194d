package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/sirupsen/logrus"

	"seat-occupancy-backend/internal/api"
	"seat-occupancy-backend/internal/app"
	"seat-occupancy-backend/internal/notification"
	"seat-occupancy-backend/internal/seating"
)

func main() {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "./config/config.yaml" // Default path for local development
	}

	cfg, err := app.LoadConfig(configPath)
	if err != nil {
		logrus.Fatalf("failed to load configuration from %s: %v", configPath, err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a, err := app.Open(ctx, cfg)
	if err != nil {
		logrus.Fatalf("failed to start: %v", err)
	}
	defer a.Close()
	log := a.Log
	log.WithField("path", configPath).Info("configuration loaded")

	var (
		webpushOptions *webpush.Options
		notifier       seating.Notifier
	)
	if cfg.Push.Enabled() {
		webpushOptions = &webpush.Options{
			VAPIDPublicKey:  cfg.Push.PublicKey,
			VAPIDPrivateKey: cfg.Push.PrivateKey,
			Subscriber:      cfg.Push.Subject,
			TTL:             cfg.Push.TTL,
		}
		pool := notification.NewWorkerPool(cfg.WorkerPool.Size, a.DB, webpushOptions, log)
		pool.Start(ctx)
		notifier = pool
		log.WithField("workers", cfg.WorkerPool.Size).Info("vacancy notifications enabled")
	} else {
		log.Warn("VAPID keys not configured, vacancy notifications disabled")
	}

	go a.Importer.RunSweeper(ctx, 10*time.Minute)

	handler := api.NewHandler(api.Deps{
		Engine:      a.Engine(notifier),
		Importer:    a.Importer,
		Reports:     a.Reports,
		DB:          a.DB,
		WebPush:     webpushOptions,
		MaxUploadMB: cfg.Import.MaxUploadMB,
		Log:         log,
	})
	router := api.NewRouter(handler, cfg.Server)
	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.WithField("port", cfg.Server.Port).Info("HTTP server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("HTTP server ListenAndServe: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	<-stop
	log.Info("shutdown signal received, stopping services")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("HTTP server shutdown failed")
		return
	}

	log.Info("server gracefully stopped")
}
