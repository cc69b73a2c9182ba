// Package main is the entry point for the rentboard analytics server.
//
// The server imports a bookings export into the local store, keeps it fresh
// on a cron schedule and answers pivot, classification and performance
// requests over HTTP.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aristath/rentboard/internal/config"
	"github.com/aristath/rentboard/internal/di"
	"github.com/aristath/rentboard/internal/server"
	"github.com/aristath/rentboard/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fallbackLog := logger.New(logger.Config{
			Level:  "info",
			Pretty: true,
		})
		fallbackLog.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Pretty: true,
	})
	logger.SetGlobalLogger(log)

	log.Info().Msg("Starting rentboard")

	container, jobs, err := di.Wire(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to wire dependencies")
	}
	defer container.Close()

	// Seed the store before serving so the first request sees data
	if jobs.Refresh != nil {
		if err := container.Scheduler.RunNow(jobs.Refresh); err != nil {
			log.Error().Err(err).Str("path", cfg.BookingsCSV).Msg("Initial bookings import failed")
		}
	} else {
		log.Warn().Msg("RENTBOARD_BOOKINGS_CSV not set, bookings must be uploaded via /api/bookings/import")
	}

	srvCfg := server.Config{
		Log:         log,
		DB:          container.BookingsDB,
		Analytics:   container.Analytics,
		Importer:    container.Importer,
		Imports:     container.Repository,
		Port:        cfg.Port,
		DevMode:     cfg.DevMode,
		CORSOrigins: cfg.CORSOrigins,
	}
	if jobs.Refresh != nil {
		srvCfg.RefreshJob = jobs.Refresh
	}
	srv := server.New(srvCfg)

	go func() {
		if err := srv.Start(); err != nil {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	container.Scheduler.Start()
	log.Info().Int("port", cfg.Port).Int("jobs", container.Scheduler.Entries()).Msg("Server started successfully")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	container.Scheduler.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server stopped")
}
