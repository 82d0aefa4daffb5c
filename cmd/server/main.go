package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/segyhp/ludoteca/internal/catalog"
	"github.com/segyhp/ludoteca/internal/config"
	"github.com/segyhp/ludoteca/internal/handler"
	"github.com/segyhp/ludoteca/internal/repository"
	"github.com/segyhp/ludoteca/internal/scheduler"
	"github.com/segyhp/ludoteca/internal/service"
	"github.com/segyhp/ludoteca/pkg/logger"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.New(os.Stderr, logger.LevelCritical, "text").Critical("failed to load configuration", "err", err)
		os.Exit(1)
	}

	log := logger.NewFromConfig(os.Stdout, cfg.Server.Env, cfg.Logging.Level, cfg.Logging.Format)

	// Initialize storage
	store, err := repository.NewSnapshotStore(cfg.Storage, log)
	if err != nil {
		log.Critical("failed to open storage", "err", err, "driver", cfg.Storage.Driver)
		os.Exit(1)
	}
	defer store.Close()

	// Initialize service
	library := service.NewLibraryService(catalog.New(catalog.WithLogger(log)), store, cfg.Report, log)
	library.Load(context.Background())

	libraryHandler := handler.NewLibraryHandler(library, log)
	healthHandler := handler.NewHealthHandler(library)

	// Background jobs
	jobs := scheduler.New(library, log)
	if err := jobs.ScheduleFromConfig(cfg.Scheduler, true); err != nil {
		log.Critical("failed to schedule jobs", "err", err)
		os.Exit(1)
	}
	jobs.Start()

	// Start server
	server := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      handler.NewRouter(libraryHandler, healthHandler, log),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Start server in a goroutine
	go func() {
		log.Info("server starting", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Critical("server failed to start", "err", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down server")

	// Graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.InternalError("server forced to shutdown", err)
	}
	jobs.Stop()

	// Final save so nothing since the last autosave is lost.
	if _, err := library.Save(ctx); err != nil {
		log.Critical("final save failed", "err", err)
	}

	log.Info("server exited")
}
