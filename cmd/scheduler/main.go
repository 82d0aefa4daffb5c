package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/segyhp/ludoteca/internal/catalog"
	"github.com/segyhp/ludoteca/internal/config"
	"github.com/segyhp/ludoteca/internal/repository"
	"github.com/segyhp/ludoteca/internal/scheduler"
	"github.com/segyhp/ludoteca/internal/service"
	"github.com/segyhp/ludoteca/pkg/logger"
)

// The standalone scheduler only reads the store: it regenerates the report
// and logs overdue loans for a library owned by the CLI or the server.
func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.New(os.Stderr, logger.LevelCritical, "text").Critical("failed to load configuration", "err", err)
		os.Exit(1)
	}

	log := logger.NewFromConfig(os.Stdout, cfg.Server.Env, cfg.Logging.Level, cfg.Logging.Format)
	log.Info("starting library scheduler")

	store, err := repository.NewSnapshotStore(cfg.Storage, log)
	if err != nil {
		log.Critical("failed to open storage", "err", err, "driver", cfg.Storage.Driver)
		os.Exit(1)
	}
	defer store.Close()

	library := service.NewLibraryService(catalog.New(catalog.WithLogger(log)), store, cfg.Report, log)
	library.Load(context.Background())

	// Initialize cron scheduler
	jobs := scheduler.New(library, log, scheduler.WithReload())
	if err := jobs.ScheduleFromConfig(cfg.Scheduler, false); err != nil {
		log.Critical("failed to schedule jobs", "err", err)
		os.Exit(1)
	}

	// Start the scheduler
	jobs.Start()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down scheduler")
	jobs.Stop()
}
