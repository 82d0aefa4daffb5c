package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/segyhp/ludoteca/internal/cli"
	"github.com/segyhp/ludoteca/internal/config"
	customError "github.com/segyhp/ludoteca/pkg/errors"
	"github.com/segyhp/ludoteca/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Logs go to stderr so command output stays clean.
	log := logger.NewFromConfig(os.Stderr, cfg.Server.Env, cfg.Logging.Level, cfg.Logging.Format)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := cli.NewRootCommand(cfg, log).ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", customError.Message(err))
		stop()
		os.Exit(1)
	}
}
