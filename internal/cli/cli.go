// Package cli implements the ludoteca command line. Every invocation loads
// the stored library, runs one operation and saves the result.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/segyhp/ludoteca/internal/catalog"
	"github.com/segyhp/ludoteca/internal/config"
	"github.com/segyhp/ludoteca/internal/repository"
	"github.com/segyhp/ludoteca/internal/service"
	customError "github.com/segyhp/ludoteca/pkg/errors"
	"github.com/segyhp/ludoteca/pkg/logger"
)

// readOnly marks commands that never change the library, so nothing is
// written back after they run.
const readOnly = "readonly"

type app struct {
	cfg         *config.Config
	log         logger.Logger
	catalogOpts []catalog.Option

	store   repository.SnapshotStore
	library *service.LibraryService
}

// NewRootCommand builds the ludoteca command tree. catalogOpts are handed to
// the catalog created for each invocation.
func NewRootCommand(cfg *config.Config, log logger.Logger, catalogOpts ...catalog.Option) *cobra.Command {
	a := &app{cfg: cfg, log: log, catalogOpts: catalogOpts}

	root := &cobra.Command{
		Use:           "ludoteca",
		Short:         "Board game lending library",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.open(cmd.Context(), cmd.Annotations[readOnly] == "")
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return a.close(cmd.Context(), cmd.Annotations[readOnly] == "")
		},
	}

	root.CompletionOptions.DisableDefaultCmd = true

	root.AddCommand(
		a.gameCommand(),
		a.memberCommand(),
		a.loanCommand(),
		a.fineCommand(),
		a.reportCommand(),
	)
	return root
}

// open loads the library. A command that would save refuses to run when
// the load had to drop a category, since the save would make that final.
func (a *app) open(ctx context.Context, mutating bool) error {
	store, err := repository.NewSnapshotStore(a.cfg.Storage, a.log)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}

	opts := append([]catalog.Option{catalog.WithLogger(a.log)}, a.catalogOpts...)
	a.store = store
	a.library = service.NewLibraryService(catalog.New(opts...), store, a.cfg.Report, a.log)
	a.library.Load(ctx)

	if discarded := a.library.Discarded(); mutating && len(discarded) > 0 {
		a.store = nil
		store.Close()
		return customError.WrapDiscardedData(discarded)
	}
	return nil
}

func (a *app) close(ctx context.Context, save bool) error {
	if a.store == nil {
		return nil
	}
	defer a.store.Close()

	if !save {
		return nil
	}
	_, err := a.library.Save(ctx)
	return err
}

// colorEnabled reports whether w is a terminal that can show ANSI colors.
func colorEnabled(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func overdueMarker(w io.Writer) string {
	if colorEnabled(w) {
		return "\x1b[31m[OVERDUE]\x1b[0m"
	}
	return "[OVERDUE]"
}

func readOnlyAnnotation() map[string]string {
	return map[string]string{readOnly: "true"}
}
