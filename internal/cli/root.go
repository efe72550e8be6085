// Package cli implements the wwweather command line.
package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"github.com/JonMunkholm/wwweather/internal/config"
	"github.com/JonMunkholm/wwweather/internal/core"
	"github.com/JonMunkholm/wwweather/internal/logging"
	"github.com/JonMunkholm/wwweather/internal/storage"
	"github.com/JonMunkholm/wwweather/internal/storage/postgres"
)

// Backend opens the records store for one command. The returned close
// function is called when the command ends.
type Backend func(ctx context.Context, cfg *config.Config) (storage.Factory, func(), error)

// PostgresBackend connects a pool to cfg.Database.URL.
func PostgresBackend(ctx context.Context, cfg *config.Config) (storage.Factory, func(), error) {
	pool, err := connect(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	return postgres.NewFactory(pool), pool.Close, nil
}

func connect(ctx context.Context, cfg *config.Config) (*pgxpool.Pool, error) {
	if err := cfg.RequireDatabase(); err != nil {
		return nil, err
	}
	return postgres.NewPool(ctx, cfg.Database)
}

// App carries what every command needs.
type App struct {
	cfg     *config.Config
	backend Backend
	out     io.Writer
	silent  bool
}

// NewApp creates an App. A nil backend means PostgresBackend.
func NewApp(cfg *config.Config, backend Backend) *App {
	if backend == nil {
		backend = PostgresBackend
	}
	return &App{cfg: cfg, backend: backend}
}

// RootCommand builds the command tree.
func (a *App) RootCommand() *cobra.Command {
	var (
		dbURL     string
		logLevel  string
		logFormat string
	)

	cmd := &cobra.Command{
		Use:           "wwweather",
		Short:         "Import, export and search weather records",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			a.out = cmd.OutOrStdout()
			if dbURL != "" {
				a.cfg.Database.URL = dbURL
			}
			if logLevel != "" {
				a.cfg.Logging.Level = logLevel
			}
			if logFormat != "" {
				a.cfg.Logging.Format = logFormat
			}
			if a.silent {
				a.cfg.Logging.Level = "error"
			}
			logging.Setup(a.cfg.Logging.Level, a.cfg.Logging.Format)
			slog.Debug("configuration loaded", "config", a.cfg.String())
			return nil
		},
	}

	flags := cmd.PersistentFlags()
	flags.BoolVar(&a.silent, "silent", false, "print nothing but errors")
	flags.StringVar(&dbURL, "db-url", "", "database URL (overrides DATABASE_URL)")
	flags.StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error")
	flags.StringVar(&logFormat, "log-format", "", "log format: text or json")

	cmd.AddCommand(
		a.importCmd(),
		a.exportCmd(),
		a.searchCmd(),
		a.initDBCmd(),
		a.serveCmd(),
	)
	return cmd
}

// Execute runs the command line and returns the process exit status.
// Failures are reported on stderr as a user message with its code.
func (a *App) Execute(ctx context.Context, args []string) int {
	cmd := a.RootCommand()
	cmd.SetArgs(args)
	if err := cmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "Error: %s\n  %v\n", core.FormatUserError(err), err)
		return 1
	}
	return 0
}

// printf writes a result line unless --silent is set.
func (a *App) printf(format string, args ...any) {
	if a.silent {
		return
	}
	fmt.Fprintf(a.out, format, args...)
}

// withStore opens the backend, runs fn and closes the backend.
func (a *App) withStore(ctx context.Context, fn func(storage.Factory) error) error {
	factory, closeFn, err := a.backend(ctx, a.cfg)
	if err != nil {
		return err
	}
	defer closeFn()
	return fn(factory)
}
