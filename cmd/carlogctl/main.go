package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"carlog/internal/config"
	"carlog/internal/log"
	"carlog/internal/services"
	"carlog/internal/storage"
)

// app carries what every subcommand shares. The repository is opened on
// first use so migrate subcommands never trigger the automatic upgrade.
type app struct {
	cfg     *config.Config
	logger  *log.Logger
	dbPath  string
	asJSON  bool
	now     func() time.Time
	repo    *storage.SQLiteRepository
	journal *services.JournalService
}

func (a *app) open() (*services.JournalService, error) {
	if a.journal != nil {
		return a.journal, nil
	}
	repo, err := storage.NewSQLiteRepository(a.dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database %s: %w", a.dbPath, err)
	}
	a.repo = repo
	a.journal = services.NewJournalService(repo, nil)
	return a.journal, nil
}

func (a *app) close() {
	if a.repo != nil {
		_ = a.repo.Close()
		a.repo, a.journal = nil, nil
	}
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "carlogctl",
		Short:         "Inspect and maintain a carlog journal",
		Long:          `carlogctl reads the carlog database directly: service predictions, spending stats, the interval catalog and schema migrations.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			config.LoadDotEnv()
			a.cfg = config.Load()
			if lvl, _ := cmd.Flags().GetString("log-level"); lvl != "" {
				a.cfg.LogLevel = lvl
			}
			a.logger = log.New(log.Config{
				Level:     log.ParseLevel(a.cfg.LogLevel),
				Component: "cli",
				Output:    cmd.ErrOrStderr(),
			})
			log.SetDefault(a.logger)
			if a.dbPath == "" {
				a.dbPath = a.cfg.SQLiteDBPath
			}
			return nil
		},
		PersistentPostRun: func(*cobra.Command, []string) { a.close() },
	}

	root.PersistentFlags().StringVar(&a.dbPath, "db", "", "SQLite database path (default: $SQLITE_DB_PATH)")
	root.PersistentFlags().BoolVar(&a.asJSON, "json", false, "print JSON instead of tables")
	root.PersistentFlags().String("log-level", "", "log level (debug, info, warn, error)")

	root.AddCommand(carsCmd(a))
	root.AddCommand(nextServiceCmd(a))
	root.AddCommand(statsCmd(a))
	root.AddCommand(intervalsCmd(a))
	root.AddCommand(remindCmd(a))
	root.AddCommand(exportCmd(a))
	root.AddCommand(migrateCmd(a))
	return root
}

func main() {
	a := &app{now: time.Now}
	defer a.close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := newRootCmd(a).ExecuteContext(ctx); err != nil {
		slog.Error("Command failed", log.FieldError, err)
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

