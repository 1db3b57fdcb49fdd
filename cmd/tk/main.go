package main

import (
	"context"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/steveyegge/toolkit/internal/config"
	"github.com/steveyegge/toolkit/internal/logging"
	"github.com/steveyegge/toolkit/internal/storage"
	"go.uber.org/zap"
)

var (
	dbPath     string
	configPath string
	verbose    bool

	cfg    = config.Default()
	logger = zap.NewNop()
	store  storage.Storage
)

var rootCmd = &cobra.Command{
	Use:   "tk",
	Short: "Toolkit - format converter, calculators, CSS generators and a day planner",
	Long: `tk is a set of independent local tools:

  Format converter   detect, convert, validate, fmt, batch, repl
  Retirement         retire
  CSS                flex, spacing, boxmodel
  Time blocking      block

Tools can save their inputs under a name (--save NAME) and reload them
later (--load NAME). Saved inputs, calendar blocks and conversion history
live in a local SQLite database: .tk/tk.db in the current project (see
'tk init'), otherwise ~/.tk/tk.db.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		path := configPath
		if path == "" {
			path = config.FindFile()
		}
		loaded, err := config.Load(path)
		if err != nil {
			return err
		}
		cfg = loaded

		logger, err = logging.New(logging.Verbose(cfg.Log.Level, verbose), cfg.Log.Format)
		if err != nil {
			return err
		}
		logger.Debug("configuration loaded", zap.String("file", path), zap.Stringer("config", cfg))
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		closeStore()
		_ = logger.Sync()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "Database path (default: auto-discover .tk/tk.db)")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default: user config dir tk/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
}

// openStore opens the database on first use. Tools that never persist
// anything run without touching it.
func openStore(ctx context.Context) (storage.Storage, error) {
	if store != nil {
		return store, nil
	}
	path := dbPath
	if path == "" {
		path = cfg.Storage.Path
	}
	s, err := storage.NewStorage(ctx, &storage.Config{Path: path})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	logger.Debug("opened database", zap.String("path", s.Path()))
	store = s
	return store, nil
}

func closeStore() {
	if store == nil {
		return
	}
	if err := store.Close(); err != nil {
		logger.Warn("failed to close database", zap.Error(err))
	}
	store = nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		closeStore()
		red := color.New(color.FgRed).SprintFunc()
		fmt.Fprintf(os.Stderr, "%s %v\n", red("Error:"), err)
		os.Exit(1)
	}
}
