package main

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/steveyegge/toolkit/internal/format"
	"github.com/steveyegge/toolkit/internal/repl"
	"github.com/steveyegge/toolkit/internal/storage"
	"go.uber.org/zap"
)

var replCmd = &cobra.Command{
	Use:   "repl",
	Short: "Start the interactive converter shell",
	Long: `Start an interactive shell for the format converter.

Load or paste input, then convert, validate and reformat it with tab
completion. The buffer and options are restored the next time the shell
starts. Type 'help' in the shell for available commands.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		// The shell works without a database; it just forgets its session
		s, err := openStore(ctx)
		if err != nil {
			logger.Warn("running without history", zap.Error(err))
		}

		historyFile := ""
		if home, err := os.UserHomeDir(); err == nil {
			dir := filepath.Join(home, storage.DirName)
			if err := os.MkdirAll(dir, 0755); err == nil {
				historyFile = filepath.Join(dir, "repl_history")
			}
		}

		r, err := repl.New(&repl.Config{
			Store:  s,
			Logger: logger,
			Options: format.Options{
				Indent:      cfg.Format.Indent,
				Delimiter:   cfg.Format.DelimiterRune(),
				RootElement: cfg.Format.XMLRoot,
				SortKeys:    cfg.Format.SortKeys,
			},
			HistoryLimit: cfg.Storage.HistoryLimit,
			HistoryFile:  historyFile,
			Out:          cmd.OutOrStdout(),
		})
		if err != nil {
			return err
		}
		return r.Run(ctx)
	},
}

func init() {
	rootCmd.AddCommand(replCmd)
}
