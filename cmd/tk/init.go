package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/steveyegge/toolkit/internal/storage"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a project-local database in the current directory",
	Long: `Create .tk/tk.db in the current directory.

Commands run anywhere below this directory use it instead of ~/.tk/tk.db,
so saved inputs, calendar blocks and history stay with the project. The
.tk directory contains a .gitignore that keeps the database out of git.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cwd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("failed to get current directory: %w", err)
		}
		path, err := storage.InitProject(cwd)
		if err != nil {
			return err
		}

		// Opening the database creates the schema
		s, err := storage.NewStorage(cmd.Context(), &storage.Config{Path: path})
		if err != nil {
			return fmt.Errorf("failed to initialize database: %w", err)
		}
		_ = s.Close()

		green := color.New(color.FgGreen).SprintFunc()
		cyan := color.New(color.FgCyan).SprintFunc()
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "\n%s Initialized tk database\n\n", green("✓"))
		fmt.Fprintf(out, "  Database: %s\n", cyan(path))
		fmt.Fprintf(out, "  Project root: %s\n\n", cyan(cwd))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
