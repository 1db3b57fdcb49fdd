package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/steveyegge/toolkit/internal/storage"
	"github.com/steveyegge/toolkit/internal/types"
)

// readInput returns the contents of path, or of stdin when path is empty
// or "-". The second value names the source for history records.
func readInput(cmd *cobra.Command, args []string) (string, string, error) {
	if len(args) == 0 || args[0] == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", "", fmt.Errorf("failed to read stdin: %w", err)
		}
		return string(data), "-", nil
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return "", "", fmt.Errorf("failed to read %s: %w", args[0], err)
	}
	return string(data), args[0], nil
}

// addStateFlags registers --save and --load on a tool command
func addStateFlags(cmd *cobra.Command) {
	cmd.Flags().String("save", "", "Save the inputs under this name")
	cmd.Flags().String("load", "", "Start from inputs saved under this name")
}

// loadInputs fills dest from the state named by --load, if any. Flags the
// user sets explicitly are applied on top afterwards by the caller.
func loadInputs(ctx context.Context, cmd *cobra.Command, tool types.Tool, dest any) error {
	name, _ := cmd.Flags().GetString("load")
	if name == "" {
		return nil
	}
	s, err := openStore(ctx)
	if err != nil {
		return err
	}
	if err := s.LoadState(ctx, tool, name, dest); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return fmt.Errorf("no saved %s inputs named %q (see 'tk state list %s')", tool, name, tool)
		}
		return err
	}
	return nil
}

// saveInputs stores value under the name given by --save, if any
func saveInputs(ctx context.Context, cmd *cobra.Command, tool types.Tool, value any) error {
	name, _ := cmd.Flags().GetString("save")
	if name == "" {
		return nil
	}
	s, err := openStore(ctx)
	if err != nil {
		return err
	}
	if err := s.SaveState(ctx, tool, name, value); err != nil {
		return err
	}
	green := color.New(color.FgGreen).SprintFunc()
	fmt.Fprintf(cmd.ErrOrStderr(), "%s Saved %s inputs as %q\n", green("✓"), tool, name)
	return nil
}
