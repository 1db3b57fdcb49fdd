package main

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/steveyegge/toolkit/internal/types"
	"github.com/tidwall/pretty"
)

var stateCmd = &cobra.Command{
	Use:   "state",
	Short: "Manage saved tool inputs",
	Long: `List, show and remove inputs saved with --save.

Tools: converter, retirement, flexbox, spacing, boxmodel, calendar.`,
}

var stateListCmd = &cobra.Command{
	Use:   "list [tool]",
	Short: "List saved inputs",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		var tool types.Tool
		if len(args) == 1 {
			tool = types.Tool(args[0])
			if !tool.IsValid() {
				return fmt.Errorf("unknown tool %q", args[0])
			}
		}

		s, err := openStore(ctx)
		if err != nil {
			return err
		}
		entries, err := s.ListStates(ctx, tool)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if len(entries) == 0 {
			yellow := color.New(color.FgYellow).SprintFunc()
			fmt.Fprintf(out, "%s Nothing saved yet (use --save NAME on a tool)\n", yellow("!"))
			return nil
		}
		cyan := color.New(color.FgCyan).SprintFunc()
		gray := color.New(color.FgHiBlack).SprintFunc()
		for _, e := range entries {
			fmt.Fprintf(out, "  %-12s %-24s %s\n", cyan(string(e.Tool)), e.Key,
				gray(fmt.Sprintf("%s, %s", humanize.Bytes(uint64(len(e.Value))), humanize.Time(e.UpdatedAt))))
		}
		return nil
	},
}

var stateShowCmd = &cobra.Command{
	Use:   "show TOOL NAME",
	Short: "Print saved inputs as JSON",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		tool := types.Tool(args[0])
		if !tool.IsValid() {
			return fmt.Errorf("unknown tool %q", args[0])
		}
		s, err := openStore(ctx)
		if err != nil {
			return err
		}
		entry, err := s.GetState(ctx, tool, args[1])
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), string(pretty.Pretty(bytes.TrimSpace(entry.Value))))
		return nil
	},
}

var stateRemoveCmd = &cobra.Command{
	Use:     "rm TOOL NAME",
	Aliases: []string{"remove"},
	Short:   "Delete saved inputs",
	Args:    cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		tool := types.Tool(args[0])
		if !tool.IsValid() {
			return fmt.Errorf("unknown tool %q", args[0])
		}
		s, err := openStore(ctx)
		if err != nil {
			return err
		}
		if err := s.DeleteState(ctx, tool, args[1]); err != nil {
			return err
		}
		green := color.New(color.FgGreen).SprintFunc()
		fmt.Fprintf(cmd.OutOrStdout(), "%s Removed %s/%s\n", green("✓"), tool, args[1])
		return nil
	},
}

var stateExportCmd = &cobra.Command{
	Use:   "export [tool]",
	Short: "Print every saved entry as JSON",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		var tool types.Tool
		if len(args) == 1 {
			tool = types.Tool(args[0])
		}
		s, err := openStore(ctx)
		if err != nil {
			return err
		}
		entries, err := s.ListStates(ctx, tool)
		if err != nil {
			return err
		}
		if entries == nil {
			entries = []*types.StateEntry{}
		}
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(entries)
	},
}

func init() {
	stateCmd.AddCommand(stateListCmd, stateShowCmd, stateRemoveCmd, stateExportCmd)
	rootCmd.AddCommand(stateCmd)
}
