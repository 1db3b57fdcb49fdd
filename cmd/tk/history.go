package main

import (
	"encoding/json"
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/steveyegge/toolkit/internal/types"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent conversions",
	Long: `Show the conversion history, newest first.

The history keeps the newest storage.history_limit records (default 500).

Examples:
  tk history
  tk history -n 50
  tk history --failed
  tk history --json`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		limit, _ := cmd.Flags().GetInt("limit")
		failedOnly, _ := cmd.Flags().GetBool("failed")

		s, err := openStore(ctx)
		if err != nil {
			return err
		}
		var recs []*types.ConversionRecord
		if failedOnly {
			recs, err = s.FailedConversions(ctx, limit)
		} else {
			recs, err = s.RecentConversions(ctx, limit)
		}
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			if recs == nil {
				recs = []*types.ConversionRecord{}
			}
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(recs)
		}

		if len(recs) == 0 {
			yellow := color.New(color.FgYellow).SprintFunc()
			fmt.Fprintf(out, "%s No conversions recorded\n", yellow("!"))
			return nil
		}
		green := color.New(color.FgGreen).SprintFunc()
		red := color.New(color.FgRed).SprintFunc()
		gray := color.New(color.FgHiBlack).SprintFunc()
		for _, r := range recs {
			mark, detail := green("✓"), humanize.Bytes(uint64(r.OutputBytes))
			if !r.Success {
				mark, detail = red("✗"), r.Error
			}
			from := r.From
			if r.Detected {
				from += "*"
			}
			fmt.Fprintf(out, "%s %5d  %-8s → %-5s %s  %s\n", mark, r.ID, from, r.To, r.Source,
				gray(fmt.Sprintf("%s, %s", detail, humanize.Time(r.CreatedAt))))
		}
		fmt.Fprintf(out, "\n%s\n", gray("* detected"))
		return nil
	},
}

func init() {
	historyCmd.Flags().IntP("limit", "n", 20, "Number of records to show")
	historyCmd.Flags().Bool("failed", false, "Only show failed conversions")
	historyCmd.Flags().Bool("json", false, "Print records as JSON")
	rootCmd.AddCommand(historyCmd)
}
