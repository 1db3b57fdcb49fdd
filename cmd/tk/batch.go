package main

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/steveyegge/toolkit/internal/batch"
	"github.com/steveyegge/toolkit/internal/format"
)

var batchCmd = &cobra.Command{
	Use:   "batch --to FORMAT FILE...",
	Short: "Convert many files concurrently",
	Long: `Convert every file to the target format, writing each output next to
its input (or into --out-dir) with the extension swapped.

Files are converted concurrently (batch.concurrency in the config, or
--concurrency). One failing file does not stop the others. Globs are
expanded when the shell did not expand them.

Examples:
  tk batch --to yaml configs/*.json
  tk batch --to csv --out-dir export --concurrency 8 'data/*.json'
  tk batch --to toml --dry-run *.yaml`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		from, to, err := formatPair(cmd)
		if err != nil {
			return err
		}
		if to == format.FormatUnknown {
			return fmt.Errorf("--to is required (json, yaml, xml, csv or toml)")
		}
		opts, err := formatOptions(cmd)
		if err != nil {
			return err
		}

		inputs, err := expandInputs(args)
		if err != nil {
			return err
		}
		jobs := make([]batch.Job, 0, len(inputs))
		for _, in := range inputs {
			jobs = append(jobs, batch.Job{Input: in, From: from, To: to})
		}

		bc := batch.Config{
			Concurrency: cfg.Batch.Concurrency,
			Options:     opts,
			Logger:      logger,
		}
		bc.OutDir, _ = cmd.Flags().GetString("out-dir")
		bc.DryRun, _ = cmd.Flags().GetBool("dry-run")
		if cmd.Flags().Changed("concurrency") {
			bc.Concurrency, _ = cmd.Flags().GetInt("concurrency")
		}

		timeout := cfg.Batch.Timeout
		if cmd.Flags().Changed("timeout") {
			timeout, _ = cmd.Flags().GetDuration("timeout")
		}
		if timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, timeout)
			defer cancel()
		}

		results, runErr := batch.Run(ctx, jobs, bc)
		failed := printBatchResults(cmd, results, bc.DryRun)
		for _, r := range results {
			recordConversion(cmd.Context(), r.Job.Input, r.Result, r.InputBytes, r.Duration)
		}
		if runErr != nil {
			return runErr
		}
		if failed > 0 {
			return fmt.Errorf("%d of %d files failed", failed, len(results))
		}
		return nil
	},
}

func init() {
	batchCmd.Flags().StringP("from", "f", "", "Input format for every file (default: per-file detection)")
	batchCmd.Flags().StringP("to", "t", "", "Output format (json, yaml, xml, csv, toml)")
	addFormatFlags(batchCmd)
	batchCmd.Flags().String("out-dir", "", "Write outputs into this directory")
	batchCmd.Flags().Bool("dry-run", false, "Convert without writing output files")
	batchCmd.Flags().Int("concurrency", 4, "Files converted at once (default from config)")
	batchCmd.Flags().Duration("timeout", 0, "Stop scheduling files after this long (0 = no limit)")
	rootCmd.AddCommand(batchCmd)
}

// expandInputs expands glob patterns the shell left alone
func expandInputs(args []string) ([]string, error) {
	var inputs []string
	for _, arg := range args {
		matches, err := filepath.Glob(arg)
		if err != nil {
			return nil, fmt.Errorf("invalid pattern %q: %w", arg, err)
		}
		if len(matches) == 0 {
			inputs = append(inputs, arg)
			continue
		}
		inputs = append(inputs, matches...)
	}
	return inputs, nil
}

// printBatchResults prints one line per file and returns the failure count
func printBatchResults(cmd *cobra.Command, results []batch.JobResult, dryRun bool) int {
	green := color.New(color.FgGreen).SprintFunc()
	red := color.New(color.FgRed).SprintFunc()
	gray := color.New(color.FgHiBlack).SprintFunc()
	out := cmd.OutOrStdout()

	failed := 0
	for _, r := range results {
		if !r.Result.Success {
			failed++
			fmt.Fprintf(out, "%s %s: %s\n", red("✗"), r.Job.Input, r.Result.Error)
			continue
		}
		target := r.Job.Output
		if dryRun {
			target += " (dry run)"
		}
		fmt.Fprintf(out, "%s %s → %s %s\n", green("✓"), r.Job.Input, target,
			gray(fmt.Sprintf("%s, %s", humanize.Bytes(uint64(len(r.Result.Output))), r.Duration.Round(time.Microsecond))))
	}
	fmt.Fprintf(out, "\n%d converted, %d failed\n", len(results)-failed, failed)
	return failed
}
