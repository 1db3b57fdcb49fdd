package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/steveyegge/toolkit/internal/format"
	"github.com/steveyegge/toolkit/internal/storage"
	"go.uber.org/zap"
)

var detectCmd = &cobra.Command{
	Use:   "detect [file]",
	Short: "Detect the format of a file or stdin",
	Long: `Detect whether input is JSON, YAML, XML, CSV or TOML.

The file extension wins when it is known; otherwise the content is sniffed.
Prints "unknown" when nothing matches.

Examples:
  tk detect data.txt
  cat data | tk detect`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		content, source, err := readInput(cmd, args)
		if err != nil {
			return err
		}
		name := source
		if name == "-" {
			name = ""
		}
		detected := format.DetectFormat(name, content)
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, detected)
		if detected == format.FormatCSV {
			fmt.Fprintf(out, "delimiter: %q\n", format.DetectDelimiter(content))
		}
		return nil
	},
}

var convertCmd = &cobra.Command{
	Use:   "convert [file]",
	Short: "Convert between JSON, YAML, XML, CSV and TOML",
	Long: `Convert structured data from one format to another.

The input format is detected unless --from is given. Output goes to
stdout unless --out is given. Every conversion is recorded in the history
(see 'tk history').

Examples:
  tk convert --to yaml config.json
  tk convert --to json --select users.0 users.yaml
  tk convert --from csv --to json --delimiter semicolon < export.csv
  tk convert --to xml --root catalog -o catalog.xml books.json`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		content, source, err := readInput(cmd, args)
		if err != nil {
			return err
		}

		from, to, err := formatPair(cmd)
		if err != nil {
			return err
		}
		if to == format.FormatUnknown {
			return fmt.Errorf("--to is required (json, yaml, xml, csv or toml)")
		}
		if from == format.FormatUnknown && source != "-" {
			from = format.FormatFromExtension(source)
		}
		opts, err := formatOptions(cmd)
		if err != nil {
			return err
		}

		start := time.Now()
		res := format.Convert(content, from, to, opts)
		recordConversion(ctx, source, res, len(content), time.Since(start))
		return emitResult(cmd, res)
	},
}

var validateCmd = &cobra.Command{
	Use:   "validate [file]",
	Short: "Check that input parses",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		content, source, err := readInput(cmd, args)
		if err != nil {
			return err
		}
		from, _, err := formatPair(cmd)
		if err != nil {
			return err
		}
		if from == format.FormatUnknown && source != "-" {
			from = format.FormatFromExtension(source)
		}
		opts, err := formatOptions(cmd)
		if err != nil {
			return err
		}

		res := format.Validate(content, from, opts)
		if !res.Success {
			return fmt.Errorf("invalid %s: %s", res.From, res.Error)
		}
		green := color.New(color.FgGreen).SprintFunc()
		fmt.Fprintf(cmd.OutOrStdout(), "%s valid %s\n", green("✓"), res.From)
		return nil
	},
}

var fmtCmd = &cobra.Command{
	Use:   "fmt [file]",
	Short: "Pretty-print or minify input in its own format",
	Long: `Reformat input without changing its format.

JSON keeps its key order (use --sort-keys to sort). Other formats are
normalised by parsing and re-emitting them.

Examples:
  tk fmt --indent 4 config.json
  tk fmt --minify -o min.json config.json
  tk fmt --write config.json`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		content, source, err := readInput(cmd, args)
		if err != nil {
			return err
		}
		from, _, err := formatPair(cmd)
		if err != nil {
			return err
		}
		if from == format.FormatUnknown && source != "-" {
			from = format.FormatFromExtension(source)
		}
		opts, err := formatOptions(cmd)
		if err != nil {
			return err
		}

		res := format.Reformat(content, from, opts)
		if write, _ := cmd.Flags().GetBool("write"); write && res.Success {
			if source == "-" {
				return fmt.Errorf("--write needs a file argument")
			}
			return writeOutput(cmd, source, res.Output)
		}
		return emitResult(cmd, res)
	},
}

func init() {
	for _, cmd := range []*cobra.Command{convertCmd, validateCmd, fmtCmd} {
		cmd.Flags().StringP("from", "f", "", "Input format (json, yaml, xml, csv, toml; default: detect)")
		addFormatFlags(cmd)
	}
	convertCmd.Flags().StringP("to", "t", "", "Output format (json, yaml, xml, csv, toml)")
	for _, cmd := range []*cobra.Command{convertCmd, fmtCmd} {
		cmd.Flags().StringP("out", "o", "", "Write output to this file instead of stdout")
		cmd.Flags().Bool("json", false, "Print the result envelope as JSON")
	}
	fmtCmd.Flags().BoolP("write", "w", false, "Rewrite the input file in place")

	rootCmd.AddCommand(detectCmd)
	rootCmd.AddCommand(convertCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(fmtCmd)
}

// addFormatFlags registers the converter options shared by several commands
func addFormatFlags(cmd *cobra.Command) {
	cmd.Flags().Int("indent", 2, "Spaces per nesting level")
	cmd.Flags().Bool("minify", false, "Emit JSON and XML without whitespace")
	cmd.Flags().String("delimiter", "", "CSV delimiter: a character or comma, tab, semicolon, pipe (default: detect)")
	cmd.Flags().String("root", "", "XML root element name (default from config: root)")
	cmd.Flags().String("select", "", "Extract a sub-document by path before converting (users.0.name)")
	cmd.Flags().Bool("sort-keys", false, "Sort object keys when reformatting JSON")
	cmd.Flags().StringSlice("columns", nil, "CSV column order")
}

// formatOptions starts from the configured defaults and applies the
// flags the user set
func formatOptions(cmd *cobra.Command) (format.Options, error) {
	opts := format.Options{
		Indent:      cfg.Format.Indent,
		Delimiter:   cfg.Format.DelimiterRune(),
		RootElement: cfg.Format.XMLRoot,
		SortKeys:    cfg.Format.SortKeys,
	}
	flags := cmd.Flags()
	if flags.Changed("indent") {
		opts.Indent, _ = flags.GetInt("indent")
		if opts.Indent < 0 || opts.Indent > 8 {
			return opts, fmt.Errorf("--indent must be between 0 and 8")
		}
	}
	if flags.Changed("delimiter") {
		value, _ := flags.GetString("delimiter")
		d, err := format.ParseDelimiter(value)
		if err != nil {
			return opts, err
		}
		opts.Delimiter = d
	}
	if flags.Changed("root") {
		opts.RootElement, _ = flags.GetString("root")
	}
	if flags.Changed("sort-keys") {
		opts.SortKeys, _ = flags.GetBool("sort-keys")
	}
	opts.Minify, _ = flags.GetBool("minify")
	opts.Select, _ = flags.GetString("select")
	opts.Columns, _ = flags.GetStringSlice("columns")
	return opts, nil
}

// formatPair reads --from and --to (when the command has it)
func formatPair(cmd *cobra.Command) (format.Format, format.Format, error) {
	fromName, _ := cmd.Flags().GetString("from")
	from, err := format.ParseFormat(fromName)
	if err != nil {
		return "", "", fmt.Errorf("--from: %w", err)
	}
	to := format.FormatUnknown
	if cmd.Flags().Lookup("to") != nil {
		toName, _ := cmd.Flags().GetString("to")
		if to, err = format.ParseFormat(toName); err != nil {
			return "", "", fmt.Errorf("--to: %w", err)
		}
	}
	return from, to, nil
}

// emitResult prints or writes a conversion result. Failures become the
// command error.
func emitResult(cmd *cobra.Command, res format.Result) error {
	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		if err := enc.Encode(res); err != nil {
			return fmt.Errorf("failed to encode result: %w", err)
		}
		if !res.Success {
			return fmt.Errorf("conversion failed")
		}
		return nil
	}
	if !res.Success {
		return fmt.Errorf("%s", res.Error)
	}
	if res.Detected {
		logger.Info("detected input format", zap.String("format", string(res.From)))
	}

	if path, _ := cmd.Flags().GetString("out"); path != "" {
		return writeOutput(cmd, path, res.Output)
	}
	out := res.Output
	if !strings.HasSuffix(out, "\n") {
		out += "\n"
	}
	fmt.Fprint(cmd.OutOrStdout(), out)
	return nil
}

func writeOutput(cmd *cobra.Command, path, content string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	green := color.New(color.FgGreen).SprintFunc()
	fmt.Fprintf(cmd.ErrOrStderr(), "%s Wrote %s\n", green("✓"), path)
	return nil
}

// recordConversion adds a history entry. History is best effort: a
// missing or read-only database never fails a conversion.
func recordConversion(ctx context.Context, source string, res format.Result, inputBytes int, d time.Duration) {
	s, err := openStore(ctx)
	if err != nil {
		logger.Debug("skipping history", zap.Error(err))
		return
	}
	rec := storage.NewConversionRecord(source, res, inputBytes, d)
	if err := storage.RecordConversion(ctx, s, rec, cfg.Storage.HistoryLimit); err != nil {
		logger.Warn("failed to record conversion", zap.Error(err))
	}
}
