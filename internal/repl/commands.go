package repl

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/steveyegge/toolkit/internal/format"
	"github.com/steveyegge/toolkit/internal/storage"
	"go.uber.org/zap"
)

// pasteTerminator ends multi-line input
const pasteTerminator = "."

func (r *REPL) sourceName() string {
	if r.session.Source == "" {
		return "buffer"
	}
	return r.session.Source
}

func (r *REPL) requireContent() error {
	if strings.TrimSpace(r.session.Content) == "" {
		return fmt.Errorf("buffer is empty (use 'load FILE' or 'paste')")
	}
	return nil
}

// setContent replaces the buffer and forgets any earlier output
func (r *REPL) setContent(content, source string, from format.Format) {
	r.session.Content = content
	r.session.Source = source
	r.session.From = from
	r.output = ""
}

// cmdLoad reads a file into the buffer
func (r *REPL) cmdLoad(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: load FILE")
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", args[0], err)
	}
	content := string(data)
	detected := format.DetectFormat(args[0], content)
	r.setContent(content, args[0], detected)

	green := color.New(color.FgGreen).SprintFunc()
	fmt.Fprintf(r.out, "%s Loaded %s (%s, %s)\n", green("✓"), args[0], humanize.Bytes(uint64(len(data))), detected)
	return nil
}

// cmdPaste reads lines until the terminator
func (r *REPL) cmdPaste(args []string) error {
	if r.readLine == nil {
		return fmt.Errorf("paste needs an interactive terminal")
	}
	if r.rl != nil {
		r.rl.SetPrompt("... ")
		defer r.rl.SetPrompt(color.New(color.FgCyan).Sprint("tk> "))
	}
	fmt.Fprintf(r.out, "Paste input, then a line containing only %q\n", pasteTerminator)

	var lines []string
	for {
		line, err := r.readLine()
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}
		if strings.TrimSpace(line) == pasteTerminator {
			break
		}
		lines = append(lines, line)
	}

	content := strings.Join(lines, "\n")
	if len(lines) > 0 {
		content += "\n"
	}
	detected := format.DetectContent(content)
	r.setContent(content, "", detected)
	fmt.Fprintf(r.out, "Read %d lines (%s)\n", len(lines), detected)
	return nil
}

// cmdShow prints the buffer or the last output
func (r *REPL) cmdShow(args []string) error {
	if len(args) > 0 && args[0] == "output" {
		if r.output == "" {
			return fmt.Errorf("nothing converted yet")
		}
		fmt.Fprint(r.out, withNewline(r.output))
		return nil
	}
	if err := r.requireContent(); err != nil {
		return err
	}
	gray := color.New(color.FgHiBlack).SprintFunc()
	fmt.Fprintf(r.out, "%s\n", gray(fmt.Sprintf("# %s (%s)", r.sourceName(), r.session.From)))
	fmt.Fprint(r.out, withNewline(r.session.Content))
	return nil
}

// cmdClear empties the buffer
func (r *REPL) cmdClear(args []string) error {
	r.setContent("", "", format.FormatUnknown)
	fmt.Fprintln(r.out, "Buffer cleared")
	return nil
}

// cmdDetect reports the buffer's format
func (r *REPL) cmdDetect(args []string) error {
	if err := r.requireContent(); err != nil {
		return err
	}
	detected := format.DetectFormat(r.session.Source, r.session.Content)
	fmt.Fprintf(r.out, "%s\n", detected)
	if detected == format.FormatCSV {
		fmt.Fprintf(r.out, "delimiter: %q\n", format.DetectDelimiter(r.session.Content))
	}
	return nil
}

// cmdFrom overrides the buffer's format
func (r *REPL) cmdFrom(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: from FORMAT|auto")
	}
	f, err := format.ParseFormat(args[0])
	if err != nil {
		return err
	}
	r.session.From = f
	fmt.Fprintf(r.out, "Input format: %s\n", f)
	return nil
}

// cmdConvert converts the buffer and records the outcome
func (r *REPL) cmdConvert(args []string) error {
	if len(args) < 1 || len(args) > 2 {
		return fmt.Errorf("usage: convert FORMAT [FILE]")
	}
	to, err := format.ParseFormat(args[0])
	if err != nil {
		return err
	}
	if to == format.FormatUnknown {
		return fmt.Errorf("target format is required")
	}
	if err := r.requireContent(); err != nil {
		return err
	}

	start := time.Now()
	res := format.Convert(r.session.Content, r.session.From, to, r.session.Options)
	r.record(res, time.Since(start))
	if !res.Success {
		return fmt.Errorf("%s", res.Error)
	}
	if res.Detected {
		gray := color.New(color.FgHiBlack).SprintFunc()
		fmt.Fprintf(r.out, "%s\n", gray(fmt.Sprintf("# detected %s", res.From)))
	}

	r.output = res.Output
	if len(args) == 2 {
		return r.writeOutput(args[1])
	}
	fmt.Fprint(r.out, withNewline(res.Output))
	return nil
}

// cmdValidate checks that the buffer parses
func (r *REPL) cmdValidate(args []string) error {
	if err := r.requireContent(); err != nil {
		return err
	}
	res := format.Validate(r.session.Content, r.session.From, r.session.Options)
	if !res.Success {
		red := color.New(color.FgRed).SprintFunc()
		fmt.Fprintf(r.out, "%s invalid %s: %s\n", red("✗"), res.From, res.Error)
		return nil
	}
	green := color.New(color.FgGreen).SprintFunc()
	fmt.Fprintf(r.out, "%s valid %s\n", green("✓"), res.From)
	return nil
}

// cmdFmt reformats the buffer in its own format
func (r *REPL) cmdFmt(args []string) error {
	if err := r.requireContent(); err != nil {
		return err
	}
	opts := r.session.Options
	if len(args) > 0 && args[0] == "minify" {
		opts.Minify = true
	}
	res := format.Reformat(r.session.Content, r.session.From, opts)
	if !res.Success {
		return fmt.Errorf("%s", res.Error)
	}
	r.output = res.Output
	fmt.Fprint(r.out, withNewline(res.Output))
	return nil
}

// cmdSelect sets or clears the extraction path
func (r *REPL) cmdSelect(args []string) error {
	if len(args) == 0 {
		r.session.Options.Select = ""
		fmt.Fprintln(r.out, "Select cleared")
		return nil
	}
	r.session.Options.Select = args[0]
	fmt.Fprintf(r.out, "Select: %s\n", args[0])
	return nil
}

// cmdSet changes a converter option
func (r *REPL) cmdSet(args []string) error {
	if len(args) == 0 {
		o := r.session.Options
		fmt.Fprintf(r.out, "indent %d, delimiter %q, root %s, sort %t, minify %t, select %q\n",
			o.Indent, delimiterName(o.Delimiter), o.RootElement, o.SortKeys, o.Minify, o.Select)
		return nil
	}
	if len(args) != 2 {
		return fmt.Errorf("usage: set KEY VALUE")
	}

	key, value := strings.ToLower(args[0]), args[1]
	opts := &r.session.Options
	switch key {
	case "indent":
		n, err := strconv.Atoi(value)
		if err != nil || n < 0 || n > 8 {
			return fmt.Errorf("indent must be a number between 0 and 8")
		}
		opts.Indent = n
	case "delimiter":
		d, err := format.ParseDelimiter(value)
		if err != nil {
			return err
		}
		opts.Delimiter = d
	case "root":
		opts.RootElement = value
	case "sort":
		b, err := parseSwitch(value)
		if err != nil {
			return err
		}
		opts.SortKeys = b
	case "minify":
		b, err := parseSwitch(value)
		if err != nil {
			return err
		}
		opts.Minify = b
	default:
		return fmt.Errorf("unknown option %q (indent, delimiter, root, sort, minify)", key)
	}
	fmt.Fprintf(r.out, "%s = %s\n", key, value)
	return nil
}

// cmdUse moves the last output into the buffer
func (r *REPL) cmdUse(args []string) error {
	if r.output == "" {
		return fmt.Errorf("nothing converted yet")
	}
	detected := format.DetectContent(r.output)
	r.setContent(r.output, "", detected)
	fmt.Fprintf(r.out, "Buffer now holds the last output (%s)\n", detected)
	return nil
}

// cmdWrite saves the last output to a file
func (r *REPL) cmdWrite(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: write FILE")
	}
	if r.output == "" {
		return fmt.Errorf("nothing converted yet")
	}
	return r.writeOutput(args[0])
}

func (r *REPL) writeOutput(path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(withNewline(r.output)), 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	green := color.New(color.FgGreen).SprintFunc()
	fmt.Fprintf(r.out, "%s Wrote %s (%s)\n", green("✓"), path, humanize.Bytes(uint64(len(r.output))))
	return nil
}

// cmdHistory lists recent conversions
func (r *REPL) cmdHistory(args []string) error {
	if r.store == nil {
		return fmt.Errorf("history needs a database")
	}
	limit := 10
	if len(args) > 0 {
		n, err := strconv.Atoi(args[0])
		if err != nil || n < 1 {
			return fmt.Errorf("history limit must be a positive number")
		}
		limit = n
	}

	recs, err := r.store.RecentConversions(r.ctx, limit)
	if err != nil {
		return err
	}
	if len(recs) == 0 {
		fmt.Fprintln(r.out, "No conversions yet")
		return nil
	}

	green := color.New(color.FgGreen).SprintFunc()
	red := color.New(color.FgRed).SprintFunc()
	for _, rec := range recs {
		mark := green("✓")
		detail := humanize.Bytes(uint64(rec.OutputBytes))
		if !rec.Success {
			mark = red("✗")
			detail = rec.Error
		}
		fmt.Fprintf(r.out, "%s %-4d %s %s → %s  %s  (%s)\n", mark, rec.ID, rec.Source, rec.From, rec.To,
			detail, humanize.Time(rec.CreatedAt))
	}
	return nil
}

// record stores a conversion in the history, if there is a store
func (r *REPL) record(res format.Result, d time.Duration) {
	if r.store == nil {
		return
	}
	rec := storage.NewConversionRecord(r.sourceName(), res, len(r.session.Content), d)
	if err := storage.RecordConversion(r.ctx, r.store, rec, r.historyLimit); err != nil {
		r.logger.Warn("failed to record conversion", zap.Error(err))
	}
}

func withNewline(s string) string {
	if s == "" || strings.HasSuffix(s, "\n") {
		return s
	}
	return s + "\n"
}

func parseSwitch(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "on", "true", "yes", "1":
		return true, nil
	case "off", "false", "no", "0":
		return false, nil
	}
	return false, fmt.Errorf("expected on or off, got %q", s)
}

func delimiterName(d rune) string {
	if d == 0 {
		return "auto"
	}
	return string(d)
}
