package format

import (
	"errors"
	"fmt"
	"strings"
)

// Format identifies a structured text format
type Format string

const (
	FormatJSON    Format = "json"
	FormatYAML    Format = "yaml"
	FormatXML     Format = "xml"
	FormatCSV     Format = "csv"
	FormatTOML    Format = "toml"
	FormatUnknown Format = "unknown"
)

var (
	// ErrUnsupportedFormat is returned for format names that are not recognized
	ErrUnsupportedFormat = errors.New("unsupported format")

	// ErrEmptyInput is returned when there is nothing to parse
	ErrEmptyInput = errors.New("input is empty")
)

// All returns every concrete format in display order
func All() []Format {
	return []Format{FormatJSON, FormatYAML, FormatXML, FormatCSV, FormatTOML}
}

// IsValid reports whether f is a concrete, parseable format
func (f Format) IsValid() bool {
	switch f {
	case FormatJSON, FormatYAML, FormatXML, FormatCSV, FormatTOML:
		return true
	}
	return false
}

func (f Format) String() string {
	return string(f)
}

// Extension returns the canonical file extension (with dot)
func (f Format) Extension() string {
	if !f.IsValid() {
		return ".txt"
	}
	return "." + string(f)
}

// ParseFormat converts a user supplied name (flag value, REPL argument) to a Format
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	case "xml":
		return FormatXML, nil
	case "csv", "tsv":
		return FormatCSV, nil
	case "toml":
		return FormatTOML, nil
	case "", "auto", "unknown":
		return FormatUnknown, nil
	}
	return FormatUnknown, fmt.Errorf("%w: %q (expected one of json, yaml, xml, csv, toml)", ErrUnsupportedFormat, s)
}

// ParseDelimiter converts a flag value to a CSV delimiter. It accepts a
// single character or one of comma, tab, semicolon, pipe and auto (0).
func ParseDelimiter(s string) (rune, error) {
	switch strings.ToLower(s) {
	case "", "auto":
		return 0, nil
	case "comma":
		return ',', nil
	case "tab", `\t`:
		return '\t', nil
	case "semicolon":
		return ';', nil
	case "pipe":
		return '|', nil
	}
	runes := []rune(s)
	if len(runes) != 1 {
		return 0, fmt.Errorf("delimiter must be a single character or comma, tab, semicolon, pipe (got %q)", s)
	}
	return runes[0], nil
}

// Options controls parsing and serialization
type Options struct {
	// Indent is the number of spaces per nesting level (JSON, YAML, XML, TOML)
	// Default: 2
	Indent int

	// Minify emits JSON and XML without insignificant whitespace
	Minify bool

	// Delimiter is the CSV field separator; 0 means detect on parse and ',' on write
	Delimiter rune

	// RootElement wraps XML output when the data has no single top-level key
	// Default: "root"
	RootElement string

	// SortKeys orders object keys when reformatting JSON in place
	SortKeys bool

	// Select is a dotted path (users.0.name, users.#.name) applied after parsing
	Select string

	// Columns fixes the CSV header order; keys not listed are appended sorted
	Columns []string
}

// DefaultOptions returns the options used when none are given
func DefaultOptions() Options {
	return Options{
		Indent:      2,
		RootElement: "root",
	}
}

func (o Options) indent() string {
	if o.Minify || o.Indent <= 0 {
		return ""
	}
	return strings.Repeat(" ", o.Indent)
}

func (o Options) root() string {
	if o.RootElement == "" {
		return "root"
	}
	return o.RootElement
}
