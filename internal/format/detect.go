package format

import (
	"path/filepath"
	"regexp"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/tidwall/gjson"
)

// candidateDelimiters are tried in this order when sniffing CSV
var candidateDelimiters = []rune{',', '\t', ';', '|'}

var (
	tomlHeaderLine = regexp.MustCompile(`^\[\[?\s*[A-Za-z0-9_\-."' ]+\s*\]\]?$`)
	tomlKeyLine    = regexp.MustCompile(`^[A-Za-z0-9_\-."']+\s*=\s*\S`)
	yamlKeyLine    = regexp.MustCompile(`^(-\s+)?("[^"]*"|'[^']*'|[A-Za-z0-9_][^:,=]*?)\s*:(\s|$)`)
	yamlListLine   = regexp.MustCompile(`^-(\s|$)`)
)

// DetectFormat guesses the format of content. The filename extension wins
// when it is recognized; otherwise the content is sniffed.
func DetectFormat(filename, content string) Format {
	if f := FormatFromExtension(filename); f != FormatUnknown {
		return f
	}
	return DetectContent(content)
}

// FormatFromExtension maps a file name to a format by extension only
func FormatFromExtension(filename string) Format {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".json":
		return FormatJSON
	case ".yaml", ".yml":
		return FormatYAML
	case ".xml":
		return FormatXML
	case ".csv", ".tsv":
		return FormatCSV
	case ".toml":
		return FormatTOML
	}
	return FormatUnknown
}

// DetectContent sniffs content in precedence order:
// JSON parse attempt, XML brackets, TOML tables, YAML keys, CSV delimiters.
func DetectContent(content string) Format {
	trimmed := strings.TrimSpace(stripBOM(content))
	if trimmed == "" {
		return FormatUnknown
	}
	if !isText([]byte(content)) {
		return FormatUnknown
	}

	if gjson.Valid(trimmed) {
		return FormatJSON
	}
	if strings.HasPrefix(trimmed, "<") && strings.HasSuffix(trimmed, ">") {
		return FormatXML
	}
	if looksLikeTOML(trimmed) {
		return FormatTOML
	}
	if looksLikeYAML(trimmed) {
		return FormatYAML
	}
	if _, ok := consistentDelimiter(trimmed); ok {
		return FormatCSV
	}
	return FormatUnknown
}

// stripBOM drops a leading UTF-8 byte order mark
func stripBOM(s string) string {
	return strings.TrimPrefix(s, "\ufeff")
}

// isText rejects binary payloads before any heuristic runs
func isText(b []byte) bool {
	for mt := mimetype.Detect(b); mt != nil; mt = mt.Parent() {
		if mt.Is("text/plain") {
			return true
		}
	}
	return false
}

func significantLines(content string) []string {
	var lines []string
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimRight(line, "\r")
		t := strings.TrimSpace(line)
		if t == "" || strings.HasPrefix(t, "#") {
			continue
		}
		lines = append(lines, line)
	}
	return lines
}

// looksLikeTOML requires every top-level line to be a [table] header or a
// key = value assignment.
func looksLikeTOML(content string) bool {
	structural := 0
	for _, line := range significantLines(content) {
		t := strings.TrimSpace(line)
		switch {
		case tomlHeaderLine.MatchString(t):
			structural++
		case tomlKeyLine.MatchString(t):
			structural++
		case line != strings.TrimLeft(line, " \t"):
			// continuation of a multi-line array or inline table
		case strings.HasPrefix(t, "]") || strings.HasPrefix(t, "}"):
		default:
			return false
		}
	}
	return structural > 0
}

// looksLikeYAML requires every unindented line to be a mapping key, a list
// item or a document marker, and at least one such structural line.
func looksLikeYAML(content string) bool {
	structural := 0
	for _, line := range significantLines(content) {
		if line != strings.TrimLeft(line, " \t") {
			continue
		}
		switch {
		case line == "---" || line == "...":
		case yamlKeyLine.MatchString(line), yamlListLine.MatchString(line):
			structural++
		default:
			return false
		}
	}
	return structural > 0
}

// DetectDelimiter picks the CSV separator for content. A delimiter that
// appears the same number of times on every line wins; otherwise the most
// frequent candidate on the first line; otherwise ','.
func DetectDelimiter(content string) rune {
	if d, ok := consistentDelimiter(content); ok {
		return d
	}
	lines := significantLines(strings.TrimSpace(content))
	if len(lines) == 0 {
		return ','
	}
	best, bestCount := ',', 0
	for _, d := range candidateDelimiters {
		if n := countUnquoted(lines[0], d); n > bestCount {
			best, bestCount = d, n
		}
	}
	return best
}

func consistentDelimiter(content string) (rune, bool) {
	lines := nonEmptyLines(content)
	if len(lines) < 2 {
		return 0, false
	}
	for _, d := range candidateDelimiters {
		want := countUnquoted(lines[0], d)
		if want == 0 {
			continue
		}
		consistent := true
		for _, line := range lines[1:] {
			if countUnquoted(line, d) != want {
				consistent = false
				break
			}
		}
		if consistent {
			return d, true
		}
	}
	return 0, false
}

func nonEmptyLines(content string) []string {
	var lines []string
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

// countUnquoted counts d outside double-quoted sections
func countUnquoted(line string, d rune) int {
	n := 0
	quoted := false
	for _, r := range line {
		switch {
		case r == '"':
			quoted = !quoted
		case r == d && !quoted:
			n++
		}
	}
	return n
}
