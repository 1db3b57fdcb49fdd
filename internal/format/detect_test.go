package format

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		content  string
		want     Format
	}{
		{"extension wins over content", "data.yaml", `{"a": 1}`, FormatYAML},
		{"yml extension", "config.YML", "", FormatYAML},
		{"tsv extension", "sheet.tsv", "", FormatCSV},
		{"unknown extension falls back to content", "notes.txt", `[1, 2, 3]`, FormatJSON},
		{"json object", "", `{"name": "Ann", "tags": ["a"]}`, FormatJSON},
		{"json scalar", "", `42`, FormatJSON},
		{"xml document", "", `<?xml version="1.0"?><root><a>1</a></root>`, FormatXML},
		{"xml fragment", "", "  <a>1</a>\n", FormatXML},
		{"toml tables", "", "title = \"x\"\n\n[server]\nport = 8080\n", FormatTOML},
		{"toml keys only", "", "a = 1\nb = \"two\"\n", FormatTOML},
		{"yaml mapping", "", "name: Ann\nage: 30\ntags:\n  - a\n  - b\n", FormatYAML},
		{"yaml list", "", "- one\n- two\n", FormatYAML},
		{"yaml with document marker", "", "---\nkey: value\n", FormatYAML},
		{"csv comma", "", "name,age\nAnn,30\nBob,41\n", FormatCSV},
		{"csv semicolon", "", "name;age\nAnn;30\n", FormatCSV},
		{"csv tab", "", "name\tage\nAnn\t30\n", FormatCSV},
		{"csv with times is not yaml", "", "time,value\n10:30,5\n11:00,7\n", FormatCSV},
		{"csv with quoted delimiter", "", "name,city\n\"Smith, J\",Paris\n", FormatCSV},
		{"ragged delimiters", "", "a,b\nc\n", FormatUnknown},
		{"single line prose", "", "hello, world", FormatUnknown},
		{"json after byte order mark", "", "\ufeff{\"a\":1}", FormatJSON},
		{"xml after byte order mark", "", "\ufeff<a>1</a>", FormatXML},
		{"empty", "", "   \n\t", FormatUnknown},
		{"binary", "", "\x00\x01\x02\x03PK\x03\x04", FormatUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectFormat(tt.filename, tt.content))
		})
	}
}

func TestDetectDelimiter(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    rune
	}{
		{"comma", "a,b,c\n1,2,3\n", ','},
		{"semicolon", "a;b\n1;2\n", ';'},
		{"tab", "a\tb\n1\t2\n", '\t'},
		{"pipe", "a|b\n1|2\n", '|'},
		{"inconsistent falls back to first line majority", "a;b;c\n1;2\n", ';'},
		{"no delimiter", "abc\n", ','},
		{"empty", "", ','},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectDelimiter(tt.content))
		})
	}
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("YML")
	assert.NoError(t, err)
	assert.Equal(t, FormatYAML, f)

	f, err = ParseFormat("auto")
	assert.NoError(t, err)
	assert.Equal(t, FormatUnknown, f)

	_, err = ParseFormat("ini")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestParseDelimiter(t *testing.T) {
	tests := []struct {
		in   string
		want rune
	}{
		{"", 0},
		{"auto", 0},
		{"comma", ','},
		{"TAB", '\t'},
		{`\t`, '\t'},
		{"semicolon", ';'},
		{"|", '|'},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseDelimiter(tt.in)
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := ParseDelimiter("ab")
	assert.Error(t, err)
}
