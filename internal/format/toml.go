package format

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

func parseTOML(content string) (any, error) {
	var v map[string]any
	if err := toml.Unmarshal([]byte(content), &v); err != nil {
		return nil, fmt.Errorf("invalid TOML: %w", err)
	}
	return normalize(v), nil
}

// serializeTOML requires a table at the top level. Arrays are wrapped as
// {items = [...]} and scalars as {value = ...}. TOML has no null, so nil
// keys are dropped and nil array elements become empty strings.
func serializeTOML(data any, opts Options) (string, error) {
	var table map[string]any
	switch t := data.(type) {
	case map[string]any:
		table = t
	case []any:
		table = map[string]any{"items": t}
	case nil:
		return "", ErrEmptyInput
	default:
		table = map[string]any{"value": t}
	}

	var buf bytes.Buffer
	enc := toml.NewEncoder(&buf)
	enc.SetIndentSymbol(strings.Repeat(" ", max(opts.Indent, 0)))
	if err := enc.Encode(stripNulls(table)); err != nil {
		return "", fmt.Errorf("failed to encode TOML: %w", err)
	}
	return buf.String(), nil
}

func stripNulls(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			if val == nil {
				continue
			}
			out[k] = stripNulls(val)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			if val == nil {
				out[i] = ""
				continue
			}
			out[i] = stripNulls(val)
		}
		return out
	}
	return v
}
