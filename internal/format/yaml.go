package format

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"
)

// parseYAML decodes every document in content. A single document is
// returned as-is; a stream of several becomes an array.
func parseYAML(content string) (any, error) {
	dec := yaml.NewDecoder(strings.NewReader(content))

	var docs []any
	for {
		var v any
		err := dec.Decode(&v)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("invalid YAML: %w", err)
		}
		docs = append(docs, normalize(v))
	}

	switch len(docs) {
	case 0:
		return nil, ErrEmptyInput
	case 1:
		return docs[0], nil
	}
	return any(docs), nil
}

func serializeYAML(data any, opts Options) (string, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	indent := opts.Indent
	if indent <= 0 {
		indent = 2
	}
	enc.SetIndent(indent)
	if err := enc.Encode(data); err != nil {
		return "", fmt.Errorf("failed to encode YAML: %w", err)
	}
	if err := enc.Close(); err != nil {
		return "", fmt.Errorf("failed to encode YAML: %w", err)
	}
	return buf.String(), nil
}
