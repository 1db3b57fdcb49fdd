package format

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/samber/lo"
)

// parseCSV returns the rows as an array of objects keyed by the header,
// together with the header itself so callers can preserve column order.
func parseCSV(content string, opts Options) ([]any, []string, error) {
	delim := opts.Delimiter
	if delim == 0 {
		delim = DetectDelimiter(content)
	}

	r := csv.NewReader(strings.NewReader(content))
	r.Comma = delim
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil, ErrEmptyInput
	}
	if err != nil {
		return nil, nil, fmt.Errorf("invalid CSV header: %w", err)
	}
	header = normalizeHeader(header)

	rows := []any{}
	for {
		record, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("invalid CSV: %w", err)
		}
		if len(record) > len(header) {
			line, _ := r.FieldPos(0)
			return nil, nil, fmt.Errorf("invalid CSV: row %d has %d fields, header has %d", line, len(record), len(header))
		}

		row := make(map[string]any, len(header))
		for i, col := range header {
			if i < len(record) {
				row[col] = inferScalar(record[i])
			} else {
				row[col] = ""
			}
		}
		rows = append(rows, row)
	}
	return rows, header, nil
}

// normalizeHeader trims names and fills blank or duplicate columns
func normalizeHeader(header []string) []string {
	out := make([]string, len(header))
	seen := make(map[string]int, len(header))
	for i, h := range header {
		h = strings.TrimSpace(stripBOM(h))
		if h == "" {
			h = fmt.Sprintf("column_%d", i+1)
		}
		if n := seen[h]; n > 0 {
			seen[h] = n + 1
			h = fmt.Sprintf("%s_%d", h, n+1)
		} else {
			seen[h] = 1
		}
		out[i] = h
	}
	return out
}

func serializeCSV(data any, opts Options) (string, error) {
	records, err := csvRecords(data)
	if err != nil {
		return "", err
	}
	if len(records) == 0 && len(opts.Columns) == 0 {
		return "", ErrEmptyInput
	}

	flat := make([]map[string]string, len(records))
	var keys []string
	for i, rec := range records {
		flat[i] = make(map[string]string)
		if err := flattenRow("", rec, flat[i]); err != nil {
			return "", err
		}
		rowKeys := lo.Keys(flat[i])
		sort.Strings(rowKeys)
		keys = append(keys, rowKeys...)
	}
	header := csvHeader(opts.Columns, lo.Uniq(keys))

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if opts.Delimiter != 0 {
		w.Comma = opts.Delimiter
	}
	if err := w.Write(header); err != nil {
		return "", fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, row := range flat {
		line := lo.Map(header, func(col string, _ int) string { return row[col] })
		if err := w.Write(line); err != nil {
			return "", fmt.Errorf("failed to write CSV row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("failed to write CSV: %w", err)
	}
	return buf.String(), nil
}

// csvHeader puts the requested columns first and the rest in first-seen order
func csvHeader(columns, keys []string) []string {
	if len(columns) == 0 {
		return keys
	}
	if len(keys) == 0 {
		return lo.Uniq(columns)
	}
	header := lo.Filter(columns, func(c string, _ int) bool { return lo.Contains(keys, c) })
	extra, _ := lo.Difference(keys, header)
	return append(header, extra...)
}

// csvRecords finds the tabular part of a document. Single-key wrappers
// such as {"root": {"row": [...]}} from XML are unwrapped down to the first
// array; a lone object becomes one row.
func csvRecords(data any) ([]map[string]any, error) {
	for {
		m, ok := data.(map[string]any)
		if !ok || len(m) != 1 {
			break
		}
		var inner any
		for _, v := range m {
			inner = v
		}
		switch inner.(type) {
		case []any, map[string]any:
			data = inner
			continue
		}
		break
	}

	switch t := data.(type) {
	case []any:
		records := make([]map[string]any, len(t))
		for i, item := range t {
			if m, ok := item.(map[string]any); ok {
				records[i] = m
			} else {
				records[i] = map[string]any{"value": item}
			}
		}
		return records, nil
	case map[string]any:
		return []map[string]any{t}, nil
	case nil:
		return nil, ErrEmptyInput
	}
	return []map[string]any{{"value": data}}, nil
}

// flattenRow writes nested objects as dotted columns; arrays are
// JSON-encoded into a single cell.
func flattenRow(prefix string, m map[string]any, out map[string]string) error {
	for k, v := range m {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		switch t := v.(type) {
		case map[string]any:
			if len(t) == 0 {
				out[key] = ""
				continue
			}
			if err := flattenRow(key, t, out); err != nil {
				return err
			}
		case []any:
			b, err := json.Marshal(t)
			if err != nil {
				return fmt.Errorf("failed to encode %s: %w", key, err)
			}
			out[key] = string(b)
		default:
			out[key] = scalarString(t)
		}
	}
	return nil
}
