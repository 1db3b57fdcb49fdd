package format

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/samber/lo"
	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"
)

func parseJSON(content string) (any, error) {
	dec := json.NewDecoder(strings.NewReader(content))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}
	var extra any
	if err := dec.Decode(&extra); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("invalid JSON: unexpected data after top-level value (offset %d)", dec.InputOffset())
	}
	return normalize(v), nil
}

func serializeJSON(data any, opts Options) (string, error) {
	if len(opts.Columns) > 0 {
		data = orderRows(data, opts.Columns)
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if ind := opts.indent(); ind != "" {
		enc.SetIndent("", ind)
	}
	if err := enc.Encode(data); err != nil {
		return "", fmt.Errorf("failed to encode JSON: %w", err)
	}
	return buf.String(), nil
}

// orderedRow is a table row whose keys marshal in column order rather
// than the sorted order of a Go map
type orderedRow struct {
	keys   []string
	values map[string]any
}

func (r orderedRow) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range r.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := marshalJSONValue(k)
		if err != nil {
			return nil, err
		}
		value, err := marshalJSONValue(r.values[k])
		if err != nil {
			return nil, fmt.Errorf("failed to encode %s: %w", k, err)
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func marshalJSONValue(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

// orderRows wraps the objects of a top-level array so their keys follow
// columns. Keys missing from columns come after them, sorted.
func orderRows(data any, columns []string) any {
	rows, ok := data.([]any)
	if !ok {
		return data
	}
	columns = lo.Uniq(columns)
	out := make([]any, len(rows))
	for i, row := range rows {
		m, ok := row.(map[string]any)
		if !ok {
			out[i] = row
			continue
		}
		keys := lo.Filter(columns, func(c string, _ int) bool {
			_, ok := m[c]
			return ok
		})
		extra, _ := lo.Difference(sortedKeys(m), keys)
		out[i] = orderedRow{keys: append(keys, extra...), values: m}
	}
	return out
}

// jsonColumns lists the flattened keys of the tabular part of a JSON
// document in the order they first appear. It unwraps single-key objects
// the same way CSV output does.
func jsonColumns(content string) []string {
	root := gjson.Parse(content)
	for root.IsObject() {
		var only gjson.Result
		n := 0
		root.ForEach(func(_, v gjson.Result) bool {
			only = v
			n++
			return n < 2
		})
		if n != 1 || !(only.IsArray() || only.IsObject()) {
			break
		}
		root = only
	}

	var keys []string
	seen := make(map[string]bool)
	var walk func(prefix string, obj gjson.Result)
	walk = func(prefix string, obj gjson.Result) {
		obj.ForEach(func(k, v gjson.Result) bool {
			key := k.String()
			if prefix != "" {
				key = prefix + "." + key
			}
			if v.IsObject() && len(v.Map()) > 0 {
				walk(key, v)
				return true
			}
			if !seen[key] {
				seen[key] = true
				keys = append(keys, key)
			}
			return true
		})
	}

	switch {
	case root.IsArray():
		root.ForEach(func(_, item gjson.Result) bool {
			if item.IsObject() {
				walk("", item)
			}
			return true
		})
	case root.IsObject():
		walk("", root)
	}
	return keys
}

// reformatJSON pretty-prints or minifies JSON text in place. Unlike
// serializeJSON it keeps the original key order unless SortKeys is set.
func reformatJSON(content string, opts Options) (string, error) {
	src := []byte(strings.TrimSpace(content))
	if !json.Valid(src) {
		_, err := parseJSON(content)
		return "", err
	}
	if opts.Minify {
		out := pretty.Ugly(src)
		if opts.SortKeys {
			out = pretty.PrettyOptions(out, &pretty.Options{SortKeys: true})
			out = pretty.Ugly(out)
		}
		return string(out) + "\n", nil
	}
	out := pretty.PrettyOptions(src, &pretty.Options{
		Width:    80,
		Prefix:   "",
		Indent:   opts.indent(),
		SortKeys: opts.SortKeys,
	})
	return string(out), nil
}
