package format

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode"
)

const (
	xmlAttrPrefix = "@"
	xmlTextKey    = "#text"
	xmlItemName   = "item"
	xmlHeader     = `<?xml version="1.0" encoding="UTF-8"?>`
)

type xmlNode struct {
	name     string
	attrs    []xml.Attr
	children []*xmlNode
	text     strings.Builder
}

// parseXML maps the element tree onto the document model. The result is
// always {rootName: value}. Attributes become "@name" keys, mixed text
// becomes "#text" and repeated children collapse into arrays.
func parseXML(content string) (any, error) {
	dec := xml.NewDecoder(strings.NewReader(content))
	dec.Strict = true

	var (
		root  *xmlNode
		stack []*xmlNode
	)
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("invalid XML: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			node := &xmlNode{name: t.Name.Local, attrs: t.Attr}
			if len(stack) == 0 {
				if root != nil {
					return nil, fmt.Errorf("invalid XML: multiple root elements (%s, %s)", root.name, node.name)
				}
				root = node
			} else {
				parent := stack[len(stack)-1]
				parent.children = append(parent.children, node)
			}
			stack = append(stack, node)
		case xml.EndElement:
			stack = stack[:len(stack)-1]
		case xml.CharData:
			if len(stack) > 0 {
				stack[len(stack)-1].text.Write(t)
			} else if strings.TrimSpace(string(t)) != "" {
				return nil, fmt.Errorf("invalid XML: text outside root element")
			}
		}
	}

	if root == nil {
		return nil, fmt.Errorf("invalid XML: no root element")
	}
	return map[string]any{root.name: root.value()}, nil
}

func (n *xmlNode) value() any {
	text := strings.TrimSpace(n.text.String())
	if len(n.attrs) == 0 && len(n.children) == 0 {
		if text == "" {
			return nil
		}
		return inferScalar(text)
	}

	out := make(map[string]any, len(n.attrs)+len(n.children)+1)
	for _, a := range n.attrs {
		if a.Name.Space == "xmlns" || a.Name.Local == "xmlns" {
			continue
		}
		out[xmlAttrPrefix+a.Name.Local] = inferScalar(a.Value)
	}
	for _, c := range n.children {
		v := c.value()
		existing, ok := out[c.name]
		if !ok {
			out[c.name] = v
			continue
		}
		if arr, isArr := existing.([]any); isArr {
			out[c.name] = append(arr, v)
		} else {
			out[c.name] = []any{existing, v}
		}
	}
	if text != "" {
		out[xmlTextKey] = inferScalar(text)
	}
	return out
}

func serializeXML(data any, opts Options) (string, error) {
	w := &xmlWriter{indent: opts.indent()}
	w.buf.WriteString(xmlHeader)
	w.newline()

	rootName, rootValue := opts.root(), data
	if m, ok := data.(map[string]any); ok && len(m) == 1 {
		for k, v := range m {
			if _, isArr := v.([]any); !isArr && !strings.HasPrefix(k, xmlAttrPrefix) && k != xmlTextKey {
				rootName, rootValue = k, v
			}
		}
	}
	if arr, ok := rootValue.([]any); ok {
		rootValue = map[string]any{xmlItemName: arr}
	}

	if err := w.element(sanitizeXMLName(rootName), rootValue, 0); err != nil {
		return "", err
	}
	w.newline()
	return w.buf.String(), nil
}

type xmlWriter struct {
	buf    bytes.Buffer
	indent string
}

func (w *xmlWriter) newline() {
	if w.indent != "" {
		w.buf.WriteByte('\n')
	}
}

func (w *xmlWriter) pad(depth int) {
	if w.indent != "" {
		w.buf.WriteString(strings.Repeat(w.indent, depth))
	}
}

func (w *xmlWriter) escape(s string) error {
	return xml.EscapeText(&w.buf, []byte(s))
}

func (w *xmlWriter) element(name string, v any, depth int) error {
	switch t := v.(type) {
	case []any:
		for i, item := range t {
			if i > 0 {
				w.newline()
			}
			if _, nested := item.([]any); nested {
				item = map[string]any{xmlItemName: item}
			}
			if err := w.element(name, item, depth); err != nil {
				return err
			}
		}
		return nil
	case map[string]any:
		return w.mapElement(name, t, depth)
	case nil:
		w.pad(depth)
		w.buf.WriteString("<" + name + "/>")
		return nil
	default:
		w.pad(depth)
		w.buf.WriteString("<" + name + ">")
		if err := w.escape(scalarString(t)); err != nil {
			return fmt.Errorf("failed to escape %s: %w", name, err)
		}
		w.buf.WriteString("</" + name + ">")
		return nil
	}
}

func (w *xmlWriter) mapElement(name string, m map[string]any, depth int) error {
	var children []string
	w.pad(depth)
	w.buf.WriteString("<" + name)
	for _, k := range sortedKeys(m) {
		if !strings.HasPrefix(k, xmlAttrPrefix) {
			if arr, ok := m[k].([]any); ok && len(arr) == 0 {
				continue
			}
			if k != xmlTextKey {
				children = append(children, k)
			}
			continue
		}
		w.buf.WriteString(" " + sanitizeXMLName(strings.TrimPrefix(k, xmlAttrPrefix)) + `="`)
		if err := w.escape(scalarString(m[k])); err != nil {
			return fmt.Errorf("failed to escape attribute %s: %w", k, err)
		}
		w.buf.WriteString(`"`)
	}

	text, hasText := m[xmlTextKey]
	if len(children) == 0 && !hasText {
		w.buf.WriteString("/>")
		return nil
	}
	w.buf.WriteString(">")

	if len(children) == 0 {
		if err := w.escape(scalarString(text)); err != nil {
			return fmt.Errorf("failed to escape %s: %w", name, err)
		}
		w.buf.WriteString("</" + name + ">")
		return nil
	}

	if hasText {
		w.newline()
		w.pad(depth + 1)
		if err := w.escape(scalarString(text)); err != nil {
			return fmt.Errorf("failed to escape %s: %w", name, err)
		}
	}
	for _, k := range children {
		w.newline()
		if err := w.element(sanitizeXMLName(k), m[k], depth+1); err != nil {
			return err
		}
	}
	w.newline()
	w.pad(depth)
	w.buf.WriteString("</" + name + ">")
	return nil
}

// sanitizeXMLName rewrites arbitrary object keys into valid element names
func sanitizeXMLName(name string) string {
	if name == "" {
		return xmlItemName
	}
	var b strings.Builder
	for i, r := range name {
		valid := unicode.IsLetter(r) || r == '_' ||
			(i > 0 && (unicode.IsDigit(r) || r == '-' || r == '.'))
		if valid {
			b.WriteRune(r)
			continue
		}
		if i == 0 && (unicode.IsDigit(r) || r == '-' || r == '.') {
			b.WriteRune('_')
			b.WriteRune(r)
			continue
		}
		b.WriteRune('_')
	}
	return b.String()
}
