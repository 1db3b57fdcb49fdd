package format

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
)

// Result is the outcome of a conversion. Failures are reported through
// Success and Error rather than as Go errors so callers (CLI, REPL, batch
// runner) handle every tool the same way.
type Result struct {
	Success  bool   `json:"success"`
	Output   string `json:"output,omitempty"`
	Error    string `json:"error,omitempty"`
	From     Format `json:"from"`
	To       Format `json:"to"`
	Detected bool   `json:"detected,omitempty"`
	Data     any    `json:"-"`
}

func failure(from, to Format, err error) Result {
	return Result{From: from, To: to, Error: err.Error()}
}

// Parse decodes content in format f into the shared document model
func Parse(content string, f Format, opts Options) (any, error) {
	data, _, err := parse(content, f, opts)
	return data, err
}

func parse(content string, f Format, opts Options) (any, []string, error) {
	content = stripBOM(content)
	if strings.TrimSpace(content) == "" {
		return nil, nil, ErrEmptyInput
	}
	switch f {
	case FormatJSON:
		v, err := parseJSON(content)
		return v, nil, err
	case FormatYAML:
		v, err := parseYAML(content)
		return v, nil, err
	case FormatXML:
		v, err := parseXML(content)
		return v, nil, err
	case FormatCSV:
		rows, header, err := parseCSV(content, opts)
		if err != nil {
			return nil, nil, err
		}
		return rows, header, nil
	case FormatTOML:
		v, err := parseTOML(content)
		return v, nil, err
	}
	return nil, nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, f)
}

// Serialize encodes a document in format f
func Serialize(data any, f Format, opts Options) (string, error) {
	switch f {
	case FormatJSON:
		return serializeJSON(data, opts)
	case FormatYAML:
		return serializeYAML(data, opts)
	case FormatXML:
		return serializeXML(data, opts)
	case FormatCSV:
		return serializeCSV(data, opts)
	case FormatTOML:
		return serializeTOML(data, opts)
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, f)
}

// Convert parses content as from (detecting it when from is unknown) and
// re-emits it as to.
func Convert(content string, from, to Format, opts Options) (res Result) {
	defer func() {
		if r := recover(); r != nil {
			res = failure(from, to, fmt.Errorf("conversion failed: %v", r))
		}
	}()

	content = stripBOM(content)
	if strings.TrimSpace(content) == "" {
		return failure(from, to, ErrEmptyInput)
	}

	detected := false
	if from == "" || from == FormatUnknown {
		from = DetectContent(content)
		if from == FormatUnknown {
			return failure(from, to, errors.New("could not detect input format"))
		}
		detected = true
	}
	if !to.IsValid() {
		return failure(from, to, fmt.Errorf("%w: target %q", ErrUnsupportedFormat, to))
	}

	data, header, err := parse(content, from, opts)
	if err != nil {
		res = failure(from, to, err)
		res.Detected = detected
		return res
	}

	if opts.Select != "" {
		data, err = Select(data, opts.Select)
		if err != nil {
			res = failure(from, to, err)
			res.Detected = detected
			return res
		}
	}
	// Carry column order across formats that would otherwise sort keys
	if len(opts.Columns) == 0 && opts.Select == "" {
		switch {
		case from == FormatCSV:
			opts.Columns = header
		case from == FormatJSON && to == FormatCSV:
			opts.Columns = jsonColumns(content)
		}
	}

	out, err := Serialize(data, to, opts)
	if err != nil {
		res = failure(from, to, err)
		res.Detected = detected
		return res
	}
	return Result{
		Success:  true,
		Output:   out,
		From:     from,
		To:       to,
		Detected: detected,
		Data:     data,
	}
}

// Validate parses content without converting it
func Validate(content string, f Format, opts Options) Result {
	detected := false
	if f == "" || f == FormatUnknown {
		f = DetectContent(content)
		if f == FormatUnknown {
			return failure(f, f, errors.New("could not detect input format"))
		}
		detected = true
	}
	data, err := Parse(content, f, opts)
	if err != nil {
		res := failure(f, f, err)
		res.Detected = detected
		return res
	}
	return Result{Success: true, From: f, To: f, Detected: detected, Data: data}
}

// Reformat pretty-prints (or minifies) content in its own format. JSON is
// rewritten textually so key order survives.
func Reformat(content string, f Format, opts Options) Result {
	content = stripBOM(content)
	if f == "" || f == FormatUnknown {
		f = DetectContent(content)
	}
	if f != FormatJSON {
		return Convert(content, f, f, opts)
	}
	out, err := reformatJSON(content, opts)
	if err != nil {
		return failure(f, f, err)
	}
	return Result{Success: true, Output: out, From: f, To: f}
}

// Select extracts a sub-document by dotted path. Paths follow gjson syntax
// (users.0.name, users.#.name, config.db).
func Select(data any, path string) (any, error) {
	b, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("failed to encode document for select: %w", err)
	}
	res := gjson.GetBytes(b, path)
	if !res.Exists() {
		return nil, fmt.Errorf("select path %q matched nothing", path)
	}
	return parseJSON(res.Raw)
}
