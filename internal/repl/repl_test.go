package repl

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/steveyegge/toolkit/internal/format"
	"github.com/steveyegge/toolkit/internal/storage"
)

func setupTestStorage(t *testing.T) storage.Storage {
	t.Helper()

	store, err := storage.NewStorage(context.Background(), &storage.Config{Path: ":memory:"})
	if err != nil {
		t.Fatalf("Failed to create test storage: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Errorf("Failed to close storage: %v", err)
		}
	})
	return store
}

func newTestREPL(t *testing.T, store storage.Storage) (*REPL, *bytes.Buffer) {
	t.Helper()

	var out bytes.Buffer
	r, err := New(&Config{Store: store, Out: &out, HistoryLimit: 50})
	if err != nil {
		t.Fatalf("Failed to create REPL: %v", err)
	}
	return r, &out
}

// feed makes paste read the given lines
func feed(r *REPL, lines ...string) {
	r.readLine = func() (string, error) {
		if len(lines) == 0 {
			return "", io.EOF
		}
		line := lines[0]
		lines = lines[1:]
		return line, nil
	}
}

func run(t *testing.T, r *REPL, line string) {
	t.Helper()
	if err := r.processInput(line); err != nil {
		t.Fatalf("%q failed: %v", line, err)
	}
}

func TestPasteAndConvert(t *testing.T) {
	store := setupTestStorage(t)
	r, out := newTestREPL(t, store)

	feed(r, `{"name": "Ada", "langs": ["go", "sql"]}`, ".")
	run(t, r, "paste")
	if r.session.From != format.FormatJSON {
		t.Errorf("Expected pasted input detected as json, got %s", r.session.From)
	}

	out.Reset()
	run(t, r, "convert yaml")
	if !strings.HasPrefix(out.String(), "langs:\n") || !strings.Contains(out.String(), "- sql\nname: Ada\n") {
		t.Errorf("Unexpected output:\n%s", out.String())
	}

	recs, err := store.RecentConversions(context.Background(), 10)
	if err != nil {
		t.Fatalf("Failed to read history: %v", err)
	}
	if len(recs) != 1 || recs[0].To != "yaml" || !recs[0].Success {
		t.Errorf("Expected one successful yaml record, got %+v", recs)
	}
}

func TestConvertFailureIsReported(t *testing.T) {
	store := setupTestStorage(t)
	r, _ := newTestREPL(t, store)

	feed(r, `{"broken": `, ".")
	run(t, r, "paste")
	run(t, r, "from json")

	err := r.processInput("convert yaml")
	if err == nil {
		t.Fatal("Expected conversion error")
	}

	recs, _ := store.RecentConversions(context.Background(), 10)
	if len(recs) != 1 || recs[0].Success {
		t.Errorf("Expected one failed record, got %+v", recs)
	}
}

func TestLoadConvertWrite(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "people.csv")
	if err := os.WriteFile(input, []byte("name,age\nAda,36\nAlan,41\n"), 0644); err != nil {
		t.Fatalf("Failed to write input: %v", err)
	}
	r, out := newTestREPL(t, nil)

	run(t, r, "load "+input)
	if r.session.From != format.FormatCSV {
		t.Errorf("Expected csv, got %s", r.session.From)
	}

	output := filepath.Join(dir, "out", "people.json")
	run(t, r, "convert json "+output)
	data, err := os.ReadFile(output)
	if err != nil {
		t.Fatalf("Failed to read output: %v", err)
	}
	if !strings.Contains(string(data), `"name": "Ada"`) || !strings.Contains(string(data), `"age": 41`) {
		t.Errorf("Unexpected JSON output:\n%s", data)
	}
	if !strings.Contains(out.String(), "Wrote "+output) {
		t.Errorf("Expected write confirmation, got %q", out.String())
	}

	run(t, r, "use")
	if r.session.From != format.FormatJSON {
		t.Errorf("Expected buffer to hold json after use, got %s", r.session.From)
	}
}

func TestSelectAndSet(t *testing.T) {
	r, out := newTestREPL(t, nil)

	feed(r, `{"users": [{"name": "Ada"}, {"name": "Alan"}]}`, ".")
	run(t, r, "paste")
	run(t, r, "select users.1")
	run(t, r, "set indent 4")

	out.Reset()
	run(t, r, "convert json")
	if out.String() != "{\n    \"name\": \"Alan\"\n}\n" {
		t.Errorf("Unexpected output: %q", out.String())
	}

	if err := r.processInput("set indent 20"); err == nil {
		t.Error("Expected error for indent out of range")
	}
	if err := r.processInput("set delimiter ab"); err == nil {
		t.Error("Expected error for multi-character delimiter")
	}
	run(t, r, "set delimiter semicolon")
	if r.session.Options.Delimiter != ';' {
		t.Errorf("Expected ';' delimiter, got %q", r.session.Options.Delimiter)
	}
}

func TestValidateAndFmt(t *testing.T) {
	r, out := newTestREPL(t, nil)

	feed(r, `{"b": 1, "a": [1, 2]}`, ".")
	run(t, r, "paste")

	run(t, r, "validate")
	if !strings.Contains(out.String(), "valid json") {
		t.Errorf("Expected valid json, got %q", out.String())
	}

	out.Reset()
	run(t, r, "fmt minify")
	if out.String() != "{\"b\":1,\"a\":[1,2]}\n" {
		t.Errorf("Unexpected minified output: %q", out.String())
	}
}

func TestEmptyBufferErrors(t *testing.T) {
	r, _ := newTestREPL(t, nil)

	for _, line := range []string{"convert json", "validate", "fmt", "detect", "show"} {
		if err := r.processInput(line); err == nil {
			t.Errorf("Expected %q to fail on empty buffer", line)
		}
	}
	if err := r.processInput("convert"); err == nil {
		t.Error("Expected usage error")
	}
	if err := r.processInput("convert ini"); err == nil {
		t.Error("Expected unsupported format error")
	}
	if err := r.processInput("history"); err == nil {
		t.Error("Expected history to need a database")
	}
}

func TestUnknownCommand(t *testing.T) {
	r, out := newTestREPL(t, nil)
	run(t, r, "frobnicate")
	if !strings.Contains(out.String(), "Unknown command") {
		t.Errorf("Expected unknown command note, got %q", out.String())
	}
}

func TestSessionSurvivesRestart(t *testing.T) {
	store := setupTestStorage(t)

	first, _ := newTestREPL(t, store)
	feed(first, "a: 1", ".")
	run(t, first, "paste")
	run(t, first, "set indent 4")
	if err := first.processInput("exit"); err != io.EOF {
		t.Fatalf("Expected io.EOF from exit, got %v", err)
	}

	second, _ := newTestREPL(t, store)
	second.restoreSession()
	if second.session.Content != "a: 1\n" {
		t.Errorf("Expected restored content, got %q", second.session.Content)
	}
	if second.session.Options.Indent != 4 {
		t.Errorf("Expected restored indent 4, got %d", second.session.Options.Indent)
	}
}

func TestHistoryCommand(t *testing.T) {
	store := setupTestStorage(t)
	r, out := newTestREPL(t, store)

	run(t, r, "history")
	if !strings.Contains(out.String(), "No conversions yet") {
		t.Errorf("Expected empty history, got %q", out.String())
	}

	feed(r, "a: 1", ".")
	run(t, r, "paste")
	run(t, r, "convert toml")

	out.Reset()
	run(t, r, "history 5")
	if !strings.Contains(out.String(), "buffer yaml → toml") {
		t.Errorf("Expected history line, got %q", out.String())
	}
}
