package batch

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/steveyegge/toolkit/internal/format"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestOutputPath(t *testing.T) {
	assert.Equal(t, filepath.Join("data", "users.yaml"), OutputPath(filepath.Join("data", "users.json"), format.FormatYAML, ""))
	assert.Equal(t, filepath.Join("out", "users.csv"), OutputPath("users.json", format.FormatCSV, "out"))
	assert.Equal(t, filepath.Join("a", "noext.json"), OutputPath(filepath.Join("a", "noext"), format.FormatJSON, ""))
}

func TestRunConvertsFiles(t *testing.T) {
	dir := t.TempDir()
	outDir := filepath.Join(dir, "out")

	jobs := []Job{
		{Input: writeFile(t, dir, "a.json", `{"a": 1}`), To: format.FormatYAML},
		{Input: writeFile(t, dir, "b.csv", "x,y\n1,2\n"), To: format.FormatYAML},
		{Input: writeFile(t, dir, "bad.json", `{"a": `), To: format.FormatYAML},
		{Input: filepath.Join(dir, "missing.json"), To: format.FormatYAML},
	}

	results, err := Run(context.Background(), jobs, Config{Concurrency: 2, OutDir: outDir, Options: format.DefaultOptions()})
	require.NoError(t, err)
	require.Len(t, results, 4)

	assert.True(t, results[0].Result.Success, results[0].Result.Error)
	assert.True(t, results[0].Written)
	out, err := os.ReadFile(filepath.Join(outDir, "a.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "a: 1\n", string(out))

	assert.True(t, results[1].Result.Success, results[1].Result.Error)
	assert.Equal(t, format.FormatCSV, results[1].Result.From)

	assert.False(t, results[2].Result.Success)
	assert.Contains(t, results[2].Result.Error, "invalid JSON")
	assert.False(t, results[2].Written)

	assert.False(t, results[3].Result.Success)
	assert.Contains(t, results[3].Result.Error, "failed to read")
}

func TestRunDryRunWritesNothing(t *testing.T) {
	dir := t.TempDir()
	in := writeFile(t, dir, "a.json", `{"a": 1}`)

	results, err := Run(context.Background(), []Job{{Input: in, To: format.FormatTOML}}, Config{DryRun: true})
	require.NoError(t, err)
	assert.True(t, results[0].Result.Success, results[0].Result.Error)
	assert.False(t, results[0].Written)
	assert.NoFileExists(t, filepath.Join(dir, "a.toml"))
}

func TestRunCancelled(t *testing.T) {
	dir := t.TempDir()
	in := writeFile(t, dir, "a.json", `{"a": 1}`)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results, err := Run(ctx, []Job{{Input: in, To: format.FormatYAML}, {Input: in, To: format.FormatXML}}, Config{DryRun: true})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "batch interrupted")
	for _, r := range results {
		assert.False(t, r.Result.Success)
	}
}

func TestRunRejectsDuplicateOutputs(t *testing.T) {
	dir := t.TempDir()
	jobs := []Job{
		{Input: writeFile(t, dir, "a.json", `{"a": 1}`), To: format.FormatTOML},
		{Input: writeFile(t, dir, "a.yaml", "a: 2\n"), To: format.FormatTOML},
		{Input: writeFile(t, dir, "b.json", `{"b": 1}`), To: format.FormatTOML},
	}

	results, err := Run(context.Background(), jobs, Config{Options: format.DefaultOptions()})
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.True(t, results[0].Result.Success, results[0].Result.Error)
	assert.True(t, results[0].Written)
	out, err := os.ReadFile(filepath.Join(dir, "a.toml"))
	require.NoError(t, err)
	assert.Contains(t, string(out), "a = 1")

	assert.False(t, results[1].Result.Success)
	assert.False(t, results[1].Written)
	assert.Equal(t, filepath.Join(dir, "a.toml"), results[1].Job.Output)
	assert.Contains(t, results[1].Result.Error, "a.toml")
	assert.Contains(t, results[1].Result.Error, jobs[0].Input)

	assert.True(t, results[2].Result.Success, results[2].Result.Error)
}

func TestRunRejectsDuplicateOutputsInOutDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "one"), 0755))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "two"), 0755))
	jobs := []Job{
		{Input: writeFile(t, dir, filepath.Join("one", "x.json"), `{"n": 1}`), To: format.FormatYAML},
		{Input: writeFile(t, dir, filepath.Join("two", "x.json"), `{"n": 2}`), To: format.FormatYAML},
	}

	results, err := Run(context.Background(), jobs, Config{OutDir: filepath.Join(dir, "out"), DryRun: true})
	require.NoError(t, err)
	assert.True(t, results[0].Result.Success, results[0].Result.Error)
	assert.False(t, results[1].Result.Success)
	assert.Contains(t, results[1].Result.Error, "x.yaml")
}
