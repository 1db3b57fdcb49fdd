package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func environ(vars ...string) func() []string {
	return func() []string { return vars }
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := NewLoader().WithEnviron(environ()).Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.Equal(t, 15*time.Minute, cfg.Calendar.Grid())
	assert.Equal(t, 30*time.Minute, cfg.Calendar.TimelineStep())
	assert.Equal(t, rune(0), cfg.Format.DelimiterRune())
}

func TestLoadYAMLFile(t *testing.T) {
	path := writeFile(t, "config.yaml", `
format:
  indent: 4
  delimiter: ";"
calendar:
  grid_minutes: 30
  day_start: "07:30"
  day_end: "24:00"
  strict: true
batch:
  timeout: 90s
`)
	cfg, err := NewLoader().WithEnviron(environ()).Load(path)
	require.NoError(t, err)

	assert.Equal(t, 4, cfg.Format.Indent)
	assert.Equal(t, ';', cfg.Format.DelimiterRune())
	assert.Equal(t, "root", cfg.Format.XMLRoot, "unset keys keep their defaults")
	assert.Equal(t, 30*time.Minute, cfg.Calendar.Grid())
	assert.Equal(t, "07:30", cfg.Calendar.DayStart)
	assert.True(t, cfg.Calendar.Strict)
	assert.Equal(t, 90*time.Second, cfg.Batch.Timeout)
	assert.Equal(t, 4, cfg.Batch.Concurrency)
}

func TestLoadTOMLAndJSONFiles(t *testing.T) {
	tomlPath := writeFile(t, "config.toml", "[storage]\nhistory_limit = 10\n\n[log]\nlevel = \"debug\"\n")
	cfg, err := NewLoader().WithEnviron(environ()).Load(tomlPath)
	require.NoError(t, err)
	assert.Equal(t, 10, cfg.Storage.HistoryLimit)
	assert.Equal(t, "debug", cfg.Log.Level)

	jsonPath := writeFile(t, "config.json", `{"batch": {"concurrency": 8}}`)
	cfg, err = NewLoader().WithEnviron(environ()).Load(jsonPath)
	require.NoError(t, err)
	assert.Equal(t, 8, cfg.Batch.Concurrency)

	_, err = NewLoader().WithEnviron(environ()).Load(writeFile(t, "config.ini", "x=1"))
	assert.ErrorContains(t, err, "unsupported config file type")
}

func TestLoadEnvOverridesFile(t *testing.T) {
	path := writeFile(t, "config.yaml", "calendar:\n  grid_minutes: 30\n")
	cfg, err := NewLoader().WithEnviron(environ(
		"TK_CALENDAR_GRID_MINUTES=5",
		"TK_CALENDAR_STRICT=true",
		"TK_STORAGE_PATH=/tmp/tk-test.db",
		"TK_BATCH_TIMEOUT=2m",
		"TK_DB_PATH=:memory:",
		"HOME=/root",
	)).Load(path)
	require.NoError(t, err)

	assert.Equal(t, 5, cfg.Calendar.GridMinutes)
	assert.True(t, cfg.Calendar.Strict)
	assert.Equal(t, "/tmp/tk-test.db", cfg.Storage.Path)
	assert.Equal(t, 2*time.Minute, cfg.Batch.Timeout)
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		env     []string
		wantErr string
	}{
		{"missing file", "", nil, "failed to read config file"},
		{"bad yaml", "format: [", nil, "failed to parse config file"},
		{"indent too large", "format:\n  indent: 20\n", nil, "Indent"},
		{"bad log level", "", []string{"TK_LOG_LEVEL=loud"}, "Level"},
		{"grid zero", "", []string{"TK_CALENDAR_GRID_MINUTES=0"}, "GridMinutes"},
		{"bad clock", "", []string{"TK_CALENDAR_DAY_START=8am"}, "day_start"},
		{"day ends before start", "", []string{"TK_CALENDAR_DAY_START=18:00", "TK_CALENDAR_DAY_END=08:00"}, "must be after"},
		{"not a number", "", []string{"TK_BATCH_CONCURRENCY=many"}, "failed to unmarshal"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "missing.yaml")
			if tt.file != "" {
				path = writeFile(t, "config.yaml", tt.file)
			} else if tt.name != "missing file" {
				path = ""
			}
			_, err := NewLoader().WithEnviron(environ(tt.env...)).Load(path)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestParseClock(t *testing.T) {
	tests := []struct {
		in      string
		want    time.Duration
		wantErr bool
	}{
		{"00:00", 0, false},
		{"08:30", 8*time.Hour + 30*time.Minute, false},
		{"24:00", 24 * time.Hour, false},
		{"25:00", 0, true},
		{"8", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseClock(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTransformEnvKey(t *testing.T) {
	key, value := transformEnvKey("TK_CALENDAR_MIN_FREE_MINUTES", "20")
	assert.Equal(t, "calendar.min_free_minutes", key)
	assert.Equal(t, "20", value)

	key, _ = transformEnvKey("TK_", "x")
	assert.Empty(t, key)
}

func TestConfigString(t *testing.T) {
	s := Default().String()
	assert.Contains(t, s, "Grid: 15m")
	assert.Contains(t, s, "Concurrency: 4")
}

func TestConfigValidate(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	cfg.Format.XMLRoot = ""
	assert.Error(t, cfg.Validate())

	var nilCfg *Config
	assert.Error(t, NewLoader().Validate(nilCfg))
}
