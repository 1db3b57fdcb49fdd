package config

import (
	"fmt"
	"time"
)

// Config holds every tunable setting of the toolkit
type Config struct {
	Format   FormatConfig   `koanf:"format"`
	Calendar CalendarConfig `koanf:"calendar"`
	Storage  StorageConfig  `koanf:"storage"`
	Batch    BatchConfig    `koanf:"batch"`
	Log      LogConfig      `koanf:"log"`
}

// FormatConfig sets converter output defaults
type FormatConfig struct {
	// Indent is the number of spaces per nesting level
	// Default: 2, Range: 0-8
	Indent int `koanf:"indent" validate:"min=0,max=8"`

	// Delimiter is the CSV field separator; empty means detect on input
	// and use a comma on output
	Delimiter string `koanf:"delimiter" validate:"max=1"`

	// XMLRoot wraps XML output that has no single top-level key
	XMLRoot string `koanf:"xml_root" validate:"required"`

	// SortKeys orders object keys when reformatting JSON
	SortKeys bool `koanf:"sort_keys"`
}

// CalendarConfig sets time-blocking defaults
type CalendarConfig struct {
	// GridMinutes is the snapping interval
	// Default: 15, Range: 1-240
	GridMinutes int `koanf:"grid_minutes" validate:"min=1,max=240"`

	// DayStart and DayEnd bound free-slot searches, summaries and the
	// timeline, as HH:MM. DayEnd may be 24:00.
	DayStart string `koanf:"day_start" validate:"required"`
	DayEnd   string `koanf:"day_end" validate:"required"`

	// Strict rejects overlapping blocks
	Strict bool `koanf:"strict"`

	// MinFreeMinutes hides free slots shorter than this
	MinFreeMinutes int `koanf:"min_free_minutes" validate:"min=0"`

	// TimelineStepMinutes is the row size of the timeline
	TimelineStepMinutes int `koanf:"timeline_step_minutes" validate:"min=5,max=240"`
}

// StorageConfig locates the local database
type StorageConfig struct {
	// Path overrides database discovery when set
	Path string `koanf:"path"`

	// HistoryLimit caps stored conversion records; 0 keeps everything
	HistoryLimit int `koanf:"history_limit" validate:"min=0"`
}

// BatchConfig tunes multi-file conversion
type BatchConfig struct {
	// Concurrency is the number of files converted at once
	// Default: 4, Range: 1-64
	Concurrency int `koanf:"concurrency" validate:"min=1,max=64"`

	// Timeout bounds a whole batch run; 0 means no limit
	Timeout time.Duration `koanf:"timeout" validate:"min=0"`
}

// LogConfig controls diagnostic logging (stderr)
type LogConfig struct {
	Level  string `koanf:"level" validate:"oneof=debug info warn error"`
	Format string `koanf:"format" validate:"oneof=console json"`
}

// Default returns the built-in configuration
func Default() *Config {
	return &Config{
		Format: FormatConfig{
			Indent:  2,
			XMLRoot: "root",
		},
		Calendar: CalendarConfig{
			GridMinutes:         15,
			DayStart:            "08:00",
			DayEnd:              "18:00",
			MinFreeMinutes:      15,
			TimelineStepMinutes: 30,
		},
		Storage: StorageConfig{
			HistoryLimit: 500,
		},
		Batch: BatchConfig{
			Concurrency: 4,
		},
		Log: LogConfig{
			Level:  "warn",
			Format: "console",
		},
	}
}

// Grid returns the calendar snapping interval
func (c CalendarConfig) Grid() time.Duration {
	return time.Duration(c.GridMinutes) * time.Minute
}

// MinFree returns the shortest free slot worth reporting
func (c CalendarConfig) MinFree() time.Duration {
	return time.Duration(c.MinFreeMinutes) * time.Minute
}

// TimelineStep returns the timeline row size
func (c CalendarConfig) TimelineStep() time.Duration {
	return time.Duration(c.TimelineStepMinutes) * time.Minute
}

// DelimiterRune returns the configured CSV delimiter, or 0 for auto
func (c FormatConfig) DelimiterRune() rune {
	if c.Delimiter == "" {
		return 0
	}
	return []rune(c.Delimiter)[0]
}

// String returns a human-readable representation of the config
func (c *Config) String() string {
	return fmt.Sprintf(
		"Config{Format: {Indent: %d, Delimiter: %q, XMLRoot: %s, SortKeys: %t}, "+
			"Calendar: {Grid: %dm, Day: %s-%s, Strict: %t, MinFree: %dm, Step: %dm}, "+
			"Storage: {Path: %q, HistoryLimit: %d}, Batch: {Concurrency: %d, Timeout: %s}, "+
			"Log: {Level: %s, Format: %s}}",
		c.Format.Indent, c.Format.Delimiter, c.Format.XMLRoot, c.Format.SortKeys,
		c.Calendar.GridMinutes, c.Calendar.DayStart, c.Calendar.DayEnd, c.Calendar.Strict,
		c.Calendar.MinFreeMinutes, c.Calendar.TimelineStepMinutes,
		c.Storage.Path, c.Storage.HistoryLimit, c.Batch.Concurrency, c.Batch.Timeout,
		c.Log.Level, c.Log.Format,
	)
}
