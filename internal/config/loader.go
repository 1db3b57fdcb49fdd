package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// EnvPrefix marks environment variables that override settings, e.g.
// TK_CALENDAR_GRID_MINUTES=30 sets calendar.grid_minutes
const EnvPrefix = "TK_"

// Loader merges defaults, an optional config file and the environment
type Loader struct {
	koanf     *koanf.Koanf
	validator *validator.Validate
	environ   func() []string
}

// NewLoader creates a loader reading the process environment
func NewLoader() *Loader {
	return &Loader{
		koanf:     koanf.New("."),
		validator: validator.New(),
		environ:   os.Environ,
	}
}

// WithEnviron replaces the environment source (for tests)
func (l *Loader) WithEnviron(environ func() []string) *Loader {
	l.environ = environ
	return l
}

// Load builds the configuration. Later sources win: struct defaults, then
// the file at path (skipped when empty), then TK_ variables.
func Load(path string) (*Config, error) {
	return NewLoader().Load(path)
}

// Load builds the configuration; see the package-level Load
func (l *Loader) Load(path string) (*Config, error) {
	l.koanf = koanf.New(".")

	if err := l.koanf.Load(structs.Provider(Default(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if path != "" {
		data, err := readFile(path)
		if err != nil {
			return nil, err
		}
		if err := l.koanf.Load(rawMap(data), nil); err != nil {
			return nil, fmt.Errorf("failed to merge config file %s: %w", path, err)
		}
	}

	if err := l.koanf.Load(env.Provider(".", env.Opt{
		Prefix:        EnvPrefix,
		TransformFunc: transformEnvKey,
		EnvironFunc:   l.environ,
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	var cfg Config
	if err := l.koanf.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			WeaklyTypedInput: true,
			Result:           &cfg,
			TagName:          "koanf",
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToTimeDurationHookFunc(),
			),
		},
	}); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := l.Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks struct tags and cross-field rules
func (l *Loader) Validate(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("configuration cannot be nil")
	}
	if err := l.validator.Struct(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	start, err := ParseClock(cfg.Calendar.DayStart)
	if err != nil {
		return fmt.Errorf("invalid configuration: calendar.day_start: %w", err)
	}
	end, err := ParseClock(cfg.Calendar.DayEnd)
	if err != nil {
		return fmt.Errorf("invalid configuration: calendar.day_end: %w", err)
	}
	if end <= start {
		return fmt.Errorf("invalid configuration: calendar.day_end (%s) must be after day_start (%s)",
			cfg.Calendar.DayEnd, cfg.Calendar.DayStart)
	}
	return nil
}

// Validate checks the configuration with a fresh validator
func (c *Config) Validate() error {
	return NewLoader().Validate(c)
}

// ParseClock converts "HH:MM" (00:00 to 24:00) to an offset from midnight
func ParseClock(s string) (time.Duration, error) {
	if s == "24:00" {
		return 24 * time.Hour, nil
	}
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, fmt.Errorf("expected HH:MM, got %q", s)
	}
	return time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute, nil
}

// transformEnvKey converts TK_CALENDAR_GRID_MINUTES to calendar.grid_minutes
func transformEnvKey(key, value string) (string, any) {
	key = strings.ToLower(strings.TrimPrefix(key, EnvPrefix))
	parts := strings.FieldsFunc(key, func(r rune) bool { return r == '_' })
	switch len(parts) {
	case 0:
		return "", nil
	case 1:
		return parts[0], value
	}
	return parts[0] + "." + strings.Join(parts[1:], "_"), value
}

// readFile decodes a YAML, TOML or JSON config file by extension
func readFile(path string) (map[string]any, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	data := make(map[string]any)
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml", "":
		err = yaml.Unmarshal(raw, &data)
	case ".toml":
		err = toml.Unmarshal(raw, &data)
	case ".json":
		err = json.Unmarshal(raw, &data)
	default:
		return nil, fmt.Errorf("unsupported config file type %q (use .yaml, .toml or .json)", ext)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return data, nil
}

// DefaultPath is the per-user config file location
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to find config directory: %w", err)
	}
	return filepath.Join(dir, "tk", "config.yaml"), nil
}

// FindFile returns DefaultPath if that file exists, otherwise ""
func FindFile() string {
	path, err := DefaultPath()
	if err != nil {
		return ""
	}
	if _, err := os.Stat(path); err != nil {
		return ""
	}
	return path
}

// rawMap is a koanf.Provider adapter for already-decoded data
type rawMap map[string]any

func (r rawMap) Read() (map[string]any, error) {
	return r, nil
}

func (r rawMap) ReadBytes() ([]byte, error) {
	return nil, fmt.Errorf("ReadBytes not implemented")
}
