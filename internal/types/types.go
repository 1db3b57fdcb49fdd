package types

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// ErrNotFound is returned by stores when a record does not exist
var ErrNotFound = errors.New("not found")

// Tool identifies the widget that owns a saved state
type Tool string

const (
	ToolConverter  Tool = "converter"
	ToolRetirement Tool = "retirement"
	ToolFlexbox    Tool = "flexbox"
	ToolSpacing    Tool = "spacing"
	ToolBoxModel   Tool = "boxmodel"
	ToolCalendar   Tool = "calendar"
)

// AllTools lists the tools in display order
func AllTools() []Tool {
	return []Tool{ToolConverter, ToolRetirement, ToolFlexbox, ToolSpacing, ToolBoxModel, ToolCalendar}
}

// IsValid checks if the tool value is valid
func (t Tool) IsValid() bool {
	switch t {
	case ToolConverter, ToolRetirement, ToolFlexbox, ToolSpacing, ToolBoxModel, ToolCalendar:
		return true
	}
	return false
}

// StateEntry is a named, saved set of tool inputs
type StateEntry struct {
	Tool      Tool            `json:"tool"`
	Key       string          `json:"key"`
	Value     json.RawMessage `json:"value"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// Validate checks if the entry has valid field values
func (e *StateEntry) Validate() error {
	if !e.Tool.IsValid() {
		return fmt.Errorf("invalid tool: %s", e.Tool)
	}
	if len(e.Key) == 0 {
		return fmt.Errorf("key is required")
	}
	if len(e.Key) > 200 {
		return fmt.Errorf("key must be 200 characters or less (got %d)", len(e.Key))
	}
	if !json.Valid(e.Value) {
		return fmt.Errorf("value must be valid JSON")
	}
	return nil
}

// ConversionRecord is one entry in the conversion history
type ConversionRecord struct {
	ID          int64         `json:"id"`
	Source      string        `json:"source"` // file name, or "-" for stdin
	From        string        `json:"from"`
	To          string        `json:"to"`
	Detected    bool          `json:"detected"`
	Success     bool          `json:"success"`
	Error       string        `json:"error,omitempty"`
	InputBytes  int           `json:"input_bytes"`
	OutputBytes int           `json:"output_bytes"`
	Duration    time.Duration `json:"duration"`
	CreatedAt   time.Time     `json:"created_at"`
}

// Validate checks if the record has valid field values
func (r *ConversionRecord) Validate() error {
	if r.Source == "" {
		return fmt.Errorf("source is required")
	}
	if r.To == "" {
		return fmt.Errorf("target format is required")
	}
	if r.InputBytes < 0 || r.OutputBytes < 0 {
		return fmt.Errorf("byte counts cannot be negative")
	}
	if r.Success && r.Error != "" {
		return fmt.Errorf("successful conversion cannot carry an error")
	}
	return nil
}
