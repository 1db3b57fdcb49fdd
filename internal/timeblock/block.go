// Package timeblock implements a single-day time-blocking calendar.
//
// A Day owns a set of blocks. Start and end times snap to a grid, blocks
// must stay inside the calendar day, and overlaps are either reported
// (Conflicts) or rejected when the day is strict.
package timeblock

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrOverlap is returned by strict days when a change would overlap
	// another block
	ErrOverlap = errors.New("block overlaps an existing block")

	// ErrNotFound is returned when no block has the given ID
	ErrNotFound = errors.New("block not found")
)

// DefaultGrid is the snapping interval used when Options.Grid is unset
const DefaultGrid = 15 * time.Minute

// DateLayout is the canonical day key format
const DateLayout = "2006-01-02"

// Block is one scheduled span
type Block struct {
	ID       uuid.UUID `json:"id"`
	Title    string    `json:"title"`
	Category string    `json:"category,omitempty"`
	Start    time.Time `json:"start"`
	End      time.Time `json:"end"`
	Notes    string    `json:"notes,omitempty"`
}

// Duration returns the length of the block
func (b Block) Duration() time.Duration {
	return b.End.Sub(b.Start)
}

// Overlaps reports whether two blocks share any time. Touching blocks
// (one ends when the other starts) do not overlap.
func (b Block) Overlaps(o Block) bool {
	return b.Start.Before(o.End) && o.Start.Before(b.End)
}

func (b Block) String() string {
	s := fmt.Sprintf("%s-%s %s", b.Start.Format("15:04"), b.End.Format("15:04"), b.Title)
	if b.Category != "" {
		s += " [" + b.Category + "]"
	}
	return s
}

// Options configures a Day
type Options struct {
	// Grid is the snapping interval. Zero means DefaultGrid.
	Grid time.Duration
	// Strict rejects overlapping blocks instead of reporting them
	Strict bool
}

// Day is the calendar for one date
type Day struct {
	Date   time.Time
	opts   Options
	blocks []Block
}

// NewDay returns an empty calendar for the date containing t
func NewDay(t time.Time, opts Options) *Day {
	if opts.Grid <= 0 {
		opts.Grid = DefaultGrid
	}
	y, m, d := t.Date()
	return &Day{
		Date: time.Date(y, m, d, 0, 0, 0, 0, t.Location()),
		opts: opts,
	}
}

// ParseDay parses a YYYY-MM-DD key in the given location
func ParseDay(key string, loc *time.Location, opts Options) (*Day, error) {
	t, err := time.ParseInLocation(DateLayout, key, loc)
	if err != nil {
		return nil, fmt.Errorf("invalid date %q (expected YYYY-MM-DD): %w", key, err)
	}
	return NewDay(t, opts), nil
}

// Key returns the day as YYYY-MM-DD
func (d *Day) Key() string {
	return d.Date.Format(DateLayout)
}

// end returns the instant the next day starts
func (d *Day) end() time.Time {
	return d.Date.AddDate(0, 0, 1)
}

// At returns the time of day for an "HH:MM" clock string. "24:00" is the
// end of the day.
func (d *Day) At(clock string) (time.Time, error) {
	if clock == "24:00" {
		return d.end(), nil
	}
	c, err := time.Parse("15:04", clock)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid time %q (expected HH:MM): %w", clock, err)
	}
	return time.Date(d.Date.Year(), d.Date.Month(), d.Date.Day(), c.Hour(), c.Minute(), 0, 0, d.Date.Location()), nil
}

// snap rounds t to the nearest grid line measured from midnight
func (d *Day) snap(t time.Time) time.Time {
	offset := t.Sub(d.Date).Round(d.opts.Grid)
	return d.Date.Add(offset)
}

// check validates a block's span and, when strict, its overlaps. skip is
// the ID of the block being changed.
func (d *Day) check(b Block, skip uuid.UUID, strict bool) error {
	if b.Title == "" {
		return fmt.Errorf("block title is required")
	}
	if !b.End.After(b.Start) {
		return fmt.Errorf("block must end after it starts (%s-%s after snapping to %s)",
			b.Start.Format("15:04"), b.End.Format("15:04"), d.opts.Grid)
	}
	if b.Start.Before(d.Date) || b.End.After(d.end()) {
		return fmt.Errorf("block %s-%s is outside %s", b.Start.Format("15:04"), b.End.Format("15:04"), d.Key())
	}
	if strict {
		for _, other := range d.blocks {
			if other.ID != skip && b.Overlaps(other) {
				return fmt.Errorf("%w: %s", ErrOverlap, other)
			}
		}
	}
	return nil
}

func (d *Day) index(id uuid.UUID) int {
	for i := range d.blocks {
		if d.blocks[i].ID == id {
			return i
		}
	}
	return -1
}

// Add snaps the block to the grid, assigns an ID if it has none and
// schedules it
func (d *Day) Add(b Block) (Block, error) {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	} else if d.index(b.ID) >= 0 {
		return Block{}, fmt.Errorf("block %s already exists", b.ID)
	}
	b.Start = d.snap(b.Start)
	b.End = d.snap(b.End)
	if err := d.check(b, uuid.Nil, d.opts.Strict); err != nil {
		return Block{}, err
	}
	d.blocks = append(d.blocks, b)
	return b, nil
}

// Restore schedules a previously saved block as-is. Only the span is
// checked; overlaps are kept so stored days always load.
func (d *Day) Restore(b Block) error {
	if b.ID == uuid.Nil {
		return fmt.Errorf("restored block has no ID")
	}
	if d.index(b.ID) >= 0 {
		return fmt.Errorf("block %s already exists", b.ID)
	}
	if err := d.check(b, b.ID, false); err != nil {
		return err
	}
	d.blocks = append(d.blocks, b)
	return nil
}

// Move shifts a block to start at newStart, keeping its duration
func (d *Day) Move(id uuid.UUID, newStart time.Time) (Block, error) {
	i := d.index(id)
	if i < 0 {
		return Block{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	b := d.blocks[i]
	dur := b.Duration()
	b.Start = d.snap(newStart)
	b.End = b.Start.Add(dur)
	if err := d.check(b, id, d.opts.Strict); err != nil {
		return Block{}, err
	}
	d.blocks[i] = b
	return b, nil
}

// Resize changes a block's end time
func (d *Day) Resize(id uuid.UUID, newEnd time.Time) (Block, error) {
	i := d.index(id)
	if i < 0 {
		return Block{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	b := d.blocks[i]
	b.End = d.snap(newEnd)
	if err := d.check(b, id, d.opts.Strict); err != nil {
		return Block{}, err
	}
	d.blocks[i] = b
	return b, nil
}

// Remove deletes a block
func (d *Day) Remove(id uuid.UUID) error {
	i := d.index(id)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	d.blocks = append(d.blocks[:i], d.blocks[i+1:]...)
	return nil
}

// Get returns a block by ID
func (d *Day) Get(id uuid.UUID) (Block, error) {
	i := d.index(id)
	if i < 0 {
		return Block{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return d.blocks[i], nil
}

// Find returns the block whose ID starts with prefix. The prefix must be
// unambiguous.
func (d *Day) Find(prefix string) (Block, error) {
	var found []Block
	for _, b := range d.blocks {
		if prefix != "" && strings.HasPrefix(b.ID.String(), prefix) {
			found = append(found, b)
		}
	}
	switch len(found) {
	case 0:
		return Block{}, fmt.Errorf("%w: %s", ErrNotFound, prefix)
	case 1:
		return found[0], nil
	}
	return Block{}, fmt.Errorf("block ID prefix %q is ambiguous (%d matches)", prefix, len(found))
}

// Blocks returns a copy of the schedule ordered by start, then end, then title
func (d *Day) Blocks() []Block {
	out := make([]Block, len(d.blocks))
	copy(out, d.blocks)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if !a.Start.Equal(b.Start) {
			return a.Start.Before(b.Start)
		}
		if !a.End.Equal(b.End) {
			return a.End.Before(b.End)
		}
		return a.Title < b.Title
	})
	return out
}

// Len returns the number of blocks
func (d *Day) Len() int {
	return len(d.blocks)
}
