package timeblock

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Conflict is a pair of overlapping blocks. A starts no later than B.
type Conflict struct {
	A       Block         `json:"a"`
	B       Block         `json:"b"`
	Overlap time.Duration `json:"overlap"`
}

// Conflicts returns every overlapping pair in schedule order
func (d *Day) Conflicts() []Conflict {
	blocks := d.Blocks()
	var out []Conflict
	for i := range blocks {
		for j := i + 1; j < len(blocks); j++ {
			// sorted by start, so nothing later can overlap blocks[i]
			if !blocks[j].Start.Before(blocks[i].End) {
				break
			}
			end := minTime(blocks[i].End, blocks[j].End)
			out = append(out, Conflict{A: blocks[i], B: blocks[j], Overlap: end.Sub(blocks[j].Start)})
		}
	}
	return out
}

// Slot is an unscheduled span
type Slot struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

func (s Slot) Duration() time.Duration { return s.End.Sub(s.Start) }

func (s Slot) String() string {
	return fmt.Sprintf("%s-%s (%s)", s.Start.Format("15:04"), s.End.Format("15:04"), FormatDuration(s.Duration()))
}

// clip bounds a window to the day
func (d *Day) clip(start, end time.Time) (time.Time, time.Time) {
	return maxTime(start, d.Date), minTime(end, d.end())
}

// FreeSlots returns the gaps between blocks inside [start, end) that are
// at least minDuration long
func (d *Day) FreeSlots(start, end time.Time, minDuration time.Duration) []Slot {
	start, end = d.clip(start, end)
	var out []Slot
	add := func(from, to time.Time) {
		if to.After(from) && to.Sub(from) >= minDuration {
			out = append(out, Slot{Start: from, End: to})
		}
	}

	cursor := start
	for _, b := range d.Blocks() {
		if !b.End.After(cursor) || !b.Start.Before(end) {
			continue
		}
		add(cursor, minTime(b.Start, end))
		cursor = maxTime(cursor, b.End)
	}
	add(cursor, end)
	return out
}

// CategoryTotal is the scheduled time for one category
type CategoryTotal struct {
	Category string        `json:"category"`
	Duration time.Duration `json:"duration"`
	Blocks   int           `json:"blocks"`
}

// Summary describes how a window of the day is used
type Summary struct {
	Window     Slot            `json:"window"`
	Categories []CategoryTotal `json:"categories"`
	// Scheduled counts overlapping time once
	Scheduled time.Duration `json:"scheduled"`
	Free      time.Duration `json:"free"`
	Conflicts int           `json:"conflicts"`
}

// Uncategorized is the category name used for blocks without one
const Uncategorized = "uncategorized"

// Summary totals block time per category within [start, end)
func (d *Day) Summary(start, end time.Time) Summary {
	start, end = d.clip(start, end)
	s := Summary{Window: Slot{Start: start, End: end}, Conflicts: len(d.Conflicts())}

	totals := make(map[string]*CategoryTotal)
	for _, b := range d.Blocks() {
		from, to := maxTime(b.Start, start), minTime(b.End, end)
		if !to.After(from) {
			continue
		}
		cat := b.Category
		if cat == "" {
			cat = Uncategorized
		}
		ct, ok := totals[cat]
		if !ok {
			ct = &CategoryTotal{Category: cat}
			totals[cat] = ct
		}
		ct.Duration += to.Sub(from)
		ct.Blocks++
	}
	for _, ct := range totals {
		s.Categories = append(s.Categories, *ct)
	}
	sort.Slice(s.Categories, func(i, j int) bool {
		if s.Categories[i].Duration != s.Categories[j].Duration {
			return s.Categories[i].Duration > s.Categories[j].Duration
		}
		return s.Categories[i].Category < s.Categories[j].Category
	})

	if end.After(start) {
		for _, slot := range d.FreeSlots(start, end, 0) {
			s.Free += slot.Duration()
		}
		s.Scheduled = end.Sub(start) - s.Free
	}
	return s
}

// TimelineRow is one step of the rendered day
type TimelineRow struct {
	Time time.Time
	// Starting are blocks that begin in this step, Continuing are blocks
	// already running
	Starting   []Block
	Continuing []Block
}

// Busy reports whether any block covers the row
func (r TimelineRow) Busy() bool {
	return len(r.Starting)+len(r.Continuing) > 0
}

func (r TimelineRow) String() string {
	var parts []string
	for _, b := range r.Starting {
		label := "▶ " + b.Title
		if b.Category != "" {
			label += " [" + b.Category + "]"
		}
		parts = append(parts, label)
	}
	for _, b := range r.Continuing {
		parts = append(parts, "│ "+b.Title)
	}
	if len(parts) == 0 {
		parts = []string{"·"}
	}
	return r.Time.Format("15:04") + "  " + strings.Join(parts, "  ")
}

// Timeline renders [start, end) in step-sized rows
func (d *Day) Timeline(start, end time.Time, step time.Duration) ([]TimelineRow, error) {
	if step <= 0 {
		return nil, fmt.Errorf("timeline step must be positive (got %s)", step)
	}
	start, end = d.clip(start, end)
	if !end.After(start) {
		return nil, fmt.Errorf("timeline window is empty")
	}

	blocks := d.Blocks()
	var rows []TimelineRow
	for t := start; t.Before(end); t = t.Add(step) {
		row := TimelineRow{Time: t}
		next := t.Add(step)
		for _, b := range blocks {
			switch {
			case !b.Start.Before(t) && b.Start.Before(next):
				row.Starting = append(row.Starting, b)
			case b.Start.Before(t) && b.End.After(t):
				row.Continuing = append(row.Continuing, b)
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func minTime(a, b time.Time) time.Time {
	if a.Before(b) {
		return a
	}
	return b
}

func maxTime(a, b time.Time) time.Time {
	if a.After(b) {
		return a
	}
	return b
}

// FormatDuration renders 90m as "1h30m" and 45m as "45m"
func FormatDuration(d time.Duration) string {
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	switch {
	case h == 0:
		return fmt.Sprintf("%dm", m)
	case m == 0:
		return fmt.Sprintf("%dh", h)
	}
	return fmt.Sprintf("%dh%02dm", h, m)
}
