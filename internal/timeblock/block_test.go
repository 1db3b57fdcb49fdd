package timeblock

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testDate = time.Date(2024, time.March, 4, 0, 0, 0, 0, time.UTC)

func at(t *testing.T, d *Day, clock string) time.Time {
	t.Helper()
	ts, err := d.At(clock)
	if err != nil {
		t.Fatalf("Failed to parse clock %s: %v", clock, err)
	}
	return ts
}

func addBlock(t *testing.T, d *Day, title, category, start, end string) Block {
	t.Helper()
	b, err := d.Add(Block{Title: title, Category: category, Start: at(t, d, start), End: at(t, d, end)})
	if err != nil {
		t.Fatalf("Failed to add %s: %v", title, err)
	}
	return b
}

func TestNewDayNormalizesDate(t *testing.T) {
	d := NewDay(time.Date(2024, time.March, 4, 17, 45, 12, 0, time.UTC), Options{})
	assert.Equal(t, testDate, d.Date)
	assert.Equal(t, "2024-03-04", d.Key())

	parsed, err := ParseDay("2024-03-04", time.UTC, Options{})
	require.NoError(t, err)
	assert.Equal(t, d.Date, parsed.Date)

	_, err = ParseDay("03/04/2024", time.UTC, Options{})
	assert.Error(t, err)
}

func TestAddSnapsToGrid(t *testing.T) {
	d := NewDay(testDate, Options{})
	b := addBlock(t, d, "Standup", "meetings", "09:07", "09:22")

	assert.NotEqual(t, uuid.Nil, b.ID)
	assert.Equal(t, "09:00", b.Start.Format("15:04"))
	assert.Equal(t, "09:15", b.End.Format("15:04"))
	assert.Equal(t, 15*time.Minute, b.Duration())

	// A 30 minute grid moves 10:20 to 10:30
	coarse := NewDay(testDate, Options{Grid: 30 * time.Minute})
	b = addBlock(t, coarse, "Review", "", "10:20", "11:00")
	assert.Equal(t, "10:30", b.Start.Format("15:04"))
}

func TestAddRejectsInvalidSpans(t *testing.T) {
	d := NewDay(testDate, Options{})

	tests := []struct {
		name    string
		block   Block
		wantErr string
	}{
		{"no title", Block{Start: at(t, d, "09:00"), End: at(t, d, "10:00")}, "title"},
		{"end before start", Block{Title: "x", Start: at(t, d, "10:00"), End: at(t, d, "09:00")}, "must end after"},
		{"collapses when snapped", Block{Title: "x", Start: at(t, d, "09:01"), End: at(t, d, "09:05")}, "must end after"},
		{"crosses midnight", Block{Title: "x", Start: at(t, d, "23:00"), End: at(t, d, "23:00").Add(2 * time.Hour)}, "outside"},
		{"previous day", Block{Title: "x", Start: testDate.Add(-time.Hour), End: testDate.Add(time.Hour)}, "outside"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := d.Add(tt.block)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
	assert.Zero(t, d.Len())

	// Ending exactly at midnight is allowed
	addBlock(t, d, "Late", "", "23:00", "24:00")
}

func TestStrictRejectsOverlap(t *testing.T) {
	d := NewDay(testDate, Options{Strict: true})
	first := addBlock(t, d, "Deep work", "focus", "09:00", "11:00")

	_, err := d.Add(Block{Title: "Call", Start: at(t, d, "10:30"), End: at(t, d, "11:30")})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrOverlap), "expected ErrOverlap, got %v", err)

	// Touching blocks are fine
	second := addBlock(t, d, "Lunch", "break", "11:00", "12:00")

	_, err = d.Move(second.ID, at(t, d, "10:00"))
	assert.ErrorIs(t, err, ErrOverlap)
	_, err = d.Resize(first.ID, at(t, d, "11:30"))
	assert.ErrorIs(t, err, ErrOverlap)

	// Resizing a block against itself is not an overlap
	_, err = d.Resize(first.ID, at(t, d, "10:45"))
	assert.NoError(t, err)
}

func TestMoveKeepsDuration(t *testing.T) {
	d := NewDay(testDate, Options{})
	b := addBlock(t, d, "Gym", "health", "07:00", "08:30")

	moved, err := d.Move(b.ID, at(t, d, "18:10"))
	require.NoError(t, err)
	assert.Equal(t, "18:15", moved.Start.Format("15:04"))
	assert.Equal(t, "19:45", moved.End.Format("15:04"))

	_, err = d.Move(b.ID, at(t, d, "23:00"))
	assert.Error(t, err, "moving past midnight must fail")

	got, err := d.Get(b.ID)
	require.NoError(t, err)
	assert.Equal(t, moved, got, "failed move must not change the block")
}

func TestResizeRemoveAndNotFound(t *testing.T) {
	d := NewDay(testDate, Options{})
	b := addBlock(t, d, "Write", "focus", "13:00", "14:00")

	resized, err := d.Resize(b.ID, at(t, d, "15:00"))
	require.NoError(t, err)
	assert.Equal(t, 2*time.Hour, resized.Duration())

	_, err = d.Resize(b.ID, at(t, d, "12:00"))
	assert.Error(t, err)

	require.NoError(t, d.Remove(b.ID))
	assert.ErrorIs(t, d.Remove(b.ID), ErrNotFound)
	_, err = d.Get(b.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = d.Move(uuid.New(), at(t, d, "10:00"))
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRestoreKeepsOverlaps(t *testing.T) {
	d := NewDay(testDate, Options{Strict: true})
	a := Block{ID: uuid.New(), Title: "A", Start: at(t, d, "09:00"), End: at(t, d, "10:00")}
	b := Block{ID: uuid.New(), Title: "B", Start: at(t, d, "09:30"), End: at(t, d, "10:30")}
	require.NoError(t, d.Restore(a))
	require.NoError(t, d.Restore(b))
	assert.Error(t, d.Restore(a), "duplicate IDs are rejected")
	assert.Error(t, d.Restore(Block{Title: "no id"}))
	assert.Len(t, d.Conflicts(), 1)
}

func TestFind(t *testing.T) {
	d := NewDay(testDate, Options{})
	b := addBlock(t, d, "Plan", "", "08:00", "08:30")

	got, err := d.Find(b.ID.String()[:8])
	require.NoError(t, err)
	assert.Equal(t, b.ID, got.ID)

	_, err = d.Find("zzzz")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = d.Find("")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestBlocksSorted(t *testing.T) {
	d := NewDay(testDate, Options{})
	addBlock(t, d, "C", "", "15:00", "16:00")
	addBlock(t, d, "A", "", "09:00", "10:00")
	addBlock(t, d, "B", "", "09:00", "09:30")

	var titles []string
	for _, b := range d.Blocks() {
		titles = append(titles, b.Title)
	}
	assert.Equal(t, []string{"B", "A", "C"}, titles)
}

func TestConflicts(t *testing.T) {
	d := NewDay(testDate, Options{})
	addBlock(t, d, "Long", "", "09:00", "12:00")
	addBlock(t, d, "Inside", "", "10:00", "10:30")
	addBlock(t, d, "Tail", "", "11:30", "13:00")
	addBlock(t, d, "After", "", "13:00", "14:00")

	conflicts := d.Conflicts()
	require.Len(t, conflicts, 2)
	assert.Equal(t, "Long", conflicts[0].A.Title)
	assert.Equal(t, "Inside", conflicts[0].B.Title)
	assert.Equal(t, 30*time.Minute, conflicts[0].Overlap)
	assert.Equal(t, "Tail", conflicts[1].B.Title)
	assert.Equal(t, 30*time.Minute, conflicts[1].Overlap)
}

func TestFreeSlots(t *testing.T) {
	d := NewDay(testDate, Options{})
	addBlock(t, d, "A", "", "09:00", "10:00")
	addBlock(t, d, "B", "", "09:30", "11:00")
	addBlock(t, d, "C", "", "11:15", "12:00")
	addBlock(t, d, "Evening", "", "19:00", "20:00")

	slots := d.FreeSlots(at(t, d, "08:00"), at(t, d, "18:00"), 30*time.Minute)
	var got []string
	for _, s := range slots {
		got = append(got, s.String())
	}
	assert.Equal(t, []string{"08:00-09:00 (1h)", "12:00-18:00 (6h)"}, got)

	all := d.FreeSlots(at(t, d, "08:00"), at(t, d, "18:00"), 0)
	assert.Len(t, all, 3, "the 15 minute gap is included without a minimum")
}

func TestSummary(t *testing.T) {
	d := NewDay(testDate, Options{})
	addBlock(t, d, "Deep work", "focus", "09:00", "11:00")
	addBlock(t, d, "Writing", "focus", "13:00", "14:00")
	addBlock(t, d, "Sync", "meetings", "10:30", "11:30")
	addBlock(t, d, "Errand", "", "07:00", "08:30")

	s := d.Summary(at(t, d, "08:00"), at(t, d, "17:00"))

	require.Len(t, s.Categories, 3)
	assert.Equal(t, CategoryTotal{Category: "focus", Duration: 3 * time.Hour, Blocks: 2}, s.Categories[0])
	assert.Equal(t, CategoryTotal{Category: "meetings", Duration: time.Hour, Blocks: 1}, s.Categories[1])
	// Clipped to the window
	assert.Equal(t, CategoryTotal{Category: Uncategorized, Duration: 30 * time.Minute, Blocks: 1}, s.Categories[2])

	// 08:00-08:30, 09:00-11:30 and 13:00-14:00 with the overlap counted once
	assert.Equal(t, 4*time.Hour, s.Scheduled)
	assert.Equal(t, 5*time.Hour, s.Free)
	assert.Equal(t, 1, s.Conflicts)
}

func TestTimeline(t *testing.T) {
	d := NewDay(testDate, Options{})
	addBlock(t, d, "Deep work", "focus", "09:00", "10:00")
	addBlock(t, d, "Call", "", "09:30", "10:00")

	rows, err := d.Timeline(at(t, d, "08:30"), at(t, d, "10:30"), 30*time.Minute)
	require.NoError(t, err)

	var lines []string
	for _, r := range rows {
		lines = append(lines, r.String())
	}
	want := []string{
		"08:30  ·",
		"09:00  ▶ Deep work [focus]",
		"09:30  ▶ Call  │ Deep work",
		"10:00  ·",
	}
	assert.Equal(t, strings.Join(want, "\n"), strings.Join(lines, "\n"))
	assert.False(t, rows[0].Busy())
	assert.True(t, rows[2].Busy())

	_, err = d.Timeline(at(t, d, "08:00"), at(t, d, "09:00"), 0)
	assert.Error(t, err)
	_, err = d.Timeline(at(t, d, "10:00"), at(t, d, "09:00"), time.Hour)
	assert.Error(t, err)
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "45m", FormatDuration(45*time.Minute))
	assert.Equal(t, "2h", FormatDuration(2*time.Hour))
	assert.Equal(t, "1h30m", FormatDuration(90*time.Minute))
	assert.Equal(t, "0m", FormatDuration(0))
}
