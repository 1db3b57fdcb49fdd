package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/steveyegge/toolkit/internal/storage"
	"github.com/steveyegge/toolkit/internal/timeblock"
)

var (
	blockDate   string
	blockStrict bool
)

var blockCmd = &cobra.Command{
	Use:   "block",
	Short: "Plan a day in time blocks",
	Long: `Time-blocking calendar. Blocks snap to the configured grid
(calendar.grid_minutes, default 15) and must stay inside the day.
Overlaps are allowed and reported, unless --strict (or calendar.strict)
rejects them.

Blocks are addressed by any unique prefix of their ID.

Examples:
  tk block add "Deep work" --start 09:00 --end 11:30 --category focus
  tk block list --date 2025-03-14
  tk block move 3f2a --to 13:00
  tk block free --min 30m
  tk block timeline --step 15m`,
}

var blockAddCmd = &cobra.Command{
	Use:   "add TITLE",
	Short: "Add a block",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		s, day, err := openDay(ctx)
		if err != nil {
			return err
		}

		startClock, _ := cmd.Flags().GetString("start")
		start, err := day.At(startClock)
		if err != nil {
			return err
		}
		end := start
		if cmd.Flags().Changed("end") {
			endClock, _ := cmd.Flags().GetString("end")
			if end, err = day.At(endClock); err != nil {
				return err
			}
		} else {
			d, _ := cmd.Flags().GetDuration("duration")
			end = start.Add(d)
		}

		b := timeblock.Block{Title: args[0], Start: start, End: end}
		b.Category, _ = cmd.Flags().GetString("category")
		b.Notes, _ = cmd.Flags().GetString("notes")

		added, err := day.Add(b)
		if err != nil {
			return err
		}
		if err := s.SaveBlock(ctx, day.Key(), added); err != nil {
			return err
		}

		green := color.New(color.FgGreen).SprintFunc()
		gray := color.New(color.FgHiBlack).SprintFunc()
		fmt.Fprintf(cmd.OutOrStdout(), "%s Added %s %s\n", green("✓"), added, gray(shortID(added)))
		warnConflicts(cmd.OutOrStdout(), day, added)
		return nil
	},
}

var blockListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the day's blocks",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, day, err := openDay(cmd.Context())
		if err != nil {
			return err
		}
		printBlocks(cmd.OutOrStdout(), day)
		return nil
	},
}

var blockMoveCmd = &cobra.Command{
	Use:   "move ID --to HH:MM",
	Short: "Move a block, keeping its duration",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		s, day, err := openDay(ctx)
		if err != nil {
			return err
		}
		b, err := day.Find(args[0])
		if err != nil {
			return err
		}
		clock, _ := cmd.Flags().GetString("to")
		start, err := day.At(clock)
		if err != nil {
			return err
		}
		moved, err := day.Move(b.ID, start)
		if err != nil {
			return err
		}
		if err := s.SaveBlock(ctx, day.Key(), moved); err != nil {
			return err
		}
		green := color.New(color.FgGreen).SprintFunc()
		fmt.Fprintf(cmd.OutOrStdout(), "%s Moved %s\n", green("✓"), moved)
		warnConflicts(cmd.OutOrStdout(), day, moved)
		return nil
	},
}

var blockResizeCmd = &cobra.Command{
	Use:   "resize ID --end HH:MM",
	Short: "Change when a block ends",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		s, day, err := openDay(ctx)
		if err != nil {
			return err
		}
		b, err := day.Find(args[0])
		if err != nil {
			return err
		}
		clock, _ := cmd.Flags().GetString("end")
		end, err := day.At(clock)
		if err != nil {
			return err
		}
		resized, err := day.Resize(b.ID, end)
		if err != nil {
			return err
		}
		if err := s.SaveBlock(ctx, day.Key(), resized); err != nil {
			return err
		}
		green := color.New(color.FgGreen).SprintFunc()
		fmt.Fprintf(cmd.OutOrStdout(), "%s Resized %s\n", green("✓"), resized)
		warnConflicts(cmd.OutOrStdout(), day, resized)
		return nil
	},
}

var blockRemoveCmd = &cobra.Command{
	Use:     "rm ID",
	Aliases: []string{"remove"},
	Short:   "Remove a block",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		s, day, err := openDay(ctx)
		if err != nil {
			return err
		}
		b, err := day.Find(args[0])
		if err != nil {
			return err
		}
		if err := day.Remove(b.ID); err != nil {
			return err
		}
		if err := s.DeleteBlock(ctx, b.ID); err != nil {
			return err
		}
		green := color.New(color.FgGreen).SprintFunc()
		fmt.Fprintf(cmd.OutOrStdout(), "%s Removed %s\n", green("✓"), b)
		return nil
	},
}

var blockClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove every block of the day",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		s, day, err := openDay(ctx)
		if err != nil {
			return err
		}
		n := day.Len()
		if err := s.ReplaceDay(ctx, day.Key(), nil); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Removed %d blocks from %s\n", n, day.Key())
		return nil
	},
}

var blockFreeCmd = &cobra.Command{
	Use:   "free",
	Short: "Show free slots within working hours",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, day, err := openDay(cmd.Context())
		if err != nil {
			return err
		}
		start, end, err := dayWindow(cmd, day)
		if err != nil {
			return err
		}
		minDur := cfg.Calendar.MinFree()
		if cmd.Flags().Changed("min") {
			minDur, _ = cmd.Flags().GetDuration("min")
		}

		out := cmd.OutOrStdout()
		slots := day.FreeSlots(start, end, minDur)
		if len(slots) == 0 {
			yellow := color.New(color.FgYellow).SprintFunc()
			fmt.Fprintf(out, "%s No free slots of %s or more\n", yellow("!"), timeblock.FormatDuration(minDur))
			return nil
		}
		green := color.New(color.FgGreen).SprintFunc()
		for _, slot := range slots {
			fmt.Fprintf(out, "  %s\n", green(slot.String()))
		}
		return nil
	},
}

var blockSummaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Total time per category",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, day, err := openDay(cmd.Context())
		if err != nil {
			return err
		}
		start, end, err := dayWindow(cmd, day)
		if err != nil {
			return err
		}
		printSummary(cmd.OutOrStdout(), day.Key(), day.Summary(start, end))
		return nil
	},
}

var blockTimelineCmd = &cobra.Command{
	Use:   "timeline",
	Short: "Render the day as rows",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, day, err := openDay(cmd.Context())
		if err != nil {
			return err
		}
		start, end, err := dayWindow(cmd, day)
		if err != nil {
			return err
		}
		step := cfg.Calendar.TimelineStep()
		if cmd.Flags().Changed("step") {
			step, _ = cmd.Flags().GetDuration("step")
		}
		rows, err := day.Timeline(start, end, step)
		if err != nil {
			return err
		}

		gray := color.New(color.FgHiBlack).SprintFunc()
		out := cmd.OutOrStdout()
		for _, row := range rows {
			if row.Busy() {
				fmt.Fprintln(out, row)
			} else {
				fmt.Fprintln(out, gray(row.String()))
			}
		}
		return nil
	},
}

func init() {
	blockCmd.PersistentFlags().StringVar(&blockDate, "date", "", "Day as YYYY-MM-DD (default: today)")
	blockCmd.PersistentFlags().BoolVar(&blockStrict, "strict", false, "Reject overlapping blocks (default from config)")

	blockAddCmd.Flags().String("start", "", "Start time (HH:MM)")
	blockAddCmd.Flags().String("end", "", "End time (HH:MM, 24:00 for midnight)")
	blockAddCmd.Flags().Duration("duration", time.Hour, "Length when --end is not given")
	blockAddCmd.Flags().StringP("category", "c", "", "Category (work, focus, personal, ...)")
	blockAddCmd.Flags().String("notes", "", "Free-form notes")
	_ = blockAddCmd.MarkFlagRequired("start")

	blockMoveCmd.Flags().String("to", "", "New start time (HH:MM)")
	_ = blockMoveCmd.MarkFlagRequired("to")
	blockResizeCmd.Flags().String("end", "", "New end time (HH:MM)")
	_ = blockResizeCmd.MarkFlagRequired("end")

	for _, cmd := range []*cobra.Command{blockFreeCmd, blockSummaryCmd, blockTimelineCmd} {
		cmd.Flags().String("from", "", "Window start (default: calendar.day_start)")
		cmd.Flags().String("until", "", "Window end (default: calendar.day_end)")
	}
	blockFreeCmd.Flags().Duration("min", 0, "Shortest slot to show (default: calendar.min_free_minutes)")
	blockTimelineCmd.Flags().Duration("step", 0, "Row size (default: calendar.timeline_step_minutes)")

	blockCmd.AddCommand(blockAddCmd, blockListCmd, blockMoveCmd, blockResizeCmd, blockRemoveCmd,
		blockClearCmd, blockFreeCmd, blockSummaryCmd, blockTimelineCmd)
	rootCmd.AddCommand(blockCmd)
}

// openDay loads the selected day's blocks from the database
func openDay(ctx context.Context) (storage.Storage, *timeblock.Day, error) {
	s, err := openStore(ctx)
	if err != nil {
		return nil, nil, err
	}

	opts := timeblock.Options{
		Grid:   cfg.Calendar.Grid(),
		Strict: cfg.Calendar.Strict || blockStrict,
	}
	var day *timeblock.Day
	if blockDate == "" {
		day = timeblock.NewDay(time.Now(), opts)
	} else if day, err = timeblock.ParseDay(blockDate, time.Local, opts); err != nil {
		return nil, nil, err
	}

	if err := storage.LoadDay(ctx, s, day); err != nil {
		return nil, nil, fmt.Errorf("failed to load %s: %w", day.Key(), err)
	}
	return s, day, nil
}

// dayWindow resolves --from/--until against the configured working hours
func dayWindow(cmd *cobra.Command, day *timeblock.Day) (time.Time, time.Time, error) {
	from, until := cfg.Calendar.DayStart, cfg.Calendar.DayEnd
	if cmd.Flags().Changed("from") {
		from, _ = cmd.Flags().GetString("from")
	}
	if cmd.Flags().Changed("until") {
		until, _ = cmd.Flags().GetString("until")
	}
	start, err := day.At(from)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	end, err := day.At(until)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	if !end.After(start) {
		return time.Time{}, time.Time{}, fmt.Errorf("window end %s must be after start %s", until, from)
	}
	return start, end, nil
}

func shortID(b timeblock.Block) string {
	return b.ID.String()[:8]
}

// warnConflicts reports blocks overlapping b
func warnConflicts(w io.Writer, day *timeblock.Day, b timeblock.Block) {
	yellow := color.New(color.FgYellow).SprintFunc()
	for _, c := range day.Conflicts() {
		var other timeblock.Block
		switch b.ID {
		case c.A.ID:
			other = c.B
		case c.B.ID:
			other = c.A
		default:
			continue
		}
		fmt.Fprintf(w, "%s Overlaps %s by %s\n", yellow("!"), other, timeblock.FormatDuration(c.Overlap))
	}
}

func printBlocks(w io.Writer, day *timeblock.Day) {
	cyan := color.New(color.FgCyan, color.Bold).SprintFunc()
	gray := color.New(color.FgHiBlack).SprintFunc()
	yellow := color.New(color.FgYellow).SprintFunc()

	fmt.Fprintf(w, "\n%s\n\n", cyan(day.Date.Format("Monday, January 2 2006")))
	blocks := day.Blocks()
	if len(blocks) == 0 {
		fmt.Fprintf(w, "  %s\n\n", gray("No blocks"))
		return
	}
	for _, b := range blocks {
		fmt.Fprintf(w, "  %s  %s  %s\n", gray(shortID(b)), b, gray(timeblock.FormatDuration(b.Duration())))
		if b.Notes != "" {
			fmt.Fprintf(w, "            %s\n", gray(b.Notes))
		}
	}
	if conflicts := day.Conflicts(); len(conflicts) > 0 {
		fmt.Fprintln(w)
		for _, c := range conflicts {
			fmt.Fprintf(w, "  %s %s overlaps %s by %s\n", yellow("!"), c.A.Title, c.B.Title,
				timeblock.FormatDuration(c.Overlap))
		}
	}
	fmt.Fprintln(w)
}

func printSummary(w io.Writer, key string, s timeblock.Summary) {
	cyan := color.New(color.FgCyan, color.Bold).SprintFunc()
	gray := color.New(color.FgHiBlack).SprintFunc()

	fmt.Fprintf(w, "\n%s %s\n\n", cyan("Summary "+key), gray("("+s.Window.String()+")"))
	for _, c := range s.Categories {
		fmt.Fprintf(w, "  %-16s %7s  %s\n", c.Category, timeblock.FormatDuration(c.Duration),
			gray(fmt.Sprintf("%d blocks", c.Blocks)))
	}
	if len(s.Categories) > 0 {
		fmt.Fprintln(w)
	}
	fmt.Fprintf(w, "  %-16s %7s\n", "Scheduled", timeblock.FormatDuration(s.Scheduled))
	fmt.Fprintf(w, "  %-16s %7s\n", "Free", timeblock.FormatDuration(s.Free))
	if s.Conflicts > 0 {
		yellow := color.New(color.FgYellow).SprintFunc()
		fmt.Fprintf(w, "  %s %d overlapping pairs\n", yellow("!"), s.Conflicts)
	}
	fmt.Fprintln(w)
}
