package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/steveyegge/toolkit/internal/css"
	"github.com/steveyegge/toolkit/internal/types"
)

// flexInputs is what the flex command saves
type flexInputs struct {
	Class     string            `json:"class"`
	Container css.FlexContainer `json:"container"`
	Items     []css.FlexItem    `json:"items"`
}

// spacingInputs is what the spacing command saves
type spacingInputs struct {
	Class    string      `json:"class"`
	Property string      `json:"property"`
	Spacing  css.Spacing `json:"spacing"`
}

// boxInputs is what the boxmodel command saves
type boxInputs struct {
	Class string       `json:"class"`
	Box   css.BoxModel `json:"box"`
}

var flexCmd = &cobra.Command{
	Use:   "flex",
	Short: "Generate flexbox CSS",
	Long: `Generate a flex container rule and per-child rules.

Properties left at their CSS initial values are omitted. Each --item adds a
child described as comma-separated key=value pairs: grow, shrink, basis,
order, align.

Examples:
  tk flex --justify space-between --align-items center --gap 16px --class nav-bar
  tk flex --direction column --item grow=1 --item basis=200px,shrink=0
  tk flex --load sidebar --wrap wrap`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		in := flexInputs{Class: "container"}
		if err := loadInputs(ctx, cmd, types.ToolFlexbox, &in); err != nil {
			return err
		}

		flags := cmd.Flags()
		strs := map[string]*string{
			"class":         &in.Class,
			"direction":     &in.Container.FlexDirection,
			"wrap":          &in.Container.FlexWrap,
			"justify":       &in.Container.JustifyContent,
			"align-items":   &in.Container.AlignItems,
			"align-content": &in.Container.AlignContent,
		}
		for name, dest := range strs {
			if flags.Changed(name) {
				*dest, _ = flags.GetString(name)
			}
		}
		if flags.Changed("gap") {
			value, _ := flags.GetString("gap")
			gap, err := css.ParseLength(value)
			if err != nil {
				return fmt.Errorf("--gap: %w", err)
			}
			in.Container.Gap = gap
		}
		if flags.Changed("item") {
			specs, _ := flags.GetStringArray("item")
			in.Items = in.Items[:0]
			for i, spec := range specs {
				item, err := parseFlexItem(spec)
				if err != nil {
					return fmt.Errorf("--item %d: %w", i+1, err)
				}
				in.Items = append(in.Items, item)
			}
		}

		rule, err := css.GenerateFlexbox(in.Container, in.Items, in.Class)
		if err != nil {
			return err
		}
		if err := saveInputs(ctx, cmd, types.ToolFlexbox, in); err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), rule)
		return nil
	},
}

var spacingCmd = &cobra.Command{
	Use:   "spacing margin|padding VALUES",
	Short: "Generate margin or padding CSS",
	Long: `Generate a margin or padding rule from one to four lengths in CSS
shorthand order (top right bottom left). Bare numbers are pixels. The
output uses the shortest equivalent shorthand.

Examples:
  tk spacing padding "8px 16px" --class card
  tk spacing margin "0 auto"
  tk spacing --load card-padding`,
	Args: cobra.MaximumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		in := spacingInputs{Class: "spacing", Property: "margin"}
		if err := loadInputs(ctx, cmd, types.ToolSpacing, &in); err != nil {
			return err
		}
		if len(args) == 1 {
			return fmt.Errorf("expected a property and values, e.g. tk spacing padding \"8px 16px\"")
		}
		if len(args) == 2 {
			sp, err := css.ParseSpacing(args[1])
			if err != nil {
				return err
			}
			in.Property = args[0]
			in.Spacing = sp
		} else if name, _ := cmd.Flags().GetString("load"); name == "" {
			return fmt.Errorf("expected a property and values, or --load NAME")
		}
		if cmd.Flags().Changed("class") {
			in.Class, _ = cmd.Flags().GetString("class")
		}

		rule, err := css.GenerateSpacing(in.Property, in.Spacing, in.Class)
		if err != nil {
			return err
		}
		if err := saveInputs(ctx, cmd, types.ToolSpacing, in); err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), rule)
		return nil
	},
}

var boxModelCmd = &cobra.Command{
	Use:   "boxmodel",
	Short: "Compute box-model dimensions",
	Long: `Compute the content, padding, border and margin boxes of an element.

Edges take one to four pixel values in CSS shorthand order. With
--sizing border-box the width and height include padding and border.

Examples:
  tk boxmodel --width 300 --height 200 --padding "10 20" --border 2 --margin 16
  tk boxmodel --width 300 --height 200 --padding 20 --sizing border-box --css`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		in := boxInputs{Class: "box", Box: css.BoxModel{BoxSizing: css.ContentBox}}
		if err := loadInputs(ctx, cmd, types.ToolBoxModel, &in); err != nil {
			return err
		}

		flags := cmd.Flags()
		if flags.Changed("width") {
			in.Box.Width, _ = flags.GetFloat64("width")
		}
		if flags.Changed("height") {
			in.Box.Height, _ = flags.GetFloat64("height")
		}
		edges := map[string]*css.Edges{
			"padding": &in.Box.Padding,
			"border":  &in.Box.Border,
			"margin":  &in.Box.Margin,
		}
		for name, dest := range edges {
			if !flags.Changed(name) {
				continue
			}
			value, _ := flags.GetString(name)
			e, err := css.ParseEdges(value)
			if err != nil {
				return fmt.Errorf("--%s: %w", name, err)
			}
			*dest = e
		}
		if flags.Changed("sizing") {
			sizing, _ := flags.GetString("sizing")
			in.Box.BoxSizing = css.BoxSizing(sizing)
		}
		if flags.Changed("class") {
			in.Class, _ = flags.GetString("class")
		}

		dims, err := in.Box.Compute()
		if err != nil {
			return err
		}
		if err := saveInputs(ctx, cmd, types.ToolBoxModel, in); err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		printDimensions(out, in.Box, dims)
		if showCSS, _ := flags.GetBool("css"); showCSS {
			fmt.Fprintln(out)
			fmt.Fprint(out, in.Box.CSS(in.Class))
		}
		return nil
	},
}

func init() {
	flexCmd.Flags().String("direction", "", "flex-direction (row, row-reverse, column, column-reverse)")
	flexCmd.Flags().String("wrap", "", "flex-wrap (nowrap, wrap, wrap-reverse)")
	flexCmd.Flags().String("justify", "", "justify-content (flex-start, center, space-between, ...)")
	flexCmd.Flags().String("align-items", "", "align-items (stretch, center, baseline, ...)")
	flexCmd.Flags().String("align-content", "", "align-content (normal, center, space-between, ...)")
	flexCmd.Flags().String("gap", "", "gap (e.g. 16px, 1rem)")
	flexCmd.Flags().StringArray("item", nil, "Child item as key=value pairs: grow, shrink, basis, order, align (repeatable)")
	flexCmd.Flags().String("class", "", "Class name (kebab-cased)")
	addStateFlags(flexCmd)

	spacingCmd.Flags().String("class", "", "Class name (kebab-cased)")
	addStateFlags(spacingCmd)

	boxModelCmd.Flags().Float64("width", 0, "Declared width in px")
	boxModelCmd.Flags().Float64("height", 0, "Declared height in px")
	boxModelCmd.Flags().String("padding", "", "Padding in px (1-4 values)")
	boxModelCmd.Flags().String("border", "", "Border width in px (1-4 values)")
	boxModelCmd.Flags().String("margin", "", "Margin in px (1-4 values)")
	boxModelCmd.Flags().String("sizing", "", "box-sizing: content-box or border-box")
	boxModelCmd.Flags().String("class", "", "Class name for --css")
	boxModelCmd.Flags().Bool("css", false, "Also print the CSS rule")
	addStateFlags(boxModelCmd)

	rootCmd.AddCommand(flexCmd)
	rootCmd.AddCommand(spacingCmd)
	rootCmd.AddCommand(boxModelCmd)
}

// parseFlexItem reads "grow=1,shrink=0,basis=200px,order=2,align=center"
func parseFlexItem(spec string) (css.FlexItem, error) {
	item := css.DefaultFlexItem()
	if strings.TrimSpace(spec) == "" {
		return item, nil
	}
	for _, pair := range strings.Split(spec, ",") {
		key, value, ok := strings.Cut(strings.TrimSpace(pair), "=")
		if !ok {
			return item, fmt.Errorf("expected key=value, got %q", pair)
		}
		var err error
		switch strings.ToLower(key) {
		case "grow":
			item.FlexGrow, err = strconv.ParseFloat(value, 64)
		case "shrink":
			item.FlexShrink, err = strconv.ParseFloat(value, 64)
		case "basis":
			item.FlexBasis, err = css.ParseLength(value)
		case "order":
			item.Order, err = strconv.Atoi(value)
		case "align", "align-self":
			item.AlignSelf = value
		default:
			return item, fmt.Errorf("unknown item property %q (grow, shrink, basis, order, align)", key)
		}
		if err != nil {
			return item, fmt.Errorf("invalid %s %q", key, value)
		}
	}
	return item, nil
}

func printDimensions(w io.Writer, box css.BoxModel, dims css.Dimensions) {
	cyan := color.New(color.FgCyan, color.Bold).SprintFunc()
	gray := color.New(color.FgHiBlack).SprintFunc()

	fmt.Fprintf(w, "\n%s %s\n\n", cyan("Box Model"), gray("("+string(box.BoxSizing)+")"))
	rows := []struct {
		name string
		size css.Size
	}{
		{"Margin box", dims.MarginBox},
		{"Border box", dims.BorderBox},
		{"Padding box", dims.PaddingBox},
		{"Content", dims.Content},
	}
	for _, r := range rows {
		fmt.Fprintf(w, "  %-12s %s\n", r.name, r.size)
	}
	fmt.Fprintln(w)
}
