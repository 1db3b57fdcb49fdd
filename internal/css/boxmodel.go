package css

import (
	"fmt"
	"strings"
)

// BoxSizing selects how width and height are interpreted
type BoxSizing string

const (
	ContentBox BoxSizing = "content-box"
	BorderBox  BoxSizing = "border-box"
)

// Edges are pixel sizes for the four sides of a box layer
type Edges struct {
	Top    float64 `json:"top"`
	Right  float64 `json:"right"`
	Bottom float64 `json:"bottom"`
	Left   float64 `json:"left"`
}

// EdgesAll returns equal edges on every side
func EdgesAll(v float64) Edges { return Edges{v, v, v, v} }

// ParseEdges reads one to four pixel values in CSS shorthand order
// ("8", "8 16", "8 16 4", "8 16 4 0")
func ParseEdges(s string) (Edges, error) {
	sp, err := ParseSpacing(s)
	if err != nil {
		return Edges{}, err
	}
	sides := []Length{sp.Top, sp.Right, sp.Bottom, sp.Left}
	for _, side := range sides {
		if side.IsAuto() || (side.Unit != "px" && !side.IsZero()) {
			return Edges{}, fmt.Errorf("box model edges must be pixel values (got %s)", side)
		}
	}
	return Edges{sides[0].Value, sides[1].Value, sides[2].Value, sides[3].Value}, nil
}

func (e Edges) horizontal() float64 { return e.Left + e.Right }
func (e Edges) vertical() float64   { return e.Top + e.Bottom }

func (e Edges) spacing() Spacing {
	return Spacing{Px(e.Top), Px(e.Right), Px(e.Bottom), Px(e.Left)}
}

// BoxModel is an element's declared size and its layers
type BoxModel struct {
	Width     float64   `json:"width"`
	Height    float64   `json:"height"`
	Padding   Edges     `json:"padding"`
	Border    Edges     `json:"border"`
	Margin    Edges     `json:"margin"`
	BoxSizing BoxSizing `json:"box_sizing"`
}

// Size is a width/height pair in pixels
type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

func (s Size) String() string {
	return fmt.Sprintf("%s × %s", formatNumber(s.Width), formatNumber(s.Height))
}

// Dimensions are the computed sizes of each box layer
type Dimensions struct {
	Content    Size `json:"content"`
	PaddingBox Size `json:"padding_box"`
	BorderBox  Size `json:"border_box"`
	MarginBox  Size `json:"margin_box"`
}

// Compute resolves the layers. With border-box sizing the declared size
// already includes padding and border.
func (b BoxModel) Compute() (Dimensions, error) {
	if b.Width < 0 || b.Height < 0 {
		return Dimensions{}, fmt.Errorf("width and height cannot be negative")
	}
	for name, e := range map[string]Edges{"padding": b.Padding, "border": b.Border} {
		if e.Top < 0 || e.Right < 0 || e.Bottom < 0 || e.Left < 0 {
			return Dimensions{}, fmt.Errorf("%s cannot be negative", name)
		}
	}

	var content Size
	switch b.BoxSizing {
	case ContentBox, "":
		content = Size{b.Width, b.Height}
	case BorderBox:
		content = Size{
			Width:  b.Width - b.Padding.horizontal() - b.Border.horizontal(),
			Height: b.Height - b.Padding.vertical() - b.Border.vertical(),
		}
		if content.Width < 0 || content.Height < 0 {
			return Dimensions{}, fmt.Errorf("padding and border (%s) exceed the border-box size %s",
				Size{b.Padding.horizontal() + b.Border.horizontal(), b.Padding.vertical() + b.Border.vertical()},
				Size{b.Width, b.Height})
		}
	default:
		return Dimensions{}, fmt.Errorf("invalid box-sizing %q", b.BoxSizing)
	}

	grow := func(s Size, e Edges) Size {
		return Size{s.Width + e.horizontal(), s.Height + e.vertical()}
	}
	paddingBox := grow(content, b.Padding)
	borderBox := grow(paddingBox, b.Border)
	return Dimensions{
		Content:    content,
		PaddingBox: paddingBox,
		BorderBox:  borderBox,
		MarginBox:  grow(borderBox, b.Margin),
	}, nil
}

// CSS renders the box as a rule
func (b BoxModel) CSS(className string) string {
	sizing := b.BoxSizing
	if sizing == "" {
		sizing = ContentBox
	}
	decls := []declaration{
		{"BoxSizing", string(sizing)},
		{"Width", Px(b.Width).String()},
		{"Height", Px(b.Height).String()},
		{"Padding", b.Padding.spacing().Shorthand()},
		{"BorderWidth", b.Border.spacing().Shorthand()},
		{"BorderStyle", "solid"},
		{"Margin", b.Margin.spacing().Shorthand()},
	}
	var sb strings.Builder
	writeRule(&sb, ClassSelector(className, "box"), decls)
	return sb.String()
}
