package css

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/samber/lo"
)

var units = []string{"px", "rem", "em", "%", "vh", "vw"}

// Length is a CSS length. Unit "auto" means the keyword auto.
type Length struct {
	Value float64 `json:"value"`
	Unit  string  `json:"unit"`
}

// Px returns a pixel length
func Px(v float64) Length { return Length{Value: v, Unit: "px"} }

// Auto returns the auto keyword
func Auto() Length { return Length{Unit: "auto"} }

func (l Length) IsAuto() bool { return l.Unit == "auto" }

func (l Length) IsZero() bool { return !l.IsAuto() && l.Value == 0 }

func (l Length) String() string {
	switch {
	case l.IsAuto():
		return "auto"
	case l.Value == 0:
		return "0"
	}
	unit := l.Unit
	if unit == "" {
		unit = "px"
	}
	return formatNumber(l.Value) + unit
}

// ParseLength accepts "12px", "1.5rem", "50%", "auto", "0" and bare
// numbers (treated as px).
func ParseLength(s string) (Length, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return Length{}, fmt.Errorf("empty length")
	}
	if s == "auto" {
		return Auto(), nil
	}
	unit := "px"
	for _, u := range units {
		if strings.HasSuffix(s, u) {
			unit = u
			s = strings.TrimSuffix(s, u)
			break
		}
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return Length{}, fmt.Errorf("invalid length %q: %w", s+unit, err)
	}
	return Length{Value: v, Unit: unit}, nil
}

// Spacing holds the four sides of a margin or padding declaration
type Spacing struct {
	Top    Length `json:"top"`
	Right  Length `json:"right"`
	Bottom Length `json:"bottom"`
	Left   Length `json:"left"`
}

// Uniform returns a spacing with the same length on every side
func Uniform(l Length) Spacing {
	return Spacing{Top: l, Right: l, Bottom: l, Left: l}
}

// ParseSpacing reads CSS shorthand with one to four values
func ParseSpacing(s string) (Spacing, error) {
	fields := strings.Fields(s)
	lengths := make([]Length, len(fields))
	for i, f := range fields {
		l, err := ParseLength(f)
		if err != nil {
			return Spacing{}, err
		}
		lengths[i] = l
	}
	switch len(lengths) {
	case 1:
		return Uniform(lengths[0]), nil
	case 2:
		return Spacing{lengths[0], lengths[1], lengths[0], lengths[1]}, nil
	case 3:
		return Spacing{lengths[0], lengths[1], lengths[2], lengths[1]}, nil
	case 4:
		return Spacing{lengths[0], lengths[1], lengths[2], lengths[3]}, nil
	}
	return Spacing{}, fmt.Errorf("spacing takes 1 to 4 values (got %d)", len(lengths))
}

// Shorthand collapses the four sides to the shortest equivalent form
func (s Spacing) Shorthand() string {
	t, r, b, l := s.Top.String(), s.Right.String(), s.Bottom.String(), s.Left.String()
	switch {
	case t == r && r == b && b == l:
		return t
	case t == b && r == l:
		return t + " " + r
	case r == l:
		return t + " " + r + " " + b
	}
	return strings.Join([]string{t, r, b, l}, " ")
}

// GenerateSpacing renders a margin or padding rule
func GenerateSpacing(property string, s Spacing, className string) (string, error) {
	if !lo.Contains([]string{"margin", "padding"}, property) {
		return "", fmt.Errorf("property must be margin or padding (got %q)", property)
	}
	for _, side := range []Length{s.Top, s.Right, s.Bottom, s.Left} {
		if side.Unit != "" && !side.IsAuto() && !lo.Contains(units, side.Unit) {
			return "", fmt.Errorf("unsupported unit %q", side.Unit)
		}
		if property == "padding" && (side.Value < 0 || side.IsAuto()) {
			return "", fmt.Errorf("padding cannot be negative or auto (got %s)", side)
		}
	}

	var b strings.Builder
	writeRule(&b, ClassSelector(className, property), []declaration{{field: property, value: s.Shorthand()}})
	return b.String(), nil
}
