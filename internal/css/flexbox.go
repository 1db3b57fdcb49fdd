// Package css generates CSS for flexbox layouts and spacing rules and
// computes box-model dimensions.
package css

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/samber/lo"
	"github.com/stoewer/go-strcase"
)

var (
	flexDirections = []string{"row", "row-reverse", "column", "column-reverse"}
	flexWraps      = []string{"nowrap", "wrap", "wrap-reverse"}
	justifyValues  = []string{"flex-start", "flex-end", "center", "space-between", "space-around", "space-evenly", "start", "end"}
	alignItems     = []string{"stretch", "flex-start", "flex-end", "center", "baseline", "start", "end"}
	alignContent   = []string{"normal", "stretch", "flex-start", "flex-end", "center", "space-between", "space-around", "space-evenly"}
	alignSelf      = []string{"auto", "stretch", "flex-start", "flex-end", "center", "baseline"}
)

// FlexContainer describes the flex container properties. Empty fields
// take the CSS initial value.
type FlexContainer struct {
	FlexDirection  string `json:"flex_direction,omitempty"`
	FlexWrap       string `json:"flex_wrap,omitempty"`
	JustifyContent string `json:"justify_content,omitempty"`
	AlignItems     string `json:"align_items,omitempty"`
	AlignContent   string `json:"align_content,omitempty"`
	Gap            Length `json:"gap"`
}

// FlexItem describes per-child flex properties
type FlexItem struct {
	FlexGrow   float64 `json:"flex_grow"`
	FlexShrink float64 `json:"flex_shrink"`
	FlexBasis  Length  `json:"flex_basis"`
	Order      int     `json:"order"`
	AlignSelf  string  `json:"align_self,omitempty"`
}

// DefaultFlexItem returns an item with CSS initial values
func DefaultFlexItem() FlexItem {
	return FlexItem{FlexShrink: 1, FlexBasis: Auto()}
}

// Validate checks container keywords
func (c FlexContainer) Validate() error {
	checks := []struct {
		name    string
		value   string
		allowed []string
	}{
		{"flex-direction", c.FlexDirection, flexDirections},
		{"flex-wrap", c.FlexWrap, flexWraps},
		{"justify-content", c.JustifyContent, justifyValues},
		{"align-items", c.AlignItems, alignItems},
		{"align-content", c.AlignContent, alignContent},
	}
	for _, chk := range checks {
		if chk.value != "" && !lo.Contains(chk.allowed, chk.value) {
			return fmt.Errorf("invalid %s %q (expected one of %s)", chk.name, chk.value, strings.Join(chk.allowed, ", "))
		}
	}
	if c.Gap.Value < 0 {
		return fmt.Errorf("gap cannot be negative (got %s)", c.Gap)
	}
	return nil
}

// Validate checks item values
func (i FlexItem) Validate() error {
	if i.FlexGrow < 0 {
		return fmt.Errorf("flex-grow cannot be negative (got %g)", i.FlexGrow)
	}
	if i.FlexShrink < 0 {
		return fmt.Errorf("flex-shrink cannot be negative (got %g)", i.FlexShrink)
	}
	if i.FlexBasis.Value < 0 {
		return fmt.Errorf("flex-basis cannot be negative (got %s)", i.FlexBasis)
	}
	if i.AlignSelf != "" && !lo.Contains(alignSelf, i.AlignSelf) {
		return fmt.Errorf("invalid align-self %q (expected one of %s)", i.AlignSelf, strings.Join(alignSelf, ", "))
	}
	return nil
}

// declaration is a single "property: value" pair. Property names are
// derived from Go field names (FlexDirection -> flex-direction).
type declaration struct {
	field string
	value string
}

func (d declaration) String() string {
	return strcase.KebabCase(d.field) + ": " + d.value + ";"
}

func (c FlexContainer) declarations() []declaration {
	decls := []declaration{{"Display", "flex"}}
	add := func(field, value, initial string) {
		if value != "" && value != initial {
			decls = append(decls, declaration{field, value})
		}
	}
	add("FlexDirection", c.FlexDirection, "row")
	add("FlexWrap", c.FlexWrap, "nowrap")
	add("JustifyContent", c.JustifyContent, "flex-start")
	add("AlignItems", c.AlignItems, "stretch")
	add("AlignContent", c.AlignContent, "normal")
	if !c.Gap.IsZero() {
		decls = append(decls, declaration{"Gap", c.Gap.String()})
	}
	return decls
}

func (i FlexItem) declarations() []declaration {
	var decls []declaration
	if i.FlexGrow != 0 {
		decls = append(decls, declaration{"FlexGrow", formatNumber(i.FlexGrow)})
	}
	if i.FlexShrink != 1 {
		decls = append(decls, declaration{"FlexShrink", formatNumber(i.FlexShrink)})
	}
	if !i.FlexBasis.IsAuto() {
		decls = append(decls, declaration{"FlexBasis", i.FlexBasis.String()})
	}
	if i.Order != 0 {
		decls = append(decls, declaration{"Order", strconv.Itoa(i.Order)})
	}
	if i.AlignSelf != "" && i.AlignSelf != "auto" {
		decls = append(decls, declaration{"AlignSelf", i.AlignSelf})
	}
	return decls
}

// GenerateFlexbox renders the container rule followed by one
// :nth-child rule per item that differs from the initial values.
func GenerateFlexbox(container FlexContainer, items []FlexItem, className string) (string, error) {
	if err := container.Validate(); err != nil {
		return "", err
	}
	for idx, item := range items {
		if err := item.Validate(); err != nil {
			return "", fmt.Errorf("item %d: %w", idx+1, err)
		}
	}

	selector := ClassSelector(className, "flex-container")
	var b strings.Builder
	writeRule(&b, selector, container.declarations())
	for idx, item := range items {
		decls := item.declarations()
		if len(decls) == 0 {
			continue
		}
		b.WriteString("\n")
		writeRule(&b, fmt.Sprintf("%s > :nth-child(%d)", selector, idx+1), decls)
	}
	return b.String(), nil
}

// ClassSelector normalizes a class name to a kebab-case selector
func ClassSelector(className, fallback string) string {
	name := strcase.KebabCase(strings.TrimPrefix(strings.TrimSpace(className), "."))
	if name == "" {
		name = fallback
	}
	return "." + name
}

func writeRule(b *strings.Builder, selector string, decls []declaration) {
	b.WriteString(selector + " {\n")
	for _, d := range decls {
		b.WriteString("  " + d.String() + "\n")
	}
	b.WriteString("}\n")
}

func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
