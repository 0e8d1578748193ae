// Package annotation holds the vector markup model layered over a capture:
// the closed set of annotation kinds, their geometry and hit-testing rules,
// and the ordered collection the editor mutates.
package annotation

import (
	"fmt"
	"image"
	"image/color"
	"strings"

	"github.com/google/uuid"

	"github.com/example/shineymark/internal/textfont"
)

// Kind tags an annotation. The set is closed; every per-kind table in this
// module is sized by NumKinds so adding a kind fails to compile until each
// table is extended.
type Kind uint8

const (
	KindHighlight Kind = iota
	KindRectangle
	KindLine
	KindArrow
	KindText
	KindCounter
	kindCount
)

// NumKinds is the number of annotation kinds.
const NumKinds = int(kindCount)

var kindNames = [...]string{
	KindHighlight: "highlight",
	KindRectangle: "rectangle",
	KindLine:      "line",
	KindArrow:     "arrow",
	KindText:      "text",
	KindCounter:   "counter",
}

var _ = [1]struct{}{}[len(kindNames)-NumKinds]

func (k Kind) String() string {
	if int(k) >= len(kindNames) {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return kindNames[k]
}

// Kinds returns every kind in declaration order.
func Kinds() []Kind {
	out := make([]Kind, NumKinds)
	for i := range out {
		out[i] = Kind(i)
	}
	return out
}

// ParseKind resolves a kind name. A few short aliases are accepted.
func ParseKind(s string) (Kind, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	switch name {
	case "rect":
		return KindRectangle, nil
	case "number", "num":
		return KindCounter, nil
	}
	for i, n := range kindNames {
		if n == name {
			return Kind(i), nil
		}
	}
	return 0, fmt.Errorf("unknown annotation kind %q", s)
}

// Style is the drawing style applied to newly created annotations.
type Style struct {
	FillColor color.NRGBA
	LineColor color.NRGBA
	Thickness int
	Font      textfont.Spec
}

// DefaultStyle returns a red, three pixel stroke with no fill.
func DefaultStyle() Style {
	return Style{
		LineColor: color.NRGBA{R: 255, A: 255},
		Thickness: 3,
		Font:      textfont.DefaultSpec(),
	}
}

// Annotation is a single markup object. Anchor and Opposite are stored in
// click order; geometry helpers normalise them.
type Annotation struct {
	ID        uuid.UUID
	Kind      Kind
	Anchor    image.Point
	Opposite  image.Point
	FillColor color.NRGBA
	LineColor color.NRGBA
	Thickness int
	// Selected is a transient UI flag. It never affects exported output.
	Selected bool

	Text         string
	IsRegionText bool
	Font         textfont.Spec

	CounterValue int
}

// New creates an annotation of kind at anchor using style. The shape starts
// degenerate with Opposite equal to Anchor.
func New(kind Kind, anchor image.Point, style Style) *Annotation {
	a := &Annotation{
		ID:       uuid.New(),
		Kind:     kind,
		Anchor:   anchor,
		Opposite: anchor,
	}
	a.SetStyle(style)
	return a
}

// Style returns the annotation's current drawing style.
func (a *Annotation) Style() Style {
	return Style{FillColor: a.FillColor, LineColor: a.LineColor, Thickness: a.Thickness, Font: a.Font}
}

// SetStyle replaces colours, thickness and font.
func (a *Annotation) SetStyle(s Style) {
	a.FillColor = s.FillColor
	a.LineColor = s.LineColor
	a.Thickness = s.Thickness
	if a.Thickness < 1 {
		a.Thickness = 1
	}
	a.Font = s.Font
}

// Clone returns an independent copy with the same ID.
func (a *Annotation) Clone() *Annotation {
	c := *a
	return &c
}

// IsPointText reports whether a is a point-anchored, single line text.
func (a *Annotation) IsPointText() bool {
	return a.Kind == KindText && !a.IsRegionText
}

// Rect returns the normalised rectangle spanned by Anchor and Opposite.
func (a *Annotation) Rect() image.Rectangle {
	return image.Rectangle{Min: a.Anchor, Max: a.Opposite}.Canon()
}

// Radius returns the counter disc radius.
func (a *Annotation) Radius() int {
	return CounterRadius(a.Thickness)
}

// CounterRadius returns the radius used for a counter of thickness.
func CounterRadius(thickness int) int {
	r := thickness * 5
	if r < MinCounterRadius {
		r = MinCounterRadius
	}
	return r
}

// MinCounterRadius is the smallest counter disc radius.
const MinCounterRadius = 15

func (a *Annotation) String() string {
	switch a.Kind {
	case KindText:
		return fmt.Sprintf("%s %v %q", a.Kind, a.Bounds(), a.Text)
	case KindCounter:
		return fmt.Sprintf("%s %d at %v", a.Kind, a.CounterValue, a.Anchor)
	}
	return fmt.Sprintf("%s %v-%v", a.Kind, a.Anchor, a.Opposite)
}
