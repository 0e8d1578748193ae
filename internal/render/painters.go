package render

import (
	"image"
	"image/color"
	"math"
	"strconv"

	"github.com/example/shineymark/internal/annotation"
	"github.com/example/shineymark/internal/textfont"
)

// painter draws one annotation kind. selected asks for emphasised output.
type painter func(dst *image.RGBA, a *annotation.Annotation, selected bool)

var painters = [...]painter{
	annotation.KindHighlight: paintHighlight,
	annotation.KindRectangle: paintRectangle,
	annotation.KindLine:      paintLine,
	annotation.KindArrow:     paintArrow,
	annotation.KindText:      paintText,
	annotation.KindCounter:   paintCounter,
}

var _ = [1]struct{}{}[len(painters)-annotation.NumKinds]

const (
	// highlightAlpha is applied when a highlight colour is opaque or unset.
	highlightAlpha = 96
	maxHighlight   = 160
	arrowAngle     = math.Pi / 6
)

func paintAnnotation(dst *image.RGBA, a *annotation.Annotation, selected bool) {
	if a == nil || int(a.Kind) >= len(painters) {
		return
	}
	painters[a.Kind](dst, a, selected)
}

func strokeWidth(a *annotation.Annotation, selected bool) float64 {
	w := max(1, a.Thickness)
	if selected {
		w++
	}
	return float64(w)
}

func strokeColor(a *annotation.Annotation, selected bool) color.NRGBA {
	if selected {
		return lighten(a.LineColor, 0.25)
	}
	return a.LineColor
}

// highlightColor returns the translucent fill of a highlight. Highlights
// without a fill fall back to the line colour.
func highlightColor(a *annotation.Annotation) color.NRGBA {
	c := a.FillColor
	if c.A == 0 {
		c = a.LineColor
	}
	if c.A == 0 || c.A > maxHighlight {
		c.A = highlightAlpha
	}
	return c
}

func paintHighlight(dst *image.RGBA, a *annotation.Annotation, selected bool) {
	c := highlightColor(a)
	if selected {
		c = lighten(c, 0.2)
	}
	fillRect(dst, a.Rect(), c)
}

func paintRectangle(dst *image.RGBA, a *annotation.Annotation, selected bool) {
	r := a.Rect()
	if a.FillColor.A > 0 {
		fillRect(dst, r, a.FillColor)
	}
	w := strokeWidth(a, selected)
	var s shape
	tl, br := fpt(r.Min), fpt(r.Max)
	tr, bl := fpoint{br.X, tl.Y}, fpoint{tl.X, br.Y}
	s.segment(tl, tr, w)
	s.segment(tr, br, w)
	s.segment(br, bl, w)
	s.segment(bl, tl, w)
	s.fill(dst, strokeColor(a, selected))
}

func paintLine(dst *image.RGBA, a *annotation.Annotation, selected bool) {
	var s shape
	s.segment(fpt(a.Anchor), fpt(a.Opposite), strokeWidth(a, selected))
	s.fill(dst, strokeColor(a, selected))
}

// arrowHead returns the tip and the two barbs of an arrow pointing from
// Anchor to Opposite. The barbs are three thicknesses long whether or not the
// arrow is selected.
func arrowHead(a *annotation.Annotation) (tip, left, right fpoint) {
	tip = fpt(a.Opposite)
	from := fpt(a.Anchor)
	angle := math.Atan2(tip.Y-from.Y, tip.X-from.X)
	length := float64(max(1, a.Thickness) * 3)
	left = fpoint{tip.X - length*math.Cos(angle-arrowAngle), tip.Y - length*math.Sin(angle-arrowAngle)}
	right = fpoint{tip.X - length*math.Cos(angle+arrowAngle), tip.Y - length*math.Sin(angle+arrowAngle)}
	return
}

func paintArrow(dst *image.RGBA, a *annotation.Annotation, selected bool) {
	w := strokeWidth(a, selected)
	var s shape
	if a.Anchor == a.Opposite {
		s.segment(fpt(a.Anchor), fpt(a.Opposite), w)
		s.fill(dst, strokeColor(a, selected))
		return
	}
	tip, left, right := arrowHead(a)
	base := fpoint{(left.X + right.X) / 2, (left.Y + right.Y) / 2}
	s.segment(fpt(a.Anchor), base, w)
	s.polygon(tip, left, right)
	s.fill(dst, strokeColor(a, selected))
}

func paintText(dst *image.RGBA, a *annotation.Annotation, selected bool) {
	col := strokeColor(a, selected)
	if a.FillColor.A > 0 {
		fillRect(dst, a.Bounds(), a.FillColor)
	}
	if a.Text == "" {
		return
	}
	origin, _ := a.TextArea()
	lh := textfont.LineHeight(a.Font)
	lines := a.TextLines()
	if !a.IsRegionText {
		for i, l := range lines {
			textfont.Draw(dst, origin.X, origin.Y+i*lh, l.Text, col, a.Font)
		}
		return
	}
	clip := a.Rect().Inset(annotation.TextInset).Intersect(dst.Bounds())
	if clip.Empty() {
		return
	}
	sub, ok := dst.SubImage(clip).(*image.RGBA)
	if !ok {
		return
	}
	for i, l := range lines {
		y := origin.Y + i*lh
		if y >= clip.Max.Y {
			break
		}
		textfont.Draw(sub, origin.X, y, l.Text, col, a.Font)
	}
}

// counterFont sizes the counter label to the disc.
func counterFont(r int) textfont.Spec {
	return textfont.Spec{Family: textfont.FamilySans, Size: math.Max(10, float64(r)), Bold: true}
}

func paintCounter(dst *image.RGBA, a *annotation.Annotation, selected bool) {
	r := float64(a.Radius())
	c := fpt(a.Anchor)
	fill := a.LineColor
	if selected {
		fill = lighten(fill, 0.25)
	}
	border := darken(fill, 0.35)
	bw := math.Max(1, float64(a.Thickness)/3)

	var outer shape
	outer.disc(c, r)
	outer.fill(dst, border)
	var inner shape
	inner.disc(c, r-bw)
	inner.fill(dst, fill)

	label := strconv.Itoa(a.CounterValue)
	f := counterFont(a.Radius())
	w, h, _ := textfont.Measure(f, label)
	textfont.Draw(dst, a.Anchor.X-w/2, a.Anchor.Y-h/2, label, contrastColor(fill), f)
}
