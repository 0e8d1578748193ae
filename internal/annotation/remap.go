package annotation

import (
	"image"
	"math"
)

// RemapForCrop translates a into the coordinate space of an image cropped to
// crop. It returns nil when a lies entirely outside crop. Shapes that only
// partially overlap are clipped to the new frame: rectangles are
// intersected, segments are clipped, and point-anchored kinds have their
// anchor clamped inside the frame.
func RemapForCrop(a *Annotation, crop image.Rectangle) *Annotation {
	crop = crop.Canon()
	r := ruleFor(a.Kind)
	if r == nil || !closedOverlap(a.Bounds(), crop) {
		return nil
	}
	c := a.Clone()
	c.Selected = false
	if !r.remap(c, crop) {
		return nil
	}
	return c
}

// closedOverlap treats both rectangles as closed so degenerate bounds, such
// as a horizontal line, still count as overlapping.
func closedOverlap(a, b image.Rectangle) bool {
	return a.Min.X <= b.Max.X && b.Min.X <= a.Max.X && a.Min.Y <= b.Max.Y && b.Min.Y <= a.Max.Y
}

func clampPoint(p image.Point, r image.Rectangle) image.Point {
	return image.Pt(min(max(p.X, r.Min.X), r.Max.X), min(max(p.Y, r.Min.Y), r.Max.Y))
}

func remapRect(a *Annotation, crop image.Rectangle) bool {
	r := a.Rect()
	clipped := image.Rectangle{Min: clampPoint(r.Min, crop), Max: clampPoint(r.Max, crop)}
	if (clipped.Dx() == 0 && r.Dx() > 0) || (clipped.Dy() == 0 && r.Dy() > 0) {
		// Only an edge touched the crop.
		return false
	}
	a.setRect(clipped.Sub(crop.Min))
	return true
}

func remapText(a *Annotation, crop image.Rectangle) bool {
	if a.IsRegionText {
		return remapRect(a, crop)
	}
	return remapPoint(a, crop)
}

func remapPoint(a *Annotation, crop image.Rectangle) bool {
	a.Anchor = clampPoint(a.Anchor, crop).Sub(crop.Min)
	a.Opposite = a.Anchor
	return true
}

func remapSegment(a *Annotation, crop image.Rectangle) bool {
	p0, p1, ok := clipSegment(a.Anchor, a.Opposite, crop)
	if !ok {
		return false
	}
	a.Anchor = p0.Sub(crop.Min)
	a.Opposite = p1.Sub(crop.Min)
	return true
}

// clipSegment clips [p0, p1] to the closed rectangle r using Liang-Barsky,
// keeping the segment's direction.
func clipSegment(p0, p1 image.Point, r image.Rectangle) (image.Point, image.Point, bool) {
	x0, y0 := float64(p0.X), float64(p0.Y)
	dx, dy := float64(p1.X-p0.X), float64(p1.Y-p0.Y)
	t0, t1 := 0.0, 1.0
	edges := [4][2]float64{
		{-dx, x0 - float64(r.Min.X)},
		{dx, float64(r.Max.X) - x0},
		{-dy, y0 - float64(r.Min.Y)},
		{dy, float64(r.Max.Y) - y0},
	}
	for _, e := range edges {
		p, q := e[0], e[1]
		if p == 0 {
			if q < 0 {
				return p0, p1, false
			}
			continue
		}
		t := q / p
		if p < 0 {
			if t > t1 {
				return p0, p1, false
			}
			t0 = math.Max(t0, t)
		} else {
			if t < t0 {
				return p0, p1, false
			}
			t1 = math.Min(t1, t)
		}
	}
	at := func(t float64) image.Point {
		return image.Pt(int(math.Round(x0+t*dx)), int(math.Round(y0+t*dy)))
	}
	return clampPoint(at(t0), r), clampPoint(at(t1), r), true
}
