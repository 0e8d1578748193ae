package annotation

import (
	"image"
	"math"

	"github.com/example/shineymark/internal/textfont"
)

const (
	// DefaultLineTolerance is the pick distance for lines and arrows.
	DefaultLineTolerance = 8
	// DefaultShapeTolerance inflates the bounds of every other kind.
	DefaultShapeTolerance = 5
	// HandleSize is the side of the square used to pick a resize handle.
	HandleSize = 8
	// MinExtent stops a dragged edge from crossing its opposite edge.
	MinExtent = 5
	// TextInset is the margin between a text region and its wrapped lines.
	TextInset = 4
)

// Handle identifies a resize handle.
type Handle int

const (
	HandleNone Handle = iota
	HandleTopLeft
	HandleTopRight
	HandleBottomLeft
	HandleBottomRight
	HandleTop
	HandleBottom
	HandleLeft
	HandleRight
)

var handleNames = [...]string{"none", "top-left", "top-right", "bottom-left", "bottom-right", "top", "bottom", "left", "right"}

func (h Handle) String() string {
	if h < 0 || int(h) >= len(handleNames) {
		return "invalid"
	}
	return handleNames[h]
}

type handleSet uint8

const (
	noHandles handleSet = iota
	cornerHandles
	allHandles
)

var (
	cornerOrder = []Handle{HandleTopLeft, HandleTopRight, HandleBottomLeft, HandleBottomRight}
	edgeOrder   = []Handle{HandleTop, HandleBottom, HandleLeft, HandleRight}
)

// kindRule gathers everything that differs between kinds for geometry.
type kindRule struct {
	bounds    func(a *Annotation) image.Rectangle
	contains  func(a *Annotation, p image.Point, tol int) bool
	tolerance int
	handles   handleSet
	resize    func(a *Annotation, h Handle, p image.Point)
	move      func(a *Annotation, d image.Point)
	remap     func(a *Annotation, crop image.Rectangle) bool
}

// rules is populated in init because its entries reach back into Bounds,
// which would otherwise form an initialization cycle.
var rules [NumKinds]kindRule

func init() {
	rules = [...]kindRule{
		KindHighlight: {bounds: rectBounds, contains: boundsContain, tolerance: DefaultShapeTolerance, handles: allHandles, resize: resizeRect, move: moveBoth, remap: remapRect},
		KindRectangle: {bounds: rectBounds, contains: boundsContain, tolerance: DefaultShapeTolerance, handles: allHandles, resize: resizeRect, move: moveBoth, remap: remapRect},
		KindLine:      {bounds: rectBounds, contains: segmentContains, tolerance: DefaultLineTolerance, handles: cornerHandles, resize: resizeRect, move: moveBoth, remap: remapSegment},
		KindArrow:     {bounds: rectBounds, contains: segmentContains, tolerance: DefaultLineTolerance, handles: cornerHandles, resize: resizeRect, move: moveBoth, remap: remapSegment},
		KindText:      {bounds: textBounds, contains: boundsContain, tolerance: DefaultShapeTolerance, handles: noHandles, move: moveText, remap: remapText},
		KindCounter:   {bounds: counterBounds, contains: counterContains, tolerance: DefaultShapeTolerance, handles: cornerHandles, resize: resizeCounter, move: moveBoth, remap: remapPoint},
	}
}

var _ = [1]struct{}{}[len(rules)-NumKinds]

func ruleFor(k Kind) *kindRule {
	if int(k) >= len(rules) {
		return nil
	}
	return &rules[k]
}

// Bounds returns the derived bounding rectangle. Width and height are never
// negative regardless of the order Anchor and Opposite were recorded in.
func (a *Annotation) Bounds() image.Rectangle {
	r := ruleFor(a.Kind)
	if r == nil {
		return image.Rectangle{Min: a.Anchor, Max: a.Anchor}
	}
	return r.bounds(a)
}

func rectBounds(a *Annotation) image.Rectangle { return a.Rect() }

func counterBounds(a *Annotation) image.Rectangle {
	r := a.Radius()
	return image.Rect(a.Anchor.X-r, a.Anchor.Y-r, a.Anchor.X+r, a.Anchor.Y+r)
}

func textBounds(a *Annotation) image.Rectangle {
	if a.IsRegionText {
		return a.Rect()
	}
	w, h, _ := textfont.Measure(a.Font, a.Text)
	return image.Rect(a.Anchor.X, a.Anchor.Y, a.Anchor.X+w, a.Anchor.Y+h)
}

// ContainsPoint reports whether p picks a. A negative tolerance selects the
// kind's default.
func (a *Annotation) ContainsPoint(p image.Point, tolerance int) bool {
	r := ruleFor(a.Kind)
	if r == nil {
		return false
	}
	if tolerance < 0 {
		tolerance = r.tolerance
	}
	return r.contains(a, p, tolerance)
}

func boundsContain(a *Annotation, p image.Point, tol int) bool {
	b := a.Bounds()
	return p.X >= b.Min.X-tol && p.X <= b.Max.X+tol && p.Y >= b.Min.Y-tol && p.Y <= b.Max.Y+tol
}

func segmentContains(a *Annotation, p image.Point, tol int) bool {
	return SegmentDistance(p, a.Anchor, a.Opposite) <= float64(tol)
}

func counterContains(a *Annotation, p image.Point, tol int) bool {
	dx := float64(p.X - a.Anchor.X)
	dy := float64(p.Y - a.Anchor.Y)
	return math.Hypot(dx, dy) <= float64(a.Radius()+tol)
}

// SegmentDistance returns the distance from p to the segment [a, b]. A
// zero-length segment degrades to the distance to a.
func SegmentDistance(p, a, b image.Point) float64 {
	vx := float64(b.X - a.X)
	vy := float64(b.Y - a.Y)
	wx := float64(p.X - a.X)
	wy := float64(p.Y - a.Y)
	l2 := vx*vx + vy*vy
	if l2 == 0 {
		return math.Hypot(wx, wy)
	}
	t := (wx*vx + wy*vy) / l2
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}
	return math.Hypot(wx-t*vx, wy-t*vy)
}

// HandlePoint pairs a handle with its canonical position.
type HandlePoint struct {
	Handle Handle
	Point  image.Point
}

// Handles lists the resize handles a exposes, corners first.
func (a *Annotation) Handles() []HandlePoint {
	r := ruleFor(a.Kind)
	if r == nil || r.handles == noHandles {
		return nil
	}
	b := a.Bounds()
	out := make([]HandlePoint, 0, 8)
	for _, h := range cornerOrder {
		out = append(out, HandlePoint{h, handlePosition(b, h)})
	}
	if r.handles == allHandles {
		for _, h := range edgeOrder {
			out = append(out, HandlePoint{h, handlePosition(b, h)})
		}
	}
	return out
}

func handlePosition(b image.Rectangle, h Handle) image.Point {
	cx := (b.Min.X + b.Max.X) / 2
	cy := (b.Min.Y + b.Max.Y) / 2
	switch h {
	case HandleTopLeft:
		return b.Min
	case HandleTopRight:
		return image.Pt(b.Max.X, b.Min.Y)
	case HandleBottomLeft:
		return image.Pt(b.Min.X, b.Max.Y)
	case HandleBottomRight:
		return b.Max
	case HandleTop:
		return image.Pt(cx, b.Min.Y)
	case HandleBottom:
		return image.Pt(cx, b.Max.Y)
	case HandleLeft:
		return image.Pt(b.Min.X, cy)
	case HandleRight:
		return image.Pt(b.Max.X, cy)
	}
	return b.Min
}

// HandleRect returns the pick square centred on c.
func HandleRect(c image.Point) image.Rectangle {
	hs := HandleSize / 2
	return image.Rect(c.X-hs, c.Y-hs, c.X+hs, c.Y+hs)
}

// HandleAt returns the handle under p, or HandleNone.
func (a *Annotation) HandleAt(p image.Point) Handle {
	for _, hp := range a.Handles() {
		if p.In(HandleRect(hp.Point)) {
			return hp.Handle
		}
	}
	return HandleNone
}

// Resize drags handle h to p. It reports false when the kind has no such
// handle, leaving a untouched.
func (a *Annotation) Resize(h Handle, p image.Point) bool {
	r := ruleFor(a.Kind)
	if r == nil || r.resize == nil || h == HandleNone {
		return false
	}
	if r.handles == cornerHandles {
		switch h {
		case HandleTop, HandleBottom, HandleLeft, HandleRight:
			return false
		}
	}
	r.resize(a, h, p)
	return true
}

func resizeRect(a *Annotation, h Handle, p image.Point) {
	r := a.Rect()
	minW := minExtent(r.Dx())
	minH := minExtent(r.Dy())
	switch h {
	case HandleTopLeft, HandleLeft, HandleBottomLeft:
		r.Min.X = min(p.X, r.Max.X-minW)
	case HandleTopRight, HandleRight, HandleBottomRight:
		r.Max.X = max(p.X, r.Min.X+minW)
	}
	switch h {
	case HandleTopLeft, HandleTop, HandleTopRight:
		r.Min.Y = min(p.Y, r.Max.Y-minH)
	case HandleBottomLeft, HandleBottom, HandleBottomRight:
		r.Max.Y = max(p.Y, r.Min.Y+minH)
	}
	a.setRect(r)
}

// minExtent relaxes the clamp for axes already thinner than MinExtent, such
// as a horizontal line, so resizing never inflates them.
func minExtent(current int) int {
	if current < MinExtent {
		return current
	}
	return MinExtent
}

// setRect writes r back into Anchor and Opposite keeping their orientation.
func (a *Annotation) setRect(r image.Rectangle) {
	if a.Anchor.X <= a.Opposite.X {
		a.Anchor.X, a.Opposite.X = r.Min.X, r.Max.X
	} else {
		a.Anchor.X, a.Opposite.X = r.Max.X, r.Min.X
	}
	if a.Anchor.Y <= a.Opposite.Y {
		a.Anchor.Y, a.Opposite.Y = r.Min.Y, r.Max.Y
	} else {
		a.Anchor.Y, a.Opposite.Y = r.Max.Y, r.Min.Y
	}
}

func resizeCounter(a *Annotation, _ Handle, p image.Point) {
	dx := abs(p.X - a.Anchor.X)
	dy := abs(p.Y - a.Anchor.Y)
	r := max(dx, dy, MinCounterRadius)
	a.Thickness = (r + 4) / 5
	a.Opposite = a.Anchor
}

// Move translates a by d.
func (a *Annotation) Move(d image.Point) {
	if r := ruleFor(a.Kind); r != nil {
		r.move(a, d)
	}
}

func moveBoth(a *Annotation, d image.Point) {
	a.Anchor = a.Anchor.Add(d)
	a.Opposite = a.Opposite.Add(d)
}

func moveText(a *Annotation, d image.Point) {
	a.Anchor = a.Anchor.Add(d)
	if a.IsRegionText {
		a.Opposite = a.Opposite.Add(d)
		return
	}
	a.Opposite = a.Anchor
}

// TextArea returns the rectangle text lines are laid out in. Point text has
// no wrap width.
func (a *Annotation) TextArea() (origin image.Point, wrapWidth int) {
	if !a.IsRegionText {
		return a.Anchor, 0
	}
	r := a.Rect().Inset(TextInset)
	w := r.Dx()
	if w < 1 {
		w = 1
	}
	return r.Min, w
}

// TextLines lays out the annotation text the way it is rendered.
func (a *Annotation) TextLines() []textfont.Line {
	_, width := a.TextArea()
	return textfont.Wrap(a.Font, a.Text, width)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
