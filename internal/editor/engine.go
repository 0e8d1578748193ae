// Package editor implements the interactive tool state machine. An Engine
// turns pointer and keyboard input into annotation edits on the current
// capture of a session and renders frames for the host to display.
package editor

import (
	"errors"
	"fmt"
	"image"
	"time"

	"github.com/example/shineymark/internal/annotation"
	"github.com/example/shineymark/internal/render"
	"github.com/example/shineymark/internal/session"
	"github.com/example/shineymark/internal/textedit"
)

// ErrNoCrop is returned by ConfirmCrop when no crop rectangle is pending.
var ErrNoCrop = errors.New("no crop selected")

type gesture int

const (
	gestureNone gesture = iota
	gestureDrawing
	gestureDragging
	gestureResizing
	gestureText
	gestureCropping
)

// Engine is the editing state machine for one session. It is not safe for
// concurrent use; every method is expected to run on the host's event loop.
type Engine struct {
	cfg     Config
	sess    *session.Session
	onDirty func(Status)
	now     func() time.Time

	mode    Mode
	style   annotation.Style
	counter int

	gesture gesture
	start   image.Point
	last    image.Point
	handle  annotation.Handle
	before  *annotation.Annotation
	preview *annotation.Annotation

	crop        image.Rectangle
	cropPending bool

	text *textedit.Editor

	lastPress   time.Time
	lastPressAt image.Point
	swallowUp   bool
}

// Option configures an Engine.
type Option func(*Engine)

// WithConfig replaces the editing parameters.
func WithConfig(cfg Config) Option { return func(e *Engine) { e.cfg = cfg } }

// WithSession edits an existing session instead of a new empty one.
func WithSession(s *session.Session) Option { return func(e *Engine) { e.sess = s } }

// WithDirtyListener registers the function called after every change to
// the annotations, crop or editing state.
func WithDirtyListener(fn func(Status)) Option { return func(e *Engine) { e.onDirty = fn } }

// WithClock overrides the time source used for double-click detection.
func WithClock(now func() time.Time) Option { return func(e *Engine) { e.now = now } }

// New creates an Engine in Select mode.
func New(opts ...Option) *Engine {
	e := &Engine{cfg: DefaultConfig(), now: time.Now}
	for _, o := range opts {
		o(e)
	}
	e.cfg = e.cfg.normalized()
	if e.sess == nil {
		e.sess = session.New(render.New())
	}
	e.style = e.cfg.Style
	e.counter = e.cfg.CounterStart
	return e
}

// Config returns the editing parameters.
func (e *Engine) Config() Config { return e.cfg }

// Session returns the session being edited.
func (e *Engine) Session() *session.Session { return e.sess }

// Mode returns the active tool.
func (e *Engine) Mode() Mode { return e.mode }

// Style returns the style applied to new annotations.
func (e *Engine) Style() annotation.Style { return e.style }

// Counter returns the value the next counter annotation will show.
func (e *Engine) Counter() int { return e.counter }

// Annotations returns the live annotations of the current capture.
func (e *Engine) Annotations() []*annotation.Annotation { return e.sess.Live().Items() }

// Selected returns the selected annotation, if any.
func (e *Engine) Selected() *annotation.Annotation { return e.sess.Live().Selected() }

// Editing returns the text annotation receiving keyboard input, if any.
func (e *Engine) Editing() *annotation.Annotation {
	if e.text == nil {
		return nil
	}
	return e.text.Target()
}

// TextEditor returns the active text editor, if any.
func (e *Engine) TextEditor() *textedit.Editor { return e.text }

// Crop returns the live or pending crop rectangle and whether it is pending.
func (e *Engine) Crop() (image.Rectangle, bool) { return e.crop, e.cropPending }

func (e *Engine) live() *annotation.Collection { return e.sess.Live() }

func (e *Engine) changed() {
	e.sess.Invalidate()
	if e.onDirty != nil {
		e.onDirty(e.Status())
	}
}

// AddCapture adds img to the session and switches to it.
func (e *Engine) AddCapture(img image.Image, name string) error {
	e.finishText(true)
	e.resetGesture()
	if _, err := e.sess.Add(img, name); err != nil {
		return err
	}
	e.changed()
	return nil
}

// SwitchCapture makes capture i current, committing any text edit first.
func (e *Engine) SwitchCapture(i int) error {
	if i == e.sess.CurrentIndex() {
		return nil
	}
	e.finishText(true)
	e.resetGesture()
	e.live().Deselect()
	if err := e.sess.SwitchTo(i); err != nil {
		return err
	}
	e.changed()
	return nil
}

// RemoveCapture removes capture i. Removing the last one closes the session.
func (e *Engine) RemoveCapture(i int) error {
	if i == e.sess.CurrentIndex() {
		e.text = nil
		e.resetGesture()
	}
	if err := e.sess.Remove(i); err != nil {
		return err
	}
	e.changed()
	return nil
}

// SetMode switches tools. Any text edit is committed and any gesture,
// crop rectangle and selection is dropped.
func (e *Engine) SetMode(m Mode) {
	if !m.valid() {
		return
	}
	e.finishText(true)
	e.resetGesture()
	e.live().Deselect()
	e.mode = m
	e.changed()
}

func (e *Engine) resetGesture() {
	if e.before != nil && (e.gesture == gestureDragging || e.gesture == gestureResizing) {
		if sel := e.live().Selected(); sel != nil {
			*sel = *e.before
			sel.Selected = true
		}
	}
	e.gesture = gestureNone
	e.before = nil
	e.preview = nil
	e.handle = annotation.HandleNone
	e.crop = image.Rectangle{}
	e.cropPending = false
}

func (e *Engine) tolerance(a *annotation.Annotation) int {
	switch a.Kind {
	case annotation.KindLine, annotation.KindArrow:
		return e.cfg.LineTolerance
	}
	return e.cfg.ShapeTolerance
}

func (e *Engine) hit(p image.Point) *annotation.Annotation {
	return e.live().HitTestFunc(p, e.tolerance)
}

// hitText skips blank text, which only exists while a fresh edit is open, so
// the first press of a double-click cannot shadow the text beneath it.
func (e *Engine) hitText(p image.Point) *annotation.Annotation {
	items := e.live().Items()
	for i := len(items) - 1; i >= 0; i-- {
		a := items[i]
		if a.Kind == annotation.KindText && a.Text != "" && a.ContainsPoint(p, e.cfg.ShapeTolerance) {
			return a
		}
	}
	return nil
}

// styleFor returns the style a new annotation of kind receives.
func (e *Engine) styleFor(kind annotation.Kind) annotation.Style {
	s := e.style
	if kind == annotation.KindHighlight {
		s.FillColor = e.cfg.HighlightColor
	}
	return s
}

func (e *Engine) imageBounds() image.Rectangle {
	if it := e.sess.Current(); it != nil {
		return it.Original().Bounds()
	}
	return image.Rectangle{}
}

// PointerDown handles a primary button press at p in image coordinates.
func (e *Engine) PointerDown(p image.Point) {
	if e.sess.Current() == nil {
		return
	}
	if e.text != nil {
		if e.text.Target().ContainsPoint(p, 0) {
			e.swallowUp = true
			return
		}
		e.finishText(true)
	}
	e.start, e.last = p, p
	switch {
	case e.mode == ModeSelect:
		e.selectAt(p)
	case e.mode.isDraw():
		kind, _ := e.mode.Kind()
		e.gesture = gestureDrawing
		e.preview = annotation.New(kind, p, e.styleFor(kind))
	case e.mode == ModeText:
		e.gesture = gestureText
	case e.mode == ModeCrop:
		e.gesture = gestureCropping
		e.crop = image.Rectangle{}
		e.cropPending = false
		e.changed()
	}
}

func (e *Engine) selectAt(p image.Point) {
	live := e.live()
	if sel := live.Selected(); sel != nil {
		if h := sel.HandleAt(p); h != annotation.HandleNone {
			e.gesture = gestureResizing
			e.handle = h
			e.before = sel.Clone()
			return
		}
	}
	if a := e.hit(p); a != nil {
		live.Select(a)
		e.gesture = gestureDragging
		e.before = a.Clone()
		e.changed()
		return
	}
	if live.Deselect() {
		e.changed()
	}
}

// PointerMove handles pointer motion at p in image coordinates.
func (e *Engine) PointerMove(p image.Point) {
	switch e.gesture {
	case gestureDragging:
		d := p.Sub(e.last)
		e.last = p
		if sel := e.live().Selected(); sel != nil && d != (image.Point{}) {
			sel.Move(d)
			e.changed()
		}
	case gestureResizing:
		if sel := e.live().Selected(); sel != nil && sel.Resize(e.handle, p) {
			e.changed()
		}
	case gestureDrawing:
		e.preview.Opposite = p
		e.changed()
	case gestureText:
		e.last = p
		e.changed()
	case gestureCropping:
		e.last = p
		e.crop = image.Rectangle{Min: e.start, Max: p}.Canon().Intersect(e.imageBounds())
		e.changed()
	}
}

// PointerUp handles a primary button release at p in image coordinates.
func (e *Engine) PointerUp(p image.Point) {
	if e.swallowUp {
		e.swallowUp = false
		return
	}
	if e.sess.Current() == nil {
		return
	}
	if e.gesture == gestureDragging || e.gesture == gestureResizing {
		e.PointerMove(p)
		e.gesture = gestureNone
		e.before = nil
		e.changed()
		return
	}
	g := e.gesture
	e.gesture = gestureNone
	switch g {
	case gestureDrawing:
		a := e.preview
		e.preview = nil
		a.Opposite = p
		d := p.Sub(e.start)
		if abs(d.X) > e.cfg.DrawThreshold || abs(d.Y) > e.cfg.DrawThreshold {
			e.live().Add(a)
		}
		e.changed()
	case gestureText:
		e.createText(e.start, p)
	case gestureCropping:
		r := image.Rectangle{Min: e.start, Max: p}.Canon().Intersect(e.imageBounds())
		if r.Dx() >= e.cfg.MinCropSize && r.Dy() >= e.cfg.MinCropSize {
			e.crop, e.cropPending = r, true
		} else {
			e.crop, e.cropPending = image.Rectangle{}, false
		}
		e.changed()
	default:
		if e.mode == ModeCounter {
			e.addCounter(p)
		}
	}
}

func (e *Engine) addCounter(p image.Point) {
	a := annotation.New(annotation.KindCounter, p, e.styleFor(annotation.KindCounter))
	a.CounterValue = e.counter
	e.counter++
	e.live().Add(a)
	e.changed()
}

func (e *Engine) createText(start, end image.Point) {
	a := annotation.New(annotation.KindText, start, e.styleFor(annotation.KindText))
	d := end.Sub(start)
	if abs(d.X) > e.cfg.TextRegionThreshold || abs(d.Y) > e.cfg.TextRegionThreshold {
		a.IsRegionText = true
		a.Opposite = end
	}
	e.live().Add(a)
	e.beginText(a, true)
}

func (e *Engine) beginText(a *annotation.Annotation, isNew bool) {
	if e.text != nil && e.text.Target() == a {
		return
	}
	e.finishText(true)
	e.live().Deselect()
	e.text = textedit.Begin(a, isNew)
	e.changed()
}

// finishText ends the active text edit, committing or cancelling it. Blank
// results are removed from the collection.
func (e *Engine) finishText(commit bool) bool {
	if e.text == nil {
		return false
	}
	ed := e.text
	e.text = nil
	var keep bool
	if commit {
		keep = ed.Commit()
	} else {
		keep = ed.Cancel()
	}
	if !keep {
		e.live().Remove(ed.Target())
	}
	e.changed()
	return true
}

// CommitText finishes the active text edit.
func (e *Engine) CommitText() bool { return e.finishText(true) }

// DoubleClick reopens the topmost text annotation under p for editing. It
// works in every mode and reports whether a text annotation was found.
func (e *Engine) DoubleClick(p image.Point) bool {
	a := e.hitText(p)
	if a == nil {
		return false
	}
	if e.text != nil && e.text.Target() == a {
		return true
	}
	e.resetGesture()
	e.beginText(a, false)
	return true
}

// Cancel handles Escape: an in-progress gesture or crop is dropped first,
// then the selection, then the text edit.
func (e *Engine) Cancel() bool {
	if e.gesture != gestureNone || !e.crop.Empty() || e.cropPending {
		e.resetGesture()
		e.changed()
		return true
	}
	if e.live().Deselect() {
		e.changed()
		return true
	}
	return e.finishText(false)
}

// ConfirmCrop applies the pending crop to the current capture and returns
// to Select mode. A failed crop leaves the capture and the pending
// rectangle as they were.
func (e *Engine) ConfirmCrop() error {
	if !e.cropPending {
		return ErrNoCrop
	}
	e.finishText(true)
	if err := e.sess.CropCurrent(e.crop); err != nil {
		return fmt.Errorf("crop failed: %w", err)
	}
	e.resetGesture()
	e.mode = ModeSelect
	e.changed()
	return nil
}

// SetCrop sets a pending crop rectangle directly, clipped to the image.
func (e *Engine) SetCrop(r image.Rectangle) error {
	clipped, err := render.ValidCrop(r, e.imageBounds())
	if err != nil {
		return err
	}
	if clipped.Dx() < e.cfg.MinCropSize || clipped.Dy() < e.cfg.MinCropSize {
		return fmt.Errorf("crop %v: %w", r, render.ErrInvalidGeometry)
	}
	r = clipped
	e.finishText(true)
	e.resetGesture()
	e.live().Deselect()
	e.mode = ModeCrop
	e.crop, e.cropPending = r, true
	e.changed()
	return nil
}

// Undo removes the most recently added annotation.
func (e *Engine) Undo() bool {
	e.finishText(true)
	e.resetGesture()
	if _, ok := e.live().Undo(); !ok {
		return false
	}
	e.changed()
	return true
}

// DeleteSelected removes the selected annotation.
func (e *Engine) DeleteSelected() bool {
	sel := e.live().Selected()
	if sel == nil {
		return false
	}
	e.resetGesture()
	e.live().Remove(sel)
	e.changed()
	return true
}

// Clear removes every annotation from the current capture.
func (e *Engine) Clear() {
	e.text = nil
	e.resetGesture()
	e.live().Clear()
	e.changed()
}

// ResetCounter sets the value of the next counter. Existing counters keep
// their numbers.
func (e *Engine) ResetCounter(n int) {
	if n < 1 {
		n = e.cfg.CounterStart
	}
	e.counter = n
	e.changed()
}

// Nudge moves the selected annotation by d.
func (e *Engine) Nudge(d image.Point) bool {
	sel := e.live().Selected()
	if sel == nil || d == (image.Point{}) {
		return false
	}
	sel.Move(d)
	e.changed()
	return true
}

// Frame renders the current capture with selection feedback, the
// in-progress preview, the crop rectangle and the text caret.
func (e *Engine) Frame() (*image.RGBA, error) {
	it := e.sess.Current()
	if it == nil {
		return nil, session.ErrNoCapture
	}
	ov := render.Overlay{
		Preview:       e.preview,
		Crop:          e.crop,
		ShowSelection: true,
	}
	if e.gesture == gestureText {
		d := e.last.Sub(e.start)
		if abs(d.X) > e.cfg.TextRegionThreshold || abs(d.Y) > e.cfg.TextRegionThreshold {
			ov.Guide = image.Rectangle{Min: e.start, Max: e.last}.Canon()
		}
	}
	if e.text != nil {
		ov.Editing = e.text.Target()
		ov.Caret = e.text.Caret()
	}
	return e.sess.Compositor().Render(it.Original(), e.live().Items(), ov)
}

// Snapshot returns a deep copy of the flattened composite of the current
// capture, suitable for export on another goroutine.
func (e *Engine) Snapshot() (*image.RGBA, error) {
	if err := e.sess.Sync(); err != nil {
		return nil, err
	}
	return e.sess.Snapshot()
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
