package editor

import (
	"image"
	"image/color"
	"math"
	"unicode"

	"golang.org/x/mobile/event/key"
	"golang.org/x/mobile/event/mouse"

	"github.com/example/shineymark/internal/annotation"
	"github.com/example/shineymark/internal/textfont"
)

// ToImage maps a window position to image coordinates given where the
// image's origin is drawn and the zoom factor.
func ToImage(x, y float32, origin image.Point, zoom float64) image.Point {
	if zoom <= 0 {
		zoom = 1
	}
	return image.Pt(
		int(math.Floor((float64(x)-float64(origin.X))/zoom)),
		int(math.Floor((float64(y)-float64(origin.Y))/zoom)),
	)
}

// HandleMouse feeds a window mouse event to the engine. Two presses close
// together in time and space are delivered as a double-click. It reports
// whether the event was consumed.
func (e *Engine) HandleMouse(ev mouse.Event, origin image.Point, zoom float64) bool {
	p := ToImage(ev.X, ev.Y, origin, zoom)
	switch ev.Direction {
	case mouse.DirNone:
		if e.gesture == gestureNone {
			return false
		}
		e.PointerMove(p)
		return true
	case mouse.DirPress:
		if ev.Button != mouse.ButtonLeft {
			return false
		}
		now := e.now()
		double := !e.lastPress.IsZero() &&
			now.Sub(e.lastPress) <= e.cfg.DoubleClickInterval &&
			abs(p.X-e.lastPressAt.X) <= e.cfg.DoubleClickDistance &&
			abs(p.Y-e.lastPressAt.Y) <= e.cfg.DoubleClickDistance
		if double {
			e.lastPress = now.Add(-e.cfg.DoubleClickInterval - 1)
			if e.DoubleClick(p) {
				e.swallowUp = true
				return true
			}
		} else {
			e.lastPress, e.lastPressAt = now, p
		}
		e.PointerDown(p)
		return true
	case mouse.DirRelease:
		if ev.Button != mouse.ButtonLeft {
			return false
		}
		e.PointerUp(p)
		return true
	}
	return false
}

// HandleKey feeds a key event to the engine. Keys the engine does not use
// return false so the host can bind them.
func (e *Engine) HandleKey(ev key.Event) bool {
	if ev.Direction == key.DirRelease {
		return false
	}
	ctrl := ev.Modifiers&(key.ModControl|key.ModMeta) != 0
	if e.text != nil {
		if e.handleTextKey(ev, ctrl) {
			return true
		}
	}
	switch ev.Code {
	case key.CodeEscape:
		return e.Cancel()
	case key.CodeReturnEnter, key.CodeKeypadEnter:
		return e.ConfirmCrop() == nil
	case key.CodeDeleteBackspace, key.CodeDeleteForward:
		return e.DeleteSelected()
	case key.CodeLeftArrow, key.CodeRightArrow, key.CodeUpArrow, key.CodeDownArrow:
		return e.Nudge(e.nudgeDelta(ev))
	}
	r := unicode.ToLower(ev.Rune)
	if ctrl {
		switch {
		case r == 'z':
			return e.Undo()
		case r >= '1' && r <= '9':
			return e.SwitchCapture(int(r-'1')) == nil
		}
		return false
	}
	if ev.Modifiers&key.ModAlt != 0 {
		return false
	}
	if m, ok := modeForShortcut(r); ok {
		e.SetMode(m)
		return true
	}
	return false
}

func (e *Engine) nudgeDelta(ev key.Event) image.Point {
	step := e.cfg.NudgeStep
	if ev.Modifiers&key.ModShift != 0 {
		step = e.cfg.NudgeStepLarge
	}
	switch ev.Code {
	case key.CodeLeftArrow:
		return image.Pt(-step, 0)
	case key.CodeRightArrow:
		return image.Pt(step, 0)
	case key.CodeUpArrow:
		return image.Pt(0, -step)
	case key.CodeDownArrow:
		return image.Pt(0, step)
	}
	return image.Point{}
}

// handleTextKey routes editing keys to the active text editor.
func (e *Engine) handleTextKey(ev key.Event, ctrl bool) bool {
	ed := e.text
	switch ev.Code {
	case key.CodeReturnEnter, key.CodeKeypadEnter:
		if ev.Modifiers&key.ModShift != 0 {
			ed.Insert('\n')
			e.changed()
			return true
		}
		e.finishText(true)
		return true
	case key.CodeEscape:
		e.Cancel()
		return true
	case key.CodeDeleteBackspace:
		if ed.Backspace() {
			e.changed()
		}
		return true
	case key.CodeDeleteForward:
		if ed.Delete() {
			e.changed()
		}
		return true
	case key.CodeLeftArrow:
		if ed.Left() {
			e.changed()
		}
		return true
	case key.CodeRightArrow:
		if ed.Right() {
			e.changed()
		}
		return true
	case key.CodeHome:
		if ed.Home() {
			e.changed()
		}
		return true
	case key.CodeEnd:
		if ed.End() {
			e.changed()
		}
		return true
	}
	if ctrl {
		return false
	}
	if ev.Rune >= 0 && unicode.IsPrint(ev.Rune) {
		ed.Insert(ev.Rune)
		e.changed()
		return true
	}
	return false
}

// TypeText inserts s into the active text edit.
func (e *Engine) TypeText(s string) bool {
	if e.text == nil || s == "" {
		return false
	}
	e.text.InsertString(s)
	e.changed()
	return true
}

// restyle applies fn to the selected annotation and the text being edited.
func (e *Engine) restyle(fn func(a *annotation.Annotation)) {
	if sel := e.live().Selected(); sel != nil {
		fn(sel)
	}
	if e.text != nil {
		fn(e.text.Target())
	}
	e.changed()
}

// SetStyle replaces the style for new annotations and restyles the
// selection.
func (e *Engine) SetStyle(s annotation.Style) {
	if s.Thickness < 1 {
		s.Thickness = 1
	}
	e.style = s
	e.restyle(func(a *annotation.Annotation) { a.SetStyle(s) })
}

// SetLineColor sets the stroke colour.
func (e *Engine) SetLineColor(c color.NRGBA) {
	e.style.LineColor = c
	e.restyle(func(a *annotation.Annotation) { a.LineColor = c })
}

// SetFillColor sets the fill colour. A zero alpha disables fills.
func (e *Engine) SetFillColor(c color.NRGBA) {
	e.style.FillColor = c
	e.restyle(func(a *annotation.Annotation) {
		if a.Kind != annotation.KindHighlight || c.A > 0 {
			a.FillColor = c
		}
	})
}

// SetHighlightColor sets the fill of new highlights.
func (e *Engine) SetHighlightColor(c color.NRGBA) {
	e.cfg.HighlightColor = c
	e.restyle(func(a *annotation.Annotation) {
		if a.Kind == annotation.KindHighlight {
			a.FillColor = c
		}
	})
}

// SetThickness sets the stroke width; values below one are raised to one.
func (e *Engine) SetThickness(t int) {
	t = max(1, t)
	e.style.Thickness = t
	e.restyle(func(a *annotation.Annotation) { a.Thickness = t })
}

// SetFont sets the font for new and edited text.
func (e *Engine) SetFont(f textfont.Spec) {
	e.style.Font = f
	e.restyle(func(a *annotation.Annotation) {
		if a.Kind == annotation.KindText {
			a.Font = f
		}
	})
}
