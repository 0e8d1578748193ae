// Package textedit implements in-canvas text entry for text annotations
// without relying on a platform text widget.
package textedit

import (
	"image"
	"strings"

	"github.com/example/shineymark/internal/annotation"
	"github.com/example/shineymark/internal/textfont"
)

// Editor is a cursor-aware buffer bound to one text annotation. Every
// mutation is written straight back to the annotation's Text.
type Editor struct {
	target   *annotation.Annotation
	buf      []rune
	cursor   int
	original string
	isNew    bool
}

// Begin starts editing target with the cursor at the end of its text.
// isNew marks an annotation created for this edit.
func Begin(target *annotation.Annotation, isNew bool) *Editor {
	e := &Editor{
		target:   target,
		buf:      []rune(target.Text),
		original: target.Text,
		isNew:    isNew,
	}
	e.cursor = len(e.buf)
	return e
}

// Target returns the annotation being edited.
func (e *Editor) Target() *annotation.Annotation { return e.target }

// IsNew reports whether the annotation was created for this edit.
func (e *Editor) IsNew() bool { return e.isNew }

// Text returns the current buffer.
func (e *Editor) Text() string { return string(e.buf) }

// Cursor returns the cursor position in runes, in [0, Len()].
func (e *Editor) Cursor() int { return e.cursor }

// Len returns the buffer length in runes.
func (e *Editor) Len() int { return len(e.buf) }

func (e *Editor) sync() { e.target.Text = string(e.buf) }

// Insert adds r at the cursor.
func (e *Editor) Insert(r rune) {
	e.InsertString(string(r))
}

// InsertString adds s at the cursor and moves the cursor past it.
func (e *Editor) InsertString(s string) {
	if s == "" {
		return
	}
	ins := []rune(s)
	buf := make([]rune, 0, len(e.buf)+len(ins))
	buf = append(buf, e.buf[:e.cursor]...)
	buf = append(buf, ins...)
	buf = append(buf, e.buf[e.cursor:]...)
	e.buf = buf
	e.cursor += len(ins)
	e.sync()
}

// Backspace deletes the rune before the cursor.
func (e *Editor) Backspace() bool {
	if e.cursor == 0 {
		return false
	}
	e.buf = append(e.buf[:e.cursor-1], e.buf[e.cursor:]...)
	e.cursor--
	e.sync()
	return true
}

// Delete deletes the rune at the cursor.
func (e *Editor) Delete() bool {
	if e.cursor >= len(e.buf) {
		return false
	}
	e.buf = append(e.buf[:e.cursor], e.buf[e.cursor+1:]...)
	e.sync()
	return true
}

// Left moves the cursor back one rune.
func (e *Editor) Left() bool { return e.SetCursor(e.cursor - 1) }

// Right moves the cursor forward one rune.
func (e *Editor) Right() bool { return e.SetCursor(e.cursor + 1) }

// Home moves the cursor to the start of the buffer.
func (e *Editor) Home() bool { return e.SetCursor(0) }

// End moves the cursor to the end of the buffer.
func (e *Editor) End() bool { return e.SetCursor(len(e.buf)) }

// SetCursor clamps i into range and reports whether the cursor moved.
func (e *Editor) SetCursor(i int) bool {
	i = max(0, min(i, len(e.buf)))
	if i == e.cursor {
		return false
	}
	e.cursor = i
	return true
}

// Blank reports whether the buffer holds only whitespace.
func (e *Editor) Blank() bool {
	return strings.TrimSpace(string(e.buf)) == ""
}

// Commit finalises the edit. It reports whether the annotation should be
// kept; blank text must be removed by the caller.
func (e *Editor) Commit() bool {
	e.sync()
	return !e.Blank()
}

// Cancel abandons the edit. Existing annotations get their previous text
// back. New annotations are kept only if something non-blank was typed.
func (e *Editor) Cancel() bool {
	if !e.isNew {
		e.buf = []rune(e.original)
		e.cursor = min(e.cursor, len(e.buf))
		e.sync()
		return strings.TrimSpace(e.original) != ""
	}
	return e.Commit()
}

// Caret returns the 1 pixel wide caret rectangle in image coordinates,
// placed at the measured width of the text before the cursor.
func (e *Editor) Caret() image.Rectangle {
	a := e.target
	origin, _ := a.TextArea()
	lines := a.TextLines()
	idx := 0
	for i, l := range lines {
		if l.Start <= e.cursor {
			idx = i
		}
	}
	line := lines[idx]
	col := min(e.cursor, line.End) - line.Start
	prefix := string([]rune(line.Text)[:max(0, min(col, len([]rune(line.Text))))])
	lh := textfont.LineHeight(a.Font)
	x := origin.X + textfont.Advance(a.Font, prefix)
	y := origin.Y + idx*lh
	return image.Rect(x, y, x+1, y+lh)
}
