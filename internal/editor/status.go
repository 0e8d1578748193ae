package editor

import (
	"fmt"
	"strings"
)

// Status summarises the engine for the host's status bar. It is delivered
// with every dirty notification.
type Status struct {
	Mode        Mode
	Annotations int
	Counter     int
	CropPending bool
	Editing     bool
	Selected    string
	Capture     string
	Index       int
	Captures    int
	Closed      bool
}

// Status returns the current summary.
func (e *Engine) Status() Status {
	st := Status{
		Mode:        e.mode,
		Annotations: e.live().Len(),
		Counter:     e.counter,
		CropPending: e.cropPending,
		Editing:     e.text != nil,
		Index:       e.sess.CurrentIndex(),
		Captures:    e.sess.Len(),
		Closed:      e.sess.Closed(),
	}
	if sel := e.live().Selected(); sel != nil {
		st.Selected = sel.Kind.String()
	}
	if it := e.sess.Current(); it != nil {
		st.Capture = it.Name
	}
	return st
}

func (s Status) String() string {
	if s.Closed {
		return "closed"
	}
	parts := []string{s.Mode.String()}
	if s.Captures > 0 {
		parts = append(parts, fmt.Sprintf("%s (%d/%d)", s.Capture, s.Index+1, s.Captures))
	}
	parts = append(parts, fmt.Sprintf("%d annotations", s.Annotations))
	if s.Selected != "" {
		parts = append(parts, "selected "+s.Selected)
	}
	if s.Editing {
		parts = append(parts, "editing text")
	}
	if s.CropPending {
		parts = append(parts, "enter to crop")
	}
	if s.Mode == ModeCounter {
		parts = append(parts, fmt.Sprintf("next %d", s.Counter))
	}
	return strings.Join(parts, " | ")
}
