// Package session tracks the captures open in an editing window. The
// current capture's annotations are pulled into a live collection while it
// is being edited and pushed back when the user moves to another capture.
package session

import (
	"errors"
	"fmt"
	"image"
	"time"

	"github.com/example/shineymark/internal/annotation"
	"github.com/example/shineymark/internal/render"
)

var (
	// ErrClosed is returned once every capture has been removed.
	ErrClosed = errors.New("session closed")
	// ErrNoCapture is returned when an operation needs a current capture.
	ErrNoCapture = errors.New("no capture")
	// ErrIndex reports a capture index out of range.
	ErrIndex = errors.New("capture index out of range")
)

// Session owns an ordered list of captures and the live editing state of
// the current one.
type Session struct {
	comp    *render.Compositor
	now     func() time.Time
	items   []*CaptureItem
	current int
	closed  bool

	live         *annotation.Collection
	liveWorking  *image.RGBA
	workingStale bool
}

// Option configures a Session.
type Option func(*Session)

// WithClock overrides the capture timestamp source.
func WithClock(now func() time.Time) Option { return func(s *Session) { s.now = now } }

// New creates an empty session rendering through comp.
func New(comp *render.Compositor, opts ...Option) *Session {
	if comp == nil {
		comp = render.New()
	}
	s := &Session{comp: comp, now: time.Now, current: -1, live: annotation.NewCollection()}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Compositor returns the compositor shared by every capture.
func (s *Session) Compositor() *render.Compositor { return s.comp }

// Add appends a capture built from img and makes it current.
func (s *Session) Add(img image.Image, name string) (*CaptureItem, error) {
	if s.closed {
		return nil, ErrClosed
	}
	if name == "" {
		name = fmt.Sprintf("capture %d", len(s.items)+1)
	}
	it, err := NewCaptureItem(s.comp, img, name, s.now())
	if err != nil {
		return nil, err
	}
	if err := s.push(); err != nil {
		return nil, err
	}
	s.items = append(s.items, it)
	s.current = len(s.items) - 1
	s.pull()
	return it, nil
}

// Len returns the number of captures.
func (s *Session) Len() int { return len(s.items) }

// Items returns the captures in tab order.
func (s *Session) Items() []*CaptureItem {
	out := make([]*CaptureItem, len(s.items))
	copy(out, s.items)
	return out
}

// Current returns the capture being edited, or nil.
func (s *Session) Current() *CaptureItem {
	if s.current < 0 || s.current >= len(s.items) {
		return nil
	}
	return s.items[s.current]
}

// CurrentIndex returns the index of the current capture or -1.
func (s *Session) CurrentIndex() int { return s.current }

// Closed reports whether the session has been closed.
func (s *Session) Closed() bool { return s.closed }

// Live returns the annotation collection being edited.
func (s *Session) Live() *annotation.Collection { return s.live }

// Invalidate marks the live working image out of date.
func (s *Session) Invalidate() { s.workingStale = true }

// LiveWorking returns the composite of the current capture and the live
// annotations, rebuilding it if it is stale.
func (s *Session) LiveWorking() (*image.RGBA, error) {
	it := s.Current()
	if it == nil {
		return nil, ErrNoCapture
	}
	if s.workingStale || s.liveWorking == nil {
		w, err := s.comp.Flatten(it.Original(), s.live.Items())
		if err != nil {
			return nil, err
		}
		s.liveWorking = w
		s.workingStale = false
	}
	return s.liveWorking, nil
}

// SwitchTo stores the live state into the current capture and makes
// capture i current.
func (s *Session) SwitchTo(i int) error {
	if s.closed {
		return ErrClosed
	}
	if i < 0 || i >= len(s.items) {
		return fmt.Errorf("switch to %d: %w", i, ErrIndex)
	}
	if i == s.current {
		return nil
	}
	if err := s.push(); err != nil {
		return err
	}
	s.current = i
	s.pull()
	return nil
}

// Remove releases capture i. Removing the last capture closes the session.
func (s *Session) Remove(i int) error {
	if s.closed {
		return ErrClosed
	}
	if i < 0 || i >= len(s.items) {
		return fmt.Errorf("remove %d: %w", i, ErrIndex)
	}
	s.items[i].Release()
	s.items = append(s.items[:i], s.items[i+1:]...)
	if len(s.items) == 0 {
		s.Close()
		return nil
	}
	switch {
	case i < s.current:
		s.current--
	case i == s.current:
		s.current = min(i, len(s.items)-1)
		s.pull()
	}
	return nil
}

// Close releases every capture and the live state.
func (s *Session) Close() {
	for _, it := range s.items {
		it.Release()
	}
	s.items = nil
	s.current = -1
	s.live = annotation.NewCollection()
	s.liveWorking = nil
	s.closed = true
}

// Sync pushes the live annotations into the current capture and refreshes
// its working image and thumbnail.
func (s *Session) Sync() error {
	return s.push()
}

// CropCurrent crops the current capture to rect. On success the live
// collection is replaced by the remapped annotations. On failure nothing
// visible changes.
func (s *Session) CropCurrent(rect image.Rectangle) error {
	it := s.Current()
	if it == nil {
		return ErrNoCapture
	}
	prev := it.Annotations()
	it.SetAnnotations(s.live.Clone())
	if err := it.ApplyCrop(rect); err != nil {
		it.SetAnnotations(prev)
		return err
	}
	s.pull()
	return nil
}

// Snapshot returns a deep copy of the current composite without selection
// feedback, safe to hand to another goroutine.
func (s *Session) Snapshot() (*image.RGBA, error) {
	it := s.Current()
	if it == nil {
		return nil, ErrNoCapture
	}
	return s.comp.Flatten(it.Original(), s.live.Items())
}

func (s *Session) push() error {
	it := s.Current()
	if it == nil {
		return nil
	}
	anns := s.live.Clone()
	anns.Deselect()
	it.SetAnnotations(anns)
	return it.Refresh()
}

func (s *Session) pull() {
	it := s.Current()
	if it == nil {
		s.live = annotation.NewCollection()
		s.liveWorking = nil
		return
	}
	s.live = it.Annotations().Clone()
	s.liveWorking = it.Working()
	s.workingStale = false
}
