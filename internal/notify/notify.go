// Package notify reports finished exports to the user through desktop
// notifications.
package notify

import (
	"fmt"
	"image"
	"image/png"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/example/shineymark/internal/platform"
)

// Event identifies a notification trigger.
type Event string

const (
	// EventSave fires when a composite has been written to disk.
	EventSave Event = "save"
	// EventCopy fires when a composite has been placed on the clipboard.
	EventCopy Event = "copy"
	// EventFailure fires when an export could not be completed.
	EventFailure Event = "failure"
)

// Preferences holds the title and per-event message templates. Each
// template takes a single %s.
type Preferences struct {
	Title     string
	Templates map[Event]string
}

// DefaultPreferences returns the stock messages.
func DefaultPreferences() Preferences {
	return Preferences{
		Title: platform.DefaultAppName,
		Templates: map[Event]string{
			EventSave:    "Saved %s",
			EventCopy:    "Copied %s to clipboard",
			EventFailure: "Export failed: %s",
		},
	}
}

// LoadPreferences applies SHINEYMARK_NOTIFY_* overrides from getenv.
func LoadPreferences(getenv func(string) string) Preferences {
	prefs := DefaultPreferences()
	if getenv == nil {
		getenv = os.Getenv
	}
	if v := strings.TrimSpace(getenv("SHINEYMARK_NOTIFY_TITLE")); v != "" {
		prefs.Title = v
	}
	for key, ev := range map[string]Event{
		"SHINEYMARK_NOTIFY_SAVE_TEXT":    EventSave,
		"SHINEYMARK_NOTIFY_COPY_TEXT":    EventCopy,
		"SHINEYMARK_NOTIFY_FAILURE_TEXT": EventFailure,
	} {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			prefs.Templates[ev] = v
		}
	}
	return prefs
}

// Sender delivers a formatted notification.
type Sender func(title, body string, opts platform.Options) error

// Notifier sends notifications for the events that are enabled.
type Notifier struct {
	prefs   Preferences
	enabled map[Event]bool
	send    Sender
}

// Option configures a Notifier.
type Option func(*Notifier)

// WithSender replaces platform.Notify as the delivery mechanism.
func WithSender(s Sender) Option { return func(n *Notifier) { n.send = s } }

// New creates a Notifier with every event disabled.
func New(prefs Preferences, opts ...Option) *Notifier {
	n := &Notifier{
		prefs:   Preferences{Title: prefs.Title, Templates: make(map[Event]string, len(prefs.Templates))},
		enabled: make(map[Event]bool),
		send:    platform.Notify,
	}
	for k, v := range prefs.Templates {
		n.prefs.Templates[k] = v
	}
	for _, o := range opts {
		o(n)
	}
	return n
}

// Enable toggles notifications for event.
func (n *Notifier) Enable(event Event, enabled bool) {
	if n == nil {
		return
	}
	n.enabled[event] = enabled
}

// Enabled reports whether event notifications are on.
func (n *Notifier) Enabled(event Event) bool {
	return n != nil && n.enabled[event]
}

// Save reports a written file, showing the file itself as the icon.
func (n *Notifier) Save(path string) {
	if !n.Enabled(EventSave) {
		return
	}
	detail := strings.TrimSpace(path)
	opts := platform.Options{}
	if abs, err := filepath.Abs(path); err == nil {
		detail = abs
		if _, err := os.Stat(abs); err == nil {
			opts.IconPath = abs
		}
	}
	n.dispatch(EventSave, detail, opts)
}

// Copy reports a clipboard copy with an optional preview of the image.
func (n *Notifier) Copy(detail string, img image.Image) {
	if !n.Enabled(EventCopy) {
		return
	}
	if strings.TrimSpace(detail) == "" {
		detail = "image"
	}
	opts := platform.Options{}
	if img != nil {
		path, cleanup, err := writePreview(img)
		if err != nil {
			log.Printf("notification preview: %v", err)
		} else {
			defer cleanup()
			opts.IconPath = path
		}
	}
	n.dispatch(EventCopy, detail, opts)
}

// Failure reports an export error.
func (n *Notifier) Failure(err error) {
	if err == nil || !n.Enabled(EventFailure) {
		return
	}
	n.dispatch(EventFailure, err.Error(), platform.Options{})
}

func (n *Notifier) dispatch(event Event, detail string, opts platform.Options) {
	tmpl := strings.TrimSpace(n.prefs.Templates[event])
	if tmpl == "" {
		return
	}
	body := strings.TrimSpace(fmt.Sprintf(tmpl, strings.TrimSpace(detail)))
	if body == "" {
		return
	}
	opts.AppName = n.prefs.Title
	if err := n.send(n.prefs.Title, body, opts); err != nil {
		log.Printf("notification %s: %v", event, err)
	}
}

func writePreview(img image.Image) (string, func(), error) {
	f, err := os.CreateTemp("", "shineymark-preview-*.png")
	if err != nil {
		return "", nil, err
	}
	path := f.Name()
	if err := png.Encode(f, img); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return "", nil, err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(path)
		return "", nil, err
	}
	cleanup := func() {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			log.Printf("remove preview: %v", err)
		}
	}
	return path, cleanup, nil
}
