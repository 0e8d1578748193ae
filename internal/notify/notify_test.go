package notify

import (
	"errors"
	"image"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/example/shineymark/internal/platform"
)

type sent struct {
	title, body string
	opts        platform.Options
}

func recorder(out *[]sent) Option {
	return WithSender(func(title, body string, opts platform.Options) error {
		*out = append(*out, sent{title, body, opts})
		return nil
	})
}

func TestDisabledEventsAreSilent(t *testing.T) {
	var got []sent
	n := New(DefaultPreferences(), recorder(&got))
	n.Save("x.png")
	n.Copy("", nil)
	n.Failure(errors.New("boom"))
	if len(got) != 0 {
		t.Fatalf("sent %d notifications, want 0", len(got))
	}
}

func TestSaveUsesAbsolutePathAndIcon(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "shot.png")
	if err := os.WriteFile(path, []byte("png"), 0o644); err != nil {
		t.Fatal(err)
	}
	var got []sent
	n := New(DefaultPreferences(), recorder(&got))
	n.Enable(EventSave, true)
	n.Save(path)
	if len(got) != 1 {
		t.Fatalf("sent %d notifications", len(got))
	}
	if got[0].body != "Saved "+path {
		t.Fatalf("body %q", got[0].body)
	}
	if got[0].opts.IconPath != path {
		t.Fatalf("icon %q", got[0].opts.IconPath)
	}
	if got[0].opts.AppName != platform.DefaultAppName {
		t.Fatalf("app name %q", got[0].opts.AppName)
	}
}

func TestCopyPreviewIsRemoved(t *testing.T) {
	var got []sent
	n := New(DefaultPreferences(), recorder(&got))
	n.Enable(EventCopy, true)
	n.Copy("", image.NewRGBA(image.Rect(0, 0, 4, 4)))
	if len(got) != 1 || got[0].body != "Copied image to clipboard" {
		t.Fatalf("got %+v", got)
	}
	icon := got[0].opts.IconPath
	if icon == "" {
		t.Fatal("expected a preview icon")
	}
	if _, err := os.Stat(icon); !os.IsNotExist(err) {
		t.Fatalf("preview %s not cleaned up: %v", icon, err)
	}
}

func TestLoadPreferencesOverrides(t *testing.T) {
	env := map[string]string{
		"SHINEYMARK_NOTIFY_TITLE":        "Marks",
		"SHINEYMARK_NOTIFY_FAILURE_TEXT": "Oops %s",
	}
	prefs := LoadPreferences(func(k string) string { return env[k] })
	var got []sent
	n := New(prefs, recorder(&got))
	n.Enable(EventFailure, true)
	n.Failure(errors.New("disk full"))
	if len(got) != 1 || got[0].title != "Marks" || !strings.HasPrefix(got[0].body, "Oops disk full") {
		t.Fatalf("got %+v", got)
	}
}
