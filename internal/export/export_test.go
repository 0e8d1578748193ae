package export

import (
	"context"
	"errors"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/example/shineymark/internal/notify"
	"github.com/example/shineymark/internal/platform"
	"github.com/example/shineymark/internal/render"
)

func sample() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, 8, 6))
	for y := 0; y < 6; y++ {
		for x := 0; x < 8; x++ {
			img.SetRGBA(x, y, color.RGBA{R: uint8(x * 30), G: uint8(y * 40), B: 90, A: 255})
		}
	}
	return img
}

func TestFormatFromPath(t *testing.T) {
	cases := map[string]Format{
		"a.png":  FormatPNG,
		"b.JPG":  FormatJPEG,
		"c.jpeg": FormatJPEG,
		"d.bmp":  FormatBMP,
		"e.tif":  FormatTIFF,
		"f.tiff": FormatTIFF,
	}
	for path, want := range cases {
		got, err := FormatFromPath(path)
		if err != nil || got != want {
			t.Errorf("FormatFromPath(%q) = %q, %v; want %q", path, got, err, want)
		}
	}
	for _, bad := range []string{"noext", "x.gif", "y.webp"} {
		if _, err := FormatFromPath(bad); !errors.Is(err, ErrUnknownFormat) {
			t.Errorf("FormatFromPath(%q) err = %v, want ErrUnknownFormat", bad, err)
		}
	}
}

func TestSaveAndLoadEveryFormat(t *testing.T) {
	dir := t.TempDir()
	img := sample()
	for _, f := range []Format{FormatPNG, FormatBMP, FormatTIFF, FormatJPEG} {
		path := filepath.Join(dir, "shot"+f.Ext())
		if err := SaveFile(path, img); err != nil {
			t.Fatalf("SaveFile %s: %v", f, err)
		}
		got, err := LoadFile(path)
		if err != nil {
			t.Fatalf("LoadFile %s: %v", f, err)
		}
		if got.Bounds() != img.Bounds() {
			t.Fatalf("%s bounds %v", f, got.Bounds())
		}
		if f == FormatJPEG {
			continue
		}
		if r, g, b, _ := got.At(3, 2).RGBA(); r>>8 != 90 || g>>8 != 80 || b>>8 != 90 {
			t.Fatalf("%s pixel (3,2) = %v", f, got.At(3, 2))
		}
	}
	leftovers, _ := filepath.Glob(filepath.Join(dir, ".shineymark-*"))
	if len(leftovers) != 0 {
		t.Fatalf("temporary files left behind: %v", leftovers)
	}
}

func TestJPEGComposesOverWhite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "clear.jpg")
	if err := SaveFile(path, image.NewRGBA(image.Rect(0, 0, 16, 16))); err != nil {
		t.Fatalf("SaveFile: %v", err)
	}
	got, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if r, _, _, _ := got.At(8, 8).RGBA(); r>>8 < 240 {
		t.Fatalf("transparent pixel encoded as %v, want white", got.At(8, 8))
	}
}

func TestDefaultName(t *testing.T) {
	at := time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC)
	if got := DefaultName("out", FormatJPEG, at); got != filepath.Join("out", "shineymark-20260304-050607.jpg") {
		t.Fatalf("DefaultName = %q", got)
	}
}

func TestProcessSavesCopiesAndNotifies(t *testing.T) {
	var sent []string
	n := notify.New(notify.DefaultPreferences(), notify.WithSender(func(title, body string, _ platform.Options) error {
		sent = append(sent, body)
		return nil
	}))
	n.Enable(notify.EventSave, true)
	n.Enable(notify.EventCopy, true)

	var copied image.Image
	w := NewWorker(render.New(), WithNotifier(n), WithClipboard(func(img image.Image) error {
		copied = img
		return nil
	}))
	path := filepath.Join(t.TempDir(), "out.png")
	res := w.Process(Job{Image: sample(), Path: path, Clipboard: true})
	if res.Err != nil {
		t.Fatalf("Process: %v", res.Err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("output missing: %v", err)
	}
	if copied == nil || copied.Bounds() != res.Output.Bounds() {
		t.Fatalf("clipboard got %v", copied)
	}
	if len(sent) != 2 {
		t.Fatalf("sent %v", sent)
	}
}

func TestProcessAppliesShadow(t *testing.T) {
	w := NewWorker(render.New(), WithClipboard(func(image.Image) error { return nil }))
	res := w.Process(Job{Image: sample(), Clipboard: true, Shadow: render.DefaultShadowOptions()})
	if res.Err != nil {
		t.Fatalf("Process: %v", res.Err)
	}
	if got := res.Output.Bounds(); got.Dx() <= 8 || got.Dy() <= 6 {
		t.Fatalf("shadowed bounds %v", got)
	}
}

func TestProcessReportsFailures(t *testing.T) {
	var sent []string
	n := notify.New(notify.DefaultPreferences(), notify.WithSender(func(_, body string, _ platform.Options) error {
		sent = append(sent, body)
		return nil
	}))
	n.Enable(notify.EventFailure, true)
	boom := errors.New("no owner")
	w := NewWorker(render.New(), WithNotifier(n), WithClipboard(func(image.Image) error { return boom }))
	res := w.Process(Job{Image: sample(), Path: filepath.Join(t.TempDir(), "x.gif"), Clipboard: true})
	if !errors.Is(res.Err, ErrUnknownFormat) || !errors.Is(res.Err, boom) {
		t.Fatalf("err = %v", res.Err)
	}
	if len(sent) != 1 {
		t.Fatalf("sent %v", sent)
	}
}

func TestWorkerRunDrainsQueue(t *testing.T) {
	results := make(chan Result, 3)
	w := NewWorker(render.New(),
		WithClipboard(func(image.Image) error { return nil }),
		WithResultHandler(func(r Result) { results <- r }),
	)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	for i := 0; i < 3; i++ {
		if err := w.Submit(ctx, Job{Image: sample(), Clipboard: true}); err != nil {
			t.Fatalf("Submit: %v", err)
		}
	}
	w.Close()
	if err := <-done; err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("%d results, want 3", len(results))
	}
	if err := w.Submit(ctx, Job{Image: sample()}); !errors.Is(err, ErrClosed) {
		t.Fatalf("Submit after Close: %v", err)
	}
}

func TestSubmitRejectsNilImage(t *testing.T) {
	w := NewWorker(nil)
	if err := w.Submit(context.Background(), Job{}); err == nil {
		t.Fatal("expected an error")
	}
}
