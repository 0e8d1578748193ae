package main

import (
	"bytes"
	"errors"
	"flag"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/example/shineymark/internal/config"
	"github.com/example/shineymark/internal/export"
)

func testRoot() (*root, *bytes.Buffer) {
	var out bytes.Buffer
	return &root{program: "shineymark", config: config.New(), stdout: &out, stderr: &out}, &out
}

func stubLoader(t *testing.T, fn func(string) (image.Image, error)) {
	t.Helper()
	original := loadImageFn
	loadImageFn = fn
	t.Cleanup(func() { loadImageFn = original })
}

func stubPaste(t *testing.T, fn func() (image.Image, error)) {
	t.Helper()
	original := pasteImageFn
	pasteImageFn = fn
	t.Cleanup(func() { pasteImageFn = original })
}

func TestAnnotateLoadErrorIsWrapped(t *testing.T) {
	sentinel := errors.New("boom")
	stubLoader(t, func(string) (image.Image, error) { return nil, sentinel })
	r, _ := testRoot()
	cmd, err := parseAnnotateCmd([]string{"shot.png"}, r)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	_, err = cmd.load()
	if !errors.Is(err, sentinel) {
		t.Fatalf("expected wrapped error, got %v", err)
	}
	if want := "failed to open shot.png"; !strings.Contains(err.Error(), want) {
		t.Fatalf("expected error to contain %q, got %v", want, err)
	}
}

func TestAnnotateLoadsFilesAndClipboard(t *testing.T) {
	stubLoader(t, func(string) (image.Image, error) { return image.NewRGBA(image.Rect(0, 0, 30, 20)), nil })
	stubPaste(t, func() (image.Image, error) { return image.NewRGBA(image.Rect(0, 0, 10, 10)), nil })
	r, _ := testRoot()
	cmd, err := parseAnnotateCmd([]string{"-from-clipboard", "a/one.png", "two.png"}, r)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	eng, err := cmd.load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	items := eng.Session().Items()
	if len(items) != 3 || items[0].Name != "one.png" || items[2].Name != "clipboard" {
		t.Fatalf("unexpected captures %d", len(items))
	}
	if eng.Session().CurrentIndex() != 0 {
		t.Fatalf("first file should be current, got %d", eng.Session().CurrentIndex())
	}
}

func TestParseAnnotateNeedsInput(t *testing.T) {
	r, _ := testRoot()
	_, err := parseAnnotateCmd(nil, r)
	var uerr *UsageError
	if !errors.As(err, &uerr) {
		t.Fatalf("expected usage error, got %v", err)
	}
	if !strings.Contains(err.Error(), "-from-clipboard") {
		t.Fatalf("usage should mention -from-clipboard: %v", err)
	}
}

func TestParseDrawClipboardRequiresOutput(t *testing.T) {
	_, err := parseDrawCmd([]string{"-from-clipboard", "line", "0", "0", "1", "1"}, nil)
	if err == nil {
		t.Fatalf("expected error")
	}
	if want := "output file is required when reading from the clipboard"; !strings.Contains(err.Error(), want) {
		t.Fatalf("expected error to mention %q, got %v", want, err)
	}
}

func TestParseDrawValidation(t *testing.T) {
	cases := []struct {
		name string
		args []string
		want string
	}{
		{"two sources", []string{"-size", "10x10", "-input", "a.png", "rect", "0", "0", "1", "1"}, "exactly one of"},
		{"no source", []string{"-output", "o.png", "rect", "0", "0", "1", "1"}, "exactly one of"},
		{"arity", []string{"-size", "10x10", "-output", "o.png", "rect", "0", "0"}, "expects 4 numbers"},
		{"text arity", []string{"-size", "10x10", "-output", "o.png", "text", "0", "0"}, "text expects"},
		{"format", []string{"-size", "10x10", "-output", "o.xyz", "line", "0", "0", "1", "1"}, "unknown"},
		{"colour", []string{"-size", "10x10", "-output", "o.png", "-color", "notacolour", "line", "0", "0", "1", "1"}, "invalid color"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := parseDrawCmd(c.args, nil)
			if err == nil || !strings.Contains(strings.ToLower(err.Error()), c.want) {
				t.Fatalf("expected error containing %q, got %v", c.want, err)
			}
		})
	}

	_, err := parseDrawCmd([]string{"-size", "10x10", "-output", "o.png", "circle", "1", "1"}, nil)
	var uerr *UsageError
	if !errors.As(err, &uerr) {
		t.Fatalf("unknown shape should be a usage error, got %v", err)
	}
}

func isRed(c color.Color) bool {
	r, g, b, _ := c.RGBA()
	return r>>8 > 200 && g>>8 < 60 && b>>8 < 60
}

func TestDrawRectOnBlankCanvas(t *testing.T) {
	r, out := testRoot()
	path := filepath.Join(t.TempDir(), "rect.png")
	cmd, err := parseDrawCmd([]string{"-size", "40x30", "-color", "red", "-output", path, "rect", "5", "5", "20", "10"}, r)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if err := cmd.Run(); err != nil {
		t.Fatalf("run: %v", err)
	}
	if !strings.Contains(out.String(), "saved "+path) {
		t.Fatalf("missing save message in %q", out.String())
	}
	img, err := export.LoadFile(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if img.Bounds() != image.Rect(0, 0, 40, 30) {
		t.Fatalf("bounds = %v", img.Bounds())
	}
	if !isRed(img.At(5, 10)) {
		t.Fatalf("left edge is %v, want red", img.At(5, 10))
	}
	if isRed(img.At(15, 10)) {
		t.Fatal("rectangle interior should stay unfilled")
	}
}

func TestDrawCropOverwritesInput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shot.png")
	if err := export.SaveFile(path, image.NewRGBA(image.Rect(0, 0, 50, 50))); err != nil {
		t.Fatalf("seed: %v", err)
	}
	r, _ := testRoot()
	cmd, err := parseDrawCmd([]string{"-input", path, "crop", "10", "10", "20", "15"}, r)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if err := cmd.Run(); err != nil {
		t.Fatalf("run: %v", err)
	}
	img, err := export.LoadFile(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if img.Bounds().Size() != image.Pt(20, 15) {
		t.Fatalf("cropped size = %v", img.Bounds().Size())
	}
}

func TestReplayScript(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "out.png")
	preview := filepath.Join(dir, "preview.png")
	src := "# demo\nblank 60 40\ntool counter\nclick 10 10\nclick 30 10\nstatus\nsave " + out + "\n"
	scriptPath := filepath.Join(dir, "demo.txt")
	if err := os.WriteFile(scriptPath, []byte(src), 0o644); err != nil {
		t.Fatalf("write script: %v", err)
	}

	r, stdout := testRoot()
	cmd, err := parseReplayCmd([]string{"-preview", preview, scriptPath}, r)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if err := cmd.Run(); err != nil {
		t.Fatalf("run: %v", err)
	}
	if !strings.Contains(stdout.String(), "2 annotations") {
		t.Fatalf("status output %q", stdout.String())
	}
	for _, p := range []string{out, preview} {
		if _, err := os.Stat(p); err != nil {
			t.Fatalf("expected %s: %v", p, err)
		}
	}
}

func TestReplayReportsLine(t *testing.T) {
	r, _ := testRoot()
	cmd, err := parseReplayCmd([]string{"-"}, r)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	cmd.stdin = strings.NewReader("blank 10 10\n\nwobble\n")
	err = cmd.Run()
	if err == nil || !strings.Contains(err.Error(), "line 3") {
		t.Fatalf("expected line 3 error, got %v", err)
	}
}

func TestInteractiveImmediateMode(t *testing.T) {
	r, out := testRoot()
	cmd, err := parseInteractiveCmd([]string{"-e", "blank 20 20 white Demo", "-e", "list", "-e", "exit", "-e", "wobble"}, r)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if err := cmd.Run(); err != nil {
		t.Fatalf("run: %v", err)
	}
	if !strings.Contains(out.String(), "* 1 Demo 20x20") {
		t.Fatalf("list output %q", out.String())
	}
}

func TestInteractivePromptKeepsGoingAfterErrors(t *testing.T) {
	r, out := testRoot()
	cmd, err := parseInteractiveCmd(nil, r)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	cmd.stdin = strings.NewReader("wobble\nblank 5 5\nstatus\nexit\nstatus\n")
	if err := cmd.Run(); err != nil {
		t.Fatalf("run: %v", err)
	}
	got := out.String()
	if !strings.Contains(got, `unknown command "wobble"`) {
		t.Fatalf("missing error in %q", got)
	}
	if strings.Count(got, "0 annotations") != 1 {
		t.Fatalf("status should print once before exit: %q", got)
	}
}

func TestRootUnknownCommand(t *testing.T) {
	r, _ := testRoot()
	r.fs = flag.NewFlagSet("shineymark", flag.ContinueOnError)
	err := r.Run([]string{"frobnicate"})
	var uerr *UsageError
	if !errors.As(err, &uerr) {
		t.Fatalf("expected usage error, got %v", err)
	}
	if !strings.Contains(err.Error(), "Commands:") {
		t.Fatalf("usage should list commands: %v", err)
	}
}

func TestConfigPrintAndSave(t *testing.T) {
	r, out := testRoot()
	cmd, err := parseConfigCmd([]string{"print"}, r)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if err := cmd.Run(); err != nil {
		t.Fatalf("run: %v", err)
	}
	if !strings.Contains(out.String(), "[style]") {
		t.Fatalf("print output %q", out.String())
	}

	path := filepath.Join(t.TempDir(), "nested", "config.rc")
	cmd, err = parseConfigCmd([]string{"-file", path, "save"}, r)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if err := cmd.Run(); err != nil {
		t.Fatalf("save: %v", err)
	}
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open saved config: %v", err)
	}
	defer f.Close()
	saved, err := config.Parse(f)
	if err != nil {
		t.Fatalf("parse saved config: %v", err)
	}
	if saved.Style != r.config.Style {
		t.Fatalf("saved style %+v != %+v", saved.Style, r.config.Style)
	}
}
