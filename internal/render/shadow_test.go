package render

import (
	"image"
	"image/color"
	"testing"
)

func TestDropShadowExpandsBounds(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 10, 10))
	subject := image.Pt(5, 5)
	img.Set(subject.X, subject.Y, color.RGBA{R: 255, A: 255})

	opts := ShadowOptions{Radius: 4, Offset: image.Pt(8, 6), Opacity: 0.5}
	out, shift, err := New().DropShadow(img, opts)
	if err != nil {
		t.Fatalf("DropShadow: %v", err)
	}
	if want := image.Rect(0, 0, 22, 20); !out.Bounds().Eq(want) {
		t.Fatalf("bounds %v, want %v", out.Bounds(), want)
	}
	if shift != (image.Point{}) {
		t.Fatalf("shift %v, want zero", shift)
	}
	p := subject.Add(opts.Offset)
	if out.RGBAAt(p.X, p.Y).A == 0 {
		t.Fatalf("expected shadow alpha at %v", p)
	}
	if got := out.RGBAAt(subject.X, subject.Y); got.R != 255 || got.A != 255 {
		t.Fatalf("subject pixel %+v", got)
	}
}

func TestDropShadowNegativeOffsetShiftsContent(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	img.Set(0, 0, color.RGBA{G: 255, A: 255})
	out, shift, err := New().DropShadow(img, ShadowOptions{Radius: 1, Offset: image.Pt(-6, 0), Opacity: 1})
	if err != nil {
		t.Fatalf("DropShadow: %v", err)
	}
	if shift != image.Pt(7, 1) {
		t.Fatalf("shift %v", shift)
	}
	if got := out.RGBAAt(shift.X, shift.Y); got.G != 255 {
		t.Fatalf("content not moved by shift, got %+v", got)
	}
}

func TestDropShadowDisabled(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	fill := color.RGBA{R: 200, G: 100, B: 50, A: 255}
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			img.Set(x, y, fill)
		}
	}
	out, _, err := New().DropShadow(img, ShadowOptions{Radius: 12, Offset: image.Pt(20, 10)})
	if err != nil {
		t.Fatalf("DropShadow: %v", err)
	}
	if out != img {
		t.Fatal("disabled shadow should return the input")
	}
}

func TestBoxBlurSpreads(t *testing.T) {
	g := image.NewGray(image.Rect(0, 0, 5, 5))
	g.SetGray(2, 2, color.Gray{Y: 255})
	out := boxBlur(g, 1)
	if out.GrayAt(2, 2).Y == 0 || out.GrayAt(3, 3).Y == 0 {
		t.Fatal("blur did not spread")
	}
	if out.GrayAt(0, 0).Y != 0 {
		t.Fatalf("blur reached too far: %d", out.GrayAt(0, 0).Y)
	}
	if g.GrayAt(3, 3).Y != 0 {
		t.Fatal("source mask was modified")
	}
}
