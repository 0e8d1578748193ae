package render

import (
	"errors"
	"image"
	"image/color"
	"image/draw"
	"math"
	"testing"

	"github.com/example/shineymark/internal/annotation"
)

func solid(w, h int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), image.NewUniform(c), image.Point{}, draw.Src)
	return img
}

var white = color.RGBA{255, 255, 255, 255}

func TestPaintersCoverEveryKind(t *testing.T) {
	for _, k := range annotation.Kinds() {
		if painters[k] == nil {
			t.Fatalf("no painter for %s", k)
		}
	}
}

func TestArrowHeadIsThreeThicknessesLong(t *testing.T) {
	a := annotation.New(annotation.KindArrow, image.Pt(10, 20), annotation.Style{Thickness: 3})
	a.Opposite = image.Pt(60, 20)
	for _, selected := range []bool{false, true} {
		a.Selected = selected
		tip, left, right := arrowHead(a)
		for _, barb := range []fpoint{left, right} {
			if got := math.Hypot(tip.X-barb.X, tip.Y-barb.Y); math.Abs(got-9) > 1e-9 {
				t.Fatalf("selected=%v: head length %v, want 9", selected, got)
			}
		}
	}
	a.Thickness = 5
	tip, left, _ := arrowHead(a)
	if got := math.Hypot(tip.X-left.X, tip.Y-left.Y); math.Abs(got-15) > 1e-9 {
		t.Fatalf("head length %v, want 15", got)
	}
}

func TestFlattenLeavesOriginalUntouched(t *testing.T) {
	orig := solid(50, 50, white)
	a := annotation.New(annotation.KindRectangle, image.Pt(5, 5), annotation.DefaultStyle())
	a.Opposite = image.Pt(40, 40)
	out, err := New().Flatten(orig, []*annotation.Annotation{a})
	if err != nil {
		t.Fatalf("Flatten: %v", err)
	}
	if out == orig {
		t.Fatal("Flatten returned the original buffer")
	}
	if got := orig.RGBAAt(5, 5); got != white {
		t.Fatalf("original modified: %+v", got)
	}
	if got := out.RGBAAt(5, 20); got.R != 255 || got.G > 40 {
		t.Fatalf("stroke missing on left edge: %+v", got)
	}
	if got := out.RGBAAt(22, 22); got != white {
		t.Fatalf("unfilled rectangle painted its interior: %+v", got)
	}
}

func TestFlattenZeroOrigin(t *testing.T) {
	orig := image.NewRGBA(image.Rect(100, 100, 120, 130))
	out, err := New().Flatten(orig, nil)
	if err != nil {
		t.Fatalf("Flatten: %v", err)
	}
	if out.Bounds() != image.Rect(0, 0, 20, 30) {
		t.Fatalf("bounds %v", out.Bounds())
	}
}

func TestHighlightIsTranslucent(t *testing.T) {
	orig := solid(30, 30, white)
	style := annotation.DefaultStyle()
	style.FillColor = color.NRGBA{255, 255, 0, 255}
	a := annotation.New(annotation.KindHighlight, image.Pt(0, 0), style)
	a.Opposite = image.Pt(20, 20)
	out, err := New().Flatten(orig, []*annotation.Annotation{a})
	if err != nil {
		t.Fatalf("Flatten: %v", err)
	}
	got := out.RGBAAt(10, 10)
	if got.B == 255 || got.B == 0 {
		t.Fatalf("highlight should blend with the background, got %+v", got)
	}
	if got.R != 255 || got.G != 255 {
		t.Fatalf("highlight colour lost: %+v", got)
	}
}

func TestCounterDrawsDisc(t *testing.T) {
	orig := solid(80, 80, white)
	style := annotation.DefaultStyle()
	style.LineColor = color.NRGBA{0, 0, 255, 255}
	a := annotation.New(annotation.KindCounter, image.Pt(40, 40), style)
	a.CounterValue = 7
	out, err := New().Flatten(orig, []*annotation.Annotation{a})
	if err != nil {
		t.Fatalf("Flatten: %v", err)
	}
	r := a.Radius()
	if got := out.RGBAAt(40-r+4, 40); got.B < 200 || got.R > 60 {
		t.Fatalf("disc not filled near its edge: %+v", got)
	}
	if got := out.RGBAAt(40+r+3, 40); got != white {
		t.Fatalf("disc bled outside its radius: %+v", got)
	}
}

func TestRenderSelectionAndCrop(t *testing.T) {
	orig := solid(100, 100, white)
	a := annotation.New(annotation.KindLine, image.Pt(20, 20), annotation.DefaultStyle())
	a.Opposite = image.Pt(60, 20)
	a.Selected = true
	anns := []*annotation.Annotation{a}
	c := New()

	plain, err := c.Render(orig, anns, Overlay{})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	sel, err := c.Render(orig, anns, Overlay{ShowSelection: true})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	// Handle squares are white with a black border.
	if got := sel.RGBAAt(16, 16); got.R != 0 || got.G != 0 {
		t.Fatalf("expected handle border at (16,16), got %+v", got)
	}
	if got := plain.RGBAAt(16, 16); got != white {
		t.Fatalf("selection feedback drawn without ShowSelection: %+v", got)
	}

	cropped, err := c.Render(orig, nil, Overlay{Crop: image.Rect(30, 30, 70, 70)})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if got := cropped.RGBAAt(5, 5); got == white {
		t.Fatal("area outside crop should be shaded")
	}
	if got := cropped.RGBAAt(50, 50); got != white {
		t.Fatalf("crop interior should be untouched, got %+v", got)
	}
}

func TestCropRejectsSmallRect(t *testing.T) {
	c := New()
	src := solid(50, 50, white)
	if _, err := c.Crop(src, image.Rect(0, 0, 9, 40)); !errors.Is(err, ErrInvalidGeometry) {
		t.Fatalf("err = %v, want ErrInvalidGeometry", err)
	}
	if _, err := c.Crop(src, image.Rect(45, 45, 90, 90)); !errors.Is(err, ErrInvalidGeometry) {
		t.Fatalf("clipped crop should be rejected, err = %v", err)
	}
}

func TestCropCopiesPixels(t *testing.T) {
	src := solid(50, 50, white)
	src.Set(25, 30, color.RGBA{R: 9, A: 255})
	out, err := New().Crop(src, image.Rect(40, 40, 20, 20))
	if err != nil {
		t.Fatalf("Crop: %v", err)
	}
	if out.Bounds() != image.Rect(0, 0, 20, 20) {
		t.Fatalf("bounds %v", out.Bounds())
	}
	if got := out.RGBAAt(5, 10); got.R != 9 {
		t.Fatalf("pixel %+v", got)
	}
}

func TestAllocatorFailureSurfaces(t *testing.T) {
	boom := errors.New("out of memory")
	c := New(WithAllocator(func(image.Rectangle) (*image.RGBA, error) { return nil, boom }))
	_, err := c.Flatten(solid(10, 10, white), nil)
	if !errors.Is(err, ErrAllocation) {
		t.Fatalf("err = %v, want ErrAllocation", err)
	}
}

func TestThumbnailFits(t *testing.T) {
	c := New()
	th, err := c.Thumbnail(solid(600, 300, white))
	if err != nil {
		t.Fatalf("Thumbnail: %v", err)
	}
	if th.Bounds() != image.Rect(0, 0, ThumbnailSize, ThumbnailSize/2) {
		t.Fatalf("bounds %v", th.Bounds())
	}
	small, err := c.Thumbnail(solid(40, 20, white))
	if err != nil {
		t.Fatalf("Thumbnail: %v", err)
	}
	if small.Bounds().Dx() != 40 {
		t.Fatalf("small images should not be enlarged, got %v", small.Bounds())
	}
}

func TestContrastColor(t *testing.T) {
	if contrastColor(color.NRGBA{A: 255}) != (color.NRGBA{255, 255, 255, 255}) {
		t.Fatal("dark backgrounds need white text")
	}
	if contrastColor(color.NRGBA{255, 255, 200, 255}) != (color.NRGBA{0, 0, 0, 255}) {
		t.Fatal("light backgrounds need black text")
	}
}
