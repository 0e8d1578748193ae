// Package render composites annotations over captured images and performs
// the pixel side of cropping.
package render

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"

	"github.com/example/shineymark/internal/annotation"
)

var (
	// ErrInvalidGeometry reports an empty or degenerate image or crop.
	ErrInvalidGeometry = errors.New("invalid geometry")
	// ErrAllocation reports that a bitmap could not be allocated.
	ErrAllocation = errors.New("bitmap allocation failed")
)

// MaxPixels bounds the size of a single bitmap.
const MaxPixels = 16384 * 16384

// Allocator creates zeroed RGBA bitmaps.
type Allocator func(r image.Rectangle) (*image.RGBA, error)

// DefaultAllocator allocates with image.NewRGBA after validating the size.
func DefaultAllocator(r image.Rectangle) (*image.RGBA, error) {
	if r.Empty() {
		return nil, fmt.Errorf("allocate %v: %w", r, ErrInvalidGeometry)
	}
	if int64(r.Dx())*int64(r.Dy()) > MaxPixels {
		return nil, fmt.Errorf("allocate %dx%d: %w", r.Dx(), r.Dy(), ErrAllocation)
	}
	return image.NewRGBA(r), nil
}

// Compositor renders annotation lists onto copies of an original image.
type Compositor struct {
	alloc       Allocator
	handleFill  color.NRGBA
	handleLine  color.NRGBA
	cropShade   color.NRGBA
	selectBoost int
}

// Option configures a Compositor.
type Option func(*Compositor)

// WithAllocator replaces the bitmap allocator.
func WithAllocator(a Allocator) Option { return func(c *Compositor) { c.alloc = a } }

// WithCropShade sets the colour masking the area outside a crop rectangle.
func WithCropShade(col color.NRGBA) Option { return func(c *Compositor) { c.cropShade = col } }

// New creates a Compositor.
func New(opts ...Option) *Compositor {
	c := &Compositor{
		alloc:       DefaultAllocator,
		handleFill:  color.NRGBA{255, 255, 255, 255},
		handleLine:  color.NRGBA{0, 0, 0, 255},
		cropShade:   color.NRGBA{0, 0, 0, 120},
		selectBoost: 1,
	}
	for _, o := range opts {
		o(c)
	}
	if c.alloc == nil {
		c.alloc = DefaultAllocator
	}
	return c
}

// Allocate returns a new bitmap covering r.
func (c *Compositor) Allocate(r image.Rectangle) (*image.RGBA, error) {
	img, err := c.alloc(r)
	if err != nil {
		if errors.Is(err, ErrInvalidGeometry) || errors.Is(err, ErrAllocation) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrAllocation, err)
	}
	if img == nil {
		return nil, ErrAllocation
	}
	return img, nil
}

// Clone returns an owned copy of src rebased to a zero origin.
func (c *Compositor) Clone(src image.Image) (*image.RGBA, error) {
	if src == nil {
		return nil, ErrInvalidGeometry
	}
	b := src.Bounds()
	dst, err := c.Allocate(b.Sub(b.Min))
	if err != nil {
		return nil, err
	}
	draw.Draw(dst, dst.Bounds(), src, b.Min, draw.Src)
	return dst, nil
}

// Overlay describes transient, display-only decorations.
type Overlay struct {
	// Preview is an in-progress shape that is not yet in the collection.
	Preview *annotation.Annotation
	// Crop is the live or pending crop rectangle.
	Crop image.Rectangle
	// Guide is a dashed rectangle such as a text region being dragged out.
	Guide image.Rectangle
	// Editing is the text annotation receiving keyboard input.
	Editing *annotation.Annotation
	// Caret is the text caret; empty when no text is being edited.
	Caret image.Rectangle
	// ShowSelection enables selection feedback and handles.
	ShowSelection bool
}

// Flatten paints anns over a fresh copy of original with no selection
// feedback or overlays. The result is the exportable composite.
func (c *Compositor) Flatten(original image.Image, anns []*annotation.Annotation) (*image.RGBA, error) {
	dst, err := c.Clone(original)
	if err != nil {
		return nil, err
	}
	for _, a := range anns {
		paintAnnotation(dst, a, false)
	}
	return dst, nil
}

// Render paints anns over a fresh copy of original, then draws the
// overlays described by ov. The result is for display only.
func (c *Compositor) Render(original image.Image, anns []*annotation.Annotation, ov Overlay) (*image.RGBA, error) {
	dst, err := c.Clone(original)
	if err != nil {
		return nil, err
	}
	for _, a := range anns {
		paintAnnotation(dst, a, ov.ShowSelection && a.Selected)
	}
	if ov.Preview != nil {
		paintAnnotation(dst, ov.Preview, false)
	}
	if ov.ShowSelection {
		for _, a := range anns {
			if a.Selected {
				c.drawSelection(dst, a)
			}
		}
	}
	if ov.Editing != nil && ov.Editing.IsRegionText {
		drawDashedRect(dst, ov.Editing.Rect(), 3, color.NRGBA{255, 255, 255, 200}, color.NRGBA{0, 0, 0, 200})
	}
	if !ov.Guide.Empty() {
		drawDashedRect(dst, ov.Guide, 3, color.NRGBA{255, 255, 255, 255}, color.NRGBA{0, 0, 0, 255})
	}
	if !ov.Caret.Empty() && ov.Editing != nil {
		fillRect(dst, ov.Caret, ov.Editing.LineColor)
	}
	if !ov.Crop.Empty() {
		c.drawCrop(dst, ov.Crop)
	}
	return dst, nil
}

func (c *Compositor) drawSelection(dst *image.RGBA, a *annotation.Annotation) {
	b := a.Bounds().Inset(-2)
	drawDashedRect(dst, b, 4, color.NRGBA{255, 255, 255, 255}, color.NRGBA{0, 0, 0, 255})
	for _, hp := range a.Handles() {
		c.drawHandle(dst, annotation.HandleRect(hp.Point))
	}
}

func (c *Compositor) drawHandle(dst *image.RGBA, r image.Rectangle) {
	fillRect(dst, r, c.handleFill)
	drawRect(dst, r, c.handleLine)
}

func (c *Compositor) drawCrop(dst *image.RGBA, crop image.Rectangle) {
	b := dst.Bounds()
	crop = crop.Canon()
	for _, r := range []image.Rectangle{
		image.Rect(b.Min.X, b.Min.Y, b.Max.X, crop.Min.Y),
		image.Rect(b.Min.X, crop.Max.Y, b.Max.X, b.Max.Y),
		image.Rect(b.Min.X, crop.Min.Y, crop.Min.X, crop.Max.Y),
		image.Rect(crop.Max.X, crop.Min.Y, b.Max.X, crop.Max.Y),
	} {
		fillRect(dst, r.Canon().Intersect(b), c.cropShade)
	}
	drawDashedRect(dst, crop, 4, color.NRGBA{255, 255, 255, 255}, color.NRGBA{0, 0, 0, 255})
	for _, hr := range CropHandleRects(crop) {
		c.drawHandle(dst, hr)
	}
}

// CropHandleRects returns the eight handle squares of a crop rectangle in
// the order tl, t, tr, r, br, b, bl, l.
func CropHandleRects(rect image.Rectangle) []image.Rectangle {
	hs := annotation.HandleSize / 2
	cx := (rect.Min.X + rect.Max.X) / 2
	cy := (rect.Min.Y + rect.Max.Y) / 2
	return []image.Rectangle{
		image.Rect(rect.Min.X-hs, rect.Min.Y-hs, rect.Min.X+hs, rect.Min.Y+hs),
		image.Rect(cx-hs, rect.Min.Y-hs, cx+hs, rect.Min.Y+hs),
		image.Rect(rect.Max.X-hs, rect.Min.Y-hs, rect.Max.X+hs, rect.Min.Y+hs),
		image.Rect(rect.Max.X-hs, cy-hs, rect.Max.X+hs, cy+hs),
		image.Rect(rect.Max.X-hs, rect.Max.Y-hs, rect.Max.X+hs, rect.Max.Y+hs),
		image.Rect(cx-hs, rect.Max.Y-hs, cx+hs, rect.Max.Y+hs),
		image.Rect(rect.Min.X-hs, rect.Max.Y-hs, rect.Min.X+hs, rect.Max.Y+hs),
		image.Rect(rect.Min.X-hs, cy-hs, rect.Min.X+hs, cy+hs),
	}
}
