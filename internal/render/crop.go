package render

import (
	"fmt"
	"image"

	xdraw "golang.org/x/image/draw"
)

const (
	// MinCropSize is the smallest accepted crop edge in pixels.
	MinCropSize = 10
	// ThumbnailSize bounds the longest edge of a capture thumbnail.
	ThumbnailSize = 120
)

// ValidCrop clips rect to bounds and checks it meets MinCropSize.
func ValidCrop(rect, bounds image.Rectangle) (image.Rectangle, error) {
	r := rect.Canon().Intersect(bounds)
	if r.Dx() < MinCropSize || r.Dy() < MinCropSize {
		return image.Rectangle{}, fmt.Errorf("crop %v: %w", rect, ErrInvalidGeometry)
	}
	return r, nil
}

// Crop resamples the pixels of src inside rect into a new zero-origin bitmap.
// The source is never modified.
func (c *Compositor) Crop(src image.Image, rect image.Rectangle) (*image.RGBA, error) {
	if src == nil {
		return nil, ErrInvalidGeometry
	}
	r, err := ValidCrop(rect, src.Bounds())
	if err != nil {
		return nil, err
	}
	dst, err := c.Allocate(r.Sub(r.Min))
	if err != nil {
		return nil, err
	}
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, r, xdraw.Src, nil)
	return dst, nil
}

// Thumbnail scales src to fit within ThumbnailSize on its longest edge.
// Small images are not enlarged.
func (c *Compositor) Thumbnail(src image.Image) (*image.RGBA, error) {
	if src == nil || src.Bounds().Empty() {
		return nil, ErrInvalidGeometry
	}
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	if m := max(w, h); m > ThumbnailSize {
		w = max(1, w*ThumbnailSize/m)
		h = max(1, h*ThumbnailSize/m)
	}
	dst, err := c.Allocate(image.Rect(0, 0, w, h))
	if err != nil {
		return nil, err
	}
	xdraw.ApproxBiLinear.Scale(dst, dst.Bounds(), src, b, xdraw.Src, nil)
	return dst, nil
}

// Scale resizes src to the given size with nearest neighbour sampling,
// matching how the canvas is zoomed on screen.
func (c *Compositor) Scale(src image.Image, size image.Point) (*image.RGBA, error) {
	if src == nil || size.X <= 0 || size.Y <= 0 {
		return nil, ErrInvalidGeometry
	}
	dst, err := c.Allocate(image.Rectangle{Max: size})
	if err != nil {
		return nil, err
	}
	xdraw.NearestNeighbor.Scale(dst, dst.Bounds(), src, src.Bounds(), xdraw.Src, nil)
	return dst, nil
}
