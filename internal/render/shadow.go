package render

import (
	"image"
	"image/color"
	"image/draw"
)

// ShadowOptions configures the drop shadow added to exported composites.
type ShadowOptions struct {
	Radius  int
	Offset  image.Point
	Opacity float64
}

// DefaultShadowOptions returns a soft shadow that suits most captures.
func DefaultShadowOptions() ShadowOptions {
	return ShadowOptions{
		Radius:  24,
		Offset:  image.Pt(16, 16),
		Opacity: 0.55,
	}
}

// Enabled reports whether the options produce a visible shadow.
func (o ShadowOptions) Enabled() bool { return o.Opacity > 0 }

// DropShadow returns img on a larger transparent canvas with a blurred
// shadow behind it. The second result is where img's top-left corner landed.
// A disabled shadow returns img unchanged.
func (c *Compositor) DropShadow(img *image.RGBA, opts ShadowOptions) (*image.RGBA, image.Point, error) {
	if img == nil || img.Bounds().Empty() {
		return nil, image.Point{}, ErrInvalidGeometry
	}
	if !opts.Enabled() {
		return img, image.Point{}, nil
	}
	opacity := min(opts.Opacity, 1)
	radius := max(opts.Radius, 0)

	src := img.Bounds()
	padded := src.Inset(-radius)
	shadow := padded.Add(opts.Offset)
	canvas := src.Union(shadow)

	mask := image.NewGray(padded.Sub(padded.Min))
	for y := src.Min.Y; y < src.Max.Y; y++ {
		for x := src.Min.X; x < src.Max.X; x++ {
			if a := img.RGBAAt(x, y).A; a != 0 {
				mask.SetGray(x-padded.Min.X, y-padded.Min.Y, color.Gray{Y: a})
			}
		}
	}
	blurred := boxBlur(mask, radius)

	dst, err := c.Allocate(canvas.Sub(canvas.Min))
	if err != nil {
		return nil, image.Point{}, err
	}
	if alpha := uint8(opacity*255 + 0.5); alpha > 0 {
		at := shadow.Min.Sub(canvas.Min)
		draw.DrawMask(dst, blurred.Bounds().Add(at), image.NewUniform(color.NRGBA{A: alpha}), image.Point{}, blurred, image.Point{}, draw.Over)
	}
	shift := src.Min.Sub(canvas.Min)
	draw.Draw(dst, src.Add(shift.Sub(src.Min)), img, src.Min, draw.Over)
	return dst, shift, nil
}

// boxBlur runs a separable box filter of the given radius over a
// zero-origin mask.
func boxBlur(src *image.Gray, radius int) *image.Gray {
	out := image.NewGray(src.Bounds())
	copy(out.Pix, src.Pix)
	if radius <= 0 {
		return out
	}
	w, h := src.Bounds().Dx(), src.Bounds().Dy()
	line := make([]uint8, max(w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			line[x] = out.Pix[y*out.Stride+x]
		}
		blurLine(line[:w], radius, func(x int, v uint8) { out.Pix[y*out.Stride+x] = v })
	}
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			line[y] = out.Pix[y*out.Stride+x]
		}
		blurLine(line[:h], radius, func(y int, v uint8) { out.Pix[y*out.Stride+x] = v })
	}
	return out
}

// blurLine averages each sample with its neighbours within radius, using a
// prefix sum and shrinking the window at the ends.
func blurLine(in []uint8, radius int, set func(i int, v uint8)) {
	prefix := make([]int, len(in)+1)
	for i, v := range in {
		prefix[i+1] = prefix[i] + int(v)
	}
	for i := range in {
		lo := max(0, i-radius)
		hi := min(len(in)-1, i+radius)
		set(i, uint8((prefix[hi+1]-prefix[lo])/(hi-lo+1)))
	}
}
