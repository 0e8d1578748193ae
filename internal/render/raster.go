package render

import (
	"image"
	"image/color"
	"image/draw"
	"math"

	"golang.org/x/image/vector"
)

// blendPixel composites col over the pixel at (x, y), ignoring points
// outside img.
func blendPixel(img *image.RGBA, x, y int, col color.NRGBA) {
	if !image.Pt(x, y).In(img.Bounds()) || col.A == 0 {
		return
	}
	i := img.PixOffset(x, y)
	if col.A == 255 {
		img.Pix[i+0] = col.R
		img.Pix[i+1] = col.G
		img.Pix[i+2] = col.B
		img.Pix[i+3] = 255
		return
	}
	a := uint32(col.A)
	inv := 255 - a
	img.Pix[i+0] = uint8((uint32(col.R)*a + uint32(img.Pix[i+0])*inv) / 255)
	img.Pix[i+1] = uint8((uint32(col.G)*a + uint32(img.Pix[i+1])*inv) / 255)
	img.Pix[i+2] = uint8((uint32(col.B)*a + uint32(img.Pix[i+2])*inv) / 255)
	img.Pix[i+3] = uint8(a + uint32(img.Pix[i+3])*inv/255)
}

// drawLine draws a 1 pixel Bresenham line. It is used for overlay chrome;
// annotation strokes go through strokeSegment.
func drawLine(img *image.RGBA, x0, y0, x1, y1 int, col color.NRGBA) {
	dx := abs(x1 - x0)
	dy := abs(y1 - y0)
	sx := -1
	if x0 < x1 {
		sx = 1
	}
	sy := -1
	if y0 < y1 {
		sy = 1
	}
	err := dx - dy
	for {
		blendPixel(img, x0, y0, col)
		if x0 == x1 && y0 == y1 {
			break
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x0 += sx
		}
		if e2 < dx {
			err += dx
			y0 += sy
		}
	}
}

// drawRect outlines rect with a 1 pixel border inside its half-open bounds.
func drawRect(img *image.RGBA, rect image.Rectangle, col color.NRGBA) {
	drawLine(img, rect.Min.X, rect.Min.Y, rect.Max.X-1, rect.Min.Y, col)
	drawLine(img, rect.Max.X-1, rect.Min.Y, rect.Max.X-1, rect.Max.Y-1, col)
	drawLine(img, rect.Max.X-1, rect.Max.Y-1, rect.Min.X, rect.Max.Y-1, col)
	drawLine(img, rect.Min.X, rect.Max.Y-1, rect.Min.X, rect.Min.Y, col)
}

func drawDashedLine(img *image.RGBA, x0, y0, x1, y1, dash int, c1, c2 color.NRGBA) {
	horiz := y0 == y1
	length := abs(x1 - x0)
	if !horiz {
		length = abs(y1 - y0)
	}
	step := func(i int) image.Point {
		switch {
		case horiz && x0 < x1:
			return image.Pt(x0+i, y0)
		case horiz:
			return image.Pt(x0-i, y0)
		case y0 < y1:
			return image.Pt(x0, y0+i)
		}
		return image.Pt(x0, y0-i)
	}
	for i := 0; i <= length; i++ {
		col := c1
		if (i/dash)%2 == 1 {
			col = c2
		}
		p := step(i)
		blendPixel(img, p.X, p.Y, col)
	}
}

func drawDashedRect(img *image.RGBA, rect image.Rectangle, dash int, c1, c2 color.NRGBA) {
	drawDashedLine(img, rect.Min.X, rect.Min.Y, rect.Max.X, rect.Min.Y, dash, c1, c2)
	drawDashedLine(img, rect.Max.X, rect.Min.Y, rect.Max.X, rect.Max.Y, dash, c1, c2)
	drawDashedLine(img, rect.Max.X, rect.Max.Y, rect.Min.X, rect.Max.Y, dash, c1, c2)
	drawDashedLine(img, rect.Min.X, rect.Max.Y, rect.Min.X, rect.Min.Y, dash, c1, c2)
}

func fillRect(img *image.RGBA, rect image.Rectangle, col color.NRGBA) {
	if col.A == 0 {
		return
	}
	draw.Draw(img, rect.Intersect(img.Bounds()), image.NewUniform(col), image.Point{}, draw.Over)
}

type fpoint struct{ X, Y float64 }

func fpt(p image.Point) fpoint { return fpoint{float64(p.X), float64(p.Y)} }

// shape accumulates polygons that are filled together in one pass so
// overlapping pieces of the same stroke do not double-blend.
type shape struct {
	polys [][]fpoint
}

func (s *shape) polygon(pts ...fpoint) {
	if len(pts) < 3 {
		return
	}
	// The rasterizer sums signed coverage; keep every polygon wound the same
	// way so overlaps saturate instead of cancelling.
	area := 0.0
	for i := range pts {
		j := (i + 1) % len(pts)
		area += pts[i].X*pts[j].Y - pts[j].X*pts[i].Y
	}
	if area < 0 {
		for i, j := 0, len(pts)-1; i < j; i, j = i+1, j-1 {
			pts[i], pts[j] = pts[j], pts[i]
		}
	}
	s.polys = append(s.polys, pts)
}

func (s *shape) disc(c fpoint, r float64) {
	if r <= 0 {
		return
	}
	n := int(math.Ceil(2 * math.Pi * r / 3))
	n = max(12, min(n, 96))
	pts := make([]fpoint, n)
	for i := range pts {
		a := 2 * math.Pi * float64(i) / float64(n)
		pts[i] = fpoint{c.X + r*math.Cos(a), c.Y + r*math.Sin(a)}
	}
	s.polygon(pts...)
}

// segment adds a stroke of width w from p0 to p1 with round caps.
func (s *shape) segment(p0, p1 fpoint, w float64) {
	hw := w / 2
	dx, dy := p1.X-p0.X, p1.Y-p0.Y
	l := math.Hypot(dx, dy)
	if l > 0 {
		nx, ny := -dy/l*hw, dx/l*hw
		s.polygon(
			fpoint{p0.X + nx, p0.Y + ny},
			fpoint{p1.X + nx, p1.Y + ny},
			fpoint{p1.X - nx, p1.Y - ny},
			fpoint{p0.X - nx, p0.Y - ny},
		)
	}
	if w > 2 {
		s.disc(p0, hw)
		s.disc(p1, hw)
	} else if l == 0 {
		s.disc(p0, math.Max(hw, 0.5))
	}
}

func (s *shape) bounds() image.Rectangle {
	if len(s.polys) == 0 {
		return image.Rectangle{}
	}
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, poly := range s.polys {
		for _, p := range poly {
			minX, minY = math.Min(minX, p.X), math.Min(minY, p.Y)
			maxX, maxY = math.Max(maxX, p.X), math.Max(maxY, p.Y)
		}
	}
	return image.Rect(int(math.Floor(minX)), int(math.Floor(minY)), int(math.Ceil(maxX))+1, int(math.Ceil(maxY))+1)
}

// fill rasterises the accumulated polygons with anti-aliasing, using a
// rasterizer sized to the shape rather than the whole image.
func (s *shape) fill(img *image.RGBA, col color.NRGBA) {
	if col.A == 0 {
		return
	}
	r := s.bounds().Intersect(img.Bounds())
	if r.Empty() {
		return
	}
	z := vector.NewRasterizer(r.Dx(), r.Dy())
	z.DrawOp = draw.Over
	ox, oy := float64(r.Min.X), float64(r.Min.Y)
	for _, poly := range s.polys {
		z.MoveTo(float32(poly[0].X-ox), float32(poly[0].Y-oy))
		for _, p := range poly[1:] {
			z.LineTo(float32(p.X-ox), float32(p.Y-oy))
		}
		z.ClosePath()
	}
	z.Draw(img, r, image.NewUniform(col), image.Point{})
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// lighten mixes c towards white by f in [0, 1].
func lighten(c color.NRGBA, f float64) color.NRGBA {
	mix := func(v uint8) uint8 { return uint8(float64(v) + (255-float64(v))*f + 0.5) }
	return color.NRGBA{R: mix(c.R), G: mix(c.G), B: mix(c.B), A: c.A}
}

// darken mixes c towards black by f in [0, 1].
func darken(c color.NRGBA, f float64) color.NRGBA {
	mix := func(v uint8) uint8 { return uint8(float64(v)*(1-f) + 0.5) }
	return color.NRGBA{R: mix(c.R), G: mix(c.G), B: mix(c.B), A: c.A}
}

// contrastColor picks black or white text for a background of col.
func contrastColor(col color.NRGBA) color.NRGBA {
	brightness := 0.299*float64(col.R) + 0.587*float64(col.G) + 0.114*float64(col.B)
	if brightness < 128 {
		return color.NRGBA{255, 255, 255, 255}
	}
	return color.NRGBA{0, 0, 0, 255}
}
