package appstate

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"strings"
	"unicode"

	"golang.org/x/image/colornames"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/example/shineymark/internal/editor"
)

const (
	tabHeight    = 40
	tabWidth     = 96
	bottomHeight = 24
	toolHeight   = 24
	swatchSize   = 16
	swatchStep   = 18
	widthHeight  = 16
)

var toolbarWidth = 48

// frameDropThreshold specifies how many consecutive frames can be canceled
// before a draw is allowed to complete to keep the UI responsive.
const frameDropThreshold = 10

var (
	barColor     = color.RGBA{220, 220, 220, 255}
	buttonColor  = color.RGBA{200, 200, 200, 255}
	hoverColor   = color.RGBA{180, 180, 180, 255}
	pressedColor = color.RGBA{150, 150, 150, 255}
	checkerLight = color.RGBA{220, 220, 220, 255}
	checkerDark  = color.RGBA{192, 192, 192, 255}
)

// paletteNames are SVG color names offered as swatches.
var paletteNames = []string{
	"black", "white", "red", "lime",
	"blue", "yellow", "cyan", "magenta",
	"maroon", "green", "navy", "olive",
	"teal", "purple", "silver", "gray",
}

var widths = []int{1, 2, 3, 4, 6, 8}

// PaletteColor is a named toolbar swatch.
type PaletteColor struct {
	Name  string
	Color color.NRGBA
}

// Palette returns the toolbar swatches in display order.
func Palette() []PaletteColor {
	out := make([]PaletteColor, len(paletteNames))
	for i, n := range paletteNames {
		c := colornames.Map[n]
		out[i] = PaletteColor{Name: n, Color: color.NRGBA{R: c.R, G: c.G, B: c.B, A: c.A}}
	}
	return out
}

// WidthOptions returns the stroke widths offered in the toolbar.
func WidthOptions() []int { return append([]int(nil), widths...) }

func init() {
	d := &font.Drawer{Face: basicfont.Face7x13}
	w := d.MeasureString("ShineyMark").Ceil() + 8
	for _, m := range editor.Modes() {
		w = max(w, d.MeasureString(toolLabel(m)).Ceil()+8)
	}
	toolbarWidth = max(toolbarWidth, w)
}

func toolLabel(m editor.Mode) string {
	name := m.String()
	return fmt.Sprintf("%c:%s", unicode.ToUpper(m.Shortcut()), strings.ToUpper(name[:1])+name[1:])
}

// ButtonState describes the visual state of a button.
type ButtonState int

const (
	StateDefault ButtonState = iota
	StateHover
	StatePressed
)

func (s ButtonState) fill() color.RGBA {
	switch s {
	case StateHover:
		return hoverColor
	case StatePressed:
		return pressedColor
	}
	return buttonColor
}

// Button represents an interactive UI element.
// Activate performs the button's action when clicked.
type Button interface {
	Draw(dst *image.RGBA, state ButtonState)
	Rect() image.Rectangle
	SetRect(r image.Rectangle)
	Activate()
}

// CacheButton wraps another Button and caches its rendered states.
type CacheButton struct {
	Button
	cache [3]*image.RGBA
}

var _ Button = (*CacheButton)(nil)

func (cb *CacheButton) Draw(dst *image.RGBA, state ButtonState) {
	if cb.cache[state] == nil {
		rect := cb.Button.Rect()
		img := image.NewRGBA(rect)
		cb.Button.Draw(img, state)
		cb.cache[state] = img
	}
	draw.Draw(dst, cb.Button.Rect(), cb.cache[state], cb.Button.Rect().Min, draw.Src)
}

func (cb *CacheButton) SetRect(r image.Rectangle) {
	if r != cb.Button.Rect() {
		cb.Button.SetRect(r)
		cb.cache = [3]*image.RGBA{}
	}
}

// ToolButton selects an editor mode.
type ToolButton struct {
	mode     editor.Mode
	rect     image.Rectangle
	onSelect func(editor.Mode)
}

func (tb *ToolButton) Draw(dst *image.RGBA, state ButtonState) {
	draw.Draw(dst, tb.rect, &image.Uniform{state.fill()}, image.Point{}, draw.Src)
	drawLabel(dst, tb.rect.Min.X+4, tb.rect.Min.Y+16, toolLabel(tb.mode))
}

func (tb *ToolButton) Rect() image.Rectangle     { return tb.rect }
func (tb *ToolButton) SetRect(r image.Rectangle) { tb.rect = r }

func (tb *ToolButton) Activate() {
	if tb.onSelect != nil {
		tb.onSelect(tb.mode)
	}
}

// Shortcut is a clickable hint in the bottom bar.
type Shortcut struct {
	label  string
	action string
	rect   image.Rectangle
}

func (s *Shortcut) Draw(dst *image.RGBA, state ButtonState) {
	draw.Draw(dst, s.rect, &image.Uniform{state.fill()}, image.Point{}, draw.Src)
	outline(dst, s.rect, color.Black)
	drawLabel(dst, s.rect.Min.X+2, s.rect.Min.Y+14, s.label)
}

func (s *Shortcut) Rect() image.Rectangle     { return s.rect }
func (s *Shortcut) SetRect(r image.Rectangle) { s.rect = r }

// tabInfo is what the tab bar shows for one capture.
type tabInfo struct {
	title string
	thumb *image.RGBA
}

// hitRegion names the part of the window under the pointer.
type hitRegion int

const (
	regionCanvas hitRegion = iota
	regionTabs
	regionBottom
	regionTool
	regionSwatch
	regionWidth
	regionToolbar
)

// toolbarLayout holds the rectangles of every toolbar control.
type toolbarLayout struct {
	tools   []image.Rectangle
	palette []image.Rectangle
	widths  []image.Rectangle
}

func layoutToolbar() toolbarLayout {
	var l toolbarLayout
	y := tabHeight
	for range editor.Modes() {
		l.tools = append(l.tools, image.Rect(0, y, toolbarWidth, y+toolHeight))
		y += toolHeight
	}
	y += 4
	x := 4
	for i := range paletteNames {
		l.palette = append(l.palette, image.Rect(x, y, x+swatchSize, y+swatchSize))
		x += swatchStep
		if x+swatchSize > toolbarWidth && i < len(paletteNames)-1 {
			x = 4
			y += swatchStep
		}
	}
	y += swatchStep + 4
	for range widths {
		l.widths = append(l.widths, image.Rect(0, y, toolbarWidth, y+widthHeight))
		y += widthHeight
	}
	return l
}

func indexOf(rects []image.Rectangle, p image.Point) int {
	for i, r := range rects {
		if p.In(r) {
			return i
		}
	}
	return -1
}

// hit classifies p for a window of the given height.
func (l toolbarLayout) hit(p image.Point, height int) (hitRegion, int) {
	switch {
	case p.Y >= height-bottomHeight:
		return regionBottom, -1
	case p.Y < tabHeight:
		if p.X < toolbarWidth {
			return regionToolbar, -1
		}
		return regionTabs, (p.X - toolbarWidth) / tabWidth
	case p.X >= toolbarWidth:
		return regionCanvas, -1
	}
	if i := indexOf(l.tools, p); i >= 0 {
		return regionTool, i
	}
	if i := indexOf(l.palette, p); i >= 0 {
		return regionSwatch, i
	}
	if i := indexOf(l.widths, p); i >= 0 {
		return regionWidth, i
	}
	return regionToolbar, -1
}

// canvasRect is the window area the capture is drawn in.
func canvasRect(width, height int) image.Rectangle {
	return image.Rect(toolbarWidth, tabHeight, width, height-bottomHeight)
}

// fitZoom returns the zoom at which size fits inside the canvas.
func fitZoom(size image.Point, width, height int) float64 {
	c := canvasRect(width, height)
	if size.X <= 0 || size.Y <= 0 || c.Empty() {
		return 1
	}
	return min(float64(c.Dx())/float64(size.X), float64(c.Dy())/float64(size.Y))
}

// layoutShortcuts places labels left to right along the bottom bar.
func layoutShortcuts(scs []Shortcut, height int) []Shortcut {
	x := toolbarWidth + 4
	y := height - bottomHeight + 16
	meas := &font.Drawer{Face: basicfont.Face7x13}
	out := make([]Shortcut, len(scs))
	for i, sc := range scs {
		w := meas.MeasureString(sc.label).Ceil()
		sc.SetRect(image.Rect(x-2, y-14, x+w+2, y+4))
		out[i] = sc
		x = sc.rect.Max.X + 8
	}
	return out
}

func drawLabel(dst *image.RGBA, x, y int, s string) {
	d := &font.Drawer{Dst: dst, Src: image.Black, Face: basicfont.Face7x13, Dot: fixed.P(x, y)}
	d.DrawString(s)
}

func outline(dst *image.RGBA, r image.Rectangle, col color.Color) {
	u := image.NewUniform(col)
	draw.Draw(dst, image.Rect(r.Min.X, r.Min.Y, r.Max.X, r.Min.Y+1), u, image.Point{}, draw.Src)
	draw.Draw(dst, image.Rect(r.Min.X, r.Max.Y-1, r.Max.X, r.Max.Y), u, image.Point{}, draw.Src)
	draw.Draw(dst, image.Rect(r.Min.X, r.Min.Y, r.Min.X+1, r.Max.Y), u, image.Point{}, draw.Src)
	draw.Draw(dst, image.Rect(r.Max.X-1, r.Min.Y, r.Max.X, r.Max.Y), u, image.Point{}, draw.Src)
}

// drawCheckerboard fills rect of dst with a checkerboard pattern of the given
// colors. size controls the checker square size.
func drawCheckerboard(dst *image.RGBA, rect image.Rectangle, size int, light, dark color.Color) {
	for y := rect.Min.Y; y < rect.Max.Y; y++ {
		for x := rect.Min.X; x < rect.Max.X; x++ {
			if ((x/size)+(y/size))%2 == 0 {
				dst.Set(x, y, light)
			} else {
				dst.Set(x, y, dark)
			}
		}
	}
}
