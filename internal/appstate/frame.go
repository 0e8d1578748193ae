package appstate

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"log"
	"time"

	"golang.org/x/exp/shiny/screen"
	xdraw "golang.org/x/image/draw"

	"github.com/example/shineymark/internal/editor"
	"github.com/example/shineymark/internal/textfont"
)

var messageFont = textfont.Spec{Family: textfont.FamilySans, Size: 32, Bold: true}

// paintState is an immutable description of one frame. Everything it
// references is owned by the frame and never mutated by the event loop.
type paintState struct {
	width, height int

	frame   *image.RGBA
	zoom    float64
	tabs    []tabInfo
	current int

	mode      editor.Mode
	color     color.NRGBA
	thickness int
	status    string

	tools     []*CacheButton
	layout    toolbarLayout
	shortcuts []Shortcut

	hoverTab      int
	hoverTool     int
	hoverSwatch   int
	hoverWidth    int
	hoverShortcut int

	message      string
	messageUntil time.Time
}

// imageRect is where the frame lands in the window, anchored to the
// canvas origin so the position stays stable while zooming.
func (st paintState) imageRect() image.Rectangle {
	if st.frame == nil {
		return image.Rectangle{}
	}
	b := st.frame.Bounds()
	o := canvasRect(st.width, st.height).Min
	return image.Rect(o.X, o.Y, o.X+int(float64(b.Dx())*st.zoom), o.Y+int(float64(b.Dy())*st.zoom))
}

// renderUI paints st into dst. It reports false when ctx was cancelled
// part way through.
func renderUI(ctx context.Context, dst *image.RGBA, st paintState) bool {
	drawBackdrop(dst)
	if ctx.Err() != nil {
		return false
	}

	if st.frame != nil {
		canvas, ok := dst.SubImage(canvasRect(st.width, st.height)).(*image.RGBA)
		if ok && !canvas.Bounds().Empty() {
			xdraw.NearestNeighbor.Scale(canvas, st.imageRect(), st.frame, st.frame.Bounds(), draw.Over, nil)
		}
	}
	if ctx.Err() != nil {
		return false
	}

	drawTabs(dst, st)
	drawToolbar(dst, st)
	drawBottom(dst, st)
	if ctx.Err() != nil {
		return false
	}

	if st.message != "" && time.Now().Before(st.messageUntil) {
		w, h, base := textfont.Measure(messageFont, st.message)
		px := (st.width - w) / 2
		py := (st.height - h) / 2
		rect := image.Rect(px-8, py-8, px+w+8, py+h+8)
		draw.Draw(dst, rect, &image.Uniform{color.RGBA{255, 255, 255, 230}}, image.Point{}, draw.Over)
		outline(dst, rect, color.Black)
		outline(dst, rect.Inset(1), color.Black)
		textfont.Draw(dst, px, py+base, st.message, color.Black, messageFont)
	}
	return ctx.Err() == nil
}

// backdropCache is only touched from the paint goroutine.
var backdropCache *image.RGBA

// drawBackdrop fills dst with a cached checkerboard pattern.
func drawBackdrop(dst *image.RGBA) {
	b := dst.Bounds()
	if backdropCache == nil || backdropCache.Bounds() != b {
		backdropCache = image.NewRGBA(b)
		drawCheckerboard(backdropCache, b, 8, checkerLight, checkerDark)
	}
	draw.Draw(dst, b, backdropCache, b.Min, draw.Src)
}

func drawTabs(dst *image.RGBA, st paintState) {
	draw.Draw(dst, image.Rect(0, 0, dst.Bounds().Dx(), tabHeight), &image.Uniform{barColor}, image.Point{}, draw.Src)
	drawLabel(dst, 4, 24, "ShineyMark")

	x := toolbarWidth
	for i, t := range st.tabs {
		rect := image.Rect(x, 0, x+tabWidth, tabHeight)
		state := StateDefault
		if i == st.current {
			state = StatePressed
		} else if i == st.hoverTab {
			state = StateHover
		}
		draw.Draw(dst, rect, &image.Uniform{state.fill()}, image.Point{}, draw.Src)
		outline(dst, rect, pressedColor)
		if t.thumb != nil {
			box := image.Rect(rect.Min.X+4, 4, rect.Min.X+4+tabHeight-8, tabHeight-4)
			xdraw.ApproxBiLinear.Scale(dst, fitInside(t.thumb.Bounds().Size(), box), t.thumb, t.thumb.Bounds(), draw.Over, nil)
		}
		drawLabel(dst, rect.Min.X+tabHeight, 16, fmt.Sprintf("%d", i+1))
		drawLabel(dst, rect.Min.X+tabHeight, 32, clip(t.title, (tabWidth-tabHeight-4)/7))
		x += tabWidth
	}
}

// fitInside returns the largest rectangle with the aspect of size centred
// in box.
func fitInside(size image.Point, box image.Rectangle) image.Rectangle {
	if size.X <= 0 || size.Y <= 0 {
		return image.Rectangle{}
	}
	scale := min(float64(box.Dx())/float64(size.X), float64(box.Dy())/float64(size.Y))
	w := max(1, int(float64(size.X)*scale))
	h := max(1, int(float64(size.Y)*scale))
	at := box.Min.Add(image.Pt((box.Dx()-w)/2, (box.Dy()-h)/2))
	return image.Rectangle{Min: at, Max: at.Add(image.Pt(w, h))}
}

func clip(s string, n int) string {
	r := []rune(s)
	if n <= 0 || len(r) <= n {
		return s
	}
	return string(r[:n])
}

func drawToolbar(dst *image.RGBA, st paintState) {
	draw.Draw(dst, image.Rect(0, tabHeight, toolbarWidth, st.height-bottomHeight), &image.Uniform{barColor}, image.Point{}, draw.Src)
	for i, cb := range st.tools {
		state := StateDefault
		if tb, ok := cb.Button.(*ToolButton); ok && tb.mode == st.mode {
			state = StatePressed
		} else if i == st.hoverTool {
			state = StateHover
		}
		cb.Draw(dst, state)
	}

	for i, c := range Palette() {
		rect := st.layout.palette[i]
		draw.Draw(dst, rect, &image.Uniform{c.Color}, image.Point{}, draw.Src)
		if i == st.hoverSwatch {
			draw.Draw(dst, rect, &image.Uniform{color.RGBA{255, 255, 255, 80}}, image.Point{}, draw.Over)
		}
		if c.Color == st.color {
			outline(dst, rect, color.White)
			outline(dst, rect.Inset(-1), color.Black)
		}
	}

	for i, w := range widths {
		rect := st.layout.widths[i]
		state := StateDefault
		if w == st.thickness {
			state = StatePressed
		} else if i == st.hoverWidth {
			state = StateHover
		}
		draw.Draw(dst, rect, &image.Uniform{state.fill()}, image.Point{}, draw.Src)
		drawLabel(dst, 4, rect.Min.Y+12, fmt.Sprintf("%d", w))
		mid := rect.Min.Y + widthHeight/2
		line := image.Rect(24, mid-w/2, toolbarWidth-4, mid-w/2+w)
		draw.Draw(dst, line, &image.Uniform{st.color}, image.Point{}, draw.Over)
	}
}

func drawBottom(dst *image.RGBA, st paintState) {
	rect := image.Rect(0, st.height-bottomHeight, st.width, st.height)
	draw.Draw(dst, rect, &image.Uniform{barColor}, image.Point{}, draw.Src)
	x := toolbarWidth + 4
	for i := range st.shortcuts {
		sc := &st.shortcuts[i]
		state := StateDefault
		if i == st.hoverShortcut {
			state = StateHover
		}
		sc.Draw(dst, state)
		x = sc.rect.Max.X + 8
	}
	drawLabel(dst, x+8, st.height-bottomHeight+16, st.status)
}

func drawFrame(ctx context.Context, s screen.Screen, w screen.Window, st paintState) {
	b, err := s.NewBuffer(image.Point{st.width, st.height})
	if err != nil {
		log.Printf("new buffer: %v", err)
		return
	}
	defer b.Release()

	if !renderUI(ctx, b.RGBA(), st) {
		return
	}
	w.Upload(image.Point{}, b, b.Bounds())
	w.Publish()
}
