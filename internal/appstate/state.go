// Package appstate hosts an editor.Engine in a shiny window: a capture tab
// bar, a toolbar of modes, colours and widths, the zoomable canvas and a
// bottom bar of shortcuts and status text.
package appstate

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log"
	"path/filepath"
	"sync"
	"time"
	"unicode"

	"golang.org/x/exp/shiny/driver"
	"golang.org/x/exp/shiny/screen"
	"golang.org/x/mobile/event/key"
	"golang.org/x/mobile/event/lifecycle"
	"golang.org/x/mobile/event/mouse"
	"golang.org/x/mobile/event/paint"
	"golang.org/x/mobile/event/size"

	"github.com/example/shineymark/internal/clipboard"
	"github.com/example/shineymark/internal/editor"
	"github.com/example/shineymark/internal/export"
	"github.com/example/shineymark/internal/notify"
	"github.com/example/shineymark/internal/render"
)

// AppState holds the engine and export settings for the UI.
type AppState struct {
	eng      *editor.Engine
	worker   *export.Worker
	notifier *notify.Notifier
	output   string
	saveDir  string
	format   export.Format
	shadow   render.ShadowOptions
	paste    func() (image.Image, error)
	now      func() time.Time

	sendMu sync.Mutex
	send   func(any)

	onClose   func()
	closeOnce sync.Once
}

// Option modifies an AppState during creation.
type Option func(*AppState)

// WithEngine sets the engine to host. Its session should already hold at
// least one capture.
func WithEngine(e *editor.Engine) Option { return func(a *AppState) { a.eng = e } }

// WithOutput sets a fixed output file path used when saving.
func WithOutput(out string) Option { return func(a *AppState) { a.output = out } }

// WithSaveDir sets the directory timestamped saves go to when no output
// path is set.
func WithSaveDir(dir string) Option { return func(a *AppState) { a.saveDir = dir } }

// WithFormat sets the encoding of timestamped saves.
func WithFormat(f export.Format) Option { return func(a *AppState) { a.format = f } }

// WithShadow adds a drop shadow to saved and copied images.
func WithShadow(o render.ShadowOptions) Option { return func(a *AppState) { a.shadow = o } }

// WithNotifier reports finished exports as desktop notifications.
func WithNotifier(n *notify.Notifier) Option { return func(a *AppState) { a.notifier = n } }

// WithPaste replaces clipboard.Paste.
func WithPaste(fn func() (image.Image, error)) Option { return func(a *AppState) { a.paste = fn } }

// WithOnClose registers a callback invoked when the window closes.
func WithOnClose(fn func()) Option { return func(a *AppState) { a.onClose = fn } }

// New creates an AppState with the provided options.
func New(opts ...Option) *AppState {
	a := &AppState{
		format: export.FormatPNG,
		paste:  clipboard.Paste,
		now:    time.Now,
	}
	for _, o := range opts {
		o(a)
	}
	if a.eng == nil {
		a.eng = editor.New()
	}
	a.worker = export.NewWorker(a.eng.Session().Compositor(),
		export.WithNotifier(a.notifier),
		export.WithResultHandler(func(r export.Result) { a.post(exportEvent{r}) }),
	)
	return a
}

// Engine returns the hosted engine.
func (a *AppState) Engine() *editor.Engine { return a.eng }

type exportEvent struct{ res export.Result }

// post delivers ev to the window event loop if one is running.
func (a *AppState) post(ev any) {
	a.sendMu.Lock()
	fn := a.send
	a.sendMu.Unlock()
	if fn != nil {
		fn(ev)
	}
}

func (a *AppState) setSender(fn func(any)) {
	a.sendMu.Lock()
	a.send = fn
	a.sendMu.Unlock()
}

func (a *AppState) notifyClose() {
	a.closeOnce.Do(func() {
		a.setSender(nil)
		if a.onClose != nil {
			a.onClose()
		}
	})
}

// outputPath is where the next save goes.
func (a *AppState) outputPath() string {
	if a.output != "" {
		return a.output
	}
	return export.DefaultName(a.saveDir, a.format, a.now())
}

// KeyShortcut describes a keyboard combination that triggers an action.
type KeyShortcut struct {
	Rune      rune
	Code      key.Code
	Modifiers key.Modifiers
}

var noHover = [5]int{-1, -1, -1, -1, -1}

// hostBindings are keys the engine leaves unhandled.
var hostBindings = map[KeyShortcut]string{
	{Rune: 's', Modifiers: key.ModControl}: "save",
	{Rune: 'c', Modifiers: key.ModControl}: "copy",
	{Rune: 'v', Modifiers: key.ModControl}: "paste",
	{Rune: 'w', Modifiers: key.ModControl}: "close",
	{Rune: '+'}:                            "zoomin",
	{Rune: '+', Modifiers: key.ModShift}:   "zoomin",
	{Rune: '='}:                            "zoomin",
	{Rune: '-'}:                            "zoomout",
	{Rune: '0'}:                            "fit",
	{Rune: 'q'}:                            "quit",
}

func lookupBinding(ev key.Event) (string, bool) {
	mods := ev.Modifiers &^ key.ModMeta
	if ev.Modifiers&key.ModMeta != 0 {
		mods |= key.ModControl
	}
	if name, ok := hostBindings[KeyShortcut{Rune: unicode.ToLower(ev.Rune), Modifiers: mods}]; ok {
		return name, true
	}
	name, ok := hostBindings[KeyShortcut{Code: ev.Code, Modifiers: mods}]
	return name, ok
}

// shortcutsFor returns the bottom bar hints for the engine's state.
func shortcutsFor(eng *editor.Engine, zoom float64) []Shortcut {
	if eng.Editing() != nil {
		return []Shortcut{
			{label: "Enter:done", action: "commit"},
			{label: "Shift+Enter:newline", action: "newline"},
			{label: "Esc:cancel", action: "cancel"},
		}
	}
	scs := []Shortcut{
		{label: "^S:save", action: "save"},
		{label: "^C:copy", action: "copy"},
		{label: "^V:paste", action: "paste"},
		{label: "^Z:undo", action: "undo"},
		{label: fmt.Sprintf("+/-:zoom (%.0f%%)", zoom*100), action: "fit"},
		{label: "^W:close", action: "close"},
		{label: "Q:quit", action: "quit"},
	}
	if _, pending := eng.Crop(); pending {
		scs = append(scs,
			Shortcut{label: "Enter:crop", action: "confirm"},
			Shortcut{label: "Esc:cancel", action: "cancel"},
		)
	}
	return scs
}

// Run executes the UI loop using shiny's driver.
func (a *AppState) Run() { driver.Main(a.Main) }

func (a *AppState) Main(s screen.Screen) {
	eng := a.eng
	imgSize := image.Pt(800, 600)
	if it := eng.Session().Current(); it != nil {
		imgSize = it.Size()
	}
	width := max(imgSize.X+toolbarWidth, 640)
	height := max(imgSize.Y+tabHeight+bottomHeight, 480)
	w, err := s.NewWindow(&screen.NewWindowOptions{Width: width, Height: height, Title: "ShineyMark"})
	if err != nil {
		log.Printf("new window: %v", err)
		return
	}
	defer w.Release()
	defer a.notifyClose()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		if err := a.worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Printf("export: %v", err)
		}
	}()
	a.setSender(func(ev any) { w.Send(ev) })

	layout := layoutToolbar()
	tools := make([]*CacheButton, len(editor.Modes()))
	for i, m := range editor.Modes() {
		tools[i] = &CacheButton{Button: &ToolButton{mode: m, rect: layout.tools[i], onSelect: eng.SetMode}}
	}

	zoom, fit := 1.0, true
	hoverTab, hoverTool, hoverSwatch, hoverWidth, hoverShortcut := -1, -1, -1, -1, -1
	var message string
	var messageUntil time.Time
	var shortcuts []Shortcut
	canvasGesture := false
	quit := false

	var paintMu sync.Mutex
	var paintCancel context.CancelFunc
	var dropCount int
	paintCh := make(chan paintState, 1)
	go func() {
		for st := range paintCh {
			pctx, pcancel := context.WithCancel(ctx)
			paintMu.Lock()
			paintCancel = pcancel
			paintMu.Unlock()
			drawFrame(pctx, s, w, st)
			paintMu.Lock()
			paintCancel = nil
			if pctx.Err() == nil {
				dropCount = 0
			}
			paintMu.Unlock()
			pcancel()
		}
	}()
	defer close(paintCh)

	setMessage := func(msg string) {
		message = msg
		messageUntil = time.Now().Add(2 * time.Second)
		log.Print(msg)
	}

	submit := func(job export.Job) {
		snap, err := eng.Snapshot()
		if err != nil {
			setMessage(fmt.Sprintf("export failed: %v", err))
			return
		}
		job.Image = snap
		job.Shadow = a.shadow
		if err := a.worker.Submit(ctx, job); err != nil {
			log.Printf("export: %v", err)
		}
	}

	setZoom := func(z float64) {
		fit = false
		zoom = min(max(z, 0.1), 8)
	}

	actions := map[string]func(){
		"save": func() { submit(export.Job{Path: a.outputPath()}) },
		"copy": func() { submit(export.Job{Clipboard: true}) },
		"paste": func() {
			img, err := a.paste()
			if err != nil {
				log.Printf("paste: %v", err)
				return
			}
			if err := eng.AddCapture(img, "pasted"); err != nil {
				log.Printf("paste: %v", err)
				return
			}
			fit = true
			setMessage("pasted new tab")
		},
		"close": func() {
			if err := eng.RemoveCapture(eng.Session().CurrentIndex()); err != nil {
				log.Printf("close tab: %v", err)
			}
			fit = true
		},
		"undo":    func() { eng.Undo() },
		"commit":  func() { eng.CommitText() },
		"newline": func() { eng.TypeText("\n") },
		"cancel":  func() { eng.Cancel() },
		"confirm": func() {
			if err := eng.ConfirmCrop(); err != nil {
				setMessage(err.Error())
			}
			fit = true
		},
		"zoomin":  func() { setZoom(zoom * 1.25) },
		"zoomout": func() { setZoom(zoom / 1.25) },
		"fit":     func() { fit = true },
		"quit":    func() { quit = true },
	}
	run := func(name string) {
		if fn, ok := actions[name]; ok {
			fn()
		}
		w.Send(paint.Event{})
	}

	for !quit && !eng.Session().Closed() {
		switch e := w.NextEvent().(type) {
		case lifecycle.Event:
			if e.To == lifecycle.StageDead {
				quit = true
			}
		case size.Event:
			width, height = e.WidthPx, e.HeightPx
			w.Send(paint.Event{})
		case exportEvent:
			switch r := e.res; {
			case r.Err != nil:
				setMessage(fmt.Sprintf("export failed: %v", r.Err))
			case r.Job.Path != "":
				setMessage("saved " + filepath.Base(r.Job.Path))
			default:
				setMessage("image copied to clipboard")
			}
			w.Send(paint.Event{})
		case paint.Event:
			paintMu.Lock()
			if paintCancel != nil && dropCount < frameDropThreshold {
				paintCancel()
				dropCount++
			}
			paintMu.Unlock()
			frame, err := eng.Frame()
			if err != nil {
				log.Printf("render: %v", err)
			}
			if it := eng.Session().Current(); it != nil && fit {
				zoom = fitZoom(it.Size(), width, height)
			}
			items := eng.Session().Items()
			tabs := make([]tabInfo, len(items))
			for i, it := range items {
				tabs[i] = tabInfo{title: it.Name, thumb: it.Thumbnail()}
			}
			col := eng.Style().LineColor
			if eng.Mode() == editor.ModeHighlight {
				col = eng.Config().HighlightColor
			}
			shortcuts = layoutShortcuts(shortcutsFor(eng, zoom), height)
			st := paintState{
				width:         width,
				height:        height,
				frame:         frame,
				zoom:          zoom,
				tabs:          tabs,
				current:       eng.Session().CurrentIndex(),
				mode:          eng.Mode(),
				color:         col,
				thickness:     eng.Style().Thickness,
				status:        eng.Status().String(),
				tools:         tools,
				layout:        layout,
				shortcuts:     shortcuts,
				hoverTab:      hoverTab,
				hoverTool:     hoverTool,
				hoverSwatch:   hoverSwatch,
				hoverWidth:    hoverWidth,
				hoverShortcut: hoverShortcut,
				message:       message,
				messageUntil:  messageUntil,
			}
			select {
			case paintCh <- st:
			default:
				<-paintCh
				paintCh <- st
			}
		case key.Event:
			if e.Direction == key.DirRelease {
				continue
			}
			_, wasPending := eng.Crop()
			if eng.HandleKey(e) {
				if _, pending := eng.Crop(); wasPending && !pending {
					fit = true
				}
				w.Send(paint.Event{})
				continue
			}
			if name, ok := lookupBinding(e); ok {
				run(name)
			}
		case mouse.Event:
			if message != "" && time.Now().Before(messageUntil) && e.Direction == mouse.DirPress {
				messageUntil = time.Time{}
				w.Send(paint.Event{})
				continue
			}
			p := image.Pt(int(e.X), int(e.Y))
			region, idx := layout.hit(p, height)
			prev := [5]int{hoverTab, hoverTool, hoverSwatch, hoverWidth, hoverShortcut}
			hoverTab, hoverTool, hoverSwatch, hoverWidth, hoverShortcut = -1, -1, -1, -1, -1
			if canvasGesture || region == regionCanvas {
				switch e.Button {
				case mouse.ButtonWheelUp:
					run("zoomin")
					continue
				case mouse.ButtonWheelDown:
					run("zoomout")
					continue
				}
				if e.Direction == mouse.DirPress && e.Button == mouse.ButtonLeft {
					canvasGesture = true
				}
				if e.Direction == mouse.DirRelease && e.Button == mouse.ButtonLeft {
					canvasGesture = false
				}
				if eng.HandleMouse(e, canvasRect(width, height).Min, zoom) || prev != noHover {
					w.Send(paint.Event{})
				}
				continue
			}
			press := e.Direction == mouse.DirPress && e.Button == mouse.ButtonLeft
			switch region {
			case regionTabs:
				if idx < eng.Session().Len() {
					hoverTab = idx
					if press {
						if err := eng.SwitchCapture(idx); err != nil {
							log.Printf("switch tab: %v", err)
						}
						fit = true
					}
				}
			case regionTool:
				hoverTool = idx
				if press {
					tools[idx].Activate()
				}
			case regionSwatch:
				hoverSwatch = idx
				if press {
					c := Palette()[idx].Color
					if eng.Mode() == editor.ModeHighlight {
						eng.SetHighlightColor(c)
					} else {
						eng.SetLineColor(c)
					}
				}
			case regionWidth:
				hoverWidth = idx
				if press {
					eng.SetThickness(widths[idx])
				}
			case regionBottom:
				for i, sc := range shortcuts {
					if p.In(sc.rect) {
						hoverShortcut = i
						if press {
							run(sc.action)
						}
						break
					}
				}
			}
			if press || prev != [5]int{hoverTab, hoverTool, hoverSwatch, hoverWidth, hoverShortcut} {
				w.Send(paint.Event{})
			}
		}
	}

	paintMu.Lock()
	if paintCancel != nil {
		paintCancel()
	}
	paintMu.Unlock()
}
