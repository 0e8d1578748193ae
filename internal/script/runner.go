package script

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"io"
	"strconv"
	"strings"

	"golang.org/x/mobile/event/key"

	"github.com/example/shineymark/internal/clipboard"
	"github.com/example/shineymark/internal/config"
	"github.com/example/shineymark/internal/editor"
	"github.com/example/shineymark/internal/export"
	"github.com/example/shineymark/internal/render"
	"github.com/example/shineymark/internal/session"
	"github.com/example/shineymark/internal/textfont"
)

// ErrExit is returned by Exec for the exit and quit commands.
var ErrExit = errors.New("exit")

// Runner executes commands against an Engine.
type Runner struct {
	eng    *editor.Engine
	out    io.Writer
	worker *export.Worker
	shadow render.ShadowOptions
	load   func(string) (image.Image, error)
	paste  func() (image.Image, error)
}

// Option configures a Runner.
type Option func(*Runner)

// WithOutput sets where status and list commands print.
func WithOutput(w io.Writer) Option { return func(r *Runner) { r.out = w } }

// WithWorker sets the exporter used by save and copy.
func WithWorker(w *export.Worker) Option { return func(r *Runner) { r.worker = w } }

// WithShadow adds a drop shadow to saved and copied images.
func WithShadow(o render.ShadowOptions) Option { return func(r *Runner) { r.shadow = o } }

// WithLoader replaces export.LoadFile for the open command.
func WithLoader(fn func(string) (image.Image, error)) Option {
	return func(r *Runner) { r.load = fn }
}

// WithPaste replaces clipboard.Paste for the paste command.
func WithPaste(fn func() (image.Image, error)) Option { return func(r *Runner) { r.paste = fn } }

// NewRunner creates a Runner for eng.
func NewRunner(eng *editor.Engine, opts ...Option) *Runner {
	r := &Runner{
		eng:   eng,
		out:   io.Discard,
		load:  export.LoadFile,
		paste: clipboard.Paste,
	}
	for _, o := range opts {
		o(r)
	}
	if r.worker == nil {
		r.worker = export.NewWorker(eng.Session().Compositor())
	}
	return r
}

// Engine returns the engine being driven.
func (r *Runner) Engine() *editor.Engine { return r.eng }

// Run executes every command read from in. It stops at the first error,
// at an exit command, or when ctx is done.
func (r *Runner) Run(ctx context.Context, in io.Reader) error {
	cmds, err := Parse(in)
	if err != nil {
		return err
	}
	for _, c := range cmds {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := r.Exec(c); err != nil {
			if errors.Is(err, ErrExit) {
				return nil
			}
			return fmt.Errorf("line %d: %s: %w", c.Line, c, err)
		}
	}
	return nil
}

// ExecLine parses and executes one line.
func (r *Runner) ExecLine(line string) error {
	c, ok := ParseLine(line)
	if !ok {
		return nil
	}
	return r.Exec(c)
}

// Exec executes one command.
func (r *Runner) Exec(c Command) error {
	e := r.eng
	switch c.Name {
	case "exit", "quit":
		return ErrExit
	case "open":
		if len(c.Args) < 1 {
			return fmt.Errorf("open requires a path")
		}
		img, err := r.load(c.Args[0])
		if err != nil {
			return err
		}
		return e.AddCapture(img, strings.Join(c.Args[1:], " "))
	case "paste":
		img, err := r.paste()
		if err != nil {
			return fmt.Errorf("read clipboard image: %w", err)
		}
		return e.AddCapture(img, c.Rest)
	case "blank":
		return r.blank(c)
	case "tool", "mode":
		m, err := editor.ParseMode(c.arg(0))
		if err != nil {
			return err
		}
		e.SetMode(m)
	case "down", "move", "up", "click", "dblclick":
		return r.pointer(c)
	case "drag":
		v, err := c.ints(4)
		if err != nil {
			return err
		}
		if err := r.needCapture(); err != nil {
			return err
		}
		from, to := image.Pt(v[0], v[1]), image.Pt(v[2], v[3])
		e.PointerDown(from)
		e.PointerMove(to)
		e.PointerUp(to)
	case "type":
		if e.TextEditor() == nil {
			return fmt.Errorf("no text is being edited")
		}
		e.TypeText(c.text())
	case "key":
		ev, err := ParseKey(c.arg(0))
		if err != nil {
			return err
		}
		e.HandleKey(ev)
	case "commit":
		e.CommitText()
	case "cancel":
		e.Cancel()
	case "undo":
		e.Undo()
	case "delete":
		e.DeleteSelected()
	case "clear":
		e.Clear()
	case "crop":
		v, err := c.ints(4)
		if err != nil {
			return err
		}
		return e.SetCrop(image.Rect(v[0], v[1], v[0]+v[2], v[1]+v[3]))
	case "confirm":
		return e.ConfirmCrop()
	case "nudge":
		v, err := c.ints(2)
		if err != nil {
			return err
		}
		e.Nudge(image.Pt(v[0], v[1]))
	case "counter":
		v, err := c.ints(1)
		if err != nil {
			return err
		}
		e.ResetCounter(v[0])
	case "color", "fill", "highlight":
		return r.color(c)
	case "width":
		v, err := c.ints(1)
		if err != nil {
			return err
		}
		if v[0] < 1 {
			return fmt.Errorf("width must be at least 1")
		}
		e.SetThickness(v[0])
	case "font":
		spec, err := ParseFont(c.Args)
		if err != nil {
			return err
		}
		e.SetFont(spec)
	case "switch", "remove":
		v, err := c.ints(1)
		if err != nil {
			return err
		}
		if c.Name == "switch" {
			return e.SwitchCapture(v[0] - 1)
		}
		return e.RemoveCapture(v[0] - 1)
	case "save", "copy":
		return r.export(c)
	case "preview":
		if len(c.Args) != 1 {
			return fmt.Errorf("preview requires a path")
		}
		frame, err := e.Frame()
		if err != nil {
			return err
		}
		return export.SaveFile(c.Args[0], frame)
	case "status":
		fmt.Fprintln(r.out, e.Status())
	case "list":
		r.list()
	default:
		return fmt.Errorf("unknown command %q", c.Name)
	}
	return nil
}

func (r *Runner) needCapture() error {
	if r.eng.Session().Current() == nil {
		return session.ErrNoCapture
	}
	return nil
}

func (r *Runner) pointer(c Command) error {
	v, err := c.ints(2)
	if err != nil {
		return err
	}
	if err := r.needCapture(); err != nil {
		return err
	}
	p := image.Pt(v[0], v[1])
	e := r.eng
	switch c.Name {
	case "down":
		e.PointerDown(p)
	case "move":
		e.PointerMove(p)
	case "up":
		e.PointerUp(p)
	case "click":
		e.PointerDown(p)
		e.PointerUp(p)
	case "dblclick":
		e.DoubleClick(p)
	}
	return nil
}

func (r *Runner) blank(c Command) error {
	if len(c.Args) < 2 {
		return fmt.Errorf("blank requires width and height")
	}
	v, err := Command{Name: c.Name, Args: c.Args[:2]}.ints(2)
	if err != nil {
		return err
	}
	bg := color.NRGBA{R: 255, G: 255, B: 255, A: 255}
	if len(c.Args) > 2 {
		if bg, err = config.ParseColor(c.Args[2]); err != nil {
			return err
		}
	}
	if v[0] <= 0 || v[1] <= 0 {
		return render.ErrInvalidGeometry
	}
	img := image.NewRGBA(image.Rect(0, 0, v[0], v[1]))
	draw.Draw(img, img.Bounds(), image.NewUniform(bg), image.Point{}, draw.Src)
	return r.eng.AddCapture(img, strings.Join(c.Args[min(3, len(c.Args)):], " "))
}

func (r *Runner) color(c Command) error {
	col, err := config.ParseColor(c.Rest)
	if err != nil {
		return err
	}
	switch c.Name {
	case "color":
		r.eng.SetLineColor(col)
	case "fill":
		r.eng.SetFillColor(col)
	case "highlight":
		r.eng.SetHighlightColor(col)
	}
	return nil
}

func (r *Runner) export(c Command) error {
	snap, err := r.eng.Snapshot()
	if err != nil {
		return err
	}
	job := export.Job{Image: snap, Shadow: r.shadow}
	if c.Name == "save" {
		if len(c.Args) != 1 {
			return fmt.Errorf("save requires a path")
		}
		job.Path = c.Args[0]
	} else {
		job.Clipboard = true
	}
	res := r.worker.Process(job)
	if res.Err != nil {
		return res.Err
	}
	if job.Path != "" {
		fmt.Fprintf(r.out, "saved %s\n", job.Path)
	} else {
		fmt.Fprintln(r.out, "copied image to clipboard")
	}
	return nil
}

func (r *Runner) list() {
	sess := r.eng.Session()
	for i, it := range sess.Items() {
		marker := " "
		if i == sess.CurrentIndex() {
			marker = "*"
		}
		size := it.Size()
		fmt.Fprintf(r.out, "%s %d %s %dx%d\n", marker, i+1, it.Name, size.X, size.Y)
	}
}

var keyCodes = map[string]key.Code{
	"enter":     key.CodeReturnEnter,
	"return":    key.CodeReturnEnter,
	"escape":    key.CodeEscape,
	"esc":       key.CodeEscape,
	"backspace": key.CodeDeleteBackspace,
	"delete":    key.CodeDeleteForward,
	"del":       key.CodeDeleteForward,
	"left":      key.CodeLeftArrow,
	"right":     key.CodeRightArrow,
	"up":        key.CodeUpArrow,
	"down":      key.CodeDownArrow,
	"home":      key.CodeHome,
	"end":       key.CodeEnd,
	"space":     key.CodeSpacebar,
}

// ParseKey turns a key name such as "enter", "shift+left", "ctrl+z" or a
// single character into a press event.
func ParseKey(s string) (key.Event, error) {
	parts := strings.Split(s, "+")
	name := parts[len(parts)-1]
	ev := key.Event{Rune: -1, Direction: key.DirPress}
	for _, m := range parts[:len(parts)-1] {
		switch strings.ToLower(m) {
		case "ctrl", "control":
			ev.Modifiers |= key.ModControl
		case "shift":
			ev.Modifiers |= key.ModShift
		case "alt":
			ev.Modifiers |= key.ModAlt
		case "meta", "cmd", "super":
			ev.Modifiers |= key.ModMeta
		default:
			return key.Event{}, fmt.Errorf("unknown modifier %q", m)
		}
	}
	if code, ok := keyCodes[strings.ToLower(name)]; ok {
		ev.Code = code
		if code == key.CodeSpacebar {
			ev.Rune = ' '
		}
		return ev, nil
	}
	runes := []rune(name)
	if len(runes) != 1 {
		return key.Event{}, fmt.Errorf("unknown key %q", s)
	}
	ev.Rune = runes[0]
	return ev, nil
}

// ParseFont parses "family [size] [bold] [italic]".
func ParseFont(args []string) (textfont.Spec, error) {
	if len(args) == 0 {
		return textfont.Spec{}, fmt.Errorf("font requires a family")
	}
	fam, err := textfont.ParseFamily(args[0])
	if err != nil {
		return textfont.Spec{}, err
	}
	spec := textfont.Spec{Family: fam, Size: textfont.DefaultSize}
	for _, a := range args[1:] {
		switch strings.ToLower(a) {
		case "bold":
			spec.Bold = true
		case "italic":
			spec.Italic = true
		default:
			size, err := strconv.ParseFloat(a, 64)
			if err != nil || size <= 0 {
				return textfont.Spec{}, fmt.Errorf("invalid font size %q", a)
			}
			spec.Size = size
		}
	}
	return spec, nil
}
