package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/example/shineymark/internal/config"
	"github.com/example/shineymark/internal/export"
	"github.com/example/shineymark/internal/script"
)

// drawCmd applies a single annotation to an image without opening a
// window.
type drawCmd struct {
	*root
	fs *flag.FlagSet

	input         string
	fromClipboard bool
	size          string
	output        string
	copy          bool
	color         string
	fill          string
	width         int
	font          string
	counter       int

	shape string
	args  []string
}

func (d *drawCmd) FlagSet() *flag.FlagSet {
	return d.fs
}

func (d *drawCmd) Program() string {
	return d.root.subcommand("draw")
}

// shapeArity is the number of arguments each shape takes. Text takes at
// least two coordinates followed by free text.
var shapeArity = map[string]int{
	"rect":      4,
	"highlight": 4,
	"line":      4,
	"arrow":     4,
	"counter":   2,
	"text":      3,
	"crop":      4,
}

func parseDrawCmd(args []string, r *root) (*drawCmd, error) {
	fs := flag.NewFlagSet("draw", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	d := &drawCmd{root: r, fs: fs}
	fs.StringVar(&d.input, "input", "", "image file to draw on")
	fs.BoolVar(&d.fromClipboard, "from-clipboard", false, "draw on the image currently on the clipboard")
	fs.StringVar(&d.size, "size", "", "draw on a blank white canvas of WxH pixels")
	fs.StringVar(&d.output, "output", "", "output file path")
	fs.BoolVar(&d.copy, "copy", false, "copy the result to the clipboard")
	fs.StringVar(&d.color, "color", "", "line colour (name or #RRGGBB)")
	fs.StringVar(&d.fill, "fill", "", "fill colour for rectangles")
	fs.IntVar(&d.width, "width", 0, "line width in pixels")
	fs.StringVar(&d.font, "font", "", "text font, for example \"mono 18 bold\"")
	fs.IntVar(&d.counter, "number", 0, "value of the counter marker")
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil, &UsageError{of: d}
		}
		return nil, err
	}

	rest := fs.Args()
	if len(rest) < 1 {
		return nil, &UsageError{of: d, msg: "draw needs a shape"}
	}
	d.shape, d.args = strings.ToLower(rest[0]), rest[1:]
	n, ok := shapeArity[d.shape]
	if !ok {
		return nil, &UsageError{of: d, msg: fmt.Sprintf("unknown shape %q", d.shape)}
	}
	if d.shape == "text" {
		if len(d.args) < n {
			return nil, fmt.Errorf("text expects x y and the text to draw")
		}
	} else if len(d.args) != n {
		return nil, fmt.Errorf("%s expects %d numbers, got %d", d.shape, n, len(d.args))
	}

	sources := 0
	for _, set := range []bool{d.input != "", d.fromClipboard, d.size != ""} {
		if set {
			sources++
		}
	}
	if sources != 1 {
		return nil, fmt.Errorf("exactly one of -input, -from-clipboard or -size is required")
	}
	if d.output == "" && !d.copy {
		if d.fromClipboard {
			return nil, fmt.Errorf("output file is required when reading from the clipboard")
		}
		d.output = d.input
	}
	if d.output == "" && !d.copy {
		return nil, fmt.Errorf("-output or -copy is required")
	}
	if d.output != "" {
		if _, err := export.FormatFromPath(d.output); err != nil {
			return nil, err
		}
	}
	for _, c := range []string{d.color, d.fill} {
		if err := colorArg(c); err != nil {
			return nil, err
		}
	}
	return d, nil
}

func command(name string, args ...string) script.Command {
	return script.Command{Name: name, Args: args, Rest: strings.Join(args, " ")}
}

// commands translates the flags into script commands.
func (d *drawCmd) commands() ([]script.Command, error) {
	var cmds []script.Command
	switch {
	case d.input != "":
		cmds = append(cmds, script.Command{Name: "open", Args: []string{d.input}, Rest: d.input})
	case d.fromClipboard:
		cmds = append(cmds, command("paste"))
	default:
		w, h, ok := strings.Cut(strings.ToLower(d.size), "x")
		if !ok {
			return nil, fmt.Errorf("invalid -size %q, want WxH", d.size)
		}
		cmds = append(cmds, command("blank", w, h))
	}

	if d.color != "" {
		cmds = append(cmds, command("color", d.color))
	}
	if d.fill != "" {
		cmds = append(cmds, command("fill", d.fill))
	}
	if d.width > 0 {
		cmds = append(cmds, command("width", strconv.Itoa(d.width)))
	}
	if d.font != "" {
		cmds = append(cmds, command("font", strings.Fields(d.font)...))
	}

	a := d.args
	switch d.shape {
	case "rect", "highlight":
		x, y, w, h, err := rectArgs(a)
		if err != nil {
			return nil, err
		}
		cmds = append(cmds,
			command("tool", d.shape),
			command("drag", strconv.Itoa(x), strconv.Itoa(y), strconv.Itoa(x+w), strconv.Itoa(y+h)))
	case "line", "arrow":
		cmds = append(cmds, command("tool", d.shape), command("drag", a...))
	case "counter":
		if d.counter > 0 {
			cmds = append(cmds, command("counter", strconv.Itoa(d.counter)))
		}
		cmds = append(cmds, command("tool", "counter"), command("click", a...))
	case "text":
		text := strings.Join(a[2:], " ")
		cmds = append(cmds,
			command("tool", "text"),
			command("click", a[0], a[1]),
			script.Command{Name: "type", Args: strings.Fields(text), Rest: text},
			command("commit"))
	case "crop":
		cmds = append(cmds, command("crop", a...), command("confirm"))
	}

	if d.output != "" {
		cmds = append(cmds, script.Command{Name: "save", Args: []string{d.output}, Rest: d.output})
	}
	if d.copy {
		cmds = append(cmds, command("copy"))
	}
	return cmds, nil
}

func rectArgs(a []string) (x, y, w, h int, err error) {
	v := make([]int, 4)
	for i := range v {
		if v[i], err = strconv.Atoi(a[i]); err != nil {
			return 0, 0, 0, 0, fmt.Errorf("invalid number %q", a[i])
		}
	}
	return v[0], v[1], v[2], v[3], nil
}

func (d *drawCmd) Run() error {
	cmds, err := d.commands()
	if err != nil {
		return err
	}
	r := d.root.newRunner(d.root.newEngine(), d.root.stdout)
	for _, c := range cmds {
		if err := r.Exec(c); err != nil {
			return fmt.Errorf("%s: %w", c, err)
		}
	}
	return nil
}

// colorArg validates a colour flag value early.
func colorArg(s string) error {
	if s == "" {
		return nil
	}
	_, err := config.ParseColor(s)
	return err
}
