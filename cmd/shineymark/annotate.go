package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"path/filepath"

	"github.com/example/shineymark/internal/appstate"
	"github.com/example/shineymark/internal/clipboard"
	"github.com/example/shineymark/internal/editor"
	"github.com/example/shineymark/internal/export"
	"github.com/example/shineymark/internal/notify"
)

var (
	loadImageFn  = export.LoadFile
	pasteImageFn = clipboard.Paste
)

func newWorker(eng *editor.Engine, n *notify.Notifier) *export.Worker {
	return export.NewWorker(eng.Session().Compositor(), export.WithNotifier(n))
}

// annotateCmd represents the annotate subcommand.
type annotateCmd struct {
	*root
	fs            *flag.FlagSet
	output        string
	fromClipboard bool
	files         []string
}

func (a *annotateCmd) FlagSet() *flag.FlagSet {
	return a.fs
}

func (a *annotateCmd) Program() string {
	return a.root.subcommand("annotate")
}

func parseAnnotateCmd(args []string, r *root) (*annotateCmd, error) {
	fs := flag.NewFlagSet("annotate", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	a := &annotateCmd{root: r, fs: fs}
	fs.StringVar(&a.output, "output", "", "save to this file instead of a timestamped name in the save directory")
	fs.BoolVar(&a.fromClipboard, "from-clipboard", false, "open the image currently on the clipboard")
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil, &UsageError{of: a}
		}
		return nil, err
	}
	a.files = fs.Args()
	if len(a.files) == 0 && !a.fromClipboard {
		return nil, &UsageError{of: a, msg: "annotate needs at least one image file or -from-clipboard"}
	}
	if a.output != "" {
		if _, err := export.FormatFromPath(a.output); err != nil {
			return nil, err
		}
	}
	return a, nil
}

// load builds an engine holding one capture per input.
func (a *annotateCmd) load() (*editor.Engine, error) {
	eng := a.root.newEngine()
	for _, f := range a.files {
		img, err := loadImageFn(f)
		if err != nil {
			return nil, fmt.Errorf("failed to open %s: %w", f, err)
		}
		if err := eng.AddCapture(img, filepath.Base(f)); err != nil {
			return nil, fmt.Errorf("failed to open %s: %w", f, err)
		}
	}
	if a.fromClipboard {
		img, err := pasteImageFn()
		if err != nil {
			return nil, fmt.Errorf("failed to read clipboard image: %w", err)
		}
		if err := eng.AddCapture(img, "clipboard"); err != nil {
			return nil, fmt.Errorf("failed to read clipboard image: %w", err)
		}
	}
	if err := eng.SwitchCapture(0); err != nil {
		return nil, err
	}
	return eng, nil
}

func (a *annotateCmd) Run() error {
	eng, err := a.load()
	if err != nil {
		return err
	}
	cfg := a.root.config
	st := appstate.New(
		appstate.WithEngine(eng),
		appstate.WithOutput(a.output),
		appstate.WithSaveDir(cfg.SaveDir),
		appstate.WithFormat(cfg.OutputFormat),
		appstate.WithShadow(cfg.ShadowOptions()),
		appstate.WithNotifier(a.root.notifier),
	)
	st.Run()
	return nil
}
