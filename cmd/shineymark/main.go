package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/example/shineymark/internal/config"
	"github.com/example/shineymark/internal/editor"
	"github.com/example/shineymark/internal/notify"
	"github.com/example/shineymark/internal/script"
)

var (
	version            = "dev"
	commit             = ""
	date               = ""
	configPathOverride = ""
)

type runnable interface{ Run() error }

type root struct {
	fs        *flag.FlagSet
	program   string
	notifier  *notify.Notifier
	config    *config.Config
	saveAlert bool
	copyAlert bool
	failAlert bool
	stdout    io.Writer
	stderr    io.Writer
}

func (r *root) Program() string {
	return r.program
}

func (r *root) FlagSet() *flag.FlagSet {
	return r.fs
}

func newRoot() *root {
	loader := config.NewLoader(version, configPathOverride)
	cfg, err := loader.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: failed to load config: %v\n", err)
		cfg = config.New()
	}

	r := &root{
		fs:       flag.NewFlagSet("shineymark", flag.ContinueOnError),
		program:  "shineymark",
		notifier: notify.New(notify.LoadPreferences(os.Getenv)),
		config:   cfg,
		stdout:   os.Stdout,
		stderr:   os.Stderr,
	}
	r.fs.SetOutput(io.Discard)
	r.fs.BoolVar(&r.saveAlert, "notify-save", cfg.Notify.Save, "show a desktop notification after saving an image")
	r.fs.BoolVar(&r.copyAlert, "notify-copy", cfg.Notify.Copy, "show a desktop notification after copying to the clipboard")
	r.fs.BoolVar(&r.failAlert, "notify-failure", cfg.Notify.Failure, "show a desktop notification when an export fails")
	r.fs.Usage = usageFunc(r)
	return r
}

func (r *root) Run(args []string) error {
	if err := r.fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return &UsageError{of: r}
		}
		return err
	}
	if r.fs.NArg() < 1 {
		return &UsageError{of: r}
	}
	if r.notifier != nil {
		r.notifier.Enable(notify.EventSave, r.saveAlert)
		r.notifier.Enable(notify.EventCopy, r.copyAlert)
		r.notifier.Enable(notify.EventFailure, r.failAlert)
	}

	cmdName := r.fs.Arg(0)
	subArgs := r.fs.Args()[1:]

	var (
		cmd runnable
		err error
	)
	switch cmdName {
	case "annotate":
		cmd, err = parseAnnotateCmd(subArgs, r)
	case "draw":
		cmd, err = parseDrawCmd(subArgs, r)
	case "replay":
		cmd, err = parseReplayCmd(subArgs, r)
	case "interactive":
		cmd, err = parseInteractiveCmd(subArgs, r)
	case "config":
		cmd, err = parseConfigCmd(subArgs, r)
	case "version":
		cmd = &versionCmd{r: r}
	default:
		err = &UsageError{of: r}
	}
	if err != nil {
		return err
	}
	return cmd.Run()
}

func (r *root) subcommand(name string) string {
	return strings.TrimSpace(strings.Join([]string{r.program, name}, " "))
}

// newEngine returns an engine using the configured style.
func (r *root) newEngine() *editor.Engine {
	return editor.New(editor.WithConfig(r.config.EditorConfig()))
}

// newRunner returns a script runner that exports with the configured
// shadow and notifications.
func (r *root) newRunner(eng *editor.Engine, out io.Writer) *script.Runner {
	return script.NewRunner(eng,
		script.WithOutput(out),
		script.WithLoader(loadImageFn),
		script.WithPaste(pasteImageFn),
		script.WithShadow(r.config.ShadowOptions()),
		script.WithWorker(newWorker(eng, r.notifier)),
	)
}

func main() {
	r := newRoot()
	if err := r.Run(os.Args[1:]); err != nil {
		var uerr *UsageError
		if errors.As(err, &uerr) {
			fmt.Fprintln(os.Stderr, uerr.Error())
			os.Exit(2)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
