package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/example/shineymark/internal/script"
)

// replayCmd runs a script file against a fresh engine.
type replayCmd struct {
	*root
	fs     *flag.FlagSet
	path   string
	stdin  io.Reader
	output string
}

func (p *replayCmd) FlagSet() *flag.FlagSet {
	return p.fs
}

func (p *replayCmd) Program() string {
	return p.root.subcommand("replay")
}

func parseReplayCmd(args []string, r *root) (*replayCmd, error) {
	fs := flag.NewFlagSet("replay", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	p := &replayCmd{root: r, fs: fs, stdin: os.Stdin}
	fs.StringVar(&p.output, "preview", "", "write the final editing frame to this file")
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil, &UsageError{of: p}
		}
		return nil, err
	}
	if fs.NArg() != 1 {
		return nil, &UsageError{of: p, msg: "replay needs exactly one script file (use - for stdin)"}
	}
	p.path = fs.Arg(0)
	return p, nil
}

func (p *replayCmd) Run() error {
	in := p.stdin
	if p.path != "-" {
		f, err := os.Open(p.path)
		if err != nil {
			return fmt.Errorf("failed to open script: %w", err)
		}
		defer f.Close()
		in = f
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	r := p.root.newRunner(p.root.newEngine(), p.root.stdout)
	if err := r.Run(ctx, in); err != nil {
		return fmt.Errorf("%s: %w", p.path, err)
	}
	if p.output != "" {
		return r.Exec(script.Command{Name: "preview", Args: []string{p.output}, Rest: p.output})
	}
	return nil
}
