package main

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/example/shineymark/internal/script"
)

type commandList []string

func (c *commandList) String() string {
	return strings.Join(*c, ";")
}

func (c *commandList) Set(value string) error {
	*c = append(*c, value)
	return nil
}

// interactiveCmd reads commands from a prompt and applies them to a
// single engine that lives for the whole session.
type interactiveCmd struct {
	*root
	fs     *flag.FlagSet
	execs  commandList
	stdin  io.Reader
	runner *script.Runner
}

func (i *interactiveCmd) FlagSet() *flag.FlagSet {
	return i.fs
}

func (i *interactiveCmd) Program() string {
	return i.root.subcommand("interactive")
}

func parseInteractiveCmd(args []string, r *root) (*interactiveCmd, error) {
	fs := flag.NewFlagSet("interactive", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	i := &interactiveCmd{root: r, fs: fs, stdin: os.Stdin}
	fs.Var(&i.execs, "e", "execute a command in immediate mode (may be specified multiple times)")
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil, &UsageError{of: i}
		}
		return nil, err
	}
	return i, nil
}

// executeLine runs one line and reports whether the session should end.
func (i *interactiveCmd) executeLine(line string) (bool, error) {
	if i.runner == nil {
		i.runner = i.root.newRunner(i.root.newEngine(), i.root.stdout)
	}
	switch strings.TrimSpace(line) {
	case "help", "?":
		fmt.Fprintln(i.root.stdout, interactiveHelp)
		return false, nil
	}
	err := i.runner.ExecLine(line)
	if errors.Is(err, script.ErrExit) {
		return true, nil
	}
	return false, err
}

const interactiveHelp = `commands:
  open PATH [NAME]      paste [NAME]         blank W H [COLOR] [NAME]
  tool MODE             down|move|up|click|dblclick X Y
  drag X0 Y0 X1 Y1      type TEXT            key [MOD+]KEY
  commit  cancel  undo  delete  clear        crop X Y W H  confirm
  nudge DX DY           counter N            color|fill|highlight COLOR
  width N               font FAMILY [SIZE] [bold] [italic]
  switch N  remove N    save PATH  copy      preview PATH
  status  list  exit`

func (i *interactiveCmd) Run() error {
	if len(i.execs) > 0 {
		for _, cmd := range i.execs {
			done, err := i.executeLine(cmd)
			if err != nil {
				return fmt.Errorf("%s: %w", cmd, err)
			}
			if done {
				break
			}
		}
		return nil
	}

	out, errOut := i.root.stdout, i.root.stderr
	fmt.Fprintln(out, "Enter commands (type 'help' for a list, 'exit' to quit)")
	scanner := bufio.NewScanner(i.stdin)
	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			break
		}
		done, err := i.executeLine(scanner.Text())
		if err != nil {
			fmt.Fprintln(errOut, err)
		}
		if done {
			break
		}
	}
	return scanner.Err()
}
