// Package script drives an editor.Engine from a line oriented command
// language. It backs the replay and interactive commands and lets editing
// sessions run without a display.
//
// Each line holds one command followed by space separated arguments:
//
//	open shot.png
//	tool rect
//	drag 10 10 110 60
//	type Hello\nworld
//	save out.png
//
// Blank lines and lines starting with # are ignored.
package script

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Command is one parsed script line.
type Command struct {
	Line int
	Name string
	Args []string
	// Rest is the raw text after the command name, used by commands that
	// take free text.
	Rest string
}

func (c Command) String() string {
	if c.Rest == "" {
		return c.Name
	}
	return c.Name + " " + c.Rest
}

// ParseLine parses a single line. It returns ok=false for blank and
// comment lines.
func ParseLine(line string) (Command, bool) {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" || strings.HasPrefix(trimmed, "#") {
		return Command{}, false
	}
	name, rest, _ := strings.Cut(trimmed, " ")
	rest = strings.TrimLeft(rest, " \t")
	return Command{
		Name: strings.ToLower(name),
		Args: strings.Fields(rest),
		Rest: rest,
	}, true
}

// Parse reads every command from r.
func Parse(r io.Reader) ([]Command, error) {
	var cmds []Command
	scanner := bufio.NewScanner(r)
	n := 0
	for scanner.Scan() {
		n++
		cmd, ok := ParseLine(scanner.Text())
		if !ok {
			continue
		}
		cmd.Line = n
		cmds = append(cmds, cmd)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return cmds, nil
}

func (c Command) ints(n int) ([]int, error) {
	if len(c.Args) != n {
		return nil, fmt.Errorf("%s expects %d numbers, got %d arguments", c.Name, n, len(c.Args))
	}
	out := make([]int, n)
	for i, a := range c.Args {
		v, err := strconv.Atoi(a)
		if err != nil {
			return nil, fmt.Errorf("%s: invalid number %q", c.Name, a)
		}
		out[i] = v
	}
	return out, nil
}

func (c Command) arg(i int) string {
	if i < len(c.Args) {
		return c.Args[i]
	}
	return ""
}

var textEscapes = strings.NewReplacer(`\n`, "\n", `\t`, "\t", `\\`, `\`)

// text returns Rest with \n, \t and \\ expanded.
func (c Command) text() string {
	return textEscapes.Replace(c.Rest)
}
