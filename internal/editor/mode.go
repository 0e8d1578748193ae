package editor

import (
	"fmt"
	"strings"

	"github.com/example/shineymark/internal/annotation"
)

// Mode is the active tool.
type Mode int

const (
	ModeSelect Mode = iota
	ModeHighlight
	ModeRectangle
	ModeLine
	ModeArrow
	ModeText
	ModeCounter
	ModeCrop
	modeCount
)

type modeInfo struct {
	name string
	// kind is the annotation kind the tool creates; drawing tools only.
	kind     annotation.Kind
	creates  bool
	shortcut rune
}

var modes = [...]modeInfo{
	ModeSelect:    {name: "select", shortcut: 'm'},
	ModeHighlight: {name: "highlight", kind: annotation.KindHighlight, creates: true, shortcut: 'g'},
	ModeRectangle: {name: "rectangle", kind: annotation.KindRectangle, creates: true, shortcut: 'x'},
	ModeLine:      {name: "line", kind: annotation.KindLine, creates: true, shortcut: 'l'},
	ModeArrow:     {name: "arrow", kind: annotation.KindArrow, creates: true, shortcut: 'a'},
	ModeText:      {name: "text", kind: annotation.KindText, creates: true, shortcut: 't'},
	ModeCounter:   {name: "counter", kind: annotation.KindCounter, creates: true, shortcut: 'h'},
	ModeCrop:      {name: "crop", shortcut: 'r'},
}

var _ = [1]struct{}{}[len(modes)-int(modeCount)]

// numberedModes maps the 1-6 shortcuts to tools.
var numberedModes = [...]Mode{ModeHighlight, ModeRectangle, ModeLine, ModeArrow, ModeText, ModeCounter}

// Modes lists every tool in toolbar order.
func Modes() []Mode {
	out := make([]Mode, modeCount)
	for i := range out {
		out[i] = Mode(i)
	}
	return out
}

func (m Mode) valid() bool { return m >= 0 && m < modeCount }

func (m Mode) String() string {
	if !m.valid() {
		return fmt.Sprintf("Mode(%d)", int(m))
	}
	return modes[m].name
}

// Kind returns the annotation kind m creates.
func (m Mode) Kind() (annotation.Kind, bool) {
	if !m.valid() || !modes[m].creates {
		return 0, false
	}
	return modes[m].kind, true
}

// Shortcut returns the single key that selects m.
func (m Mode) Shortcut() rune {
	if !m.valid() {
		return 0
	}
	return modes[m].shortcut
}

// isDraw reports whether m is a drag-to-draw tool.
func (m Mode) isDraw() bool {
	switch m {
	case ModeHighlight, ModeRectangle, ModeLine, ModeArrow:
		return true
	}
	return false
}

// ParseMode resolves a tool name, an annotation kind name or a shortcut.
func ParseMode(s string) (Mode, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	switch name {
	case "move", "pointer":
		return ModeSelect, nil
	case "rect":
		return ModeRectangle, nil
	case "number", "num":
		return ModeCounter, nil
	}
	for i, info := range modes {
		if info.name == name || (len(name) == 1 && rune(name[0]) == info.shortcut) {
			return Mode(i), nil
		}
	}
	if len(name) == 1 && name[0] >= '1' && int(name[0]-'1') < len(numberedModes) {
		return numberedModes[name[0]-'1'], nil
	}
	return ModeSelect, fmt.Errorf("unknown tool %q", s)
}

func modeForShortcut(r rune) (Mode, bool) {
	if r >= '1' && int(r-'1') < len(numberedModes) {
		return numberedModes[r-'1'], true
	}
	for i, info := range modes {
		if info.shortcut == r {
			return Mode(i), true
		}
	}
	return ModeSelect, false
}
