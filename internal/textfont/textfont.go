// Package textfont maps logical font specifications onto rasterisable faces
// and provides the text measurement and layout helpers shared by the text
// editor and the compositor.
package textfont

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"log"
	"strings"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gobolditalic"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/gomonobold"
	"golang.org/x/image/font/gofont/gomonobolditalic"
	"golang.org/x/image/font/gofont/gomonoitalic"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

// Family names a font family independent of any platform font handle.
type Family int

const (
	FamilySans Family = iota
	FamilyMono
	// FamilyFixed is the 7x13 bitmap face. It ignores size and style.
	FamilyFixed
)

var familyNames = [...]string{
	FamilySans:  "sans",
	FamilyMono:  "mono",
	FamilyFixed: "fixed",
}

func (f Family) String() string {
	if f < 0 || int(f) >= len(familyNames) {
		return fmt.Sprintf("Family(%d)", int(f))
	}
	return familyNames[f]
}

// ParseFamily resolves a family name such as "sans" or "mono".
func ParseFamily(s string) (Family, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	switch name {
	case "", "sans", "regular", "go":
		return FamilySans, nil
	case "mono", "monospace":
		return FamilyMono, nil
	}
	for i, n := range familyNames {
		if n == name {
			return Family(i), nil
		}
	}
	return FamilySans, fmt.Errorf("unknown font family %q", s)
}

// DefaultSize is the point size used when a Spec leaves Size unset.
const DefaultSize = 16

// Spec is a logical font description.
type Spec struct {
	Family Family
	Size   float64
	Bold   bool
	Italic bool
}

// DefaultSpec returns the font used for new text annotations.
func DefaultSpec() Spec {
	return Spec{Family: FamilySans, Size: DefaultSize}
}

func (s Spec) normalized() Spec {
	if s.Size <= 0 {
		s.Size = DefaultSize
	}
	if s.Family == FamilyFixed {
		return Spec{Family: FamilyFixed, Size: 13}
	}
	return s
}

func (s Spec) String() string {
	s = s.normalized()
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s %g", s.Family, s.Size)
	if s.Bold {
		sb.WriteString(" bold")
	}
	if s.Italic {
		sb.WriteString(" italic")
	}
	return sb.String()
}

var (
	parsedMu sync.Mutex
	parsed   = map[string]*opentype.Font{}

	faces    sync.Map // map[Spec]*sharedFace
	warnOnce sync.Once
)

func ttfFor(s Spec) (string, []byte) {
	if s.Family == FamilyMono {
		switch {
		case s.Bold && s.Italic:
			return "gomonobolditalic", gomonobolditalic.TTF
		case s.Bold:
			return "gomonobold", gomonobold.TTF
		case s.Italic:
			return "gomonoitalic", gomonoitalic.TTF
		}
		return "gomono", gomono.TTF
	}
	switch {
	case s.Bold && s.Italic:
		return "gobolditalic", gobolditalic.TTF
	case s.Bold:
		return "gobold", gobold.TTF
	case s.Italic:
		return "goitalic", goitalic.TTF
	}
	return "goregular", goregular.TTF
}

func parseTTF(name string, data []byte) (*opentype.Font, error) {
	parsedMu.Lock()
	defer parsedMu.Unlock()
	if f, ok := parsed[name]; ok {
		return f, nil
	}
	f, err := opentype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", name, err)
	}
	parsed[name] = f
	return f, nil
}

// sharedFace guards a cached face. Faces keep glyph buffers between calls, so
// every use must hold mu.
type sharedFace struct {
	mu   sync.Mutex
	face font.Face
}

func (f *sharedFace) with(fn func(font.Face)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	fn(f.face)
}

var fixedFace = &sharedFace{face: basicfont.Face7x13}

// lookup returns the cached face for s. Faces that fail to load fall back to
// the bitmap face so text is always drawable.
func lookup(s Spec) *sharedFace {
	s = s.normalized()
	if s.Family == FamilyFixed {
		return fixedFace
	}
	if face, ok := faces.Load(s); ok {
		return face.(*sharedFace)
	}
	name, data := ttfFor(s)
	f, err := parseTTF(name, data)
	if err != nil {
		warnOnce.Do(func() { log.Printf("font: %v", err) })
		return fixedFace
	}
	face, err := opentype.NewFace(f, &opentype.FaceOptions{Size: s.Size, DPI: 72, Hinting: font.HintingFull})
	if err != nil {
		warnOnce.Do(func() { log.Printf("font face: %v", err) })
		return fixedFace
	}
	actual, _ := faces.LoadOrStore(s, &sharedFace{face: face})
	return actual.(*sharedFace)
}

// Advance returns the pixel width of a single line of text.
func Advance(s Spec, text string) (width int) {
	if text == "" {
		return 0
	}
	lookup(s).with(func(face font.Face) {
		d := &font.Drawer{Face: face}
		width = d.MeasureString(text).Ceil()
	})
	return width
}

func metrics(s Spec) (m font.Metrics) {
	lookup(s).with(func(face font.Face) { m = face.Metrics() })
	return m
}

// LineHeight returns ascent plus descent for s.
func LineHeight(s Spec) int {
	m := metrics(s)
	return m.Ascent.Ceil() + m.Descent.Ceil()
}

// Ascent returns the distance from the top of a line to its baseline.
func Ascent(s Spec) int {
	return metrics(s).Ascent.Ceil()
}

// Measure returns the extent of text, which may contain hard line breaks.
// baseline is the offset from the top to the first line's baseline.
func Measure(s Spec, text string) (width, height, baseline int) {
	lines := strings.Split(text, "\n")
	for _, l := range lines {
		if w := Advance(s, l); w > width {
			width = w
		}
	}
	height = LineHeight(s) * len(lines)
	baseline = Ascent(s)
	return
}

// Line is one laid out line. Start and End are rune offsets into the source
// text; the separator consumed by a break (a space or newline) sits at End.
type Line struct {
	Text  string
	Start int
	End   int
}

// Wrap breaks text into lines no wider than maxWidth, preferring breaks at
// spaces and splitting words that do not fit on their own. A maxWidth of
// zero or less only honours hard line breaks.
func Wrap(s Spec, text string, maxWidth int) []Line {
	runes := []rune(text)
	var lines []Line
	emit := func(start, end int) {
		lines = append(lines, Line{Text: string(runes[start:end]), Start: start, End: end})
	}
	p := 0
	for p <= len(runes) {
		end := p
		for end < len(runes) && runes[end] != '\n' {
			end++
		}
		lineStart := p
		lastSpace := -1
		if maxWidth > 0 {
			for i := p; i < end; i++ {
				if runes[i] == ' ' {
					lastSpace = i
				}
				if i == lineStart || Advance(s, string(runes[lineStart:i+1])) <= maxWidth {
					continue
				}
				if lastSpace >= lineStart {
					emit(lineStart, lastSpace)
					lineStart = lastSpace + 1
				} else {
					emit(lineStart, i)
					lineStart = i
				}
				lastSpace = -1
			}
		}
		emit(lineStart, end)
		p = end + 1
	}
	return lines
}

// Draw renders a single line of text with its top-left corner at (x, y).
// Drawing is clipped to dst's bounds.
func Draw(dst draw.Image, x, y int, text string, col color.Color, s Spec) {
	if text == "" {
		return
	}
	lookup(s).with(func(face font.Face) {
		d := &font.Drawer{
			Dst:  dst,
			Src:  image.NewUniform(col),
			Face: face,
			Dot:  fixed.P(x, y+face.Metrics().Ascent.Ceil()),
		}
		d.DrawString(text)
	})
}
