package config

import (
	"fmt"
	"image"
	"image/color"
	"strconv"
	"strings"

	"golang.org/x/image/colornames"

	"github.com/example/shineymark/internal/editor"
	"github.com/example/shineymark/internal/export"
	"github.com/example/shineymark/internal/render"
	"github.com/example/shineymark/internal/textfont"
)

// Notify holds notification settings.
type Notify struct {
	Save    bool
	Copy    bool
	Failure bool
}

// Style holds the defaults new annotations are drawn with.
type Style struct {
	LineColor      color.NRGBA
	FillColor      color.NRGBA
	HighlightColor color.NRGBA
	Thickness      int
	Font           textfont.Spec
	CounterStart   int
}

// Export holds the drop shadow added to saved and copied images.
type Export struct {
	Shadow        bool
	ShadowRadius  int
	ShadowOffset  image.Point
	ShadowOpacity float64
}

// Config holds the application configuration.
type Config struct {
	SaveDir      string
	OutputFormat export.Format
	Style        Style
	Notify       Notify
	Export       Export
}

// New creates a new Config with defaults.
func New() *Config {
	ed := editor.DefaultConfig()
	sh := render.DefaultShadowOptions()
	return &Config{
		OutputFormat: export.FormatPNG,
		Style: Style{
			LineColor:      ed.Style.LineColor,
			FillColor:      ed.Style.FillColor,
			HighlightColor: ed.HighlightColor,
			Thickness:      ed.Style.Thickness,
			Font:           ed.Style.Font,
			CounterStart:   ed.CounterStart,
		},
		Export: Export{
			ShadowRadius:  sh.Radius,
			ShadowOffset:  sh.Offset,
			ShadowOpacity: sh.Opacity,
		},
	}
}

// EditorConfig returns the editing parameters derived from the style
// section. Everything else keeps its default.
func (c *Config) EditorConfig() editor.Config {
	ed := editor.DefaultConfig()
	ed.Style.LineColor = c.Style.LineColor
	ed.Style.FillColor = c.Style.FillColor
	ed.Style.Thickness = c.Style.Thickness
	ed.Style.Font = c.Style.Font
	ed.HighlightColor = c.Style.HighlightColor
	ed.CounterStart = c.Style.CounterStart
	return ed
}

// ShadowOptions returns the configured shadow, or a disabled one.
func (c *Config) ShadowOptions() render.ShadowOptions {
	if !c.Export.Shadow {
		return render.ShadowOptions{}
	}
	return render.ShadowOptions{
		Radius:  c.Export.ShadowRadius,
		Offset:  c.Export.ShadowOffset,
		Opacity: c.Export.ShadowOpacity,
	}
}

// String implements fmt.Stringer and returns the configuration in RC format.
func (c *Config) String() string {
	var sb strings.Builder

	if c.SaveDir != "" {
		fmt.Fprintf(&sb, "save_dir = %s\n", c.SaveDir)
	}
	if c.OutputFormat != "" {
		fmt.Fprintf(&sb, "output_format = %s\n", c.OutputFormat)
	}
	sb.WriteString("\n")

	sb.WriteString("[style]\n")
	fmt.Fprintf(&sb, "line_color = %s\n", FormatColor(c.Style.LineColor))
	fmt.Fprintf(&sb, "fill_color = %s\n", FormatColor(c.Style.FillColor))
	fmt.Fprintf(&sb, "highlight_color = %s\n", FormatColor(c.Style.HighlightColor))
	fmt.Fprintf(&sb, "thickness = %d\n", c.Style.Thickness)
	fmt.Fprintf(&sb, "font = %s\n", c.Style.Font.Family)
	fmt.Fprintf(&sb, "font_size = %s\n", strconv.FormatFloat(c.Style.Font.Size, 'g', -1, 64))
	fmt.Fprintf(&sb, "font_bold = %v\n", c.Style.Font.Bold)
	fmt.Fprintf(&sb, "font_italic = %v\n", c.Style.Font.Italic)
	fmt.Fprintf(&sb, "counter_start = %d\n", c.Style.CounterStart)
	sb.WriteString("\n")

	sb.WriteString("[notify]\n")
	fmt.Fprintf(&sb, "save = %v\n", c.Notify.Save)
	fmt.Fprintf(&sb, "copy = %v\n", c.Notify.Copy)
	fmt.Fprintf(&sb, "failure = %v\n", c.Notify.Failure)
	sb.WriteString("\n")

	sb.WriteString("[export]\n")
	fmt.Fprintf(&sb, "shadow = %v\n", c.Export.Shadow)
	fmt.Fprintf(&sb, "shadow_radius = %d\n", c.Export.ShadowRadius)
	fmt.Fprintf(&sb, "shadow_offset = %d,%d\n", c.Export.ShadowOffset.X, c.Export.ShadowOffset.Y)
	fmt.Fprintf(&sb, "shadow_opacity = %s\n", strconv.FormatFloat(c.Export.ShadowOpacity, 'g', -1, 64))

	return sb.String()
}

// ParseColor accepts #RRGGBB, #RRGGBBAA, an SVG color name, or "none".
func ParseColor(s string) (color.NRGBA, error) {
	spec := strings.ToLower(strings.TrimSpace(s))
	switch spec {
	case "":
		return color.NRGBA{}, fmt.Errorf("color cannot be empty")
	case "none", "transparent":
		return color.NRGBA{}, nil
	}
	if c, ok := colornames.Map[spec]; ok {
		return color.NRGBA{R: c.R, G: c.G, B: c.B, A: c.A}, nil
	}
	hex, ok := strings.CutPrefix(spec, "#")
	if !ok || (len(hex) != 6 && len(hex) != 8) {
		return color.NRGBA{}, fmt.Errorf("invalid color %q", s)
	}
	val, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("invalid color %q", s)
	}
	if len(hex) == 6 {
		val = val<<8 | 0xFF
	}
	return color.NRGBA{
		R: uint8(val >> 24),
		G: uint8(val >> 16),
		B: uint8(val >> 8),
		A: uint8(val),
	}, nil
}

// FormatColor is the inverse of ParseColor.
func FormatColor(c color.NRGBA) string {
	switch c.A {
	case 0:
		return "none"
	case 255:
		return fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B)
	}
	return fmt.Sprintf("#%02X%02X%02X%02X", c.R, c.G, c.B, c.A)
}
