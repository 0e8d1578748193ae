package editor

import (
	"image/color"
	"time"

	"github.com/example/shineymark/internal/annotation"
	"github.com/example/shineymark/internal/render"
)

// Config holds the editing parameters that would otherwise be global
// state: the style new annotations receive, the counter start and the
// thresholds that separate clicks from drags.
type Config struct {
	Style annotation.Style
	// HighlightColor fills new highlights. Opaque colours are drawn at a
	// fixed translucency.
	HighlightColor color.NRGBA
	CounterStart   int

	LineTolerance  int
	ShapeTolerance int

	// DrawThreshold is the extent a drag must exceed on either axis to
	// create a shape.
	DrawThreshold int
	// TextRegionThreshold is the drag extent that turns a text click into a
	// wrapped region.
	TextRegionThreshold int
	MinCropSize         int

	DoubleClickInterval time.Duration
	DoubleClickDistance int
	NudgeStep           int
	NudgeStepLarge      int
}

// DefaultConfig returns the stock editing parameters.
func DefaultConfig() Config {
	return Config{
		Style:               annotation.DefaultStyle(),
		HighlightColor:      color.NRGBA{R: 255, G: 255, A: 96},
		CounterStart:        1,
		LineTolerance:       annotation.DefaultLineTolerance,
		ShapeTolerance:      annotation.DefaultShapeTolerance,
		DrawThreshold:       2,
		TextRegionThreshold: 10,
		MinCropSize:         render.MinCropSize,
		DoubleClickInterval: 400 * time.Millisecond,
		DoubleClickDistance: 4,
		NudgeStep:           1,
		NudgeStepLarge:      10,
	}
}

// normalized fills zero fields from DefaultConfig.
func (c Config) normalized() Config {
	d := DefaultConfig()
	if c.Style.Thickness < 1 {
		c.Style.Thickness = d.Style.Thickness
	}
	if c.Style.LineColor.A == 0 && c.Style.FillColor.A == 0 {
		c.Style.LineColor = d.Style.LineColor
	}
	if c.HighlightColor.A == 0 {
		c.HighlightColor = d.HighlightColor
	}
	if c.CounterStart < 1 {
		c.CounterStart = d.CounterStart
	}
	if c.LineTolerance <= 0 {
		c.LineTolerance = d.LineTolerance
	}
	if c.ShapeTolerance <= 0 {
		c.ShapeTolerance = d.ShapeTolerance
	}
	if c.DrawThreshold <= 0 {
		c.DrawThreshold = d.DrawThreshold
	}
	if c.TextRegionThreshold <= 0 {
		c.TextRegionThreshold = d.TextRegionThreshold
	}
	if c.MinCropSize < render.MinCropSize {
		c.MinCropSize = render.MinCropSize
	}
	if c.DoubleClickInterval <= 0 {
		c.DoubleClickInterval = d.DoubleClickInterval
	}
	if c.DoubleClickDistance <= 0 {
		c.DoubleClickDistance = d.DoubleClickDistance
	}
	if c.NudgeStep <= 0 {
		c.NudgeStep = d.NudgeStep
	}
	if c.NudgeStepLarge <= 0 {
		c.NudgeStepLarge = d.NudgeStepLarge
	}
	return c
}
