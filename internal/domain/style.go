package domain

import (
	"fmt"
	"math"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// Stroke width bounds in pixels.
const (
	MinWidth = 1.0
	MaxWidth = 8.0
)

// RGB is an 8-bit color.
type RGB struct {
	R, G, B uint8
}

// Hex formats the color as "#rrggbb".
func (c RGB) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// Style is the visual encoding of one feature for one frame.
type Style struct {
	Color RGB
	Width float64
}

// NeutralColor marks dry channels and loads without flow data.
var NeutralColor = RGB{R: 136, G: 136, B: 136}

// NeutralStyle is drawn for every value <= 0.
var NeutralStyle = Style{Color: NeutralColor, Width: MinWidth}

type rampStop struct {
	pos   float64
	color colorful.Color
}

// flowRamp runs blue, cyan, green, amber, red.
var flowRamp = []rampStop{
	{0.00, rgb(0, 0, 255)},
	{0.25, rgb(0, 255, 255)},
	{0.50, rgb(0, 255, 0)},
	{0.75, rgb(255, 191, 0)},
	{1.00, rgb(255, 0, 0)},
}

func rgb(r, g, b uint8) colorful.Color {
	return colorful.Color{R: float64(r) / 255, G: float64(g) / 255, B: float64(b) / 255}
}

// StyleFor maps a flow value onto a color and stroke width using the load's
// flow range. It is pure and safe to call once per feature per frame.
func StyleFor(value float64, r FlowRange) Style {
	if value <= 0 || math.IsNaN(value) || r.Empty() {
		return NeutralStyle
	}
	n := normalizeFlow(value, r)
	return Style{
		Color: rampColor(n),
		Width: MinWidth + n*(MaxWidth-MinWidth),
	}
}

// normalizeFlow places value on a log scale between the range ends. A range
// whose ends coincide puts every positive value at the top of the scale.
func normalizeFlow(value float64, r FlowRange) float64 {
	lo := math.Log1p(r.Min)
	hi := math.Log1p(r.Max)
	if hi == lo {
		return 1
	}
	return (math.Log1p(value) - lo) / (hi - lo)
}

// rampColor interpolates between the two stops bracketing n. Values that fall
// outside every bracket use the first one.
func rampColor(n float64) RGB {
	lo, hi := flowRamp[0], flowRamp[1]
	for i := 0; i < len(flowRamp)-1; i++ {
		if n >= flowRamp[i].pos && n <= flowRamp[i+1].pos {
			lo, hi = flowRamp[i], flowRamp[i+1]
			break
		}
	}
	frac := (n - lo.pos) / (hi.pos - lo.pos)
	r, g, b := lo.color.BlendRgb(hi.color, frac).Clamped().RGB255()
	return RGB{R: r, G: g, B: b}
}
