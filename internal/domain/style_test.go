package domain

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStyleFor_DryValuesAreNeutral(t *testing.T) {
	ranges := []FlowRange{{Min: 1, Max: 100}, {Min: 5, Max: 5}, EmptyFlowRange()}
	for _, r := range ranges {
		for _, v := range []float64{0, -0.5, -1000} {
			s := StyleFor(v, r)
			assert.Equal(t, NeutralColor, s.Color, "value %g range %+v", v, r)
			assert.Equal(t, 1.0, s.Width, "value %g range %+v", v, r)
		}
	}
}

func TestStyleFor_EmptyRangeIsNeutral(t *testing.T) {
	assert.Equal(t, NeutralStyle, StyleFor(42, EmptyFlowRange()))
}

func TestStyleFor_NaNIsNeutral(t *testing.T) {
	assert.Equal(t, NeutralStyle, StyleFor(math.NaN(), FlowRange{Min: 1, Max: 10}))
}

func TestStyleFor_RangeEnds(t *testing.T) {
	r := FlowRange{Min: 1, Max: 100}

	low := StyleFor(1, r)
	assert.Equal(t, RGB{R: 0, G: 0, B: 255}, low.Color)
	assert.InDelta(t, 1.0, low.Width, 1e-9)

	high := StyleFor(100, r)
	assert.Equal(t, RGB{R: 255, G: 0, B: 0}, high.Color)
	assert.InDelta(t, 8.0, high.Width, 1e-9)
}

func TestStyleFor_Monotonic(t *testing.T) {
	r := FlowRange{Min: 1, Max: 100}
	assert.Less(t, StyleFor(10, r).Width, StyleFor(90, r).Width)

	prev := 0.0
	for v := 1.0; v <= 100; v += 3 {
		w := StyleFor(v, r).Width
		assert.Greater(t, w, prev, "width must grow with flow at %g", v)
		prev = w
	}
}

func TestStyleFor_DegenerateRange(t *testing.T) {
	s := StyleFor(5, FlowRange{Min: 5, Max: 5})
	assert.Equal(t, RGB{R: 255, G: 0, B: 0}, s.Color)
	assert.Equal(t, 8.0, s.Width)
}

func TestRampColor_Stops(t *testing.T) {
	cases := []struct {
		n    float64
		want RGB
	}{
		{0, RGB{0, 0, 255}},
		{0.25, RGB{0, 255, 255}},
		{0.5, RGB{0, 255, 0}},
		{0.75, RGB{255, 191, 0}},
		{1, RGB{255, 0, 0}},
		{0.125, RGB{0, 128, 255}},
		{0.8125, RGB{255, 143, 0}},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, rampColor(tc.n), "n=%g", tc.n)
	}
}

func TestRampColor_OutOfRangeUsesFirstBracket(t *testing.T) {
	assert.Equal(t, RGB{0, 0, 255}, rampColor(-1e-12))
	// Past the top the first bracket extrapolates and clamps.
	assert.Equal(t, RGB{0, 255, 255}, rampColor(1.5))
}

func TestRGB_Hex(t *testing.T) {
	assert.Equal(t, "#ffbf00", RGB{255, 191, 0}.Hex())
	assert.Equal(t, "#888888", NeutralColor.Hex())
}
