// Package treemap encodes enriched valuation records as treemap tiles: a
// color on a fixed P/CF scale, a size under one of two sizing policies, and
// the label and hover text shown for each tile.
package treemap

import (
	"fmt"
	"math"
	"strconv"

	"valuemap/internal/valuation"
)

// GreyColor is used for securities without a valid P/CF.
const GreyColor = "#b0b0b0"

// Stop is one anchor of the color scale. Position is in [0, 1].
type Stop struct {
	Position float64 `json:"position"`
	Color    string  `json:"color"`
}

// Colorscale runs from green (cheap) through blue (neutral) to red (expensive).
var Colorscale = []Stop{
	{0.0, "#1a9641"},
	{0.2, "#66bd63"},
	{0.35, "#a6d96a"},
	{0.45, "#74a9cf"},
	{0.5, "#2166ac"},
	{0.55, "#9970ab"},
	{0.7, "#e08070"},
	{0.85, "#d73027"},
	{1.0, "#a50026"},
}

type rgb struct{ r, g, b float64 }

var scaleRGB = mustParseStops(Colorscale)

func mustParseStops(stops []Stop) []rgb {
	out := make([]rgb, len(stops))
	for i, s := range stops {
		c, err := parseHex(s.Color)
		if err != nil {
			panic(err)
		}
		out[i] = c
	}
	return out
}

func parseHex(s string) (rgb, error) {
	if len(s) != 7 || s[0] != '#' {
		return rgb{}, fmt.Errorf("invalid hex color %q", s)
	}
	v, err := strconv.ParseUint(s[1:], 16, 32)
	if err != nil {
		return rgb{}, fmt.Errorf("invalid hex color %q: %w", s, err)
	}
	return rgb{r: float64(v >> 16 & 0xff), g: float64(v >> 8 & 0xff), b: float64(v & 0xff)}, nil
}

func (c rgb) hex() string {
	return fmt.Sprintf("#%02x%02x%02x", uint8(math.Round(c.r)), uint8(math.Round(c.g)), uint8(math.Round(c.b)))
}

// Sample returns the scale color at position t, clamped to [0, 1]. Colors
// between stops are interpolated linearly per RGB channel.
func Sample(t float64) string {
	if math.IsNaN(t) || t <= Colorscale[0].Position {
		return Colorscale[0].Color
	}
	last := len(Colorscale) - 1
	if t >= Colorscale[last].Position {
		return Colorscale[last].Color
	}
	for i := 1; i <= last; i++ {
		hi := Colorscale[i].Position
		if t > hi {
			continue
		}
		lo := Colorscale[i-1].Position
		f := (t - lo) / (hi - lo)
		a, b := scaleRGB[i-1], scaleRGB[i]
		return rgb{
			r: a.r + f*(b.r-a.r),
			g: a.g + f*(b.g-a.g),
			b: a.b + f*(b.b-a.b),
		}.hex()
	}
	return Colorscale[last].Color
}

// ColorFor maps a P/CF onto the scale using cfg.PCFBounds. Unvalued ratios
// are grey.
func ColorFor(cfg valuation.Config, pcf valuation.Optional) string {
	v, ok := pcf.Get()
	if !ok || v <= 0 {
		return GreyColor
	}
	lo, hi := cfg.PCFBounds[0], cfg.PCFBounds[1]
	return Sample((v - lo) / (hi - lo))
}

// Tick is a labelled colorbar position in P/CF units.
type Tick struct {
	Value float64 `json:"value"`
	Text  string  `json:"text"`
}

// Colorbar describes the legend drawn next to the treemap.
type Colorbar struct {
	Title string  `json:"title"`
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
	Stops []Stop  `json:"stops"`
	Ticks []Tick  `json:"ticks"`
}

// NewColorbar builds the legend for cfg's bounds.
func NewColorbar(cfg valuation.Config) Colorbar {
	return Colorbar{
		Title: "P/CF",
		Min:   cfg.PCFBounds[0],
		Max:   cfg.PCFBounds[1],
		Stops: Colorscale,
		Ticks: []Tick{
			{5, "5x Undervalued"},
			{10, "10x"},
			{15, "15x Neutral"},
			{20, "20x"},
			{25, "25x Overvalued"},
		},
	}
}
