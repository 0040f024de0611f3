package treemap

import (
	"testing"

	"valuemap/internal/valuation"
)

func TestSample(t *testing.T) {
	tests := []struct {
		name string
		t    float64
		want string
	}{
		{name: "start", t: 0, want: "#1a9641"},
		{name: "below_start_clamped", t: -1, want: "#1a9641"},
		{name: "neutral_stop", t: 0.5, want: "#2166ac"},
		{name: "end", t: 1, want: "#a50026"},
		{name: "above_end_clamped", t: 3, want: "#a50026"},
		// halfway between #1a9641 and #66bd63
		{name: "interpolated", t: 0.1, want: "#40aa52"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Sample(tt.t); got != tt.want {
				t.Errorf("expected %s, got %s", tt.want, got)
			}
		})
	}
}

func TestSample_HitsEveryStop(t *testing.T) {
	for _, s := range Colorscale {
		if got := Sample(s.Position); got != s.Color {
			t.Errorf("position %v: expected %s, got %s", s.Position, s.Color, got)
		}
	}
}

func TestColorFor(t *testing.T) {
	cfg := valuation.DefaultConfig()

	t.Run("unvalued_is_grey", func(t *testing.T) {
		if got := ColorFor(cfg, valuation.None()); got != GreyColor {
			t.Errorf("expected grey, got %s", got)
		}
	})

	t.Run("neutral_is_blue", func(t *testing.T) {
		if got := ColorFor(cfg, valuation.Some(15)); got != "#2166ac" {
			t.Errorf("expected #2166ac, got %s", got)
		}
	})

	t.Run("expensive_clamps_to_red", func(t *testing.T) {
		if got := ColorFor(cfg, valuation.Some(90)); got != "#a50026" {
			t.Errorf("expected #a50026, got %s", got)
		}
	})

	t.Run("custom_bounds", func(t *testing.T) {
		cfg := cfg
		cfg.PCFBounds = [2]float64{0, 60}
		if got := ColorFor(cfg, valuation.Some(30)); got != "#2166ac" {
			t.Errorf("expected #2166ac, got %s", got)
		}
	})
}

func TestFormatPrice(t *testing.T) {
	tests := []struct {
		price    float64
		currency string
		want     string
	}{
		{71500, "KRW", "KRW 71,500"},
		{1234.5, "usd", "USD 1,234.50"},
		{12.5, "", "12.50"},
		{0, "USD", "N/A"},
	}
	for _, tt := range tests {
		if got := FormatPrice(tt.price, tt.currency); got != tt.want {
			t.Errorf("FormatPrice(%v, %q): expected %q, got %q", tt.price, tt.currency, tt.want, got)
		}
	}
}

func TestFormatMarketCap(t *testing.T) {
	tests := []struct {
		mc   float64
		want string
	}{
		{2.5e12, "$2.5T"},
		{3.21e9, "$3.2B"},
		{4.5e6, "$4.5M"},
		{-1, "N/A"},
	}
	for _, tt := range tests {
		if got := FormatMarketCap(tt.mc); got != tt.want {
			t.Errorf("FormatMarketCap(%v): expected %q, got %q", tt.mc, tt.want, got)
		}
	}
}
