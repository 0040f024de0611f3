package valuation

import "fmt"

// Thresholds are the inclusive upper P/CF bounds of each grade bucket.
type Thresholds struct {
	Undervalued  float64 `yaml:"undervalued" json:"undervalued"`
	Neutral      float64 `yaml:"neutral" json:"neutral"`
	SlightlyOver float64 `yaml:"slightly_over" json:"slightly_over"`
}

// Config parameterises classification, coloring and sizing. It is passed by
// value and never modified after construction.
type Config struct {
	PCFBounds      [2]float64 `yaml:"pcf_bounds" json:"pcf_bounds"`
	Thresholds     Thresholds `yaml:"thresholds" json:"thresholds"`
	TrendThreshold float64    `yaml:"trend_threshold" json:"trend_threshold"`
	TrendWindow    int        `yaml:"trend_window" json:"trend_window"`

	InvalidTileSize     float64 `yaml:"invalid_tile_size" json:"invalid_tile_size"`
	UndervaluationScale float64 `yaml:"undervaluation_scale" json:"undervaluation_scale"`

	StrongPickMaxPCF float64 `yaml:"strong_pick_max_pcf" json:"strong_pick_max_pcf"`
	PortfolioMaxPCF  float64 `yaml:"portfolio_max_pcf" json:"portfolio_max_pcf"`
	PortfolioSize    int     `yaml:"portfolio_size" json:"portfolio_size"`
}

// DefaultConfig returns the standard dashboard scale.
func DefaultConfig() Config {
	return Config{
		PCFBounds: [2]float64{0, 30},
		Thresholds: Thresholds{
			Undervalued:  10,
			Neutral:      15,
			SlightlyOver: 20,
		},
		TrendThreshold:      0.05,
		TrendWindow:         5,
		InvalidTileSize:     1000,
		UndervaluationScale: 1e6,
		StrongPickMaxPCF:    10,
		PortfolioMaxPCF:     12,
		PortfolioSize:       5,
	}
}

// Validate checks that bounds and thresholds are ordered and sizes positive.
func (c Config) Validate() error {
	if c.PCFBounds[0] < 0 || c.PCFBounds[1] <= c.PCFBounds[0] {
		return fmt.Errorf("pcf_bounds must satisfy 0 <= min < max, got %v", c.PCFBounds)
	}
	t := c.Thresholds
	if t.Undervalued <= 0 || t.Neutral <= t.Undervalued || t.SlightlyOver <= t.Neutral {
		return fmt.Errorf("thresholds must be strictly increasing and positive, got %+v", t)
	}
	if c.TrendThreshold < 0 {
		return fmt.Errorf("trend_threshold must not be negative, got %v", c.TrendThreshold)
	}
	if c.TrendWindow < 2 {
		return fmt.Errorf("trend_window must be at least 2, got %d", c.TrendWindow)
	}
	if c.InvalidTileSize <= 0 || c.UndervaluationScale <= 0 {
		return fmt.Errorf("tile sizes must be positive")
	}
	if c.StrongPickMaxPCF <= 0 || c.PortfolioMaxPCF <= 0 || c.PortfolioSize <= 0 {
		return fmt.Errorf("screen limits must be positive")
	}
	return nil
}

// Grade is the display bucket of a P/CF ratio.
type Grade string

const (
	GradeUndervalued        Grade = "Undervalued"
	GradeNeutral            Grade = "Neutral"
	GradeSlightlyOvervalued Grade = "Slightly overvalued"
	GradeOvervalued         Grade = "Overvalued"
	GradeNotApplicable      Grade = "Not applicable"
)

// Grade buckets a P/CF ratio. Upper bounds are inclusive.
func (c Config) Grade(pcf Optional) Grade {
	v, ok := pcf.Get()
	if !ok || v <= 0 {
		return GradeNotApplicable
	}
	switch {
	case v <= c.Thresholds.Undervalued:
		return GradeUndervalued
	case v <= c.Thresholds.Neutral:
		return GradeNeutral
	case v <= c.Thresholds.SlightlyOver:
		return GradeSlightlyOvervalued
	default:
		return GradeOvervalued
	}
}
