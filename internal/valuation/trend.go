package valuation

import (
	"math"
	"sort"
)

// TrendClassifier labels a metric's direction from a multi-year history,
// falling back to a single-period growth rate when the history is too short.
type TrendClassifier struct {
	threshold float64
	window    int
}

// NewTrendClassifier creates a classifier using cfg's threshold and window.
func NewTrendClassifier(cfg Config) *TrendClassifier {
	return &TrendClassifier{threshold: cfg.TrendThreshold, window: cfg.TrendWindow}
}

// Classify returns the trend of history, or of fallbackGrowthRate when the
// history has fewer than two usable points.
func (c *TrendClassifier) Classify(history History, fallbackGrowthRate Optional) Trend {
	if trend, ok := c.fromHistory(history); ok {
		return trend
	}
	return c.fromGrowthRate(fallbackGrowthRate)
}

// fromHistory fits an OLS line of value against positional index over the
// most recent window years. ok is false when no fit is possible.
func (c *TrendClassifier) fromHistory(history History) (Trend, bool) {
	if len(history) < 2 {
		return "", false
	}

	years := make([]int, 0, len(history))
	for y := range history {
		years = append(years, y)
	}
	sort.Ints(years)
	if len(years) > c.window {
		years = years[len(years)-c.window:]
	}

	values := make([]float64, 0, len(years))
	for _, y := range years {
		v := history[y]
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		values = append(values, v)
	}
	if len(values) < 2 {
		return "", false
	}

	slope, ok := olsSlope(values)
	if !ok {
		return "", false
	}

	var sumAbs float64
	for _, v := range values {
		sumAbs += math.Abs(v)
	}
	meanAbs := sumAbs / float64(len(values))
	if meanAbs == 0 {
		return TrendFlat, true
	}
	return c.bucket(slope / meanAbs), true
}

func (c *TrendClassifier) fromGrowthRate(rate Optional) Trend {
	r, ok := rate.Get()
	if !ok {
		return TrendUnknown
	}
	return c.bucket(r)
}

func (c *TrendClassifier) bucket(ratio float64) Trend {
	switch {
	case ratio > c.threshold:
		return TrendUp
	case ratio < -c.threshold:
		return TrendDown
	default:
		return TrendFlat
	}
}

// olsSlope returns the least-squares slope of values against 0..n-1.
func olsSlope(values []float64) (float64, bool) {
	n := float64(len(values))
	meanX := (n - 1) / 2

	var meanY float64
	for _, v := range values {
		meanY += v
	}
	meanY /= n

	var sxy, sxx float64
	for i, v := range values {
		dx := float64(i) - meanX
		sxy += dx * (v - meanY)
		sxx += dx * dx
	}
	if sxx == 0 {
		return 0, false
	}
	slope := sxy / sxx
	if math.IsNaN(slope) || math.IsInf(slope, 0) {
		return 0, false
	}
	return slope, true
}
