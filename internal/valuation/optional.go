// Package valuation derives price-to-cash-flow valuations and growth trends
// from raw per-security financial facts.
//
// The transformations here are pure and deterministic. Missing or degenerate
// inputs resolve to an absent ratio or an Unknown trend instead of failing.
package valuation

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
)

// Optional is a float64 that may be absent. Absent and zero are distinct
// states; NaN and ±Inf are never stored and collapse to absent.
type Optional struct {
	value   float64
	present bool
}

// Some returns a present Optional, or an absent one when v is not finite.
func Some(v float64) Optional {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return Optional{}
	}
	return Optional{value: v, present: true}
}

// None returns an absent Optional.
func None() Optional { return Optional{} }

// Get returns the value and whether it is present.
func (o Optional) Get() (float64, bool) { return o.value, o.present }

// Present reports whether a value is set.
func (o Optional) Present() bool { return o.present }

// OrElse returns the value, or def when absent.
func (o Optional) OrElse(def float64) float64 {
	if !o.present {
		return def
	}
	return o.value
}

// Positive reports whether the value is present and strictly greater than zero.
func (o Optional) Positive() bool { return o.present && o.value > 0 }

// MarshalJSON encodes an absent value as null.
func (o Optional) MarshalJSON() ([]byte, error) {
	if !o.present {
		return []byte("null"), nil
	}
	return strconv.AppendFloat(nil, o.value, 'g', -1, 64), nil
}

// UnmarshalJSON decodes null as absent.
func (o *Optional) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*o = None()
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*o = Some(v)
	return nil
}
