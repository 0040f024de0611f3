package treemap

import (
	"fmt"
	"html"
	"strings"

	"valuemap/internal/valuation"
)

// SizeMode selects how tile area is derived.
type SizeMode string

const (
	// ByMarketCap sizes tiles by market capitalization.
	ByMarketCap SizeMode = "market_cap"
	// ByUndervaluation sizes tiles by inverse P/CF so cheap companies dominate.
	ByUndervaluation SizeMode = "undervaluation"
)

// ParseSizeMode resolves a size mode name. An empty name selects ByUndervaluation.
func ParseSizeMode(s string) (SizeMode, bool) {
	switch SizeMode(strings.ToLower(strings.TrimSpace(s))) {
	case "", ByUndervaluation:
		return ByUndervaluation, true
	case ByMarketCap:
		return ByMarketCap, true
	default:
		return "", false
	}
}

const hoverRule = "─────────────────"

// Tile is the renderable encoding of one record.
type Tile struct {
	Ticker    string             `json:"ticker"`
	Label     string             `json:"label"`
	Color     string             `json:"color"`
	Size      float64            `json:"size"`
	HoverText string             `json:"hover_text"`
	Grade     valuation.Grade    `json:"grade"`
	PCF       valuation.Optional `json:"pcf"`
}

// Encoder maps enriched records to tiles.
type Encoder struct {
	cfg valuation.Config
}

// NewEncoder creates an Encoder for the given scale.
func NewEncoder(cfg valuation.Config) *Encoder {
	return &Encoder{cfg: cfg}
}

// Encode returns the tile for r, or false when hideInvalid is set and r has
// no valid P/CF.
func (e *Encoder) Encode(r valuation.EnrichedRecord, mode SizeMode, hideInvalid bool) (Tile, bool) {
	valued := r.Valued()
	if hideInvalid && !valued {
		return Tile{}, false
	}

	grade := e.cfg.Grade(r.PCF)
	ticker := displayTicker(r)

	t := Tile{
		Ticker:    ticker,
		Color:     ColorFor(e.cfg, r.PCF),
		Size:      e.size(r, mode),
		HoverText: hoverText(r, ticker),
		Grade:     grade,
		PCF:       r.PCF,
	}
	if valued {
		t.Label = fmt.Sprintf("<b>%s</b><br>%s %s", html.EscapeString(ticker), r.PCFDisplay, grade)
	} else {
		t.Label = fmt.Sprintf("<b>%s</b><br>N/A", html.EscapeString(ticker))
	}
	return t, true
}

// EncodeAll encodes records in order, dropping omitted ones.
func (e *Encoder) EncodeAll(records []valuation.EnrichedRecord, mode SizeMode, hideInvalid bool) []Tile {
	tiles := make([]Tile, 0, len(records))
	for _, r := range records {
		if t, ok := e.Encode(r, mode, hideInvalid); ok {
			tiles = append(tiles, t)
		}
	}
	return tiles
}

func (e *Encoder) size(r valuation.EnrichedRecord, mode SizeMode) float64 {
	pcf, ok := r.PCF.Get()
	if !ok || pcf <= 0 {
		return e.cfg.InvalidTileSize
	}
	if mode == ByMarketCap {
		return r.MarketCap
	}
	return e.cfg.UndervaluationScale / pcf
}

func displayTicker(r valuation.EnrichedRecord) string {
	if r.DisplayTicker != "" {
		return r.DisplayTicker
	}
	return r.TickerSymbol
}

func hoverText(r valuation.EnrichedRecord, ticker string) string {
	pcfLine := fmt.Sprintf("P/CF: %s (%s)", r.PCFDisplay, r.CFMethod)
	if !r.Valued() {
		pcfLine = "P/CF: N/A or negative (loss-making or missing data)"
	}

	lines := []string{
		fmt.Sprintf("<b>%s</b> (%s)", html.EscapeString(r.Name), html.EscapeString(ticker)),
		hoverRule,
		"Price: " + FormatPrice(r.Price, r.Currency),
		"Market cap: " + FormatMarketCap(r.MarketCap),
		hoverRule,
		pcfLine,
		hoverRule,
		"5Y revenue: " + r.RevenueTrend.Display(),
		"5Y CF: " + r.CFTrend.Display(),
	}
	return strings.Join(lines, "<br>")
}
