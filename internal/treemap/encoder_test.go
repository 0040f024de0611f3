package treemap

import (
	"math"
	"strings"
	"testing"

	"valuemap/internal/valuation"
)

func enriched(ticker string, marketCap, ocf float64) valuation.EnrichedRecord {
	e := valuation.NewEnricher(valuation.DefaultConfig())
	return e.EnrichRecord(valuation.SecurityRecord{
		TickerSymbol:         ticker,
		Name:                 ticker + " Corp",
		Sector:               "Technology",
		Price:                100,
		Currency:             "USD",
		MarketCap:            marketCap,
		TTMOperatingCashFlow: valuation.Some(ocf),
	})
}

func TestEncode_HideInvalid(t *testing.T) {
	enc := NewEncoder(valuation.DefaultConfig())
	records := []valuation.EnrichedRecord{
		enriched("GOOD", 1e10, 1e9),
		enriched("LOSS", 1e10, -1e9),
	}

	t.Run("hidden", func(t *testing.T) {
		tiles := enc.EncodeAll(records, ByMarketCap, true)
		if len(tiles) != 1 {
			t.Fatalf("expected 1 tile, got %d", len(tiles))
		}
		if tiles[0].Ticker != "GOOD" {
			t.Errorf("expected GOOD, got %s", tiles[0].Ticker)
		}
	})

	t.Run("shown", func(t *testing.T) {
		tiles := enc.EncodeAll(records, ByMarketCap, false)
		if len(tiles) != 2 {
			t.Fatalf("expected 2 tiles, got %d", len(tiles))
		}
		invalid := tiles[1]
		if invalid.Color != GreyColor {
			t.Errorf("expected grey, got %s", invalid.Color)
		}
		if invalid.Size != 1000 {
			t.Errorf("expected invalid tile size 1000, got %v", invalid.Size)
		}
		if invalid.Label != "<b>LOSS</b><br>N/A" {
			t.Errorf("unexpected label %q", invalid.Label)
		}
		if invalid.Grade != valuation.GradeNotApplicable {
			t.Errorf("expected Not applicable, got %s", invalid.Grade)
		}
	})
}

func TestEncode_Sizes(t *testing.T) {
	enc := NewEncoder(valuation.DefaultConfig())
	cheap := enriched("CHEAP", 5e9, 1e9)
	dear := enriched("DEAR", 2e10, 1e9)

	t.Run("undervaluation_is_inverse", func(t *testing.T) {
		a, _ := enc.Encode(cheap, ByUndervaluation, true)
		b, _ := enc.Encode(dear, ByUndervaluation, true)
		if math.Abs(a.Size/b.Size-4) > 1e-9 {
			t.Errorf("expected 4:1 size ratio, got %v / %v", a.Size, b.Size)
		}
		if math.Abs(a.Size-200000) > 1e-6 {
			t.Errorf("expected size 200000, got %v", a.Size)
		}
	})

	t.Run("market_cap", func(t *testing.T) {
		a, _ := enc.Encode(cheap, ByMarketCap, true)
		b, _ := enc.Encode(dear, ByMarketCap, true)
		if a.Size != 5e9 || b.Size != 2e10 {
			t.Errorf("expected market cap sizes, got %v / %v", a.Size, b.Size)
		}
	})
}

func TestEncode_LabelAndHover(t *testing.T) {
	enc := NewEncoder(valuation.DefaultConfig())
	r := enriched("AAPL", 1e11, 1e10)
	r.DisplayTicker = "AAPL"

	tile, ok := enc.Encode(r, ByUndervaluation, true)
	if !ok {
		t.Fatal("expected tile")
	}
	if tile.Label != "<b>AAPL</b><br>10.0x Undervalued" {
		t.Errorf("unexpected label %q", tile.Label)
	}
	for _, want := range []string{"<b>AAPL Corp</b> (AAPL)", "Price: USD 100.00", "Market cap: $100.0B", "P/CF: 10.0x (OCF)", "5Y revenue: N/A"} {
		if !strings.Contains(tile.HoverText, want) {
			t.Errorf("expected hover text to contain %q, got %q", want, tile.HoverText)
		}
	}
}

func TestBuild_Notices(t *testing.T) {
	enc := NewEncoder(valuation.DefaultConfig())

	if f := enc.Build("empty", nil, ByMarketCap, true); f.Notice != NoticeNoData {
		t.Errorf("expected %q, got %q", NoticeNoData, f.Notice)
	}

	f := enc.Build("losses", []valuation.EnrichedRecord{enriched("LOSS", 1e9, -5)}, ByMarketCap, true)
	if f.Notice != NoticeNoValidTiles {
		t.Errorf("expected %q, got %q", NoticeNoValidTiles, f.Notice)
	}
	if len(f.Colorbar.Ticks) != 5 || f.Colorbar.Max != 30 {
		t.Errorf("unexpected colorbar %+v", f.Colorbar)
	}
}

func TestParseSizeMode(t *testing.T) {
	tests := []struct {
		in   string
		want SizeMode
		ok   bool
	}{
		{"", ByUndervaluation, true},
		{"market_cap", ByMarketCap, true},
		{"Undervaluation", ByUndervaluation, true},
		{"volume", "", false},
	}
	for _, tt := range tests {
		got, ok := ParseSizeMode(tt.in)
		if got != tt.want || ok != tt.ok {
			t.Errorf("ParseSizeMode(%q): expected (%s, %v), got (%s, %v)", tt.in, tt.want, tt.ok, got, ok)
		}
	}
}
