package provider

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"valuemap/internal/valuation"
)

const sp500Page = `<html><body>
<table class="wikitable" id="constituents">
<tr><th>Symbol</th><th>Security</th><th>GICS Sector</th></tr>
<tr><td><a href="#">MMM</a></td><td>3M</td><td>Industrials</td></tr>
<tr><td>BRK.B</td><td>Berkshire Hathaway</td><td>Financials</td></tr>
<tr><td>AOS</td><td>A. O. Smith</td><td>Industrials</td></tr>
</table>
</body></html>`

const nasdaqPage = `<html><body>
<table><tr><th>Year</th><th>Value</th></tr><tr><td>2020</td><td>1</td></tr></table>
<table id="constituents">
<tr><th>Company</th><th>Ticker</th><th>Sector</th></tr>
<tr><td>Adobe Inc.</td><td>ADBE</td><td>Technology</td></tr>
<tr><td>AMD</td><td>AMD</td><td>Technology</td></tr>
</table>
</body></html>`

func newWikiServer(pages map[string]string) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, ok := pages[strings.TrimPrefix(r.URL.EscapedPath(), "/")]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, _ = w.Write([]byte(body))
	}))
}

func TestWikipediaLister_Scrape(t *testing.T) {
	srv := newWikiServer(map[string]string{
		"List_of_S%26P_500_companies": sp500Page,
		"Nasdaq-100":                  nasdaqPage,
	})
	defer srv.Close()

	l := NewWikipediaLister(http.DefaultClient, nil)
	l.baseURL = srv.URL + "/"

	t.Run("sp500", func(t *testing.T) {
		got, err := l.Constituents(context.Background(), IndexSP500, 10)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(got) != 3 {
			t.Fatalf("expected 3 constituents, got %d", len(got))
		}
		if got[1].Symbol != "BRK-B" || got[1].DisplayTicker != "BRK.B" {
			t.Errorf("expected BRK-B / BRK.B, got %s / %s", got[1].Symbol, got[1].DisplayTicker)
		}
		if got[0].Name != "3M" || got[0].Market != valuation.MarketUSA {
			t.Errorf("unexpected first constituent %+v", got[0])
		}
	})

	t.Run("nasdaq_skips_unrelated_tables", func(t *testing.T) {
		got, err := l.Constituents(context.Background(), IndexNasdaq100, 1)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(got) != 1 || got[0].Symbol != "ADBE" || got[0].Name != "Adobe Inc." {
			t.Errorf("unexpected constituents %+v", got)
		}
	})
}

func TestWikipediaLister_Fallback(t *testing.T) {
	srv := newWikiServer(map[string]string{"Nasdaq-100": "<html><body><p>no table</p></body></html>"})
	defer srv.Close()

	l := NewWikipediaLister(http.DefaultClient, nil)
	l.baseURL = srv.URL + "/"

	t.Run("http_error_uses_builtin", func(t *testing.T) {
		got, err := l.Constituents(context.Background(), IndexSP500, 5)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(got) != 5 || got[0].Symbol != "AAPL" {
			t.Errorf("expected built-in list, got %+v", got)
		}
	})

	t.Run("empty_table_uses_builtin", func(t *testing.T) {
		got, err := l.Constituents(context.Background(), IndexNasdaq100, 0)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(got) != len(nasdaq100Fallback) {
			t.Errorf("expected %d constituents, got %d", len(nasdaq100Fallback), len(got))
		}
	})

	t.Run("builtin_only_index", func(t *testing.T) {
		got, err := l.Constituents(context.Background(), IndexKOSPI200, 3)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(got) != 3 || got[0].Symbol != "005930.KS" || got[0].DisplayTicker != "005930" {
			t.Errorf("unexpected constituents %+v", got)
		}
	})

	t.Run("unknown_index", func(t *testing.T) {
		if _, err := l.Constituents(context.Background(), Index("FTSE 100"), 3); err == nil {
			t.Error("expected error for unknown index")
		}
	})

	t.Run("result_is_a_copy", func(t *testing.T) {
		got, _ := l.Constituents(context.Background(), IndexNikkei225, 2)
		got[0].Name = "changed"
		if nikkei225[0].Name == "changed" {
			t.Error("expected built-in list to be left untouched")
		}
	})
}

func TestMergeConstituents(t *testing.T) {
	sp := []Constituent{{Symbol: "AAPL", Name: "Apple (S&P)"}, {Symbol: "JPM"}}
	nq := []Constituent{{Symbol: "AAPL", Name: "Apple (NDX)"}, {Symbol: "ADBE"}}

	got := MergeConstituents(sp, nq)
	if len(got) != 3 {
		t.Fatalf("expected 3 constituents, got %d", len(got))
	}
	if got[0].Name != "Apple (S&P)" {
		t.Errorf("expected first occurrence to win, got %q", got[0].Name)
	}
	if got[2].Symbol != "ADBE" {
		t.Errorf("expected ADBE last, got %s", got[2].Symbol)
	}
}

func TestResolveQuery(t *testing.T) {
	tests := []struct {
		name       string
		query      string
		wantSymbol string
		wantMarket valuation.Market
		wantOK     bool
	}{
		{name: "korea_code", query: "005930", wantSymbol: "005930.KS", wantMarket: valuation.MarketKorea, wantOK: true},
		{name: "japan_code", query: " 7203 ", wantSymbol: "7203.T", wantMarket: valuation.MarketJapan, wantOK: true},
		{name: "us_ticker_uppercased", query: "aapl", wantSymbol: "AAPL", wantMarket: valuation.MarketUSA, wantOK: true},
		{name: "five_digits_is_us", query: "12345", wantSymbol: "12345", wantMarket: valuation.MarketUSA, wantOK: true},
		{name: "empty", query: "  ", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ResolveQuery(tt.query)
			if ok != tt.wantOK {
				t.Fatalf("expected ok=%v, got %v", tt.wantOK, ok)
			}
			if !ok {
				return
			}
			if got.Symbol != tt.wantSymbol || got.Market != tt.wantMarket {
				t.Errorf("expected %s/%s, got %s/%s", tt.wantSymbol, tt.wantMarket, got.Symbol, got.Market)
			}
		})
	}
}

func TestIndicesFor(t *testing.T) {
	if got := IndicesFor(valuation.MarketUSA); len(got) != 2 || got[0] != IndexSP500 {
		t.Errorf("unexpected USA indices %v", got)
	}
	if got := MarketTitle(valuation.MarketUSA); got != "S&P 500 + Nasdaq 100" {
		t.Errorf("unexpected title %q", got)
	}
	if IndicesFor(valuation.Market("Mars")) != nil {
		t.Error("expected no indices for unknown market")
	}
}
