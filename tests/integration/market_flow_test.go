package integration

import (
	"net/http"
	"strings"
	"testing"

	"valuemap/internal/models"
	"valuemap/internal/provider"
	"valuemap/internal/valuation"
)

func usaConstituents(symbols ...string) []provider.Constituent {
	out := make([]provider.Constituent, 0, len(symbols))
	for _, s := range symbols {
		out = append(out, provider.Constituent{Symbol: s, DisplayTicker: s, Name: s + " Corp", Market: valuation.MarketUSA})
	}
	return out
}

func usaQuotes() map[string]fakeQuote {
	return map[string]fakeQuote{
		// P/CF 5
		"AAA": {name: "Alpha", sector: "Technology", price: 50, marketCap: 1e11, quarterlyOCF: []float64{5e9, 5e9, 5e9, 5e9}},
		// P/CF 20
		"BBB": {name: "Beta", sector: "Industrials", price: 80, marketCap: 2e11, quarterlyOCF: []float64{2.5e9, 2.5e9, 2.5e9, 2.5e9}},
		// negative cash flow
		"CCC": {name: "Gamma", sector: "Energy", price: 10, marketCap: 5e10, quarterlyOCF: []float64{-1e9, -1e9, -1e9, -1e9}},
		// no fundamentals
		"EEE": {name: "Epsilon", sector: "Utilities", price: 30, marketCap: 3e10},
	}
}

func usaLister() staticLister {
	return staticLister{
		provider.IndexSP500:     usaConstituents("AAA", "BBB", "CCC", "DDD"),
		provider.IndexNasdaq100: usaConstituents("AAA", "EEE"),
	}
}

func TestMarketFlow_FirstRequestFetchesAndStoresSnapshot(t *testing.T) {
	app := setupApp(t, usaLister(), usaQuotes())

	rec := app.request(http.MethodGet, "/api/v1/markets/usa", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	ds := parseJSON(t, rec)

	if ds["market"] != "USA" {
		t.Errorf("expected market USA, got %v", ds["market"])
	}
	if ds["title"] != "S&P 500 + Nasdaq 100" {
		t.Errorf("unexpected title %v", ds["title"])
	}

	records := ds["records"].([]interface{})
	if len(records) != 4 {
		t.Fatalf("expected 4 records (DDD fails, AAA dedupes), got %d", len(records))
	}

	t.Run("sorted_by_pcf_with_absent_last", func(t *testing.T) {
		var tickers []string
		for _, r := range records {
			tickers = append(tickers, r.(map[string]interface{})["ticker_symbol"].(string))
		}
		if tickers[0] != "AAA" || tickers[1] != "BBB" {
			t.Errorf("expected AAA, BBB first, got %v", tickers)
		}
		for _, r := range records[2:] {
			if pcf := r.(map[string]interface{})["pcf"]; pcf != nil {
				t.Errorf("expected absent pcf in tail, got %v", pcf)
			}
		}
	})

	t.Run("pcf_from_trailing_operating_cash_flow", func(t *testing.T) {
		first := records[0].(map[string]interface{})
		if first["pcf"].(float64) != 5 {
			t.Errorf("expected pcf 5, got %v", first["pcf"])
		}
		if first["cf_method"] != string(valuation.MethodOCF) {
			t.Errorf("expected OCF method, got %v", first["cf_method"])
		}
		if first["pcf_display"] != "5.0x" {
			t.Errorf("expected pcf_display 5.0x, got %v", first["pcf_display"])
		}
	})

	t.Run("summary_counts", func(t *testing.T) {
		summary := ds["summary"].(map[string]interface{})
		if summary["total"].(float64) != 4 || summary["valid_count"].(float64) != 2 {
			t.Errorf("unexpected summary %v", summary)
		}
		if summary["negative_or_na_pct"] != "50.0%" {
			t.Errorf("expected 50.0%%, got %v", summary["negative_or_na_pct"])
		}
	})

	t.Run("snapshot_persisted", func(t *testing.T) {
		var snaps []models.MarketSnapshot
		if err := app.DB.Find(&snaps).Error; err != nil {
			t.Fatalf("query snapshots: %v", err)
		}
		if len(snaps) != 1 {
			t.Fatalf("expected 1 snapshot, got %d", len(snaps))
		}
		if snaps[0].RecordCount != 4 || snaps[0].FailedCount != 1 {
			t.Errorf("unexpected counts record=%d failed=%d", snaps[0].RecordCount, snaps[0].FailedCount)
		}
	})
}

func TestMarketFlow_CachedSnapshotServesViews(t *testing.T) {
	app := setupApp(t, usaLister(), usaQuotes())

	rec := app.request(http.MethodGet, "/api/v1/markets/USA", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	callsAfterFetch := app.upstreamCalls.Load()

	t.Run("treemap_hides_invalid_by_default", func(t *testing.T) {
		rec := app.request(http.MethodGet, "/api/v1/markets/usa/treemap", "")
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		view := parseJSON(t, rec)
		fig := view["figure"].(map[string]interface{})
		if tiles := fig["tiles"].([]interface{}); len(tiles) != 2 {
			t.Errorf("expected 2 tiles, got %d", len(tiles))
		}
		if fig["title"] != "S&P 500 + Nasdaq 100 P/CF valuation" {
			t.Errorf("unexpected title %v", fig["title"])
		}
	})

	t.Run("treemap_shows_invalid_grey", func(t *testing.T) {
		rec := app.request(http.MethodGet, "/api/v1/markets/usa/treemap?hide_invalid=false&size_mode=market_cap", "")
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		fig := parseJSON(t, rec)["figure"].(map[string]interface{})
		tiles := fig["tiles"].([]interface{})
		if len(tiles) != 4 {
			t.Fatalf("expected 4 tiles, got %d", len(tiles))
		}
		var grey int
		for _, tile := range tiles {
			if tile.(map[string]interface{})["color"] == "#b0b0b0" {
				grey++
			}
		}
		if grey != 2 {
			t.Errorf("expected 2 grey tiles, got %d", grey)
		}
	})

	t.Run("records_paginated", func(t *testing.T) {
		rec := app.request(http.MethodGet, "/api/v1/markets/usa/records?page=2&page_size=3", "")
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		page := parseJSON(t, rec)
		if page["total_items"].(float64) != 4 || page["total_pages"].(float64) != 2 {
			t.Errorf("unexpected page meta %v", page)
		}
		if data := page["data"].([]interface{}); len(data) != 1 {
			t.Errorf("expected 1 record on page 2, got %d", len(data))
		}
	})

	t.Run("summary_and_screens", func(t *testing.T) {
		for _, path := range []string{"summary", "picks", "portfolio"} {
			rec := app.request(http.MethodGet, "/api/v1/markets/usa/"+path, "")
			if rec.Code != http.StatusOK {
				t.Errorf("%s: expected 200, got %d: %s", path, rec.Code, rec.Body.String())
			}
		}
	})

	if got := app.upstreamCalls.Load(); got != callsAfterFetch {
		t.Errorf("expected cached views to skip upstream, calls went %d -> %d", callsAfterFetch, got)
	}
}

func TestMarketFlow_PipelineRefresh(t *testing.T) {
	app := setupApp(t, usaLister(), usaQuotes())

	t.Run("missing_key_rejected", func(t *testing.T) {
		rec := app.request(http.MethodPost, "/pipeline/markets/usa/refresh", "")
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rec.Code)
		}
		if code := errorCode(t, rec); code != "INVALID_API_KEY" {
			t.Errorf("expected INVALID_API_KEY, got %s", code)
		}
	})

	t.Run("refresh_appends_snapshot", func(t *testing.T) {
		for i := 0; i < 2; i++ {
			rec := app.request(http.MethodPost, "/pipeline/markets/usa/refresh?limit=10", testAPIKey)
			if rec.Code != http.StatusCreated {
				t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
			}
			result := parseJSON(t, rec)["refresh"].(map[string]interface{})
			if result["fetched"].(float64) != 4 || result["failed"].(float64) != 1 {
				t.Errorf("unexpected refresh result %v", result)
			}
		}

		rec := app.request(http.MethodGet, "/api/v1/markets/usa/snapshots", "")
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		page := parseJSON(t, rec)
		if page["total_items"].(float64) != 2 {
			t.Errorf("expected 2 snapshots, got %v", page["total_items"])
		}
		if strings.Contains(rec.Body.String(), "payload") {
			t.Error("snapshot listing should not expose payload")
		}
	})

	t.Run("unknown_market", func(t *testing.T) {
		rec := app.request(http.MethodPost, "/pipeline/markets/mars/refresh", testAPIKey)
		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
		if code := errorCode(t, rec); code != "UNKNOWN_MARKET" {
			t.Errorf("expected UNKNOWN_MARKET, got %s", code)
		}
	})

	t.Run("refresh_metrics_recorded", func(t *testing.T) {
		rec := app.request(http.MethodGet, "/metrics", "")
		if !strings.Contains(rec.Body.String(), `result="ok"`) {
			t.Errorf("expected ok refresh metric in:\n%s", rec.Body.String())
		}
	})
}

func TestMarketFlow_EmptyFetchReportsNoData(t *testing.T) {
	lister := staticLister{provider.IndexEuroStoxx50: usaConstituents("ZZZ")}
	app := setupApp(t, lister, usaQuotes())

	rec := app.request(http.MethodGet, "/api/v1/markets/europe", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d: %s", rec.Code, rec.Body.String())
	}
	if code := errorCode(t, rec); code != "NO_DATA" {
		t.Errorf("expected NO_DATA, got %s", code)
	}

	var count int64
	app.DB.Model(&models.MarketSnapshot{}).Count(&count)
	if count != 0 {
		t.Errorf("expected no snapshot stored, got %d", count)
	}
}

func TestMarketFlow_SearchSecurity(t *testing.T) {
	app := setupApp(t, usaLister(), usaQuotes())

	t.Run("found", func(t *testing.T) {
		rec := app.request(http.MethodGet, "/api/v1/securities/search?q=bbb", "")
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		sec := parseJSON(t, rec)["security"].(map[string]interface{})
		if sec["ticker_symbol"] != "BBB" || sec["pcf"].(float64) != 20 {
			t.Errorf("unexpected security %v", sec)
		}
	})

	t.Run("not_found", func(t *testing.T) {
		rec := app.request(http.MethodGet, "/api/v1/securities/search?q=NOPE", "")
		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
		if code := errorCode(t, rec); code != "SECURITY_NOT_FOUND" {
			t.Errorf("expected SECURITY_NOT_FOUND, got %s", code)
		}
	})
}
