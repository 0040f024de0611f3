package services

import (
	"context"
	"testing"
	"time"

	"valuemap/internal/provider"
	"valuemap/internal/testutil"
	"valuemap/internal/valuation"
)

func allMarketsLister() *stubLister {
	return &stubLister{lists: map[provider.Index][]provider.Constituent{
		provider.IndexKOSPI200:    constituents(valuation.MarketKorea, "005930.KS"),
		provider.IndexSP500:       constituents(valuation.MarketUSA, "AAPL"),
		provider.IndexNasdaq100:   constituents(valuation.MarketUSA, "MSFT"),
		provider.IndexNikkei225:   constituents(valuation.MarketJapan, "7203.T"),
		provider.IndexEuroStoxx50: constituents(valuation.MarketEurope, "SAP.DE"),
	}}
}

func TestScheduler_RunOnce(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)

	fetcher := &stubFetcher{fetchFn: func(_ context.Context, c provider.Constituent) (valuation.SecurityRecord, error) {
		if c.Market == valuation.MarketJapan {
			return valuation.SecurityRecord{}, provider.ErrSymbolNotFound
		}
		r := testutil.NewTestRecord(c.Symbol)
		r.Market = c.Market
		return r, nil
	}}
	svc := newTestMarketService(db, allMarketsLister(), fetcher, &fixedClock{time.Now()}, nil)

	NewScheduler(svc, 30, time.Minute).RunOnce()

	if n := countSnapshots(t, db); n != 3 {
		t.Errorf("expected snapshots for the three markets with data, got %d", n)
	}
	if fetcher.calls.Load() != 4 {
		t.Errorf("expected every market to be attempted, got %d fetches", fetcher.calls.Load())
	}
}

func TestScheduler_Start(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := newTestMarketService(db, allMarketsLister(), usaFetcher(), &fixedClock{time.Now()}, nil)

	t.Run("invalid_expression", func(t *testing.T) {
		s := NewScheduler(svc, 30, time.Minute)
		if err := s.Start("every day"); err == nil {
			t.Error("expected error for invalid cron expression")
		}
	})

	t.Run("valid_expression", func(t *testing.T) {
		s := NewScheduler(svc, 30, time.Minute)
		if err := s.Start("0 6 * * *"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		s.Stop()
	})
}
