package main

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"valuemap/internal/provider"
	"valuemap/internal/testutil"
	"valuemap/internal/valuation"
)

type fakeLister struct {
	counts map[provider.Index]int
}

func (l *fakeLister) Constituents(_ context.Context, idx provider.Index, limit int) ([]provider.Constituent, error) {
	n := l.counts[idx]
	if n > limit {
		n = limit
	}
	out := make([]provider.Constituent, n)
	for i := range out {
		out[i] = provider.Constituent{Symbol: fmt.Sprintf("%s-%d", idx, i), Market: valuation.MarketUSA}
	}
	return out, nil
}

type fakeFetcher struct{}

func (fakeFetcher) Name() string { return "fake" }

func (fakeFetcher) FetchRecords(_ context.Context, cs []provider.Constituent) ([]valuation.SecurityRecord, []provider.FetchError) {
	out := make([]valuation.SecurityRecord, len(cs))
	for i, c := range cs {
		out[i] = testutil.NewTestRecord(c.Symbol)
	}
	return out, nil
}

func TestWriteCSV(t *testing.T) {
	e := valuation.NewEnricher(valuation.DefaultConfig())
	records := e.Enrich([]valuation.SecurityRecord{
		testutil.NewTestRecord("AAA", testutil.WithPCF(4)),
		testutil.NewTestRecord("BBB", testutil.WithoutCashFlow()),
	})

	var buf bytes.Buffer
	testutil.AssertNoError(t, writeCSV(&buf, records))

	rows, err := csv.NewReader(&buf).ReadAll()
	testutil.AssertNoError(t, err)
	if len(rows) != 3 {
		t.Fatalf("expected header plus 2 rows, got %d", len(rows))
	}
	col := func(name string) int {
		for i, h := range rows[0] {
			if h == name {
				return i
			}
		}
		t.Fatalf("missing column %s", name)
		return -1
	}
	if rows[1][col("pcf_display")] != "4.0x" || rows[1][col("cf_method")] != "OCF" {
		t.Errorf("unexpected valued row %v", rows[1])
	}
	if rows[2][col("pcf")] != "" || rows[2][col("pcf_display")] != "N/A" {
		t.Errorf("expected empty pcf for unvalued row, got %v", rows[2])
	}
	if rows[1][col("market_cap_b")] != "100.00" {
		t.Errorf("unexpected market_cap_b %q", rows[1][col("market_cap_b")])
	}
}

func TestSeeder_Run(t *testing.T) {
	dir := t.TempDir()
	s := &seeder{
		lister: &fakeLister{counts: map[provider.Index]int{
			provider.IndexSP500:       8,
			provider.IndexNasdaq100:   4,
			provider.IndexEuroStoxx50: 5,
		}},
		fetcher:  fakeFetcher{},
		enricher: valuation.NewEnricher(valuation.DefaultConfig()),
		outDir:   dir,
	}

	err := s.run(context.Background(), []valuation.Market{valuation.MarketUSA, valuation.MarketEurope}, 50)
	testutil.AssertNoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, "usa.csv"))
	if err != nil {
		t.Fatalf("expected usa.csv: %v", err)
	}
	rows, _ := csv.NewReader(bytes.NewReader(data)).ReadAll()
	if len(rows) != 13 {
		t.Errorf("expected 12 USA rows plus header, got %d", len(rows))
	}

	if _, err := os.Stat(filepath.Join(dir, "europe.csv")); !os.IsNotExist(err) {
		t.Error("expected europe.csv to be skipped with fewer than 10 rows")
	}
}

type failingLister struct{}

func (failingLister) Constituents(context.Context, provider.Index, int) ([]provider.Constituent, error) {
	return nil, errors.New("listing unavailable")
}

func TestSeeder_Run_NothingWritten(t *testing.T) {
	tests := []struct {
		name   string
		lister provider.ConstituentLister
	}{
		{"every_market_fails", failingLister{}},
		{"every_market_too_small", &fakeLister{counts: map[provider.Index]int{provider.IndexEuroStoxx50: 3, provider.IndexNikkei225: 2}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &seeder{
				lister:   tt.lister,
				fetcher:  fakeFetcher{},
				enricher: valuation.NewEnricher(valuation.DefaultConfig()),
				outDir:   t.TempDir(),
			}
			err := s.run(context.Background(), []valuation.Market{valuation.MarketEurope, valuation.MarketJapan}, 50)
			if err == nil {
				t.Fatal("expected error when no seed file is written")
			}
		})
	}
}

func TestSelectMarkets(t *testing.T) {
	all, err := selectMarkets("all")
	testutil.AssertNoError(t, err)
	if len(all) != 4 {
		t.Errorf("expected 4 markets, got %d", len(all))
	}

	one, err := selectMarkets("japan")
	testutil.AssertNoError(t, err)
	if len(one) != 1 || one[0] != valuation.MarketJapan {
		t.Errorf("unexpected selection %v", one)
	}

	if _, err := selectMarkets("mars"); err == nil {
		t.Error("expected error for unknown market")
	}
}
