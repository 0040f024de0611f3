package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"valuemap/internal/models"
	"valuemap/internal/valuation"

	"gorm.io/gorm"
)

// counter provides unique values across fixtures within a test run.
var counter atomic.Int64

func nextID() int64 {
	return counter.Add(1)
}

// RecordOption customises a fixture record.
type RecordOption func(*valuation.SecurityRecord)

// WithPCF sets the OCF so the record's P/CF equals pcf.
func WithPCF(pcf float64) RecordOption {
	return func(r *valuation.SecurityRecord) {
		r.TTMOperatingCashFlow = valuation.Some(r.MarketCap / pcf)
	}
}

// WithoutCashFlow removes every cash-flow input so the record is unvalued.
func WithoutCashFlow() RecordOption {
	return func(r *valuation.SecurityRecord) {
		r.TTMOperatingCashFlow = valuation.None()
		r.TTMNetIncome = valuation.None()
		r.TTMDepreciation = valuation.None()
	}
}

// WithSector sets the GICS sector.
func WithSector(sector string) RecordOption {
	return func(r *valuation.SecurityRecord) { r.Sector = sector }
}

// WithName sets the company name.
func WithName(name string) RecordOption {
	return func(r *valuation.SecurityRecord) { r.Name = name }
}

// WithGrowing gives the record rising revenue and cash-flow histories.
func WithGrowing() RecordOption {
	return func(r *valuation.SecurityRecord) {
		r.RevenueHistory = valuation.History{2020: 100, 2021: 110, 2022: 120, 2023: 130, 2024: 140}
		r.CFHistory = valuation.History{2020: 10, 2021: 11, 2022: 12, 2023: 13, 2024: 14}
	}
}

// NewTestRecord builds a USA record with a $100B market cap and P/CF 10.
func NewTestRecord(ticker string, opts ...RecordOption) valuation.SecurityRecord {
	r := valuation.SecurityRecord{
		TickerSymbol:         ticker,
		DisplayTicker:        ticker,
		Name:                 fmt.Sprintf("%s Corp", ticker),
		Market:               valuation.MarketUSA,
		Sector:               "Technology",
		Price:                100,
		Currency:             "USD",
		MarketCap:            100e9,
		TTMOperatingCashFlow: valuation.Some(10e9),
	}
	for _, opt := range opts {
		opt(&r)
	}
	return r
}

// NewTestRecords builds n records named T1..Tn.
func NewTestRecords(n int) []valuation.SecurityRecord {
	out := make([]valuation.SecurityRecord, n)
	for i := range out {
		out[i] = NewTestRecord(fmt.Sprintf("T%d", i+1))
	}
	return out
}

// CreateTestSnapshot stores a snapshot of records fetched at fetchedAt.
func CreateTestSnapshot(t *testing.T, db *gorm.DB, market valuation.Market, limit int, fetchedAt time.Time, records []valuation.SecurityRecord) *models.MarketSnapshot {
	t.Helper()

	snap, err := models.NewMarketSnapshot(market, limit, fetchedAt, records, 0)
	if err != nil {
		t.Fatalf("failed to build test snapshot: %v", err)
	}
	if err := db.Create(snap).Error; err != nil {
		t.Fatalf("failed to create test snapshot: %v", err)
	}
	return snap
}

// UniqueTicker returns a ticker that no other fixture in this run uses.
func UniqueTicker() string {
	return fmt.Sprintf("TST%d", nextID())
}
