package models

import (
	"encoding/json"
	"fmt"
	"time"

	"valuemap/internal/valuation"
)

// MarketSnapshot is one fetch of a market's raw security records. Snapshots
// are append-only; the latest per (market, limit) is served.
type MarketSnapshot struct {
	Base
	Market      string    `gorm:"type:varchar(16);not null;index:idx_snapshot_lookup,priority:1" json:"market"`
	Limit       int       `gorm:"column:fetch_limit;not null;index:idx_snapshot_lookup,priority:2" json:"limit"`
	FetchedAt   time.Time `gorm:"not null;index:idx_snapshot_lookup,priority:3" json:"fetched_at"`
	RecordCount int       `gorm:"not null" json:"record_count"`
	FailedCount int       `gorm:"not null;default:0" json:"failed_count"`
	Payload     string    `gorm:"type:text;not null" json:"-"`
}

// NewMarketSnapshot encodes the raw records into a snapshot row.
func NewMarketSnapshot(market valuation.Market, limit int, fetchedAt time.Time, records []valuation.SecurityRecord, failed int) (*MarketSnapshot, error) {
	payload, err := json.Marshal(records)
	if err != nil {
		return nil, fmt.Errorf("encoding snapshot payload: %w", err)
	}
	return &MarketSnapshot{
		Market:      string(market),
		Limit:       limit,
		FetchedAt:   fetchedAt.UTC(),
		RecordCount: len(records),
		FailedCount: failed,
		Payload:     string(payload),
	}, nil
}

// Records decodes the stored raw records.
func (s *MarketSnapshot) Records() ([]valuation.SecurityRecord, error) {
	var records []valuation.SecurityRecord
	if err := json.Unmarshal([]byte(s.Payload), &records); err != nil {
		return nil, fmt.Errorf("decoding snapshot %s: %w", s.ID, err)
	}
	return records, nil
}
