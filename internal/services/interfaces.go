package services

import (
	"context"
	"time"

	"valuemap/internal/models"
	"valuemap/internal/pagination"
	"valuemap/internal/provider"
	"valuemap/internal/treemap"
	"valuemap/internal/valuation"
)

// MarketInfo describes a supported market.
type MarketInfo struct {
	Market  valuation.Market `json:"market"`
	Title   string           `json:"title"`
	Indices []provider.Index `json:"indices"`
}

// Dataset is the enriched view of a market's latest snapshot.
type Dataset struct {
	Market     valuation.Market           `json:"market"`
	Title      string                     `json:"title"`
	Limit      int                        `json:"limit"`
	SnapshotID string                     `json:"snapshot_id"`
	FetchedAt  time.Time                  `json:"fetched_at"`
	Age        string                     `json:"age"`
	Stale      bool                       `json:"stale"`
	Summary    valuation.Summary          `json:"summary"`
	Records    []valuation.EnrichedRecord `json:"records"`
}

// TreemapView is a treemap figure plus the statistics shown beside it.
type TreemapView struct {
	Figure    treemap.Figure    `json:"figure"`
	Summary   valuation.Summary `json:"summary"`
	FetchedAt time.Time         `json:"fetched_at"`
	Age       string            `json:"age"`
	Stale     bool              `json:"stale"`
}

// RefreshResult reports the outcome of a market refresh.
type RefreshResult struct {
	SnapshotID string           `json:"snapshot_id"`
	Market     valuation.Market `json:"market"`
	Limit      int              `json:"limit"`
	Fetched    int              `json:"fetched"`
	Failed     int              `json:"failed"`
	FetchedAt  time.Time        `json:"fetched_at"`
	DurationMS int64            `json:"duration_ms"`
}

// MarketServicer defines the contract for market valuation business logic.
type MarketServicer interface {
	Markets() []MarketInfo
	GetDataset(ctx context.Context, market valuation.Market, limit int) (*Dataset, error)
	Refresh(ctx context.Context, market valuation.Market, limit int) (*RefreshResult, error)
	Treemap(ctx context.Context, market valuation.Market, limit int, mode treemap.SizeMode, hideInvalid bool) (*TreemapView, error)
	StrongPicks(ctx context.Context, market valuation.Market, limit int) ([]valuation.EnrichedRecord, error)
	Portfolio(ctx context.Context, market valuation.Market, limit int) ([]valuation.EnrichedRecord, error)
	Summary(ctx context.Context, market valuation.Market, limit int) (*valuation.Summary, error)
	ListSnapshots(market valuation.Market, page pagination.PageRequest) (*pagination.PageResponse[models.MarketSnapshot], error)
	Search(ctx context.Context, query string) (*valuation.EnrichedRecord, error)
}
