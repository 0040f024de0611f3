package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"valuemap/internal/config"
	apperrors "valuemap/internal/errors"
	"valuemap/internal/logger"
	"valuemap/internal/metrics"
	"valuemap/internal/models"
	"valuemap/internal/pagination"
	"valuemap/internal/provider"
	"valuemap/internal/treemap"
	"valuemap/internal/valuation"
)

// MarketServiceOptions configures a market service.
type MarketServiceOptions struct {
	// SnapshotTTL is the age after which a snapshot is reported stale.
	SnapshotTTL time.Duration
	Valuation   valuation.Config
	Metrics     *metrics.Registry
	// Now overrides the clock in tests.
	Now func() time.Time
}

type refreshKey struct {
	market valuation.Market
	limit  int
}

// marketService handles market snapshot and valuation business logic.
type marketService struct {
	db       *gorm.DB
	lister   provider.ConstituentLister
	fetcher  provider.Fetcher
	enricher *valuation.Enricher
	encoder  *treemap.Encoder
	metrics  *metrics.Registry
	ttl      time.Duration
	now      func() time.Time
	log      *zap.SugaredLogger

	mu       sync.Mutex
	inflight map[refreshKey]bool
}

// NewMarketService creates a new MarketServicer.
func NewMarketService(db *gorm.DB, lister provider.ConstituentLister, fetcher provider.Fetcher, opts MarketServiceOptions) MarketServicer {
	if opts.SnapshotTTL <= 0 {
		opts.SnapshotTTL = 24 * time.Hour
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &marketService{
		db:       db,
		lister:   lister,
		fetcher:  fetcher,
		enricher: valuation.NewEnricher(opts.Valuation),
		encoder:  treemap.NewEncoder(opts.Valuation),
		metrics:  opts.Metrics,
		ttl:      opts.SnapshotTTL,
		now:      opts.Now,
		log:      logger.Named("market"),
		inflight: make(map[refreshKey]bool),
	}
}

// Markets lists the supported markets.
func (s *marketService) Markets() []MarketInfo {
	out := make([]MarketInfo, 0, len(valuation.Markets))
	for _, m := range valuation.Markets {
		out = append(out, MarketInfo{Market: m, Title: provider.MarketTitle(m), Indices: provider.IndicesFor(m)})
	}
	return out
}

// GetDataset returns the enriched latest snapshot, fetching one first when
// none has been stored.
func (s *marketService) GetDataset(ctx context.Context, market valuation.Market, limit int) (*Dataset, error) {
	snap, err := s.snapshot(ctx, market, limit)
	if err != nil {
		return nil, err
	}

	records, err := snap.Records()
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	enriched := s.enricher.Enrich(records)

	return &Dataset{
		Market:     market,
		Title:      provider.MarketTitle(market),
		Limit:      limit,
		SnapshotID: snap.ID,
		FetchedAt:  snap.FetchedAt,
		Age:        FormatAge(s.now().Sub(snap.FetchedAt)),
		Stale:      s.now().Sub(snap.FetchedAt) > s.ttl,
		Summary:    valuation.SummaryStatistics(enriched),
		Records:    valuation.SortByPCF(enriched),
	}, nil
}

// Treemap encodes the market's dataset as a treemap figure.
func (s *marketService) Treemap(ctx context.Context, market valuation.Market, limit int, mode treemap.SizeMode, hideInvalid bool) (*TreemapView, error) {
	ds, err := s.GetDataset(ctx, market, limit)
	if err != nil {
		return nil, err
	}
	title := fmt.Sprintf("%s P/CF valuation", ds.Title)
	return &TreemapView{
		Figure:    s.encoder.Build(title, ds.Records, mode, hideInvalid),
		Summary:   ds.Summary,
		FetchedAt: ds.FetchedAt,
		Age:       ds.Age,
		Stale:     ds.Stale,
	}, nil
}

// StrongPicks returns the cheap, growing securities of a market.
func (s *marketService) StrongPicks(ctx context.Context, market valuation.Market, limit int) ([]valuation.EnrichedRecord, error) {
	ds, err := s.GetDataset(ctx, market, limit)
	if err != nil {
		return nil, err
	}
	return valuation.StrongPicks(s.enricher.Config(), ds.Records), nil
}

// Portfolio returns the proposed portfolio for a market.
func (s *marketService) Portfolio(ctx context.Context, market valuation.Market, limit int) ([]valuation.EnrichedRecord, error) {
	ds, err := s.GetDataset(ctx, market, limit)
	if err != nil {
		return nil, err
	}
	return valuation.PortfolioProposal(s.enricher.Config(), ds.Records), nil
}

// Summary returns the P/CF statistics of a market.
func (s *marketService) Summary(ctx context.Context, market valuation.Market, limit int) (*valuation.Summary, error) {
	ds, err := s.GetDataset(ctx, market, limit)
	if err != nil {
		return nil, err
	}
	return &ds.Summary, nil
}

// ListSnapshots returns a paginated list of stored snapshots, newest first.
func (s *marketService) ListSnapshots(market valuation.Market, page pagination.PageRequest) (*pagination.PageResponse[models.MarketSnapshot], error) {
	page.Defaults()

	var totalItems int64
	base := s.db.Model(&models.MarketSnapshot{}).Where("market = ?", string(market))
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var snapshots []models.MarketSnapshot
	if err := base.Omit("payload").Order("fetched_at DESC").Scopes(pagination.Paginate(page)).Find(&snapshots).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(snapshots, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// Search fetches and enriches a single security by ticker or exchange code.
func (s *marketService) Search(ctx context.Context, query string) (*valuation.EnrichedRecord, error) {
	c, ok := provider.ResolveQuery(query)
	if !ok {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "Search query is required")
	}

	records, failures := s.fetcher.FetchRecords(ctx, []provider.Constituent{c})
	if len(records) == 0 {
		for _, f := range failures {
			if errors.Is(f.Err, provider.ErrUpstreamBlocked) {
				return nil, apperrors.Wrap(apperrors.ErrUpstreamUnavailable, f.Err)
			}
			s.log.Debugw("search fetch failed", "symbol", f.Symbol, "error", f.Err)
		}
		return nil, apperrors.WithMessage(apperrors.ErrSecurityNotFound, fmt.Sprintf("Security %q not found", c.DisplayTicker))
	}

	enriched := s.enricher.EnrichRecord(records[0])
	return &enriched, nil
}

// Refresh fetches a new snapshot for (market, limit). Only one refresh per
// key runs at a time. An empty fetch keeps the previous snapshot.
func (s *marketService) Refresh(ctx context.Context, market valuation.Market, limit int) (*RefreshResult, error) {
	if err := validateLimit(limit); err != nil {
		return nil, err
	}

	key := refreshKey{market: market, limit: limit}
	if !s.acquire(key) {
		return nil, apperrors.ErrRefreshInProgress
	}
	defer s.release(key)

	start := s.now()
	snap, err := s.fetchSnapshot(ctx, market, limit)
	elapsed := s.now().Sub(start)
	if err != nil {
		s.metrics.ObserveRefresh(string(market), refreshResultLabel(err), elapsed)
		return nil, err
	}
	s.metrics.ObserveRefresh(string(market), "ok", elapsed)

	return &RefreshResult{
		SnapshotID: snap.ID,
		Market:     market,
		Limit:      limit,
		Fetched:    snap.RecordCount,
		Failed:     snap.FailedCount,
		FetchedAt:  snap.FetchedAt,
		DurationMS: elapsed.Milliseconds(),
	}, nil
}

func (s *marketService) snapshot(ctx context.Context, market valuation.Market, limit int) (*models.MarketSnapshot, error) {
	if err := validateLimit(limit); err != nil {
		return nil, err
	}

	snap, err := s.latestSnapshot(market, limit)
	if err == nil {
		return snap, nil
	}
	if !errors.Is(err, apperrors.ErrSnapshotNotFound) {
		return nil, err
	}

	s.log.Infow("no snapshot stored, fetching", "market", market, "limit", limit)
	if _, err := s.Refresh(ctx, market, limit); err != nil {
		return nil, err
	}
	return s.latestSnapshot(market, limit)
}

func (s *marketService) latestSnapshot(market valuation.Market, limit int) (*models.MarketSnapshot, error) {
	var snap models.MarketSnapshot
	err := s.db.Where("market = ? AND fetch_limit = ?", string(market), limit).
		Order("fetched_at DESC").
		First(&snap).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrSnapshotNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &snap, nil
}

func (s *marketService) fetchSnapshot(ctx context.Context, market valuation.Market, limit int) (*models.MarketSnapshot, error) {
	var lists [][]provider.Constituent
	for _, idx := range provider.IndicesFor(market) {
		list, err := s.lister.Constituents(ctx, idx, limit)
		if err != nil {
			return nil, apperrors.Wrap(apperrors.ErrUpstreamUnavailable, err)
		}
		lists = append(lists, list)
	}
	constituents := provider.MergeConstituents(lists...)

	records, failures := s.fetcher.FetchRecords(ctx, constituents)
	if err := ctx.Err(); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrUpstreamUnavailable, err)
	}
	for _, f := range failures {
		s.log.Debugw("security skipped", "market", market, "symbol", f.Symbol, "error", f.Err)
	}

	if len(records) == 0 {
		for _, f := range failures {
			if errors.Is(f.Err, provider.ErrUpstreamBlocked) {
				return nil, apperrors.Wrap(apperrors.ErrUpstreamUnavailable, f.Err)
			}
		}
		s.log.Warnw("refresh fetched no securities; keeping previous snapshot", "market", market, "limit", limit, "failed", len(failures))
		return nil, apperrors.ErrNoData
	}

	snap, err := models.NewMarketSnapshot(market, limit, s.now(), records, len(failures))
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if err := s.db.Create(snap).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	enriched := s.enricher.Enrich(records)
	valued := 0
	for _, r := range enriched {
		if r.Valued() {
			valued++
		}
	}
	s.metrics.SetValued(string(market), valued, len(enriched)-valued)

	s.log.Infow("snapshot stored",
		"market", market,
		"limit", limit,
		"snapshot_id", snap.ID,
		"records", len(records),
		"failed", len(failures),
		"provider", s.fetcher.Name(),
	)
	return snap, nil
}

func (s *marketService) acquire(key refreshKey) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.inflight[key] {
		return false
	}
	s.inflight[key] = true
	return true
}

func (s *marketService) release(key refreshKey) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.inflight, key)
}

func validateLimit(limit int) error {
	if limit < config.MinLimit || limit > config.MaxLimit {
		return apperrors.WithMessage(apperrors.ErrInvalidInput,
			fmt.Sprintf("limit must be between %d and %d", config.MinLimit, config.MaxLimit))
	}
	return nil
}

func refreshResultLabel(err error) string {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		switch appErr.Code {
		case apperrors.ErrNoData.Code:
			return "no_data"
		case apperrors.ErrUpstreamUnavailable.Code:
			return "upstream_unavailable"
		}
	}
	return "error"
}

// FormatAge renders a snapshot age the way the dashboard shows it.
func FormatAge(d time.Duration) string {
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%d min ago", int(d/time.Minute))
	case d < 24*time.Hour:
		return fmt.Sprintf("%d h ago", int(d/time.Hour))
	default:
		return fmt.Sprintf("%d d ago", int(d/(24*time.Hour)))
	}
}
