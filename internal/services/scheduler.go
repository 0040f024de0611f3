package services

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"valuemap/internal/logger"
	"valuemap/internal/valuation"
)

// Scheduler refreshes every market on a cron schedule.
type Scheduler struct {
	cron    *cron.Cron
	markets MarketServicer
	limit   int
	timeout time.Duration
	log     *zap.SugaredLogger
}

// NewScheduler creates a scheduler that refreshes each market at limit.
// Each run gets timeout to finish all markets.
func NewScheduler(markets MarketServicer, limit int, timeout time.Duration) *Scheduler {
	return &Scheduler{
		cron:    cron.New(),
		markets: markets,
		limit:   limit,
		timeout: timeout,
		log:     logger.Named("scheduler"),
	}
}

// Start registers the refresh job under expr and starts the cron loop.
func (s *Scheduler) Start(expr string) error {
	if _, err := s.cron.AddFunc(expr, s.RunOnce); err != nil {
		return fmt.Errorf("invalid refresh schedule %q: %w", expr, err)
	}
	s.cron.Start()
	s.log.Infow("refresh scheduler started", "schedule", expr, "limit", s.limit)
	return nil
}

// Stop halts the scheduler and waits for a running refresh to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.log.Info("refresh scheduler stopped")
}

// RunOnce refreshes every market sequentially. Failures are logged and do
// not stop the remaining markets.
func (s *Scheduler) RunOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	for _, m := range valuation.Markets {
		res, err := s.markets.Refresh(ctx, m, s.limit)
		if err != nil {
			s.log.Warnw("scheduled refresh failed", "market", m, "error", err)
			continue
		}
		s.log.Infow("scheduled refresh complete", "market", m, "fetched", res.Fetched, "failed", res.Failed)
	}
}
