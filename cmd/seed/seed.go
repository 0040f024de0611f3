package main

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"valuemap/internal/config"
	"valuemap/internal/logger"
	"valuemap/internal/metrics"
	"valuemap/internal/provider"
	"valuemap/internal/valuation"
)

// minSeedRows is the smallest dataset worth writing.
const minSeedRows = 10

type seedOptions struct {
	market string
	limit  int
	outDir string
}

func newRootCmd() *cobra.Command {
	opts := seedOptions{}
	cmd := &cobra.Command{
		Use:          "seed",
		Short:        "Fetch and value index constituents into CSV seed files",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			logger.Init(cfg.Env, cfg.LogLevel)

			markets, err := selectMarkets(opts.market)
			if err != nil {
				return err
			}
			if opts.limit < config.MinLimit || opts.limit > config.MaxLimit {
				return fmt.Errorf("--limit must be between %d and %d", config.MinLimit, config.MaxLimit)
			}

			httpClient := &http.Client{Timeout: cfg.RequestTimeout}
			reg := metrics.NewRegistry()
			s := &seeder{
				lister: provider.NewWikipediaLister(httpClient, reg),
				fetcher: provider.NewYahooProvider(httpClient, provider.YahooOptions{
					RequestsPerSecond: cfg.FetchRPS,
					Concurrency:       cfg.FetchConcurrency,
					Metrics:           reg,
				}),
				enricher: valuation.NewEnricher(cfg.Valuation),
				outDir:   opts.outDir,
			}
			return s.run(cmd.Context(), markets, opts.limit)
		},
	}
	cmd.Flags().StringVar(&opts.market, "market", "all", "market to seed: all, korea, usa, japan or europe")
	cmd.Flags().IntVar(&opts.limit, "limit", 200, "constituents per index")
	cmd.Flags().StringVar(&opts.outDir, "out", "seeds", "output directory")
	return cmd
}

func selectMarkets(name string) ([]valuation.Market, error) {
	if strings.EqualFold(name, "all") || name == "" {
		return valuation.Markets, nil
	}
	m, ok := valuation.ParseMarket(name)
	if !ok {
		return nil, fmt.Errorf("unknown market %q", name)
	}
	return []valuation.Market{m}, nil
}

type seeder struct {
	lister   provider.ConstituentLister
	fetcher  provider.Fetcher
	enricher *valuation.Enricher
	outDir   string
}

// run seeds each market in turn. A failing market is logged and skipped; the
// run fails only when no seed file was written.
func (s *seeder) run(ctx context.Context, markets []valuation.Market, limit int) error {
	log := logger.Named("seed")
	if err := os.MkdirAll(s.outDir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", s.outDir, err)
	}

	var written int
	for _, m := range markets {
		if err := ctx.Err(); err != nil {
			return err
		}
		path, rows, err := s.seedMarket(ctx, m, limit)
		switch {
		case err != nil:
			log.Errorw("seeding failed", "market", m, "error", err)
		case path == "":
			log.Warnw("too few rows, skipping", "market", m, "rows", rows)
		default:
			written++
			log.Infow("seed written", "market", m, "path", path, "rows", rows)
		}
	}
	if written == 0 {
		return fmt.Errorf("no seed files written for %d market(s)", len(markets))
	}
	return nil
}

func (s *seeder) seedMarket(ctx context.Context, m valuation.Market, limit int) (string, int, error) {
	var lists [][]provider.Constituent
	for _, idx := range provider.IndicesFor(m) {
		list, err := s.lister.Constituents(ctx, idx, limit)
		if err != nil {
			return "", 0, err
		}
		lists = append(lists, list)
	}

	records, _ := s.fetcher.FetchRecords(ctx, provider.MergeConstituents(lists...))
	enriched := s.enricher.Enrich(records)
	if len(enriched) < minSeedRows {
		return "", len(enriched), nil
	}

	path := filepath.Join(s.outDir, strings.ToLower(string(m))+".csv")
	f, err := os.Create(path)
	if err != nil {
		return "", 0, err
	}
	defer f.Close()

	if err := writeCSV(f, enriched); err != nil {
		return "", 0, err
	}
	return path, len(enriched), f.Close()
}

var csvHeader = []string{
	"ticker_symbol", "display_ticker", "name", "market", "sector",
	"price", "currency", "market_cap", "market_cap_b",
	"ttm_operating_cash_flow", "ttm_net_income", "ttm_depreciation", "ttm_ffo_proxy",
	"pcf", "pcf_display", "cf_method", "revenue_trend", "cf_trend", "grade",
}

// writeCSV writes one row per record. Absent values are left empty.
func writeCSV(w io.Writer, records []valuation.EnrichedRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, r := range records {
		row := []string{
			r.TickerSymbol, r.DisplayTicker, r.Name, string(r.Market), r.Sector,
			formatFloat(r.Price), r.Currency, formatFloat(r.MarketCap), strconv.FormatFloat(r.MarketCapBillions, 'f', 2, 64),
			formatOptional(r.TTMOperatingCashFlow), formatOptional(r.TTMNetIncome),
			formatOptional(r.TTMDepreciation), formatOptional(r.TTMFFOProxy),
			formatOptional(r.PCF), r.PCFDisplay, string(r.CFMethod),
			r.RevenueTrend.Display(), r.CFTrend.Display(), string(r.Grade),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func formatOptional(o valuation.Optional) string {
	v, ok := o.Get()
	if !ok {
		return ""
	}
	return formatFloat(v)
}
