package valuation

import (
	"fmt"
	"maps"
	"sort"
)

// Enricher applies cash-flow selection, P/CF valuation and trend
// classification to raw records.
type Enricher struct {
	cfg    Config
	trends *TrendClassifier
}

// NewEnricher creates an Enricher for the given configuration.
func NewEnricher(cfg Config) *Enricher {
	return &Enricher{cfg: cfg, trends: NewTrendClassifier(cfg)}
}

// Config returns the configuration the enricher was built with.
func (e *Enricher) Config() Config { return e.cfg }

// Enrich maps every record to its enriched form. Row order is preserved and
// the input is not modified.
func (e *Enricher) Enrich(records []SecurityRecord) []EnrichedRecord {
	out := make([]EnrichedRecord, len(records))
	for i, r := range records {
		out[i] = e.EnrichRecord(r)
	}
	return out
}

// EnrichRecord derives the valuation fields of a single record.
func (e *Enricher) EnrichRecord(r SecurityRecord) EnrichedRecord {
	r.RevenueHistory = maps.Clone(r.RevenueHistory)
	r.CFHistory = maps.Clone(r.CFHistory)

	sel := SelectCashFlowMethod(r)
	pcf := ComputePCF(r.MarketCap, sel)

	return EnrichedRecord{
		SecurityRecord:    r,
		TTMFFOProxy:       r.FFOProxy(),
		PCF:               pcf,
		CFMethod:          sel.Method,
		RevenueTrend:      e.trends.Classify(r.RevenueHistory, r.RevenueGrowthRate),
		CFTrend:           e.trends.Classify(r.CFHistory, r.EarningsGrowthRate),
		PCFDisplay:        FormatPCF(pcf),
		MarketCapBillions: r.MarketCap / 1e9,
		Grade:             e.cfg.Grade(pcf),
	}
}

// Summary aggregates P/CF statistics over the valued rows of a dataset.
type Summary struct {
	Total             int      `json:"total"`
	ValidCount        int      `json:"valid_count"`
	NegativeOrNACount int      `json:"negative_or_na_count"`
	NegativeOrNAPct   string   `json:"negative_or_na_pct"`
	MedianPCF         Optional `json:"median_pcf"`
	MeanPCF           Optional `json:"mean_pcf"`
	MedianPCFDisplay  string   `json:"median_pcf_display"`
	MeanPCFDisplay    string   `json:"mean_pcf_display"`
}

// SummaryStatistics computes the summary over all rows. Median and mean cover
// only rows with a positive P/CF and report "N/A" when there are none.
func SummaryStatistics(records []EnrichedRecord) Summary {
	valid := make([]float64, 0, len(records))
	for _, r := range records {
		if v, ok := r.PCF.Get(); ok && v > 0 {
			valid = append(valid, v)
		}
	}

	s := Summary{
		Total:             len(records),
		ValidCount:        len(valid),
		NegativeOrNACount: len(records) - len(valid),
		NegativeOrNAPct:   "0%",
	}
	if s.Total > 0 {
		s.NegativeOrNAPct = fmt.Sprintf("%.1f%%", float64(s.NegativeOrNACount)/float64(s.Total)*100)
	}
	if len(valid) > 0 {
		sort.Float64s(valid)
		s.MedianPCF = Some(median(valid))
		s.MeanPCF = Some(mean(valid))
	}
	s.MedianPCFDisplay = FormatPCF(s.MedianPCF)
	s.MeanPCFDisplay = FormatPCF(s.MeanPCF)
	return s
}

// median expects sorted, non-empty input.
func median(sorted []float64) float64 {
	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

func mean(values []float64) float64 {
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}
