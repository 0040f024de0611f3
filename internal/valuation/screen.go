package valuation

import "sort"

// StrongPicks returns records with P/CF at or below cfg.StrongPickMaxPCF whose
// revenue and cash flow are both trending up, cheapest first.
func StrongPicks(cfg Config, records []EnrichedRecord) []EnrichedRecord {
	return screen(records, cfg.StrongPickMaxPCF, 0)
}

// PortfolioProposal returns up to cfg.PortfolioSize growing companies with
// P/CF at or below cfg.PortfolioMaxPCF, cheapest first.
func PortfolioProposal(cfg Config, records []EnrichedRecord) []EnrichedRecord {
	return screen(records, cfg.PortfolioMaxPCF, cfg.PortfolioSize)
}

func screen(records []EnrichedRecord, maxPCF float64, limit int) []EnrichedRecord {
	picks := make([]EnrichedRecord, 0)
	for _, r := range records {
		v, ok := r.PCF.Get()
		if !ok || v <= 0 || v > maxPCF {
			continue
		}
		if r.RevenueTrend != TrendUp || r.CFTrend != TrendUp {
			continue
		}
		picks = append(picks, r)
	}
	sortByPCF(picks)
	if limit > 0 && len(picks) > limit {
		picks = picks[:limit]
	}
	return picks
}

// SortByPCF returns a copy ordered by ascending P/CF with unvalued rows last.
// Ties keep their input order.
func SortByPCF(records []EnrichedRecord) []EnrichedRecord {
	out := make([]EnrichedRecord, len(records))
	copy(out, records)
	sortByPCF(out)
	return out
}

func sortByPCF(records []EnrichedRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		a, aok := records[i].PCF.Get()
		b, bok := records[j].PCF.Get()
		if aok != bok {
			return aok
		}
		return aok && a < b
	})
}
