package valuation

import (
	"encoding/json"
	"math"
	"strings"
)

// Market identifies the regional market a security belongs to.
type Market string

const (
	MarketKorea  Market = "Korea"
	MarketUSA    Market = "USA"
	MarketJapan  Market = "Japan"
	MarketEurope Market = "Europe"
)

// Markets lists every supported market in display order.
var Markets = []Market{MarketKorea, MarketUSA, MarketJapan, MarketEurope}

// ParseMarket resolves a market name case-insensitively.
func ParseMarket(s string) (Market, bool) {
	for _, m := range Markets {
		if strings.EqualFold(string(m), strings.TrimSpace(s)) {
			return m, true
		}
	}
	return "", false
}

// CashFlowMethod names the cash-flow figure a P/CF ratio was computed from.
type CashFlowMethod string

const (
	MethodFFO CashFlowMethod = "FFO"
	MethodOCF CashFlowMethod = "OCF"
)

// Trend is the direction of a metric over time.
type Trend string

const (
	TrendUp      Trend = "Uptrend"
	TrendDown    Trend = "Downtrend"
	TrendFlat    Trend = "Flat"
	TrendUnknown Trend = "Unknown"
)

// Display returns the trend with its arrow, or "N/A" when unknown.
func (t Trend) Display() string {
	switch t {
	case TrendUp:
		return "Uptrend ↗"
	case TrendDown:
		return "Downtrend ↘"
	case TrendFlat:
		return "Flat ➡"
	default:
		return "N/A"
	}
}

// History maps a fiscal year to a reported value. Non-finite values are
// tolerated in memory but dropped when encoded.
type History map[int]float64

// MarshalJSON drops non-finite entries, which JSON cannot represent.
func (h History) MarshalJSON() ([]byte, error) {
	if h == nil {
		return []byte("null"), nil
	}
	finite := make(map[int]float64, len(h))
	for year, v := range h {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		finite[year] = v
	}
	return json.Marshal(finite)
}

// SecurityRecord holds the raw financial facts for one ticker, as produced by
// the fetch layer. It is never mutated after construction.
type SecurityRecord struct {
	TickerSymbol  string `json:"ticker_symbol"`
	DisplayTicker string `json:"display_ticker"`
	Name          string `json:"name"`
	Market        Market `json:"market"`
	Sector        string `json:"sector"`

	Price     float64 `json:"price"`
	Currency  string  `json:"currency"`
	MarketCap float64 `json:"market_cap"`

	TTMOperatingCashFlow Optional `json:"ttm_operating_cash_flow"`
	TTMNetIncome         Optional `json:"ttm_net_income"`
	TTMDepreciation      Optional `json:"ttm_depreciation"`

	RevenueHistory     History  `json:"revenue_history,omitempty"`
	CFHistory          History  `json:"cf_history,omitempty"`
	RevenueGrowthRate  Optional `json:"revenue_growth_rate"`
	EarningsGrowthRate Optional `json:"earnings_growth_rate"`
}

// FFOProxy approximates funds from operations as net income plus
// depreciation. It is absent unless both inputs are present.
func (r SecurityRecord) FFOProxy() Optional {
	ni, ok := r.TTMNetIncome.Get()
	if !ok {
		return None()
	}
	dep, ok := r.TTMDepreciation.Get()
	if !ok {
		return None()
	}
	return Some(ni + dep)
}

// EnrichedRecord is a SecurityRecord plus its derived valuation fields.
type EnrichedRecord struct {
	SecurityRecord

	TTMFFOProxy       Optional       `json:"ttm_ffo_proxy"`
	PCF               Optional       `json:"pcf"`
	CFMethod          CashFlowMethod `json:"cf_method"`
	RevenueTrend      Trend          `json:"revenue_trend"`
	CFTrend           Trend          `json:"cf_trend"`
	PCFDisplay        string         `json:"pcf_display"`
	MarketCapBillions float64        `json:"market_cap_b"`
	Grade             Grade          `json:"grade"`
}

// Valued reports whether a P/CF ratio could be computed.
func (r EnrichedRecord) Valued() bool { return r.PCF.Positive() }
