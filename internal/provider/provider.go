// Package provider fetches index constituents and per-security fundamentals
// from external data sources.
package provider

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"valuemap/internal/valuation"
)

// Index identifies a stock index whose constituents can be listed.
type Index string

const (
	IndexKOSPI200    Index = "KOSPI 200"
	IndexSP500       Index = "S&P 500"
	IndexNasdaq100   Index = "Nasdaq 100"
	IndexNikkei225   Index = "Nikkei 225"
	IndexEuroStoxx50 Index = "Euro Stoxx 50"
)

// IndicesFor returns the indices that make up a market, in merge order.
func IndicesFor(m valuation.Market) []Index {
	switch m {
	case valuation.MarketKorea:
		return []Index{IndexKOSPI200}
	case valuation.MarketUSA:
		return []Index{IndexSP500, IndexNasdaq100}
	case valuation.MarketJapan:
		return []Index{IndexNikkei225}
	case valuation.MarketEurope:
		return []Index{IndexEuroStoxx50}
	default:
		return nil
	}
}

// MarketTitle is the display name of a market's index set.
func MarketTitle(m valuation.Market) string {
	names := make([]string, 0, 2)
	for _, idx := range IndicesFor(m) {
		names = append(names, string(idx))
	}
	return strings.Join(names, " + ")
}

// Constituent is one member of an index.
type Constituent struct {
	// Symbol is the Yahoo Finance ticker, e.g. "005930.KS" or "BRK-B".
	Symbol        string           `json:"symbol"`
	DisplayTicker string           `json:"display_ticker"`
	Name          string           `json:"name"`
	Market        valuation.Market `json:"market"`
}

// MergeConstituents concatenates lists and drops repeated symbols. The first
// occurrence of a symbol wins.
func MergeConstituents(lists ...[]Constituent) []Constituent {
	seen := make(map[string]bool)
	var out []Constituent
	for _, list := range lists {
		for _, c := range list {
			if seen[c.Symbol] {
				continue
			}
			seen[c.Symbol] = true
			out = append(out, c)
		}
	}
	return out
}

var (
	koreaCode = regexp.MustCompile(`^\d{6}$`)
	japanCode = regexp.MustCompile(`^\d{4}$`)
)

// ResolveQuery maps a search query onto a constituent: six digits is a KRX
// code, four digits a Tokyo code, anything else a US ticker. ok is false for
// an empty query.
func ResolveQuery(q string) (Constituent, bool) {
	q = strings.ToUpper(strings.TrimSpace(q))
	if q == "" {
		return Constituent{}, false
	}
	switch {
	case koreaCode.MatchString(q):
		return Constituent{Symbol: q + ".KS", DisplayTicker: q, Market: valuation.MarketKorea}, true
	case japanCode.MatchString(q):
		return Constituent{Symbol: q + ".T", DisplayTicker: q, Market: valuation.MarketJapan}, true
	default:
		return Constituent{Symbol: q, DisplayTicker: q, Market: valuation.MarketUSA}, true
	}
}

// Sentinel errors returned by providers.
var (
	ErrSymbolNotFound  = errors.New("symbol not found")
	ErrNoMarketCap     = errors.New("market cap unavailable")
	ErrUpstreamBlocked = errors.New("upstream circuit open")
)

// FetchError represents a failed fetch for a specific security.
type FetchError struct {
	Symbol string
	Err    error
}

// Error implements the error interface.
func (e *FetchError) Error() string {
	return fmt.Sprintf("failed to fetch %s: %v", e.Symbol, e.Err)
}

// Unwrap returns the underlying cause.
func (e *FetchError) Unwrap() error { return e.Err }

// ConstituentLister lists the members of an index.
type ConstituentLister interface {
	// Constituents returns at most limit members of idx. It falls back to a
	// built-in list rather than failing when the live source is unavailable.
	Constituents(ctx context.Context, idx Index, limit int) ([]Constituent, error)
}

// Fetcher retrieves raw financial facts for securities.
type Fetcher interface {
	// Name returns the provider's display name (e.g., "Yahoo Finance").
	Name() string

	// FetchRecords fetches one record per constituent, in input order.
	// Securities that fail are reported as FetchErrors and omitted; a
	// provider should return as many records as possible.
	FetchRecords(ctx context.Context, constituents []Constituent) ([]valuation.SecurityRecord, []FetchError)
}
