package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"valuemap/internal/logger"
	"valuemap/internal/metrics"
	"valuemap/internal/valuation"
)

const (
	yahooBaseURL     = "https://query2.finance.yahoo.com"
	yahooCookieURL   = "https://fc.yahoo.com"
	crumbPath        = "/v1/test/getcrumb"
	quoteSummaryPath = "/v10/finance/quoteSummary/"
	timeseriesPath   = "/ws/fundamentals-timeseries/v1/finance/timeseries/"
	userAgent        = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7)"

	ttmQuarters  = 4
	historyYears = 5
)

// Timeseries types, in fallback order per figure.
var (
	ocfQuarterly       = []string{"quarterlyOperatingCashFlow", "quarterlyFreeCashFlow"}
	netIncomeQuarterly = []string{"quarterlyNetIncomeFromContinuingOperations", "quarterlyNetIncome"}
	depQuarterly       = []string{"quarterlyDepreciationAndAmortization", "quarterlyDepreciationAmortizationDepletion"}
	revenueAnnual      = []string{"annualTotalRevenue"}
	cfAnnual           = []string{"annualOperatingCashFlow", "annualFreeCashFlow"}
)

var timeseriesTypes = strings.Join(concat(ocfQuarterly, netIncomeQuarterly, depQuarterly, revenueAnnual, cfAnnual), ",")

// yahooError is the error object Yahoo embeds in failed responses.
type yahooError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

// rawValue is Yahoo's {"raw": 1.0, "fmt": "1.00"} number wrapper.
type rawValue struct {
	Raw *float64 `json:"raw"`
}

func (v rawValue) optional() valuation.Optional {
	if v.Raw == nil {
		return valuation.None()
	}
	return valuation.Some(*v.Raw)
}

type quoteSummaryResponse struct {
	QuoteSummary struct {
		Result []quoteSummaryResult `json:"result"`
		Error  *yahooError          `json:"error"`
	} `json:"quoteSummary"`
}

type quoteSummaryResult struct {
	AssetProfile struct {
		Sector string `json:"sector"`
	} `json:"assetProfile"`
	Price struct {
		RegularMarketPrice rawValue `json:"regularMarketPrice"`
		MarketCap          rawValue `json:"marketCap"`
		Currency           string   `json:"currency"`
		LongName           string   `json:"longName"`
		ShortName          string   `json:"shortName"`
	} `json:"price"`
	FinancialData struct {
		CurrentPrice   rawValue `json:"currentPrice"`
		RevenueGrowth  rawValue `json:"revenueGrowth"`
		EarningsGrowth rawValue `json:"earningsGrowth"`
	} `json:"financialData"`
}

type timeseriesResponse struct {
	Timeseries struct {
		// Each result carries "meta", a "timestamp" array aligned with the
		// values, and one array keyed by its type name.
		Result []map[string]json.RawMessage `json:"result"`
		Error  *yahooError                  `json:"error"`
	} `json:"timeseries"`
}

type timeseriesPoint struct {
	AsOfDate      string   `json:"asOfDate"`
	ReportedValue rawValue `json:"reportedValue"`
}

// YahooOptions tunes request pacing.
type YahooOptions struct {
	// RequestsPerSecond caps upstream calls; zero or less disables the limit.
	RequestsPerSecond float64
	// Concurrency bounds in-flight securities; values below 1 mean 1.
	Concurrency int
	Metrics     *metrics.Registry
	// BaseURL overrides the Yahoo Finance host.
	BaseURL string
	// CookieURL overrides the page that issues the session cookie.
	CookieURL string
}

// YahooProvider fetches quote and fundamentals data from Yahoo Finance.
type YahooProvider struct {
	httpClient  *http.Client
	baseURL     string // overridable for tests
	limiter     *rate.Limiter
	breaker     *gobreaker.CircuitBreaker
	crumbs      *crumbSource
	concurrency int
	metrics     *metrics.Registry
	log         *zap.SugaredLogger
}

// NewYahooProvider creates a new Yahoo Finance fundamentals provider.
func NewYahooProvider(httpClient *http.Client, opts YahooOptions) *YahooProvider {
	concurrency := max(opts.Concurrency, 1)
	limit := rate.Inf
	if opts.RequestsPerSecond > 0 {
		limit = rate.Limit(opts.RequestsPerSecond)
	}

	baseURL := firstNonEmpty(opts.BaseURL, yahooBaseURL)
	client := withCookieJar(httpClient)

	p := &YahooProvider{
		httpClient:  client,
		baseURL:     baseURL,
		crumbs:      newCrumbSource(client, firstNonEmpty(opts.CookieURL, yahooCookieURL), baseURL+crumbPath),
		limiter:     rate.NewLimiter(limit, concurrency),
		concurrency: concurrency,
		metrics:     opts.Metrics,
		log:         logger.Named("yahoo"),
	}
	p.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "yahoo",
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		// Unknown symbols and callers giving up say nothing about upstream health.
		IsSuccessful: func(err error) bool {
			return err == nil ||
				errors.Is(err, ErrSymbolNotFound) ||
				errors.Is(err, context.Canceled) ||
				errors.Is(err, context.DeadlineExceeded)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			p.log.Warnw("circuit breaker state changed", "breaker", name, "from", from.String(), "to", to.String())
		},
	})
	return p
}

// Name returns the provider's display name.
func (p *YahooProvider) Name() string { return "Yahoo Finance" }

// FetchRecords fetches records concurrently. Output order follows input order.
func (p *YahooProvider) FetchRecords(ctx context.Context, constituents []Constituent) ([]valuation.SecurityRecord, []FetchError) {
	if len(constituents) == 0 {
		return nil, nil
	}

	type outcome struct {
		record valuation.SecurityRecord
		err    error
	}
	outcomes := make([]outcome, len(constituents))

	sem := make(chan struct{}, p.concurrency)
	var wg sync.WaitGroup
	for i, c := range constituents {
		wg.Add(1)
		go func(i int, c Constituent) {
			defer wg.Done()
			select {
			case sem <- struct{}{}:
			case <-ctx.Done():
				outcomes[i].err = ctx.Err()
				return
			}
			defer func() { <-sem }()

			rec, err := p.FetchRecord(ctx, c)
			outcomes[i] = outcome{record: rec, err: err}
		}(i, c)
	}
	wg.Wait()

	records := make([]valuation.SecurityRecord, 0, len(constituents))
	var fetchErrors []FetchError
	for i, o := range outcomes {
		if o.err != nil {
			fetchErrors = append(fetchErrors, FetchError{Symbol: constituents[i].Symbol, Err: o.err})
			continue
		}
		records = append(records, o.record)
	}
	return records, fetchErrors
}

// FetchRecord builds the raw record for one security. A missing fundamentals
// series leaves the cash-flow fields absent rather than failing the record.
func (p *YahooProvider) FetchRecord(ctx context.Context, c Constituent) (valuation.SecurityRecord, error) {
	quote, err := p.quoteSummary(ctx, c.Symbol)
	if err != nil {
		return valuation.SecurityRecord{}, err
	}

	marketCap, ok := quote.Price.MarketCap.optional().Get()
	if !ok || marketCap <= 0 {
		return valuation.SecurityRecord{}, ErrNoMarketCap
	}

	rec := valuation.SecurityRecord{
		TickerSymbol:       c.Symbol,
		DisplayTicker:      firstNonEmpty(c.DisplayTicker, c.Symbol),
		Name:               firstNonEmpty(c.Name, quote.Price.LongName, quote.Price.ShortName, c.Symbol),
		Market:             c.Market,
		Sector:             firstNonEmpty(quote.AssetProfile.Sector, "Unknown"),
		Price:              quote.FinancialData.CurrentPrice.optional().OrElse(quote.Price.RegularMarketPrice.optional().OrElse(0)),
		Currency:           quote.Price.Currency,
		MarketCap:          marketCap,
		RevenueGrowthRate:  quote.FinancialData.RevenueGrowth.optional(),
		EarningsGrowthRate: quote.FinancialData.EarningsGrowth.optional(),
	}

	series, err := p.timeseries(ctx, c.Symbol)
	if err != nil {
		if ctx.Err() != nil {
			return valuation.SecurityRecord{}, ctx.Err()
		}
		p.log.Warnw("fundamentals unavailable", "symbol", c.Symbol, "error", err)
		return rec, nil
	}

	rec.TTMOperatingCashFlow = trailingSum(pick(series, ocfQuarterly))
	rec.TTMNetIncome = trailingSum(pick(series, netIncomeQuarterly))
	if dep, ok := trailingSum(pick(series, depQuarterly)).Get(); ok {
		rec.TTMDepreciation = valuation.Some(math.Abs(dep))
	}
	rec.RevenueHistory = annualHistory(pick(series, revenueAnnual))
	rec.CFHistory = annualHistory(pick(series, cfAnnual))
	return rec, nil
}

func (p *YahooProvider) quoteSummary(ctx context.Context, symbol string) (quoteSummaryResult, error) {
	u := p.baseURL + quoteSummaryPath + url.PathEscape(symbol) + "?modules=assetProfile,price,financialData"

	var resp quoteSummaryResponse
	if err := p.getJSON(ctx, "quote_summary", u, true, &resp); err != nil {
		return quoteSummaryResult{}, err
	}
	if e := resp.QuoteSummary.Error; e != nil {
		return quoteSummaryResult{}, fmt.Errorf("%w: %s", ErrSymbolNotFound, e.Description)
	}
	if len(resp.QuoteSummary.Result) == 0 {
		return quoteSummaryResult{}, ErrSymbolNotFound
	}
	return resp.QuoteSummary.Result[0], nil
}

// timeseries returns the points of every requested type, sorted by date
// ascending. Periods Yahoo reports as null are kept with an absent value.
func (p *YahooProvider) timeseries(ctx context.Context, symbol string) (map[string][]timeseriesPoint, error) {
	now := time.Now().UTC()
	q := url.Values{}
	q.Set("type", timeseriesTypes)
	q.Set("period1", strconv.FormatInt(now.AddDate(-(historyYears+1), 0, 0).Unix(), 10))
	q.Set("period2", strconv.FormatInt(now.Unix(), 10))
	u := p.baseURL + timeseriesPath + url.PathEscape(symbol) + "?" + q.Encode()

	var resp timeseriesResponse
	if err := p.getJSON(ctx, "timeseries", u, false, &resp); err != nil {
		return nil, err
	}
	if e := resp.Timeseries.Error; e != nil {
		return nil, fmt.Errorf("timeseries error %s: %s", e.Code, e.Description)
	}
	return parseTimeseries(resp)
}

func parseTimeseries(resp timeseriesResponse) (map[string][]timeseriesPoint, error) {
	out := make(map[string][]timeseriesPoint)
	for _, result := range resp.Timeseries.Result {
		var meta struct {
			Type []string `json:"type"`
		}
		if raw, ok := result["meta"]; ok {
			if err := json.Unmarshal(raw, &meta); err != nil {
				return nil, fmt.Errorf("decoding timeseries meta: %w", err)
			}
		}
		if len(meta.Type) == 0 {
			continue
		}
		name := meta.Type[0]
		raw, ok := result[name]
		if !ok {
			continue
		}

		var timestamps []int64
		if rawTS, ok := result["timestamp"]; ok {
			if err := json.Unmarshal(rawTS, &timestamps); err != nil {
				return nil, fmt.Errorf("decoding timeseries timestamps: %w", err)
			}
		}

		var points []*timeseriesPoint
		if err := json.Unmarshal(raw, &points); err != nil {
			return nil, fmt.Errorf("decoding timeseries %s: %w", name, err)
		}
		kept := make([]timeseriesPoint, 0, len(points))
		for i, pt := range points {
			if pt == nil {
				// A null entry is a reported period without a value; its
				// date comes from the aligned timestamp.
				if i >= len(timestamps) {
					continue
				}
				pt = &timeseriesPoint{AsOfDate: time.Unix(timestamps[i], 0).UTC().Format("2006-01-02")}
			}
			if pt.AsOfDate == "" {
				continue
			}
			kept = append(kept, *pt)
		}
		sort.SliceStable(kept, func(i, j int) bool { return kept[i].AsOfDate < kept[j].AsOfDate })
		out[name] = kept
	}
	return out, nil
}

// getJSON fetches u into dst through the limiter and breaker. With crumb set
// the session crumb is appended, and a rejected crumb is renewed once.
func (p *YahooProvider) getJSON(ctx context.Context, endpoint, u string, crumb bool, dst any) error {
	err := p.call(ctx, u, crumb, dst)
	if crumb && errors.Is(err, errInvalidCrumb) {
		p.log.Debugw("crumb rejected, renewing", "endpoint", endpoint)
		err = p.call(ctx, u, crumb, dst)
	}

	status := "ok"
	switch {
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		status = "open"
		err = fmt.Errorf("%w: %v", ErrUpstreamBlocked, err)
	case errors.Is(err, ErrSymbolNotFound):
		status = "not_found"
	case err != nil:
		status = "error"
	}
	p.metrics.ObserveProviderRequest(endpoint, status)
	return err
}

func (p *YahooProvider) call(ctx context.Context, u string, crumb bool, dst any) error {
	if err := p.limiter.Wait(ctx); err != nil {
		return err
	}

	_, err := p.breaker.Execute(func() (interface{}, error) {
		if !crumb {
			return nil, p.doGet(ctx, u, dst)
		}
		c, err := p.crumbs.get(ctx)
		if err != nil {
			return nil, err
		}
		err = p.doGet(ctx, u+"&crumb="+url.QueryEscape(c), dst)
		if errors.Is(err, errInvalidCrumb) {
			p.crumbs.invalidate(c)
		}
		return nil, err
	})
	return err
}

func (p *YahooProvider) doGet(ctx context.Context, u string, dst any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("http request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return ErrSymbolNotFound
	case resp.StatusCode == http.StatusUnauthorized:
		return errInvalidCrumb
	case resp.StatusCode != http.StatusOK:
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

// pick returns the first type in names with at least one reported value.
func pick(series map[string][]timeseriesPoint, names []string) []timeseriesPoint {
	for _, n := range names {
		for _, pt := range series[n] {
			if pt.ReportedValue.optional().Present() {
				return series[n]
			}
		}
	}
	return nil
}

// latest returns the last n periods of points.
func latest(points []timeseriesPoint, n int) []timeseriesPoint {
	if len(points) > n {
		return points[len(points)-n:]
	}
	return points
}

// trailingSum adds the reported values among the latest ttmQuarters periods.
// Null periods inside the window are skipped, never replaced by older ones.
func trailingSum(points []timeseriesPoint) valuation.Optional {
	var sum float64
	var reported bool
	for _, pt := range latest(points, ttmQuarters) {
		if v, ok := pt.ReportedValue.optional().Get(); ok {
			sum += v
			reported = true
		}
	}
	if !reported {
		return valuation.None()
	}
	return valuation.Some(sum)
}

// annualHistory keys the reported values among the latest historyYears
// periods by fiscal year.
func annualHistory(points []timeseriesPoint) valuation.History {
	h := make(valuation.History)
	for _, pt := range latest(points, historyYears) {
		v, ok := pt.ReportedValue.optional().Get()
		if !ok || len(pt.AsOfDate) < 4 {
			continue
		}
		year, err := strconv.Atoi(pt.AsOfDate[:4])
		if err != nil {
			continue
		}
		h[year] = v
	}
	if len(h) == 0 {
		return nil
	}
	return h
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

func concat(lists ...[]string) []string {
	var out []string
	for _, l := range lists {
		out = append(out, l...)
	}
	return out
}
