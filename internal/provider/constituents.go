package provider

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"valuemap/internal/logger"
	"valuemap/internal/metrics"
	"valuemap/internal/valuation"
)

const wikipediaBaseURL = "https://en.wikipedia.org/wiki/"

// wikipediaPages maps scrapable indices to their article.
var wikipediaPages = map[Index]string{
	IndexSP500:     "List_of_S%26P_500_companies",
	IndexNasdaq100: "Nasdaq-100",
}

var (
	tickerHeaders = []string{"symbol", "ticker"}
	nameHeaders   = []string{"security", "company"}
)

// WikipediaLister scrapes S&P 500 and Nasdaq-100 members from Wikipedia
// tables and serves every other index from built-in lists.
type WikipediaLister struct {
	httpClient *http.Client
	baseURL    string // overridable for tests
	metrics    *metrics.Registry
	log        *zap.SugaredLogger
}

// NewWikipediaLister creates a constituent lister. m may be nil.
func NewWikipediaLister(httpClient *http.Client, m *metrics.Registry) *WikipediaLister {
	return &WikipediaLister{
		httpClient: httpClient,
		baseURL:    wikipediaBaseURL,
		metrics:    m,
		log:        logger.Named("constituents"),
	}
}

// Constituents returns at most limit members of idx. A scrape failure or an
// empty table falls back to the built-in list.
func (l *WikipediaLister) Constituents(ctx context.Context, idx Index, limit int) ([]Constituent, error) {
	fallback := builtinList(idx)
	if fallback == nil {
		return nil, fmt.Errorf("unknown index %q", idx)
	}

	list := fallback
	if page, ok := wikipediaPages[idx]; ok {
		scraped, err := l.scrape(ctx, page)
		switch {
		case err != nil:
			l.log.Warnw("constituent scrape failed, using built-in list", "index", idx, "error", err)
		case len(scraped) == 0:
			l.log.Warnw("constituent table empty, using built-in list", "index", idx)
		default:
			list = scraped
		}
	}

	if limit > 0 && len(list) > limit {
		list = list[:limit]
	}
	out := make([]Constituent, len(list))
	copy(out, list)
	return out, nil
}

func (l *WikipediaLister) scrape(ctx context.Context, page string) ([]Constituent, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, l.baseURL+page, nil)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := l.httpClient.Do(req)
	if err != nil {
		l.metrics.ObserveProviderRequest("wikipedia", "error")
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		l.metrics.ObserveProviderRequest("wikipedia", "error")
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	l.metrics.ObserveProviderRequest("wikipedia", "ok")

	return parseConstituentTable(resp.Body, valuation.MarketUSA)
}

// parseConstituentTable reads the first table whose header has a ticker
// column. Yahoo symbols replace "." with "-" (BRK.B -> BRK-B).
func parseConstituentTable(r io.Reader, market valuation.Market) ([]Constituent, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parsing html: %w", err)
	}

	var out []Constituent
	doc.Find("table").EachWithBreak(func(_ int, table *goquery.Selection) bool {
		var headers []string
		table.Find("tr").First().Find("th").Each(func(_ int, th *goquery.Selection) {
			headers = append(headers, strings.ToLower(strings.TrimSpace(th.Text())))
		})

		tickerCol := columnIndex(headers, tickerHeaders)
		if tickerCol < 0 {
			return true
		}
		nameCol := columnIndex(headers, nameHeaders)
		if nameCol < 0 {
			nameCol = tickerCol + 1
		}

		table.Find("tr").Slice(1, goquery.ToEnd).Each(func(_ int, tr *goquery.Selection) {
			cells := tr.Find("td, th")
			ticker := strings.TrimSpace(cells.Eq(tickerCol).Text())
			if ticker == "" {
				return
			}
			name := strings.TrimSpace(cells.Eq(nameCol).Text())
			out = append(out, Constituent{
				Symbol:        strings.ReplaceAll(ticker, ".", "-"),
				DisplayTicker: ticker,
				Name:          name,
				Market:        market,
			})
		})
		return false
	})
	return out, nil
}

func columnIndex(headers, candidates []string) int {
	for i, h := range headers {
		for _, c := range candidates {
			if h == c {
				return i
			}
		}
	}
	return -1
}
