package integration

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"valuemap/internal/handlers"
	"valuemap/internal/logger"
	"valuemap/internal/metrics"
	"valuemap/internal/middleware"
	"valuemap/internal/provider"
	"valuemap/internal/services"
	"valuemap/internal/testutil"
	"valuemap/internal/validator"
)

const (
	testAPIKey       = "integration-key"
	cookiePath       = "/consent"
	crumbPath        = "/v1/test/getcrumb"
	testCrumb        = "integration-crumb"
	quoteSummaryPath = "/v10/finance/quoteSummary/"
	timeseriesPath   = "/ws/fundamentals-timeseries/v1/finance/timeseries/"
)

// testApp holds the full application stack for integration tests.
type testApp struct {
	DB      *gorm.DB
	Router  *gin.Engine
	Metrics *metrics.Registry
	// upstreamCalls counts requests served by the fake Yahoo server.
	upstreamCalls *atomic.Int64
}

func init() {
	gin.SetMode(gin.TestMode)
	logger.Init("test", "")
	validator.Register()
}

// fakeQuote is one security served by the fake Yahoo server.
type fakeQuote struct {
	name      string
	sector    string
	price     float64
	marketCap float64
	// quarterlyOCF is served oldest first.
	quarterlyOCF []float64
}

// staticLister serves fixed constituents per index.
type staticLister map[provider.Index][]provider.Constituent

func (l staticLister) Constituents(_ context.Context, idx provider.Index, limit int) ([]provider.Constituent, error) {
	list := l[idx]
	if limit > 0 && len(list) > limit {
		list = list[:limit]
	}
	return list, nil
}

func raw(v float64) map[string]float64 { return map[string]float64{"raw": v} }

// newFakeYahoo serves quoteSummary and timeseries for quotes. Unknown symbols
// get a 404.
func newFakeYahoo(t *testing.T, quotes map[string]fakeQuote, calls *atomic.Int64) *httptest.Server {
	t.Helper()

	quarters := []string{"2023-09-30", "2023-12-31", "2024-03-31", "2024-06-30", "2024-09-30"}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case cookiePath:
			w.WriteHeader(http.StatusNotFound)
			return
		case crumbPath:
			_, _ = w.Write([]byte(testCrumb))
			return
		}
		calls.Add(1)
		w.Header().Set("Content-Type", "application/json")

		var symbol string
		var isQuote bool
		switch {
		case strings.HasPrefix(r.URL.Path, quoteSummaryPath):
			symbol, isQuote = strings.TrimPrefix(r.URL.Path, quoteSummaryPath), true
		case strings.HasPrefix(r.URL.Path, timeseriesPath):
			symbol = strings.TrimPrefix(r.URL.Path, timeseriesPath)
		}
		q, ok := quotes[symbol]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}

		if isQuote {
			if r.URL.Query().Get("crumb") != testCrumb {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			_ = json.NewEncoder(w).Encode(map[string]any{
				"quoteSummary": map[string]any{
					"result": []any{map[string]any{
						"assetProfile":  map[string]any{"sector": q.sector},
						"price":         map[string]any{"marketCap": raw(q.marketCap), "currency": "USD", "longName": q.name},
						"financialData": map[string]any{"currentPrice": raw(q.price)},
					}},
				},
			})
			return
		}

		points := make([]any, 0, len(q.quarterlyOCF))
		for i, v := range q.quarterlyOCF {
			points = append(points, map[string]any{"asOfDate": quarters[i%len(quarters)], "reportedValue": raw(v)})
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"timeseries": map[string]any{
				"result": []any{map[string]any{
					"meta":                       map[string]any{"symbol": []string{symbol}, "type": []string{"quarterlyOperatingCashFlow"}},
					"quarterlyOperatingCashFlow": points,
				}},
			},
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

// setupApp creates a full application stack backed by an isolated in-memory
// SQLite and a fake Yahoo Finance server.
func setupApp(t *testing.T, lister provider.ConstituentLister, quotes map[string]fakeQuote) *testApp {
	t.Helper()

	db := testutil.SetupTestDB(t)
	reg := metrics.NewRegistry()
	calls := &atomic.Int64{}
	yahoo := newFakeYahoo(t, quotes, calls)

	fetcher := provider.NewYahooProvider(yahoo.Client(), provider.YahooOptions{
		Concurrency: 4,
		Metrics:     reg,
		BaseURL:     yahoo.URL,
		CookieURL:   yahoo.URL + cookiePath,
	})
	marketService := services.NewMarketService(db, lister, fetcher, services.MarketServiceOptions{Metrics: reg})
	marketHandler := handlers.NewMarketHandler(marketService, 30)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogging())
	router.Use(middleware.HTTPMetrics(reg))
	router.Use(middleware.ErrorHandler())

	v1 := router.Group("/api/v1")
	markets := v1.Group("/markets")
	markets.GET("", marketHandler.ListMarkets)
	markets.GET("/:market", marketHandler.GetMarket)
	markets.GET("/:market/records", marketHandler.ListRecords)
	markets.GET("/:market/treemap", marketHandler.GetTreemap)
	markets.GET("/:market/summary", marketHandler.GetSummary)
	markets.GET("/:market/picks", marketHandler.GetStrongPicks)
	markets.GET("/:market/portfolio", marketHandler.GetPortfolio)
	markets.GET("/:market/snapshots", marketHandler.ListSnapshots)
	v1.GET("/securities/search", marketHandler.SearchSecurity)

	pipeline := router.Group("/pipeline")
	pipeline.Use(middleware.PipelineAuthMiddleware(testAPIKey))
	pipeline.POST("/markets/:market/refresh", marketHandler.RefreshMarket)

	router.GET("/metrics", gin.WrapH(reg.Handler()))

	return &testApp{DB: db, Router: router, Metrics: reg, upstreamCalls: calls}
}

// request makes an HTTP request to the test router and returns the recorder.
func (app *testApp) request(method, path, apiKey string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if apiKey != "" {
		req.Header.Set("X-API-Key", apiKey)
	}
	rec := httptest.NewRecorder()
	app.Router.ServeHTTP(rec, req)
	return rec
}

// parseJSON parses the response body into a map.
func parseJSON(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var result map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse JSON: %v\nbody: %s", err, rec.Body.String())
	}
	return result
}

// errorCode extracts error.code from an error response.
func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	body := parseJSON(t, rec)
	detail, ok := body["error"].(map[string]interface{})
	if !ok {
		t.Fatalf("expected error object, got %s", rec.Body.String())
	}
	code, _ := detail["code"].(string)
	return code
}
