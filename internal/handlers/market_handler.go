package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"valuemap/internal/config"
	apperrors "valuemap/internal/errors"
	"valuemap/internal/pagination"
	"valuemap/internal/services"
	"valuemap/internal/treemap"
)

// MarketHandler handles market valuation requests.
type MarketHandler struct {
	marketService services.MarketServicer
	defaultLimit  int
}

// NewMarketHandler creates a new MarketHandler. defaultLimit applies when a
// request omits ?limit.
func NewMarketHandler(marketService services.MarketServicer, defaultLimit int) *MarketHandler {
	if defaultLimit < config.MinLimit || defaultLimit > config.MaxLimit {
		defaultLimit = 30
	}
	return &MarketHandler{marketService: marketService, defaultLimit: defaultLimit}
}

// RecordsQuery holds the query parameters of the detail table endpoint.
type RecordsQuery struct {
	LimitQuery
	pagination.PageRequest
}

// TreemapQuery holds the query parameters of the treemap endpoint.
type TreemapQuery struct {
	LimitQuery
	SizeMode    string `form:"size_mode" binding:"omitempty,size_mode"`
	HideInvalid *bool  `form:"hide_invalid"`
}

// SearchQuery holds the query parameters of the security search endpoint.
type SearchQuery struct {
	Q string `form:"q" binding:"required,ticker_query"`
}

// ListMarkets handles listing the supported markets.
// @Summary     List markets
// @Description Get the supported markets and the indices that make them up
// @Tags        markets
// @Produce     json
// @Success     200 {object} map[string][]services.MarketInfo "Markets"
// @Router      /api/v1/markets [get]
func (h *MarketHandler) ListMarkets(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"markets": h.marketService.Markets()})
}

// GetMarket handles fetching a market's enriched dataset.
// @Summary     Get market dataset
// @Description Get the latest enriched snapshot of a market, fetching one if none is stored
// @Tags        markets
// @Produce     json
// @Param       market path  string true  "Market (Korea, USA, Japan, Europe)"
// @Param       limit  query int    false "Constituents per index (10-300)"
// @Success     200 {object} services.Dataset "Dataset"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     404 {object} ErrorResponse "Unknown market or no data"
// @Failure     409 {object} ErrorResponse "Refresh in progress"
// @Failure     502 {object} ErrorResponse "Upstream unavailable"
// @Router      /api/v1/markets/{market} [get]
func (h *MarketHandler) GetMarket(c *gin.Context) {
	market, err := parseMarket(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	var q LimitQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	ds, err := h.marketService.GetDataset(c.Request.Context(), market, resolveLimit(q, h.defaultLimit))
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, ds)
}

// ListRecords handles paging through a market's detail table.
// @Summary     List market records
// @Description Get a page of enriched records ordered by P/CF, unvalued last
// @Tags        markets
// @Produce     json
// @Param       market    path  string true  "Market"
// @Param       limit     query int    false "Constituents per index (10-300)"
// @Param       page      query int    false "Page number (default 1)"
// @Param       page_size query int    false "Items per page (default 20, max 100)"
// @Success     200 {object} pagination.PageResponse[valuation.EnrichedRecord] "Records"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     404 {object} ErrorResponse "Unknown market or no data"
// @Router      /api/v1/markets/{market}/records [get]
func (h *MarketHandler) ListRecords(c *gin.Context) {
	market, err := parseMarket(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	var q RecordsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	ds, err := h.marketService.GetDataset(c.Request.Context(), market, resolveLimit(q.LimitQuery, h.defaultLimit))
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, pagination.Slice(ds.Records, q.PageRequest))
}

// GetTreemap handles encoding a market as a treemap.
// @Summary     Get market treemap
// @Description Get treemap tiles colored by P/CF and sized by market cap or undervaluation
// @Tags        markets
// @Produce     json
// @Param       market       path  string true  "Market"
// @Param       limit        query int    false "Constituents per index (10-300)"
// @Param       size_mode    query string false "market_cap or undervaluation (default)"
// @Param       hide_invalid query bool   false "Hide securities without a valid P/CF (default true)"
// @Success     200 {object} services.TreemapView "Treemap"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     404 {object} ErrorResponse "Unknown market or no data"
// @Router      /api/v1/markets/{market}/treemap [get]
func (h *MarketHandler) GetTreemap(c *gin.Context) {
	market, err := parseMarket(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	var q TreemapQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	mode, _ := treemap.ParseSizeMode(q.SizeMode)
	hideInvalid := true
	if q.HideInvalid != nil {
		hideInvalid = *q.HideInvalid
	}

	view, err := h.marketService.Treemap(c.Request.Context(), market, resolveLimit(q.LimitQuery, h.defaultLimit), mode, hideInvalid)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, view)
}

// GetSummary handles fetching a market's P/CF statistics.
// @Summary     Get market summary
// @Description Get total, valid and unvalued counts plus median and mean P/CF
// @Tags        markets
// @Produce     json
// @Param       market path  string true  "Market"
// @Param       limit  query int    false "Constituents per index (10-300)"
// @Success     200 {object} map[string]valuation.Summary "Summary"
// @Failure     404 {object} ErrorResponse "Unknown market or no data"
// @Router      /api/v1/markets/{market}/summary [get]
func (h *MarketHandler) GetSummary(c *gin.Context) {
	market, err := parseMarket(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	var q LimitQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	summary, err := h.marketService.Summary(c.Request.Context(), market, resolveLimit(q, h.defaultLimit))
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"summary": summary})
}

// GetStrongPicks handles the strong picks screen.
// @Summary     Get strong picks
// @Description Securities at or below 10x P/CF with revenue and cash flow both in uptrend
// @Tags        markets
// @Produce     json
// @Param       market path  string true  "Market"
// @Param       limit  query int    false "Constituents per index (10-300)"
// @Success     200 {object} map[string][]valuation.EnrichedRecord "Strong picks"
// @Failure     404 {object} ErrorResponse "Unknown market or no data"
// @Router      /api/v1/markets/{market}/picks [get]
func (h *MarketHandler) GetStrongPicks(c *gin.Context) {
	market, err := parseMarket(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	var q LimitQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	picks, err := h.marketService.StrongPicks(c.Request.Context(), market, resolveLimit(q, h.defaultLimit))
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"picks": picks, "count": len(picks)})
}

// GetPortfolio handles the portfolio proposal screen.
// @Summary     Get portfolio proposal
// @Description Up to five growing securities with P/CF at or below 12x, cheapest first
// @Tags        markets
// @Produce     json
// @Param       market path  string true  "Market"
// @Param       limit  query int    false "Constituents per index (10-300)"
// @Success     200 {object} map[string][]valuation.EnrichedRecord "Portfolio"
// @Failure     404 {object} ErrorResponse "Unknown market or no data"
// @Router      /api/v1/markets/{market}/portfolio [get]
func (h *MarketHandler) GetPortfolio(c *gin.Context) {
	market, err := parseMarket(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	var q LimitQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	portfolio, err := h.marketService.Portfolio(c.Request.Context(), market, resolveLimit(q, h.defaultLimit))
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"portfolio": portfolio})
}

// ListSnapshots handles listing a market's stored snapshots.
// @Summary     List snapshots
// @Description Get stored snapshots of a market, newest first
// @Tags        markets
// @Produce     json
// @Param       market    path  string true  "Market"
// @Param       page      query int    false "Page number (default 1)"
// @Param       page_size query int    false "Items per page (default 20, max 100)"
// @Success     200 {object} pagination.PageResponse[models.MarketSnapshot] "Snapshots"
// @Failure     404 {object} ErrorResponse "Unknown market"
// @Router      /api/v1/markets/{market}/snapshots [get]
func (h *MarketHandler) ListSnapshots(c *gin.Context) {
	market, err := parseMarket(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	result, err := h.marketService.ListSnapshots(market, page)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// SearchSecurity handles looking up a single security.
// @Summary     Search security
// @Description Fetch and value one security: 6 digits for KRX, 4 digits for Tokyo, otherwise a US ticker
// @Tags        securities
// @Produce     json
// @Param       q query string true "Ticker or exchange code"
// @Success     200 {object} map[string]valuation.EnrichedRecord "Security"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     404 {object} ErrorResponse "Security not found"
// @Failure     502 {object} ErrorResponse "Upstream unavailable"
// @Router      /api/v1/securities/search [get]
func (h *MarketHandler) SearchSecurity(c *gin.Context) {
	var q SearchQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	security, err := h.marketService.Search(c.Request.Context(), q.Q)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"security": security})
}

// RefreshMarket handles a pipeline-triggered market refresh.
// @Summary     Refresh market
// @Description Fetch a new snapshot for a market (pipeline endpoint)
// @Tags        pipeline
// @Produce     json
// @Security    ApiKeyAuth
// @Param       market path  string true  "Market"
// @Param       limit  query int    false "Constituents per index (10-300)"
// @Success     201 {object} map[string]services.RefreshResult "Refresh result"
// @Failure     401 {object} ErrorResponse "Invalid API key"
// @Failure     404 {object} ErrorResponse "Unknown market or no data"
// @Failure     409 {object} ErrorResponse "Refresh in progress"
// @Failure     502 {object} ErrorResponse "Upstream unavailable"
// @Failure     503 {object} ErrorResponse "Pipeline not configured"
// @Router      /pipeline/markets/{market}/refresh [post]
func (h *MarketHandler) RefreshMarket(c *gin.Context) {
	market, err := parseMarket(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	var q LimitQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	result, err := h.marketService.Refresh(c.Request.Context(), market, resolveLimit(q, h.defaultLimit))
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"refresh": result})
}
