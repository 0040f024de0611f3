package handlers

import (
	"errors"
	"fmt"

	"github.com/gin-gonic/gin"

	apperrors "valuemap/internal/errors"
	"valuemap/internal/logger"
	"valuemap/internal/valuation"
)

// ErrorDetail represents the inner error object in an error response.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

type marketURI struct {
	Market string `uri:"market" binding:"required,market"`
}

// LimitQuery is the per-index constituent count shared by market endpoints.
type LimitQuery struct {
	Limit int `form:"limit" binding:"omitempty,min=10,max=300"`
}

// parseMarket resolves the :market path parameter.
// Returns ErrUnknownMarket for anything but a supported market.
func parseMarket(c *gin.Context) (valuation.Market, error) {
	var uri marketURI
	if err := c.ShouldBindUri(&uri); err != nil {
		return "", apperrors.WithMessage(apperrors.ErrUnknownMarket, fmt.Sprintf("Unknown market %q", c.Param("market")))
	}
	m, _ := valuation.ParseMarket(uri.Market)
	return m, nil
}

// resolveLimit returns the requested limit or the configured default.
func resolveLimit(q LimitQuery, defaultLimit int) int {
	if q.Limit == 0 {
		return defaultLimit
	}
	return q.Limit
}

// respondWithError writes a consistent JSON error response. If the error is an
// *AppError it uses the error's status code, code, and message. Otherwise it
// logs the unexpected error and returns a generic internal server error.
func respondWithError(c *gin.Context, err error) {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		if appErr.Internal != nil {
			logger.Get().Errorw("app error",
				"code", appErr.Code,
				"internal", appErr.Internal.Error(),
				"path", c.Request.URL.Path,
			)
		}
		c.JSON(appErr.StatusCode, ErrorResponse{Error: ErrorDetail{Code: appErr.Code, Message: appErr.Message}})
		return
	}

	logger.Get().Errorw("unexpected error",
		"error", err.Error(),
		"path", c.Request.URL.Path,
		"method", c.Request.Method,
	)
	c.JSON(apperrors.ErrInternalServer.StatusCode, ErrorResponse{Error: ErrorDetail{
		Code:    apperrors.ErrInternalServer.Code,
		Message: apperrors.ErrInternalServer.Message,
	}})
}
