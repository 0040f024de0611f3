// Package validator provides custom validation functions for Gin's binding engine.
package validator

import (
	"regexp"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"valuemap/internal/treemap"
	"valuemap/internal/valuation"
)

// tickerQueryRegex accepts Yahoo-style tickers ("AAPL", "BRK-B", "005930.KS")
// and bare exchange codes.
var tickerQueryRegex = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9.\-]{0,14}$`)

// Register registers all custom validators with the Gin binding engine.
func Register() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		RegisterOn(v)
	}
}

// RegisterOn registers the custom validators on v.
func RegisterOn(v *validator.Validate) {
	_ = v.RegisterValidation("market", validateMarket)
	_ = v.RegisterValidation("size_mode", validateSizeMode)
	_ = v.RegisterValidation("ticker_query", validateTickerQuery)
}

func validateMarket(fl validator.FieldLevel) bool {
	_, ok := valuation.ParseMarket(fl.Field().String())
	return ok
}

func validateSizeMode(fl validator.FieldLevel) bool {
	_, ok := treemap.ParseSizeMode(fl.Field().String())
	return ok
}

func validateTickerQuery(fl validator.FieldLevel) bool {
	return tickerQueryRegex.MatchString(fl.Field().String())
}
