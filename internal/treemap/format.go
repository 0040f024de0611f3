package treemap

import (
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.English)

// zeroDecimalCurrencies are quoted without minor units.
var zeroDecimalCurrencies = map[string]bool{"KRW": true, "JPY": true, "CNY": true}

// FormatPrice renders a price with thousands separators and its currency code.
func FormatPrice(price float64, currency string) string {
	if !(price > 0) {
		return "N/A"
	}
	c := strings.ToUpper(strings.TrimSpace(currency))
	if zeroDecimalCurrencies[c] {
		return printer.Sprintf("%s %.0f", c, price)
	}
	if c == "" {
		return printer.Sprintf("%.2f", price)
	}
	return printer.Sprintf("%s %.2f", c, price)
}

// FormatMarketCap renders a market capitalization in T/B/M units.
func FormatMarketCap(mc float64) string {
	switch {
	case !(mc > 0):
		return "N/A"
	case mc >= 1e12:
		return printer.Sprintf("$%.1fT", mc/1e12)
	case mc >= 1e9:
		return printer.Sprintf("$%.1fB", mc/1e9)
	case mc >= 1e6:
		return printer.Sprintf("$%.1fM", mc/1e6)
	default:
		return printer.Sprintf("$%.0f", mc)
	}
}
