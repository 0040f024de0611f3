package valuation

import (
	"fmt"
	"strconv"
	"strings"
)

// CashFlowSelection is the cash-flow figure chosen to represent a security.
// Value is returned uninterpreted: it may be absent, zero or negative.
type CashFlowSelection struct {
	Method CashFlowMethod
	Value  Optional
}

// IsRealEstateSector reports whether a sector name denotes real estate or REITs.
func IsRealEstateSector(sector string) bool {
	s := strings.ToLower(sector)
	return strings.Contains(s, "real estate") || strings.Contains(s, "reit")
}

// SelectCashFlowMethod prefers the FFO proxy for real-estate securities with a
// positive proxy and falls back to operating cash flow otherwise.
func SelectCashFlowMethod(r SecurityRecord) CashFlowSelection {
	if IsRealEstateSector(r.Sector) {
		if ffo := r.FFOProxy(); ffo.Positive() {
			return CashFlowSelection{Method: MethodFFO, Value: ffo}
		}
	}
	return CashFlowSelection{Method: MethodOCF, Value: r.TTMOperatingCashFlow}
}

// ComputePCF divides market capitalisation by the selected cash flow. The
// result is absent when either input is missing or not strictly positive.
func ComputePCF(marketCap float64, sel CashFlowSelection) Optional {
	if !(marketCap > 0) {
		return None()
	}
	cf, ok := sel.Value.Get()
	if !ok || cf <= 0 {
		return None()
	}
	return Some(marketCap / cf)
}

// FormatPCF renders a ratio with one decimal and an "x" suffix, or "N/A".
func FormatPCF(pcf Optional) string {
	v, ok := pcf.Get()
	if !ok {
		return "N/A"
	}
	return fmt.Sprintf("%.1fx", v)
}

// ParsePCFDisplay is the inverse of FormatPCF. Anything that is not a
// formatted ratio parses as absent.
func ParsePCFDisplay(s string) Optional {
	s = strings.TrimSpace(s)
	num, ok := strings.CutSuffix(s, "x")
	if !ok {
		return None()
	}
	v, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return None()
	}
	return Some(v)
}
