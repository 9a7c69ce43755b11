// Package currency rounds monetary amounts to a currency's minor-unit
// precision. Amounts move through the adapter as float64 (that is what the
// commerce layer stores), so all arithmetic that matters goes through
// shopspring/decimal to keep comparisons exact.
package currency

import (
	"strings"

	"github.com/shopspring/decimal"
)

// minorUnits lists the ISO 4217 currencies that do not use two decimal
// places. Everything absent defaults to 2.
var minorUnits = map[string]int32{
	"BIF": 0, "CLP": 0, "DJF": 0, "GNF": 0, "ISK": 0, "JPY": 0,
	"KMF": 0, "KRW": 0, "PYG": 0, "RWF": 0, "UGX": 0, "UYI": 0,
	"VND": 0, "VUV": 0, "XAF": 0, "XOF": 0, "XPF": 0,
	"BHD": 3, "IQD": 3, "JOD": 3, "KWD": 3, "LYD": 3, "OMR": 3, "TND": 3,
}

// Digits returns the number of minor-unit digits for an ISO currency code.
func Digits(code string) int32 {
	if d, ok := minorUnits[strings.ToUpper(code)]; ok {
		return d
	}
	return 2
}

// Round rounds amount to the minor-unit precision of the given currency,
// half away from zero.
func Round(amount float64, code string) float64 {
	f, _ := RoundDecimal(decimal.NewFromFloat(amount), code).Float64()
	return f
}

// RoundDecimal is Round without the float round trip, for callers that keep
// working in decimal space.
func RoundDecimal(amount decimal.Decimal, code string) decimal.Decimal {
	return amount.Round(Digits(code))
}
