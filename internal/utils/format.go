package utils

import (
	"strconv"
	"strings"
)

// FormatStrike renders a strike the way the quote site's links and our
// column headers expect it: shortest decimal form, always with a fraction
// (112 -> "112.0", 112.5 -> "112.5").
func FormatStrike(strike float64) string {
	s := strconv.FormatFloat(strike, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

// FormatPercent renders a percentage value without trailing zeros
func FormatPercent(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// FormatMoney renders a premium with two decimals
func FormatMoney(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
