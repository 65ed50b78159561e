package pipeline

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/jwaldner/strikescan/internal/utils"
)

// ChainURL is the page holding the price and the nearest option chain
func ChainURL(quoteHost, ticker string) string {
	return fmt.Sprintf("%s/quote/%s/options?p=%s",
		strings.TrimRight(quoteHost, "/"), url.PathEscape(ticker), url.QueryEscape(ticker))
}

// StrikeURL is the page listing every expiration for one strike
func StrikeURL(quoteHost, ticker string, strike float64) string {
	return fmt.Sprintf("%s/quote/%s/options?strike=%s&straddle=false",
		strings.TrimRight(quoteHost, "/"), url.PathEscape(ticker), utils.FormatStrike(strike))
}
