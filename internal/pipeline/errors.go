package pipeline

import (
	"fmt"

	"github.com/jwaldner/strikescan/internal/utils"
)

// NoPriceError means the chain page had no usable price
type NoPriceError struct {
	Ticker string
	Detail string
}

func (e *NoPriceError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("failed to retrieve the price of %s: %s", e.Ticker, e.Detail)
	}
	return fmt.Sprintf("failed to retrieve the price of %s", e.Ticker)
}

// NoChainError means an option table was missing or empty. Strike is zero
// when the chain page itself had no usable table.
type NoChainError struct {
	Ticker string
	Strike float64
	Err    error
}

func (e *NoChainError) Error() string {
	msg := fmt.Sprintf("failed to retrieve the options of %s", e.Ticker)
	if e.Strike > 0 {
		msg += " at the strike of " + utils.FormatStrike(e.Strike)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *NoChainError) Unwrap() error {
	return e.Err
}
