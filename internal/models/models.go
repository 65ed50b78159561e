package models

import "fmt"

// Side identifies the calls or puts half of an option chain
type Side string

const (
	Call Side = "call"
	Put  Side = "put"
)

// Quote is the underlying price read from the chain page
type Quote struct {
	Ticker   string  `json:"ticker"`
	Price    float64 `json:"price"`
	HasPrice bool    `json:"has_price"`
}

// TargetStrike is the listed strike picked for one side
type TargetStrike struct {
	Side  Side    `json:"side"`
	Value float64 `json:"value"`
}

// ExpirationRow is one data row of a strike-parameterized table.
// Ask >= Bid is not enforced.
type ExpirationRow struct {
	Expiration string  `json:"expiration"`
	Bid        float64 `json:"bid"`
	Ask        float64 `json:"ask"`
}

// PremiumRecord holds the bid/ask midpoint and its size relative to the underlying price
type PremiumRecord struct {
	Expiration     string  `json:"expiration"`
	Midpoint       float64 `json:"midpoint"`
	PercentOfPrice float64 `json:"percent_of_price"`
}

// ExpirationPremium is one output row, aligned by position across sides
type ExpirationPremium struct {
	Expiration string         `json:"expiration"`
	Call       *PremiumRecord `json:"call,omitempty"`
	Put        *PremiumRecord `json:"put,omitempty"`
}

// TickerResult is the successful outcome of one ticker pipeline
type TickerResult struct {
	Ticker     string              `json:"ticker"`
	Price      float64             `json:"price"`
	CallStrike float64             `json:"call_strike"`
	PutStrike  float64             `json:"put_strike"`
	Rows       []ExpirationPremium `json:"rows"`
}

// CallCount returns how many rows carry a call premium
func (r *TickerResult) CallCount() int {
	n := 0
	for _, row := range r.Rows {
		if row.Call != nil {
			n++
		}
	}
	return n
}

// PutCount returns how many rows carry a put premium
func (r *TickerResult) PutCount() int {
	n := 0
	for _, row := range r.Rows {
		if row.Put != nil {
			n++
		}
	}
	return n
}

// TickerFailure is the failed outcome of one ticker pipeline
type TickerFailure struct {
	Ticker string `json:"ticker"`
	Stage  string `json:"stage"`
	Err    error  `json:"-"`
}

// Reason returns the failure cause as text
func (f *TickerFailure) Reason() string {
	if f.Err == nil {
		return "unknown failure"
	}
	return f.Err.Error()
}

func (f *TickerFailure) Error() string {
	return fmt.Sprintf("%s failed during %s: %s", f.Ticker, f.Stage, f.Reason())
}

func (f *TickerFailure) Unwrap() error {
	return f.Err
}

// Outcome carries either a result or a failure for one ticker
type Outcome struct {
	Ticker  string         `json:"ticker"`
	Result  *TickerResult  `json:"result,omitempty"`
	Failure *TickerFailure `json:"failure,omitempty"`
}

// Succeeded reports whether the pipeline produced a result
func (o Outcome) Succeeded() bool {
	return o.Result != nil && o.Failure == nil
}

// Success wraps a result
func Success(result *TickerResult) Outcome {
	return Outcome{Ticker: result.Ticker, Result: result}
}

// Failure wraps a failure
func Failure(ticker, stage string, err error) Outcome {
	return Outcome{
		Ticker:  ticker,
		Failure: &TickerFailure{Ticker: ticker, Stage: stage, Err: err},
	}
}
