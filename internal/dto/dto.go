package dto

import "github.com/jwaldner/strikescan/internal/models"

// SnapshotRequest asks for a premium snapshot of some tickers
type SnapshotRequest struct {
	Tickers []string `json:"tickers"`
	// 0 uses the configured delay
	LaunchDelayMillis int64 `json:"launch_delay_ms,omitempty"`
}

// SnapshotResponse carries every outcome of one run
type SnapshotResponse struct {
	RunID      string          `json:"run_id"`
	Tickers    []string        `json:"tickers"`
	Results    []TickerSummary `json:"results"`
	Succeeded  int             `json:"succeeded"`
	Failed     int             `json:"failed"`
	DurationMs int64           `json:"duration_ms"`
}

// TickerSummary is one outcome in a response
type TickerSummary struct {
	Ticker string               `json:"ticker"`
	Status string               `json:"status"` // "success" or "failed"
	Result *models.TickerResult `json:"result,omitempty"`
	Stage  string               `json:"stage,omitempty"`
	Error  string               `json:"error,omitempty"`
}

// WatchlistResponse lists the tickers a default run would scan
type WatchlistResponse struct {
	Tickers []string `json:"tickers"`
	Count   int      `json:"count"`
	Source  string   `json:"source"`
}

// NewTickerSummary converts an outcome
func NewTickerSummary(o models.Outcome) TickerSummary {
	if o.Succeeded() {
		return TickerSummary{Ticker: o.Ticker, Status: "success", Result: o.Result}
	}
	s := TickerSummary{Ticker: o.Ticker, Status: "failed"}
	if o.Failure != nil {
		s.Stage = o.Failure.Stage
		s.Error = o.Failure.Reason()
	}
	return s
}
