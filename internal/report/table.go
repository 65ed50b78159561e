// Package report renders ticker outcomes and delivers them to sinks.
package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/jwaldner/strikescan/internal/models"
	"github.com/jwaldner/strikescan/internal/utils"
)

// TableData is the tabular form of one ticker result
type TableData struct {
	Ticker  string
	Headers []string
	Rows    [][]string
}

// Table builds the premium table for result. The last column carries the
// ticker name in its header and is blank in every row.
func Table(result *models.TickerResult) TableData {
	t := TableData{
		Ticker: result.Ticker,
		Headers: []string{
			"Expiration Date",
			utils.FormatStrike(result.CallStrike) + " Call",
			"Call %",
			utils.FormatStrike(result.PutStrike) + " Put",
			"Put %",
			result.Ticker,
		},
	}

	for _, r := range result.Rows {
		row := []string{r.Expiration, "", "", "", "", ""}
		if r.Call != nil {
			row[1] = utils.FormatMoney(r.Call.Midpoint)
			row[2] = utils.FormatPercent(r.Call.PercentOfPrice)
		}
		if r.Put != nil {
			row[3] = utils.FormatMoney(r.Put.Midpoint)
			row[4] = utils.FormatPercent(r.Put.PercentOfPrice)
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

// FailureNotice is the one-line message printed for a failed ticker
func FailureNotice(f *models.TickerFailure) string {
	msg := f.Reason()
	if strings.HasPrefix(msg, "failed to retrieve") {
		return capitalize(msg)
	}
	return fmt.Sprintf("Failed to retrieve %s during %s: %s", f.Ticker, f.Stage, msg)
}

func capitalize(s string) string {
	if s == "" || s[0] < 'a' || s[0] > 'z' {
		return s
	}
	return string(s[0]-'a'+'A') + s[1:]
}

// Payload is the structured form of an outcome sent to JSON, Redis and Kafka sinks
type Payload struct {
	RunID       string               `json:"run_id"`
	Ticker      string               `json:"ticker"`
	GeneratedAt time.Time            `json:"generated_at"`
	Success     bool                 `json:"success"`
	Result      *models.TickerResult `json:"result,omitempty"`
	Stage       string               `json:"stage,omitempty"`
	Error       string               `json:"error,omitempty"`
}

// NewPayload builds the payload for outcome
func NewPayload(runID string, o models.Outcome, now time.Time) Payload {
	p := Payload{
		RunID:       runID,
		Ticker:      o.Ticker,
		GeneratedAt: now.UTC(),
		Success:     o.Succeeded(),
		Result:      o.Result,
	}
	if o.Failure != nil {
		p.Stage = o.Failure.Stage
		p.Error = o.Failure.Reason()
	}
	return p
}
