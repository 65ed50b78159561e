package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/jwaldner/strikescan/internal/dto"
	"github.com/jwaldner/strikescan/internal/logger"
	"github.com/jwaldner/strikescan/internal/models"
	"github.com/jwaldner/strikescan/internal/services"
)

// Scanner runs a batch of tickers
type Scanner interface {
	Scan(ctx context.Context, tickers []string, delay time.Duration) (string, []models.Outcome)
}

// SnapshotHandler serves premium snapshots and the watchlist
type SnapshotHandler struct {
	scanner  Scanner
	tickers  *services.TickerService
	requests *services.RequestService
}

// NewSnapshotHandler creates a new snapshot handler
func NewSnapshotHandler(scanner Scanner, tickers *services.TickerService) *SnapshotHandler {
	return &SnapshotHandler{
		scanner:  scanner,
		tickers:  tickers,
		requests: services.NewRequestService(),
	}
}

// CreateSnapshotHandler runs one scan and returns every outcome
func (h *SnapshotHandler) CreateSnapshotHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	req, err := h.requests.ParseSnapshotRequest(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	tickers, err := h.tickers.Tickers(req.Tickers)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	delay := time.Duration(-1)
	if req.LaunchDelayMillis > 0 {
		delay = time.Duration(req.LaunchDelayMillis) * time.Millisecond
	}

	logger.Info.Printf("📡 Snapshot requested for %d tickers: %v", len(tickers), tickers)
	start := time.Now()
	runID, outcomes := h.scanner.Scan(r.Context(), tickers, delay)

	response := dto.SnapshotResponse{
		RunID:      runID,
		Tickers:    tickers,
		Results:    make([]dto.TickerSummary, 0, len(outcomes)),
		DurationMs: time.Since(start).Milliseconds(),
	}
	for _, o := range outcomes {
		response.Results = append(response.Results, dto.NewTickerSummary(o))
		if o.Succeeded() {
			response.Succeeded++
		} else {
			response.Failed++
		}
	}

	if err := json.NewEncoder(w).Encode(response); err != nil {
		logger.Error.Printf("❌ JSON encoding failed: %v", err)
	}
}

// WatchlistHandler returns the tickers a default scan would use
func (h *SnapshotHandler) WatchlistHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	tickers, err := h.tickers.Tickers(nil)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	json.NewEncoder(w).Encode(dto.WatchlistResponse{
		Tickers: tickers,
		Count:   len(tickers),
		Source:  h.tickers.Source(),
	})
}

// HealthHandler reports that the server is up
func HealthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
	})
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{
		"status":  "error",
		"message": message,
	})
}
