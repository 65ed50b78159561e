package services

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/jwaldner/strikescan/internal/dto"
)

// MaxLaunchDelay bounds the launch delay a request may ask for
const MaxLaunchDelay = time.Minute

// RequestService handles HTTP request parsing
type RequestService struct{}

// NewRequestService creates a new request service
func NewRequestService() *RequestService {
	return &RequestService{}
}

// ParseSnapshotRequest parses an HTTP request into a SnapshotRequest. An
// empty body is a request for the configured tickers.
func (s *RequestService) ParseSnapshotRequest(r *http.Request) (*dto.SnapshotRequest, error) {
	if r.Method != http.MethodPost {
		return nil, fmt.Errorf("method not allowed: %s", r.Method)
	}

	var req dto.SnapshotRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return nil, fmt.Errorf("failed to decode request: %w", err)
		}
	}

	if req.LaunchDelayMillis < 0 {
		return nil, fmt.Errorf("launch_delay_ms must not be negative")
	}
	if req.LaunchDelayMillis > MaxLaunchDelay.Milliseconds() {
		return nil, fmt.Errorf("launch_delay_ms must be at most %d", MaxLaunchDelay.Milliseconds())
	}

	req.Tickers = CleanTickers(req.Tickers)
	return &req, nil
}
