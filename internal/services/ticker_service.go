package services

import (
	"fmt"
	"strings"

	"github.com/jwaldner/strikescan/internal/config"
	"github.com/jwaldner/strikescan/internal/logger"
	"github.com/jwaldner/strikescan/internal/symbols"
)

// CleanTickers trims and upper-cases tickers, dropping blanks and duplicates
// while keeping the original order
func CleanTickers(raw []string) []string {
	seen := make(map[string]bool)
	var clean []string
	for _, t := range raw {
		t = strings.TrimSpace(strings.ToUpper(t))
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		clean = append(clean, t)
	}
	return clean
}

// TickerService handles ticker selection logic
type TickerService struct {
	config *config.Config
}

// NewTickerService creates a new ticker service
func NewTickerService(cfg *config.Config) *TickerService {
	return &TickerService{config: cfg}
}

// Tickers returns the tickers to scan: explicit ones win, then the
// watchlist file, then the configured defaults
func (s *TickerService) Tickers(explicit []string) ([]string, error) {
	if clean := CleanTickers(explicit); len(clean) > 0 {
		return clean, nil
	}

	if s.config.WatchlistFile != "" {
		list, err := symbols.LoadWatchlist(s.config.WatchlistFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load watchlist: %w", err)
		}
		if tickers := CleanTickers(symbols.Tickers(list)); len(tickers) > 0 {
			return tickers, nil
		}
		logger.Warn.Printf("⚠️  Watchlist %s is empty, using default tickers", s.config.WatchlistFile)
	}

	if tickers := CleanTickers(s.config.DefaultTickers); len(tickers) > 0 {
		return tickers, nil
	}
	return nil, fmt.Errorf("no tickers configured")
}

// Source returns a description of where tickers come from
func (s *TickerService) Source() string {
	if s.config.WatchlistFile != "" {
		return "Watchlist: " + s.config.WatchlistFile
	}
	return fmt.Sprintf("%d Configured: %v", len(s.config.DefaultTickers), s.config.DefaultTickers)
}
