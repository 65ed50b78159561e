package services

import (
	"context"
	"fmt"
	"time"

	"github.com/jwaldner/strikescan/internal/config"
	"github.com/jwaldner/strikescan/internal/extract"
	"github.com/jwaldner/strikescan/internal/fetcher"
	"github.com/jwaldner/strikescan/internal/fetcher/render"
	"github.com/jwaldner/strikescan/internal/fetcher/static"
	"github.com/jwaldner/strikescan/internal/logger"
	"github.com/jwaldner/strikescan/internal/metrics"
	"github.com/jwaldner/strikescan/internal/models"
	"github.com/jwaldner/strikescan/internal/pipeline"
	"github.com/jwaldner/strikescan/internal/premium"
	"github.com/jwaldner/strikescan/internal/report"
	"github.com/jwaldner/strikescan/internal/scheduler"
)

// OpenerFromConfig builds the fetch manager for the configured mode
func OpenerFromConfig(cfg *config.Config, observer fetcher.Observer) (*fetcher.Manager, error) {
	var opener fetcher.Opener
	switch cfg.Fetcher.Mode {
	case "render", "":
		opener = render.NewOpener(render.Options{
			RenderTimeout: cfg.RenderTimeout(),
			Settle:        cfg.RenderSettle(),
			UserAgent:     cfg.Fetcher.UserAgent,
			ChromePath:    cfg.Fetcher.ChromePath,
			Headless:      cfg.Fetcher.Headless,
		})
	case "static":
		opener = static.NewOpener(cfg.RenderTimeout(), cfg.Fetcher.UserAgent)
	default:
		return nil, fmt.Errorf("unknown fetcher mode %q", cfg.Fetcher.Mode)
	}
	return fetcher.NewManager(opener, observer, cfg.Scan.FetchRetries), nil
}

// ScanService runs ticker batches and hands their outcomes to the sinks
type ScanService struct {
	pipeline   *pipeline.Pipeline
	metrics    *metrics.Metrics
	dispatcher *report.Dispatcher
	delay      time.Duration
}

// NewScanService wires a pipeline over opener. m and d may be nil.
func NewScanService(cfg *config.Config, opener fetcher.Opener, m *metrics.Metrics, d *report.Dispatcher) *ScanService {
	ex := extract.New(cfg.Selectors)
	agg := premium.NewAggregator(ex, cfg.Scan.MaxExpirations)
	p := pipeline.New(opener, ex, agg, cfg.QuoteHost)
	if m != nil {
		p.WithObserver(m)
	}
	return &ScanService{
		pipeline:   p,
		metrics:    m,
		dispatcher: d,
		delay:      cfg.LaunchDelay(),
	}
}

// Scan launches every ticker with the given spacing (negative uses the
// configured delay) and returns the run ID and the outcomes in completion order
func (s *ScanService) Scan(ctx context.Context, tickers []string, delay time.Duration) (string, []models.Outcome) {
	if delay < 0 {
		delay = s.delay
	}
	sched := scheduler.New(s.pipeline, delay)
	if s.metrics != nil {
		sched.WithObserver(s.metrics)
	}

	start := time.Now()
	ch := sched.Start(ctx, tickers)

	var outcomes []models.Outcome
	if s.dispatcher != nil {
		// Outcomes of a canceled run still reach the sinks
		outcomes = s.dispatcher.Drain(context.WithoutCancel(ctx), sched.RunID(), ch)
	} else {
		for o := range ch {
			outcomes = append(outcomes, o)
		}
	}

	succeeded := 0
	for _, o := range outcomes {
		if o.Succeeded() {
			succeeded++
		}
	}
	logger.Info.Printf("📊 run %s: %d/%d tickers succeeded in %v", sched.RunID(), succeeded, len(outcomes), time.Since(start))
	return sched.RunID(), outcomes
}
