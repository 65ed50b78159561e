package scheduler

import (
	"context"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/jwaldner/strikescan/internal/logger"
	"github.com/jwaldner/strikescan/internal/models"
)

// DefaultLaunchDelay is the pause between two pipeline launches
const DefaultLaunchDelay = 5 * time.Second

// PendingStage is the failure stage of tickers that were never launched
const PendingStage = "Pending"

// Runner runs the pipeline for one ticker
type Runner interface {
	Run(ctx context.Context, ticker string) models.Outcome
}

// RunnerFunc adapts a function to Runner
type RunnerFunc func(ctx context.Context, ticker string) models.Outcome

func (f RunnerFunc) Run(ctx context.Context, ticker string) models.Outcome {
	return f(ctx, ticker)
}

// LaunchObserver is told about each pipeline launch
type LaunchObserver interface {
	ObserveLaunch(ticker string)
}

// Scheduler launches one pipeline per ticker, spacing launches by a fixed
// delay without waiting for earlier pipelines to finish.
type Scheduler struct {
	runner   Runner
	delay    time.Duration
	observer LaunchObserver
	runID    string
}

// New creates a scheduler. A negative delay is treated as zero.
func New(runner Runner, delay time.Duration) *Scheduler {
	if delay < 0 {
		delay = 0
	}
	return &Scheduler{
		runner: runner,
		delay:  delay,
		runID:  uuid.NewString(),
	}
}

// WithObserver attaches a launch observer
func (s *Scheduler) WithObserver(o LaunchObserver) *Scheduler {
	s.observer = o
	return s
}

// RunID identifies this scheduler's batch in logs and reports
func (s *Scheduler) RunID() string {
	return s.runID
}

// Delay returns the launch spacing
func (s *Scheduler) Delay() time.Duration {
	return s.delay
}

// Start launches the tickers in order and returns a channel receiving one
// outcome per ticker in completion order. The channel is closed after every
// pipeline has finished. Canceling ctx stops further launches; tickers not
// yet launched are reported as failures with context.Canceled.
func (s *Scheduler) Start(ctx context.Context, tickers []string) <-chan models.Outcome {
	out := make(chan models.Outcome, len(tickers))
	if len(tickers) == 0 {
		close(out)
		return out
	}

	logger.Info.Printf("🚀 run %s: launching %d pipelines, %v apart", s.runID, len(tickers), s.delay)

	go func() {
		defer close(out)

		// Pipelines own their failures, so the group never sees an error.
		var g errgroup.Group

		var pace <-chan time.Time
		if s.delay > 0 && len(tickers) > 1 {
			ticker := time.NewTicker(s.delay)
			defer ticker.Stop()
			pace = ticker.C
		}

		for i, t := range tickers {
			if i > 0 && pace != nil {
				select {
				case <-pace:
				case <-ctx.Done():
				}
			}
			if ctx.Err() != nil {
				s.abandon(ctx, tickers[i:], out)
				break
			}

			s.launch(&g, ctx, i, t, out)
		}

		_ = g.Wait()
		logger.Info.Printf("🏁 run %s: all pipelines finished", s.runID)
	}()

	return out
}

func (s *Scheduler) launch(g *errgroup.Group, ctx context.Context, i int, ticker string, out chan<- models.Outcome) {
	logger.Debug.Printf("🧵 run %s: launch %d/%s", s.runID, i+1, ticker)
	if s.observer != nil {
		s.observer.ObserveLaunch(ticker)
	}
	g.Go(func() error {
		out <- s.runner.Run(ctx, ticker)
		return nil
	})
}

func (s *Scheduler) abandon(ctx context.Context, tickers []string, out chan<- models.Outcome) {
	logger.Warn.Printf("⚠️  run %s: canceled with %d tickers not launched", s.runID, len(tickers))
	for _, t := range tickers {
		out <- models.Failure(t, PendingStage, ctx.Err())
	}
}

// Run launches every ticker and collects all outcomes in completion order
func (s *Scheduler) Run(ctx context.Context, tickers []string) []models.Outcome {
	outcomes := make([]models.Outcome, 0, len(tickers))
	for o := range s.Start(ctx, tickers) {
		outcomes = append(outcomes, o)
	}
	return outcomes
}
