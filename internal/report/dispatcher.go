package report

import (
	"context"
	"errors"
	"sync"

	"github.com/jwaldner/strikescan/internal/logger"
	"github.com/jwaldner/strikescan/internal/models"
)

// ErrDispatcherClosed is returned by Submit after Close
var ErrDispatcherClosed = errors.New("report dispatcher closed")

const dispatchBuffer = 100

// Dispatcher delivers outcomes to its sinks from a single goroutine, which
// owns every sink. A failing sink is logged and skipped.
type Dispatcher struct {
	ch    chan delivery
	sinks []Sink
	done  chan struct{}

	mu     sync.Mutex
	closed bool

	errMu sync.Mutex
	errs  map[string]int
}

type delivery struct {
	runID   string
	outcome models.Outcome
}

// NewDispatcher starts the worker goroutine
func NewDispatcher(sinks ...Sink) *Dispatcher {
	d := &Dispatcher{
		ch:    make(chan delivery, dispatchBuffer),
		sinks: sinks,
		done:  make(chan struct{}),
		errs:  map[string]int{},
	}
	go d.worker()
	return d
}

// Submit queues an outcome, blocking while the queue is full
func (d *Dispatcher) Submit(ctx context.Context, runID string, o models.Outcome) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return ErrDispatcherClosed
	}
	select {
	case d.ch <- delivery{runID: runID, outcome: o}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Drain submits every outcome from ch until it is closed
func (d *Dispatcher) Drain(ctx context.Context, runID string, ch <-chan models.Outcome) []models.Outcome {
	var all []models.Outcome
	for o := range ch {
		all = append(all, o)
		if err := d.Submit(ctx, runID, o); err != nil {
			logger.Warn.Printf("⚠️  REPORT: dropped %s: %v", o.Ticker, err)
		}
	}
	return all
}

// Close waits for queued outcomes to be written and closes every sink
func (d *Dispatcher) Close() error {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		<-d.done
		return nil
	}
	d.closed = true
	close(d.ch)
	d.mu.Unlock()

	<-d.done

	var errs []error
	for _, s := range d.sinks {
		if err := s.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Errors returns the number of failed writes per sink
func (d *Dispatcher) Errors() map[string]int {
	d.errMu.Lock()
	defer d.errMu.Unlock()
	out := make(map[string]int, len(d.errs))
	for k, v := range d.errs {
		out[k] = v
	}
	return out
}

func (d *Dispatcher) worker() {
	defer close(d.done)
	for item := range d.ch {
		for _, s := range d.sinks {
			if err := s.Write(context.Background(), item.runID, item.outcome); err != nil {
				logger.Warn.Printf("⚠️  REPORT: %s sink failed for %s: %v", s.Name(), item.outcome.Ticker, err)
				d.errMu.Lock()
				d.errs[s.Name()]++
				d.errMu.Unlock()
			}
		}
	}
}
