package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/jwaldner/strikescan/internal/fetcher"
	"github.com/jwaldner/strikescan/internal/models"
)

var defaultTickers = []string{"WISH", "PLTR", "SOFI", "MSFT", "AAPL", "CLOV", "PSFE"}

type launchRecorder struct {
	mu    sync.Mutex
	times map[string]time.Time
	order []string
}

func newLaunchRecorder() *launchRecorder {
	return &launchRecorder{times: map[string]time.Time{}}
}

func (r *launchRecorder) ObserveLaunch(ticker string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.times[ticker] = time.Now()
	r.order = append(r.order, ticker)
}

func okRunner() Runner {
	return RunnerFunc(func(ctx context.Context, ticker string) models.Outcome {
		return models.Success(&models.TickerResult{Ticker: ticker, Price: 10})
	})
}

func TestStaggeredLaunches(t *testing.T) {
	delay := 20 * time.Millisecond
	rec := newLaunchRecorder()
	s := New(okRunner(), delay).WithObserver(rec)

	start := time.Now()
	outcomes := s.Run(context.Background(), defaultTickers)

	if len(outcomes) != len(defaultTickers) {
		t.Fatalf("expected %d outcomes; got %d", len(defaultTickers), len(outcomes))
	}
	for i, ticker := range defaultTickers {
		if rec.order[i] != ticker {
			t.Errorf("launch %d: expected %s; got %s", i, ticker, rec.order[i])
		}
		earliest := start.Add(time.Duration(i) * delay)
		if rec.times[ticker].Before(earliest) {
			t.Errorf("%s launched %v after start; expected at least %v",
				ticker, rec.times[ticker].Sub(start), time.Duration(i)*delay)
		}
	}
}

func TestLaunchesDoNotWaitForCompletion(t *testing.T) {
	release := make(chan struct{})
	var running sync.WaitGroup
	running.Add(len(defaultTickers))

	runner := RunnerFunc(func(ctx context.Context, ticker string) models.Outcome {
		running.Done()
		<-release
		return models.Success(&models.TickerResult{Ticker: ticker})
	})

	ch := New(runner, time.Millisecond).Start(context.Background(), defaultTickers)

	// every pipeline must be running while none has been allowed to finish
	allRunning := make(chan struct{})
	go func() {
		running.Wait()
		close(allRunning)
	}()
	select {
	case <-allRunning:
	case <-time.After(2 * time.Second):
		t.Fatal("expected all pipelines to be launched before any completes")
	}

	close(release)
	n := 0
	for range ch {
		n++
	}
	if n != len(defaultTickers) {
		t.Errorf("expected %d outcomes; got %d", len(defaultTickers), n)
	}
}

func TestFetchTimeoutDoesNotAffectOthers(t *testing.T) {
	runner := RunnerFunc(func(ctx context.Context, ticker string) models.Outcome {
		if ticker == "CLOV" {
			// a render that never finishes, bounded by the fetch timeout
			fetchCtx, cancel := context.WithTimeout(ctx, 30*time.Millisecond)
			defer cancel()
			<-fetchCtx.Done()
			return models.Failure(ticker, "FetchingQuote", &fetcher.FetchError{
				URL:  "https://finance.yahoo.com/quote/CLOV/options?p=CLOV",
				Kind: fetcher.KindTimeout,
				Err:  fetchCtx.Err(),
			})
		}
		return models.Success(&models.TickerResult{Ticker: ticker})
	})

	ch := New(runner, 0).Start(context.Background(), defaultTickers)

	var order []string
	failures, successes := 0, 0
	for o := range ch {
		order = append(order, o.Ticker)
		if o.Succeeded() {
			successes++
			continue
		}
		failures++
		if o.Ticker != "CLOV" {
			t.Errorf("unexpected failure for %s", o.Ticker)
		}
		if o.Failure.Stage != "FetchingQuote" {
			t.Errorf("expected stage FetchingQuote; got %s", o.Failure.Stage)
		}
		if kind := fetcher.KindOf(o.Failure); kind != fetcher.KindTimeout {
			t.Errorf("expected timeout fetch error; got %v", o.Failure.Err)
		}
		if !errors.Is(o.Failure, context.DeadlineExceeded) {
			t.Errorf("expected deadline exceeded; got %v", o.Failure.Err)
		}
	}

	if failures != 1 || successes != 6 {
		t.Errorf("expected 1 failure and 6 successes; got %d/%d", failures, successes)
	}
	if len(order) == 7 && order[6] != "CLOV" {
		t.Errorf("expected the timed-out ticker to finish last; got %v", order)
	}
}

func TestCancelStopsLaunches(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	rec := newLaunchRecorder()
	runner := RunnerFunc(func(ctx context.Context, ticker string) models.Outcome {
		if ticker == "PLTR" {
			cancel()
		}
		return models.Success(&models.TickerResult{Ticker: ticker})
	})

	outcomes := New(runner, 50*time.Millisecond).WithObserver(rec).Run(ctx, defaultTickers)

	if len(outcomes) != len(defaultTickers) {
		t.Fatalf("expected an outcome for every ticker; got %d", len(outcomes))
	}
	if len(rec.order) != 2 {
		t.Errorf("expected 2 launches before cancel; got %v", rec.order)
	}

	pending := 0
	for _, o := range outcomes {
		if o.Failure != nil && o.Failure.Stage == PendingStage {
			pending++
			if !errors.Is(o.Failure, context.Canceled) {
				t.Errorf("%s: expected context.Canceled; got %v", o.Ticker, o.Failure.Err)
			}
		}
	}
	if pending != len(defaultTickers)-2 {
		t.Errorf("expected %d pending failures; got %d", len(defaultTickers)-2, pending)
	}
}

func TestEmptyTickerList(t *testing.T) {
	s := New(okRunner(), time.Second)
	if outcomes := s.Run(context.Background(), nil); len(outcomes) != 0 {
		t.Errorf("expected no outcomes; got %d", len(outcomes))
	}
	if s.RunID() == "" {
		t.Error("expected a run ID")
	}
}

func TestNegativeDelay(t *testing.T) {
	if d := New(okRunner(), -time.Second).Delay(); d != 0 {
		t.Errorf("expected 0 delay; got %v", d)
	}
}
