package fetcher

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/cenkalti/backoff/v5"

	"github.com/jwaldner/strikescan/internal/logger"
)

// SlowFetchThreshold is the duration past which a fetch is logged as slow
const SlowFetchThreshold = 20 * time.Second

// Manager wraps an Opener with logging, metrics and optional retries
type Manager struct {
	opener   Opener
	observer Observer
	retries  int
	interval time.Duration

	totalFetches  atomic.Int64
	failedFetches atomic.Int64
	totalRetries  atomic.Int64
	totalNanos    atomic.Int64
}

// NewManager creates a new fetch manager. retries is the number of extra
// attempts made after a FetchError; 0 disables retrying.
func NewManager(opener Opener, observer Observer, retries int) *Manager {
	if retries < 0 {
		retries = 0
	}
	return &Manager{
		opener:   opener,
		observer: observer,
		retries:  retries,
		interval: 2 * time.Second,
	}
}

// WithRetryInterval sets the first backoff interval
func (m *Manager) WithRetryInterval(d time.Duration) *Manager {
	m.interval = d
	return m
}

// Name returns the wrapped fetch mode
func (m *Manager) Name() string {
	return m.opener.Name()
}

// Open opens a session on the underlying opener
func (m *Manager) Open(ctx context.Context) (Session, error) {
	sess, err := m.opener.Open(ctx)
	if err != nil {
		if !IsFetchError(err) {
			err = &FetchError{URL: "", Kind: KindNetwork, Err: err}
		}
		return nil, fmt.Errorf("%s session: %w", m.opener.Name(), err)
	}
	return &managedSession{inner: sess, manager: m}, nil
}

// Report returns a short performance summary
func (m *Manager) Report() string {
	total := m.totalFetches.Load()
	avg := time.Duration(0)
	if total > 0 {
		avg = time.Duration(m.totalNanos.Load() / total)
	}
	return fmt.Sprintf("📊 Fetcher (%s): %d fetches, %d failed, %d retries, avg %v",
		m.opener.Name(), total, m.failedFetches.Load(), m.totalRetries.Load(), avg)
}

type managedSession struct {
	inner   Session
	manager *Manager
}

func (s *managedSession) Fetch(ctx context.Context, url string) (*goquery.Document, error) {
	start := time.Now()
	attempts := 0

	fetchOnce := func() (*goquery.Document, error) {
		attempts++
		doc, err := s.inner.Fetch(ctx, url)
		if err != nil && attempts > 1 {
			logger.Debug.Printf("🔁 fetch attempt %d for %s failed: %v", attempts, url, err)
		}
		return doc, err
	}

	var doc *goquery.Document
	var err error
	if s.manager.retries == 0 {
		doc, err = fetchOnce()
	} else {
		doc, err = backoff.Retry(ctx, func() (*goquery.Document, error) {
			doc, err := fetchOnce()
			if err != nil && !IsFetchError(err) {
				return nil, backoff.Permanent(err)
			}
			return doc, err
		}, backoff.WithBackOff(newBackOff(s.manager.interval)), backoff.WithMaxTries(uint(s.manager.retries+1)))
	}

	if err != nil && !IsFetchError(err) {
		kind := KindNetwork
		if errors.Is(err, context.Canceled) {
			kind = KindCanceled
		} else if errors.Is(err, context.DeadlineExceeded) {
			kind = KindTimeout
		}
		err = &FetchError{URL: url, Kind: kind, Err: err}
	}

	s.record(FetchMetrics{
		URL:      url,
		Duration: time.Since(start),
		Attempts: attempts,
		Kind:     KindOf(err),
	})
	return doc, err
}

func (s *managedSession) Close() error {
	return s.inner.Close()
}

func (s *managedSession) record(metrics FetchMetrics) {
	m := s.manager
	m.totalFetches.Add(1)
	m.totalNanos.Add(int64(metrics.Duration))
	if metrics.Attempts > 1 {
		m.totalRetries.Add(int64(metrics.Attempts - 1))
	}
	if metrics.Kind != "" {
		m.failedFetches.Add(1)
	}

	logger.Verbose.Printf("📡 FETCH: %s took %v (attempts: %d)", metrics.URL, metrics.Duration, metrics.Attempts)
	if metrics.Duration > SlowFetchThreshold {
		logger.Warn.Printf("⚠️  SLOW FETCH: %s took %v", metrics.URL, metrics.Duration)
	}

	if m.observer != nil {
		m.observer.ObserveFetch(m.opener.Name(), metrics)
	}
}

func newBackOff(initial time.Duration) *backoff.ExponentialBackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = initial
	b.MaxInterval = 15 * initial
	return b
}
