package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/jwaldner/strikescan/internal/fetcher"
	"github.com/jwaldner/strikescan/internal/models"
)

func TestObserveOutcome(t *testing.T) {
	m := New()
	m.ObserveOutcome(models.Success(&models.TickerResult{Ticker: "AAPL"}), time.Second)
	m.ObserveOutcome(models.Failure("WISH", "ExtractingPrice", errors.New("no price")), time.Second)
	m.ObserveOutcome(models.Failure("CLOV", "ExtractingPrice", errors.New("no price")), time.Second)

	if got := testutil.ToFloat64(m.PipelineOutcomes.WithLabelValues("success", "Done")); got != 1 {
		t.Errorf("expected 1 success; got %v", got)
	}
	if got := testutil.ToFloat64(m.PipelineOutcomes.WithLabelValues("failure", "ExtractingPrice")); got != 2 {
		t.Errorf("expected 2 price failures; got %v", got)
	}
}

func TestObserveFetch(t *testing.T) {
	m := New()
	m.ObserveFetch("render", fetcher.FetchMetrics{URL: "u", Duration: time.Second, Attempts: 1})
	m.ObserveFetch("render", fetcher.FetchMetrics{URL: "u", Duration: time.Second, Attempts: 3, Kind: fetcher.KindTimeout})

	if got := testutil.ToFloat64(m.FetchErrors.WithLabelValues("timeout")); got != 1 {
		t.Errorf("expected 1 timeout; got %v", got)
	}
	if got := testutil.CollectAndCount(m.FetchDuration); got != 1 {
		t.Errorf("expected one fetch duration series; got %d", got)
	}
}

func TestLaunchesAndHandler(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New()
	if err := m.Register(reg); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if err := m.Register(reg); err == nil {
		t.Error("expected duplicate registration to fail")
	}

	m.ObserveLaunch("AAPL")
	m.ObserveLaunch("MSFT")
	if got := testutil.ToFloat64(m.Launches); got != 2 {
		t.Errorf("expected 2 launches; got %v", got)
	}

	rec := httptest.NewRecorder()
	Handler(reg).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if !strings.Contains(rec.Body.String(), "strikescan_launches_total 2") {
		t.Errorf("expected launches in exposition; got %s", rec.Body.String())
	}
}
