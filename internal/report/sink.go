package report

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"text/tabwriter"
	"time"

	"github.com/jwaldner/strikescan/internal/config"
	"github.com/jwaldner/strikescan/internal/models"
)

// Sink receives finished outcomes
type Sink interface {
	Name() string
	Write(ctx context.Context, runID string, o models.Outcome) error
	Close() error
}

// ConsoleSink prints each result as an aligned table
type ConsoleSink struct {
	mu  sync.Mutex
	out io.Writer
}

// NewConsoleSink creates a console sink writing to out
func NewConsoleSink(out io.Writer) *ConsoleSink {
	if out == nil {
		out = os.Stdout
	}
	return &ConsoleSink{out: out}
}

func (s *ConsoleSink) Name() string { return "console" }

func (s *ConsoleSink) Write(_ context.Context, _ string, o models.Outcome) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !o.Succeeded() {
		_, err := fmt.Fprintf(s.out, "%s\n\n", FailureNotice(o.Failure))
		return err
	}

	t := Table(o.Result)
	w := tabwriter.NewWriter(s.out, 0, 0, 2, ' ', 0)
	writeTabbed(w, t.Headers)
	for _, row := range t.Rows {
		writeTabbed(w, row)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	_, err := fmt.Fprintln(s.out)
	return err
}

func writeTabbed(w io.Writer, cells []string) {
	for i, c := range cells {
		if i > 0 {
			fmt.Fprint(w, "\t")
		}
		fmt.Fprint(w, c)
	}
	fmt.Fprint(w, "\n")
}

func (s *ConsoleSink) Close() error { return nil }

// CSVSink writes one CSV file per successful ticker
type CSVSink struct {
	dir    string
	format string
	now    func() time.Time
}

// NewCSVSink creates a CSV sink. format supports {ticker}, {run} and {time}.
func NewCSVSink(cfg config.CSVConfig) *CSVSink {
	format := cfg.FilenameFormat
	if format == "" {
		format = "{ticker}_{time}"
	}
	dir := cfg.Dir
	if dir == "" {
		dir = "exports"
	}
	return &CSVSink{dir: dir, format: format, now: time.Now}
}

func (s *CSVSink) Name() string { return "csv" }

// Path returns the file a result for ticker would be written to
func (s *CSVSink) Path(runID, ticker string) string {
	ts := s.now().Format("2006-01-02_15-04-05")
	name := config.FormatCSVFilename(s.format, ticker, runID, ts)
	if !strings.HasSuffix(strings.ToLower(name), ".csv") {
		name += ".csv"
	}
	return filepath.Join(s.dir, name)
}

func (s *CSVSink) Write(_ context.Context, runID string, o models.Outcome) error {
	if !o.Succeeded() {
		return nil
	}
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return err
	}

	f, err := os.Create(s.Path(runID, o.Ticker))
	if err != nil {
		return err
	}
	defer f.Close()

	t := Table(o.Result)
	w := csv.NewWriter(f)
	if err := w.Write(t.Headers); err != nil {
		return err
	}
	if err := w.WriteAll(t.Rows); err != nil {
		return err
	}
	return f.Close()
}

func (s *CSVSink) Close() error { return nil }

// JSONSink appends one JSON document per outcome to a file
type JSONSink struct {
	mu  sync.Mutex
	f   *os.File
	enc *json.Encoder
	now func() time.Time
}

// NewJSONSink opens path for appending
func NewJSONSink(path string) (*JSONSink, error) {
	if path == "" {
		path = "snapshots.jsonl"
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, err
		}
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, err
	}
	return &JSONSink{f: f, enc: json.NewEncoder(f), now: time.Now}, nil
}

func (s *JSONSink) Name() string { return "json" }

func (s *JSONSink) Write(_ context.Context, runID string, o models.Outcome) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.enc.Encode(NewPayload(runID, o, s.now()))
}

func (s *JSONSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.f.Close()
}

// SinksFromConfig builds the console sink plus every sink enabled in cfg.
// Sinks already opened are closed when a later one fails.
func SinksFromConfig(cfg *config.Config, console io.Writer) ([]Sink, error) {
	sinks := []Sink{NewConsoleSink(console)}

	fail := func(err error) ([]Sink, error) {
		for _, s := range sinks {
			s.Close()
		}
		return nil, err
	}

	if cfg.CSV.Enabled {
		sinks = append(sinks, NewCSVSink(cfg.CSV))
	}
	if cfg.JSON.Enabled {
		s, err := NewJSONSink(cfg.JSON.Path)
		if err != nil {
			return fail(fmt.Errorf("json sink: %w", err))
		}
		sinks = append(sinks, s)
	}
	if cfg.Redis.URL != "" {
		s, err := NewRedisSink(cfg.Redis)
		if err != nil {
			return fail(fmt.Errorf("redis sink: %w", err))
		}
		sinks = append(sinks, s)
	}
	if len(cfg.Kafka.Brokers) > 0 {
		s, err := NewKafkaSink(cfg.Kafka)
		if err != nil {
			return fail(fmt.Errorf("kafka sink: %w", err))
		}
		sinks = append(sinks, s)
	}
	return sinks, nil
}
