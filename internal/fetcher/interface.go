package fetcher

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// ErrorKind classifies why a fetch failed
type ErrorKind string

const (
	KindNetwork  ErrorKind = "network"
	KindTimeout  ErrorKind = "timeout"
	KindStatus   ErrorKind = "status"
	KindContent  ErrorKind = "content" // not HTML, or unparseable
	KindCanceled ErrorKind = "canceled"
)

// FetchError is returned for any failure to turn a URL into a document
type FetchError struct {
	URL  string
	Kind ErrorKind
	Err  error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s (%s): %v", e.URL, e.Kind, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// IsFetchError reports whether err carries a FetchError
func IsFetchError(err error) bool {
	var fe *FetchError
	return errors.As(err, &fe)
}

// KindOf returns the kind of the FetchError in err, or "" if there is none
func KindOf(err error) ErrorKind {
	var fe *FetchError
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return ""
}

// Session fetches fully rendered documents. A session belongs to one
// pipeline and must be closed by it.
type Session interface {
	// Fetch loads url, runs any client-side rendering and returns the parsed document
	Fetch(ctx context.Context, url string) (*goquery.Document, error)

	// Close releases the browser or connections held by the session
	Close() error
}

// Opener creates independent sessions
type Opener interface {
	Open(ctx context.Context) (Session, error)

	// Name returns the fetch mode (e.g., "render", "static")
	Name() string
}

// FetchMetrics tracks timing for one fetch
type FetchMetrics struct {
	URL      string        `json:"url"`
	Duration time.Duration `json:"duration"`
	Attempts int           `json:"attempts"`
	Kind     ErrorKind     `json:"kind,omitempty"`
}

// Observer receives fetch metrics
type Observer interface {
	ObserveFetch(mode string, m FetchMetrics)
}
