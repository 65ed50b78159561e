package static

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"

	"github.com/jwaldner/strikescan/internal/fetcher"
)

const defaultTimeout = 60 * time.Second

// Opener creates plain HTTP sessions. Pages are parsed as served, without
// running scripts, so it suits pre-rendered or test pages.
type Opener struct {
	timeout   time.Duration
	userAgent string
}

// NewOpener creates a static opener
func NewOpener(timeout time.Duration, userAgent string) *Opener {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Opener{timeout: timeout, userAgent: userAgent}
}

func (o *Opener) Name() string {
	return "static"
}

// Open returns a session with its own HTTP client and connection pool
func (o *Opener) Open(ctx context.Context) (fetcher.Session, error) {
	client := resty.New().
		SetTimeout(o.timeout).
		SetHeader("Accept", "text/html,application/xhtml+xml")
	if o.userAgent != "" {
		client.SetHeader("User-Agent", o.userAgent)
	}
	return &session{client: client}, nil
}

type session struct {
	client *resty.Client
}

func (s *session) Fetch(ctx context.Context, url string) (*goquery.Document, error) {
	resp, err := s.client.R().SetContext(ctx).Get(url)
	if err != nil {
		return nil, &fetcher.FetchError{URL: url, Kind: classify(err), Err: err}
	}

	if resp.StatusCode() != 200 {
		return nil, &fetcher.FetchError{
			URL:  url,
			Kind: fetcher.KindStatus,
			Err:  fmt.Errorf("HTTP %d", resp.StatusCode()),
		}
	}

	contentType := resp.Header().Get("Content-Type")
	if !strings.Contains(strings.ToLower(contentType), "html") {
		return nil, &fetcher.FetchError{
			URL:  url,
			Kind: fetcher.KindContent,
			Err:  fmt.Errorf("unexpected content type %q", contentType),
		}
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(resp.Body()))
	if err != nil {
		return nil, &fetcher.FetchError{URL: url, Kind: fetcher.KindContent, Err: err}
	}
	return doc, nil
}

func (s *session) Close() error {
	s.client.GetClient().CloseIdleConnections()
	return nil
}

func classify(err error) fetcher.ErrorKind {
	if errors.Is(err, context.Canceled) {
		return fetcher.KindCanceled
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fetcher.KindTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return fetcher.KindTimeout
	}
	return fetcher.KindNetwork
}
