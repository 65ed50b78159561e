package render

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/chromedp/chromedp"

	"github.com/jwaldner/strikescan/internal/fetcher"
	"github.com/jwaldner/strikescan/internal/logger"
)

const defaultRenderTimeout = 60 * time.Second

// Options configures the headless browser
type Options struct {
	RenderTimeout time.Duration
	Settle        time.Duration // extra wait after the DOM is ready
	UserAgent     string
	ChromePath    string
	Headless      bool
}

// Opener starts one headless browser per session so pipelines never share
// a tab, cookies or cache.
type Opener struct {
	opts Options
}

// NewOpener creates a rendering opener
func NewOpener(opts Options) *Opener {
	if opts.RenderTimeout <= 0 {
		opts.RenderTimeout = defaultRenderTimeout
	}
	return &Opener{opts: opts}
}

func (o *Opener) Name() string {
	return "render"
}

// Open launches a browser whose lifetime is bounded by ctx and Close
func (o *Opener) Open(ctx context.Context) (fetcher.Session, error) {
	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", o.opts.Headless),
		chromedp.DisableGPU,
	)
	if o.opts.UserAgent != "" {
		allocOpts = append(allocOpts, chromedp.UserAgent(o.opts.UserAgent))
	}
	if o.opts.ChromePath != "" {
		allocOpts = append(allocOpts, chromedp.ExecPath(o.opts.ChromePath))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, allocOpts...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)

	// Start the browser now so later timeouts only bound page loads
	if err := chromedp.Run(browserCtx); err != nil {
		browserCancel()
		allocCancel()
		return nil, &fetcher.FetchError{URL: "about:blank", Kind: fetcher.KindNetwork, Err: fmt.Errorf("starting browser: %w", err)}
	}

	logger.Debug.Printf("🌐 browser session started")
	return &session{
		browserCtx:    browserCtx,
		browserCancel: browserCancel,
		allocCancel:   allocCancel,
		opts:          o.opts,
	}, nil
}

type session struct {
	browserCtx    context.Context
	browserCancel context.CancelFunc
	allocCancel   context.CancelFunc
	opts          Options
}

func (s *session) Fetch(ctx context.Context, url string) (*goquery.Document, error) {
	runCtx, cancel := context.WithTimeout(s.browserCtx, s.opts.RenderTimeout)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	var html, contentType string
	err := chromedp.Run(runCtx,
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.Sleep(s.opts.Settle),
		chromedp.Evaluate(`document.contentType`, &contentType),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	)
	if err != nil {
		return nil, &fetcher.FetchError{URL: url, Kind: classify(ctx, runCtx, err), Err: err}
	}

	if !strings.Contains(strings.ToLower(contentType), "html") {
		return nil, &fetcher.FetchError{
			URL:  url,
			Kind: fetcher.KindContent,
			Err:  fmt.Errorf("unexpected content type %q", contentType),
		}
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, &fetcher.FetchError{URL: url, Kind: fetcher.KindContent, Err: err}
	}
	return doc, nil
}

func (s *session) Close() error {
	s.browserCancel()
	s.allocCancel()
	logger.Debug.Printf("🌐 browser session closed")
	return nil
}

// classify maps a chromedp failure onto a fetch error kind. The caller's
// context is checked first since its cancellation also cancels runCtx.
func classify(callerCtx, runCtx context.Context, err error) fetcher.ErrorKind {
	if callerCtx.Err() != nil {
		if errors.Is(callerCtx.Err(), context.DeadlineExceeded) {
			return fetcher.KindTimeout
		}
		return fetcher.KindCanceled
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(runCtx.Err(), context.DeadlineExceeded) {
		return fetcher.KindTimeout
	}
	return fetcher.KindNetwork
}
