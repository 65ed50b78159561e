package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/jwaldner/strikescan/internal/extract"
	"github.com/jwaldner/strikescan/internal/fetcher"
	"github.com/jwaldner/strikescan/internal/logger"
	"github.com/jwaldner/strikescan/internal/models"
	"github.com/jwaldner/strikescan/internal/premium"
	"github.com/jwaldner/strikescan/internal/strike"
	"github.com/jwaldner/strikescan/internal/utils"
)

// State is a step of the ticker pipeline
type State int

const (
	Pending State = iota
	FetchingQuote
	ExtractingPrice
	FetchingStrikeTable
	SelectingStrikes
	FetchingTargetPages
	Aggregating
	Done
	Failed
)

var stateNames = [...]string{
	Pending:             "Pending",
	FetchingQuote:       "FetchingQuote",
	ExtractingPrice:     "ExtractingPrice",
	FetchingStrikeTable: "FetchingStrikeTable",
	SelectingStrikes:    "SelectingStrikes",
	FetchingTargetPages: "FetchingTargetPages",
	Aggregating:         "Aggregating",
	Done:                "Done",
	Failed:              "Failed",
}

func (s State) String() string {
	if int(s) < len(stateNames) {
		return stateNames[s]
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Observer is notified of every finished pipeline
type Observer interface {
	ObserveOutcome(outcome models.Outcome, elapsed time.Duration)
}

// Pipeline turns one ticker into a premium summary
type Pipeline struct {
	opener     fetcher.Opener
	extractor  *extract.Extractor
	aggregator *premium.Aggregator
	quoteHost  string
	observer   Observer
}

// New creates a pipeline
func New(opener fetcher.Opener, extractor *extract.Extractor, aggregator *premium.Aggregator, quoteHost string) *Pipeline {
	return &Pipeline{
		opener:     opener,
		extractor:  extractor,
		aggregator: aggregator,
		quoteHost:  quoteHost,
	}
}

// WithObserver attaches an outcome observer
func (p *Pipeline) WithObserver(o Observer) *Pipeline {
	p.observer = o
	return p
}

// Run executes the pipeline for ticker. It never panics or returns an error:
// every failure is reported in the outcome.
func (p *Pipeline) Run(ctx context.Context, ticker string) (outcome models.Outcome) {
	start := time.Now()
	state := Pending

	defer func() {
		if r := recover(); r != nil {
			logger.Error.Printf("❌ %s: pipeline panic during %s: %v", ticker, state, r)
			outcome = models.Failure(ticker, state.String(), fmt.Errorf("panic: %v", r))
		}
		if p.observer != nil {
			p.observer.ObserveOutcome(outcome, time.Since(start))
		}
	}()

	result, err := p.run(ctx, ticker, &state)
	if err != nil {
		logFailure(ticker, state, err)
		return models.Failure(ticker, state.String(), err)
	}

	state = Done
	logger.Info.Printf("✅ %s: %d expirations (call %s / put %s) in %v", ticker, len(result.Rows),
		utils.FormatStrike(result.CallStrike), utils.FormatStrike(result.PutStrike), time.Since(start))
	return models.Success(result)
}

func (p *Pipeline) run(ctx context.Context, ticker string, state *State) (*models.TickerResult, error) {
	*state = FetchingQuote
	sess, err := p.opener.Open(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := sess.Close(); cerr != nil {
			logger.Warn.Printf("⚠️  %s: closing fetch session: %v", ticker, cerr)
		}
	}()

	chainDoc, err := sess.Fetch(ctx, ChainURL(p.quoteHost, ticker))
	if err != nil {
		return nil, err
	}

	*state = ExtractingPrice
	quote, err := p.quote(ticker, chainDoc)
	if err != nil {
		return nil, err
	}
	price := quote.Price
	logger.Debug.Printf("🔍 %s: price %.2f", ticker, price)

	*state = FetchingStrikeTable
	strikes, ok, err := p.extractor.StrikeList(chainDoc, models.Call)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, &NoChainError{Ticker: ticker}
	}

	// Both targets come from the call-side strike ladder; the puts ladder is
	// never read for selection.
	*state = SelectingStrikes
	targets := []models.TargetStrike{
		{Side: models.Call, Value: strike.CallTarget(price)},
		{Side: models.Put, Value: strike.PutTarget(price)},
	}
	for i := range targets {
		nearest, err := strike.SelectNearest(strikes, targets[i].Value)
		if err != nil {
			return nil, &NoChainError{Ticker: ticker, Err: err}
		}
		targets[i].Value = nearest
	}
	callStrike, putStrike := targets[0].Value, targets[1].Value
	logger.Debug.Printf("🎯 %s: call strike %s, put strike %s", ticker,
		utils.FormatStrike(callStrike), utils.FormatStrike(putStrike))

	*state = FetchingTargetPages
	callDoc, putDoc, err := p.fetchStrikePages(ctx, sess, ticker, callStrike, putStrike)
	if err != nil {
		return nil, err
	}

	*state = Aggregating
	rows, err := p.aggregator.Aggregate(callDoc, putDoc, price)
	if err != nil {
		if errors.Is(err, premium.ErrNoCallsTable) {
			return nil, &NoChainError{Ticker: ticker, Strike: callStrike, Err: err}
		}
		return nil, err
	}

	return &models.TickerResult{
		Ticker:     ticker,
		Price:      price,
		CallStrike: callStrike,
		PutStrike:  putStrike,
		Rows:       rows,
	}, nil
}

func (p *Pipeline) quote(ticker string, doc *goquery.Document) (models.Quote, error) {
	price, ok, err := p.extractor.Price(doc)
	if err != nil {
		return models.Quote{}, err
	}
	q := models.Quote{Ticker: ticker, Price: price, HasPrice: ok}
	if !q.HasPrice {
		return q, &NoPriceError{Ticker: ticker}
	}
	if q.Price <= 0 {
		return q, &NoPriceError{Ticker: ticker, Detail: fmt.Sprintf("non-positive price %v", price)}
	}
	return q, nil
}

func (p *Pipeline) fetchStrikePages(ctx context.Context, sess fetcher.Session, ticker string, callStrike, putStrike float64) (*goquery.Document, *goquery.Document, error) {
	callDoc, err := sess.Fetch(ctx, StrikeURL(p.quoteHost, ticker, callStrike))
	if err != nil {
		return nil, nil, err
	}
	putDoc, err := sess.Fetch(ctx, StrikeURL(p.quoteHost, ticker, putStrike))
	if err != nil {
		return nil, nil, err
	}
	return callDoc, putDoc, nil
}

func logFailure(ticker string, state State, err error) {
	var noPrice *NoPriceError
	var noChain *NoChainError
	switch {
	case errors.As(err, &noPrice), errors.As(err, &noChain):
		logger.Info.Printf("📭 %s: %v", ticker, err)
	case fetcher.IsFetchError(err):
		logger.Warn.Printf("⚠️  %s: fetch failed during %s: %v", ticker, state, err)
	default:
		logger.Error.Printf("❌ %s: failed during %s: %v", ticker, state, err)
	}
}
