package premium

import (
	"errors"
	"strconv"

	"github.com/PuerkitoBio/goquery"
	"github.com/shopspring/decimal"

	"github.com/jwaldner/strikescan/internal/extract"
	"github.com/jwaldner/strikescan/internal/models"
)

// MaxExpirations is the number of nearest expirations summarized per side
const MaxExpirations = 5

// ErrNoCallsTable is returned when the call-strike page has no calls table
var ErrNoCallsTable = errors.New("calls table missing on strike page")

// roundCents rounds the exact binary value of v to two places, breaking exact
// ties to even. decimal is parsed from the formatted text so no further
// rounding happens.
func roundCents(v float64) decimal.Decimal {
	d, err := decimal.NewFromString(strconv.FormatFloat(v, 'f', 2, 64))
	if err != nil {
		return decimal.Zero
	}
	return d
}

// Midpoint returns (bid+ask)/2 rounded to cents. ask >= bid is not required.
func Midpoint(bid, ask float64) decimal.Decimal {
	return roundCents((bid + ask) / 2)
}

// PercentOfPrice returns midpoint/price*100 rounded to two places
func PercentOfPrice(midpoint decimal.Decimal, price float64) decimal.Decimal {
	if price == 0 {
		return decimal.Zero
	}
	return roundCents(midpoint.InexactFloat64() / price * 100)
}

// Compute builds the premium record for one row. The percentage is taken
// from the rounded midpoint.
func Compute(row models.ExpirationRow, price float64) models.PremiumRecord {
	mid := Midpoint(row.Bid, row.Ask)
	return models.PremiumRecord{
		Expiration:     row.Expiration,
		Midpoint:       mid.InexactFloat64(),
		PercentOfPrice: PercentOfPrice(mid, price).InexactFloat64(),
	}
}

// Aggregator summarizes the nearest expirations of a call and a put strike page
type Aggregator struct {
	extractor      *extract.Extractor
	maxExpirations int
}

// NewAggregator creates an aggregator reading at most maxExpirations rows per side
func NewAggregator(extractor *extract.Extractor, maxExpirations int) *Aggregator {
	if maxExpirations <= 0 || maxExpirations > MaxExpirations {
		maxExpirations = MaxExpirations
	}
	return &Aggregator{extractor: extractor, maxExpirations: maxExpirations}
}

// Aggregate reads calls from callDoc and puts from putDoc. Rows are aligned by
// position, and the put side borrows the call row's expiration label.
// A missing puts table yields no put records.
func (a *Aggregator) Aggregate(callDoc, putDoc *goquery.Document, price float64) ([]models.ExpirationPremium, error) {
	if _, ok := a.extractor.RowCount(callDoc, models.Call); !ok {
		return nil, ErrNoCallsTable
	}

	var calls, puts []models.PremiumRecord
	for i := 1; i <= a.maxExpirations; i++ {
		callRow, ok, err := a.extractor.ExpirationRow(callDoc, models.Call, i)
		if err != nil {
			return nil, err
		}
		if ok {
			calls = append(calls, Compute(callRow, price))
		}

		putRow, ok, err := a.extractor.ExpirationRow(putDoc, models.Put, i)
		if err != nil {
			return nil, err
		}
		if ok {
			puts = append(puts, Compute(putRow, price))
		}
	}

	return align(calls, puts), nil
}

func align(calls, puts []models.PremiumRecord) []models.ExpirationPremium {
	n := len(calls)
	if len(puts) > n {
		n = len(puts)
	}

	rows := make([]models.ExpirationPremium, n)
	for i := range rows {
		if i < len(calls) {
			c := calls[i]
			rows[i].Expiration = c.Expiration
			rows[i].Call = &c
		}
		if i < len(puts) {
			p := puts[i]
			p.Expiration = rows[i].Expiration
			rows[i].Put = &p
		}
	}
	return rows
}
