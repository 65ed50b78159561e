package extract

import (
	"errors"
	"reflect"
	"testing"

	"github.com/jwaldner/strikescan/internal/config"
	"github.com/jwaldner/strikescan/internal/models"
	"github.com/jwaldner/strikescan/internal/testdata"
)

func newExtractor() *Extractor {
	return New(config.DefaultSelectors())
}

func TestPrice(t *testing.T) {
	e := newExtractor()

	price, ok, err := e.Price(testdata.Page{Price: "1,234.56"}.Document())
	if err != nil || !ok {
		t.Fatalf("expected price; got ok=%v err=%v", ok, err)
	}
	if price != 1234.56 {
		t.Errorf("expected 1234.56; got %v", price)
	}
}

func TestPriceMissingIsAbsent(t *testing.T) {
	_, ok, err := newExtractor().Price(testdata.Page{}.Document())
	if err != nil {
		t.Fatalf("expected no error for missing node; got %v", err)
	}
	if ok {
		t.Errorf("expected absent price")
	}
}

func TestPriceNonNumericIsParseError(t *testing.T) {
	_, _, err := newExtractor().Price(testdata.Page{Price: "N/A"}.Document())
	var pe *ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("expected ParseError; got %v", err)
	}
	if pe.Field != "price" {
		t.Errorf("expected field price; got %s", pe.Field)
	}
}

func TestStrikeList(t *testing.T) {
	page := testdata.Page{Price: "100", Calls: testdata.StrikeRows("1,050.00", "95", "112.5")}

	strikes, ok, err := newExtractor().StrikeList(page.Document(), models.Call)
	if err != nil || !ok {
		t.Fatalf("expected strikes; got ok=%v err=%v", ok, err)
	}
	want := []float64{1050, 95, 112.5}
	if !reflect.DeepEqual(strikes, want) {
		t.Errorf("expected %v; got %v", want, strikes)
	}
}

func TestStrikeListMissingTable(t *testing.T) {
	page := testdata.Page{Price: "100", NoCallsTable: true}

	strikes, ok, err := newExtractor().StrikeList(page.Document(), models.Call)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok || strikes != nil {
		t.Errorf("expected absent table; got ok=%v strikes=%v", ok, strikes)
	}
}

func TestStrikeListEmptyTable(t *testing.T) {
	page := testdata.Page{Price: "100"}

	strikes, ok, err := newExtractor().StrikeList(page.Document(), models.Call)
	if err != nil || !ok {
		t.Fatalf("expected present table; got ok=%v err=%v", ok, err)
	}
	if len(strikes) != 0 {
		t.Errorf("expected no strikes; got %v", strikes)
	}
}

func TestStrikeListBadCell(t *testing.T) {
	page := testdata.Page{Calls: testdata.StrikeRows("95", "abc")}

	_, _, err := newExtractor().StrikeList(page.Document(), models.Call)
	var pe *ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("expected ParseError; got %v", err)
	}
}

func TestExpirationRow(t *testing.T) {
	e := newExtractor()
	callDoc := testdata.MockCallStrikePage.Document()

	row, ok, err := e.ExpirationRow(callDoc, models.Call, 1)
	if err != nil || !ok {
		t.Fatalf("expected row; got ok=%v err=%v", ok, err)
	}
	want := models.ExpirationRow{Expiration: "November 20, 2026", Bid: 1.20, Ask: 1.40}
	if row != want {
		t.Errorf("expected %+v; got %+v", want, row)
	}

	putRow, ok, err := e.ExpirationRow(testdata.MockPutStrikePage.Document(), models.Put, 3)
	if err != nil || !ok {
		t.Fatalf("expected put row; got ok=%v err=%v", ok, err)
	}
	if putRow.Expiration != "" {
		t.Errorf("expected no label on put side; got %q", putRow.Expiration)
	}
	if putRow.Bid != 1.30 || putRow.Ask != 1.36 {
		t.Errorf("unexpected put bid/ask %+v", putRow)
	}
}

func TestExpirationRowOutOfRange(t *testing.T) {
	e := newExtractor()
	doc := testdata.MockPutStrikePage.Document()

	for _, idx := range []int{0, 4, 10} {
		if _, ok, err := e.ExpirationRow(doc, models.Put, idx); ok || err != nil {
			t.Errorf("row %d: expected absent; got ok=%v err=%v", idx, ok, err)
		}
	}
}

func TestExpirationRowBadBid(t *testing.T) {
	page := testdata.Page{Calls: []testdata.Row{{Link: "Nov 20", Bid: "-", Ask: "1.00"}}}

	_, _, err := newExtractor().ExpirationRow(page.Document(), models.Call, 1)
	var pe *ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("expected ParseError; got %v", err)
	}
}

func TestRowCount(t *testing.T) {
	e := newExtractor()

	n, ok := e.RowCount(testdata.MockCallStrikePage.Document(), models.Call)
	if !ok || n != 7 {
		t.Errorf("expected 7 call rows; got %d (ok=%v)", n, ok)
	}
	if _, ok := e.RowCount(testdata.MockCallStrikePage.Document(), models.Put); ok {
		t.Errorf("expected missing puts table")
	}
}
