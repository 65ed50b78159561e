// Package extract reads prices and option tables out of rendered quote pages.
//
// A missing node is reported as absent (ok == false, nil error); that is an
// expected "no data" case. Text that is present but not numeric is a
// *ParseError, which usually means the page layout changed.
package extract

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/jwaldner/strikescan/internal/config"
	"github.com/jwaldner/strikescan/internal/models"
)

// ParseError reports a node whose text could not be read as a number
type ParseError struct {
	Field string
	Text  string
	Err   error
}

func (e *ParseError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("parse %s: unexpected content %q", e.Field, e.Text)
	}
	return fmt.Sprintf("parse %s from %q: %v", e.Field, e.Text, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Extractor reads fields with a fixed selector set
type Extractor struct {
	sel config.SelectorConfig
}

// New creates an extractor
func New(sel config.SelectorConfig) *Extractor {
	return &Extractor{sel: sel}
}

// Price returns the current underlying price
func (e *Extractor) Price(doc *goquery.Document) (float64, bool, error) {
	node := doc.Find(e.sel.Price).First()
	if node.Length() == 0 {
		return 0, false, nil
	}
	price, err := parseNumber("price", node.Text())
	if err != nil {
		return 0, false, err
	}
	return price, true, nil
}

// StrikeList returns the strikes listed in the side's table, in document order.
// The header row is skipped.
func (e *Extractor) StrikeList(doc *goquery.Document, side models.Side) ([]float64, bool, error) {
	rows, ok := e.rows(doc, side)
	if !ok {
		return nil, false, nil
	}

	strikes := make([]float64, 0, rows.Length())
	for i := 1; i < rows.Length(); i++ {
		link := rows.Eq(i).Find(e.sel.StrikeLink).First()
		if link.Length() == 0 {
			return nil, false, &ParseError{Field: fmt.Sprintf("%s strike row %d", side, i), Text: ""}
		}
		strike, err := parseNumber("strike", link.Text())
		if err != nil {
			return nil, false, err
		}
		if strike <= 0 {
			return nil, false, &ParseError{Field: "strike", Text: link.Text()}
		}
		strikes = append(strikes, strike)
	}
	return strikes, true, nil
}

// RowCount returns the number of data rows in the side's table
func (e *Extractor) RowCount(doc *goquery.Document, side models.Side) (int, bool) {
	rows, ok := e.rows(doc, side)
	if !ok {
		return 0, false
	}
	if rows.Length() == 0 {
		return 0, true
	}
	return rows.Length() - 1, true
}

// ExpirationRow reads data row rowIndex (1-based, 0 is the header) of the side's table.
// Only the call side carries the expiration label.
func (e *Extractor) ExpirationRow(doc *goquery.Document, side models.Side, rowIndex int) (models.ExpirationRow, bool, error) {
	rows, ok := e.rows(doc, side)
	if !ok || rowIndex < 1 || rowIndex >= rows.Length() {
		return models.ExpirationRow{}, false, nil
	}
	row := rows.Eq(rowIndex)

	var out models.ExpirationRow
	if side == models.Call {
		link := row.Find(e.sel.StrikeLink).First()
		if link.Length() == 0 {
			return models.ExpirationRow{}, false, &ParseError{Field: fmt.Sprintf("expiration row %d", rowIndex)}
		}
		out.Expiration = strings.TrimSpace(link.Text())
	}

	bid, err := e.cell(row, e.sel.Bid, "bid", rowIndex)
	if err != nil {
		return models.ExpirationRow{}, false, err
	}
	ask, err := e.cell(row, e.sel.Ask, "ask", rowIndex)
	if err != nil {
		return models.ExpirationRow{}, false, err
	}
	out.Bid = bid
	out.Ask = ask
	return out, true, nil
}

func (e *Extractor) rows(doc *goquery.Document, side models.Side) (*goquery.Selection, bool) {
	tableSel := e.sel.CallsTable
	if side == models.Put {
		tableSel = e.sel.PutsTable
	}
	table := doc.Find(tableSel).First()
	if table.Length() == 0 {
		return nil, false
	}
	return table.Find(e.sel.Row), true
}

func (e *Extractor) cell(row *goquery.Selection, sel, field string, rowIndex int) (float64, error) {
	node := row.Find(sel).First()
	if node.Length() == 0 {
		return 0, &ParseError{Field: fmt.Sprintf("%s row %d", field, rowIndex)}
	}
	return parseNumber(field, node.Text())
}

func parseNumber(field, text string) (float64, error) {
	clean := strings.ReplaceAll(strings.TrimSpace(text), ",", "")
	if clean == "" {
		return 0, &ParseError{Field: field, Text: text}
	}
	v, err := strconv.ParseFloat(clean, 64)
	if err != nil {
		return 0, &ParseError{Field: field, Text: text, Err: err}
	}
	return v, nil
}
