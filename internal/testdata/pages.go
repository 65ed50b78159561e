// Package testdata builds quote pages shaped like the live site for tests.
package testdata

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Row is one data row of an options table. Link holds the strike on a
// chain page and the expiration label on a strike page.
type Row struct {
	Link string
	Bid  string
	Ask  string
}

// Page describes a quote page
type Page struct {
	Price        string // empty = no price node
	Calls        []Row
	Puts         []Row
	NoCallsTable bool
	NoPutsTable  bool
}

// HTML renders the page with the live site's class names
func (p Page) HTML() string {
	var b strings.Builder
	b.WriteString("<html><head><title>options</title></head><body><div id=\"quote-header-info\">")
	if p.Price != "" {
		fmt.Fprintf(&b, `<span class="Trsdu(0.3s) Fw(b) Fz(36px) Mb(-4px) D(ib)">%s</span>`, p.Price)
	}
	b.WriteString("</div>")
	if !p.NoCallsTable {
		writeTable(&b, "calls W(100%) Pos(r) Bd(0) Pt(0) list-options", p.Calls)
	}
	if !p.NoPutsTable {
		writeTable(&b, "puts W(100%) Pos(r) list-options", p.Puts)
	}
	b.WriteString("</body></html>")
	return b.String()
}

// Document parses the page
func (p Page) Document() *goquery.Document {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(p.HTML()))
	if err != nil {
		panic(err)
	}
	return doc
}

func writeTable(b *strings.Builder, class string, rows []Row) {
	fmt.Fprintf(b, `<table class="%s"><thead><tr><th>Contract</th><th>Bid</th><th>Ask</th></tr></thead><tbody>`, class)
	for _, r := range rows {
		b.WriteString("<tr>")
		if r.Link != "" {
			fmt.Fprintf(b, `<td><a class="C($linkColor) Fz(s)" href="#">%s</a></td>`, r.Link)
		} else {
			b.WriteString("<td></td>")
		}
		fmt.Fprintf(b, `<td class="data-col4 Ta(end) Pstart(7px)">%s</td>`, r.Bid)
		fmt.Fprintf(b, `<td class="data-col5 Ta(end) Pstart(7px)">%s</td>`, r.Ask)
		b.WriteString("</tr>")
	}
	b.WriteString("</tbody></table>")
}

// StrikeRows builds chain-page rows for the given strikes
func StrikeRows(strikes ...string) []Row {
	rows := make([]Row, len(strikes))
	for i, s := range strikes {
		rows[i] = Row{Link: s, Bid: "1.00", Ask: "1.10"}
	}
	return rows
}

// MockChainPage is a chain page with the price at 100.00
var MockChainPage = Page{
	Price: "100.00",
	Calls: StrikeRows("95.00", "100.00", "105.00", "112.00", "115.00"),
	Puts:  StrikeRows("80.00", "85.00", "90.00", "95.00"),
}

// MockCallStrikePage lists seven expirations for the 112 call
var MockCallStrikePage = Page{
	Calls: []Row{
		{Link: "November 20, 2026", Bid: "1.20", Ask: "1.40"},
		{Link: "November 27, 2026", Bid: "1.55", Ask: "1.65"},
		{Link: "December 4, 2026", Bid: "1.90", Ask: "2.10"},
		{Link: "December 18, 2026", Bid: "2.45", Ask: "2.55"},
		{Link: "January 15, 2027", Bid: "3.10", Ask: "3.30"},
		{Link: "March 19, 2027", Bid: "4.00", Ask: "4.40"},
		{Link: "June 17, 2027", Bid: "5.50", Ask: "5.90"},
	},
	NoPutsTable: true,
}

// MockPutStrikePage lists three expirations for the 95 put
var MockPutStrikePage = Page{
	NoCallsTable: true,
	Puts: []Row{
		{Link: "November 20, 2026", Bid: "0.80", Ask: "0.90"},
		{Link: "November 27, 2026", Bid: "1.00", Ask: "1.10"},
		{Link: "December 4, 2026", Bid: "1.30", Ask: "1.36"},
	},
}
