package symbols

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Symbol is one watchlist entry
type Symbol struct {
	Symbol  string `json:"symbol"`
	Company string `json:"company,omitempty"`
	Sector  string `json:"sector,omitempty"`
}

// LoadWatchlist reads a watchlist from a .csv or .json file. CSV files use
// the "symbol"/"ticker" column, or the first column when there is no header.
// JSON files hold an array of tickers or an array of Symbol objects.
func LoadWatchlist(path string) ([]Symbol, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read watchlist: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return parseJSON(data)
	case ".csv", ".txt", "":
		return parseCSV(bytes.NewReader(data))
	default:
		return nil, fmt.Errorf("unsupported watchlist format %q", filepath.Ext(path))
	}
}

// Tickers returns the ticker of every symbol
func Tickers(list []Symbol) []string {
	out := make([]string, 0, len(list))
	for _, s := range list {
		out = append(out, s.Symbol)
	}
	return out
}

func parseJSON(data []byte) ([]Symbol, error) {
	var plain []string
	if err := json.Unmarshal(data, &plain); err == nil {
		list := make([]Symbol, 0, len(plain))
		for _, p := range plain {
			list = append(list, Symbol{Symbol: p})
		}
		return clean(list), nil
	}

	var list []Symbol
	if err := json.Unmarshal(data, &list); err != nil {
		return nil, fmt.Errorf("invalid watchlist JSON: %w", err)
	}
	return clean(list), nil
}

func parseCSV(r io.Reader) ([]Symbol, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("invalid watchlist CSV: %w", err)
	}
	if len(records) == 0 {
		return nil, nil
	}

	columns, hasHeader := findCSVColumns(records[0])
	if hasHeader {
		records = records[1:]
	}

	var list []Symbol
	for _, record := range records {
		list = append(list, Symbol{
			Symbol:  getColumnValue(record, columns["symbol"]),
			Company: getColumnValue(record, columns["company"]),
			Sector:  getColumnValue(record, columns["sector"]),
		})
	}
	return clean(list), nil
}

// findCSVColumns locates the known columns; hasHeader is false when the first
// row names no known column.
func findCSVColumns(header []string) (map[string]int, bool) {
	columns := map[string]int{
		"symbol":  -1,
		"company": -1,
		"sector":  -1,
	}

	for i, col := range header {
		col = strings.ToLower(strings.TrimSpace(col))

		if strings.Contains(col, "symbol") || strings.Contains(col, "ticker") {
			columns["symbol"] = i
		} else if col == "security" || strings.Contains(col, "company") || strings.Contains(col, "name") {
			columns["company"] = i
		} else if strings.Contains(col, "sector") {
			columns["sector"] = i
		}
	}

	hasHeader := columns["symbol"] != -1 || columns["company"] != -1 || columns["sector"] != -1
	if columns["symbol"] == -1 {
		columns["symbol"] = 0
	}
	return columns, hasHeader
}

func getColumnValue(record []string, col int) string {
	if col >= 0 && col < len(record) {
		return strings.TrimSpace(record[col])
	}
	return ""
}

// clean upper-cases tickers and drops blanks, comments and duplicates, keeping order
func clean(list []Symbol) []Symbol {
	seen := make(map[string]bool)
	var unique []Symbol

	for _, s := range list {
		s.Symbol = strings.ToUpper(strings.TrimSpace(s.Symbol))
		if s.Symbol == "" || strings.HasPrefix(s.Symbol, "#") || seen[s.Symbol] {
			continue
		}
		seen[s.Symbol] = true
		unique = append(unique, s)
	}
	return unique
}
