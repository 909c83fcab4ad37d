package watchlist

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// symbolColumn is the header of the symbol column in exchange index files.
const symbolColumn = "Symbol"

// ReadIndexCSV returns the Symbol column of an index constituents CSV as
// published by the exchange.
func ReadIndexCSV(r io.Reader) ([]string, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("index csv: empty file")
	}
	if err != nil {
		return nil, fmt.Errorf("index csv header: %w", err)
	}
	col := -1
	for i, h := range header {
		if strings.EqualFold(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")), symbolColumn) {
			col = i
			break
		}
	}
	if col < 0 {
		return nil, fmt.Errorf("index csv: no %q column", symbolColumn)
	}

	var symbols []string
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("index csv: %w", err)
		}
		if col < len(row) {
			if s := strings.TrimSpace(row[col]); s != "" {
				symbols = append(symbols, s)
			}
		}
	}
	return symbols, nil
}

// Subtract returns the symbols of from that are not in drop, keeping order.
func Subtract(from, drop []string) []string {
	skip := make(map[string]bool, len(drop))
	for _, s := range drop {
		skip[strings.ToUpper(s)] = true
	}
	out := make([]string, 0, len(from))
	for _, s := range from {
		if !skip[strings.ToUpper(s)] {
			out = append(out, s)
		}
	}
	return out
}

// Write stores symbols as the list name, replacing any existing list.
func (d *Dir) Write(name string, symbols []string) error {
	if name == "" || name != filepath.Base(name) || strings.HasPrefix(name, ".") {
		return fmt.Errorf("invalid watchlist name %q", name)
	}
	body := strings.Join(symbols, "\n")
	if body != "" {
		body += "\n"
	}
	if err := os.WriteFile(filepath.Join(d.path, name), []byte(body), 0o644); err != nil {
		return fmt.Errorf("write watchlist: %w", err)
	}
	return nil
}
