package table

import (
	"bytes"
	"encoding/json"
	"html"
	"io"
	"strconv"
	"text/tabwriter"

	"Niveshak/internal/model"
)

// Absent is how a missing cell is displayed.
const Absent = "n/a"

// FormatValue renders a cell: numbers with two decimals, text verbatim.
func FormatValue(v model.Value) string {
	switch {
	case v.Text.Valid:
		return v.Text.String
	case v.Number.Valid:
		return strconv.FormatFloat(v.Number.Float64, 'f', 2, 64)
	default:
		return Absent
	}
}

// RenderText writes the table as aligned columns.
func (t *Table) RenderText(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	writeRow := func(cells []string) {
		for i, c := range cells {
			if i > 0 {
				io.WriteString(tw, "\t")
			}
			io.WriteString(tw, c)
		}
		io.WriteString(tw, "\n")
	}
	writeRow(t.Headers())
	for _, row := range t.Rows {
		cells := make([]string, len(row))
		for i, v := range row {
			cells[i] = FormatValue(v)
		}
		writeRow(cells)
	}
	return tw.Flush()
}

// Text returns RenderText output as a string.
func (t *Table) Text() string {
	var buf bytes.Buffer
	t.RenderText(&buf)
	return buf.String()
}

// HTML returns the table as an escaped <pre> block.
func (t *Table) HTML() string {
	return "<pre>" + html.EscapeString(t.Text()) + "</pre>"
}

// MarshalJSON encodes columns and rows; absent cells become null.
func (t *Table) MarshalJSON() ([]byte, error) {
	rows := make([][]any, len(t.Rows))
	for i, row := range t.Rows {
		cells := make([]any, len(row))
		for j, v := range row {
			switch {
			case v.Text.Valid:
				cells[j] = v.Text.String
			case v.Number.Valid:
				cells[j] = v.Number.Float64
			}
		}
		rows[i] = cells
	}
	return json.Marshal(struct {
		Columns []string `json:"columns"`
		Rows    [][]any  `json:"rows"`
	}{t.Headers(), rows})
}
