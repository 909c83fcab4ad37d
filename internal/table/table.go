package table

import (
	"fmt"
	"strings"

	"Niveshak/internal/model"
)

// Column binds a display header to a record field.
type Column struct {
	Header string
	Field  model.Field
}

// Canonical is the display order of a signal table.
var Canonical = []Column{
	{"SYMBOL", model.FieldSymbol},
	{"SIGNAL", model.FieldSignal},
	{"Δ EMA %", model.FieldEMADelta},
	{"RSI", model.FieldRSI},
	{"ADX", model.FieldADX},
	{"EMA 20", model.FieldEMA20},
	{"Δ STOCH %", model.FieldStochDiff},
	{"%K", model.FieldStochK},
	{"%D", model.FieldStochD},
	{"BB HIGH", model.FieldBBHigh},
	{"BB MID", model.FieldBBMid},
	{"BB LOW", model.FieldBBLow},
	{"LAST PRICE", model.FieldLastPrice},
	{"DAY HIGH", model.FieldDayHigh},
	{"DAY LOW", model.FieldDayLow},
	{"PREV CLOSE", model.FieldPreviousClose},
	{"52W HIGH", model.FieldYearHigh},
	{"52W LOW", model.FieldYearLow},
	{"UPPER CKT", model.FieldUpperCircuit},
	{"LOWER CKT", model.FieldLowerCircuit},
}

// ColumnArrangementError reports canonical columns that no record carries.
// The table built alongside it keeps the raw record shape.
type ColumnArrangementError struct {
	Missing []string
}

func (e *ColumnArrangementError) Error() string {
	return fmt.Sprintf("failed to arrange the columns: missing %s", strings.Join(e.Missing, ", "))
}

// Table is a rectangular view of a batch: one row per record, in record order.
type Table struct {
	Columns []Column
	Rows    [][]model.Value
}

// Build arranges records into the canonical columns. If a canonical column
// is present in no record, it returns the raw shape with columns in
// first-seen order along with a *ColumnArrangementError. No records give an
// empty canonical table.
func Build(records []model.SignalRecord) (*Table, error) {
	if len(records) == 0 {
		return &Table{Columns: Canonical, Rows: [][]model.Value{}}, nil
	}
	rows := make([]map[model.Field]model.Value, len(records))
	var seen []model.Field
	present := make(map[model.Field]bool)
	for i, rec := range records {
		row := make(map[model.Field]model.Value)
		for _, e := range rec.Entries() {
			if _, dup := row[e.Field]; dup {
				continue
			}
			row[e.Field] = e.Value
			if !present[e.Field] {
				present[e.Field] = true
				seen = append(seen, e.Field)
			}
		}
		rows[i] = row
	}

	var missing []string
	for _, c := range Canonical {
		if !present[c.Field] {
			missing = append(missing, c.Header)
		}
	}

	columns := Canonical
	var err error
	if len(missing) > 0 {
		columns = make([]Column, len(seen))
		for i, f := range seen {
			columns[i] = Column{Header: string(f), Field: f}
		}
		err = &ColumnArrangementError{Missing: missing}
	}

	t := &Table{Columns: columns, Rows: make([][]model.Value, len(rows))}
	for i, row := range rows {
		cells := make([]model.Value, len(columns))
		for j, c := range columns {
			cells[j] = row[c.Field]
		}
		t.Rows[i] = cells
	}
	return t, err
}

// Headers returns the column headers in order.
func (t *Table) Headers() []string {
	out := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		out[i] = c.Header
	}
	return out
}

// Column returns the index of the column carrying f, or -1.
func (t *Table) Column(f model.Field) int {
	for i, c := range t.Columns {
		if c.Field == f {
			return i
		}
	}
	return -1
}
