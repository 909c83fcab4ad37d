package model

import "github.com/guregu/null/v6"

// Field is a named attribute of a quote snapshot or a signal record.
type Field string

// Snapshot fields.
const (
	FieldLastPrice     Field = "LAST_PRICE"
	FieldPreviousClose Field = "LAST_CLOSE"
	FieldDayHigh       Field = "INTRADAY_HIGH"
	FieldDayLow        Field = "INTRADAY_LOW"
	FieldYearHigh      Field = "YEAR_HIGH"
	FieldYearLow       Field = "YEAR_LOW"
	FieldUpperCircuit  Field = "UPPER_CKT"
	FieldLowerCircuit  Field = "LOWER_CKT"
	FieldCompanyName   Field = "COMPANY_NAME"
	FieldIndustry      Field = "INDUSTRY"
	FieldSector        Field = "SECTOR"
	FieldBasicIndustry Field = "BASIC_INDUSTRY"
)

// Record fields that are not part of a snapshot.
const (
	FieldSymbol    Field = "SYMBOL"
	FieldSignal    Field = "SIGNAL"
	FieldStrength  Field = "STRENGTH"
	FieldEMADelta  Field = "EMA_DELTA"
	FieldRSI       Field = "RSI"
	FieldADX       Field = "ADX"
	FieldEMA20     Field = "EMA_20"
	FieldStochDiff Field = "STOCH_DELTA"
	FieldStochK    Field = "STOCH_K"
	FieldStochD    Field = "STOCH_D"
	FieldBBHigh    Field = "BB_HIGH"
	FieldBBMid     Field = "BB_AVG"
	FieldBBLow     Field = "BB_LOW"
)

// SnapshotFields is the fixed key set of a snapshot.
var SnapshotFields = []Field{
	FieldLastPrice, FieldPreviousClose, FieldDayHigh, FieldDayLow,
	FieldYearHigh, FieldYearLow, FieldUpperCircuit, FieldLowerCircuit,
	FieldCompanyName, FieldIndustry, FieldSector, FieldBasicIndustry,
}

var textFields = map[Field]bool{
	FieldSymbol:        true,
	FieldSignal:        true,
	FieldCompanyName:   true,
	FieldIndustry:      true,
	FieldSector:        true,
	FieldBasicIndustry: true,
}

// IsText reports whether f carries a string rather than a number.
func IsText(f Field) bool { return textFields[f] }

// IsSnapshotField reports whether f belongs to the snapshot key set.
func IsSnapshotField(f Field) bool {
	for _, sf := range SnapshotFields {
		if sf == f {
			return true
		}
	}
	return false
}

// Value is an optional number or string. At most one of the two is valid.
type Value struct {
	Number null.Float
	Text   null.String
}

// NumberValue wraps a number.
func NumberValue(f null.Float) Value { return Value{Number: f} }

// TextValue wraps a string.
func TextValue(s null.String) Value { return Value{Text: s} }

// Valid reports whether the value is present.
func (v Value) Valid() bool { return v.Number.Valid || v.Text.Valid }

// Entry is one snapshot key with its value.
type Entry struct {
	Field Field
	Value Value
}

// Snapshot is the latest quote for a symbol. Keys a provider does not supply
// are not present; supplied keys may still hold an absent value.
type Snapshot struct {
	entries []Entry
	index   map[Field]int
}

// NewSnapshot builds a snapshot. Later duplicates of a field are ignored.
func NewSnapshot(entries []Entry) Snapshot {
	s := Snapshot{index: make(map[Field]int, len(entries))}
	for _, e := range entries {
		if _, dup := s.index[e.Field]; dup {
			continue
		}
		s.index[e.Field] = len(s.entries)
		s.entries = append(s.entries, e)
	}
	return s
}

// Has reports whether the provider supplied the field.
func (s Snapshot) Has(f Field) bool {
	_, ok := s.index[f]
	return ok
}

// Get returns the value of f; absent when not supplied.
func (s Snapshot) Get(f Field) Value {
	i, ok := s.index[f]
	if !ok {
		return Value{}
	}
	return s.entries[i].Value
}

// Number returns the numeric value of f.
func (s Snapshot) Number(f Field) null.Float { return s.Get(f).Number }

// Text returns the string value of f.
func (s Snapshot) Text(f Field) null.String { return s.Get(f).Text }

// Entries returns the supplied keys in provider order.
func (s Snapshot) Entries() []Entry {
	out := make([]Entry, len(s.entries))
	copy(out, s.entries)
	return out
}

// Empty reports whether no supplied key holds a value.
func (s Snapshot) Empty() bool {
	for _, e := range s.entries {
		if e.Value.Valid() {
			return false
		}
	}
	return true
}
