package model

import "github.com/guregu/null/v6"

// SignalRecord is the per-symbol outcome of a batch.
// A record with a nil Reading is partial and carries only the symbol.
type SignalRecord struct {
	Symbol        string
	Snapshot      Snapshot
	Reading       *IndicatorReading
	EMADeltaPct   null.Float
	StochDeltaPct null.Float
	Strength      null.Int
	Signal        null.String
	// Failure is the reason the record is partial, nil for a full record.
	Failure error
}

// PartialRecord returns a symbol-only record.
func PartialRecord(symbol string, failure error) SignalRecord {
	return SignalRecord{Symbol: symbol, Failure: failure}
}

// Partial reports whether indicators were not computed.
func (r SignalRecord) Partial() bool { return r.Reading == nil }

// Entries flattens the record into its supplied fields in population order:
// symbol, snapshot, indicators, derived deltas, signal.
func (r SignalRecord) Entries() []Entry {
	out := []Entry{{FieldSymbol, TextValue(null.StringFrom(r.Symbol))}}
	out = append(out, r.Snapshot.Entries()...)
	if r.Reading == nil {
		return out
	}
	out = append(out, r.Reading.Entries()...)
	out = append(out,
		Entry{FieldEMADelta, NumberValue(r.EMADeltaPct)},
		Entry{FieldStochDiff, NumberValue(r.StochDeltaPct)},
		Entry{FieldStrength, NumberValue(intToFloat(r.Strength))},
		Entry{FieldSignal, TextValue(r.Signal)},
	)
	return out
}

func intToFloat(i null.Int) null.Float {
	return null.NewFloat(float64(i.Int64), i.Valid)
}
