package model

import "github.com/guregu/null/v6"

// IndicatorReading holds the latest value of every computed indicator,
// rounded to 2 decimals. A field is absent when history was too short.
type IndicatorReading struct {
	RSI    null.Float
	ADX    null.Float
	BBHigh null.Float
	BBMid  null.Float
	BBLow  null.Float
	EMA20  null.Float
	StochK null.Float
	StochD null.Float
}

// Entries lists the reading in display order.
func (r IndicatorReading) Entries() []Entry {
	return []Entry{
		{FieldRSI, NumberValue(r.RSI)},
		{FieldADX, NumberValue(r.ADX)},
		{FieldEMA20, NumberValue(r.EMA20)},
		{FieldStochK, NumberValue(r.StochK)},
		{FieldStochD, NumberValue(r.StochD)},
		{FieldBBHigh, NumberValue(r.BBHigh)},
		{FieldBBMid, NumberValue(r.BBMid)},
		{FieldBBLow, NumberValue(r.BBLow)},
	}
}
