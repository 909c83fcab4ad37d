package model

import (
	"testing"
	"time"

	"github.com/guregu/null/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(n int) time.Time {
	return time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, n)
}

func TestNewTimeSeries_SortsAndDedupes(t *testing.T) {
	ts := NewTimeSeries([]PriceBar{
		{Time: day(2), Close: 3},
		{Time: day(0), Close: 1},
		{Time: day(1), Close: 2},
		{Time: day(1), Close: 99},
	})
	require.Equal(t, 3, ts.Len())
	assert.Equal(t, []float64{1, 2, 3}, ts.Closes())

	last, ok := ts.Last()
	require.True(t, ok)
	assert.Equal(t, day(2), last.Time)
}

func TestTimeSeries_Empty(t *testing.T) {
	ts := NewTimeSeries(nil)
	assert.True(t, ts.Empty())
	assert.Empty(t, ts.Closes())
	_, ok := ts.Last()
	assert.False(t, ok)
}

func TestTimeSeries_ColumnAndTail(t *testing.T) {
	bars := make([]PriceBar, 5)
	for i := range bars {
		bars[i] = PriceBar{Time: day(i), Close: float64(i), High: float64(i) + 1, Low: float64(i) - 1}
	}
	ts := NewTimeSeries(bars)

	assert.Equal(t, []float64{1, 2, 3, 4, 5}, ts.Column(ColumnHigh))
	assert.Equal(t, []float64{-1, 0, 1, 2, 3}, ts.Column(ColumnLow))
	assert.Equal(t, []float64{3, 4}, ts.Tail(2).Closes())
	assert.Equal(t, 5, ts.Tail(10).Len())
	assert.True(t, ts.Tail(0).Empty())
}

func TestTimeSeries_BarsIsCopy(t *testing.T) {
	ts := NewTimeSeries([]PriceBar{{Time: day(0), Close: 1}})
	b := ts.Bars()
	b[0].Close = 42
	assert.Equal(t, []float64{1}, ts.Closes())
}

func TestSnapshot(t *testing.T) {
	s := NewSnapshot([]Entry{
		{FieldLastPrice, NumberValue(null.FloatFrom(10))},
		{FieldUpperCircuit, NumberValue(null.Float{})},
		{FieldLastPrice, NumberValue(null.FloatFrom(11))},
	})
	assert.True(t, s.Has(FieldLastPrice))
	assert.Equal(t, 10.0, s.Number(FieldLastPrice).Float64)
	assert.True(t, s.Has(FieldUpperCircuit))
	assert.False(t, s.Number(FieldUpperCircuit).Valid)
	assert.False(t, s.Has(FieldSector))
	assert.Len(t, s.Entries(), 2)
	assert.False(t, s.Empty())

	assert.True(t, NewSnapshot([]Entry{{FieldSector, TextValue(null.String{})}}).Empty())
	assert.True(t, Snapshot{}.Empty())
}

func TestSignalRecord_Entries(t *testing.T) {
	partial := PartialRecord("SBIN", nil)
	assert.True(t, partial.Partial())
	entries := partial.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, FieldSymbol, entries[0].Field)

	full := SignalRecord{Symbol: "SBIN", Reading: &IndicatorReading{RSI: null.FloatFrom(55)}}
	assert.False(t, full.Partial())
	fields := map[Field]bool{}
	for _, e := range full.Entries() {
		fields[e.Field] = true
	}
	assert.True(t, fields[FieldRSI])
	assert.True(t, fields[FieldSignal])
}
