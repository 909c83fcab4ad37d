package model

import (
	"sort"
	"time"
)

// PriceBar represents a single daily bar. high >= close >= low is not enforced.
type PriceBar struct {
	Time  time.Time
	Close float64
	High  float64
	Low   float64
}

// Column names a numeric field of a PriceBar.
type Column int

const (
	ColumnClose Column = iota
	ColumnHigh
	ColumnLow
)

// TimeSeries is an ascending, duplicate-free sequence of bars.
// The zero value is an empty series.
type TimeSeries struct {
	bars []PriceBar
}

// NewTimeSeries copies bars, sorts them by time and drops repeated timestamps
// (the first occurrence in input order wins).
func NewTimeSeries(bars []PriceBar) TimeSeries {
	if len(bars) == 0 {
		return TimeSeries{}
	}
	sorted := make([]PriceBar, len(bars))
	copy(sorted, bars)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Time.Before(sorted[j].Time) })

	out := sorted[:1]
	for _, b := range sorted[1:] {
		if b.Time.Equal(out[len(out)-1].Time) {
			continue
		}
		out = append(out, b)
	}
	return TimeSeries{bars: out}
}

// Len returns the number of bars.
func (s TimeSeries) Len() int { return len(s.bars) }

// Empty reports whether the series holds no history.
func (s TimeSeries) Empty() bool { return len(s.bars) == 0 }

// Bars returns a copy of the bars.
func (s TimeSeries) Bars() []PriceBar {
	out := make([]PriceBar, len(s.bars))
	copy(out, s.bars)
	return out
}

// Column extracts one field for every bar, oldest first.
func (s TimeSeries) Column(c Column) []float64 {
	out := make([]float64, len(s.bars))
	for i, b := range s.bars {
		switch c {
		case ColumnHigh:
			out[i] = b.High
		case ColumnLow:
			out[i] = b.Low
		default:
			out[i] = b.Close
		}
	}
	return out
}

// Closes is shorthand for Column(ColumnClose).
func (s TimeSeries) Closes() []float64 { return s.Column(ColumnClose) }

// Tail returns the most recent window bars, or the whole series when shorter.
func (s TimeSeries) Tail(window int) TimeSeries {
	if window <= 0 {
		return TimeSeries{}
	}
	if window >= len(s.bars) {
		return s
	}
	return TimeSeries{bars: s.bars[len(s.bars)-window:]}
}

// Last returns the most recent bar.
func (s TimeSeries) Last() (PriceBar, bool) {
	if len(s.bars) == 0 {
		return PriceBar{}, false
	}
	return s.bars[len(s.bars)-1], true
}
