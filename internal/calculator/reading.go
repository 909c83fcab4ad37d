package calculator

import "Niveshak/internal/model"

// Default indicator periods.
const (
	DefaultRSIPeriod   = 14
	DefaultADXPeriod   = 14
	DefaultEMAPeriod   = 20
	DefaultBBPeriod    = 20
	DefaultBBDeviation = 2.0
)

// Params selects indicator periods for Compute.
type Params struct {
	RSIPeriod   int
	ADXPeriod   int
	EMAPeriod   int
	BBPeriod    int
	BBDeviation float64
	Stochastic  StochasticPreset
}

// DefaultParams returns the standard periods with the aggressive stochastic preset.
func DefaultParams() Params {
	return Params{
		RSIPeriod:   DefaultRSIPeriod,
		ADXPeriod:   DefaultADXPeriod,
		EMAPeriod:   DefaultEMAPeriod,
		BBPeriod:    DefaultBBPeriod,
		BBDeviation: DefaultBBDeviation,
		Stochastic:  StochasticAggressive,
	}
}

// Compute evaluates every indicator over the series. An indicator whose
// window exceeds the history is left absent; the others still compute.
func Compute(ts model.TimeSeries, p Params) model.IndicatorReading {
	closes := ts.Closes()
	highs := ts.Column(model.ColumnHigh)
	lows := ts.Column(model.ColumnLow)

	var r model.IndicatorReading
	r.RSI = RoundedOrAbsent(CalculateRSI(closes, p.RSIPeriod))
	r.ADX = RoundedOrAbsent(CalculateADX(highs, lows, closes, p.ADXPeriod))
	r.EMA20 = RoundedOrAbsent(CalculateEMA(closes, p.EMAPeriod))

	if bands, err := CalculateBollinger(closes, p.BBPeriod, p.BBDeviation); err == nil {
		r.BBHigh = RoundedOrAbsent(bands.Upper, nil)
		r.BBMid = RoundedOrAbsent(bands.Middle, nil)
		r.BBLow = RoundedOrAbsent(bands.Lower, nil)
	}

	if k, d, err := CalculateStochastic(highs, lows, closes, p.Stochastic.FastK, p.Stochastic.FastD); err == nil {
		r.StochK = RoundedOrAbsent(k, nil)
		r.StochD = RoundedOrAbsent(d, nil)
	}
	return r
}
