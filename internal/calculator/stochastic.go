package calculator

import (
	"fmt"
	"math"
)

// StochasticPreset is a fast %K / %D period pair.
type StochasticPreset struct {
	Name  string
	FastK int
	FastD int
}

var (
	// StochasticAggressive suits short term swing trading.
	StochasticAggressive = StochasticPreset{Name: "aggressive", FastK: 10, FastD: 3}
	// StochasticConservative suits medium term swing trading.
	StochasticConservative = StochasticPreset{Name: "conservative", FastK: 21, FastD: 5}
)

// PresetByName resolves a configured preset name.
func PresetByName(name string) (StochasticPreset, error) {
	switch name {
	case StochasticAggressive.Name, "":
		return StochasticAggressive, nil
	case StochasticConservative.Name:
		return StochasticConservative, nil
	default:
		return StochasticPreset{}, fmt.Errorf("unknown stochastic preset %q", name)
	}
}

// CalculateStochastic returns the latest fast %K and %D.
// %K is 0 when the window's high equals its low.
func CalculateStochastic(high, low, close []float64, fastK, fastD int) (k, d float64, err error) {
	if fastK <= 0 || fastD <= 0 {
		return 0, 0, ErrInvalidPeriod
	}
	n := len(close)
	if len(high) != n || len(low) != n {
		return 0, 0, fmt.Errorf("stochastic: column lengths differ (%d/%d/%d)", len(high), len(low), n)
	}
	need := fastK + fastD - 1
	if n < need {
		return 0, 0, insufficient("STOCH", n, need)
	}

	ks := make([]float64, 0, fastD)
	for end := n - fastD; end < n; end++ {
		hh, ll := windowRange(high, low, end-fastK+1, end)
		pct := 0.0
		if hh != ll {
			pct = (close[end] - ll) / (hh - ll) * 100
		}
		ks = append(ks, pct)
	}
	sum := 0.0
	for _, v := range ks {
		sum += v
	}
	return ks[len(ks)-1], sum / float64(fastD), nil
}

// windowRange scans [from, to] and returns the highest high and lowest low.
func windowRange(high, low []float64, from, to int) (hh, ll float64) {
	hh = math.Inf(-1)
	ll = math.Inf(1)
	for i := from; i <= to; i++ {
		if high[i] > hh {
			hh = high[i]
		}
		if low[i] < ll {
			ll = low[i]
		}
	}
	return hh, ll
}
