package calculator

import (
	"math"

	"github.com/guregu/null/v6"
	"github.com/shopspring/decimal"
)

// Precision is the number of decimals every reported value is rounded to.
const Precision = 2

// Round rounds v to Precision decimals, half away from zero, on the shortest
// decimal representation of v.
func Round(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return v
	}
	return decimal.NewFromFloat(v).Round(Precision).InexactFloat64()
}

// RoundedOrAbsent converts an indicator result into a rounded optional value.
func RoundedOrAbsent(v float64, err error) null.Float {
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return null.Float{}
	}
	return null.FloatFrom(Round(v))
}

// PctDiff returns the percentage move from base to other. It is 0 when base
// is 0, which happens for new listings without a reference price.
func PctDiff(base, other float64) float64 {
	if base == 0 {
		return 0
	}
	return Round((other - base) * 100 / base)
}

// SpreadPct returns a minus b as a percentage of a, so it is positive when a is
// the larger. It is 0 when a is 0.
func SpreadPct(a, b float64) float64 {
	if a == 0 {
		return 0
	}
	return Round((a - b) * 100 / a)
}

// SpreadPctOf is SpreadPct over optional inputs, absent when either is absent.
func SpreadPctOf(a, b null.Float) null.Float {
	if !a.Valid || !b.Valid {
		return null.Float{}
	}
	return null.FloatFrom(SpreadPct(a.Float64, b.Float64))
}

// DeltaPct is PctDiff over optional inputs. It is absent when either input is
// absent or base is 0.
func DeltaPct(base, other null.Float) null.Float {
	if !base.Valid || !other.Valid || base.Float64 == 0 {
		return null.Float{}
	}
	return null.FloatFrom(PctDiff(base.Float64, other.Float64))
}
