package calculator

import (
	"fmt"
	"math"
)

// CalculateADX computes the average directional index with Wilder smoothing.
// The recurrence runs over the full series, so the result depends on all of
// it; at least 2*period bars are required.
func CalculateADX(high, low, close []float64, period int) (float64, error) {
	if period <= 0 {
		return 0, ErrInvalidPeriod
	}
	n := len(close)
	if len(high) != n || len(low) != n {
		return 0, fmt.Errorf("ADX: column lengths differ (%d/%d/%d)", len(high), len(low), n)
	}
	if n < 2*period {
		return 0, insufficient("ADX", n, 2*period)
	}

	p := float64(period)
	var trSum, plusSum, minusSum float64

	// Seed the smoothed sums with the first period-1 moves.
	for i := 1; i < period; i++ {
		tr, plus, minus := directionalMove(high, low, close, i)
		trSum += tr
		plusSum += plus
		minusSum += minus
	}

	var adx, dxSum float64
	dxCount := 0
	for i := period; i < n; i++ {
		tr, plus, minus := directionalMove(high, low, close, i)
		trSum = trSum - trSum/p + tr
		plusSum = plusSum - plusSum/p + plus
		minusSum = minusSum - minusSum/p + minus

		dx := directionalIndex(trSum, plusSum, minusSum)
		if dxCount < period {
			dxSum += dx
			dxCount++
			if dxCount == period {
				adx = dxSum / p
			}
			continue
		}
		adx = (adx*(p-1) + dx) / p
	}
	return adx, nil
}

// directionalMove returns true range, +DM and -DM for bar i.
func directionalMove(high, low, close []float64, i int) (tr, plus, minus float64) {
	tr = math.Max(high[i]-low[i], math.Max(math.Abs(high[i]-close[i-1]), math.Abs(low[i]-close[i-1])))
	up := high[i] - high[i-1]
	down := low[i-1] - low[i]
	switch {
	case down > 0 && up < down:
		minus = down
	case up > 0 && up > down:
		plus = up
	}
	return tr, plus, minus
}

func directionalIndex(tr, plus, minus float64) float64 {
	if tr == 0 {
		return 0
	}
	plusDI := 100 * plus / tr
	minusDI := 100 * minus / tr
	sum := plusDI + minusDI
	if sum == 0 {
		return 0
	}
	return 100 * math.Abs(plusDI-minusDI) / sum
}
