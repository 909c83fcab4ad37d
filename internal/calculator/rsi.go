package calculator

// CalculateRSI computes the Wilder-smoothed RSI over the given period.
// Requires at least period+1 closes. A flat series yields 50.
func CalculateRSI(closes []float64, period int) (float64, error) {
	if period <= 0 {
		return 0, ErrInvalidPeriod
	}
	if len(closes) < period+1 {
		return 0, insufficient("RSI", len(closes), period+1)
	}
	p := float64(period)

	// Seed with the plain average of the first period moves.
	var avgGain, avgLoss float64
	for i := 1; i <= period; i++ {
		gain, loss := move(closes[i-1], closes[i])
		avgGain += gain
		avgLoss += loss
	}
	avgGain /= p
	avgLoss /= p

	for i := period + 1; i < len(closes); i++ {
		gain, loss := move(closes[i-1], closes[i])
		avgGain = (avgGain*(p-1) + gain) / p
		avgLoss = (avgLoss*(p-1) + loss) / p
	}

	switch {
	case avgLoss == 0 && avgGain == 0:
		return 50, nil
	case avgLoss == 0:
		return 100, nil
	}
	rsi := 100 - 100/(1+avgGain/avgLoss)
	return clamp(rsi, 0, 100), nil
}

// move splits a close-to-close change into its gain and loss parts.
func move(prev, cur float64) (gain, loss float64) {
	d := cur - prev
	if d > 0 {
		return d, 0
	}
	return 0, -d
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
