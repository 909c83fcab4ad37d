package calculator

import "math"

// Bands is an upper/middle/lower Bollinger envelope.
type Bands struct {
	Upper  float64
	Middle float64
	Lower  float64
}

// CalculateBollinger returns SMA(period) ± deviation population standard
// deviations of the last period closes.
func CalculateBollinger(closes []float64, period int, deviation float64) (Bands, error) {
	mid, err := CalculateSMA(closes, period)
	if err != nil {
		return Bands{}, err
	}
	var sq float64
	for _, c := range closes[len(closes)-period:] {
		d := c - mid
		sq += d * d
	}
	width := deviation * math.Sqrt(sq/float64(period))
	return Bands{Upper: mid + width, Middle: mid, Lower: mid - width}, nil
}
