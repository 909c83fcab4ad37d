package strategy

import (
	"math"

	"github.com/guregu/null/v6"

	"Niveshak/internal/calculator"
	"Niveshak/internal/model"
)

// Stochastic labels.
const (
	LabelReversal           = "Reversal"
	LabelBreakout           = "Breakout"
	LabelUptrend            = "Uptrend"
	LabelDowntrend          = "Downtrend"
	LabelBuyBreakout        = "Buy Breakout"
	LabelStrongBuyBreakout  = "Strong Buy Breakout"
	LabelSellBreakout       = "Sell Breakout"
	LabelStrongSellBreakout = "Strong Sell Breakout"

	DirectionRising  = "Rising"
	DirectionFalling = "Falling"
	DirectionFlat    = "Flat"
)

// Bollinger labels.
const (
	LabelAboveUpper  = "Above Upper Band (Sell)"
	LabelBelowLower  = "Below Lower Band (Buy)"
	LabelWithinBands = "Within Bands"
)

// stochasticClause labels the %K/%D crossover. Overbought/oversold %K wins
// over the breakout band; when the trend is strong, RSI picks between the
// plain and the strong breakout variants.
func (c *Classifier) stochasticClause(r model.IndicatorReading) string {
	if !r.StochK.Valid || !r.StochD.Valid {
		return NotAvailable
	}
	k, d := r.StochK.Float64, r.StochD.Float64
	diff := calculator.SpreadPct(k, d)

	direction := DirectionFlat
	switch {
	case k > d:
		direction = DirectionRising
	case k < d:
		direction = DirectionFalling
	}

	var label string
	switch {
	case k > StochOverbought || k < StochOversold:
		label = LabelReversal
	case math.Abs(diff) <= c.BreakoutBand:
		label = breakoutLabel(direction, r.ADX, r.RSI)
	case diff > 0:
		label = LabelUptrend
	default:
		label = LabelDowntrend
	}
	return label + " " + direction
}

func breakoutLabel(direction string, adx, rsi null.Float) string {
	if !adx.Valid || adx.Float64 < TrendingADX {
		return LabelBreakout
	}
	switch direction {
	case DirectionRising:
		if rsi.Valid && rsi.Float64 <= RSIOversold {
			return LabelStrongBuyBreakout
		}
		return LabelBuyBreakout
	case DirectionFalling:
		if rsi.Valid && rsi.Float64 >= RSIOverbought {
			return LabelStrongSellBreakout
		}
		return LabelSellBreakout
	default:
		return LabelBreakout
	}
}

// bollingerClause reports where the last price sits against the bands.
func bollingerClause(last null.Float, r model.IndicatorReading) string {
	if !last.Valid || !r.BBHigh.Valid || !r.BBLow.Valid {
		return NotAvailable
	}
	switch {
	case last.Float64 > r.BBHigh.Float64:
		return LabelAboveUpper
	case last.Float64 < r.BBLow.Float64:
		return LabelBelowLower
	default:
		return LabelWithinBands
	}
}
