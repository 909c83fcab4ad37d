package strategy

import (
	"strings"

	"github.com/guregu/null/v6"

	"Niveshak/internal/calculator"
	"Niveshak/internal/model"
)

// Thresholds used by the classifier.
const (
	DefaultBreakoutBand = 7.5 // |%K vs %D| percent difference considered a breakout

	StochOverbought = 80.0
	StochOversold   = 20.0

	RSIOversold   = 30.0
	RSIOverbought = 70.0

	// TrendingADX is the ADX level from which RSI upgrades breakout labels.
	TrendingADX = 25.0
)

// NotAvailable replaces a clause whose inputs are absent.
const NotAvailable = "N/A"

// Separator joins the clauses of a signal.
const Separator = " | "

// TrendBand maps an ADX range to a label and a strength.
type TrendBand struct {
	MaxADX   float64
	Label    string
	Strength int
}

// TrendBands defines the ADX banding, checked in order. Upper bounds are inclusive.
var TrendBands = []TrendBand{
	{25, "Weak Trend", 0},
	{50, "Strong Trend", 1},
	{75, "Very Strong Trend", 2},
}

// ExtremeBand applies above the last TrendBands bound.
var ExtremeBand = TrendBand{MaxADX: 100, Label: "Extremely Strong Trend", Strength: 3}

// Inputs are the readings the classifier looks at.
type Inputs struct {
	LastPrice null.Float
	Reading   model.IndicatorReading
}

// Verdict is the classifier output.
type Verdict struct {
	Strength   null.Int
	Trend      string
	Stochastic string
	Bollinger  string
	StochDelta null.Float
}

// Text concatenates the clauses in fixed order: trend, stochastic, Bollinger.
func (v Verdict) Text() string {
	return strings.Join([]string{v.Trend, v.Stochastic, v.Bollinger}, Separator)
}

// Classifier combines indicator readings into a trade signal.
type Classifier struct {
	BreakoutBand float64
}

// NewClassifier creates a Classifier; a non-positive band selects DefaultBreakoutBand.
func NewClassifier(breakoutBand float64) *Classifier {
	if breakoutBand <= 0 {
		breakoutBand = DefaultBreakoutBand
	}
	return &Classifier{BreakoutBand: breakoutBand}
}

// Classify evaluates every clause. A clause with absent inputs renders
// NotAvailable without affecting the others.
func (c *Classifier) Classify(in Inputs) Verdict {
	r := in.Reading
	band, ok := trendBand(r.ADX)

	v := Verdict{
		Trend:      NotAvailable,
		StochDelta: calculator.SpreadPctOf(r.StochK, r.StochD),
	}
	if ok {
		v.Trend = band.Label
		v.Strength = null.IntFrom(int64(band.Strength))
	}
	v.Stochastic = c.stochasticClause(r)
	v.Bollinger = bollingerClause(in.LastPrice, r)
	return v
}

// trendBand maps ADX to its band.
func trendBand(adx null.Float) (TrendBand, bool) {
	if !adx.Valid {
		return TrendBand{}, false
	}
	for _, b := range TrendBands {
		if adx.Float64 <= b.MaxADX {
			return b, true
		}
	}
	return ExtremeBand, true
}
