package calculator

import (
	"errors"
	"math"
	"testing"

	"github.com/guregu/null/v6"
	"github.com/stretchr/testify/assert"
)

func TestRound(t *testing.T) {
	assert.Equal(t, 2.68, Round(2.675))
	assert.Equal(t, 1.23, Round(1.234))
	assert.Equal(t, -1.01, Round(-1.005))
	assert.True(t, math.IsNaN(Round(math.NaN())))
}

func TestRoundedOrAbsent(t *testing.T) {
	assert.Equal(t, null.FloatFrom(3.14), RoundedOrAbsent(3.14159, nil))
	assert.False(t, RoundedOrAbsent(1, errors.New("boom")).Valid)
	assert.False(t, RoundedOrAbsent(math.Inf(1), nil).Valid)
}

func TestPctDiff(t *testing.T) {
	assert.Equal(t, 0.0, PctDiff(0, 123))
	assert.Equal(t, 0.0, PctDiff(0, 0))
	for _, a := range []float64{-3, 0.01, 1, 99.5, 1e6} {
		assert.Equal(t, 0.0, PctDiff(a, a))
	}
	assert.Equal(t, 10.0, PctDiff(100, 110))
	assert.Equal(t, -66.67, PctDiff(3, 1))
}

func TestSpreadPct(t *testing.T) {
	assert.Equal(t, 7.0, SpreadPct(50, 46.5))
	assert.Equal(t, 29.41, SpreadPct(85, 60))
	assert.Equal(t, -4.17, SpreadPct(48, 50))
	assert.Equal(t, 0.0, SpreadPct(0, 5))
	assert.Equal(t, null.FloatFrom(7), SpreadPctOf(null.FloatFrom(50), null.FloatFrom(46.5)))
	assert.False(t, SpreadPctOf(null.Float{}, null.FloatFrom(1)).Valid)
}

func TestDeltaPct(t *testing.T) {
	assert.Equal(t, null.FloatFrom(10), DeltaPct(null.FloatFrom(100), null.FloatFrom(110)))
	assert.False(t, DeltaPct(null.FloatFrom(0), null.FloatFrom(110)).Valid)
	assert.False(t, DeltaPct(null.Float{}, null.FloatFrom(110)).Valid)
	assert.False(t, DeltaPct(null.FloatFrom(100), null.Float{}).Valid)
}
