package collector

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Niveshak/internal/metrics"
	"Niveshak/internal/model"
)

var fixedNow = func() time.Time { return time.Date(2024, 6, 28, 10, 0, 0, 0, time.UTC) }

func newTestAcquirer(t *testing.T, p Provider, m *metrics.Metrics) *Acquirer {
	t.Helper()
	a, err := NewAcquirer(p, NewCache(m), Options{Backoff: time.Millisecond, Now: fixedNow, Metrics: m})
	require.NoError(t, err)
	return a
}

func TestNormalizeSymbol(t *testing.T) {
	assert.Equal(t, "M%26M", NormalizeSymbol("m&m"))
	assert.Equal(t, "SBIN", NormalizeSymbol("  sbin "))
	assert.Equal(t, "BAJAJ-AUTO", NormalizeSymbol("bajaj-auto"))
	assert.Equal(t, "A%20B", NormalizeSymbol("a b"))
	assert.Equal(t, "", NormalizeSymbol("   "))
}

func TestFetch_Success(t *testing.T) {
	p := NewMockProvider(500)
	a := newTestAcquirer(t, p, nil)

	snap, series, err := a.Fetch(context.Background(), "sbin")
	require.NoError(t, err)
	assert.True(t, snap.Number(model.FieldLastPrice).Valid)
	assert.Equal(t, p.Days, series.Len())

	last, _ := series.Last()
	assert.Equal(t, last.Close, snap.Number(model.FieldLastPrice).Float64)
}

func TestFetch_RetriesDecodeFailures(t *testing.T) {
	m := metrics.New()
	p := NewMockProvider(100)
	p.FailQuote("SBIN", ErrDecode, ErrDecode)
	a := newTestAcquirer(t, p, m)

	_, _, err := a.Fetch(context.Background(), "SBIN")
	require.NoError(t, err)
	quotes, _ := p.Calls("SBIN")
	assert.Equal(t, 3, quotes)
	assert.Equal(t, 2.0, testutil.ToFloat64(m.FetchAttempts.WithLabelValues(KindQuote, "decode_error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.FetchAttempts.WithLabelValues(KindQuote, "ok")))
}

func TestFetch_ExhaustedRetriesIsNoData(t *testing.T) {
	p := NewMockProvider(100)
	p.FailHistory("SBIN", ErrDecode, ErrDecode, ErrDecode)
	a := newTestAcquirer(t, p, nil)

	_, _, err := a.Fetch(context.Background(), "SBIN")
	assert.ErrorIs(t, err, ErrNoData)
	assert.ErrorIs(t, err, ErrDecode)
	_, history := p.Calls("SBIN")
	assert.Equal(t, DefaultAttempts, history)
}

func TestFetch_OtherErrorsNotRetried(t *testing.T) {
	p := NewMockProvider(100)
	upstream := fmt.Errorf("status 500: %w", ErrUpstream)
	p.FailQuote("SBIN", upstream)
	a := newTestAcquirer(t, p, nil)

	_, _, err := a.Fetch(context.Background(), "SBIN")
	assert.ErrorIs(t, err, ErrUpstream)
	assert.NotErrorIs(t, err, ErrNoData)
	quotes, history := p.Calls("SBIN")
	assert.Equal(t, 1, quotes)
	assert.Equal(t, 0, history)
}

func TestFetch_EmptyHistoryIsNoData(t *testing.T) {
	p := NewMockProvider(100)
	p.SetQuote("NEWCO", RawQuote{string(model.FieldLastPrice): 10.0})
	p.SetBars("NEWCO", nil)
	a := newTestAcquirer(t, p, nil)

	_, _, err := a.Fetch(context.Background(), "NEWCO")
	assert.ErrorIs(t, err, ErrNoData)
}

func TestFetch_EmptyQuoteIsNoData(t *testing.T) {
	p := NewMockProvider(100)
	p.SetQuote("GHOST", RawQuote{"unrelated": 1.0})
	a := newTestAcquirer(t, p, nil)

	_, _, err := a.Fetch(context.Background(), "ghost")
	assert.ErrorIs(t, err, ErrNoData)
	_, history := p.Calls("GHOST")
	assert.Equal(t, 0, history)
}

func TestFetch_MemoizedWithinBatch(t *testing.T) {
	m := metrics.New()
	p := NewMockProvider(100)
	a := newTestAcquirer(t, p, m)

	for i := 0; i < 3; i++ {
		_, _, err := a.Fetch(context.Background(), "TCS")
		require.NoError(t, err)
	}
	quotes, history := p.Calls("TCS")
	assert.Equal(t, 1, quotes)
	assert.Equal(t, 1, history)
	assert.Equal(t, 4.0, testutil.ToFloat64(m.CacheLookups.WithLabelValues("hit")))

	a.Cache().Reset()
	_, _, err := a.Fetch(context.Background(), "TCS")
	require.NoError(t, err)
	quotes, _ = p.Calls("TCS")
	assert.Equal(t, 2, quotes)
}

func TestFetch_CancelDuringBackoff(t *testing.T) {
	p := NewMockProvider(100)
	p.FailQuote("SBIN", ErrDecode, ErrDecode, ErrDecode)
	a, err := NewAcquirer(p, nil, Options{Backoff: time.Hour, Now: fixedNow})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	start := time.Now()
	_, _, err = a.Fetch(ctx, "SBIN")
	assert.True(t, errors.Is(err, context.DeadlineExceeded), "got %v", err)
	assert.Less(t, time.Since(start), time.Second)
}

func TestNewAcquirer_RejectsBadMapping(t *testing.T) {
	_, err := NewAcquirer(badFields{NewMockProvider(1)}, nil, Options{})
	assert.ErrorContains(t, err, "provider mock")
}

type badFields struct{ *MockProvider }

func (badFields) Fields() FieldMapping { return FieldMapping{{model.FieldLastPrice, []string{"x"}}} }
