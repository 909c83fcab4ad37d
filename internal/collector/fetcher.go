package collector

import (
	"context"
	"errors"
	"time"

	"Niveshak/internal/model"
)

var (
	// ErrDecode marks an upstream response that could not be parsed. It is
	// the only failure the acquirer retries.
	ErrDecode = errors.New("undecodable upstream response")
	// ErrNoData is returned when the quote or the history came back empty.
	ErrNoData = errors.New("no data")
	// ErrUpstream marks a non-retryable upstream failure (bad status, API error).
	ErrUpstream = errors.New("upstream error")
)

// RawQuote is a decoded provider quote document.
type RawQuote map[string]any

// QuoteSource returns the latest quote for an escaped symbol.
type QuoteSource interface {
	Quote(ctx context.Context, symbol string) (RawQuote, error)
}

// HistorySource returns daily bars for an escaped symbol within [start, end].
type HistorySource interface {
	History(ctx context.Context, symbol string, start, end time.Time) ([]model.PriceBar, error)
}

// Provider is an interchangeable market data backend.
type Provider interface {
	QuoteSource
	HistorySource
	Name() string
	// Fields maps snapshot fields to paths inside the provider's RawQuote.
	Fields() FieldMapping
}
