package collector

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"Niveshak/internal/logging"
	"Niveshak/internal/metrics"
	"Niveshak/internal/model"
)

// Acquirer defaults.
const (
	DefaultAttempts     = 3
	DefaultBackoff      = 3 * time.Second
	DefaultLookbackDays = 180
)

// Options tunes an Acquirer. Zero values select the defaults.
type Options struct {
	Attempts     int
	Backoff      time.Duration
	LookbackDays int
	Now          func() time.Time
	Logger       *logrus.Entry
	Metrics      *metrics.Metrics
}

// Acquirer turns a symbol into a snapshot and a normalized time series.
type Acquirer struct {
	provider Provider
	fields   FieldMapping
	cache    *Cache

	attempts int
	backoff  time.Duration
	lookback int
	now      func() time.Time
	log      *logrus.Entry
	metrics  *metrics.Metrics
}

// NewAcquirer validates the provider's field mapping and builds an Acquirer.
// cache may be nil to disable memoization.
func NewAcquirer(p Provider, cache *Cache, opts Options) (*Acquirer, error) {
	fields := p.Fields()
	if err := fields.Validate(); err != nil {
		return nil, fmt.Errorf("provider %s: %w", p.Name(), err)
	}
	a := &Acquirer{
		provider: p,
		fields:   fields,
		cache:    cache,
		attempts: opts.Attempts,
		backoff:  opts.Backoff,
		lookback: opts.LookbackDays,
		now:      opts.Now,
		log:      opts.Logger,
		metrics:  opts.Metrics,
	}
	if a.attempts <= 0 {
		a.attempts = DefaultAttempts
	}
	if a.backoff < 0 {
		a.backoff = 0
	}
	if a.lookback <= 0 {
		a.lookback = DefaultLookbackDays
	}
	if a.now == nil {
		a.now = time.Now
	}
	if a.log == nil {
		a.log = logging.Discard()
	}
	return a, nil
}

// Cache returns the acquirer's memo cache.
func (a *Acquirer) Cache() *Cache { return a.cache }

// Provider returns the underlying provider.
func (a *Acquirer) Provider() Provider { return a.provider }

// NormalizeSymbol trims, upper-cases and escapes a symbol for use in
// provider URLs, e.g. "m&m" becomes "M%26M".
func NormalizeSymbol(symbol string) string {
	s := strings.ToUpper(strings.TrimSpace(symbol))
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}

// Fetch resolves symbol into its latest snapshot and ascending history.
// Errors wrap ErrNoData when either part is empty or undecodable.
func (a *Acquirer) Fetch(ctx context.Context, symbol string) (model.Snapshot, model.TimeSeries, error) {
	sym := NormalizeSymbol(symbol)
	if sym == "" {
		return model.Snapshot{}, model.TimeSeries{}, fmt.Errorf("empty symbol: %w", ErrNoData)
	}
	log := a.log.WithField("symbol", sym)

	raw, err := Memoize(ctx, a.cache, Key{Symbol: sym, Kind: KindQuote}, func(ctx context.Context) (RawQuote, error) {
		var raw RawQuote
		err := a.retry(ctx, log, KindQuote, func(ctx context.Context) error {
			var err error
			raw, err = a.provider.Quote(ctx, sym)
			return err
		})
		return raw, err
	})
	if err != nil {
		return model.Snapshot{}, model.TimeSeries{}, asNoData(KindQuote, sym, err)
	}
	snap := a.fields.Extract(raw)
	if snap.Empty() {
		log.Warn("quote has no values")
		return model.Snapshot{}, model.TimeSeries{}, fmt.Errorf("quote for %s: %w", sym, ErrNoData)
	}

	end := a.now()
	start := end.AddDate(0, 0, -a.lookback)
	params := start.Format("2006-01-02") + ".." + end.Format("2006-01-02")
	series, err := Memoize(ctx, a.cache, Key{Symbol: sym, Kind: KindHistory, Params: params}, func(ctx context.Context) (model.TimeSeries, error) {
		var bars []model.PriceBar
		err := a.retry(ctx, log, KindHistory, func(ctx context.Context) error {
			var err error
			bars, err = a.provider.History(ctx, sym, start, end)
			return err
		})
		return model.NewTimeSeries(bars), err
	})
	if err != nil {
		return model.Snapshot{}, model.TimeSeries{}, asNoData(KindHistory, sym, err)
	}
	if series.Empty() {
		log.Warn("history is empty, check the symbol")
		return model.Snapshot{}, model.TimeSeries{}, fmt.Errorf("history for %s: %w", sym, ErrNoData)
	}
	log.WithField("bars", series.Len()).Debug("fetched quote and history")
	return snap, series, nil
}

// retry runs call up to a.attempts times, sleeping a.backoff between
// attempts. Only ErrDecode is retried.
func (a *Acquirer) retry(ctx context.Context, log *logrus.Entry, kind string, call func(context.Context) error) error {
	for attempt := 1; ; attempt++ {
		err := call(ctx)
		if err == nil {
			a.metrics.ObserveFetch(kind, "ok")
			return nil
		}
		if !errors.Is(err, ErrDecode) {
			a.metrics.ObserveFetch(kind, "error")
			return err
		}
		a.metrics.ObserveFetch(kind, "decode_error")
		if attempt >= a.attempts {
			return fmt.Errorf("%s failed after %d attempts: %w", kind, attempt, err)
		}
		log.WithError(err).Warnf("%s attempt %d/%d failed, retrying in %v", kind, attempt, a.attempts, a.backoff)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(a.backoff):
		}
	}
}

// asNoData downgrades decode failures to ErrNoData; context and other errors
// are only wrapped.
func asNoData(kind, sym string, err error) error {
	if errors.Is(err, ErrDecode) && !errors.Is(err, ErrNoData) {
		return fmt.Errorf("%s for %s: %w: %w", kind, sym, ErrNoData, err)
	}
	return fmt.Errorf("%s for %s: %w", kind, sym, err)
}
