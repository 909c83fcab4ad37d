package collector

import (
	"context"
	"errors"
	"sync"

	"Niveshak/internal/metrics"
)

// Call kinds used in cache keys.
const (
	KindQuote   = "quote"
	KindHistory = "history"
)

// Key identifies one memoized upstream call.
type Key struct {
	Symbol string
	Kind   string
	Params string
}

type entry struct {
	done chan struct{}
	val  any
	err  error
}

// Cache memoizes upstream calls for the lifetime of a batch. Concurrent
// callers of one key share a single in-flight call; the first successful
// result is kept until Reset and failures are not stored.
type Cache struct {
	mu      sync.Mutex
	entries map[Key]*entry
	metrics *metrics.Metrics
}

// NewCache creates an empty cache. m may be nil.
func NewCache(m *metrics.Metrics) *Cache {
	return &Cache{entries: make(map[Key]*entry), metrics: m}
}

// Reset drops every entry. Calls in flight finish into the discarded map.
func (c *Cache) Reset() {
	c.mu.Lock()
	c.entries = make(map[Key]*entry)
	c.mu.Unlock()
}

// Len returns the number of stored or in-flight entries.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Memoize returns the cached value for key or computes it with fn.
// A nil cache always calls fn. fn runs under the first caller's ctx; a waiter
// whose own ctx is still live when that call is cancelled computes again
// instead of inheriting the cancellation.
func Memoize[T any](ctx context.Context, c *Cache, key Key, fn func(context.Context) (T, error)) (T, error) {
	if c == nil {
		return fn(ctx)
	}

	c.mu.Lock()
	if e, ok := c.entries[key]; ok {
		c.mu.Unlock()
		c.metrics.ObserveCache(true)
		select {
		case <-e.done:
		case <-ctx.Done():
			var zero T
			return zero, ctx.Err()
		}
		if e.err != nil {
			if isContextErr(e.err) && ctx.Err() == nil {
				return Memoize(ctx, c, key, fn)
			}
			var zero T
			return zero, e.err
		}
		return e.val.(T), nil
	}
	e := &entry{done: make(chan struct{})}
	c.entries[key] = e
	c.mu.Unlock()
	c.metrics.ObserveCache(false)

	val, err := fn(ctx)
	e.val, e.err = val, err
	if err != nil {
		c.mu.Lock()
		if c.entries[key] == e {
			delete(c.entries, key)
		}
		c.mu.Unlock()
	}
	close(e.done)
	return val, err
}

func isContextErr(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
