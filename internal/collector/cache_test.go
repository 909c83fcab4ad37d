package collector

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Niveshak/internal/metrics"
)

func TestMemoize_ReadThrough(t *testing.T) {
	c := NewCache(nil)
	var calls int
	fn := func(context.Context) (int, error) { calls++; return 42, nil }
	key := Key{Symbol: "SBIN", Kind: KindQuote}

	for i := 0; i < 3; i++ {
		v, err := Memoize(context.Background(), c, key, fn)
		require.NoError(t, err)
		assert.Equal(t, 42, v)
	}
	assert.Equal(t, 1, calls)

	_, _ = Memoize(context.Background(), c, Key{Symbol: "SBIN", Kind: KindHistory}, fn)
	assert.Equal(t, 2, calls)
	assert.Equal(t, 2, c.Len())

	c.Reset()
	assert.Equal(t, 0, c.Len())
	_, _ = Memoize(context.Background(), c, key, fn)
	assert.Equal(t, 3, calls)
}

func TestMemoize_FailuresNotCached(t *testing.T) {
	c := NewCache(nil)
	boom := errors.New("boom")
	var calls int
	fn := func(context.Context) (string, error) {
		calls++
		if calls == 1 {
			return "", boom
		}
		return "ok", nil
	}
	key := Key{Symbol: "TCS", Kind: KindQuote}

	_, err := Memoize(context.Background(), c, key, fn)
	assert.ErrorIs(t, err, boom)
	v, err := Memoize(context.Background(), c, key, fn)
	require.NoError(t, err)
	assert.Equal(t, "ok", v)
	assert.Equal(t, 2, calls)
}

func TestMemoize_ConcurrentCallersShareOneCall(t *testing.T) {
	m := metrics.New()
	c := NewCache(m)
	var calls atomic.Int32
	release := make(chan struct{})
	fn := func(context.Context) (int, error) {
		calls.Add(1)
		<-release
		return 7, nil
	}
	key := Key{Symbol: "INFY", Kind: KindHistory, Params: "x"}

	var wg sync.WaitGroup
	results := make([]int, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], _ = Memoize(context.Background(), c, key, fn)
		}(i)
	}
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), calls.Load())
	for _, r := range results {
		assert.Equal(t, 7, r)
	}
}

func TestMemoize_WaiterHonorsContext(t *testing.T) {
	c := NewCache(nil)
	key := Key{Symbol: "HDFC", Kind: KindQuote}
	release := make(chan struct{})
	defer close(release)
	go Memoize(context.Background(), c, key, func(context.Context) (int, error) { <-release; return 1, nil })
	require.Eventually(t, func() bool { return c.Len() == 1 }, time.Second, time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err := Memoize(ctx, c, key, func(context.Context) (int, error) { return 2, nil })
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestMemoize_NilCache(t *testing.T) {
	var calls int
	fn := func(context.Context) (int, error) { calls++; return 1, nil }
	_, _ = Memoize[int](context.Background(), nil, Key{}, fn)
	_, _ = Memoize[int](context.Background(), nil, Key{}, fn)
	assert.Equal(t, 2, calls)
}

func TestMemoize_WaiterOutlivesCancelledOwner(t *testing.T) {
	c := NewCache(nil)
	key := Key{Symbol: "LT", Kind: KindQuote}
	ownerCtx, cancelOwner := context.WithCancel(context.Background())
	ownerErr := make(chan error, 1)
	go func() {
		_, err := Memoize(ownerCtx, c, key, func(ctx context.Context) (int, error) {
			<-ctx.Done()
			return 0, ctx.Err()
		})
		ownerErr <- err
	}()
	require.Eventually(t, func() bool { return c.Len() == 1 }, time.Second, time.Millisecond)

	type result struct {
		v   int
		err error
	}
	waiter := make(chan result, 1)
	go func() {
		v, err := Memoize(context.Background(), c, key, func(context.Context) (int, error) { return 9, nil })
		waiter <- result{v, err}
	}()
	time.Sleep(20 * time.Millisecond)
	cancelOwner()

	assert.ErrorIs(t, <-ownerErr, context.Canceled)
	got := <-waiter
	require.NoError(t, got.err)
	assert.Equal(t, 9, got.v)
}
