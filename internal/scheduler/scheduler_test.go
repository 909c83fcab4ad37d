package scheduler

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Niveshak/internal/batch"
	"Niveshak/internal/collector"
	"Niveshak/internal/config"
	"Niveshak/internal/strategy"
	"Niveshak/internal/watchlist"
)

type recordingSender struct {
	mu   sync.Mutex
	msgs []string
}

func (r *recordingSender) SendAll(_ context.Context, messages []string, _ int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.msgs = append(r.msgs, messages...)
	return nil
}

func (r *recordingSender) sent() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.msgs...)
}

func newTestScheduler(t *testing.T) (*Scheduler, *recordingSender) {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "banks"), []byte("SBIN\nHDFCBANK\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "auto"), []byte("MARUTI\n"), 0o644))
	wl, err := watchlist.NewDir(dir)
	require.NoError(t, err)

	acq, err := collector.NewAcquirer(collector.NewMockProvider(400), collector.NewCache(nil), collector.Options{Backoff: time.Millisecond})
	require.NoError(t, err)
	orch, err := batch.New(acq, strategy.NewClassifier(0), batch.Options{Workers: 2})
	require.NoError(t, err)

	sender := &recordingSender{}
	return NewScheduler(context.Background(), batch.NewScanner(orch, wl, nil), sender, nil), sender
}

func TestHandleCommand_Lists(t *testing.T) {
	s, _ := newTestScheduler(t)
	replies := s.HandleCommand(context.Background(), "/lists")
	require.Len(t, replies, 1)
	assert.Contains(t, replies[0], "• auto\n• banks\n")
}

func TestHandleCommand_Scan(t *testing.T) {
	s, _ := newTestScheduler(t)
	for _, cmd := range []string{"/scan banks", "/scan@NiveshakBot banks", "banks"} {
		replies := s.HandleCommand(context.Background(), cmd)
		require.NotEmpty(t, replies, cmd)
		assert.Contains(t, replies[0], "banks", cmd)
		assert.Contains(t, replies[0], "SBIN", cmd)
		assert.Contains(t, replies[0], "HDFCBANK", cmd)
	}
}

func TestHandleCommand_UnknownList(t *testing.T) {
	s, _ := newTestScheduler(t)
	replies := s.HandleCommand(context.Background(), "/scan nope")
	require.Len(t, replies, 1)
	assert.Contains(t, replies[0], "unknown watchlist")
}

func TestHandleCommand_Help(t *testing.T) {
	s, _ := newTestScheduler(t)
	for _, cmd := range []string{"/help", "/scan", "hello there", "unknownlist"} {
		replies := s.HandleCommand(context.Background(), cmd)
		require.Len(t, replies, 1, cmd)
		assert.True(t, strings.HasPrefix(replies[0], "Available commands"), cmd)
	}
	assert.Nil(t, s.HandleCommand(context.Background(), "   "))
}

func TestRunNow_SendsReport(t *testing.T) {
	s, sender := newTestScheduler(t)
	s.RunNow("auto")
	msgs := sender.sent()
	require.NotEmpty(t, msgs)
	assert.Contains(t, msgs[0], "MARUTI")
}

func TestRegisterAll(t *testing.T) {
	s, _ := newTestScheduler(t)
	require.NoError(t, s.RegisterAll([]config.ScheduleEntry{
		{Cron: "0 30 15 * * 1-5", Watchlist: "banks"},
		{Cron: "@every 1h", Watchlist: "auto"},
	}))
	assert.Len(t, s.Cron.Entries(), 2)

	err := s.RegisterAll([]config.ScheduleEntry{{Cron: "not a spec", Watchlist: "banks"}})
	assert.ErrorContains(t, err, "banks")
}
