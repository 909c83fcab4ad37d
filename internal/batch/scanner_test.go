package batch

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Niveshak/internal/collector"
	"Niveshak/internal/table"
	"Niveshak/internal/watchlist"
)

func newTestScanner(t *testing.T, p *collector.MockProvider, lists map[string]string) *Scanner {
	t.Helper()
	dir := t.TempDir()
	for name, body := range lists {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
	}
	wl, err := watchlist.NewDir(dir)
	require.NoError(t, err)
	return NewScanner(newTestOrchestrator(t, p, Options{Workers: 3}), wl, nil)
}

func TestScanner_Scan(t *testing.T) {
	s := newTestScanner(t, collector.NewMockProvider(300), map[string]string{"banks": "SBIN\nHDFCBANK\n# comment\nAXISBANK\n"})

	rep, err := s.Scan(context.Background(), "banks")
	require.NoError(t, err)
	assert.Equal(t, "banks", rep.Watchlist)
	assert.Equal(t, 3, rep.Result.Full)
	assert.Equal(t, len(table.Canonical), len(rep.Table.Columns))
	assert.Equal(t, "AXISBANK", rep.Table.Rows[2][0].Text.String)

	names, err := s.Names()
	require.NoError(t, err)
	assert.Equal(t, []string{"banks"}, names)
}

func TestScanner_AllPartialKeepsRawTable(t *testing.T) {
	p := collector.NewMockProvider(100)
	p.SetBars("A", nil)
	p.SetBars("B", nil)
	s := newTestScanner(t, p, map[string]string{"dead": "A\nB\n"})

	rep, err := s.Scan(context.Background(), "dead")
	require.NoError(t, err)
	assert.Equal(t, []string{"SYMBOL"}, rep.Table.Headers())
	assert.Len(t, rep.Table.Rows, 2)
}

func TestScanner_EmptyList(t *testing.T) {
	s := newTestScanner(t, collector.NewMockProvider(100), map[string]string{"empty": "# nothing yet\n"})

	rep, err := s.Scan(context.Background(), "empty")
	require.NoError(t, err)
	assert.Empty(t, rep.Result.Records)
	assert.Equal(t, len(table.Canonical), len(rep.Table.Columns))
	assert.Empty(t, rep.Table.Rows)
}

func TestScanner_UnknownList(t *testing.T) {
	s := newTestScanner(t, collector.NewMockProvider(100), nil)
	_, err := s.Scan(context.Background(), "nope")
	assert.ErrorIs(t, err, watchlist.ErrUnknownList)
}
