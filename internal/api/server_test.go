package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Niveshak/internal/batch"
	"Niveshak/internal/metrics"
	"Niveshak/internal/model"
	"Niveshak/internal/table"
	"Niveshak/internal/watchlist"
)

type fakeScanner struct {
	names []string
	err   error
	panic bool
}

func (f *fakeScanner) Names() ([]string, error) { return f.names, f.err }

func (f *fakeScanner) Scan(_ context.Context, name string) (*batch.Report, error) {
	if f.panic {
		panic("boom")
	}
	if f.err != nil {
		return nil, f.err
	}
	records := []model.SignalRecord{
		model.PartialRecord("SBIN", errors.New("history for SBIN: no data")),
	}
	tbl, _ := table.Build(records)
	return &batch.Report{
		Watchlist: name,
		Result:    &batch.Result{ID: "b-1", Started: time.Unix(0, 0).UTC(), Duration: 2 * time.Second, Records: records, Partial: 1},
		Table:     tbl,
	}, nil
}

func do(t *testing.T, s *Server, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestHealth(t *testing.T) {
	rec := do(t, NewServer(":0", &fakeScanner{}, nil, nil), "/healthz")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"healthy"`)
}

func TestWatchlists(t *testing.T) {
	s := NewServer(":0", &fakeScanner{names: []string{"auto", "banks"}}, nil, nil)
	rec := do(t, s, "/api/v1/watchlists")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"watchlists":["auto","banks"]}`, rec.Body.String())

	rec = do(t, NewServer(":0", &fakeScanner{}, nil, nil), "/api/v1/watchlists")
	assert.JSONEq(t, `{"watchlists":[]}`, rec.Body.String())
}

func TestSignals_JSON(t *testing.T) {
	rec := do(t, NewServer(":0", &fakeScanner{}, nil, nil), "/api/v1/watchlists/banks/signals")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var resp struct {
		Watchlist string `json:"watchlist"`
		BatchID   string `json:"batch_id"`
		Partial   int    `json:"partial"`
		Table     struct {
			Columns []string `json:"columns"`
			Rows    [][]any  `json:"rows"`
		} `json:"table"`
		Failures []FailureItem `json:"failures"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "banks", resp.Watchlist)
	assert.Equal(t, "b-1", resp.BatchID)
	assert.Equal(t, 1, resp.Partial)
	assert.Equal(t, []string{"SYMBOL"}, resp.Table.Columns)
	require.Len(t, resp.Failures, 1)
	assert.Equal(t, "SBIN", resp.Failures[0].Symbol)
}

func TestSignals_Text(t *testing.T) {
	rec := do(t, NewServer(":0", &fakeScanner{}, nil, nil), "/api/v1/watchlists/banks/signals?format=text")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.HasPrefix(rec.Body.String(), "SYMBOL\nSBIN"))
}

func TestSignals_Errors(t *testing.T) {
	tests := []struct {
		err  error
		code int
	}{
		{fmt.Errorf("%w: %q", watchlist.ErrUnknownList, "x"), http.StatusNotFound},
		{fmt.Errorf("scan x: %w", batch.ErrBusy), http.StatusConflict},
		{errors.New("disk on fire"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		rec := do(t, NewServer(":0", &fakeScanner{err: tt.err}, nil, nil), "/api/v1/watchlists/x/signals")
		assert.Equal(t, tt.code, rec.Code, tt.err.Error())
		assert.Contains(t, rec.Body.String(), `"error"`)
	}
}

func TestRecovery(t *testing.T) {
	rec := do(t, NewServer(":0", &fakeScanner{panic: true}, nil, nil), "/api/v1/watchlists/x/signals")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	m := metrics.New()
	m.ObserveBatch(time.Second)
	rec := do(t, NewServer(":0", &fakeScanner{}, m, nil), "/metrics")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "niveshak_batches_total 1")

	rec = do(t, NewServer(":0", &fakeScanner{}, nil, nil), "/metrics")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUnknownRouteAndMethod(t *testing.T) {
	s := NewServer(":0", &fakeScanner{}, nil, nil)
	assert.Equal(t, http.StatusNotFound, do(t, s, "/api/v1/nothing").Code)

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/watchlists", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
