package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"Niveshak/internal/batch"
	"Niveshak/internal/table"
	"Niveshak/internal/watchlist"
)

// SignalsResponse is the body of GET /api/v1/watchlists/{name}/signals.
type SignalsResponse struct {
	Watchlist  string        `json:"watchlist"`
	BatchID    string        `json:"batch_id"`
	Started    time.Time     `json:"started"`
	DurationMS int64         `json:"duration_ms"`
	Full       int           `json:"full"`
	Partial    int           `json:"partial"`
	TimedOut   int           `json:"timed_out"`
	Table      *table.Table  `json:"table"`
	Failures   []FailureItem `json:"failures,omitempty"`
}

// FailureItem explains one partial record.
type FailureItem struct {
	Symbol string `json:"symbol"`
	Error  string `json:"error"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]any{
		"status":    "healthy",
		"timestamp": time.Now().Unix(),
	})
}

func (s *Server) handleWatchlists(w http.ResponseWriter, r *http.Request) {
	names, err := s.scanner.Names()
	if err != nil {
		s.logger.WithError(err).Error("list watchlists")
		s.writeError(w, http.StatusInternalServerError, "failed to list watchlists")
		return
	}
	if names == nil {
		names = []string{}
	}
	s.writeJSON(w, http.StatusOK, map[string][]string{"watchlists": names})
}

// handleSignals scans a watchlist. ?format=text returns the aligned table.
func (s *Server) handleSignals(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	rep, err := s.scanner.Scan(r.Context(), name)
	switch {
	case errors.Is(err, watchlist.ErrUnknownList):
		s.writeError(w, http.StatusNotFound, err.Error())
		return
	case errors.Is(err, batch.ErrBusy):
		s.writeError(w, http.StatusConflict, "a scan is already running, retry later")
		return
	case err != nil:
		s.logger.WithError(err).WithField("watchlist", name).Error("scan failed")
		s.writeError(w, http.StatusInternalServerError, "scan failed")
		return
	}

	if r.URL.Query().Get("format") == "text" {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		rep.Table.RenderText(w)
		return
	}

	res := rep.Result
	resp := SignalsResponse{
		Watchlist:  rep.Watchlist,
		BatchID:    res.ID,
		Started:    res.Started,
		DurationMS: res.Duration.Milliseconds(),
		Full:       res.Full,
		Partial:    res.Partial,
		TimedOut:   res.TimedOut,
		Table:      rep.Table,
	}
	for _, rec := range res.Failures() {
		item := FailureItem{Symbol: rec.Symbol}
		if rec.Failure != nil {
			item.Error = rec.Failure.Error()
		}
		resp.Failures = append(resp.Failures, item)
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.WithError(err).Warn("encode response")
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, errorResponse{Error: msg})
}
