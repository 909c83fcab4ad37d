package batch

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"Niveshak/internal/logging"
	"Niveshak/internal/table"
	"Niveshak/internal/watchlist"
)

// Report is a completed batch over one watchlist.
type Report struct {
	Watchlist string
	Result    *Result
	Table     *table.Table
}

// Scanner runs named watchlists through an Orchestrator.
type Scanner struct {
	orch  *Orchestrator
	lists watchlist.Provider
	log   *logrus.Entry
}

// NewScanner binds an orchestrator to a watchlist source.
func NewScanner(o *Orchestrator, lists watchlist.Provider, logger *logrus.Entry) *Scanner {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Scanner{orch: o, lists: lists, log: logger}
}

// Names returns the available watchlists.
func (s *Scanner) Names() ([]string, error) { return s.lists.Names() }

// Scan runs the named watchlist and arranges the result. A column
// arrangement failure is logged and the raw-shape table is kept.
func (s *Scanner) Scan(ctx context.Context, name string) (*Report, error) {
	symbols, err := s.lists.List(name)
	if err != nil {
		return nil, err
	}
	res, err := s.orch.Run(ctx, symbols)
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", name, err)
	}
	tbl, err := table.Build(res.Records)
	var arrErr *table.ColumnArrangementError
	if errors.As(err, &arrErr) {
		s.log.WithFields(logrus.Fields{"watchlist": name, "batch_id": res.ID}).WithError(err).Error("showing raw columns")
	}
	return &Report{Watchlist: name, Result: res, Table: tbl}, nil
}
