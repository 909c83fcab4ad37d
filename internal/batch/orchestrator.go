package batch

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/guregu/null/v6"
	"github.com/sirupsen/logrus"

	"Niveshak/internal/calculator"
	"Niveshak/internal/collector"
	"Niveshak/internal/logging"
	"Niveshak/internal/metrics"
	"Niveshak/internal/model"
	"Niveshak/internal/strategy"
)

// Orchestrator defaults.
const (
	DefaultWorkers = 10
	DefaultTimeout = 120 * time.Second
)

var (
	// ErrTimeout is the failure of a symbol that exceeded its time budget.
	ErrTimeout = errors.New("symbol timed out")
	// ErrInvalidWidth rejects a worker pool with fewer than one worker.
	ErrInvalidWidth = errors.New("worker width must be at least 1")
	// ErrBusy is returned by Run while another batch is running.
	ErrBusy = errors.New("batch already running")
)

// State is the lifecycle of an Orchestrator.
type State int

const (
	StateIdle State = iota
	StateRunning
	StateCompleted
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateCompleted:
		return "completed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Acquirer resolves a symbol into a snapshot and its history.
type Acquirer interface {
	Fetch(ctx context.Context, symbol string) (model.Snapshot, model.TimeSeries, error)
	Cache() *collector.Cache
}

// Options configures an Orchestrator.
type Options struct {
	Workers int
	Timeout time.Duration // per symbol; zero selects DefaultTimeout
	Params  calculator.Params
	Logger  *logrus.Entry
	Metrics *metrics.Metrics
}

// Result is the outcome of one batch. Records follow the order of the
// requested symbols after duplicates are dropped.
type Result struct {
	ID       string
	Started  time.Time
	Duration time.Duration
	Records  []model.SignalRecord
	Full     int
	Partial  int
	TimedOut int
}

// Failures returns the partial records.
func (r *Result) Failures() []model.SignalRecord {
	var out []model.SignalRecord
	for _, rec := range r.Records {
		if rec.Partial() {
			out = append(out, rec)
		}
	}
	return out
}

// Orchestrator fans a watchlist out over a fixed worker pool.
type Orchestrator struct {
	acquirer   Acquirer
	classifier *strategy.Classifier
	params     calculator.Params
	workers    int
	timeout    time.Duration
	log        *logrus.Entry
	metrics    *metrics.Metrics

	mu    sync.Mutex
	state State
}

// New creates an Orchestrator. A nil classifier uses the default breakout band.
func New(acq Acquirer, cls *strategy.Classifier, opts Options) (*Orchestrator, error) {
	if opts.Workers < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidWidth, opts.Workers)
	}
	if cls == nil {
		cls = strategy.NewClassifier(strategy.DefaultBreakoutBand)
	}
	o := &Orchestrator{
		acquirer:   acq,
		classifier: cls,
		params:     opts.Params,
		workers:    opts.Workers,
		timeout:    opts.Timeout,
		log:        opts.Logger,
		metrics:    opts.Metrics,
	}
	if o.params == (calculator.Params{}) {
		o.params = calculator.DefaultParams()
	}
	if o.timeout <= 0 {
		o.timeout = DefaultTimeout
	}
	if o.log == nil {
		o.log = logging.Discard()
	}
	return o, nil
}

// State returns the current lifecycle state.
func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

type job struct {
	index  int
	symbol string
}

type tagged struct {
	index    int
	record   model.SignalRecord
	timedOut bool
}

// Run processes symbols and returns one record per distinct symbol. Symbol
// failures become partial records; only a concurrent Run is an error.
func (o *Orchestrator) Run(ctx context.Context, symbols []string) (*Result, error) {
	o.mu.Lock()
	if o.state == StateRunning {
		o.mu.Unlock()
		return nil, ErrBusy
	}
	o.state = StateRunning
	o.mu.Unlock()
	defer func() {
		o.mu.Lock()
		o.state = StateCompleted
		o.mu.Unlock()
	}()

	res := &Result{ID: uuid.NewString(), Started: time.Now()}
	log := o.log.WithField("batch_id", res.ID)
	if c := o.acquirer.Cache(); c != nil {
		c.Reset()
	}

	symbols = dedupe(symbols)
	res.Records = make([]model.SignalRecord, len(symbols))
	log.WithField("symbols", len(symbols)).Info("batch started")

	jobs := make(chan job, len(symbols))
	for i, s := range symbols {
		jobs <- job{index: i, symbol: s}
	}
	close(jobs)

	results := make(chan tagged)
	var wg sync.WaitGroup
	for w := 0; w < o.workers && w < len(symbols); w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobs {
				results <- o.runOne(ctx, log, j)
			}
		}()
	}
	go func() {
		wg.Wait()
		close(results)
	}()

	for r := range results {
		res.Records[r.index] = r.record
		switch {
		case r.timedOut:
			res.TimedOut++
			res.Partial++
			o.metrics.ObserveSymbol(metrics.OutcomeTimeout)
		case r.record.Partial():
			res.Partial++
			o.metrics.ObserveSymbol(metrics.OutcomePartial)
		default:
			res.Full++
			o.metrics.ObserveSymbol(metrics.OutcomeFull)
		}
	}

	res.Duration = time.Since(res.Started)
	o.metrics.ObserveBatch(res.Duration)
	log.WithFields(logrus.Fields{
		"symbols":  len(symbols),
		"full":     res.Full,
		"partial":  res.Partial,
		"timeout":  res.TimedOut,
		"duration": res.Duration.Round(time.Millisecond).String(),
	}).Info("batch completed")
	return res, nil
}

// runOne bounds one symbol by the per-symbol timeout. A symbol that runs
// over is reported as ErrTimeout while its siblings carry on.
func (o *Orchestrator) runOne(ctx context.Context, log *logrus.Entry, j job) tagged {
	sctx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()
	log = log.WithField("symbol", j.symbol)

	done := make(chan model.SignalRecord, 1)
	go func() { done <- o.process(sctx, log, j.symbol) }()

	var rec model.SignalRecord
	select {
	case rec = <-done:
	case <-sctx.Done():
		select {
		case rec = <-done:
		default:
			rec = model.PartialRecord(j.symbol, sctx.Err())
		}
	}

	if rec.Partial() && ctx.Err() == nil && errors.Is(sctx.Err(), context.DeadlineExceeded) {
		rec.Failure = fmt.Errorf("%s after %v: %w", j.symbol, o.timeout, ErrTimeout)
		log.WithError(rec.Failure).Warn("symbol timed out")
		return tagged{index: j.index, record: rec, timedOut: true}
	}
	if rec.Partial() {
		log.WithError(rec.Failure).Warn("symbol incomplete")
	}
	return tagged{index: j.index, record: rec}
}

// process runs acquire, compute and classify for one symbol.
func (o *Orchestrator) process(ctx context.Context, log *logrus.Entry, symbol string) model.SignalRecord {
	snap, series, err := o.acquirer.Fetch(ctx, symbol)
	if err != nil {
		return model.PartialRecord(symbol, err)
	}

	reading := calculator.Compute(series, o.params)
	for _, e := range reading.Entries() {
		if !e.Value.Valid() {
			log.WithFields(logrus.Fields{"indicator": e.Field, "bars": series.Len()}).Debug("indicator absent")
		}
	}

	last := snap.Number(model.FieldLastPrice)
	verdict := o.classifier.Classify(strategy.Inputs{LastPrice: last, Reading: reading})
	return model.SignalRecord{
		Symbol:        symbol,
		Snapshot:      snap,
		Reading:       &reading,
		EMADeltaPct:   calculator.DeltaPct(reading.EMA20, last),
		StochDeltaPct: verdict.StochDelta,
		Strength:      verdict.Strength,
		Signal:        null.StringFrom(verdict.Text()),
	}
}

// dedupe upper-cases and trims symbols, dropping blanks and repeats while
// keeping first-seen order.
func dedupe(symbols []string) []string {
	seen := make(map[string]bool, len(symbols))
	out := make([]string, 0, len(symbols))
	for _, s := range symbols {
		s = strings.ToUpper(strings.TrimSpace(s))
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}
