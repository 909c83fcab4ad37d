package collector

import (
	"context"
	"hash/fnv"
	"math"
	"sync"
	"time"

	"Niveshak/internal/model"
)

// MockProvider returns controllable fixed data for development and testing.
// Symbols without explicit data get a generated quote and history.
type MockProvider struct {
	BasePrice float64
	Days      int

	mu           sync.Mutex
	quotes       map[string]RawQuote
	bars         map[string][]model.PriceBar
	quoteErrs    map[string][]error
	historyErrs  map[string][]error
	delays       map[string]time.Duration
	quoteCalls   map[string]int
	historyCalls map[string]int
}

// NewMockProvider creates a provider generating data around basePrice.
func NewMockProvider(basePrice float64) *MockProvider {
	return &MockProvider{
		BasePrice:    basePrice,
		Days:         120,
		quotes:       map[string]RawQuote{},
		bars:         map[string][]model.PriceBar{},
		quoteErrs:    map[string][]error{},
		historyErrs:  map[string][]error{},
		delays:       map[string]time.Duration{},
		quoteCalls:   map[string]int{},
		historyCalls: map[string]int{},
	}
}

func (m *MockProvider) Name() string { return "mock" }

// Fields maps flat keys named after the fields themselves.
func (m *MockProvider) Fields() FieldMapping {
	out := make(FieldMapping, 0, len(model.SnapshotFields))
	for _, f := range model.SnapshotFields {
		out = append(out, FieldPath{Field: f, Path: []string{string(f)}})
	}
	return out
}

// SetQuote fixes the quote returned for symbol.
func (m *MockProvider) SetQuote(symbol string, q RawQuote) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.quotes[symbol] = q
}

// SetBars fixes the history returned for symbol. An empty slice means no history.
func (m *MockProvider) SetBars(symbol string, bars []model.PriceBar) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if bars == nil {
		bars = []model.PriceBar{}
	}
	m.bars[symbol] = bars
}

// FailQuote queues errors returned by the next quote calls for symbol.
func (m *MockProvider) FailQuote(symbol string, errs ...error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.quoteErrs[symbol] = append(m.quoteErrs[symbol], errs...)
}

// FailHistory queues errors returned by the next history calls for symbol.
func (m *MockProvider) FailHistory(symbol string, errs ...error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.historyErrs[symbol] = append(m.historyErrs[symbol], errs...)
}

// Delay makes every call for symbol block for d or until ctx is done.
func (m *MockProvider) Delay(symbol string, d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.delays[symbol] = d
}

// Calls returns how many quote and history calls symbol received.
func (m *MockProvider) Calls(symbol string) (quote, history int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.quoteCalls[symbol], m.historyCalls[symbol]
}

func (m *MockProvider) wait(ctx context.Context, symbol string) error {
	m.mu.Lock()
	d := m.delays[symbol]
	m.mu.Unlock()
	if d <= 0 {
		return nil
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}

func popErr(queue map[string][]error, symbol string) error {
	errs := queue[symbol]
	if len(errs) == 0 {
		return nil
	}
	queue[symbol] = errs[1:]
	return errs[0]
}

func (m *MockProvider) Quote(ctx context.Context, symbol string) (RawQuote, error) {
	if err := m.wait(ctx, symbol); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.quoteCalls[symbol]++
	if err := popErr(m.quoteErrs, symbol); err != nil {
		return nil, err
	}
	if q, ok := m.quotes[symbol]; ok {
		return q, nil
	}
	bars := m.barsLocked(symbol, time.Now())
	if len(bars) == 0 {
		return RawQuote{}, nil
	}
	last := bars[len(bars)-1]
	prev := last.Close
	if len(bars) > 1 {
		prev = bars[len(bars)-2].Close
	}
	return RawQuote{
		string(model.FieldLastPrice):     last.Close,
		string(model.FieldPreviousClose): prev,
		string(model.FieldDayHigh):       last.High,
		string(model.FieldDayLow):        last.Low,
		string(model.FieldYearHigh):      last.High * 1.2,
		string(model.FieldYearLow):       last.Low * 0.8,
		string(model.FieldUpperCircuit):  last.Close * 1.2,
		string(model.FieldLowerCircuit):  last.Close * 0.8,
		string(model.FieldCompanyName):   symbol + " Ltd",
	}, nil
}

func (m *MockProvider) History(ctx context.Context, symbol string, _, end time.Time) ([]model.PriceBar, error) {
	if err := m.wait(ctx, symbol); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.historyCalls[symbol]++
	if err := popErr(m.historyErrs, symbol); err != nil {
		return nil, err
	}
	return m.barsLocked(symbol, end), nil
}

func (m *MockProvider) barsLocked(symbol string, end time.Time) []model.PriceBar {
	if bars, ok := m.bars[symbol]; ok {
		return bars
	}
	h := fnv.New32a()
	h.Write([]byte(symbol))
	seed := float64(h.Sum32()%1000) / 1000
	return generateMockBars(m.BasePrice*(1+seed), m.Days, seed*math.Pi, end)
}

func generateMockBars(basePrice float64, count int, phase float64, end time.Time) []model.PriceBar {
	if count <= 0 {
		return nil
	}
	bars := make([]model.PriceBar, count)
	day := time.Date(end.Year(), end.Month(), end.Day(), 0, 0, 0, 0, time.UTC)
	for i := 0; i < count; i++ {
		p := basePrice * (1 + 0.05*math.Sin(float64(i)/6+phase) + float64(i-count/2)*0.001)
		bars[i] = model.PriceBar{
			Time:  day.AddDate(0, 0, -(count - 1 - i)),
			High:  p * 1.005,
			Low:   p * 0.995,
			Close: p,
		}
	}
	return bars
}
