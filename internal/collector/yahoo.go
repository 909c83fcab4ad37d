package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strings"
	"time"

	"Niveshak/internal/model"
)

const yahooBaseURL = "https://query1.finance.yahoo.com"

// YahooFetcher implements Provider using the Yahoo Finance chart API.
type YahooFetcher struct {
	BaseURL   string
	Suffix    string            // exchange suffix appended to plain tickers, e.g. ".NS"
	SymbolMap map[string]string // maps internal symbol to Yahoo ticker
	Client    *http.Client
}

// NewYahooFetcher creates a new Yahoo Finance fetcher.
func NewYahooFetcher(suffix, proxyURL string) *YahooFetcher {
	return &YahooFetcher{
		BaseURL: yahooBaseURL,
		Suffix:  suffix,
		SymbolMap: map[string]string{
			"NIFTY":     "^NSEI",
			"NIFTY50":   "^NSEI",
			"BANKNIFTY": "^NSEBANK",
			"SENSEX":    "^BSESN",
		},
		Client: newHTTPClient(proxyURL, nil),
	}
}

func (f *YahooFetcher) Name() string { return "yahoo" }

// Fields maps the chart meta block. Yahoo has no circuit limits or industry data.
func (f *YahooFetcher) Fields() FieldMapping {
	meta := func(key string) []string { return []string{"chart", "result", "0", "meta", key} }
	return FieldMapping{
		{model.FieldLastPrice, meta("regularMarketPrice")},
		{model.FieldPreviousClose, meta("chartPreviousClose")},
		{model.FieldDayHigh, meta("regularMarketDayHigh")},
		{model.FieldDayLow, meta("regularMarketDayLow")},
		{model.FieldYearHigh, meta("fiftyTwoWeekHigh")},
		{model.FieldYearLow, meta("fiftyTwoWeekLow")},
		{model.FieldUpperCircuit, nil},
		{model.FieldLowerCircuit, nil},
		{model.FieldCompanyName, meta("longName")},
		{model.FieldIndustry, nil},
		{model.FieldSector, nil},
		{model.FieldBasicIndustry, nil},
	}
}

// yahooSymbol resolves aliases and appends the exchange suffix. The symbol
// arrives already escaped.
func (f *YahooFetcher) yahooSymbol(symbol string) string {
	if mapped, ok := f.SymbolMap[symbol]; ok {
		return url.PathEscape(mapped)
	}
	if f.Suffix != "" && !strings.Contains(symbol, ".") && !strings.HasPrefix(symbol, "%5E") {
		return symbol + f.Suffix
	}
	return symbol
}

// yahooChart is the response structure from Yahoo Finance chart API.
type yahooChart struct {
	Chart struct {
		Result []struct {
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					High  []interface{} `json:"high"`
					Low   []interface{} `json:"low"`
					Close []interface{} `json:"close"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// toFloat reports false for null and non-numeric entries.
func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, !math.IsNaN(n) && !math.IsInf(n, 0)
	case int:
		return float64(n), true
	default:
		return 0, false
	}
}

func (f *YahooFetcher) get(ctx context.Context, symbol string, query url.Values) ([]byte, error) {
	u := fmt.Sprintf("%s/v8/finance/chart/%s?%s", f.BaseURL, f.yahooSymbol(symbol), query.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("yahoo fetch: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("yahoo read body: %w", err)
	}
	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("yahoo %s: %w", symbol, ErrNoData)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("yahoo: %w: status %d, body: %s", ErrUpstream, resp.StatusCode, truncate(body))
	}
	return body, nil
}

// Quote returns the chart document for the last trading day.
func (f *YahooFetcher) Quote(ctx context.Context, symbol string) (RawQuote, error) {
	body, err := f.get(ctx, symbol, url.Values{"interval": {"1d"}, "range": {"1d"}})
	if err != nil {
		return nil, err
	}
	var raw RawQuote
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("yahoo quote: %w: %v", ErrDecode, err)
	}
	return raw, nil
}

// History returns daily bars between start and end, as Unix-second bounds.
func (f *YahooFetcher) History(ctx context.Context, symbol string, start, end time.Time) ([]model.PriceBar, error) {
	body, err := f.get(ctx, symbol, url.Values{
		"interval": {"1d"},
		"period1":  {fmt.Sprint(start.Unix())},
		"period2":  {fmt.Sprint(end.Unix())},
	})
	if err != nil {
		return nil, err
	}

	var chart yahooChart
	if err := json.Unmarshal(body, &chart); err != nil {
		return nil, fmt.Errorf("yahoo history: %w: %v", ErrDecode, err)
	}
	if chart.Chart.Error != nil {
		return nil, fmt.Errorf("yahoo api error: %w: %s", ErrUpstream, chart.Chart.Error.Description)
	}
	if len(chart.Chart.Result) == 0 || len(chart.Chart.Result[0].Indicators.Quote) == 0 {
		return nil, nil
	}

	result := chart.Chart.Result[0]
	quote := result.Indicators.Quote[0]
	if len(quote.Close) < len(result.Timestamp) || len(quote.High) < len(result.Timestamp) || len(quote.Low) < len(result.Timestamp) {
		return nil, fmt.Errorf("yahoo history: %w: ragged quote arrays", ErrDecode)
	}

	bars := make([]model.PriceBar, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		h, okH := toFloat(quote.High[i])
		l, okL := toFloat(quote.Low[i])
		c, okC := toFloat(quote.Close[i])
		if !okH || !okL || !okC {
			continue // holidays and half-filled bars
		}
		bars = append(bars, model.PriceBar{Time: time.Unix(ts, 0).UTC(), High: h, Low: l, Close: c})
	}
	return bars, nil
}
