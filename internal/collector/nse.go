package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"sync"
	"time"

	"Niveshak/internal/model"
)

const (
	nseBaseURL    = "https://www.nseindia.com"
	nseDateFormat = "02-01-2006"
	nseSeries     = "EQ"
	// nseWindowDays caps the span of one historical request.
	nseWindowDays = 40
)

// IST is the exchange's calendar zone.
var IST = time.FixedZone("IST", 5*3600+1800)

// NSEFetcher implements Provider using the NSE India JSON API. The API
// rejects requests without the cookies set by the home page, so the session
// is primed once and again after an auth failure.
type NSEFetcher struct {
	BaseURL string
	Client  *http.Client

	mu     sync.Mutex
	primed bool
}

// NewNSEFetcher creates a fetcher with optional proxy support.
func NewNSEFetcher(proxyURL string) *NSEFetcher {
	jar, _ := cookiejar.New(nil)
	return &NSEFetcher{
		BaseURL: nseBaseURL,
		Client:  newHTTPClient(proxyURL, jar),
	}
}

func (f *NSEFetcher) Name() string { return "nse" }

// Fields maps the quote-equity document.
func (f *NSEFetcher) Fields() FieldMapping {
	return FieldMapping{
		{model.FieldLastPrice, []string{"priceInfo", "lastPrice"}},
		{model.FieldPreviousClose, []string{"priceInfo", "previousClose"}},
		{model.FieldDayHigh, []string{"priceInfo", "intraDayHighLow", "max"}},
		{model.FieldDayLow, []string{"priceInfo", "intraDayHighLow", "min"}},
		{model.FieldYearHigh, []string{"priceInfo", "weekHighLow", "max"}},
		{model.FieldYearLow, []string{"priceInfo", "weekHighLow", "min"}},
		{model.FieldUpperCircuit, []string{"priceInfo", "upperCP"}},
		{model.FieldLowerCircuit, []string{"priceInfo", "lowerCP"}},
		{model.FieldCompanyName, []string{"info", "companyName"}},
		{model.FieldIndustry, []string{"industryInfo", "industry"}},
		{model.FieldSector, []string{"industryInfo", "sector"}},
		{model.FieldBasicIndustry, []string{"industryInfo", "basicIndustry"}},
	}
}

func (f *NSEFetcher) prime(ctx context.Context) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.primed {
		return
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.BaseURL, nil)
	if err != nil {
		return
	}
	setBrowserHeaders(req)
	resp, err := f.Client.Do(req)
	if err != nil {
		return
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	f.primed = true
}

func (f *NSEFetcher) expire() {
	f.mu.Lock()
	f.primed = false
	f.mu.Unlock()
}

func setBrowserHeaders(req *http.Request) {
	req.Header.Set("User-Agent", "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36")
	req.Header.Set("Accept", "application/json, text/plain, */*")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
}

// get issues an API call. An HTML page or an auth failure in place of JSON
// is reported as ErrDecode so the caller retries with a fresh session.
func (f *NSEFetcher) get(ctx context.Context, endpoint string, out any) error {
	f.prime(ctx)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.BaseURL+endpoint, nil)
	if err != nil {
		return err
	}
	setBrowserHeaders(req)
	req.Header.Set("Referer", f.BaseURL+"/")

	resp, err := f.Client.Do(req)
	if err != nil {
		return fmt.Errorf("nse fetch: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("nse read body: %w", err)
	}
	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		f.expire()
		return fmt.Errorf("nse: %w: status %d", ErrDecode, resp.StatusCode)
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("nse: %w", ErrNoData)
	case resp.StatusCode != http.StatusOK:
		return fmt.Errorf("nse: %w: status %d, body: %s", ErrUpstream, resp.StatusCode, truncate(body))
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("nse %s: %w: %v", endpoint, ErrDecode, err)
	}
	return nil
}

// Quote returns the quote-equity document.
func (f *NSEFetcher) Quote(ctx context.Context, symbol string) (RawQuote, error) {
	var raw RawQuote
	if err := f.get(ctx, "/api/quote-equity?symbol="+symbol, &raw); err != nil {
		return nil, err
	}
	return raw, nil
}

// nseBar is one row of the historical equity endpoint.
type nseBar struct {
	Timestamp string  `json:"CH_TIMESTAMP"`
	High      float64 `json:"CH_TRADE_HIGH_PRICE"`
	Low       float64 `json:"CH_TRADE_LOW_PRICE"`
	Close     float64 `json:"CH_CLOSING_PRICE"`
}

// History returns EQ series bars. The endpoint truncates long ranges, so the
// span is requested in windows of at most nseWindowDays IST calendar days and
// the pieces are joined in window order.
func (f *NSEFetcher) History(ctx context.Context, symbol string, start, end time.Time) ([]model.PriceBar, error) {
	var bars []model.PriceBar
	for _, w := range historyWindows(start, end) {
		part, err := f.historyWindow(ctx, symbol, w[0], w[1])
		if err != nil {
			return nil, err
		}
		bars = append(bars, part...)
	}
	return bars, nil
}

func (f *NSEFetcher) historyWindow(ctx context.Context, symbol string, from, to time.Time) ([]model.PriceBar, error) {
	endpoint := fmt.Sprintf("/api/historical/cm/equity?symbol=%s&series=[%%22%s%%22]&from=%s&to=%s",
		symbol, nseSeries, from.Format(nseDateFormat), to.Format(nseDateFormat))

	var result struct {
		Data []nseBar `json:"data"`
	}
	if err := f.get(ctx, endpoint, &result); err != nil {
		return nil, err
	}

	bars := make([]model.PriceBar, 0, len(result.Data))
	for _, row := range result.Data {
		ts, err := time.ParseInLocation("2006-01-02", row.Timestamp, IST)
		if err != nil {
			return nil, fmt.Errorf("nse history: %w: timestamp %q", ErrDecode, row.Timestamp)
		}
		bars = append(bars, model.PriceBar{Time: ts, High: row.High, Low: row.Low, Close: row.Close})
	}
	return bars, nil
}

// historyWindows splits [start, end] into consecutive, non-overlapping IST
// day ranges of at most nseWindowDays days, both bounds inclusive.
func historyWindows(start, end time.Time) [][2]time.Time {
	from, last := istDay(start), istDay(end)
	var out [][2]time.Time
	for !from.After(last) {
		to := from.AddDate(0, 0, nseWindowDays-1)
		if to.After(last) {
			to = last
		}
		out = append(out, [2]time.Time{from, to})
		from = to.AddDate(0, 0, 1)
	}
	return out
}

func istDay(t time.Time) time.Time {
	y, m, d := t.In(IST).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, IST)
}
