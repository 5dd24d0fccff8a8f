package marketdata

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const (
	quoteURL   = "https://query1.finance.yahoo.com/v7/finance/quote"
	chartURL   = "https://query1.finance.yahoo.com/v8/finance/chart"
	consentURL = "https://fc.yahoo.com/"
	crumbURL   = "https://query2.finance.yahoo.com/v1/test/getcrumb"

	sessionTTL = 30 * time.Minute
)

// yahooSession holds the cookie and crumb required by Yahoo Finance API.
type yahooSession struct {
	cookie    string
	crumb     string
	expiresAt time.Time
}

// YahooClient fetches quotes and history from Yahoo Finance with
// session-based auth. Outbound requests are paced by a rate limiter so
// bursts from cache misses and preloads cannot flood the provider.
type YahooClient struct {
	client  *http.Client
	limiter *rate.Limiter

	sessionMu sync.Mutex
	session   *yahooSession
}

// NewYahooClient creates a YahooClient.
func NewYahooClient() *YahooClient {
	return &YahooClient{
		client:  &http.Client{Timeout: 10 * time.Second},
		limiter: rate.NewLimiter(rate.Every(200*time.Millisecond), 5),
	}
}

// --- session management ---

func (yc *YahooClient) getSession(ctx context.Context) (*yahooSession, error) {
	yc.sessionMu.Lock()
	defer yc.sessionMu.Unlock()

	if yc.session != nil && time.Now().Before(yc.session.expiresAt) {
		return yc.session, nil
	}

	sess, err := yc.fetchNewSession(ctx)
	if err != nil {
		return nil, err
	}
	yc.session = sess
	return sess, nil
}

func (yc *YahooClient) invalidateSession() {
	yc.sessionMu.Lock()
	yc.session = nil
	yc.sessionMu.Unlock()
}

func (yc *YahooClient) fetchNewSession(ctx context.Context) (*yahooSession, error) {
	// Step 1: hit fc.yahoo.com to get a consent cookie.
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, consentURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build consent request: %w", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")

	// We need the raw Set-Cookie headers; don't follow redirects automatically.
	noRedirectClient := &http.Client{
		Timeout: 10 * time.Second,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
	consentResp, err := noRedirectClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("consent request: %w", err)
	}
	defer consentResp.Body.Close()
	_, _ = io.ReadAll(consentResp.Body) // drain

	cookie := extractCookies(consentResp)
	if cookie == "" {
		return nil, fmt.Errorf("no cookie returned from Yahoo consent endpoint")
	}

	// Step 2: exchange the cookie for a crumb.
	crumbReq, err := http.NewRequestWithContext(ctx, http.MethodGet, crumbURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build crumb request: %w", err)
	}
	crumbReq.Header.Set("Cookie", cookie)
	crumbReq.Header.Set("User-Agent", "Mozilla/5.0")

	crumbResp, err := yc.client.Do(crumbReq)
	if err != nil {
		return nil, fmt.Errorf("crumb request: %w", err)
	}
	defer crumbResp.Body.Close()

	crumbBytes, err := io.ReadAll(crumbResp.Body)
	if err != nil {
		return nil, fmt.Errorf("read crumb response: %w", err)
	}

	crumb := strings.TrimSpace(string(crumbBytes))
	if crumb == "" || crumb == "null" {
		return nil, fmt.Errorf("Yahoo returned invalid crumb: %q", crumb)
	}

	return &yahooSession{
		cookie:    cookie,
		crumb:     crumb,
		expiresAt: time.Now().Add(sessionTTL),
	}, nil
}

// extractCookies collects all Set-Cookie name=value pairs into a single Cookie header string.
func extractCookies(resp *http.Response) string {
	var parts []string
	for _, c := range resp.Cookies() {
		parts = append(parts, c.Name+"="+c.Value)
	}
	return strings.Join(parts, "; ")
}

// --- Provider implementation ---

// FetchQuotes fetches quotes for the given symbols in a single batch request.
// Symbols the provider cannot price are logged and omitted from the result.
// It retries once with a fresh session on 401/403.
func (yc *YahooClient) FetchQuotes(ctx context.Context, symbols []string) (map[string]Quote, error) {
	if len(symbols) == 0 {
		return map[string]Quote{}, nil
	}

	sess, err := yc.getSession(ctx)
	if err != nil {
		return nil, fmt.Errorf("get yahoo session: %w", err)
	}

	body, err := yc.getQuoteBatch(ctx, symbols, sess)
	if err != nil {
		if isAuthError(err) {
			yc.invalidateSession()
			sess, err = yc.getSession(ctx)
			if err != nil {
				return nil, fmt.Errorf("refresh yahoo session: %w", err)
			}
			body, err = yc.getQuoteBatch(ctx, symbols, sess)
		}
		if err != nil {
			return nil, fmt.Errorf("fetch quotes: %w", err)
		}
	}

	return parseQuoteResponse(body, symbols)
}

func (yc *YahooClient) getQuoteBatch(ctx context.Context, symbols []string, sess *yahooSession) ([]byte, error) {
	params := url.Values{}
	params.Set("symbols", strings.Join(symbols, ","))
	params.Set("crumb", sess.crumb)

	return yc.get(ctx, quoteURL+"?"+params.Encode(), sess.cookie)
}

// FetchHistory fetches daily bars for one symbol over a native Yahoo range
// token ("5d", "1mo", "6mo", "1y", "5y", "max"). An unknown symbol or a
// period with no data yields an empty slice, not an error.
func (yc *YahooClient) FetchHistory(ctx context.Context, symbol, nativePeriod string) ([]Bar, error) {
	u := fmt.Sprintf("%s/%s?range=%s&interval=1d",
		chartURL, url.PathEscape(symbol), url.QueryEscape(nativePeriod))

	body, err := yc.get(ctx, u, "")
	if err != nil {
		return nil, fmt.Errorf("fetch history %s %s: %w", symbol, nativePeriod, err)
	}

	return parseChartResponse(body, symbol)
}

func (yc *YahooClient) get(ctx context.Context, u, cookie string) ([]byte, error) {
	if err := yc.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	if cookie != "" {
		req.Header.Set("Cookie", cookie)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := yc.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return nil, fmt.Errorf("auth error: HTTP %d", resp.StatusCode)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	return body, nil
}

func parseQuoteResponse(body []byte, requested []string) (map[string]Quote, error) {
	var payload struct {
		QuoteResponse struct {
			Result []struct {
				Symbol                     string  `json:"symbol"`
				ShortName                  string  `json:"shortName"`
				LongName                   string  `json:"longName"`
				RegularMarketPrice         float64 `json:"regularMarketPrice"`
				RegularMarketChangePercent float64 `json:"regularMarketChangePercent"`
				RegularMarketVolume        float64 `json:"regularMarketVolume"`
				MarketCap                  float64 `json:"marketCap"`
				TrailingPE                 float64 `json:"trailingPE"`
				RegularMarketDayHigh       float64 `json:"regularMarketDayHigh"`
				RegularMarketDayLow        float64 `json:"regularMarketDayLow"`
				FiftyTwoWeekHigh           float64 `json:"fiftyTwoWeekHigh"`
				FiftyTwoWeekLow            float64 `json:"fiftyTwoWeekLow"`
			} `json:"result"`
			Error *struct {
				Description string `json:"description"`
			} `json:"error"`
		} `json:"quoteResponse"`
	}

	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("parse quote response: %w", err)
	}
	if payload.QuoteResponse.Error != nil {
		return nil, fmt.Errorf("yahoo error: %s", payload.QuoteResponse.Error.Description)
	}

	quotes := make(map[string]Quote, len(payload.QuoteResponse.Result))
	for _, r := range payload.QuoteResponse.Result {
		if r.RegularMarketPrice == 0 {
			log.Printf("fetchQuotes: no price data for %s, skipping", r.Symbol)
			continue
		}
		name := r.ShortName
		if name == "" {
			name = r.LongName
		}
		if name == "" {
			name = r.Symbol
		}
		quotes[r.Symbol] = Quote{
			Symbol:           r.Symbol,
			Name:             name,
			Price:            r.RegularMarketPrice,
			ChangePercent:    r.RegularMarketChangePercent,
			Volume:           r.RegularMarketVolume,
			MarketCap:        r.MarketCap,
			PERatio:          r.TrailingPE,
			DayHigh:          r.RegularMarketDayHigh,
			DayLow:           r.RegularMarketDayLow,
			FiftyTwoWeekHigh: r.FiftyTwoWeekHigh,
			FiftyTwoWeekLow:  r.FiftyTwoWeekLow,
		}
	}

	for _, sym := range requested {
		if _, ok := quotes[sym]; !ok {
			log.Printf("fetchQuotes: no result for %s", sym)
		}
	}
	return quotes, nil
}

func parseChartResponse(body []byte, symbol string) ([]Bar, error) {
	var payload struct {
		Chart struct {
			Result []struct {
				Timestamp  []int64 `json:"timestamp"`
				Indicators struct {
					Quote []struct {
						Open   []float64 `json:"open"`
						High   []float64 `json:"high"`
						Low    []float64 `json:"low"`
						Close  []float64 `json:"close"`
						Volume []float64 `json:"volume"`
					} `json:"quote"`
				} `json:"indicators"`
			} `json:"result"`
			Error *struct {
				Code        string `json:"code"`
				Description string `json:"description"`
			} `json:"error"`
		} `json:"chart"`
	}

	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("parse chart response: %w", err)
	}

	if payload.Chart.Error != nil {
		// "Not Found" means the symbol has no data, which is a valid
		// empty result rather than a fetch failure.
		if payload.Chart.Error.Code == "Not Found" {
			return []Bar{}, nil
		}
		return nil, fmt.Errorf("yahoo error: %s", payload.Chart.Error.Description)
	}
	if len(payload.Chart.Result) == 0 {
		return []Bar{}, nil
	}

	result := payload.Chart.Result[0]
	if len(result.Indicators.Quote) == 0 {
		return []Bar{}, nil
	}
	q := result.Indicators.Quote[0]

	bars := make([]Bar, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		if i >= len(q.Close) || q.Close[i] == 0 {
			continue // market holiday or null data point
		}
		bar := Bar{
			Date:  time.Unix(ts, 0).UTC().Format("2006-01-02"),
			Close: q.Close[i],
		}
		if i < len(q.Open) {
			bar.Open = q.Open[i]
		}
		if i < len(q.High) {
			bar.High = q.High[i]
		}
		if i < len(q.Low) {
			bar.Low = q.Low[i]
		}
		if i < len(q.Volume) {
			bar.Volume = q.Volume[i]
		}
		bars = append(bars, bar)
	}
	return bars, nil
}

func isAuthError(err error) bool {
	if err == nil {
		return false
	}
	s := err.Error()
	return strings.Contains(s, "auth error") ||
		strings.Contains(s, "HTTP 401") ||
		strings.Contains(s, "HTTP 403")
}
