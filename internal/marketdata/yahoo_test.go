package marketdata

import (
	"fmt"
	"testing"
)

func TestParseQuoteResponse(t *testing.T) {
	body := []byte(`{
		"quoteResponse": {
			"result": [
				{
					"symbol": "AAPL",
					"shortName": "Apple Inc.",
					"regularMarketPrice": 189.5,
					"regularMarketChangePercent": 1.25,
					"regularMarketVolume": 52000000,
					"marketCap": 2950000000000,
					"trailingPE": 31.2,
					"regularMarketDayHigh": 190.1,
					"regularMarketDayLow": 187.4,
					"fiftyTwoWeekHigh": 199.6,
					"fiftyTwoWeekLow": 143.9
				},
				{
					"symbol": "DEAD",
					"shortName": "Delisted Corp",
					"regularMarketPrice": 0
				}
			],
			"error": null
		}
	}`)

	quotes, err := parseQuoteResponse(body, []string{"AAPL", "DEAD"})
	if err != nil {
		t.Fatalf("parseQuoteResponse() error = %v", err)
	}

	if len(quotes) != 1 {
		t.Fatalf("parsed %d quotes, want 1 (zero-price symbol skipped)", len(quotes))
	}
	q, ok := quotes["AAPL"]
	if !ok {
		t.Fatalf("AAPL missing from parsed quotes")
	}
	if q.Name != "Apple Inc." || q.Price != 189.5 || q.ChangePercent != 1.25 {
		t.Fatalf("parsed quote = %+v", q)
	}
	if q.MarketCap != 2950000000000 || q.PERatio != 31.2 {
		t.Fatalf("parsed fundamentals = %+v", q)
	}
}

func TestParseQuoteResponseFallsBackToLongName(t *testing.T) {
	body := []byte(`{
		"quoteResponse": {
			"result": [
				{"symbol": "MSFT", "longName": "Microsoft Corporation", "regularMarketPrice": 420}
			]
		}
	}`)

	quotes, err := parseQuoteResponse(body, []string{"MSFT"})
	if err != nil {
		t.Fatalf("parseQuoteResponse() error = %v", err)
	}
	if quotes["MSFT"].Name != "Microsoft Corporation" {
		t.Fatalf("Name = %q, want long name fallback", quotes["MSFT"].Name)
	}
}

func TestParseQuoteResponseYahooError(t *testing.T) {
	body := []byte(`{
		"quoteResponse": {
			"result": [],
			"error": {"description": "Invalid Crumb"}
		}
	}`)

	if _, err := parseQuoteResponse(body, nil); err == nil {
		t.Fatalf("parseQuoteResponse() should surface the yahoo error")
	}
}

func TestParseChartResponse(t *testing.T) {
	body := []byte(`{
		"chart": {
			"result": [
				{
					"timestamp": [1717200000, 1717286400, 1717372800],
					"indicators": {
						"quote": [
							{
								"open":   [100, 0, 104],
								"high":   [102, 0, 106],
								"low":    [99, 0, 103],
								"close":  [101, 0, 105],
								"volume": [1000, 0, 1200]
							}
						]
					}
				}
			],
			"error": null
		}
	}`)

	bars, err := parseChartResponse(body, "AAPL")
	if err != nil {
		t.Fatalf("parseChartResponse() error = %v", err)
	}

	if len(bars) != 2 {
		t.Fatalf("parsed %d bars, want 2 (null close skipped)", len(bars))
	}
	if bars[0].Date != "2024-06-01" || bars[0].Close != 101 {
		t.Fatalf("first bar = %+v, want 2024-06-01 close 101", bars[0])
	}
	if bars[1].Date != "2024-06-03" || bars[1].Volume != 1200 {
		t.Fatalf("second bar = %+v, want 2024-06-03 volume 1200", bars[1])
	}
}

func TestParseChartResponseNotFoundIsEmpty(t *testing.T) {
	body := []byte(`{
		"chart": {
			"result": null,
			"error": {"code": "Not Found", "description": "No data found, symbol may be delisted"}
		}
	}`)

	bars, err := parseChartResponse(body, "BOGUS123")
	if err != nil {
		t.Fatalf("parseChartResponse() error = %v, want empty result", err)
	}
	if len(bars) != 0 {
		t.Fatalf("parsed %d bars, want 0", len(bars))
	}
}

func TestParseChartResponseNoResult(t *testing.T) {
	body := []byte(`{"chart": {"result": [], "error": null}}`)

	bars, err := parseChartResponse(body, "XYZ")
	if err != nil {
		t.Fatalf("parseChartResponse() error = %v", err)
	}
	if len(bars) != 0 {
		t.Fatalf("parsed %d bars, want 0", len(bars))
	}
}

func TestIsAuthError(t *testing.T) {
	if !isAuthError(fmt.Errorf("auth error: HTTP 401")) {
		t.Fatalf("auth error string should be recognized")
	}
	if isAuthError(fmt.Errorf("HTTP 500")) {
		t.Fatalf("HTTP 500 is not an auth error")
	}
	if isAuthError(nil) {
		t.Fatalf("nil is not an auth error")
	}
}
