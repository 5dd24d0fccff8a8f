package marketdata

import "context"

// Quote holds the latest market snapshot for a symbol.
// It is produced as a whole record and never partially updated.
type Quote struct {
	Symbol           string
	Name             string
	Price            float64
	ChangePercent    float64
	Volume           float64
	MarketCap        float64
	PERatio          float64
	DayHigh          float64
	DayLow           float64
	FiftyTwoWeekHigh float64
	FiftyTwoWeekLow  float64
}

// Bar is one day of OHLCV history. Date is formatted YYYY-MM-DD.
type Bar struct {
	Date   string
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}

// Provider supplies current quotes and historical price series.
//
// FetchQuotes issues one batched request; symbols that fail individually
// are simply absent from the returned map and must not fail the batch.
// FetchHistory returns bars ordered ascending by date, or an empty slice
// when the symbol has no data for the period.
type Provider interface {
	FetchQuotes(ctx context.Context, symbols []string) (map[string]Quote, error)
	FetchHistory(ctx context.Context, symbol, nativePeriod string) ([]Bar, error)
}
