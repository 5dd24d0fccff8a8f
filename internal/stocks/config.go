package stocks

import (
	"time"

	"stock-dashboard/internal/cache"
)

// Config carries the tunables for a Service. Zero values fall back to the
// defaults below, so callers only set what they want to change.
type Config struct {
	QuoteTTL        time.Duration // quote cache entry lifetime
	ChartTTL        time.Duration // chart cache entry lifetime
	SearchTTL       time.Duration // search-result cache entry lifetime
	SearchCacheSize int           // max memoized search terms
	DebounceDelay   time.Duration // quiet period before a search fires

	// Preload sweep order: the priority periods are fetched first so the
	// most commonly viewed ranges warm up before the rest.
	PriorityPeriods  []string
	SecondaryPeriods []string

	DefaultPeriod string // chart period used when the caller passes ""

	Clock cache.Clock // nil means time.Now
}

// DefaultConfig returns the standard tuning.
func DefaultConfig() Config {
	return Config{
		QuoteTTL:         5 * time.Minute,
		ChartTTL:         10 * time.Minute,
		SearchTTL:        30 * time.Minute,
		SearchCacheSize:  100,
		DebounceDelay:    300 * time.Millisecond,
		PriorityPeriods:  []string{"1M", "6M", "1Y"},
		SecondaryPeriods: []string{"5D", "5Y", "Max"},
		DefaultPeriod:    "1M",
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.QuoteTTL <= 0 {
		c.QuoteTTL = d.QuoteTTL
	}
	if c.ChartTTL <= 0 {
		c.ChartTTL = d.ChartTTL
	}
	if c.SearchTTL <= 0 {
		c.SearchTTL = d.SearchTTL
	}
	if c.SearchCacheSize <= 0 {
		c.SearchCacheSize = d.SearchCacheSize
	}
	if c.DebounceDelay <= 0 {
		c.DebounceDelay = d.DebounceDelay
	}
	if len(c.PriorityPeriods) == 0 {
		c.PriorityPeriods = d.PriorityPeriods
	}
	if len(c.SecondaryPeriods) == 0 {
		c.SecondaryPeriods = d.SecondaryPeriods
	}
	if c.DefaultPeriod == "" {
		c.DefaultPeriod = d.DefaultPeriod
	}
	return c
}

// nativePeriods maps the dashboard's period tokens to Yahoo's range
// vocabulary. Unknown tokens fall back to one month.
var nativePeriods = map[string]string{
	"5D":  "5d",
	"1M":  "1mo",
	"6M":  "6mo",
	"1Y":  "1y",
	"5Y":  "5y",
	"Max": "max",
}

func nativePeriod(period string) string {
	if native, ok := nativePeriods[period]; ok {
		return native
	}
	return "1mo"
}

// DefaultUniverse returns the curated popular-tickers list, in display
// order. Pass it to search.NewIndex when no custom universe is configured.
func DefaultUniverse() []string {
	return []string{
		"AAPL", "GOOGL", "GOOG", "AMZN", "MSFT", "NVDA", "META", "NFLX", "ADBE", "CRM",
		"ORCL", "IBM", "INTC", "AMD", "QCOM", "AVGO", "CSCO", "PYPL", "SQ", "UBER",
		"LYFT", "SNAP", "TWTR", "ZOOM", "TSLA", "F", "GM", "NIO",
	}
}
