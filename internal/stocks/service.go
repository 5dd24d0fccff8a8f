// Package stocks is the data-access core of the dashboard: a caching,
// debouncing, preloading layer between the UI and the market-data provider.
package stocks

import (
	"context"
	"log"
	"sort"
	"strings"
	"sync"

	"golang.org/x/sync/singleflight"

	"stock-dashboard/internal/cache"
	"stock-dashboard/internal/debounce"
	"stock-dashboard/internal/marketdata"
	"stock-dashboard/internal/search"
)

// ChartKey identifies one cached historical series.
type ChartKey struct {
	Symbol string
	Period string
}

// Service implements the dashboard's data-access logic. All methods are
// safe for concurrent use; each cache tier is independently locked and
// entries are replaced as whole records, so no cross-store coordination
// is needed.
type Service struct {
	provider marketdata.Provider
	index    *search.Index
	cfg      Config

	quotes   *cache.Store[string, marketdata.Quote]
	charts   *cache.Store[ChartKey, []marketdata.Bar]
	searches *cache.Bounded[string, []string]

	debouncer  *debounce.Debouncer[[]string]
	fetchGroup singleflight.Group

	preloadMu  sync.Mutex
	preloading map[string]*PreloadHandle
}

// New creates a Service on top of the given provider and suggestion index.
func New(provider marketdata.Provider, index *search.Index, cfg Config) *Service {
	cfg = cfg.withDefaults()
	return &Service{
		provider:   provider,
		index:      index,
		cfg:        cfg,
		quotes:     cache.NewStore[string, marketdata.Quote](cfg.QuoteTTL, cfg.Clock),
		charts:     cache.NewStore[ChartKey, []marketdata.Bar](cfg.ChartTTL, cfg.Clock),
		searches:   cache.NewBounded[string, []string](cfg.SearchTTL, cfg.SearchCacheSize, cfg.Clock),
		debouncer:  debounce.New[[]string](cfg.DebounceDelay),
		preloading: make(map[string]*PreloadHandle),
	}
}

// GetQuotes returns quotes for the given symbols, served from cache where
// fresh and batch-fetched otherwise. Symbols the provider cannot supply are
// dropped from the result. The result is sorted descending by change
// percent; the top-gainers view relies on that ordering.
func (s *Service) GetQuotes(ctx context.Context, symbols []string) []marketdata.Quote {
	if len(symbols) == 0 {
		return nil
	}

	found := make(map[string]marketdata.Quote, len(symbols))
	seen := make(map[string]struct{}, len(symbols))
	var missing []string
	for _, sym := range symbols {
		sym = strings.ToUpper(strings.TrimSpace(sym))
		if sym == "" {
			continue
		}
		if _, dup := seen[sym]; dup {
			continue
		}
		seen[sym] = struct{}{}
		if q, ok := s.quotes.Get(sym); ok {
			found[sym] = q
		} else {
			missing = append(missing, sym)
		}
	}

	if len(missing) > 0 {
		fetched, err := s.provider.FetchQuotes(ctx, missing)
		if err != nil {
			// Serve what the cache had; the caller can still render.
			log.Printf("getQuotes: fetch %v: %v", missing, err)
		}
		for sym, q := range fetched {
			s.quotes.Put(sym, q)
			found[sym] = q
		}
	}

	result := make([]marketdata.Quote, 0, len(found))
	for _, q := range found {
		result = append(result, q)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].ChangePercent > result[j].ChangePercent
	})
	return result
}
