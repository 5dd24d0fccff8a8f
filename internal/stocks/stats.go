package stocks

import "sort"

// Stats is a read-only snapshot of cache health for diagnostics.
// ChartCacheHitRate is structural — the fraction of resident chart entries
// still valid — not a running request-level hit/miss counter.
type Stats struct {
	QuoteCacheSize      int
	ChartCacheSize      int
	SearchCacheSize     int
	ChartCacheHitRate   float64
	ActiveDebounceTasks int
	CachedSymbols       []string
	CachedPeriods       []string
}

// Stats reports current cache sizes, chart cache hit rate, pending debounce
// tasks, and the distinct symbols and periods resident in the chart cache.
func (s *Service) Stats() Stats {
	chartKeys := s.charts.Keys()

	symbolSet := make(map[string]struct{})
	periodSet := make(map[string]struct{})
	for _, k := range chartKeys {
		symbolSet[k.Symbol] = struct{}{}
		periodSet[k.Period] = struct{}{}
	}

	hitRate := 0.0
	if total := len(chartKeys); total > 0 {
		hitRate = float64(s.charts.ValidLen()) / float64(total)
	}

	return Stats{
		QuoteCacheSize:      s.quotes.Len(),
		ChartCacheSize:      len(chartKeys),
		SearchCacheSize:     s.searches.Len(),
		ChartCacheHitRate:   hitRate,
		ActiveDebounceTasks: s.debouncer.ActiveCount(),
		CachedSymbols:       sortedKeys(symbolSet),
		CachedPeriods:       sortedKeys(periodSet),
	}
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
