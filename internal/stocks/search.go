package stocks

import "stock-dashboard/internal/search"

// Suggest returns ranked ticker suggestions for term immediately, serving
// from the search-result cache when warm. The cache is the single source
// of truth for suggestion results; the debounced path resolves through the
// same lookup, so the two paths always agree within a TTL window.
func (s *Service) Suggest(term string) []string {
	return s.lookupSuggestions(term)
}

// DebouncedSuggest schedules a suggestion lookup for term after the
// configured debounce delay. Rapid repeats for the same normalized term
// supersede earlier calls: a superseded caller's channel closes without a
// value, which reads as an empty result.
func (s *Service) DebouncedSuggest(term string) <-chan []string {
	key := search.Normalize(term)
	return s.debouncer.Schedule(key, func() []string {
		return s.lookupSuggestions(term)
	})
}

func (s *Service) lookupSuggestions(term string) []string {
	key := search.Normalize(term)
	if key == "" {
		// The popular-ticker default needs no memoization.
		return s.index.Suggest("")
	}

	if results, ok := s.searches.Get(key); ok {
		return results
	}
	results := s.index.Suggest(key)
	s.searches.Put(key, results)
	return results
}
