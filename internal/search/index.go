// Package search ranks ticker suggestions over a fixed symbol universe.
package search

import (
	"sort"
	"strings"
)

const maxSuggestions = 10

// Index is an immutable suggestion index over a ticker universe.
// It keeps the curated ordering for empty-term defaults and a sorted
// copy for the ranked matching passes. Build one at startup and share it;
// all methods are safe for concurrent use.
type Index struct {
	popular []string // curated order, for empty-term suggestions
	sorted  []string // alphabetical, for deterministic ranked scans
}

// NewIndex builds an Index from the given universe. Symbols are trimmed,
// uppercased and de-duplicated; the first occurrence wins the popular slot.
func NewIndex(universe []string) *Index {
	popular := make([]string, 0, len(universe))
	seen := make(map[string]struct{}, len(universe))
	for _, sym := range universe {
		sym = strings.ToUpper(strings.TrimSpace(sym))
		if sym == "" {
			continue
		}
		if _, dup := seen[sym]; dup {
			continue
		}
		seen[sym] = struct{}{}
		popular = append(popular, sym)
	}

	sorted := make([]string, len(popular))
	copy(sorted, popular)
	sort.Strings(sorted)

	return &Index{popular: popular, sorted: sorted}
}

// Suggest returns up to 10 symbols matching term, ranked exact match first,
// then prefix matches, then substring matches, each pass scanning the
// universe in sorted order. An empty term returns the top of the curated
// popular list.
func (ix *Index) Suggest(term string) []string {
	term = Normalize(term)
	if term == "" {
		n := min(maxSuggestions, len(ix.popular))
		out := make([]string, n)
		copy(out, ix.popular[:n])
		return out
	}

	suggestions := make([]string, 0, maxSuggestions)
	added := make(map[string]struct{}, maxSuggestions)

	// Exact match is the most relevant.
	i := sort.SearchStrings(ix.sorted, term)
	if i < len(ix.sorted) && ix.sorted[i] == term {
		suggestions = append(suggestions, term)
		added[term] = struct{}{}
	}

	for _, sym := range ix.sorted {
		if len(suggestions) >= maxSuggestions {
			break
		}
		if _, dup := added[sym]; dup {
			continue
		}
		if strings.HasPrefix(sym, term) {
			suggestions = append(suggestions, sym)
			added[sym] = struct{}{}
		}
	}

	for _, sym := range ix.sorted {
		if len(suggestions) >= maxSuggestions {
			break
		}
		if _, dup := added[sym]; dup {
			continue
		}
		if strings.Contains(sym, term) {
			suggestions = append(suggestions, sym)
			added[sym] = struct{}{}
		}
	}

	return suggestions
}

// Size returns the number of symbols in the universe.
func (ix *Index) Size() int { return len(ix.popular) }

// Normalize canonicalizes a search term: trimmed and uppercased.
func Normalize(term string) string {
	return strings.ToUpper(strings.TrimSpace(term))
}
