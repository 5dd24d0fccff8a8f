package stocks

import (
	"context"
	"log"
	"strings"
)

// PreloadHandle tracks one background preload sweep.
type PreloadHandle struct {
	done chan struct{}
}

// Done returns a channel that closes when the sweep has finished.
func (h *PreloadHandle) Done() <-chan struct{} { return h.done }

// Preload warms the chart cache for symbol in the background so subsequent
// period switches are served instantly: priority periods first, then the
// secondary ones, skipping any period already fresh in the cache. Per-period
// fetch failures are logged and the sweep continues. Preloading a symbol
// whose sweep is already running returns the running sweep's handle instead
// of starting another.
func (s *Service) Preload(symbol string) *PreloadHandle {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))

	s.preloadMu.Lock()
	if h, running := s.preloading[symbol]; running {
		s.preloadMu.Unlock()
		return h
	}
	h := &PreloadHandle{done: make(chan struct{})}
	s.preloading[symbol] = h
	s.preloadMu.Unlock()

	go func() {
		defer func() {
			s.preloadMu.Lock()
			delete(s.preloading, symbol)
			s.preloadMu.Unlock()
			close(h.done)
		}()

		// Fire-and-forget: not tied to any request's lifetime.
		ctx := context.Background()

		periods := make([]string, 0, len(s.cfg.PriorityPeriods)+len(s.cfg.SecondaryPeriods))
		periods = append(periods, s.cfg.PriorityPeriods...)
		periods = append(periods, s.cfg.SecondaryPeriods...)

		for _, period := range periods {
			if s.charts.IsValid(ChartKey{Symbol: symbol, Period: period}) {
				continue
			}
			if _, err := s.chartBars(ctx, symbol, period); err != nil {
				log.Printf("preload: %s %s: %v", symbol, period, err)
			}
		}
	}()

	return h
}
