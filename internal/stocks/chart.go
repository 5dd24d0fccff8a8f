package stocks

import (
	"context"
	"fmt"
	"log"
	"strings"

	"stock-dashboard/internal/marketdata"
)

// ChartPoint is one (date, close) sample of a rendered series.
type ChartPoint struct {
	Date  string
	Close float64
}

// ChartSeries is an immutable price series ordered ascending by date.
type ChartSeries []ChartPoint

// Summary is the trend analysis derived from a historical series.
type Summary struct {
	TrendChangePercent float64
	VolumeTrendPercent float64
	PeriodHigh         float64
	PeriodLow          float64
	AvgVolume          float64
	CurrentPrice       float64
	StartPrice         float64
}

// GetChart returns the (date, close) series for symbol over a dashboard
// period token ("5D", "1M", "6M", "1Y", "5Y", "Max"). Served from cache
// when fresh. A symbol with no data yields an empty series, which is also
// cached so repeated views don't hammer the provider; a fetch failure
// yields an empty series that is not cached.
func (s *Service) GetChart(ctx context.Context, symbol, period string) ChartSeries {
	symbol, period = s.normalizeChartArgs(symbol, period)

	bars, err := s.chartBars(ctx, symbol, period)
	if err != nil {
		log.Printf("getChart: %s %s: %v", symbol, period, err)
		return ChartSeries{}
	}

	series := make(ChartSeries, len(bars))
	for i, b := range bars {
		series[i] = ChartPoint{Date: b.Date, Close: b.Close}
	}
	return series
}

// GetHistoricalSummary computes trend indicators for symbol over period
// from the same cached-or-fetched series GetChart uses. It reports false
// when the series is empty, the fetch fails, or a zero baseline would make
// the percentages meaningless.
func (s *Service) GetHistoricalSummary(ctx context.Context, symbol, period string) (Summary, bool) {
	symbol, period = s.normalizeChartArgs(symbol, period)

	bars, err := s.chartBars(ctx, symbol, period)
	if err != nil {
		log.Printf("getHistoricalSummary: %s %s: %v", symbol, period, err)
		return Summary{}, false
	}
	if len(bars) == 0 {
		return Summary{}, false
	}

	first, last := bars[0], bars[len(bars)-1]

	var volumeSum float64
	high, low := first.High, first.Low
	for _, b := range bars {
		volumeSum += b.Volume
		if b.High > high {
			high = b.High
		}
		if b.Low < low && b.Low > 0 {
			low = b.Low
		}
	}
	avgVolume := volumeSum / float64(len(bars))

	if first.Close == 0 || avgVolume == 0 {
		return Summary{}, false
	}

	return Summary{
		TrendChangePercent: (last.Close - first.Close) / first.Close * 100,
		VolumeTrendPercent: (last.Volume - avgVolume) / avgVolume * 100,
		PeriodHigh:         high,
		PeriodLow:          low,
		AvgVolume:          avgVolume,
		CurrentPrice:       last.Close,
		StartPrice:         first.Close,
	}, true
}

// ClearChartCache drops all cached historical series.
func (s *Service) ClearChartCache() {
	s.charts.Clear()
}

// chartBars returns the full bar series for a chart key, fetching and
// caching on miss. Concurrent misses for the same key are collapsed into
// one provider call.
func (s *Service) chartBars(ctx context.Context, symbol, period string) ([]marketdata.Bar, error) {
	key := ChartKey{Symbol: symbol, Period: period}
	if bars, ok := s.charts.Get(key); ok {
		return bars, nil
	}

	v, err, _ := s.fetchGroup.Do(symbol+"|"+period, func() (interface{}, error) {
		// A concurrent caller may have already filled the entry.
		if bars, ok := s.charts.Get(key); ok {
			return bars, nil
		}

		bars, err := s.provider.FetchHistory(ctx, symbol, nativePeriod(period))
		if err != nil {
			return nil, fmt.Errorf("fetch history: %w", err)
		}
		if bars == nil {
			bars = []marketdata.Bar{}
		}
		s.charts.Put(key, bars)
		return bars, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]marketdata.Bar), nil
}

func (s *Service) normalizeChartArgs(symbol, period string) (string, string) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if period == "" {
		period = s.cfg.DefaultPeriod
	}
	return symbol, period
}
