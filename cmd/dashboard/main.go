package main

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"stock-dashboard/internal/marketdata"
	"stock-dashboard/internal/search"
	"stock-dashboard/internal/stocks"
)

func loadConfig() stocks.Config {
	_ = godotenv.Load() // ignore error if .env absent

	cfg := stocks.DefaultConfig()
	cfg.QuoteTTL = envDuration("QUOTE_TTL", cfg.QuoteTTL)
	cfg.ChartTTL = envDuration("CHART_TTL", cfg.ChartTTL)
	cfg.SearchTTL = envDuration("SEARCH_TTL", cfg.SearchTTL)
	cfg.DebounceDelay = envDuration("DEBOUNCE_DELAY", cfg.DebounceDelay)
	if v := os.Getenv("SEARCH_CACHE_SIZE"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			log.Printf("invalid SEARCH_CACHE_SIZE %q, using default", v)
		} else {
			cfg.SearchCacheSize = n
		}
	}
	return cfg
}

func envDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		log.Printf("invalid %s %q, using default %s", key, v, fallback)
		return fallback
	}
	return d
}

func main() {
	cfg := loadConfig()

	index := search.NewIndex(stocks.DefaultUniverse())
	provider := marketdata.NewYahooClient()
	svc := stocks.New(provider, index, cfg)

	ctx, cancel := signal.NotifyContext(context.Background(),
		syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	fmt.Println("stock-dashboard console. Commands: quotes, chart, summary, search, preload, stats, quit")

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			return
		}
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}

		select {
		case <-ctx.Done():
			return
		default:
		}

		switch fields[0] {
		case "quotes":
			symbols := fields[1:]
			if len(symbols) == 0 {
				symbols = stocks.DefaultUniverse()[:10]
			}
			printQuotes(svc.GetQuotes(ctx, symbols))
		case "chart":
			if len(fields) < 2 {
				fmt.Println("usage: chart SYMBOL [PERIOD]")
				continue
			}
			period := ""
			if len(fields) > 2 {
				period = fields[2]
			}
			printChart(svc.GetChart(ctx, fields[1], period))
		case "summary":
			if len(fields) < 2 {
				fmt.Println("usage: summary SYMBOL [PERIOD]")
				continue
			}
			period := ""
			if len(fields) > 2 {
				period = fields[2]
			}
			printSummary(ctx, svc, fields[1], period)
		case "search":
			term := strings.Join(fields[1:], " ")
			results := <-svc.DebouncedSuggest(term)
			fmt.Println(strings.Join(results, ", "))
		case "preload":
			if len(fields) < 2 {
				fmt.Println("usage: preload SYMBOL")
				continue
			}
			svc.Preload(fields[1])
			fmt.Printf("preloading %s in the background\n", fields[1])
		case "stats":
			printStats(svc.Stats())
		case "quit", "exit":
			return
		default:
			fmt.Printf("unknown command %q\n", fields[0])
		}
	}
}

func printQuotes(quotes []marketdata.Quote) {
	if len(quotes) == 0 {
		fmt.Println("no quotes available")
		return
	}
	for _, q := range quotes {
		fmt.Printf("%-6s %-24s $%9.2f  %+6.2f%%  vol %.0f\n",
			q.Symbol, q.Name, q.Price, q.ChangePercent, q.Volume)
	}
}

func printChart(series stocks.ChartSeries) {
	if len(series) == 0 {
		fmt.Println("no chart data")
		return
	}
	first, last := series[0], series[len(series)-1]
	fmt.Printf("%d points, %s $%.2f -> %s $%.2f\n",
		len(series), first.Date, first.Close, last.Date, last.Close)
}

func printSummary(ctx context.Context, svc *stocks.Service, symbol, period string) {
	sum, ok := svc.GetHistoricalSummary(ctx, symbol, period)
	if !ok {
		fmt.Println("no summary available")
		return
	}
	fmt.Printf("trend %+.2f%%  volume trend %+.2f%%  range $%.2f-$%.2f  avg vol %.0f\n",
		sum.TrendChangePercent, sum.VolumeTrendPercent,
		sum.PeriodLow, sum.PeriodHigh, sum.AvgVolume)
}

func printStats(st stocks.Stats) {
	fmt.Printf("quote cache: %d  chart cache: %d (hit rate %.2f)  search cache: %d  pending debounce: %d\n",
		st.QuoteCacheSize, st.ChartCacheSize, st.ChartCacheHitRate,
		st.SearchCacheSize, st.ActiveDebounceTasks)
	if len(st.CachedSymbols) > 0 {
		fmt.Printf("cached symbols: %s\n", strings.Join(st.CachedSymbols, ", "))
		fmt.Printf("cached periods: %s\n", strings.Join(st.CachedPeriods, ", "))
	}
}
