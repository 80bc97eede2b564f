package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/kydchen/daily-stock-analysis/internal/config"
	"github.com/kydchen/daily-stock-analysis/internal/fetcher"
	"github.com/kydchen/daily-stock-analysis/internal/fetcher/eastmoney"
	"github.com/kydchen/daily-stock-analysis/internal/fetcher/tencent"
	"github.com/kydchen/daily-stock-analysis/internal/fetcher/yahoo"
	"github.com/kydchen/daily-stock-analysis/internal/httpx"
)

func main() {
	_ = godotenv.Load()

	var code string
	var start string
	var end string
	var timeout int
	var configPath string

	flag.StringVar(&code, "symbol", getenv("SYMBOL", "600519"), "stock code (600519, hk00700, usAAPL, 000001.SZ)")
	flag.StringVar(&start, "start", getenv("START_DATE", defaultStart()), "start date YYYY-MM-DD")
	flag.StringVar(&end, "end", getenv("END_DATE", time.Now().Format("2006-01-02")), "end date YYYY-MM-DD")
	flag.IntVar(&timeout, "timeout", getenvInt("REQUEST_TIMEOUT_SEC", 0), "request timeout seconds")
	flag.StringVar(&configPath, "config", getenv("CONFIG_FILE", ""), "path to config.json (optional)")
	flag.Parse()

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if timeout > 0 {
		cfg.HTTP.TimeoutSec = timeout
	}

	httpClient := httpx.New(time.Duration(cfg.HTTP.TimeoutSec) * time.Second)

	fetchers := make([]fetcher.Fetcher, 0, 3)
	if cfg.EastMoney.Enabled {
		fetchers = append(fetchers, eastmoney.New(eastmoney.Config{
			URL:      cfg.EastMoney.Endpoint,
			Priority: cfg.EastMoney.Priority,
			Retry:    policyFor(cfg.EastMoney.MaxAttempts, fetcher.DomesticPolicy()),
		}, httpClient))
	}
	if cfg.Tencent.Enabled {
		fetchers = append(fetchers, tencent.New(tencent.Config{
			URL:      cfg.Tencent.Endpoint,
			Priority: cfg.Tencent.Priority,
			Retry:    policyFor(cfg.Tencent.MaxAttempts, fetcher.DomesticPolicy()),
		}, httpClient))
	}
	if cfg.Yahoo.Enabled {
		fetchers = append(fetchers, yahoo.New(yahoo.Config{
			Priority: cfg.Yahoo.Priority,
			Retry:    policyFor(cfg.Yahoo.MaxAttempts, fetcher.DefaultPolicy()),
		}))
	}
	if len(fetchers) == 0 {
		log.Fatal("no data sources enabled; check config.json or env overrides")
	}

	registry := fetcher.NewRegistry(fetchers...)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	res, err := registry.Fetch(ctx, code, start, end)
	if err != nil {
		log.Fatalf("fetch %s: %v", code, err)
	}
	log.Printf("%s: %d bars from %s", code, len(res.Bars), res.Provider)

	b, _ := json.MarshalIndent(res, "", "  ")
	fmt.Println(string(b))
}

func policyFor(maxAttempts int, base fetcher.Policy) fetcher.Policy {
	if maxAttempts > 0 {
		base.MaxAttempts = maxAttempts
	}
	return base
}

func defaultStart() string {
	return time.Now().AddDate(0, -3, 0).Format("2006-01-02")
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		var x int
		_, _ = fmt.Sscanf(v, "%d", &x)
		if x != 0 {
			return x
		}
	}
	return def
}
