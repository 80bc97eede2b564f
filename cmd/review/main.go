package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/kydchen/daily-stock-analysis/internal/config"
	"github.com/kydchen/daily-stock-analysis/internal/httpx"
	"github.com/kydchen/daily-stock-analysis/internal/market"
	"github.com/kydchen/daily-stock-analysis/internal/market/sina"
	"github.com/kydchen/daily-stock-analysis/internal/news"
	"github.com/kydchen/daily-stock-analysis/internal/report"
)

func main() {
	_ = godotenv.Load()

	var configPath string
	var outPath string

	flag.StringVar(&configPath, "config", os.Getenv("CONFIG_FILE"), "path to config.json (optional)")
	flag.StringVar(&outPath, "out", "", "write the review to this file instead of stdout")
	flag.Parse()

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	httpClient := httpx.New(time.Duration(cfg.HTTP.TimeoutSec) * time.Second)

	sinaClient, err := sina.NewClient(sina.WithHTTPClient(httpClient.HTTP))
	if err != nil {
		log.Fatalf("sina client: %v", err)
	}

	emSpot := market.NewEMSpot(market.EMSpotConfig{}, httpClient)
	agg := &market.Aggregator{
		Domestic: &market.SinaIndexSource{Client: sinaClient},
		HK:       emSpot,
		US:       market.YahooQuoteSource{},
		Spot:     emSpot,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	ov := agg.BuildOverview(ctx)
	log.Printf("overview %s: %d indices, %d up / %d down, %.2f 亿 turnover",
		ov.Date, len(ov.Indices), ov.UpCount, ov.DownCount, ov.TotalAmount)

	var items []news.Item
	if cfg.Search.Enabled && cfg.Search.APIKey != "" {
		nc := news.NewClient(news.Config{
			BaseURL:    cfg.Search.Endpoint,
			APIKey:     cfg.Search.APIKey,
			MaxResults: cfg.Search.MaxResults,
		})
		items = nc.SearchMarketNews(ctx)
		log.Printf("news: %d items", len(items))
	}

	var gen report.Generator
	if cfg.Report.Generator == "openai" && cfg.Report.APIKey != "" {
		g, err := report.NewOpenAIGenerator(report.OpenAIConfig{
			APIKey:  cfg.Report.APIKey,
			BaseURL: cfg.Report.BaseURL,
			Model:   cfg.Report.Model,
		})
		if err != nil {
			log.Printf("warning: openai generator unavailable: %v", err)
		} else {
			gen = g
		}
	}

	text := report.MarketReview(ctx, gen, ov, items)

	if outPath != "" {
		if err := os.WriteFile(outPath, []byte(text), 0o644); err != nil {
			log.Fatalf("write %s: %v", outPath, err)
		}
		log.Printf("review written to %s", outPath)
		return
	}
	fmt.Println(text)
}
