// Package news pulls recent Chinese financial news through a hosted search
// API. Results feed the daily review as raw context; a search outage costs
// news coverage, never the run.
package news

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/go-resty/resty/v2"
)

const defaultBaseURL = "https://api.tavily.com"

// Item is one search hit.
type Item struct {
	Title       string  `json:"title"`
	URL         string  `json:"url"`
	Content     string  `json:"content"`
	Score       float64 `json:"score"`
	PublishedAt string  `json:"published_date,omitempty"`
}

// Response is the search API payload.
type Response struct {
	Query   string `json:"query"`
	Answer  string `json:"answer,omitempty"`
	Results []Item `json:"results"`
}

// Config controls the news search client.
type Config struct {
	BaseURL    string
	APIKey     string
	MaxResults int
	Timeout    time.Duration
}

// Client queries the search API.
type Client struct {
	cfg  Config
	http *resty.Client
}

func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.MaxResults <= 0 {
		cfg.MaxResults = 10
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	hc := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout).
		SetHeader("Content-Type", "application/json")
	return &Client{cfg: cfg, http: hc}
}

type searchRequest struct {
	APIKey      string `json:"api_key"`
	Query       string `json:"query"`
	SearchDepth string `json:"search_depth"`
	MaxResults  int    `json:"max_results"`
	Days        int    `json:"days"`
}

// Search runs one query against the API.
func (c *Client) Search(ctx context.Context, query string, maxResults int) (*Response, error) {
	if c.cfg.APIKey == "" {
		return nil, fmt.Errorf("news: missing API key")
	}
	if maxResults <= 0 {
		maxResults = c.cfg.MaxResults
	}

	var out Response
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(searchRequest{
			APIKey:      c.cfg.APIKey,
			Query:       query,
			SearchDepth: "basic",
			MaxResults:  maxResults,
			Days:        3,
		}).
		SetResult(&out).
		Post("/search")
	if err != nil {
		return nil, fmt.Errorf("news: search %q: %w", query, err)
	}
	if resp.StatusCode() != 200 {
		return nil, fmt.Errorf("news: search %q: HTTP %d", query, resp.StatusCode())
	}
	return &out, nil
}

// SearchStock pulls news for one stock. The company name makes Chinese
// queries far more precise than the bare code.
func (c *Client) SearchStock(ctx context.Context, code, name string, maxResults int, focusKeywords []string) []Item {
	queries := []string{
		fmt.Sprintf("%s %s 最新消息", name, code),
		fmt.Sprintf("%s 公告", name),
	}
	for _, kw := range focusKeywords {
		queries = append(queries, fmt.Sprintf("%s %s", name, kw))
	}
	return c.collect(ctx, queries, maxResults)
}

// SearchMarketNews pulls broad market context for the daily review.
func (c *Client) SearchMarketNews(ctx context.Context) []Item {
	queries := []string{
		"A股 今日走势 大盘分析",
		"股市 政策 消息面",
		"港股 美股 市场动态",
	}
	return c.collect(ctx, queries, c.cfg.MaxResults)
}

// collect runs the queries in order, deduplicates by URL and caps the
// combined result count. A failed query logs a warning and contributes
// nothing.
func (c *Client) collect(ctx context.Context, queries []string, maxResults int) []Item {
	if maxResults <= 0 {
		maxResults = c.cfg.MaxResults
	}
	seen := make(map[string]bool)
	var items []Item
	for _, q := range queries {
		resp, err := c.Search(ctx, q, maxResults)
		if err != nil {
			log.Printf("warning: news query %q failed: %v", q, err)
			continue
		}
		for _, it := range resp.Results {
			if it.URL == "" || seen[it.URL] {
				continue
			}
			seen[it.URL] = true
			items = append(items, it)
			if len(items) >= maxResults {
				return items
			}
		}
	}
	return items
}
