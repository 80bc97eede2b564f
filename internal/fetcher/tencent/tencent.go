// Package tencent fetches daily K-line history from the gtimg fqkline
// endpoint, the second domestic source in the chain. The source omits
// amount and pct_chg; normalization derives both.
package tencent

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/kydchen/daily-stock-analysis/internal/fetcher"
	"github.com/kydchen/daily-stock-analysis/internal/httpx"
	"github.com/kydchen/daily-stock-analysis/internal/symbol"
)

const defaultURL = "https://web.ifzq.gtimg.cn/appstock/app/fqkline/get"

type Config struct {
	Name     string
	URL      string
	Priority int
	Retry    fetcher.Policy
}

type Fetcher struct {
	cfg    Config
	client *httpx.Client
}

func New(cfg Config, hc *httpx.Client) *Fetcher {
	if cfg.Name == "" {
		cfg.Name = "Tencent"
	}
	if cfg.URL == "" {
		cfg.URL = defaultURL
	}
	if cfg.Priority == 0 {
		cfg.Priority = 2
	}
	if cfg.Retry.MaxAttempts == 0 {
		cfg.Retry = fetcher.DomesticPolicy()
	}
	return &Fetcher{cfg: cfg, client: hc}
}

func (f *Fetcher) Name() string  { return f.cfg.Name }
func (f *Fetcher) Priority() int { return f.cfg.Priority }

func (f *Fetcher) Fetch(ctx context.Context, code, start, end string) (*fetcher.Result, error) {
	sym, err := symbol.Convert(symbol.StyleTencent, code)
	if err != nil {
		return nil, fetcher.Fail(f.cfg.Name, fetcher.ReasonFormat, err)
	}

	var raw fetcher.RawSeries
	err = f.cfg.Retry.Do(ctx, f.cfg.Name, func() error {
		s, ferr := f.fetchOnce(ctx, sym, start, end)
		if ferr != nil {
			return ferr
		}
		raw = s
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &fetcher.Result{
		Provider: f.cfg.Name,
		Symbol:   sym,
		Code:     code,
		Bars:     fetcher.Normalize(raw, code),
	}, nil
}

// apiResponse: data.<symbol>.qfqday (forward-adjusted) or .day, each row
// [date, open, close, high, low, volume, ...] with numbers as strings.
type apiResponse struct {
	Code int                    `json:"code"`
	Msg  string                 `json:"msg"`
	Data map[string]klinePayload `json:"data"`
}

type klinePayload struct {
	Qfqday [][]any `json:"qfqday"`
	Day    [][]any `json:"day"`
}

func (f *Fetcher) fetchOnce(ctx context.Context, sym, start, end string) (fetcher.RawSeries, error) {
	url := fmt.Sprintf("%s?param=%s,day,%s,%s,640,qfq", f.cfg.URL, sym, start, end)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return fetcher.RawSeries{}, fetcher.Fail(f.cfg.Name, fetcher.ReasonTransport, err)
	}
	req.Header.Set("Referer", "https://gu.qq.com/")
	resp, err := f.client.Do(ctx, req)
	if err != nil {
		return fetcher.RawSeries{}, fetcher.Fail(f.cfg.Name, fetcher.ReasonTransport, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fetcher.RawSeries{}, fetcher.Fail(f.cfg.Name, fetcher.ReasonTransport, fmt.Errorf("GET %s -> %d", url, resp.StatusCode))
	}

	var api apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&api); err != nil {
		return fetcher.RawSeries{}, fetcher.Fail(f.cfg.Name, fetcher.ReasonTransport, fmt.Errorf("decode: %w", err))
	}
	if api.Code != 0 {
		return fetcher.RawSeries{}, fetcher.Fail(f.cfg.Name, fetcher.ReasonTransport, fmt.Errorf("api code=%d msg=%q", api.Code, api.Msg))
	}

	payload, ok := api.Data[sym]
	rows := payload.Qfqday
	if len(rows) == 0 {
		rows = payload.Day
	}
	if !ok || len(rows) == 0 {
		return fetcher.RawSeries{}, fetcher.Fail(f.cfg.Name, fetcher.ReasonEmpty, fmt.Errorf("no rows for %s in %s..%s", sym, start, end))
	}

	var raw fetcher.RawSeries
	for _, row := range rows {
		if len(row) < 6 {
			return fetcher.RawSeries{}, fetcher.Fail(f.cfg.Name, fetcher.ReasonTransport, fmt.Errorf("malformed kline row %v", row))
		}
		raw.Bars = append(raw.Bars, fetcher.Bar{
			Date:   cellString(row[0]),
			Open:   cellFloat(row[1]),
			Close:  cellFloat(row[2]),
			High:   cellFloat(row[3]),
			Low:    cellFloat(row[4]),
			Volume: cellFloat(row[5]),
		})
	}
	return raw, nil
}

func cellString(v any) string {
	s, _ := v.(string)
	return s
}

func cellFloat(v any) float64 {
	switch x := v.(type) {
	case string:
		f, _ := strconv.ParseFloat(x, 64)
		return f
	case float64:
		return x
	}
	return 0
}
