// Package eastmoney fetches daily K-line history from the EastMoney push2his
// endpoint. It is the highest-trust domestic source.
package eastmoney

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/kydchen/daily-stock-analysis/internal/fetcher"
	"github.com/kydchen/daily-stock-analysis/internal/httpx"
	"github.com/kydchen/daily-stock-analysis/internal/symbol"
)

const defaultURL = "https://push2his.eastmoney.com/api/qt/stock/kline/get"

// kline fields: f51 date, f52 open, f53 close, f54 high, f55 low,
// f56 volume, f57 amount, f58 amplitude, f59 pct_chg, f60 chg, f61 turnover
const klineFields = "f51,f52,f53,f54,f55,f56,f57,f58,f59,f60,f61"

type Config struct {
	Name     string
	URL      string
	Priority int
	Retry    fetcher.Policy
	Headers  map[string]string
}

type Fetcher struct {
	cfg    Config
	client *httpx.Client
}

func New(cfg Config, hc *httpx.Client) *Fetcher {
	if cfg.Name == "" {
		cfg.Name = "EastMoney"
	}
	if cfg.URL == "" {
		cfg.URL = defaultURL
	}
	if cfg.Priority == 0 {
		cfg.Priority = 1
	}
	if cfg.Retry.MaxAttempts == 0 {
		cfg.Retry = fetcher.DomesticPolicy()
	}
	if cfg.Headers == nil {
		cfg.Headers = map[string]string{
			"Referer":         "https://quote.eastmoney.com/",
			"Accept":          "application/json, text/plain, */*",
			"Accept-Language": "zh-CN,zh;q=0.9,en;q=0.8",
		}
	}
	return &Fetcher{cfg: cfg, client: hc}
}

func (f *Fetcher) Name() string  { return f.cfg.Name }
func (f *Fetcher) Priority() int { return f.cfg.Priority }

func (f *Fetcher) Fetch(ctx context.Context, code, start, end string) (*fetcher.Result, error) {
	secid, err := symbol.Convert(symbol.StyleSecID, code)
	if err != nil {
		return nil, fetcher.Fail(f.cfg.Name, fetcher.ReasonFormat, err)
	}

	var raw fetcher.RawSeries
	err = f.cfg.Retry.Do(ctx, f.cfg.Name, func() error {
		s, ferr := f.fetchOnce(ctx, secid, start, end)
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
		Symbol:   secid,
		Code:     code,
		Bars:     fetcher.Normalize(raw, code),
	}, nil
}

func (f *Fetcher) fetchOnce(ctx context.Context, secid, start, end string) (fetcher.RawSeries, error) {
	url := fmt.Sprintf("%s?secid=%s&klt=101&fqt=1&beg=%s&end=%s&fields1=f1,f2,f3,f4,f5,f6&fields2=%s",
		f.cfg.URL, secid, compactDate(start), compactDate(end), klineFields)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return fetcher.RawSeries{}, fetcher.Fail(f.cfg.Name, fetcher.ReasonTransport, err)
	}
	for k, v := range f.cfg.Headers {
		req.Header.Set(k, v)
	}
	resp, err := f.client.Do(ctx, req)
	if err != nil {
		return fetcher.RawSeries{}, fetcher.Fail(f.cfg.Name, fetcher.ReasonTransport, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fetcher.RawSeries{}, fetcher.Fail(f.cfg.Name, fetcher.ReasonTransport, fmt.Errorf("GET %s -> %d", url, resp.StatusCode))
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fetcher.RawSeries{}, fetcher.Fail(f.cfg.Name, fetcher.ReasonTransport, err)
	}

	klines := gjson.GetBytes(body, "data.klines")
	if !klines.Exists() || len(klines.Array()) == 0 {
		return fetcher.RawSeries{}, fetcher.Fail(f.cfg.Name, fetcher.ReasonEmpty, fmt.Errorf("no rows for %s in %s..%s", secid, start, end))
	}

	raw := fetcher.RawSeries{HasPctChg: true, HasAmount: true}
	for _, k := range klines.Array() {
		parts := strings.Split(k.String(), ",")
		if len(parts) < 9 {
			return fetcher.RawSeries{}, fetcher.Fail(f.cfg.Name, fetcher.ReasonTransport, fmt.Errorf("malformed kline row %q", k.String()))
		}
		raw.Bars = append(raw.Bars, fetcher.Bar{
			Date:   parts[0],
			Open:   parseF(parts[1]),
			Close:  parseF(parts[2]),
			High:   parseF(parts[3]),
			Low:    parseF(parts[4]),
			Volume: parseF(parts[5]),
			Amount: parseF(parts[6]),
			PctChg: parseF(parts[8]),
		})
	}
	return raw, nil
}

// compactDate turns 2024-01-02 into the 20240102 form the endpoint expects.
func compactDate(d string) string { return strings.ReplaceAll(d, "-", "") }

func parseF(s string) float64 {
	v, _ := strconv.ParseFloat(strings.TrimSpace(s), 64)
	return v
}
