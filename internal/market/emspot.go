package market

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/tidwall/gjson"
	"golang.org/x/sync/singleflight"

	"github.com/kydchen/daily-stock-analysis/internal/httpx"
)

// IndexRow is a realtime quote row for one index.
type IndexRow struct {
	Code      string
	Name      string
	Current   float64
	Change    float64
	ChangePct float64
	Open      float64
	High      float64
	Low       float64
	PrevClose float64
	Volume    float64
	Amount    float64
}

// SpotRow is one stock from the full A-share spot table. Only the fields
// market breadth and turnover need are carried.
type SpotRow struct {
	Code      string
	Name      string
	ChangePct float64
	Amount    float64
}

// SectorRow is one industry sector with its day change.
type SectorRow struct {
	Name      string
	ChangePct float64
}

// EMSpotConfig controls the EastMoney realtime spot client.
type EMSpotConfig struct {
	URL      string
	PageSize int
	Headers  map[string]string
}

// EMSpotClient pulls realtime snapshot tables from the EastMoney clist API.
// The full A-share table is a few thousand rows across several pages, so
// concurrent callers share one pull.
type EMSpotClient struct {
	cfg    EMSpotConfig
	client *httpx.Client

	sf singleflight.Group
}

// NewEMSpot builds a spot client. Zero-value config fields get defaults.
func NewEMSpot(cfg EMSpotConfig, hc *httpx.Client) *EMSpotClient {
	if cfg.URL == "" {
		cfg.URL = "https://push2.eastmoney.com/api/qt/clist/get"
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = 500
	}
	if cfg.Headers == nil {
		cfg.Headers = map[string]string{
			"Referer": "https://quote.eastmoney.com/",
			"Accept":  "application/json, text/plain, */*",
		}
	}
	return &EMSpotClient{cfg: cfg, client: hc}
}

// AShareSpot returns the full A-share spot table (Shanghai and Shenzhen
// mainboards, SME, ChiNext and STAR). Rows without a numeric change
// percentage, typically suspended stocks, are skipped.
func (c *EMSpotClient) AShareSpot(ctx context.Context) ([]SpotRow, error) {
	v, err, _ := c.sf.Do("ashare-spot", func() (any, error) {
		return c.fetchAShareSpot(ctx)
	})
	if err != nil {
		return nil, err
	}
	return v.([]SpotRow), nil
}

func (c *EMSpotClient) fetchAShareSpot(ctx context.Context) ([]SpotRow, error) {
	const fs = "m:0+t:6,m:0+t:80,m:1+t:2,m:1+t:23"

	var rows []SpotRow
	for page := 1; ; page++ {
		q := url.Values{}
		q.Set("pn", strconv.Itoa(page))
		q.Set("pz", strconv.Itoa(c.cfg.PageSize))
		q.Set("po", "1")
		q.Set("np", "1")
		q.Set("fltt", "2")
		q.Set("fid", "f3")
		q.Set("fs", fs)
		q.Set("fields", "f3,f6,f12,f14")

		body, err := c.get(ctx, q)
		if err != nil {
			return nil, err
		}

		total := gjson.GetBytes(body, "data.total").Int()
		diff := gjson.GetBytes(body, "data.diff")
		if !diff.Exists() {
			break
		}

		before := len(rows)
		forEachDiff(diff, func(row gjson.Result) {
			pct := row.Get("f3")
			if pct.Type != gjson.Number {
				return
			}
			rows = append(rows, SpotRow{
				Code:      row.Get("f12").String(),
				Name:      row.Get("f14").String(),
				ChangePct: pct.Float(),
				Amount:    row.Get("f6").Float(),
			})
		})

		if len(rows) == before || int64(page*c.cfg.PageSize) >= total {
			break
		}
	}
	return rows, nil
}

// HKIndexQuotes returns the Hong Kong index board (Hang Seng family).
func (c *EMSpotClient) HKIndexQuotes(ctx context.Context) ([]IndexRow, error) {
	q := url.Values{}
	q.Set("pn", "1")
	q.Set("pz", strconv.Itoa(c.cfg.PageSize))
	q.Set("po", "1")
	q.Set("np", "1")
	q.Set("fltt", "2")
	q.Set("fid", "f3")
	q.Set("fs", "m:124,m:125,m:305")
	q.Set("fields", "f2,f3,f4,f6,f12,f14,f15,f16,f17,f18")

	body, err := c.get(ctx, q)
	if err != nil {
		return nil, err
	}

	var rows []IndexRow
	forEachDiff(gjson.GetBytes(body, "data.diff"), func(row gjson.Result) {
		if row.Get("f2").Type != gjson.Number {
			return
		}
		rows = append(rows, IndexRow{
			Code:      row.Get("f12").String(),
			Name:      row.Get("f14").String(),
			Current:   row.Get("f2").Float(),
			ChangePct: row.Get("f3").Float(),
			Change:    row.Get("f4").Float(),
			Amount:    row.Get("f6").Float(),
			High:      row.Get("f15").Float(),
			Low:       row.Get("f16").Float(),
			Open:      row.Get("f17").Float(),
			PrevClose: row.Get("f18").Float(),
		})
	})
	return rows, nil
}

// SectorSpot returns the industry sector board with day changes.
func (c *EMSpotClient) SectorSpot(ctx context.Context) ([]SectorRow, error) {
	q := url.Values{}
	q.Set("pn", "1")
	q.Set("pz", strconv.Itoa(c.cfg.PageSize))
	q.Set("po", "1")
	q.Set("np", "1")
	q.Set("fltt", "2")
	q.Set("fid", "f3")
	q.Set("fs", "m:90+t:2")
	q.Set("fields", "f3,f12,f14")

	body, err := c.get(ctx, q)
	if err != nil {
		return nil, err
	}

	var rows []SectorRow
	forEachDiff(gjson.GetBytes(body, "data.diff"), func(row gjson.Result) {
		pct := row.Get("f3")
		if pct.Type != gjson.Number {
			return
		}
		rows = append(rows, SectorRow{
			Name:      row.Get("f14").String(),
			ChangePct: pct.Float(),
		})
	})
	return rows, nil
}

func (c *EMSpotClient) get(ctx context.Context, q url.Values) ([]byte, error) {
	u := c.cfg.URL + "?" + q.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, http.NoBody)
	if err != nil {
		return nil, err
	}
	for k, v := range c.cfg.Headers {
		req.Header.Set(k, v)
	}
	resp, err := c.client.Do(ctx, req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("GET %s -> %d", u, resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

// forEachDiff walks data.diff, which the API serves either as an array or
// as an object keyed by row number.
func forEachDiff(diff gjson.Result, fn func(gjson.Result)) {
	diff.ForEach(func(_, row gjson.Result) bool {
		fn(row)
		return true
	})
}
