// Package yahoo fetches daily history from Yahoo Finance. It is the lowest
// priority source: an international fallback consulted only after every
// domestic source has failed, and the only one covering US equities and
// crypto pairs.
package yahoo

import (
	"context"
	"fmt"
	"time"

	"github.com/piquette/finance-go/chart"
	"github.com/piquette/finance-go/datetime"
	"github.com/shopspring/decimal"

	"github.com/kydchen/daily-stock-analysis/internal/fetcher"
	"github.com/kydchen/daily-stock-analysis/internal/symbol"
)

type Config struct {
	Name     string
	Priority int
	Retry    fetcher.Policy
}

type Fetcher struct {
	cfg Config
}

func New(cfg Config) *Fetcher {
	if cfg.Name == "" {
		cfg.Name = "Yahoo"
	}
	if cfg.Priority == 0 {
		cfg.Priority = 3
	}
	if cfg.Retry.MaxAttempts == 0 {
		// Yahoo is slow to recover; give it the widest backoff cap.
		cfg.Retry = fetcher.DefaultPolicy()
	}
	return &Fetcher{cfg: cfg}
}

func (f *Fetcher) Name() string  { return f.cfg.Name }
func (f *Fetcher) Priority() int { return f.cfg.Priority }

func (f *Fetcher) Fetch(ctx context.Context, code, start, end string) (*fetcher.Result, error) {
	sym, err := symbol.Convert(symbol.StyleYahoo, code)
	if err != nil {
		return nil, fetcher.Fail(f.cfg.Name, fetcher.ReasonFormat, err)
	}

	startT, err := time.Parse("2006-01-02", start)
	if err != nil {
		return nil, fetcher.Fail(f.cfg.Name, fetcher.ReasonFormat, fmt.Errorf("start date %q: %w", start, err))
	}
	endT, err := time.Parse("2006-01-02", end)
	if err != nil {
		return nil, fetcher.Fail(f.cfg.Name, fetcher.ReasonFormat, fmt.Errorf("end date %q: %w", end, err))
	}

	var raw fetcher.RawSeries
	err = f.cfg.Retry.Do(ctx, f.cfg.Name, func() error {
		s, ferr := f.fetchOnce(sym, startT, endT)
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

// fetchOnce iterates the Yahoo chart API. The finance-go client has no
// context plumbing; cancellation is only observed between retry attempts.
func (f *Fetcher) fetchOnce(sym string, start, end time.Time) (fetcher.RawSeries, error) {
	params := &chart.Params{
		Symbol:   sym,
		Start:    datetime.New(&start),
		End:      datetime.New(&end),
		Interval: datetime.OneDay,
	}

	var raw fetcher.RawSeries
	iter := chart.Get(params)
	for iter.Next() {
		bar := iter.Bar()
		raw.Bars = append(raw.Bars, fetcher.Bar{
			Date:   time.Unix(int64(bar.Timestamp), 0).UTC().Format("2006-01-02"),
			Open:   roundPx(bar.Open),
			High:   roundPx(bar.High),
			Low:    roundPx(bar.Low),
			Close:  roundPx(bar.Close),
			Volume: float64(bar.Volume),
		})
	}
	if err := iter.Err(); err != nil {
		return fetcher.RawSeries{}, fetcher.Fail(f.cfg.Name, fetcher.ReasonTransport, err)
	}
	if len(raw.Bars) == 0 {
		return fetcher.RawSeries{}, fetcher.Fail(f.cfg.Name, fetcher.ReasonEmpty, fmt.Errorf("no rows for %s", sym))
	}
	return raw, nil
}

// roundPx strips the binary float noise Yahoo adjusted prices carry
// (1685.0100097656 and the like).
func roundPx(d decimal.Decimal) float64 {
	f, _ := d.Round(2).Float64()
	return f
}
