package market

import (
	"context"
	"log"
	"sort"
	"strings"
	"time"
)

// DomesticIndexSource serves realtime quotes for mainland index codes in
// exchange-prefixed form ("sh000001").
type DomesticIndexSource interface {
	IndexQuotes(ctx context.Context, codes []string) ([]IndexRow, error)
}

// HKIndexSource serves the Hong Kong index board.
type HKIndexSource interface {
	HKIndexQuotes(ctx context.Context) ([]IndexRow, error)
}

// USQuoteSource serves one international index quote by dotted code
// (".DJI", ".IXIC", ".INX").
type USQuoteSource interface {
	USIndexQuote(ctx context.Context, code string) (IndexRow, error)
}

// MarketSpotSource serves the full A-share spot table and the sector board.
type MarketSpotSource interface {
	AShareSpot(ctx context.Context) ([]SpotRow, error)
	SectorSpot(ctx context.Context) ([]SectorRow, error)
}

// watchItem pairs an index code with its display name. The name from the
// quote source wins when present; the local name covers sources that return
// garbled or missing names.
type watchItem struct {
	code string
	name string
}

var domesticWatch = []watchItem{
	{"sh000001", "上证指数"},
	{"sz399001", "深证成指"},
	{"sz399006", "创业板指"},
	{"sh000688", "科创50"},
	{"sh000016", "上证50"},
	{"sh000300", "沪深300"},
}

var hkWatch = []watchItem{
	{"HSI", "恒生指数"},
	{"HSCEI", "国企指数"},
	{"HSTECH", "恒生科技指数"},
}

var usWatch = []watchItem{
	{".DJI", "道琼斯"},
	{".IXIC", "纳斯达克"},
	{".INX", "标普500"},
}

// Limit-up/down detection uses 9.9 rather than 10 so rounding in upstream
// percentages does not drop genuine limit moves.
const limitThreshold = 9.9

const sectorTopN = 5

// phaseAttempts bounds how often one phase is retried before the overview
// degrades to partial data.
const phaseAttempts = 2

// sleep is swapped out in tests.
var sleep = time.Sleep

// Aggregator assembles an Overview from independent quote sources. Every
// phase degrades gracefully: a source that stays down costs its section of
// the snapshot, never the whole run.
type Aggregator struct {
	Domestic DomesticIndexSource
	HK       HKIndexSource
	US       USQuoteSource
	Spot     MarketSpotSource
}

// BuildOverview runs all phases and returns the snapshot for today.
func (a *Aggregator) BuildOverview(ctx context.Context) *Overview {
	ov := &Overview{Date: time.Now().Format("2006-01-02")}

	if a.Domestic != nil {
		if rows, ok := retryFetch(ctx, "domestic indices", func() ([]IndexRow, error) {
			codes := make([]string, len(domesticWatch))
			for i, w := range domesticWatch {
				codes[i] = w.code
			}
			return a.Domestic.IndexQuotes(ctx, codes)
		}); ok {
			ov.Indices = pickIndices(domesticWatch, rows)
		}
	}

	if a.HK != nil {
		if rows, ok := retryFetch(ctx, "hk indices", func() ([]IndexRow, error) {
			return a.HK.HKIndexQuotes(ctx)
		}); ok {
			ov.HKIndices = pickIndicesByName(hkWatch, rows)
		}
	}

	if a.US != nil {
		for _, w := range usWatch {
			w := w
			row, ok := retryFetch(ctx, "us index "+w.code, func() (IndexRow, error) {
				return a.US.USIndexQuote(ctx, w.code)
			})
			if !ok {
				continue
			}
			ov.USIndices = append(ov.USIndices, toIndex(w, row))
		}
	}

	if a.Spot != nil {
		if rows, ok := retryFetch(ctx, "a-share spot", func() ([]SpotRow, error) {
			return a.Spot.AShareSpot(ctx)
		}); ok {
			applyBreadth(ov, rows)
		}

		if rows, ok := retryFetch(ctx, "sector spot", func() ([]SectorRow, error) {
			return a.Spot.SectorSpot(ctx)
		}); ok {
			ov.TopSectors, ov.BottomSectors = rankSectors(rows)
		}
	}

	return ov
}

// retryFetch runs fn up to phaseAttempts times with a short capped backoff.
// It returns the zero value and false once attempts are exhausted.
func retryFetch[T any](ctx context.Context, name string, fn func() (T, error)) (T, bool) {
	var zero T
	for attempt := 0; attempt < phaseAttempts; attempt++ {
		if ctx.Err() != nil {
			return zero, false
		}
		v, err := fn()
		if err == nil {
			return v, true
		}
		if attempt+1 < phaseAttempts {
			wait := time.Duration(1<<uint(attempt+1)) * time.Second
			if wait > 5*time.Second {
				wait = 5 * time.Second
			}
			log.Printf("warning: %s attempt %d/%d failed, retrying in %s: %v", name, attempt+1, phaseAttempts, wait, err)
			sleep(wait)
			continue
		}
		log.Printf("error: %s failed after %d attempts: %v", name, phaseAttempts, err)
	}
	return zero, false
}

// pickIndices selects the watch-list entries from a quote table, keeping the
// watch-list order. Matching is exact on code first, then substring, which
// covers sources that key rows as "sh000001" versus "000001".
func pickIndices(watch []watchItem, rows []IndexRow) []Index {
	var out []Index
	for _, w := range watch {
		row, ok := matchRow(w.code, rows)
		if !ok {
			continue
		}
		out = append(out, toIndex(w, row))
	}
	return out
}

// pickIndicesByName is pickIndices keyed on display names instead of codes.
// The Hong Kong board publishes localized names but source-specific codes,
// so names are the stable key there.
func pickIndicesByName(watch []watchItem, rows []IndexRow) []Index {
	var out []Index
	for _, w := range watch {
		for _, r := range rows {
			if r.Name == w.name {
				out = append(out, toIndex(watchItem{code: r.Code, name: w.name}, r))
				break
			}
		}
	}
	return out
}

func matchRow(code string, rows []IndexRow) (IndexRow, bool) {
	for _, r := range rows {
		if r.Code == code {
			return r, true
		}
	}
	for _, r := range rows {
		if r.Code != "" && (strings.Contains(code, r.Code) || strings.Contains(r.Code, code)) {
			return r, true
		}
	}
	return IndexRow{}, false
}

func toIndex(w watchItem, row IndexRow) Index {
	name := row.Name
	if name == "" {
		name = w.name
	}
	return Index{
		Code:      w.code,
		Name:      name,
		Current:   row.Current,
		Change:    row.Change,
		ChangePct: row.ChangePct,
		Open:      row.Open,
		High:      row.High,
		Low:       row.Low,
		PrevClose: row.PrevClose,
		Volume:    row.Volume,
		Amount:    row.Amount,
		Amplitude: Amplitude(row.High, row.Low, row.PrevClose),
	}
}

// applyBreadth fills the up/down/flat and limit counters plus total turnover
// from the full spot table. Amounts come in CNY and are reported in 1e8 CNY.
func applyBreadth(ov *Overview, rows []SpotRow) {
	var amount float64
	for _, r := range rows {
		switch {
		case r.ChangePct > 0:
			ov.UpCount++
		case r.ChangePct < 0:
			ov.DownCount++
		default:
			ov.FlatCount++
		}
		if r.ChangePct >= limitThreshold {
			ov.LimitUpCount++
		}
		if r.ChangePct <= -limitThreshold {
			ov.LimitDownCount++
		}
		amount += r.Amount
	}
	ov.TotalAmount = amount / 1e8
}

// rankSectors returns the strongest and weakest sectors of the day, each
// list led by its extreme (top by biggest gainer, bottom by biggest loser).
// Ties keep source order.
func rankSectors(rows []SectorRow) (top, bottom []Sector) {
	sorted := make([]SectorRow, len(rows))
	copy(sorted, rows)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].ChangePct > sorted[j].ChangePct })

	n := sectorTopN
	if n > len(sorted) {
		n = len(sorted)
	}
	for _, r := range sorted[:n] {
		top = append(top, Sector{Name: r.Name, ChangePct: r.ChangePct})
	}
	for i := len(sorted) - 1; i >= len(sorted)-n; i-- {
		r := sorted[i]
		bottom = append(bottom, Sector{Name: r.Name, ChangePct: r.ChangePct})
	}
	return top, bottom
}
