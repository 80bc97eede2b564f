package market

import (
	"context"
	"fmt"

	"github.com/piquette/finance-go/quote"

	"github.com/kydchen/daily-stock-analysis/internal/market/sina"
)

// SinaIndexSource adapts the Sina quote client to DomesticIndexSource.
type SinaIndexSource struct {
	Client *sina.Client
}

func (s *SinaIndexSource) IndexQuotes(ctx context.Context, codes []string) ([]IndexRow, error) {
	quotes, err := s.Client.IndexQuotes(ctx, codes)
	if err != nil {
		return nil, err
	}
	rows := make([]IndexRow, 0, len(quotes))
	for _, q := range quotes {
		rows = append(rows, IndexRow{
			Code:      q.Code,
			Name:      q.Name,
			Current:   q.Current,
			Change:    q.Change,
			ChangePct: q.ChangePct,
			Open:      q.Open,
			High:      q.High,
			Low:       q.Low,
			PrevClose: q.PrevClose,
			Volume:    q.Volume,
			Amount:    q.Amount,
		})
	}
	return rows, nil
}

// yahooIndexSymbols maps the dotted international codes to Yahoo tickers.
var yahooIndexSymbols = map[string]string{
	".DJI":  "^DJI",
	".IXIC": "^IXIC",
	".INX":  "^GSPC",
}

// YahooQuoteSource serves international index quotes via the Yahoo quote
// API. The underlying client carries no context plumbing, so ctx only gates
// entry.
type YahooQuoteSource struct{}

func (YahooQuoteSource) USIndexQuote(ctx context.Context, code string) (IndexRow, error) {
	if err := ctx.Err(); err != nil {
		return IndexRow{}, err
	}
	symbol, ok := yahooIndexSymbols[code]
	if !ok {
		return IndexRow{}, fmt.Errorf("no yahoo symbol for %q", code)
	}
	q, err := quote.Get(symbol)
	if err != nil {
		return IndexRow{}, fmt.Errorf("yahoo quote %s: %w", symbol, err)
	}
	if q == nil {
		return IndexRow{}, fmt.Errorf("yahoo quote %s: empty response", symbol)
	}
	return IndexRow{
		Code:      code,
		Name:      q.ShortName,
		Current:   q.RegularMarketPrice,
		Change:    q.RegularMarketChange,
		ChangePct: q.RegularMarketChangePercent,
		Open:      q.RegularMarketOpen,
		High:      q.RegularMarketDayHigh,
		Low:       q.RegularMarketDayLow,
		PrevClose: q.RegularMarketPreviousClose,
		Volume:    float64(q.RegularMarketVolume),
	}, nil
}
