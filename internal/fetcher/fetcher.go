// Package fetcher defines the normalized price-history schema shared by all
// data sources and the priority fallback chain that drives them.
package fetcher

import (
	"context"
	"fmt"
	"math"
)

// Columns is the canonical column set every normalized series conforms to,
// independent of source.
var Columns = []string{"code", "date", "open", "high", "low", "close", "volume", "amount", "pct_chg"}

// Bar is one row of a normalized price series.
type Bar struct {
	Code   string  `json:"code"`
	Date   string  `json:"date"`
	Open   float64 `json:"open"`
	High   float64 `json:"high"`
	Low    float64 `json:"low"`
	Close  float64 `json:"close"`
	Volume float64 `json:"volume"`
	Amount float64 `json:"amount"`
	PctChg float64 `json:"pct_chg"`
}

// Result is a normalized price series plus its provenance. It is built once
// per successful fetch and not mutated afterwards.
type Result struct {
	Provider string `json:"provider"`
	Symbol   string `json:"symbol"` // provider-native ticker actually requested
	Code     string `json:"code"`   // canonical identifier
	Bars     []Bar  `json:"bars"`
}

// Fetcher is a single data source. Fetch returns the full normalized series
// for the inclusive ISO date range, or a *Failure describing why this source
// could not serve it.
type Fetcher interface {
	Name() string
	Priority() int
	Fetch(ctx context.Context, code, start, end string) (*Result, error)
}

// Reason tags why a fetch attempt failed, so retry policy can branch on the
// kind of failure instead of on error identity.
type Reason string

const (
	// ReasonEmpty: the source answered but held no rows for the range.
	ReasonEmpty Reason = "empty"
	// ReasonTransport: network error, bad status, or undecodable payload.
	ReasonTransport Reason = "transport"
	// ReasonFormat: the identifier cannot be rendered for this source.
	ReasonFormat Reason = "format"
)

// Failure is a single provider's fetch failure.
type Failure struct {
	Provider string
	Reason   Reason
	Err      error
}

func (f *Failure) Error() string {
	if f.Err != nil {
		return fmt.Sprintf("%s: %s: %v", f.Provider, f.Reason, f.Err)
	}
	return fmt.Sprintf("%s: %s", f.Provider, f.Reason)
}

func (f *Failure) Unwrap() error { return f.Err }

// Fail builds a tagged failure.
func Fail(provider string, reason Reason, err error) *Failure {
	return &Failure{Provider: provider, Reason: reason, Err: err}
}

// RawSeries is what a provider parsed out of its native payload, before
// normalization. The Has flags record which optional columns the source
// actually supplied; a source that omits them gets the column computed.
type RawSeries struct {
	Bars      []Bar
	HasPctChg bool
	HasAmount bool
}

// Normalize turns a raw series into canonical form: the canonical code is
// attached to every row, pct_chg is derived from consecutive closes when the
// source omits it (first row forced to 0, rounded to 2 decimals), amount
// defaults to volume*close when omitted, and every other column keeps its
// zero value. The output always carries exactly the canonical column set.
func Normalize(raw RawSeries, code string) []Bar {
	out := make([]Bar, len(raw.Bars))
	copy(out, raw.Bars)
	for i := range out {
		out[i].Code = code
		if !raw.HasAmount && out[i].Amount == 0 {
			out[i].Amount = out[i].Volume * out[i].Close
		}
		if !raw.HasPctChg {
			if i == 0 {
				out[i].PctChg = 0
				continue
			}
			prev := out[i-1].Close
			if prev == 0 {
				out[i].PctChg = 0
				continue
			}
			out[i].PctChg = round2((out[i].Close - prev) / prev * 100)
		}
	}
	return out
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }
