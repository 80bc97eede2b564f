package fetcher

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
)

// ErrAllFailed reports that every registered fetcher failed for the
// requested instrument and range.
var ErrAllFailed = errors.New("all data sources failed")

// Registry drives the priority fallback chain: sources are tried strictly in
// ascending priority order, never concurrently, and the first success wins.
// A lower-trust source is only consulted after every higher-trust source has
// exhausted its own internal retries.
type Registry struct {
	fetchers []Fetcher
}

// NewRegistry orders the given fetchers by priority. Equal priorities keep
// their registration order.
func NewRegistry(fetchers ...Fetcher) *Registry {
	fs := make([]Fetcher, len(fetchers))
	copy(fs, fetchers)
	sort.SliceStable(fs, func(i, j int) bool { return fs[i].Priority() < fs[j].Priority() })
	return &Registry{fetchers: fs}
}

// Fetchers returns the chain in the order it will be tried.
func (r *Registry) Fetchers() []Fetcher {
	out := make([]Fetcher, len(r.fetchers))
	copy(out, r.fetchers)
	return out
}

// Fetch returns the first successful result in priority order. Each fetcher
// is invoked at most once; its failure is logged and the next source is
// tried. Only exhausting the whole chain yields ErrAllFailed.
func (r *Registry) Fetch(ctx context.Context, code, start, end string) (*Result, error) {
	if len(r.fetchers) == 0 {
		return nil, fmt.Errorf("%w: no fetchers registered", ErrAllFailed)
	}
	var errs []error
	for _, f := range r.fetchers {
		res, err := f.Fetch(ctx, code, start, end)
		if err == nil {
			return res, nil
		}
		log.Printf("warning: %s failed for %s, trying next source: %v", f.Name(), code, err)
		errs = append(errs, fmt.Errorf("%s: %w", f.Name(), err))
	}
	return nil, fmt.Errorf("%w for %s: %v", ErrAllFailed, code, errors.Join(errs...))
}
