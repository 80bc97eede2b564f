package fetcher

import (
	"context"
	"errors"
	"log"
	"time"
)

// Policy is a per-provider exponential backoff policy. The wait after
// attempt n is min(2^n * Base, Cap).
type Policy struct {
	MaxAttempts int
	Base        time.Duration
	Cap         time.Duration
}

// DefaultPolicy matches the slowest, least reliable source: 3 attempts,
// 1s base, 30s cap. Domestic sources use a tighter cap.
func DefaultPolicy() Policy {
	return Policy{MaxAttempts: 3, Base: time.Second, Cap: 30 * time.Second}
}

// DomesticPolicy caps backoff at 5s; domestic endpoints recover quickly or
// not at all.
func DomesticPolicy() Policy {
	return Policy{MaxAttempts: 3, Base: time.Second, Cap: 5 * time.Second}
}

// Do runs fn under the policy. Empty results are retried exactly like
// transport errors; format failures are terminal immediately, since a
// malformed identifier cannot succeed on a later attempt.
func (p Policy) Do(ctx context.Context, name string, fn func() error) error {
	attempts := p.MaxAttempts
	if attempts <= 0 {
		attempts = 3
	}
	base := p.Base
	if base <= 0 {
		base = time.Second
	}

	var last error
	for attempt := 1; attempt <= attempts; attempt++ {
		err := fn()
		if err == nil {
			return nil
		}
		last = err

		var f *Failure
		if errors.As(err, &f) && f.Reason == ReasonFormat {
			log.Printf("error: %s: %v", name, err)
			return err
		}

		if attempt < attempts {
			wait := p.wait(attempt, base)
			log.Printf("warning: %s attempt %d/%d failed, retrying in %s: %v", name, attempt, attempts, wait, err)
			t := time.NewTimer(wait)
			select {
			case <-ctx.Done():
				t.Stop()
				return ctx.Err()
			case <-t.C:
			}
		}
	}
	log.Printf("error: %s failed after %d attempts: %v", name, attempts, last)
	return last
}

func (p Policy) wait(attempt int, base time.Duration) time.Duration {
	d := base
	for i := 0; i < attempt; i++ {
		d *= 2
		if p.Cap > 0 && d >= p.Cap {
			return p.Cap
		}
	}
	return d
}
