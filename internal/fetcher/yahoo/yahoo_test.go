package yahoo

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/kydchen/daily-stock-analysis/internal/fetcher"
)

func TestFetch_UntranslatableCodeFailsFast(t *testing.T) {
	f := New(Config{Retry: fetcher.Policy{MaxAttempts: 3, Base: time.Millisecond}})
	_, err := f.Fetch(context.Background(), "hkXYZ", "2024-01-01", "2024-01-31")

	var failure *fetcher.Failure
	require.ErrorAs(t, err, &failure)
	require.Equal(t, fetcher.ReasonFormat, failure.Reason)
}

func TestFetch_BadDateIsFormat(t *testing.T) {
	f := New(Config{})
	_, err := f.Fetch(context.Background(), "AAPL", "Jan 1 2024", "2024-01-31")

	var failure *fetcher.Failure
	require.ErrorAs(t, err, &failure)
	require.Equal(t, fetcher.ReasonFormat, failure.Reason)
}

func TestNew_Defaults(t *testing.T) {
	f := New(Config{})
	require.Equal(t, "Yahoo", f.Name())
	require.Equal(t, 3, f.Priority())
}
