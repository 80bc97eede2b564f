package tencent

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/kydchen/daily-stock-analysis/internal/fetcher"
	"github.com/kydchen/daily-stock-analysis/internal/httpx"
)

func testPolicy() fetcher.Policy {
	return fetcher.Policy{MaxAttempts: 2, Base: time.Millisecond, Cap: 2 * time.Millisecond}
}

const fqklineBody = `{"code":0,"msg":"","data":{"sh600519":{"qfqday":[
["2024-01-02","1695.000","1685.010","1702.000","1680.000","25310.000"],
["2024-01-03","1683.000","1700.500","1705.000","1676.000","30100.000"],
["2024-01-04","1701.000","1530.459","1703.000","1520.000","41000.000"]
],"qt":{}}}}`

func TestFetch_ComputesOmittedColumns(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Contains(t, r.URL.RawQuery, "param=sh600519,day,2024-01-01,2024-01-31,640,qfq")
		fmt.Fprint(w, fqklineBody)
	}))
	defer srv.Close()

	f := New(Config{URL: srv.URL, Retry: testPolicy()}, httpx.New(5*time.Second))
	res, err := f.Fetch(context.Background(), "600519", "2024-01-01", "2024-01-31")
	require.NoError(t, err)

	require.Equal(t, "Tencent", res.Provider)
	require.Equal(t, "sh600519", res.Symbol)
	require.Len(t, res.Bars, 3)

	// The source has no pct_chg or amount; both are derived.
	require.Equal(t, 0.0, res.Bars[0].PctChg)
	require.Equal(t, 0.92, res.Bars[1].PctChg) // (1700.50-1685.01)/1685.01*100
	require.Equal(t, -10.0, res.Bars[2].PctChg)
	require.Equal(t, 25310.0*1685.01, res.Bars[0].Amount)
}

func TestFetch_DayRowsWhenNoAdjustedSeries(t *testing.T) {
	body := `{"code":0,"msg":"","data":{"sz000001":{"day":[
["2024-01-02","9.10","9.20","9.30","9.00","100000.000"]
]}}}`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, body)
	}))
	defer srv.Close()

	f := New(Config{URL: srv.URL, Retry: testPolicy()}, httpx.New(5*time.Second))
	res, err := f.Fetch(context.Background(), "000001", "2024-01-01", "2024-01-31")
	require.NoError(t, err)
	require.Len(t, res.Bars, 1)
	require.Equal(t, 9.20, res.Bars[0].Close)
}

func TestFetch_MissingSymbolIsEmpty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"code":0,"msg":"","data":{}}`)
	}))
	defer srv.Close()

	f := New(Config{URL: srv.URL, Retry: testPolicy()}, httpx.New(5*time.Second))
	_, err := f.Fetch(context.Background(), "600519", "2024-01-01", "2024-01-31")

	var failure *fetcher.Failure
	require.ErrorAs(t, err, &failure)
	require.Equal(t, fetcher.ReasonEmpty, failure.Reason)
}

func TestFetch_APIErrorIsTransport(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"code":-1,"msg":"param error","data":{}}`)
	}))
	defer srv.Close()

	f := New(Config{URL: srv.URL, Retry: testPolicy()}, httpx.New(5*time.Second))
	_, err := f.Fetch(context.Background(), "600519", "2024-01-01", "2024-01-31")

	var failure *fetcher.Failure
	require.ErrorAs(t, err, &failure)
	require.Equal(t, fetcher.ReasonTransport, failure.Reason)
}
