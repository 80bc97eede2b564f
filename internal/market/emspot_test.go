package market

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/kydchen/daily-stock-analysis/internal/httpx"
)

func TestAShareSpotPaging(t *testing.T) {
	var pages []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		require.Equal(t, "m:0+t:6,m:0+t:80,m:1+t:2,m:1+t:23", q.Get("fs"))
		require.Equal(t, "f3,f6,f12,f14", q.Get("fields"))
		require.Equal(t, "2", q.Get("fltt"))
		pages = append(pages, q.Get("pn"))

		switch q.Get("pn") {
		case "1":
			fmt.Fprint(w, `{"data":{"total":3,"diff":[
				{"f3":2.5,"f6":123000000.0,"f12":"600519","f14":"贵州茅台"},
				{"f3":"-","f6":0,"f12":"600001","f14":"停牌股"}
			]}}`)
		default:
			fmt.Fprint(w, `{"data":{"total":3,"diff":[
				{"f3":-10.0,"f6":88000000.0,"f12":"300001","f14":"特锐德"}
			]}}`)
		}
	}))
	defer srv.Close()

	c := NewEMSpot(EMSpotConfig{URL: srv.URL, PageSize: 2}, httpx.New(5*time.Second))
	rows, err := c.AShareSpot(context.Background())
	require.NoError(t, err)
	require.Equal(t, []string{"1", "2"}, pages)

	// the dash-valued row is dropped
	require.Len(t, rows, 2)
	require.Equal(t, "600519", rows[0].Code)
	require.InDelta(t, 2.5, rows[0].ChangePct, 1e-9)
	require.InDelta(t, 123000000.0, rows[0].Amount, 1e-9)
	require.Equal(t, "特锐德", rows[1].Name)
}

func TestAShareSpotObjectDiff(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// older API revisions key diff by row number instead of an array
		fmt.Fprint(w, `{"data":{"total":1,"diff":{
			"0":{"f3":1.1,"f6":5000.0,"f12":"000001","f14":"平安银行"}
		}}}`)
	}))
	defer srv.Close()

	c := NewEMSpot(EMSpotConfig{URL: srv.URL}, httpx.New(5*time.Second))
	rows, err := c.AShareSpot(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Equal(t, "平安银行", rows[0].Name)
}

func TestHKIndexQuotes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "m:124,m:125,m:305", r.URL.Query().Get("fs"))
		fmt.Fprint(w, `{"data":{"total":2,"diff":[
			{"f2":17800.5,"f3":-1.2,"f4":-216.3,"f6":98000000000.0,"f12":"HSI","f14":"恒生指数","f15":17950.0,"f16":17750.0,"f17":17900.0,"f18":18016.8},
			{"f2":"-","f3":"-","f4":"-","f6":"-","f12":"HSCEI","f14":"国企指数","f15":"-","f16":"-","f17":"-","f18":"-"}
		]}}`)
	}))
	defer srv.Close()

	c := NewEMSpot(EMSpotConfig{URL: srv.URL}, httpx.New(5*time.Second))
	rows, err := c.HKIndexQuotes(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Equal(t, "恒生指数", rows[0].Name)
	require.InDelta(t, 17800.5, rows[0].Current, 1e-9)
	require.InDelta(t, -1.2, rows[0].ChangePct, 1e-9)
	require.InDelta(t, 18016.8, rows[0].PrevClose, 1e-9)
}

func TestSectorSpot(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "m:90+t:2", r.URL.Query().Get("fs"))
		fmt.Fprint(w, `{"data":{"total":2,"diff":[
			{"f3":3.4,"f12":"BK0475","f14":"银行"},
			{"f3":-2.1,"f12":"BK0428","f14":"电力设备"}
		]}}`)
	}))
	defer srv.Close()

	c := NewEMSpot(EMSpotConfig{URL: srv.URL}, httpx.New(5*time.Second))
	rows, err := c.SectorSpot(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 2)
	require.Equal(t, "银行", rows[0].Name)
	require.InDelta(t, -2.1, rows[1].ChangePct, 1e-9)
}

func TestSpotHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := NewEMSpot(EMSpotConfig{URL: srv.URL}, httpx.New(5*time.Second))
	_, err := c.AShareSpot(context.Background())
	require.ErrorContains(t, err, "502")
}
