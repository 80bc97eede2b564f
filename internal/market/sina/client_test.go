package sina_test

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
	gomock "go.uber.org/mock/gomock"
	"golang.org/x/text/encoding/simplifiedchinese"

	"github.com/kydchen/daily-stock-analysis/internal/market/sina"
)

func gbkBody(t *testing.T, s string) io.ReadCloser {
	t.Helper()
	raw, err := simplifiedchinese.GBK.NewEncoder().Bytes([]byte(s))
	require.NoError(t, err)
	return io.NopCloser(bytes.NewReader(raw))
}

func TestIndexQuotes(t *testing.T) {
	payload := `var hq_str_sh000001="上证指数,3260.000,3250.000,3270.500,3280.000,3240.000,0,0,289000000,356000000000,0,0";
var hq_str_sz399001="深证成指,10500.000,10600.000,10400.000,10550.000,10380.000,0,0,412000000,489000000000,0,0";
`

	ctrl := gomock.NewController(t)
	mockHTTP := NewMockHTTPClient(ctrl)
	mockHTTP.EXPECT().Do(gomock.Any()).DoAndReturn(func(req *http.Request) (*http.Response, error) {
		require.Equal(t, "https://hq.sinajs.cn/list=sh000001,sz399001", req.URL.String())
		require.Equal(t, "https://finance.sina.com.cn", req.Header.Get("Referer"))
		return &http.Response{StatusCode: http.StatusOK, Body: gbkBody(t, payload)}, nil
	})

	client, err := sina.NewClient(sina.WithHTTPClient(mockHTTP))
	require.NoError(t, err)

	quotes, err := client.IndexQuotes(context.Background(), []string{"sh000001", "sz399001"})
	require.NoError(t, err)
	require.Len(t, quotes, 2)

	sh := quotes[0]
	require.Equal(t, "sh000001", sh.Code)
	require.Equal(t, "上证指数", sh.Name)
	require.InDelta(t, 3270.5, sh.Current, 1e-9)
	require.InDelta(t, 3250.0, sh.PrevClose, 1e-9)
	require.InDelta(t, 20.5, sh.Change, 1e-9)
	require.InDelta(t, 20.5/3250.0*100, sh.ChangePct, 1e-9)
	require.InDelta(t, 289000000, sh.Volume, 1e-9)
	require.InDelta(t, 356000000000, sh.Amount, 1e-9)

	sz := quotes[1]
	require.Equal(t, "深证成指", sz.Name)
	require.InDelta(t, 10400.0-10600.0, sz.Change, 1e-9)
}

func TestIndexQuotesSkipsEmptyRows(t *testing.T) {
	payload := `var hq_str_sh000001="上证指数,3260.000,3250.000,3270.500,3280.000,3240.000,0,0,289000000,356000000000,0,0";
var hq_str_sh999999="";
`

	ctrl := gomock.NewController(t)
	mockHTTP := NewMockHTTPClient(ctrl)
	mockHTTP.EXPECT().Do(gomock.Any()).Return(&http.Response{
		StatusCode: http.StatusOK,
		Body:       gbkBody(t, payload),
	}, nil)

	client, err := sina.NewClient(sina.WithHTTPClient(mockHTTP))
	require.NoError(t, err)

	quotes, err := client.IndexQuotes(context.Background(), []string{"sh000001", "sh999999"})
	require.NoError(t, err)
	require.Len(t, quotes, 1)
	require.Equal(t, "sh000001", quotes[0].Code)
}

func TestIndexQuotesStatusError(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockHTTP := NewMockHTTPClient(ctrl)
	mockHTTP.EXPECT().Do(gomock.Any()).Return(&http.Response{
		StatusCode: http.StatusForbidden,
		Body:       io.NopCloser(bytes.NewReader(nil)),
	}, nil)

	client, err := sina.NewClient(sina.WithHTTPClient(mockHTTP))
	require.NoError(t, err)

	_, err = client.IndexQuotes(context.Background(), []string{"sh000001"})
	require.ErrorContains(t, err, "403")
}

func TestIndexQuotesNoCodes(t *testing.T) {
	client, err := sina.NewClient()
	require.NoError(t, err)

	quotes, err := client.IndexQuotes(context.Background(), nil)
	require.NoError(t, err)
	require.Empty(t, quotes)
}

func TestWithBaseURL(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockHTTP := NewMockHTTPClient(ctrl)
	mockHTTP.EXPECT().Do(gomock.Any()).DoAndReturn(func(req *http.Request) (*http.Response, error) {
		require.Equal(t, "https://example.com/list=sh000001", req.URL.String())
		return &http.Response{StatusCode: http.StatusOK, Body: gbkBody(t, "")}, nil
	})

	client, err := sina.NewClient(
		sina.WithHTTPClient(mockHTTP),
		sina.WithBaseURL("https://example.com/"),
	)
	require.NoError(t, err)

	_, err = client.IndexQuotes(context.Background(), []string{"sh000001"})
	require.NoError(t, err)
}
