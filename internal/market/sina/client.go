// Package sina is a client for the Sina realtime quote endpoint
// (hq.sinajs.cn). Payloads are GBK-encoded javascript assignments, one per
// requested code.
package sina

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"golang.org/x/text/encoding/simplifiedchinese"
)

// HTTPClient describes an HTTP client.
//
//go:generate mockgen -package=sina_test -destination=mock_http_client_test.go -source=client.go HTTPClient
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

const defaultBaseURL = "https://hq.sinajs.cn"

// Quote is one row of the index quote table.
type Quote struct {
	Code      string
	Name      string
	Current   float64
	Change    float64
	ChangePct float64
	Open      float64
	High      float64
	Low       float64
	PrevClose float64
	Volume    float64
	Amount    float64
}

// Client fetches quotes from the Sina hq API.
type Client struct {
	baseURL    string
	httpClient HTTPClient
	header     http.Header
}

// ClientOption is a configuration option for the Sina client.
type ClientOption func(*Client)

// WithBaseURL sets the base URL for the API.
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = strings.TrimSuffix(baseURL, "/")
	}
}

// WithHTTPClient sets the HTTP client for the API.
func WithHTTPClient(httpClient HTTPClient) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithHeader adds headers to be sent with each request.
func WithHeader(header http.Header) ClientOption {
	return func(c *Client) {
		for key, values := range header {
			for _, value := range values {
				c.header.Add(key, value)
			}
		}
	}
}

// NewClient creates a Sina quote client. The endpoint rejects requests
// without a finance.sina.com.cn referer, so one is always sent.
func NewClient(options ...ClientOption) (*Client, error) {
	client := &Client{
		baseURL:    defaultBaseURL,
		httpClient: http.DefaultClient,
		header:     http.Header{},
	}
	client.header.Set("Referer", "https://finance.sina.com.cn")
	for _, option := range options {
		option(client)
	}
	return client, nil
}

// IndexQuotes fetches the quote table for the given codes (e.g. "sh000001")
// in one bulk request. Codes the endpoint does not recognize come back as
// empty rows and are skipped.
func (c *Client) IndexQuotes(ctx context.Context, codes []string) ([]Quote, error) {
	if len(codes) == 0 {
		return nil, nil
	}
	url := fmt.Sprintf("%s/list=%s", c.baseURL, strings.Join(codes, ","))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header = c.header.Clone()

	res, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("performing request: %w", err)
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("GET %s -> %d", url, res.StatusCode)
	}

	gbk, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}
	body, err := simplifiedchinese.GBK.NewDecoder().Bytes(gbk)
	if err != nil {
		return nil, fmt.Errorf("decoding GBK payload: %w", err)
	}

	return parseQuotes(string(body)), nil
}

// parseQuotes splits lines of the form
//
//	var hq_str_sh000001="上证指数,3270.1,3260.5,3281.2,3290.0,3255.0,...";
//
// Full-form index rows carry: name, open, prev_close, current, high, low,
// ..., volume at 8, amount at 9.
func parseQuotes(body string) []Quote {
	var out []Quote
	for _, line := range strings.Split(body, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		eq := strings.Index(line, "=")
		if eq < 0 || !strings.HasPrefix(line, "var hq_str_") {
			continue
		}
		code := strings.TrimPrefix(line[:eq], "var hq_str_")
		content := strings.Trim(strings.TrimSuffix(line[eq+1:], ";"), `"`)
		if content == "" {
			continue
		}
		fields := strings.Split(content, ",")
		if len(fields) < 10 {
			continue
		}
		q := Quote{
			Code:      code,
			Name:      fields[0],
			Open:      parseF(fields[1]),
			PrevClose: parseF(fields[2]),
			Current:   parseF(fields[3]),
			High:      parseF(fields[4]),
			Low:       parseF(fields[5]),
			Volume:    parseF(fields[8]),
			Amount:    parseF(fields[9]),
		}
		q.Change = q.Current - q.PrevClose
		if q.PrevClose > 0 {
			q.ChangePct = q.Change / q.PrevClose * 100
		}
		out = append(out, q)
	}
	return out
}

func parseF(s string) float64 {
	v, _ := strconv.ParseFloat(strings.TrimSpace(s), 64)
	return v
}
