package network

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"market-dashboard/src/helpers"
	"market-dashboard/src/logger"
	"market-dashboard/src/models"

	"github.com/dustin/go-humanize"
)

// Response is a raw upstream reply. Non-2xx statuses are returned, not errored,
// because the brokerage puts its error message in the body.
type Response struct {
	StatusCode int
	Body       []byte
}

type AsyncNetworkManager struct {
	Config *models.MConfig
	Client *http.Client
	Logger *logger.Logger
}

// -----------------------------------------------------------------------------

func NewAsyncNetworkManager(cfg *models.MConfig, log *logger.Logger) *AsyncNetworkManager {
	return &AsyncNetworkManager{
		Config: cfg,
		Logger: log,
		Client: &http.Client{
			Timeout: time.Duration(cfg.Network.RequestTimeout) * time.Second,
		},
	}
}

// -----------------------------------------------------------------------------

// Get performs a GET request with query params and headers.
func (nm *AsyncNetworkManager) Get(ctx context.Context, urlStr string, params url.Values, headers map[string]string) (*Response, error) {
	reqURL, err := url.Parse(urlStr)
	if err != nil {
		return nil, err
	}
	if len(params) > 0 {
		q := reqURL.Query()
		for k, vs := range params {
			for _, v := range vs {
				q.Add(k, v)
			}
		}
		reqURL.RawQuery = q.Encode()
	}
	return nm.do(ctx, http.MethodGet, reqURL.String(), nil, headers, nm.Config.Network.MaxRetries+1)
}

// -----------------------------------------------------------------------------

// PostJSON sends body encoded as JSON exactly once. Token exchanges post
// single-use codes, so a replay after a lost reply would be rejected.
func (nm *AsyncNetworkManager) PostJSON(ctx context.Context, urlStr string, body interface{}, headers map[string]string) (*Response, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request body: %w", err)
	}
	h := map[string]string{"Content-Type": "application/json"}
	for k, v := range headers {
		h[k] = v
	}
	return nm.do(ctx, http.MethodPost, urlStr, payload, h, 1)
}

// -----------------------------------------------------------------------------

var errRetryableStatus = errors.New("retryable upstream status")

// do retries transport failures, 429 and 5xx with exponential backoff, up to
// attempts tries in total.
func (nm *AsyncNetworkManager) do(ctx context.Context, method, urlStr string, payload []byte, headers map[string]string, attempts int) (*Response, error) {
	var last *Response

	resp, err := helpers.RetryWithBackoff(ctx, attempts, 500*time.Millisecond,
		func(err error) bool { return ctx.Err() == nil },
		func() (*Response, error) {
			var body io.Reader
			if payload != nil {
				body = bytes.NewReader(payload)
			}
			req, err := http.NewRequestWithContext(ctx, method, urlStr, body)
			if err != nil {
				return nil, err
			}
			req.Header.Set("Accept", "application/json")
			req.Header.Set("User-Agent", nm.Config.Network.UserAgent)
			for k, v := range headers {
				req.Header.Set(k, v)
			}

			started := time.Now()
			httpResp, err := nm.Client.Do(req)
			if err != nil {
				nm.Logger.Info("%s %s failed: %v", method, req.URL.Path, err)
				return nil, err
			}
			defer httpResp.Body.Close()

			data, err := io.ReadAll(httpResp.Body)
			if err != nil {
				return nil, err
			}
			nm.Logger.Debug("%s %s -> %d (%s, %s)", method, req.URL.Path, httpResp.StatusCode,
				humanize.Bytes(uint64(len(data))), time.Since(started).Round(time.Millisecond))

			r := &Response{StatusCode: httpResp.StatusCode, Body: data}
			if httpResp.StatusCode == http.StatusTooManyRequests || httpResp.StatusCode >= 500 {
				last = r
				return nil, fmt.Errorf("%w: %d", errRetryableStatus, httpResp.StatusCode)
			}
			return r, nil
		})

	if err != nil && errors.Is(err, errRetryableStatus) && last != nil {
		return last, nil
	}
	return resp, err
}
