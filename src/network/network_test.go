package network

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"

	"market-dashboard/src/logger"
	"market-dashboard/src/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newManager(retries int) *AsyncNetworkManager {
	cfg := &models.MConfig{LogLevel: "ERROR"}
	cfg.Network.RequestTimeout = 5
	cfg.Network.MaxRetries = retries
	cfg.Network.UserAgent = "network-test"
	return NewAsyncNetworkManager(cfg, logger.NewLogger(cfg, "test"))
}

func unavailable(calls *atomic.Int32) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		io.Copy(io.Discard, r.Body)
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte(`{"s":"error","message":"busy"}`))
	}))
}

func TestGetRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := unavailable(&calls)
	defer srv.Close()

	resp, err := newManager(1).Get(context.Background(), srv.URL+"/data/quotes", url.Values{"symbols": {"NSE:NTPC-EQ"}}, nil)
	require.NoError(t, err)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	assert.Equal(t, int32(2), calls.Load())
}

func TestPostJSONIsNeverReplayed(t *testing.T) {
	var calls atomic.Int32
	srv := unavailable(&calls)
	defer srv.Close()

	body := map[string]string{"grant_type": "refresh_token", "refresh_token": "r1"}
	resp, err := newManager(3).PostJSON(context.Background(), srv.URL+"/api/v3/validate-refresh-token", body, nil)
	require.NoError(t, err)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	assert.Equal(t, int32(1), calls.Load())
}
