// Package fyerstest runs a fake FYERS API for tests.
package fyerstest

import (
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"market-dashboard/src/data_source/fyers"
	"market-dashboard/src/logger"
	"market-dashboard/src/models"
	"market-dashboard/src/network"
)

const (
	AppID       = "APP-100"
	SecretID    = "secret"
	RedirectURI = "http://127.0.0.1:3000/auth/callback"
)

// Upstream is an httptest server with per-path handlers and call counters.
type Upstream struct {
	*httptest.Server

	mu       sync.Mutex
	handlers map[string]http.HandlerFunc
	calls    map[string]int
	bodies   map[string][]string
}

func New(t testing.TB) *Upstream {
	u := &Upstream{
		handlers: make(map[string]http.HandlerFunc),
		calls:    make(map[string]int),
		bodies:   make(map[string][]string),
	}
	u.Server = httptest.NewServer(http.HandlerFunc(u.serve))
	t.Cleanup(u.Close)
	return u
}

// -----------------------------------------------------------------------------

func (u *Upstream) serve(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)

	u.mu.Lock()
	u.calls[r.URL.Path]++
	u.bodies[r.URL.Path] = append(u.bodies[r.URL.Path], string(body))
	h := u.handlers[r.URL.Path]
	u.mu.Unlock()

	if h == nil {
		http.Error(w, `{"s":"error","message":"not found"}`, http.StatusNotFound)
		return
	}
	h(w, r)
}

// Handle installs h for path, replacing any previous handler.
func (u *Upstream) Handle(path string, h http.HandlerFunc) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.handlers[path] = h
}

// JSON answers path with a fixed status and body.
func (u *Upstream) JSON(path string, status int, body string) {
	u.Handle(path, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	})
}

func (u *Upstream) Calls(path string) int {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.calls[path]
}

// Bodies returns the request bodies received on path.
func (u *Upstream) Bodies(path string) []string {
	u.mu.Lock()
	defer u.mu.Unlock()
	return append([]string(nil), u.bodies[path]...)
}

// -----------------------------------------------------------------------------

// Config points every host at the fake server.
func (u *Upstream) Config() models.MFyersConfig {
	return models.MFyersConfig{
		AppID:           AppID,
		SecretID:        SecretID,
		DataHost:        u.URL,
		AuthHost:        u.URL,
		TokenHost:       u.URL,
		RedirectURI:     RedirectURI,
		UseRefreshToken: true,
	}
}

// Client builds a client for cfg without transport retries.
func (u *Upstream) Client(cfg models.MFyersConfig) *fyers.Client {
	mc := &models.MConfig{LogLevel: "ERROR"}
	mc.Network.RequestTimeout = 5
	mc.Network.UserAgent = "fyerstest"
	return fyers.NewClient(cfg, network.NewAsyncNetworkManager(mc, Logger()))
}

// Logger is a quiet logger for tests.
func Logger() *logger.Logger {
	return logger.NewLogger(&models.MConfig{LogLevel: "ERROR"}, "test")
}

// -----------------------------------------------------------------------------

// Token builds an unsigned JWT-shaped token expiring at exp.
func Token(exp time.Time) string {
	enc := base64.RawURLEncoding
	header := enc.EncodeToString([]byte(`{"alg":"HS256","typ":"JWT"}`))
	payload := enc.EncodeToString([]byte(fmt.Sprintf(`{"exp":%d,"sub":"user"}`, exp.Unix())))
	return header + "." + payload + ".sig"
}
