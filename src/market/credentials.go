package market

import (
	"context"
	"time"

	"market-dashboard/src/auth"
	"market-dashboard/src/data_source/fyers"
	"market-dashboard/src/helpers"
	"market-dashboard/src/logger"
)

// Refresher is the part of auth.Refresher the market services need.
type Refresher interface {
	Refresh(ctx context.Context) bool
}

// Credentials resolves a usable access token for upstream calls.
type Credentials struct {
	Store     *auth.TokenStore
	Refresher Refresher
	AppID     string
	Lead      time.Duration
	Logger    *logger.Logger
}

func NewCredentials(store *auth.TokenStore, refresher Refresher, appID string, lead time.Duration, log *logger.Logger) *Credentials {
	return &Credentials{
		Store:     store,
		Refresher: refresher,
		AppID:     appID,
		Lead:      lead,
		Logger:    log,
	}
}

// -----------------------------------------------------------------------------

// EnsureAvailable returns the access token to use, "" when there is none.
// With allowRefresh set a missing token is refreshed first and a token
// expiring within Lead is refreshed proactively.
func (c *Credentials) EnsureAvailable(ctx context.Context, allowRefresh bool) string {
	if c.AppID == "" {
		return ""
	}

	if allowRefresh && c.Store.HasRefreshToken() {
		if !c.Store.IsLoggedIn() {
			c.Logger.Info("No access token held, refreshing")
			c.Refresher.Refresh(ctx)
		} else if c.Store.AccessTokenExpiresSoon(c.Lead) {
			c.Logger.Info("Access token expires within %s, refreshing", c.Lead)
			c.Refresher.Refresh(ctx)
		}
	}

	return c.Store.AccessToken()
}

// RefreshIfExpiring runs only the proactive part of EnsureAvailable.
func (c *Credentials) RefreshIfExpiring(ctx context.Context) bool {
	if !c.Store.HasRefreshToken() {
		return false
	}
	if c.Store.IsLoggedIn() && !c.Store.AccessTokenExpiresSoon(c.Lead) {
		return false
	}
	return c.Refresher.Refresh(ctx)
}

// -----------------------------------------------------------------------------

// UpstreamCall is one upstream request made with the given token.
type UpstreamCall func(ctx context.Context, token string) (*fyers.Envelope, error)

// WithAuthRetry runs call. When it fails in an auth-shaped way and a refresh
// succeeds, the call is repeated once with the new token.
func (c *Credentials) WithAuthRetry(ctx context.Context, token string, call UpstreamCall) (*fyers.Envelope, error) {
	const maxAttempts = 2

	var (
		env *fyers.Envelope
		err error
	)
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		env, err = call(ctx, token)
		reason := FailureReason(env, err)
		if reason == "" {
			return env, nil
		}
		if attempt == maxAttempts || !helpers.IsAuthError(reason) {
			break
		}

		c.Logger.Warning("Upstream call failed with auth error (%s), refreshing", reason)
		if !c.Refresher.Refresh(ctx) {
			break
		}
		token = c.Store.AccessToken()
	}
	return env, err
}

// FailureReason describes why an upstream call failed, "" on success.
func FailureReason(env *fyers.Envelope, err error) string {
	switch {
	case err != nil:
		return err.Error()
	case env == nil:
		return "empty upstream response"
	case env.Failed():
		return env.ErrorMessage()
	}
	return ""
}
