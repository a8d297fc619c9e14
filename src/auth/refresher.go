package auth

import (
	"context"

	"market-dashboard/src/data_source/fyers"
	"market-dashboard/src/logger"
	"market-dashboard/src/models"

	"github.com/dustin/go-humanize"
	"golang.org/x/sync/singleflight"
)

// Refresher exchanges the held refresh token for a new access token.
// Concurrent calls share one in-flight upstream exchange.
type Refresher struct {
	Store     *TokenStore
	Client    *fyers.Client
	Config    models.MFyersConfig
	Persister TokenPersister
	Logger    *logger.Logger

	group singleflight.Group
}

// -----------------------------------------------------------------------------

// NewRefresher wires a refresher. persister may be nil.
func NewRefresher(store *TokenStore, client *fyers.Client, cfg models.MFyersConfig, persister TokenPersister, log *logger.Logger) *Refresher {
	return &Refresher{
		Store:     store,
		Client:    client,
		Config:    cfg,
		Persister: persister,
		Logger:    log,
	}
}

// Enabled reports whether the refresh-token flow is switched on.
func (r *Refresher) Enabled() bool {
	return r.Config.UseRefreshToken
}

// -----------------------------------------------------------------------------

// Refresh returns true when a new access token was stored. Failures are
// logged and leave the store unchanged.
func (r *Refresher) Refresh(ctx context.Context) bool {
	// The shared exchange must outlive any single caller's context.
	shared := context.WithoutCancel(ctx)
	ch := r.group.DoChan("refresh", func() (interface{}, error) {
		return r.refresh(shared), nil
	})

	select {
	case res := <-ch:
		ok, _ := res.Val.(bool)
		return ok
	case <-ctx.Done():
		return false
	}
}

// -----------------------------------------------------------------------------

func (r *Refresher) refresh(ctx context.Context) bool {
	if !r.Enabled() {
		r.Logger.Debug("Refresh skipped: refresh-token flow disabled")
		return false
	}
	if r.Config.AppID == "" || r.Config.SecretID == "" {
		r.Logger.Warning("Refresh skipped: FYERS_APP_ID or FYERS_SECRET_ID not set")
		return false
	}
	refreshToken := r.Store.RefreshToken()
	if refreshToken == "" {
		r.Logger.Warning("Refresh skipped: no refresh token held")
		return false
	}

	res, err := r.Client.RefreshAccessToken(ctx, refreshToken)
	if err != nil {
		r.Logger.Error("Token refresh failed: %v", err)
		return false
	}
	if !res.Envelope.OK() || res.AccessToken == "" {
		r.Logger.Error("Token refresh rejected: %s", res.Envelope.ErrorMessage())
		return false
	}

	pair := models.MTokenPair{AccessToken: res.AccessToken, RefreshToken: res.RefreshToken}
	r.Store.SetTokens(pair)

	if expiry, ok := r.Store.AccessTokenExpiry(); ok {
		r.Logger.Info("Access token refreshed, expires %s", humanize.Time(expiry))
	} else {
		r.Logger.Info("Access token refreshed (no expiry claim)")
	}

	if r.Persister != nil {
		if err := r.Persister.Persist(pair); err != nil {
			r.Logger.Error("Failed to persist refreshed tokens: %v", err)
		}
	}
	return true
}
