package market

import (
	"context"
	"time"

	"market-dashboard/src/data_source/fyers"
	"market-dashboard/src/helpers"
	"market-dashboard/src/logger"
	"market-dashboard/src/models"
	"market-dashboard/src/normalize"
)

// maxFetchAttempts is the initial fetch plus one retry after a refresh.
const maxFetchAttempts = 2

// QuoteFetcher fetches a batch of quotes and records per-symbol status.
type QuoteFetcher struct {
	Client      *fyers.Client
	Credentials *Credentials
	State       *State
	Logger      *logger.Logger
	now         func() time.Time
}

func NewQuoteFetcher(client *fyers.Client, creds *Credentials, state *State, log *logger.Logger) *QuoteFetcher {
	return &QuoteFetcher{
		Client:      client,
		Credentials: creds,
		State:       state,
		Logger:      log,
		now:         time.Now,
	}
}

// -----------------------------------------------------------------------------

// Fetch never fails outward. Every failure ends as an empty result plus
// status registry entries.
func (f *QuoteFetcher) Fetch(ctx context.Context, symbols []string) []models.MQuoteSnapshot {
	empty := []models.MQuoteSnapshot{}
	if len(symbols) == 0 {
		return empty
	}

	for attempt := 1; attempt <= maxFetchAttempts; attempt++ {
		retry := attempt > 1

		token := f.Credentials.EnsureAvailable(ctx, !retry)
		if token == "" {
			f.Logger.Warning("FYERS_APP_ID or access token not set, cannot fetch quotes")
			f.State.Statuses.SetAll(symbols, models.StatusNoKey, MessageNoKey)
			return empty
		}

		env, err := f.Client.Quotes(ctx, token, symbols)
		reason := FailureReason(env, err)
		if reason == "" {
			return f.collect(env, symbols)
		}

		if !retry && helpers.IsAuthError(reason) {
			f.Logger.Warning("Quote fetch rejected (%s), refreshing and retrying", reason)
			if f.Credentials.Refresher.Refresh(ctx) {
				continue
			}
		}

		f.Logger.Error("Quote fetch failed: %s", reason)
		f.State.Statuses.SetAll(symbols, models.StatusError, reason)
		return empty
	}
	return empty
}

// -----------------------------------------------------------------------------

func (f *QuoteFetcher) collect(env *fyers.Envelope, symbols []string) []models.MQuoteSnapshot {
	out := normalize.Quotes(env.Items(), f.now())

	seen := make(map[string]struct{}, len(out))
	for _, q := range out {
		seen[q.Symbol] = struct{}{}
		f.State.Statuses.Set(q.Symbol, models.StatusOK, MessageQuoteAvailable)
	}
	for _, symbol := range symbols {
		if _, ok := seen[symbol]; !ok {
			f.State.Statuses.Set(symbol, models.StatusNoData, MessageNoQuoteData)
		}
	}

	f.Logger.Debug("Fetched %d/%d quotes", len(out), len(symbols))
	return out
}
