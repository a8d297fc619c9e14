package market

import (
	"testing"
	"time"

	"market-dashboard/src/auth"
	"market-dashboard/src/data_source/fyers"
	"market-dashboard/src/data_source/fyers/fyerstest"
	"market-dashboard/src/models"
)

const (
	quotesPath  = "/data/quotes"
	depthPath   = "/data/depth"
	historyPath = "/data/history"
	refreshPath = "/api/v3/validate-refresh-token"

	ntpc = "NSE:NTPC-EQ"
	nhpc = "NSE:NHPC-EQ"
)

type fixture struct {
	up        *fyerstest.Upstream
	client    *fyers.Client
	state     *State
	tokens    *auth.TokenStore
	refresher *auth.Refresher
	creds     *Credentials
	fetcher   *QuoteFetcher
	companies *Companies
}

func newFixture(t *testing.T, pair models.MTokenPair) *fixture {
	up := fyerstest.New(t)
	cfg := up.Config()
	client := up.Client(cfg)
	log := fyerstest.Logger()

	tokens := auth.NewTokenStore(pair)
	refresher := auth.NewRefresher(tokens, client, cfg, nil, log)
	creds := NewCredentials(tokens, refresher, cfg.AppID, 5*time.Minute, log)
	state := NewState()

	return &fixture{
		up:        up,
		client:    client,
		state:     state,
		tokens:    tokens,
		refresher: refresher,
		creds:     creds,
		fetcher:   NewQuoteFetcher(client, creds, state, log),
		companies: NewCompanies(nil),
	}
}

func (f *fixture) detailService() *DetailService {
	return NewDetailService(f.client, f.creds, f.state, f.companies, time.UTC, fyerstest.Logger())
}

func ptr(v float64) *float64 { return &v }
