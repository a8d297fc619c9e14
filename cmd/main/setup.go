package main

import (
	"time"

	"market-dashboard/src/auth"
	"market-dashboard/src/config"
	"market-dashboard/src/data_source/fyers"
	"market-dashboard/src/grpc_control"
	"market-dashboard/src/logger"
	"market-dashboard/src/market"
	"market-dashboard/src/network"
	"market-dashboard/src/server"
	"market-dashboard/src/utils"
)

// application holds every long-lived component of the process.
type application struct {
	Config    *config.Config
	Logger    *logger.Logger
	State     *market.State
	Companies *market.Companies
	Tokens    *auth.TokenStore
	Refresher *auth.Refresher
	Sessions  *utils.MarketScheduler
	Poller    *market.PollingScheduler
	Watchdog  *market.TokenWatchdog
	Server    *server.DashboardServer
	Control   *grpc_control.ControlService
}

// -----------------------------------------------------------------------------

// setupTokens builds the token store, preferring tokens persisted by an
// earlier run over the environment.
func setupTokens(conf *config.Config, appLogger *logger.Logger) (*auth.TokenStore, auth.TokenPersister) {
	store := auth.NewTokenStore(conf.Fyers.Tokens())
	if !conf.Fyers.PersistTokens {
		return store, nil
	}

	tokenFile := auth.NewTokenFile(conf.Fyers.EnvFile)
	if pair, err := tokenFile.Load(); err == nil {
		store.SetTokens(pair)
	}
	appLogger.Info("Refreshed tokens will be persisted to %s", conf.Fyers.EnvFile)
	return store, tokenFile
}

// -----------------------------------------------------------------------------

// setupApplication wires the components. Nothing is started here.
func setupApplication(conf *config.Config, appLogger *logger.Logger) *application {
	cfg := conf.MConfig

	networkManager := network.NewAsyncNetworkManager(cfg, logger.NewLogger(cfg, "NetworkManager"))
	client := fyers.NewClient(cfg.Fyers, networkManager)

	authLogger := logger.NewLogger(cfg, "Auth")
	tokens, persister := setupTokens(conf, authLogger)
	refresher := auth.NewRefresher(tokens, client, cfg.Fyers, persister, authLogger)
	exchanger := auth.NewExchanger(client, authLogger)

	state := market.NewState()
	companies := market.NewCompanies(cfg.Watchlist)
	sessions := utils.NewMarketScheduler(cfg.Market, companies.Symbols(), logger.NewLogger(cfg, "MarketScheduler"))

	marketLogger := logger.NewLogger(cfg, "Market")
	creds := market.NewCredentials(tokens, refresher, cfg.Fyers.AppID, conf.RefreshLead(), marketLogger)
	fetcher := market.NewQuoteFetcher(client, creds, state, marketLogger)

	loc, err := time.LoadLocation(cfg.Market.Timezone)
	if err != nil {
		appLogger.Warning("Unknown timezone '%s', using UTC: %v", cfg.Market.Timezone, err)
		loc = time.UTC
	}
	detail := market.NewDetailService(client, creds, state, companies, loc, marketLogger)

	app := &application{
		Config:    conf,
		Logger:    appLogger,
		State:     state,
		Companies: companies,
		Tokens:    tokens,
		Refresher: refresher,
		Sessions:  sessions,
	}

	poller := market.NewPollingScheduler(fetcher, state, companies.Symbols(), nil, conf.PollInterval(), logger.NewLogger(cfg, "Poller"))
	poller.Sessions = sessions
	poller.PauseWhenClosed = cfg.Polling.PauseWhenClosed
	app.Poller = poller

	app.Server = server.NewDashboardServer(cfg, server.Dependencies{
		State:     state,
		Companies: companies,
		Detail:    detail,
		Tokens:    tokens,
		Exchanger: exchanger,
		Persister: persister,
		Client:    client,
		Poller:    poller,
		Sessions:  sessions,
	}, logger.NewLogger(cfg, "Server"))
	poller.Broadcaster = app.Server

	schedule := cfg.Polling.TokenWatchSchedule
	if !refresher.Enabled() {
		schedule = ""
	}
	app.Watchdog = market.NewTokenWatchdog(creds, schedule, logger.NewLogger(cfg, "TokenWatchdog"))

	app.Control = &grpc_control.ControlService{
		Tokens:      tokens,
		State:       state,
		Companies:   companies,
		Poller:      poller,
		Refresher:   refresher,
		Sessions:    sessions,
		Connections: app.Server.Connections,
		Logger:      logger.NewLogger(cfg, "ControlService"),
	}
	return app
}
