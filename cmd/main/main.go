package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"market-dashboard/src/config"
	"market-dashboard/src/logger"
)

// -----------------------------------------------------------------------------

func main() {

	// 1. Parse command line flags
	configPath := flag.String("config", "", "path to optional YAML config file")
	writeConfig := flag.String("write-config", "", "write the effective config (without credentials) to this path and exit")
	flag.Parse()

	// 2. Load config (YAML, then .env, then process environment)
	conf, err := config.NewConfig(*configPath)
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		os.Exit(1)
	}

	if *writeConfig != "" {
		if err := conf.Save(*writeConfig); err != nil {
			fmt.Printf("Error writing config: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Config written to %s\n", *writeConfig)
		return
	}

	// 3. Setup logger
	appLogger := logger.NewLogger(conf, conf.Name)
	defer appLogger.Sync()

	if !conf.Fyers.HasAuthConfig() {
		appLogger.Warning("FYERS_APP_ID, FYERS_SECRET_ID or FYERS_REDIRECT_URI not set: login flow disabled")
	}

	// 4. Setup components
	app := setupApplication(conf, appLogger)
	if app.Tokens.IsLoggedIn() {
		appLogger.Info("Access token loaded from configuration")
	} else {
		appLogger.Warning("No access token configured, visit /auth/start to log in")
	}

	// 5. Start servers
	stopServers := startServers(app)

	// 6. Start polling and the token watchdog
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	app.Poller.Start(ctx)
	if err := app.Watchdog.Start(); err != nil {
		appLogger.Error("Token watchdog not started: %v", err)
	}

	// 7. Wait for a signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down...")
	app.Watchdog.Stop()
	app.Poller.Stop()
	stopServers()
	appLogger.Info("Shutdown complete.")
}
