package market

import (
	"context"
	"fmt"
	"time"

	"market-dashboard/src/logger"

	"github.com/robfig/cron/v3"
)

// TokenWatchdog refreshes an expiring access token on a cron schedule,
// independently of polling.
type TokenWatchdog struct {
	Credentials *Credentials
	Schedule    string
	Logger      *logger.Logger

	cron *cron.Cron
}

func NewTokenWatchdog(creds *Credentials, schedule string, log *logger.Logger) *TokenWatchdog {
	return &TokenWatchdog{Credentials: creds, Schedule: schedule, Logger: log}
}

// -----------------------------------------------------------------------------

// Start registers the check. An empty schedule leaves the watchdog off.
func (w *TokenWatchdog) Start() error {
	if w.Schedule == "" {
		w.Logger.Info("Token watchdog disabled")
		return nil
	}

	w.cron = cron.New()
	if _, err := w.cron.AddFunc(w.Schedule, w.Check); err != nil {
		return fmt.Errorf("invalid token watch schedule %q: %w", w.Schedule, err)
	}
	w.cron.Start()
	w.Logger.Info("Token watchdog running on '%s'", w.Schedule)
	return nil
}

func (w *TokenWatchdog) Stop() {
	if w.cron == nil {
		return
	}
	<-w.cron.Stop().Done()
}

// -----------------------------------------------------------------------------

// Check refreshes the access token when it is missing or expiring soon.
func (w *TokenWatchdog) Check() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	if w.Credentials.RefreshIfExpiring(ctx) {
		w.Logger.Info("Token watchdog refreshed the access token")
	}
}
