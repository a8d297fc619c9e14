package utils

import (
	"sync"
	"time"

	"market-dashboard/src/logger"
	"market-dashboard/src/models"
)

// MarketScheduler tracks the exchange sessions behind the watchlist.
type MarketScheduler struct {
	Calendars map[string]*TradingCalendar // keyed by MIC
	Config    models.MMarketConfig
	Logger    *logger.Logger
	now       func() time.Time
	mu        sync.RWMutex
}

// -----------------------------------------------------------------------------

func NewMarketScheduler(cfg models.MMarketConfig, symbols []string, l *logger.Logger) *MarketScheduler {
	ms := &MarketScheduler{
		Calendars: make(map[string]*TradingCalendar),
		Config:    cfg,
		Logger:    l,
		now:       time.Now,
	}
	ms.MapSymbolsToCalendars(symbols)
	return ms
}

// -----------------------------------------------------------------------------

// MapSymbolsToCalendars replaces the tracked calendars with those of symbols.
func (ms *MarketScheduler) MapSymbolsToCalendars(symbols []string) {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	ms.Calendars = make(map[string]*TradingCalendar)
	for _, symbol := range symbols {
		mic := MICForSymbol(symbol, ms.Config.CalendarMIC)
		if _, ok := ms.Calendars[mic]; ok {
			continue
		}
		cal := GetCalendar(mic, ms.Config.Timezone)
		if cal.Fallback {
			ms.Logger.Warning("No calendar for MIC '%s', using weekday session in %s", mic, cal.Timezone)
		}
		ms.Calendars[mic] = cal
	}

	ms.Logger.Info("MarketScheduler: mapped %d symbols to %d calendars", len(symbols), len(ms.Calendars))
}

// -----------------------------------------------------------------------------

// AnyMarketOpen reports whether any tracked exchange is in session.
func (ms *MarketScheduler) AnyMarketOpen() bool {
	now := ms.now().UTC()

	ms.mu.RLock()
	defer ms.mu.RUnlock()

	for _, cal := range ms.Calendars {
		if cal.IsOpenOnMinute(now) {
			return true
		}
	}
	return false
}
