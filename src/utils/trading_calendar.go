package utils

import (
	"strings"
	"time"

	"github.com/scmhub/calendar"
)

// Fallback session used when no exchange calendar can be loaded.
const (
	FallbackOpenMinute  = 9*60 + 15
	FallbackCloseMinute = 15*60 + 30
)

// TradingCalendar answers session questions for one exchange.
type TradingCalendar struct {
	MIC      string
	Calendar *calendar.Calendar
	Fallback bool
	Timezone *time.Location
}

// -----------------------------------------------------------------------------

// MICForSymbol maps an exchange-prefixed symbol (NSE:SBIN-EQ) to its MIC.
func MICForSymbol(symbol, defaultMIC string) string {
	prefix, _, found := strings.Cut(symbol, ":")
	if !found {
		return defaultMIC
	}
	switch strings.ToUpper(prefix) {
	case "NSE":
		return "xnse"
	case "BSE":
		return "xbom"
	}
	return defaultMIC
}

// -----------------------------------------------------------------------------

// GetCalendar loads the calendar for mic. When the library has no such
// calendar a weekday session in timezone is used instead.
func GetCalendar(mic, timezone string) *TradingCalendar {
	if cal := calendar.GetCalendar(mic); cal != nil {
		return &TradingCalendar{MIC: mic, Calendar: cal, Timezone: cal.Loc}
	}

	loc, err := time.LoadLocation(timezone)
	if err != nil {
		loc = time.FixedZone("IST", 5*3600+1800)
	}
	return &TradingCalendar{MIC: mic, Fallback: true, Timezone: loc}
}

// -----------------------------------------------------------------------------

func (tc *TradingCalendar) IsTradingDay(date time.Time) bool {
	if tc.Timezone != nil {
		date = date.In(tc.Timezone)
	}

	if tc.Fallback {
		weekday := date.Weekday()
		return weekday != time.Saturday && weekday != time.Sunday
	}
	return tc.Calendar.IsBusinessDay(date)
}

// -----------------------------------------------------------------------------

// IsOpenOnMinute checks if the market is open at a specific minute.
func (tc *TradingCalendar) IsOpenOnMinute(t time.Time) bool {
	if tc.Timezone != nil {
		t = t.In(tc.Timezone)
	}

	if tc.Fallback {
		if !tc.IsTradingDay(t) {
			return false
		}
		minute := t.Hour()*60 + t.Minute()
		return minute >= FallbackOpenMinute && minute < FallbackCloseMinute
	}

	return tc.Calendar.IsOpen(t)
}
