package market

import (
	"time"

	"market-dashboard/src/models"
)

const (
	DefaultRange             = "3M"
	IntradayResolution       = "15"
	DailyResolution          = "D"
	intradayDefaultRangeName = "1D"
)

// rangeLookbackDays maps a range token to its window. 1D looks back five
// days so a weekend or holiday still yields a session.
var rangeLookbackDays = map[string]int{
	"1D": 5,
	"1W": 7,
	"1M": 30,
	"3M": 90,
	"6M": 180,
	"1Y": 365,
}

var allowedResolutions = map[string]struct{}{
	"1": {}, "2": {}, "3": {}, "5": {}, "10": {}, "15": {},
	"30": {}, "60": {}, "120": {}, "240": {}, "D": {},
}

// -----------------------------------------------------------------------------

// BuildHistoryRequest resolves range and resolution tokens into the upstream
// query window ending at now. Tokens match exactly: unknown ranges fall back
// to 3M and unknown resolutions to the range default.
func BuildHistoryRequest(symbol, rangeToken, resolution string, now time.Time) models.MHistoryRequest {
	days, ok := rangeLookbackDays[rangeToken]
	if !ok {
		rangeToken = DefaultRange
		days = rangeLookbackDays[DefaultRange]
	}

	if _, ok := allowedResolutions[resolution]; !ok {
		resolution = DailyResolution
		if rangeToken == intradayDefaultRangeName {
			resolution = IntradayResolution
		}
	}

	return models.MHistoryRequest{
		Symbol:       symbol,
		Range:        rangeToken,
		Resolution:   resolution,
		LookbackDays: days,
		From:         now.AddDate(0, 0, -days),
		To:           now,
	}
}
