package models

import "time"

// MHistoryCandle is one OHLCV bar. Volume may be missing upstream.
type MHistoryCandle struct {
	Timestamp time.Time `json:"timestamp"`
	Open      float64   `json:"open"`
	High      float64   `json:"high"`
	Low       float64   `json:"low"`
	Close     float64   `json:"close"`
	Volume    *float64  `json:"volume"`
}

// MHistoryRequest is the resolved upstream history query.
type MHistoryRequest struct {
	Symbol       string
	Range        string
	Resolution   string
	LookbackDays int
	From         time.Time
	To           time.Time
}

type MHistoryResult struct {
	Symbol     string           `json:"symbol"`
	Company    MCompany         `json:"company"`
	Range      string           `json:"range"`
	Resolution string           `json:"resolution"`
	Points     []MHistoryCandle `json:"points"`
	Count      int              `json:"count"`
	Warning    *string          `json:"warning"`
	FetchedAt  time.Time        `json:"fetchedAt"`
}
