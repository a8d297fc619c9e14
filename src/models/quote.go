package models

import "time"

// MQuoteSnapshot is the compact streaming-path quote.
// ChangePercent is a fraction (0.0125 == +1.25%).
type MQuoteSnapshot struct {
	Symbol        string    `json:"symbol"`
	Price         float64   `json:"price"`
	ChangePercent *float64  `json:"changePercent"`
	Timestamp     time.Time `json:"timestamp"`
}

// MDetailQuote is the detail-view quote. ChangePercent is in percent points.
type MDetailQuote struct {
	Symbol        string    `json:"symbol"`
	Price         float64   `json:"price"`
	Change        *float64  `json:"change"`
	ChangePercent *float64  `json:"changePercent"`
	Open          *float64  `json:"open"`
	High          *float64  `json:"high"`
	Low           *float64  `json:"low"`
	PreviousClose *float64  `json:"previousClose"`
	Volume        *float64  `json:"volume"`
	UpperCircuit  *float64  `json:"upperCircuit"`
	LowerCircuit  *float64  `json:"lowerCircuit"`
	YearHigh      *float64  `json:"yearHigh"`
	YearLow       *float64  `json:"yearLow"`
	Bid           *float64  `json:"bid"`
	Ask           *float64  `json:"ask"`
	Timestamp     time.Time `json:"timestamp"`
}

// DetailFromSnapshot reshapes a cached streaming quote into detail-path units.
func DetailFromSnapshot(q MQuoteSnapshot) *MDetailQuote {
	d := &MDetailQuote{
		Symbol:    q.Symbol,
		Price:     q.Price,
		Timestamp: q.Timestamp,
	}
	if q.ChangePercent != nil {
		pp := *q.ChangePercent * 100
		d.ChangePercent = &pp
	}
	return d
}
