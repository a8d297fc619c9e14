package models

import "time"

type MCompany struct {
	Symbol string `json:"symbol" yaml:"symbol"`
	Name   string `json:"name" yaml:"name"`
	Sector string `json:"sector" yaml:"sector"`
}

// SymbolState is the last-known availability of a watchlist symbol.
type SymbolState string

const (
	StatusOK      SymbolState = "ok"
	StatusNoKey   SymbolState = "no_key"
	StatusNoData  SymbolState = "no_data"
	StatusError   SymbolState = "error"
	StatusPending SymbolState = "pending"
)

type MSymbolStatus struct {
	Status    SymbolState `json:"status"`
	Message   string      `json:"message"`
	UpdatedAt time.Time   `json:"updatedAt"`
}

// MCompanyStatus is company metadata merged with the symbol's status.
type MCompanyStatus struct {
	MCompany
	Status          SymbolState `json:"status"`
	StatusMessage   string      `json:"statusMessage"`
	StatusUpdatedAt *time.Time  `json:"statusUpdatedAt"`
}

// Availability values for the detail view.
const (
	AvailabilityOK          = "ok"
	AvailabilityError       = "error"
	AvailabilityUnavailable = "unavailable"
)

type MAvailability struct {
	Quote string `json:"quote"`
	Depth string `json:"depth"`
}

type MCompanyDetail struct {
	Symbol       string          `json:"symbol"`
	Company      MCompany        `json:"company"`
	Quote        *MDetailQuote   `json:"quote"`
	Trade        *MTradeSnapshot `json:"trade"`
	Availability MAvailability   `json:"availability"`
	Warnings     []string        `json:"warnings"`
	FetchedAt    time.Time       `json:"fetchedAt"`

	// Degraded is set when credentials were unavailable and only cached data is served.
	Degraded bool `json:"-"`
}
