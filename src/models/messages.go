package models

// -----------------------------------------------------------------------------
// Push channel frames (server -> client)
// -----------------------------------------------------------------------------

const (
	MessageHello  = "hello"
	MessageQuotes = "quotes"
)

type MHelloMessage struct {
	Type    string   `json:"type"`
	Symbols []string `json:"symbols"`
}

type MQuotesMessage struct {
	Type string           `json:"type"`
	Data []MQuoteSnapshot `json:"data"`
}

// -----------------------------------------------------------------------------
// Token pair
// -----------------------------------------------------------------------------

type MTokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}
