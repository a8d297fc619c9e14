package models

// MaxDepthLevels is the number of order-book levels kept per side.
const MaxDepthLevels = 5

type MDepthLevel struct {
	Price    float64  `json:"price"`
	Quantity *float64 `json:"quantity"`
	Orders   *float64 `json:"orders"`
}

// MTradeSnapshot aggregates one market-depth node.
type MTradeSnapshot struct {
	TotalBidQty   *float64      `json:"totalBidQty"`
	TotalAskQty   *float64      `json:"totalAskQty"`
	Open          *float64      `json:"open"`
	High          *float64      `json:"high"`
	Low           *float64      `json:"low"`
	Close         *float64      `json:"close"`
	PreviousClose *float64      `json:"previousClose"`
	AveragePrice  *float64      `json:"averagePrice"`
	Volume        *float64      `json:"volume"`
	LastTradedQty *float64      `json:"lastTradedQty"`
	BestBid       *float64      `json:"bestBid"`
	BestAsk       *float64      `json:"bestAsk"`
	Spread        *float64      `json:"spread"`
	Bids          []MDepthLevel `json:"bids"`
	Asks          []MDepthLevel `json:"asks"`
}
