package normalize

import (
	"bytes"

	"market-dashboard/src/models"

	"github.com/buger/jsonparser"
)

var (
	bidKeys = []string{"bids", "bid", "buy"}
	askKeys = []string{"ask", "asks", "sell"}
)

// -----------------------------------------------------------------------------

// LocateNode finds the depth node for symbol inside the upstream payload.
// Objects are looked up by key. Lists are scanned on n, symbol or name and
// fall back to the first entry.
func LocateNode(data []byte, symbol string) []byte {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil
	}

	switch data[0] {
	case '{':
		if node := object(data, symbol); node != nil {
			return node
		}
		if hasAnyKey(data, bidKeys) || hasAnyKey(data, askKeys) {
			return data
		}
		return nil
	case '[':
		var match, first []byte
		_, _ = jsonparser.ArrayEach(data, func(value []byte, dataType jsonparser.ValueType, _ int, _ error) {
			if match != nil || dataType != jsonparser.Object {
				return
			}
			if first == nil {
				first = value
			}
			for _, key := range []string{"n", "symbol", "name"} {
				if text(value, key) == symbol {
					match = value
					return
				}
			}
		})
		if match != nil {
			if inner := object(match, "v"); inner != nil {
				return inner
			}
			return match
		}
		if first != nil {
			if inner := object(first, "v"); inner != nil {
				return inner
			}
		}
		return first
	}
	return nil
}

func hasAnyKey(obj []byte, keys []string) bool {
	for _, key := range keys {
		if _, _, _, err := jsonparser.Get(obj, key); err == nil {
			return true
		}
	}
	return false
}

// -----------------------------------------------------------------------------

// Levels reads at most MaxDepthLevels price levels from the first present key.
// A level is either [price, qty, orders] or an object.
func Levels(node []byte, keys ...string) []models.MDepthLevel {
	levels := make([]models.MDepthLevel, 0, models.MaxDepthLevels)
	for _, key := range keys {
		raw, dataType, _, err := jsonparser.Get(node, key)
		if err != nil || dataType != jsonparser.Array {
			continue
		}
		_, _ = jsonparser.ArrayEach(raw, func(value []byte, dataType jsonparser.ValueType, _ int, _ error) {
			if len(levels) >= models.MaxDepthLevels {
				return
			}
			if level, ok := parseLevel(value, dataType); ok {
				levels = append(levels, level)
			}
		})
		break
	}
	return levels
}

func parseLevel(value []byte, dataType jsonparser.ValueType) (models.MDepthLevel, bool) {
	switch dataType {
	case jsonparser.Array:
		price, ok := number(value, "[0]")
		if !ok {
			return models.MDepthLevel{}, false
		}
		level := models.MDepthLevel{Price: price}
		if qty, ok := number(value, "[1]"); ok {
			level.Quantity = &qty
		}
		if orders, ok := number(value, "[2]"); ok {
			level.Orders = &orders
		}
		return level, true
	case jsonparser.Object:
		price, ok := firstNumber(value, "price", "p")
		if !ok {
			return models.MDepthLevel{}, false
		}
		return models.MDepthLevel{
			Price:    price,
			Quantity: optNumber(value, "volume", "qty", "quantity", "q"),
			Orders:   optNumber(value, "ord", "orders", "num_orders"),
		}, true
	}
	return models.MDepthLevel{}, false
}

// -----------------------------------------------------------------------------

// Trade maps the depth payload for symbol to a trade snapshot.
func Trade(data []byte, symbol string) (*models.MTradeSnapshot, bool) {
	node := LocateNode(data, symbol)
	if node == nil {
		return nil, false
	}

	trade := &models.MTradeSnapshot{
		TotalBidQty:   optNumber(node, "totalbuyqty", "total_buy_qty", "totalBuyQty", "tbq"),
		TotalAskQty:   optNumber(node, "totalsellqty", "total_sell_qty", "totalSellQty", "tsq"),
		Open:          optNumber(node, "o", "open", "open_price"),
		High:          optNumber(node, "h", "high", "high_price"),
		Low:           optNumber(node, "l", "low", "low_price"),
		Close:         optNumber(node, "c", "close", "close_price"),
		PreviousClose: optNumber(node, "prev_close_price", "prev_close", "previous_close", "pc"),
		AveragePrice:  optNumber(node, "atp", "avg_price", "average_price"),
		Volume:        optNumber(node, "v", "volume", "vol_traded_today"),
		LastTradedQty: optNumber(node, "ltq", "last_traded_qty", "last_qty"),
		Bids:          Levels(node, bidKeys...),
		Asks:          Levels(node, askKeys...),
	}

	if len(trade.Bids) > 0 {
		bid := trade.Bids[0].Price
		trade.BestBid = &bid
	}
	if len(trade.Asks) > 0 {
		ask := trade.Asks[0].Price
		trade.BestAsk = &ask
	}
	if trade.BestBid != nil && trade.BestAsk != nil {
		spread := *trade.BestAsk - *trade.BestBid
		trade.Spread = &spread
	}
	return trade, true
}
