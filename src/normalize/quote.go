package normalize

import (
	"time"

	"market-dashboard/src/models"
)

// Field aliases seen across upstream API versions.
var (
	priceAliases         = []string{"lp", "ltp", "last_price", "price"}
	changeAliases        = []string{"ch", "change", "net_change"}
	changePercentAliases = []string{"chp", "change_percent", "pChange"}
	epochAliases         = []string{"tt", "last_traded_time", "timestamp"}
)

// -----------------------------------------------------------------------------

// quoteParts resolves the symbol and the value object of a quote item.
// Items are either flat or {"n": symbol, "v": {...fields}}.
func quoteParts(item []byte) (symbol string, values []byte) {
	symbol = text(item, "n")
	if symbol == "" {
		symbol = text(item, "symbol")
	}
	if symbol == "" {
		symbol = text(item, "v", "symbol")
	}

	values = object(item, "v")
	if values == nil {
		values = item
	}
	return symbol, values
}

func quoteTimestamp(values []byte, now time.Time) time.Time {
	if epoch, ok := firstNumber(values, epochAliases...); ok && epoch > 0 {
		return EpochToTime(epoch)
	}
	return now.UTC()
}

// -----------------------------------------------------------------------------

// Quote maps one upstream quote item to the streaming snapshot. Items without
// a symbol or a price are dropped (ok == false).
func Quote(item []byte, now time.Time) (models.MQuoteSnapshot, bool) {
	symbol, values := quoteParts(item)
	price, hasPrice := firstNumber(values, priceAliases...)
	if symbol == "" || !hasPrice {
		return models.MQuoteSnapshot{}, false
	}

	snap := models.MQuoteSnapshot{
		Symbol:    symbol,
		Price:     price,
		Timestamp: quoteTimestamp(values, now),
	}
	if chp, ok := firstNumber(values, changePercentAliases...); ok {
		fraction := chp / 100
		snap.ChangePercent = &fraction
	}
	return snap, true
}

// -----------------------------------------------------------------------------

// Quotes normalizes a batch, silently dropping unusable items.
func Quotes(items [][]byte, now time.Time) []models.MQuoteSnapshot {
	out := make([]models.MQuoteSnapshot, 0, len(items))
	for _, item := range items {
		if q, ok := Quote(item, now); ok {
			out = append(out, q)
		}
	}
	return out
}

// -----------------------------------------------------------------------------

// DetailQuote maps one upstream quote item to the detail-view quote.
// ChangePercent stays in percent points.
func DetailQuote(item []byte, now time.Time) (*models.MDetailQuote, bool) {
	symbol, v := quoteParts(item)
	price, hasPrice := firstNumber(v, priceAliases...)
	if symbol == "" || !hasPrice {
		return nil, false
	}

	return &models.MDetailQuote{
		Symbol:        symbol,
		Price:         price,
		Change:        optNumber(v, changeAliases...),
		ChangePercent: optNumber(v, changePercentAliases...),
		Open:          optNumber(v, "open_price", "open", "o"),
		High:          optNumber(v, "high_price", "high", "h"),
		Low:           optNumber(v, "low_price", "low", "l"),
		PreviousClose: optNumber(v, "prev_close_price", "prev_close", "previous_close", "pc"),
		Volume:        optNumber(v, "volume", "vol_traded_today", "v"),
		UpperCircuit:  optNumber(v, "upper_ckt", "upper_circuit", "upper_circuit_limit"),
		LowerCircuit:  optNumber(v, "lower_ckt", "lower_circuit", "lower_circuit_limit"),
		YearHigh:      optNumber(v, "year_high", "52_week_high", "high_52_week", "yh"),
		YearLow:       optNumber(v, "year_low", "52_week_low", "low_52_week", "yl"),
		Bid:           optNumber(v, "bid", "best_bid"),
		Ask:           optNumber(v, "ask", "best_ask"),
		Timestamp:     quoteTimestamp(v, now),
	}, true
}

// FindDetailQuote returns the detail quote tagged with symbol among items.
// A reply carrying only other symbols yields nothing.
func FindDetailQuote(items [][]byte, symbol string, now time.Time) (*models.MDetailQuote, bool) {
	for _, item := range items {
		q, ok := DetailQuote(item, now)
		if ok && q.Symbol == symbol {
			return q, true
		}
	}
	return nil, false
}
