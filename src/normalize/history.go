package normalize

import (
	"market-dashboard/src/models"

	"github.com/buger/jsonparser"
)

// candleRows finds the candle array at the top level or under d / data.
func candleRows(data []byte) []byte {
	for _, path := range [][]string{{"candles"}, {"d", "candles"}, {"data", "candles"}} {
		raw, dataType, _, err := jsonparser.Get(data, path...)
		if err == nil && dataType == jsonparser.Array {
			return raw
		}
	}
	return nil
}

// Candles maps [epoch, o, h, l, c, v?] rows to points. Rows missing the epoch
// or any OHLC value are dropped; volume may be null.
func Candles(data []byte) []models.MHistoryCandle {
	points := []models.MHistoryCandle{}
	rows := candleRows(data)
	if rows == nil {
		return points
	}

	_, _ = jsonparser.ArrayEach(rows, func(row []byte, dataType jsonparser.ValueType, _ int, _ error) {
		if dataType != jsonparser.Array {
			return
		}
		var values [5]float64
		for i := range values {
			v, ok := number(row, indexKey(i))
			if !ok {
				return
			}
			values[i] = v
		}

		candle := models.MHistoryCandle{
			Timestamp: EpochToTime(values[0]),
			Open:      values[1],
			High:      values[2],
			Low:       values[3],
			Close:     values[4],
		}
		if volume, ok := number(row, indexKey(5)); ok {
			candle.Volume = &volume
		}
		points = append(points, candle)
	})
	return points
}

func indexKey(i int) string {
	return "[" + string(rune('0'+i)) + "]"
}
