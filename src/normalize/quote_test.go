package normalize

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2025, 3, 3, 5, 0, 0, 0, time.UTC)

func TestQuoteNestedShape(t *testing.T) {
	item := []byte(`{"n":"NSE:NTPC-EQ","s":"ok","v":{"lp":352.45,"chp":1.25,"ch":4.35,"tt":1740978000}}`)

	q, ok := Quote(item, testNow)
	require.True(t, ok)
	assert.Equal(t, "NSE:NTPC-EQ", q.Symbol)
	assert.Equal(t, 352.45, q.Price)
	require.NotNil(t, q.ChangePercent)
	assert.InDelta(t, 0.0125, *q.ChangePercent, 1e-12)
	assert.Equal(t, time.Unix(1740978000, 0).UTC(), q.Timestamp)
}

func TestQuoteFlatShapeAndAliases(t *testing.T) {
	item := []byte(`{"symbol":"NSE:NHPC-EQ","ltp":"81.10","tt":1740978000123}`)

	q, ok := Quote(item, testNow)
	require.True(t, ok)
	assert.Equal(t, "NSE:NHPC-EQ", q.Symbol)
	assert.Equal(t, 81.10, q.Price)
	assert.Nil(t, q.ChangePercent)
	assert.Equal(t, time.UnixMilli(1740978000123).UTC(), q.Timestamp)
}

func TestQuoteSymbolFromNestedValue(t *testing.T) {
	q, ok := Quote([]byte(`{"v":{"symbol":"NSE:RPOWER-EQ","last_price":44}}`), testNow)
	require.True(t, ok)
	assert.Equal(t, "NSE:RPOWER-EQ", q.Symbol)
	assert.Equal(t, float64(44), q.Price)
	assert.Equal(t, testNow, q.Timestamp)
}

func TestQuotesDropsUnusableItems(t *testing.T) {
	items := [][]byte{
		[]byte(`{"n":"NSE:NTPC-EQ","v":{"lp":352.45}}`),
		[]byte(`{"n":"NSE:NHPC-EQ","v":{"chp":1.1}}`),  // no price
		[]byte(`{"v":{"lp":10}}`),                      // no symbol
		[]byte(`{"n":"NSE:RENEW-EQ","v":{"lp":"n/a"}}`), // unparseable price
		[]byte(`{"n":"NSE:RENEW-EQ","v":{"price":612.3}}`),
	}

	out := Quotes(items, testNow)
	require.Len(t, out, 2)
	assert.Equal(t, "NSE:NTPC-EQ", out[0].Symbol)
	assert.Equal(t, "NSE:RENEW-EQ", out[1].Symbol)
}

func TestDetailQuoteKeepsPercentPoints(t *testing.T) {
	item := []byte(`{"n":"NSE:NTPC-EQ","v":{
		"lp":352.45,"ch":4.35,"chp":1.25,
		"open_price":349,"high_price":355.2,"low_price":347.1,"prev_close_price":348.1,
		"volume":1234567,"upper_ckt":382.9,"lower_ckt":313.3,
		"52_week_high":448.45,"52_week_low":292.8,"bid":352.4,"ask":352.5}}`)

	q, ok := DetailQuote(item, testNow)
	require.True(t, ok)
	assert.Equal(t, 1.25, *q.ChangePercent)
	assert.Equal(t, 4.35, *q.Change)
	assert.Equal(t, float64(349), *q.Open)
	assert.Equal(t, 355.2, *q.High)
	assert.Equal(t, 347.1, *q.Low)
	assert.Equal(t, 348.1, *q.PreviousClose)
	assert.Equal(t, float64(1234567), *q.Volume)
	assert.Equal(t, 382.9, *q.UpperCircuit)
	assert.Equal(t, 313.3, *q.LowerCircuit)
	assert.Equal(t, 448.45, *q.YearHigh)
	assert.Equal(t, 292.8, *q.YearLow)
	assert.Equal(t, 352.4, *q.Bid)
	assert.Equal(t, 352.5, *q.Ask)
}

func TestFindDetailQuoteMatchesSymbolOnly(t *testing.T) {
	items := [][]byte{
		[]byte(`{"n":"NSE:NHPC-EQ","v":{"lp":81}}`),
		[]byte(`{"n":"NSE:NTPC-EQ","v":{"lp":352}}`),
	}

	q, ok := FindDetailQuote(items, "NSE:NTPC-EQ", testNow)
	require.True(t, ok)
	assert.Equal(t, float64(352), q.Price)

	q, ok = FindDetailQuote(items, "NSE:RENEW-EQ", testNow)
	assert.False(t, ok)
	assert.Nil(t, q)

	_, ok = FindDetailQuote(nil, "NSE:NTPC-EQ", testNow)
	assert.False(t, ok)
}

func TestEpochToTime(t *testing.T) {
	assert.Equal(t, time.Unix(1700000000, 0).UTC(), EpochToTime(1700000000))
	assert.Equal(t, time.UnixMilli(1700000000500).UTC(), EpochToTime(1700000000500))
}
