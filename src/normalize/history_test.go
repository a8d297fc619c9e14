package normalize

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCandlesKeepOnlyCompleteRows(t *testing.T) {
	data := []byte(`{"s":"ok","candles":[
		[1740978000,349,355.2,347.1,352.45,1234567],
		[1740978900,352.45,353,351,352],
		[1740979800,352,"bad",351,352,10],
		[1740980700,352,353,null,352,10],
		[null,1,2,3,4,5],
		[1740981600,352,353,351]
	]}`)

	points := Candles(data)
	require.Len(t, points, 2)
	assert.Equal(t, time.Unix(1740978000, 0).UTC(), points[0].Timestamp)
	assert.Equal(t, 352.45, points[0].Close)
	assert.Equal(t, float64(1234567), *points[0].Volume)
	assert.Nil(t, points[1].Volume)
}

func TestCandlesUnderDataKey(t *testing.T) {
	points := Candles([]byte(`{"s":"ok","d":{"candles":[[1740978000,1,2,0.5,1.5,null]]}}`))
	require.Len(t, points, 1)
	assert.Nil(t, points[0].Volume)
}

func TestCandlesMissingIsEmptyNotNil(t *testing.T) {
	points := Candles([]byte(`{"s":"no_data"}`))
	assert.NotNil(t, points)
	assert.Empty(t, points)
}
