package market

import (
	"context"
	"net/http"
	"testing"
	"time"

	"market-dashboard/src/helpers"
	"market-dashboard/src/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var historyNow = time.Date(2025, 3, 3, 15, 0, 0, 0, time.UTC)

func TestBuildHistoryRequestRanges(t *testing.T) {
	tests := []struct {
		rng, resolution    string
		wantRange, wantRes string
		wantDays           int
	}{
		{"1D", "", "1D", "15", 5},
		{"1W", "", "1W", "D", 7},
		{"1M", "", "1M", "D", 30},
		{"3M", "", "3M", "D", 90},
		{"6M", "", "6M", "D", 180},
		{"1Y", "", "1Y", "D", 365},
		{"", "", "3M", "D", 90},
		{"5Y", "", "3M", "D", 90},
		{"1d", "60", "3M", "60", 90},
		{" 1W", "", "3M", "D", 90},
		{"1M", "7", "1M", "D", 30},
		{"1D", "d", "1D", "15", 5},
		{"1D", "D", "1D", "D", 5},
	}

	for _, tt := range tests {
		req := BuildHistoryRequest(ntpc, tt.rng, tt.resolution, historyNow)
		assert.Equal(t, tt.wantRange, req.Range, "range %q", tt.rng)
		assert.Equal(t, tt.wantRes, req.Resolution, "range %q resolution %q", tt.rng, tt.resolution)
		assert.Equal(t, tt.wantDays, req.LookbackDays, "range %q", tt.rng)
		assert.Equal(t, historyNow, req.To)
		assert.Equal(t, historyNow.AddDate(0, 0, -tt.wantDays), req.From)
	}
}

// -----------------------------------------------------------------------------

func TestHistoryReturnsPoints(t *testing.T) {
	f := newFixture(t, models.MTokenPair{AccessToken: "a1"})
	f.up.Handle(historyPath, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, ntpc, q.Get("symbol"))
		assert.Equal(t, "15", q.Get("resolution"))
		assert.Equal(t, "1", q.Get("date_format"))
		assert.Equal(t, "1", q.Get("cont_flag"))
		assert.NotEmpty(t, q.Get("range_from"))
		w.Write([]byte(`{"s":"ok","candles":[[1740978000,349,355.2,347.1,352.45,1234567]]}`))
	})

	res, err := f.detailService().History(context.Background(), ntpc, "1D", "")
	require.NoError(t, err)
	assert.Equal(t, "1D", res.Range)
	assert.Equal(t, "15", res.Resolution)
	assert.Equal(t, 1, res.Count)
	assert.Nil(t, res.Warning)
	assert.Equal(t, "NTPC Limited", res.Company.Name)
}

func TestHistoryWithoutCandlesWarns(t *testing.T) {
	f := newFixture(t, models.MTokenPair{AccessToken: "a1"})
	f.up.JSON(historyPath, http.StatusOK, `{"s":"no_data","candles":[]}`)

	res, err := f.detailService().History(context.Background(), ntpc, "", "")
	require.NoError(t, err)
	assert.Equal(t, "3M", res.Range)
	assert.Zero(t, res.Count)
	assert.NotNil(t, res.Points)
	require.NotNil(t, res.Warning)
	assert.Equal(t, WarningNoCandles, *res.Warning)
}

func TestHistoryErrors(t *testing.T) {
	f := newFixture(t, models.MTokenPair{})
	_, err := f.detailService().History(context.Background(), ntpc, "1M", "")
	assert.Equal(t, http.StatusServiceUnavailable, helpers.StatusCode(err))

	_, err = f.detailService().History(context.Background(), "NSE:UNKNOWN-EQ", "1M", "")
	assert.Equal(t, http.StatusNotFound, helpers.StatusCode(err))

	f.tokens.SetAccessToken("a1")
	f.up.JSON(historyPath, http.StatusBadRequest, `{"s":"error","message":"Resolution not supported"}`)
	_, err = f.detailService().History(context.Background(), ntpc, "1M", "")
	assert.Equal(t, http.StatusBadGateway, helpers.StatusCode(err))
	assert.Contains(t, err.Error(), "Resolution not supported")
}
