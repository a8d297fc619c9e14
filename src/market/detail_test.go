package market

import (
	"context"
	"net/http"
	"testing"
	"time"

	"market-dashboard/src/data_source/fyers/fyerstest"
	"market-dashboard/src/helpers"
	"market-dashboard/src/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	liveQuote = `{"s":"ok","d":[{"n":"NSE:NTPC-EQ","v":{"lp":350,"ch":4.2,"chp":1.2,"open_price":345,"high_price":352,"low_price":344,"prev_close_price":345.8,"volume":1200000}}]}`
	liveDepth = `{"s":"ok","d":{"NSE:NTPC-EQ":{"totalbuyqty":5000,"totalsellqty":4200,"o":345,"ltq":10,
		"bids":[{"price":349.9,"volume":100,"ord":3},{"price":349.8,"volume":80,"ord":1}],
		"ask":[{"price":350.1,"volume":50,"ord":2}]}}}`
)

func TestCompanyDetailRejectsBadSymbols(t *testing.T) {
	f := newFixture(t, models.MTokenPair{AccessToken: "a1"})
	svc := f.detailService()

	_, err := svc.CompanyDetail(context.Background(), "  ")
	assert.Equal(t, http.StatusBadRequest, helpers.StatusCode(err))

	_, err = svc.CompanyDetail(context.Background(), "NSE:UNKNOWN-EQ")
	assert.Equal(t, http.StatusNotFound, helpers.StatusCode(err))
	assert.Zero(t, f.up.Calls(quotesPath))
}

func TestCompanyDetailWithoutCredentialsServesCache(t *testing.T) {
	f := newFixture(t, models.MTokenPair{})
	f.state.Quotes.Merge([]models.MQuoteSnapshot{{Symbol: ntpc, Price: 350, ChangePercent: ptr(0.0125), Timestamp: time.Now()}})

	detail, err := f.detailService().CompanyDetail(context.Background(), ntpc)
	require.NoError(t, err)

	assert.True(t, detail.Degraded)
	assert.Equal(t, models.AvailabilityUnavailable, detail.Availability.Quote)
	assert.Equal(t, models.AvailabilityUnavailable, detail.Availability.Depth)
	assert.Equal(t, []string{WarningCredentialsUnavailable}, detail.Warnings)
	require.NotNil(t, detail.Quote)
	assert.InDelta(t, 1.25, *detail.Quote.ChangePercent, 1e-9)
	assert.Nil(t, detail.Trade)

	status, ok := f.state.Statuses.Get(ntpc)
	require.True(t, ok)
	assert.Equal(t, models.StatusNoKey, status.Status)
	assert.Zero(t, f.up.Calls(quotesPath))
}

func TestCompanyDetailLive(t *testing.T) {
	f := newFixture(t, models.MTokenPair{AccessToken: "a1"})
	f.up.JSON(quotesPath, http.StatusOK, liveQuote)
	f.up.JSON(depthPath, http.StatusOK, liveDepth)

	detail, err := f.detailService().CompanyDetail(context.Background(), ntpc)
	require.NoError(t, err)

	assert.False(t, detail.Degraded)
	assert.Equal(t, models.MAvailability{Quote: models.AvailabilityOK, Depth: models.AvailabilityOK}, detail.Availability)
	assert.Empty(t, detail.Warnings)
	assert.Equal(t, "NTPC Limited", detail.Company.Name)

	require.NotNil(t, detail.Quote)
	assert.Equal(t, float64(350), detail.Quote.Price)
	assert.InDelta(t, 1.2, *detail.Quote.ChangePercent, 1e-9)
	assert.Equal(t, ptr(345.8), detail.Quote.PreviousClose)

	require.NotNil(t, detail.Trade)
	assert.Len(t, detail.Trade.Bids, 2)
	assert.Len(t, detail.Trade.Asks, 1)
	assert.Equal(t, ptr(5000), detail.Trade.TotalBidQty)
	assert.Equal(t, ptr(349.9), detail.Trade.BestBid)
	assert.Equal(t, ptr(350.1), detail.Trade.BestAsk)
	assert.InDelta(t, 0.2, *detail.Trade.Spread, 1e-9)

	status, _ := f.state.Statuses.Get(ntpc)
	assert.Equal(t, models.StatusOK, status.Status)
}

func TestCompanyDetailFallsBackToCachedQuote(t *testing.T) {
	f := newFixture(t, models.MTokenPair{AccessToken: "a1"})
	f.state.Quotes.Merge([]models.MQuoteSnapshot{{Symbol: ntpc, Price: 349, ChangePercent: ptr(0.01), Timestamp: time.Now()}})
	f.up.JSON(quotesPath, http.StatusInternalServerError, `{"s":"error","message":"Service down"}`)
	f.up.JSON(depthPath, http.StatusOK, `{"s":"ok","d":{}}`)

	detail, err := f.detailService().CompanyDetail(context.Background(), ntpc)
	require.NoError(t, err)

	assert.Equal(t, models.AvailabilityError, detail.Availability.Quote)
	assert.Equal(t, models.AvailabilityOK, detail.Availability.Depth)
	require.NotNil(t, detail.Quote)
	assert.Equal(t, float64(349), detail.Quote.Price)
	assert.Contains(t, detail.Warnings, "Quote request failed: Service down")
	assert.Contains(t, detail.Warnings, WarningCachedQuote)
	assert.Contains(t, detail.Warnings, WarningNoDepth)
	assert.Nil(t, detail.Trade)

	status, _ := f.state.Statuses.Get(ntpc)
	assert.Equal(t, models.StatusError, status.Status)
	assert.Equal(t, "Service down", status.Message)
}

func TestCompanyDetailIgnoresQuoteForAnotherSymbol(t *testing.T) {
	f := newFixture(t, models.MTokenPair{AccessToken: "a1"})
	f.up.JSON(quotesPath, http.StatusOK, `{"s":"ok","d":[{"n":"NSE:NHPC-EQ","v":{"lp":81.2}}]}`)
	f.up.JSON(depthPath, http.StatusOK, `{"s":"ok","d":{}}`)

	detail, err := f.detailService().CompanyDetail(context.Background(), ntpc)
	require.NoError(t, err)
	assert.Equal(t, models.AvailabilityOK, detail.Availability.Quote)
	assert.Nil(t, detail.Quote)
	status, _ := f.state.Statuses.Get(ntpc)
	assert.Equal(t, models.StatusNoData, status.Status)

	f.state.Quotes.Merge([]models.MQuoteSnapshot{{Symbol: ntpc, Price: 349, ChangePercent: ptr(0.01), Timestamp: time.Now()}})
	detail, err = f.detailService().CompanyDetail(context.Background(), ntpc)
	require.NoError(t, err)
	require.NotNil(t, detail.Quote)
	assert.Equal(t, ntpc, detail.Quote.Symbol)
	assert.Equal(t, float64(349), detail.Quote.Price)
	assert.Contains(t, detail.Warnings, WarningCachedQuote)
}

func TestCompanyDetailRetriesDepthAfterRefresh(t *testing.T) {
	f := newFixture(t, models.MTokenPair{AccessToken: "a1", RefreshToken: "r1"})
	f.up.JSON(quotesPath, http.StatusOK, liveQuote)
	f.up.JSON(refreshPath, http.StatusOK, `{"s":"ok","access_token":"a2"}`)
	f.up.Handle(depthPath, func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != fyerstest.AppID+":a2" {
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"s":"error","code":-16,"message":"Invalid token"}`))
			return
		}
		w.Write([]byte(liveDepth))
	})

	detail, err := f.detailService().CompanyDetail(context.Background(), ntpc)
	require.NoError(t, err)

	assert.Equal(t, models.AvailabilityOK, detail.Availability.Depth)
	assert.NotNil(t, detail.Trade)
	assert.Equal(t, 2, f.up.Calls(depthPath))
	assert.Equal(t, 1, f.up.Calls(refreshPath))
	assert.Equal(t, "a2", f.tokens.AccessToken())
}

func TestCompanyDetailReportsDepthFailure(t *testing.T) {
	f := newFixture(t, models.MTokenPair{AccessToken: "a1"})
	f.up.JSON(quotesPath, http.StatusOK, liveQuote)
	f.up.JSON(depthPath, http.StatusUnauthorized, `{"s":"error","message":"Invalid token"}`)

	detail, err := f.detailService().CompanyDetail(context.Background(), ntpc)
	require.NoError(t, err)

	assert.Equal(t, models.AvailabilityOK, detail.Availability.Quote)
	assert.Equal(t, models.AvailabilityError, detail.Availability.Depth)
	assert.Contains(t, detail.Warnings, "Market depth request failed: Invalid token")
	assert.Equal(t, 1, f.up.Calls(depthPath))
}
