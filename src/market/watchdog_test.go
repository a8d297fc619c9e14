package market

import (
	"net/http"
	"testing"
	"time"

	"market-dashboard/src/data_source/fyers/fyerstest"
	"market-dashboard/src/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatchdogCheckRefreshesExpiringToken(t *testing.T) {
	f := newFixture(t, models.MTokenPair{
		AccessToken:  fyerstest.Token(time.Now().Add(time.Minute)),
		RefreshToken: "r1",
	})
	f.up.JSON(refreshPath, http.StatusOK, `{"s":"ok","access_token":"a2"}`)

	w := NewTokenWatchdog(f.creds, "@every 1h", fyerstest.Logger())
	w.Check()

	assert.Equal(t, 1, f.up.Calls(refreshPath))
	assert.Equal(t, "a2", f.tokens.AccessToken())
}

func TestWatchdogCheckLeavesFreshToken(t *testing.T) {
	f := newFixture(t, models.MTokenPair{
		AccessToken:  fyerstest.Token(time.Now().Add(6 * time.Hour)),
		RefreshToken: "r1",
	})

	NewTokenWatchdog(f.creds, "", fyerstest.Logger()).Check()
	assert.Zero(t, f.up.Calls(refreshPath))
}

func TestWatchdogSchedules(t *testing.T) {
	f := newFixture(t, models.MTokenPair{})

	off := NewTokenWatchdog(f.creds, "", fyerstest.Logger())
	require.NoError(t, off.Start())
	off.Stop()

	bad := NewTokenWatchdog(f.creds, "not a schedule", fyerstest.Logger())
	assert.Error(t, bad.Start())

	on := NewTokenWatchdog(f.creds, "*/5 * * * *", fyerstest.Logger())
	require.NoError(t, on.Start())
	on.Stop()
}
