package auth

import (
	"context"
	"net/http"
	"testing"

	"market-dashboard/src/data_source/fyers/fyerstest"
	"market-dashboard/src/helpers"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	validateAuthCodePath = "/api/v3/validate-authcode"
	v3TokenPath          = "/api/v3/token"
	v2TokenPath          = "/api/v2/token"
)

func newTestExchanger(t *testing.T) (*Exchanger, *fyerstest.Upstream) {
	up := fyerstest.New(t)
	return NewExchanger(up.Client(up.Config()), fyerstest.Logger()), up
}

// -----------------------------------------------------------------------------

func TestExchangeStopsAtFirstSuccess(t *testing.T) {
	ex, up := newTestExchanger(t)
	up.JSON(validateAuthCodePath, http.StatusOK, `{"s":"ok","access_token":"a1","refresh_token":"r1"}`)

	pair, err := ex.Exchange(context.Background(), "code-1")
	require.NoError(t, err)
	assert.Equal(t, "a1", pair.AccessToken)
	assert.Equal(t, "r1", pair.RefreshToken)
	assert.Zero(t, up.Calls(v3TokenPath))
	assert.Zero(t, up.Calls(v2TokenPath))
}

func TestExchangeFallsBackInOrder(t *testing.T) {
	ex, up := newTestExchanger(t)
	up.JSON(validateAuthCodePath, http.StatusNotFound, `{"s":"error","message":"endpoint not enabled"}`)
	up.JSON(v3TokenPath, http.StatusOK, `{"s":"ok","code":200}`)
	up.JSON(v2TokenPath, http.StatusOK, `{"s":"ok","access_token":"a2"}`)

	pair, err := ex.Exchange(context.Background(), "code-1")
	require.NoError(t, err)
	assert.Equal(t, "a2", pair.AccessToken)
	assert.Empty(t, pair.RefreshToken)

	for _, path := range []string{validateAuthCodePath, v3TokenPath, v2TokenPath} {
		assert.Equal(t, 1, up.Calls(path), path)
	}

	assert.NotContains(t, up.Bodies(validateAuthCodePath)[0], "redirect_uri")
	assert.Contains(t, up.Bodies(v3TokenPath)[0], `"redirect_uri"`)
	assert.Contains(t, up.Bodies(v2TokenPath)[0], `"appIdHash":"`+ex.Client.AppIDHash()+`"`)
}

func TestExchangeAggregatesAllFailures(t *testing.T) {
	ex, up := newTestExchanger(t)
	up.JSON(validateAuthCodePath, http.StatusUnauthorized, `{"s":"error","message":"invalid auth code"}`)
	up.JSON(v3TokenPath, http.StatusBadRequest, `{"s":"error"}`)
	up.Handle(v2TokenPath, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte("<html>forbidden</html>"))
	})

	_, err := ex.Exchange(context.Background(), "code-1")
	require.Error(t, err)
	assert.Equal(t, http.StatusBadGateway, helpers.StatusCode(err))

	msg := err.Error()
	assert.Contains(t, msg, "v3 validate-authcode: invalid auth code")
	assert.Contains(t, msg, "v3 token: HTTP 400")
	assert.Contains(t, msg, "v2 token:")
	assert.Contains(t, msg, "403")
}

func TestExchangeRejectsBadInput(t *testing.T) {
	ex, up := newTestExchanger(t)

	_, err := ex.Exchange(context.Background(), "  ")
	assert.Equal(t, http.StatusBadRequest, helpers.StatusCode(err))

	ex.Client.Config.RedirectURI = ""
	_, err = ex.Exchange(context.Background(), "code-1")
	var cfgErr *helpers.ConfigurationError
	assert.ErrorAs(t, err, &cfgErr)

	assert.Zero(t, up.Calls(validateAuthCodePath))
}
