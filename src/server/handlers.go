package server

import (
	"net/http"
	"strings"

	"market-dashboard/src/helpers"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// -----------------------------------------------------------------------------
// Market data
// -----------------------------------------------------------------------------

func (s *DashboardServer) getQuotes(c *gin.Context) {
	c.JSON(http.StatusOK, s.Deps.State.Quotes.Values())
}

// -----------------------------------------------------------------------------

func (s *DashboardServer) getCompanies(c *gin.Context) {
	c.JSON(http.StatusOK, s.Deps.Companies.WithStatus(s.Deps.State.Statuses))
}

// -----------------------------------------------------------------------------

func (s *DashboardServer) getCompanyMissingSymbol(c *gin.Context) {
	writeError(c, helpers.NewValidationError("symbol is required"))
}

// -----------------------------------------------------------------------------

func (s *DashboardServer) getCompanyDetail(c *gin.Context) {
	detail, err := s.Deps.Detail.CompanyDetail(c.Request.Context(), c.Param("symbol"))
	if err != nil {
		writeError(c, err)
		return
	}

	status := http.StatusOK
	if detail.Degraded {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, detail)
}

// -----------------------------------------------------------------------------

func (s *DashboardServer) getCompanyHistory(c *gin.Context) {
	result, err := s.Deps.Detail.History(
		c.Request.Context(),
		c.Param("symbol"),
		c.DefaultQuery("range", "3M"),
		c.Query("resolution"),
	)
	if err != nil {
		s.Logger.Warning("History for %s failed: %v", c.Param("symbol"), err)
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// -----------------------------------------------------------------------------

func (s *DashboardServer) getHealth(c *gin.Context) {
	var latest interface{}
	if ts := s.Deps.State.Quotes.LatestUpdate(); !ts.IsZero() {
		latest = ts.UTC()
	}
	marketOpen := false
	if s.Deps.Sessions != nil {
		marketOpen = s.Deps.Sessions.AnyMarketOpen()
	}

	c.JSON(http.StatusOK, gin.H{
		"status":       "ok",
		"connections":  s.Connections(),
		"latestUpdate": latest,
		"loggedIn":     s.Deps.Tokens.IsLoggedIn(),
		"marketOpen":   marketOpen,
	})
}

// -----------------------------------------------------------------------------
// Login flow
// -----------------------------------------------------------------------------

const missingAuthConfigMessage = "Missing FYERS_APP_ID, FYERS_SECRET_ID, or FYERS_REDIRECT_URI"

func (s *DashboardServer) ensureAuthConfig(c *gin.Context) bool {
	if !s.Config.Fyers.HasAuthConfig() {
		writeError(c, helpers.NewConfigurationError(missingAuthConfigMessage))
		return false
	}
	return true
}

// -----------------------------------------------------------------------------

// authStart redirects to the upstream consent page.
func (s *DashboardServer) authStart(c *gin.Context) {
	if !s.ensureAuthConfig(c) {
		return
	}

	state := strings.TrimSpace(c.Query("state"))
	if state == "" {
		state = s.Config.Fyers.AuthState
	}
	if state == "" {
		state = uuid.NewString()
	}
	c.Redirect(http.StatusFound, s.Deps.Client.ConsentURL(state))
}

// -----------------------------------------------------------------------------

// authCallback exchanges the auth code, stores the tokens and polls at once.
func (s *DashboardServer) authCallback(c *gin.Context) {
	if !s.ensureAuthConfig(c) {
		return
	}

	code := strings.TrimSpace(c.Query("auth_code"))
	if code == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing auth_code in callback"})
		return
	}

	pair, err := s.Deps.Exchanger.Exchange(c.Request.Context(), code)
	if err != nil {
		s.Logger.Error("Auth callback failed: %v", err)
		writeError(c, err)
		return
	}

	s.Deps.Tokens.SetTokens(pair)
	if s.Deps.Persister != nil {
		if err := s.Deps.Persister.Persist(pair); err != nil {
			s.Logger.Error("Failed to persist tokens: %v", err)
		}
	}
	if s.Deps.Poller != nil {
		s.Deps.Poller.TriggerNow()
	}

	s.Logger.Info("FYERS login complete")
	c.JSON(http.StatusOK, gin.H{
		"status":          "ok",
		"message":         "FYERS login complete, quotes will refresh shortly",
		"hasAccessToken":  s.Deps.Tokens.IsLoggedIn(),
		"hasRefreshToken": s.Deps.Tokens.HasRefreshToken(),
	})
}
