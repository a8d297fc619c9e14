package auth

import (
	"context"
	"fmt"
	"strings"

	"market-dashboard/src/data_source/fyers"
	"market-dashboard/src/helpers"
	"market-dashboard/src/logger"
	"market-dashboard/src/models"
)

// Exchanger turns a one-time auth code into an initial token pair, trying the
// upstream endpoint variants in a fixed order.
type Exchanger struct {
	Client *fyers.Client
	Logger *logger.Logger
}

func NewExchanger(client *fyers.Client, log *logger.Logger) *Exchanger {
	return &Exchanger{Client: client, Logger: log}
}

// -----------------------------------------------------------------------------

// Exchange stops at the first variant yielding an access token. When all fail
// the returned UpstreamError lists every variant's reason.
func (e *Exchanger) Exchange(ctx context.Context, code string) (models.MTokenPair, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return models.MTokenPair{}, helpers.NewValidationError("missing auth_code")
	}
	if !e.Client.Config.HasAuthConfig() {
		return models.MTokenPair{}, helpers.NewConfigurationError("Missing FYERS_APP_ID, FYERS_SECRET_ID, or FYERS_REDIRECT_URI")
	}

	var reasons []string
	for _, endpoint := range e.Client.AuthCodeEndpoints() {
		res, err := e.Client.ExchangeAuthCode(ctx, endpoint, code)
		if err != nil {
			reasons = append(reasons, fmt.Sprintf("%s: %v", endpoint.Name, err))
			e.Logger.Warning("Auth code exchange via %s failed: %v", endpoint.Name, err)
			continue
		}
		if res.AccessToken == "" {
			reason := res.Envelope.ErrorMessage()
			if res.Envelope.Message == "" {
				reason = fmt.Sprintf("HTTP %d: %s", res.Envelope.HTTPStatus, reason)
			}
			reasons = append(reasons, fmt.Sprintf("%s: %s", endpoint.Name, reason))
			e.Logger.Warning("Auth code exchange via %s returned no access token: %s", endpoint.Name, reason)
			continue
		}

		e.Logger.Info("Auth code exchanged via %s", endpoint.Name)
		return models.MTokenPair{AccessToken: res.AccessToken, RefreshToken: res.RefreshToken}, nil
	}

	return models.MTokenPair{}, helpers.NewUpstreamError(
		"auth code exchange failed ("+strings.Join(reasons, "; ")+")", nil)
}
