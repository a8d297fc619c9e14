package fyers

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/url"
	"strings"

	"market-dashboard/src/interfaces"
	"market-dashboard/src/models"

	"github.com/buger/jsonparser"
	"github.com/google/go-querystring/query"
)

// Client builds FYERS requests. It holds no token: every data call receives
// the current access token as an argument.
type Client struct {
	Config  models.MFyersConfig
	Network interfaces.INetworkManager
}

// -----------------------------------------------------------------------------

func NewClient(cfg models.MFyersConfig, nm interfaces.INetworkManager) *Client {
	return &Client{Config: cfg, Network: nm}
}

// -----------------------------------------------------------------------------

func (c *Client) authHeader(accessToken string) map[string]string {
	return map[string]string{
		"Authorization": fmt.Sprintf("%s:%s", c.Config.AppID, accessToken),
	}
}

// AppIDHash is sha256("appId:secretId") in hex, as the token endpoints expect.
func (c *Client) AppIDHash() string {
	sum := sha256.Sum256([]byte(c.Config.AppID + ":" + c.Config.SecretID))
	return hex.EncodeToString(sum[:])
}

// -----------------------------------------------------------------------------
// Market data
// -----------------------------------------------------------------------------

// Quotes fetches the batch quote endpoint for all symbols in one request.
func (c *Client) Quotes(ctx context.Context, accessToken string, symbols []string) (*Envelope, error) {
	params := url.Values{}
	params.Set("symbols", strings.Join(symbols, ","))
	return c.get(ctx, c.Config.DataHost+"/data/quotes", params, accessToken)
}

// -----------------------------------------------------------------------------

// Depth fetches market depth (with OHLCV) for one symbol.
func (c *Client) Depth(ctx context.Context, accessToken string, symbol string) (*Envelope, error) {
	params := url.Values{}
	params.Set("symbol", symbol)
	params.Set("ohlcv_flag", "1")
	return c.get(ctx, c.Config.DataHost+"/data/depth", params, accessToken)
}

// -----------------------------------------------------------------------------

// HistoryParams is the query of the history endpoint. date_format=1 means
// range_from/range_to are yyyy-mm-dd dates.
type HistoryParams struct {
	Symbol     string `url:"symbol"`
	Resolution string `url:"resolution"`
	DateFormat int    `url:"date_format"`
	RangeFrom  string `url:"range_from"`
	RangeTo    string `url:"range_to"`
	ContFlag   int    `url:"cont_flag"`
}

func NewHistoryParams(req models.MHistoryRequest) HistoryParams {
	return HistoryParams{
		Symbol:     req.Symbol,
		Resolution: req.Resolution,
		DateFormat: 1,
		RangeFrom:  req.From.Format("2006-01-02"),
		RangeTo:    req.To.Format("2006-01-02"),
		ContFlag:   1,
	}
}

// History fetches candles for the resolved request.
func (c *Client) History(ctx context.Context, accessToken string, req models.MHistoryRequest) (*Envelope, error) {
	params, err := query.Values(NewHistoryParams(req))
	if err != nil {
		return nil, fmt.Errorf("failed to encode history params: %w", err)
	}
	return c.get(ctx, c.Config.DataHost+"/data/history", params, accessToken)
}

// -----------------------------------------------------------------------------

func (c *Client) get(ctx context.Context, endpoint string, params url.Values, accessToken string) (*Envelope, error) {
	resp, err := c.Network.Get(ctx, endpoint, params, c.authHeader(accessToken))
	if err != nil {
		return nil, err
	}
	return ParseEnvelope(resp)
}

// -----------------------------------------------------------------------------
// Authentication
// -----------------------------------------------------------------------------

// ConsentURL is the login page the user is redirected to.
func (c *Client) ConsentURL(state string) string {
	params := url.Values{}
	params.Set("client_id", c.Config.AppID)
	params.Set("redirect_uri", c.Config.RedirectURI)
	params.Set("response_type", "code")
	params.Set("state", state)
	return c.Config.AuthHost + "/api/v3/generate-authcode?" + params.Encode()
}

// -----------------------------------------------------------------------------

// TokenEndpoint is one variant of the auth-code exchange.
type TokenEndpoint struct {
	Name            string
	URL             string
	IncludeRedirect bool
}

// AuthCodeEndpoints lists the exchange variants in fallback order.
func (c *Client) AuthCodeEndpoints() []TokenEndpoint {
	return []TokenEndpoint{
		{Name: "v3 validate-authcode", URL: c.Config.TokenHost + "/api/v3/validate-authcode"},
		{Name: "v3 token", URL: c.Config.TokenHost + "/api/v3/token", IncludeRedirect: true},
		{Name: "v2 token", URL: c.Config.AuthHost + "/api/v2/token", IncludeRedirect: true},
	}
}

// TokenResult is a parsed token endpoint reply.
type TokenResult struct {
	Envelope     *Envelope
	AccessToken  string
	RefreshToken string
}

// ExchangeAuthCode posts the one-time code to a single endpoint variant.
func (c *Client) ExchangeAuthCode(ctx context.Context, endpoint TokenEndpoint, code string) (*TokenResult, error) {
	body := map[string]string{
		"grant_type": "authorization_code",
		"appIdHash":  c.AppIDHash(),
		"code":       code,
	}
	if endpoint.IncludeRedirect {
		body["redirect_uri"] = c.Config.RedirectURI
	}
	return c.postToken(ctx, endpoint.URL, body)
}

// RefreshAccessToken exchanges a refresh token for a new access token.
func (c *Client) RefreshAccessToken(ctx context.Context, refreshToken string) (*TokenResult, error) {
	body := map[string]string{
		"grant_type":    "refresh_token",
		"appIdHash":     c.AppIDHash(),
		"refresh_token": refreshToken,
	}
	if c.Config.Pin != "" {
		body["pin"] = c.Config.Pin
	}
	return c.postToken(ctx, c.Config.TokenHost+"/api/v3/validate-refresh-token", body)
}

// -----------------------------------------------------------------------------

func (c *Client) postToken(ctx context.Context, endpoint string, body map[string]string) (*TokenResult, error) {
	resp, err := c.Network.PostJSON(ctx, endpoint, body, nil)
	if err != nil {
		return nil, err
	}
	env, err := ParseEnvelope(resp)
	if err != nil {
		return nil, err
	}

	res := &TokenResult{Envelope: env}
	res.AccessToken = firstString(env.Raw, "access_token", "accessToken")
	res.RefreshToken = firstString(env.Raw, "refresh_token", "refreshToken")
	return res, nil
}

// firstString returns the first non-empty string among the keys, also looking in "d".
func firstString(data []byte, keys ...string) string {
	for _, scope := range [][]string{nil, {"d"}, {"data"}} {
		for _, key := range keys {
			path := append(append([]string{}, scope...), key)
			if s, err := jsonparser.GetString(data, path...); err == nil && strings.TrimSpace(s) != "" {
				return strings.TrimSpace(s)
			}
		}
	}
	return ""
}
