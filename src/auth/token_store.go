package auth

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"sync"
	"time"

	"market-dashboard/src/models"

	"github.com/dgrijalva/jwt-go"
)

// TokenStore holds the access/refresh pair and the decoded access-token expiry.
type TokenStore struct {
	mu           sync.RWMutex
	accessToken  string
	refreshToken string
	expiry       time.Time
	hasExpiry    bool
	now          func() time.Time
}

// -----------------------------------------------------------------------------

func NewTokenStore(pair models.MTokenPair) *TokenStore {
	s := &TokenStore{now: time.Now}
	s.SetTokens(pair)
	return s
}

// -----------------------------------------------------------------------------

func (s *TokenStore) SetAccessToken(token string) {
	token = strings.TrimSpace(token)
	expiry, ok := TokenExpiry(token)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.accessToken = token
	s.expiry = expiry
	s.hasExpiry = ok
}

func (s *TokenStore) SetRefreshToken(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.refreshToken = strings.TrimSpace(token)
}

// SetTokens updates whichever members of the pair are non-empty.
func (s *TokenStore) SetTokens(pair models.MTokenPair) {
	if pair.AccessToken != "" {
		s.SetAccessToken(pair.AccessToken)
	}
	if pair.RefreshToken != "" {
		s.SetRefreshToken(pair.RefreshToken)
	}
}

// -----------------------------------------------------------------------------

func (s *TokenStore) AccessToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.accessToken
}

func (s *TokenStore) RefreshToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.refreshToken
}

func (s *TokenStore) Pair() models.MTokenPair {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return models.MTokenPair{AccessToken: s.accessToken, RefreshToken: s.refreshToken}
}

func (s *TokenStore) IsLoggedIn() bool {
	return s.AccessToken() != ""
}

func (s *TokenStore) HasRefreshToken() bool {
	return s.RefreshToken() != ""
}

// AccessTokenExpiry returns the decoded expiry, if the token carries one.
func (s *TokenStore) AccessTokenExpiry() (time.Time, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.expiry, s.hasExpiry
}

// -----------------------------------------------------------------------------

// AccessTokenExpiresSoon is true when a known expiry is within threshold.
// A token without a decodable expiry never counts as expiring.
func (s *TokenStore) AccessTokenExpiresSoon(threshold time.Duration) bool {
	if threshold < 0 {
		threshold = 0
	}
	expiry, ok := s.AccessTokenExpiry()
	if !ok {
		return false
	}
	return expiry.Sub(s.now()) <= threshold
}

// -----------------------------------------------------------------------------

// TokenExpiry reads the integer-seconds "exp" claim from the JWT payload
// segment without verifying the signature. Any decode failure means unknown.
func TokenExpiry(token string) (time.Time, bool) {
	parts := strings.Split(token, ".")
	if len(parts) < 2 {
		return time.Time{}, false
	}
	payload, err := jwt.DecodeSegment(parts[1])
	if err != nil {
		return time.Time{}, false
	}

	claims := jwt.MapClaims{}
	dec := json.NewDecoder(strings.NewReader(string(payload)))
	dec.UseNumber()
	if err := dec.Decode(&claims); err != nil {
		return time.Time{}, false
	}

	var exp float64
	switch v := claims["exp"].(type) {
	case json.Number:
		exp, err = v.Float64()
	case string:
		exp, err = strconv.ParseFloat(strings.TrimSpace(v), 64)
	default:
		return time.Time{}, false
	}
	if err != nil || math.IsNaN(exp) || math.IsInf(exp, 0) || exp <= 0 {
		return time.Time{}, false
	}
	return time.Unix(int64(exp), 0), true
}
