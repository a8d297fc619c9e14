package market

import (
	"context"
	"strings"
	"sync"
	"time"

	"market-dashboard/src/data_source/fyers"
	"market-dashboard/src/helpers"
	"market-dashboard/src/logger"
	"market-dashboard/src/models"
	"market-dashboard/src/normalize"
)

const (
	WarningCredentialsUnavailable = "FYERS access token unavailable; showing last cached quote"
	WarningCachedQuote            = "Live quote unavailable; showing last cached quote"
	WarningNoDepth                = "No market depth returned"
	WarningNoCandles              = "No candles returned for the requested range"
)

// DetailService serves the per-company views: live detail and history.
type DetailService struct {
	Client      *fyers.Client
	Credentials *Credentials
	State       *State
	Companies   *Companies
	Location    *time.Location
	Logger      *logger.Logger
	now         func() time.Time
}

func NewDetailService(client *fyers.Client, creds *Credentials, state *State, companies *Companies, loc *time.Location, log *logger.Logger) *DetailService {
	if loc == nil {
		loc = time.UTC
	}
	return &DetailService{
		Client:      client,
		Credentials: creds,
		State:       state,
		Companies:   companies,
		Location:    loc,
		Logger:      log,
		now:         time.Now,
	}
}

// -----------------------------------------------------------------------------

func (s *DetailService) checkSymbol(symbol string) (string, error) {
	symbol = strings.TrimSpace(symbol)
	if symbol == "" {
		return "", helpers.NewValidationError("symbol is required")
	}
	if !s.Companies.Contains(symbol) {
		return "", helpers.NewNotFoundError("unknown symbol " + symbol)
	}
	return symbol, nil
}

func (s *DetailService) cachedQuote(symbol string) *models.MDetailQuote {
	if q, ok := s.State.Quotes.Get(symbol); ok {
		return models.DetailFromSnapshot(q)
	}
	return nil
}

// -----------------------------------------------------------------------------
// Company detail
// -----------------------------------------------------------------------------

// CompanyDetail fetches the live quote and market depth concurrently. Without
// credentials it returns a degraded payload built from the cache.
func (s *DetailService) CompanyDetail(ctx context.Context, symbol string) (*models.MCompanyDetail, error) {
	symbol, err := s.checkSymbol(symbol)
	if err != nil {
		return nil, err
	}

	detail := &models.MCompanyDetail{
		Symbol:   symbol,
		Company:  s.Companies.Metadata(symbol),
		Warnings: []string{},
	}

	token := s.Credentials.EnsureAvailable(ctx, true)
	if token == "" {
		detail.Quote = s.cachedQuote(symbol)
		detail.Availability = models.MAvailability{
			Quote: models.AvailabilityUnavailable,
			Depth: models.AvailabilityUnavailable,
		}
		detail.Warnings = append(detail.Warnings, WarningCredentialsUnavailable)
		detail.Degraded = true
		detail.FetchedAt = s.now().UTC()
		s.State.Statuses.Set(symbol, models.StatusNoKey, MessageNoKey)
		return detail, nil
	}

	var (
		wg                 sync.WaitGroup
		quoteEnv, depthEnv *fyers.Envelope
		quoteErr, depthErr error
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		quoteEnv, quoteErr = s.Credentials.WithAuthRetry(ctx, token, func(ctx context.Context, t string) (*fyers.Envelope, error) {
			return s.Client.Quotes(ctx, t, []string{symbol})
		})
	}()
	go func() {
		defer wg.Done()
		depthEnv, depthErr = s.Credentials.WithAuthRetry(ctx, token, func(ctx context.Context, t string) (*fyers.Envelope, error) {
			return s.Client.Depth(ctx, t, symbol)
		})
	}()
	wg.Wait()

	now := s.now()
	s.applyQuote(detail, quoteEnv, quoteErr, now)
	s.applyDepth(detail, depthEnv, depthErr)
	detail.FetchedAt = now.UTC()
	return detail, nil
}

func (s *DetailService) applyQuote(detail *models.MCompanyDetail, env *fyers.Envelope, err error, now time.Time) {
	if reason := FailureReason(env, err); reason != "" {
		detail.Availability.Quote = models.AvailabilityError
		detail.Warnings = append(detail.Warnings, "Quote request failed: "+reason)
		s.State.Statuses.Set(detail.Symbol, models.StatusError, reason)
		s.Logger.Warning("Detail quote for %s failed: %s", detail.Symbol, reason)
	} else {
		detail.Availability.Quote = models.AvailabilityOK
		if q, ok := normalize.FindDetailQuote(env.Items(), detail.Symbol, now); ok {
			detail.Quote = q
			s.State.Statuses.Set(detail.Symbol, models.StatusOK, MessageQuoteAvailable)
		} else {
			s.State.Statuses.Set(detail.Symbol, models.StatusNoData, MessageNoQuoteData)
		}
	}

	if detail.Quote == nil {
		if cached := s.cachedQuote(detail.Symbol); cached != nil {
			detail.Quote = cached
			detail.Warnings = append(detail.Warnings, WarningCachedQuote)
		}
	}
}

func (s *DetailService) applyDepth(detail *models.MCompanyDetail, env *fyers.Envelope, err error) {
	if reason := FailureReason(env, err); reason != "" {
		detail.Availability.Depth = models.AvailabilityError
		detail.Warnings = append(detail.Warnings, "Market depth request failed: "+reason)
		s.Logger.Warning("Depth for %s failed: %s", detail.Symbol, reason)
		return
	}

	detail.Availability.Depth = models.AvailabilityOK
	if trade, ok := normalize.Trade(env.Data(), detail.Symbol); ok {
		detail.Trade = trade
		return
	}
	detail.Warnings = append(detail.Warnings, WarningNoDepth)
}

// -----------------------------------------------------------------------------
// History
// -----------------------------------------------------------------------------

// History returns candles for symbol over the requested range.
func (s *DetailService) History(ctx context.Context, symbol, rangeToken, resolution string) (*models.MHistoryResult, error) {
	symbol, err := s.checkSymbol(symbol)
	if err != nil {
		return nil, err
	}

	req := BuildHistoryRequest(symbol, rangeToken, resolution, s.now().In(s.Location))

	token := s.Credentials.EnsureAvailable(ctx, true)
	if token == "" {
		return nil, helpers.NewCredentialError("FYERS access token unavailable")
	}

	env, err := s.Credentials.WithAuthRetry(ctx, token, func(ctx context.Context, t string) (*fyers.Envelope, error) {
		return s.Client.History(ctx, t, req)
	})
	if err != nil {
		return nil, helpers.NewUpstreamError("history request failed: "+err.Error(), err)
	}

	points := normalize.Candles(env.Raw)
	if !env.OK() && !env.NoData() && len(points) == 0 {
		return nil, helpers.NewUpstreamError(env.ErrorMessage(), nil)
	}

	result := &models.MHistoryResult{
		Symbol:     symbol,
		Company:    s.Companies.Metadata(symbol),
		Range:      req.Range,
		Resolution: req.Resolution,
		Points:     points,
		Count:      len(points),
		FetchedAt:  s.now().UTC(),
	}
	if len(points) == 0 {
		warning := WarningNoCandles
		result.Warning = &warning
	}
	return result, nil
}
