package grpc_control

import (
	"context"
	"time"

	"market-dashboard/src/auth"
	"market-dashboard/src/interfaces"
	"market-dashboard/src/logger"
	"market-dashboard/src/market"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// ControlService implements DashboardControlServer.
type ControlService struct {
	Tokens      *auth.TokenStore
	State       *market.State
	Companies   *market.Companies
	Poller      interfaces.IPoller
	Refresher   market.Refresher
	Sessions    market.SessionChecker
	Connections func() int
	Logger      *logger.Logger
}

// -----------------------------------------------------------------------------

func (s *ControlService) GetStatus(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	symbols := make(map[string]interface{})
	for _, c := range s.Companies.WithStatus(s.State.Statuses) {
		entry := map[string]interface{}{
			"status":  string(c.Status),
			"message": c.StatusMessage,
		}
		if c.StatusUpdatedAt != nil {
			entry["updatedAt"] = c.StatusUpdatedAt.Format(time.RFC3339)
		}
		symbols[c.Symbol] = entry
	}

	fields := map[string]interface{}{
		"loggedIn":        s.Tokens.IsLoggedIn(),
		"hasRefreshToken": s.Tokens.HasRefreshToken(),
		"quotes":          s.State.Quotes.Len(),
		"symbols":         symbols,
		"marketOpen":      s.Sessions != nil && s.Sessions.AnyMarketOpen(),
	}
	if expiry, ok := s.Tokens.AccessTokenExpiry(); ok {
		fields["accessTokenExpiry"] = expiry.UTC().Format(time.RFC3339)
	}
	if s.Connections != nil {
		fields["connections"] = s.Connections()
	}

	out, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "failed to encode status: %v", err)
	}
	return out, nil
}

// -----------------------------------------------------------------------------

func (s *ControlService) PollNow(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	if s.Poller == nil {
		return nil, status.Error(codes.Unavailable, "poller not running")
	}
	n := s.Poller.PollOnce(ctx)
	s.Logger.Info("gRPC: PollNow received %d quotes", n)
	return structpb.NewStruct(map[string]interface{}{"quotes": n})
}

// -----------------------------------------------------------------------------

func (s *ControlService) RefreshToken(ctx context.Context, _ *emptypb.Empty) (*wrapperspb.BoolValue, error) {
	ok := s.Refresher.Refresh(ctx)
	s.Logger.Info("gRPC: RefreshToken success=%v", ok)
	return wrapperspb.Bool(ok), nil
}
