package grpc_control

import (
	"context"
	"net"
	"testing"
	"time"

	"market-dashboard/src/auth"
	"market-dashboard/src/data_source/fyers/fyerstest"
	"market-dashboard/src/market"
	"market-dashboard/src/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
)

type stubPoller struct{ polled int }

func (p *stubPoller) TriggerNow() {}

func (p *stubPoller) PollOnce(context.Context) int {
	p.polled++
	return 3
}

type stubRefresher struct{ ok bool }

func (r stubRefresher) Refresh(context.Context) bool { return r.ok }

type openSessions struct{}

func (openSessions) AnyMarketOpen() bool { return true }

// -----------------------------------------------------------------------------

func dialControl(t *testing.T, svc *ControlService) *DashboardControlClient {
	lis := bufconn.Listen(1 << 20)
	srv := grpc.NewServer()
	RegisterDashboardControlServer(srv, svc)
	go srv.Serve(lis)
	t.Cleanup(srv.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return NewDashboardControlClient(conn)
}

func newService(pair models.MTokenPair) *ControlService {
	state := market.NewState()
	companies := market.NewCompanies([]models.MCompany{{Symbol: "NSE:NTPC-EQ"}, {Symbol: "NSE:NHPC-EQ"}})
	state.Statuses.Set("NSE:NTPC-EQ", models.StatusOK, market.MessageQuoteAvailable)
	state.Quotes.Merge([]models.MQuoteSnapshot{{Symbol: "NSE:NTPC-EQ", Price: 350}})

	return &ControlService{
		Tokens:      auth.NewTokenStore(pair),
		State:       state,
		Companies:   companies,
		Poller:      &stubPoller{},
		Refresher:   stubRefresher{ok: true},
		Sessions:    openSessions{},
		Connections: func() int { return 2 },
		Logger:      fyerstest.Logger(),
	}
}

// -----------------------------------------------------------------------------

func TestGetStatus(t *testing.T) {
	expiry := time.Date(2030, 1, 2, 3, 4, 5, 0, time.UTC)
	client := dialControl(t, newService(models.MTokenPair{AccessToken: fyerstest.Token(expiry)}))

	out, err := client.GetStatus(context.Background())
	require.NoError(t, err)

	fields := out.AsMap()
	assert.Equal(t, true, fields["loggedIn"])
	assert.Equal(t, false, fields["hasRefreshToken"])
	assert.Equal(t, float64(1), fields["quotes"])
	assert.Equal(t, float64(2), fields["connections"])
	assert.Equal(t, true, fields["marketOpen"])
	assert.Equal(t, "2030-01-02T03:04:05Z", fields["accessTokenExpiry"])

	symbols, ok := fields["symbols"].(map[string]interface{})
	require.True(t, ok)
	ntpc := symbols["NSE:NTPC-EQ"].(map[string]interface{})
	assert.Equal(t, "ok", ntpc["status"])
	assert.Contains(t, ntpc, "updatedAt")
	nhpc := symbols["NSE:NHPC-EQ"].(map[string]interface{})
	assert.Equal(t, "pending", nhpc["status"])
	assert.NotContains(t, nhpc, "updatedAt")
}

func TestPollNow(t *testing.T) {
	svc := newService(models.MTokenPair{})
	client := dialControl(t, svc)

	out, err := client.PollNow(context.Background())
	require.NoError(t, err)
	assert.Equal(t, float64(3), out.AsMap()["quotes"])
	assert.Equal(t, 1, svc.Poller.(*stubPoller).polled)

	svc.Poller = nil
	_, err = client.PollNow(context.Background())
	assert.Equal(t, codes.Unavailable, status.Code(err))
}

func TestRefreshToken(t *testing.T) {
	svc := newService(models.MTokenPair{})
	client := dialControl(t, svc)

	out, err := client.RefreshToken(context.Background())
	require.NoError(t, err)
	assert.True(t, out.GetValue())

	svc.Refresher = stubRefresher{ok: false}
	out, err = client.RefreshToken(context.Background())
	require.NoError(t, err)
	assert.False(t, out.GetValue())
}
