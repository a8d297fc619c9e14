package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync/atomic"

	"market-dashboard/src/auth"
	"market-dashboard/src/data_source/fyers"
	"market-dashboard/src/interfaces"
	"market-dashboard/src/logger"
	"market-dashboard/src/market"
	"market-dashboard/src/models"

	"github.com/gin-gonic/gin"
)

// -----------------------------------------------------------------------------
// Dependencies
// -----------------------------------------------------------------------------

// Dependencies are the services the HTTP surface reads from and drives.
type Dependencies struct {
	State     *market.State
	Companies *market.Companies
	Detail    *market.DetailService
	Tokens    *auth.TokenStore
	Exchanger *auth.Exchanger
	Persister auth.TokenPersister // nil when token persistence is off
	Client    *fyers.Client
	Poller    interfaces.IPoller
	Sessions  market.SessionChecker
}

// -----------------------------------------------------------------------------
// DashboardServer
// -----------------------------------------------------------------------------

type DashboardServer struct {
	Config *models.MConfig
	Logger *logger.Logger
	Deps   Dependencies

	engine     *gin.Engine
	httpServer *http.Server

	// WebSocket clients, owned by the hub goroutine
	clients     map[*subscriber]struct{}
	clientCount atomic.Int64
	broadcast   chan []byte
	register    chan *subscriber
	unregister  chan *subscriber
	done        chan struct{}
	stopped     atomic.Bool
}

// -----------------------------------------------------------------------------
// Constructor
// -----------------------------------------------------------------------------

// NewDashboardServer builds the router and starts the websocket hub.
func NewDashboardServer(cfg *models.MConfig, deps Dependencies, log *logger.Logger) *DashboardServer {
	if !strings.EqualFold(cfg.LogLevel, "DEBUG") {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &DashboardServer{
		Config:  cfg,
		Logger:  log,
		Deps:    deps,
		engine:  gin.Default(),
		clients: make(map[*subscriber]struct{}),
		// Buffered so a poll never waits on the hub
		broadcast:  make(chan []byte, 256),
		register:   make(chan *subscriber),
		unregister: make(chan *subscriber),
		done:       make(chan struct{}),
	}

	// Add CORS Middleware
	s.engine.Use(func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if strings.HasPrefix(origin, "http://127.0.0.1:") || strings.HasPrefix(origin, "http://localhost:") {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		}
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	s.setupRoutes()
	go s.runHub()
	return s
}

// -----------------------------------------------------------------------------
// Route Setup
// -----------------------------------------------------------------------------

func (s *DashboardServer) setupRoutes() {
	api := s.engine.Group("/api")
	api.GET("/quotes", s.getQuotes)
	api.GET("/companies", s.getCompanies)
	api.GET("/company", s.getCompanyMissingSymbol)
	api.GET("/company/:symbol", s.getCompanyDetail)
	api.GET("/company/:symbol/history", s.getCompanyHistory)
	api.GET("/health", s.getHealth)

	for _, path := range []string{"/auth/start", "/auth/login"} {
		s.engine.GET(path, s.authStart)
	}
	for _, path := range []string{"/auth/callback", "/auth/fyers/callback", "/callback"} {
		s.engine.GET(path, s.authCallback)
	}

	// WebSocket endpoint
	s.engine.GET("/ws", s.handleWebSocket)

	s.engine.NoRoute(s.fallback)
}

// Handler exposes the router, mainly for tests.
func (s *DashboardServer) Handler() http.Handler {
	return s.engine
}

// -----------------------------------------------------------------------------
// Server Lifecycle
// -----------------------------------------------------------------------------

// Start serves HTTP until Shutdown is called.
func (s *DashboardServer) Start() error {
	addr := fmt.Sprintf("%s:%d", s.Config.Host, s.Config.Port)
	s.httpServer = &http.Server{Addr: addr, Handler: s.engine}
	s.Logger.Info("Server listening on http://%s", addr)

	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// -----------------------------------------------------------------------------

// Shutdown stops the HTTP listener and the hub, closing every subscriber.
func (s *DashboardServer) Shutdown(ctx context.Context) error {
	var err error
	if s.httpServer != nil {
		err = s.httpServer.Shutdown(ctx)
	}
	if s.stopped.CompareAndSwap(false, true) {
		close(s.done)
	}
	return err
}
