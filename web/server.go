package web

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"ddj/config"
	"ddj/domain/interfaces"
	"ddj/ratelimit"
)

// Server wires the HTTP facade over the domain services
type Server struct {
	cfg        *config.Config
	engine     *gin.Engine
	httpServer *http.Server

	clock      interfaces.RoundClock
	players    interfaces.PlayerService
	betting    interfaces.BettingService
	settlement interfaces.SettlementService
	redemption interfaces.RedemptionService
	giftCodes  interfaces.GiftCodeService
	bank       interfaces.BankService
	limiter    *ratelimit.Limiter
	now        func() time.Time
}

// NewServer creates the HTTP server and registers all routes
func NewServer(
	cfg *config.Config,
	clock interfaces.RoundClock,
	players interfaces.PlayerService,
	betting interfaces.BettingService,
	settlement interfaces.SettlementService,
	redemption interfaces.RedemptionService,
	giftCodes interfaces.GiftCodeService,
	bank interfaces.BankService,
	limiter *ratelimit.Limiter,
) *Server {
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &Server{
		cfg:        cfg,
		engine:     gin.New(),
		clock:      clock,
		players:    players,
		betting:    betting,
		settlement: settlement,
		redemption: redemption,
		giftCodes:  giftCodes,
		bank:       bank,
		limiter:    limiter,
		now:        time.Now,
	}
	s.engine.Use(gin.Recovery())
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	api := s.engine.Group("/api")

	api.GET("/health", s.handleHealth)
	api.GET("/round", s.handleRound)
	api.GET("/round/:id/result", s.handleRoundResult)
	api.GET("/leaderboard", s.handleLeaderboard)

	api.POST("/player/signup", s.handleSignup)
	api.POST("/player/redeem", RateLimit(s.limiter), s.handleRedeem)
	api.GET("/player/:id", s.handleGetPlayer)
	api.GET("/player/:id/ledger", s.handleLedger)

	api.POST("/bet", s.handlePlaceBet)

	admin := api.Group("/admin", AdminAuth(s.cfg.AdminKey))
	admin.GET("/config", s.handleGetConfig)
	admin.PUT("/config", s.handleUpdateConfig)
	admin.POST("/gift-codes", s.handleCreateGiftCodes)
	admin.POST("/settle", s.handleSettle)
	admin.GET("/bank", s.handleBank)
	admin.POST("/players/:id/credit", s.handleAdminCredit)
	admin.PUT("/players/:id/balance", s.handleAdminSetBalance)
	admin.PUT("/players/:id/status", s.handleAdminSetStatus)
}

// Run starts the HTTP server and blocks until the context is cancelled
func (s *Server) Run(ctx context.Context) error {
	s.httpServer = &http.Server{
		Addr:    fmt.Sprintf(":%d", s.cfg.Port),
		Handler: s.engine,
	}

	errCh := make(chan error, 1)
	go func() {
		log.WithField("port", s.cfg.Port).Info("HTTP server listening")
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server failed: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("http server shutdown failed: %w", err)
		}
		log.Info("HTTP server stopped")
		return nil
	}
}

// Engine exposes the router for tests
func (s *Server) Engine() *gin.Engine {
	return s.engine
}
