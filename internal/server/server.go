package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerfiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/sorted-fund/sponsor-api/internal/config"
	"github.com/sorted-fund/sponsor-api/internal/handlers"
	"github.com/sorted-fund/sponsor-api/internal/logger"
)

// Server wraps the HTTP server and its router.
type Server struct {
	engine *gin.Engine
	http   *http.Server
	logger *zap.Logger
}

// New builds the router with all routes registered.
func New(cfg *config.Config, common *handlers.CommonServices) *Server {
	if cfg.Stage == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true
	corsConfig.AllowHeaders = append(corsConfig.AllowHeaders, "X-Project-ID")
	engine.Use(cors.New(corsConfig))

	engine.GET("/health", handlers.HealthCheck)
	engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerfiles.Handler))

	sponsorHandler := handlers.NewSponsorHandler(common)
	projectHandler := handlers.NewProjectHandler(common)

	v1 := engine.Group("/api/v1")
	{
		sponsor := v1.Group("/sponsor")
		{
			sponsor.POST("/authorize", sponsorHandler.AuthorizeSponsorship)
			sponsor.POST("/user-operation", sponsorHandler.LinkUserOperation)
			sponsor.POST("/reconcile", sponsorHandler.ReconcileSponsorship)
			sponsor.GET("/gas-stats", sponsorHandler.GetGasStats)
		}

		projects := v1.Group("/projects")
		{
			projects.POST("/gas-tank/credit", projectHandler.CreditGasTank)
			projects.GET("/gas-tank", projectHandler.GetGasTankStatus)
			projects.GET("/gas-tank/parity", projectHandler.CheckFundsParity)
			projects.GET("/gas-tank/ledger", projectHandler.ListLedgerEntries)
		}
	}

	return &Server{
		engine: engine,
		http: &http.Server{
			Addr:              ":" + cfg.Port,
			Handler:           engine,
			ReadHeaderTimeout: 10 * time.Second,
		},
		logger: logger.Log,
	}
}

// Engine exposes the router, used by tests.
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

// Run serves until the listener fails or Shutdown is called.
func (s *Server) Run() error {
	s.logger.Info("Starting HTTP server", zap.String("addr", s.http.Addr))
	if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}
