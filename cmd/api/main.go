package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/sorted-fund/sponsor-api/internal/config"
	"github.com/sorted-fund/sponsor-api/internal/db"
	"github.com/sorted-fund/sponsor-api/internal/handlers"
	"github.com/sorted-fund/sponsor-api/internal/logger"
	"github.com/sorted-fund/sponsor-api/internal/server"
	"github.com/sorted-fund/sponsor-api/internal/services"
)

// @title Sponsorship Authorization API
// @version 1.0
// @description Fund reservation ledger and gas sponsorship authorization engine
// @BasePath /api/v1
func main() {
	_ = godotenv.Load()

	stage := os.Getenv("STAGE")
	if stage == "" {
		stage = "local"
	}
	logger.InitLogger(stage)
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		logger.Fatal("Failed to load configuration", zap.Error(err))
	}

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("Failed to create database pool", zap.Error(err))
	}
	defer pool.Close()
	if err := pool.Ping(ctx); err != nil {
		logger.Fatal("Failed to reach database", zap.Error(err))
	}

	store := db.NewStore(pool)
	policies := services.NewPolicyService(store)
	ledger := services.NewFundLedgerService(store)
	gasPrices, err := services.NewGasPriceService(cfg)
	if err != nil {
		logger.Fatal("Failed to initialize gas price service", zap.Error(err))
	}
	signer, err := services.NewSigningService(cfg.SignerPrivateKey)
	if err != nil {
		logger.Fatal("Failed to initialize signing service", zap.Error(err))
	}

	common := &handlers.CommonServices{
		Authorization:  services.NewAuthorizationService(store, policies, ledger, gasPrices, signer, cfg),
		Reconciliation: services.NewReconciliationService(store, ledger, gasPrices),
		Projects:       services.NewProjectService(store, ledger),
	}

	srv := server.New(cfg, common)
	go func() {
		if err := srv.Run(); err != nil {
			logger.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Graceful shutdown failed", zap.Error(err))
	}
}
