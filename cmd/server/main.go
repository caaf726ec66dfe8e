package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	partnerapp "github.com/financeiro/backend/internal/application/partner"
	reconciliationapp "github.com/financeiro/backend/internal/application/reconciliation"
	"github.com/financeiro/backend/internal/infrastructure/auth"
	"github.com/financeiro/backend/internal/infrastructure/cache"
	"github.com/financeiro/backend/internal/infrastructure/config"
	"github.com/financeiro/backend/internal/infrastructure/logger"
	"github.com/financeiro/backend/internal/infrastructure/persistence"
	"github.com/financeiro/backend/internal/interfaces/http/handler"
	"github.com/financeiro/backend/internal/interfaces/http/middleware"
	"github.com/financeiro/backend/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log, err := logger.New(cfg.Log)
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting supplier payment service",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Database with zap-backed GORM logging
	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level))
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected")

	// Caches: Redis when enabled, in-process otherwise
	cacheFactory := cache.NewFactory(cfg.Redis, cfg.Cache, log)
	balanceCache, err := cacheFactory.BalanceCache()
	if err != nil {
		log.Fatal("Failed to initialize balance cache", zap.Error(err))
	}
	idempotencyStore, err := cacheFactory.IdempotencyStore()
	if err != nil {
		log.Fatal("Failed to initialize idempotency store", zap.Error(err))
	}

	// Repositories
	supplierRepo := persistence.NewGormSupplierRepository(db.DB)
	purchaseRepo := persistence.NewGormPurchaseRepository(db.DB)
	paymentRepo := persistence.NewGormPaymentRepository(db.DB)
	accountRepo := persistence.NewGormAccountRepository(db.DB)
	txScope := persistence.NewGormTransactionScope(db.DB)

	// Application services
	validator := reconciliationapp.NewBalanceValidator(accountRepo, balanceCache,
		reconciliationapp.WithDebounceWindow(cfg.Cache.DebounceWindow),
		reconciliationapp.WithValidatorLogger(log),
	)
	orchestrator := reconciliationapp.NewPaymentOrchestrator(
		txScope, purchaseRepo, paymentRepo, accountRepo, supplierRepo,
		validator, balanceCache, idempotencyStore,
		reconciliationapp.WithMaxAttempts(cfg.Payment.MaxRetries),
		reconciliationapp.WithStoreTimeout(cfg.Payment.StoreTimeout),
		reconciliationapp.WithIdempotencyTTL(cfg.Payment.IdempotencyTTL),
		reconciliationapp.WithOrchestratorLogger(log),
	)
	reversalService := reconciliationapp.NewReversalService(txScope, balanceCache,
		reconciliationapp.WithReversalMaxAttempts(cfg.Payment.MaxRetries),
		reconciliationapp.WithReversalStoreTimeout(cfg.Payment.StoreTimeout),
		reconciliationapp.WithReversalLogger(log),
	)
	supplierService := partnerapp.NewSupplierService(supplierRepo)
	purchaseService := reconciliationapp.NewPurchaseService(purchaseRepo, paymentRepo, supplierRepo)
	accountService := reconciliationapp.NewAccountService(accountRepo, validator, balanceCache)

	jwtService := auth.NewJWTService(cfg.JWT)

	// HTTP engine and middleware
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	engine.Use(middleware.RequestID())
	engine.Use(logger.GinMiddleware(log))
	engine.Use(logger.Recovery(log))
	engine.Use(middleware.JWTAuthMiddleware(jwtService))

	r := router.NewRouter(engine)
	r.Register(handler.NewSystemHandler(db)).
		Register(handler.NewSupplierHandler(supplierService)).
		Register(handler.NewPurchaseHandler(purchaseService)).
		Register(handler.NewAccountHandler(accountService)).
		Register(handler.NewPaymentHandler(orchestrator, reversalService))
	r.Setup()

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}
