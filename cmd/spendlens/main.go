package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"spendlens/internal/api"
	"spendlens/internal/api/handlers"
	"spendlens/internal/personas"
	"spendlens/internal/recommend"
	"spendlens/internal/repository"
	"spendlens/internal/service"
	"spendlens/internal/signals"
	"spendlens/pkg/auth"
	"spendlens/pkg/config"
	"spendlens/pkg/logger"
	"spendlens/pkg/postgres"

	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize global logger
	if err := logger.Init(cfg.Logger.Level); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	appLogger := logger.Get()
	appLogger.Info("Starting spendlens service")

	// Initialize database
	ctx := context.Background()
	db, err := postgres.NewPool(ctx, &cfg.Database, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	// Initialize repositories
	userRepo := repository.NewUserRepository(db, appLogger)
	accountRepo := repository.NewAccountRepository(db, appLogger)
	txRepo := repository.NewTransactionRepository(db, appLogger)
	liabilityRepo := repository.NewLiabilityRepository(db, appLogger)
	recRepo := repository.NewRecommendationRepository(db, appLogger)
	traceRepo := repository.NewTraceRepository(db, appLogger)
	personaRepo := repository.NewPersonaRepository(db, appLogger)
	consentRepo := repository.NewConsentRepository(db, appLogger)

	// Initialize JWT manager
	jwtManager := auth.NewJWTManager(cfg.JWT.SecretKey, cfg.JWT.Expiration, cfg.JWT.RefreshExp)

	// Initialize the analysis pipeline
	engineCfg := signals.DefaultConfig()
	if cfg.Engine.SubscriptionLookbackDays > 0 {
		engineCfg.SubscriptionLookbackDays = cfg.Engine.SubscriptionLookbackDays
	}
	if cfg.Engine.LargeExpenseCutoff > 0 {
		engineCfg.LargeExpenseCutoff = cfg.Engine.LargeExpenseCutoff
	}
	if cfg.Engine.IncomeDepositFloor > 0 {
		engineCfg.IncomeDepositFloor = cfg.Engine.IncomeDepositFloor
	}
	engine := signals.NewEngine(engineCfg, appLogger)
	classifier := personas.NewClassifier(appLogger)
	selector := recommend.NewSelector(recommend.Config{
		MaxEducation: cfg.Selector.MaxEducation,
		MaxOffers:    cfg.Selector.MaxOffers,
	})

	// Initialize services
	authService := service.NewAuthService(userRepo, jwtManager, appLogger)
	insightService := service.NewInsightService(
		userRepo, accountRepo, txRepo, liabilityRepo,
		recRepo, traceRepo, personaRepo, consentRepo,
		engine, classifier, selector, appLogger,
	)
	consentService := service.NewConsentService(userRepo, consentRepo, recRepo, insightService, appLogger)
	operatorService := service.NewOperatorService(recRepo, appLogger)
	batchService := service.NewBatchService(insightService, cfg.Batch.Workers, appLogger)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService, appLogger)
	insightHandler := handlers.NewInsightHandler(insightService, appLogger)
	consentHandler := handlers.NewConsentHandler(consentService, appLogger)
	operatorHandler := handlers.NewOperatorHandler(operatorService, batchService, appLogger)

	// Setup router
	app := api.SetupRouter(authHandler, insightHandler, consentHandler, operatorHandler, jwtManager, appLogger)

	// Start server
	go func() {
		addr := ":" + cfg.Server.Port
		appLogger.Info("Server starting", zap.String("address", addr))
		if err := app.Listen(addr); err != nil {
			appLogger.Fatal("Server failed", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server")
	if err := app.Shutdown(); err != nil {
		appLogger.Error("Server shutdown error", zap.Error(err))
	}
}
