package main

import (
	"context"
	"flag"
	"log"
	"time"

	"spendlens/internal/models"
	"spendlens/internal/repository"
	"spendlens/internal/seed"
	"spendlens/pkg/config"
	"spendlens/pkg/logger"
	"spendlens/pkg/postgres"

	"go.uber.org/zap"
)

func main() {
	seedValue := flag.Int64("seed", 42, "deterministic generator seed")
	perProfile := flag.Int("per-profile", 2, "users to create per profile")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	if err := logger.Init(cfg.Logger.Level); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()
	appLogger := logger.Get()

	// Connect to database
	ctx := context.Background()
	db, err := postgres.NewPool(ctx, &cfg.Database, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	userRepo := repository.NewUserRepository(db, appLogger)
	accountRepo := repository.NewAccountRepository(db, appLogger)
	txRepo := repository.NewTransactionRepository(db, appLogger)
	liabilityRepo := repository.NewLiabilityRepository(db, appLogger)

	generator := seed.NewGenerator(*seedValue, time.Now())

	var total int
	for _, profile := range seed.Profiles {
		for i := 0; i < *perProfile; i++ {
			data := generator.Generate(profile, i)
			if err := insertUser(ctx, data, userRepo, accountRepo, txRepo, liabilityRepo); err != nil {
				appLogger.Fatal("Seeding failed",
					zap.String("profile", string(profile)),
					zap.Int("index", i),
					zap.Error(err),
				)
			}
			total++
			appLogger.Info("Seeded user",
				zap.String("profile", string(profile)),
				zap.String("user_id", data.User.ID.String()),
				zap.Int("accounts", len(data.Accounts)),
				zap.Int("transactions", len(data.Transactions)),
			)
		}
	}

	appLogger.Info("Seeding complete",
		zap.Int64("seed", *seedValue),
		zap.Int("users", total),
	)
}

func insertUser(
	ctx context.Context,
	data seed.UserData,
	userRepo *repository.UserRepository,
	accountRepo *repository.AccountRepository,
	txRepo *repository.TransactionRepository,
	liabilityRepo *repository.LiabilityRepository,
) error {
	if err := userRepo.Create(ctx, &data.User); err != nil {
		return err
	}

	accounts := make([]*models.Account, 0, len(data.Accounts))
	for i := range data.Accounts {
		accounts = append(accounts, &data.Accounts[i])
	}
	if err := accountRepo.CreateBatch(ctx, accounts); err != nil {
		return err
	}

	transactions := make([]*models.Transaction, 0, len(data.Transactions))
	for i := range data.Transactions {
		transactions = append(transactions, &data.Transactions[i])
	}
	if err := txRepo.CreateBatch(ctx, transactions); err != nil {
		return err
	}

	liabilities := make([]*models.Liability, 0, len(data.Liabilities))
	for i := range data.Liabilities {
		liabilities = append(liabilities, &data.Liabilities[i])
	}
	return liabilityRepo.CreateBatch(ctx, liabilities)
}
