package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	JWT      JWTConfig
	Engine   EngineConfig
	Selector SelectorConfig
	Batch    BatchConfig
	Logger   LoggerConfig
}

type LoggerConfig struct {
	Level string
}

type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type JWTConfig struct {
	SecretKey  string
	Expiration time.Duration
	RefreshExp time.Duration
}

type EngineConfig struct {
	SubscriptionLookbackDays int
	LargeExpenseCutoff       float64
	IncomeDepositFloor       float64
}

type SelectorConfig struct {
	MaxEducation int
	MaxOffers    int
}

type BatchConfig struct {
	Workers int
}

func Load() (*Config, error) {
	// Try to load .env file from current directory or project root
	envFiles := []string{".env", "../.env", "../../.env"}
	for _, envFile := range envFiles {
		if err := godotenv.Load(envFile); err == nil {
			break
		}
	}
	// A missing .env file is fine; plain environment variables work too
	// (useful for Docker/K8s).

	readTimeout, _ := strconv.Atoi(getEnv("SERVER_READ_TIMEOUT", "30"))
	writeTimeout, _ := strconv.Atoi(getEnv("SERVER_WRITE_TIMEOUT", "30"))
	jwtExp, _ := strconv.Atoi(getEnv("JWT_EXPIRATION_HOURS", "24"))
	refreshExp, _ := strconv.Atoi(getEnv("JWT_REFRESH_EXPIRATION_HOURS", "168"))
	lookbackDays, _ := strconv.Atoi(getEnv("ENGINE_SUBSCRIPTION_LOOKBACK_DAYS", "90"))
	largeExpense, _ := strconv.ParseFloat(getEnv("ENGINE_LARGE_EXPENSE_CUTOFF", "10000"), 64)
	depositFloor, _ := strconv.ParseFloat(getEnv("ENGINE_INCOME_DEPOSIT_FLOOR", "500"), 64)
	maxEducation, _ := strconv.Atoi(getEnv("SELECTOR_MAX_EDUCATION", "5"))
	maxOffers, _ := strconv.Atoi(getEnv("SELECTOR_MAX_OFFERS", "3"))
	batchWorkers, _ := strconv.Atoi(getEnv("BATCH_WORKERS", "4"))

	return &Config{
		Server: ServerConfig{
			Port:         getEnv("SERVER_PORT", "8080"),
			ReadTimeout:  time.Duration(readTimeout) * time.Second,
			WriteTimeout: time.Duration(writeTimeout) * time.Second,
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5433"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "spendlens"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		JWT: JWTConfig{
			SecretKey:  getEnv("JWT_SECRET_KEY", "your-secret-key-change-in-production"),
			Expiration: time.Duration(jwtExp) * time.Hour,
			RefreshExp: time.Duration(refreshExp) * time.Hour,
		},
		Engine: EngineConfig{
			SubscriptionLookbackDays: lookbackDays,
			LargeExpenseCutoff:       largeExpense,
			IncomeDepositFloor:       depositFloor,
		},
		Selector: SelectorConfig{
			MaxEducation: maxEducation,
			MaxOffers:    maxOffers,
		},
		Batch: BatchConfig{
			Workers: batchWorkers,
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
	}, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
