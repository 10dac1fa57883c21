package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"sbtc-heritage.backend/internal/config"
	"sbtc-heritage.backend/internal/infrastructure/blockchain"
	"sbtc-heritage.backend/internal/infrastructure/jobs"
	"sbtc-heritage.backend/internal/infrastructure/repositories"
	"sbtc-heritage.backend/internal/interfaces/http/handlers"
	"sbtc-heritage.backend/internal/interfaces/http/middleware"
	"sbtc-heritage.backend/internal/usecases"
	"sbtc-heritage.backend/pkg/jwt"
	"sbtc-heritage.backend/pkg/logger"
	"sbtc-heritage.backend/pkg/redis"
)

var (
	loadDotenv = godotenv.Load
	loadCfg    = config.Load
	initLog    = logger.Init
	initRedis  = redis.Init
	openDB     = func(dsn string) (*gorm.DB, error) {
		return gorm.Open(postgres.New(postgres.Config{
			DSN:                  dsn,
			PreferSimpleProtocol: true,
		}), &gorm.Config{
			PrepareStmt: false,
		})
	}
	runServer = func(r *gin.Engine, port string) error { return r.Run(":" + port) }
	getStdDB  = func(db *gorm.DB) (*sql.DB, error) { return db.DB() }
)

func main() {
	if err := runMainProcess(); err != nil {
		log.Fatal(err)
	}
}

func runMainProcess() error {
	// Load .env file
	if err := loadDotenv(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	// Load configuration
	cfg := loadCfg()

	// Initialize Logger
	initLog(cfg.Server.Env)
	logger.Info(context.Background(), "Logger initialized", zap.String("env", cfg.Server.Env))

	// Initialize Redis
	if err := initRedis(cfg.Redis.URL, cfg.Redis.Password); err != nil {
		logger.Error(context.Background(), "Failed to initialize Redis", zap.Error(err))
		return fmt.Errorf("failed to initialize redis: %w", err)
	}
	logger.Info(context.Background(), "Redis initialized")

	// Set Gin mode
	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Connect to database using GORM
	dsn := cfg.Database.URL()
	db, err := openDB(dsn)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := getStdDB(db)
	if err != nil {
		return fmt.Errorf("failed to get generic database object: %w", err)
	}
	defer sqlDB.Close()

	if err := sqlDB.Ping(); err != nil {
		log.Printf("⚠️ Database not available: %v (audit endpoints will return errors)", err)
	} else {
		log.Println("✅ Connected to PostgreSQL via GORM")
	}

	// Initialize JWT service
	jwtService := jwt.NewService(
		cfg.JWT.Secret,
		cfg.JWT.AccessExpiry,
		cfg.JWT.RefreshExpiry,
	)

	// Initialize ledger client
	stacksClient := blockchain.NewStacksClient(
		cfg.Ledger.NodeURL,
		cfg.Ledger.ContractAddress,
		cfg.Ledger.ContractName,
	)

	// Initialize repositories
	vaultRepo := repositories.NewVaultRepository(stacksClient, cfg.Ledger.ReadRetries)
	txLogRepo := repositories.NewTransactionLogRepository(db)
	if err := txLogRepo.Migrate(); err != nil {
		log.Printf("⚠️ Audit table migration failed: %v", err)
	}

	// Initialize usecases
	validator := usecases.NewAllocationValidator()
	vaultUsecase := usecases.NewVaultUsecase(vaultRepo, txLogRepo, validator, stacksClient)

	// Initialize handlers
	vaultHandler := handlers.NewVaultHandler(vaultUsecase)
	authHandler := handlers.NewAuthHandler(jwtService)

	// Start background jobs
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	poller := jobs.NewConfirmationPoller(stacksClient, txLogRepo, cfg.Ledger.PollInterval)
	go poller.Start(ctx)

	adminHandler := handlers.NewAdminHandler(vaultRepo, poller)

	// Initialize router
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.LoggerMiddleware())
	r.Use(middleware.MetricsMiddleware())

	applyCORSMiddleware(r)
	registerHealthRoute(r)
	registerAPIV1Routes(r, routeDeps{
		vaultHandler:        vaultHandler,
		authHandler:         authHandler,
		adminHandler:        adminHandler,
		authMiddleware:      middleware.AuthMiddleware(jwtService),
		adminAuthMiddleware: middleware.AdminAuthMiddleware(cfg.Security.AdminAPIKeyHash),
	})

	// Print all registered routes for debugging
	log.Println("📋 Registered Routes:")
	for _, route := range r.Routes() {
		log.Printf("   %s %s", route.Method, route.Path)
	}

	// Graceful shutdown
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		log.Println("🛑 Shutting down server...")
		poller.Stop()
		cancel()
	}()

	// Start server
	log.Printf("🚀 sBTC Heritage Backend starting on port %s", cfg.Server.Port)
	log.Printf("📚 API: http://localhost:%s/api/v1", cfg.Server.Port)
	log.Printf("❤️ Health: http://localhost:%s/health", cfg.Server.Port)

	if err := runServer(r, cfg.Server.Port); err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}
	return nil
}
