package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/antonkh/budget-approval/internal/application/dispatcher"
	"github.com/antonkh/budget-approval/internal/application/service"
	"github.com/antonkh/budget-approval/internal/config"
	larkadapter "github.com/antonkh/budget-approval/internal/infrastructure/external/lark"
	"github.com/antonkh/budget-approval/internal/infrastructure/external/ledger"
	"github.com/antonkh/budget-approval/internal/infrastructure/persistence/repository"
	httpiface "github.com/antonkh/budget-approval/internal/interfaces/http"
	"github.com/antonkh/budget-approval/pkg/database"
	"github.com/antonkh/budget-approval/pkg/utils"
	"github.com/subosito/gotenv"
	"go.uber.org/zap"
)

func main() {
	// Load .env if present; real environment wins
	gotenv.Load()

	// Load configuration
	cfg, err := config.Load("configs/config.yaml")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	logger, err := utils.NewLogger(utils.LoggerConfig{
		Level:      cfg.Logger.Level,
		OutputPath: cfg.Logger.OutputPath,
		Format:     cfg.Logger.Format,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting Budget Approval Workflow System",
		zap.String("version", "1.0.0"),
		zap.Int("port", cfg.Server.Port))

	// Initialize database
	db, err := database.New(database.Config{
		Path:            cfg.Database.Path,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	}, logger)
	if err != nil {
		logger.Fatal("Failed to initialize database", zap.Error(err))
	}
	defer db.Close()

	// Run migrations
	migrator := database.NewMigrator(db, logger)
	if err := migrator.RunMigrations(cfg.Database.MigrationsDir); err != nil {
		logger.Fatal("Failed to run database migrations", zap.Error(err))
	}

	// Initialize repositories
	expenseRepo := repository.NewExpenseRepository(db.DB, logger)
	txManager := repository.NewTxManager(db)

	// Initialize Lark client and adapters
	larkClient := larkadapter.NewClient(larkadapter.Config{
		AppID:     cfg.Lark.AppID,
		AppSecret: cfg.Lark.AppSecret,
	}, logger)
	messenger := larkadapter.NewMessenger(larkClient, logger)
	draftParser := larkadapter.NewDraftParser(logger)

	// Initialize payment ledger
	paymentLedger := ledger.NewExcelLedger(ledger.Config{
		Path:      cfg.Ledger.Path,
		SheetName: cfg.Ledger.SheetName,
	}, logger)

	// Initialize event dispatcher and application services
	kvLogger := utils.NewKeyValueLogger(logger)
	eventDispatcher := dispatcher.NewDispatcher(dispatcher.WithLogger(kvLogger))

	approvalService := service.NewApprovalService(expenseRepo, txManager, eventDispatcher, kvLogger)
	notificationService := service.NewNotificationService(messenger, cfg.Groups(), cfg.Lark.DeveloperChatID, kvLogger)
	archiveService := service.NewArchiveService(paymentLedger, kvLogger)

	notificationService.Register(eventDispatcher)
	archiveService.Register(eventDispatcher)

	// Initialize webhook handlers
	verifier := httpiface.NewVerifier(cfg.Lark.VerifyToken)
	eventHandler := httpiface.NewEventHandler(verifier, draftParser, approvalService, notificationService, cfg.Lark.APITimeout, logger)
	cardHandler := httpiface.NewCardHandler(verifier, approvalService, notificationService, cfg.Lark.APITimeout, logger)

	router := httpiface.NewRouter(cfg, eventHandler, cardHandler, approvalService, logger)

	// Create HTTP server
	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("HTTP server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start HTTP server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	// Drain in-flight event handlers before closing the database
	if err := eventDispatcher.Close(); err != nil {
		logger.Error("Failed to close event dispatcher", zap.Error(err))
	}

	logger.Info("Server exited successfully")
}
