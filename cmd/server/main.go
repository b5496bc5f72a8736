package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/subosito/gotenv"
	"go.uber.org/zap"

	"github.com/claimdesk/claimdesk/internal/application/service"
	"github.com/claimdesk/claimdesk/internal/config"
	"github.com/claimdesk/claimdesk/internal/infrastructure/external/openai"
	"github.com/claimdesk/claimdesk/internal/infrastructure/persistence/repository"
	"github.com/claimdesk/claimdesk/internal/infrastructure/persistence/sqlite"
	"github.com/claimdesk/claimdesk/internal/infrastructure/storage"
	httpadapter "github.com/claimdesk/claimdesk/internal/interfaces/http"
	"github.com/claimdesk/claimdesk/internal/report"
	"github.com/claimdesk/claimdesk/pkg/database"
	"github.com/claimdesk/claimdesk/pkg/utils"
)

func main() {
	// Local overrides from .env, ignored when absent
	_ = gotenv.Load()

	cfg, err := config.Load("configs/config.yaml")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

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

	logger.Info("Starting expense claim service",
		zap.String("version", "1.0.0"),
		zap.Int("port", cfg.Server.Port))

	// Database and migrations
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

	migrator := database.NewMigrator(db, logger)
	if err := migrator.RunMigrations(cfg.Database.MigrationsDir); err != nil {
		logger.Fatal("Failed to run database migrations", zap.Error(err))
	}

	if err := os.MkdirAll(cfg.Storage.UploadsDir, 0755); err != nil {
		logger.Fatal("Failed to create uploads directory", zap.Error(err))
	}

	// Repositories share one transaction-aware DB wrapper
	txDB := sqlite.NewDB(db.DB, logger)
	claimRepo := repository.NewClaimRepository(txDB, logger)
	notificationRepo := repository.NewNotificationRepository(txDB, logger)

	// External collaborators
	if cfg.OpenAI.APIKey == "" {
		logger.Warn("OPENAI_API_KEY not set, receipt scanning will return empty autofill")
	}
	extractor := openai.NewReceiptExtractor(cfg.OpenAI.APIKey, cfg.OpenAI.Model, logger)
	fileStore := storage.NewLocalFileStore(cfg.Storage.UploadsDir, logger)

	// Application services
	serviceLogger := newSugaredLogger(logger)
	notificationService := service.NewNotificationService(notificationRepo, serviceLogger)
	claimService := service.NewClaimService(claimRepo, notificationService, txDB, serviceLogger)
	receiptService := service.NewReceiptService(extractor, serviceLogger)
	exporter := report.NewExporter(logger)

	// HTTP server
	server := httpadapter.NewServer(
		httpadapter.ServerConfig{
			Host:         cfg.Server.Host,
			Port:         cfg.Server.Port,
			ReadTimeout:  cfg.Server.ReadTimeout,
			WriteTimeout: cfg.Server.WriteTimeout,
			UploadsDir:   cfg.Storage.UploadsDir,
		},
		claimService,
		notificationService,
		receiptService,
		fileStore,
		exporter,
		serviceLogger,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		logger.Info("Shutdown signal received")
		cancel()
	}()

	if err := server.Start(ctx); err != nil {
		logger.Fatal("HTTP server failed", zap.Error(err))
	}

	logger.Info("Server exited successfully")
}

// sugaredLogger adapts zap to the keysAndValues Logger interface used by
// the application and HTTP layers.
type sugaredLogger struct {
	sugar *zap.SugaredLogger
}

func newSugaredLogger(logger *zap.Logger) *sugaredLogger {
	return &sugaredLogger{sugar: logger.Sugar()}
}

func (l *sugaredLogger) Info(msg string, keysAndValues ...interface{}) {
	l.sugar.Infow(msg, keysAndValues...)
}

func (l *sugaredLogger) Error(msg string, keysAndValues ...interface{}) {
	l.sugar.Errorw(msg, keysAndValues...)
}
