// Package http provides the HTTP adapter for the application layer.
// It translates HTTP requests to application service calls.
package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/claimdesk/claimdesk/internal/application/port"
	"github.com/claimdesk/claimdesk/internal/application/service"
	"github.com/claimdesk/claimdesk/internal/report"
)

// Logger interface for logging operations
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	UploadsDir   string
}

// DefaultServerConfig returns default server configuration
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Host:         "0.0.0.0",
		Port:         8080,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
}

// Server is the HTTP server adapter
type Server struct {
	config              ServerConfig
	httpServer          *http.Server
	router              *gin.Engine
	claimService        service.ClaimService
	notificationService service.NotificationService
	receiptService      service.ReceiptService
	fileStore           port.FileStore
	exporter            *report.Exporter
	logger              Logger
}

// NewServer creates a new HTTP server with the given services
func NewServer(
	config ServerConfig,
	claimService service.ClaimService,
	notificationService service.NotificationService,
	receiptService service.ReceiptService,
	fileStore port.FileStore,
	exporter *report.Exporter,
	logger Logger,
) *Server {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	server := &Server{
		config:              config,
		router:              router,
		claimService:        claimService,
		notificationService: notificationService,
		receiptService:      receiptService,
		fileStore:           fileStore,
		exporter:            exporter,
		logger:              logger,
	}

	server.setupMiddleware()
	server.setupRoutes()

	return server
}

// setupMiddleware configures middleware for the router
func (s *Server) setupMiddleware() {
	s.router.Use(gin.Recovery())
	s.router.Use(s.loggingMiddleware())
}

// loggingMiddleware creates a logging middleware
func (s *Server) loggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		method := c.Request.Method

		c.Next()

		latency := time.Since(start)
		status := c.Writer.Status()

		s.logger.Info("HTTP request",
			"method", method,
			"path", path,
			"status", status,
			"latency", latency.String(),
			"client_ip", c.ClientIP(),
		)
	}
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() {
	handlers := NewHandlers(s.claimService, s.notificationService, s.receiptService, s.fileStore, s.exporter, s.logger)

	// Health check
	s.router.GET("/health", handlers.HealthCheck)

	// Stored receipt files referenced by proof_urls
	if s.config.UploadsDir != "" {
		s.router.Static("/uploads", s.config.UploadsDir)
	}

	// API routes
	api := s.router.Group("/api")
	{
		// Claims
		api.POST("/claims", handlers.SubmitClaim)
		api.GET("/claims", handlers.ListClaims)
		api.GET("/claims/export", handlers.ExportClaims)
		api.GET("/claims/:id", handlers.GetClaim)
		api.PUT("/claims/:id", handlers.EditClaim)
		api.POST("/claims/:id/decision", handlers.RecordDecision)
		api.POST("/claims/:id/messages", handlers.AddChatMessage)
		api.POST("/claims/:id/viewed", handlers.MarkViewed)

		// Receipts
		api.POST("/receipts/upload", handlers.UploadReceipt)
		api.POST("/receipts/scan", handlers.ScanReceipt)

		// Notifications
		api.GET("/notifications", handlers.ListNotifications)
		api.POST("/notifications/read-all", handlers.MarkAllNotificationsRead)
		api.POST("/notifications/:id/read", handlers.MarkNotificationRead)
	}
}

// Start starts the HTTP server
func (s *Server) Start(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
	}

	s.logger.Info("Starting HTTP server", "address", addr)

	errCh := make(chan error, 1)
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("HTTP server shutdown requested")
		return s.Stop()
	case err := <-errCh:
		s.logger.Error("HTTP server error", "error", err)
		return err
	}
}

// Stop gracefully stops the HTTP server
func (s *Server) Stop() error {
	if s.httpServer == nil {
		return nil
	}

	s.logger.Info("Stopping HTTP server")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		s.logger.Error("HTTP server shutdown error", "error", err)
		return err
	}

	s.logger.Info("HTTP server stopped")
	return nil
}

// Router returns the underlying gin router (for testing)
func (s *Server) Router() *gin.Engine {
	return s.router
}

// Address returns the server address
func (s *Server) Address() string {
	return fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
}
