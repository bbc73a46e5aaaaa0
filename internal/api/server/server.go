package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/commdesk/cts/internal/api/executor"
	"github.com/commdesk/cts/internal/api/middleware"
	"github.com/commdesk/cts/internal/api/rest"
	"github.com/commdesk/cts/internal/files"
	"github.com/commdesk/cts/internal/logger"
	"github.com/commdesk/cts/internal/store"
)

// Config holds the server configuration
type Config struct {
	Debug          bool
	Host           string
	Port           int
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration
	MaxAttachments int
	Auth           middleware.AuthConfig
	RateLimit      middleware.RateLimitConfig
}

// Server wraps the HTTP server
type Server struct {
	config     Config
	store      store.Store
	files      files.Service
	httpServer *http.Server
}

// New creates a new API server
func New(cfg Config, store store.Store, filesService files.Service) *Server {
	return &Server{
		config: cfg,
		store:  store,
		files:  filesService,
	}
}

// Start initializes and starts the HTTP server
func (s *Server) Start() error {
	// Set Gin mode based on debug flag
	if s.config.Debug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	// Create Gin router
	router := gin.New()

	// Setup middleware
	router.Use(middleware.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger())
	router.Use(middleware.SetupCORS())

	// Create the executor (business logic behind the REST surface)
	exec := executor.NewExecutor(s.store, s.files)

	// Create REST handler and routes
	restHandler := rest.NewHandler(s.config.Debug, s.config.MaxAttachments, exec)
	rest.SetupRoutes(router, restHandler, s.config.Auth, s.config.RateLimit)

	// Create HTTP server
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
		IdleTimeout:  s.config.IdleTimeout,
	}

	logger.Info("Starting API server",
		zap.String("address", addr),
	)

	// Start server
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	logger.Info("Shutting down API server")

	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			return fmt.Errorf("failed to shutdown server: %w", err)
		}
	}

	return nil
}
