package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "deckwatch/docs" // swagger docs
	"deckwatch/pkg/handlers"
	"deckwatch/pkg/middleware"
)

// Server constants
const (
	DefaultReadTimeout  = 30 * time.Second
	DefaultWriteTimeout = 5 * time.Minute // POST /check waits for a full check
	DefaultIdleTimeout  = 120 * time.Second
)

// Config holds HTTP server configuration
type Config struct {
	Address      string
	Port         int
	AllowOrigins []string
	Production   bool
}

// HTTPServer represents the HTTP server component
type HTTPServer struct {
	server     *http.Server
	router     *gin.Engine
	config     *Config
	handlerSvc *handlers.HandlerService
	logger     *zap.Logger
}

// NewHTTPServer creates a new HTTP server instance. Background work started
// by requests is bound to ctx.
func NewHTTPServer(ctx context.Context, config *Config, deps handlers.Deps, l *zap.Logger) *HTTPServer {
	if l == nil {
		l = zap.NewNop()
	}
	l = l.Named("server")

	if config.Production {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	s := &HTTPServer{
		router:     router,
		config:     config,
		handlerSvc: handlers.NewHandlerService(ctx, deps, l),
		logger:     l,
	}
	s.setupRoutes()

	addr := net.JoinHostPort(config.Address, strconv.Itoa(config.Port))
	s.server = &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  DefaultReadTimeout,
		WriteTimeout: DefaultWriteTimeout,
		IdleTimeout:  DefaultIdleTimeout,
		BaseContext:  func(net.Listener) context.Context { return ctx },
	}

	l.Info("HTTP server initialized", zap.String("listen_addr", addr))
	return s
}

// setupRoutes configures all HTTP routes
//
//	@title		deckwatch control API
//	@version	1.0.0
//	@BasePath	/
func (s *HTTPServer) setupRoutes() {
	s.router.Use(
		middleware.RequestID(),
		middleware.GinZapLogger(s.logger),
		middleware.Recovery(s.logger),
		middleware.ErrorHandler(s.logger),
		middleware.CORS(s.config.AllowOrigins),
	)

	s.router.GET("/health", s.handlerSvc.HealthCheck)

	// Swagger documentation
	s.router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	api := s.router.Group("/api/v1")
	{
		api.GET("/status", s.handlerSvc.GetStatus)
		api.POST("/check", s.handlerSvc.TriggerCheck)
		api.GET("/history", s.handlerSvc.GetHistory)

		session := api.Group("/session")
		session.POST("/refresh", s.handlerSvc.RefreshSession)
		session.POST("/done", s.handlerSvc.CompleteLogin)
		session.GET("/cookies", s.handlerSvc.GetCookieStatus)
	}

	s.logger.Debug("HTTP routes configured", zap.Int("routes", len(s.router.Routes())))
}

// Handler exposes the router, mainly for tests.
func (s *HTTPServer) Handler() http.Handler {
	return s.router
}

// Addr returns the configured listen address.
func (s *HTTPServer) Addr() string {
	return s.server.Addr
}

// Start serves until Shutdown. It returns nil after a clean shutdown.
func (s *HTTPServer) Start() error {
	s.logger.Info("Starting HTTP server", zap.String("addr", s.server.Addr))

	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("HTTP server failed: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the HTTP server and waits for background
// refreshes it started.
func (s *HTTPServer) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down HTTP server")

	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("HTTP server shutdown failed: %w", err)
	}
	s.handlerSvc.Wait()
	return nil
}
