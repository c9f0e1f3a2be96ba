// internal/server/router.go - route configuration and server setup
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"upgrade-analyzer/internal/handler"
	"upgrade-analyzer/pkg/logger"
)

// Server is the HTTP server interface
type Server interface {
	Start(addr string) error
	Shutdown(ctx context.Context) error
}

// NewServer creates a new HTTP server
func NewServer(
	analysisHandler *handler.AnalysisHandler,
	patchHandler *handler.PatchHandler,
	logger logger.Logger,
) Server {
	return &server{
		analysisHandler: analysisHandler,
		patchHandler:    patchHandler,
		logger:          logger,
	}
}

type server struct {
	engine          *gin.Engine
	analysisHandler *handler.AnalysisHandler
	patchHandler    *handler.PatchHandler
	logger          logger.Logger
	httpServer      *http.Server
}

// Start runs the server on addr, blocking until shutdown
func (s *server) Start(addr string) error {
	gin.SetMode(gin.ReleaseMode)

	s.engine = gin.New()
	s.setupMiddleware()
	s.setupRoutes()

	s.httpServer = &http.Server{
		Addr:           addr,
		Handler:        s.engine,
		ReadTimeout:    30 * time.Second,
		WriteTimeout:   30 * time.Second,
		MaxHeaderBytes: 1 << 20, // 1MB
	}

	s.logger.Info("starting HTTP server on %s", addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully stops the server
func (s *server) Shutdown(ctx context.Context) error {
	if s.httpServer != nil {
		s.logger.Info("shutting down HTTP server")
		return s.httpServer.Shutdown(ctx)
	}
	return nil
}

func (s *server) setupMiddleware() {
	s.engine.Use(RecoveryMiddleware(s.logger))
	s.engine.Use(LoggingMiddleware(s.logger))
	s.engine.Use(CORSMiddleware())
	s.engine.Use(SecurityMiddleware())
	s.engine.Use(RateLimitMiddleware(s.logger))

	s.engine.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"code":    0,
			"message": "ok",
			"success": true,
			"time":    time.Now().Format(time.RFC3339),
		})
	})
}

func (s *server) setupRoutes() {
	SetupAnalysisRoutes(s.engine, s.analysisHandler)
	SetupPatchRoutes(s.engine, s.patchHandler)

	s.engine.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"message": "endpoint not found",
		})
	})

	s.engine.NoMethod(func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, gin.H{
			"success": false,
			"message": "method not allowed",
		})
	})
}

// GetEngine exposes the gin engine for tests
func (s *server) GetEngine() *gin.Engine {
	return s.engine
}
