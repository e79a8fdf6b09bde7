// Package http is the HTTP adapter: a thin gin layer translating
// requests into service calls. No workflow decisions happen here.
package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/financestream/expenseflow/internal/service"
)

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// Server is the HTTP server adapter
type Server struct {
	config     ServerConfig
	httpServer *http.Server
	router     *gin.Engine
	handlers   *Handlers
	logger     *zap.Logger
}

// NewServer creates a new HTTP server wired to the given services
func NewServer(
	config ServerConfig,
	reportService *service.ReportService,
	directoryService *service.DirectoryService,
	matrixService *service.MatrixService,
	exportService *service.ExportService,
	logger *zap.Logger,
) *Server {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()

	s := &Server{
		config:   config,
		router:   router,
		handlers: NewHandlers(reportService, directoryService, matrixService, exportService, logger),
		logger:   logger,
	}

	router.Use(gin.Recovery())
	router.Use(s.loggingMiddleware())
	s.registerRoutes()
	return s
}

func (s *Server) loggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Info("HTTP request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)))
	}
}

func (s *Server) registerRoutes() {
	s.router.GET("/health", s.handlers.HealthCheck)

	api := s.router.Group("/api")
	{
		api.GET("/reports", s.handlers.ListReports)
		api.POST("/reports", s.handlers.SubmitReport)
		api.GET("/reports/:id", s.handlers.GetReport)
		api.POST("/reports/:id/action", s.handlers.ApplyAction)
		api.GET("/signatures", s.handlers.SignatureHistory)

		api.GET("/users", s.handlers.ListUsers)
		api.POST("/users", s.handlers.SaveUser)
		api.PUT("/users/:id", s.handlers.UpdateUser)
		api.DELETE("/users/:id", s.handlers.DeleteUser)

		api.GET("/categories", s.handlers.ListCategories)
		api.POST("/categories", s.handlers.SaveCategory)
		api.PUT("/categories/:id", s.handlers.UpdateCategory)
		api.DELETE("/categories/:id", s.handlers.DeleteCategory)

		api.GET("/matrix", s.handlers.GetMatrix)
		api.PUT("/matrix", s.handlers.ReplaceMatrix)
		api.POST("/matrix/evaluate", s.handlers.EvaluateMatrix)

		api.GET("/currencies", s.handlers.ListCurrencies)

		api.GET("/export/csv", s.handlers.ExportCSV)
		api.GET("/export/xlsx", s.handlers.ExportXLSX)
	}
}

// Start begins serving; it blocks until the server stops
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
	}

	s.logger.Info("HTTP server starting", zap.String("addr", addr))
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}

// Shutdown gracefully stops the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	s.logger.Info("HTTP server shutting down")
	return s.httpServer.Shutdown(ctx)
}
