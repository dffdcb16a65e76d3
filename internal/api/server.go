// Package api provides the HTTP server for the Claude Code API shim. It sets
// up the Gin engine, the CORS and authentication middleware, and the
// OpenAI-compatible routes.
package api

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"github.com/ccshim/claude-code-api/internal/api/handlers"
	"github.com/ccshim/claude-code-api/internal/api/handlers/openai"
	"github.com/ccshim/claude-code-api/internal/api/middleware"
	"github.com/ccshim/claude-code-api/internal/claude"
	"github.com/ccshim/claude-code-api/internal/config"
	"github.com/ccshim/claude-code-api/internal/registry"
)

// ServiceName identifies the server in the health and info payloads.
const ServiceName = "claude-code-api"

// ServiceVersion is the advertised server version.
const ServiceVersion = "1.0.0"

// Server represents the API server. It encapsulates the Gin engine, the
// underlying HTTP server, and the handler dependencies.
type Server struct {
	engine *gin.Engine
	server *http.Server
	cfg    *config.Config
}

// NewServer creates and initializes a new API server instance.
func NewServer(cfg *config.Config, reg *registry.Registry, invoker *claude.Invoker) *Server {
	if log.GetLevel() < log.DebugLevel {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(middleware.RequestLogging(cfg.RequestLog))
	engine.Use(corsMiddleware())

	s := &Server{
		engine: engine,
		cfg:    cfg,
	}

	base := handlers.NewBaseAPIHandler(cfg, reg, invoker)
	s.setupRoutes(base)

	s.server = &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: engine,
	}

	return s
}

// setupRoutes configures the API routes for the server.
func (s *Server) setupRoutes(base *handlers.BaseAPIHandler) {
	openaiHandlers := openai.NewOpenAIAPIHandler(base)

	// Root endpoint with API information.
	s.engine.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"service": ServiceName,
			"version": ServiceVersion,
			"endpoints": []string{
				"GET /health",
				"GET /v1/models",
				"POST /v1/chat/completions",
			},
		})
	})

	// Liveness endpoint, deliberately unauthenticated.
	s.engine.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": ServiceName,
		})
	})

	v1 := s.engine.Group("/v1")
	v1.Use(AuthMiddleware(s.cfg))
	{
		v1.GET("/models", openaiHandlers.OpenAIModels)
		v1.POST("/chat/completions", openaiHandlers.ChatCompletions)
	}
}

// Handler exposes the engine as an http.Handler, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Start begins listening for and serving HTTP requests. It blocks until the
// server stops.
func (s *Server) Start() error {
	log.Infof("starting API server on %s", s.server.Addr)

	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start HTTP server: %w", err)
	}
	return nil
}

// Stop gracefully shuts down the API server without interrupting active
// connections.
func (s *Server) Stop(ctx context.Context) error {
	log.Debug("stopping API server...")

	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown HTTP server: %w", err)
	}

	log.Debug("API server stopped")
	return nil
}

// corsMiddleware adds CORS headers to every response so browser-based
// clients can talk to the shim.
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Content-Length, Accept-Encoding, Authorization")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// AuthMiddleware authenticates requests against the configured API key.
// Only `Authorization: Bearer <key>` with an exact key match passes; a
// missing or malformed header and a wrong key both yield 401.
func AuthMiddleware(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			handlers.AbortWithError(c, http.StatusUnauthorized, handlers.TypeAuthenticationError, "missing API key")
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
			handlers.AbortWithError(c, http.StatusUnauthorized, handlers.TypeAuthenticationError, "invalid authorization header")
			return
		}

		if subtle.ConstantTimeCompare([]byte(parts[1]), []byte(cfg.APIKey)) != 1 {
			handlers.AbortWithError(c, http.StatusUnauthorized, handlers.TypeAuthenticationError, "invalid API key")
			return
		}

		c.Next()
	}
}
