// Package http wires the gin router: sync endpoints, the SSE stream, and
// the small REST surface around them.
package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/driftchat/driftchat/internal/domain/service"
	"github.com/driftchat/driftchat/internal/infrastructure/cache"
	"github.com/driftchat/driftchat/internal/infrastructure/config"
	"github.com/driftchat/driftchat/internal/interfaces/http/handlers"
	"github.com/driftchat/driftchat/internal/replicache"
	"github.com/driftchat/driftchat/internal/sse"
)

type Server struct {
	server *http.Server
	logger *zap.Logger
}

// Deps is everything the router needs, built by the application layer.
type Deps struct {
	DB       *gorm.DB
	Sessions *cache.SessionStore
	Hub      *sse.Hub
	Puller   *replicache.Puller
	Pusher   *replicache.Pusher
	ApiKeys  *service.ApiKeyService
	Shared   *service.SharedChatService
}

func NewServer(cfg config.ServerConfig, deps Deps, logger *zap.Logger) *Server {
	if cfg.Mode == "production" {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(ginLogger(logger))

	authHandler := handlers.NewAuthHandler(deps.DB, deps.Sessions, logger)
	replicacheHandler := handlers.NewReplicacheHandler(deps.Puller, deps.Pusher, logger)
	sseHandler := handlers.NewSSEHandler(deps.Hub, logger)
	apiKeyHandler := handlers.NewApiKeyHandler(deps.DB, deps.ApiKeys, logger)
	sharedHandler := handlers.NewSharedChatHandler(deps.DB, deps.Shared, logger)

	setupRoutes(router, deps.Sessions, logger,
		authHandler, replicacheHandler, sseHandler, apiKeyHandler, sharedHandler)

	return &Server{
		server: &http.Server{
			Addr:    cfg.Addr(),
			Handler: router,
		},
		logger: logger,
	}
}

func (s *Server) Start(ctx context.Context) error {
	s.logger.Info("Starting HTTP server", zap.String("address", s.server.Addr))

	go func() {
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Error("HTTP server error", zap.Error(err))
		}
	}()

	return nil
}

func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("Stopping HTTP server")
	return s.server.Shutdown(ctx)
}

func setupRoutes(
	router *gin.Engine,
	sessions *cache.SessionStore,
	logger *zap.Logger,
	auth *handlers.AuthHandler,
	rep *handlers.ReplicacheHandler,
	stream *handlers.SSEHandler,
	apiKeys *handlers.ApiKeyHandler,
	shared *handlers.SharedChatHandler,
) {
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
			"time":   time.Now().Unix(),
		})
	})

	api := router.Group("/api")
	{
		api.POST("/auth/register", auth.Register)
		api.POST("/auth/login", auth.Login)
		api.POST("/auth/logout", auth.Logout)

		// Shared snapshots are readable without a session.
		api.GET("/shared/:id", shared.Get)

		authed := api.Group("")
		authed.Use(handlers.AuthRequired(sessions, logger))
		{
			authed.GET("/auth/me", auth.Me)

			authed.POST("/replicache/pull", rep.Pull)
			authed.POST("/replicache/push", rep.Push)

			authed.GET("/sse", stream.Stream)

			authed.POST("/api-keys", apiKeys.Create)
			authed.GET("/api-keys", apiKeys.List)
			authed.DELETE("/api-keys/:id", apiKeys.Delete)

			authed.POST("/chats/:chatId/share", shared.Share)
			authed.DELETE("/shared/:id", shared.Delete)
		}
	}
}

func ginLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		c.Next()

		latency := time.Since(start)
		statusCode := c.Writer.Status()

		logger.Info("HTTP request",
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.String("query", query),
			zap.Int("status", statusCode),
			zap.Duration("latency", latency),
			zap.String("ip", c.ClientIP()),
		)
	}
}
