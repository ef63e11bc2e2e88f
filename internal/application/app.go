// Package application is the dependency injection container: it builds
// every component from config and owns the start/stop lifecycle.
package application

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/driftchat/driftchat/internal/domain/service"
	"github.com/driftchat/driftchat/internal/infrastructure/cache"
	"github.com/driftchat/driftchat/internal/infrastructure/config"
	"github.com/driftchat/driftchat/internal/infrastructure/crypto"
	_ "github.com/driftchat/driftchat/internal/infrastructure/llm/anthropic"  // register anthropic provider factory
	_ "github.com/driftchat/driftchat/internal/infrastructure/llm/gemini"     // register gemini provider factory
	_ "github.com/driftchat/driftchat/internal/infrastructure/llm/openai"     // register openai provider factory
	_ "github.com/driftchat/driftchat/internal/infrastructure/llm/openrouter" // register openrouter provider factory
	"github.com/driftchat/driftchat/internal/infrastructure/persistence"
	httpserver "github.com/driftchat/driftchat/internal/interfaces/http"
	"github.com/driftchat/driftchat/internal/jobs"
	"github.com/driftchat/driftchat/internal/replicache"
	"github.com/driftchat/driftchat/internal/sse"
	"github.com/driftchat/driftchat/pkg/safego"
)

type App struct {
	config *config.Config
	logger *zap.Logger

	db    *gorm.DB
	redis *redis.Client

	cvrStore *cache.CvrStore
	sessions *cache.SessionStore
	hub      *sse.Hub
	queue    *jobs.Queue
	worker   *jobs.Worker

	chats        *service.ChatService
	messages     *service.MessageService
	activeModels *service.ActiveModelService
	apiKeys      *service.ApiKeyService
	shared       *service.SharedChatService
	mutator      *service.Mutator

	registry *replicache.Registry
	puller   *replicache.Puller
	pusher   *replicache.Pusher

	httpServer *httpserver.Server

	cancelWorker context.CancelFunc
}

func NewApp(cfg *config.Config, logger *zap.Logger) (*App, error) {
	app := &App{
		config: cfg,
		logger: logger,
	}

	if err := app.initInfrastructure(); err != nil {
		return nil, fmt.Errorf("init infrastructure: %w", err)
	}
	if err := app.initServices(); err != nil {
		return nil, fmt.Errorf("init services: %w", err)
	}
	if err := app.initSync(); err != nil {
		return nil, fmt.Errorf("init sync: %w", err)
	}
	app.initInterfaces()

	return app, nil
}

func (app *App) initInfrastructure() error {
	app.logger.Info("Initializing infrastructure")

	db, err := persistence.Open(app.config.Database)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	app.db = db

	client, err := cache.Connect(context.Background(), app.config.Redis.URL)
	if err != nil {
		return fmt.Errorf("connect redis: %w", err)
	}
	app.redis = client

	app.cvrStore = cache.NewCvrStore(client)
	app.sessions = cache.NewSessionStore(client)
	app.hub = sse.NewHub(app.logger)
	app.queue = jobs.NewQueue(app.logger)

	return nil
}

func (app *App) initServices() error {
	app.logger.Info("Initializing services")

	masterKey, err := crypto.ParseMasterKey(app.config.Crypto.MasterKey)
	if err != nil {
		return err
	}

	app.chats = service.NewChatService(app.logger)
	app.messages = service.NewMessageService(app.logger)
	app.activeModels = service.NewActiveModelService(app.logger)
	app.apiKeys = service.NewApiKeyService(masterKey, app.logger)
	app.shared = service.NewSharedChatService(app.logger)
	app.mutator = service.NewMutator(app.chats, app.messages, app.activeModels, app.queue, app.logger)

	app.worker = jobs.NewWorker(
		app.db,
		app.queue,
		app.hub,
		app.chats,
		app.messages,
		app.activeModels,
		app.apiKeys,
		app.config.AI,
		app.logger,
	)

	return nil
}

func (app *App) initSync() error {
	app.logger.Info("Initializing sync pipeline")

	app.registry = replicache.NewRegistry()
	if err := registerSyncedEntities(app.registry); err != nil {
		return err
	}

	app.puller = replicache.NewPuller(app.db, app.cvrStore, app.registry, app.logger)
	app.pusher = replicache.NewPusher(app.db, app.mutator, app.hub, app.logger)
	return nil
}

func (app *App) initInterfaces() {
	app.logger.Info("Initializing interfaces")

	app.httpServer = httpserver.NewServer(app.config.Server, httpserver.Deps{
		DB:       app.db,
		Sessions: app.sessions,
		Hub:      app.hub,
		Puller:   app.puller,
		Pusher:   app.pusher,
		ApiKeys:  app.apiKeys,
		Shared:   app.shared,
	}, app.logger)
}

// Start launches the job worker and the HTTP server.
func (app *App) Start(ctx context.Context) error {
	app.logger.Info("Starting application")

	workerCtx, cancel := context.WithCancel(context.Background())
	app.cancelWorker = cancel
	safego.Go(app.logger, "job-worker", func() {
		app.worker.Run(workerCtx)
	})

	if err := app.httpServer.Start(ctx); err != nil {
		return fmt.Errorf("start HTTP server: %w", err)
	}

	app.logger.Info("Application started")
	return nil
}

// Stop shuts everything down in reverse order: HTTP first so no new jobs
// arrive, then the worker, then the stores.
func (app *App) Stop(ctx context.Context) error {
	app.logger.Info("Stopping application")

	if err := app.httpServer.Stop(ctx); err != nil {
		app.logger.Error("Failed to stop HTTP server", zap.Error(err))
	}

	if app.cancelWorker != nil {
		app.cancelWorker()
	}

	if app.redis != nil {
		if err := app.redis.Close(); err != nil {
			app.logger.Error("Failed to close redis connection", zap.Error(err))
		}
	}

	if app.db != nil {
		if sqlDB, err := app.db.DB(); err == nil {
			if err := sqlDB.Close(); err != nil {
				app.logger.Error("Failed to close database connection", zap.Error(err))
			}
		}
	}

	app.logger.Info("Application stopped")
	return nil
}

// Logger returns the application logger.
func (app *App) Logger() *zap.Logger {
	return app.logger
}
