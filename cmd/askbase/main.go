package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"askbase/internal/api"
	"askbase/internal/api/handlers"
	"askbase/internal/llm"
	"askbase/internal/repository"
	"askbase/internal/service"
	"askbase/pkg/auth"
	"askbase/pkg/config"
	"askbase/pkg/logger"
	"askbase/pkg/postgres"

	"go.uber.org/zap"
)

// @title AskBase API
// @version 1.0
// @description Retrieval-grounded chat assistant for workspace knowledge bases
// @termsOfService http://swagger.io/terms/

// @contact.name API Support
// @contact.email support@askbase.dev

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /api/v1

// @securityDefinitions.apikey Bearer
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize global logger
	if err := logger.Init(cfg.Logger.Level); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	appLogger := logger.Get()
	appLogger.Info("Starting AskBase service")

	// Initialize database
	ctx := context.Background()
	db, err := postgres.NewPool(ctx, &cfg.Database, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	// Initialize repositories
	workspaceRepo := repository.NewWorkspaceRepository(db, appLogger)
	knowledgeRepo := repository.NewKnowledgeRepository(db, appLogger)
	sessionRepo := repository.NewSessionRepository(db, appLogger)
	gapRepo := repository.NewGapRepository(db, appLogger)

	// Initialize JWT manager
	jwtManager := auth.NewJWTManager(cfg.JWT.SecretKey, cfg.JWT.Expiration)

	// Initialize LLM clients
	embedder := llm.NewOpenAIEmbedder(cfg.OpenAI.APIKey, cfg.OpenAI.EmbeddingModel, appLogger)
	generators := llm.NewFactory(cfg.GigaChat, appLogger)

	// Initialize services
	limiter := service.NewRateLimiter(cfg.Chat.RateLimitWindow, cfg.Chat.RateLimitMax, appLogger)
	deferred := service.NewDeferredRunner(cfg.Chat.StreamTimeout, appLogger)

	ragService := service.NewRAGService(embedder, knowledgeRepo, cfg.Chat.MinSimilarity, appLogger)
	gapService := service.NewGapService(gapRepo, knowledgeRepo, workspaceRepo, ragService, embedder, appLogger)
	knowledgeService := service.NewKnowledgeService(knowledgeRepo, embedder, gapService, deferred, appLogger)

	notFound := func(err error) bool { return errors.Is(err, repository.ErrNotFound) }
	chatService := service.NewChatService(
		workspaceRepo,
		sessionRepo,
		knowledgeRepo,
		ragService,
		gapService,
		generators,
		limiter,
		deferred,
		cfg.Chat,
		notFound,
		appLogger,
	)

	// Initialize handlers
	chatHandler := handlers.NewChatHandler(chatService, cfg.Chat.StreamTimeout, appLogger)
	gapHandler := handlers.NewGapHandler(gapService, appLogger)
	knowledgeHandler := handlers.NewKnowledgeHandler(knowledgeService, appLogger)
	sessionHandler := handlers.NewSessionHandler(sessionRepo, appLogger)

	// Setup router
	app := api.SetupRouter(chatHandler, gapHandler, knowledgeHandler, sessionHandler, jwtManager, db, appLogger)

	// Start server
	go func() {
		addr := ":" + cfg.Server.Port
		appLogger.Info("Server starting", zap.String("address", addr))
		if err := app.Listen(addr); err != nil {
			appLogger.Fatal("Server failed", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server")
	if err := app.Shutdown(); err != nil {
		appLogger.Error("Server shutdown error", zap.Error(err))
	}

	// Let in-flight post-stream persistence finish before exiting.
	deferred.Wait()
	generators.Close()
}
