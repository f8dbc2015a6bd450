package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/cors"

	"chatgate/internal/auth"
	"chatgate/internal/config"
	"chatgate/internal/domain/repositories"
	"chatgate/internal/handler"
	"chatgate/internal/llm"
	"chatgate/internal/middleware"
	"chatgate/internal/persona"
	"chatgate/internal/repository/memory"
	"chatgate/internal/repository/postgres"
	"chatgate/internal/service/chat"
)

func main() {
	// Load .env file (silently ignore if it doesn't exist - for production)
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Setup structured logging
	logLevel := slog.LevelInfo
	if cfg.Environment == "dev" {
		logLevel = slog.LevelDebug
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	logger.Info("server starting",
		"environment", cfg.Environment,
		"port", cfg.Port,
		"store", cfg.Store,
	)

	// Create JWT verifier for bearer authentication
	jwtVerifier, err := auth.NewJWKSVerifier(cfg.JWKSURL, logger)
	if err != nil {
		log.Fatalf("Failed to create JWT verifier: %v", err)
	}
	defer jwtVerifier.Close()

	// Conversation store
	ctx := context.Background()
	var conversationRepo repositories.ConversationRepository
	switch cfg.Store {
	case "memory":
		conversationRepo = memory.NewConversationRepository()
		logger.Warn("using in-memory conversation store, history will not survive restarts")
	default:
		pool, err := postgres.CreateConnectionPool(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("Failed to create connection pool: %v", err)
		}
		defer pool.Close()

		logger.Info("database connected", "table_prefix", cfg.TablePrefix)

		conversationRepo = postgres.NewConversationRepository(&postgres.RepositoryConfig{
			Pool:   pool,
			Tables: postgres.NewTableNames(cfg.TablePrefix),
			Logger: logger,
		})
	}

	// Persona registry - fail fast if any enumerated use case lacks a prompt
	prompts := persona.DefaultPrompts()
	if cfg.PersonaFile != "" {
		prompts, err = persona.LoadPrompts(cfg.PersonaFile)
		if err != nil {
			log.Fatalf("Failed to load persona prompts: %v", err)
		}
	}
	registry, err := persona.NewRegistry(prompts)
	if err != nil {
		log.Fatalf("Failed to build persona registry: %v", err)
	}

	// Completion client
	completer, err := llm.NewClient(llm.ClientConfig{
		APIKey:  cfg.OpenRouterAPIKey,
		BaseURL: cfg.OpenRouterBaseURL,
		Model:   cfg.CompletionModel,
	}, logger)
	if err != nil {
		log.Fatalf("Failed to create completion client: %v", err)
	}

	chatService := chat.NewService(conversationRepo, completer, registry, logger)
	chatHandler := handler.NewChatHandler(chatService, logger)

	logger.Info("services initialized")

	// Create HTTP router (Go 1.22+ enhanced patterns)
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", chatHandler.HealthCheck)

	// Chat routes
	mux.HandleFunc("POST /api/chat/send", chatHandler.SendMessage)
	mux.HandleFunc("GET /api/chat/conversations", chatHandler.ListConversations)
	mux.HandleFunc("GET /api/chat/conversation/{id}", chatHandler.GetConversation)

	// Build middleware chain
	var h http.Handler = mux

	// Apply middleware in reverse order (they wrap each other)
	// Order: CORS -> Recovery -> Auth -> Routes
	h = middleware.Auth(jwtVerifier)(h)
	h = middleware.Recovery(logger)(h)

	// CORS - must be before auth to handle OPTIONS pre-flight requests
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   strings.Split(cfg.CORSOrigins, ","),
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Origin", "Content-Type", "Accept", "Authorization"},
		AllowCredentials: true,
	})
	h = corsHandler.Handler(h)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      h,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	logger.Info("server listening", "port", cfg.Port)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("Failed to start server: %v", err)
	}
}
