package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/workmate-ai/intake/internal/chat"
	"github.com/workmate-ai/intake/internal/clarify"
	"github.com/workmate-ai/intake/internal/config"
	"github.com/workmate-ai/intake/internal/dispatch"
	"github.com/workmate-ai/intake/internal/guardrail"
	"github.com/workmate-ai/intake/internal/llm"
	"github.com/workmate-ai/intake/internal/memory"
	"github.com/workmate-ai/intake/internal/pipeline"
	"github.com/workmate-ai/intake/internal/router"
	"github.com/workmate-ai/intake/internal/tools"
	"github.com/workmate-ai/intake/internal/transport"
)

func main() {
	// Load .env file if it exists (for development)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	log.Println("🚀 Starting Workmate Intake Service...")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ Failed to load config: %v", err)
	}
	log.Printf("📋 Service: %s", cfg.ServiceName)
	log.Printf("📡 NATS URL: %s", cfg.NatsURL)
	log.Printf("🤖 LLM backend: %s (%s)", cfg.LLMBaseURL, cfg.LLMModel)
	log.Printf("💾 Redis URL: %s", cfg.RedisURL)
	log.Printf("🔧 Tools enabled: %t", cfg.ToolsEnabled)

	// Initialize Redis session store
	log.Println("🔌 Connecting to Redis...")
	store, err := memory.NewRedisStore(cfg.RedisURL, cfg.SessionTTL)
	if err != nil {
		log.Fatalf("❌ Failed to connect to Redis: %v", err)
	}
	defer store.Close()
	log.Println("✅ Redis connected")

	// History manager over the store
	historyManager := memory.NewManager(store)
	defer historyManager.Close()

	// LLM provider + JSON extraction layer
	provider, err := llm.NewOpenAIProvider(cfg.LLMBaseURL, cfg.LLMModel, cfg.LLMAPIKey, cfg.LLMTimeout)
	if err != nil {
		log.Fatalf("❌ Failed to initialize LLM provider: %v", err)
	}
	extractor := llm.NewExtractor(provider)
	log.Println("✅ LLM provider initialized")

	// Pipeline stages
	engine := clarify.NewEngine(extractor)
	runner := tools.NewHTTPRunner(cfg.ServiceURLs(), cfg.ServiceAuthToken, cfg.ToolsEnabled, cfg.ToolTimeout)
	pipe := pipeline.New(
		router.New(extractor),
		dispatch.New(engine, runner),
		guardrail.New(),
	)

	// Turn orchestration
	chatService := chat.NewService(store, historyManager, pipe, cfg.DefaultTenantID)
	log.Println("✅ Chat service initialized")

	// NATS transport
	log.Println("📡 Connecting to NATS...")
	natsTransport, err := transport.NewNATSTransport(cfg, chatService, historyManager)
	if err != nil {
		log.Fatalf("❌ Failed to initialize NATS transport: %v", err)
	}
	defer natsTransport.Close()

	if err := natsTransport.Start(); err != nil {
		log.Fatalf("❌ Failed to start NATS transport: %v", err)
	}

	log.Println("✅ Workmate Intake Service is running!")
	log.Printf("👂 Listening on subjects: %s, %s", cfg.NatsChatSubject, cfg.NatsHistorySubject)

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigChan
	log.Printf("🛑 Received signal: %v", sig)
	log.Println("🔄 Shutting down gracefully...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := store.Ping(ctx); err != nil {
		log.Printf("⚠️ Redis connection already gone: %v", err)
	}
	log.Printf("📊 Final cached session count: %d", historyManager.ActiveSessionCount())

	if err := natsTransport.Close(); err != nil {
		log.Printf("⚠️ Error closing NATS transport: %v", err)
	}

	log.Println("👋 Workmate Intake Service stopped")
}
