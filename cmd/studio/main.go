package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/Divas-Gupta30/workflow-studio/internal/api"
	"github.com/Divas-Gupta30/workflow-studio/internal/auth"
	"github.com/Divas-Gupta30/workflow-studio/internal/config"
	"github.com/Divas-Gupta30/workflow-studio/internal/llm"
	"github.com/Divas-Gupta30/workflow-studio/internal/processing"
	"github.com/Divas-Gupta30/workflow-studio/internal/search"
	"github.com/Divas-Gupta30/workflow-studio/internal/store"
	"github.com/Divas-Gupta30/workflow-studio/internal/workflow"
)

func main() {
	cfg := config.Load()
	ctx := context.Background()

	st, err := store.Open(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer st.Close()
	if err := st.CreateTables(); err != nil {
		log.Fatalf("Failed to create tables: %v", err)
	}

	vectors, err := store.NewVectorStore(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to initialize vector store: %v", err)
	}
	defer vectors.Close()
	if err := vectors.CreateSchema(ctx); err != nil {
		log.Fatalf("Failed to create vector schema: %v", err)
	}

	redisClient := newRedisClient(ctx, cfg)
	if redisClient != nil {
		defer redisClient.Close()
	}

	embedder := newEmbedder(ctx, cfg)
	retriever := &store.Retriever{Vectors: vectors, Embedder: embedder}
	providers := llm.DefaultRegistry(cfg.OllamaURL, cfg.LLMTimeout)
	searcher := search.NewClient(redisClient)
	engine := workflow.NewEngine(retriever, providers, searcher, cfg.LLMTimeout)

	server := api.NewServer(st, vectors, engine, embedder, auth.New(cfg.AuthMode), redisClient, cfg.UploadDir)

	metricsCtx, stopMetrics := context.WithCancel(ctx)
	go server.RunMetricsUpdater(metricsCtx)

	httpServer := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: server,
	}

	go func() {
		log.Printf("Workflow Studio starting on port %s", cfg.Port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	// Wait for interrupt signal
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	<-c

	log.Println("Shutting down gracefully...")
	stopMetrics()
	shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}
	log.Println("Server exited")
}

// newRedisClient connects to Redis when configured; the service runs
// without it, just without the web search cache.
func newRedisClient(ctx context.Context, cfg *config.Config) *redis.Client {
	if cfg.RedisURL == "" {
		return nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisURL,
		Password: cfg.RedisPassword,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if _, err := client.Ping(pingCtx).Result(); err != nil {
		log.Printf("Redis not available, continuing without cache: %v", err)
		client.Close()
		return nil
	}
	log.Println("Connected to Redis")
	return client
}

// newEmbedder probes the local Ollama instance and falls back to the
// deterministic hash embedder so uploads and retrieval keep working
// offline.
func newEmbedder(ctx context.Context, cfg *config.Config) processing.Embedder {
	ollama := processing.NewOllamaEmbedder(cfg.OllamaURL, cfg.EmbeddingModel)
	probeCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if _, err := ollama.Embed(probeCtx, "ping"); err != nil {
		log.Printf("Embedding service not available, using deterministic fallback: %v", err)
		return processing.HashEmbedder{}
	}
	return ollama
}
