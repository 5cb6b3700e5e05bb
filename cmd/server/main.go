// Package main provides the trade-mentor server entry point.
package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/inveskit/trade-mentor/internal/completion"
	"github.com/inveskit/trade-mentor/internal/config"
	"github.com/inveskit/trade-mentor/internal/embedding"
	"github.com/inveskit/trade-mentor/internal/httpapi"
	"github.com/inveskit/trade-mentor/internal/index"
	mcpserver "github.com/inveskit/trade-mentor/internal/mcp"
	"github.com/inveskit/trade-mentor/internal/pipeline"
	"github.com/inveskit/trade-mentor/internal/transcript"
)

func main() {
	// Load .env file if present (local development), ignore if missing (production)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	// Create context that cancels on SIGTERM/SIGINT
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer cancel()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	slog.SetDefault(logger)

	cfg, err := config.Load(getEnv("CONFIG_FILE", "config.yaml"))
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	embedder := embedding.NewEmbedder(cfg.Embedding.Model, cfg.Embedding.BatchSize)

	// Select vector backend
	var (
		store   index.Store
		checker httpapi.HealthChecker
	)
	switch cfg.Vector.Backend {
	case config.BackendQdrant:
		qdrantStore, err := index.NewQdrant(cfg.Vector.QdrantHost, cfg.Vector.QdrantPort, embedder)
		if err != nil {
			log.Fatalf("failed to connect to Qdrant: %v", err)
		}
		defer qdrantStore.Close()
		store = qdrantStore
		checker = qdrantStore
	default:
		store = index.NewMemory(embedder)
	}

	completer, err := completion.NewClient(completion.Config{
		BaseURL:     cfg.LLM.BaseURL,
		Model:       cfg.LLM.Model,
		Temperature: cfg.LLM.Temperature,
		MaxTokens:   cfg.LLM.MaxTokens,
		Timeout:     time.Duration(cfg.LLM.TimeoutSeconds) * time.Second,
	})
	if err != nil {
		log.Fatalf("failed to create completion client: %v", err)
	}

	fetcher := transcript.NewHTTPFetcher()
	analyzer := pipeline.New(cfg, fetcher, store, completer, logger)

	// Create MCP server
	server := mcpserver.NewServer(analyzer)

	// Create HTTP server with multiple endpoints
	mux := http.NewServeMux()
	mux.HandleFunc("/health", httpapi.NewHealthHandler(cfg.Vector.Backend, checker))
	mux.HandleFunc("/api/analyze", httpapi.NewAnalyzeHandler(analyzer, logger))
	mux.HandleFunc("/api/test-video", httpapi.NewTestVideoHandler(analyzer, logger))
	mux.Handle("/mcp", mcpserver.NewHTTPHandler(server, nil))

	// Check if running in server mode (HTTP) or stdio mode (local development)
	serverMode := getEnv("SERVER_MODE", "true") == "true"

	if serverMode {
		addr := "0.0.0.0:" + cfg.Server.Port
		log.Printf("Starting HTTP server on %s (API at /api, MCP at /mcp, health at /health)", addr)
		if err := http.ListenAndServe(addr, mux); err != nil {
			log.Fatalf("HTTP server error: %v", err)
		}
	} else {
		// Stdio mode: run MCP server over stdin/stdout for local clients.
		// Keep the HTTP endpoints up in the background for local testing.
		go func() {
			addr := "0.0.0.0:" + cfg.Server.Port
			log.Printf("Starting HTTP server on %s", addr)
			if err := http.ListenAndServe(addr, mux); err != nil {
				log.Printf("HTTP server error: %v", err)
			}
		}()

		log.Println("Starting trade-mentor MCP server (stdio mode)...")
		if err := server.Run(ctx); err != nil {
			log.Printf("server error: %v", err)
			os.Exit(1)
		}
	}
}

func getEnv(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}
