// Package main provides the mentor CLI for one-shot trade analysis.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/inveskit/trade-mentor/internal/completion"
	"github.com/inveskit/trade-mentor/internal/config"
	"github.com/inveskit/trade-mentor/internal/embedding"
	"github.com/inveskit/trade-mentor/internal/index"
	"github.com/inveskit/trade-mentor/internal/pipeline"
	"github.com/inveskit/trade-mentor/internal/transcript"
	"github.com/inveskit/trade-mentor/internal/types"
)

var rootCmd = &cobra.Command{
	Use:   "mentor",
	Short: "Trade feedback from video investment strategies",
	Long:  "CLI for analyzing a stock trade history against a YouTube video's investment strategy",
}

var (
	tradesPath string
	pricesPath string
	videoURL   string
	strategy   string
	configPath string
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Analyze a trade history and print the structured feedback",
	Long: `Runs the full analysis pipeline against local JSON files.

The trades file holds an array of trade records; the prices file an array of
daily closing prices. With --url the video's transcript is retrieved, chunked,
and searched for strategy context; with --strategy default the built-in
general advice context is used instead.

Environment variables:
  OPENAI_API_KEY OpenAI API key for embeddings (required for external mode)
  HF_TOKEN       Inference router token for the completion endpoint`,
	RunE: runAnalyze,
}

var testVideoCmd = &cobra.Command{
	Use:   "test-video <url>",
	Short: "Check whether a video's transcript is retrievable",
	Args:  cobra.ExactArgs(1),
	RunE:  runTestVideo,
}

func init() {
	analyzeCmd.Flags().StringVar(&tradesPath, "trades", "trades.json", "path to the trade history JSON file")
	analyzeCmd.Flags().StringVar(&pricesPath, "prices", "", "path to the daily closing prices JSON file")
	analyzeCmd.Flags().StringVar(&videoURL, "url", "", "YouTube video URL to analyze against")
	analyzeCmd.Flags().StringVar(&strategy, "strategy", "", "context source: external (default) or default")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "config.yaml", "path to the YAML configuration file")

	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(testVideoCmd)
}

func main() {
	// Load .env file if present (local development), ignore if missing (production)
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	start := time.Now()

	analyzer, cleanup, err := buildAnalyzer()
	if err != nil {
		return err
	}
	defer cleanup()

	var trades []types.Trade
	if err := readJSONFile(tradesPath, &trades); err != nil {
		return fmt.Errorf("read trades: %w", err)
	}

	var points []types.PricePoint
	if pricesPath != "" {
		if err := readJSONFile(pricesPath, &points); err != nil {
			return fmt.Errorf("read prices: %w", err)
		}
	}

	result, err := analyzer.Analyze(ctx, &types.AnalysisRequest{
		Trades:      trades,
		StockPrices: points,
		Strategy:    strategy,
		ExternalURL: videoURL,
	})
	if err != nil {
		return err
	}

	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	fmt.Fprintf(os.Stderr, "done in %s\n", time.Since(start).Round(time.Millisecond))
	return nil
}

func runTestVideo(cmd *cobra.Command, args []string) error {
	analyzer, cleanup, err := buildAnalyzer()
	if err != nil {
		return err
	}
	defer cleanup()

	res, err := analyzer.TestVideo(context.Background(), args[0])
	if err != nil {
		return err
	}

	fmt.Printf("video ID:   %s\n", res.VideoID)
	fmt.Printf("transcript: %d chars\n", res.TranscriptChars)
	fmt.Printf("preview:    %s\n", res.Preview)
	return nil
}

// buildAnalyzer wires the pipeline from configuration. The returned cleanup
// closes the vector backend if it holds a connection.
func buildAnalyzer() (*pipeline.Analyzer, func(), error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, err
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	embedder := embedding.NewEmbedder(cfg.Embedding.Model, cfg.Embedding.BatchSize)

	var (
		store   index.Store
		cleanup = func() {}
	)
	switch cfg.Vector.Backend {
	case config.BackendQdrant:
		qdrantStore, err := index.NewQdrant(cfg.Vector.QdrantHost, cfg.Vector.QdrantPort, embedder)
		if err != nil {
			return nil, nil, fmt.Errorf("connect to Qdrant: %w", err)
		}
		store = qdrantStore
		cleanup = func() { qdrantStore.Close() }
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
		cleanup()
		return nil, nil, err
	}

	return pipeline.New(cfg, transcript.NewHTTPFetcher(), store, completer, logger), cleanup, nil
}

func readJSONFile(path string, v any) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, v)
}
