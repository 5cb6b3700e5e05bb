// Package mcp exposes the trade analysis pipeline as MCP tools.
package mcp

import "github.com/inveskit/trade-mentor/internal/types"

// AnalyzeInput defines the input parameters for the analyze_trades tool.
type AnalyzeInput struct {
	// Trades is the user's trade history to evaluate.
	Trades []types.Trade `json:"trades" jsonschema:"required,description=The trade history to evaluate (buy/sell records with dates and prices)"`
	// StockPrices is the daily closing-price series for the traded instrument.
	StockPrices []types.PricePoint `json:"stockPrices,omitempty" jsonschema:"description=Daily closing prices used as price context around each trade"`
	// Strategy selects the context source: "external" (video) or "default".
	Strategy string `json:"strategy,omitempty" jsonschema:"description=Context source: external (analyze against a video strategy) or default (general advice)"`
	// ExternalURL is the YouTube video URL, required for external strategy.
	ExternalURL string `json:"externalUrl,omitempty" jsonschema:"description=YouTube video URL whose strategy the trades are evaluated against"`
}

// AnalyzeOutput contains the structured feedback for the trade history.
type AnalyzeOutput struct {
	// Analysis is one advice entry per traded instrument.
	Analysis []types.InstrumentAdvice `json:"analysis,omitempty"`
	// TotalScore grades overall strategy adherence from 0 to 100.
	TotalScore int `json:"total_score"`
	// Error and RawText carry the degraded payload when the model output
	// could not be parsed.
	Error   string `json:"error,omitempty"`
	RawText string `json:"raw_text,omitempty"`
}

// ExtractVideoIDInput defines the input parameters for the extract_video_id tool.
type ExtractVideoIDInput struct {
	// URL is the YouTube URL to resolve.
	URL string `json:"url" jsonschema:"required,description=The YouTube URL to resolve to an 11-character video ID"`
}

// ExtractVideoIDOutput contains the resolved video ID.
type ExtractVideoIDOutput struct {
	VideoID string `json:"video_id"`
}

// TestVideoInput defines the input parameters for the test_video tool.
type TestVideoInput struct {
	// URL is the YouTube URL to probe for transcript availability.
	URL string `json:"url" jsonschema:"required,description=The YouTube URL to check for a retrievable transcript"`
}

// TestVideoOutput reports transcript availability for a video.
type TestVideoOutput struct {
	VideoID         string `json:"video_id"`
	Available       bool   `json:"available"`
	TranscriptChars int    `json:"transcript_chars,omitempty"`
	Preview         string `json:"preview,omitempty"`
	Message         string `json:"message,omitempty"`
}
