// Package types defines the data contracts shared across the analysis
// pipeline. All boundary input is converted into these records once, at
// ingress, and validated there.
package types

import (
	"errors"
	"fmt"
	"strings"
)

// Trade actions accepted on the wire.
const (
	ActionBuy  = "buy"
	ActionSell = "sell"
)

// Analysis modes. ModeExternal runs the full retrieval pipeline against a
// video URL; ModeDefault substitutes a generic-advice context.
const (
	ModeExternal = "external"
	ModeDefault  = "default"
)

// DateLayout is the calendar-date wire format used by trades and prices.
const DateLayout = "2006-01-02"

// ErrInvalidInput marks client-class request failures. The pipeline does not
// start when validation fails.
var ErrInvalidInput = errors.New("invalid input")

// Trade is a single buy or sell record from the user's history.
type Trade struct {
	StockName string  `json:"stockName"`
	StockCode string  `json:"stockCode"`
	TradeType string  `json:"tradeType"`
	Date      string  `json:"date"`
	Price     float64 `json:"price"`
	Quantity  int     `json:"quantity"`
}

// PricePoint is a dated closing price for the traded instrument.
type PricePoint struct {
	Date       string  `json:"date"`
	ClosePrice float64 `json:"closePrice"`
}

// AnalysisRequest is the input to the Analyze operation.
type AnalysisRequest struct {
	Trades      []Trade      `json:"trades"`
	StockPrices []PricePoint `json:"stockPrices"`
	Strategy    string       `json:"strategy"`
	ExternalURL string       `json:"externalUrl,omitempty"`
}

// Validate checks the request shape before the pipeline starts.
// Mode selection and URL presence are the only request-terminal checks;
// per-row date problems degrade later instead of failing here.
func (r *AnalysisRequest) Validate() error {
	if r.Strategy == "" {
		r.Strategy = ModeExternal
	}
	if r.Strategy != ModeExternal && r.Strategy != ModeDefault {
		return fmt.Errorf("%w: unknown strategy %q", ErrInvalidInput, r.Strategy)
	}
	if r.Strategy == ModeExternal && strings.TrimSpace(r.ExternalURL) == "" {
		return fmt.Errorf("%w: externalUrl is required for external strategy", ErrInvalidInput)
	}
	if len(r.Trades) == 0 {
		return fmt.Errorf("%w: at least one trade is required", ErrInvalidInput)
	}
	for i, t := range r.Trades {
		if t.TradeType != ActionBuy && t.TradeType != ActionSell {
			return fmt.Errorf("%w: trade %d has trade type %q, want %q or %q",
				ErrInvalidInput, i, t.TradeType, ActionBuy, ActionSell)
		}
		if t.StockName == "" {
			return fmt.Errorf("%w: trade %d has empty stock name", ErrInvalidInput, i)
		}
	}
	return nil
}

// InstrumentAdvice is one per-instrument entry of an analysis result.
// ReferenceID is the 1-based instrument-group position, not a trade count.
type InstrumentAdvice struct {
	ReferenceID    int    `json:"trade_id"`
	InstrumentName string `json:"stock_name"`
	ActionSummary  string `json:"type"`
	Advice         string `json:"advice"`
}

// AnalysisResult is the structured output of the Analyze operation.
// When the generator's output cannot be parsed, Error and RawText carry the
// degraded payload and Analysis/TotalScore are zero.
type AnalysisResult struct {
	Analysis   []InstrumentAdvice `json:"analysis,omitempty"`
	TotalScore int                `json:"total_score"`
	Error      string             `json:"error,omitempty"`
	RawText    string             `json:"raw_text,omitempty"`
}
