// Package pipeline orchestrates one analysis request end to end: resolve the
// strategy context (video transcript retrieval or the built-in default),
// assemble the mentoring prompt, run the completion, and recover the
// structured result.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/inveskit/trade-mentor/internal/answer"
	"github.com/inveskit/trade-mentor/internal/chunker"
	"github.com/inveskit/trade-mentor/internal/completion"
	"github.com/inveskit/trade-mentor/internal/config"
	"github.com/inveskit/trade-mentor/internal/index"
	"github.com/inveskit/trade-mentor/internal/prices"
	"github.com/inveskit/trade-mentor/internal/prompt"
	"github.com/inveskit/trade-mentor/internal/transcript"
	"github.com/inveskit/trade-mentor/internal/types"
)

// ErrContentUnavailable reports a video whose transcript could not be
// retrieved. Callers should surface UnavailableGuidance alongside it.
var ErrContentUnavailable = errors.New("video content unavailable")

// UnavailableGuidance is the user-facing hint returned with
// ErrContentUnavailable.
const UnavailableGuidance = "The video's transcript could not be retrieved. " +
	"Pick a video with captions enabled, or set strategy to \"default\" for general advice."

// defaultContext stands in for a video strategy when the request asks for
// general advice instead of a specific video.
const defaultContext = `General technical-analysis principles for beginner stock traders:
buy on pullbacks to support in an established uptrend, confirm entries with
moving averages (20-day and 60-day), avoid chasing sharp rallies, size
positions so a single loss stays small, and cut losers quickly while letting
winners run.`

// Analyzer runs the analysis pipeline. One analysis at a time: the vector
// store holds a single active collection, so concurrent runs would trample
// each other's context.
type Analyzer struct {
	fetcher   transcript.Fetcher
	splitter  *chunker.Splitter
	store     index.Store
	assembler *prompt.Assembler
	completer completion.Completer
	logger    *slog.Logger

	query string
	topK  int

	mu sync.Mutex
}

// New wires an Analyzer from the configuration and its collaborators.
func New(cfg *config.Config, fetcher transcript.Fetcher, store index.Store, completer completion.Completer, logger *slog.Logger) *Analyzer {
	if logger == nil {
		logger = slog.Default()
	}
	window := prices.Window{
		LookBackDays:  cfg.Window.LookBackDays,
		LookAheadDays: cfg.Window.LookAheadDays,
	}
	return &Analyzer{
		fetcher:   fetcher,
		splitter:  chunker.NewSplitter(cfg.Chunking.Size, cfg.Chunking.Overlap),
		store:     store,
		assembler: prompt.NewAssembler(window, prompt.DefaultOptions()),
		completer: completer,
		logger:    logger,
		query:     cfg.Retrieval.Query,
		topK:      cfg.Retrieval.TopK,
	}
}

// Analyze validates the request, resolves the strategy context, and produces
// the structured feedback. Unparseable model output degrades to a result
// carrying the raw text rather than failing the request.
func (a *Analyzer) Analyze(ctx context.Context, req *types.AnalysisRequest) (*types.AnalysisResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	var (
		strategyContext string
		err             error
	)
	switch req.Strategy {
	case types.ModeExternal:
		strategyContext, err = a.retrieveContext(ctx, req.ExternalURL)
		if err != nil {
			return nil, err
		}
	default:
		strategyContext = defaultContext
	}

	p := a.assembler.Render(req.Trades, req.StockPrices, strategyContext)
	a.logger.Info("prompt assembled",
		"mode", req.Strategy,
		"trades", len(req.Trades),
		"prompt_chars", len(p))

	raw, err := a.completer.Complete(ctx, p)
	if err != nil {
		return nil, err
	}

	result, err := answer.Extract(raw)
	if err != nil {
		var perr *answer.ParseError
		if errors.As(err, &perr) {
			a.logger.Warn("model output not parseable, returning degraded result", "reason", perr.Reason)
			return answer.Degraded(perr), nil
		}
		return nil, err
	}

	a.logger.Info("analysis complete",
		"entries", len(result.Analysis),
		"total_score", result.TotalScore)
	return result, nil
}

// retrieveContext fetches, chunks, indexes, and searches the video
// transcript, returning the retrieved passages joined as strategy context.
func (a *Analyzer) retrieveContext(ctx context.Context, url string) (string, error) {
	videoID, err := transcript.ExtractVideoID(url)
	if err != nil {
		return "", fmt.Errorf("%w: %v", types.ErrInvalidInput, err)
	}

	text, err := a.fetcher.Fetch(ctx, videoID)
	if err != nil {
		a.logger.Warn("transcript fetch failed", "video_id", videoID, "error", err)
		return "", fmt.Errorf("%w: %v", ErrContentUnavailable, err)
	}

	chunks := a.splitter.Split(text)
	if len(chunks) == 0 {
		// Too short to chunk; the whole transcript fits as context.
		a.logger.Info("transcript below chunking threshold, using verbatim", "video_id", videoID, "chars", len(text))
		return text, nil
	}

	handle, err := a.store.Build(ctx, "video-"+videoID, chunks)
	if err != nil {
		return "", fmt.Errorf("build transcript index: %w", err)
	}

	results, err := a.store.Search(ctx, handle, a.query, a.topK)
	if err != nil {
		return "", fmt.Errorf("search transcript index: %w", err)
	}
	if len(results) == 0 {
		return text, nil
	}

	passages := make([]string, len(results))
	for i, r := range results {
		passages[i] = r.Text
	}
	a.logger.Info("strategy context retrieved", "video_id", videoID, "chunks", len(chunks), "passages", len(passages))
	return strings.Join(passages, "\n\n"), nil
}

// VideoTest reports whether a video's transcript is retrievable, without
// running an analysis.
type VideoTest struct {
	VideoID         string `json:"videoId"`
	TranscriptChars int    `json:"transcriptChars"`
	Preview         string `json:"preview"`
}

// TestVideo resolves the URL and fetches the transcript, returning a short
// preview so callers can sanity-check a video before analyzing against it.
func (a *Analyzer) TestVideo(ctx context.Context, url string) (*VideoTest, error) {
	videoID, err := transcript.ExtractVideoID(url)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrInvalidInput, err)
	}

	text, err := a.fetcher.Fetch(ctx, videoID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrContentUnavailable, err)
	}

	preview := text
	if len(preview) > 200 {
		preview = preview[:200] + "..."
	}
	return &VideoTest{
		VideoID:         videoID,
		TranscriptChars: len(text),
		Preview:         preview,
	}, nil
}

// Reset clears the vector store and releases the embedding model.
func (a *Analyzer) Reset(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.store.Reset(ctx)
}
