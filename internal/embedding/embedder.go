// Package embedding wraps the embedding model behind a stable gateway. The
// underlying client is loaded lazily, once per process, and reused across
// calls; Reset releases it so the next call pays the load cost again.
package embedding

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/openai/openai-go"
)

const (
	// DefaultModel is the embedding model used for chunk and query vectors.
	DefaultModel = "text-embedding-3-small"

	// DefaultBatchSize balances requests-per-minute vs tokens-per-minute
	// rate limits.
	DefaultBatchSize = 500
)

// Gateway is the embedding capability consumed by the vector index.
// Implementations must return unit-length vectors so similarity search can
// use plain dot product.
type Gateway interface {
	EmbedMany(ctx context.Context, texts []string) ([][]float32, error)
	EmbedOne(ctx context.Context, text string) ([]float32, error)
	// Reset releases the cached model handle, forcing a reload on next use.
	Reset()
}

// Embedder generates unit-normalized embeddings via the OpenAI API.
// It batches requests and retries with exponential backoff on rate limits.
type Embedder struct {
	model     string
	batchSize int

	mu     sync.Mutex
	client *Client // loaded on first use, reused afterwards
}

// NewEmbedder creates an Embedder. Zero values select DefaultModel and
// DefaultBatchSize. The API client is not created until the first call that
// actually needs it.
func NewEmbedder(model string, batchSize int) *Embedder {
	if model == "" {
		model = DefaultModel
	}
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &Embedder{model: model, batchSize: batchSize}
}

// load returns the cached client, creating it on first use.
func (e *Embedder) load() (*Client, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.client != nil {
		return e.client, nil
	}
	c, err := NewClient()
	if err != nil {
		return nil, err
	}
	e.client = c
	return c, nil
}

// Reset drops the cached client. Safe to call when nothing is loaded.
func (e *Embedder) Reset() {
	e.mu.Lock()
	e.client = nil
	e.mu.Unlock()
}

// EmbedMany generates embeddings for the given texts, in order. An empty
// input returns an empty output without touching the model.
func (e *Embedder) EmbedMany(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}

	client, err := e.load()
	if err != nil {
		return nil, err
	}

	var all [][]float32
	for i := 0; i < len(texts); i += e.batchSize {
		end := min(i+e.batchSize, len(texts))
		vecs, err := e.embedBatchWithRetry(ctx, client, texts[i:end])
		if err != nil {
			return nil, fmt.Errorf("batch %d-%d: %w", i, end, err)
		}
		all = append(all, vecs...)
	}
	return all, nil
}

// EmbedOne generates the embedding for a single query text.
func (e *Embedder) EmbedOne(ctx context.Context, text string) ([]float32, error) {
	vecs, err := e.EmbedMany(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

// embedBatchWithRetry embeds one batch, retrying with exponential backoff on
// rate limit errors. Other errors fail immediately.
func (e *Embedder) embedBatchWithRetry(ctx context.Context, client *Client, texts []string) ([][]float32, error) {
	var vecs [][]float32

	operation := func() error {
		resp, err := client.client.Embeddings.New(ctx, openai.EmbeddingNewParams{
			Input: openai.EmbeddingNewParamsInputUnion{
				OfArrayOfStrings: texts,
			},
			Model: openai.EmbeddingModel(e.model),
		})
		if err != nil {
			if isRateLimitError(err) {
				return err
			}
			return backoff.Permanent(err)
		}

		vecs = make([][]float32, len(resp.Data))
		for i, data := range resp.Data {
			vecs[i] = Normalize(toFloat32(data.Embedding))
		}
		return nil
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 500 * time.Millisecond
	b.MaxInterval = 10 * time.Second
	b.MaxElapsedTime = 30 * time.Second

	err := backoff.Retry(operation, backoff.WithContext(b, ctx))
	return vecs, err
}

// isRateLimitError checks if the error is a rate limit error (HTTP 429).
func isRateLimitError(err error) bool {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == 429
	}
	return false
}

// Normalize scales v to unit length so cosine similarity reduces to dot
// product. The zero vector is returned unchanged.
func Normalize(v []float32) []float32 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	if sum == 0 {
		return v
	}
	norm := float32(math.Sqrt(sum))
	for i := range v {
		v[i] /= norm
	}
	return v
}

// toFloat32 converts the API's float64 vector to float32 for storage.
func toFloat32(f64 []float64) []float32 {
	f32 := make([]float32, len(f64))
	for i, v := range f64 {
		f32[i] = float32(v)
	}
	return f32
}
