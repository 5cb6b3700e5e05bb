package index

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/inveskit/trade-mentor/internal/chunker"
	"github.com/inveskit/trade-mentor/internal/embedding"
)

// Memory is the default Store: an ephemeral in-memory collection of
// (chunk text, embedding) pairs ranked by dot product. Vectors are unit
// length by the embedding gateway's contract, so dot product equals cosine
// similarity.
type Memory struct {
	gateway embedding.Gateway

	mu      sync.Mutex
	active  bool
	gen     uint64
	name    string
	texts   []string
	vectors [][]float32
}

// NewMemory creates an in-memory store backed by the given embedding gateway.
func NewMemory(gateway embedding.Gateway) *Memory {
	return &Memory{gateway: gateway}
}

// Build embeds the chunks and replaces the active collection. An empty chunk
// sequence builds a valid empty collection: searches then return no results,
// which is "no context available", not an error.
func (m *Memory) Build(ctx context.Context, name string, chunks []chunker.Chunk) (Handle, error) {
	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}

	vectors, err := m.gateway.EmbedMany(ctx, texts)
	if err != nil {
		return Handle{}, fmt.Errorf("embed chunks: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.gen++
	m.active = true
	m.name = name
	m.texts = texts
	m.vectors = vectors
	return Handle{Name: name, gen: m.gen}, nil
}

// Search ranks all stored vectors against the query, highest score first,
// and returns the top k (or fewer if the collection is smaller). Ordering is
// stable, so results for k are a prefix of results for k+1.
func (m *Memory) Search(ctx context.Context, h Handle, query string, k int) ([]Result, error) {
	m.mu.Lock()
	if !m.active {
		m.mu.Unlock()
		return nil, ErrNotInitialized
	}
	if h.gen != m.gen {
		m.mu.Unlock()
		return nil, ErrStaleHandle
	}
	texts := m.texts
	vectors := m.vectors
	m.mu.Unlock()

	queryVec, err := m.gateway.EmbedOne(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	results := make([]Result, 0, len(vectors))
	for i, v := range vectors {
		results = append(results, Result{Text: texts[i], Score: dot(queryVec, v)})
	}
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	if k > len(results) {
		k = len(results)
	}
	return results[:k], nil
}

// Reset discards the collection and releases the embedding model handle.
func (m *Memory) Reset(ctx context.Context) error {
	m.mu.Lock()
	m.active = false
	m.name = ""
	m.texts = nil
	m.vectors = nil
	m.mu.Unlock()

	m.gateway.Reset()
	return nil
}

func dot(a, b []float32) float32 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var sum float32
	for i := 0; i < n; i++ {
		sum += a[i] * b[i]
	}
	return sum
}
