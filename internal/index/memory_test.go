package index

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inveskit/trade-mentor/internal/chunker"
)

// fakeGateway returns canned unit vectors keyed by text, so rankings are
// fully deterministic without a model.
type fakeGateway struct {
	vectors map[string][]float32
	resets  int
}

func (f *fakeGateway) EmbedMany(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		v, ok := f.vectors[t]
		if !ok {
			return nil, fmt.Errorf("no canned vector for %q", t)
		}
		out[i] = v
	}
	return out, nil
}

func (f *fakeGateway) EmbedOne(ctx context.Context, text string) ([]float32, error) {
	vecs, err := f.EmbedMany(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

func (f *fakeGateway) Reset() { f.resets++ }

func newTestStore() (*Memory, *fakeGateway) {
	gw := &fakeGateway{vectors: map[string][]float32{
		"pullback entries": {1, 0},
		"moving averages":  {0.8, 0.6},
		"market gossip":    {0, 1},
		"old chunk":        {0.6, 0.8},
		"query":            {1, 0},
	}}
	return NewMemory(gw), gw
}

func chunksFor(texts ...string) []chunker.Chunk {
	out := make([]chunker.Chunk, len(texts))
	for i, t := range texts {
		out[i] = chunker.Chunk{Index: i, Text: t}
	}
	return out
}

func TestMemory_SearchRanking(t *testing.T) {
	store, _ := newTestStore()
	ctx := context.Background()

	h, err := store.Build(ctx, "video-1", chunksFor("market gossip", "pullback entries", "moving averages"))
	require.NoError(t, err)

	results, err := store.Search(ctx, h, "query", 3)
	require.NoError(t, err)
	require.Len(t, results, 3)

	// Highest similarity first, scores non-increasing.
	assert.Equal(t, "pullback entries", results[0].Text)
	assert.Equal(t, "moving averages", results[1].Text)
	assert.Equal(t, "market gossip", results[2].Text)
	for i := 1; i < len(results); i++ {
		assert.GreaterOrEqual(t, results[i-1].Score, results[i].Score)
	}
}

func TestMemory_TopKPrefix(t *testing.T) {
	store, _ := newTestStore()
	ctx := context.Background()

	h, err := store.Build(ctx, "video-1", chunksFor("market gossip", "pullback entries", "moving averages"))
	require.NoError(t, err)

	two, err := store.Search(ctx, h, "query", 2)
	require.NoError(t, err)
	three, err := store.Search(ctx, h, "query", 3)
	require.NoError(t, err)

	require.Len(t, two, 2)
	require.Len(t, three, 3)
	assert.Equal(t, two, three[:2], "k=2 results should be a prefix of k=3 results")
}

func TestMemory_KLargerThanCollection(t *testing.T) {
	store, _ := newTestStore()
	ctx := context.Background()

	h, err := store.Build(ctx, "video-1", chunksFor("pullback entries"))
	require.NoError(t, err)

	results, err := store.Search(ctx, h, "query", 10)
	require.NoError(t, err)
	assert.Len(t, results, 1)
}

func TestMemory_SearchBeforeBuild(t *testing.T) {
	store, _ := newTestStore()

	_, err := store.Search(context.Background(), Handle{Name: "never-built"}, "query", 3)
	assert.ErrorIs(t, err, ErrNotInitialized)
}

func TestMemory_StaleHandleRejected(t *testing.T) {
	store, _ := newTestStore()
	ctx := context.Background()

	old, err := store.Build(ctx, "video-1", chunksFor("old chunk"))
	require.NoError(t, err)

	_, err = store.Build(ctx, "video-2", chunksFor("pullback entries"))
	require.NoError(t, err)

	_, err = store.Search(ctx, old, "query", 3)
	assert.ErrorIs(t, err, ErrStaleHandle)
}

func TestMemory_RebuildIsolation(t *testing.T) {
	store, _ := newTestStore()
	ctx := context.Background()

	_, err := store.Build(ctx, "video-1", chunksFor("old chunk"))
	require.NoError(t, err)

	// Second build without a reset in between must fully replace the first.
	h, err := store.Build(ctx, "video-2", chunksFor("pullback entries", "moving averages"))
	require.NoError(t, err)

	results, err := store.Search(ctx, h, "query", 10)
	require.NoError(t, err)
	for _, r := range results {
		assert.NotEqual(t, "old chunk", r.Text, "prior collection leaked into search results")
	}
	assert.Len(t, results, 2)
}

func TestMemory_EmptyCollection(t *testing.T) {
	store, _ := newTestStore()
	ctx := context.Background()

	h, err := store.Build(ctx, "video-1", nil)
	require.NoError(t, err)

	// Empty is a valid state ("no context"), not an initialization error.
	results, err := store.Search(ctx, h, "query", 5)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestMemory_Reset(t *testing.T) {
	store, gw := newTestStore()
	ctx := context.Background()

	h, err := store.Build(ctx, "video-1", chunksFor("pullback entries"))
	require.NoError(t, err)

	require.NoError(t, store.Reset(ctx))
	assert.Equal(t, 1, gw.resets, "reset should release the embedding model")

	_, err = store.Search(ctx, h, "query", 3)
	assert.ErrorIs(t, err, ErrNotInitialized)

	// Idempotent on an already-empty store.
	require.NoError(t, store.Reset(ctx))
}
