// Package index provides the session-scoped vector store used for strategy
// retrieval. A store holds at most one active collection at a time: building
// a new one replaces the old, and handles from a replaced build are rejected
// so stale cross-video context can never leak into a search.
package index

import (
	"context"
	"errors"

	"github.com/inveskit/trade-mentor/internal/chunker"
)

var (
	// ErrNotInitialized is returned by Search before any collection has been
	// built. An uninitialized index is a programming-contract error, distinct
	// from a legitimately empty result.
	ErrNotInitialized = errors.New("vector index not initialized: build a collection first")

	// ErrStaleHandle is returned when a handle refers to a collection that
	// has since been replaced by a newer build.
	ErrStaleHandle = errors.New("stale collection handle: collection has been replaced")
)

// Handle identifies one built collection. It carries the build generation so
// the store can reject handles that outlive their collection.
type Handle struct {
	Name string
	gen  uint64
}

// Result is one ranked search hit.
type Result struct {
	Text  string
	Score float32
}

// Store is the retrieval contract shared by the in-memory and qdrant
// backends.
type Store interface {
	// Build embeds every chunk and stores the pairs in a fresh collection,
	// replacing any previously active one.
	Build(ctx context.Context, name string, chunks []chunker.Chunk) (Handle, error)

	// Search embeds the query and returns up to k results ranked by
	// similarity, highest first.
	Search(ctx context.Context, h Handle, query string, k int) ([]Result, error)

	// Reset discards the active collection and releases the cached embedding
	// model. Idempotent.
	Reset(ctx context.Context) error
}
