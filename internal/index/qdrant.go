package index

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"github.com/qdrant/go-client/qdrant"

	"github.com/inveskit/trade-mentor/internal/chunker"
	"github.com/inveskit/trade-mentor/internal/embedding"
)

// ErrQdrantUnreachable indicates the qdrant server failed its health check.
var ErrQdrantUnreachable = errors.New("qdrant server unreachable")

// Qdrant is a Store served by an external qdrant instance. Each Build
// creates a fresh collection and drops the previous one, keeping the same
// one-active-collection lifecycle as the in-memory store; nothing persists
// across sessions on purpose.
type Qdrant struct {
	client  *qdrant.Client
	gateway embedding.Gateway

	mu         sync.Mutex
	active     bool
	gen        uint64
	collection string
}

// NewQdrant connects to qdrant and validates health with retry, failing fast
// if the server is unreachable.
func NewQdrant(host string, port int, gateway embedding.Gateway) (*Qdrant, error) {
	client, err := qdrant.NewClient(&qdrant.Config{
		Host: host,
		Port: port,
	})
	if err != nil {
		return nil, fmt.Errorf("create qdrant client: %w", err)
	}

	s := &Qdrant{client: client, gateway: gateway}

	if err := s.healthCheckWithRetry(context.Background()); err != nil {
		client.Close()
		return nil, fmt.Errorf("%w: %v", ErrQdrantUnreachable, err)
	}
	return s, nil
}

// healthCheckWithRetry probes qdrant with exponential backoff.
// Initial interval 500ms, max interval 10s, max elapsed 30s.
func (s *Qdrant) healthCheckWithRetry(ctx context.Context) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 500 * time.Millisecond
	b.MaxInterval = 10 * time.Second
	b.MaxElapsedTime = 30 * time.Second

	return backoff.Retry(func() error {
		return s.Health(ctx)
	}, backoff.WithContext(b, ctx))
}

// Health performs a single health check against qdrant.
func (s *Qdrant) Health(ctx context.Context) error {
	result, err := s.client.HealthCheck(ctx)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	if result == nil || result.Title == "" {
		return fmt.Errorf("health check returned invalid response")
	}
	return nil
}

// Build embeds the chunks into a fresh session collection and deletes the
// previously active one.
func (s *Qdrant) Build(ctx context.Context, name string, chunks []chunker.Chunk) (Handle, error) {
	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}

	vectors, err := s.gateway.EmbedMany(ctx, texts)
	if err != nil {
		return Handle{}, fmt.Errorf("embed chunks: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.active {
		if err := s.client.DeleteCollection(ctx, s.collection); err != nil {
			return Handle{}, fmt.Errorf("drop previous collection: %w", err)
		}
		s.active = false
	}

	// Unique physical name per build; the logical name lives on the handle.
	collection := fmt.Sprintf("session-%s", uuid.New().String())

	dim := uint64(1)
	if len(vectors) > 0 {
		dim = uint64(len(vectors[0]))
	}
	err = s.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: collection,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     dim,
			Distance: qdrant.Distance_Dot,
		}),
	})
	if err != nil {
		return Handle{}, fmt.Errorf("create collection: %w", err)
	}

	if len(vectors) > 0 {
		points := make([]*qdrant.PointStruct, len(vectors))
		for i, v := range vectors {
			points[i] = &qdrant.PointStruct{
				Id:      qdrant.NewIDUUID(uuid.New().String()),
				Vectors: qdrant.NewVectors(v...),
				Payload: qdrant.NewValueMap(map[string]any{
					"text":        texts[i],
					"chunk_index": chunks[i].Index,
				}),
			}
		}
		if err := s.upsertWithRetry(ctx, collection, points); err != nil {
			return Handle{}, fmt.Errorf("upsert chunks: %w", err)
		}
	}

	s.gen++
	s.active = true
	s.collection = collection
	return Handle{Name: name, gen: s.gen}, nil
}

// upsertWithRetry writes points with exponential backoff.
func (s *Qdrant) upsertWithRetry(ctx context.Context, collection string, points []*qdrant.PointStruct) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 500 * time.Millisecond
	b.MaxInterval = 10 * time.Second
	b.MaxElapsedTime = 30 * time.Second

	return backoff.Retry(func() error {
		_, err := s.client.Upsert(ctx, &qdrant.UpsertPoints{
			CollectionName: collection,
			Points:         points,
		})
		return err
	}, backoff.WithContext(b, ctx))
}

// Search ranks the session collection against the query.
func (s *Qdrant) Search(ctx context.Context, h Handle, query string, k int) ([]Result, error) {
	s.mu.Lock()
	if !s.active {
		s.mu.Unlock()
		return nil, ErrNotInitialized
	}
	if h.gen != s.gen {
		s.mu.Unlock()
		return nil, ErrStaleHandle
	}
	collection := s.collection
	s.mu.Unlock()

	queryVec, err := s.gateway.EmbedOne(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	points, err := s.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: collection,
		Query:          qdrant.NewQuery(queryVec...),
		Limit:          qdrant.PtrOf(uint64(k)),
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, fmt.Errorf("search collection: %w", err)
	}

	results := make([]Result, 0, len(points))
	for _, p := range points {
		results = append(results, Result{
			Text:  p.Payload["text"].GetStringValue(),
			Score: p.Score,
		})
	}
	return results, nil
}

// Reset drops the session collection and releases the embedding model.
func (s *Qdrant) Reset(ctx context.Context) error {
	s.mu.Lock()
	collection := s.collection
	active := s.active
	s.active = false
	s.collection = ""
	s.mu.Unlock()

	s.gateway.Reset()

	if active {
		if err := s.client.DeleteCollection(ctx, collection); err != nil {
			return fmt.Errorf("drop collection: %w", err)
		}
	}
	return nil
}

// Close closes the qdrant client connection.
func (s *Qdrant) Close() error {
	if s.client != nil {
		return s.client.Close()
	}
	return nil
}
