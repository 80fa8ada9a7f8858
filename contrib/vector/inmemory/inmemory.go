package inmemory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	apperrors "github.com/sweetpotato0/gov-allin/errors"
	"github.com/sweetpotato0/gov-allin/vector"
)

var (
	_ vector.VectorStore       = (*VectorStore)(nil)
	_ vector.RelevanceSearcher = (*VectorStore)(nil)
	_ vector.DistanceSearcher  = (*VectorStore)(nil)
)

// VectorStore keeps embeddings in insertion order so that equal scores are
// returned in the order documents were added.
type VectorStore struct {
	mu    sync.RWMutex
	order []string
	items map[string]*vector.Embedding
}

// New creates an empty in-memory vector store.
func New() *VectorStore {
	return &VectorStore{
		items: make(map[string]*vector.Embedding),
	}
}

// AddEmbedding adds a new embedding or replaces one with the same ID in place.
func (s *VectorStore) AddEmbedding(ctx context.Context, embedding *vector.Embedding) error {
	if embedding == nil {
		return fmt.Errorf("embedding cannot be nil: %w", apperrors.ErrInvalidInput)
	}
	if embedding.ID == "" {
		return fmt.Errorf("embedding ID cannot be empty: %w", apperrors.ErrInvalidInput)
	}
	if len(embedding.Vector) == 0 {
		return fmt.Errorf("embedding vector cannot be empty: %w", apperrors.ErrInvalidInput)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.items[embedding.ID]; !exists {
		s.order = append(s.order, embedding.ID)
	}
	s.items[embedding.ID] = embedding
	return nil
}

// Search returns the topK embeddings by cosine similarity.
func (s *VectorStore) Search(ctx context.Context, queryVector []float32, topK int) ([]*vector.Embedding, error) {
	scored, err := s.SearchWithRelevance(ctx, queryVector, topK)
	if err != nil {
		return nil, err
	}
	out := make([]*vector.Embedding, len(scored))
	for i, item := range scored {
		out[i] = item.Embedding
	}
	return out, nil
}

// SearchWithRelevance reports cosine similarity, larger is better.
func (s *VectorStore) SearchWithRelevance(ctx context.Context, queryVector []float32, topK int) ([]vector.ScoredEmbedding, error) {
	return s.scan(queryVector, topK, func(a, b []float32) float64 {
		return float64(vector.CosineSimilarity(a, b))
	}, true)
}

// SearchWithDistance reports Euclidean distance, smaller is better.
func (s *VectorStore) SearchWithDistance(ctx context.Context, queryVector []float32, topK int) ([]vector.ScoredEmbedding, error) {
	return s.scan(queryVector, topK, func(a, b []float32) float64 {
		return float64(vector.EuclideanDistance(a, b))
	}, false)
}

func (s *VectorStore) scan(queryVector []float32, topK int, score func(a, b []float32) float64, descending bool) ([]vector.ScoredEmbedding, error) {
	if len(queryVector) == 0 {
		return nil, fmt.Errorf("query vector cannot be empty: %w", apperrors.ErrInvalidInput)
	}
	if topK <= 0 {
		topK = 10
	}

	s.mu.RLock()
	results := make([]vector.ScoredEmbedding, 0, len(s.order))
	for _, id := range s.order {
		emb := s.items[id]
		if len(emb.Vector) != len(queryVector) {
			continue
		}
		results = append(results, vector.ScoredEmbedding{
			Embedding: emb,
			Score:     score(queryVector, emb.Vector),
		})
	}
	s.mu.RUnlock()

	sort.SliceStable(results, func(i, j int) bool {
		if descending {
			return results[i].Score > results[j].Score
		}
		return results[i].Score < results[j].Score
	})

	if len(results) > topK {
		results = results[:topK]
	}
	return results, nil
}

// DeleteEmbedding removes an embedding by ID
func (s *VectorStore) DeleteEmbedding(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.items[id]; !exists {
		return fmt.Errorf("embedding %s: %w", id, apperrors.ErrNotFound)
	}

	delete(s.items, id)
	for i, existing := range s.order {
		if existing == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

// GetEmbedding retrieves a specific embedding by ID
func (s *VectorStore) GetEmbedding(ctx context.Context, id string) (*vector.Embedding, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	emb, exists := s.items[id]
	if !exists {
		return nil, fmt.Errorf("embedding %s: %w", id, apperrors.ErrNotFound)
	}
	return emb, nil
}

// Clear removes all embeddings
func (s *VectorStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items = make(map[string]*vector.Embedding)
	s.order = nil
	return nil
}

// Count returns the number of embeddings
func (s *VectorStore) Count(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.items), nil
}
