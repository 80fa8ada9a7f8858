package inmemory

import (
	"context"
	"errors"
	"testing"

	apperrors "github.com/sweetpotato0/gov-allin/errors"
	"github.com/sweetpotato0/gov-allin/vector"
)

func TestVectorStore(t *testing.T) {
	store := New()
	ctx := context.Background()

	t.Run("add and retrieve embedding", func(t *testing.T) {
		emb := &vector.Embedding{
			ID:       "case-1",
			Text:     "邻里噪音纠纷调解",
			Vector:   []float32{0.1, 0.2, 0.3},
			Metadata: map[string]any{"problem_type": "neighbor_dispute"},
		}

		if err := store.AddEmbedding(ctx, emb); err != nil {
			t.Fatalf("AddEmbedding failed: %v", err)
		}

		got, err := store.GetEmbedding(ctx, "case-1")
		if err != nil {
			t.Fatalf("GetEmbedding failed: %v", err)
		}
		if got.Text != emb.Text {
			t.Errorf("expected text %q, got %q", emb.Text, got.Text)
		}
		if got.Metadata["problem_type"] != "neighbor_dispute" {
			t.Errorf("metadata lost: %#v", got.Metadata)
		}
	})

	t.Run("relevance search orders by cosine", func(t *testing.T) {
		store.Clear(ctx)
		for _, emb := range []*vector.Embedding{
			{ID: "a", Vector: []float32{1, 0, 0}},
			{ID: "b", Vector: []float32{0, 1, 0}},
			{ID: "c", Vector: []float32{0.9, 0.1, 0}},
		} {
			if err := store.AddEmbedding(ctx, emb); err != nil {
				t.Fatalf("AddEmbedding: %v", err)
			}
		}

		results, err := store.SearchWithRelevance(ctx, []float32{1, 0, 0}, 2)
		if err != nil {
			t.Fatalf("SearchWithRelevance: %v", err)
		}
		if len(results) != 2 {
			t.Fatalf("expected 2 results, got %d", len(results))
		}
		if results[0].Embedding.ID != "a" || results[1].Embedding.ID != "c" {
			t.Errorf("unexpected order: %s, %s", results[0].Embedding.ID, results[1].Embedding.ID)
		}
		if results[0].Score < results[1].Score {
			t.Errorf("relevance should be descending")
		}
	})

	t.Run("distance search orders ascending", func(t *testing.T) {
		results, err := store.SearchWithDistance(ctx, []float32{1, 0, 0}, 3)
		if err != nil {
			t.Fatalf("SearchWithDistance: %v", err)
		}
		if results[0].Embedding.ID != "a" {
			t.Errorf("expected a first, got %s", results[0].Embedding.ID)
		}
		if results[0].Score != 0 {
			t.Errorf("expected zero distance for identical vector, got %v", results[0].Score)
		}
		for i := 1; i < len(results); i++ {
			if results[i].Score < results[i-1].Score {
				t.Fatalf("distance should be ascending at %d", i)
			}
		}
	})

	t.Run("ties keep insertion order", func(t *testing.T) {
		store.Clear(ctx)
		for _, id := range []string{"first", "second", "third"} {
			store.AddEmbedding(ctx, &vector.Embedding{ID: id, Vector: []float32{0, 1}})
		}
		results, err := store.SearchWithRelevance(ctx, []float32{0, 1}, 3)
		if err != nil {
			t.Fatalf("SearchWithRelevance: %v", err)
		}
		want := []string{"first", "second", "third"}
		for i, id := range want {
			if results[i].Embedding.ID != id {
				t.Fatalf("position %d: want %s, got %s", i, id, results[i].Embedding.ID)
			}
		}
	})

	t.Run("replace keeps position", func(t *testing.T) {
		store.AddEmbedding(ctx, &vector.Embedding{ID: "first", Text: "updated", Vector: []float32{0, 1}})
		results, _ := store.SearchWithRelevance(ctx, []float32{0, 1}, 3)
		if results[0].Embedding.Text != "updated" {
			t.Errorf("expected replaced embedding at front, got %q", results[0].Embedding.Text)
		}
		if n, _ := store.Count(ctx); n != 3 {
			t.Errorf("expected 3 embeddings, got %d", n)
		}
	})

	t.Run("delete embedding", func(t *testing.T) {
		if err := store.DeleteEmbedding(ctx, "second"); err != nil {
			t.Fatalf("DeleteEmbedding failed: %v", err)
		}
		if _, err := store.GetEmbedding(ctx, "second"); !errors.Is(err, apperrors.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
		if err := store.DeleteEmbedding(ctx, "second"); !errors.Is(err, apperrors.ErrNotFound) {
			t.Errorf("expected ErrNotFound on second delete, got %v", err)
		}
	})

	t.Run("invalid input", func(t *testing.T) {
		if err := store.AddEmbedding(ctx, nil); !errors.Is(err, apperrors.ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput for nil, got %v", err)
		}
		if err := store.AddEmbedding(ctx, &vector.Embedding{ID: "x"}); !errors.Is(err, apperrors.ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput for empty vector, got %v", err)
		}
		if _, err := store.Search(ctx, nil, 1); err == nil {
			t.Errorf("expected error for empty query")
		}
	})
}
