// Package index embeds documents into a vector store and answers text queries
// with relevance or distance scores.
package index

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	apperrors "github.com/sweetpotato0/gov-allin/errors"
	"github.com/sweetpotato0/gov-allin/pkg/logging"
	"github.com/sweetpotato0/gov-allin/rag/document"
	"github.com/sweetpotato0/gov-allin/vector"
)

// StoreFactory creates an empty store for Rebuild.
type StoreFactory func(ctx context.Context) (vector.VectorStore, error)

// Index is safe for concurrent readers and a single writer.
type Index struct {
	name     string
	embedder vector.Embedder
	factory  StoreFactory
	logger   *slog.Logger

	mu    sync.RWMutex
	store vector.VectorStore
}

// Option configures an Index.
type Option func(*Index)

// WithName labels the index in logs.
func WithName(name string) Option {
	return func(i *Index) {
		if name != "" {
			i.name = name
		}
	}
}

// WithStoreFactory enables build-then-swap rebuilds.
func WithStoreFactory(f StoreFactory) Option {
	return func(i *Index) {
		i.factory = f
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(i *Index) {
		if l != nil {
			i.logger = l
		}
	}
}

// New creates an index over store, embedding text with emb.
func New(store vector.VectorStore, emb vector.Embedder, opts ...Option) *Index {
	idx := &Index{
		name:     "index",
		store:    store,
		embedder: emb,
		logger:   logging.WithComponent("index"),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(idx)
		}
	}
	return idx
}

// Name returns the index label.
func (i *Index) Name() string { return i.name }

// Upsert embeds and stores docs, replacing entries with the same ID.
func (i *Index) Upsert(ctx context.Context, docs ...document.Document) error {
	embeddings, err := i.embed(ctx, docs)
	if err != nil {
		return err
	}

	i.mu.Lock()
	defer i.mu.Unlock()
	return addAll(ctx, i.store, embeddings)
}

// Rebuild replaces the whole index content with docs. With a store factory the
// new content is built aside and swapped in, so readers never observe a
// partially loaded index. Without one the current store is cleared and refilled
// under the write lock.
func (i *Index) Rebuild(ctx context.Context, docs []document.Document) error {
	embeddings, err := i.embed(ctx, docs)
	if err != nil {
		return err
	}

	if i.factory == nil {
		i.mu.Lock()
		defer i.mu.Unlock()
		if err := i.store.Clear(ctx); err != nil {
			return fmt.Errorf("clear %s: %w", i.name, err)
		}
		return addAll(ctx, i.store, embeddings)
	}

	fresh, err := i.factory(ctx)
	if err != nil {
		return fmt.Errorf("create store for %s: %w", i.name, err)
	}
	if err := addAll(ctx, fresh, embeddings); err != nil {
		return err
	}

	i.mu.Lock()
	i.store = fresh
	i.mu.Unlock()

	i.logger.Info("index rebuilt", "index", i.name, "documents", len(embeddings))
	return nil
}

func (i *Index) embed(ctx context.Context, docs []document.Document) ([]*vector.Embedding, error) {
	if i.embedder == nil {
		return nil, fmt.Errorf("index %s: %w: no embedder", i.name, apperrors.ErrInvalidInput)
	}
	if len(docs) == 0 {
		return nil, nil
	}

	prepared := make([]document.Document, len(docs))
	texts := make([]string, len(docs))
	for n, doc := range docs {
		document.EnsureDocumentID(&doc)
		prepared[n] = doc
		texts[n] = doc.Content
	}
	vectors, err := i.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("embed %d documents for %s: %w", len(docs), i.name, err)
	}
	if len(vectors) != len(docs) {
		return nil, fmt.Errorf("embed %s: expected %d vectors, got %d", i.name, len(docs), len(vectors))
	}

	out := make([]*vector.Embedding, len(prepared))
	for n, doc := range prepared {
		out[n] = &vector.Embedding{
			ID:       doc.ID,
			Vector:   vectors[n],
			Text:     doc.Content,
			Metadata: vector.CloneMetadata(doc.Metadata),
		}
	}
	return out, nil
}

func addAll(ctx context.Context, store vector.VectorStore, embeddings []*vector.Embedding) error {
	for _, emb := range embeddings {
		if err := store.AddEmbedding(ctx, emb); err != nil {
			return fmt.Errorf("store %s: %w", emb.ID, err)
		}
	}
	return nil
}

// QueryRelevance returns up to k entries, most relevant first. It fails with
// ErrUnsupportedScore when the store cannot report relevance.
func (i *Index) QueryRelevance(ctx context.Context, text string, k int) ([]vector.ScoredEmbedding, error) {
	return i.query(ctx, text, k, func(store vector.VectorStore, q []float32) ([]vector.ScoredEmbedding, error) {
		rs, ok := store.(vector.RelevanceSearcher)
		if !ok {
			return nil, fmt.Errorf("%s relevance: %w", i.name, apperrors.ErrUnsupportedScore)
		}
		return rs.SearchWithRelevance(ctx, q, k)
	})
}

// QueryDistance returns up to k entries, nearest first. It fails with
// ErrUnsupportedScore when the store cannot report distance.
func (i *Index) QueryDistance(ctx context.Context, text string, k int) ([]vector.ScoredEmbedding, error) {
	return i.query(ctx, text, k, func(store vector.VectorStore, q []float32) ([]vector.ScoredEmbedding, error) {
		ds, ok := store.(vector.DistanceSearcher)
		if !ok {
			return nil, fmt.Errorf("%s distance: %w", i.name, apperrors.ErrUnsupportedScore)
		}
		return ds.SearchWithDistance(ctx, q, k)
	})
}

func (i *Index) query(ctx context.Context, text string, k int, search func(vector.VectorStore, []float32) ([]vector.ScoredEmbedding, error)) ([]vector.ScoredEmbedding, error) {
	if strings.TrimSpace(text) == "" {
		return nil, apperrors.ErrEmptyQuery
	}
	if k <= 0 {
		return nil, nil
	}
	if i.embedder == nil {
		return nil, fmt.Errorf("index %s: %w: no embedder", i.name, apperrors.ErrInvalidInput)
	}
	q, err := i.embedder.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	i.mu.RLock()
	defer i.mu.RUnlock()
	return search(i.store, q)
}

// Count returns the number of stored entries.
func (i *Index) Count(ctx context.Context) (int, error) {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.store.Count(ctx)
}

// Clear removes every entry.
func (i *Index) Clear(ctx context.Context) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.store.Clear(ctx)
}
