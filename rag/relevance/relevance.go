// Package relevance turns whatever score a vector index reports into a single
// larger-is-better relevance in [0, +Inf).
package relevance

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"

	"github.com/sweetpotato0/gov-allin/pkg/logging"
	"github.com/sweetpotato0/gov-allin/vector"
)

// Strategy names.
const (
	NameRelevance = "relevance"
	NameDistance  = "distance"
)

// Source is a text-queryable index that may report relevance, distance, or both.
type Source interface {
	QueryRelevance(ctx context.Context, text string, k int) ([]vector.ScoredEmbedding, error)
	QueryDistance(ctx context.Context, text string, k int) ([]vector.ScoredEmbedding, error)
}

// Hit is a retrieved document with a normalized relevance.
type Hit struct {
	ID        string
	Text      string
	Metadata  map[string]any
	Relevance float64
}

// Strategy queries a Source one way and maps its scores to relevance.
type Strategy struct {
	Name  string
	Query func(ctx context.Context, src Source, text string, k int) ([]Hit, error)
}

// FromDistance maps a distance to 1/(1+d). Negative distances count as 0;
// NaN and +Inf map to 0.
func FromDistance(d float64) float64 {
	if math.IsNaN(d) || math.IsInf(d, 1) {
		return 0
	}
	if d < 0 {
		d = 0
	}
	return 1 / (1 + d)
}

// FromRelevance passes finite non-negative relevance through and clamps the rest to 0.
func FromRelevance(r float64) float64 {
	if math.IsNaN(r) || math.IsInf(r, 0) || r < 0 {
		return 0
	}
	return r
}

// RelevanceStrategy uses the index's native relevance.
func RelevanceStrategy() Strategy {
	return Strategy{
		Name: NameRelevance,
		Query: func(ctx context.Context, src Source, text string, k int) ([]Hit, error) {
			scored, err := src.QueryRelevance(ctx, text, k)
			if err != nil {
				return nil, err
			}
			return toHits(scored, FromRelevance), nil
		},
	}
}

// DistanceStrategy queries by distance and converts with FromDistance.
func DistanceStrategy() Strategy {
	return Strategy{
		Name: NameDistance,
		Query: func(ctx context.Context, src Source, text string, k int) ([]Hit, error) {
			scored, err := src.QueryDistance(ctx, text, k)
			if err != nil {
				return nil, err
			}
			return toHits(scored, FromDistance), nil
		},
	}
}

func toHits(scored []vector.ScoredEmbedding, convert func(float64) float64) []Hit {
	hits := make([]Hit, 0, len(scored))
	for _, s := range scored {
		if s.Embedding == nil {
			continue
		}
		hits = append(hits, Hit{
			ID:        s.Embedding.ID,
			Text:      s.Embedding.Text,
			Metadata:  s.Embedding.Metadata,
			Relevance: convert(s.Score),
		})
	}
	return hits
}

// Normalizer tries strategies in order and returns the first that succeeds.
// Results from different strategies are never mixed.
type Normalizer struct {
	strategies []Strategy
	logger     *slog.Logger
}

// Option configures a Normalizer.
type Option func(*Normalizer)

// WithStrategies replaces the default relevance-then-distance order.
func WithStrategies(strategies ...Strategy) Option {
	return func(n *Normalizer) {
		if len(strategies) > 0 {
			n.strategies = strategies
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(n *Normalizer) {
		if l != nil {
			n.logger = l
		}
	}
}

// New creates a Normalizer.
func New(opts ...Option) *Normalizer {
	n := &Normalizer{
		strategies: []Strategy{RelevanceStrategy(), DistanceStrategy()},
		logger:     logging.WithComponent("relevance"),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(n)
		}
	}
	return n
}

// Query returns hits in the source's order along with the name of the strategy
// that produced them. When every strategy fails the errors are joined.
func (n *Normalizer) Query(ctx context.Context, src Source, text string, k int) ([]Hit, string, error) {
	if src == nil {
		return nil, "", fmt.Errorf("relevance: nil source")
	}
	var errs []error
	for _, s := range n.strategies {
		hits, err := s.Query(ctx, src, text, k)
		if err == nil {
			return hits, s.Name, nil
		}
		n.logger.Debug("relevance strategy failed", "strategy", s.Name, "error", err)
		errs = append(errs, fmt.Errorf("%s: %w", s.Name, err))
		if ctx.Err() != nil {
			break
		}
	}
	return nil, "", errors.Join(errs...)
}
