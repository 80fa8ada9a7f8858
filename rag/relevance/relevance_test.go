package relevance

import (
	"context"
	"errors"
	"math"
	"testing"

	apperrors "github.com/sweetpotato0/gov-allin/errors"
	"github.com/sweetpotato0/gov-allin/vector"
)

type stubSource struct {
	relevance []vector.ScoredEmbedding
	distance  []vector.ScoredEmbedding
	relErr    error
	distErr   error
}

func (s *stubSource) QueryRelevance(context.Context, string, int) ([]vector.ScoredEmbedding, error) {
	return s.relevance, s.relErr
}

func (s *stubSource) QueryDistance(context.Context, string, int) ([]vector.ScoredEmbedding, error) {
	return s.distance, s.distErr
}

func scored(id string, score float64) vector.ScoredEmbedding {
	return vector.ScoredEmbedding{Embedding: &vector.Embedding{ID: id, Text: id}, Score: score}
}

func TestFromDistance(t *testing.T) {
	tests := []struct {
		name string
		in   float64
		want float64
	}{
		{"zero", 0, 1},
		{"one", 1, 0.5},
		{"nine", 9, 0.1},
		{"negative", -3, 1},
		{"nan", math.NaN(), 0},
		{"inf", math.Inf(1), 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FromDistance(tt.in); math.Abs(got-tt.want) > 1e-12 {
				t.Errorf("FromDistance(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestFromDistanceIsMonotone(t *testing.T) {
	prev := FromDistance(0)
	for d := 0.5; d < 50; d += 0.5 {
		cur := FromDistance(d)
		if cur > prev {
			t.Fatalf("relevance rose from %v to %v at distance %v", prev, cur, d)
		}
		prev = cur
	}
}

func TestFromRelevanceClamps(t *testing.T) {
	if FromRelevance(-0.2) != 0 || FromRelevance(math.NaN()) != 0 || FromRelevance(math.Inf(1)) != 0 {
		t.Errorf("expected non-finite and negative relevance to clamp to 0")
	}
	if FromRelevance(0.83) != 0.83 {
		t.Errorf("finite relevance should pass through")
	}
}

func TestNormalizerPrefersRelevance(t *testing.T) {
	src := &stubSource{
		relevance: []vector.ScoredEmbedding{scored("a", 0.9), scored("b", 0.4)},
		distance:  []vector.ScoredEmbedding{scored("x", 0)},
	}
	hits, name, err := New().Query(context.Background(), src, "噪音", 2)
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}
	if name != NameRelevance {
		t.Errorf("strategy = %q, want %q", name, NameRelevance)
	}
	if len(hits) != 2 || hits[0].ID != "a" || hits[1].Relevance != 0.4 {
		t.Errorf("unexpected hits %+v", hits)
	}
}

func TestNormalizerFallsBackToDistance(t *testing.T) {
	src := &stubSource{
		relErr:   apperrors.ErrUnsupportedScore,
		distance: []vector.ScoredEmbedding{scored("a", 0), scored("b", 1), scored("c", 9)},
	}
	hits, name, err := New().Query(context.Background(), src, "停车", 3)
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}
	if name != NameDistance {
		t.Errorf("strategy = %q, want %q", name, NameDistance)
	}
	want := []float64{1, 0.5, 0.1}
	for i, h := range hits {
		if math.Abs(h.Relevance-want[i]) > 1e-12 {
			t.Errorf("hit %d relevance = %v, want %v", i, h.Relevance, want[i])
		}
	}
}

func TestNormalizerAllFail(t *testing.T) {
	src := &stubSource{relErr: apperrors.ErrUnsupportedScore, distErr: errors.New("connection refused")}
	_, _, err := New().Query(context.Background(), src, "q", 1)
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, apperrors.ErrUnsupportedScore) {
		t.Errorf("joined error should keep the relevance cause: %v", err)
	}
}
