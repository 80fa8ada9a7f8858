package hashing

import (
	"context"
	"testing"

	"github.com/sweetpotato0/gov-allin/vector"
)

func TestEmbedderSimilarTextsScoreHigher(t *testing.T) {
	e := New(128)
	ctx := context.Background()

	q, _ := e.Embed(ctx, "小区邻里噪音纠纷")
	near, _ := e.Embed(ctx, "邻里噪音纠纷调解案例")
	far, _ := e.Embed(ctx, "垃圾分类宣传")

	if vector.CosineSimilarity(q, near) <= vector.CosineSimilarity(q, far) {
		t.Errorf("expected shared bigrams to raise similarity")
	}
}

func TestEmbedderIsDeterministic(t *testing.T) {
	e := New(0)
	if e.Dimension() != DefaultDimension {
		t.Fatalf("Dimension() = %d", e.Dimension())
	}
	vs, err := e.EmbedBatch(context.Background(), []string{"parking 停车", "parking 停车"})
	if err != nil {
		t.Fatalf("EmbedBatch() error = %v", err)
	}
	for i := range vs[0] {
		if vs[0][i] != vs[1][i] {
			t.Fatalf("vectors differ at %d", i)
		}
	}
}
