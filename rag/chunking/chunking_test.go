package chunking

import (
	"context"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/sweetpotato0/gov-allin/rag/document"
)

func TestWindowChunkerPacksParagraphsAndCutsLongOnes(t *testing.T) {
	ch := NewWindowChunker(WithChunkSize(20), WithOverlap(5))

	long := strings.Repeat("治理", 15) // 30 runes
	doc := document.Document{
		ID:       "policy-1",
		Content:  "第一条 总则\n第二条 适用范围\n" + long,
		Metadata: map[string]any{"admin_level": "municipal"},
	}

	chunks, err := ch.Chunk(context.Background(), doc)
	if err != nil {
		t.Fatalf("chunk error: %v", err)
	}
	if len(chunks) != 3 {
		t.Fatalf("expected 3 chunks, got %d: %#v", len(chunks), chunks)
	}
	if chunks[0].Content != "第一条 总则\n第二条 适用范围" {
		t.Errorf("short paragraphs not packed: %q", chunks[0].Content)
	}
	if n := utf8.RuneCountInString(chunks[1].Content); n != 20 {
		t.Errorf("expected full window of 20 runes, got %d", n)
	}
	if n := utf8.RuneCountInString(chunks[2].Content); n != 15 {
		t.Errorf("expected 15-rune tail including overlap, got %d", n)
	}
	for i, c := range chunks {
		if c.Ordinal != i || c.Metadata["chunk_index"] != i {
			t.Errorf("chunk %d has ordinal %d / index %v", i, c.Ordinal, c.Metadata["chunk_index"])
		}
		if c.Metadata["admin_level"] != "municipal" {
			t.Errorf("chunk %d lost document metadata", i)
		}
		if c.ID != document.ChunkID("policy-1", i) {
			t.Errorf("unexpected chunk id %q", c.ID)
		}
	}
}

func TestWindowChunkerEmptyContent(t *testing.T) {
	chunks, err := NewWindowChunker().Chunk(context.Background(), document.Document{Content: "  "})
	if err != nil {
		t.Fatalf("chunk error: %v", err)
	}
	if len(chunks) != 1 {
		t.Fatalf("expected a single placeholder chunk, got %d", len(chunks))
	}
	if chunks[0].DocumentID == "" {
		t.Errorf("expected generated document id")
	}
}
