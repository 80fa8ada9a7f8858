package chunking

import (
	"context"
	"strings"

	"github.com/sweetpotato0/gov-allin/rag/document"
)

// Chunker splits documents into chunks that can be embedded and indexed.
type Chunker interface {
	Chunk(ctx context.Context, doc document.Document) ([]document.Chunk, error)
}

// Options configures the window chunker.
type Options struct {
	ChunkSize int
	Overlap   int
	Separator string
}

// Option customizes the window chunker.
type Option func(*Options)

// WithChunkSize overrides the default chunk size (runes).
func WithChunkSize(size int) Option {
	return func(o *Options) {
		if size > 0 {
			o.ChunkSize = size
		}
	}
}

// WithOverlap configures overlap (runes) between consecutive windows of one paragraph.
func WithOverlap(overlap int) Option {
	return func(o *Options) {
		if overlap >= 0 {
			o.Overlap = overlap
		}
	}
}

// WithSeparator sets the paragraph separator applied before windowing.
func WithSeparator(sep string) Option {
	return func(o *Options) {
		if sep != "" {
			o.Separator = sep
		}
	}
}

// WindowChunker packs paragraphs into rune-bounded windows. Paragraphs longer than
// the window are cut with overlap. Chunks inherit the document metadata plus
// chunk_index.
type WindowChunker struct {
	size    int
	overlap int
	sep     string
}

// NewWindowChunker constructs a chunker sized for policy documents.
func NewWindowChunker(opts ...Option) *WindowChunker {
	cfg := &Options{
		ChunkSize: 1000,
		Overlap:   200,
		Separator: "\n",
	}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.Overlap >= cfg.ChunkSize {
		cfg.Overlap = cfg.ChunkSize / 5
	}
	return &WindowChunker{size: cfg.ChunkSize, overlap: cfg.Overlap, sep: cfg.Separator}
}

// Chunk splits the document into bounded pieces.
func (c *WindowChunker) Chunk(ctx context.Context, doc document.Document) ([]document.Chunk, error) {
	document.EnsureDocumentID(&doc)

	var (
		chunks  []document.Chunk
		current []rune
	)
	flush := func() {
		text := strings.TrimSpace(string(current))
		current = current[:0]
		if text == "" {
			return
		}
		chunks = append(chunks, c.newChunk(doc, len(chunks), text))
	}

	for _, part := range strings.Split(doc.Content, c.sep) {
		runes := []rune(strings.TrimSpace(part))
		if len(runes) == 0 {
			continue
		}
		if len(current) > 0 && len(current)+len(runes)+1 > c.size {
			flush()
		}
		for len(runes) > c.size {
			flush()
			current = append(current, runes[:c.size]...)
			flush()
			runes = runes[c.size-c.overlap:]
		}
		if len(current) > 0 {
			current = append(current, []rune(c.sep)...)
		}
		current = append(current, runes...)
	}
	flush()

	if len(chunks) == 0 {
		chunks = append(chunks, c.newChunk(doc, 0, strings.TrimSpace(doc.Content)))
	}
	return chunks, nil
}

func (c *WindowChunker) newChunk(doc document.Document, ordinal int, content string) document.Chunk {
	meta := make(map[string]any, len(doc.Metadata)+1)
	for k, v := range doc.Metadata {
		meta[k] = v
	}
	meta["chunk_index"] = ordinal
	return document.Chunk{
		ID:         document.ChunkID(doc.ID, ordinal),
		DocumentID: doc.ID,
		Content:    content,
		Ordinal:    ordinal,
		Metadata:   meta,
	}
}
