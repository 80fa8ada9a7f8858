// Package token chunks policy text by sentence under a token budget, so each
// chunk stays within an embedding model's input limit.
package token

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/sweetpotato0/gov-allin/rag/chunking"
	"github.com/sweetpotato0/gov-allin/rag/document"
	"github.com/sweetpotato0/gov-allin/rag/tokenizer"
)

var _ chunking.Chunker = (*Chunker)(nil)

// Chunker packs whole sentences into chunks of at most maxTokens tokens.
// A single sentence over the budget is cut on token boundaries.
type Chunker struct {
	tok           tokenizer.Tokenizer
	maxTokens     int
	overlapTokens int
}

// Option customises the token chunker.
type Option func(*Chunker)

// WithMaxTokens sets the maximum allowed tokens per chunk (default 256).
func WithMaxTokens(tokens int) Option {
	return func(c *Chunker) {
		if tokens > 0 {
			c.maxTokens = tokens
		}
	}
}

// WithOverlapTokens sets how many tokens consecutive cuts of an oversized
// sentence share.
func WithOverlapTokens(tokens int) Option {
	return func(c *Chunker) {
		if tokens >= 0 {
			c.overlapTokens = tokens
		}
	}
}

// New creates a chunker counting with tok. A nil tok uses the simple
// tokenizer.
func New(tok tokenizer.Tokenizer, opts ...Option) *Chunker {
	if tok == nil {
		tok = tokenizer.NewSimpleTokenizer()
	}
	ch := &Chunker{
		tok:           tok,
		maxTokens:     256,
		overlapTokens: 32,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(ch)
		}
	}
	if ch.overlapTokens >= ch.maxTokens {
		ch.overlapTokens = ch.maxTokens / 4
	}
	return ch
}

// Chunk implements chunking.Chunker.
func (c *Chunker) Chunk(ctx context.Context, doc document.Document) ([]document.Chunk, error) {
	document.EnsureDocumentID(&doc)

	var (
		out     []document.Chunk
		current strings.Builder
		used    int
	)
	flush := func() {
		text := strings.TrimSpace(current.String())
		current.Reset()
		used = 0
		if text != "" {
			out = append(out, newChunk(doc, len(out), text))
		}
	}

	for _, sentence := range Sentences(doc.Content) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		n := c.tok.CountTokens(sentence)
		if n > c.maxTokens {
			flush()
			for _, piece := range c.cut(sentence) {
				out = append(out, newChunk(doc, len(out), piece))
			}
			continue
		}
		if used > 0 && used+n > c.maxTokens {
			flush()
		}
		if current.Len() > 0 && current.String()[current.Len()-1] < utf8.RuneSelf {
			current.WriteByte(' ')
		}
		current.WriteString(sentence)
		used += n
	}
	flush()

	if len(out) == 0 {
		out = append(out, newChunk(doc, 0, strings.TrimSpace(doc.Content)))
	}
	return out, nil
}

// cut splits an oversized sentence into overlapping token windows.
func (c *Chunker) cut(sentence string) []string {
	ids := c.tok.Encode(sentence)
	step := c.maxTokens - c.overlapTokens
	var pieces []string
	for start := 0; start < len(ids); start += step {
		end := min(start+c.maxTokens, len(ids))
		piece := strings.TrimSpace(c.tok.DecodeIds(ids[start:end]))
		// BPE windows can split a multi-byte rune.
		piece = strings.ToValidUTF8(piece, "")
		if piece != "" {
			pieces = append(pieces, piece)
		}
		if end == len(ids) {
			break
		}
	}
	return pieces
}

// Sentences splits text after Chinese and latin sentence terminators and
// newlines, keeping the terminators.
func Sentences(text string) []string {
	var (
		out   []string
		start int
	)
	for i, r := range text {
		switch r {
		case '。', '！', '？', '；', '\n', '!', '?', ';':
			end := i + utf8.RuneLen(r)
			if s := strings.TrimSpace(text[start:end]); s != "" {
				out = append(out, s)
			}
			start = end
		}
	}
	if s := strings.TrimSpace(text[start:]); s != "" {
		out = append(out, s)
	}
	return out
}

func newChunk(doc document.Document, ordinal int, content string) document.Chunk {
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
