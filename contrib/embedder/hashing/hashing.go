// Package hashing provides an offline embedder based on feature hashing.
// Han text contributes character unigrams and bigrams, other text contributes
// lowercased words.
package hashing

import (
	"context"
	"hash/fnv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/sweetpotato0/gov-allin/rag/tokenizer"
	"github.com/sweetpotato0/gov-allin/vector"
)

const DefaultDimension = 256

var _ vector.Embedder = (*Embedder)(nil)

// Embedder maps text to a fixed-size unit vector.
type Embedder struct {
	dimension int
}

// New creates an embedder. Non-positive dimensions use DefaultDimension.
func New(dimension int) *Embedder {
	if dimension <= 0 {
		dimension = DefaultDimension
	}
	return &Embedder{dimension: dimension}
}

func (e *Embedder) Dimension() int { return e.dimension }

func (e *Embedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	vec := make([]float32, e.dimension)
	for _, f := range features(text) {
		h := fnv.New32a()
		h.Write([]byte(f))
		vec[h.Sum32()%uint32(e.dimension)]++
	}
	vector.Normalize(vec)
	return vec, nil
}

func (e *Embedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		v, err := e.Embed(ctx, t)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func features(text string) []string {
	var out []string
	var prev string
	for _, tok := range tokenizer.Split(strings.ToLower(text)) {
		r, _ := utf8.DecodeRuneInString(tok)
		if unicode.Is(unicode.Han, r) {
			out = append(out, tok)
			if prev != "" {
				out = append(out, prev+tok)
			}
			prev = tok
			continue
		}
		prev = ""
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			out = append(out, tok)
		}
	}
	return out
}
