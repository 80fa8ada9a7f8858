package tiktoken

import (
	"fmt"

	"github.com/pkoukk/tiktoken-go"

	"github.com/sweetpotato0/gov-allin/rag/tokenizer"
)

var _ tokenizer.Tokenizer = (*Tokenizer)(nil)

// Tokenizer counts tokens with a BPE encoding from tiktoken.
type Tokenizer struct {
	enc *tiktoken.Tiktoken
}

// New resolves name as a model first and as an encoding name second,
// e.g. "gpt-4o" or "cl100k_base".
func New(name string) (*Tokenizer, error) {
	enc, err := tiktoken.EncodingForModel(name)
	if err != nil {
		enc, err = tiktoken.GetEncoding(name)
		if err != nil {
			return nil, fmt.Errorf("tiktoken: unknown model or encoding %q: %w", name, err)
		}
	}
	return &Tokenizer{enc: enc}, nil
}

func (t *Tokenizer) Encode(text string) []int {
	return t.enc.Encode(text, nil, nil)
}

func (t *Tokenizer) CountTokens(text string) int {
	return len(t.Encode(text))
}

func (t *Tokenizer) DecodeIds(ids []int) string {
	return t.enc.Decode(ids)
}
