package tokenizer

import (
	"strings"
	"sync"
	"unicode"
)

// Tokenizer counts and encodes text for prompt budgeting.
type Tokenizer interface {
	Encode(text string) []int
	CountTokens(text string) int
	DecodeIds(ids []int) string
}

var _ Tokenizer = (*SimpleTokenizer)(nil)

// SimpleTokenizer is a dependency-free approximation: every Han character,
// latin word, number and punctuation mark is one token.
type SimpleTokenizer struct {
	mu       sync.Mutex
	vocab    map[string]int
	invVocab map[int]string
	nextID   int
}

// NewSimpleTokenizer creates a tokenizer with an empty vocabulary.
func NewSimpleTokenizer() *SimpleTokenizer {
	return &SimpleTokenizer{
		vocab:    make(map[string]int),
		invVocab: make(map[int]string),
		nextID:   1,
	}
}

func (t *SimpleTokenizer) addToken(tok string) int {
	if id, ok := t.vocab[tok]; ok {
		return id
	}
	id := t.nextID
	t.vocab[tok] = id
	t.invVocab[id] = tok
	t.nextID++
	return id
}

// Split breaks s into the units SimpleTokenizer counts.
func Split(s string) []string {
	return splitTokens(s)
}

func splitTokens(s string) []string {
	var toks []string
	var buf strings.Builder

	flush := func() {
		if buf.Len() > 0 {
			toks = append(toks, buf.String())
			buf.Reset()
		}
	}

	for _, r := range s {
		switch {
		case unicode.IsSpace(r):
			flush()
		case unicode.Is(unicode.Han, r):
			flush()
			toks = append(toks, string(r))
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			buf.WriteRune(r)
		default:
			flush()
			toks = append(toks, string(r))
		}
	}
	flush()
	return toks
}

// Encode maps text to token IDs, growing the vocabulary as needed.
func (t *SimpleTokenizer) Encode(text string) []int {
	toks := splitTokens(text)
	t.mu.Lock()
	defer t.mu.Unlock()
	ids := make([]int, 0, len(toks))
	for _, tok := range toks {
		ids = append(ids, t.addToken(tok))
	}
	return ids
}

// CountTokens returns the number of tokens in text.
func (t *SimpleTokenizer) CountTokens(text string) int {
	return len(splitTokens(text))
}

// DecodeIds concatenates the tokens for ids. Whitespace is not preserved.
func (t *SimpleTokenizer) DecodeIds(ids []int) string {
	t.mu.Lock()
	defer t.mu.Unlock()
	var sb strings.Builder
	for _, id := range ids {
		if tok, ok := t.invVocab[id]; ok {
			sb.WriteString(tok)
		}
	}
	return sb.String()
}

// FitLines keeps whole lines of text, in order, while their total token count
// stays within budget. It reports whether anything was dropped.
func FitLines(t Tokenizer, text string, budget int) (string, bool) {
	if t == nil || budget <= 0 {
		return text, false
	}
	lines := strings.Split(text, "\n")
	used := 0
	for i, line := range lines {
		n := t.CountTokens(line)
		if used+n > budget {
			return strings.Join(lines[:i], "\n"), true
		}
		used += n
	}
	return text, false
}
