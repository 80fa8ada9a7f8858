// Package llm defines the text generation contract used to draft plans.
package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// TextGenerator turns a prompt into text.
type TextGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Func adapts a function to TextGenerator.
type Func func(ctx context.Context, prompt string) (string, error)

func (f Func) Generate(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}

// ErrEmptyResponse is returned when a generator answers with blank text.
var ErrEmptyResponse = errors.New("llm: empty response")

// Fallback tries generators in order until one returns non-empty text.
type Fallback struct {
	generators []TextGenerator
}

// NewFallback creates a Fallback. Nil generators are skipped.
func NewFallback(primary TextGenerator, others ...TextGenerator) *Fallback {
	f := &Fallback{}
	for _, g := range append([]TextGenerator{primary}, others...) {
		if g != nil {
			f.generators = append(f.generators, g)
		}
	}
	return f
}

func (f *Fallback) Generate(ctx context.Context, prompt string) (string, error) {
	if len(f.generators) == 0 {
		return "", fmt.Errorf("llm: no generators configured")
	}
	var errs []error
	for i, g := range f.generators {
		out, err := g.Generate(ctx, prompt)
		if err == nil && strings.TrimSpace(out) == "" {
			err = ErrEmptyResponse
		}
		if err == nil {
			return out, nil
		}
		errs = append(errs, fmt.Errorf("generator %d: %w", i, err))
		if ctx.Err() != nil {
			break
		}
	}
	return "", errors.Join(errs...)
}

// Static always returns the same text. Useful offline and in tests.
type Static string

func (s Static) Generate(ctx context.Context, _ string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return string(s), nil
}
