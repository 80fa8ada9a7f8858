// Package history keeps a bounded log of plan evaluations.
package history

import (
	"context"
	"sync"

	"github.com/sweetpotato0/gov-allin/governance"
)

// DefaultCapacity bounds the in-memory history.
const DefaultCapacity = 100

// Store is a bounded evaluation log. Once full, appending drops the oldest
// record. Recent returns newest first.
type Store interface {
	Append(ctx context.Context, rec governance.EvaluationResult) error
	Recent(ctx context.Context, n int) ([]governance.EvaluationResult, error)
	Len(ctx context.Context) (int, error)
}

var _ Store = (*Ring)(nil)

// Ring is an in-memory Store backed by a circular buffer.
type Ring struct {
	mu    sync.Mutex
	buf   []governance.EvaluationResult
	start int
	size  int
}

// NewRing creates a ring holding at most capacity records.
func NewRing(capacity int) *Ring {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Ring{buf: make([]governance.EvaluationResult, capacity)}
}

func (r *Ring) Append(_ context.Context, rec governance.EvaluationResult) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	capacity := len(r.buf)
	if r.size < capacity {
		r.buf[(r.start+r.size)%capacity] = rec
		r.size++
		return nil
	}
	r.buf[r.start] = rec
	r.start = (r.start + 1) % capacity
	return nil
}

// Recent returns up to n records, newest first. n <= 0 returns all.
func (r *Ring) Recent(_ context.Context, n int) ([]governance.EvaluationResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if n <= 0 || n > r.size {
		n = r.size
	}
	out := make([]governance.EvaluationResult, 0, n)
	for i := 0; i < n; i++ {
		idx := (r.start + r.size - 1 - i) % len(r.buf)
		out = append(out, r.buf[idx])
	}
	return out, nil
}

func (r *Ring) Len(context.Context) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.size, nil
}

func (r *Ring) Cap() int { return len(r.buf) }
