package runner

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestNewDefaultsToSequential(t *testing.T) {
	for _, n := range []int{-1, 0, 1} {
		if got := New[int](n, nil).Concurrency(); got != 1 {
			t.Errorf("New(%d).Concurrency() = %d, want 1", n, got)
		}
	}
}

func TestRunKeepsOrder(t *testing.T) {
	for _, workers := range []int{1, 4} {
		r := New[int](workers, nil)
		got := r.Run(context.Background(), 6, func(_ context.Context, i int) int {
			time.Sleep(time.Duration(6-i) * time.Millisecond)
			return i * i
		})
		if diff := cmp.Diff([]int{0, 1, 4, 9, 16, 25}, got); diff != "" {
			t.Errorf("workers=%d results mismatch (-want +got):\n%s", workers, diff)
		}
	}
}

func TestRunIsolatesPanics(t *testing.T) {
	for _, workers := range []int{1, 3} {
		r := New[string](workers, func(i int, err error) string {
			return "failed: " + err.Error()
		})
		got := r.Run(context.Background(), 3, func(_ context.Context, i int) string {
			if i == 1 {
				panic("boom")
			}
			return "ok"
		})
		if got[0] != "ok" || got[2] != "ok" {
			t.Errorf("workers=%d: healthy tasks affected: %v", workers, got)
		}
		if !strings.Contains(got[1], "panic in task 1: boom") {
			t.Errorf("workers=%d: unexpected panic result %q", workers, got[1])
		}
	}
}

func TestRunPanicWithoutHandler(t *testing.T) {
	got := New[*int](1, nil).Run(context.Background(), 1, func(context.Context, int) *int {
		panic("boom")
	})
	if got[0] != nil {
		t.Errorf("expected zero value, got %v", got[0])
	}
}

func TestRunRespectsLimit(t *testing.T) {
	const limit = 2
	var inFlight, peak int32
	var mu sync.Mutex

	New[struct{}](limit, nil).Run(context.Background(), 8, func(context.Context, int) struct{} {
		n := atomic.AddInt32(&inFlight, 1)
		mu.Lock()
		if n > peak {
			peak = n
		}
		mu.Unlock()
		time.Sleep(5 * time.Millisecond)
		atomic.AddInt32(&inFlight, -1)
		return struct{}{}
	})

	if peak > limit {
		t.Errorf("peak concurrency %d exceeds limit %d", peak, limit)
	}
}

func TestRunEmpty(t *testing.T) {
	if got := New[int](4, nil).Run(context.Background(), 0, nil); len(got) != 0 {
		t.Errorf("expected no results, got %v", got)
	}
}
