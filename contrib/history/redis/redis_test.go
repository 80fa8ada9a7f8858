package redis

import (
	"context"
	"fmt"
	"os"
	"testing"

	"github.com/sweetpotato0/gov-allin/governance"
)

func TestNewRejectsInvalidConfig(t *testing.T) {
	_, err := New(context.Background(), &Config{Addr: "", Key: "k", Capacity: 10})
	if err == nil {
		t.Fatal("expected validation error for empty address")
	}
}

func TestStoreIntegration(t *testing.T) {
	addr := os.Getenv("GOVALLIN_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("GOVALLIN_TEST_REDIS_ADDR not set")
	}
	ctx := context.Background()
	s, err := New(ctx, &Config{Addr: addr, Key: "gov-allin:test:evaluations", Capacity: 3})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer s.Close()
	defer s.Clear(ctx)
	_ = s.Clear(ctx)

	for i := 1; i <= 5; i++ {
		if err := s.Append(ctx, governance.EvaluationResult{ID: fmt.Sprintf("e%d", i), OverallScore: float64(i)}); err != nil {
			t.Fatalf("Append() error = %v", err)
		}
	}
	if n, _ := s.Len(ctx); n != 3 {
		t.Errorf("Len() = %d, want 3", n)
	}
	got, err := s.Recent(ctx, 2)
	if err != nil {
		t.Fatalf("Recent() error = %v", err)
	}
	if len(got) != 2 || got[0].ID != "e5" || got[1].ID != "e4" {
		t.Errorf("Recent() = %+v", got)
	}
}
