package pg

import (
	"context"
	"fmt"
	"os"
	"testing"

	"github.com/sweetpotato0/gov-allin/governance"
)

func TestNewRejectsUnsafeTableName(t *testing.T) {
	_, err := New(context.Background(), Config{DSN: "postgres://localhost/x", Table: "evals; DROP TABLE x"})
	if err == nil {
		t.Fatal("expected table name to be rejected")
	}
}

func TestStoreIntegration(t *testing.T) {
	dsn := os.Getenv("GOVALLIN_TEST_PG_DSN")
	if dsn == "" {
		t.Skip("GOVALLIN_TEST_PG_DSN not set")
	}
	ctx := context.Background()
	s, err := New(ctx, Config{DSN: dsn, Table: "evaluation_history_test", Capacity: 3})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer s.Close()
	_ = s.Clear(ctx)
	defer s.Clear(ctx)

	for i := 1; i <= 5; i++ {
		if err := s.Append(ctx, governance.EvaluationResult{ID: fmt.Sprintf("e%d", i), OverallScore: float64(i), Level: governance.LevelPoor}); err != nil {
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
