package pipeline

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	apperrors "github.com/sweetpotato0/gov-allin/errors"
	"github.com/sweetpotato0/gov-allin/governance"
	"github.com/sweetpotato0/gov-allin/runner"
)

// SolveBatch solves every problem and returns one result per problem, in
// input order, each tagged with its batch index. A failing problem never
// affects the others.
func (p *Pipeline) SolveBatch(ctx context.Context, problems []governance.Problem) []Result {
	r := runner.New[Result](p.concurrency, func(i int, err error) Result {
		return failedResult(problems[i], i, err)
	})
	results := r.Run(ctx, len(problems), func(ctx context.Context, i int) Result {
		idx := i
		return p.solve(ctx, problems[i], &idx)
	})

	failed := 0
	for _, res := range results {
		if !res.OK() {
			failed++
		}
	}
	p.logger.InfoContext(ctx, "batch finished", "problems", len(problems), "failed", failed, "workers", r.Concurrency())
	return results
}

func failedResult(problem governance.Problem, index int, err error) Result {
	idx := index
	res := Result{
		RequestID:  uuid.NewString(),
		BatchIndex: &idx,
		Problem:    problem.Clone(),
	}
	res.fail("", fmt.Errorf("%w: %v", apperrors.ErrStageFailed, err))
	return res
}

// Comparison holds the baseline run and one run per alternative approach.
type Comparison struct {
	Alternatives []string `json:"alternatives"`
	Solutions    []Result `json:"solutions"`
	// BestIndex points into Solutions; -1 when no run succeeded.
	BestIndex int `json:"best_index"`
}

// Best returns the best solution, if any run succeeded.
func (c Comparison) Best() (Result, bool) {
	if c.BestIndex < 0 || c.BestIndex >= len(c.Solutions) {
		return Result{}, false
	}
	return c.Solutions[c.BestIndex], true
}

// AlternativeDescription appends an approach to a problem description.
func AlternativeDescription(description, alternative string) string {
	return description + " (采用" + alternative + "方式)"
}

// Compare solves the problem as given and once per alternative approach, then
// picks the run with the highest overall score. Solutions[0] is the baseline.
func (p *Pipeline) Compare(ctx context.Context, problem governance.Problem, alternatives []string) Comparison {
	variants := make([]governance.Problem, 0, len(alternatives)+1)
	labels := make([]string, 0, len(alternatives)+1)
	variants = append(variants, problem)
	labels = append(labels, "")
	for _, alt := range alternatives {
		alt = strings.TrimSpace(alt)
		if alt == "" {
			continue
		}
		variants = append(variants, problem.WithDescription(AlternativeDescription(problem.Description, alt)))
		labels = append(labels, alt)
	}

	r := runner.New[Result](p.concurrency, func(i int, err error) Result {
		res := failedResult(variants[i], i, err)
		res.BatchIndex = nil
		return res
	})
	solutions := r.Run(ctx, len(variants), func(ctx context.Context, i int) Result {
		return p.Solve(ctx, variants[i])
	})

	out := Comparison{Alternatives: labels, Solutions: solutions, BestIndex: -1}
	best := -1.0
	for i, s := range solutions {
		if score := s.Score(); s.OK() && score > best {
			best = score
			out.BestIndex = i
		}
	}
	p.logger.InfoContext(ctx, "comparison finished", "variants", len(variants), "best_index", out.BestIndex, "best_score", best)
	return out
}
