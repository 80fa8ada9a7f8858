// Package evaluation scores solution plans along six weighted criteria and
// keeps a bounded history of the results.
package evaluation

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/sweetpotato0/gov-allin/errors"
	"github.com/sweetpotato0/gov-allin/governance"
	"github.com/sweetpotato0/gov-allin/history"
	"github.com/sweetpotato0/gov-allin/pkg/logging"
)

var weights = []struct {
	dim    governance.Dimension
	weight float64
}{
	{governance.DimensionFeasibility, 0.25},
	{governance.DimensionEffectiveness, 0.20},
	{governance.DimensionCompliance, 0.20},
	{governance.DimensionSustainability, 0.15},
	{governance.DimensionCostEfficiency, 0.10},
	{governance.DimensionStakeholderAcceptance, 0.10},
}

// Weights returns the weight of each dimension. They sum to 1.
func Weights() map[governance.Dimension]float64 {
	out := make(map[governance.Dimension]float64, len(weights))
	for _, w := range weights {
		out[w.dim] = w.weight
	}
	return out
}

// Overall returns the weighted sum of the dimension scores rounded to two
// decimals.
func Overall(scores governance.DimensionScores) float64 {
	total := 0.0
	for _, w := range weights {
		total += clamp(scores.Get(w.dim)) * w.weight
	}
	return math.Round(total*100) / 100
}

// Engine evaluates plans and records every result in a history store.
type Engine struct {
	history history.Store
	now     func() time.Time
	logger  *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithHistory sets the store results are appended to.
func WithHistory(store history.Store) Option {
	return func(e *Engine) {
		if store != nil {
			e.history = store
		}
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// New creates an Engine. Without WithHistory results go to an in-memory ring
// of history.DefaultCapacity records.
func New(opts ...Option) *Engine {
	e := &Engine{
		now:    time.Now,
		logger: logging.WithComponent("evaluation"),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}
	if e.history == nil {
		e.history = history.NewRing(history.DefaultCapacity)
	}
	return e
}

// History returns the store the engine records into.
func (e *Engine) History() history.Store {
	return e.history
}

// Evaluate scores a plan and records the result. A failure to record is
// logged and does not affect the returned result.
func (e *Engine) Evaluate(ctx context.Context, plan governance.SolutionPlan) governance.EvaluationResult {
	result := e.evaluate(plan)
	if err := e.history.Append(ctx, result); err != nil {
		e.logger.Warn("failed to record evaluation", "evaluation_id", result.ID, "error", err)
	}
	e.logger.Info("plan evaluated",
		"plan_id", plan.ID,
		"overall_score", result.OverallScore,
		"level", result.Level,
	)
	return result
}

func (e *Engine) evaluate(plan governance.SolutionPlan) (result governance.EvaluationResult) {
	result = governance.EvaluationResult{
		ID:          uuid.NewString(),
		PlanID:      plan.ID,
		EvaluatedAt: e.now(),
	}
	defer func() {
		if rec := recover(); rec != nil {
			e.logger.Error("evaluation failed", "plan_id", plan.ID, "panic", rec)
			result.OverallScore = 0
			result.Level = governance.LevelUnacceptable
			result.SuccessProbability = SuccessProbability(0)
			result.Weaknesses = []string{fmt.Sprintf("评估过程出错: %v", rec)}
		}
	}()

	scores := Score(plan)
	overall := Overall(scores)

	result.OverallScore = overall
	result.Level = LevelFor(overall)
	result.DimensionScores = scores
	result.Strengths = Strengths(plan)
	result.Weaknesses = Weaknesses(plan)
	result.ImprovementSuggestions = Suggestions(plan, scores)
	result.RiskAssessment = ImplementationRisks(plan.Problem)
	result.SuccessProbability = SuccessProbability(overall)
	return result
}

// Statistics summarizes the recorded evaluations.
type Statistics struct {
	Total             int                      `json:"total_evaluations"`
	AverageScore      float64                  `json:"average_score"`
	LevelDistribution map[governance.Level]int `json:"level_distribution,omitempty"`
	Latest            time.Time                `json:"latest_evaluation,omitempty"`
}

// Statistics reads the history and reports count, mean score, level counts
// and the time of the newest evaluation.
func (e *Engine) Statistics(ctx context.Context) (Statistics, error) {
	records, err := e.history.Recent(ctx, 0)
	if err != nil {
		return Statistics{}, fmt.Errorf("read evaluation history: %w", err)
	}
	stats := Statistics{Total: len(records)}
	if len(records) == 0 {
		return stats, nil
	}

	stats.LevelDistribution = map[governance.Level]int{}
	total := 0.0
	for _, r := range records {
		total += r.OverallScore
		stats.LevelDistribution[r.Level]++
	}
	stats.AverageScore = math.Round(total/float64(len(records))*100) / 100
	stats.Latest = records[0].EvaluatedAt
	return stats, nil
}

// Ranked is one evaluation in a comparison, tagged with the index of the plan
// it belongs to.
type Ranked struct {
	Index      int                         `json:"solution_index"`
	Evaluation governance.EvaluationResult `json:"evaluation"`
}

// Comparison orders evaluations from best to worst.
type Comparison struct {
	Evaluations []Ranked `json:"all_evaluations"`
	BestIndex   int      `json:"best_index"`
	WorstIndex  int      `json:"worst_index"`
	BestScore   float64  `json:"best_score"`
	WorstScore  float64  `json:"worst_score"`
	ScoreRange  float64  `json:"score_range"`
}

// Compare evaluates every plan and ranks them by overall score, ties kept in
// input order. At least two plans are required.
func (e *Engine) Compare(ctx context.Context, plans []governance.SolutionPlan) (Comparison, error) {
	if len(plans) < 2 {
		return Comparison{}, fmt.Errorf("compare %d plan(s): %w", len(plans), apperrors.ErrInsufficientPlans)
	}

	ranked := make([]Ranked, 0, len(plans))
	for i, plan := range plans {
		ranked = append(ranked, Ranked{Index: i, Evaluation: e.Evaluate(ctx, plan)})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Evaluation.OverallScore > ranked[j].Evaluation.OverallScore
	})

	best, worst := ranked[0], ranked[len(ranked)-1]
	return Comparison{
		Evaluations: ranked,
		BestIndex:   best.Index,
		WorstIndex:  worst.Index,
		BestScore:   best.Evaluation.OverallScore,
		WorstScore:  worst.Evaluation.OverallScore,
		ScoreRange:  math.Round((best.Evaluation.OverallScore-worst.Evaluation.OverallScore)*100) / 100,
	}, nil
}
