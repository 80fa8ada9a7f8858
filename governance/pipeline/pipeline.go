// Package pipeline runs a governance problem through classification,
// retrieval, plan assembly, evaluation and compliance checking.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/sweetpotato0/gov-allin/config"
	apperrors "github.com/sweetpotato0/gov-allin/errors"
	"github.com/sweetpotato0/gov-allin/governance"
	"github.com/sweetpotato0/gov-allin/governance/assembler"
	"github.com/sweetpotato0/gov-allin/governance/classifier"
	"github.com/sweetpotato0/gov-allin/governance/compliance"
	"github.com/sweetpotato0/gov-allin/governance/evaluation"
	"github.com/sweetpotato0/gov-allin/graph"
	"github.com/sweetpotato0/gov-allin/pkg/logging"
	"github.com/sweetpotato0/gov-allin/pkg/telemetry"
)

const (
	defaultCaseTopK   = 5
	defaultPolicyTopK = 5
)

// Classifier assigns a category to a problem description.
type Classifier interface {
	Classify(description string) governance.Category
}

// CaseFinder retrieves precedent cases.
type CaseFinder interface {
	FindSimilarCases(ctx context.Context, description string, category *governance.Category, k int) []governance.CaseReference
}

// PolicyFinder retrieves applicable policies.
type PolicyFinder interface {
	FindRelevantPolicies(ctx context.Context, description, location string, levels []governance.AdminLevel, k int) []governance.PolicyReference
}

// PlanGenerator drafts a plan from a problem and its references.
type PlanGenerator interface {
	Generate(ctx context.Context, problem governance.Problem, cases []governance.CaseReference, policies []governance.PolicyReference) governance.SolutionPlan
}

// Evaluator scores a plan.
type Evaluator interface {
	Evaluate(ctx context.Context, plan governance.SolutionPlan) governance.EvaluationResult
}

// ComplianceChecker checks plan steps against policies.
type ComplianceChecker interface {
	Check(ctx context.Context, steps []governance.PlanStep, policies []governance.PolicyReference) governance.ComplianceResult
}

// Result is the outcome of one pipeline run. A successful run carries Plan,
// Evaluation and Compliance; a failed one carries Error and the Problem as
// submitted.
type Result struct {
	RequestID   string                       `json:"request_id"`
	BatchIndex  *int                         `json:"batch_index,omitempty"`
	Stages      []string                     `json:"stages"`
	Problem     governance.Problem           `json:"problem"`
	Plan        *governance.SolutionPlan     `json:"plan,omitempty"`
	Evaluation  *governance.EvaluationResult `json:"evaluation,omitempty"`
	Compliance  *governance.ComplianceResult `json:"compliance,omitempty"`
	FailedStage string                       `json:"failed_stage,omitempty"`
	Error       string                       `json:"error,omitempty"`
	Err         error                        `json:"-"`
}

// OK reports whether the run produced a plan.
func (r Result) OK() bool {
	return r.Err == nil && r.Plan != nil
}

// Score returns the overall evaluation score, or -1 for a failed run.
func (r Result) Score() float64 {
	if !r.OK() || r.Evaluation == nil {
		return -1
	}
	return r.Evaluation.OverallScore
}

// Pipeline is the exposed governance advisor.
type Pipeline struct {
	classifier     Classifier
	cases          CaseFinder
	policies       PolicyFinder
	generator      PlanGenerator
	evaluator      Evaluator
	compliance     ComplianceChecker
	caseTopK       int
	policyTopK     int
	hierarchy      bool
	skipCompliance bool
	concurrency    int
	graph          *graph.Graph
	tracer         trace.Tracer
	logger         *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithClassifier replaces the keyword classifier.
func WithClassifier(c Classifier) Option {
	return func(p *Pipeline) {
		if c != nil {
			p.classifier = c
		}
	}
}

// WithPlanGenerator replaces the plan assembler.
func WithPlanGenerator(g PlanGenerator) Option {
	return func(p *Pipeline) {
		if g != nil {
			p.generator = g
		}
	}
}

// WithEvaluator replaces the evaluation engine.
func WithEvaluator(e Evaluator) Option {
	return func(p *Pipeline) {
		if e != nil {
			p.evaluator = e
		}
	}
}

// WithComplianceChecker replaces the compliance checker.
func WithComplianceChecker(c ComplianceChecker) Option {
	return func(p *Pipeline) {
		if c != nil {
			p.compliance = c
		}
	}
}

// WithTopK sets how many cases and policies are retrieved per problem.
func WithTopK(cases, policies int) Option {
	return func(p *Pipeline) {
		if cases > 0 {
			p.caseTopK = cases
		}
		if policies > 0 {
			p.policyTopK = policies
		}
	}
}

// WithPolicyHierarchy restricts policy retrieval to the administrative levels
// that govern the problem's location.
func WithPolicyHierarchy(enabled bool) Option {
	return func(p *Pipeline) {
		p.hierarchy = enabled
	}
}

// WithSkipCompliance routes runs past the compliance stage.
func WithSkipCompliance(skip bool) Option {
	return func(p *Pipeline) {
		p.skipCompliance = skip
	}
}

// WithBatchConcurrency sets the worker count used by SolveBatch and Compare.
func WithBatchConcurrency(n int) Option {
	return func(p *Pipeline) {
		if n > 0 {
			p.concurrency = n
		}
	}
}

// WithTracer sets the tracer used for run and stage spans.
func WithTracer(t trace.Tracer) Option {
	return func(p *Pipeline) {
		if t != nil {
			p.tracer = t
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(p *Pipeline) {
		if l != nil {
			p.logger = l
		}
	}
}

// ConfigOptions maps the pipeline and retrieval sections of cfg to options.
func ConfigOptions(cfg *config.Config) []Option {
	if cfg == nil {
		return nil
	}
	return []Option{
		WithTopK(cfg.Retrieval.CaseTopK, cfg.Retrieval.PolicyTopK),
		WithSkipCompliance(cfg.Pipeline.SkipCompliance),
		WithBatchConcurrency(cfg.Pipeline.BatchConcurrency),
	}
}

// New creates a Pipeline over the given case and policy retrievers.
func New(cases CaseFinder, policies PolicyFinder, opts ...Option) (*Pipeline, error) {
	if cases == nil || policies == nil {
		return nil, fmt.Errorf("%w: case and policy finders are required", apperrors.ErrInvalidInput)
	}
	p := &Pipeline{
		classifier:  classifier.New(),
		cases:       cases,
		policies:    policies,
		generator:   assembler.New(),
		evaluator:   evaluation.New(),
		compliance:  compliance.New(),
		caseTopK:    defaultCaseTopK,
		policyTopK:  defaultPolicyTopK,
		concurrency: 1,
		tracer:      telemetry.Tracer("gov-allin/pipeline"),
		logger:      logging.WithComponent("pipeline"),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(p)
		}
	}

	g, err := p.buildGraph()
	if err != nil {
		return nil, fmt.Errorf("build pipeline graph: %w", err)
	}
	p.graph = g
	return p, nil
}

// Solve runs one problem through every stage. It never returns a Go error:
// failures are reported on the Result.
func (p *Pipeline) Solve(ctx context.Context, problem governance.Problem) Result {
	return p.solve(ctx, problem, nil)
}

func (p *Pipeline) solve(ctx context.Context, problem governance.Problem, batchIndex *int) (res Result) {
	res = Result{
		RequestID:  uuid.NewString(),
		BatchIndex: batchIndex,
		Problem:    problem.Clone(),
	}
	attrs := []attribute.KeyValue{attribute.String("request.id", res.RequestID)}
	if batchIndex != nil {
		attrs = append(attrs, attribute.Int("batch.index", *batchIndex))
	}
	ctx, span := telemetry.StartStage(ctx, p.tracer, "solve", attrs...)
	defer func() {
		if r := recover(); r != nil {
			res.fail("", fmt.Errorf("%w: panic: %v", apperrors.ErrStageFailed, r))
		}
		telemetry.End(span, res.Err)
	}()

	st := &runState{problem: problem.Clone()}
	final, path, err := p.graph.Execute(ctx, graph.State{stateKey: st})
	res.Stages = path
	if err != nil {
		stage, _ := final[graph.FailedStageKey].(string)
		res.fail(stage, errors.Join(apperrors.ErrStageFailed, err))
		p.logger.ErrorContext(ctx, "pipeline run failed",
			"request_id", res.RequestID, "stage", stage, "error", err)
		return res
	}

	res.Problem = st.problem
	res.Plan = &st.plan
	res.Evaluation = &st.evaluation
	res.Compliance = st.compliance
	p.logger.InfoContext(ctx, "pipeline run finished",
		"request_id", res.RequestID,
		"category", st.problem.Category,
		"cases", len(st.cases),
		"policies", len(st.policies),
		"score", st.evaluation.OverallScore,
		"level", st.evaluation.Level)
	return res
}

func (r *Result) fail(stage string, err error) {
	r.Plan, r.Evaluation, r.Compliance = nil, nil, nil
	r.FailedStage = stage
	r.Err = err
	r.Error = err.Error()
}
