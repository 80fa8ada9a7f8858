// Package assembler turns generated plan text and retrieved references into a
// structured SolutionPlan.
package assembler

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/sweetpotato0/gov-allin/governance"
	"github.com/sweetpotato0/gov-allin/llm"
	"github.com/sweetpotato0/gov-allin/pkg/logging"
	"github.com/sweetpotato0/gov-allin/prompt"
	"github.com/sweetpotato0/gov-allin/rag/tokenizer"
)

const defaultContextBudget = 3000

// Assembler builds solution plans.
type Assembler struct {
	generator  llm.TextGenerator
	prompts    *prompt.Manager
	tokenizer  tokenizer.Tokenizer
	budget     int
	narratives bool
	strategies []StepStrategy
	now        func() time.Time
	logger     *slog.Logger
}

// Option configures an Assembler.
type Option func(*Assembler)

// WithGenerator sets the text generator used by Generate.
func WithGenerator(g llm.TextGenerator) Option {
	return func(a *Assembler) {
		a.generator = g
	}
}

// WithPrompts replaces the prompt templates. The manager must hold the
// prompt.Solution, prompt.RiskAssessment and prompt.ResourceAssessment templates.
func WithPrompts(m *prompt.Manager) Option {
	return func(a *Assembler) {
		if m != nil {
			a.prompts = m
		}
	}
}

// WithTokenizer sets the tokenizer used to budget the reference context.
func WithTokenizer(t tokenizer.Tokenizer) Option {
	return func(a *Assembler) {
		if t != nil {
			a.tokenizer = t
		}
	}
}

// WithContextBudget caps the tokens spent on case and policy references.
func WithContextBudget(tokens int) Option {
	return func(a *Assembler) {
		if tokens > 0 {
			a.budget = tokens
		}
	}
}

// WithNarratives toggles the extra risk and resource generator calls.
func WithNarratives(enabled bool) Option {
	return func(a *Assembler) {
		a.narratives = enabled
	}
}

// WithStrategies replaces the step parse chain.
func WithStrategies(chain ...StepStrategy) Option {
	return func(a *Assembler) {
		if len(chain) > 0 {
			a.strategies = chain
		}
	}
}

// WithClock overrides the plan timestamp source.
func WithClock(now func() time.Time) Option {
	return func(a *Assembler) {
		if now != nil {
			a.now = now
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(a *Assembler) {
		if l != nil {
			a.logger = l
		}
	}
}

// New creates an Assembler.
func New(opts ...Option) *Assembler {
	a := &Assembler{
		prompts:    prompt.NewGovernanceManager(),
		tokenizer:  tokenizer.NewSimpleTokenizer(),
		budget:     defaultContextBudget,
		narratives: true,
		strategies: DefaultStrategies(),
		now:        time.Now,
		logger:     logging.WithComponent("assembler"),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(a)
		}
	}
	return a
}

// Assemble builds a plan from already generated text. It never fails: text
// that cannot be parsed yields the default steps.
func (a *Assembler) Assemble(ctx context.Context, problem governance.Problem, cases []governance.CaseReference, policies []governance.PolicyReference, text string) (plan governance.SolutionPlan) {
	defer func() {
		if r := recover(); r != nil {
			a.logger.Error("assemble panicked, using default steps", "panic", r)
			plan = a.build(problem, cases, policies, DefaultSteps(), "")
		}
	}()

	steps, strategy := parseWith(a.strategies, text)
	a.logger.DebugContext(ctx, "parsed plan steps", "strategy", strategy, "steps", len(steps))
	return a.build(problem, cases, policies, steps, text)
}

func (a *Assembler) build(problem governance.Problem, cases []governance.CaseReference, policies []governance.PolicyReference, steps []governance.PlanStep, text string) governance.SolutionPlan {
	prose := Prose(text)
	return governance.SolutionPlan{
		ID:                   uuid.NewString(),
		Problem:              problem.Clone(),
		CaseReferences:       append([]governance.CaseReference{}, cases...),
		PolicyReferences:     append([]governance.PolicyReference{}, policies...),
		Steps:                steps,
		RiskAssessment:       DeriveRisk(prose),
		ResourceRequirements: DeriveResources(steps),
		SuccessMetrics:       DeriveMetrics(prose),
		Timeline:             DeriveTimeline(problem, steps),
		LocalAdaptations:     DeriveAdaptations(problem, cases),
		GeneratedAt:          a.now(),
	}
}

// Generate drafts plan text with the generator and assembles it. A generator
// failure degrades to the default steps.
func (a *Assembler) Generate(ctx context.Context, problem governance.Problem, cases []governance.CaseReference, policies []governance.PolicyReference) governance.SolutionPlan {
	text, err := a.draft(ctx, problem, cases, policies)
	if err != nil {
		a.logger.WarnContext(ctx, "plan generation failed, assembling defaults", "error", err)
		text = ""
	}
	plan := a.Assemble(ctx, problem, cases, policies, text)
	if a.generator == nil || !a.narratives {
		return plan
	}

	steps, _ := json.Marshal(plan.Steps)
	if narrative, err := a.complete(ctx, prompt.RiskAssessment, prompt.RiskData{
		Problem:  problem.Description,
		Location: problem.Location,
		Steps:    string(steps),
	}); err != nil {
		a.logger.WarnContext(ctx, "risk narrative failed", "error", err)
		plan.RiskAssessment = FailedRisk()
	} else {
		plan.RiskAssessment = DeriveRisk(narrative)
	}

	if narrative, err := a.complete(ctx, prompt.ResourceAssessment, prompt.ResourceData{
		Steps:    string(steps),
		Location: problem.Location,
		Timeline: plan.Timeline.OverallDuration,
	}); err != nil {
		a.logger.WarnContext(ctx, "resource narrative failed", "error", err)
	} else {
		plan.ResourceRequirements.Content = strings.TrimSpace(narrative)
	}
	return plan
}

func (a *Assembler) draft(ctx context.Context, problem governance.Problem, cases []governance.CaseReference, policies []governance.PolicyReference) (string, error) {
	if a.generator == nil {
		return "", fmt.Errorf("no text generator configured")
	}
	half := a.budget / 2
	caseText, cutCases := tokenizer.FitLines(a.tokenizer, FormatCases(cases), half)
	policyText, cutPolicies := tokenizer.FitLines(a.tokenizer, FormatPolicies(policies), a.budget-half)
	if cutCases || cutPolicies {
		a.logger.DebugContext(ctx, "reference context trimmed", "budget", a.budget,
			"cases_cut", cutCases, "policies_cut", cutPolicies)
	}

	data := prompt.SolutionData{
		Location:     problem.Location,
		Problem:      problem.Description,
		Urgency:      problem.Urgency,
		Stakeholders: joinOr(problem.Stakeholders, "未指定"),
		Constraints:  joinOr(problem.Constraints, "无"),
		Cases:        caseText,
		Policies:     policyText,
	}
	if tmpl, ok := TemplateFor(problem.Category); ok {
		data.Guide = tmpl.Guide()
	}
	return a.complete(ctx, prompt.Solution, data)
}

func (a *Assembler) complete(ctx context.Context, name string, data any) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	p, err := a.prompts.Render(name, data)
	if err != nil {
		return "", fmt.Errorf("render %s prompt: %w", name, err)
	}
	out, err := a.generator.Generate(ctx, p)
	if err != nil {
		return "", fmt.Errorf("generate %s: %w", name, err)
	}
	if strings.TrimSpace(out) == "" {
		return "", fmt.Errorf("generate %s: %w", name, llm.ErrEmptyResponse)
	}
	a.logger.DebugContext(ctx, "generated text", "prompt", name, "text", logging.Trim(out, 200))
	return out, nil
}

func joinOr(items []string, fallback string) string {
	if len(items) == 0 {
		return fallback
	}
	return strings.Join(items, "、")
}
