package pipeline

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"

	"github.com/sweetpotato0/gov-allin/governance"
	"github.com/sweetpotato0/gov-allin/governance/policyranker"
	"github.com/sweetpotato0/gov-allin/graph"
	"github.com/sweetpotato0/gov-allin/pkg/telemetry"
)

// Stage names, in execution order.
const (
	StageClassify         = "classify"
	StageRetrieveCases    = "retrieve_cases"
	StageRetrievePolicies = "retrieve_policies"
	StageAssemble         = "assemble"
	StageEvaluate         = "evaluate"
	StageComplianceGate   = "compliance_gate"
	StageCheckCompliance  = "check_compliance"
	StageDone             = "done"
	StageFailed           = "failed"
)

const stateKey = "pipeline.run"

type runState struct {
	problem    governance.Problem
	cases      []governance.CaseReference
	policies   []governance.PolicyReference
	plan       governance.SolutionPlan
	evaluation governance.EvaluationResult
	compliance *governance.ComplianceResult
}

func getState(state graph.State) (*runState, error) {
	st, ok := state[stateKey].(*runState)
	if !ok || st == nil {
		return nil, fmt.Errorf("pipeline state missing")
	}
	return st, nil
}

func (p *Pipeline) buildGraph() (*graph.Graph, error) {
	return graph.NewBuilder().
		AddNode(StageClassify, graph.NodeTypeStart, p.stage(StageClassify, p.classify)).
		AddNode(StageRetrieveCases, graph.NodeTypeStage, p.stage(StageRetrieveCases, p.retrieveCases)).
		AddNode(StageRetrievePolicies, graph.NodeTypeStage, p.stage(StageRetrievePolicies, p.retrievePolicies)).
		AddNode(StageAssemble, graph.NodeTypeStage, p.stage(StageAssemble, p.assemble)).
		AddNode(StageEvaluate, graph.NodeTypeStage, p.stage(StageEvaluate, p.evaluate)).
		AddConditionNode(StageComplianceGate, p.complianceGate, map[string]string{
			"check": StageCheckCompliance,
			"skip":  StageDone,
		}).
		AddNode(StageCheckCompliance, graph.NodeTypeStage, p.stage(StageCheckCompliance, p.checkCompliance)).
		AddNode(StageDone, graph.NodeTypeEnd, nil).
		AddNode(StageFailed, graph.NodeTypeFailure, p.failed).
		Chain(StageClassify, StageRetrieveCases, StageRetrievePolicies, StageAssemble, StageEvaluate, StageComplianceGate).
		AddEdge(StageCheckCompliance, StageDone).
		Build()
}

// stage wraps a step with its span and state lookup.
func (p *Pipeline) stage(name string, fn func(context.Context, *runState) error) graph.NodeFunc {
	return func(ctx context.Context, state graph.State) (_ graph.State, err error) {
		st, err := getState(state)
		if err != nil {
			return state, err
		}
		ctx, span := telemetry.StartStage(ctx, p.tracer, name)
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("panic: %v", r)
			}
			telemetry.End(span, err)
		}()
		return state, fn(ctx, st)
	}
}

func (p *Pipeline) classify(ctx context.Context, st *runState) error {
	if err := st.problem.Validate(); err != nil {
		return err
	}
	if st.problem.Category == "" {
		st.problem = st.problem.WithCategory(p.classifier.Classify(st.problem.Description))
	}
	p.logger.DebugContext(ctx, "problem classified", "category", st.problem.Category)
	return nil
}

func (p *Pipeline) retrieveCases(ctx context.Context, st *runState) error {
	category := st.problem.Category
	st.cases = p.cases.FindSimilarCases(ctx, st.problem.Description, &category, p.caseTopK)
	return nil
}

func (p *Pipeline) retrievePolicies(ctx context.Context, st *runState) error {
	var levels []governance.AdminLevel
	if p.hierarchy {
		levels = policyranker.PolicyHierarchy(st.problem.Location)
	}
	st.policies = p.policies.FindRelevantPolicies(ctx, st.problem.Description, st.problem.Location, levels, p.policyTopK)
	return nil
}

func (p *Pipeline) assemble(ctx context.Context, st *runState) error {
	st.plan = p.generator.Generate(ctx, st.problem, st.cases, st.policies)
	return nil
}

func (p *Pipeline) evaluate(ctx context.Context, st *runState) error {
	st.evaluation = p.evaluator.Evaluate(ctx, st.plan)
	return nil
}

func (p *Pipeline) complianceGate(_ context.Context, _ graph.State) (string, error) {
	if p.skipCompliance {
		return "skip", nil
	}
	return "check", nil
}

func (p *Pipeline) checkCompliance(ctx context.Context, st *runState) error {
	result := p.compliance.Check(ctx, st.plan.Steps, st.plan.PolicyReferences)
	st.compliance = &result
	return nil
}

func (p *Pipeline) failed(ctx context.Context, state graph.State) (graph.State, error) {
	stage, _ := state[graph.FailedStageKey].(string)
	_, span := telemetry.StartStage(ctx, p.tracer, StageFailed, attribute.String("failed_stage", stage))
	err, _ := state[graph.ErrorKey].(error)
	telemetry.End(span, err)
	return state, nil
}
