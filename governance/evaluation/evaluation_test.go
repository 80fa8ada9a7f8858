package evaluation

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	apperrors "github.com/sweetpotato0/gov-allin/errors"
	"github.com/sweetpotato0/gov-allin/governance"
	"github.com/sweetpotato0/gov-allin/history"
)

func richPlan() governance.SolutionPlan {
	return governance.SolutionPlan{
		ID: "plan-rich",
		Problem: governance.Problem{
			Description:  "楼上邻居夜间噪音扰民",
			Location:     "广州市天河区",
			Urgency:      3,
			Stakeholders: []string{"居民", "物业", "社区", "调解员"},
			Constraints:  []string{"预算有限", "人手不足"},
		},
		CaseReferences: []governance.CaseReference{
			{CaseID: "c1", Relevance: 0.8},
			{CaseID: "c2", Relevance: 0.5},
		},
		PolicyReferences: []governance.PolicyReference{
			{PolicyID: "p1", AdminLevel: governance.AdminLevelCentral},
			{PolicyID: "p2", AdminLevel: governance.AdminLevelMunicipal},
		},
		Steps: []governance.PlanStep{
			{Step: 1, Description: "组织居民代表与物业召开协调会议，充分沟通诉求并形成共识"},
			{Step: 2, Description: "建立噪音投诉快速响应机制并纳入社区公约长期执行"},
			{Step: 3, Description: "编制预算"},
			{Step: 4, Description: "走访"},
			{Step: 5, Description: "回访"},
		},
		RiskAssessment: governance.RiskAssessment{
			Content:  "需要关注政策合规风险",
			KeyRisks: []string{"沟通不畅的风险。"},
		},
		ResourceRequirements: governance.ResourceRequirements{
			Human:     []string{"社区工作人员"},
			Financial: []string{"专项资金"},
			Other:     []string{"持续的志愿者支持"},
		},
		SuccessMetrics:   []string{"投诉量下降50%", "长期保持邻里和谐"},
		Timeline:         governance.Timeline{OverallDuration: "6周"},
		LocalAdaptations: []string{"重视邻里关系的文化传统"},
	}
}

func emptyPlan() governance.SolutionPlan {
	return governance.SolutionPlan{
		ID:      "plan-empty",
		Problem: governance.Problem{Description: "路灯损坏", Urgency: 1},
	}
}

func TestEvaluateRichPlan(t *testing.T) {
	at := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	e := New(WithClock(func() time.Time { return at }))
	res := e.Evaluate(context.Background(), richPlan())

	wantScores := governance.DimensionScores{
		Feasibility:           82,
		Effectiveness:         60,
		Compliance:            80,
		Sustainability:        60,
		CostEfficiency:        100,
		StakeholderAcceptance: 80,
	}
	if diff := cmp.Diff(wantScores, res.DimensionScores, cmpopts.EquateApprox(0, 1e-9)); diff != "" {
		t.Errorf("dimension scores mismatch (-want +got):\n%s", diff)
	}
	if res.OverallScore != 75.5 {
		t.Errorf("overall = %v, want 75.5", res.OverallScore)
	}
	if res.Level != governance.LevelFair || res.SuccessProbability != "70-80%" {
		t.Errorf("level = %q, probability = %q", res.Level, res.SuccessProbability)
	}
	if diff := cmp.Diff([]string{
		"建议增加更多相关成功案例参考，提高方案有效性",
		"建议加强长效机制建设，提高方案可持续性",
	}, res.ImprovementSuggestions); diff != "" {
		t.Errorf("suggestions mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"有充分的政策法规支撑", "进行了全面的风险评估", "考虑了本地化适配"}, res.Strengths); diff != "" {
		t.Errorf("strengths mismatch (-want +got):\n%s", diff)
	}
	if len(res.Weaknesses) != 0 {
		t.Errorf("unexpected weaknesses: %v", res.Weaknesses)
	}

	wantRisk := governance.ImplementationRisk{
		High:    []string{"存在预算约束风险"},
		Medium:  []string{"问题具有一定紧急性", "存在人力资源不足风险"},
		Low:     []string{},
		Overall: governance.RiskMedium,
	}
	if diff := cmp.Diff(wantRisk, res.RiskAssessment); diff != "" {
		t.Errorf("risk mismatch (-want +got):\n%s", diff)
	}
	if res.ID == "" || res.PlanID != "plan-rich" || !res.EvaluatedAt.Equal(at) {
		t.Errorf("identity fields not set: %+v", res)
	}
}

func TestEvaluateEmptyPlanCapsSuggestions(t *testing.T) {
	res := New().Evaluate(context.Background(), emptyPlan())
	if res.OverallScore != 5 {
		t.Errorf("overall = %v, want 5", res.OverallScore)
	}
	if res.Level != governance.LevelUnacceptable {
		t.Errorf("level = %q", res.Level)
	}
	want := []string{
		"建议进一步细化实施步骤，增强方案的可操作性",
		"建议增加更多相关成功案例参考，提高方案有效性",
		"建议补充更多政策法规依据，确保方案合规性",
		"建议加强长效机制建设，提高方案可持续性",
		"建议优化资源配置，提高成本效益",
	}
	if diff := cmp.Diff(want, res.ImprovementSuggestions); diff != "" {
		t.Errorf("suggestions mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"缺少成功案例参考", "缺少政策法规依据", "实施步骤不够详细", "缺少明确的成功指标", "缺少资金需求评估"}, res.Weaknesses); diff != "" {
		t.Errorf("weaknesses mismatch (-want +got):\n%s", diff)
	}
	if res.RiskAssessment.Overall != governance.RiskLow {
		t.Errorf("risk = %q", res.RiskAssessment.Overall)
	}
}

func TestEvaluateIsIdempotent(t *testing.T) {
	e := New()
	plan := richPlan()
	a := e.Evaluate(context.Background(), plan)
	b := e.Evaluate(context.Background(), plan)
	if a.OverallScore != b.OverallScore || a.Level != b.Level {
		t.Errorf("evaluations differ: %v/%s vs %v/%s", a.OverallScore, a.Level, b.OverallScore, b.Level)
	}
	if diff := cmp.Diff(a.ImprovementSuggestions, b.ImprovementSuggestions); diff != "" {
		t.Errorf("suggestions differ:\n%s", diff)
	}
}

func TestWeightsAndOverallBounds(t *testing.T) {
	sum := 0.0
	for _, d := range governance.Dimensions() {
		sum += Weights()[d]
	}
	if sum != 1.0 {
		t.Errorf("weights sum to %v", sum)
	}

	if got := Overall(governance.DimensionScores{}); got != 0 {
		t.Errorf("all-zero overall = %v", got)
	}
	full := uniform(100)
	if got := Overall(full); got != 100 {
		t.Errorf("all-100 overall = %v", got)
	}
	over := uniform(100)
	over.Feasibility = 500
	if got := Overall(over); got != 100 {
		t.Errorf("out-of-range scores should clamp, got %v", got)
	}
}

func uniform(v float64) governance.DimensionScores {
	return governance.DimensionScores{
		Feasibility:           v,
		Effectiveness:         v,
		Compliance:            v,
		Sustainability:        v,
		CostEfficiency:        v,
		StakeholderAcceptance: v,
	}
}

func TestLevelBands(t *testing.T) {
	tests := []struct {
		score float64
		want  governance.Level
	}{
		{100, governance.LevelExcellent},
		{90, governance.LevelExcellent},
		{89.99, governance.LevelGood},
		{80, governance.LevelGood},
		{70, governance.LevelFair},
		{60, governance.LevelPoor},
		{59.99, governance.LevelUnacceptable},
		{0, governance.LevelUnacceptable},
	}
	for _, tt := range tests {
		if got := LevelFor(tt.score); got != tt.want {
			t.Errorf("LevelFor(%v) = %q, want %q", tt.score, got, tt.want)
		}
	}
}

func TestCompare(t *testing.T) {
	e := New()
	if _, err := e.Compare(context.Background(), []governance.SolutionPlan{richPlan()}); !errors.Is(err, apperrors.ErrInsufficientPlans) {
		t.Fatalf("expected ErrInsufficientPlans, got %v", err)
	}

	cmpResult, err := e.Compare(context.Background(), []governance.SolutionPlan{emptyPlan(), richPlan(), emptyPlan()})
	if err != nil {
		t.Fatalf("compare: %v", err)
	}
	var order []int
	for _, r := range cmpResult.Evaluations {
		order = append(order, r.Index)
	}
	if diff := cmp.Diff([]int{1, 0, 2}, order); diff != "" {
		t.Errorf("ranking mismatch (-want +got):\n%s", diff)
	}
	if cmpResult.BestIndex != 1 || cmpResult.WorstIndex != 2 {
		t.Errorf("best/worst = %d/%d", cmpResult.BestIndex, cmpResult.WorstIndex)
	}
	if cmpResult.ScoreRange != 70.5 {
		t.Errorf("score range = %v", cmpResult.ScoreRange)
	}
}

func TestHistoryAndStatistics(t *testing.T) {
	ring := history.NewRing(2)
	clock := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	e := New(WithHistory(ring), WithClock(func() time.Time {
		clock = clock.Add(time.Minute)
		return clock
	}))

	stats, err := e.Statistics(context.Background())
	if err != nil || stats.Total != 0 {
		t.Fatalf("empty stats = %+v, %v", stats, err)
	}

	e.Evaluate(context.Background(), emptyPlan())
	e.Evaluate(context.Background(), richPlan())
	e.Evaluate(context.Background(), richPlan())

	stats, err = e.Statistics(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if stats.Total != 2 {
		t.Errorf("history should be bounded to 2, got %d", stats.Total)
	}
	if stats.AverageScore != 75.5 {
		t.Errorf("average = %v", stats.AverageScore)
	}
	if diff := cmp.Diff(map[governance.Level]int{governance.LevelFair: 2}, stats.LevelDistribution); diff != "" {
		t.Errorf("distribution mismatch (-want +got):\n%s", diff)
	}
	if !stats.Latest.Equal(clock) {
		t.Errorf("latest = %v, want %v", stats.Latest, clock)
	}
}

type failingStore struct{ history.Store }

func (failingStore) Append(context.Context, governance.EvaluationResult) error {
	return errors.New("sink unavailable")
}

func TestHistoryFailureDoesNotFailEvaluation(t *testing.T) {
	e := New(WithHistory(failingStore{}))
	res := e.Evaluate(context.Background(), richPlan())
	if res.OverallScore != 75.5 {
		t.Errorf("overall = %v", res.OverallScore)
	}
}
