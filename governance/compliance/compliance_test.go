package compliance

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/sweetpotato0/gov-allin/governance"
)

func TestNoPoliciesIsWarning(t *testing.T) {
	res := New().Check(context.Background(), []governance.PlanStep{{Description: "入户走访"}}, nil)
	if res.OverallCompliance != governance.ComplianceWarning {
		t.Errorf("status = %q", res.OverallCompliance)
	}
	if res.ComplianceScore != 0 {
		t.Errorf("score = %v", res.ComplianceScore)
	}
	if diff := cmp.Diff([]string{"缺少相关政策依据"}, res.Issues); diff != "" {
		t.Errorf("issues mismatch (-want +got):\n%s", diff)
	}
}

func TestScoreBands(t *testing.T) {
	policy := governance.PolicyReference{
		PolicyID:               "p",
		ComplianceRequirements: []string{"依法开展垃圾分类宣传"},
	}
	aligned := governance.PlanStep{Description: "依法开展垃圾分类宣传活动"}
	unrelated := governance.PlanStep{Description: "维修路灯"}

	tests := []struct {
		name       string
		steps      []governance.PlanStep
		wantStatus governance.ComplianceStatus
		wantScore  float64
		wantIssues []string
		wantRecs   int
	}{
		{
			name:       "all aligned",
			steps:      []governance.PlanStep{aligned, aligned},
			wantStatus: governance.ComplianceCompliant,
			wantScore:  1,
			wantIssues: []string{},
		},
		{
			name:       "half aligned",
			steps:      []governance.PlanStep{aligned, unrelated},
			wantStatus: governance.ComplianceWarning,
			wantScore:  0.5,
			wantIssues: []string{"部分步骤可能需要政策依据支撑"},
			wantRecs:   2,
		},
		{
			name:       "none aligned",
			steps:      []governance.PlanStep{unrelated},
			wantStatus: governance.ComplianceNonCompliant,
			wantScore:  0,
			wantIssues: []string{"方案与现行政策存在较大差异"},
			wantRecs:   2,
		},
		{
			name:       "no steps",
			wantStatus: governance.ComplianceNonCompliant,
			wantIssues: []string{"方案与现行政策存在较大差异"},
			wantRecs:   2,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := New().Check(context.Background(), tt.steps, []governance.PolicyReference{policy})
			if res.OverallCompliance != tt.wantStatus {
				t.Errorf("status = %q, want %q", res.OverallCompliance, tt.wantStatus)
			}
			if res.ComplianceScore != tt.wantScore {
				t.Errorf("score = %v, want %v", res.ComplianceScore, tt.wantScore)
			}
			if diff := cmp.Diff(tt.wantIssues, res.Issues); diff != "" {
				t.Errorf("issues mismatch (-want +got):\n%s", diff)
			}
			if len(res.Recommendations) != tt.wantRecs {
				t.Errorf("recommendations = %v", res.Recommendations)
			}
		})
	}
}

func TestScoreIsClamped(t *testing.T) {
	policy := governance.PolicyReference{ComplianceRequirements: []string{"依法管理", "依法管理小区"}}
	steps := []governance.PlanStep{{Description: "依法管理小区"}}
	res := New().Check(context.Background(), steps, []governance.PolicyReference{policy})
	if res.ComplianceScore != 1 {
		t.Errorf("score should clamp to 1, got %v", res.ComplianceScore)
	}
}

func TestCancelledContextReportsError(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	res := New().Check(ctx, nil, []governance.PolicyReference{{}})
	if res.OverallCompliance != governance.ComplianceError {
		t.Fatalf("status = %q", res.OverallCompliance)
	}
	if diff := cmp.Diff([]string{"建议人工审核政策合规性"}, res.Recommendations); diff != "" {
		t.Errorf("recommendations mismatch (-want +got):\n%s", diff)
	}
}

func TestTokensAndJaccard(t *testing.T) {
	got := Tokens("垃圾分类 Policy")
	want := map[string]struct{}{"垃圾": {}, "圾分": {}, "分类": {}, "policy": {}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("tokens mismatch (-want +got):\n%s", diff)
	}

	if j := Jaccard(Tokens("a b"), Tokens("b c")); j < 0.333 || j > 0.334 {
		t.Errorf("Jaccard = %v, want 1/3", j)
	}
	if j := Jaccard(nil, nil); j != 0 {
		t.Errorf("empty sets should have similarity 0, got %v", j)
	}
}
