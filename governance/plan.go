package governance

import (
	"strings"
	"time"
)

// PlanStep is one actionable step of a solution plan.
type PlanStep struct {
	Step             int      `json:"step"`
	Title            string   `json:"title"`
	Description      string   `json:"description"`
	Duration         string   `json:"duration"`
	ResponsibleParty string   `json:"responsible_party"`
	ResourcesNeeded  []string `json:"resources_needed,omitempty"`
	SuccessCriteria  string   `json:"success_criteria"`
	RiskMitigation   string   `json:"risk_mitigation"`
}

// RiskAssessment is the plan-level risk narrative and the findings drawn from it.
type RiskAssessment struct {
	Content     string   `json:"content,omitempty"`
	KeyRisks    []string `json:"key_risks,omitempty"`
	Mitigations []string `json:"mitigations,omitempty"`
}

// ResourceRequirements groups resource needs by kind.
type ResourceRequirements struct {
	Content   string   `json:"content,omitempty"`
	Human     []string `json:"human,omitempty"`
	Financial []string `json:"financial,omitempty"`
	Technical []string `json:"technical,omitempty"`
	Other     []string `json:"other,omitempty"`
}

// Mentions reports whether any resource field contains the keyword.
func (r ResourceRequirements) Mentions(keyword string) bool {
	if strings.Contains(r.Content, keyword) {
		return true
	}
	for _, group := range [][]string{r.Human, r.Financial, r.Technical, r.Other} {
		for _, item := range group {
			if strings.Contains(item, keyword) {
				return true
			}
		}
	}
	return false
}

// StepDuration is the scheduled duration of one step.
type StepDuration struct {
	Step     int    `json:"step"`
	Duration string `json:"duration"`
}

// Timeline is the overall and per-step schedule of a plan.
type Timeline struct {
	OverallDuration string         `json:"overall_duration"`
	Steps           []StepDuration `json:"steps,omitempty"`
}

// SolutionPlan is the structured plan assembled for one problem.
type SolutionPlan struct {
	ID                   string               `json:"id"`
	Problem              Problem              `json:"problem"`
	CaseReferences       []CaseReference      `json:"case_references"`
	PolicyReferences     []PolicyReference    `json:"policy_references"`
	Steps                []PlanStep           `json:"steps"`
	RiskAssessment       RiskAssessment       `json:"risk_assessment"`
	ResourceRequirements ResourceRequirements `json:"resource_requirements"`
	SuccessMetrics       []string             `json:"success_metrics,omitempty"`
	Timeline             Timeline             `json:"timeline"`
	LocalAdaptations     []string             `json:"local_adaptations,omitempty"`
	GeneratedAt          time.Time            `json:"generated_at"`
}
