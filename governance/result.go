package governance

import "time"

// Dimension is one of the six evaluation criteria.
type Dimension string

const (
	DimensionFeasibility           Dimension = "feasibility"
	DimensionEffectiveness         Dimension = "effectiveness"
	DimensionCompliance            Dimension = "compliance"
	DimensionSustainability        Dimension = "sustainability"
	DimensionCostEfficiency        Dimension = "cost_efficiency"
	DimensionStakeholderAcceptance Dimension = "stakeholder_acceptance"
)

// Dimensions lists the criteria in evaluation order.
func Dimensions() []Dimension {
	return []Dimension{
		DimensionFeasibility,
		DimensionEffectiveness,
		DimensionCompliance,
		DimensionSustainability,
		DimensionCostEfficiency,
		DimensionStakeholderAcceptance,
	}
}

// DimensionScores holds one 0..100 score per criterion.
type DimensionScores struct {
	Feasibility           float64 `json:"feasibility"`
	Effectiveness         float64 `json:"effectiveness"`
	Compliance            float64 `json:"compliance"`
	Sustainability        float64 `json:"sustainability"`
	CostEfficiency        float64 `json:"cost_efficiency"`
	StakeholderAcceptance float64 `json:"stakeholder_acceptance"`
}

// Get returns the score for a dimension.
func (s DimensionScores) Get(d Dimension) float64 {
	switch d {
	case DimensionFeasibility:
		return s.Feasibility
	case DimensionEffectiveness:
		return s.Effectiveness
	case DimensionCompliance:
		return s.Compliance
	case DimensionSustainability:
		return s.Sustainability
	case DimensionCostEfficiency:
		return s.CostEfficiency
	case DimensionStakeholderAcceptance:
		return s.StakeholderAcceptance
	}
	return 0
}

// Level is the quality band of an evaluated plan.
type Level string

const (
	LevelExcellent    Level = "excellent"
	LevelGood         Level = "good"
	LevelFair         Level = "fair"
	LevelPoor         Level = "poor"
	LevelUnacceptable Level = "unacceptable"
)

// RiskLevel grades implementation risk.
type RiskLevel string

const (
	RiskHigh   RiskLevel = "high"
	RiskMedium RiskLevel = "medium"
	RiskLow    RiskLevel = "low"
)

// ImplementationRisk lists risk findings by severity.
type ImplementationRisk struct {
	High    []string  `json:"high,omitempty"`
	Medium  []string  `json:"medium,omitempty"`
	Low     []string  `json:"low,omitempty"`
	Overall RiskLevel `json:"overall"`
}

// EvaluationResult is the multi-criteria assessment of a plan.
type EvaluationResult struct {
	ID                     string             `json:"id"`
	PlanID                 string             `json:"plan_id,omitempty"`
	OverallScore           float64            `json:"overall_score"`
	Level                  Level              `json:"level"`
	DimensionScores        DimensionScores    `json:"dimension_scores"`
	Strengths              []string           `json:"strengths"`
	Weaknesses             []string           `json:"weaknesses"`
	ImprovementSuggestions []string           `json:"improvement_suggestions"`
	RiskAssessment         ImplementationRisk `json:"risk_assessment"`
	SuccessProbability     string             `json:"success_probability"`
	EvaluatedAt            time.Time          `json:"evaluated_at"`
}

// ComplianceStatus is the outcome of a compliance check.
type ComplianceStatus string

const (
	ComplianceCompliant    ComplianceStatus = "compliant"
	ComplianceWarning      ComplianceStatus = "warning"
	ComplianceNonCompliant ComplianceStatus = "non_compliant"
	ComplianceError        ComplianceStatus = "error"
)

// ComplianceResult reports how well plan steps align with policy requirements.
type ComplianceResult struct {
	OverallCompliance ComplianceStatus `json:"overall_compliance"`
	ComplianceScore   float64          `json:"compliance_score"`
	Issues            []string         `json:"issues"`
	Recommendations   []string         `json:"recommendations"`
}
