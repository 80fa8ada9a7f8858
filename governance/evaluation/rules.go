package evaluation

import (
	"strings"
	"unicode/utf8"

	"github.com/sweetpotato0/gov-allin/governance"
)

const (
	concreteStepRunes  = 20
	relevantCaseScore  = 0.7
	systematicSteps    = 5
	detailedSteps      = 7
	stakeholderCap     = 60
	busyStakeholders   = 5
	simpleStakeholders = 2
)

func clamp(score float64) float64 {
	switch {
	case score < 0:
		return 0
	case score > 100:
		return 100
	}
	return score
}

func countSteps(steps []governance.PlanStep, keywords ...string) int {
	n := 0
	for _, s := range steps {
		for _, k := range keywords {
			if strings.Contains(s.Description, k) {
				n++
				break
			}
		}
	}
	return n
}

func feasibility(plan governance.SolutionPlan) float64 {
	score := 0.0
	if len(plan.Steps) > 0 {
		concrete := 0
		for _, s := range plan.Steps {
			if utf8.RuneCountInString(s.Description) > concreteStepRunes {
				concrete++
			}
		}
		score += float64(concrete) / float64(len(plan.Steps)) * 30
	}
	if len(plan.ResourceRequirements.Human) > 0 {
		score += 20
	}
	if len(plan.ResourceRequirements.Financial) > 0 {
		score += 15
	}
	if plan.Timeline.OverallDuration != "" {
		score += 15
	}
	if len(plan.RiskAssessment.KeyRisks) > 0 {
		score += 20
	}
	return clamp(score)
}

func effectiveness(plan governance.SolutionPlan) float64 {
	score := float64(len(plan.SuccessMetrics)) * 10
	for _, c := range plan.CaseReferences {
		if c.Relevance > relevantCaseScore {
			score += 15
		}
	}
	if len(plan.Steps) >= systematicSteps {
		score += 20
	}
	score += float64(len(plan.LocalAdaptations)) * 5
	return clamp(score)
}

func compliance(plan governance.SolutionPlan) float64 {
	score := 0.0
	if len(plan.PolicyReferences) > 0 {
		score += float64(len(plan.PolicyReferences)) * 20
		levels := map[governance.AdminLevel]struct{}{}
		for _, p := range plan.PolicyReferences {
			levels[p.AdminLevel] = struct{}{}
		}
		score += float64(len(levels)) * 10
	}
	content := plan.RiskAssessment.Content
	if strings.Contains(content, "合规") || strings.Contains(content, "政策") {
		score += 20
	}
	return clamp(score)
}

func sustainability(plan governance.SolutionPlan) float64 {
	score := 0.0
	for _, m := range plan.SuccessMetrics {
		if strings.Contains(m, "长期") || strings.Contains(m, "持续") {
			score += 15
		}
	}
	score += float64(countSteps(plan.Steps, "制度", "机制")) * 20
	if plan.ResourceRequirements.Mentions("持续") {
		score += 25
	}
	return clamp(score)
}

func costEfficiency(plan governance.SolutionPlan) float64 {
	score := 50.0
	if len(plan.ResourceRequirements.Financial) > 0 {
		score += 20
	}
	if len(plan.ResourceRequirements.Human) > 0 {
		score += 15
	}
	score += float64(countSteps(plan.Steps, "成本", "预算")) * 15
	return clamp(score)
}

func stakeholderAcceptance(plan governance.SolutionPlan) float64 {
	score := float64(len(plan.Problem.Stakeholders)) * 15
	if score > stakeholderCap {
		score = stakeholderCap
	}
	score += float64(countSteps(plan.Steps, "沟通", "协调", "征求")) * 20
	return clamp(score)
}

// Score computes the six dimension scores of a plan.
func Score(plan governance.SolutionPlan) governance.DimensionScores {
	return governance.DimensionScores{
		Feasibility:           feasibility(plan),
		Effectiveness:         effectiveness(plan),
		Compliance:            compliance(plan),
		Sustainability:        sustainability(plan),
		CostEfficiency:        costEfficiency(plan),
		StakeholderAcceptance: stakeholderAcceptance(plan),
	}
}

var dimensionSuggestions = map[governance.Dimension]string{
	governance.DimensionFeasibility:           "建议进一步细化实施步骤，增强方案的可操作性",
	governance.DimensionEffectiveness:         "建议增加更多相关成功案例参考，提高方案有效性",
	governance.DimensionCompliance:            "建议补充更多政策法规依据，确保方案合规性",
	governance.DimensionSustainability:        "建议加强长效机制建设，提高方案可持续性",
	governance.DimensionCostEfficiency:        "建议优化资源配置，提高成本效益",
	governance.DimensionStakeholderAcceptance: "建议加强利益相关方沟通，提高方案接受度",
}

const (
	suggestionThreshold = 70
	maxSuggestions      = 5
)

// Suggestions lists dimension-specific advice for every score below 70, then
// advice for structural gaps, capped at five.
func Suggestions(plan governance.SolutionPlan, scores governance.DimensionScores) []string {
	out := []string{}
	for _, d := range governance.Dimensions() {
		if scores.Get(d) < suggestionThreshold {
			out = append(out, dimensionSuggestions[d])
		}
	}
	if len(plan.Steps) < systematicSteps {
		out = append(out, "建议增加更多实施步骤，使方案更加完整")
	}
	if len(plan.SuccessMetrics) == 0 {
		out = append(out, "建议设定明确的成功评估指标")
	}
	if len(plan.LocalAdaptations) == 0 {
		out = append(out, "建议增加本地化适配建议")
	}
	if len(out) > maxSuggestions {
		out = out[:maxSuggestions]
	}
	return out
}

// Strengths lists what the plan does well.
func Strengths(plan governance.SolutionPlan) []string {
	out := []string{}
	if len(plan.CaseReferences) >= 3 {
		out = append(out, "参考了多个相关成功案例")
	}
	if len(plan.PolicyReferences) >= 2 {
		out = append(out, "有充分的政策法规支撑")
	}
	if len(plan.Steps) >= detailedSteps {
		out = append(out, "实施步骤详细完整")
	}
	if len(plan.RiskAssessment.KeyRisks) > 0 {
		out = append(out, "进行了全面的风险评估")
	}
	if len(plan.LocalAdaptations) > 0 {
		out = append(out, "考虑了本地化适配")
	}
	return out
}

// Weaknesses lists gaps in the plan.
func Weaknesses(plan governance.SolutionPlan) []string {
	out := []string{}
	if len(plan.CaseReferences) == 0 {
		out = append(out, "缺少成功案例参考")
	}
	if len(plan.PolicyReferences) == 0 {
		out = append(out, "缺少政策法规依据")
	}
	if len(plan.Steps) < systematicSteps {
		out = append(out, "实施步骤不够详细")
	}
	if len(plan.SuccessMetrics) == 0 {
		out = append(out, "缺少明确的成功指标")
	}
	if len(plan.ResourceRequirements.Financial) == 0 {
		out = append(out, "缺少资金需求评估")
	}
	return out
}

// ImplementationRisks grades risks from urgency, stakeholder count and constraints.
func ImplementationRisks(problem governance.Problem) governance.ImplementationRisk {
	risk := governance.ImplementationRisk{
		High:   []string{},
		Medium: []string{},
		Low:    []string{},
	}

	switch {
	case problem.Urgency >= 4:
		risk.High = append(risk.High, "问题紧急程度高，实施压力大")
	case problem.Urgency >= 3:
		risk.Medium = append(risk.Medium, "问题具有一定紧急性")
	default:
		risk.Low = append(risk.Low, "问题紧急程度较低")
	}

	switch n := len(problem.Stakeholders); {
	case n >= busyStakeholders:
		risk.Medium = append(risk.Medium, "涉及利益相关方较多，协调难度大")
	case n <= simpleStakeholders:
		risk.Low = append(risk.Low, "涉及利益相关方较少，协调相对容易")
	}

	constraints := strings.Join(problem.Constraints, " ")
	if strings.Contains(constraints, "预算") || strings.Contains(constraints, "资金") {
		risk.High = append(risk.High, "存在预算约束风险")
	}
	if strings.Contains(constraints, "人手") || strings.Contains(constraints, "人力") {
		risk.Medium = append(risk.Medium, "存在人力资源不足风险")
	}

	switch {
	case len(risk.High) >= 2:
		risk.Overall = governance.RiskHigh
	case len(risk.High) >= 1 || len(risk.Medium) >= 3:
		risk.Overall = governance.RiskMedium
	default:
		risk.Overall = governance.RiskLow
	}
	return risk
}

// LevelFor maps an overall score to its quality band.
func LevelFor(score float64) governance.Level {
	switch {
	case score >= 90:
		return governance.LevelExcellent
	case score >= 80:
		return governance.LevelGood
	case score >= 70:
		return governance.LevelFair
	case score >= 60:
		return governance.LevelPoor
	default:
		return governance.LevelUnacceptable
	}
}

// SuccessProbability maps an overall score to a success-rate band.
func SuccessProbability(score float64) string {
	switch {
	case score >= 90:
		return "90%以上"
	case score >= 80:
		return "80-90%"
	case score >= 70:
		return "70-80%"
	case score >= 60:
		return "60-70%"
	default:
		return "60%以下"
	}
}
