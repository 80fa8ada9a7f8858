package assembler

import (
	"fmt"
	"strings"

	"github.com/sweetpotato0/gov-allin/governance"
)

const (
	maxRisks       = 5
	maxMitigations = 5
	maxHuman       = 5
	maxFinancial   = 3
	maxTechnical   = 3
	maxOther       = 3
	maxMetrics     = 5
	maxAdaptations = 5
)

var (
	riskKeywords       = []string{"风险", "困难", "挑战", "问题", "障碍", "risk", "challenge"}
	mitigationKeywords = []string{"应对", "缓解", "预防", "措施", "建议", "mitigat"}
	humanKeywords      = []string{"人员", "工作"}
	financialKeywords  = []string{"资金", "费用", "预算", "成本", "fund", "budget"}
	technicalKeywords  = []string{"设备", "系统", "技术", "工具"}
	metricKeywords     = []string{"指标", "标准", "目标", "效果", "成功", "完成率"}

	// resources matching none of these fall under Other
	classifiedKeywords = []string{"人员", "工作", "资金", "费用", "设备", "系统"}
)

// DefaultMetrics are used when the text names no measurable outcome.
var DefaultMetrics = []string{
	"问题解决率达到80%以上",
	"相关方满意度达到85%以上",
	"方案执行完成率达到90%以上",
}

// FailedRisk is the assessment recorded when the risk narrative could not be generated.
func FailedRisk() governance.RiskAssessment {
	return governance.RiskAssessment{
		Content:     "风险评估生成失败",
		KeyRisks:    []string{"需要人工评估风险"},
		Mitigations: []string{"建议专业人士评估"},
	}
}

// DeriveRisk picks risk and mitigation sentences out of a narrative.
func DeriveRisk(text string) governance.RiskAssessment {
	risk := governance.RiskAssessment{Content: strings.TrimSpace(text)}
	for _, s := range sentences(text) {
		lower := strings.ToLower(s)
		if len(risk.KeyRisks) < maxRisks && containsAny(lower, riskKeywords) {
			risk.KeyRisks = append(risk.KeyRisks, s)
		}
		if len(risk.Mitigations) < maxMitigations && containsAny(lower, mitigationKeywords) {
			risk.Mitigations = append(risk.Mitigations, s)
		}
	}
	return risk
}

// DeriveResources groups the steps' responsible parties and resources by kind.
func DeriveResources(steps []governance.PlanStep) governance.ResourceRequirements {
	var human, financial, technical, other []string
	for _, st := range steps {
		if st.ResponsibleParty != "" {
			human = append(human, st.ResponsibleParty)
		}
		for _, res := range st.ResourcesNeeded {
			lower := strings.ToLower(res)
			if containsAny(lower, humanKeywords) {
				human = append(human, res)
			}
			if containsAny(lower, financialKeywords) {
				financial = append(financial, res)
			}
			if containsAny(lower, technicalKeywords) {
				technical = append(technical, res)
			}
			if !containsAny(lower, classifiedKeywords) {
				other = append(other, res)
			}
		}
	}
	return governance.ResourceRequirements{
		Human:     limit(dedupe(human), maxHuman),
		Financial: orDefault(limit(dedupe(financial), maxFinancial), "需要评估具体资金需求"),
		Technical: orDefault(limit(dedupe(technical), maxTechnical), "基础办公设备和工具"),
		Other:     orDefault(limit(dedupe(other), maxOther), "场地支持", "合作伙伴", "政策支持"),
	}
}

// DeriveTimeline uses the problem's own timeline when given, otherwise one and
// a half weeks per step.
func DeriveTimeline(problem governance.Problem, steps []governance.PlanStep) governance.Timeline {
	overall := strings.TrimSpace(problem.Timeline)
	if overall == "" {
		overall = fmt.Sprintf("%d周", len(steps)*3/2)
	}
	tl := governance.Timeline{
		OverallDuration: overall,
		Steps:           make([]governance.StepDuration, 0, len(steps)),
	}
	for _, st := range steps {
		d := st.Duration
		if d == "" {
			d = "1周"
		}
		tl.Steps = append(tl.Steps, governance.StepDuration{Step: st.Step, Duration: d})
	}
	return tl
}

// DeriveMetrics collects sentences that state a measurable outcome.
func DeriveMetrics(text string) []string {
	var out []string
	for _, s := range sentences(text) {
		if len(out) == maxMetrics {
			break
		}
		if containsAny(s, metricKeywords) {
			out = append(out, s+"。")
		}
	}
	if len(out) == 0 {
		return append([]string(nil), DefaultMetrics...)
	}
	return out
}

var cityAdaptations = []struct {
	cities []string
	note   string
}{
	{[]string{"北京"}, "考虑北京市的政策环境和管理要求"},
	{[]string{"上海"}, "结合上海市的国际化特点和管理标准"},
	{[]string{"广州", "深圳"}, "考虑珠三角地区的经济发展水平和人口结构"},
}

var categoryAdaptations = map[governance.Category]string{
	governance.CategoryNeighborDispute:       "重视邻里关系的文化传统",
	governance.CategoryEnvironmentGovernance: "结合当地环保要求和居民习惯",
}

// DeriveAdaptations lists local notes for the problem's city and category,
// then the leading applicable condition of each precedent case.
func DeriveAdaptations(problem governance.Problem, cases []governance.CaseReference) []string {
	var out []string
	for _, c := range cityAdaptations {
		if containsAny(problem.Location, c.cities) {
			out = append(out, c.note)
			break
		}
	}
	if note, ok := categoryAdaptations[problem.Category]; ok {
		out = append(out, note)
	}
	for _, c := range cases {
		if len(c.ApplicableConditions) > 0 {
			out = append(out, c.ApplicableConditions[0])
		}
	}
	return limit(dedupe(out), maxAdaptations)
}

func sentences(text string) []string {
	var out []string
	for _, line := range strings.Split(text, "\n") {
		for _, s := range strings.Split(line, "。") {
			if s = strings.TrimSpace(s); s != "" {
				out = append(out, s)
			}
		}
	}
	return out
}

func containsAny(s string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}

func dedupe(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}

func limit(in []string, n int) []string {
	if len(in) > n {
		return in[:n]
	}
	return in
}

func orDefault(in []string, defaults ...string) []string {
	if len(in) == 0 {
		return defaults
	}
	return in
}
