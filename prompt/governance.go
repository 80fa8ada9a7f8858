package prompt

// Template names registered by NewGovernanceManager.
const (
	Solution           = "solution"
	RiskAssessment     = "risk_assessment"
	ResourceAssessment = "resource_assessment"
)

// SolutionData fills the Solution template.
type SolutionData struct {
	Location     string
	Problem      string
	Urgency      int
	Stakeholders string
	Constraints  string
	Cases        string
	Policies     string
	Guide        string
}

// RiskData fills the RiskAssessment template.
type RiskData struct {
	Problem  string
	Location string
	Steps    string
}

// ResourceData fills the ResourceAssessment template.
type ResourceData struct {
	Steps    string
	Location string
	Timeline string
}

const solutionTemplate = `你是一个专业的基层治理专家，请基于成功案例和政策法规，为特定问题生成详细的解决方案。

## 问题信息
**地区**: {{.Location}}
**问题描述**: {{.Problem}}
**紧急程度**: {{.Urgency}}/5
**涉及方**: {{.Stakeholders}}
**约束条件**: {{.Constraints}}

## 参考成功案例
{{.Cases}}

## 相关政策法规
{{.Policies}}
{{if .Guide}}
## 同类问题处置要点
{{.Guide}}
{{end}}
## 请生成结构化的解决方案

**具体步骤**: 请按以下JSON格式提供7-10个具体步骤：
` + "```json" + `
[
  {
    "step": 1,
    "title": "步骤标题",
    "description": "详细描述",
    "duration": "预期时间",
    "responsible_party": "责任方",
    "resources_needed": ["所需资源1", "所需资源2"],
    "success_criteria": "成功标准",
    "risk_mitigation": "风险缓解措施"
  }
]
` + "```" + `

随后依次说明：政策合规保障、地区适配建议、资源需求评估、风险评估与应对、成效评估体系（短期、中期、长期指标）。
请确保方案具体可操作，符合政策要求，并充分借鉴成功案例经验。

解决方案：`

const riskTemplate = `请对以下基层治理解决方案进行风险评估：

**问题**: {{.Problem}}
**地区**: {{.Location}}
**解决方案步骤**: {{.Steps}}

请从政策风险、实施风险、资源风险、社会风险、时间风险五个维度进行评估。
对每个风险给出风险等级、发生概率、影响程度（高/中/低）以及应对措施。

风险评估结果：`

const resourceTemplate = `请对以下解决方案的资源需求进行详细评估：

**解决方案步骤**: {{.Steps}}
**实施地区**: {{.Location}}
**时间安排**: {{.Timeline}}

请分别评估人力资源、财政资源（一次性投入、持续运营成本、应急资金）、技术资源（设备设施、信息系统）以及场地、合作伙伴等其他资源。

资源需求评估：`

// NewGovernanceManager returns a manager holding the solution, risk and
// resource templates.
func NewGovernanceManager() *Manager {
	m := NewManager()
	for name, content := range map[string]string{
		Solution:           solutionTemplate,
		RiskAssessment:     riskTemplate,
		ResourceAssessment: resourceTemplate,
	} {
		tmpl, err := NewTemplate(name, content)
		if err != nil {
			panic(err)
		}
		m.Replace(tmpl)
	}
	return m
}
