package assembler

import (
	"fmt"
	"strings"

	"github.com/sweetpotato0/gov-allin/governance"
	"github.com/sweetpotato0/gov-allin/prompt"
)

// Template is the typical handling of a problem category.
type Template struct {
	KeySteps       []string
	Duration       string
	Stakeholders   []string
	SuccessFactors []string
}

var templates = map[governance.Category]Template{
	governance.CategoryNeighborDispute: {
		KeySteps:       []string{"调研了解", "沟通协调", "制定方案", "组织实施", "跟踪评估"},
		Duration:       "2-4周",
		Stakeholders:   []string{"居民", "社区", "物业", "调解员"},
		SuccessFactors: []string{"及时介入", "公正调解", "建立机制"},
	},
	governance.CategoryEnvironmentGovernance: {
		KeySteps:       []string{"问题调研", "制度建设", "宣传教育", "设施完善", "监督管理"},
		Duration:       "1-3个月",
		Stakeholders:   []string{"居民", "物业", "环保部门", "志愿者"},
		SuccessFactors: []string{"制度保障", "全民参与", "长效管理"},
	},
	governance.CategoryCommunityService: {
		KeySteps:       []string{"需求调研", "资源整合", "服务设计", "试点实施", "推广优化"},
		Duration:       "1-6个月",
		Stakeholders:   []string{"居民", "社区", "服务机构", "政府部门"},
		SuccessFactors: []string{"需求导向", "资源整合", "持续改进"},
	},
}

// TemplateFor returns the category template, if one exists.
func TemplateFor(c governance.Category) (Template, bool) {
	t, ok := templates[c]
	return t, ok
}

// Guide renders the template as prompt guidance.
func (t Template) Guide() string {
	return prompt.NewBuilder().
		AddField("关键步骤", strings.Join(t.KeySteps, " → ")).
		AddField("典型周期", t.Duration).
		AddField("主要参与方", strings.Join(t.Stakeholders, "、")).
		AddField("成功要素", strings.Join(t.SuccessFactors, "、")).
		Build()
}

// FormatCases renders case references for the solution prompt, one line per fact.
func FormatCases(cases []governance.CaseReference) string {
	if len(cases) == 0 {
		return "暂无相关成功案例"
	}
	b := prompt.NewBuilder()
	for i, c := range cases {
		b.AddSection(fmt.Sprintf("案例 %d: %s", i+1, c.Title), "").
			AddField("问题类型", c.Category.Label()).
			AddField("相似度", fmt.Sprintf("%.2f", c.Relevance)).
			AddField("关键措施", strings.Join(limit(c.KeyMeasures, 3), "; ")).
			AddField("成功因素", strings.Join(limit(c.SuccessFactors, 2), "; ")).
			AddField("适用条件", strings.Join(limit(c.ApplicableConditions, 2), "; "))
	}
	return strings.TrimSpace(b.Build())
}

// FormatPolicies renders policy references for the solution prompt.
func FormatPolicies(policies []governance.PolicyReference) string {
	if len(policies) == 0 {
		return "请参考当地相关政策法规"
	}
	b := prompt.NewBuilder()
	for i, p := range policies {
		b.AddSection(fmt.Sprintf("政策 %d: %s", i+1, p.Title), "").
			AddField("层级", p.AdminLevel.Label()).
			AddField("相关性", fmt.Sprintf("%.2f", p.Relevance)).
			AddField("关键条款", strings.Join(limit(p.KeyProvisions, 2), "; ")).
			AddField("合规要求", strings.Join(limit(p.ComplianceRequirements, 2), "; "))
	}
	return strings.TrimSpace(b.Build())
}
