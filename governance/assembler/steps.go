package assembler

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/sweetpotato0/gov-allin/governance"
)

// Strategy names reported by ParseSteps.
const (
	StrategyJSON    = "json"
	StrategyLines   = "lines"
	StrategyDefault = "default"
)

const maxLineSteps = 10

// StepStrategy turns generated text into plan steps. ok is false when the
// strategy does not recognise the text.
type StepStrategy struct {
	Name  string
	Parse func(text string) (steps []governance.PlanStep, ok bool)
}

// DefaultStrategies returns the parse chain: a JSON array, numbered lines,
// then the two default steps.
func DefaultStrategies() []StepStrategy {
	return []StepStrategy{
		{Name: StrategyJSON, Parse: parseJSONSteps},
		{Name: StrategyLines, Parse: parseLineSteps},
		{Name: StrategyDefault, Parse: func(string) ([]governance.PlanStep, bool) { return DefaultSteps(), true }},
	}
}

// ParseSteps runs the default chain and reports which strategy produced the steps.
func ParseSteps(text string) ([]governance.PlanStep, string) {
	return parseWith(DefaultStrategies(), text)
}

func parseWith(chain []StepStrategy, text string) ([]governance.PlanStep, string) {
	for _, s := range chain {
		if steps, ok := s.Parse(text); ok && len(steps) > 0 {
			return steps, s.Name
		}
	}
	return DefaultSteps(), StrategyDefault
}

// DefaultSteps is the plan used when nothing could be parsed.
func DefaultSteps() []governance.PlanStep {
	return []governance.PlanStep{
		{
			Step:             1,
			Title:            "问题调研分析",
			Description:      "深入了解问题现状，分析根本原因",
			Duration:         "1周",
			ResponsibleParty: "社区工作组",
			ResourcesNeeded:  []string{"调研人员", "调研工具"},
			SuccessCriteria:  "完成问题分析报告",
			RiskMitigation:   "多方验证信息准确性",
		},
		{
			Step:             2,
			Title:            "制定解决方案",
			Description:      "基于调研结果制定具体解决方案",
			Duration:         "3-5天",
			ResponsibleParty: "工作小组",
			ResourcesNeeded:  []string{"专业人员", "参考资料"},
			SuccessCriteria:  "方案获得各方认可",
			RiskMitigation:   "充分征求意见",
		},
	}
}

type rawStep struct {
	Step             json.RawMessage `json:"step"`
	Title            string          `json:"title"`
	Description      string          `json:"description"`
	Duration         string          `json:"duration"`
	ResponsibleParty string          `json:"responsible_party"`
	ResourcesNeeded  json.RawMessage `json:"resources_needed"`
	SuccessCriteria  string          `json:"success_criteria"`
	RiskMitigation   string          `json:"risk_mitigation"`
}

func parseJSONSteps(text string) ([]governance.PlanStep, bool) {
	raw, ok := jsonArray(text)
	if !ok {
		return nil, false
	}
	var items []rawStep
	if err := json.Unmarshal([]byte(raw), &items); err != nil || len(items) == 0 {
		return nil, false
	}
	steps := make([]governance.PlanStep, 0, len(items))
	for i, it := range items {
		n := stepNumber(it.Step)
		if n <= 0 {
			n = i + 1
		}
		steps = append(steps, governance.PlanStep{
			Step:             n,
			Title:            strings.TrimSpace(it.Title),
			Description:      strings.TrimSpace(it.Description),
			Duration:         strings.TrimSpace(it.Duration),
			ResponsibleParty: strings.TrimSpace(it.ResponsibleParty),
			ResourcesNeeded:  resourceList(it.ResourcesNeeded),
			SuccessCriteria:  strings.TrimSpace(it.SuccessCriteria),
			RiskMitigation:   strings.TrimSpace(it.RiskMitigation),
		})
	}
	return steps, true
}

// jsonArray finds the step array: a ```json fence first, then the outermost
// brackets of the text.
func jsonArray(text string) (string, bool) {
	if start := strings.Index(text, "```json"); start >= 0 {
		body := text[start+len("```json"):]
		if end := strings.Index(body, "```"); end >= 0 {
			body = strings.TrimSpace(body[:end])
			if strings.HasPrefix(body, "[") {
				return body, true
			}
		}
	}
	start := strings.Index(text, "[")
	end := strings.LastIndex(text, "]")
	if start < 0 || end <= start {
		return "", false
	}
	return text[start : end+1], true
}

// Prose returns text with its ```json step block removed.
func Prose(text string) string {
	start := strings.Index(text, "```json")
	if start < 0 {
		return text
	}
	rest := text[start+len("```json"):]
	end := strings.Index(rest, "```")
	if end < 0 {
		return text[:start]
	}
	return text[:start] + rest[end+len("```"):]
}

func stepNumber(raw json.RawMessage) int {
	if len(raw) == 0 {
		return 0
	}
	var n int
	if err := json.Unmarshal(raw, &n); err == nil {
		return n
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if v, err := strconv.Atoi(strings.TrimSpace(s)); err == nil {
			return v
		}
	}
	return 0
}

// resources may be a list or a single comma separated string
func resourceList(raw json.RawMessage) []string {
	if len(raw) == 0 {
		return nil
	}
	var list []string
	if err := json.Unmarshal(raw, &list); err == nil {
		return compact(list)
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return compact(strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == '，' || r == '、' }))
	}
	return nil
}

func compact(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func parseLineSteps(text string) ([]governance.PlanStep, bool) {
	var steps []governance.PlanStep
	var desc []string
	flush := func() {
		if len(steps) > 0 {
			steps[len(steps)-1].Description = strings.Join(desc, " ")
		}
		desc = desc[:0]
	}
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if isStepHeader(line, len(steps)+1) {
			if len(steps) == maxLineSteps {
				break
			}
			flush()
			steps = append(steps, governance.PlanStep{
				Step:             len(steps) + 1,
				Title:            line,
				Duration:         "待定",
				ResponsibleParty: "相关部门",
				SuccessCriteria:  "按计划完成",
				RiskMitigation:   "加强监督",
			})
			continue
		}
		if len(steps) > 0 {
			desc = append(desc, line)
		}
	}
	flush()
	return steps, len(steps) > 0
}

func isStepHeader(line string, counter int) bool {
	n := strconv.Itoa(counter)
	switch {
	case strings.HasPrefix(line, n+"."), strings.HasPrefix(line, n+"、"):
		return true
	case strings.HasPrefix(line, "第"+n):
		return true
	case strings.Contains(line, "步骤"):
		return true
	case strings.HasPrefix(strings.ToLower(line), "step"):
		return true
	}
	return false
}
