// Package compliance scores how well plan steps line up with the compliance
// requirements extracted from policy references.
package compliance

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"unicode"

	"github.com/sweetpotato0/gov-allin/governance"
	"github.com/sweetpotato0/gov-allin/pkg/logging"
)

const (
	// AlignmentThreshold is the Jaccard similarity above which a step and a
	// requirement count as aligned.
	AlignmentThreshold = 0.1

	CompliantScore = 0.8
	WarningScore   = 0.5
)

const (
	issueNoPolicy      = "缺少相关政策依据"
	issuePartial       = "部分步骤可能需要政策依据支撑"
	issueDivergent     = "方案与现行政策存在较大差异"
	recommendVerify    = "建议进一步核实相关政策要求"
	recommendLegal     = "考虑咨询法律专业人士"
	recommendManual    = "建议人工审核政策合规性"
	issueCheckFailedFm = "检查过程出错: %v"
)

// Checker runs compliance checks. It never fails; internal errors are
// reported as an error status.
type Checker struct {
	threshold float64
	logger    *slog.Logger
}

// Option configures a Checker.
type Option func(*Checker)

// WithThreshold overrides the alignment threshold.
func WithThreshold(t float64) Option {
	return func(c *Checker) {
		if t >= 0 && t < 1 {
			c.threshold = t
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Checker) {
		if l != nil {
			c.logger = l
		}
	}
}

// New creates a Checker.
func New(opts ...Option) *Checker {
	c := &Checker{
		threshold: AlignmentThreshold,
		logger:    logging.WithComponent("compliance"),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

// Check scores steps against every policy's compliance requirements.
func (c *Checker) Check(ctx context.Context, steps []governance.PlanStep, policies []governance.PolicyReference) (result governance.ComplianceResult) {
	defer func() {
		if rec := recover(); rec != nil {
			c.logger.Error("compliance check failed", "panic", rec)
			result = Failed(fmt.Errorf("%v", rec))
		}
	}()

	if err := ctx.Err(); err != nil {
		c.logger.Warn("compliance check skipped", "error", err)
		return Failed(err)
	}

	result = governance.ComplianceResult{
		OverallCompliance: governance.ComplianceCompliant,
		Issues:            []string{},
		Recommendations:   []string{},
	}
	if len(policies) == 0 {
		result.OverallCompliance = governance.ComplianceWarning
		result.Issues = append(result.Issues, issueNoPolicy)
		return result
	}

	aligned := 0
	for _, step := range steps {
		stepTokens := Tokens(stepText(step))
		for _, policy := range policies {
			for _, req := range policy.ComplianceRequirements {
				if Jaccard(stepTokens, Tokens(req)) > c.threshold {
					aligned++
				}
			}
		}
	}

	if total := len(steps) * len(policies); total > 0 {
		result.ComplianceScore = float64(aligned) / float64(total)
	}
	if result.ComplianceScore > 1 {
		result.ComplianceScore = 1
	}

	switch {
	case result.ComplianceScore >= CompliantScore:
		result.OverallCompliance = governance.ComplianceCompliant
	case result.ComplianceScore >= WarningScore:
		result.OverallCompliance = governance.ComplianceWarning
		result.Issues = append(result.Issues, issuePartial)
	default:
		result.OverallCompliance = governance.ComplianceNonCompliant
		result.Issues = append(result.Issues, issueDivergent)
	}
	if result.ComplianceScore < 1 {
		result.Recommendations = append(result.Recommendations, recommendVerify, recommendLegal)
	}

	c.logger.Debug("compliance checked",
		"steps", len(steps),
		"policies", len(policies),
		"aligned", aligned,
		"score", result.ComplianceScore,
		"status", result.OverallCompliance,
	)
	return result
}

// Failed builds the result reported when a check cannot complete.
func Failed(err error) governance.ComplianceResult {
	return governance.ComplianceResult{
		OverallCompliance: governance.ComplianceError,
		Issues:            []string{fmt.Sprintf(issueCheckFailedFm, err)},
		Recommendations:   []string{recommendManual},
	}
}

func stepText(step governance.PlanStep) string {
	if strings.TrimSpace(step.Description) != "" {
		return step.Description
	}
	return step.Title
}

// Tokens splits text into a token set. Whitespace-separated words are
// lower-cased; runs of Han characters contribute their rune bigrams since
// Chinese text carries no spaces.
func Tokens(text string) map[string]struct{} {
	set := map[string]struct{}{}
	for _, field := range strings.Fields(text) {
		var han []rune
		var word strings.Builder
		flushHan := func() {
			switch len(han) {
			case 0:
			case 1:
				set[string(han)] = struct{}{}
			default:
				for i := 0; i+1 < len(han); i++ {
					set[string(han[i:i+2])] = struct{}{}
				}
			}
			han = han[:0]
		}
		flushWord := func() {
			if word.Len() > 0 {
				set[strings.ToLower(word.String())] = struct{}{}
				word.Reset()
			}
		}
		for _, r := range field {
			switch {
			case unicode.Is(unicode.Han, r):
				flushWord()
				han = append(han, r)
			case unicode.IsLetter(r) || unicode.IsDigit(r):
				flushHan()
				word.WriteRune(r)
			default:
				flushHan()
				flushWord()
			}
		}
		flushHan()
		flushWord()
	}
	return set
}

// Jaccard returns |a∩b| / |a∪b|, or 0 when both sets are empty.
func Jaccard(a, b map[string]struct{}) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 0
	}
	inter := 0
	for t := range a {
		if _, ok := b[t]; ok {
			inter++
		}
	}
	union := len(a) + len(b) - inter
	return float64(inter) / float64(union)
}
