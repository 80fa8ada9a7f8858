// Package governance holds the data model shared by the retrieval, assembly,
// evaluation and compliance components.
package governance

import (
	"fmt"
	"math"
	"strings"

	"github.com/sweetpotato0/gov-allin/config"
	apperrors "github.com/sweetpotato0/gov-allin/errors"
)

// Category is the closed set of problem categories.
type Category string

const (
	CategoryNeighborDispute       Category = "neighbor_dispute"
	CategoryEnvironmentGovernance Category = "environment_governance"
	CategoryCommunityService      Category = "community_service"
	CategorySafetyManagement      Category = "safety_management"
	CategoryPolicyPromotion       Category = "policy_promotion"
	CategoryElderlyService        Category = "elderly_service"
	CategoryParkingManagement     Category = "parking_management"
	CategoryDigitalDivide         Category = "digital_divide"
	CategoryOther                 Category = "other"
)

var categoryLabels = map[Category]string{
	CategoryNeighborDispute:       "邻里纠纷",
	CategoryEnvironmentGovernance: "环境治理",
	CategoryCommunityService:      "社区服务",
	CategorySafetyManagement:      "安全管理",
	CategoryPolicyPromotion:       "政策宣传",
	CategoryElderlyService:        "养老服务",
	CategoryParkingManagement:     "停车管理",
	CategoryDigitalDivide:         "数字鸿沟",
	CategoryOther:                 "其他",
}

// case libraries file some categories under broader names
var categoryAliases = map[string]Category{
	"民生服务": CategoryCommunityService,
	"社区治理": CategoryCommunityService,
}

// Categories lists every category, OTHER last.
func Categories() []Category {
	return []Category{
		CategoryNeighborDispute,
		CategoryEnvironmentGovernance,
		CategoryCommunityService,
		CategorySafetyManagement,
		CategoryPolicyPromotion,
		CategoryElderlyService,
		CategoryParkingManagement,
		CategoryDigitalDivide,
		CategoryOther,
	}
}

// Label returns the Chinese display name of the category.
func (c Category) Label() string {
	if label, ok := categoryLabels[c]; ok {
		return label
	}
	return string(c)
}

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	_, ok := categoryLabels[c]
	return ok
}

// ParseCategory accepts a category value, its Chinese label, or a case-library alias.
func ParseCategory(raw string) (Category, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", false
	}
	if c := Category(strings.ToLower(raw)); c.Valid() {
		return c, true
	}
	for c, label := range categoryLabels {
		if label == raw {
			return c, true
		}
	}
	if c, ok := categoryAliases[raw]; ok {
		return c, true
	}
	return "", false
}

// Problem is one governance problem submitted for a plan. It is built once per
// request and not modified afterwards; use the With* helpers to derive variants.
type Problem struct {
	Description     string   `json:"description"`
	Location        string   `json:"location"`
	Category        Category `json:"category,omitempty"`
	Urgency         int      `json:"urgency"`
	Stakeholders    []string `json:"stakeholders,omitempty"`
	Constraints     []string `json:"constraints,omitempty"`
	ExpectedOutcome string   `json:"expected_outcome,omitempty"`
	Timeline        string   `json:"timeline,omitempty"`
	Budget          *float64 `json:"budget,omitempty"`
}

// Validate checks the fields a pipeline run depends on.
func (p Problem) Validate() error {
	v := config.NewValidator()
	v.RequireNonEmpty("description", p.Description)
	v.ValidateRange("urgency", p.Urgency, 1, 5)
	if p.Category != "" {
		allowed := make([]string, 0, len(categoryLabels))
		for _, c := range Categories() {
			allowed = append(allowed, string(c))
		}
		v.ValidateOneOf("category", string(p.Category), allowed...)
	}
	if p.Budget != nil && *p.Budget < 0 {
		v.ValidateFloatRange("budget", *p.Budget, 0, math.MaxFloat64)
	}
	if err := v.Error(); err != nil {
		return fmt.Errorf("%w: %v", apperrors.ErrInvalidInput, err)
	}
	return nil
}

// Clone returns a deep copy so callers cannot mutate shared slices.
func (p Problem) Clone() Problem {
	out := p
	out.Stakeholders = append([]string(nil), p.Stakeholders...)
	out.Constraints = append([]string(nil), p.Constraints...)
	if p.Budget != nil {
		b := *p.Budget
		out.Budget = &b
	}
	return out
}

// WithCategory returns a copy carrying the given category.
func (p Problem) WithCategory(c Category) Problem {
	out := p.Clone()
	out.Category = c
	return out
}

// WithDescription returns a copy carrying a different description.
func (p Problem) WithDescription(desc string) Problem {
	out := p.Clone()
	out.Description = desc
	return out
}
