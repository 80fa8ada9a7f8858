package governance

import "strings"

// AdminLevel is the tier of government that issued a policy.
type AdminLevel string

const (
	AdminLevelCentral    AdminLevel = "central"
	AdminLevelProvincial AdminLevel = "provincial"
	AdminLevelMunicipal  AdminLevel = "municipal"
	AdminLevelCounty     AdminLevel = "county"
	AdminLevelStreet     AdminLevel = "street"
)

var adminLevelLabels = map[AdminLevel]string{
	AdminLevelCentral:    "中央",
	AdminLevelProvincial: "省级",
	AdminLevelMunicipal:  "市级",
	AdminLevelCounty:     "县级",
	AdminLevelStreet:     "街道",
}

// AdminLevels lists the levels from highest to lowest authority.
func AdminLevels() []AdminLevel {
	return []AdminLevel{
		AdminLevelCentral,
		AdminLevelProvincial,
		AdminLevelMunicipal,
		AdminLevelCounty,
		AdminLevelStreet,
	}
}

// Label returns the Chinese display name of the level.
func (l AdminLevel) Label() string {
	if label, ok := adminLevelLabels[l]; ok {
		return label
	}
	return string(l)
}

// Valid reports whether l is one of the five levels.
func (l AdminLevel) Valid() bool {
	_, ok := adminLevelLabels[l]
	return ok
}

// ParseAdminLevel accepts an exact level value or its Chinese label.
func ParseAdminLevel(raw string) (AdminLevel, bool) {
	raw = strings.TrimSpace(raw)
	if l := AdminLevel(strings.ToLower(raw)); l.Valid() {
		return l, true
	}
	for l, label := range adminLevelLabels {
		if raw == label {
			return l, true
		}
	}
	return "", false
}

// CaseReference is a precedent case retrieved for a problem.
type CaseReference struct {
	CaseID               string   `json:"case_id"`
	Title                string   `json:"title"`
	Category             Category `json:"category"`
	Relevance            float64  `json:"relevance"`
	KeyMeasures          []string `json:"key_measures,omitempty"`
	SuccessFactors       []string `json:"success_factors,omitempty"`
	ApplicableConditions []string `json:"applicable_conditions,omitempty"`
	Source               string   `json:"source"`
}

// PolicyReference is a policy document retrieved and re-ranked for a problem.
// Relevance is the weighted score and may exceed 1.
type PolicyReference struct {
	PolicyID               string     `json:"policy_id"`
	Title                  string     `json:"title"`
	AdminLevel             AdminLevel `json:"admin_level"`
	Region                 string     `json:"region,omitempty"`
	Relevance              float64    `json:"relevance"`
	KeyProvisions          []string   `json:"key_provisions,omitempty"`
	ComplianceRequirements []string   `json:"compliance_requirements,omitempty"`
	ImplementationGuidance []string   `json:"implementation_guidance,omitempty"`
	Source                 string     `json:"source"`
}
