package governance

import (
	"errors"
	"testing"

	apperrors "github.com/sweetpotato0/gov-allin/errors"
)

func TestParseCategory(t *testing.T) {
	tests := []struct {
		raw  string
		want Category
		ok   bool
	}{
		{raw: "neighbor_dispute", want: CategoryNeighborDispute, ok: true},
		{raw: "Neighbor_Dispute", want: CategoryNeighborDispute, ok: true},
		{raw: "环境治理", want: CategoryEnvironmentGovernance, ok: true},
		{raw: "社区治理", want: CategoryCommunityService, ok: true},
		{raw: "民生服务", want: CategoryCommunityService, ok: true},
		{raw: "其他", want: CategoryOther, ok: true},
		{raw: "unknown", ok: false},
		{raw: "", ok: false},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, ok := ParseCategory(tt.raw)
			if ok != tt.ok || got != tt.want {
				t.Errorf("ParseCategory(%q) = (%q, %v), want (%q, %v)", tt.raw, got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestParseAdminLevel(t *testing.T) {
	if l, ok := ParseAdminLevel("省级"); !ok || l != AdminLevelProvincial {
		t.Errorf("expected provincial, got %q %v", l, ok)
	}
	if l, ok := ParseAdminLevel("STREET"); !ok || l != AdminLevelStreet {
		t.Errorf("expected street, got %q %v", l, ok)
	}
	if _, ok := ParseAdminLevel("village"); ok {
		t.Errorf("village should not parse")
	}
}

func TestProblemValidate(t *testing.T) {
	budget := -1.0
	tests := []struct {
		name    string
		problem Problem
		wantErr bool
	}{
		{name: "valid", problem: Problem{Description: "小区停车难", Urgency: 3}},
		{name: "missing description", problem: Problem{Urgency: 3}, wantErr: true},
		{name: "urgency too high", problem: Problem{Description: "x", Urgency: 6}, wantErr: true},
		{name: "urgency zero", problem: Problem{Description: "x"}, wantErr: true},
		{name: "unknown category", problem: Problem{Description: "x", Urgency: 1, Category: "weather"}, wantErr: true},
		{name: "negative budget", problem: Problem{Description: "x", Urgency: 1, Budget: &budget}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.problem.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, apperrors.ErrInvalidInput) {
				t.Errorf("expected ErrInvalidInput, got %v", err)
			}
		})
	}
}

func TestProblemCloneIsDeep(t *testing.T) {
	budget := 1000.0
	p := Problem{Description: "d", Urgency: 2, Stakeholders: []string{"居民"}, Budget: &budget}
	c := p.WithCategory(CategoryParkingManagement)
	c.Stakeholders[0] = "物业"
	*c.Budget = 5

	if p.Stakeholders[0] != "居民" || *p.Budget != 1000 {
		t.Fatalf("original mutated: %#v", p)
	}
	if p.Category != "" || c.Category != CategoryParkingManagement {
		t.Fatalf("category not applied to copy only")
	}
}

func TestResourceRequirementsMentions(t *testing.T) {
	r := ResourceRequirements{Other: []string{"持续的政策支持"}}
	if !r.Mentions("持续") {
		t.Errorf("expected mention in Other")
	}
	if r.Mentions("资金") {
		t.Errorf("unexpected mention")
	}
}
