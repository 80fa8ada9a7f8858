package classifier

import (
	"testing"

	"github.com/sweetpotato0/gov-allin/governance"
)

func TestClassify(t *testing.T) {
	c := New()
	tests := []struct {
		description string
		want        governance.Category
	}{
		{"neighbor noise dispute", governance.CategoryNeighborDispute},
		{"楼上邻居装修噪音扰民", governance.CategoryNeighborDispute},
		{"小区垃圾分类执行不到位", governance.CategoryEnvironmentGovernance},
		{"Garbage piles up near the gate", governance.CategoryEnvironmentGovernance},
		{"便民服务点开放时间太短", governance.CategoryCommunityService},
		{"高层楼道堆放杂物存在消防隐患", governance.CategorySafetyManagement},
		{"新出台医保报销办法需要解读", governance.CategoryPolicyPromotion},
		{"独居老人日常照料缺失", governance.CategoryElderlyService},
		{"小区车位不足乱停车", governance.CategoryParkingManagement},
		{"不会用手机挂号", governance.CategoryDigitalDivide},
		{"路灯坏了", governance.CategoryOther},
		{"", governance.CategoryOther},
	}
	for _, tt := range tests {
		t.Run(tt.description, func(t *testing.T) {
			if got := c.Classify(tt.description); got != tt.want {
				t.Errorf("Classify(%q) = %q, want %q", tt.description, got, tt.want)
			}
		})
	}
}

func TestClassifyPriorityOrder(t *testing.T) {
	// matches both neighbor dispute and parking; the earlier rule wins
	got := New().Classify("邻居占用车位引发纠纷")
	if got != governance.CategoryNeighborDispute {
		t.Errorf("expected neighbor dispute to win, got %q", got)
	}
}

func TestWithRules(t *testing.T) {
	c := New(WithRules(
		Rule{Category: governance.CategoryParkingManagement, Predicate: Keywords("Bike")},
	))
	if got := c.Classify("shared BIKES everywhere"); got != governance.CategoryParkingManagement {
		t.Errorf("custom rule not applied, got %q", got)
	}
	if got := c.Classify("邻里纠纷"); got != governance.CategoryOther {
		t.Errorf("default rules should be replaced, got %q", got)
	}
	if len(c.Rules()) != 1 {
		t.Errorf("expected one rule, got %d", len(c.Rules()))
	}
}
