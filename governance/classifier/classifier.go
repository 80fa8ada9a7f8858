// Package classifier assigns a governance category to a free-text problem
// description using an ordered keyword rule table.
package classifier

import (
	"strings"

	"github.com/sweetpotato0/gov-allin/governance"
)

// Predicate reports whether a lower-cased description matches a rule.
type Predicate func(description string) bool

// Rule pairs a category with the predicate that selects it.
type Rule struct {
	Category  governance.Category
	Predicate Predicate
}

// Keywords returns a predicate matching when any keyword is a substring of
// the description. Matching ignores case.
func Keywords(keywords ...string) Predicate {
	lowered := make([]string, 0, len(keywords))
	for _, k := range keywords {
		if k = strings.ToLower(strings.TrimSpace(k)); k != "" {
			lowered = append(lowered, k)
		}
	}
	return func(description string) bool {
		for _, k := range lowered {
			if strings.Contains(description, k) {
				return true
			}
		}
		return false
	}
}

// DefaultRules returns the built-in table in priority order.
func DefaultRules() []Rule {
	return []Rule{
		{governance.CategoryNeighborDispute, Keywords(
			"邻里", "纠纷", "矛盾", "争吵", "冲突", "邻居",
			"neighbor", "neighbour", "dispute", "conflict", "quarrel")},
		{governance.CategoryEnvironmentGovernance, Keywords(
			"垃圾", "环境", "卫生", "绿化", "污染", "分类",
			"garbage", "waste", "trash", "environment", "sanitation", "pollution", "recycling")},
		{governance.CategoryCommunityService, Keywords(
			"服务", "便民", "社区", "居民", "公共",
			"community", "service", "resident", "public")},
		{governance.CategorySafetyManagement, Keywords(
			"安全", "消防", "治安", "防范", "监控",
			"safety", "fire", "security", "crime", "surveillance")},
		{governance.CategoryPolicyPromotion, Keywords(
			"宣传", "政策", "解读", "培训", "教育",
			"policy", "publicity", "promotion", "training", "education")},
		{governance.CategoryElderlyService, Keywords(
			"养老", "老年", "老人", "敬老",
			"elderly", "senior", "aged care", "pension")},
		{governance.CategoryParkingManagement, Keywords(
			"停车", "车位", "交通",
			"parking", "traffic", "vehicle")},
		{governance.CategoryDigitalDivide, Keywords(
			"智能", "手机", "数字", "网络", "健康码",
			"digital", "smartphone", "internet", "online")},
	}
}

// Classifier maps descriptions to categories. First matching rule wins.
type Classifier struct {
	rules []Rule
}

// Option configures a Classifier.
type Option func(*Classifier)

// WithRules replaces the rule table.
func WithRules(rules ...Rule) Option {
	return func(c *Classifier) {
		c.rules = append([]Rule(nil), rules...)
	}
}

// New creates a Classifier with the default rule table.
func New(opts ...Option) *Classifier {
	c := &Classifier{rules: DefaultRules()}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

// Classify returns the category of the first matching rule, or CategoryOther.
func (c *Classifier) Classify(description string) governance.Category {
	lowered := strings.ToLower(description)
	for _, r := range c.rules {
		if r.Predicate != nil && r.Predicate(lowered) {
			return r.Category
		}
	}
	return governance.CategoryOther
}

// Rules returns a copy of the active table.
func (c *Classifier) Rules() []Rule {
	return append([]Rule(nil), c.rules...)
}
