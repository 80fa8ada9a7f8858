package policyranker

import (
	"strings"

	"github.com/sweetpotato0/gov-allin/governance"
)

// LevelRule selects an admin level when its predicate matches.
type LevelRule struct {
	Level     governance.AdminLevel
	Predicate func(text string) bool
}

func containsAny(keywords ...string) func(string) bool {
	return func(text string) bool {
		for _, k := range keywords {
			if strings.Contains(text, k) {
				return true
			}
		}
		return false
	}
}

func either(a, b func(string) bool) func(string) bool {
	return func(text string) bool { return a(text) || b(text) }
}

var nonDistrict = strings.NewReplacer("社区", "", "自治区", "", "特别行政区", "")

// mentionsDistrict reports a 区 that is not part of 社区 or 自治区.
func mentionsDistrict(text string) bool {
	return strings.Contains(nonDistrict.Replace(text), "区")
}

// TagRules match the admin_level metadata field, including directory-style
// tags such as "01_中央政策". Order is central first, street last.
func TagRules() []LevelRule {
	return []LevelRule{
		{governance.AdminLevelCentral, containsAny("01_中央政策", "中央", "国家")},
		{governance.AdminLevelProvincial, containsAny("02_省级政策", "省级", "省", "自治区", "直辖市")},
		{governance.AdminLevelMunicipal, containsAny("03_市级政策", "市级", "市")},
		{governance.AdminLevelCounty, either(containsAny("04_县级政策", "县级", "区县", "区级", "县"), mentionsDistrict)},
		{governance.AdminLevelStreet, containsAny("05_街道级政策", "街道级", "街道", "社区", "乡", "镇")},
	}
}

// TextRules match the issuing authority, region, title and source when no
// usable admin_level tag is present.
func TextRules() []LevelRule {
	return []LevelRule{
		{governance.AdminLevelCentral, containsAny("国务院", "中共中央", "中央办公厅", "国务院办公厅", "中央政策", "全国人民代表大会", "部委")},
		{governance.AdminLevelProvincial, containsAny("省", "自治区", "直辖市", "省人民政府", "省政府", "省委", "省办公厅", "省级政策")},
		{governance.AdminLevelMunicipal, containsAny("市", "市人民政府", "市政府", "市委", "市办公室", "市级政策")},
		{governance.AdminLevelCounty, either(containsAny("县", "区人民政府", "县人民政府", "区政府", "县政府", "县级政策"), mentionsDistrict)},
		{governance.AdminLevelStreet, containsAny("街道", "社区", "镇人民政府", "乡人民政府", "街道办事处", "街道级政策")},
	}
}

// LevelInferrer resolves the admin level of a policy document.
type LevelInferrer struct {
	tagRules  []LevelRule
	textRules []LevelRule
	fallback  governance.AdminLevel
}

// NewLevelInferrer returns an inferrer using the built-in rule tables. An
// invalid fallback is replaced by central.
func NewLevelInferrer(fallback governance.AdminLevel) *LevelInferrer {
	if !fallback.Valid() {
		fallback = governance.AdminLevelCentral
	}
	return &LevelInferrer{
		tagRules:  TagRules(),
		textRules: TextRules(),
		fallback:  fallback,
	}
}

// Infer checks the admin_level field first, then keyword rules over the
// descriptive fields, then returns the fallback level.
func (l *LevelInferrer) Infer(meta map[string]any) governance.AdminLevel {
	if tag := metaString(meta, "admin_level"); tag != "" {
		if level, ok := governance.ParseAdminLevel(tag); ok {
			return level
		}
		if level, ok := firstMatch(l.tagRules, tag); ok {
			return level
		}
	}

	var parts []string
	for _, key := range []string{"authority", "region", "title", "source"} {
		if v := metaString(meta, key); v != "" {
			parts = append(parts, v)
		}
	}
	if level, ok := firstMatch(l.textRules, strings.Join(parts, " ")); ok {
		return level
	}
	return l.fallback
}

func firstMatch(rules []LevelRule, text string) (governance.AdminLevel, bool) {
	if text == "" {
		return "", false
	}
	for _, r := range rules {
		if r.Predicate(text) {
			return r.Level, true
		}
	}
	return "", false
}

// PolicyHierarchy lists the admin levels whose policies apply to a location,
// highest authority first. Central policy always applies.
func PolicyHierarchy(location string) []governance.AdminLevel {
	applies := map[governance.AdminLevel]bool{governance.AdminLevelCentral: true}
	has := func(keys ...string) bool { return containsAny(keys...)(location) }

	if has("省", "自治区", "直辖市") {
		applies[governance.AdminLevelProvincial] = true
	}
	if has("市") {
		applies[governance.AdminLevelProvincial] = true
		applies[governance.AdminLevelMunicipal] = true
	}
	if has("县") || mentionsDistrict(location) {
		applies[governance.AdminLevelProvincial] = true
		applies[governance.AdminLevelMunicipal] = true
		applies[governance.AdminLevelCounty] = true
	}
	if has("街道", "社区", "乡", "镇") {
		for _, level := range governance.AdminLevels() {
			applies[level] = true
		}
	}

	out := make([]governance.AdminLevel, 0, len(applies))
	for _, level := range governance.AdminLevels() {
		if applies[level] {
			out = append(out, level)
		}
	}
	return out
}
