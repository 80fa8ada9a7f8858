package policyranker

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	maxProvisions   = 5
	maxRequirements = 3
	maxGuidance     = 3
	minSentence     = 10
	maxPlaceName    = 6
)

var (
	provisionKeywords   = []string{"规定", "要求", "应当", "必须", "禁止", "条例", "办法"}
	requirementKeywords = []string{"合规", "依法", "按照", "遵守", "执行", "落实", "comply", "must", "shall"}
	guidanceKeywords    = []string{"指导", "建议", "推进", "加强", "完善", "建立"}

	// longest first so 自治区 wins over 区 and 社区 over 区
	locationSuffixes = []string{"特别行政区", "自治区", "街道", "社区", "省", "市", "区", "县", "乡", "镇"}
)

// KeyProvisions returns up to five sentences carrying normative wording.
func KeyProvisions(content string) []string {
	return matchSentences(content, provisionKeywords, maxProvisions)
}

// ComplianceRequirements returns up to three sentences describing what must be complied with.
func ComplianceRequirements(content string) []string {
	return matchSentences(content, requirementKeywords, maxRequirements)
}

// ImplementationGuidance returns up to three sentences of implementation advice.
func ImplementationGuidance(content string) []string {
	return matchSentences(content, guidanceKeywords, maxGuidance)
}

func matchSentences(content string, keywords []string, limit int) []string {
	var out []string
	for _, sentence := range splitSentences(content) {
		if utf8.RuneCountInString(sentence) <= minSentence {
			continue
		}
		lowered := strings.ToLower(sentence)
		for _, k := range keywords {
			if strings.Contains(lowered, k) {
				out = append(out, sentence+"。")
				break
			}
		}
		if len(out) == limit {
			break
		}
	}
	return out
}

func splitSentences(content string) []string {
	fields := strings.FieldsFunc(content, func(r rune) bool {
		return r == '。' || r == '.'
	})
	out := fields[:0]
	for _, f := range fields {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}

// LocationTerms extracts place names from a location such as "广州市天河区".
// Each administrative unit yields its full name ("天河区") and, when at least
// two runes long, its bare name ("天河"). ASCII words are kept lower-cased.
func LocationTerms(location string) []string {
	var terms []string
	seen := map[string]bool{}
	add := func(term string) {
		if term != "" && !seen[term] {
			seen[term] = true
			terms = append(terms, term)
		}
	}

	runes := []rune(location)
	start := 0
	for i := 0; i < len(runes); {
		if !unicode.Is(unicode.Han, runes[i]) {
			i++
			start = i
			continue
		}
		suffix := suffixAt(runes, i)
		if suffix == "" || i == start {
			i++
			continue
		}
		from := start
		if i-from > maxPlaceName {
			from = i - maxPlaceName
		}
		name := string(runes[from:i])
		add(name + suffix)
		if i-from >= 2 {
			add(name)
		}
		i += utf8.RuneCountInString(suffix)
		start = i
	}

	for _, word := range strings.Fields(location) {
		if isASCIIWord(word) {
			add(strings.ToLower(word))
		}
	}
	return terms
}

func suffixAt(runes []rune, i int) string {
	rest := string(runes[i:])
	for _, s := range locationSuffixes {
		if strings.HasPrefix(rest, s) {
			return s
		}
	}
	return ""
}

func isASCIIWord(word string) bool {
	hasLetter := false
	for _, r := range word {
		if r > unicode.MaxASCII {
			return false
		}
		if unicode.IsLetter(r) {
			hasLetter = true
		}
	}
	return hasLetter
}
