package preprocess

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/PuerkitoBio/goquery"
)

var (
	reSpaces   = regexp.MustCompile(`[ \t\x{3000}]+`)
	reNewlines = regexp.MustCompile(`\n{3,}`)
	reMarkup   = regexp.MustCompile(`(?i)<(html|body|div|p|span|table|h[1-6]|br)[\s>/]`)

	ocrFixes = strings.NewReplacer("ﬁ", "fi", "ﬂ", "fl", "—", "-", "–", "-", "•", "-")

	// boilerplate found on government portal pages
	noisePatterns = []string{
		"打印本页", "关闭窗口", "分享到", "【字体", "扫一扫在手机打开", "相关链接", "版权所有", "网站地图", "隐私政策",
	}
)

// CleanBasic removes control characters, fixes common OCR artifacts and collapses whitespace.
func CleanBasic(text string) string {
	if text == "" {
		return ""
	}

	b := strings.Map(func(r rune) rune {
		if r == '\n' {
			return r
		}
		if r == '\t' {
			return ' '
		}
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, strings.ReplaceAll(text, "\r\n", "\n"))

	b = ocrFixes.Replace(b)
	b = reSpaces.ReplaceAllString(b, " ")
	b = reNewlines.ReplaceAllString(b, "\n\n")

	lines := strings.Split(b, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSpace(l)
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

// LooksLikeHTML reports whether the text carries HTML markup.
func LooksLikeHTML(text string) bool {
	return reMarkup.MatchString(text)
}

// HTMLToText extracts headings, paragraphs, list items and tables, one block per line.
func HTMLToText(html string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", err
	}
	doc.Find("script,style,nav,footer").Remove()

	var out []string
	doc.Find("h1,h2,h3,h4,p,li,table").Each(func(i int, s *goquery.Selection) {
		var text string
		switch goquery.NodeName(s) {
		case "table":
			text = parseTable(s)
		default:
			text = strings.TrimSpace(s.Text())
		}
		if text != "" {
			out = append(out, text)
		}
	})
	if len(out) == 0 {
		return strings.TrimSpace(doc.Text()), nil
	}
	return strings.Join(out, "\n"), nil
}

func parseTable(sel *goquery.Selection) string {
	var rows []string
	sel.Find("tr").Each(func(i int, tr *goquery.Selection) {
		var cols []string
		tr.Find("th,td").Each(func(j int, td *goquery.Selection) {
			cols = append(cols, strings.TrimSpace(td.Text()))
		})
		if len(cols) > 0 {
			rows = append(rows, strings.Join(cols, " | "))
		}
	})
	return strings.Join(rows, "\n")
}

// RemoveDuplicateLines drops repeated non-empty lines, keeping the first occurrence.
func RemoveDuplicateLines(text string) string {
	seen := map[string]struct{}{}
	var out []string
	for _, l := range strings.Split(text, "\n") {
		l = strings.TrimSpace(l)
		if l == "" {
			continue
		}
		if _, ok := seen[l]; ok {
			continue
		}
		seen[l] = struct{}{}
		out = append(out, l)
	}
	return strings.Join(out, "\n")
}

// RemoveWebNoise drops lines containing portal boilerplate.
func RemoveWebNoise(s string) string {
	lines := strings.Split(s, "\n")
	out := lines[:0]
	for _, l := range lines {
		skip := false
		for _, p := range noisePatterns {
			if strings.Contains(l, p) {
				skip = true
				break
			}
		}
		if !skip {
			out = append(out, l)
		}
	}
	return strings.Join(out, "\n")
}

// Preprocess converts HTML bodies to text when needed and cleans the result.
// Markup that cannot be parsed is cleaned as plain text.
func Preprocess(raw string) string {
	text := raw
	if LooksLikeHTML(raw) {
		if converted, err := HTMLToText(raw); err == nil {
			text = converted
		}
	}
	text = CleanBasic(text)
	text = RemoveWebNoise(text)
	return RemoveDuplicateLines(text)
}
