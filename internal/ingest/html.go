package ingest

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var (
	tagPattern        = regexp.MustCompile(`<\s*[a-zA-Z][^>]*>`)
	whitespacePattern = regexp.MustCompile(`[ \t]+`)
)

// PlainText reduces a feedback body to plain text. Support tickets often
// arrive as HTML email bodies; analyzing the markup skews sentiment and key
// phrases. Content without tags passes through unchanged.
func PlainText(content string) string {
	if !tagPattern.MatchString(content) {
		return content
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(content))
	if err != nil {
		return content
	}

	doc.Find("script, style").Remove()

	text := doc.Text()
	text = whitespacePattern.ReplaceAllString(text, " ")

	var lines []string
	for _, line := range strings.Split(text, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			lines = append(lines, trimmed)
		}
	}

	cleaned := strings.Join(lines, "\n")
	if cleaned == "" {
		return content
	}
	return cleaned
}
