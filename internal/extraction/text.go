package extraction

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var (
	htmlTagPattern   = regexp.MustCompile(`(?i)<(?:!--|!doctype\s|/?(?:` + htmlElementNames + `)(?:\s[^<>]*)?/?>)`)
	whitespaceRun    = regexp.MustCompile(`\s+`)
	bulletPrefix     = regexp.MustCompile(`^(?:[-*•·▪◦]|\d+[.)])\s+`)
	blockElementList = "p, div, li, tr, section, article, h1, h2, h3, h4, h5, h6, ul, ol, table"
)

// htmlElementNames lists the elements that mark content as markup. Angle
// brackets around anything else, such as Java generics or an address in
// "Jane Doe <jane@example.com>", are kept as text.
const htmlElementNames = "html|head|body|title|meta|link|script|style|noscript|" +
	"p|div|span|br|hr|h[1-6]|ul|ol|li|dl|dt|dd|table|thead|tbody|tr|td|th|" +
	"section|article|header|footer|nav|main|aside|blockquote|pre|code|" +
	"a|b|i|u|em|strong|small|sub|sup|font|img"

// LooksLikeHTML reports whether content contains tags of known HTML elements.
func LooksLikeHTML(content string) bool {
	return htmlTagPattern.MatchString(content)
}

// NormalizeText turns raw description or resume content into plain lines.
// Markup is flattened with line breaks kept at block boundaries, line endings
// are normalized, runs of whitespace collapse to one space and blank lines
// are dropped.
func NormalizeText(content string) (string, error) {
	if strings.TrimSpace(content) == "" {
		return "", nil
	}
	if LooksLikeHTML(content) {
		text, err := htmlToText(content)
		if err != nil {
			return "", err
		}
		content = text
	}
	return cleanLines(content), nil
}

// htmlToText extracts visible text from HTML.
func htmlToText(html string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", fmt.Errorf("failed to parse HTML: %w", err)
	}

	doc.Find("script, style, noscript, head").Remove()
	doc.Find("br").ReplaceWithHtml("\n")
	doc.Find(blockElementList).Each(func(_ int, s *goquery.Selection) {
		s.AppendHtml("\n")
	})

	return doc.Text(), nil
}

// cleanLines normalizes line endings, collapses whitespace and strips bullets.
func cleanLines(content string) string {
	content = strings.ReplaceAll(content, "\r\n", "\n")
	content = strings.ReplaceAll(content, "\r", "\n")

	lines := strings.Split(content, "\n")
	cleaned := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimSpace(whitespaceRun.ReplaceAllString(line, " "))
		line = bulletPrefix.ReplaceAllString(line, "")
		if line != "" {
			cleaned = append(cleaned, line)
		}
	}
	return strings.Join(cleaned, "\n")
}
