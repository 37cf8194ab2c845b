package common

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// jobPostingSelectors locate the posting body on common job boards
var jobPostingSelectors = []string{
	".job-description",
	"#job-description",
	".job-details",
	".posting-content",
	"[data-testid='job-description']",
	"main",
	"article",
	"#content",
	".content",
}

const (
	noiseSelectors = "nav, footer, header, script, style, noscript, iframe, svg, aside, .ad, .ads, .sidebar, .cookie-banner, .popup"
	blockSelectors = "p, div, li, ul, ol, section, article, h1, h2, h3, h4, h5, h6, tr, dt, dd, pre, blockquote"
)

// ExtractText returns the readable text of an HTML document, one block per
// line, so section headings survive as their own lines.
func ExtractText(html string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", fmt.Errorf("failed to parse HTML: %w", err)
	}

	doc.Find(noiseSelectors).Remove()
	doc.Find("br").ReplaceWithHtml("\n")
	doc.Find(blockSelectors).Each(func(_ int, s *goquery.Selection) {
		s.PrependHtml("\n")
		s.AppendHtml("\n")
	})

	var content *goquery.Selection
	for _, selector := range jobPostingSelectors {
		if sel := doc.Find(selector); sel.Length() > 0 {
			content = sel.First()
			break
		}
	}
	if content == nil {
		content = doc.Find("body")
	}

	return cleanWhitespace(content.Text()), nil
}

// cleanWhitespace trims each line, collapses inner runs of spaces and drops
// blank lines.
func cleanWhitespace(text string) string {
	var cleaned []string
	for line := range strings.SplitSeq(text, "\n") {
		line = strings.Join(strings.Fields(line), " ")
		if line != "" {
			cleaned = append(cleaned, line)
		}
	}
	return strings.Join(cleaned, "\n")
}
