package semantic

import (
	"context"
	"strings"

	"keyplan/internal/textproc"
	"keyplan/internal/validate"
)

// SubstringClassifier is the deterministic classifier: a keyword matches when
// it, or its canonical alias, literally occurs in the resume.
type SubstringClassifier struct{}

func (SubstringClassifier) ClassifyKeywordMatches(_ context.Context, keywords []string, resume string) (Classification, error) {
	lowered := strings.ToLower(resume)
	var tokens map[string]struct{}

	c := Classification{Matched: []string{}, Missed: []string{}, Reasoning: make(map[string]string, len(keywords))}
	for _, kw := range keywords {
		needle := strings.ToLower(strings.TrimSpace(kw))
		if needle != "" && strings.Contains(lowered, needle) {
			c.Matched = append(c.Matched, kw)
			c.Reasoning[kw] = "found verbatim in resume"
			continue
		}
		if alias := validate.NormalizeKeyword(kw); alias != needle {
			if tokens == nil {
				tokens = textproc.TokenSet(resume)
			}
			if validate.IsKeywordPresent(alias, lowered, tokens) {
				c.Matched = append(c.Matched, kw)
				c.Reasoning[kw] = "found as " + alias + " in resume"
				continue
			}
		}
		c.Missed = append(c.Missed, kw)
		c.Reasoning[kw] = "not found in resume"
	}
	return c, nil
}
