// Package validate cross-checks surfaced keywords against their source text
// and groups keywords into remediation categories.
package validate

import (
	"fmt"
	"regexp"
	"slices"
	"strings"

	"keyplan/internal/textproc"
)

// Result reports which keywords literally occur in the job description.
type Result struct {
	Valid    []string `json:"valid"`
	Invalid  []string `json:"invalid"`
	Warnings []string `json:"warnings"`
}

// ValidateExtractedKeywords checks each keyword for case-insensitive
// containment in jobDescription. Misses are reported, never fatal.
func ValidateExtractedKeywords(keywords []string, jobDescription string) Result {
	res := Result{Valid: []string{}, Invalid: []string{}, Warnings: []string{}}
	lowered := textproc.Normalize(jobDescription)
	for _, kw := range keywords {
		needle := textproc.Normalize(strings.TrimSpace(kw))
		if needle != "" && strings.Contains(lowered, needle) {
			res.Valid = append(res.Valid, kw)
			continue
		}
		res.Invalid = append(res.Invalid, kw)
		res.Warnings = append(res.Warnings, fmt.Sprintf("keyword %q not found in job description", kw))
	}
	return res
}

// Category groups a keyword for display and remediation advice.
type Category string

const (
	CategoryExperience Category = "experience"
	CategoryTechnical  Category = "technical"
	CategoryTools      Category = "tools"
	CategorySoft       Category = "soft"
	CategoryDomain     Category = "domain"
)

var (
	experiencePattern = regexp.MustCompile(`(?i)\d+\s*\+?\s*(?:-\s*\d+\s*)?(?:years?|yrs?)\b|\byears?\s+of\s+experience\b|\bexperience\s+(?:with|in)\b`)
	acronymPattern    = regexp.MustCompile(`^[A-Z][A-Z0-9&/.+#-]{1,}$`)
	technicalPattern  = regexp.MustCompile(`(?i)\b(?:api|apis|ui|ux|sdk|rest|restful|frontend|front-end|backend|back-end|full[- ]stack|microservices?|architecture|database|cloud|algorithms?|data structures)\b`)
	toolsPattern      = regexp.MustCompile(`(?i)(?:^|[^\pL\pN])(?:figma|sketch|jira|confluence|slack|notion|asana|trello|excel|tableau|looker|power bi|salesforce|hubspot|github|gitlab|docker|kubernetes|terraform|jenkins|aws|gcp|azure|sql|python|java|javascript|typescript|golang|go|react|node\.js|snowflake|airflow|dbt|kafka|spark|c\+\+|c#)(?:$|[^\pL\pN+#])`)
	softPattern       = regexp.MustCompile(`(?i)\b(?:communication|leadership|collaborat\w*|teamwork|mentor\w*|problem[- ]solving|ownership|stakeholders?|presentation|negotiation|empathy|adaptab\w*|initiative|organi[sz]ation\w*|interpersonal|critical thinking|time management|detail[- ]oriented)\b`)
)

// CategorizeKeyword classifies keyword with a fixed rule order:
// experience, technical, tools, soft, then domain.
func CategorizeKeyword(keyword string) Category {
	kw := strings.TrimSpace(keyword)
	switch {
	case experiencePattern.MatchString(kw):
		return CategoryExperience
	case acronymPattern.MatchString(kw), technicalPattern.MatchString(kw):
		return CategoryTechnical
	case toolsPattern.MatchString(kw):
		return CategoryTools
	case softPattern.MatchString(kw):
		return CategorySoft
	default:
		return CategoryDomain
	}
}

var suggestions = map[Category]string{
	CategoryExperience: "Quantify your years and scope of hands-on work for this area in your experience section.",
	CategoryTechnical:  "Add a project or bullet that shows you building with this technology and the result it produced.",
	CategoryTools:      "List this tool in your skills section and reference it in a bullet where you used it.",
	CategorySoft:       "Show this skill through a concrete accomplishment rather than listing it as a trait.",
	CategoryDomain:     "Highlight relevant industry context or domain work that connects your experience to this area.",
}

// SuggestionForKeyword returns the canned remediation text for keyword.
func SuggestionForKeyword(keyword string) string {
	return suggestions[CategorizeKeyword(keyword)]
}

// IsKeywordPresent reports whether keyword occurs in the resume. Phrases are
// matched as substrings of resumeLower; single words by membership in tokens.
func IsKeywordPresent(keyword, resumeLower string, tokens map[string]struct{}) bool {
	kw := strings.ToLower(strings.TrimSpace(keyword))
	if kw == "" {
		return false
	}
	if strings.ContainsAny(kw, " \t") {
		return strings.Contains(resumeLower, kw)
	}
	_, ok := tokens[kw]
	return ok
}

// MatchDebug explains how IsKeywordPresent decided.
type MatchDebug struct {
	Keyword        string   `json:"keyword"`
	Normalized     string   `json:"normalized"`
	Phrase         bool     `json:"phrase"`
	Strategy       string   `json:"strategy"`
	SubstringFound bool     `json:"substringFound"`
	TokenFound     bool     `json:"tokenFound"`
	Present        bool     `json:"present"`
	NearTokens     []string `json:"nearTokens,omitempty"`
	Category       Category `json:"category"`
}

// DebugKeywordMatch runs both matching strategies for keyword and reports
// the outcome of each, plus resume tokens sharing the keyword's prefix.
func DebugKeywordMatch(keyword, resumeText string) MatchDebug {
	kw := strings.ToLower(strings.TrimSpace(keyword))
	lowered := strings.ToLower(resumeText)
	tokens := textproc.TokenSet(resumeText)

	d := MatchDebug{
		Keyword:    keyword,
		Normalized: kw,
		Phrase:     strings.ContainsAny(kw, " \t"),
		Category:   CategorizeKeyword(keyword),
	}
	d.Strategy = "token"
	if d.Phrase {
		d.Strategy = "substring"
	}
	d.SubstringFound = kw != "" && strings.Contains(lowered, kw)
	_, d.TokenFound = tokens[kw]
	d.Present = IsKeywordPresent(keyword, lowered, tokens)

	if runes := []rune(kw); !d.Present && len(runes) >= 3 {
		prefix := string(runes[:3])
		for tok := range textproc.Tokenize(resumeText) {
			if strings.HasPrefix(tok, prefix) && !slices.Contains(d.NearTokens, tok) {
				d.NearTokens = append(d.NearTokens, tok)
			}
		}
	}
	return d
}
