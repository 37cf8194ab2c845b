package validate

import (
	"strings"
	"testing"

	"keyplan/internal/textproc"

	"github.com/stretchr/testify/assert"
)

func TestValidateExtractedKeywords(t *testing.T) {
	jd := "We need C++ and A/B testing skills. R&D experience is a plus. SQL daily."

	res := ValidateExtractedKeywords([]string{"c++", "A/B testing", "r&d", "sql", "kubernetes", "  "}, jd)

	assert.Equal(t, []string{"c++", "A/B testing", "r&d", "sql"}, res.Valid)
	assert.Equal(t, []string{"kubernetes", "  "}, res.Invalid)
	assert.Len(t, res.Warnings, 2)
	assert.Contains(t, res.Warnings[0], "kubernetes")
}

func TestValidateExtractedKeywordsEmpty(t *testing.T) {
	res := ValidateExtractedKeywords(nil, "")
	assert.NotNil(t, res.Valid)
	assert.NotNil(t, res.Invalid)
	assert.Empty(t, res.Warnings)
}

func TestCategorizeKeyword(t *testing.T) {
	tests := []struct {
		keyword string
		want    Category
	}{
		{"3+ years of experience", CategoryExperience},
		{"5 years", CategoryExperience},
		{"experience with payments", CategoryExperience},
		{"SQL", CategoryTechnical},
		{"REST API", CategoryTechnical},
		{"frontend", CategoryTechnical},
		{"tableau", CategoryTools},
		{"c++", CategoryTools},
		{"power bi", CategoryTools},
		{"communication", CategorySoft},
		{"cross-functional collaboration", CategorySoft},
		{"fintech", CategoryDomain},
		{"supply chain", CategoryDomain},
	}
	for _, tt := range tests {
		t.Run(tt.keyword, func(t *testing.T) {
			assert.Equal(t, tt.want, CategorizeKeyword(tt.keyword))
		})
	}
}

func TestSuggestionForKeyword(t *testing.T) {
	for _, kw := range []string{"5 years", "API", "jira", "leadership", "healthcare"} {
		assert.NotEmpty(t, SuggestionForKeyword(kw), kw)
	}
	assert.Contains(t, SuggestionForKeyword("jira"), "skills section")
}

func TestIsKeywordPresent(t *testing.T) {
	resume := "Led A/B testing for checkout. Wrote C++ services and SQL reports.\nR&D lab member."
	lowered := strings.ToLower(resume)
	tokens := textproc.TokenSet(resume)

	tests := []struct {
		keyword string
		want    bool
	}{
		{"a/b testing", true},
		{"C++", true},
		{"r&d", true},
		{"sql", true},
		{"sql reports", true},
		{"reports", true},
		{"report", false},
		{"checkout flow", false},
		{"", false},
	}
	for _, tt := range tests {
		t.Run(tt.keyword, func(t *testing.T) {
			assert.Equal(t, tt.want, IsKeywordPresent(tt.keyword, lowered, tokens))
		})
	}
}

func TestDebugKeywordMatch(t *testing.T) {
	resume := "Built reporting pipelines and reports in Looker."

	d := DebugKeywordMatch("report", resume)
	assert.False(t, d.Present)
	assert.Equal(t, "token", d.Strategy)
	assert.True(t, d.SubstringFound)
	assert.False(t, d.TokenFound)
	assert.Equal(t, []string{"reporting", "reports"}, d.NearTokens)

	d = DebugKeywordMatch("Reporting Pipelines", resume)
	assert.True(t, d.Present)
	assert.True(t, d.Phrase)
	assert.Equal(t, "substring", d.Strategy)
	assert.Empty(t, d.NearTokens)
}

func TestNormalizeKeyword(t *testing.T) {
	assert.Equal(t, "go", NormalizeKeyword("Golang"))
	assert.Equal(t, "kubernetes", NormalizeKeyword(" K8s "))
	assert.Equal(t, "a/b testing", NormalizeKeyword("AB   testing"))
	assert.Equal(t, "rust", NormalizeKeyword("Rust"))
}
