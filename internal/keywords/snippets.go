package keywords

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	SummaryLimit = 140
	BulletLimit  = 200
	Ellipsis     = "…"
)

// SnippetOptions tune snippet generation.
type SnippetOptions struct {
	RoleTitle    string
	SummaryLimit int
	BulletLimit  int
}

func (o SnippetOptions) withDefaults() SnippetOptions {
	if o.SummaryLimit <= 0 {
		o.SummaryLimit = SummaryLimit
	}
	if o.BulletLimit <= 0 {
		o.BulletLimit = BulletLimit
	}
	o.RoleTitle = strings.TrimSpace(o.RoleTitle)
	return o
}

var proofSuggestions = map[TermType]string{
	Tool:   "Create a mini demo or analysis using %s and cite the outcome.",
	Method: "Apply %s on a small project or side initiative and document the result.",
	Domain: "Complete a case study or course in %s and summarize what you learned.",
	Metric: "Track %s on a current or past project and quantify the change.",
	Soft:   "Describe a concrete situation where you demonstrated %s and its outcome.",
}

// summaryTemplates complete a sentence that may be prefixed by a role title.
var summaryTemplates = map[TermType]string{
	Tool:   "skilled in %s, applying it to ship reliable work with measurable outcomes.",
	Method: "experienced applying %s to improve delivery speed and decision quality.",
	Domain: "with hands-on %s experience driving results for customers and the business.",
	Metric: "focused on moving %s through data-informed execution.",
	Soft:   "known for strong %s when working across teams.",
}

// bulletTemplates follow "accomplished X, as measured by Y, by doing Z".
var bulletTemplates = map[TermType]string{
	Tool:   "Achieved [X%%] improvement in [result] by building [project] using %s.",
	Method: "Improved [result] by [X%%] by applying %s to [process or project].",
	Domain: "Delivered [result] for [X] %s customers by [action], measured by [metric].",
	Metric: "Increased %s by [X%%] over [timeframe] by [action].",
	Soft:   "Achieved [result] by demonstrating %s while [action] across [team].",
}

// ProofSuggestion returns the remediation hint for an unsupported term.
func ProofSuggestion(t TermType, term string) string {
	return fmt.Sprintf(lookupTemplate(proofSuggestions, t), term)
}

// SummarySnippet returns the summary sentence, clamped to limit characters.
func SummarySnippet(t TermType, term, roleTitle string, limit int) string {
	body := fmt.Sprintf(lookupTemplate(summaryTemplates, t), term)
	if roleTitle != "" {
		return Clamp(roleTitle+" "+body, limit)
	}
	return Clamp(upperFirst(body), limit)
}

// BulletSnippet returns an XYZ bullet draft, clamped to limit characters.
func BulletSnippet(t TermType, term string, limit int) string {
	return Clamp(fmt.Sprintf(lookupTemplate(bulletTemplates, t), term), limit)
}

func lookupTemplate(templates map[TermType]string, t TermType) string {
	if tmpl, ok := templates[t]; ok {
		return tmpl
	}
	return templates[Soft]
}

// Clamp truncates s to n-1 characters and appends an ellipsis when s is
// longer than n characters.
func Clamp(s string, n int) string {
	if n <= 0 || utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n-1]) + Ellipsis
}

func upperFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

var synonymTable = map[string][]string{
	"ci/cd":                  {"continuous integration", "continuous delivery"},
	"a/b testing":            {"experimentation", "split testing"},
	"a/b":                    {"experimentation", "split testing"},
	"kubernetes":             {"k8s", "container orchestration"},
	"k8s":                    {"kubernetes"},
	"javascript":             {"js", "ecmascript"},
	"typescript":             {"ts"},
	"golang":                 {"go"},
	"postgresql":             {"postgres"},
	"postgres":               {"postgresql"},
	"machine learning":       {"ml"},
	"stakeholder management": {"cross-functional collaboration", "stakeholder communication"},
	"data visualization":     {"dashboards", "data storytelling"},
	"power bi":               {"powerbi"},
	"r&d":                    {"research and development"},
	"kpi":                    {"key performance indicator"},
	"kpis":                   {"key performance indicators"},
	"sql":                    {"structured query language"},
}

// SynonymsFor returns up to two known variants of term.
func SynonymsFor(term string) []string {
	syns := synonymTable[strings.ToLower(term)]
	if len(syns) > 2 {
		syns = syns[:2]
	}
	return append([]string{}, syns...)
}

// ToSnippets converts candidates into presentation snippets in order.
func ToSnippets(candidates []Candidate, opts SnippetOptions) []Snippet {
	opts = opts.withDefaults()
	out := make([]Snippet, 0, len(candidates))
	for _, c := range candidates {
		s := Snippet{
			Term:     c.Term,
			Priority: c.Priority,
			Where:    c.Where,
			Synonyms: c.Synonyms,
		}
		if s.Synonyms == nil {
			s.Synonyms = []string{}
		}
		if c.Evidence != nil && c.Evidence.Supported {
			s.Supported = true
			s.Proof = c.Evidence.Excerpt
		} else {
			s.ProofSuggestion = ProofSuggestion(c.Type, c.Term)
		}
		if c.Where.Has(Skills) {
			s.Snippets.Skills = c.Term
		}
		if c.Where.Has(Summary) {
			s.Snippets.Summary = SummarySnippet(c.Type, c.Term, opts.RoleTitle, opts.SummaryLimit)
		}
		if c.Where.Has(Bullet) {
			s.Snippets.Bullet = BulletSnippet(c.Type, c.Term, opts.BulletLimit)
		}
		out = append(out, s)
	}
	return out
}
