package keywords

import (
	"regexp"
	"slices"
	"strings"
)

// Classifier assigns a TermType to a lowercase term.
type Classifier interface {
	Classify(term string) TermType
}

// ClassifierFunc adapts a function to Classifier.
type ClassifierFunc func(term string) TermType

func (f ClassifierFunc) Classify(term string) TermType { return f(term) }

// Lexicon lists vocabulary per term type.
type Lexicon struct {
	Tools   []string `mapstructure:"tools" json:"tools,omitempty"`
	Methods []string `mapstructure:"methods" json:"methods,omitempty"`
	Domains []string `mapstructure:"domains" json:"domains,omitempty"`
	Metrics []string `mapstructure:"metrics" json:"metrics,omitempty"`
}

// DefaultLexicon is the built-in vocabulary of the heuristic classifier.
var DefaultLexicon = Lexicon{
	Tools: []string{
		"sql", "mysql", "postgresql", "postgres", "mongodb", "redis", "snowflake", "bigquery", "redshift",
		"python", "java", "javascript", "typescript", "go", "golang", "rust", "ruby", "php", "scala",
		"kotlin", "swift", "c++", "c#", ".net", "html", "css", "react", "angular", "vue", "node",
		"node.js", "django", "flask", "spring", "graphql", "aws", "gcp", "azure", "docker",
		"kubernetes", "k8s", "terraform", "ansible", "jenkins", "git", "github", "gitlab", "jira",
		"confluence", "figma", "tableau", "looker", "power bi", "excel", "spark", "hadoop",
		"airflow", "dbt", "kafka", "pandas", "numpy", "tensorflow", "pytorch", "matlab", "sas",
		"spss", "salesforce", "hubspot", "segment", "amplitude", "mixpanel", "google analytics",
		"linux", "bash", "grpc", "rest", "api", "apis", "ci/cd",
	},
	Methods: []string{
		"agile", "scrum", "kanban", "lean", "six sigma", "a/b testing", "a/b", "experimentation",
		"tdd", "bdd", "devops", "design thinking", "user research", "usability testing",
		"machine learning", "statistical", "statistics", "regression", "forecasting", "modeling",
		"modelling", "analysis", "analytics", "testing", "prototyping", "roadmapping", "roadmap",
		"code review", "pair programming", "microservices", "etl", "data modeling",
		"stakeholder management", "project management", "product management", "okrs",
	},
	Domains: []string{
		"fintech", "healthcare", "health", "e-commerce", "ecommerce", "saas", "b2b", "b2c",
		"payments", "banking", "insurance", "retail", "logistics", "supply chain", "marketing",
		"advertising", "adtech", "security", "cybersecurity", "compliance", "gaming", "education",
		"edtech", "crypto", "blockchain", "telecom", "energy", "real estate", "pharma", "biotech",
		"r&d", "finance", "legal", "hr", "recruiting", "media",
	},
	Metrics: []string{
		"kpi", "kpis", "roi", "revenue", "conversion", "retention", "churn", "growth", "latency",
		"uptime", "sla", "slas", "nps", "arr", "mrr", "cac", "ltv", "engagement", "metrics",
		"throughput", "margin", "cost", "costs", "budget", "quota", "pipeline", "dau", "mau",
	},
}

// Merge returns a lexicon holding the vocabulary of both.
func (l Lexicon) Merge(other Lexicon) Lexicon {
	merge := func(a, b []string) []string {
		out := slices.Clone(a)
		for _, w := range b {
			w = strings.ToLower(strings.TrimSpace(w))
			if w != "" && !slices.Contains(out, w) {
				out = append(out, w)
			}
		}
		return out
	}
	return Lexicon{
		Tools:   merge(l.Tools, other.Tools),
		Methods: merge(l.Methods, other.Methods),
		Domains: merge(l.Domains, other.Domains),
		Metrics: merge(l.Metrics, other.Metrics),
	}
}

// HeuristicClassifier matches whole words of a term against the lexicon in
// tool, method, domain, metric order and defaults to soft.
type HeuristicClassifier struct {
	rules []typeRule
}

type typeRule struct {
	typ TermType
	re  *regexp.Regexp
}

// NewHeuristicClassifier compiles the lexicon into one pattern per type.
func NewHeuristicClassifier(lex Lexicon) *HeuristicClassifier {
	hc := &HeuristicClassifier{}
	for _, group := range []struct {
		typ   TermType
		words []string
	}{
		{Tool, lex.Tools},
		{Method, lex.Methods},
		{Domain, lex.Domains},
		{Metric, lex.Metrics},
	} {
		if re := wordListPattern(group.words); re != nil {
			hc.rules = append(hc.rules, typeRule{typ: group.typ, re: re})
		}
	}
	return hc
}

// DefaultClassifier uses DefaultLexicon.
func DefaultClassifier() *HeuristicClassifier {
	return NewHeuristicClassifier(DefaultLexicon)
}

func (hc *HeuristicClassifier) Classify(term string) TermType {
	term = strings.ToLower(term)
	for _, rule := range hc.rules {
		if rule.re.MatchString(term) {
			return rule.typ
		}
	}
	return Soft
}

// wordListPattern builds an alternation of escaped words bounded by
// non-word characters. Longer words come first so phrases win over prefixes.
func wordListPattern(words []string) *regexp.Regexp {
	if len(words) == 0 {
		return nil
	}
	sorted := slices.Clone(words)
	slices.SortFunc(sorted, func(a, b string) int { return len(b) - len(a) })
	quoted := make([]string, len(sorted))
	for i, w := range sorted {
		quoted[i] = regexp.QuoteMeta(strings.ToLower(w))
	}
	return regexp.MustCompile(`(?:^|[^\pL\pN+#])(?:` + strings.Join(quoted, "|") + `)(?:$|[^\pL\pN+#])`)
}
