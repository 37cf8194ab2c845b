package keywords

import (
	"strings"

	"keyplan/internal/jd"
	"keyplan/internal/textproc"
	"keyplan/internal/validate"
)

// TopN is the number of snippets kept in a plan.
const TopN = 10

// PlanInput carries the texts of one extraction request.
type PlanInput struct {
	JobDescription string `json:"jobDescription"`
	Resume         string `json:"resume"`
	JobTitle       string `json:"jobTitle,omitempty"`
	RoleTitle      string `json:"roleTitle,omitempty"`
}

// LegacyKeywords is the flat jd/resume/missing view of the in-scope terms.
type LegacyKeywords struct {
	JD      []string `json:"jd"`
	Resume  []string `json:"resume"`
	Missing []string `json:"missing"`
}

// Plan is the recommendation output for one job description and resume.
type Plan struct {
	JobTitle   string          `json:"jobTitle,omitempty"`
	Top10      []Snippet       `json:"top10"`
	Keywords   *LegacyKeywords `json:"keywords,omitempty"`
	Validation validate.Result `json:"validation"`
	Metadata   jd.Metadata     `json:"metadata"`
	Candidates []Candidate     `json:"-"`
}

// Engine runs the extraction pipeline. It holds no mutable state and is safe
// for concurrent use.
type Engine struct {
	ranker          *Ranker
	maxTerms        int
	topN            int
	evidenceContext int
	snippetOpts     SnippetOptions
}

// Option configures an Engine.
type Option func(*Engine)

// WithWeights replaces the score multipliers. Missing section or type
// tables fall back to the stock ones.
func WithWeights(w Weights) Option {
	return func(e *Engine) {
		defaults := DefaultWeights()
		if w.SectionWeights == nil {
			w.SectionWeights = defaults.SectionWeights
		}
		if w.TypeWeights == nil {
			w.TypeWeights = defaults.TypeWeights
		}
		e.ranker.weights = w
	}
}

func WithClassifier(c Classifier) Option {
	return func(e *Engine) {
		if c != nil {
			e.ranker.classifier = c
		}
	}
}

// WithMaxTerms bounds how many frequent JD terms become candidates.
func WithMaxTerms(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.maxTerms = n
		}
	}
}

func WithTopN(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.topN = n
		}
	}
}

func WithEvidenceContext(n int) Option {
	return func(e *Engine) {
		if n >= 0 {
			e.evidenceContext = n
		}
	}
}

func WithSnippetLimits(summary, bullet int) Option {
	return func(e *Engine) {
		e.snippetOpts.SummaryLimit = summary
		e.snippetOpts.BulletLimit = bullet
	}
}

// NewEngine returns an engine with the stock weights and classifier.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		ranker:          NewRanker(DefaultWeights(), nil),
		maxTerms:        jd.InScopeTerms,
		topN:            TopN,
		evidenceContext: EvidenceContext,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Candidates parses the job description and returns ranked candidates with
// evidence attached, along with the parse result.
func (e *Engine) Candidates(in PlanInput) ([]Candidate, jd.Metadata) {
	meta := jd.Parse(in.JobDescription, in.JobTitle)
	terms := meta.TopTerms(e.maxTerms)

	resumeFreq := textproc.Frequencies(textproc.Tokens(in.Resume), textproc.MaxNGram)
	ranked := e.ranker.Rank(terms, resumeFreq, IndexSections(terms))
	return attachEvidence(ranked, in.Resume, e.evidenceContext), meta
}

// BuildPlan runs the full pipeline and returns the top snippets.
func (e *Engine) BuildPlan(in PlanInput) Plan {
	candidates, meta := e.Candidates(in)

	top := candidates
	if len(top) > e.topN {
		top = top[:e.topN]
	}
	opts := e.snippetOpts
	opts.RoleTitle = in.RoleTitle
	snippets := ToSnippets(top, opts)

	surfaced := make([]string, len(snippets))
	for i, s := range snippets {
		surfaced[i] = s.Term
	}

	return Plan{
		JobTitle:   meta.JobTitle,
		Top10:      snippets,
		Keywords:   legacyView(candidates, in.Resume),
		Validation: validate.ValidateExtractedKeywords(surfaced, in.JobDescription),
		Metadata:   meta,
		Candidates: candidates,
	}
}

func legacyView(candidates []Candidate, resume string) *LegacyKeywords {
	view := &LegacyKeywords{JD: []string{}, Resume: []string{}, Missing: []string{}}
	lowered := strings.ToLower(resume)
	tokens := textproc.TokenSet(resume)
	for _, c := range candidates {
		view.JD = append(view.JD, c.Term)
		if validate.IsKeywordPresent(c.Term, lowered, tokens) {
			view.Resume = append(view.Resume, c.Term)
		} else {
			view.Missing = append(view.Missing, c.Term)
		}
	}
	return view
}
