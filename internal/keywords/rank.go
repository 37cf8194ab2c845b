package keywords

import (
	"cmp"
	"slices"
	"strings"

	"keyplan/internal/jd"
)

// Weights are the constants of the candidate score.
//
//	score = Section*sectionWeight + Frequency*jdTf + Type*typeWeight
//	        + Presence*present - Discount*(present ? PresenceDiscount : 0)
type Weights struct {
	Section          float64              `mapstructure:"section" json:"section"`
	Frequency        float64              `mapstructure:"frequency" json:"frequency"`
	Type             float64              `mapstructure:"type" json:"type"`
	Presence         float64              `mapstructure:"presence" json:"presence"`
	Discount         float64              `mapstructure:"discount" json:"discount"`
	PresenceDiscount float64              `mapstructure:"presenceDiscount" json:"presenceDiscount"`
	SectionWeights   map[Section]float64  `mapstructure:"-" json:"-"`
	TypeWeights      map[TermType]float64 `mapstructure:"-" json:"-"`
}

// DefaultWeights returns the stock scoring constants.
func DefaultWeights() Weights {
	return Weights{
		Section:          5,
		Frequency:        3,
		Type:             2,
		Presence:         2,
		Discount:         3,
		PresenceDiscount: 0.3,
		SectionWeights: map[Section]float64{
			SectionRequirements:     3,
			SectionResponsibilities: 2,
			SectionPreferred:        1,
			SectionOther:            0,
		},
		TypeWeights: map[TermType]float64{
			Tool:   2,
			Method: 1.5,
			Domain: 1.5,
			Metric: 1,
			Soft:   0.5,
		},
	}
}

// SectionWeight returns the weight of s, zero when unknown.
func (w Weights) SectionWeight(s Section) float64 { return w.SectionWeights[s] }

// TypeWeight returns the weight of t, zero when unknown.
func (w Weights) TypeWeight(t TermType) float64 { return w.TypeWeights[t] }

// Score computes the candidate score from its inputs only.
func (w Weights) Score(c Candidate) float64 {
	score := w.Section*w.SectionWeight(c.JDSection) +
		w.Frequency*float64(c.JDTf) +
		w.Type*w.TypeWeight(c.Type)
	if c.ResumePresent {
		score += w.Presence - w.Discount*w.PresenceDiscount
	}
	return score
}

// PriorityFor maps a section to its priority. The mapping follows the stock
// section weights and does not move when the weights are tuned.
func PriorityFor(s Section) Priority {
	switch s {
	case SectionRequirements:
		return Critical
	case SectionResponsibilities:
		return Important
	default:
		return Nice
	}
}

// PlacementsFor maps a term type to its resume placements.
func PlacementsFor(t TermType) PlacementSet {
	switch t {
	case Tool:
		return NewPlacementSet(Skills, Bullet)
	case Method, Domain:
		return NewPlacementSet(Summary, Bullet)
	default:
		return NewPlacementSet(Bullet)
	}
}

// SectionIndex maps a term to its dominant section.
type SectionIndex map[string]Section

// Lookup returns the section for term, SectionOther when absent.
func (si SectionIndex) Lookup(term string) Section {
	if s, ok := si[term]; ok {
		return s
	}
	return SectionOther
}

// IndexSections assigns each term the highest-weight section it appears in.
func IndexSections(terms []jd.TermStat) SectionIndex {
	index := make(SectionIndex, len(terms))
	for _, ts := range terms {
		best := SectionOther
		for _, s := range ts.AppearsIn.Sections() {
			if mapped := fromJDSection(s); mapped > best {
				best = mapped
			}
		}
		index[ts.Term] = best
	}
	return index
}

func fromJDSection(s jd.Section) Section {
	switch s {
	case jd.RequiredQualifications:
		return SectionRequirements
	case jd.Responsibilities:
		return SectionResponsibilities
	case jd.PreferredQualifications:
		return SectionPreferred
	default:
		return SectionOther
	}
}

// Ranker scores candidates.
type Ranker struct {
	weights    Weights
	classifier Classifier
}

// NewRanker returns a ranker. A nil classifier selects DefaultClassifier.
func NewRanker(weights Weights, classifier Classifier) *Ranker {
	if classifier == nil {
		classifier = DefaultClassifier()
	}
	return &Ranker{weights: weights, classifier: classifier}
}

// Rank builds one candidate per distinct JD term and sorts them by score
// descending, then JD frequency descending, then term.
func (r *Ranker) Rank(jdTerms []jd.TermStat, resumeFreq map[string]int, index SectionIndex) []Candidate {
	seen := make(map[string]bool, len(jdTerms))
	candidates := make([]Candidate, 0, len(jdTerms))
	for _, ts := range jdTerms {
		term := strings.ToLower(ts.Term)
		if term == "" || seen[term] {
			continue
		}
		seen[term] = true

		c := Candidate{
			Term:       term,
			JDTf:       ts.Count,
			JDSection:  index.Lookup(term),
			Type:       r.classifier.Classify(term),
			ResumeFreq: resumeFreq[term],
			Synonyms:   SynonymsFor(term),
		}
		c.ResumePresent = c.ResumeFreq > 0
		c.Score = r.weights.Score(c)
		c.Priority = PriorityFor(c.JDSection)
		c.Where = PlacementsFor(c.Type)
		candidates = append(candidates, c)
	}

	slices.SortStableFunc(candidates, func(a, b Candidate) int {
		if c := cmp.Compare(b.Score, a.Score); c != 0 {
			return c
		}
		if c := cmp.Compare(b.JDTf, a.JDTf); c != 0 {
			return c
		}
		return strings.Compare(a.Term, b.Term)
	})
	return candidates
}
