// Package keywords ranks job description terms against a resume and turns
// them into placement-ready recommendations.
package keywords

import (
	"encoding/json"
	"fmt"
)

// TermType is the kind of skill a term names.
type TermType int

const (
	Soft TermType = iota
	Metric
	Domain
	Method
	Tool
)

var termTypeNames = map[TermType]string{
	Tool:   "tool",
	Method: "method",
	Domain: "domain",
	Metric: "metric",
	Soft:   "soft",
}

func (t TermType) String() string {
	if name, ok := termTypeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("TermType(%d)", int(t))
}

func (t TermType) MarshalText() ([]byte, error) { return []byte(t.String()), nil }

func (t *TermType) UnmarshalText(b []byte) error {
	for k, v := range termTypeNames {
		if v == string(b) {
			*t = k
			return nil
		}
	}
	return fmt.Errorf("unknown term type %q", b)
}

// Section is the dominant job description section of a candidate.
type Section int

const (
	SectionOther Section = iota
	SectionPreferred
	SectionResponsibilities
	SectionRequirements
)

var sectionNames = map[Section]string{
	SectionRequirements:     "requirements",
	SectionResponsibilities: "responsibilities",
	SectionPreferred:        "preferred",
	SectionOther:            "other",
}

func (s Section) String() string {
	if name, ok := sectionNames[s]; ok {
		return name
	}
	return fmt.Sprintf("Section(%d)", int(s))
}

func (s Section) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

func (s *Section) UnmarshalText(b []byte) error {
	for k, v := range sectionNames {
		if v == string(b) {
			*s = k
			return nil
		}
	}
	return fmt.Errorf("unknown section %q", b)
}

// Priority is derived from the candidate's section.
type Priority int

const (
	Nice Priority = iota
	Important
	Critical
)

func (p Priority) String() string {
	switch p {
	case Critical:
		return "critical"
	case Important:
		return "important"
	default:
		return "nice"
	}
}

func (p Priority) MarshalText() ([]byte, error) { return []byte(p.String()), nil }

// Placement is a resume location for a term.
type Placement uint8

const (
	Skills Placement = 1 << iota
	Summary
	Bullet
)

func (p Placement) String() string {
	switch p {
	case Skills:
		return "skills"
	case Summary:
		return "summary"
	case Bullet:
		return "bullet"
	default:
		return fmt.Sprintf("Placement(%d)", uint8(p))
	}
}

// PlacementSet is a set of placements.
type PlacementSet uint8

func NewPlacementSet(ps ...Placement) PlacementSet {
	var set PlacementSet
	for _, p := range ps {
		set |= PlacementSet(p)
	}
	return set
}

func (s PlacementSet) Has(p Placement) bool { return s&PlacementSet(p) != 0 }

// Placements returns members in skills, summary, bullet order.
func (s PlacementSet) Placements() []Placement {
	var out []Placement
	for _, p := range []Placement{Skills, Summary, Bullet} {
		if s.Has(p) {
			out = append(out, p)
		}
	}
	return out
}

func (s PlacementSet) MarshalJSON() ([]byte, error) {
	names := []string{}
	for _, p := range s.Placements() {
		names = append(names, p.String())
	}
	return json.Marshal(names)
}

// Evidence records whether the resume already supports a term.
type Evidence struct {
	Supported bool   `json:"supported"`
	Excerpt   string `json:"excerpt,omitempty"`
}

// Candidate is a job description term considered for recommendation.
type Candidate struct {
	Term          string       `json:"term"`
	JDTf          int          `json:"jdTf"`
	JDSection     Section      `json:"jdSection"`
	Type          TermType     `json:"type"`
	ResumePresent bool         `json:"resumePresent"`
	ResumeFreq    int          `json:"resumeFreq"`
	Evidence      *Evidence    `json:"evidence,omitempty"`
	Synonyms      []string     `json:"synonyms"`
	Score         float64      `json:"score"`
	Priority      Priority     `json:"priority"`
	Where         PlacementSet `json:"where"`
}

// Snippets holds placement-specific text. A field is set only when its
// placement is in the candidate's Where set.
type Snippets struct {
	Skills  string `json:"skills,omitempty"`
	Summary string `json:"summary,omitempty"`
	Bullet  string `json:"bullet,omitempty"`
}

// Snippet is the presentation form of a candidate.
type Snippet struct {
	Term            string       `json:"term"`
	Priority        Priority     `json:"priority"`
	Where           PlacementSet `json:"where"`
	Supported       bool         `json:"supported"`
	Proof           string       `json:"proof,omitempty"`
	ProofSuggestion string       `json:"proofSuggestion,omitempty"`
	Synonyms        []string     `json:"synonyms"`
	Snippets        Snippets     `json:"snippets"`
}
