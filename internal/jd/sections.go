package jd

import (
	"cmp"
	"encoding/json"
	"slices"
	"strings"
)

// Section names one of the four slices of a job description.
type Section int

const (
	Other Section = iota
	PreferredQualifications
	Responsibilities
	RequiredQualifications
)

// AllSections lists sections in document-independent display order.
var AllSections = []Section{Responsibilities, RequiredQualifications, PreferredQualifications, Other}

func (s Section) String() string {
	switch s {
	case Responsibilities:
		return "responsibilities"
	case RequiredQualifications:
		return "requiredQualifications"
	case PreferredQualifications:
		return "preferredQualifications"
	default:
		return "other"
	}
}

func (s Section) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// SectionSet is a bit set of sections.
type SectionSet uint8

func (ss SectionSet) Has(s Section) bool { return ss&(1<<s) != 0 }

func (ss SectionSet) With(s Section) SectionSet { return ss | 1<<s }

// Sections returns the members in AllSections order.
func (ss SectionSet) Sections() []Section {
	var out []Section
	for _, s := range AllSections {
		if ss.Has(s) {
			out = append(out, s)
		}
	}
	return out
}

func (ss SectionSet) MarshalJSON() ([]byte, error) {
	names := make([]string, 0, 4)
	for _, s := range ss.Sections() {
		names = append(names, s.String())
	}
	return json.Marshal(names)
}

type headerPhrase struct {
	text    string
	section Section
}

var headerPhrases = buildHeaderPhrases(map[Section][]string{
	RequiredQualifications: {
		"minimum qualifications", "required qualifications", "basic qualifications",
		"required skills", "qualifications", "requirements", "what you'll need",
		"what you need", "what we're looking for", "must have", "must haves",
		"you have", "who you are", "required",
	},
	PreferredQualifications: {
		"preferred qualifications", "preferred skills", "nice to have", "nice to haves",
		"bonus points", "bonus", "pluses", "preferred",
	},
	Responsibilities: {
		"key responsibilities", "responsibilities", "what you'll do", "what you will do",
		"the role", "your role", "duties", "day to day", "about the role",
	},
})

// buildHeaderPhrases flattens the table, adds typographic apostrophe variants
// and sorts longest first so that a phrase never shadows a longer one.
func buildHeaderPhrases(groups map[Section][]string) []headerPhrase {
	var out []headerPhrase
	for section, phrases := range groups {
		for _, p := range phrases {
			out = append(out, headerPhrase{text: p, section: section})
			if strings.Contains(p, "'") {
				out = append(out, headerPhrase{text: strings.ReplaceAll(p, "'", "’"), section: section})
			}
		}
	}
	slices.SortFunc(out, func(a, b headerPhrase) int {
		if c := cmp.Compare(len(b.text), len(a.text)); c != 0 {
			return c
		}
		return strings.Compare(a.text, b.text)
	})
	return out
}
