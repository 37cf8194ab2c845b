// Package jd recovers section structure and term statistics from raw job
// description text.
package jd

import (
	"cmp"
	"encoding/json"
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"

	"keyplan/internal/textproc"
)

// InScopeTerms is the number of frequent terms handed to candidate generation.
const InScopeTerms = 30

// Sections holds the text of each section. Repeated blocks of the same
// section are joined with a newline in document order.
type Sections struct {
	Responsibilities        string `json:"responsibilities"`
	RequiredQualifications  string `json:"requiredQualifications"`
	PreferredQualifications string `json:"preferredQualifications"`
	Other                   string `json:"other"`
}

// Get returns the text of section s.
func (s Sections) Get(section Section) string {
	switch section {
	case Responsibilities:
		return s.Responsibilities
	case RequiredQualifications:
		return s.RequiredQualifications
	case PreferredQualifications:
		return s.PreferredQualifications
	default:
		return s.Other
	}
}

func (s *Sections) appendTo(section Section, text string) {
	var target *string
	switch section {
	case Responsibilities:
		target = &s.Responsibilities
	case RequiredQualifications:
		target = &s.RequiredQualifications
	case PreferredQualifications:
		target = &s.PreferredQualifications
	default:
		target = &s.Other
	}
	if *target == "" {
		*target = text
		return
	}
	*target += "\n" + text
}

// Header is a detected section boundary. Start and End are byte offsets
// into the raw text covering the header phrase and its delimiter.
type Header struct {
	Section Section `json:"section"`
	Phrase  string  `json:"phrase"`
	Start   int     `json:"start"`
	End     int     `json:"end"`
}

// TermStat counts a 1-3 word term and records which sections contain it.
type TermStat struct {
	Term      string     `json:"term"`
	Count     int        `json:"count"`
	AppearsIn SectionSet `json:"appearsIn"`
}

// Metadata is the parsed form of a job description.
type Metadata struct {
	JobTitle string   `json:"jobTitle"`
	Sections Sections `json:"sections"`
	Headers  []Header `json:"headers,omitempty"`

	// TermFrequency holds every term seen at least twice.
	TermFrequency map[string]TermStat `json:"-"`
}

// MarshalJSON serializes only the in-scope terms of the frequency table.
func (m Metadata) MarshalJSON() ([]byte, error) {
	type plain Metadata
	top := m.TopTerms(InScopeTerms)
	tf := make(map[string]TermStat, len(top))
	for _, ts := range top {
		tf[ts.Term] = ts
	}
	return json.Marshal(struct {
		plain
		TermFrequency map[string]TermStat `json:"termFrequency"`
	}{plain(m), tf})
}

// TopTerms returns at most n terms ordered by count descending, ties by term.
func (m Metadata) TopTerms(n int) []TermStat {
	terms := make([]TermStat, 0, len(m.TermFrequency))
	for _, ts := range m.TermFrequency {
		terms = append(terms, ts)
	}
	slices.SortFunc(terms, func(a, b TermStat) int {
		if c := cmp.Compare(b.Count, a.Count); c != 0 {
			return c
		}
		return strings.Compare(a.Term, b.Term)
	})
	if n >= 0 && len(terms) > n {
		terms = terms[:n]
	}
	return terms
}

// Parse segments rawJd into sections and computes the term frequency table.
// Text without any recognizable header lands entirely in Other.
func Parse(rawJd, jobTitle string) Metadata {
	sections, headers := segment(rawJd)
	return Metadata{
		JobTitle:      strings.TrimSpace(jobTitle),
		Sections:      sections,
		Headers:       headers,
		TermFrequency: termFrequency(rawJd, sections),
	}
}

type block struct {
	section Section
	text    strings.Builder
}

func segment(raw string) (Sections, []Header) {
	var headers []Header
	blocks := []*block{{section: Other}}
	current := blocks[0]

	open := func(h Header) {
		headers = append(headers, h)
		current = &block{section: h.Section}
		blocks = append(blocks, current)
	}

	offset := 0
	for line := range strings.SplitSeq(raw, "\n") {
		lineStart := offset
		offset += len(line) + 1

		content, contentStart := line, lineStart
		body := trimHeadingMarkers(line)
		if hp, rest, ok := matchHeader(body, false); ok {
			end := lineStart + len(line) - len(rest)
			open(Header{Section: hp.section, Phrase: hp.text, Start: lineStart, End: end})
			content, contentStart = rest, end
		}

		for i, clause := range splitClauses(content) {
			if i > 0 {
				open(Header{
					Section: clause.phrase.section,
					Phrase:  clause.phrase.text,
					Start:   contentStart + clause.headerStart,
					End:     contentStart + clause.start,
				})
			}
			current.text.WriteString(content[clause.start:clause.end])
		}
		current.text.WriteByte('\n')
	}

	var sections Sections
	for _, b := range blocks {
		if text := strings.TrimSpace(b.text.String()); text != "" {
			sections.appendTo(b.section, text)
		}
	}
	return sections, headers
}

func trimHeadingMarkers(line string) string {
	line = strings.TrimLeft(line, " \t")
	line = strings.TrimLeft(line, "#")
	return strings.TrimLeft(line, " \t*_")
}

// matchHeader reports whether s begins with a known header phrase followed by
// end of text, a colon, or a dash set off by whitespace on both sides. When
// requireColon is set only a colon delimiter is accepted. rest is the text
// following the delimiter.
func matchHeader(s string, requireColon bool) (headerPhrase, string, bool) {
	for _, hp := range headerPhrases {
		if len(s) < len(hp.text) || !strings.EqualFold(s[:len(hp.text)], hp.text) {
			continue
		}
		tail := s[len(hp.text):]
		if r, _ := utf8.DecodeRuneInString(tail); unicode.IsLetter(r) || unicode.IsDigit(r) {
			continue
		}
		after := strings.TrimLeft(tail, " \t*_")
		switch {
		case strings.HasPrefix(after, ":"):
			return hp, after[1:], true
		case requireColon:
			continue
		case strings.TrimSpace(after) == "":
			return hp, "", true
		case !strings.ContainsAny(tail[:len(tail)-len(after)], " \t"):
			continue
		}
		if rest, ok := cutDash(after); ok {
			return hp, rest, true
		}
	}
	return headerPhrase{}, "", false
}

// cutDash strips a leading hyphen, en dash or em dash that is followed by
// whitespace or end of text.
func cutDash(s string) (string, bool) {
	for _, d := range []string{"-", "–", "—"} {
		rest, ok := strings.CutPrefix(s, d)
		if ok && (rest == "" || rest[0] == ' ' || rest[0] == '\t') {
			return rest, true
		}
	}
	return "", false
}

type clause struct {
	phrase      headerPhrase
	headerStart int
	start, end  int
}

// splitClauses splits text where a new sentence opens with "<phrase>:".
// The first clause carries no header and continues the current section.
func splitClauses(text string) []clause {
	clauses := []clause{{start: 0}}
	for i := 0; i+1 < len(text); i++ {
		if !strings.ContainsRune(".!?;", rune(text[i])) || text[i+1] != ' ' {
			continue
		}
		j := i + 1
		for j < len(text) && text[j] == ' ' {
			j++
		}
		hp, rest, ok := matchHeader(text[j:], true)
		if !ok {
			continue
		}
		clauses[len(clauses)-1].end = i + 1
		start := len(text) - len(rest)
		clauses = append(clauses, clause{phrase: hp, headerStart: j, start: start})
		i = start - 1
	}
	clauses[len(clauses)-1].end = len(text)
	return clauses
}

func termFrequency(raw string, sections Sections) map[string]TermStat {
	lowered := textproc.Normalize(raw)
	loweredSections := make(map[Section]string, len(AllSections))
	for _, s := range AllSections {
		loweredSections[s] = textproc.Normalize(sections.Get(s))
	}

	counts := textproc.Frequencies(textproc.Tokens(raw), textproc.MaxNGram)
	table := make(map[string]TermStat)
	for term, count := range counts {
		if count < 2 || !strings.Contains(lowered, term) {
			continue
		}
		var in SectionSet
		for _, s := range AllSections {
			if strings.Contains(loweredSections[s], term) {
				in = in.With(s)
			}
		}
		table[term] = TermStat{Term: term, Count: count, AppearsIn: in}
	}
	return table
}
