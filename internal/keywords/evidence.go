package keywords

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// EvidenceContext is the number of characters kept on each side of a match.
const EvidenceContext = 60

// termPattern matches term as a whole word, case-insensitively, using the
// tokenizer's notion of a word: a whitespace delimited field with outer
// punctuation trimmed, except that a trailing '+' or '#' is part of the word.
// "node" does not match "node.js" and "c" does not match "C++", while "sql"
// matches "(SQL)," as the token stream would count it. Internal spaces in the
// term accept any run of whitespace.
func termPattern(term string) *regexp.Regexp {
	words := strings.Fields(term)
	for i, w := range words {
		words[i] = regexp.QuoteMeta(w)
	}
	return regexp.MustCompile(`(?i)(?:^|\s)[^\pL\pN\s]*?(` + strings.Join(words, `\s+`) + `)[^\pL\pN\s+#]*(?:$|\s)`)
}

// FindEvidence searches text for term and returns the surrounding context
// window, with whitespace collapsed.
func FindEvidence(term, text string, context int) Evidence {
	if strings.TrimSpace(term) == "" || text == "" {
		return Evidence{}
	}
	loc := termPattern(term).FindStringSubmatchIndex(text)
	if loc == nil {
		return Evidence{}
	}
	start, end := loc[2], loc[3]
	from := backRunes(text, start, context)
	to := forwardRunes(text, end, context)
	excerpt := strings.Join(strings.Fields(text[from:to]), " ")
	return Evidence{Supported: true, Excerpt: excerpt}
}

func backRunes(s string, pos, n int) int {
	for ; n > 0 && pos > 0; n-- {
		_, size := utf8.DecodeLastRuneInString(s[:pos])
		pos -= size
	}
	return pos
}

func forwardRunes(s string, pos, n int) int {
	for ; n > 0 && pos < len(s); n-- {
		_, size := utf8.DecodeRuneInString(s[pos:])
		pos += size
	}
	return pos
}

// AttachEvidence returns a copy of candidates with Evidence populated from
// resumeText.
func AttachEvidence(candidates []Candidate, resumeText string) []Candidate {
	return attachEvidence(candidates, resumeText, EvidenceContext)
}

func attachEvidence(candidates []Candidate, resumeText string, context int) []Candidate {
	out := make([]Candidate, len(candidates))
	for i, c := range candidates {
		ev := FindEvidence(c.Term, resumeText, context)
		c.Evidence = &ev
		out[i] = c
	}
	return out
}
