package textproc

import (
	"iter"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// stopWords holds articles, auxiliary verbs, pronouns and common prepositions.
var stopWords = toSet(
	"a", "an", "the", "and", "or", "but", "nor", "so", "yet", "if", "then", "than",
	"is", "are", "was", "were", "be", "been", "being", "am",
	"have", "has", "had", "having", "do", "does", "did", "doing",
	"will", "would", "shall", "should", "can", "could", "may", "might", "must",
	"i", "me", "my", "mine", "we", "us", "our", "ours", "you", "your", "yours",
	"he", "him", "his", "she", "her", "hers", "it", "its", "they", "them", "their", "theirs",
	"this", "that", "these", "those", "who", "whom", "whose", "which", "what",
	"in", "on", "at", "by", "for", "with", "about", "against", "between", "into",
	"through", "during", "before", "after", "above", "below", "to", "from", "up",
	"down", "of", "off", "over", "under", "as", "per", "via", "within", "without",
	"across", "also", "not", "no", "all", "any", "each", "some", "such", "very", "etc",
)

func toSet(words ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}

// IsStopWord reports whether the lowercase word is in the stop-word set.
func IsStopWord(word string) bool {
	_, ok := stopWords[word]
	return ok
}

// Normalize applies NFKC folding and lowercases the text.
func Normalize(text string) string {
	return strings.ToLower(norm.NFKC.String(text))
}

// Tokenize returns the unigram tokens of text in order. The sequence is lazy
// and can be ranged over any number of times; each pass rescans the input.
func Tokenize(text string) iter.Seq[string] {
	return func(yield func(string) bool) {
		normalized := Normalize(text)
		for word := range fields(normalized) {
			token := cleanToken(word)
			if utf8.RuneCountInString(token) <= 1 {
				continue
			}
			if IsStopWord(token) {
				continue
			}
			if !yield(token) {
				return
			}
		}
	}
}

// Tokens collects Tokenize into a slice.
func Tokens(text string) []string {
	var out []string
	for tok := range Tokenize(text) {
		out = append(out, tok)
	}
	return out
}

// TokenSet returns the distinct tokens of text.
func TokenSet(text string) map[string]struct{} {
	set := make(map[string]struct{})
	for tok := range Tokenize(text) {
		set[tok] = struct{}{}
	}
	return set
}

// fields yields whitespace separated words without allocating a slice.
func fields(s string) iter.Seq[string] {
	return func(yield func(string) bool) {
		start := -1
		for i, r := range s {
			if unicode.IsSpace(r) {
				if start >= 0 {
					if !yield(s[start:i]) {
						return
					}
					start = -1
				}
				continue
			}
			if start < 0 {
				start = i
			}
		}
		if start >= 0 {
			yield(s[start:])
		}
	}
}

// cleanToken strips leading non-alphanumerics and trailing punctuation,
// keeping a trailing '+' or '#' so that "c++" and "c#" survive.
func cleanToken(word string) string {
	word = strings.TrimLeftFunc(word, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	return strings.TrimRightFunc(word, func(r rune) bool {
		if r == '+' || r == '#' {
			return false
		}
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}
