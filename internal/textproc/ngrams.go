package textproc

import (
	"iter"
	"strings"
)

// MaxNGram is the longest phrase length counted by Frequencies.
const MaxNGram = 3

// NGrams yields every 1..maxN word phrase of tokens in sequence order.
// Phrases are joined by a single space.
func NGrams(tokens []string, maxN int) iter.Seq[string] {
	return func(yield func(string) bool) {
		for i := range tokens {
			for n := 1; n <= maxN && i+n <= len(tokens); n++ {
				if !yield(strings.Join(tokens[i:i+n], " ")) {
					return
				}
			}
		}
	}
}

// Frequencies counts the 1..maxN word phrases of tokens.
func Frequencies(tokens []string, maxN int) map[string]int {
	counts := make(map[string]int)
	for gram := range NGrams(tokens, maxN) {
		counts[gram]++
	}
	return counts
}
