// Package semantic decides whether a resume satisfies a list of keywords,
// preferring an external classifier and falling back to literal matching.
package semantic

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"
)

// Classification is the verdict of a Classifier.
type Classification struct {
	Matched   []string          `json:"matched"`
	Missed    []string          `json:"missed"`
	Reasoning map[string]string `json:"reasoning,omitempty"`
	Usage     *Usage            `json:"usage,omitempty"`
}

// Usage reports model token consumption when known.
type Usage struct {
	InputTokens  int64 `json:"inputTokens"`
	OutputTokens int64 `json:"outputTokens"`
	TotalTokens  int64 `json:"totalTokens"`
}

// Classifier decides per keyword whether the resume demonstrates it.
type Classifier interface {
	ClassifyKeywordMatches(ctx context.Context, keywords []string, resume string) (Classification, error)
}

// Source names which classifier produced a Result.
type Source string

const (
	SourceSemantic Source = "semantic"
	SourceFallback Source = "fallback"
)

// Request is the input of Matcher.Match. Resume may be a string or any
// JSON-serializable value.
type Request struct {
	Keywords []string `json:"keywords"`
	Resume   any      `json:"resume"`
}

// Result is the output of Matcher.Match.
type Result struct {
	MatchedKeywords []string          `json:"matchedKeywords"`
	MissedKeywords  []string          `json:"missedKeywords"`
	MatchScore      int               `json:"matchScore"`
	Reasoning       map[string]string `json:"reasoning,omitempty"`
	Source          Source            `json:"source"`
	FallbackReason  string            `json:"fallbackReason,omitempty"`
	Usage           *Usage            `json:"usage,omitempty"`
}

// Score returns round(100 * matched / total), zero when total is zero.
func Score(matched, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(100 * float64(matched) / float64(total)))
}

// NormalizeKeywords trims entries, drops empties and removes
// case-insensitive duplicates, keeping the first spelling.
func NormalizeKeywords(keywords []string) []string {
	seen := make(map[string]bool, len(keywords))
	out := make([]string, 0, len(keywords))
	for _, kw := range keywords {
		kw = strings.TrimSpace(kw)
		key := strings.ToLower(kw)
		if kw == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, kw)
	}
	return out
}

// FlattenResume renders a resume representation as plain text. Strings pass
// through; other values are walked and their string and number leaves joined
// by newlines, with object keys visited in sorted order.
func FlattenResume(resume any) (string, error) {
	switch v := resume.(type) {
	case nil:
		return "", nil
	case string:
		return v, nil
	case []byte:
		return string(v), nil
	}

	raw, err := json.Marshal(resume)
	if err != nil {
		return "", fmt.Errorf("failed to serialize resume: %w", err)
	}
	var decoded any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return "", fmt.Errorf("failed to decode resume: %w", err)
	}
	var lines []string
	collectLeaves(decoded, &lines)
	return strings.Join(lines, "\n"), nil
}

func collectLeaves(v any, lines *[]string) {
	switch t := v.(type) {
	case string:
		if s := strings.TrimSpace(t); s != "" {
			*lines = append(*lines, s)
		}
	case float64:
		*lines = append(*lines, strconv.FormatFloat(t, 'f', -1, 64))
	case []any:
		for _, item := range t {
			collectLeaves(item, lines)
		}
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		slices.Sort(keys)
		for _, k := range keys {
			collectLeaves(t[k], lines)
		}
	}
}

// checkPartition verifies that matched and missed together hold every
// keyword exactly once, compared case-insensitively, and returns them using
// the caller's spelling.
func checkPartition(keywords []string, c Classification) ([]string, []string, error) {
	canonical := make(map[string]string, len(keywords))
	for _, kw := range keywords {
		canonical[strings.ToLower(strings.TrimSpace(kw))] = kw
	}
	assigned := make(map[string]bool, len(keywords))
	take := func(list []string) ([]string, error) {
		out := make([]string, 0, len(list))
		for _, kw := range list {
			key := strings.ToLower(strings.TrimSpace(kw))
			orig, ok := canonical[key]
			if !ok {
				return nil, fmt.Errorf("classifier returned unknown keyword %q", kw)
			}
			if assigned[key] {
				return nil, fmt.Errorf("classifier returned keyword %q more than once", kw)
			}
			assigned[key] = true
			out = append(out, orig)
		}
		return out, nil
	}

	matched, err := take(c.Matched)
	if err != nil {
		return nil, nil, err
	}
	missed, err := take(c.Missed)
	if err != nil {
		return nil, nil, err
	}
	if len(assigned) != len(canonical) {
		return nil, nil, fmt.Errorf("classifier omitted %d of %d keywords", len(canonical)-len(assigned), len(canonical))
	}
	return matched, missed, nil
}
