package semantic

import (
	"context"
	"fmt"
	"time"

	"keyplan/internal/errors"
)

// DefaultTimeout bounds a single classifier call.
const DefaultTimeout = 30 * time.Second

// Matcher composes an unreliable primary classifier with a deterministic
// fallback. The primary is attempted at most once per call.
type Matcher struct {
	primary  Classifier
	fallback Classifier
	timeout  time.Duration
	logger   *errors.Logger
}

// MatcherOption configures a Matcher.
type MatcherOption func(*Matcher)

// WithTimeout sets the primary call timeout.
func WithTimeout(d time.Duration) MatcherOption {
	return func(m *Matcher) {
		if d > 0 {
			m.timeout = d
		}
	}
}

// WithFallback replaces the SubstringClassifier fallback.
func WithFallback(c Classifier) MatcherOption {
	return func(m *Matcher) {
		if c != nil {
			m.fallback = c
		}
	}
}

// NewMatcher returns a Matcher. A nil primary means every call uses the
// fallback.
func NewMatcher(primary Classifier, logger *errors.Logger, opts ...MatcherOption) *Matcher {
	m := &Matcher{
		primary:  primary,
		fallback: SubstringClassifier{},
		timeout:  DefaultTimeout,
		logger:   logger,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// HasPrimary reports whether an external classifier is configured.
func (m *Matcher) HasPrimary() bool { return m.primary != nil }

// Match classifies the request keywords. It never fails: any primary error,
// timeout or malformed verdict is logged and the fallback result returned.
func (m *Matcher) Match(ctx context.Context, req Request) Result {
	keywords := NormalizeKeywords(req.Keywords)
	if len(keywords) == 0 {
		return Result{MatchedKeywords: []string{}, MissedKeywords: []string{}, Source: SourceFallback}
	}

	resume, err := FlattenResume(req.Resume)
	if err != nil {
		m.warn("Could not flatten resume, using its default text form", "error", err)
		resume = fmt.Sprint(req.Resume)
	}

	if m.primary != nil {
		res, err := m.tryPrimary(ctx, keywords, resume)
		if err == nil {
			return res
		}
		m.warn("Semantic classifier failed, using substring fallback",
			"error", err,
			"keywords", len(keywords))
		fallback := m.runFallback(ctx, keywords, resume)
		fallback.FallbackReason = err.Error()
		return fallback
	}
	return m.runFallback(ctx, keywords, resume)
}

func (m *Matcher) tryPrimary(ctx context.Context, keywords []string, resume string) (Result, error) {
	callCtx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	c, err := m.primary.ClassifyKeywordMatches(callCtx, keywords, resume)
	if err != nil {
		return Result{}, err
	}
	matched, missed, err := checkPartition(keywords, c)
	if err != nil {
		return Result{}, errors.NewAIError(errors.ErrCodeAIInvalidResponse, "classifier verdict does not partition keywords", err)
	}
	return Result{
		MatchedKeywords: matched,
		MissedKeywords:  missed,
		MatchScore:      Score(len(matched), len(keywords)),
		Reasoning:       c.Reasoning,
		Source:          SourceSemantic,
		Usage:           c.Usage,
	}, nil
}

func (m *Matcher) runFallback(ctx context.Context, keywords []string, resume string) Result {
	c, err := m.fallback.ClassifyKeywordMatches(ctx, keywords, resume)
	matched, missed, perr := checkPartition(keywords, c)
	if err != nil || perr != nil {
		c, _ = SubstringClassifier{}.ClassifyKeywordMatches(ctx, keywords, resume)
		matched, missed = c.Matched, c.Missed
	}
	return Result{
		MatchedKeywords: matched,
		MissedKeywords:  missed,
		MatchScore:      Score(len(matched), len(keywords)),
		Reasoning:       c.Reasoning,
		Source:          SourceFallback,
	}
}

func (m *Matcher) warn(msg string, args ...any) {
	if m.logger != nil {
		m.logger.Warn(msg, args...)
	}
}
