package config

import (
	"fmt"

	"keyplan/internal/keywords"
)

// Validate rejects settings that would make rankings meaningless
func (e EngineConfig) Validate() error {
	w := e.Weights
	for name, value := range map[string]float64{
		"section":          w.Section,
		"frequency":        w.Frequency,
		"type":             w.Type,
		"presence":         w.Presence,
		"discount":         w.Discount,
		"presenceDiscount": w.PresenceDiscount,
	} {
		if value < 0 {
			return fmt.Errorf("weight %s must not be negative, got %v", name, value)
		}
	}
	if e.MaxTerms <= 0 || e.TopN <= 0 {
		return fmt.Errorf("maxTerms and topN must be positive")
	}
	if e.TopN > e.MaxTerms {
		return fmt.Errorf("topN (%d) cannot exceed maxTerms (%d)", e.TopN, e.MaxTerms)
	}
	if e.EvidenceContext < 0 {
		return fmt.Errorf("evidenceContext must not be negative")
	}
	if e.SummaryLimit <= 0 || e.BulletLimit <= 0 {
		return fmt.Errorf("summaryLimit and bulletLimit must be positive")
	}
	if e.BatchConcurrency <= 0 || e.MaxBatchSize <= 0 {
		return fmt.Errorf("batchConcurrency and maxBatchSize must be positive")
	}
	return nil
}

// EngineOptions translates the engine section into planner options
func (e EngineConfig) EngineOptions() []keywords.Option {
	opts := []keywords.Option{
		keywords.WithWeights(e.Weights),
		keywords.WithMaxTerms(e.MaxTerms),
		keywords.WithTopN(e.TopN),
		keywords.WithEvidenceContext(e.EvidenceContext),
		keywords.WithSnippetLimits(e.SummaryLimit, e.BulletLimit),
	}
	lex := e.Lexicon
	if len(lex.Tools)+len(lex.Methods)+len(lex.Domains)+len(lex.Metrics) > 0 {
		opts = append(opts, keywords.WithClassifier(keywords.NewHeuristicClassifier(keywords.DefaultLexicon.Merge(lex))))
	}
	return opts
}
