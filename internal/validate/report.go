package validate

// KeywordReport is the per-keyword line of a Report.
type KeywordReport struct {
	Keyword          string   `json:"keyword"`
	Category         Category `json:"category"`
	Suggestion       string   `json:"suggestion"`
	InJobDescription bool     `json:"inJobDescription"`
}

// Report combines the containment check with categorization and advice.
type Report struct {
	Result
	Keywords   []KeywordReport  `json:"keywords"`
	Categories map[Category]int `json:"categories"`
}

// BuildReport validates keywords against jobDescription and attaches a
// category and suggestion to each, in input order.
func BuildReport(keywords []string, jobDescription string) Report {
	res := ValidateExtractedKeywords(keywords, jobDescription)
	valid := make(map[string]bool, len(res.Valid))
	for _, kw := range res.Valid {
		valid[kw] = true
	}

	r := Report{
		Result:     res,
		Keywords:   make([]KeywordReport, 0, len(keywords)),
		Categories: make(map[Category]int),
	}
	for _, kw := range keywords {
		cat := CategorizeKeyword(kw)
		r.Categories[cat]++
		r.Keywords = append(r.Keywords, KeywordReport{
			Keyword:          kw,
			Category:         cat,
			Suggestion:       suggestions[cat],
			InJobDescription: valid[kw],
		})
	}
	return r
}

// Categorize assigns a category and suggestion to each keyword, in input order.
func Categorize(keywords []string) []KeywordReport {
	out := make([]KeywordReport, 0, len(keywords))
	for _, kw := range keywords {
		cat := CategorizeKeyword(kw)
		out = append(out, KeywordReport{Keyword: kw, Category: cat, Suggestion: suggestions[cat]})
	}
	return out
}
