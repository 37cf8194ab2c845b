package formatters

import (
	"fmt"
	"slices"
	"strings"

	"keyplan/internal/semantic"
	"keyplan/internal/validate"
)

// MatchTextFormatter renders a semantic match result as plain text
type MatchTextFormatter struct{}

func (f *MatchTextFormatter) Format(data any) (string, error) {
	res, ok := data.(semantic.Result)
	if !ok {
		return "", fmt.Errorf("expected MatchResult, got %T", data)
	}

	var output strings.Builder
	output.WriteString("=== KEYWORD MATCH ===\n\n")
	fmt.Fprintf(&output, "Score: %d/100 (%s)\n", res.MatchScore, res.Source)
	if res.FallbackReason != "" {
		fmt.Fprintf(&output, "Fallback reason: %s\n", res.FallbackReason)
	}
	output.WriteString("\n")

	writeKeywordList(&output, "Matched", res.MatchedKeywords, res.Reasoning, "- ")
	writeKeywordList(&output, "Missed", res.MissedKeywords, res.Reasoning, "- ")

	if res.Usage != nil {
		fmt.Fprintf(&output, "Tokens: input=%d output=%d total=%d\n",
			res.Usage.InputTokens, res.Usage.OutputTokens, res.Usage.TotalTokens)
	}
	return output.String(), nil
}

func (f *MatchTextFormatter) SupportedType() string {
	return "MatchResult"
}

// MatchMarkdownFormatter renders a semantic match result as markdown
type MatchMarkdownFormatter struct{}

func (f *MatchMarkdownFormatter) Format(data any) (string, error) {
	res, ok := data.(semantic.Result)
	if !ok {
		return "", fmt.Errorf("expected MatchResult, got %T", data)
	}

	var output strings.Builder
	output.WriteString("# Keyword Match\n\n")
	fmt.Fprintf(&output, "**Score:** %d/100\n\n", res.MatchScore)
	fmt.Fprintf(&output, "**Source:** %s\n\n", res.Source)
	if res.FallbackReason != "" {
		fmt.Fprintf(&output, "> Fallback reason: %s\n\n", res.FallbackReason)
	}

	output.WriteString("## Matched\n\n")
	writeKeywordList(&output, "", res.MatchedKeywords, res.Reasoning, "- ")
	output.WriteString("## Missed\n\n")
	writeKeywordList(&output, "", res.MissedKeywords, res.Reasoning, "- ")
	return output.String(), nil
}

func (f *MatchMarkdownFormatter) SupportedType() string {
	return "MatchResult"
}

func writeKeywordList(output *strings.Builder, heading string, list []string, reasoning map[string]string, bullet string) {
	if heading != "" {
		fmt.Fprintf(output, "%s (%d):\n", heading, len(list))
	}
	if len(list) == 0 {
		output.WriteString(bullet + "none\n\n")
		return
	}
	for _, kw := range list {
		if why := reasoning[kw]; why != "" {
			fmt.Fprintf(output, "%s%s: %s\n", bullet, kw, why)
		} else {
			fmt.Fprintf(output, "%s%s\n", bullet, kw)
		}
	}
	output.WriteString("\n")
}

// ReportTextFormatter renders a validation report as plain text
type ReportTextFormatter struct{}

func (f *ReportTextFormatter) Format(data any) (string, error) {
	r, ok := data.(validate.Report)
	if !ok {
		return "", fmt.Errorf("expected ValidationReport, got %T", data)
	}

	var output strings.Builder
	output.WriteString("=== KEYWORD VALIDATION ===\n\n")
	fmt.Fprintf(&output, "Found in job description: %d/%d\n\n", len(r.Valid), len(r.Keywords))
	for _, k := range r.Keywords {
		mark := "ok"
		if !k.InJobDescription {
			mark = "!!"
		}
		fmt.Fprintf(&output, "[%s] %s (%s)\n", mark, k.Keyword, k.Category)
		fmt.Fprintf(&output, "     %s\n", k.Suggestion)
	}
	if len(r.Categories) > 0 {
		output.WriteString("\nCategories:\n")
		for _, cat := range sortedCategories(r.Categories) {
			fmt.Fprintf(&output, "- %s: %d\n", cat, r.Categories[cat])
		}
	}
	return output.String(), nil
}

func (f *ReportTextFormatter) SupportedType() string {
	return "ValidationReport"
}

// ReportMarkdownFormatter renders a validation report as markdown
type ReportMarkdownFormatter struct{}

func (f *ReportMarkdownFormatter) Format(data any) (string, error) {
	r, ok := data.(validate.Report)
	if !ok {
		return "", fmt.Errorf("expected ValidationReport, got %T", data)
	}

	var output strings.Builder
	output.WriteString("# Keyword Validation\n\n")
	output.WriteString("| Keyword | Category | In JD | Suggestion |\n")
	output.WriteString("|---------|----------|-------|------------|\n")
	for _, k := range r.Keywords {
		fmt.Fprintf(&output, "| %s | %s | %s | %s |\n",
			escapeCell(k.Keyword), k.Category, yesNo(k.InJobDescription), escapeCell(k.Suggestion))
	}
	if len(r.Warnings) > 0 {
		output.WriteString("\n## Warnings\n\n")
		for _, w := range r.Warnings {
			fmt.Fprintf(&output, "- %s\n", w)
		}
	}
	return output.String(), nil
}

func (f *ReportMarkdownFormatter) SupportedType() string {
	return "ValidationReport"
}

// CategoriesTextFormatter renders keyword categories without a job description
type CategoriesTextFormatter struct{}

func (f *CategoriesTextFormatter) Format(data any) (string, error) {
	list, ok := data.([]validate.KeywordReport)
	if !ok {
		return "", fmt.Errorf("expected Categories, got %T", data)
	}

	var output strings.Builder
	for _, k := range list {
		fmt.Fprintf(&output, "%s\t%s\t%s\n", k.Keyword, k.Category, k.Suggestion)
	}
	return output.String(), nil
}

func (f *CategoriesTextFormatter) SupportedType() string {
	return "Categories"
}

func sortedCategories(counts map[validate.Category]int) []validate.Category {
	cats := make([]validate.Category, 0, len(counts))
	for c := range counts {
		cats = append(cats, c)
	}
	slices.Sort(cats)
	return cats
}

// DebugTextFormatter renders a keyword match trace as plain text
type DebugTextFormatter struct{}

func (f *DebugTextFormatter) Format(data any) (string, error) {
	d, ok := data.(validate.MatchDebug)
	if !ok {
		return "", fmt.Errorf("expected MatchDebug, got %T", data)
	}

	var output strings.Builder
	fmt.Fprintf(&output, "Keyword:    %s\n", d.Keyword)
	fmt.Fprintf(&output, "Normalized: %s\n", d.Normalized)
	fmt.Fprintf(&output, "Category:   %s\n", d.Category)
	fmt.Fprintf(&output, "Strategy:   %s\n", d.Strategy)
	fmt.Fprintf(&output, "Substring:  %t\n", d.SubstringFound)
	fmt.Fprintf(&output, "Token:      %t\n", d.TokenFound)
	fmt.Fprintf(&output, "Present:    %t\n", d.Present)
	if len(d.NearTokens) > 0 {
		fmt.Fprintf(&output, "Near:       %s\n", strings.Join(d.NearTokens, ", "))
	}
	return output.String(), nil
}

func (f *DebugTextFormatter) SupportedType() string {
	return "MatchDebug"
}

// DebugMarkdownFormatter renders a keyword match trace as markdown
type DebugMarkdownFormatter struct{}

func (f *DebugMarkdownFormatter) Format(data any) (string, error) {
	d, ok := data.(validate.MatchDebug)
	if !ok {
		return "", fmt.Errorf("expected MatchDebug, got %T", data)
	}

	var output strings.Builder
	fmt.Fprintf(&output, "# Match Trace: %s\n\n", d.Keyword)
	fmt.Fprintf(&output, "- **Present:** %s (%s strategy)\n", yesNo(d.Present), d.Strategy)
	fmt.Fprintf(&output, "- **Substring found:** %s\n", yesNo(d.SubstringFound))
	fmt.Fprintf(&output, "- **Token found:** %s\n", yesNo(d.TokenFound))
	fmt.Fprintf(&output, "- **Category:** %s\n", d.Category)
	if len(d.NearTokens) > 0 {
		fmt.Fprintf(&output, "- **Similar tokens:** %s\n", strings.Join(d.NearTokens, ", "))
	}
	return output.String(), nil
}

func (f *DebugMarkdownFormatter) SupportedType() string {
	return "MatchDebug"
}
