package formatters

import (
	"fmt"
	"strings"

	"keyplan/internal/keywords"
	"keyplan/internal/types"
)

// PlanTextFormatter renders a keyword plan as plain text
type PlanTextFormatter struct{}

func (f *PlanTextFormatter) Format(data any) (string, error) {
	plan, ok := data.(keywords.Plan)
	if !ok {
		return "", fmt.Errorf("expected Plan, got %T", data)
	}
	var output strings.Builder
	writePlanText(&output, plan)
	return output.String(), nil
}

func (f *PlanTextFormatter) SupportedType() string {
	return "Plan"
}

func writePlanText(output *strings.Builder, plan keywords.Plan) {
	output.WriteString("=== KEYWORD PLAN ===\n")
	if plan.JobTitle != "" {
		fmt.Fprintf(output, "Job: %s\n", plan.JobTitle)
	}
	output.WriteString("\n")

	if len(plan.Top10) == 0 {
		output.WriteString("No keywords surfaced.\n")
	}
	for i, s := range plan.Top10 {
		fmt.Fprintf(output, "%d. %s [%s] -> %s\n", i+1, s.Term, s.Priority, joinPlacements(s.Where))
		if s.Supported {
			fmt.Fprintf(output, "   Proof: %s\n", s.Proof)
		} else {
			fmt.Fprintf(output, "   To do: %s\n", s.ProofSuggestion)
		}
		if s.Snippets.Skills != "" {
			fmt.Fprintf(output, "   Skills: %s\n", s.Snippets.Skills)
		}
		if s.Snippets.Summary != "" {
			fmt.Fprintf(output, "   Summary: %s\n", s.Snippets.Summary)
		}
		if s.Snippets.Bullet != "" {
			fmt.Fprintf(output, "   Bullet: %s\n", s.Snippets.Bullet)
		}
		if len(s.Synonyms) > 0 {
			fmt.Fprintf(output, "   Also: %s\n", strings.Join(s.Synonyms, ", "))
		}
		output.WriteString("\n")
	}

	if plan.Keywords != nil {
		output.WriteString("=== COVERAGE ===\n")
		fmt.Fprintf(output, "In resume (%d): %s\n", len(plan.Keywords.Resume), strings.Join(plan.Keywords.Resume, ", "))
		fmt.Fprintf(output, "Missing (%d): %s\n", len(plan.Keywords.Missing), strings.Join(plan.Keywords.Missing, ", "))
		output.WriteString("\n")
	}

	if len(plan.Validation.Warnings) > 0 {
		output.WriteString("=== WARNINGS ===\n")
		for _, w := range plan.Validation.Warnings {
			fmt.Fprintf(output, "- %s\n", w)
		}
	}
}

// PlanMarkdownFormatter renders a keyword plan as markdown
type PlanMarkdownFormatter struct{}

func (f *PlanMarkdownFormatter) Format(data any) (string, error) {
	plan, ok := data.(keywords.Plan)
	if !ok {
		return "", fmt.Errorf("expected Plan, got %T", data)
	}
	var output strings.Builder
	writePlanMarkdown(&output, plan, "#")
	return output.String(), nil
}

func (f *PlanMarkdownFormatter) SupportedType() string {
	return "Plan"
}

func writePlanMarkdown(output *strings.Builder, plan keywords.Plan, level string) {
	title := "Keyword Plan"
	if plan.JobTitle != "" {
		title += ": " + plan.JobTitle
	}
	fmt.Fprintf(output, "%s %s\n\n", level, title)

	if len(plan.Top10) == 0 {
		output.WriteString("No keywords surfaced.\n\n")
	} else {
		output.WriteString("| # | Term | Priority | Where | Supported |\n")
		output.WriteString("|---|------|----------|-------|-----------|\n")
		for i, s := range plan.Top10 {
			fmt.Fprintf(output, "| %d | %s | %s | %s | %s |\n",
				i+1, escapeCell(s.Term), s.Priority, joinPlacements(s.Where), yesNo(s.Supported))
		}
		output.WriteString("\n")
	}

	for _, s := range plan.Top10 {
		fmt.Fprintf(output, "%s# %s\n\n", level, s.Term)
		if s.Supported {
			fmt.Fprintf(output, "**Proof:** %s\n\n", s.Proof)
		} else {
			fmt.Fprintf(output, "**To do:** %s\n\n", s.ProofSuggestion)
		}
		if s.Snippets.Skills != "" {
			fmt.Fprintf(output, "- **Skills:** %s\n", s.Snippets.Skills)
		}
		if s.Snippets.Summary != "" {
			fmt.Fprintf(output, "- **Summary:** %s\n", s.Snippets.Summary)
		}
		if s.Snippets.Bullet != "" {
			fmt.Fprintf(output, "- **Bullet:** %s\n", s.Snippets.Bullet)
		}
		output.WriteString("\n")
	}

	if plan.Keywords != nil && len(plan.Keywords.Missing) > 0 {
		fmt.Fprintf(output, "%s# Missing From Resume\n\n", level)
		for _, kw := range plan.Keywords.Missing {
			fmt.Fprintf(output, "- %s\n", kw)
		}
		output.WriteString("\n")
	}
}

// BatchTextFormatter renders a batch of plans as plain text
type BatchTextFormatter struct{}

func (f *BatchTextFormatter) Format(data any) (string, error) {
	batch, ok := data.(types.BatchPlanResponse)
	if !ok {
		return "", fmt.Errorf("expected BatchPlanResponse, got %T", data)
	}
	var output strings.Builder
	for i, item := range batch.Results {
		id := item.ID
		if id == "" {
			id = fmt.Sprintf("#%d", i+1)
		}
		fmt.Fprintf(&output, "##### %s #####\n", id)
		writePlanText(&output, item.Plan)
		output.WriteString("\n")
	}
	return output.String(), nil
}

func (f *BatchTextFormatter) SupportedType() string {
	return "BatchPlan"
}

func joinPlacements(set keywords.PlacementSet) string {
	ps := set.Placements()
	names := make([]string, len(ps))
	for i, p := range ps {
		names[i] = p.String()
	}
	return strings.Join(names, ", ")
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
