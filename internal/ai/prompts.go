package ai

import (
	"encoding/json"
	"fmt"
	"strings"
)

// DefaultSystemPrompt instructs the model to judge keyword coverage honestly
const DefaultSystemPrompt = `You are an experienced technical recruiter checking whether a resume demonstrates the skills a job asks for. Your core principles are:

- Judge each keyword independently against the resume text only
- The standard for every keyword is: did the candidate clearly do this work, regardless of exact wording
- Synonyms, abbreviations and a more specific tool of the same kind count when the work itself is clear
- Do not credit a keyword because it is merely plausible for the candidate's role
- Never add, drop, rename, or merge keywords

Respond only with the requested JSON.`

// DefaultUserPrompt takes the keyword list as a JSON array and the resume text
const DefaultUserPrompt = `Classify every keyword below as matched or missed for this resume.

Rules:
- Every keyword must appear exactly once, in either "matched" or "missed", spelled exactly as given
- For each keyword add a one-sentence reason to "reasoning"

Keywords:
%s

Resume:
%s`

// buildPrompts returns the system and user prompts, preferring the overrides
func buildPrompts(systemOverride, userOverride string, keywords []string, resume string) (string, string) {
	system := DefaultSystemPrompt
	if systemOverride != "" {
		system = systemOverride
	}
	user := DefaultUserPrompt
	if userOverride != "" {
		user = userOverride
	}

	list, err := json.Marshal(keywords)
	if err != nil {
		// []string always encodes
		list = []byte("[]")
	}
	if strings.Count(user, "%s") < 2 {
		return system, fmt.Sprintf("%s\n\nKeywords:\n%s\n\nResume:\n%s", user, list, resume)
	}
	return system, fmt.Sprintf(user, list, resume)
}
