package ai

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
	"google.golang.org/genai"
)

// classificationSchema is sent to the model as the response schema
var classificationSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"matched": {Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}},
		"missed":  {Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}},
		"reasoning": {
			Type: genai.TypeArray,
			Items: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"keyword":   {Type: genai.TypeString},
					"reasoning": {Type: genai.TypeString},
				},
				Required: []string{"keyword", "reasoning"},
			},
		},
	},
	Required: []string{"matched", "missed"},
}

// classificationJSONSchema validates what the model actually returned
const classificationJSONSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["matched", "missed"],
  "properties": {
    "matched": {"type": "array", "items": {"type": "string"}},
    "missed": {"type": "array", "items": {"type": "string"}},
    "reasoning": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["keyword", "reasoning"],
        "properties": {
          "keyword": {"type": "string"},
          "reasoning": {"type": "string"}
        }
      }
    }
  }
}`

var classificationSchemaLoader = gojsonschema.NewStringLoader(classificationJSONSchema)

// classificationDocument is the model's JSON answer
type classificationDocument struct {
	Matched   []string `json:"matched"`
	Missed    []string `json:"missed"`
	Reasoning []struct {
		Keyword   string `json:"keyword"`
		Reasoning string `json:"reasoning"`
	} `json:"reasoning"`
}

// parseClassification validates raw against the schema and decodes it
func parseClassification(raw string) (classificationDocument, error) {
	var doc classificationDocument

	result, err := gojsonschema.Validate(classificationSchemaLoader, gojsonschema.NewStringLoader(raw))
	if err != nil {
		return doc, fmt.Errorf("response is not valid JSON: %w", err)
	}
	if !result.Valid() {
		problems := make([]string, 0, len(result.Errors()))
		for _, desc := range result.Errors() {
			field := desc.Field()
			if field == "" {
				field = "(root)"
			}
			problems = append(problems, field+": "+desc.Description())
		}
		return doc, fmt.Errorf("response does not match schema: %s", strings.Join(problems, "; "))
	}

	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		return doc, fmt.Errorf("failed to decode response: %w", err)
	}
	return doc, nil
}
