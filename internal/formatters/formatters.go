package formatters

import (
	"encoding/json"
	"fmt"
	"slices"

	"keyplan/internal/keywords"
	"keyplan/internal/semantic"
	"keyplan/internal/types"
	"keyplan/internal/validate"
)

// Formatter renders one data type in one output format
type Formatter interface {
	Format(data any) (string, error)
	SupportedType() string
}

// FormatterRegistry manages all available formatters
type FormatterRegistry struct {
	formatters map[string]map[string]Formatter // format -> type -> formatter
}

// NewFormatterRegistry creates a new formatter registry with default formatters
func NewFormatterRegistry() *FormatterRegistry {
	registry := &FormatterRegistry{
		formatters: make(map[string]map[string]Formatter),
	}

	registry.RegisterFormatter("json", "any", &JSONFormatter{})
	registry.RegisterFormatter("text", "Plan", &PlanTextFormatter{})
	registry.RegisterFormatter("markdown", "Plan", &PlanMarkdownFormatter{})
	registry.RegisterFormatter("text", "MatchResult", &MatchTextFormatter{})
	registry.RegisterFormatter("markdown", "MatchResult", &MatchMarkdownFormatter{})
	registry.RegisterFormatter("text", "ValidationReport", &ReportTextFormatter{})
	registry.RegisterFormatter("markdown", "ValidationReport", &ReportMarkdownFormatter{})
	registry.RegisterFormatter("text", "MatchDebug", &DebugTextFormatter{})
	registry.RegisterFormatter("markdown", "MatchDebug", &DebugMarkdownFormatter{})
	registry.RegisterFormatter("text", "BatchPlan", &BatchTextFormatter{})
	registry.RegisterFormatter("text", "Categories", &CategoriesTextFormatter{})

	return registry
}

// RegisterFormatter registers a new formatter for a specific format and data type
func (fr *FormatterRegistry) RegisterFormatter(format, dataType string, formatter Formatter) {
	if fr.formatters[format] == nil {
		fr.formatters[format] = make(map[string]Formatter)
	}
	fr.formatters[format][dataType] = formatter
}

// Format formats data using the appropriate formatter
func (fr *FormatterRegistry) Format(data any, format string) (string, error) {
	dataType := getDataType(data)

	if formatters, exists := fr.formatters[format]; exists {
		if formatter, exists := formatters[dataType]; exists {
			return formatter.Format(data)
		}
		if formatter, exists := formatters["any"]; exists {
			return formatter.Format(data)
		}
	}

	return "", fmt.Errorf("no formatter found for format '%s' and type '%s'", format, dataType)
}

// GetSupportedFormats returns all supported formats, sorted
func (fr *FormatterRegistry) GetSupportedFormats() []string {
	formats := make([]string, 0, len(fr.formatters))
	for format := range fr.formatters {
		formats = append(formats, format)
	}
	slices.Sort(formats)
	return formats
}

func getDataType(data any) string {
	switch data.(type) {
	case keywords.Plan:
		return "Plan"
	case semantic.Result:
		return "MatchResult"
	case validate.Report:
		return "ValidationReport"
	case validate.MatchDebug:
		return "MatchDebug"
	case types.BatchPlanResponse:
		return "BatchPlan"
	case []validate.KeywordReport:
		return "Categories"
	default:
		return "any"
	}
}

// JSONFormatter handles JSON formatting for any data type
type JSONFormatter struct{}

func (jf *JSONFormatter) Format(data any) (string, error) {
	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return "", err
	}
	return string(jsonData) + "\n", nil
}

func (jf *JSONFormatter) SupportedType() string {
	return "any"
}

// GlobalRegistry is the registry the CLI writes through
var GlobalRegistry = NewFormatterRegistry()
