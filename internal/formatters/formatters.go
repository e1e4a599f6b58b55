package formatters

import (
	"encoding/json"
	"fmt"
	"strings"

	"intervu/internal/types"
)

// Formatter interface for different output formats
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

	// Register default formatters
	registry.RegisterFormatter("json", "any", &JSONFormatter{})
	registry.RegisterFormatter("text", "ChunkReport", &ChunkReportTextFormatter{})
	registry.RegisterFormatter("markdown", "ChunkReport", &ChunkReportMarkdownFormatter{})
	registry.RegisterFormatter("text", "FeedbackOutput", &FeedbackTextFormatter{})
	registry.RegisterFormatter("markdown", "FeedbackOutput", &FeedbackMarkdownFormatter{})

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

	// Try specific formatter first
	if formatters, exists := fr.formatters[format]; exists {
		if formatter, exists := formatters[dataType]; exists {
			return formatter.Format(data)
		}
		// Fall back to generic formatter
		if formatter, exists := formatters["any"]; exists {
			return formatter.Format(data)
		}
	}

	return "", fmt.Errorf("no formatter found for format '%s' and type '%s'", format, dataType)
}

// GetSupportedFormats returns all supported formats
func (fr *FormatterRegistry) GetSupportedFormats() []string {
	formats := make([]string, 0, len(fr.formatters))
	for format := range fr.formatters {
		formats = append(formats, format)
	}
	return formats
}

func getDataType(data any) string {
	switch data.(type) {
	case types.ChunkReport:
		return "ChunkReport"
	case types.FeedbackOutput:
		return "FeedbackOutput"
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
	return string(jsonData), nil
}

func (jf *JSONFormatter) SupportedType() string {
	return "any"
}

// ChunkReportTextFormatter handles text formatting for chunking reports
type ChunkReportTextFormatter struct{}

func (ctf *ChunkReportTextFormatter) Format(data any) (string, error) {
	result, ok := data.(types.ChunkReport)
	if !ok {
		return "", fmt.Errorf("expected ChunkReport, got %T", data)
	}

	var output strings.Builder

	output.WriteString("=== JOB DESCRIPTION CHUNKS ===\n\n")
	output.WriteString(fmt.Sprintf("Source words: %d\n", result.SourceWords))
	output.WriteString(fmt.Sprintf("Chunk size: %d words, overlap: %d words\n", result.ChunkSizeWords, result.OverlapWords))
	output.WriteString(fmt.Sprintf("Chunks: %d\n\n", len(result.Chunks)))

	for _, chunk := range result.Chunks {
		output.WriteString(fmt.Sprintf("--- Chunk %d (%d words) ---\n", chunk.Index, chunk.Words))
		output.WriteString(chunk.Text)
		output.WriteString("\n\n")
	}

	return output.String(), nil
}

func (ctf *ChunkReportTextFormatter) SupportedType() string {
	return "ChunkReport"
}

// ChunkReportMarkdownFormatter handles markdown formatting for chunking reports
type ChunkReportMarkdownFormatter struct{}

func (cmf *ChunkReportMarkdownFormatter) Format(data any) (string, error) {
	result, ok := data.(types.ChunkReport)
	if !ok {
		return "", fmt.Errorf("expected ChunkReport, got %T", data)
	}

	var output strings.Builder

	output.WriteString("# Job Description Chunks\n\n")
	output.WriteString(fmt.Sprintf("**Source words:** %d\n\n", result.SourceWords))
	output.WriteString(fmt.Sprintf("**Chunk size:** %d words, **overlap:** %d words\n\n", result.ChunkSizeWords, result.OverlapWords))
	output.WriteString(fmt.Sprintf("**Chunks:** %d\n\n", len(result.Chunks)))

	for _, chunk := range result.Chunks {
		output.WriteString(fmt.Sprintf("## Chunk %d (%d words)\n\n", chunk.Index, chunk.Words))
		output.WriteString(chunk.Text)
		output.WriteString("\n\n")
	}

	return output.String(), nil
}

func (cmf *ChunkReportMarkdownFormatter) SupportedType() string {
	return "ChunkReport"
}

// FeedbackTextFormatter handles text formatting for interview feedback
type FeedbackTextFormatter struct{}

func (ftf *FeedbackTextFormatter) Format(data any) (string, error) {
	result, ok := data.(types.FeedbackOutput)
	if !ok {
		return "", fmt.Errorf("expected FeedbackOutput, got %T", data)
	}

	var output strings.Builder

	output.WriteString("=== INTERVIEW FEEDBACK ===\n\n")
	if !result.Ready {
		output.WriteString("Feedback is not ready yet.\n\n")
	}
	output.WriteString(result.Feedback)
	output.WriteString("\n")

	return output.String(), nil
}

func (ftf *FeedbackTextFormatter) SupportedType() string {
	return "FeedbackOutput"
}

// FeedbackMarkdownFormatter handles markdown formatting for interview feedback
type FeedbackMarkdownFormatter struct{}

func (fmf *FeedbackMarkdownFormatter) Format(data any) (string, error) {
	result, ok := data.(types.FeedbackOutput)
	if !ok {
		return "", fmt.Errorf("expected FeedbackOutput, got %T", data)
	}

	var output strings.Builder

	output.WriteString("# Interview Feedback\n\n")
	if !result.Ready {
		output.WriteString("_Feedback is not ready yet._\n\n")
	}
	output.WriteString(result.Feedback)
	output.WriteString("\n")

	return output.String(), nil
}

func (fmf *FeedbackMarkdownFormatter) SupportedType() string {
	return "FeedbackOutput"
}

// Global formatter registry
var GlobalRegistry = NewFormatterRegistry()
