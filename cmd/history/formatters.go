package history

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/Taichi-iskw/lingopad/internal/model"
)

// Formatter defines interface for output formatting
type Formatter interface {
	Format(records []*model.TranslationRecord) (string, error)
	FormatStats(stats *model.Statistics) (string, error)
}

// TextFormatter formats output as plain text
type TextFormatter struct{}

// Format formats saved translations as plain text
func (f *TextFormatter) Format(records []*model.TranslationRecord) (string, error) {
	if len(records) == 0 {
		return "No saved translations found\n", nil
	}

	var output strings.Builder
	for i, rec := range records {
		if i > 0 {
			output.WriteString("\n")
		}
		output.WriteString(fmt.Sprintf("ID: %d\n", rec.ID))
		output.WriteString(fmt.Sprintf("Language: %s → %s\n", rec.SourceLanguage, rec.TargetLanguage))
		output.WriteString(fmt.Sprintf("Method: %s\n", rec.TranslationMethod))
		output.WriteString(fmt.Sprintf("Created At: %s\n", rec.CreatedAt.Format(time.RFC3339)))
		output.WriteString(fmt.Sprintf("Input: %s\n", truncateString(rec.InputText, 80)))
		output.WriteString(fmt.Sprintf("Translation: %s\n", rec.TranslatedText))
		if rec.Pronunciation != nil {
			output.WriteString(fmt.Sprintf("Pronunciation: %s\n", *rec.Pronunciation))
		}
	}

	return output.String(), nil
}

// FormatStats formats statistics as plain text, keys sorted
func (f *TextFormatter) FormatStats(stats *model.Statistics) (string, error) {
	var output strings.Builder

	output.WriteString(fmt.Sprintf("Total translations: %d\n", stats.TotalTranslations))
	output.WriteString(fmt.Sprintf("Languages: %d\n", stats.TotalLanguages))
	writeCounts(&output, "By language", stats.LanguageCounts)
	writeCounts(&output, "By method", stats.MethodCounts)

	return output.String(), nil
}

func writeCounts(output *strings.Builder, title string, counts map[string]int64) {
	if len(counts) == 0 {
		return
	}
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	output.WriteString("\n" + title + ":\n")
	for _, k := range keys {
		output.WriteString(fmt.Sprintf("  %-12s %d\n", k, counts[k]))
	}
}

// JSONFormatter formats output as JSON
type JSONFormatter struct{}

// Format formats saved translations as a JSON array
func (f *JSONFormatter) Format(records []*model.TranslationRecord) (string, error) {
	if records == nil {
		records = []*model.TranslationRecord{}
	}
	return marshal(records)
}

// FormatStats formats statistics as JSON
func (f *JSONFormatter) FormatStats(stats *model.Statistics) (string, error) {
	return marshal(stats)
}

func marshal(v any) (string, error) {
	jsonBytes, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal JSON: %w", err)
	}
	return string(jsonBytes) + "\n", nil
}

// GetFormatter returns the appropriate formatter based on format string
func GetFormatter(format string) (Formatter, error) {
	switch strings.ToLower(format) {
	case "text", "txt", "":
		return &TextFormatter{}, nil
	case "json":
		return &JSONFormatter{}, nil
	default:
		return nil, fmt.Errorf("unsupported format: %s", format)
	}
}

// truncateString truncates a string to at most maxLen characters
func truncateString(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen]) + "..."
}
