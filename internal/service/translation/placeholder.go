package translation

import (
	"fmt"
	"strings"
)

const placeholderMarker = "translation temporarily unavailable"

// Placeholder is the result text returned when every provider failed
func Placeholder(text, targetLanguage string) string {
	return fmt.Sprintf("Translation temporarily unavailable for \"%s\" to %s. Please try again.", text, targetLanguage)
}

// IsPlaceholder reports whether text is an unavailability placeholder, ignoring case
func IsPlaceholder(text string) bool {
	return strings.Contains(strings.ToLower(text), placeholderMarker)
}
