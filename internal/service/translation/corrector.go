package translation

import (
	"strings"
	"unicode"

	"github.com/Taichi-iskw/lingopad/internal/language"
)

// Corrector replaces known provider mistranslations of single source words
type Corrector struct {
	table *language.CorrectionTable
}

// NewCorrector creates a corrector over the given table
func NewCorrector(table *language.CorrectionTable) *Corrector {
	return &Corrector{table: table}
}

// Correct rewrites wrong renderings of words found in original.
// Text for a language without corrections is returned unchanged.
func (c *Corrector) Correct(translated, original, targetLanguage string) string {
	if !c.table.HasLanguage(targetLanguage) {
		return translated
	}

	result := translated
	for _, word := range sourceWords(original) {
		entry, ok := c.table.Lookup(targetLanguage, word)
		if !ok {
			continue
		}
		for _, wrong := range entry.Wrong {
			result = strings.ReplaceAll(result, wrong, entry.Correct)
		}
	}
	return result
}

// sourceWords returns the distinct lower-cased words of text in order of first appearance
func sourceWords(text string) []string {
	fields := strings.Fields(strings.ToLower(text))
	words := make([]string, 0, len(fields))
	seen := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		w := strings.TrimFunc(f, func(r rune) bool {
			return unicode.IsPunct(r) || unicode.IsSymbol(r)
		})
		if w == "" {
			continue
		}
		if _, dup := seen[w]; dup {
			continue
		}
		seen[w] = struct{}{}
		words = append(words, w)
	}
	return words
}
