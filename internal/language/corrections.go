package language

import (
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed corrections.yaml
var correctionsYAML []byte

// CorrectionEntry replaces known wrong renderings of a source word
type CorrectionEntry struct {
	Language string   `yaml:"language"`
	Word     string   `yaml:"word"`
	Wrong    []string `yaml:"wrong"`
	Correct  string   `yaml:"correct"`
}

// CorrectionTable is keyed by (language, source word)
type CorrectionTable struct {
	byLanguage map[string]map[string]CorrectionEntry
	ordered    map[string][]CorrectionEntry
}

// NewCorrectionTable parses a YAML corrections document
func NewCorrectionTable(data []byte) (*CorrectionTable, error) {
	var doc struct {
		Corrections []CorrectionEntry `yaml:"corrections"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse correction table: %w", err)
	}

	ct := &CorrectionTable{
		byLanguage: make(map[string]map[string]CorrectionEntry),
		ordered:    make(map[string][]CorrectionEntry),
	}
	for _, e := range doc.Corrections {
		lang := Normalize(e.Language)
		word := strings.ToLower(strings.TrimSpace(e.Word))
		if lang == "" || word == "" || e.Correct == "" || len(e.Wrong) == 0 {
			return nil, fmt.Errorf("incomplete correction entry: %s/%s", e.Language, e.Word)
		}
		if ct.byLanguage[lang] == nil {
			ct.byLanguage[lang] = make(map[string]CorrectionEntry)
		}
		e.Language, e.Word = lang, word
		ct.byLanguage[lang][word] = e
		ct.ordered[lang] = append(ct.ordered[lang], e)
	}
	return ct, nil
}

var defaultCorrections = mustCorrections(correctionsYAML)

func mustCorrections(data []byte) *CorrectionTable {
	ct, err := NewCorrectionTable(data)
	if err != nil {
		panic(err)
	}
	return ct
}

// DefaultCorrections returns the embedded correction table
func DefaultCorrections() *CorrectionTable {
	return defaultCorrections
}

// Corrections returns the entries for a language in table order
func (ct *CorrectionTable) Corrections(language string) ([]CorrectionEntry, bool) {
	entries, ok := ct.ordered[Normalize(language)]
	return entries, ok
}

// HasLanguage reports whether any correction exists for the language
func (ct *CorrectionTable) HasLanguage(language string) bool {
	_, ok := ct.byLanguage[Normalize(language)]
	return ok
}

// Lookup returns the correction for a lower-cased source word
func (ct *CorrectionTable) Lookup(language, word string) (CorrectionEntry, bool) {
	words, ok := ct.byLanguage[Normalize(language)]
	if !ok {
		return CorrectionEntry{}, false
	}
	e, ok := words[word]
	return e, ok
}
