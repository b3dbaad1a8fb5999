// Package language holds the static data the translation pipeline looks up:
// provider language codes and known mistranslation corrections.
package language

import (
	_ "embed"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"gopkg.in/yaml.v3"
)

//go:embed languages.yaml
var languagesYAML []byte

// ErrUnsupportedLanguage is returned when a language name has no entry
var ErrUnsupportedLanguage = errors.New("unsupported language")

// Kind selects which provider-specific code column to resolve
type Kind int

const (
	// KindModel is the script-qualified NLLB tag (e.g. hin_Deva)
	KindModel Kind = iota
	// KindCloud is the short ISO-like tag (e.g. hi)
	KindCloud
)

// Family selects the pronunciation rule set for a language
type Family string

const (
	FamilyIndic         Family = "indic"
	FamilyMiddleEastern Family = "middle_eastern"
	FamilyChinese       Family = "chinese"
	FamilyJapanese      Family = "japanese"
	FamilyKorean        Family = "korean"
	FamilyGeneric       Family = "generic"
)

// Entry is one supported language
type Entry struct {
	Name         string   `yaml:"name"`
	ModelCode    string   `yaml:"model"`
	CloudCode    string   `yaml:"cloud"`
	Family       Family   `yaml:"family"`
	HostedModels []string `yaml:"hosted_models"`
}

// Table maps language names to provider codes
type Table struct {
	entries []Entry
	byName  map[string]Entry
}

// NewTable parses a YAML language document
func NewTable(data []byte) (*Table, error) {
	var doc struct {
		Languages []Entry `yaml:"languages"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse language table: %w", err)
	}

	t := &Table{byName: make(map[string]Entry, len(doc.Languages))}
	for _, e := range doc.Languages {
		key := Normalize(e.Name)
		if key == "" || e.ModelCode == "" || e.CloudCode == "" {
			return nil, fmt.Errorf("incomplete language entry: %q", e.Name)
		}
		if _, dup := t.byName[key]; dup {
			return nil, fmt.Errorf("duplicate language entry: %q", e.Name)
		}
		if e.Family == "" {
			e.Family = FamilyGeneric
		}
		e.Name = key
		t.entries = append(t.entries, e)
		t.byName[key] = e
	}
	return t, nil
}

var defaultTable = mustTable(languagesYAML)

func mustTable(data []byte) *Table {
	t, err := NewTable(data)
	if err != nil {
		panic(err)
	}
	return t
}

// Default returns the embedded language table
func Default() *Table {
	return defaultTable
}

// Normalize folds a language name to its lookup key
func Normalize(name string) string {
	return cases.Fold().String(strings.TrimSpace(name))
}

// Resolve returns the provider-specific code for a language name
func (t *Table) Resolve(name string, kind Kind) (string, error) {
	e, ok := t.byName[Normalize(name)]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedLanguage, name)
	}
	switch kind {
	case KindModel:
		return e.ModelCode, nil
	case KindCloud:
		return e.CloudCode, nil
	default:
		return "", fmt.Errorf("unknown provider kind %d", kind)
	}
}

// IsSupported reports whether the language resolves for the default provider kind
func (t *Table) IsSupported(name string) bool {
	_, err := t.Resolve(name, KindModel)
	return err == nil
}

// Lookup returns the full entry for a language name
func (t *Table) Lookup(name string) (Entry, bool) {
	e, ok := t.byName[Normalize(name)]
	return e, ok
}

// FamilyOf returns the pronunciation family, FamilyGeneric when unknown
func (t *Table) FamilyOf(name string) Family {
	if e, ok := t.byName[Normalize(name)]; ok {
		return e.Family
	}
	return FamilyGeneric
}

// Supported returns the language keys in table order
func (t *Table) Supported() []string {
	names := make([]string, 0, len(t.entries))
	for _, e := range t.entries {
		names = append(names, e.Name)
	}
	return names
}
