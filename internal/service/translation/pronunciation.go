package translation

import (
	"strings"
	"unicode"

	"github.com/mozillazg/go-unidecode"
	"github.com/sirupsen/logrus"

	"github.com/Taichi-iskw/lingopad/internal/language"
)

// familyRules normalise digraphs and vowel clusters after transliteration.
// Replacer pairs are matched in argument order at each position.
var familyRules = map[language.Family]*strings.Replacer{
	language.FamilyIndic: strings.NewReplacer(
		"aa", "a", "ii", "i", "ee", "i", "uu", "u", "oo", "u",
		"ph", "f", "bh", "b", "dh", "d", "th", "t", "kh", "k", "gh", "g", "jh", "j",
	),
	language.FamilyMiddleEastern: strings.NewReplacer(
		"aa", "a", "ii", "i", "ee", "i", "uu", "u", "oo", "u",
		"'", "", "`", "", "q", "k", "dh", "d", "th", "t", "gh", "g",
	),
	language.FamilyChinese: strings.NewReplacer(
		"zh", "j", "ch", "ch", "c", "ts", "x", "sh", "q", "ch",
	),
	language.FamilyJapanese: strings.NewReplacer(
		"ou", "o", "uu", "u", "aa", "a", "ii", "i", "ee", "e", "oo", "o",
	),
	language.FamilyKorean: strings.NewReplacer(
		"yeo", "yo", "eo", "o", "eu", "u", "ae", "e", "oe", "we",
	),
	language.FamilyGeneric: strings.NewReplacer(
		"aa", "a", "ee", "i", "oo", "u", "ph", "f", "kh", "k",
	),
}

// Approximator builds bracketed Latin reading aids such as [NAMA STE]
type Approximator struct {
	table         *language.Table
	transliterate func(string) string
	log           logrus.FieldLogger
}

// NewApproximator creates an approximator using unidecode transliteration
func NewApproximator(table *language.Table, log logrus.FieldLogger) *Approximator {
	return &Approximator{
		table:         table,
		transliterate: unidecode.Unidecode,
		log:           log,
	}
}

// Approximate returns the reading aid for text, or "" for empty text and placeholders.
// It never panics.
func (a *Approximator) Approximate(text, targetLanguage string) (result string) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" || IsPlaceholder(trimmed) {
		return ""
	}

	var latin string
	defer func() {
		if r := recover(); r != nil {
			a.log.WithFields(logrus.Fields{
				"language": targetLanguage,
				"panic":    r,
			}).Warn("Pronunciation generation failed, using fallback")
			// clean the transliteration when it got that far, else the source text
			if strings.TrimSpace(latin) != "" {
				result = a.fallback(latin)
			} else {
				result = a.fallback(trimmed)
			}
		}
	}()

	latin = strings.ToLower(a.transliterate(trimmed))
	if strings.TrimSpace(latin) == "" {
		return a.fallback(trimmed)
	}

	rules, ok := familyRules[a.table.FamilyOf(targetLanguage)]
	if !ok {
		rules = familyRules[language.FamilyGeneric]
	}

	cleaned := cleanup(rules.Replace(latin))
	if cleaned == "" {
		return a.fallback(trimmed)
	}
	return bracket(segment(cleaned))
}

// fallback skips the family rules and segmentation, then gives up to the raw text
func (a *Approximator) fallback(text string) (result string) {
	defer func() {
		if r := recover(); r != nil {
			result = bracket(text)
		}
	}()

	cleaned := cleanup(strings.ToLower(text))
	if cleaned == "" {
		return bracket(text)
	}
	return bracket(cleaned)
}

func bracket(s string) string {
	return "[" + strings.ToUpper(s) + "]"
}

func isVowel(r rune) bool {
	switch r {
	case 'a', 'e', 'i', 'o', 'u':
		return true
	}
	return false
}

func isConsonant(r rune) bool {
	return r >= 'a' && r <= 'z' && !isVowel(r)
}

// cleanup collapses repeated letters, drops stray h and strips everything but letters, digits and spaces
func cleanup(s string) string {
	runes := []rune(s)

	collapsed := make([]rune, 0, len(runes))
	for i, r := range runes {
		if i > 0 && r == runes[i-1] && unicode.IsLetter(r) {
			continue
		}
		collapsed = append(collapsed, r)
	}

	var b strings.Builder
	for i, r := range collapsed {
		if r == 'h' && i > 0 && isVowel(collapsed[i-1]) {
			last := i == len(collapsed)-1 || !unicode.IsLetter(collapsed[i+1])
			if last || isConsonant(collapsed[i+1]) {
				continue
			}
		}
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r):
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// segment splits words longer than four letters before vowel-consonant-consonant clusters
func segment(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		r := []rune(w)
		if len(r) <= 4 {
			continue
		}
		var b strings.Builder
		for j, c := range r {
			if j > 0 && j < len(r)-1 && isVowel(r[j-1]) && isConsonant(c) && isConsonant(r[j+1]) {
				b.WriteByte(' ')
			}
			b.WriteRune(c)
		}
		words[i] = b.String()
	}
	return strings.Join(words, " ")
}
