package model

import (
	"fmt"
	"strings"
	"time"
)

// Method identifies a translation provider as requested by callers
type Method string

const (
	MethodLocal  Method = "local"
	MethodHosted Method = "hosted"
	MethodCloud  Method = "cloud"
	MethodNone   Method = "none" // every provider failed
)

// Stored method names (translation_method column and API values)
const (
	StoredNLLB        = "nllb"
	StoredAWS         = "aws"
	StoredHuggingFace = "huggingface"
	StoredMock        = "mock"
)

// DefaultSourceLanguage is the only source language the providers are asked to translate from
const DefaultSourceLanguage = "english"

// StoredName returns the API/storage name for the method
func (m Method) StoredName() string {
	switch m {
	case MethodLocal:
		return StoredNLLB
	case MethodHosted:
		return StoredHuggingFace
	case MethodCloud:
		return StoredAWS
	default:
		return string(MethodNone)
	}
}

// ParseMethod accepts both API names (nllb, huggingface, aws) and internal names.
// An empty string selects the hosted provider.
func ParseMethod(s string) (Method, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", StoredHuggingFace, string(MethodHosted):
		return MethodHosted, nil
	case StoredNLLB, string(MethodLocal):
		return MethodLocal, nil
	case StoredAWS, string(MethodCloud):
		return MethodCloud, nil
	default:
		return "", fmt.Errorf("unsupported translation method: %s", s)
	}
}

// IsStoredMethod reports whether s may be persisted as a translation method
func IsStoredMethod(s string) bool {
	switch s {
	case StoredNLLB, StoredAWS, StoredHuggingFace, StoredMock:
		return true
	}
	return false
}

// TranslationResult is what the orchestrator produces for one request
type TranslationResult struct {
	OriginalText   string `json:"originalText"`
	TranslatedText string `json:"translatedText"`
	Pronunciation  string `json:"pronunciation"`
	SourceLanguage string `json:"sourceLanguage"`
	TargetLanguage string `json:"targetLanguage"`
	MethodUsed     Method `json:"-"`
}

// TranslationResponse is the API shape of a TranslationResult
type TranslationResponse struct {
	OriginalText      string `json:"originalText"`
	TranslatedText    string `json:"translatedText"`
	Pronunciation     string `json:"pronunciation"`
	SourceLanguage    string `json:"sourceLanguage"`
	TargetLanguage    string `json:"targetLanguage"`
	TranslationMethod string `json:"translationMethod"`
}

// Response reports the method under its stored name, "none" for the placeholder
func (r *TranslationResult) Response() TranslationResponse {
	return TranslationResponse{
		OriginalText:      r.OriginalText,
		TranslatedText:    r.TranslatedText,
		Pronunciation:     r.Pronunciation,
		SourceLanguage:    r.SourceLanguage,
		TargetLanguage:    r.TargetLanguage,
		TranslationMethod: r.MethodUsed.StoredName(),
	}
}

// TranslationRecord represents a saved translation
type TranslationRecord struct {
	ID                int64     `json:"id" db:"id"`
	InputText         string    `json:"inputText" db:"input_text"`
	TranslatedText    string    `json:"translatedText" db:"translated_text"`
	Pronunciation     *string   `json:"pronunciation" db:"pronunciation"`
	SourceLanguage    string    `json:"sourceLanguage" db:"source_language"`
	TargetLanguage    string    `json:"targetLanguage" db:"target_language"`
	TranslationMethod string    `json:"translationMethod" db:"translation_method"`
	CreatedAt         time.Time `json:"createdAt" db:"created_at"`
}

// Statistics summarises the saved translations
type Statistics struct {
	TotalTranslations int64            `json:"totalTranslations"`
	TotalLanguages    int              `json:"totalLanguages"`
	LanguageCounts    map[string]int64 `json:"languageCounts"`
	MethodCounts      map[string]int64 `json:"methodCounts"`
}
