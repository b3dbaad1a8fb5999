// Package provider adapts external translation services to one call contract.
package provider

import (
	"context"
	"errors"

	"github.com/Taichi-iskw/lingopad/internal/language"
	"github.com/Taichi-iskw/lingopad/internal/model"
)

// SourceModelCode is the model tag of the only supported source language
const SourceModelCode = "eng_Latn"

// SourceCloudCode is the cloud tag of the only supported source language
const SourceCloudCode = "en"

var (
	// ErrResourceExhausted means the local model ran out of memory; callers should stop using it
	ErrResourceExhausted = errors.New("local model resources exhausted")
	// ErrNotConfigured means the provider lacks credentials or settings
	ErrNotConfigured = errors.New("provider not configured")
	// ErrEmptyResponse means the provider answered without any translation text
	ErrEmptyResponse = errors.New("empty translation response")
	// ErrEchoedInput means a model returned the input unchanged
	ErrEchoedInput = errors.New("model echoed the input")
)

// Provider is a single external translation service
type Provider interface {
	Method() model.Method
	// Kind selects the language code column the provider expects
	Kind() language.Kind
	Translate(ctx context.Context, text, languageName, code string) (string, error)
}
