// Package translation turns a translation request into a result by trying
// providers in order, then correcting and annotating the first usable output.
package translation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"
	"unicode/utf8"

	"github.com/sirupsen/logrus"

	apperrors "github.com/Taichi-iskw/lingopad/internal/errors"
	"github.com/Taichi-iskw/lingopad/internal/language"
	"github.com/Taichi-iskw/lingopad/internal/model"
	"github.com/Taichi-iskw/lingopad/internal/service/provider"
)

const (
	// MaxTextLength is the longest accepted input, in characters
	MaxTextLength = 5000

	DefaultProviderTimeout = 30 * time.Second
)

var errUnusableOutput = errors.New("provider returned no usable translation")

// Config controls orchestrator behaviour
type Config struct {
	// DisableLocal skips the local model for the whole process
	DisableLocal    bool
	ProviderTimeout time.Duration
}

// Orchestrator runs the provider fallback chain
type Orchestrator struct {
	providers    map[model.Method]provider.Provider
	table        *language.Table
	corrector    *Corrector
	approximator *Approximator
	timeout      time.Duration
	log          logrus.FieldLogger

	// localDisabled is set once, never cleared
	localDisabled atomic.Bool
}

// NewOrchestrator creates an orchestrator over the embedded language and correction tables
func NewOrchestrator(cfg Config, providers []provider.Provider, log logrus.FieldLogger) *Orchestrator {
	table := language.Default()
	if cfg.ProviderTimeout <= 0 {
		cfg.ProviderTimeout = DefaultProviderTimeout
	}

	o := &Orchestrator{
		providers:    make(map[model.Method]provider.Provider, len(providers)),
		table:        table,
		corrector:    NewCorrector(language.DefaultCorrections()),
		approximator: NewApproximator(table, log),
		timeout:      cfg.ProviderTimeout,
		log:          log,
	}
	for _, p := range providers {
		o.providers[p.Method()] = p
	}
	if cfg.DisableLocal {
		o.disableLocal("disabled by configuration")
	}
	return o
}

// Translate validates the request and returns the first usable provider result.
// Provider failures never surface as errors; the result carries the placeholder instead.
func (o *Orchestrator) Translate(ctx context.Context, text, targetLanguage string, preferred model.Method) (*model.TranslationResult, error) {
	text = strings.TrimSpace(text)
	targetLanguage = strings.TrimSpace(targetLanguage)

	if err := o.validate(text, targetLanguage, preferred); err != nil {
		return nil, err
	}
	if preferred == "" {
		preferred = model.MethodHosted
	}

	entry, _ := o.table.Lookup(targetLanguage)

	var result *model.TranslationResult
	for _, method := range Plan(preferred, !o.localDisabled.Load()) {
		p, ok := o.providers[method]
		if !ok {
			continue
		}

		translated, err := o.attempt(ctx, p, text, entry)
		if err != nil {
			o.log.WithFields(logrus.Fields{
				"provider": method,
				"language": entry.Name,
				"error":    err,
			}).Warn("Provider attempt failed")
			continue
		}

		corrected := o.corrector.Correct(translated, text, entry.Name)
		result = &model.TranslationResult{
			OriginalText:   text,
			TranslatedText: corrected,
			Pronunciation:  o.approximator.Approximate(corrected, entry.Name),
			SourceLanguage: model.DefaultSourceLanguage,
			TargetLanguage: targetLanguage,
			MethodUsed:     method,
		}
		break
	}

	if result == nil {
		placeholderResultsTotal.Inc()
		o.log.WithField("language", entry.Name).Error("All translation providers failed")
		result = &model.TranslationResult{
			OriginalText:   text,
			TranslatedText: Placeholder(text, targetLanguage),
			Pronunciation:  "",
			SourceLanguage: model.DefaultSourceLanguage,
			TargetLanguage: targetLanguage,
			MethodUsed:     model.MethodNone,
		}
	}
	return result, nil
}

func (o *Orchestrator) validate(text, targetLanguage string, preferred model.Method) error {
	switch {
	case text == "":
		return apperrors.New(apperrors.CodeInvalidArg, "text is required")
	case utf8.RuneCountInString(text) > MaxTextLength:
		return apperrors.New(apperrors.CodeInvalidArg, fmt.Sprintf("text must be at most %d characters", MaxTextLength))
	case targetLanguage == "":
		return apperrors.New(apperrors.CodeInvalidArg, "target language is required")
	case !o.table.IsSupported(targetLanguage):
		return apperrors.New(apperrors.CodeInvalidArg, fmt.Sprintf("unsupported target language: %s", targetLanguage))
	}

	switch preferred {
	case "", model.MethodLocal, model.MethodHosted, model.MethodCloud:
		return nil
	default:
		return apperrors.New(apperrors.CodeInvalidArg, fmt.Sprintf("unsupported translation method: %s", preferred))
	}
}

// attempt makes one bounded provider call and checks the output is a real translation
func (o *Orchestrator) attempt(ctx context.Context, p provider.Provider, text string, entry language.Entry) (string, error) {
	method := string(p.Method())

	code, err := o.table.Resolve(entry.Name, p.Kind())
	if err != nil {
		return "", err
	}

	attemptCtx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	start := time.Now()
	translated, err := p.Translate(attemptCtx, text, entry.Name, code)
	providerAttemptDuration.WithLabelValues(method).Observe(time.Since(start).Seconds())

	translated = strings.TrimSpace(translated)
	switch {
	case err != nil:
		providerAttemptsTotal.WithLabelValues(method, outcomeError).Inc()
		if p.Method() == model.MethodLocal && errors.Is(err, provider.ErrResourceExhausted) {
			o.disableLocal("resource exhaustion")
		}
		return "", err
	case translated == "" || translated == text:
		providerAttemptsTotal.WithLabelValues(method, outcomeUnusable).Inc()
		return "", errUnusableOutput
	}

	providerAttemptsTotal.WithLabelValues(method, outcomeSuccess).Inc()
	return translated, nil
}

func (o *Orchestrator) disableLocal(reason string) {
	if o.localDisabled.CompareAndSwap(false, true) {
		localProviderDisabled.Set(1)
		o.log.WithField("reason", reason).Warn("Local model disabled for the rest of this process")
	}
}

// LocalDisabled reports whether the local model is being skipped
func (o *Orchestrator) LocalDisabled() bool {
	return o.localDisabled.Load()
}

// SupportedLanguages returns the supported target language keys
func (o *Orchestrator) SupportedLanguages() []string {
	return o.table.Supported()
}

// IsSupported reports whether a target language is accepted
func (o *Orchestrator) IsSupported(targetLanguage string) bool {
	return o.table.IsSupported(targetLanguage)
}

// Pronounce generates a reading aid for already translated text
func (o *Orchestrator) Pronounce(text, targetLanguage string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", apperrors.New(apperrors.CodeInvalidArg, "text is required")
	}
	if utf8.RuneCountInString(text) > MaxTextLength {
		return "", apperrors.New(apperrors.CodeInvalidArg, fmt.Sprintf("text must be at most %d characters", MaxTextLength))
	}
	return o.approximator.Approximate(text, targetLanguage), nil
}
