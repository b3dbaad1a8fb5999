package provider

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sirupsen/logrus"

	"github.com/Taichi-iskw/lingopad/internal/language"
	"github.com/Taichi-iskw/lingopad/internal/model"
)

const (
	DefaultHostedBaseURL = "https://api-inference.huggingface.co"
	DefaultHostedModel   = "facebook/nllb-200-distilled-600M"
	defaultHostedTimeout = 30 * time.Second
)

// HostedConfig configures the hosted inference API
type HostedConfig struct {
	BaseURL string
	Token   string
	// Model is the generic multilingual model tried after the specialised ones
	Model   string
	Timeout time.Duration
}

// Hosted calls the Hugging Face inference API
type Hosted struct {
	http  *resty.Client
	table *language.Table
	model string
	log   logrus.FieldLogger
}

type hostedRequest struct {
	Inputs     string            `json:"inputs"`
	Parameters map[string]string `json:"parameters,omitempty"`
}

type hostedTranslation struct {
	TranslationText string `json:"translation_text"`
}

type hostedError struct {
	Error string `json:"error"`
}

// NewHosted creates the hosted inference provider
func NewHosted(cfg HostedConfig, table *language.Table, log logrus.FieldLogger) *Hosted {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultHostedBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultHostedModel
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultHostedTimeout
	}

	c := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetTimeout(cfg.Timeout).
		SetHeader("Content-Type", "application/json")
	if cfg.Token != "" {
		c.SetAuthToken(cfg.Token)
	}

	return &Hosted{
		http:  c,
		table: table,
		model: cfg.Model,
		log:   log.WithField("provider", model.MethodHosted),
	}
}

func (h *Hosted) Method() model.Method { return model.MethodHosted }

func (h *Hosted) Kind() language.Kind { return language.KindModel }

// Translate tries the language's specialised models in order, then the generic model
func (h *Hosted) Translate(ctx context.Context, text, languageName, code string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", errors.New("text cannot be empty")
	}

	var specialised []string
	if entry, ok := h.table.Lookup(languageName); ok {
		specialised = entry.HostedModels
	}

	var lastErr error
	for _, m := range specialised {
		out, err := h.query(ctx, m, hostedRequest{Inputs: text})
		if err == nil && strings.TrimSpace(out) == strings.TrimSpace(text) {
			err = fmt.Errorf("hosted model %s: %w", m, ErrEchoedInput)
		}
		if err == nil {
			return out, nil
		}
		h.log.WithError(err).WithField("model", m).Debug("Specialised model failed")
		lastErr = err
	}

	out, err := h.query(ctx, h.model, hostedRequest{
		Inputs: text,
		Parameters: map[string]string{
			"src_lang": SourceModelCode,
			"tgt_lang": code,
		},
	})
	if err != nil {
		if lastErr != nil {
			return "", fmt.Errorf("%w (after specialised models: %v)", err, lastErr)
		}
		return "", err
	}
	return out, nil
}

func (h *Hosted) query(ctx context.Context, modelID string, body hostedRequest) (string, error) {
	var resp []hostedTranslation
	var apiErr hostedError

	r, err := h.http.R().SetContext(ctx).
		SetBody(body).
		SetResult(&resp).
		SetError(&apiErr).
		Post("/models/" + modelID)
	if err != nil {
		return "", fmt.Errorf("hosted model %s: %w", modelID, err)
	}
	if r.IsError() {
		if apiErr.Error != "" {
			return "", fmt.Errorf("hosted model %s: %s: %s", modelID, r.Status(), apiErr.Error)
		}
		return "", fmt.Errorf("hosted model %s: %s; body: %s", modelID, r.Status(), r.String())
	}

	for _, t := range resp {
		if s := strings.TrimSpace(t.TranslationText); s != "" {
			return s, nil
		}
	}
	return "", fmt.Errorf("hosted model %s: %w", modelID, ErrEmptyResponse)
}
