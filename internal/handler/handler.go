// Package handler provides the Lambda handler for the translation pipeline.
package handler

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	apperrors "github.com/Taichi-iskw/lingopad/internal/errors"
	"github.com/Taichi-iskw/lingopad/internal/model"
	"github.com/Taichi-iskw/lingopad/internal/service/history"
)

// Translator is the part of the orchestrator the handler needs
type Translator interface {
	Translate(ctx context.Context, text, targetLanguage string, preferred model.Method) (*model.TranslationResult, error)
	IsSupported(targetLanguage string) bool
	SupportedLanguages() []string
}

// Request is the input to the translation Lambda.
type Request struct {
	InputText         string `json:"inputText"`
	TargetLanguage    string `json:"targetLanguage"`
	TranslationMethod string `json:"translationMethod"`
	// Save stores a successful translation in the history
	Save bool `json:"save,omitempty"`
}

// Response mirrors the HTTP API envelope.
type Response struct {
	Status  string                     `json:"status"`
	Data    *model.TranslationResponse `json:"data,omitempty"`
	SavedID int64                      `json:"savedId,omitempty"`
	Message string                     `json:"message,omitempty"`
}

// Handler serves translation requests
type Handler struct {
	translator Translator
	history    history.Service
	log        logrus.FieldLogger
}

// New creates a handler; hist may be nil when no store is configured
func New(translator Translator, hist history.Service, log logrus.FieldLogger) *Handler {
	return &Handler{translator: translator, history: hist, log: log}
}

// Handle processes a translation request.
// Validation problems are reported in the response, not as invocation errors.
func (h *Handler) Handle(ctx context.Context, req Request) (*Response, error) {
	method, err := h.validateRequest(req)
	if err != nil {
		return &Response{Status: "error", Message: err.Error()}, nil
	}

	res, err := h.translator.Translate(ctx, req.InputText, req.TargetLanguage, method)
	if err != nil {
		if apperrors.CodeOf(err) == apperrors.CodeInvalidArg {
			return &Response{Status: "error", Message: apperrors.MessageOf(err)}, nil
		}
		return nil, err
	}

	data := res.Response()
	resp := &Response{Status: "success", Data: &data}

	if req.Save && res.MethodUsed != model.MethodNone {
		saved, err := h.save(ctx, res)
		if err != nil {
			// the translation is still returned; only persistence failed
			h.log.WithError(err).Warn("Failed to save translation")
			resp.Message = "translation not saved: " + apperrors.MessageOf(err)
		} else {
			resp.SavedID = saved.ID
		}
	}
	return resp, nil
}

func (h *Handler) save(ctx context.Context, res *model.TranslationResult) (*model.TranslationRecord, error) {
	if h.history == nil {
		return nil, apperrors.New(apperrors.CodeInternal, "no translation store configured")
	}

	var pronunciation *string
	if res.Pronunciation != "" {
		pronunciation = &res.Pronunciation
	}
	return h.history.Save(ctx, &model.TranslationRecord{
		InputText:         res.OriginalText,
		TranslatedText:    res.TranslatedText,
		Pronunciation:     pronunciation,
		SourceLanguage:    res.SourceLanguage,
		TargetLanguage:    res.TargetLanguage,
		TranslationMethod: res.MethodUsed.StoredName(),
	})
}

// validateRequest checks the request is valid and resolves the method.
func (h *Handler) validateRequest(req Request) (model.Method, error) {
	if strings.TrimSpace(req.InputText) == "" {
		return "", fmt.Errorf("inputText is required")
	}
	if strings.TrimSpace(req.TargetLanguage) == "" {
		return "", fmt.Errorf("targetLanguage is required")
	}
	if !h.translator.IsSupported(req.TargetLanguage) {
		return "", fmt.Errorf("unsupported language: %s. Supported languages: %s",
			req.TargetLanguage, strings.Join(h.translator.SupportedLanguages(), ", "))
	}
	return model.ParseMethod(req.TranslationMethod)
}
