package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	apperrors "github.com/Taichi-iskw/lingopad/internal/errors"
	"github.com/Taichi-iskw/lingopad/internal/model"
	"github.com/Taichi-iskw/lingopad/internal/service/history"
)

const (
	statusSuccess = "success"
	statusError   = "error"

	apiVersion = "2.0.0"
)

// envelope is the body of every API response except /health
type envelope struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
	Count   *int   `json:"count,omitempty"`
	Error   string `json:"error,omitempty"`
}

func countOf(n int) *int { return &n }

type translateRequest struct {
	InputText         string `json:"inputText"`
	TargetLanguage    string `json:"targetLanguage"`
	TranslationMethod string `json:"translationMethod"`
}

type saveRequest struct {
	InputText         string  `json:"inputText"`
	TranslatedText    string  `json:"translatedText"`
	Pronunciation     *string `json:"pronunciation"`
	SourceLanguage    string  `json:"sourceLanguage"`
	TargetLanguage    string  `json:"targetLanguage"`
	TranslationMethod string  `json:"translationMethod"`
}

type pronounceRequest struct {
	Text     string `json:"text"`
	Language string `json:"language"`
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, envelope{
		Status:  statusSuccess,
		Message: "LingoPad API is running",
		Data: map[string]any{
			"version":     apiVersion,
			"description": "Translation service for supported languages",
			"endpoints": map[string]map[string]string{
				"translation": {
					"GET /get-started":         "Get translation service info",
					"POST /get-started":        "Translate text",
					"GET /supported-languages": "Get supported languages list",
				},
				"savedTranslations": {
					"POST /save-translation":     "Save a translation",
					"GET /saved-translations":    "Get saved translations",
					"DELETE /clear-translations": "Clear all translations",
					"DELETE /translation/{id}":   "Delete specific translation",
				},
				"utilities": {
					"POST /speak-pronunciation": "Get pronunciation data",
					"GET /stats":                "Saved translation statistics",
					"GET /health":               "Health check",
					"GET /metrics":              "Prometheus metrics",
				},
			},
			"supportedLanguages": s.translator.SupportedLanguages(),
			"timestamp":          time.Now().UTC().Format(time.RFC3339),
		},
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	writeJSON(w, http.StatusOK, map[string]any{
		"status":      "healthy",
		"uptime":      time.Since(s.startedAt).Seconds(),
		"timestamp":   time.Now().UTC().Format(time.RFC3339),
		"environment": s.opts.Environment,
		"memory": map[string]uint64{
			"alloc": mem.Alloc,
			"sys":   mem.Sys,
		},
	})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.history.Stats(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, envelope{Status: statusSuccess, Data: stats})
}

func (s *Server) handleServiceInfo(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":             statusSuccess,
		"message":            "Translation service is ready",
		"supportedLanguages": s.translator.SupportedLanguages(),
	})
}

func (s *Server) handleTranslate(w http.ResponseWriter, r *http.Request) {
	var req translateRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	if req.InputText == "" || req.TargetLanguage == "" {
		s.writeError(w, r, apperrors.New(apperrors.CodeInvalidArg, "Input text and target language are required"))
		return
	}
	if !s.translator.IsSupported(req.TargetLanguage) {
		msg := fmt.Sprintf("Unsupported language: %s. Supported languages: %s",
			req.TargetLanguage, strings.Join(s.translator.SupportedLanguages(), ", "))
		s.writeError(w, r, apperrors.New(apperrors.CodeInvalidArg, msg))
		return
	}
	method, err := model.ParseMethod(req.TranslationMethod)
	if err != nil {
		s.writeError(w, r, apperrors.Wrap(err, apperrors.CodeInvalidArg, err.Error()))
		return
	}

	res, err := s.translator.Translate(r.Context(), req.InputText, req.TargetLanguage, method)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, envelope{Status: statusSuccess, Data: res.Response()})
}

func (s *Server) handleSupportedLanguages(w http.ResponseWriter, r *http.Request) {
	languages := s.translator.SupportedLanguages()
	writeJSON(w, http.StatusOK, envelope{
		Status: statusSuccess,
		Data:   languages,
		Count:  countOf(len(languages)),
	})
}

func (s *Server) handleSaveTranslation(w http.ResponseWriter, r *http.Request) {
	var req saveRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	if req.InputText == "" || req.TranslatedText == "" || req.TargetLanguage == "" {
		s.writeError(w, r, apperrors.New(apperrors.CodeInvalidArg, "Input text, translated text, and target language are required"))
		return
	}

	saved, err := s.history.Save(r.Context(), &model.TranslationRecord{
		InputText:         req.InputText,
		TranslatedText:    req.TranslatedText,
		Pronunciation:     req.Pronunciation,
		SourceLanguage:    req.SourceLanguage,
		TargetLanguage:    req.TargetLanguage,
		TranslationMethod: req.TranslationMethod,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, envelope{
		Status:  statusSuccess,
		Message: "Translation saved successfully",
		Data:    saved,
	})
}

func (s *Server) handleSavedTranslations(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	limit, err := queryInt(q.Get("limit"), "limit")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	offset, err := queryInt(q.Get("offset"), "offset")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	records, err := s.history.List(r.Context(), history.Filter{
		Language: q.Get("language"),
		Search:   q.Get("search"),
		Limit:    limit,
		Offset:   offset,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, envelope{
		Status: statusSuccess,
		Data:   records,
		Count:  countOf(len(records)),
	})
}

func (s *Server) handleClearTranslations(w http.ResponseWriter, r *http.Request) {
	n, err := s.history.Clear(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, envelope{
		Status:  statusSuccess,
		Message: fmt.Sprintf("Cleared %d translations", n),
		Data:    map[string]int64{"deletedCount": n},
	})
}

func (s *Server) handleDeleteTranslation(w http.ResponseWriter, r *http.Request) {
	if err := s.history.Delete(r.Context(), r.PathValue("id")); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, envelope{Status: statusSuccess, Message: "Translation deleted successfully"})
}

func (s *Server) handleSpeakPronunciation(w http.ResponseWriter, r *http.Request) {
	var req pronounceRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	if req.Text == "" || req.Language == "" {
		s.writeError(w, r, apperrors.New(apperrors.CodeInvalidArg, "Text and language are required for pronunciation"))
		return
	}

	pronunciation, err := s.translator.Pronounce(req.Text, req.Language)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, envelope{
		Status: statusSuccess,
		Data: map[string]string{
			"text":          req.Text,
			"language":      req.Language,
			"pronunciation": pronunciation,
			"message":       "Use browser speech synthesis API on frontend",
		},
	})
}

func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusNotFound, envelope{
		Status:  statusError,
		Message: fmt.Sprintf("Endpoint not found: %s %s", r.Method, r.URL.Path),
	})
}

// writeError maps err to a status code; internal details stay out of production responses
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := apperrors.HTTPStatus(err)
	body := envelope{Status: statusError, Message: apperrors.MessageOf(err)}

	if status >= http.StatusInternalServerError {
		s.log.WithFields(logrus.Fields{
			"request_id": RequestID(r.Context()),
			"path":       r.URL.Path,
		}).WithError(err).Error("Request failed")

		if s.isProduction() {
			body.Message = "Internal server error"
		}
	}
	if !s.isProduction() {
		body.Error = err.Error()
	}
	writeJSON(w, status, body)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func decodeJSON(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return apperrors.Wrap(err, apperrors.CodeInvalidArg, "Request body too large")
		}
		return apperrors.Wrap(err, apperrors.CodeInvalidArg, "Invalid JSON body")
	}
	return nil
}

func queryInt(v, name string) (int, error) {
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, apperrors.New(apperrors.CodeInvalidArg, fmt.Sprintf("%s must be a non-negative integer", name))
	}
	return n, nil
}
