package translation

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	apperrors "github.com/Taichi-iskw/lingopad/internal/errors"
	"github.com/Taichi-iskw/lingopad/internal/model"
)

const (
	// DefaultLimit is the page size used when a caller passes no positive limit
	DefaultLimit = 1000

	maxTextLength = 5000
)

// Repository defines operations for TranslationRecord persistence.
// Every operation is a single statement.
type Repository interface {
	// Save inserts a record and returns it with id and creation time assigned
	Save(ctx context.Context, record *model.TranslationRecord) (*model.TranslationRecord, error)

	// GetAll lists records newest first
	GetAll(ctx context.Context, limit, offset int) ([]*model.TranslationRecord, error)

	// GetByID returns a NOT_FOUND AppError when no record has the id
	GetByID(ctx context.Context, id int64) (*model.TranslationRecord, error)

	// GetByLanguage filters on the stored target language, matched exactly
	GetByLanguage(ctx context.Context, targetLanguage string, limit, offset int) ([]*model.TranslationRecord, error)

	// Search matches query as a substring of the input or translated text
	Search(ctx context.Context, query string, limit, offset int) ([]*model.TranslationRecord, error)

	// DeleteByID reports whether a record was removed
	DeleteByID(ctx context.Context, id int64) (bool, error)

	// ClearAll removes every record and returns how many were removed
	ClearAll(ctx context.Context) (int64, error)

	Count(ctx context.Context) (int64, error)

	// Statistics counts records per target language and per method
	Statistics(ctx context.Context) (*model.Statistics, error)
}

// Settings holds behaviour shared by every backend
type Settings struct {
	// DefaultMethod is stored when a record has no translation method
	DefaultMethod string
	// Now stamps created_at; defaults to time.Now
	Now func() time.Time
}

func (s Settings) withDefaults() Settings {
	if s.DefaultMethod == "" {
		s.DefaultMethod = model.StoredNLLB
	}
	if s.Now == nil {
		s.Now = time.Now
	}
	return s
}

// prepare validates a record and fills in defaults without mutating the caller's copy
func (s Settings) prepare(record *model.TranslationRecord) (*model.TranslationRecord, error) {
	if record == nil {
		return nil, apperrors.New(apperrors.CodeInvalidArg, "translation record is required")
	}

	rec := *record
	if err := checkText("input text", rec.InputText); err != nil {
		return nil, err
	}
	if err := checkText("translated text", rec.TranslatedText); err != nil {
		return nil, err
	}
	if strings.TrimSpace(rec.TargetLanguage) == "" {
		return nil, apperrors.New(apperrors.CodeInvalidArg, "target language is required")
	}

	if rec.SourceLanguage == "" {
		rec.SourceLanguage = model.DefaultSourceLanguage
	}
	if rec.TranslationMethod == "" {
		rec.TranslationMethod = s.DefaultMethod
	}
	if !model.IsStoredMethod(rec.TranslationMethod) {
		return nil, apperrors.New(apperrors.CodeInvalidArg, fmt.Sprintf("invalid translation method: %s", rec.TranslationMethod))
	}
	if rec.Pronunciation != nil && *rec.Pronunciation == "" {
		rec.Pronunciation = nil
	}

	rec.CreatedAt = s.Now().UTC()
	return &rec, nil
}

func checkText(field, value string) error {
	n := utf8.RuneCountInString(value)
	if strings.TrimSpace(value) == "" {
		return apperrors.New(apperrors.CodeInvalidArg, field+" is required")
	}
	if n > maxTextLength {
		return apperrors.New(apperrors.CodeInvalidArg, fmt.Sprintf("%s must be at most %d characters", field, maxTextLength))
	}
	return nil
}

func page(limit, offset int) (uint64, uint64) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if offset < 0 {
		offset = 0
	}
	return uint64(limit), uint64(offset)
}
