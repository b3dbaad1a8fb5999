// Package history manages saved translations on behalf of the HTTP API, the CLI and Lambda.
package history

import (
	"context"
	"strconv"
	"strings"

	apperrors "github.com/Taichi-iskw/lingopad/internal/errors"
	"github.com/Taichi-iskw/lingopad/internal/language"
	"github.com/Taichi-iskw/lingopad/internal/model"
	"github.com/Taichi-iskw/lingopad/internal/repository/translation"
)

// Filter narrows a listing. Search wins over Language when both are set.
type Filter struct {
	Language string
	Search   string
	Limit    int
	Offset   int
}

// Service defines operations for saved translation management
type Service interface {
	// Save stores a translation with its target language canonicalised
	Save(ctx context.Context, record *model.TranslationRecord) (*model.TranslationRecord, error)

	// List returns saved translations newest first
	List(ctx context.Context, filter Filter) ([]*model.TranslationRecord, error)

	// Get retrieves one translation by its string id
	Get(ctx context.Context, id string) (*model.TranslationRecord, error)

	// Delete removes one translation; NOT_FOUND when nothing was removed
	Delete(ctx context.Context, id string) error

	// Clear removes every translation and returns how many were removed
	Clear(ctx context.Context) (int64, error)

	Stats(ctx context.Context) (*model.Statistics, error)
}

type service struct {
	repo translation.Repository
}

// NewService creates a history service over a record store
func NewService(repo translation.Repository) Service {
	return &service{repo: repo}
}

func (s *service) Save(ctx context.Context, record *model.TranslationRecord) (*model.TranslationRecord, error) {
	if record == nil {
		return nil, apperrors.New(apperrors.CodeInvalidArg, "translation record is required")
	}

	rec := *record
	rec.InputText = strings.TrimSpace(rec.InputText)
	rec.TranslatedText = strings.TrimSpace(rec.TranslatedText)
	rec.TargetLanguage = language.Normalize(rec.TargetLanguage)
	if rec.SourceLanguage != "" {
		rec.SourceLanguage = language.Normalize(rec.SourceLanguage)
	}
	if rec.TranslationMethod != "" && !model.IsStoredMethod(rec.TranslationMethod) {
		return nil, apperrors.New(apperrors.CodeInvalidArg, "invalid translation method: "+rec.TranslationMethod)
	}

	return s.repo.Save(ctx, &rec)
}

func (s *service) List(ctx context.Context, filter Filter) ([]*model.TranslationRecord, error) {
	search := strings.TrimSpace(filter.Search)
	lang := language.Normalize(filter.Language)

	switch {
	case search != "":
		return s.repo.Search(ctx, search, filter.Limit, filter.Offset)
	case lang != "":
		return s.repo.GetByLanguage(ctx, lang, filter.Limit, filter.Offset)
	default:
		return s.repo.GetAll(ctx, filter.Limit, filter.Offset)
	}
}

func (s *service) Get(ctx context.Context, id string) (*model.TranslationRecord, error) {
	n, err := ParseID(id)
	if err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, n)
}

func (s *service) Delete(ctx context.Context, id string) error {
	n, err := ParseID(id)
	if err != nil {
		return err
	}

	deleted, err := s.repo.DeleteByID(ctx, n)
	if err != nil {
		return err
	}
	if !deleted {
		return apperrors.New(apperrors.CodeNotFound, "translation not found")
	}
	return nil
}

func (s *service) Clear(ctx context.Context) (int64, error) {
	return s.repo.ClearAll(ctx)
}

func (s *service) Stats(ctx context.Context) (*model.Statistics, error) {
	return s.repo.Statistics(ctx)
}

// ParseID converts a path or argument id to a record id
func ParseID(id string) (int64, error) {
	n, err := strconv.ParseInt(strings.TrimSpace(id), 10, 64)
	if err != nil || n <= 0 {
		return 0, apperrors.New(apperrors.CodeInvalidArg, "invalid translation id: "+id)
	}
	return n, nil
}
