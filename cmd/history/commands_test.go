package history

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/Taichi-iskw/lingopad/internal/errors"
	"github.com/Taichi-iskw/lingopad/internal/model"
	"github.com/Taichi-iskw/lingopad/internal/service/history"
)

// Mock history service
type mockHistoryService struct {
	ListFunc   func(ctx context.Context, filter history.Filter) ([]*model.TranslationRecord, error)
	GetFunc    func(ctx context.Context, id string) (*model.TranslationRecord, error)
	DeleteFunc func(ctx context.Context, id string) error
	ClearFunc  func(ctx context.Context) (int64, error)
	StatsFunc  func(ctx context.Context) (*model.Statistics, error)
}

func (m *mockHistoryService) Save(ctx context.Context, record *model.TranslationRecord) (*model.TranslationRecord, error) {
	return record, nil
}

func (m *mockHistoryService) List(ctx context.Context, filter history.Filter) ([]*model.TranslationRecord, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, filter)
	}
	return nil, nil
}

func (m *mockHistoryService) Get(ctx context.Context, id string) (*model.TranslationRecord, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, id)
	}
	return nil, nil
}

func (m *mockHistoryService) Delete(ctx context.Context, id string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	return nil
}

func (m *mockHistoryService) Clear(ctx context.Context) (int64, error) {
	if m.ClearFunc != nil {
		return m.ClearFunc(ctx)
	}
	return 0, nil
}

func (m *mockHistoryService) Stats(ctx context.Context) (*model.Statistics, error) {
	if m.StatsFunc != nil {
		return m.StatsFunc(ctx)
	}
	return &model.Statistics{}, nil
}

func execute(t *testing.T, service history.Service, stdin string, args ...string) (string, error) {
	t.Helper()

	cmd := NewHistoryCommand(service)
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)

	err := cmd.Execute()
	return buf.String(), err
}

func TestListCommand(t *testing.T) {
	tests := []struct {
		name           string
		args           []string
		wantFilter     history.Filter
		expectedOutput string
		wantErr        bool
	}{
		{
			name:           "defaults",
			args:           []string{"list"},
			wantFilter:     history.Filter{Limit: 20},
			expectedOutput: "Translation: नमस्ते",
		},
		{
			name:           "filters and json",
			args:           []string{"list", "--language", "Hindi", "--search", "hel", "--limit", "5", "--offset", "10", "--format", "json"},
			wantFilter:     history.Filter{Language: "Hindi", Search: "hel", Limit: 5, Offset: 10},
			expectedOutput: `"translatedText": "नमस्ते"`,
		},
		{
			name:    "negative limit",
			args:    []string{"list", "--limit", "-1"},
			wantErr: true,
		},
		{
			name:    "unknown format",
			args:    []string{"list", "--format", "srt"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotFilter history.Filter
			mockService := &mockHistoryService{
				ListFunc: func(ctx context.Context, filter history.Filter) ([]*model.TranslationRecord, error) {
					gotFilter = filter
					return sampleRecords(), nil
				},
			}

			output, err := execute(t, mockService, "", tt.args...)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantFilter, gotFilter)
			assert.Contains(t, output, tt.expectedOutput)
		})
	}
}

func TestListCommand_ServiceError(t *testing.T) {
	mockService := &mockHistoryService{
		ListFunc: func(ctx context.Context, filter history.Filter) ([]*model.TranslationRecord, error) {
			return nil, errors.New("database is busy")
		},
	}

	_, err := execute(t, mockService, "", "list")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to list translations")
}

func TestGetCommand(t *testing.T) {
	mockService := &mockHistoryService{
		GetFunc: func(ctx context.Context, id string) (*model.TranslationRecord, error) {
			if id != "2" {
				return nil, apperrors.New(apperrors.CodeNotFound, "translation not found")
			}
			return sampleRecords()[0], nil
		},
	}

	output, err := execute(t, mockService, "", "get", "2")
	require.NoError(t, err)
	assert.Contains(t, output, "ID: 2")

	_, err = execute(t, mockService, "", "get", "99")
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeNotFound, apperrors.CodeOf(err))

	_, err = execute(t, mockService, "", "get")
	require.Error(t, err)
}

func TestDeleteCommand(t *testing.T) {
	tests := []struct {
		name           string
		args           []string
		stdin          string
		wantDeleted    bool
		expectedOutput string
	}{
		{
			name:           "forced",
			args:           []string{"delete", "7", "--force"},
			wantDeleted:    true,
			expectedOutput: "Translation 7 deleted successfully",
		},
		{
			name:           "confirmed",
			args:           []string{"delete", "7"},
			stdin:          "y\n",
			wantDeleted:    true,
			expectedOutput: "Translation 7 deleted successfully",
		},
		{
			name:           "declined",
			args:           []string{"delete", "7"},
			stdin:          "n\n",
			expectedOutput: "Deletion cancelled",
		},
		{
			name:           "no answer",
			args:           []string{"delete", "7"},
			expectedOutput: "Deletion cancelled",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			deleted := false
			mockService := &mockHistoryService{
				DeleteFunc: func(ctx context.Context, id string) error {
					deleted = true
					assert.Equal(t, "7", id)
					return nil
				},
			}

			output, err := execute(t, mockService, tt.stdin, tt.args...)
			require.NoError(t, err)
			assert.Equal(t, tt.wantDeleted, deleted)
			assert.Contains(t, output, tt.expectedOutput)
		})
	}
}

func TestDeleteCommand_NotFound(t *testing.T) {
	mockService := &mockHistoryService{
		DeleteFunc: func(ctx context.Context, id string) error {
			return apperrors.New(apperrors.CodeNotFound, "translation not found")
		},
	}

	_, err := execute(t, mockService, "", "delete", "7", "--force")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "translation not found")
}

func TestClearCommand(t *testing.T) {
	mockService := &mockHistoryService{
		ClearFunc: func(ctx context.Context) (int64, error) { return 3, nil },
	}

	output, err := execute(t, mockService, "yes\n", "clear")
	require.NoError(t, err)
	assert.Contains(t, output, "Cleared 3 translations")

	output, err = execute(t, mockService, "", "clear")
	require.NoError(t, err)
	assert.Contains(t, output, "Clear cancelled")
}

func TestStatsCommand(t *testing.T) {
	mockService := &mockHistoryService{
		StatsFunc: func(ctx context.Context) (*model.Statistics, error) {
			return &model.Statistics{
				TotalTranslations: 2,
				TotalLanguages:    1,
				LanguageCounts:    map[string]int64{"hindi": 2},
				MethodCounts:      map[string]int64{"nllb": 2},
			}, nil
		},
	}

	output, err := execute(t, mockService, "", "stats")
	require.NoError(t, err)
	assert.Contains(t, output, "Total translations: 2")

	output, err = execute(t, mockService, "", "stats", "--format", "json")
	require.NoError(t, err)
	assert.Contains(t, output, `"totalTranslations": 2`)
}
