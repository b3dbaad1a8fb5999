package translation

import (
	"context"
	"sync"

	"github.com/Taichi-iskw/lingopad/internal/language"
	"github.com/Taichi-iskw/lingopad/internal/model"
)

// mockProvider mocks provider.Provider and records calls
type mockProvider struct {
	method        model.Method
	kind          language.Kind
	TranslateFunc func(ctx context.Context, text, languageName, code string) (string, error)

	mu    sync.Mutex
	codes []string
}

func newMockProvider(method model.Method, kind language.Kind, fn func(ctx context.Context, text, languageName, code string) (string, error)) *mockProvider {
	return &mockProvider{method: method, kind: kind, TranslateFunc: fn}
}

func (m *mockProvider) Method() model.Method { return m.method }

func (m *mockProvider) Kind() language.Kind { return m.kind }

func (m *mockProvider) Translate(ctx context.Context, text, languageName, code string) (string, error) {
	m.mu.Lock()
	m.codes = append(m.codes, code)
	m.mu.Unlock()
	if m.TranslateFunc != nil {
		return m.TranslateFunc(ctx, text, languageName, code)
	}
	return "", nil
}

func (m *mockProvider) calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.codes)
}

func (m *mockProvider) lastCode() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.codes) == 0 {
		return ""
	}
	return m.codes[len(m.codes)-1]
}
