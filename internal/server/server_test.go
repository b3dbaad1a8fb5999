package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Taichi-iskw/lingopad/internal/config"
	apperrors "github.com/Taichi-iskw/lingopad/internal/errors"
	"github.com/Taichi-iskw/lingopad/internal/model"
	"github.com/Taichi-iskw/lingopad/internal/repository/translation"
	"github.com/Taichi-iskw/lingopad/internal/service/history"
)

// fakeTranslator for testing
type fakeTranslator struct {
	TranslateFunc func(ctx context.Context, text, targetLanguage string, preferred model.Method) (*model.TranslationResult, error)
	gotText       string
	gotMethod     model.Method
}

func (f *fakeTranslator) Translate(ctx context.Context, text, targetLanguage string, preferred model.Method) (*model.TranslationResult, error) {
	f.gotText, f.gotMethod = text, preferred
	if f.TranslateFunc != nil {
		return f.TranslateFunc(ctx, text, targetLanguage, preferred)
	}
	return &model.TranslationResult{
		OriginalText:   text,
		TranslatedText: "नमस्ते",
		Pronunciation:  "[NAMA STE]",
		SourceLanguage: "english",
		TargetLanguage: targetLanguage,
		MethodUsed:     model.MethodCloud,
	}, nil
}

func (f *fakeTranslator) SupportedLanguages() []string { return []string{"hindi", "tamil"} }

func (f *fakeTranslator) IsSupported(targetLanguage string) bool {
	l := strings.ToLower(strings.TrimSpace(targetLanguage))
	return l == "hindi" || l == "tamil"
}

func (f *fakeTranslator) Pronounce(text, targetLanguage string) (string, error) {
	return "[" + strings.ToUpper(text) + "]", nil
}

type testServer struct {
	*Server
	translator *fakeTranslator
	close      func()
}

func newTestServer(t *testing.T, opts Options) *testServer {
	t.Helper()

	db, err := config.OpenSQLite(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, config.MigrateSQLite(db, config.Up))

	logger, _ := test.NewNullLogger()
	tr := &fakeTranslator{}
	repo := translation.NewSQLiteRepository(db, translation.Settings{})
	srv := New(tr, history.NewService(repo), logger, opts)

	return &testServer{Server: srv, translator: tr, close: func() { db.Close() }}
}

type response struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Count   *int            `json:"count"`
	Error   string          `json:"error"`
}

func (ts *testServer) do(t *testing.T, method, path, body string) (*httptest.ResponseRecorder, response) {
	t.Helper()

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	ts.Handler().ServeHTTP(rec, req)

	var resp response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp), rec.Body.String())
	return rec, resp
}

func TestTranslate(t *testing.T) {
	ts := newTestServer(t, Options{})

	rec, resp := ts.do(t, http.MethodPost, "/get-started", `{"inputText":"hello","targetLanguage":"hindi","translationMethod":"aws"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "success", resp.Status)

	var data model.TranslationResponse
	require.NoError(t, json.Unmarshal(resp.Data, &data))
	assert.Equal(t, "hello", data.OriginalText)
	assert.Equal(t, "नमस्ते", data.TranslatedText)
	assert.Equal(t, "[NAMA STE]", data.Pronunciation)
	assert.Equal(t, "aws", data.TranslationMethod)
	assert.Equal(t, model.MethodCloud, ts.translator.gotMethod)

	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
	assert.Empty(t, rec.Header().Get("Strict-Transport-Security"))
	assert.NotEmpty(t, rec.Header().Get(requestIDHeader))
}

func TestTranslate_DefaultMethodIsHosted(t *testing.T) {
	ts := newTestServer(t, Options{})

	rec, _ := ts.do(t, http.MethodPost, "/get-started", `{"inputText":"hello","targetLanguage":"tamil"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, model.MethodHosted, ts.translator.gotMethod)
}

func TestTranslate_Validation(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		message string
	}{
		{
			name:    "missing text",
			body:    `{"targetLanguage":"hindi"}`,
			message: "Input text and target language are required",
		},
		{
			name:    "text is only a script tag",
			body:    `{"inputText":"<script>alert(1)</script>","targetLanguage":"hindi"}`,
			message: "Input text and target language are required",
		},
		{
			name:    "unsupported language",
			body:    `{"inputText":"hello","targetLanguage":"klingon"}`,
			message: "Unsupported language: klingon. Supported languages: hindi, tamil",
		},
		{
			name:    "unknown method",
			body:    `{"inputText":"hello","targetLanguage":"hindi","translationMethod":"google"}`,
			message: "unsupported translation method: google",
		},
		{
			name:    "malformed json",
			body:    `{"inputText":`,
			message: "Invalid JSON body",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := newTestServer(t, Options{})

			rec, resp := ts.do(t, http.MethodPost, "/get-started", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, "error", resp.Status)
			assert.Equal(t, tt.message, resp.Message)
			assert.Empty(t, ts.translator.gotText, "translator must not be called")
		})
	}
}

func TestTranslate_SanitisesInput(t *testing.T) {
	ts := newTestServer(t, Options{})

	rec, _ := ts.do(t, http.MethodPost, "/get-started", `{"inputText":"  <script>alert(1)</script>good morning  ","targetLanguage":"hindi"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "good morning", ts.translator.gotText)
}

func TestTranslate_Placeholder(t *testing.T) {
	ts := newTestServer(t, Options{})
	ts.translator.TranslateFunc = func(ctx context.Context, text, lang string, _ model.Method) (*model.TranslationResult, error) {
		return &model.TranslationResult{
			OriginalText:   text,
			TranslatedText: `Translation temporarily unavailable for "hello" to hindi. Please try again.`,
			SourceLanguage: "english",
			TargetLanguage: lang,
			MethodUsed:     model.MethodNone,
		}, nil
	}

	rec, resp := ts.do(t, http.MethodPost, "/get-started", `{"inputText":"hello","targetLanguage":"hindi"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var data model.TranslationResponse
	require.NoError(t, json.Unmarshal(resp.Data, &data))
	assert.Equal(t, "none", data.TranslationMethod)
	assert.Empty(t, data.Pronunciation)
}

func TestTranslate_InternalErrorHiddenInProduction(t *testing.T) {
	ts := newTestServer(t, Options{Environment: "production"})
	ts.translator.TranslateFunc = func(context.Context, string, string, model.Method) (*model.TranslationResult, error) {
		return nil, apperrors.New(apperrors.CodeInternal, "database password is hunter2")
	}

	rec, resp := ts.do(t, http.MethodPost, "/get-started", `{"inputText":"hello","targetLanguage":"hindi"}`)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Internal server error", resp.Message)
	assert.Empty(t, resp.Error)
	assert.Equal(t, "max-age=31536000; includeSubDomains", rec.Header().Get("Strict-Transport-Security"))
}

func TestSavedTranslationsLifecycle(t *testing.T) {
	ts := newTestServer(t, Options{})

	rec, resp := ts.do(t, http.MethodPost, "/save-translation",
		`{"inputText":"hello","translatedText":"नमस्ते","pronunciation":"[NAMA STE]","targetLanguage":"Hindi","translationMethod":"aws"}`)
	require.Equal(t, http.StatusOK, rec.Code, resp.Message)
	assert.Equal(t, "Translation saved successfully", resp.Message)

	var saved model.TranslationRecord
	require.NoError(t, json.Unmarshal(resp.Data, &saved))
	assert.Positive(t, saved.ID)
	assert.Equal(t, "hindi", saved.TargetLanguage)
	assert.Equal(t, "english", saved.SourceLanguage)

	rec, resp = ts.do(t, http.MethodPost, "/save-translation",
		`{"inputText":"banana","translatedText":"வாழைப்பழம்","targetLanguage":"tamil"}`)
	require.Equal(t, http.StatusOK, rec.Code, resp.Message)

	_, resp = ts.do(t, http.MethodGet, "/saved-translations", "")
	require.NotNil(t, resp.Count)
	assert.Equal(t, 2, *resp.Count)

	_, resp = ts.do(t, http.MethodGet, "/saved-translations?language=HINDI", "")
	require.NotNil(t, resp.Count)
	assert.Equal(t, 1, *resp.Count)

	_, resp = ts.do(t, http.MethodGet, "/saved-translations?search=nan&language=hindi", "")
	var records []model.TranslationRecord
	require.NoError(t, json.Unmarshal(resp.Data, &records))
	require.Len(t, records, 1)
	assert.Equal(t, "banana", records[0].InputText)

	_, resp = ts.do(t, http.MethodGet, "/stats", "")
	var stats model.Statistics
	require.NoError(t, json.Unmarshal(resp.Data, &stats))
	assert.Equal(t, int64(2), stats.TotalTranslations)
	assert.Equal(t, int64(1), stats.MethodCounts["nllb"])

	rec, resp = ts.do(t, http.MethodDelete, "/translation/"+jsonNumber(saved.ID), "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Translation deleted successfully", resp.Message)

	rec, resp = ts.do(t, http.MethodDelete, "/translation/"+jsonNumber(saved.ID), "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "translation not found", resp.Message)

	rec, resp = ts.do(t, http.MethodDelete, "/clear-translations", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"deletedCount":1}`, string(resp.Data))

	_, resp = ts.do(t, http.MethodGet, "/saved-translations", "")
	require.NotNil(t, resp.Count)
	assert.Zero(t, *resp.Count)
	assert.JSONEq(t, `[]`, string(resp.Data))
}

func jsonNumber(id int64) string {
	b, _ := json.Marshal(id)
	return string(b)
}

func TestSaveTranslation_Validation(t *testing.T) {
	ts := newTestServer(t, Options{})

	rec, resp := ts.do(t, http.MethodPost, "/save-translation", `{"inputText":"hello","targetLanguage":"hindi"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Input text, translated text, and target language are required", resp.Message)

	rec, resp = ts.do(t, http.MethodPost, "/save-translation",
		`{"inputText":"hello","translatedText":"hola","targetLanguage":"hindi","translationMethod":"google"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid translation method: google", resp.Message)
}

func TestSavedTranslations_BadQuery(t *testing.T) {
	ts := newTestServer(t, Options{})

	rec, resp := ts.do(t, http.MethodGet, "/saved-translations?limit=abc", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "limit must be a non-negative integer", resp.Message)

	rec, _ = ts.do(t, http.MethodDelete, "/translation/abc", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestStats_StoreFailure(t *testing.T) {
	ts := newTestServer(t, Options{})
	ts.close()

	rec, resp := ts.do(t, http.MethodGet, "/stats", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "error", resp.Status)
	assert.NotEmpty(t, resp.Error, "details are shown outside production")
}

func TestSpeakPronunciation(t *testing.T) {
	ts := newTestServer(t, Options{})

	rec, resp := ts.do(t, http.MethodPost, "/speak-pronunciation", `{"text":"namaste","language":"hindi"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"text":"namaste","language":"hindi","pronunciation":"[NAMASTE]","message":"Use browser speech synthesis API on frontend"}`, string(resp.Data))

	rec, resp = ts.do(t, http.MethodPost, "/speak-pronunciation", `{"text":"namaste"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Text and language are required for pronunciation", resp.Message)
}

func TestInfoEndpoints(t *testing.T) {
	ts := newTestServer(t, Options{})

	rec, resp := ts.do(t, http.MethodGet, "/supported-languages", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, resp.Count)
	assert.Equal(t, 2, *resp.Count)
	assert.JSONEq(t, `["hindi","tamil"]`, string(resp.Data))

	rec, resp = ts.do(t, http.MethodGet, "/get-started", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Translation service is ready", resp.Message)

	rec, resp = ts.do(t, http.MethodGet, "/", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "LingoPad API is running", resp.Message)

	rec, resp = ts.do(t, http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "healthy", resp.Status)

	rec, resp = ts.do(t, http.MethodGet, "/nope", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Endpoint not found: GET /nope", resp.Message)
}

func TestMetricsEndpoint(t *testing.T) {
	ts := newTestServer(t, Options{})

	ts.do(t, http.MethodGet, "/health", "")

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	ts.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "lingopad_http_requests_total")
}

func TestTranslateRateLimit(t *testing.T) {
	ts := newTestServer(t, Options{TranslateLimit: RateLimit{Requests: 2, Window: time.Hour}})

	for i := 0; i < 2; i++ {
		rec, _ := ts.do(t, http.MethodGet, "/supported-languages", "")
		require.Equal(t, http.StatusOK, rec.Code)
	}

	rec, resp := ts.do(t, http.MethodPost, "/get-started", `{"inputText":"hello","targetLanguage":"hindi"}`)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "Too many translation requests. Please wait 5 minutes before trying again.", resp.Message)

	// non translation routes only count against the general limit
	rec, _ = ts.do(t, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestGeneralRateLimit(t *testing.T) {
	ts := newTestServer(t, Options{GeneralLimit: RateLimit{Requests: 1, Window: time.Hour}})

	rec, _ := ts.do(t, http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec, resp := ts.do(t, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "error", resp.Status)
}

func TestBodyLimit(t *testing.T) {
	ts := newTestServer(t, Options{})

	body := `{"inputText":"` + strings.Repeat("a", MaxBodyBytes) + `","targetLanguage":"hindi"}`
	rec, resp := ts.do(t, http.MethodPost, "/get-started", body)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Request body too large", resp.Message)
}

func TestRequestIDIsPropagated(t *testing.T) {
	ts := newTestServer(t, Options{})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(requestIDHeader, "req-123")
	rec := httptest.NewRecorder()
	ts.Handler().ServeHTTP(rec, req)

	assert.Equal(t, "req-123", rec.Header().Get(requestIDHeader))
}

func TestSanitize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "  hello  ", want: "hello"},
		{in: "<script>alert(1)</script>hi", want: "hi"},
		{in: "<SCRIPT type=\"x\">\nbad()\n</SCRIPT >ok", want: "ok"},
		{in: "javascript:alert(1)", want: "alert(1)"},
		{in: `<img onerror="x">`, want: `<img "x">`},
		{in: "money = 5", want: "money = 5"},
		{in: "नमस्ते", want: "नमस्ते"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Sanitize(tt.in))
		})
	}
}
