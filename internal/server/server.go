// Package server exposes the translation pipeline and saved history as a JSON HTTP API.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/Taichi-iskw/lingopad/internal/model"
	"github.com/Taichi-iskw/lingopad/internal/service/history"
)

const (
	// MaxBodyBytes caps every request body
	MaxBodyBytes = 1 << 20

	shutdownTimeout = 10 * time.Second
)

// Translator is the part of the orchestrator the API needs
type Translator interface {
	Translate(ctx context.Context, text, targetLanguage string, preferred model.Method) (*model.TranslationResult, error)
	SupportedLanguages() []string
	IsSupported(targetLanguage string) bool
	Pronounce(text, targetLanguage string) (string, error)
}

// RateLimit allows Requests per Window for each client IP
type RateLimit struct {
	Requests int
	Window   time.Duration
}

// Options configures the HTTP server
type Options struct {
	Environment    string
	AllowedOrigins []string
	// GeneralLimit applies to every route, TranslateLimit to translation routes on top of it
	GeneralLimit   RateLimit
	TranslateLimit RateLimit
}

func (o Options) withDefaults() Options {
	if o.Environment == "" {
		o.Environment = "development"
	}
	if len(o.AllowedOrigins) == 0 {
		o.AllowedOrigins = []string{"*"}
	}
	if o.GeneralLimit.Requests <= 0 || o.GeneralLimit.Window <= 0 {
		o.GeneralLimit = RateLimit{Requests: 100, Window: 15 * time.Minute}
	}
	if o.TranslateLimit.Requests <= 0 || o.TranslateLimit.Window <= 0 {
		o.TranslateLimit = RateLimit{Requests: 20, Window: 5 * time.Minute}
	}
	return o
}

// Server serves the LingoPad API
type Server struct {
	translator Translator
	history    history.Service
	log        logrus.FieldLogger
	opts       Options
	startedAt  time.Time

	generalLimiter   *ipLimiter
	translateLimiter *ipLimiter
	handler          http.Handler
}

// New creates a server and builds its handler chain
func New(translator Translator, hist history.Service, log logrus.FieldLogger, opts Options) *Server {
	opts = opts.withDefaults()
	s := &Server{
		translator: translator,
		history:    hist,
		log:        log,
		opts:       opts,
		startedAt:  time.Now(),
		generalLimiter: newIPLimiter(opts.GeneralLimit,
			"Too many requests from this IP, please try again after 15 minutes."),
		translateLimiter: newIPLimiter(opts.TranslateLimit,
			"Too many translation requests. Please wait 5 minutes before trying again."),
	}
	s.handler = s.middleware(s.routes())
	return s
}

// Handler returns the fully wrapped HTTP handler
func (s *Server) Handler() http.Handler {
	return s.handler
}

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", s.handleRoot)
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /stats", s.handleStats)
	mux.Handle("GET /metrics", promhttp.Handler())

	translation := map[string]http.HandlerFunc{
		"GET /get-started":           s.handleServiceInfo,
		"POST /get-started":          s.handleTranslate,
		"GET /supported-languages":   s.handleSupportedLanguages,
		"POST /save-translation":     s.handleSaveTranslation,
		"GET /saved-translations":    s.handleSavedTranslations,
		"DELETE /clear-translations": s.handleClearTranslations,
		"DELETE /translation/{id}":   s.handleDeleteTranslation,
		"POST /speak-pronunciation":  s.handleSpeakPronunciation,
	}
	for pattern, h := range translation {
		mux.Handle(pattern, s.translateLimiter.middleware(h))
	}

	mux.HandleFunc("/", s.handleNotFound)
	return mux
}

// Run serves on addr until ctx is cancelled, then drains in-flight requests
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.WithFields(logrus.Fields{
			"addr":        addr,
			"environment": s.opts.Environment,
		}).Info("Starting HTTP server")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.log.Info("Shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	s.log.Info("HTTP server stopped")
	return nil
}

func (s *Server) isProduction() bool {
	return s.opts.Environment == "production"
}
