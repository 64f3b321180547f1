// Package server exposes the analyzer over HTTP for CI integrations and
// the hosted playground.
package server

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/costlens/costlens/pkg/analyzer"
	"github.com/costlens/costlens/pkg/history"
	"github.com/costlens/costlens/pkg/rules"
	"github.com/costlens/costlens/pkg/version"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/goccy/go-json"
)

// Config holds the HTTP surface settings.
type Config struct {
	Addr            string
	ShutdownTimeout time.Duration
}

// API is the HTTP front of the analyzer.
type API struct {
	router   *chi.Mux
	logger   *slog.Logger
	server   *http.Server
	analyzer *analyzer.Analyzer
	archive  *history.Archive
	config   Config
}

// Option configures optional API collaborators.
type Option func(*API)

// WithArchive enables report persistence; every successful analysis is
// archived and listed under /api/reports.
func WithArchive(archive *history.Archive) Option {
	return func(api *API) {
		api.archive = archive
	}
}

// New wires the routes over an analyzer instance.
func New(logger *slog.Logger, a *analyzer.Analyzer, config Config, opts ...Option) *API {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if config.ShutdownTimeout == 0 {
		config.ShutdownTimeout = 10 * time.Second
	}

	api := &API{
		logger:   logger,
		analyzer: a,
		config:   config,
	}
	for _, opt := range opts {
		opt(api)
	}

	router := chi.NewRouter()
	router.Use(requestLogger(logger))
	router.Use(middleware.Recoverer)

	router.Get("/healthz", api.handleHealth)
	router.Route("/api", func(r chi.Router) {
		r.Post("/analyze", api.handleAnalyze)
		r.Get("/rules", api.handleRules)
		if api.archive != nil {
			r.Get("/reports", api.handleReports)
		}
	})

	api.router = router
	api.server = &http.Server{
		Addr:    config.Addr,
		Handler: router,
	}
	return api
}

// Handler exposes the router, mainly for httptest.
func (api *API) Handler() http.Handler {
	return api.router
}

// Start serves until a listener error or SIGINT/SIGTERM, then shuts down
// gracefully within the configured timeout.
func (api *API) Start() error {
	serverErrors := make(chan error, 1)
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	go func() {
		api.logger.Info("starting server", "addr", api.server.Addr)
		serverErrors <- api.server.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-shutdown:
		api.logger.Info("shutdown initiated")

		ctx, cancel := context.WithTimeout(context.Background(), api.config.ShutdownTimeout)
		defer cancel()

		err := api.server.Shutdown(ctx)
		if err != nil {
			api.logger.Error("graceful shutdown failed", "error", err)
			err = api.server.Close()
		}
		return err
	}
}

func (api *API) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": version.Current,
	})
}

func (api *API) handleRules(w http.ResponseWriter, r *http.Request) {
	type ruleInfo struct {
		ID          string `json:"id"`
		Name        string `json:"name"`
		Service     string `json:"service"`
		Severity    string `json:"severity"`
		Category    string `json:"category"`
		Description string `json:"description"`
	}
	var infos []ruleInfo
	for _, rule := range rules.Registry() {
		infos = append(infos, ruleInfo{
			ID:          rule.ID,
			Name:        rule.Name,
			Service:     rule.Service,
			Severity:    string(rule.Severity),
			Category:    string(rule.Category),
			Description: rule.Description,
		})
	}
	writeJSON(w, http.StatusOK, infos)
}

// handleAnalyze accepts a multipart upload under the "file" field, or a
// raw body with the name passed as ?filename=. Oversized payloads get
// 413 before analysis; inputs no extractor understands get 422.
func (api *API) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	maxBytes := api.analyzer.Limits().MaxFileBytes
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)

	fileName, content, err := readUpload(r)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "payload exceeds size limit")
			return
		}
		writeError(w, http.StatusBadRequest, "could not read upload: "+err.Error())
		return
	}

	result, err := api.analyzer.Analyze(r.Context(), fileName, content)
	if err != nil {
		if errors.Is(err, analyzer.ErrNoInfrastructure) {
			writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		api.logger.Error("analysis failed", "file", fileName, "error", err)
		writeError(w, http.StatusInternalServerError, "analysis failed")
		return
	}

	if api.archive != nil {
		// Best effort; a broken archive must not fail the analysis itself.
		if key, err := api.archive.Save(r.Context(), result); err != nil {
			api.logger.Error("archiving report failed", "file", fileName, "error", err)
		} else {
			api.logger.Info("report archived", "key", key)
		}
	}

	writeJSON(w, http.StatusOK, result)
}

func (api *API) handleReports(w http.ResponseWriter, r *http.Request) {
	entries, err := api.archive.Entries(r.Context())
	if err != nil {
		api.logger.Error("listing archived reports failed", "error", err)
		writeError(w, http.StatusInternalServerError, "could not list reports")
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

func readUpload(r *http.Request) (string, []byte, error) {
	contentType := r.Header.Get("Content-Type")
	if len(contentType) >= 19 && contentType[:19] == "multipart/form-data" {
		file, header, err := r.FormFile("file")
		if err != nil {
			return "", nil, err
		}
		defer file.Close()
		content, err := io.ReadAll(file)
		if err != nil {
			return "", nil, err
		}
		return header.Filename, content, nil
	}

	content, err := io.ReadAll(r.Body)
	if err != nil {
		return "", nil, err
	}
	fileName := r.URL.Query().Get("filename")
	if fileName == "" {
		fileName = "upload"
	}
	return fileName, content, nil
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

func requestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			next.ServeHTTP(w, r)
			logger.Info("request",
				"method", r.Method,
				"path", r.URL.Path,
				"remote", r.RemoteAddr,
				"duration", time.Since(start))
		})
	}
}
