package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/custodia-labs/docqa/internal/core/ports/driving"
)

// DefaultMaxUploadBytes caps an ingest request body when no limit is configured.
const DefaultMaxUploadBytes int64 = 32 << 20

// Ports holds the driving ports the HTTP API calls into.
type Ports struct {
	Indexing driving.IndexingService
	Answer   driving.AnswerService
	Catalog  driving.CatalogService
}

// Config configures the HTTP API.
type Config struct {
	// MaxUploadBytes caps the size of a request body. Zero uses DefaultMaxUploadBytes.
	MaxUploadBytes int64

	// Logger receives request logs. Nil discards them.
	Logger *slog.Logger
}

// Server serves the docqa HTTP API.
type Server struct {
	ports          *Ports
	maxUploadBytes int64
	logger         *slog.Logger
}

// NewServer creates an HTTP API server.
func NewServer(ports *Ports, cfg Config) (*Server, error) {
	if ports == nil {
		return nil, errors.New("ports are required")
	}
	if ports.Indexing == nil || ports.Answer == nil || ports.Catalog == nil {
		return nil, errors.New("indexing, answer and catalog services are required")
	}

	maxUpload := cfg.MaxUploadBytes
	if maxUpload <= 0 {
		maxUpload = DefaultMaxUploadBytes
	}
	log := cfg.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}

	return &Server{
		ports:          ports,
		maxUploadBytes: maxUpload,
		logger:         log,
	}, nil
}

// Handler returns the routed HTTP handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleRoot)
	mux.HandleFunc("POST /api/ingest", s.handleIngest)
	mux.HandleFunc("POST /api/query", s.handleQuery)
	mux.HandleFunc("POST /api/clear_db", s.handleClear)
	mux.HandleFunc("GET /api/documents", s.handleDocuments)
	return s.logRequests(mux)
}

// Run listens on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		httpServer.Shutdown(shutdownCtx) //nolint:errcheck
	}()

	s.logger.Info("HTTP API listening", slog.String("addr", addr))

	err := httpServer.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return fmt.Errorf("http server: %w", err)
}

// statusRecorder captures the response status for request logging.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		level := slog.LevelInfo
		if rec.status >= http.StatusInternalServerError {
			level = slog.LevelError
		}
		s.logger.LogAttrs(r.Context(), level, "request",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Int("status", rec.status),
			slog.Duration("duration", time.Since(start)),
		)
	})
}
