package web

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/vbonduro/fieldsurvey/internal/domain"
	"github.com/vbonduro/fieldsurvey/internal/photostore"
	"github.com/vbonduro/fieldsurvey/internal/service"
)

// reportService is the subset of service.ReportService the handlers use.
type reportService interface {
	ListSurveys(ctx context.Context) ([]*domain.Survey, error)
	RenderReport(ctx context.Context, surveyID int64, opts service.RenderOptions) (string, string, error)
	SampleWorkbook(ctx context.Context, surveyID int64) ([]byte, string, error)
}

type Server struct {
	reports    reportService
	photoStore photostore.PhotoStore
	router     chi.Router
	logger     *slog.Logger
	now        func() time.Time
}

// NewServer wires the HTTP routes. photoStore may be nil, in which case
// /files is not served.
func NewServer(reports reportService, ps photostore.PhotoStore, logger *slog.Logger) *Server {
	s := &Server{
		reports:    reports,
		photoStore: ps,
		router:     chi.NewRouter(),
		logger:     logger,
		now:        time.Now,
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	r := s.router
	r.Use(func(next http.Handler) http.Handler { return requestLogger(s.logger, next) })
	r.Use(middleware.Recoverer)
	r.Use(securityHeaders)

	r.Get("/healthz", s.handleHealth)
	r.Route("/surveys", func(r chi.Router) {
		r.Get("/", s.handleListSurveys)
		r.Get("/{id}/report", s.handleReport)
		r.Get("/{id}/samples.xlsx", s.handleSampleWorkbook)
	})
	if s.photoStore != nil {
		r.Get("/files/*", s.handleFile)
	}
}

// securityHeaders adds defensive HTTP response headers to every response.
// Reports carry inline styles, may frame the OpenStreetMap embed and load
// images from object storage.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		h.Set("Content-Security-Policy",
			"default-src 'none'; "+
				"style-src 'unsafe-inline'; "+
				"img-src 'self' data: https:; "+
				"frame-src https://www.openstreetmap.org")
		next.ServeHTTP(w, r)
	})
}

// statusRecorder wraps http.ResponseWriter to capture the written status code.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func requestLogger(logger *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	})
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe serves until ctx is cancelled, then drains in-flight
// requests for up to ten seconds.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	s.logger.Info("starting server", "addr", addr)
	srv := &http.Server{
		Addr:         addr,
		Handler:      s,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		s.logger.Info("shutdown initiated")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

func closeWithLog(c io.Closer, label string, logger *slog.Logger) {
	if err := c.Close(); err != nil {
		logger.Error("failed to close resource", "label", label, "error", err)
	}
}
