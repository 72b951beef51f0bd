// Package web serves the browser tool: workbook upload per session, JSON
// series, PNG and HTML bar charts.
package web

import (
	"context"
	"embed"
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"reflect"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"

	"github.com/ukaji3/sheetstats-go/internal/config"
	"github.com/ukaji3/sheetstats-go/pkg/sheetstats"
)

//go:embed templates/*.html
var templateFS embed.FS

// Server is the HTTP front end of the analyzer.
type Server struct {
	cfg      config.ServerConfig
	opts     sheetstats.Options
	loc      *time.Location
	sessions *SessionStore
	metrics  *metrics
	uploads  *rateLimiter
	validate *validator.Validate
	index    *template.Template
	logger   *slog.Logger
	router   chi.Router
}

// NewServer creates a server whose sessions analyze workbooks with opts.
func NewServer(cfg config.ServerConfig, opts sheetstats.Options, logger *slog.Logger) (*Server, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	index, err := template.ParseFS(templateFS, "templates/index.html")
	if err != nil {
		return nil, err
	}

	loc := opts.Location
	if loc == nil {
		loc = time.Local
	}
	opts.Location = loc
	opts.Logger = logger

	s := &Server{
		cfg:      cfg,
		opts:     opts,
		loc:      loc,
		sessions: NewSessionStore(opts, cfg.SessionTTL, logger),
		validate: newValidator(),
		index:    index,
		logger:   logger.With(slog.String("component", "web")),
	}
	s.metrics = newMetrics(s.sessions)
	s.uploads = newRateLimiter(cfg.UploadRPS, cfg.UploadBurst, s.logger)
	s.uploads.onLimit = func() { s.metrics.errors.WithLabelValues("RATE_LIMIT_EXCEEDED").Inc() }
	s.router = s.routes()
	return s, nil
}

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("query"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.metrics.instrument)
	r.Use(structuredLogger(s.logger))
	r.Use(middleware.Recoverer)

	r.Get("/", s.handleIndex)
	r.Get("/healthz", s.handleHealth)
	r.Handle("/metrics", s.metrics.handler())
	r.Get("/chart", s.handleChartHTML)

	r.Route("/api", func(r chi.Router) {
		r.Use(render.SetContentType(render.ContentTypeJSON))
		r.With(s.uploads.handler).Post("/workbook", s.handleUpload)
		r.Get("/series", s.handleSeries)
		r.Get("/analyze", s.handleAnalyze)
		r.Get("/chart.png", s.handleChartPNG)
	})
	return r
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Sessions returns the session store.
func (s *Server) Sessions() *SessionStore {
	return s.sessions
}

// ListenAndServe serves on cfg.Addr until ctx is cancelled, then shuts down
// gracefully and closes every session.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.cfg.Addr,
		Handler:      s.router,
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
		IdleTimeout:  s.cfg.IdleTimeout,
	}

	janitorCtx, stopJanitor := context.WithCancel(ctx)
	janitorDone := make(chan struct{})
	go func() {
		defer close(janitorDone)
		s.sessions.Run(janitorCtx, sweepInterval(s.cfg.SessionTTL))
	}()
	defer func() {
		stopJanitor()
		<-janitorDone
	}()

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server listening", slog.String("addr", s.cfg.Addr))
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

	s.logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func sweepInterval(ttl time.Duration) time.Duration {
	interval := ttl / 4
	if interval < time.Second {
		interval = time.Second
	}
	if interval > 5*time.Minute {
		interval = 5 * time.Minute
	}
	return interval
}
