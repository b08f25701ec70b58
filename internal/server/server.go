// Package server exposes the chart pipeline as an HTTP API.
//
// Every /api request belongs to a session chosen by the X-Session-ID
// header. A request without one (or with an unknown one) starts a new
// session; the ID is echoed back in the response header either way. Usage
// events raised while serving a request are applied to that session and
// forwarded to the configured external notifier.
//
// # Routes
//
//	GET    /healthz
//	POST   /api/datasets/inspect
//	POST   /api/charts
//	POST   /api/charts/export?format=png|pdf|json
//	POST   /api/uploads
//	GET    /api/uploads
//	GET    /api/uploads/{id}
//	DELETE /api/uploads/{id}
//	POST   /api/insights
//	GET    /api/dashboard/stats
package server

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/chartdeck/pkg/export"
	"github.com/matzehuels/chartdeck/pkg/notify"
	"github.com/matzehuels/chartdeck/pkg/pipeline"
	"github.com/matzehuels/chartdeck/pkg/session"
)

// SessionHeader carries the session ID in requests and responses.
const SessionHeader = "X-Session-ID"

// DefaultMaxBodyBytes limits request bodies.
const DefaultMaxBodyBytes = 10 << 20

// Server serves the HTTP API.
type Server struct {
	sessions   *session.Store
	notifier   notify.Notifier
	stats      notify.StatsSource
	logger     *log.Logger
	defaults   pipeline.Options
	exportOpts []export.Option
	maxBody    int64
}

// Option configures a Server.
type Option func(*Server)

// WithNotifier sets the external notifier that receives every usage event
// in addition to the session state.
func WithNotifier(n notify.Notifier) Option {
	return func(s *Server) { s.notifier = n }
}

// WithStats sets the source of dashboard statistics. Without one the
// statistics of the requesting session are reported.
func WithStats(src notify.StatsSource) Option {
	return func(s *Server) { s.stats = src }
}

// WithLogger sets the logger.
func WithLogger(l *log.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// WithDefaults sets the pipeline options requests start from.
func WithDefaults(opts pipeline.Options) Option {
	return func(s *Server) { s.defaults = opts }
}

// WithExportOptions sets encoder options for PNG and PDF exports.
func WithExportOptions(opts ...export.Option) Option {
	return func(s *Server) { s.exportOpts = opts }
}

// WithMaxBodyBytes limits request bodies to n bytes.
func WithMaxBodyBytes(n int64) Option {
	return func(s *Server) {
		if n > 0 {
			s.maxBody = n
		}
	}
}

// New creates a server backed by sessions.
func New(sessions *session.Store, opts ...Option) *Server {
	s := &Server{
		sessions: sessions,
		maxBody:  DefaultMaxBodyBytes,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)
	r.Use(s.limitBody)

	r.Get("/healthz", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Use(s.withSession)

		r.Post("/datasets/inspect", s.handleInspect)
		r.Post("/charts", s.handleChart)
		r.Post("/charts/export", s.handleExport)

		r.Route("/uploads", func(r chi.Router) {
			r.Post("/", s.handleUpload)
			r.Get("/", s.handleListUploads)
			r.Get("/{id}", s.handleGetUpload)
			r.Delete("/{id}", s.handleDeleteUpload)
		})

		r.Post("/insights", s.handleInsight)
		r.Get("/dashboard/stats", s.handleStats)
	})
	return r
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// runner returns a pipeline runner whose events go to session id and the
// external notifier.
func (s *Server) runner(ctx context.Context, id string) *pipeline.Runner {
	r := pipeline.NewRunner(s.notifierFor(id), loggerFrom(ctx, s.logger))
	r.ExportOptions = s.exportOpts
	return r
}

func (s *Server) notifierFor(id string) notify.Notifier {
	return notify.Multi(session.NewTracker(s.sessions, id), s.notifier)
}
