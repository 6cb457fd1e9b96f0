package httpapi

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"ReviewIntake/internal/config"
)

// Server exposes the review intake endpoint plus health and metrics.
type Server struct {
	httpServer   *http.Server
	router       chi.Router
	intake       Submitter
	secretHeader string
	logger       *slog.Logger
}

// NewServer builds the router; a nil metrics handler leaves /metrics unmounted.
func NewServer(cfg config.HTTPConfig, secretHeader string, intake Submitter, metrics http.Handler, log *slog.Logger) *Server {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}

	r := chi.NewRouter()
	s := &Server{
		router:       r,
		intake:       intake,
		secretHeader: secretHeader,
		logger:       log,
	}

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(log))
	r.Use(recoverJSON(log))

	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
	})

	path := cfg.Path
	if path == "" {
		path = "/"
	}
	r.Post(path, s.handleSubmit)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	if metrics != nil {
		r.Method(http.MethodGet, "/metrics", metrics)
	}

	s.httpServer = &http.Server{
		Addr:         cfg.Addr,
		Handler:      r,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}
	return s
}

// Handler returns the routed handler, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start blocks serving requests until Shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server started", "addr", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
