// Package server exposes the catalog read view over HTTP. It is a thin
// shell around the query engine: one products endpoint plus a health
// check, with request logging and request IDs.
package server

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/feedsmith/feedsmith/internal/server/response"
	"github.com/feedsmith/feedsmith/pkg/query"
)

// Config holds the HTTP server configuration.
type Config struct {
	// Addr is the listen address, e.g. ":8080".
	Addr string

	// ReadTimeout and WriteTimeout bound slow clients.
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// Server serves the catalog read API.
type Server struct {
	engine *query.Engine
	logger *zerolog.Logger
	http   *http.Server
}

// New creates a server over the given query engine.
func New(engine *query.Engine, logger *zerolog.Logger, cfg Config) *Server {
	if cfg.ReadTimeout == 0 {
		cfg.ReadTimeout = 10 * time.Second
	}
	if cfg.WriteTimeout == 0 {
		cfg.WriteTimeout = 30 * time.Second
	}

	s := &Server{
		engine: engine,
		logger: logger,
	}
	s.http = &http.Server{
		Addr:         cfg.Addr,
		Handler:      s.Router(),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}
	return s
}

// Router builds the route tree. Exposed for tests.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Get("/products", s.handleProducts)
	return r
}

// ListenAndServe runs the server until the context is canceled.
func (s *Server) ListenAndServe(ctx context.Context) error {
	errc := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", s.http.Addr).Msg("HTTP server listening")
		errc <- s.http.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.http.Shutdown(shutdownCtx)
	}
}

// handleProducts handles GET /products?filter&sort&onlyValid.
func (s *Server) handleProducts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	opts := query.DefaultOptions()
	opts.Filter = q.Get("filter")
	opts.Sort = q.Get("sort")

	if raw := q.Get("onlyValid"); raw != "" {
		onlyValid, err := strconv.ParseBool(raw)
		if err != nil {
			response.BadRequest(w, "invalid onlyValid parameter", raw)
			return
		}
		opts.OnlyValid = onlyValid
	}

	views, err := s.engine.Products(r.Context(), opts)
	if err != nil {
		s.logger.Error().Err(err).Msg("Product query failed")
		response.InternalError(w, err)
		return
	}
	response.OK(w, views)
}

// handleHealth handles GET /healthz.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	response.OK(w, map[string]string{"status": "ok"})
}

// requestLogger logs one line per request with the chi request ID.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		s.logger.Info().
			Str("request_id", middleware.GetReqID(r.Context())).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("duration", time.Since(start)).
			Msg("Request handled")
	})
}
