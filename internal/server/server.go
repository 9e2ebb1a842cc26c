// Package server serves provmap over HTTP.
//
// The server holds one dataset, loaded at startup and shared read-only by
// all requests. Each request flattens its province again, so warnings about
// skipped connections are part of every response.
//
// Routes:
//
//	GET /                                   province selector
//	GET /map?province=NAME                  selector and map page
//	GET /api/provinces                      provinces with counts
//	GET /api/provinces/{province}/rows      node and edge rows (JSON)
//	GET /api/provinces/{province}/nodes.csv node rows
//	GET /api/provinces/{province}/edges.csv edge rows
//	GET /api/provinces/{province}/geojson   GeoJSON feature collection
//	GET /api/provinces/{province}/deck      deck.gl description
//	GET /api/provinces/{province}/graph.dot Graphviz source
//	GET /api/provinces/{province}/graph.svg node-link diagram
//	GET /api/provinces/{province}/graph.png node-link diagram
//	GET /healthz                            build and dataset status
//	GET /metrics                            Prometheus metrics
//
// Province endpoints accept ?dangling=fail|skip, ?fit=true and ?detailed=true.
// Skipped dangling connections are listed in X-Provmap-Warning headers.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/provmap/internal/metrics"
	"github.com/matzehuels/provmap/pkg/buildinfo"
	"github.com/matzehuels/provmap/pkg/config"
	"github.com/matzehuels/provmap/pkg/pipeline"
)

// Options configures a Server.
type Options struct {
	Runner *pipeline.Runner
	Config *config.Config
	Logger *log.Logger

	// LoadErrors are dataset load failures. They are shown on every page and
	// reported by /healthz.
	LoadErrors []error
}

// Server is the provmap HTTP server.
type Server struct {
	runner     *pipeline.Runner
	cfg        *config.Config
	logger     *log.Logger
	loadErrors []error
	router     chi.Router
}

// New creates a server and registers its routes.
func New(opts Options) *Server {
	if opts.Config == nil {
		opts.Config = config.Default()
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	if opts.Runner == nil {
		opts.Runner = pipeline.NewRunner(nil, nil, nil, opts.Logger)
	}
	s := &Server{
		runner:     opts.Runner,
		cfg:        opts.Config,
		logger:     opts.Logger,
		loadErrors: opts.LoadErrors,
	}
	s.router = s.routes()
	return s
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)

	r.Get("/", s.handleIndex)
	r.Get("/map", s.handleMap)
	r.Get("/healthz", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	r.Route("/api/provinces", func(r chi.Router) {
		r.Get("/", s.handleProvinces)
		r.Route("/{province}", func(r chi.Router) {
			for path, format := range artifactRoutes {
				r.Get("/"+path, s.handleArtifact(format))
			}
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, errNotFound)
	})
	return r
}

// ListenAndServe serves on the configured address until ctx is cancelled,
// then shuts down gracefully within the configured timeout. A listener
// failure is returned immediately.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Server.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	timeout := s.cfg.Server.ShutdownTimeout.Duration
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.logger.Info("listening", "addr", srv.Addr, "build", buildinfo.String())
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		s.logger.Info("shutting down", "timeout", timeout)
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
