// Package web exposes the query interface over HTTP as plain JSON. It hosts
// a single logical session: one binder, guarded by a mutex, shared by every
// request. Rendering stays client-side; handlers only hand out data.
package web

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	"ctsales/internal/export"
	"ctsales/internal/store"
	"ctsales/internal/view"
)

// pageSize is the table page length; a presentation default, not part of the
// filter contract.
const pageSize = 10

// Server serves the dashboard API.
type Server struct {
	ds       *store.Dataset
	exporter *export.Writer
	logger   *slog.Logger

	mu     sync.Mutex
	binder *view.Binder

	http *http.Server
}

// New builds a server around the loaded dataset.
func New(addr string, ds *store.Dataset, exporter *export.Writer, logger *slog.Logger) *Server {
	s := &Server{
		ds:       ds,
		exporter: exporter,
		logger:   logger.With(slog.String("component", "web")),
		binder:   view.NewBinder(ds),
	}
	s.http = &http.Server{
		Addr:         addr,
		Handler:      s.routes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.requestLogger)

	r.Route("/api", func(r chi.Router) {
		r.Use(render.SetContentType(render.ContentTypeJSON))

		r.Get("/years", s.getYears)
		r.Get("/towns", s.getTowns)
		r.Get("/residential-types", s.getResidentialTypes)

		r.Get("/state", s.getState)
		r.Put("/state", s.updateState)
		r.Post("/reset", s.reset)

		r.Get("/sankey", s.getSankey)
		r.Get("/map", s.getMap)
		r.Get("/table", s.getTable)

		r.Post("/export/{format}", s.exportFiltered)
	})

	return r
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Info("request",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Int("status", ww.Status()),
			slog.Duration("duration", time.Since(start)),
			slog.String("request_id", middleware.GetReqID(r.Context())))
	})
}

// ListenAndServe blocks until the context is cancelled or the listener
// fails, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", slog.String("addr", s.http.Addr))
		errCh <- s.http.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return s.http.Shutdown(shutdownCtx)
	}
}
