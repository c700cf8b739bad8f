// Package api exposes the GEON engine and the place catalog over HTTP.
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"golang.org/x/time/rate"

	"github.com/sells-group/geon/internal/convert"
	"github.com/sells-group/geon/internal/notation"
	"github.com/sells-group/geon/internal/store"
)

// maxBodyBytes caps request bodies.
const maxBodyBytes = 10 << 20

// Server holds the handlers' dependencies. A nil store disables the
// /v1/places routes.
type Server struct {
	parser    *notation.Parser
	converter *convert.Converter
	store     store.Store
	origins   []string
	limiter   *clientLimiter
}

// Option configures a Server.
type Option func(*Server)

// WithStore attaches a place catalog.
func WithStore(st store.Store) Option {
	return func(s *Server) { s.store = st }
}

// WithCORSOrigins sets the allowed CORS origins.
func WithCORSOrigins(origins []string) Option {
	return func(s *Server) { s.origins = origins }
}

// WithRateLimit limits each client to rps requests per second with the given
// burst. rps <= 0 disables limiting.
func WithRateLimit(rps float64, burst int) Option {
	return func(s *Server) {
		s.limiter = nil
		if rps > 0 {
			s.limiter = newClientLimiter(rate.Limit(rps), burst)
		}
	}
}

// New creates a Server. Nil parser or converter fall back to defaults.
func New(parser *notation.Parser, converter *convert.Converter, opts ...Option) *Server {
	if parser == nil {
		parser = notation.NewParser()
	}
	if converter == nil {
		converter = convert.NewConverter(convert.Options{})
	}
	s := &Server{parser: parser, converter: converter, origins: []string{"*"}}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler builds the router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(RequestLogger)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))
	if s.limiter != nil {
		r.Use(s.limiter.middleware)
	}
	r.Use(middleware.Timeout(60 * time.Second))

	r.Get("/health", s.handleHealth)

	r.Route("/v1", func(r chi.Router) {
		r.Post("/parse", s.handleParse)
		r.Post("/format", s.handleFormat)
		r.Post("/validate", s.handleValidate)
		r.Post("/convert/geojson", s.handleConvertGeoJSON)
		r.Post("/export/geojson", s.handleExportGeoJSON)

		r.Route("/places", func(r chi.Router) {
			r.Use(s.requireStore)
			r.Post("/", s.handlePutPlaces)
			r.Get("/", s.handleListPlaces)
			r.Get("/{id}", s.handleGetPlace)
			r.Delete("/{id}", s.handleDeletePlace)
			r.Get("/{id}/geometry", s.handlePlaceGeometry)
		})
	})
	return r
}

func (s *Server) requireStore(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.store == nil {
			writeError(w, http.StatusServiceUnavailable, "catalog not configured")
			return
		}
		next.ServeHTTP(w, r)
	})
}
