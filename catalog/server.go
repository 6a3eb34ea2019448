package catalog

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

// Server exposes a compiled catalog directory over HTTP.
type Server struct {
	source Source
	log    zerolog.Logger
}

func NewServer(source Source, log zerolog.Logger) *Server {
	return &Server{source: source, log: log}
}

// Router returns the catalog routes.
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Get("/health", s.handleHealth)
	r.Get("/playlists/"+IndexName, s.handleSummary)
	r.Get("/playlists/{id}", s.handlePlaylist)
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		notFound(w)
	})
	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSONResponse(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"service": "iplay-catalog",
	})
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := s.source.FetchSummary(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, summary)
}

func (s *Server) handlePlaylist(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	tracks, err := s.source.FetchPlaylist(r.Context(), id)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if tracks == nil {
		tracks = []Track{}
	}
	writeJSONResponse(w, http.StatusOK, tracks)
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, ErrNotFound) {
		notFound(w)
		return
	}
	s.log.Error().Err(err).Str("path", r.URL.Path).Msg("catalog read failed")
	http.Error(w, "500 - Internal Server Error", http.StatusInternalServerError)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("elapsed", time.Since(start)).
			Str("request_id", middleware.GetReqID(r.Context())).
			Msg("request")
	})
}

func notFound(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusNotFound)
	_, _ = w.Write([]byte("404 - Not Found"))
}

func writeJSONResponse(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
