package server

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"rag-api/internal/config"
	"rag-api/internal/models"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"
)

// Querier is the pipeline behind POST /query.
type Querier interface {
	Query(ctx context.Context, query string) (*models.Answer, error)
}

type Server struct {
	pipeline       Querier
	allowedOrigins []string
}

func New(pipeline Querier, cfg *config.ServerConfig) *Server {
	return &Server{
		pipeline:       pipeline,
		allowedOrigins: cfg.AllowedOrigins,
	}
}

// Handler assembles the route table wrapped in request logging and CORS
// middleware.
func (s *Server) Handler(logger zerolog.Logger) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.homeHandler)
	mux.HandleFunc("/query", s.queryHandler)

	h := s.corsMiddleware(mux)
	h = hlog.AccessHandler(func(r *http.Request, status, size int, duration time.Duration) {
		hlog.FromRequest(r).Info().
			Str("method", r.Method).
			Stringer("url", r.URL).
			Int("status", status).
			Dur("duration", duration).
			Msg("Request")
	})(h)
	return hlog.NewHandler(logger)(h)
}

// GET / is the liveness check.
func (s *Server) homeHandler(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("RAG API is running!"))
}

type queryRequest struct {
	Query string `json:"query"`
}

// POST /query  { "query": "your question" }
func (s *Server) queryHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	var req queryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		writeError(w, http.StatusBadRequest, "Query is required")
		return
	}

	answer, err := s.pipeline.Query(r.Context(), req.Query)
	if err != nil {
		hlog.FromRequest(r).Error().Err(err).Msg("Query pipeline failed")
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	writeJSON(w, http.StatusOK, answer)
}

func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if origin := s.allowOrigin(r.Header.Get("Origin")); origin != "" {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) allowOrigin(origin string) string {
	for _, allowed := range s.allowedOrigins {
		if allowed == "*" {
			return "*"
		}
		if allowed == origin {
			return origin
		}
	}
	return ""
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
