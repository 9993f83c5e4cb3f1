// CLAUDE:SUMMARY HTTP front door: accept-then-work quiz webhook, health, and run inspection routes.
package main

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hazyhaar/quizchain/chain"
	"github.com/hazyhaar/quizchain/idgen"
	"github.com/hazyhaar/quizchain/kit"
)

var newRequestID = idgen.Prefixed("req_", idgen.Default)

// chainStarter is the part of chain.Runner the HTTP layer needs.
type chainStarter interface {
	Start(ctx context.Context, url string, id chain.Identity) (string, time.Time)
	Registry() *chain.Registry
}

type server struct {
	starter chainStarter
	secret  string
	// base is the process-lifetime context; accepted chains are bound to
	// it, not to the webhook request that delivered them.
	base   context.Context
	logger *slog.Logger
}

// quizRequest is the webhook body announcing a new quiz chain.
type quizRequest struct {
	Email  string `json:"email"`
	Secret string `json:"secret"`
	URL    string `json:"url"`
}

// newRouter builds the HTTP surface. Extra middlewares (request logging)
// are applied outermost.
func newRouter(s *server, middlewares ...func(http.Handler) http.Handler) *chi.Mux {
	r := chi.NewRouter()
	for _, mw := range middlewares {
		r.Use(mw)
	}
	r.Use(requestID)

	r.Post("/", s.handleQuiz)
	r.Get("/health", s.handleHealth)
	r.Get("/runs", s.handleRuns)
	r.Get("/runs/{id}", s.handleRun)
	return r
}

// handleQuiz validates the webhook and acknowledges immediately; the chain
// runs in the background. The grading endpoint only needs the ack, not the
// outcome.
func (s *server) handleQuiz(w http.ResponseWriter, r *http.Request) {
	var req quizRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON body"})
		return
	}
	if req.Email == "" || req.Secret == "" || req.URL == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "email, secret and url are required"})
		return
	}
	if subtle.ConstantTimeCompare([]byte(req.Secret), []byte(s.secret)) != 1 {
		writeJSON(w, http.StatusForbidden, map[string]string{"error": "invalid secret"})
		return
	}

	startedAt := time.Now()
	runID, deadline := s.starter.Start(s.base, req.URL, chain.Identity{Email: req.Email, Secret: req.Secret})
	s.logger.Info("quiz accepted", "run_id", runID, "url", req.URL, "request_id", kit.GetRequestID(r.Context()))

	writeJSON(w, http.StatusOK, map[string]any{
		"status":     "accepted",
		"message":    "quiz chain started",
		"run_id":     runID,
		"started_at": startedAt.Format(time.RFC3339),
		"deadline":   deadline.Format(time.RFC3339),
	})
}

func (s *server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
		"time":   time.Now().Format(time.RFC3339),
	})
}

func (s *server) handleRuns(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"runs": s.starter.Registry().List()})
}

func (s *server) handleRun(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	st, ok := s.starter.Registry().Get(id)
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "unknown run"})
		return
	}
	writeJSON(w, http.StatusOK, st)
}

// requestID stamps each request with an ID for log correlation.
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := kit.WithRequestID(r.Context(), newRequestID())
		ctx = kit.WithRemoteAddr(ctx, r.RemoteAddr)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}
