// Package testbackend is an in-memory stand-in for the NODO REST API. It
// backs end-to-end tests and local development (cmd/nodo-stub); it is not a
// production server.
package testbackend

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/okian/nodo/internal/domain/model"
	"github.com/okian/nodo/pkg/logger"
)

// Request is one call the backend received.
type Request struct {
	Method        string
	Path          string // path plus raw query
	Authorization string
	HasAuth       bool
	Status        int
}

// Server serves the NODO endpoints from memory.
type Server struct {
	store  *store
	secret []byte
	now    func() time.Time
	logger logger.Logger
	router *mux.Router

	mu       sync.Mutex
	requests []Request
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the request logger.
func WithLogger(l logger.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithSecret sets the HS256 signing key. A random key is used otherwise.
func WithSecret(secret []byte) Option {
	return func(s *Server) {
		if len(secret) > 0 {
			s.secret = secret
		}
	}
}

// WithClock overrides the time source used for timestamps and tokens.
func WithClock(now func() time.Time) Option {
	return func(s *Server) {
		if now != nil {
			s.now = now
		}
	}
}

// New creates a backend with empty state.
func New(opts ...Option) *Server {
	s := &Server{
		secret: []byte(uuid.NewString()),
		now:    time.Now,
		logger: logger.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.store = newStore(s.now)
	s.router = s.routes()
	return s
}

// ServeHTTP makes Server an http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() *mux.Router {
	r := mux.NewRouter()
	r.Use(s.record)

	r.HandleFunc("/openapi.yaml", handleOpenAPI).Methods(http.MethodGet)

	r.HandleFunc("/auth/register", s.handleRegister).Methods(http.MethodPost)
	r.HandleFunc("/auth/verify", s.handleVerify).Methods(http.MethodPost)
	r.HandleFunc("/auth/login", s.handleLogin).Methods(http.MethodPost)
	r.HandleFunc("/auth/me", s.requireUser(s.handleMe)).Methods(http.MethodGet)

	r.HandleFunc("/profile", s.requireUser(s.handleGetProfile)).Methods(http.MethodGet)
	r.HandleFunc("/profile", s.requireUser(s.handleUpdateProfile)).Methods(http.MethodPut)
	r.HandleFunc("/upload", s.requireUser(s.handleUpload)).Methods(http.MethodPost)

	r.HandleFunc("/opportunities", s.requireUser(s.handleCreateOpportunity, model.RoleDeveloper)).Methods(http.MethodPost)
	r.HandleFunc("/opportunities", s.requireUser(s.handleListOpportunities)).Methods(http.MethodGet)
	r.HandleFunc("/opportunities/{id}", s.requireUser(s.handleGetOpportunity)).Methods(http.MethodGet)
	r.HandleFunc("/opportunities/{id}/proposals", s.requireUser(s.handleSubmitProposal, model.RoleContractor)).Methods(http.MethodPost)

	r.HandleFunc("/proposals/mine", s.requireUser(s.handleMyProposals, model.RoleContractor)).Methods(http.MethodGet)
	r.HandleFunc("/proposals/for-me", s.requireUser(s.handleReceivedProposals, model.RoleDeveloper)).Methods(http.MethodGet)
	r.HandleFunc("/proposals/{id}/status", s.requireUser(s.handleProposalStatus, model.RoleDeveloper)).Methods(http.MethodPatch)

	r.HandleFunc("/dashboard/developer", s.requireUser(s.handleDeveloperDashboard, model.RoleDeveloper)).Methods(http.MethodGet)
	r.HandleFunc("/dashboard/contractor", s.requireUser(s.handleContractorDashboard, model.RoleContractor)).Methods(http.MethodGet)
	return r
}

// Requests returns every request received so far, oldest first.
func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Request(nil), s.requests...)
}

// ResetRequests forgets the recorded requests. State is kept.
func (s *Server) ResetRequests() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests = nil
}

// record logs and remembers each request with its final status.
func (s *Server) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(wrapped, r)

		_, hasAuth := r.Header["Authorization"]
		s.mu.Lock()
		s.requests = append(s.requests, Request{
			Method:        r.Method,
			Path:          r.URL.RequestURI(),
			Authorization: r.Header.Get("Authorization"),
			HasAuth:       hasAuth,
			Status:        wrapped.statusCode,
		})
		s.mu.Unlock()

		s.logger.Debug(r.Context(), "stub request",
			logger.String("method", r.Method),
			logger.String("path", r.URL.RequestURI()),
			logger.Int("status", wrapped.statusCode),
			logger.String("request_id", r.Header.Get("X-Request-ID")),
			logger.Float64("duration_ms", float64(time.Since(start).Microseconds())/1000))
	})
}

// responseWriter captures the status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// errorResponse is the error body: {"detail": "..."}.
type errorResponse struct {
	Detail string `json:"detail"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Detail: msg})
}
