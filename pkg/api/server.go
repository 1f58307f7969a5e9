package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/wardenhq/warden/pkg/audit"
	"github.com/wardenhq/warden/pkg/authz"
	"github.com/wardenhq/warden/pkg/middleware"
	"github.com/wardenhq/warden/pkg/observability"
)

// Server routes authorization requests to the decision core
type Server struct {
	router   *mux.Router
	checker  middleware.AccessChecker
	batch    *authz.BatchChecker
	store    authz.PolicyStore
	recorder audit.Recorder
	logger   *observability.Logger
}

// Deps carries the server's collaborators. Limiter and Metrics may be
// nil; Recorder may be nil when audit is disabled.
type Deps struct {
	Checker       middleware.AccessChecker
	Batch         *authz.BatchChecker
	Store         authz.PolicyStore
	Authenticator *middleware.Authenticator
	Guard         *middleware.Guard
	Limiter       *middleware.RateLimiter
	Recorder      audit.Recorder
	Metrics       *observability.Metrics
	Logger        *observability.Logger
}

// NewServer creates the API server and wires its routes
func NewServer(deps Deps) *Server {
	recorder := deps.Recorder
	if recorder == nil {
		recorder = audit.NopRecorder{}
	}

	s := &Server{
		router:   mux.NewRouter(),
		checker:  deps.Checker,
		batch:    deps.Batch,
		store:    deps.Store,
		recorder: recorder,
		logger:   deps.Logger,
	}
	s.setupRoutes(deps)
	return s
}

func (s *Server) setupRoutes(deps Deps) {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.Recovery(s.logger))
	if deps.Limiter != nil {
		s.router.Use(deps.Limiter.Handler)
	}
	if deps.Metrics != nil {
		s.router.Use(deps.Metrics.HTTPMiddleware)
	}

	v1 := s.router.PathPrefix("/v1").Subrouter()
	v1.Use(deps.Authenticator.Handler)

	v1.HandleFunc("/access/check", s.checkAccess).Methods("GET")
	v1.HandleFunc("/access/batch", s.batchCheck).Methods("POST")

	v1.Handle("/projects/{project_id}",
		deps.Guard.Require(authz.ActionRead)(http.HandlerFunc(s.getProject)),
	).Methods("GET")
}

// Router returns the configured handler
func (s *Server) Router() http.Handler {
	return s.router
}
