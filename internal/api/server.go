// Package api exposes the checklist, document box, group query and
// evaluation engines over JSON/HTTP.
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/flowaudit/audit-engine/internal/evaluation"
	"github.com/flowaudit/audit-engine/internal/store"
)

// Options configures a Server.
type Options struct {
	AllowedOrigins []string
	RateLimitRPS   float64
	RateLimitBurst int
	// Evaluation holds the defaults that request options are merged onto.
	Evaluation evaluation.Options
	// Registry receives the API metrics. Nil creates a private registry.
	Registry *prometheus.Registry
	// Clock overrides time.Now, for tests.
	Clock func() time.Time
}

// Server serves the REST API. A nil store disables the archive routes and
// evaluations are computed without being persisted.
type Server struct {
	store    store.Store
	defaults evaluation.Options
	limiter  *tenantLimiter
	metrics  *Metrics
	registry *prometheus.Registry
	origins  []string
	clock    func() time.Time
}

// NewServer creates a Server.
func NewServer(st store.Store, opts Options) *Server {
	reg := opts.Registry
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	rps := opts.RateLimitRPS
	if rps <= 0 {
		rps = 20
	}
	origins := opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	return &Server{
		store:    st,
		defaults: opts.Evaluation,
		limiter:  newTenantLimiter(rps, opts.RateLimitBurst),
		metrics:  NewMetrics(reg),
		registry: reg,
		origins:  origins,
		clock:    opts.Clock,
	}
}

// Handler returns the routed HTTP handler.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", headerTenant, headerUser},
		MaxAge:         300,
	}))
	r.Use(s.instrument)

	r.Get("/health", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))

	r.Route("/v1", func(r chi.Router) {
		r.Use(s.withSession)
		r.Use(s.rateLimit)

		r.Post("/checklists/validate", s.handleValidateChecklist)
		r.Post("/documents/statistics", s.handleDocumentStatistics)
		r.Post("/group-queries/status", s.handleQueryStatus)
		r.Post("/group-queries/evaluate", s.handleEvaluate)

		if s.store != nil {
			r.Get("/group-queries/{queryID}/evaluations", s.handleListEvaluations)
			r.Get("/group-queries/{queryID}/evaluations/latest", s.handleLatestEvaluation)
			r.Get("/evaluations/{id}", s.handleGetEvaluation)
		}
	})
	return r
}
