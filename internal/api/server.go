// Package api provides the HTTP surface of the betti daemon: stats and
// metrics endpoints plus the classification/admission middleware applied
// to workload routes.
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/betti-labs/betti/internal/balancer"
	"github.com/betti-labs/betti/internal/config"
	"github.com/betti-labs/betti/internal/log"
	"github.com/betti-labs/betti/internal/ratelimit"
)

// Server holds the daemon's HTTP dependencies.
type Server struct {
	cfg       config.AppConfig
	balancer  *balancer.Balancer
	limiter   *ratelimit.Limiter
	workload  http.Handler
	logger    zerolog.Logger
	startTime time.Time
}

// New assembles a Server. workload may be nil when the daemon only serves
// the control plane.
func New(cfg config.AppConfig, b *balancer.Balancer, l *ratelimit.Limiter, workload http.Handler) *Server {
	return &Server{
		cfg:       cfg,
		balancer:  b,
		limiter:   l,
		workload:  workload,
		logger:    log.WithComponent("api"),
		startTime: time.Now(),
	}
}

// Router builds the full route tree. Control-plane endpoints are guarded
// by httprate; workload routes additionally pass the per-IP limiter and
// the admission middleware.
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(RequestID)
	r.Use(s.accessLog)

	r.Get("/healthz", s.handleHealthz)
	r.Get("/metrics", s.handleMetrics)
	r.Method(http.MethodGet, "/metrics/prom", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Use(httprate.LimitByIP(60, time.Minute))
		r.Get("/stats", s.handleStats)
		r.Post("/stats/reset", s.handleStatsReset)
	})

	if s.workload != nil {
		r.Group(func(r chi.Router) {
			if s.limiter != nil {
				r.Use(ratelimit.Middleware(s.limiter, ClientIP))
			}
			r.Use(Admission(s.balancer))
			r.Handle("/*", s.workload)
		})
	}
	return r
}

// HTTPServer wraps the router in an http.Server with sane timeouts.
// Write timeout stays generous: heavy routes may wait for admission.
func (s *Server) HTTPServer() *http.Server {
	return &http.Server{
		Addr:              s.cfg.Listen,
		Handler:           s.Router(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      2 * time.Minute,
		IdleTimeout:       2 * time.Minute,
	}
}

// accessLog emits one structured line per request.
func (s *Server) accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.logger.Info().
			Str("event", "http.request").
			Str("request_id", log.RequestIDFromContext(r.Context())).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", rec.status).
			Dur("duration", time.Since(start)).
			Msg("request served")
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}
