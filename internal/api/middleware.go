package api

import (
	"context"
	"net"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/betti-labs/betti/internal/balancer"
	"github.com/betti-labs/betti/internal/log"
)

// Path fragments that pin a request to a weight class. Heavy endpoints do
// transcode/render/LLM-grade work; medium ones move or reshape data.
var (
	heavyIndicators  = []string{"/transcode", "/render", "/llm", "/ai"}
	mediumIndicators = []string{"/upload", "/process", "/sync"}
)

// weightHeader names the response header carrying the assigned class.
const weightHeader = "X-Betti-Weight"

// ClassifyPath assigns a weight class to a request path.
func ClassifyPath(path string) balancer.Weight {
	for _, h := range heavyIndicators {
		if strings.Contains(path, h) {
			return balancer.WeightHeavy
		}
	}
	for _, m := range mediumIndicators {
		if strings.Contains(path, m) {
			return balancer.WeightMedium
		}
	}
	return balancer.WeightLight
}

// RequestID attaches a request ID to the context and response, keeping an
// incoming X-Request-ID if the client supplied one.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", id)
		next.ServeHTTP(w, r.WithContext(log.ContextWithRequestID(r.Context(), id)))
	})
}

// Admission classifies each request and wraps heavy/medium handling in the
// blocking admission policy. Light requests pass straight through. When
// the request context expires while waiting for a slot, the client gets
// 503 rather than an admission the work can no longer use.
func Admission(b *balancer.Balancer) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			weight := ClassifyPath(r.URL.Path)
			w.Header().Set(weightHeader, weight.String())

			if !weight.Throttled() {
				next.ServeHTTP(w, r)
				return
			}

			err := b.Do(r.Context(), weight, func(ctx context.Context) error {
				next.ServeHTTP(w, r.WithContext(ctx))
				return nil
			})
			if err != nil {
				logger := log.FromContext(r.Context())
				logger.Debug().
					Err(err).
					Str("event", "admission.abandoned").
					Str("path", r.URL.Path).
					Str("weight", weight.String()).
					Msg("request gave up waiting for admission")
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusServiceUnavailable)
				_, _ = w.Write([]byte(`{"error":"admission_unavailable"}`))
			}
		})
	}
}

// ClientIP determines the originating IP (X-Forwarded-For / X-Real-IP /
// RemoteAddr).
func ClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		parts := strings.Split(xff, ",")
		if ip := strings.TrimSpace(parts[0]); ip != "" {
			return ip
		}
	}
	if xr := r.Header.Get("X-Real-IP"); xr != "" {
		return xr
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err == nil && host != "" {
		return host
	}
	return r.RemoteAddr
}
