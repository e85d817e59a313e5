package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/betti-labs/betti/internal/metrics"
)

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"uptime": time.Since(s.startTime).String(),
	})
}

// handleStats returns the current admission snapshot as JSON.
func (s *Server) handleStats(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.balancer.Snapshot())
}

// handleStatsReset zeroes the counters. Meant for test isolation between
// benchmark runs, not for routine production use.
func (s *Server) handleStatsReset(w http.ResponseWriter, r *http.Request) {
	s.balancer.ResetStats()
	s.logger.Info().
		Str("event", "stats.reset").
		Str("remote", ClientIP(r)).
		Msg("admission statistics reset")
	w.WriteHeader(http.StatusNoContent)
}

// handleMetrics serves the flat text exposition of the current snapshot.
func (s *Server) handleMetrics(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte(metrics.Exposition(s.balancer.Snapshot())))
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
