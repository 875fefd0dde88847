package http

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

// handleHealth performs basic liveness check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(r.Context(), w, http.StatusOK, map[string]any{
		"status":    "ok",
		"timestamp": s.now().Format(time.RFC3339),
		"uptime":    time.Since(s.started).Round(time.Second).String(),
	})
}

// handleReady performs readiness check with dependency verification
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	status := "ready"
	httpStatus := http.StatusOK
	checks := make(map[string]any)

	if s.templates == nil {
		checks["templates"] = "failed: templates not loaded"
		status = "not_ready"
		httpStatus = http.StatusServiceUnavailable
	} else {
		checks["templates"] = "ok"
	}

	if s.ping == nil {
		checks["storage"] = "not_configured"
	} else if err := s.ping(ctx); err != nil {
		checks["storage"] = fmt.Sprintf("failed: %v", err)
		status = "not_ready"
		httpStatus = http.StatusServiceUnavailable
	} else {
		checks["storage"] = "ok"
	}

	if s.cache != nil {
		stats := s.cache.Stats()
		checks["summary_cache"] = map[string]any{
			"entries": s.cache.Size(),
			"hits":    stats.Hits,
			"misses":  stats.Misses,
		}
	}

	checks["rate_limiter"] = map[string]any{
		"active_clients": s.limiter.ActiveClients(),
		"rejected":       s.limiter.Rejected(),
	}
	traceMetrics := s.tracer.GetMetrics()
	checks["requests"] = map[string]any{
		"total":  traceMetrics.TotalRequests,
		"failed": traceMetrics.FailedRequests,
	}
	checks["suspicious_requests"] = s.detector.GetMetrics().SuspiciousRequests

	writeJSON(r.Context(), w, httpStatus, map[string]any{
		"status":    status,
		"timestamp": s.now().Format(time.RFC3339),
		"checks":    checks,
	})
}
