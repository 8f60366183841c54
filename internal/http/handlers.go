package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"carlog/internal/log"
)

// handleHealth performs basic liveness check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	NewJSONResponse().Body(map[string]any{
		"status":    "ok",
		"timestamp": s.now().UTC().Format(time.RFC3339),
		"uptime":    s.now().Sub(s.appMetrics.started).Round(time.Second).String(),
	}).Write(w)
}

// handleReady checks storage through the configured probe.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	status := "ready"
	code := http.StatusOK
	checks := map[string]string{"storage": "ok"}
	if s.ready != nil {
		if err := s.ready(ctx); err != nil {
			log.FromContext(ctx).WarnContext(ctx, "Readiness check failed", log.FieldError, err)
			checks["storage"] = fmt.Sprintf("failed: %v", err)
			status = "not_ready"
			code = http.StatusServiceUnavailable
		}
	}
	checks["analytics_cache"] = fmt.Sprintf("%d entries", s.nextCache.Size()+s.statsCache.Size())

	NewJSONResponse().Status(code).Body(map[string]any{
		"status":    status,
		"timestamp": s.now().UTC().Format(time.RFC3339),
		"checks":    checks,
	}).Write(w)
}

// handleMetrics provides application and security metrics in plain text format
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; version=0.0.4; charset=utf-8")

	securityMetrics := s.securityDetector.GetMetrics()
	rateLimitMetrics := s.rateLimiter.GetMetrics()
	traceMetrics := s.traceMiddleware.GetMetrics()

	w.WriteHeader(http.StatusOK)

	metric := func(name, kind, help string, value any) {
		fmt.Fprintf(w, "# HELP %s %s\n# TYPE %s %s\n%s %v\n\n", name, help, name, kind, name, value)
	}
	metric("http_requests_total", "counter", "Total number of HTTP requests", traceMetrics.TotalRequests)
	metric("http_server_errors_total", "counter", "Total 5xx responses", traceMetrics.ServerErrors)
	metric("http_response_time_avg_microseconds", "gauge", "Average response time", traceMetrics.AverageResponseTime)
	metric("records_written_total", "counter", "Maintenance records created, updated or deleted", s.appMetrics.recordsWritten.Load())
	metric("cache_hits_total", "counter", "Analytics cache hits", s.appMetrics.cacheHits.Load())
	metric("cache_misses_total", "counter", "Analytics cache misses", s.appMetrics.cacheMisses.Load())

	fmt.Fprintf(w, "# HELP cache_entries Current cache entries\n# TYPE cache_entries gauge\n")
	fmt.Fprintf(w, "cache_entries{type=\"next_service\"} %d\n", s.nextCache.Size())
	fmt.Fprintf(w, "cache_entries{type=\"stats\"} %d\n\n", s.statsCache.Size())

	metric("rate_limit_hits_total", "counter", "Total rate limit hits", rateLimitMetrics.TotalHits)
	metric("active_rate_limit_clients", "gauge", "Currently tracked rate limit clients", rateLimitMetrics.ClientCount)
	metric("suspicious_requests_total", "counter", "Total suspicious requests detected", securityMetrics.SuspiciousRequests)
	metric("uptime_seconds", "gauge", "Application uptime in seconds", int64(s.now().Sub(s.appMetrics.started).Seconds()))
}

// respondError logs unexpected failures and writes the mapped response.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, op string, err error) {
	resp := FromError(err)
	if resp.statusCode >= http.StatusInternalServerError {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Request failed",
			log.FieldOperation, op,
			log.FieldPath, r.URL.Path,
			log.FieldError, err)
	}
	resp.Write(w)
}

// invalidateCar drops every cached analytics entry for a car.
func (s *Server) invalidateCar(ctx context.Context, carID string) {
	n := s.nextCache.DeletePrefix(carCachePrefix(carID)) + s.statsCache.DeletePrefix(carCachePrefix(carID))
	if n > 0 {
		log.FromContext(ctx).DebugContext(ctx, "Analytics cache invalidated", log.FieldCarID, carID, "entries", n)
	}
}
