package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/zabloncharles/eventportal/internal/health"
)

// readinessTimeout bounds how long a single readiness probe may block on
// its dependency checks.
const readinessTimeout = 2 * time.Second

// HealthHandlers holds the dependency checkers probed by /ready.
type HealthHandlers struct {
	checkers map[string]health.Checker
}

// NewHealthHandlers creates a new HealthHandlers instance. The map keys
// name the dependencies in the readiness response.
func NewHealthHandlers(checkers map[string]health.Checker) *HealthHandlers {
	return &HealthHandlers{checkers: checkers}
}

// HealthResponse is the body for /health and /ready.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// Health handles GET /health - process liveness. It always returns 200
// while the process can serve requests at all.
func (h *HealthHandlers) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, HealthResponse{Status: "ok"})
}

// Ready handles GET /ready - dependency readiness. It probes every
// registered checker and returns 503 if any fails.
func (h *HealthHandlers) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
	defer cancel()

	checks := make(map[string]string, len(h.checkers))
	healthy := true

	for name, checker := range h.checkers {
		if err := checker.HealthCheck(ctx); err != nil {
			slog.WarnContext(r.Context(), "readiness check failed", "dependency", name, "error", err)
			checks[name] = err.Error()
			healthy = false
		} else {
			checks[name] = "ok"
		}
	}

	resp := HealthResponse{Status: "ok", Checks: checks}
	if !healthy {
		resp.Status = "unavailable"
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusServiceUnavailable)
		if err := json.NewEncoder(w).Encode(resp); err != nil {
			slog.ErrorContext(r.Context(), "failed to encode response", "error", err)
		}
		return
	}

	writeJSON(w, r, resp)
}
