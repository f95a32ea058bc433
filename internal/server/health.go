package server

import (
	"encoding/json"
	"net/http"
	"sync"
	"sync/atomic"
	"time"
)

// Health status constants for health check responses.
const (
	healthStatusOK           = "ok"
	healthStatusNotReady     = "not ready"
	healthStatusShuttingDown = "shutting down"
	healthStatusPending      = "pending"
	healthStatusFailed       = "failed"
)

// HealthChecker reports liveness and readiness of the scheduled checker.
// It is ready while the scheduler runs (SetReady) and the last completed
// check succeeded.
type HealthChecker struct {
	ready     atomic.Bool
	shutdown  atomic.Bool
	startTime time.Time

	mu        sync.RWMutex
	lastCheck time.Time
	lastErr   error
	checks    int
}

// NewHealthChecker creates a new HealthChecker. It is not ready until
// SetReady(true) is called.
func NewHealthChecker() *HealthChecker {
	return &HealthChecker{
		startTime: time.Now(),
	}
}

// SetReady marks whether the scheduler is running.
func (h *HealthChecker) SetReady(ready bool) {
	h.ready.Store(ready)
}

// SetShuttingDown marks the process as stopping; readiness fails from then on.
func (h *HealthChecker) SetShuttingDown() {
	h.shutdown.Store(true)
}

// RecordCheck stores the outcome of a completed check.
func (h *HealthChecker) RecordCheck(at time.Time, err error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.lastCheck = at
	h.lastErr = err
	h.checks++
}

// IsReady returns whether the server is ready to receive traffic.
func (h *HealthChecker) IsReady() bool {
	ok, _ := h.evaluate()
	return ok
}

// HealthResponse represents the JSON response for health endpoints.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// DetailedHealthResponse provides comprehensive health information.
type DetailedHealthResponse struct {
	Status    string `json:"status"`
	Uptime    string `json:"uptime"`
	Checks    int    `json:"checks"`
	LastCheck string `json:"last_check,omitempty"`
	LastError string `json:"last_error,omitempty"`
}

func (h *HealthChecker) evaluate() (bool, map[string]string) {
	checks := make(map[string]string)
	allOk := true

	if !h.ready.Load() {
		checks["ready"] = healthStatusNotReady
		allOk = false
	} else {
		checks["ready"] = healthStatusOK
	}

	if h.shutdown.Load() {
		checks["shutdown"] = healthStatusShuttingDown
		allOk = false
	} else {
		checks["shutdown"] = healthStatusOK
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	switch {
	case h.checks == 0:
		checks["last_check"] = healthStatusPending
		allOk = false
	case h.lastErr != nil:
		checks["last_check"] = healthStatusFailed
		allOk = false
	default:
		checks["last_check"] = healthStatusOK
	}

	return allOk, checks
}

// LivenessHandler returns an HTTP handler for the /healthz endpoint.
// Liveness probes indicate whether the process should be restarted.
// This should be a simple check that the server process is running.
func (h *HealthChecker) LivenessHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)

		response := HealthResponse{
			Status: healthStatusOK,
		}

		_ = json.NewEncoder(w).Encode(response)
	})
}

// ReadinessHandler returns an HTTP handler for the /readyz endpoint.
// It fails until the first check has run and whenever the last check failed.
func (h *HealthChecker) ReadinessHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		allOk, checks := h.evaluate()
		response := HealthResponse{
			Checks: checks,
		}

		if allOk {
			response.Status = healthStatusOK
			w.WriteHeader(http.StatusOK)
		} else {
			response.Status = healthStatusNotReady
			w.WriteHeader(http.StatusServiceUnavailable)
		}

		_ = json.NewEncoder(w).Encode(response)
	})
}

// RegisterHealthEndpoints registers health check endpoints on the given mux.
func (h *HealthChecker) RegisterHealthEndpoints(mux *http.ServeMux) {
	mux.Handle("/healthz", h.LivenessHandler())
	mux.Handle("/readyz", h.ReadinessHandler())
	mux.Handle("/healthz/detailed", h.DetailedHealthHandler())
}

// DetailedHealthHandler returns an HTTP handler for the /healthz/detailed endpoint.
// This endpoint provides comprehensive health information.
func (h *HealthChecker) DetailedHealthHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		allOk, _ := h.evaluate()

		h.mu.RLock()
		response := DetailedHealthResponse{
			Status: healthStatusOK,
			Uptime: time.Since(h.startTime).Truncate(time.Second).String(),
			Checks: h.checks,
		}
		if !h.lastCheck.IsZero() {
			response.LastCheck = h.lastCheck.UTC().Format(time.RFC3339)
		}
		if h.lastErr != nil {
			response.LastError = h.lastErr.Error()
		}
		h.mu.RUnlock()

		switch {
		case h.shutdown.Load():
			response.Status = healthStatusShuttingDown
			w.WriteHeader(http.StatusServiceUnavailable)
		case !allOk:
			response.Status = healthStatusNotReady
			w.WriteHeader(http.StatusServiceUnavailable)
		default:
			w.WriteHeader(http.StatusOK)
		}

		_ = json.NewEncoder(w).Encode(response)
	})
}
