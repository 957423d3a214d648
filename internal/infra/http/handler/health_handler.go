package handler

import (
	"encoding/json"
	"net/http"
	"time"
)

// Checker is a readiness check for a dependency.
type Checker interface {
	Validate() error
}

// HealthHandler handles health check endpoints.
type HealthHandler struct {
	analyzer Checker
}

// HealthHandlerOption configures the health handler.
type HealthHandlerOption func(*HealthHandler)

// WithAnalyzer adds the model provider readiness check.
func WithAnalyzer(c Checker) HealthHandlerOption {
	return func(h *HealthHandler) {
		h.analyzer = c
	}
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(opts ...HealthHandlerOption) *HealthHandler {
	h := &HealthHandler{}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// HealthResponse represents the health check response.
type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

// Health handles the /health endpoint (liveness probe).
func (h *HealthHandler) Health(w http.ResponseWriter, _ *http.Request) {
	response := HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC(),
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(response)
}

// ReadyResponse represents the readiness check response.
type ReadyResponse struct {
	Status    string                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Checks    map[string]CheckResult `json:"checks,omitempty"`
}

// CheckResult represents a single readiness check result.
type CheckResult struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// Ready handles the /ready endpoint (readiness probe). It returns 503
// when the analysis backend is misconfigured.
func (h *HealthHandler) Ready(w http.ResponseWriter, _ *http.Request) {
	checks := make(map[string]CheckResult)
	allHealthy := true

	if h.analyzer != nil {
		if err := h.analyzer.Validate(); err != nil {
			checks["analyzer"] = CheckResult{Status: "unhealthy", Error: err.Error()}
			allHealthy = false
		} else {
			checks["analyzer"] = CheckResult{Status: "healthy"}
		}
	}

	response := ReadyResponse{
		Status:    "ready",
		Timestamp: time.Now().UTC(),
		Checks:    checks,
	}

	status := http.StatusOK
	if !allHealthy {
		response.Status = "not ready"
		status = http.StatusServiceUnavailable
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(response)
}
