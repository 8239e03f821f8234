// Package health provides liveness and readiness probe endpoints. Checks run
// on demand when a probe endpoint is hit, each bounded by its own timeout.
package health

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"sync/atomic"
	"time"
)

// CheckFunc probes one component. A nil return means healthy.
type CheckFunc func(ctx context.Context) error

type check struct {
	name    string
	timeout time.Duration
	fn      CheckFunc
}

// Health manages liveness and readiness checks for a service.
type Health struct {
	ready atomic.Bool

	mu        sync.RWMutex
	liveness  []check
	readiness []check
}

// New creates a Health instance. The service starts not ready; call
// SetReady(true) once initialization finishes.
func New() *Health {
	return &Health{}
}

// AddLivenessCheck registers a liveness check, probing whether the process
// itself is functional.
func (h *Health) AddLivenessCheck(name string, timeout time.Duration, fn CheckFunc) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.liveness = append(h.liveness, check{name: name, timeout: timeout, fn: fn})
}

// AddReadinessCheck registers a readiness check, probing whether the service
// can serve traffic (dependencies reachable, etc.).
func (h *Health) AddReadinessCheck(name string, timeout time.Duration, fn CheckFunc) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.readiness = append(h.readiness, check{name: name, timeout: timeout, fn: fn})
}

// SetReady flips the readiness gate. ReadyEndpoint reports 503 while the
// gate is down regardless of check results, which is how graceful shutdown
// drains traffic.
func (h *Health) SetReady(ready bool) {
	h.ready.Store(ready)
}

type probeResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// LiveEndpoint serves the liveness probe.
func (h *Health) LiveEndpoint(w http.ResponseWriter, r *http.Request) {
	h.mu.RLock()
	checks := h.liveness
	h.mu.RUnlock()
	h.serve(w, r, checks, true)
}

// ReadyEndpoint serves the readiness probe.
func (h *Health) ReadyEndpoint(w http.ResponseWriter, r *http.Request) {
	h.mu.RLock()
	checks := h.readiness
	h.mu.RUnlock()
	h.serve(w, r, checks, h.ready.Load())
}

func (h *Health) serve(w http.ResponseWriter, r *http.Request, checks []check, gate bool) {
	resp := probeResponse{Status: "ok", Checks: make(map[string]string, len(checks))}
	healthy := gate
	if !gate {
		resp.Status = "not ready"
	}

	for _, c := range checks {
		ctx, cancel := context.WithTimeout(r.Context(), c.timeout)
		err := c.fn(ctx)
		cancel()
		if err != nil {
			healthy = false
			resp.Status = "unhealthy"
			resp.Checks[c.name] = err.Error()
		} else {
			resp.Checks[c.name] = "ok"
		}
	}

	w.Header().Set("Content-Type", "application/json")
	if !healthy {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	_ = json.NewEncoder(w).Encode(resp)
}
