// Package health exposes liveness and readiness endpoints. Liveness is
// unconditional; readiness runs its registered checks on every request so
// a probe always reflects the current state.
package health

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"
)

// CheckFunc probes one dependency. A nil return means healthy.
type CheckFunc func(ctx context.Context) error

type check struct {
	name    string
	timeout time.Duration
	fn      CheckFunc
}

// Health tracks readiness checks and an explicit ready flag, flipped off
// during shutdown so load balancers drain before the listener closes.
type Health struct {
	mu     sync.RWMutex
	ready  bool
	checks []check
}

func New() *Health {
	return &Health{ready: true}
}

// AddReadinessCheck registers a named check evaluated on every readiness
// request, each under its own timeout.
func (h *Health) AddReadinessCheck(name string, timeout time.Duration, fn CheckFunc) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.checks = append(h.checks, check{name: name, timeout: timeout, fn: fn})
}

// SetReady flips the explicit readiness flag.
func (h *Health) SetReady(ready bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.ready = ready
}

func (h *Health) IsReady() bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.ready
}

type statusResponse struct {
	Status   string            `json:"status"`
	Failures map[string]string `json:"failures,omitempty"`
}

// LiveEndpoint reports process liveness. It never fails while the process
// can serve HTTP.
func (h *Health) LiveEndpoint(w http.ResponseWriter, _ *http.Request) {
	writeStatus(w, http.StatusOK, nil)
}

// ReadyEndpoint reports whether the service should receive traffic.
func (h *Health) ReadyEndpoint(w http.ResponseWriter, r *http.Request) {
	if !h.IsReady() {
		writeStatus(w, http.StatusServiceUnavailable, map[string]string{"shutdown": "not ready"})
		return
	}

	h.mu.RLock()
	checks := append([]check(nil), h.checks...)
	h.mu.RUnlock()

	failures := make(map[string]string)
	for _, c := range checks {
		ctx, cancel := context.WithTimeout(r.Context(), c.timeout)
		err := c.fn(ctx)
		cancel()
		if err != nil {
			failures[c.name] = err.Error()
		}
	}
	if len(failures) > 0 {
		writeStatus(w, http.StatusServiceUnavailable, failures)
		return
	}
	writeStatus(w, http.StatusOK, nil)
}

func writeStatus(w http.ResponseWriter, code int, failures map[string]string) {
	resp := statusResponse{Status: "ok"}
	if code != http.StatusOK {
		resp.Status = "unavailable"
		resp.Failures = failures
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(resp)
}
