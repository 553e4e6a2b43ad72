// AngelaMos | 2026
// handler.go

package health

import (
	"context"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"golang.org/x/sync/errgroup"
)

const probeTimeout = 5 * time.Second

const (
	statusOK           = "ok"
	statusDegraded     = "degraded"
	statusNotReady     = "not_ready"
	statusShuttingDown = "shutting_down"
)

type Checker interface {
	Ping(ctx context.Context) error
}

type dependency struct {
	name     string
	checker  Checker
	required bool
}

type Handler struct {
	deps     []dependency
	ready    atomic.Bool
	shutdown atomic.Bool
}

// NewHandler probes the store and, when configured, redis. A nil redis
// checker is reported as skipped rather than unhealthy.
func NewHandler(store, redis Checker) *Handler {
	h := &Handler{
		deps: []dependency{
			{name: "store", checker: store, required: true},
			{name: "redis", checker: redis},
		},
	}
	h.ready.Store(true)
	return h
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/healthz", h.Liveness)
	r.Get("/livez", h.Liveness)
	r.Get("/readyz", h.Readiness)
}

func (h *Handler) SetReady(ready bool) {
	h.ready.Store(ready)
}

func (h *Handler) SetShutdown(shutdown bool) {
	h.shutdown.Store(shutdown)
}

func (h *Handler) Liveness(w http.ResponseWriter, r *http.Request) {
	if h.shutdown.Load() {
		writeStatus(w, r, http.StatusServiceUnavailable, StatusResponse{Status: statusShuttingDown})
		return
	}
	writeStatus(w, r, http.StatusOK, StatusResponse{Status: statusOK})
}

func (h *Handler) Readiness(w http.ResponseWriter, r *http.Request) {
	switch {
	case h.shutdown.Load():
		writeStatus(w, r, http.StatusServiceUnavailable, StatusResponse{Status: statusShuttingDown})
		return
	case !h.ready.Load():
		writeStatus(w, r, http.StatusServiceUnavailable, StatusResponse{Status: statusNotReady})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), probeTimeout)
	defer cancel()

	checks := h.probeAll(ctx)

	resp := ReadinessResponse{Status: statusOK, Checks: checks}
	code := http.StatusOK
	for _, c := range checks {
		if !c.Healthy {
			resp.Status = statusDegraded
			code = http.StatusServiceUnavailable
			break
		}
	}

	writeStatus(w, r, code, resp)
}

func (h *Handler) probeAll(ctx context.Context) []HealthCheck {
	checks := make([]HealthCheck, len(h.deps))

	var g errgroup.Group
	for i, dep := range h.deps {
		g.Go(func() error {
			checks[i] = dep.probe(ctx)
			return nil
		})
	}
	_ = g.Wait() //nolint:errcheck // probes report through checks

	return checks
}

func (d dependency) probe(ctx context.Context) HealthCheck {
	check := HealthCheck{Name: d.name, Healthy: true}

	if d.checker == nil {
		if d.required {
			check.Healthy = false
			check.Message = d.name + " checker not configured"
			return check
		}
		check.Skipped = true
		check.Message = "not configured"
		return check
	}

	start := time.Now()
	err := d.checker.Ping(ctx)
	check.Latency = time.Since(start).String()

	if err != nil {
		check.Healthy = false
		check.Message = "ping failed"
	}
	return check
}

func writeStatus(w http.ResponseWriter, r *http.Request, code int, body any) {
	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	render.Status(r, code)
	render.JSON(w, r, body)
}

type StatusResponse struct {
	Status string `json:"status"`
}

type ReadinessResponse struct {
	Status string        `json:"status"`
	Checks []HealthCheck `json:"checks"`
}

type HealthCheck struct {
	Name    string `json:"name"`
	Healthy bool   `json:"healthy"`
	Skipped bool   `json:"skipped,omitempty"`
	Latency string `json:"latency,omitempty"`
	Message string `json:"message,omitempty"`
}
