// AngelaMos | 2026
// handler_test.go

package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pinger struct{ err error }

func (p pinger) Ping(context.Context) error { return p.err }

func serve(h *Handler, path string) (*httptest.ResponseRecorder, map[string]any) {
	r := chi.NewRouter()
	h.RegisterRoutes(r)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))

	var body map[string]any
	_ = json.Unmarshal(rec.Body.Bytes(), &body)
	return rec, body
}

func TestReadinessWithoutRedis(t *testing.T) {
	h := NewHandler(pinger{}, nil)

	rec, body := serve(h, "/readyz")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", body["status"])

	checks := body["checks"].([]any)
	redis := checks[1].(map[string]any)
	assert.Equal(t, true, redis["skipped"])
	assert.Equal(t, true, redis["healthy"])
}

func TestReadinessDegraded(t *testing.T) {
	h := NewHandler(pinger{err: errors.New("closed")}, pinger{})

	rec, body := serve(h, "/readyz")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "degraded", body["status"])

	h = NewHandler(nil, nil)
	rec, _ = serve(h, "/readyz")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestLivenessAndShutdown(t *testing.T) {
	h := NewHandler(pinger{}, nil)

	rec, body := serve(h, "/healthz")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", body["status"])

	h.SetReady(false)
	rec, body = serve(h, "/readyz")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "not_ready", body["status"])

	h.SetShutdown(true)
	rec, body = serve(h, "/livez")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "shutting_down", body["status"])
}
