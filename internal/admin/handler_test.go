// AngelaMos | 2026
// handler_test.go

package admin

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/currency-tracker/internal/currency"
	"github.com/carterperez-dev/currency-tracker/internal/ingest"
	"github.com/carterperez-dev/currency-tracker/internal/store"
	"github.com/carterperez-dev/currency-tracker/internal/store/memory"
)

type fixedStatus ingest.Status

func (f fixedStatus) Status() ingest.Status { return ingest.Status(f) }

func router(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Route("/api", h.RegisterRoutes)
	return r
}

func fetch(t *testing.T, r http.Handler, target string) (int, map[string]any) {
	t.Helper()

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), rec.Body.String())
	return rec.Code, body
}

func TestSystemStats(t *testing.T) {
	s := memory.New()
	_, err := store.Seed(context.Background(), s)
	require.NoError(t, err)

	last := time.Date(2026, 10, 17, 9, 0, 0, 0, time.UTC)
	h := NewHandler(HandlerConfig{
		Store:      s,
		Currencies: currency.NewController(s, nil, nil),
		Ingest:     fixedStatus{LastSuccess: &last, LastOutcome: "success", Updated: 5},
		StorePing:  s.Ping,
		DBStats:    func() sql.DBStats { return sql.DBStats{MaxOpenConnections: 1, OpenConnections: 1} },
	})

	code, body := fetch(t, router(h), "/api/stats")
	require.Equal(t, http.StatusOK, code)

	stats := body["stats"].(map[string]any)
	counts := stats["statistics"].(map[string]any)
	assert.InDelta(t, 3, counts["user_count"], 0)
	assert.InDelta(t, 5, counts["currency_count"], 0)
	assert.InDelta(t, 4, counts["subscription_count"], 0)

	rates := stats["currencies"].(map[string]any)
	assert.Equal(t, "GBP", rates["max_value"].(map[string]any)["char_code"])

	st := stats["store"].(map[string]any)
	assert.Equal(t, true, st["healthy"])
	assert.InDelta(t, 1, st["pool"].(map[string]any)["max_open"], 0)

	assert.NotContains(t, stats, "redis")
	assert.Equal(t, "success", stats["ingest"].(map[string]any)["last_outcome"])
	assert.NotEmpty(t, stats["runtime"].(map[string]any)["go_version"])
}

func TestSystemStatsUnhealthyRedis(t *testing.T) {
	h := NewHandler(HandlerConfig{
		Store:     memory.New(),
		RedisPing: func(context.Context) error { return errors.New("down") },
	})

	code, body := fetch(t, router(h), "/api/stats")
	require.Equal(t, http.StatusOK, code)

	stats := body["stats"].(map[string]any)
	assert.Equal(t, false, stats["redis"].(map[string]any)["healthy"])
	assert.Empty(t, stats["currencies"])
}

func TestRuntimeStats(t *testing.T) {
	h := NewHandler(HandlerConfig{Store: memory.New()})

	code, body := fetch(t, router(h), "/api/stats/runtime")
	require.Equal(t, http.StatusOK, code)
	assert.Positive(t, body["stats"].(map[string]any)["cpus"])
}
