// AngelaMos | 2026
// server_test.go

package server_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/currency-tracker/internal/admin"
	"github.com/carterperez-dev/currency-tracker/internal/config"
	"github.com/carterperez-dev/currency-tracker/internal/currency"
	"github.com/carterperez-dev/currency-tracker/internal/health"
	"github.com/carterperez-dev/currency-tracker/internal/ingest"
	"github.com/carterperez-dev/currency-tracker/internal/metrics"
	"github.com/carterperez-dev/currency-tracker/internal/middleware"
	"github.com/carterperez-dev/currency-tracker/internal/page"
	"github.com/carterperez-dev/currency-tracker/internal/rate"
	"github.com/carterperez-dev/currency-tracker/internal/server"
	"github.com/carterperez-dev/currency-tracker/internal/store"
	"github.com/carterperez-dev/currency-tracker/internal/store/memory"
	"github.com/carterperez-dev/currency-tracker/internal/user"
)

const feedBody = `{
	"Date": "2026-10-17T11:30:00+03:00",
	"Timestamp": "2026-10-17T14:00:00+03:00",
	"Valute": {
		"USD": {"ID": "R01235", "NumCode": "840", "CharCode": "USD", "Nominal": 1, "Name": "Доллар США", "Value": 96.0},
		"EUR": {"ID": "R01239", "NumCode": "978", "CharCode": "EUR", "Nominal": 1, "Name": "Евро", "Value": 104.0},
		"KZT": {"ID": "R01335", "NumCode": "398", "CharCode": "KZT", "Nominal": 100, "Name": "Тенге", "Value": 19.5}
	}
}`

func newApp(t *testing.T) http.Handler {
	t.Helper()

	feed := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, feedBody)
	}))
	t.Cleanup(feed.Close)

	ctx := context.Background()
	s := memory.New()
	_, err := store.Seed(ctx, s)
	require.NoError(t, err)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	m := metrics.New()

	client := rate.NewClient(config.ProviderConfig{
		URL:      feed.URL,
		Timeout:  2 * time.Second,
		CacheTTL: time.Minute,
	},
		rate.WithCache(rate.NewMemoryCache(8, time.Minute)),
		rate.WithRetries(0, time.Millisecond),
		rate.WithLogger(logger),
	)

	controller := currency.NewController(s, client, logger)
	job := ingest.NewJob(controller, client,
		ingest.WithRecorder(m),
		ingest.WithLogger(logger),
	)

	renderer, err := page.NewTemplateRenderer()
	require.NoError(t, err)

	healthHandler := health.NewHandler(s, nil)
	srv := server.New(server.Config{
		ServerConfig:  config.ServerConfig{Host: "localhost", Port: 0, ShutdownTimeout: time.Second},
		HealthHandler: healthHandler,
		Logger:        logger,
	})

	router := srv.Router()
	router.Use(middleware.RequestID)
	router.Use(middleware.Recoverer)
	router.Use(m.Middleware)

	srv.Mount(server.Handlers{
		Users: user.NewHandler(user.NewService(s)),
		Currencies: currency.NewHandler(currency.HandlerConfig{
			Controller: controller,
			Refresher:  job,
			Details:    client,
			Logger:     logger,
		}),
		Ingest: ingest.NewHandler(job),
		Admin: admin.NewHandler(admin.HandlerConfig{
			Store:      s,
			Currencies: controller,
			Ingest:     job,
			StorePing:  s.Ping,
		}),
		Pages: page.NewHandler(page.HandlerConfig{
			Catalog:    s,
			Users:      user.NewService(s),
			Currencies: controller,
			Refresher:  job,
			Renderer:   renderer,
			App:        config.AppConfig{Name: "Currency Tracker", Version: "1.0.0"},
			Logger:     logger,
		}),
		Metrics: m,
	})

	return srv.Handler()
}

func request(t *testing.T, h http.Handler, method, target, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(method, target, reader))

	var payload map[string]any
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload), rec.Body.String())
	}
	return rec, payload
}

func TestRefreshFlow(t *testing.T) {
	app := newApp(t)

	rec, body := request(t, app, http.MethodPost, "/api/refresh", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.ElementsMatch(t, []any{"EUR", "USD"}, body["updated"])
	assert.Len(t, body["skipped"], 3)

	rec, body = request(t, app, http.MethodGet, "/api/currencies/USD", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.InDelta(t, 96.0, body["currency"].(map[string]any)["value"], 1e-9)

	rec, body = request(t, app, http.MethodGet, "/api/exchange?amount=100&from=KZT&to=RUB", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.InDelta(t, 19.5, body["result"], 1e-9)

	rec, body = request(t, app, http.MethodGet, "/api/stats", "")
	require.Equal(t, http.StatusOK, rec.Code)
	status := body["stats"].(map[string]any)["ingest"].(map[string]any)
	assert.Equal(t, ingest.OutcomeSuccess, status["last_outcome"])

	rec, _ = request(t, app, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "currency_tracker_")
}

func TestUserLifecycle(t *testing.T) {
	app := newApp(t)

	rec, body := request(t, app, http.MethodPost, "/api/users", `{"name":"Test"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	id := int(body["user"].(map[string]any)["id"].(float64))

	target := "/api/users/" + strconv.Itoa(id)
	rec, _ = request(t, app, http.MethodPost, target+"/subscribe", `{"currency_id":1}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec, _ = request(t, app, http.MethodPost, target+"/subscribe", `{"currency_id":1}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, body = request(t, app, http.MethodGet, target, "")
	require.Equal(t, http.StatusOK, rec.Code)
	subs := body["user"].(map[string]any)["subscriptions"].([]any)
	require.Len(t, subs, 1)
	assert.Equal(t, "USD", subs[0].(map[string]any)["char_code"])

	rec, _ = request(t, app, http.MethodGet, "/user?id="+strconv.Itoa(id), "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestFallbackRoutes(t *testing.T) {
	app := newApp(t)

	rec, body := request(t, app, http.MethodGet, "/api/nothing", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, false, body["success"])

	rec, _ = request(t, app, http.MethodGet, "/nothing", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")

	rec, _ = request(t, app, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get(middleware.RequestIDHeader))

	rec, _ = request(t, app, http.MethodGet, "/currency/update?USD=97.5", "")
	assert.Equal(t, http.StatusFound, rec.Code)
}
