// AngelaMos | 2026
// handler_test.go

package page

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/currency-tracker/internal/config"
	"github.com/carterperez-dev/currency-tracker/internal/currency"
	"github.com/carterperez-dev/currency-tracker/internal/model"
	"github.com/carterperez-dev/currency-tracker/internal/store"
	"github.com/carterperez-dev/currency-tracker/internal/store/memory"
	"github.com/carterperez-dev/currency-tracker/internal/user"
)

type stubRefresher struct {
	calls int
	err   error
}

func (s *stubRefresher) RefreshRates(context.Context) error {
	s.calls++
	return s.err
}

func (s *stubRefresher) LastRefresh() *time.Time {
	return nil
}

func newPages(t *testing.T, refresher currency.Refresher) (chi.Router, *memory.Store) {
	t.Helper()

	s := memory.New()
	ctx := context.Background()
	_, err := store.Seed(ctx, s)
	require.NoError(t, err)

	author, err := model.NewAuthor("Иван Иванов", "ПИ-202")
	require.NoError(t, err)
	app, err := model.NewApp("Currency Tracker", "1.0.0", author)
	require.NoError(t, err)
	require.NoError(t, s.SaveApp(ctx, app))

	renderer, err := NewTemplateRenderer()
	require.NoError(t, err)

	h := NewHandler(HandlerConfig{
		Catalog:    s,
		Users:      user.NewService(s),
		Currencies: currency.NewController(s, nil, nil),
		Refresher:  refresher,
		Renderer:   renderer,
		App:        config.AppConfig{Name: "Fallback", Version: "0.0.1"},
	})

	r := chi.NewRouter()
	r.NotFound(h.NotFound)
	r.MethodNotAllowed(h.NotFound)
	h.RegisterRoutes(r)
	return r, s
}

func get(h http.Handler, target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestIndexPage(t *testing.T) {
	r, _ := newPages(t, nil)

	rec := get(r, "/")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")

	body := rec.Body.String()
	assert.Contains(t, body, "Currency Tracker")
	assert.Contains(t, body, "Пользователей: 3")
	assert.Contains(t, body, "Валют: 5")
	assert.Contains(t, body, "Подписок: 4")
	assert.NotContains(t, body, "Fallback")
}

func TestAuthorPage(t *testing.T) {
	r, _ := newPages(t, nil)

	rec := get(r, "/author")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Иван Иванов, группа ПИ-202")
}

func TestUsersAndUserPages(t *testing.T) {
	r, _ := newPages(t, nil)

	rec := get(r, "/users")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Мария Петрова")

	rec = get(r, "/user?id=1")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Доллар США")
	assert.Contains(t, rec.Body.String(), "Евро")

	tests := []struct {
		target string
		status int
		text   string
	}{
		{"/user", http.StatusBadRequest, "User ID is required"},
		{"/user?id=abc", http.StatusBadRequest, "Invalid user ID"},
		{"/user?id=42", http.StatusNotFound, "User not found"},
	}
	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			rec := get(r, tt.target)
			assert.Equal(t, tt.status, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.text)
		})
	}
}

func TestCurrenciesPageRefresh(t *testing.T) {
	refresher := &stubRefresher{err: errors.New("feed down")}
	r, _ := newPages(t, refresher)

	rec := get(r, "/currencies")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "93.2500")
	assert.Equal(t, 0, refresher.calls)

	rec = get(r, "/currencies?refresh=true")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, refresher.calls)
}

func TestUpdateCurrencies(t *testing.T) {
	r, s := newPages(t, nil)
	ctx := context.Background()

	rec := get(r, "/currency/update?usd=95,12345&EUR=102.5&refresh=1")
	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/currencies", rec.Header().Get("Location"))

	usd, err := s.ReadCurrencyByCode(ctx, "USD")
	require.NoError(t, err)
	assert.InDelta(t, 95.1235, usd.Value, 1e-9)

	eur, err := s.ReadCurrencyByCode(ctx, "EUR")
	require.NoError(t, err)
	assert.InDelta(t, 102.5, eur.Value, 1e-9)

	rec = get(r, "/currency/update?USD=abc&foo=1")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = get(r, "/currency/update?XYZ=10")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "XYZ")

	rec = get(r, "/currency/update?USD=-5")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDeleteCurrency(t *testing.T) {
	r, s := newPages(t, nil)

	rec := get(r, "/currency/delete?id=1")
	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/currencies", rec.Header().Get("Location"))

	stats, err := s.Statistics(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 4, stats.CurrencyCount)

	assert.Equal(t, http.StatusNotFound, get(r, "/currency/delete?id=1").Code)
	assert.Equal(t, http.StatusBadRequest, get(r, "/currency/delete?id=x").Code)
	assert.Equal(t, http.StatusBadRequest, get(r, "/currency/delete").Code)
}

func TestShowCurrencies(t *testing.T) {
	r, _ := newPages(t, nil)

	rec := get(r, "/currency/show")
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, true, body["success"])
	assert.InDelta(t, 5, body["count"], 0)
	assert.Len(t, body["currencies"], 5)
}

func TestNotFound(t *testing.T) {
	r, _ := newPages(t, nil)

	rec := get(r, "/nowhere")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, rec.Body.String(), "404")

	rec = get(r, "/api/nowhere")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "Endpoint not found", body["message"])

	post := httptest.NewRecorder()
	r.ServeHTTP(post, httptest.NewRequest(http.MethodPost, "/users", nil))
	assert.Equal(t, http.StatusNotFound, post.Code)
}

func TestRendererUnknownTemplate(t *testing.T) {
	renderer, err := NewTemplateRenderer()
	require.NoError(t, err)

	_, err = renderer.Render("missing.html", nil)
	require.Error(t, err)
}
