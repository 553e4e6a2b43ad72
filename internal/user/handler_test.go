// AngelaMos | 2026
// handler_test.go

package user_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/currency-tracker/internal/store"
	"github.com/carterperez-dev/currency-tracker/internal/store/memory"
	"github.com/carterperez-dev/currency-tracker/internal/user"
)

func newRouter(t *testing.T) (chi.Router, *memory.Store) {
	t.Helper()

	s := memory.New()
	_, err := store.Seed(context.Background(), s)
	require.NoError(t, err)

	r := chi.NewRouter()
	r.Route("/api", user.NewHandler(user.NewService(s)).RegisterRoutes)
	return r, s
}

func call(t *testing.T, h http.Handler, method, target, body string) (int, map[string]any) {
	t.Helper()

	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var payload map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload), rec.Body.String())
	return rec.Code, payload
}

func TestListUsersOrderedByName(t *testing.T) {
	r, _ := newRouter(t)

	code, body := call(t, r, http.MethodGet, "/api/users", "")
	require.Equal(t, http.StatusOK, code)
	assert.InDelta(t, 3, body["count"], 0)

	users := body["users"].([]any)
	names := make([]string, 0, len(users))
	for _, u := range users {
		names = append(names, u.(map[string]any)["name"].(string))
	}
	assert.Equal(t, []string{"Алексей Сидоров", "Иван Иванов", "Мария Петрова"}, names)

	ivan := users[1].(map[string]any)
	assert.InDelta(t, 2, ivan["subscription_count"], 0)
}

func TestGetUser(t *testing.T) {
	r, _ := newRouter(t)

	code, body := call(t, r, http.MethodGet, "/api/users/1", "")
	require.Equal(t, http.StatusOK, code)

	u := body["user"].(map[string]any)
	assert.Equal(t, "Иван Иванов", u["name"])
	subs := u["subscriptions"].([]any)
	require.Len(t, subs, 2)
	assert.Equal(t, "EUR", subs[0].(map[string]any)["char_code"])
	assert.Equal(t, "USD", subs[1].(map[string]any)["char_code"])

	code, body = call(t, r, http.MethodGet, "/api/users/abc", "")
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Invalid user ID", body["message"])

	code, body = call(t, r, http.MethodGet, "/api/users/42", "")
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "User not found", body["message"])
}

func TestCreateUpdateDeleteUser(t *testing.T) {
	r, s := newRouter(t)

	code, body := call(t, r, http.MethodPost, "/api/users", `{"name": "  Ольга Смирнова  "}`)
	require.Equal(t, http.StatusCreated, code, body)
	created := body["user"].(map[string]any)
	assert.Equal(t, "Ольга Смирнова", created["name"])
	id := int64(created["id"].(float64))

	code, _ = call(t, r, http.MethodPost, "/api/users", `{"name": "   "}`)
	assert.Equal(t, http.StatusBadRequest, code)

	code, body = call(t, r, http.MethodPost, "/api/users", `{}`)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "name is required", body["message"])

	code, _ = call(t, r, http.MethodPost, "/api/users", "")
	assert.Equal(t, http.StatusBadRequest, code)

	code, body = call(t, r, http.MethodPut, "/api/users/1", `{"name": "Иван Петров"}`)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Иван Петров", body["user"].(map[string]any)["name"])

	code, _ = call(t, r, http.MethodPut, "/api/users/99", `{"name": "Nobody"}`)
	assert.Equal(t, http.StatusNotFound, code)

	code, _ = call(t, r, http.MethodDelete, "/api/users/1", "")
	assert.Equal(t, http.StatusOK, code)

	code, _ = call(t, r, http.MethodDelete, "/api/users/1", "")
	assert.Equal(t, http.StatusNotFound, code)

	stats, err := s.Statistics(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, stats.UserCount)
	assert.Equal(t, 2, stats.SubscriptionCount)

	_, err = s.ReadUser(context.Background(), id)
	require.NoError(t, err)
}

func TestSubscribe(t *testing.T) {
	r, _ := newRouter(t)

	code, body := call(t, r, http.MethodPost, "/api/users/2/subscribe", `{"currency_id": 1}`)
	require.Equal(t, http.StatusCreated, code, body)
	sub := body["subscription"].(map[string]any)
	assert.Equal(t, "USD", sub["char_code"])
	assert.NotEmpty(t, sub["subscribed_at"])

	code, body = call(t, r, http.MethodPost, "/api/users/2/subscribe", `{"currency_id": 1}`)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "User is already subscribed to this currency", body["message"])

	code, body = call(t, r, http.MethodPost, "/api/users/2/subscribe", `{}`)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "currency_id is required", body["message"])

	code, body = call(t, r, http.MethodPost, "/api/users/99/subscribe", `{"currency_id": 1}`)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "User not found", body["message"])

	code, body = call(t, r, http.MethodPost, "/api/users/2/subscribe", `{"currency_id": 99}`)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "Currency not found", body["message"])
}

func TestUnsubscribe(t *testing.T) {
	r, _ := newRouter(t)

	code, _ := call(t, r, http.MethodPost, "/api/users/3/unsubscribe", `{"currency_id": 3}`)
	assert.Equal(t, http.StatusOK, code)

	code, body := call(t, r, http.MethodPost, "/api/users/3/unsubscribe", `{"currency_id": 3}`)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "Subscription not found", body["message"])

	code, body = call(t, r, http.MethodPost, "/api/users/99/unsubscribe", `{"currency_id": 3}`)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "User not found", body["message"])
}
